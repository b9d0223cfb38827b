package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ElevenLabs struct {
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	httpClient *http.Client
}

func NewElevenLabs(baseURL, apiKey, voiceID, modelID string, timeout time.Duration) *ElevenLabs {
	return &ElevenLabs{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		voiceID:    voiceID,
		modelID:    modelID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenLabsRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	VoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	} `json:"voice_settings"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*Audio, error) {
	payload := elevenLabsRequest{Text: text, ModelID: e.modelID}
	payload.VoiceSettings.Stability = 0.5
	payload.VoiceSettings.SimilarityBoost = 0.5
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/text-to-speech/"+e.voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	data, err := readAudio(e.Name(), resp)
	if err != nil {
		return nil, err
	}
	return &Audio{Data: data, ContentType: "audio/mpeg", Extension: "mp3"}, nil
}

var _ Synthesizer = (*ElevenLabs)(nil)

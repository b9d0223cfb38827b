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

type Cartesia struct {
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
	version    string
	httpClient *http.Client
}

func NewCartesia(baseURL, apiKey, voiceID, modelID, version string, timeout time.Duration) *Cartesia {
	return &Cartesia{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		voiceID:    voiceID,
		modelID:    modelID,
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Cartesia) Name() string { return "cartesia" }

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type cartesiaRequest struct {
	ModelID      string               `json:"model_id"`
	Transcript   string               `json:"transcript"`
	Voice        cartesiaVoice        `json:"voice"`
	OutputFormat cartesiaOutputFormat `json:"output_format"`
}

func (c *Cartesia) Synthesize(ctx context.Context, text string) (*Audio, error) {
	body, err := json.Marshal(cartesiaRequest{
		ModelID:      c.modelID,
		Transcript:   text,
		Voice:        cartesiaVoice{Mode: "id", ID: c.voiceID},
		OutputFormat: cartesiaOutputFormat{Container: "wav", Encoding: "pcm_f32le", SampleRate: 44100},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartesia request: %w", err)
	}
	defer resp.Body.Close()

	data, err := readAudio(c.Name(), resp)
	if err != nil {
		return nil, err
	}
	return &Audio{Data: data, ContentType: "audio/wav", Extension: "wav"}, nil
}

var _ Synthesizer = (*Cartesia)(nil)

package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/voice-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "xi" || r.Header.Get("Accept") != "audio/mpeg" {
			t.Errorf("missing vendor headers")
		}
		var req elevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Text != "hello" || req.ModelID != "eleven_monolingual_v1" || req.VoiceSettings.Stability != 0.5 {
			t.Errorf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	e := NewElevenLabs(srv.URL, "xi", "voice-1", "eleven_monolingual_v1", 5*time.Second)
	audio, err := e.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(audio.Data) != "ID3audio" || audio.Extension != "mp3" || audio.ContentType != "audio/mpeg" {
		t.Fatalf("unexpected audio %+v", audio)
	}
}

func TestElevenLabsVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer srv.Close()

	_, err := NewElevenLabs(srv.URL, "bad", "v", "m", 5*time.Second).Synthesize(context.Background(), "hi")
	var vErr *VendorError
	if !errors.As(err, &vErr) || vErr.Status != http.StatusUnauthorized || vErr.Vendor != "elevenlabs" {
		t.Fatalf("expected VendorError 401, got %v", err)
	}
}

func TestCartesiaSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts/bytes" || r.Header.Get("X-API-Key") != "ck" || r.Header.Get("Cartesia-Version") != "2024-06-10" {
			t.Errorf("unexpected request %s %v", r.URL.Path, r.Header)
		}
		var req cartesiaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.ModelID != "sonic-2" || req.Voice.Mode != "id" || req.OutputFormat.SampleRate != 44100 || req.Transcript != "hello" {
			t.Errorf("unexpected payload %+v", req)
		}
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	c := NewCartesia(srv.URL, "ck", "694f9389-aac1-45b6-b726-9d9369183238", "sonic-2", "2024-06-10", 5*time.Second)
	audio, err := c.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if audio.Extension != "wav" || audio.ContentType != "audio/wav" {
		t.Fatalf("unexpected audio %+v", audio)
	}
}

func TestEmptyAudioIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := NewCartesia(srv.URL, "k", "v", "m", "x", 5*time.Second).Synthesize(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for empty audio body")
	}
}

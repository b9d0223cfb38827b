package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenRouterGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		if r.Header.Get("HTTP-Referer") != "http://localhost:3000" || r.Header.Get("X-Title") == "" {
			t.Errorf("missing attribution headers")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Once upon a time.  "}}]}`))
	}))
	defer srv.Close()

	c := NewOpenRouter(srv.URL+"/", "key", "http://localhost:3000", Options{Model: "m", MaxTokens: 800, Temperature: 0.7}, 5*time.Second)
	text, err := c.Generate(context.Background(), "system", `User input: "hi"`)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Once upon a time." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "m" || got.MaxTokens != 800 || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestOpenRouterEmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"   "}}]}`))
	}))
	defer srv.Close()

	c := NewOpenRouter(srv.URL, "key", "", Options{Model: "m"}, 5*time.Second)
	if _, err := c.Generate(context.Background(), "", "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenRouterErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewOpenRouter(srv.URL, "key", "", Options{Model: "m"}, 5*time.Second)
	_, err := c.Generate(context.Background(), "", "x")
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected upstream error message, got %v", err)
	}
}

// Package tts synthesizes narration audio through hosted speech vendors.
package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Audio is a synthesized clip ready to upload.
type Audio struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Synthesizer turns text into speech.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
	Name() string
}

// VendorError carries a non-2xx vendor response.
type VendorError struct {
	Vendor string
	Status int
	Body   string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s api error: status %d: %s", e.Vendor, e.Status, e.Body)
}

func readAudio(vendor string, resp *http.Response) ([]byte, error) {
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, &VendorError{Vendor: vendor, Status: resp.StatusCode, Body: string(body)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read audio: %w", vendor, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s returned empty audio", vendor)
	}
	return data, nil
}

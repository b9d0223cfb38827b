package extract

import (
	"context"
	"errors"
	"testing"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

func TestSupported(t *testing.T) {
	cases := map[string]bool{
		"application/pdf":           true,
		"text/plain; charset=utf-8": true,
		ContentTypeDOCX:             true,
		"image/png":                 false,
		"":                          false,
	}
	for ct, want := range cases {
		if got := Supported(ct); got != want {
			t.Fatalf("Supported(%q) = %v, want %v", ct, got, want)
		}
	}
}

func TestRouterPlainText(t *testing.T) {
	r := NewRouter()
	got, err := r.Extract(context.Background(), []byte("  Photosynthesis:   light to sugar\r\n\r\n\r\n\r\nNext  "), "text/plain")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got != "Photosynthesis: light to sugar\n\nNext" {
		t.Fatalf("unexpected normalized text %q", got)
	}
}

func TestRouterRejectsUnsupported(t *testing.T) {
	if _, err := NewRouter().Extract(context.Background(), []byte("x"), "image/png"); !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
	}
}

func TestRouterEmptyTextIsError(t *testing.T) {
	r := &Router{pdf: stubExtractor{text: "   \n\n "}, conv: stubExtractor{}}
	if _, err := r.Extract(context.Background(), []byte("%PDF"), ContentTypePDF); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestRouterPropagatesExtractorError(t *testing.T) {
	boom := errors.New("corrupt")
	r := &Router{pdf: stubExtractor{}, conv: stubExtractor{err: boom}}
	if _, err := r.Extract(context.Background(), []byte("PK"), ContentTypeDOCX); !errors.Is(err, boom) {
		t.Fatalf("expected extractor error, got %v", err)
	}
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	if _, err := (PDFExtractor{}).Extract(context.Background(), []byte("not a pdf"), ContentTypePDF); err == nil {
		t.Fatal("expected error for invalid pdf bytes")
	}
}

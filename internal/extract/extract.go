// Package extract turns uploaded documents into plain text.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeText = "text/plain"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrNoText                 = errors.New("no text extracted from document")
)

// Extractor returns the plain text of a document.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

// Supported reports whether uploads of contentType are accepted.
func Supported(contentType string) bool {
	switch Normalize(contentType) {
	case ContentTypePDF, ContentTypeDOCX, ContentTypeText:
		return true
	}
	return false
}

// Normalize strips parameters such as "; charset=utf-8" and lowercases.
func Normalize(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Router dispatches to the PDF reader or the docconv converter.
type Router struct {
	pdf  Extractor
	conv Extractor
}

func NewRouter() *Router {
	return &Router{pdf: PDFExtractor{}, conv: DocconvExtractor{}}
}

func (r *Router) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	ct := Normalize(contentType)
	var (
		text string
		err  error
	)
	switch ct {
	case ContentTypePDF:
		text, err = r.pdf.Extract(ctx, data, ct)
	case ContentTypeText:
		text = string(data)
	case ContentTypeDOCX:
		text, err = r.conv.Extract(ctx, data, ct)
	default:
		return "", ErrUnsupportedContentType
	}
	if err != nil {
		return "", err
	}
	text = normalizeText(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\v]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

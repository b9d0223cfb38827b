package extract

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv"
)

// DocconvExtractor converts office documents with docconv.
type DocconvExtractor struct{}

func (DocconvExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, false)
	if err != nil {
		return "", fmt.Errorf("docconv: extraction failed for content type %q: %w", contentType, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.Body, nil
}

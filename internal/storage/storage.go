package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore stores uploaded documents and narration audio.
type ObjectStore interface {
	// Put uploads data under bucket/key and returns the object's public URL.
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}

// publicURL joins a base URL with the bucket and key using path style addressing.
func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

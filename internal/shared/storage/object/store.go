package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the contract for the resume blob lifecycle.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
}

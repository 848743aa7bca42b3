package storage

import (
	"context"
	"io"
)

// Service stores user avatars in remote object storage.
type Service interface {
	PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

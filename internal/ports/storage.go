package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	ObjectKey string
	// URL is the publicly reachable address of the stored object.
	URL  string
	Size int64
}

// StorageProvider is the upload capability used by the job executor.
// Implementations: supabase, s3, localfs.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
}

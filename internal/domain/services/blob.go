package services

import (
	"context"
	"io"
)

// BlobObject describes a stored blob
type BlobObject struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
}

// BlobStore is key-addressed object storage for media content
type BlobStore interface {
	// Put stores the content read from r under key, replacing any existing object
	Put(ctx context.Context, key string, r io.Reader) (*BlobObject, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// URL returns the retrieval URL for key
	URL(key string) string
}

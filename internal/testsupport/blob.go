package testsupport

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"cutroom/internal/domain/services"
	"cutroom/internal/storage/blobfs"
)

// ErrInjected is returned by FlakyBlobStore for keys configured to fail
var ErrInjected = errors.New("injected blob failure")

// FlakyBlobStore wraps an in-memory blob store and fails deletions of selected keys
type FlakyBlobStore struct {
	*blobfs.Store

	mu          sync.Mutex
	failDelete  map[string]bool
	failPutWith string // fail any Put whose key contains this substring
	deleted     []string
}

// NewFlakyBlobStore creates a memory-backed blob store with no failures configured
func NewFlakyBlobStore() *FlakyBlobStore {
	return &FlakyBlobStore{
		Store:      blobfs.NewMemStore("https://blobs.test"),
		failDelete: make(map[string]bool),
	}
}

var _ services.BlobStore = (*FlakyBlobStore)(nil)

// FailDelete makes Delete(key) return ErrInjected
func (f *FlakyBlobStore) FailDelete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete[key] = true
}

// FailPutsContaining makes Put fail for keys containing substr
func (f *FlakyBlobStore) FailPutsContaining(substr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPutWith = substr
}

func (f *FlakyBlobStore) Put(ctx context.Context, key string, r io.Reader) (*services.BlobObject, error) {
	f.mu.Lock()
	fail := f.failPutWith != "" && strings.Contains(key, f.failPutWith)
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.Store.Put(ctx, key, r)
}

func (f *FlakyBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failDelete[key]
	f.mu.Unlock()
	if fail {
		return &fs.PathError{Op: "delete", Path: key, Err: ErrInjected}
	}
	if err := f.Store.Delete(ctx, key); err != nil {
		return err
	}

	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	f.mu.Unlock()
	return nil
}

// Deleted returns the keys successfully deleted so far
func (f *FlakyBlobStore) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// MustExist reports whether key is present, treating lookup errors as absent
func (f *FlakyBlobStore) MustExist(key string) bool {
	ok, err := f.Exists(key)
	return err == nil && ok
}

// DiscardLogger returns a logger that writes nowhere
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

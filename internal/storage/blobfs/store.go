package blobfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"cutroom/internal/domain"
	"cutroom/internal/domain/services"
)

// Store is a key-addressed blob store over an afero filesystem.
// Keys are slash-separated relative paths; they map 1:1 onto files under the filesystem root.
type Store struct {
	fs      afero.Fs
	baseURL string
}

// New creates a store over fsys. baseURL prefixes keys when building retrieval URLs.
func New(fsys afero.Fs, baseURL string) *Store {
	return &Store{
		fs:      fsys,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewOSStore creates a store rooted at dir on the local disk
func NewOSStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", dir, err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

// NewMemStore creates an in-memory store
func NewMemStore(baseURL string) *Store {
	return New(afero.NewMemMapFs(), baseURL)
}

var _ services.BlobStore = (*Store)(nil)

func cleanKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty blob key", domain.ErrValidation)
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("%w: invalid blob key %q", domain.ErrValidation, key)
	}
	return cleaned, nil
}

// Put writes r to key. Content is staged in a sibling temp file and renamed into place.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (*services.BlobObject, error) {
	name, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := path.Dir(name)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	tmp := path.Join(dir, ".tmp-"+uuid.NewString())
	f, err := s.fs.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}

	n, copyErr := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(tmp)
		if copyErr != nil {
			return nil, fmt.Errorf("write blob %s: %w", key, copyErr)
		}
		return nil, fmt.Errorf("close blob %s: %w", key, closeErr)
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return nil, fmt.Errorf("commit blob %s: %w", key, err)
	}

	return &services.BlobObject{
		Key:       name,
		URL:       s.URL(name),
		SizeBytes: n,
	}, nil
}

// Delete removes key. A missing key is treated as already deleted.
func (s *Store) Delete(ctx context.Context, key string) error {
	name, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present
func (s *Store) Exists(key string) (bool, error) {
	name, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, name)
}

// URL returns the retrieval URL for key
func (s *Store) URL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.baseURL == "" {
		return "/" + strings.TrimPrefix(escaped, "/")
	}
	return s.baseURL + "/" + strings.TrimPrefix(escaped, "/")
}

// Handler serves stored blobs read-only by key; mount it under the path of the base URL
// with http.StripPrefix. Directories are never listed.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, err := cleanKey(strings.TrimPrefix(r.URL.Path, "/"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		f, err := s.fs.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}

// ctxReader stops a copy once the context is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

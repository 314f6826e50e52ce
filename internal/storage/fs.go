package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gompdf/scorepdf/internal/failure"
)

// FSStore is a BlobStore rooted at a local directory.
type FSStore struct{ base string }

// NewFSStore creates the base directory if needed.
func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, failure.IO("storage", err)
	}
	return &FSStore{base: base}, nil
}

// Base returns the root directory.
func (s *FSStore) Base() string { return s.base }

// Clean normalizes key and rejects keys that are empty or leave the store.
func Clean(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if key == "" || k == "" || k == "." || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

// Put writes r under key through a temporary file, so readers never observe
// a partial blob.
func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	k, err := Clean(key)
	if err != nil {
		return "", failure.Validation("storage put", err)
	}
	dst := filepath.Join(s.base, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", failure.IO("storage put", err)
	}
	f, err := os.CreateTemp(filepath.Dir(dst), ".blob-*")
	if err != nil {
		return "", failure.IO("storage put", err)
	}
	tmp := f.Name()
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", failure.IO("storage put", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", failure.IO("storage put", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", failure.IO("storage put", err)
	}
	return k, nil
}

// Get opens the blob stored under key.
func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	k, err := Clean(key)
	if err != nil {
		return nil, failure.Validation("storage get", err)
	}
	f, err := os.Open(filepath.Join(s.base, filepath.FromSlash(k)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}
	if err != nil {
		return nil, failure.IO("storage get", err)
	}
	return f, nil
}

// SignedURL returns a file:// URL; the filesystem store has nothing to sign.
func (s *FSStore) SignedURL(key string) (string, error) {
	k, err := Clean(key)
	if err != nil {
		return "", failure.Validation("storage url", err)
	}
	abs, err := filepath.Abs(filepath.Join(s.base, filepath.FromSlash(k)))
	if err != nil {
		return "", failure.IO("storage url", err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

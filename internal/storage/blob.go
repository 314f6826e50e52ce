// Package storage keeps generated artifacts: report PDFs and chart PNGs.
package storage

import (
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a key that was never stored.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidKey is returned for empty keys or keys escaping the store.
var ErrInvalidKey = errors.New("invalid blob key")

// BlobStore stores artifacts by slash-separated key.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

// Package storage persists picture bytes. Metadata stays authoritative: a
// blob whose picture row is gone is an orphan and fair game for the sweep.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore holds picture files for one gallery, keyed by their opaque
// filename.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Package store defines the object-store contract the transfer engine runs on.
// Backends live in sub-packages; registry maps a URL protocol to one of them.
package store

import (
	"context"
	"io"
)

type Store interface {
	// ObjectSize returns the size in bytes; missing objects yield utils.ErrObjectNotFound.
	ObjectSize(ctx context.Context, bucket, key string) (int64, error)
	// FetchRange streams the inclusive byte range [start, end].
	FetchRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64) error
	// ComposeObjects concatenates sources, in the given order, into dst.
	ComposeObjects(ctx context.Context, bucket, dst string, sources []string) error
	DeleteObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	// Close releases the client and its connections. The store is unusable
	// afterwards.
	Close() error
}

// Factory builds a new, independent Store. Download workers call it once each
// so no client is shared across workers. Callers close what they build.
type Factory func(ctx context.Context) (Store, error)

// Options are fixed at construction time.
type Options struct {
	// TransferChunkSize is the wire-level request size for ranged reads and the
	// part size for uploads. Zero leaves the backend default.
	TransferChunkSize int64
}

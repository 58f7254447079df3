// Package memstore is an in-memory store.Store with hooks for injecting
// faults. The engine tests run against it.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	chunk   int64
	opens   int

	// Optional hooks. A non-nil error return fails the call.
	FailRange   func(key string, start, end int64) error
	FailPut     func(key string) error
	FailCompose func(dst string, sources []string) error
	FailDelete  func(key string) error

	// PutDelay lets tests reorder upload completions.
	PutDelay func(key string) time.Duration

	ComposeCalls [][]string
	RangeCalls   int
	Closes       int
}

func New(opts store.Options) *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
		chunk:   opts.TransferChunkSize,
	}
}

// Factory hands out the same MemStore on every call so tests can inspect
// what the workers wrote.
func (m *MemStore) Factory() store.Factory {
	return func(context.Context) (store.Store, error) {
		m.mu.Lock()
		m.opens++
		m.mu.Unlock()
		return m, nil
	}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// Set stores data under bucket/key, replacing any existing object.
func (m *MemStore) Set(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey(bucket, key)] = bytes.Clone(data)
}

// Get returns a copy of the object and whether it exists.
func (m *MemStore) Get(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectKey(bucket, key)]
	return bytes.Clone(data), ok
}

func (m *MemStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if name, ok := strings.CutPrefix(k, bucket+"/"); ok {
			keys = append(keys, name)
		}
	}
	slices.Sort(keys)
	return keys
}

func (m *MemStore) ObjectSize(_ context.Context, bucket, key string) (int64, error) {
	data, ok := m.Get(bucket, key)
	if !ok {
		return 0, utils.NewObjectError(utils.ErrMetadata, "memstore/size", bucket, key, utils.ErrObjectNotFound)
	}
	return int64(len(data)), nil
}

func (m *MemStore) FetchRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	return store.NewChunkedReader(ctx, func(_ context.Context, s, e int64) (io.ReadCloser, error) {
		m.mu.Lock()
		m.RangeCalls++
		hook := m.FailRange
		data, ok := m.objects[objectKey(bucket, key)]
		m.mu.Unlock()
		if hook != nil {
			if err := hook(key, s, e); err != nil {
				return nil, utils.NewObjectError(utils.ErrTransfer, "memstore/range", bucket, key, err)
			}
		}
		if !ok {
			return nil, utils.NewObjectError(utils.ErrTransfer, "memstore/range", bucket, key, utils.ErrObjectNotFound)
		}
		if s < 0 || e >= int64(len(data)) {
			return nil, utils.NewObjectError(utils.ErrTransfer, "memstore/range", bucket, key,
				fmt.Errorf("%w: bytes=%d-%d of %d", utils.ErrInvalidRange, s, e, len(data)))
		}
		return io.NopCloser(bytes.NewReader(data[s : e+1])), nil
	}, start, end, m.chunk)
}

func (m *MemStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	if m.FailPut != nil {
		if err := m.FailPut(key); err != nil {
			return utils.NewObjectError(utils.ErrTransfer, "memstore/put", bucket, key, err)
		}
	}
	if m.PutDelay != nil {
		select {
		case <-time.After(m.PutDelay(key)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return utils.NewObjectError(utils.ErrTransfer, "memstore/put", bucket, key, err)
	}
	if size >= 0 && int64(len(data)) != size {
		return utils.NewObjectError(utils.ErrTransfer, "memstore/put", bucket, key,
			fmt.Errorf("body was %d bytes, expected %d", len(data), size))
	}
	m.Set(bucket, key, data)
	return nil
}

func (m *MemStore) ComposeObjects(_ context.Context, bucket, dst string, sources []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ComposeCalls = append(m.ComposeCalls, slices.Clone(sources))
	if m.FailCompose != nil {
		if err := m.FailCompose(dst, sources); err != nil {
			return utils.NewObjectError(utils.ErrCompose, "memstore/compose", bucket, dst, err)
		}
	}
	var buf bytes.Buffer
	for _, src := range sources {
		data, ok := m.objects[objectKey(bucket, src)]
		if !ok {
			return utils.NewObjectError(utils.ErrCompose, "memstore/compose", bucket, src, utils.ErrObjectNotFound)
		}
		buf.Write(data)
	}
	m.objects[objectKey(bucket, dst)] = buf.Bytes()
	return nil
}

func (m *MemStore) DeleteObject(_ context.Context, bucket, key string) error {
	if m.FailDelete != nil {
		if err := m.FailDelete(key); err != nil {
			return utils.NewObjectError(utils.ErrTransfer, "memstore/delete", bucket, key, err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey(bucket, key))
	return nil
}

func (m *MemStore) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	var out []string
	for _, k := range m.Keys(bucket) {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// Close only counts calls; the shared instance stays usable.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closes++
	return nil
}

// Opened reports how many factory calls are still unclosed.
func (m *MemStore) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens - m.Closes
}

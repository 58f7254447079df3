package gcsstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

func (s *GCSStore) ObjectSize(ctx context.Context, bucket, key string) (int64, error) {
	attrs, err := s.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return 0, wrapError(utils.ErrMetadata, "gcs/attrs", bucket, key, err)
	}
	return attrs.Size, nil
}

func (s *GCSStore) FetchRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	obj := s.client.Bucket(bucket).Object(key)
	return store.NewChunkedReader(ctx, func(ctx context.Context, start, end int64) (io.ReadCloser, error) {
		r, err := obj.NewRangeReader(ctx, start, end-start+1)
		if err != nil {
			return nil, wrapError(utils.ErrTransfer, "gcs/range", bucket, key, err)
		}
		return r, nil
	}, start, end, s.chunk)
}

func (s *GCSStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if s.chunk > 0 {
		w.ChunkSize = int(s.chunk)
	}
	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return wrapError(utils.ErrTransfer, "gcs/put", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return wrapError(utils.ErrTransfer, "gcs/put", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := s.client.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		return wrapError(utils.ErrTransfer, "gcs/delete", bucket, key, err)
	}
	return nil
}

func (s *GCSStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapError(utils.ErrTransfer, "gcs/list", bucket, prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

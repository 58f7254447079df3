package miniostore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

func (s *MinioStore) ObjectSize(ctx context.Context, bucket, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, wrapError(utils.ErrMetadata, "minio/stat", bucket, key, err)
	}
	return info.Size, nil
}

func (s *MinioStore) FetchRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	return store.NewChunkedReader(ctx, func(ctx context.Context, start, end int64) (io.ReadCloser, error) {
		opts := minio.GetObjectOptions{}
		if err := opts.SetRange(start, end); err != nil {
			return nil, utils.NewObjectError(utils.ErrTransfer, "minio/get", bucket, key, fmt.Errorf("%w: %v", utils.ErrInvalidRange, err))
		}
		obj, err := s.client.GetObject(ctx, bucket, key, opts)
		if err != nil {
			return nil, wrapError(utils.ErrTransfer, "minio/get", bucket, key, err)
		}
		// GetObject is lazy; Stat sends the request so errors surface here.
		if _, err := obj.Stat(); err != nil {
			obj.Close()
			return nil, wrapError(utils.ErrTransfer, "minio/get", bucket, key, err)
		}
		return obj, nil
	}, start, end, s.chunk)
}

func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	opts := minio.PutObjectOptions{ContentType: "application/octet-stream"}
	if s.chunk >= minPartSize {
		opts.PartSize = uint64(s.chunk)
	}
	if _, err := s.client.PutObject(ctx, bucket, key, body, size, opts); err != nil {
		return wrapError(utils.ErrTransfer, "minio/put", bucket, key, err)
	}
	return nil
}

// ComposeObjects uses server-side ComposeObject. Every source but the last
// must be at least 5 MiB.
func (s *MinioStore) ComposeObjects(ctx context.Context, bucket, dst string, sources []string) error {
	if len(sources) == 0 {
		return utils.NewObjectError(utils.ErrCompose, "minio/compose", bucket, dst, errors.New("no sources"))
	}
	srcs := make([]minio.CopySrcOptions, len(sources))
	for i, name := range sources {
		srcs[i] = minio.CopySrcOptions{Bucket: bucket, Object: name}
	}
	info, err := s.client.ComposeObject(ctx, minio.CopyDestOptions{Bucket: bucket, Object: dst}, srcs...)
	if err != nil {
		return wrapError(utils.ErrCompose, "minio/compose", bucket, dst, err)
	}
	log.Debug().Str("op", "minio/compose").Msgf("composed %d objects into minio://%s/%s (%d bytes)", len(srcs), bucket, dst, info.Size)
	return nil
}

func (s *MinioStore) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return wrapError(utils.ErrTransfer, "minio/delete", bucket, key, err)
	}
	return nil
}

func (s *MinioStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, wrapError(utils.ErrTransfer, "minio/list", bucket, prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

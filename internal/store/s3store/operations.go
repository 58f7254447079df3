package s3store

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

func (s *S3Store) ObjectSize(ctx context.Context, bucket, key string) (int64, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, wrapError(utils.ErrMetadata, "s3/head", bucket, key, err)
	}
	return aws.ToInt64(head.ContentLength), nil
}

func (s *S3Store) FetchRange(ctx context.Context, bucket, key string, start, end int64) (io.ReadCloser, error) {
	return store.NewChunkedReader(ctx, func(ctx context.Context, start, end int64) (io.ReadCloser, error) {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Range:  aws.String(rangeHeader(start, end)),
		})
		if err != nil {
			return nil, wrapError(utils.ErrTransfer, "s3/get "+rangeHeader(start, end), bucket, key, err)
		}
		return out.Body, nil
	}, start, end, s.chunk)
}

func (s *S3Store) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64) error {
	// The uploader sizes parts itself; size is only used for logging.
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	log.Debug().Str("op", "s3/put").Int64("bytes", size).Msgf("uploading s3://%s/%s", bucket, key)
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return wrapError(utils.ErrTransfer, "s3/put", bucket, key, err)
	}
	return nil
}

func (s *S3Store) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapError(utils.ErrTransfer, "s3/delete", bucket, key, err)
	}
	return nil
}

func (s *S3Store) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapError(utils.ErrTransfer, "s3/list", bucket, prefix, fmt.Errorf("error listing objects: %w", err))
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

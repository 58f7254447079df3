package s3store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/utils"
)

// maxParts is the S3 limit on parts in one multipart upload.
const maxParts = 10000

// ComposeObjects builds dst server-side as a multipart upload whose part N is
// a copy of sources[N-1]. S3 requires every part but the last to be at least
// 5 MiB.
func (s *S3Store) ComposeObjects(ctx context.Context, bucket, dst string, sources []string) error {
	if len(sources) == 0 {
		return utils.NewObjectError(utils.ErrCompose, "s3/compose", bucket, dst, errors.New("no sources"))
	}
	if len(sources) > maxParts {
		return utils.NewObjectError(utils.ErrCompose, "s3/compose", bucket, dst,
			fmt.Errorf("%d sources exceeds the %d part limit", len(sources), maxParts))
	}
	created, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(dst),
	})
	if err != nil {
		return wrapError(utils.ErrCompose, "s3/compose", bucket, dst, err)
	}
	uploadID := created.UploadId

	parts := make([]types.CompletedPart, 0, len(sources))
	for i, src := range sources {
		partNumber := int32(i + 1)
		out, err := s.client.UploadPartCopy(ctx, &s3.UploadPartCopyInput{
			Bucket:     aws.String(bucket),
			Key:        aws.String(dst),
			UploadId:   uploadID,
			PartNumber: aws.Int32(partNumber),
			CopySource: aws.String(copySource(bucket, src)),
		})
		if err != nil {
			s.abort(bucket, dst, uploadID)
			return wrapError(utils.ErrCompose, fmt.Sprintf("s3/compose part %d", partNumber), bucket, src, err)
		}
		var etag *string
		if out.CopyPartResult != nil {
			etag = out.CopyPartResult.ETag
		}
		parts = append(parts, types.CompletedPart{ETag: etag, PartNumber: aws.Int32(partNumber)})
	}

	_, err = s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(bucket),
		Key:             aws.String(dst),
		UploadId:        uploadID,
		MultipartUpload: &types.CompletedMultipartUpload{Parts: parts},
	})
	if err != nil {
		s.abort(bucket, dst, uploadID)
		return wrapError(utils.ErrCompose, "s3/compose complete", bucket, dst, err)
	}
	log.Debug().Str("op", "s3/compose").Msgf("composed %d parts into s3://%s/%s", len(parts), bucket, dst)
	return nil
}

// abort runs on a fresh context so a cancelled compose still cleans up.
func (s *S3Store) abort(bucket, key string, uploadID *string) {
	_, err := s.client.AbortMultipartUpload(context.Background(), &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: uploadID,
	})
	if err != nil {
		log.Warn().Str("op", "s3/compose").Msgf("error aborting multipart upload for s3://%s/%s: %v", bucket, key, err)
	}
}

// Package s3store implements store.Store on Amazon S3 and S3-compatible
// endpoints through aws-sdk-go-v2.
package s3store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

type S3Store struct {
	client     s3API
	uploader   *manager.Uploader
	httpClient *http.Client
	chunk      int64
}

// New loads the shared AWS config for cfg.S3Profile and builds a client.
func New(ctx context.Context, cfg utils.BackendConfig, opts store.Options) (*S3Store, error) {
	hc := utils.NewHTTPClient(cfg.HTTPClientConfig)
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryMode(aws.RetryModeAdaptive),
		config.WithHTTPClient(hc),
	}
	if cfg.S3Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.S3Profile))
	}
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.S3Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, utils.NewError(utils.ErrMetadata, "s3/initial", fmt.Errorf("error loading AWS config: %w", err))
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	log.Debug().Str("op", "s3/initial").Str("profile", cfg.S3Profile).Str("endpoint", cfg.S3Endpoint).Msg("S3 client created")
	s := newWithClient(client, opts)
	s.httpClient = hc
	return s, nil
}

func newWithClient(client s3API, opts store.Options) *S3Store {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		if opts.TransferChunkSize >= manager.MinUploadPartSize {
			u.PartSize = opts.TransferChunkSize
		}
		u.Concurrency = 1
	})
	return &S3Store{
		client:   client,
		uploader: uploader,
		chunk:    opts.TransferChunkSize,
	}
}

// Close releases idle connections; the SDK client itself holds nothing else.
func (s *S3Store) Close() error {
	if s.httpClient != nil {
		s.httpClient.CloseIdleConnections()
	}
	return nil
}

// Factory returns a store.Factory building an independent client per call.
func Factory(cfg utils.BackendConfig, opts store.Options) store.Factory {
	return func(ctx context.Context) (store.Store, error) {
		return New(ctx, cfg, opts)
	}
}

// Package miniostore implements store.Store on MinIO and other S3-compatible
// servers through minio-go.
package miniostore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

// minPartSize is the smallest part size minio-go accepts for multipart puts.
const minPartSize = 5 * utils.MiB

type MinioStore struct {
	client     *minio.Client
	httpClient *http.Client
	chunk      int64
}

// endpointHost strips a scheme from endpoint and reports whether it was https.
func endpointHost(endpoint string, secure bool) (string, bool) {
	if host, ok := strings.CutPrefix(endpoint, "https://"); ok {
		return strings.TrimSuffix(host, "/"), true
	}
	if host, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return strings.TrimSuffix(host, "/"), false
	}
	return strings.TrimSuffix(endpoint, "/"), secure
}

func New(_ context.Context, cfg utils.BackendConfig, opts store.Options) (*MinioStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, utils.NewError(utils.ErrAddressResolution, "minio/initial", errors.New("minio.endpoint is not set"))
	}
	host, secure := endpointHost(cfg.MinioEndpoint, cfg.MinioSecure)
	creds := credentials.NewEnvMinio()
	if cfg.MinioAccessKey != "" {
		creds = credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, "")
	}
	hc := utils.NewHTTPClient(cfg.HTTPClientConfig)
	client, err := minio.New(host, &minio.Options{
		Creds:     creds,
		Secure:    secure,
		Region:    cfg.MinioRegion,
		Transport: hc.Transport,
	})
	if err != nil {
		return nil, utils.NewError(utils.ErrAddressResolution, "minio/initial", fmt.Errorf("error creating MinIO client: %w", err))
	}
	log.Debug().Str("op", "minio/initial").Str("endpoint", host).Bool("secure", secure).Msg("MinIO client created")
	return &MinioStore{client: client, httpClient: hc, chunk: opts.TransferChunkSize}, nil
}

func (s *MinioStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func Factory(cfg utils.BackendConfig, opts store.Options) store.Factory {
	return func(ctx context.Context) (store.Store, error) {
		return New(ctx, cfg, opts)
	}
}

func wrapError(kind error, op, bucket, key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		err = fmt.Errorf("%w: %v", utils.ErrObjectNotFound, err)
	}
	return utils.NewObjectError(kind, op, bucket, key, err)
}

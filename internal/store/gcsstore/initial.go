// Package gcsstore implements store.Store on Google Cloud Storage.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

type GCSStore struct {
	client     *storage.Client
	httpClient *http.Client
	chunk      int64
}

// credentialOptions turns the gcs.* credential settings into client options.
// With none set the client falls back to application default credentials.
func credentialOptions(cfg utils.BackendConfig) []option.ClientOption {
	switch {
	case cfg.GCSAccessToken != "":
		return []option.ClientOption{option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GCSAccessToken}))}
	case cfg.GCSCredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.GCSCredentialsFile)}
	}
	return nil
}

// newHTTPClient wraps the tuned transport from utils.NewHTTPClient with
// credentials, since option.WithHTTPClient bypasses the client's own auth.
func newHTTPClient(ctx context.Context, cfg utils.BackendConfig) (*http.Client, error) {
	hc := utils.NewHTTPClient(cfg.HTTPClientConfig)
	authOpts := append(credentialOptions(cfg), option.WithScopes(storage.ScopeFullControl))
	transport, err := htransport.NewTransport(ctx, hc.Transport, authOpts...)
	if err != nil {
		return nil, err
	}
	hc.Transport = transport
	return hc, nil
}

func New(ctx context.Context, cfg utils.BackendConfig, opts store.Options) (*GCSStore, error) {
	hc, err := newHTTPClient(ctx, cfg)
	if err != nil {
		return nil, utils.NewError(utils.ErrMetadata, "gcs/initial", fmt.Errorf("error loading GCS credentials: %w", err))
	}
	clientOpts := []option.ClientOption{option.WithHTTPClient(hc)}
	if cfg.GCSEndpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.GCSEndpoint))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, utils.NewError(utils.ErrMetadata, "gcs/initial", fmt.Errorf("error creating GCS client: %w", err))
	}
	log.Debug().Str("op", "gcs/initial").Str("endpoint", cfg.GCSEndpoint).Int("max_conns", cfg.HTTPClientConfig.MaxConns).Msg("GCS client created")
	return &GCSStore{client: client, httpClient: hc, chunk: opts.TransferChunkSize}, nil
}

func (s *GCSStore) Close() error {
	err := s.client.Close()
	s.httpClient.CloseIdleConnections()
	return err
}

func Factory(cfg utils.BackendConfig, opts store.Options) store.Factory {
	return func(ctx context.Context) (store.Store, error) {
		return New(ctx, cfg, opts)
	}
}

func wrapError(kind error, op, bucket, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		err = fmt.Errorf("%w: %v", utils.ErrObjectNotFound, err)
	}
	return utils.NewObjectError(kind, op, bucket, key, err)
}

package miniostore

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

func TestEndpointHost(t *testing.T) {
	tests := []struct {
		endpoint   string
		secure     bool
		wantHost   string
		wantSecure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"localhost:9000", true, "localhost:9000", true},
		{"https://minio.example.com/", false, "minio.example.com", true},
		{"http://10.0.0.5:9000", true, "10.0.0.5:9000", false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure := endpointHost(tt.endpoint, tt.secure)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), utils.BackendConfig{}, store.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrAddressResolution)
}

func TestWrapError_MapsNotFound(t *testing.T) {
	err := wrapError(utils.ErrMetadata, "minio/stat", "b", "k", minio.ErrorResponse{Code: "NoSuchKey", Message: "missing"})
	assert.ErrorIs(t, err, utils.ErrMetadata)
	assert.ErrorIs(t, err, utils.ErrObjectNotFound)

	err = wrapError(utils.ErrTransfer, "minio/get", "b", "k", errors.New("connection reset"))
	assert.ErrorIs(t, err, utils.ErrTransfer)
	assert.NotErrorIs(t, err, utils.ErrObjectNotFound)
}

func TestNew_UsesTunedClientAndCloses(t *testing.T) {
	cfg := utils.BackendConfig{MinioEndpoint: "http://127.0.0.1:9000", HTTPClientConfig: utils.HTTPClientConfig{MaxConns: 12}}
	s, err := New(context.Background(), cfg, store.Options{TransferChunkSize: 8 * utils.MiB})
	require.NoError(t, err)
	require.NotNil(t, s.httpClient)
	assert.NoError(t, s.Close())
}

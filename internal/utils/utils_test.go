package utils

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDownloadConfig_Defaults(t *testing.T) {
	cfg, err := NewDownloadConfig(DownloadConfig{})
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Processes)
	assert.Equal(t, DefaultThreads, cfg.Threads)
	assert.Equal(t, DefaultIOBuffer, cfg.IOBuffer)
	assert.Equal(t, DefaultTransferChunk, cfg.TransferChunk)
	assert.Zero(t, cfg.MinSlice)
	assert.Zero(t, cfg.MaxSlice)
	assert.Equal(t, int64(16*MiB), cfg.TransferChunk)
	assert.Zero(t, DefaultTransferChunk%(256*KiB))
}

func TestDownloadConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  DownloadConfig
	}{
		{"negative processes", DownloadConfig{Processes: -1}},
		{"negative threads", DownloadConfig{Threads: -2}},
		{"min above max", DownloadConfig{MinSlice: 10 * MiB, MaxSlice: MiB}},
		{"negative slice size", DownloadConfig{SliceSize: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDownloadConfig(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewUploadConfig(t *testing.T) {
	cfg, err := NewUploadConfig(UploadConfig{})
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU()*4, cfg.Threads)
	assert.Equal(t, DefaultUploadSlice, cfg.SliceSize)

	_, err = NewUploadConfig(UploadConfig{SliceSize: -5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "4096", want: 4096},
		{in: "64MiB", want: 64 * MiB},
		{in: "1GiB", want: GiB},
		{in: "1GB", want: 1000 * 1000 * 1000},
		{in: " 128KiB ", want: 128 * KiB},
		{in: "", wantErr: true},
		{in: "lots", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByteSizeFlag(t *testing.T) {
	var b ByteSize
	assert.Equal(t, "", b.String())
	require.NoError(t, b.Set("16MiB"))
	assert.Equal(t, ByteSize(16*MiB), b)
	assert.Equal(t, "16 MiB", b.String())
	assert.Error(t, b.Set("-3"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "file.bin", BaseName("dir/sub/file.bin"))
	assert.Equal(t, "sub", BaseName("dir/sub/"))
	assert.Equal(t, "", BaseName(""))
}

func TestMbits(t *testing.T) {
	assert.Equal(t, int64(8), Mbits(1000*1000, time.Second))
	assert.Zero(t, Mbits(1000, 0))
}

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := NewObjectError(ErrMetadata, "s3/size", "bucket", "key", ErrObjectNotFound)
	assert.ErrorIs(t, err, ErrMetadata)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NotErrorIs(t, err, ErrTransfer)
	assert.Equal(t, "s3/size bucket/key: object not found", err.Error())

	var target *Error
	require.True(t, errors.As(errors.Join(errors.New("other"), err), &target))
	assert.Equal(t, "key", target.Key)

	assert.Equal(t, "cmd/config: boom", NewError(ErrInvalidConfig, "cmd/config", errors.New("boom")).Error())
}

func TestTransferTargetString(t *testing.T) {
	tt := TransferTarget{Protocol: "gs", Bucket: "b", Path: "dir/obj"}
	assert.Equal(t, "gs://b/dir/obj", tt.String())
	assert.Equal(t, int64(10), DownloadJob{Start: 5, End: 14}.Length())
	assert.Equal(t, int64(0), DownloadJob{Start: 0, End: -1}.Length())
}

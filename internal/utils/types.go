package utils

import (
	"fmt"
	"time"
)

// TransferTarget is the resolved address of one object plus its local file.
type TransferTarget struct {
	Protocol string
	Bucket   string
	Path     string
	Filename string
}

func (t TransferTarget) String() string {
	return fmt.Sprintf("%s://%s/%s", t.Protocol, t.Bucket, t.Path)
}

// DownloadJob is one slice of an object. Start and End are inclusive offsets.
type DownloadJob struct {
	Target      TransferTarget
	SliceNumber int
	Start       int64
	End         int64
}

func (j DownloadJob) Length() int64 {
	return j.End - j.Start + 1
}

// SubRange is one piece of a DownloadJob handled by a single inner thread.
type SubRange struct {
	Start int64
	End   int64
}

func (r SubRange) Length() int64 {
	return r.End - r.Start + 1
}

// UploadChunk is one sealed piece of an upload stream.
type UploadChunk struct {
	Seq  int
	Data []byte
}

func (c UploadChunk) Size() int64 {
	return int64(len(c.Data))
}

type SliceMode string

const (
	SliceModeUnsliced SliceMode = "unsliced"
	SliceModeMinBound SliceMode = "min-bound"
	SliceModeMaxBound SliceMode = "max-bound"
	SliceModeEven     SliceMode = "even"
	SliceModeOverride SliceMode = "override"
)

// SliceSizePlan records the bounds used to pick a slice size and the result.
type SliceSizePlan struct {
	Min    int64
	Max    int64
	Chosen int64
	Mode   SliceMode
}

// DownloadConfig carries every download tunable. It is built once per command
// and handed by value to each worker.
type DownloadConfig struct {
	Processes     int
	Threads       int
	IOBuffer      int
	MinSlice      int64
	MaxSlice      int64
	SliceSize     int64
	TransferChunk int64
}

// UploadConfig carries every stream upload tunable.
type UploadConfig struct {
	Threads       int
	SliceSize     int64
	TransferChunk int64
}

// BackendConfig holds per-store connection settings read from config or env.
type BackendConfig struct {
	S3Profile  string
	S3Region   string
	S3Endpoint string

	GCSCredentialsFile string
	GCSAccessToken     string
	GCSEndpoint        string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
	MinioRegion    string

	HTTPClientConfig HTTPClientConfig
}

type HTTPClientConfig struct {
	Timeout        time.Duration
	KATimeout      time.Duration
	MaxConns       int
	HighThreadMode bool // larger socket buffers for many parallel ranges
}

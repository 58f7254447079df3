package utils

import (
	"regexp"
	"runtime"
)

const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

const (
	// GCS transfer chunks must be multiples of 256KiB; all defaults below are.
	transferChunkUnit = 256 * KiB

	DefaultMinDownloadSlice = transferChunkUnit * 4 * 64   // 64MiB
	DefaultMaxDownloadSlice = transferChunkUnit * 4 * 1024 // 1GiB
	DefaultTransferChunk    = transferChunkUnit * 4 * 16   // 16MiB
	DefaultUploadSlice      = 16 * MiB
	DefaultIOBuffer         = 128 * 1024
	DefaultThreads          = 1
)

// SliceSuffix separates an object name from the sequence number of its upload slices.
const SliceSuffix = ".slice"

var SliceSeqRegex = regexp.MustCompile(`\.slice(\d+)$`)

var SupportedProtocols = []string{"gs", "s3", "minio"}

func DefaultProcesses() int {
	return runtime.NumCPU()
}

func DefaultUploadThreads() int {
	return runtime.NumCPU() * 4
}

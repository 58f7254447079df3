package utils

import "fmt"

// NewDownloadConfig fills unset (zero) fields with defaults. Slice bounds stay
// zero when unset so the slice planner can scale its built-in bounds by Threads.
func NewDownloadConfig(cfg DownloadConfig) (DownloadConfig, error) {
	if cfg.Processes == 0 {
		cfg.Processes = DefaultProcesses()
	}
	if cfg.Threads == 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.IOBuffer == 0 {
		cfg.IOBuffer = DefaultIOBuffer
	}
	if cfg.TransferChunk == 0 {
		cfg.TransferChunk = DefaultTransferChunk
	}
	return cfg, cfg.Validate()
}

func (c DownloadConfig) Validate() error {
	if c.Processes < 1 {
		return fmt.Errorf("%w: processes must be at least 1, got %d", ErrInvalidConfig, c.Processes)
	}
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidConfig, c.Threads)
	}
	if c.IOBuffer < 1 {
		return fmt.Errorf("%w: io buffer must be positive, got %d", ErrInvalidConfig, c.IOBuffer)
	}
	if c.MinSlice < 0 || c.MaxSlice < 0 || c.SliceSize < 0 || c.TransferChunk < 0 {
		return fmt.Errorf("%w: sizes must not be negative", ErrInvalidConfig)
	}
	if c.MinSlice > 0 && c.MaxSlice > 0 && c.MinSlice > c.MaxSlice {
		return fmt.Errorf("%w: min slice %d exceeds max slice %d", ErrInvalidConfig, c.MinSlice, c.MaxSlice)
	}
	return nil
}

func NewUploadConfig(cfg UploadConfig) (UploadConfig, error) {
	if cfg.Threads == 0 {
		cfg.Threads = DefaultUploadThreads()
	}
	if cfg.SliceSize == 0 {
		cfg.SliceSize = DefaultUploadSlice
	}
	if cfg.TransferChunk == 0 {
		cfg.TransferChunk = DefaultTransferChunk
	}
	return cfg, cfg.Validate()
}

func (c UploadConfig) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", ErrInvalidConfig, c.Threads)
	}
	if c.SliceSize < 1 {
		return fmt.Errorf("%w: slice size must be positive, got %d", ErrInvalidConfig, c.SliceSize)
	}
	if c.TransferChunk < 0 {
		return fmt.Errorf("%w: transfer chunk must not be negative", ErrInvalidConfig)
	}
	return nil
}

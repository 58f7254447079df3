package utils

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
)

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatSpeed(bytes int64, elapsed float64) string {
	if elapsed == 0 {
		return "0 B/s"
	}
	bps := float64(bytes) / elapsed
	formatted := FormatBytes(uint64(bps))
	return formatted[:len(formatted)-1] + "B/s" // Slice off "B" and add "B/s"
}

// Mbits returns the throughput in megabits per second, truncated.
func Mbits(bytes int64, elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	return int64(float64(bytes) / elapsed.Seconds() * 8 / 1000 / 1000)
}

// ParseSize accepts plain byte counts or human units such as 64MiB or 1GB.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int64(n), nil
}

// ByteSize is a pflag.Value for size flags; zero means unset.
type ByteSize int64

var _ pflag.Value = (*ByteSize)(nil)

func (b *ByteSize) String() string {
	if *b == 0 {
		return ""
	}
	return humanize.IBytes(uint64(*b))
}

func (b *ByteSize) Set(s string) error {
	n, err := ParseSize(s)
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

func (b *ByteSize) Type() string {
	return "bytes"
}

// BaseName returns the last element of an object path, ignoring a trailing slash.
func BaseName(objectPath string) string {
	base := path.Base(strings.TrimSuffix(objectPath, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

package slicing

import (
	"fmt"

	"github.com/tanq16/slicer/internal/utils"
)

// BuildJobs cuts [0, objectSize) into consecutive slices of sliceSize bytes,
// numbered from 1 in byte order. The last slice takes whatever is left.
//
// A zero-byte object still gets one job, spanning [0, -1], so the caller ends
// up with an empty output file rather than no work at all.
func BuildJobs(target utils.TransferTarget, sliceSize, objectSize int64) ([]utils.DownloadJob, error) {
	if objectSize < 0 {
		return nil, fmt.Errorf("%w: negative object size %d", utils.ErrInvalidRange, objectSize)
	}
	if objectSize == 0 {
		return []utils.DownloadJob{{Target: target, SliceNumber: 1, Start: 0, End: -1}}, nil
	}
	if sliceSize <= 0 {
		return nil, fmt.Errorf("%w: slice size must be positive, got %d", utils.ErrInvalidRange, sliceSize)
	}

	count := (objectSize + sliceSize - 1) / sliceSize
	jobs := make([]utils.DownloadJob, 0, count)
	sliceNumber := 1
	for start := int64(0); start < objectSize; start += sliceSize {
		jobs = append(jobs, utils.DownloadJob{
			Target:      target,
			SliceNumber: sliceNumber,
			Start:       start,
			End:         min(start+sliceSize, objectSize) - 1,
		})
		sliceNumber++
	}
	return jobs, nil
}

// Package slicing turns object sizes into slice sizes and byte-range jobs.
// Everything here is pure: equal inputs always give equal outputs.
package slicing

import (
	"fmt"

	"github.com/tanq16/slicer/internal/utils"
)

// PlanSlices picks the slice size for an object of objectSize bytes spread over
// workers. Zero overrides fall back to the built-in bounds scaled by multiplier.
func PlanSlices(objectSize int64, workers int, minOverride, maxOverride int64, multiplier int) utils.SliceSizePlan {
	workers = max(workers, 1)
	multiplier = max(multiplier, 1)

	plan := utils.SliceSizePlan{
		Min: utils.DefaultMinDownloadSlice * int64(multiplier),
		Max: utils.DefaultMaxDownloadSlice * int64(multiplier),
	}
	if minOverride > 0 {
		plan.Min = minOverride
	}
	if maxOverride > 0 {
		plan.Max = maxOverride
	}

	if objectSize < plan.Min {
		plan.Chosen, plan.Mode = objectSize, utils.SliceModeUnsliced
		return plan
	}
	evenShare := objectSize / int64(workers)
	switch {
	case evenShare < plan.Min:
		plan.Chosen, plan.Mode = plan.Min, utils.SliceModeMinBound
	case evenShare > plan.Max:
		plan.Chosen, plan.Mode = plan.Max, utils.SliceModeMaxBound
	default:
		plan.Chosen, plan.Mode = evenShare, utils.SliceModeEven
	}
	return plan
}

// ChooseSliceSize returns only the slice size PlanSlices settles on.
func ChooseSliceSize(objectSize int64, workers int, minOverride, maxOverride int64, multiplier int) int64 {
	return PlanSlices(objectSize, workers, minOverride, maxOverride, multiplier).Chosen
}

// PlanForConfig applies a download config to PlanSlices. A fixed SliceSize in
// the config bypasses the calculation.
func PlanForConfig(objectSize int64, cfg utils.DownloadConfig) utils.SliceSizePlan {
	plan := PlanSlices(objectSize, cfg.Processes, cfg.MinSlice, cfg.MaxSlice, cfg.Threads)
	if cfg.SliceSize > 0 {
		plan.Chosen, plan.Mode = cfg.SliceSize, utils.SliceModeOverride
	}
	return plan
}

// PartitionRange splits the inclusive range [start, end] into contiguous
// sub-ranges of floor(length/subdivisions) bytes; the last one takes the
// remainder. Subdivisions are clamped to the range length so no sub-range is
// ever empty.
func PartitionRange(start, end int64, subdivisions int) ([]utils.SubRange, error) {
	if subdivisions < 1 {
		return nil, fmt.Errorf("%w: subdivisions must be at least 1, got %d", utils.ErrInvalidRange, subdivisions)
	}
	if end < start {
		return nil, fmt.Errorf("%w: end %d before start %d", utils.ErrInvalidRange, end, start)
	}
	length := end - start + 1
	n := min(int64(subdivisions), length)
	size := length / n

	ranges := make([]utils.SubRange, 0, n)
	cursor := start
	for i := int64(0); i < n; i++ {
		finish := cursor + size - 1
		if i == n-1 {
			finish = end
		}
		ranges = append(ranges, utils.SubRange{Start: cursor, End: finish})
		cursor = finish + 1
	}
	return ranges, nil
}

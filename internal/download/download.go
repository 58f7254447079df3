// Package download implements sliced parallel download of one object into a
// local file.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/scheduler"
	"github.com/tanq16/slicer/internal/slicing"
	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

type Report struct {
	Target     utils.TransferTarget
	ObjectSize int64
	Plan       utils.SliceSizePlan
	Jobs       int
	Outcomes   []scheduler.Outcome
	Elapsed    time.Duration
}

func (r *Report) Failed() []scheduler.Outcome {
	return scheduler.Failed(r.Outcomes)
}

// Bytes is the total written to the local file, including partial slices.
func (r *Report) Bytes() int64 {
	var total int64
	for _, o := range r.Outcomes {
		total += o.Bytes
	}
	return total
}

// Throughput is in megabits per second.
func (r *Report) Throughput() int64 {
	return utils.Mbits(r.Bytes(), r.Elapsed)
}

// Run downloads target into target.Filename. On slice failures the partially
// written file is left in place and a TransferError lists every failed slice.
func Run(ctx context.Context, cfg utils.DownloadConfig, target utils.TransferTarget, factory store.Factory, rep output.Reporter) (*Report, error) {
	started := time.Now()
	ctx, _ = utils.WithTransfer(ctx, target)
	logger := zerolog.Ctx(ctx).With().Str("op", "download").Logger()

	meta, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	size, err := meta.ObjectSize(ctx, target.Bucket, target.Path)
	if closeErr := meta.Close(); closeErr != nil {
		logger.Warn().Msgf("error closing metadata store: %v", closeErr)
	}
	if err != nil {
		if !errors.Is(err, utils.ErrMetadata) {
			err = utils.NewObjectError(utils.ErrMetadata, "download/size", target.Bucket, target.Path, err)
		}
		return nil, err
	}

	plan := slicing.PlanForConfig(size, cfg)
	jobs, err := slicing.BuildJobs(target, plan.Chosen, size)
	if err != nil {
		return nil, utils.NewObjectError(utils.ErrTransfer, "download/jobs", target.Bucket, target.Path, err)
	}
	logger.Info().Int64("size", size).Str("mode", string(plan.Mode)).Int64("min_slice", plan.Min).Int64("max_slice", plan.Max).
		Msgf("Slice size %s, %d slices, %d processes x %d threads", utils.FormatBytes(uint64(plan.Chosen)), len(jobs), cfg.Processes, cfg.Threads)

	file, err := createOutput(target.Filename, size)
	if err != nil {
		return nil, utils.NewObjectError(utils.ErrTransfer, "download/create "+target.Filename, target.Bucket, target.Path, err)
	}

	ids := make([]int, len(jobs))
	for i, job := range jobs {
		ids[i] = rep.Register(fmt.Sprintf("%s slice %d (%s)", filepath.Base(target.Filename), job.SliceNumber, utils.FormatBytes(uint64(max(0, job.Length())))))
	}
	outcomes := scheduler.Run(ctx, jobs, cfg.Processes, factory, func(ctx context.Context, st store.Store, job utils.DownloadJob) (int64, error) {
		id := ids[job.SliceNumber-1]
		rep.SetMessage(id, fmt.Sprintf("Downloading slice %d", job.SliceNumber))
		n, err := runJob(ctx, cfg, file, st, job, rep, id)
		if err != nil {
			rep.ReportError(id, err)
			return n, err
		}
		rep.Complete(id, fmt.Sprintf("Slice %d done (%s)", job.SliceNumber, utils.FormatBytes(uint64(n))))
		return n, nil
	})

	report := &Report{
		Target:     target,
		ObjectSize: size,
		Plan:       plan,
		Jobs:       len(jobs),
		Outcomes:   outcomes,
		Elapsed:    time.Since(started),
	}
	var flushErr error
	if err := closeOutputFile(file); err != nil {
		flushErr = fmt.Errorf("error flushing %s: %w", target.Filename, err)
		logger.Error().Msg(flushErr.Error())
	}

	if failed := report.Failed(); len(failed) > 0 {
		errs := make([]error, 0, len(failed)+1)
		for _, o := range failed {
			errs = append(errs, o.Err)
		}
		logger.Error().Msgf("%d of %d slices failed, %s left incomplete", len(failed), len(jobs), target.Filename)
		return report, utils.NewObjectError(utils.ErrTransfer, "download", target.Bucket, target.Path,
			fmt.Errorf("%d of %d slices failed: %w", len(failed), len(jobs), errors.Join(append(errs, flushErr)...)))
	}
	if flushErr != nil {
		return report, utils.NewObjectError(utils.ErrTransfer, "download", target.Bucket, target.Path, flushErr)
	}
	logger.Info().Msgf("Downloaded %s in %.1fs (%d Mbits per second)",
		utils.FormatBytes(uint64(report.Bytes())), report.Elapsed.Seconds(), report.Throughput())
	return report, nil
}

// outputFile is the local destination every slice writes into.
type outputFile interface {
	io.WriterAt
	Sync() error
	Close() error
}

var createOutput = createOutputFile

// closeOutputFile flushes f to disk and closes it. Either failure means the
// download may not be on disk.
func closeOutputFile(f outputFile) error {
	return errors.Join(f.Sync(), f.Close())
}

// createOutputFile creates path and its parent directories and sizes it to
// size bytes so slices can be written at their offsets in any order.
func createOutputFile(path string, size int64) (outputFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, fmt.Errorf("error sizing file: %w", err)
	}
	return file, nil
}

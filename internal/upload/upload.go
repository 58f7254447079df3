package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

type Report struct {
	Target         utils.TransferTarget
	Slices         int
	Bytes          int64
	Outcomes       []SliceOutcome
	LeftoverSlices int
	Elapsed        time.Duration
}

// Throughput is in megabits per second.
func (r *Report) Throughput() int64 {
	return utils.Mbits(r.Bytes, r.Elapsed)
}

// StreamUpload reads r in cfg.SliceSize chunks, uploads each as a slice object
// on at most cfg.Threads concurrent uploads, and composes them into target.
// Reading pauses while every upload slot is busy. All upload threads share one
// store.
func StreamUpload(ctx context.Context, cfg utils.UploadConfig, target utils.TransferTarget, factory store.Factory, r io.Reader, rep output.Reporter) (*Report, error) {
	started := time.Now()
	ctx, _ = utils.WithTransfer(ctx, target)
	logger := zerolog.Ctx(ctx).With().Str("op", "upload").Logger()

	st, err := factory(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	report := &Report{Target: target}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(cfg.Threads)
	chunker := NewChunker(cfg.SliceSize)
	count, readErr := chunker.Run(ctx, r, func(chunk utils.UploadChunk) error {
		name := SliceName(target.Path, chunk.Seq)
		id := rep.Register(fmt.Sprintf("slice %d (%s)", chunk.Seq, utils.FormatBytes(uint64(chunk.Size()))))
		g.Go(func() error {
			defer chunker.Release(chunk)
			outcome := uploadSlice(ctx, st, target.Bucket, name, chunk, rep, id)
			mu.Lock()
			report.Outcomes = append(report.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
		return nil
	})
	g.Wait()

	report.Slices = count
	for _, o := range report.Outcomes {
		if o.Err == nil {
			report.Bytes += o.Bytes
		}
	}
	if readErr != nil {
		report.LeftoverSlices = uploadedSlices(report.Outcomes)
		report.Elapsed = time.Since(started)
		logger.Error().Msgf("input failed, %d uploaded slices left under %s", report.LeftoverSlices, SlicePrefix(target.Path))
		return report, utils.NewObjectError(utils.ErrTransfer, "upload/read", target.Bucket, target.Path,
			fmt.Errorf("error reading input after %d slices: %w", count, readErr))
	}

	if count == 0 {
		logger.Info().Msg("Input was empty, writing an empty object")
		if err := st.PutObject(ctx, target.Bucket, target.Path, bytes.NewReader(nil), 0); err != nil {
			return report, err
		}
		report.Elapsed = time.Since(started)
		return report, nil
	}

	report.LeftoverSlices, err = Finalizer{Store: st}.Finalize(ctx, target, report.Outcomes)
	report.Elapsed = time.Since(started)
	if err != nil {
		return report, err
	}
	logger.Info().Msgf("Uploaded %s in %d slices in %.1fs (%d Mbits per second)",
		utils.FormatBytes(uint64(report.Bytes)), count, report.Elapsed.Seconds(), report.Throughput())
	return report, nil
}

func uploadSlice(ctx context.Context, st store.Store, bucket, name string, chunk utils.UploadChunk, rep output.Reporter, id int) SliceOutcome {
	logger := zerolog.Ctx(ctx).With().Str("op", "upload/slice").Int("slice", chunk.Seq).Logger()
	rep.SetMessage(id, fmt.Sprintf("Uploading %s", name))
	start := time.Now()
	err := st.PutObject(ctx, bucket, name, bytes.NewReader(chunk.Data), chunk.Size())
	elapsed := time.Since(start)
	if err != nil {
		rep.ReportError(id, err)
		logger.Error().Msgf("error uploading %s: %v", name, err)
		return SliceOutcome{Seq: chunk.Seq, Name: name, Err: err}
	}
	rep.Progress(id, chunk.Size(), chunk.Size())
	rep.Complete(id, fmt.Sprintf("Slice %d uploaded", chunk.Seq))
	logger.Info().Msgf("Slice #%d: %.1fs elapsed for %d bytes (%d Mbits per second)",
		chunk.Seq, elapsed.Seconds(), chunk.Size(), utils.Mbits(chunk.Size(), elapsed))
	return SliceOutcome{Seq: chunk.Seq, Name: name, Bytes: chunk.Size()}
}

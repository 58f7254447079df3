package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/slicing"
	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

// sliceProgress counts bytes written across all sub-ranges of one slice.
type sliceProgress struct {
	rep   output.Reporter
	id    int
	total int64
	done  atomic.Int64
}

type progressWriter struct {
	w io.Writer
	p *sliceProgress
}

func (pw progressWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.p.rep.Progress(pw.p.id, pw.p.done.Add(int64(n)), pw.p.total)
	return n, err
}

// runJob downloads one slice into dst. The slice is split into cfg.Threads
// sub-ranges fetched concurrently over st; each writes its own disjoint span
// of dst. Every sub-range runs to completion and all failures are returned.
func runJob(ctx context.Context, cfg utils.DownloadConfig, dst io.WriterAt, st store.Store, job utils.DownloadJob, rep output.Reporter, id int) (int64, error) {
	logger := zerolog.Ctx(ctx).With().Str("op", "download/worker").Int("slice", job.SliceNumber).Logger()
	if job.Length() <= 0 {
		logger.Debug().Msg("empty slice, nothing to fetch")
		return 0, nil
	}
	ranges, err := slicing.PartitionRange(job.Start, job.End, cfg.Threads)
	if err != nil {
		return 0, utils.NewObjectError(utils.ErrTransfer, sliceOp(job), job.Target.Bucket, job.Target.Path, err)
	}

	progress := &sliceProgress{rep: rep, id: id, total: job.Length()}
	errs := make([]error, len(ranges))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(cfg.Threads)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			errs[i] = fetchSubRange(ctx, cfg, dst, st, job.Target, r, progress)
			return nil
		})
	}
	g.Wait()

	elapsed := time.Since(start)
	written := progress.done.Load()
	logger.Info().Msgf("Slice #%d: %.1fs elapsed for %d bytes (%d Mbits per second)",
		job.SliceNumber, elapsed.Seconds(), written, utils.Mbits(written, elapsed))

	if err := errors.Join(errs...); err != nil {
		return written, utils.NewObjectError(utils.ErrTransfer, sliceOp(job), job.Target.Bucket, job.Target.Path, err)
	}
	return written, nil
}

func fetchSubRange(ctx context.Context, cfg utils.DownloadConfig, dst io.WriterAt, st store.Store, target utils.TransferTarget, r utils.SubRange, progress *sliceProgress) error {
	body, err := st.FetchRange(ctx, target.Bucket, target.Path, r.Start, r.End)
	if err != nil {
		return fmt.Errorf("bytes=%d-%d: %w", r.Start, r.End, err)
	}
	defer body.Close()

	w := progressWriter{w: io.NewOffsetWriter(dst, r.Start), p: progress}
	n, err := io.CopyBuffer(w, io.LimitReader(body, r.Length()), make([]byte, cfg.IOBuffer))
	if err != nil {
		return fmt.Errorf("bytes=%d-%d: %w", r.Start, r.End, err)
	}
	if n != r.Length() {
		return fmt.Errorf("bytes=%d-%d: short read, got %d of %d bytes: %w", r.Start, r.End, n, r.Length(), io.ErrUnexpectedEOF)
	}
	return nil
}

func sliceOp(job utils.DownloadJob) string {
	return fmt.Sprintf("slice %d bytes=%d-%d", job.SliceNumber, job.Start, job.End)
}

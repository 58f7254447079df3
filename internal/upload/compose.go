package upload

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

// SliceOutcome is the result of uploading one slice object.
type SliceOutcome struct {
	Seq   int
	Name  string
	Bytes int64
	Err   error
}

type Finalizer struct {
	Store store.Store
}

// Finalize composes the uploaded slices of target in sequence order and then
// deletes them. Nothing is composed when any upload failed, and the slices that
// did upload are reported as leftover. A failed compose leaves every slice in
// place. Delete failures are logged and counted but do not fail the upload.
func (f Finalizer) Finalize(ctx context.Context, target utils.TransferTarget, outcomes []SliceOutcome) (leftover int, err error) {
	logger := zerolog.Ctx(ctx).With().Str("op", "upload/compose").Logger()

	var uploadErrs []error
	for _, o := range outcomes {
		if o.Err != nil {
			uploadErrs = append(uploadErrs, fmt.Errorf("slice %d: %w", o.Seq, o.Err))
		}
	}
	if len(uploadErrs) > 0 {
		leftover = uploadedSlices(outcomes)
		logger.Error().Msgf("not composing, %d uploaded slices left under %s", leftover, SlicePrefix(target.Path))
		return leftover, utils.NewObjectError(utils.ErrTransfer, "upload", target.Bucket, target.Path,
			fmt.Errorf("%d of %d slices failed, not composing: %w", len(uploadErrs), len(outcomes), errors.Join(uploadErrs...)))
	}

	names, err := orderedNames(outcomes)
	if err != nil {
		return 0, utils.NewObjectError(utils.ErrCompose, "upload/compose", target.Bucket, target.Path, err)
	}
	logger.Info().Msgf("Composing %d slices into %s", len(names), target.String())
	if err := f.Store.ComposeObjects(ctx, target.Bucket, target.Path, names); err != nil {
		if !errors.Is(err, utils.ErrCompose) {
			err = utils.NewObjectError(utils.ErrCompose, "upload/compose", target.Bucket, target.Path, err)
		}
		logger.Error().Msgf("compose failed, %d slices left under %s: %v", len(names), SlicePrefix(target.Path), err)
		return len(names), err
	}

	for _, name := range names {
		if err := f.Store.DeleteObject(ctx, target.Bucket, name); err != nil {
			leftover++
			logger.Warn().Msgf("error deleting slice %s: %v", name, err)
		}
	}
	return leftover, nil
}

// uploadedSlices counts the slice objects that reached the store.
func uploadedSlices(outcomes []SliceOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// orderedNames sorts slice names by the sequence number in the name.
func orderedNames(outcomes []SliceOutcome) ([]string, error) {
	type seqName struct {
		seq  int
		name string
	}
	parsed := make([]seqName, len(outcomes))
	for i, o := range outcomes {
		seq, err := ParseSliceSeq(o.Name)
		if err != nil {
			return nil, err
		}
		parsed[i] = seqName{seq, o.Name}
	}
	slices.SortFunc(parsed, func(a, b seqName) int { return a.seq - b.seq })
	names := make([]string, len(parsed))
	for i, p := range parsed {
		if i > 0 && p.seq == parsed[i-1].seq {
			return nil, fmt.Errorf("duplicate slice %d", p.seq)
		}
		names[i] = p.name
	}
	return names, nil
}

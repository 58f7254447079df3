package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

// Clean deletes the slice objects a failed upload to target left behind. It
// keeps going past delete failures and returns how many objects it removed.
func Clean(ctx context.Context, st store.Store, target utils.TransferTarget) (int, error) {
	names, err := st.ListObjects(ctx, target.Bucket, SlicePrefix(target.Path))
	if err != nil {
		return 0, err
	}
	deleted := 0
	var errs []error
	for _, name := range names {
		if !IsSliceObject(target.Path, name) {
			continue
		}
		if err := st.DeleteObject(ctx, target.Bucket, name); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
		log.Debug().Str("op", "upload/clean").Msgf("deleted %s://%s/%s", target.Protocol, target.Bucket, name)
	}
	if len(errs) > 0 {
		return deleted, utils.NewObjectError(utils.ErrTransfer, "upload/clean", target.Bucket, target.Path,
			fmt.Errorf("%d slices not deleted: %w", len(errs), errors.Join(errs...)))
	}
	return deleted, nil
}

package gcsstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/utils"
)

// maxComposeSources is the GCS limit on sources in one compose request.
const maxComposeSources = 32

type composeStep struct {
	dst     string
	sources []string
}

// planCompose lays out the compose requests needed to concatenate sources into
// dst when there are more than fanIn of them. Groups of fanIn are composed into
// intermediates named <dst>.slice-compose-<level>-<n>; the last step always
// writes dst. Intermediates share the slice prefix so clean picks up leftovers.
func planCompose(dst string, sources []string, fanIn int) (steps []composeStep, intermediates []string) {
	current := sources
	for level := 1; len(current) > fanIn; level++ {
		var next []string
		for n, i := 1, 0; i < len(current); n, i = n+1, i+fanIn {
			group := current[i:min(i+fanIn, len(current))]
			if len(group) == 1 {
				next = append(next, group[0])
				continue
			}
			name := fmt.Sprintf("%s%s-compose-%d-%d", dst, utils.SliceSuffix, level, n)
			steps = append(steps, composeStep{dst: name, sources: group})
			intermediates = append(intermediates, name)
			next = append(next, name)
		}
		current = next
	}
	steps = append(steps, composeStep{dst: dst, sources: current})
	return steps, intermediates
}

func (s *GCSStore) ComposeObjects(ctx context.Context, bucket, dst string, sources []string) error {
	if len(sources) == 0 {
		return utils.NewObjectError(utils.ErrCompose, "gcs/compose", bucket, dst, errors.New("no sources"))
	}
	steps, intermediates := planCompose(dst, sources, maxComposeSources)
	defer s.deleteIntermediates(bucket, intermediates)

	b := s.client.Bucket(bucket)
	for _, step := range steps {
		srcs := make([]*storage.ObjectHandle, len(step.sources))
		for i, name := range step.sources {
			srcs[i] = b.Object(name)
		}
		if _, err := b.Object(step.dst).ComposerFrom(srcs...).Run(ctx); err != nil {
			return wrapError(utils.ErrCompose, "gcs/compose", bucket, step.dst, err)
		}
		log.Debug().Str("op", "gcs/compose").Msgf("composed %d objects into gs://%s/%s", len(srcs), bucket, step.dst)
	}
	return nil
}

func (s *GCSStore) deleteIntermediates(bucket string, names []string) {
	for _, name := range names {
		err := s.client.Bucket(bucket).Object(name).Delete(context.Background())
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			log.Warn().Str("op", "gcs/compose").Msgf("error deleting intermediate gs://%s/%s: %v", bucket, name, err)
		}
	}
}

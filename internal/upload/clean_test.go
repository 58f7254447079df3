package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/store/memstore"
	"github.com/tanq16/slicer/internal/utils"
)

func TestIsSliceObject(t *testing.T) {
	assert.True(t, IsSliceObject("a/obj", "a/obj.slice000001"))
	assert.True(t, IsSliceObject("a/obj", "a/obj.slice-compose-2-14"))
	assert.False(t, IsSliceObject("a/obj", "a/obj"))
	assert.False(t, IsSliceObject("a/obj", "a/obj.slicer.txt"))
	assert.False(t, IsSliceObject("a/obj", "a/obj2.slice000001"))
}

func TestClean_RemovesOnlySlices(t *testing.T) {
	mem := memstore.New(store.Options{})
	for _, key := range []string{"obj", "obj.slice000001", "obj.slice000002", "obj.slice-compose-1-1", "obj.slicer.txt", "other.slice000001"} {
		mem.Set("bucket", key, []byte("x"))
	}
	target := utils.TransferTarget{Protocol: "gs", Bucket: "bucket", Path: "obj"}

	deleted, err := Clean(context.Background(), mem, target)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, []string{"obj", "obj.slicer.txt", "other.slice000001"}, mem.Keys("bucket"))
}

func TestClean_ContinuesPastDeleteFailure(t *testing.T) {
	mem := memstore.New(store.Options{})
	mem.Set("bucket", "obj.slice000001", nil)
	mem.Set("bucket", "obj.slice000002", nil)
	mem.FailDelete = func(key string) error {
		if key == "obj.slice000001" {
			return errors.New("denied")
		}
		return nil
	}

	deleted, err := Clean(context.Background(), mem, utils.TransferTarget{Bucket: "bucket", Path: "obj"})
	assert.ErrorIs(t, err, utils.ErrTransfer)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"obj.slice000001"}, mem.Keys("bucket"))
}

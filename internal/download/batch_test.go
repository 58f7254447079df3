package download

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/store/memstore"
	"github.com/tanq16/slicer/internal/utils"
)

func TestReadEntries_Lines(t *testing.T) {
	input := `
# nightly exports
gs://bucket/a.bin
s3://bucket/dir/b.bin   /tmp/b.out

minio://bucket/c.bin
`
	entries, err := ReadEntries(strings.NewReader(input), false)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{URL: "gs://bucket/a.bin"},
		{URL: "s3://bucket/dir/b.bin", FilePath: "/tmp/b.out"},
		{URL: "minio://bucket/c.bin"},
	}, entries)
}

func TestReadEntries_TooManyFields(t *testing.T) {
	_, err := ReadEntries(strings.NewReader("gs://b/a x y\n"), false)
	assert.ErrorContains(t, err, "line 1")
}

func TestReadEntries_YAML(t *testing.T) {
	input := `
- link: gs://bucket/a.bin
  op: out/a.bin
- link: s3://bucket/b.bin
`
	entries, err := ReadEntries(strings.NewReader(input), true)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{URL: "gs://bucket/a.bin", FilePath: "out/a.bin"},
		{URL: "s3://bucket/b.bin"},
	}, entries)

	_, err = ReadEntries(strings.NewReader("- op: somewhere\n"), true)
	assert.ErrorContains(t, err, "missing link")
}

func TestReadEntries_Empty(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader(""), true)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunBatch_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	mem := memstore.New(store.Options{})
	mem.Set("bucket", "good.bin", testData(300))
	resolve := func(protocol string) (store.Factory, error) {
		if protocol != "gs" {
			return nil, utils.NewError(utils.ErrAddressResolution, "resolve", assert.AnError)
		}
		return mem.Factory(), nil
	}
	entries := []Entry{
		{URL: "gs://bucket/missing.bin", FilePath: filepath.Join(dir, "missing.bin")},
		{URL: "not-a-url"},
		{URL: "gs://bucket/good.bin", FilePath: filepath.Join(dir, "good.bin")},
	}
	cfg := utils.DownloadConfig{Processes: 2, Threads: 2, IOBuffer: 32, SliceSize: 128}

	results, err := RunBatch(context.Background(), cfg, entries, resolve, output.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrMetadata)
	assert.ErrorIs(t, err, utils.ErrAddressResolution)
	assert.Contains(t, err.Error(), "2 of 3")

	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
	assert.Equal(t, 3, results[2].Report.Jobs)

	got, err := os.ReadFile(filepath.Join(dir, "good.bin"))
	require.NoError(t, err)
	assert.Equal(t, testData(300), got)
}

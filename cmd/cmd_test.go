package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeFlagNames(t *testing.T) {
	tests := []struct {
		command string
		flags   map[string]string
	}{
		{"download", map[string]string{"processes": "p", "threads": "t", "io_buffer": "i", "min_slice": "n", "max_slice": "m", "slice_size": "s", "transfer_chunk": "c"}},
		{"download2", map[string]string{"processes": "p", "threads": "t", "io_buffer": "i", "transfer_chunk": "c"}},
		{"stream_upload", map[string]string{"threads": "t", "slice_size": "s", "transfer_chunk": "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.command})
			require.NoError(t, err)
			for name, short := range tt.flags {
				f := cmd.Flags().Lookup(name)
				require.NotNil(t, f, "flag %s", name)
				assert.Equal(t, short, f.Shorthand)
			}
		})
	}
}

func TestStreamUploadSliceSizeFlag(t *testing.T) {
	cmd := newStreamUploadCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--slice_size", "32MiB"}))
	assert.Equal(t, "32 MiB", cmd.Flags().Lookup("slice_size").Value.String())
	assert.Nil(t, cmd.Flags().Lookup("slice-size"))
}

func TestBackendConfigSizesPool(t *testing.T) {
	cfg := backendConfig(16)
	assert.Equal(t, 16, cfg.HTTPClientConfig.MaxConns)
	assert.True(t, cfg.HTTPClientConfig.HighThreadMode)

	cfg = backendConfig(0)
	assert.Equal(t, 1, cfg.HTTPClientConfig.MaxConns)
	assert.False(t, cfg.HTTPClientConfig.HighThreadMode)
}

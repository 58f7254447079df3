package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanq16/slicer/internal/download"
	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/target"
	"github.com/tanq16/slicer/internal/utils"
)

// downloadFlags are shared by download and download2.
type downloadFlags struct {
	processes     int
	threads       int
	ioBuffer      utils.ByteSize
	minSlice      utils.ByteSize
	maxSlice      utils.ByteSize
	sliceSize     utils.ByteSize
	transferChunk utils.ByteSize
}

func (f *downloadFlags) register(cmd *cobra.Command, withSlicing bool) {
	cmd.Flags().IntVarP(&f.processes, "processes", "p", 0, "Number of parallel slice workers (default: number of CPUs)")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", utils.DefaultThreads, "Threads per slice; default slice limits are multiplied by this")
	cmd.Flags().VarP(&f.ioBuffer, "io_buffer", "i", "Size of each write to disk (default 128KiB)")
	cmd.Flags().VarP(&f.transferChunk, "transfer_chunk", "c", "Size of each ranged request on the wire (default 16MiB)")
	if withSlicing {
		cmd.Flags().VarP(&f.minSlice, "min_slice", "n", "Minimum slice size (default 64MiB x threads)")
		cmd.Flags().VarP(&f.maxSlice, "max_slice", "m", "Maximum slice size (default 1GiB x threads)")
		cmd.Flags().VarP(&f.sliceSize, "slice_size", "s", "Fixed slice size, overriding the slice calculation")
	}
}

func (f *downloadFlags) config() (utils.DownloadConfig, error) {
	return utils.NewDownloadConfig(utils.DownloadConfig{
		Processes:     f.processes,
		Threads:       f.threads,
		IOBuffer:      int(f.ioBuffer),
		MinSlice:      int64(f.minSlice),
		MaxSlice:      int64(f.maxSlice),
		SliceSize:     int64(f.sliceSize),
		TransferChunk: int64(f.transferChunk),
	})
}

func newDownloadCmd() *cobra.Command {
	var flags downloadFlags
	cmd := &cobra.Command{
		Use:   "download OBJECT_PATH [FILE_PATH]",
		Short: "Download one object as fast as possible",
		Long: `Download one object in parallel byte-range slices.

OBJECT_PATH is a full object URL such as gs://bucket/path/file. FILE_PATH defaults to
the object's base name in the current directory.

Examples:
  slicer download gs://bucket/data/archive.tar
  slicer download s3://bucket/big.bin /mnt/scratch/big.bin -p 16 -t 4
  slicer download minio://bucket/image.raw -s 256MiB`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			filePath := ""
			if len(args) > 1 {
				filePath = args[1]
			}
			t, err := target.Parse(args[0], filePath)
			if err != nil {
				fail("cmd/download", err)
			}
			cfg, err := flags.config()
			if err != nil {
				fail("cmd/download", err)
			}
			factory, err := resolveFactory(t.Protocol, cfg.Processes*cfg.Threads, cfg.TransferChunk)
			if err != nil {
				fail("cmd/download", err)
			}

			mgr := output.NewManager()
			mgr.StartDisplay()
			report, err := download.Run(cmd.Context(), cfg, t, factory, mgr)
			mgr.StopDisplay()
			if err != nil {
				fail("cmd/download", err)
			}
			output.PrintSuccess(fmt.Sprintf("Downloaded %s to %s in %.1fs (%d Mbits per second)",
				t.String(), t.Filename, report.Elapsed.Seconds(), report.Throughput()))
		},
	}
	flags.register(cmd, true)
	return cmd
}

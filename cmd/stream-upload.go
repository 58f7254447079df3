package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/target"
	"github.com/tanq16/slicer/internal/upload"
	"github.com/tanq16/slicer/internal/utils"
)

func newStreamUploadCmd() *cobra.Command {
	var (
		threads       int
		sliceSize     utils.ByteSize
		transferChunk utils.ByteSize
	)
	cmd := &cobra.Command{
		Use:   "stream_upload OBJECT_PATH [FILE_PATH]",
		Short: "Upload a stream as parallel slices composed into one object",
		Long: `Read FILE_PATH (or stdin) in slices, upload the slices in parallel and compose them
into OBJECT_PATH. Slices are named OBJECT_PATH.sliceNNNNNN and removed after a
successful compose. If a slice upload, the input or the compose fails, the uploaded
slices are left in place; remove them with "slicer clean OBJECT_PATH".

Examples:
  tar cf - ./data | slicer stream_upload gs://bucket/data.tar
  slicer stream_upload s3://bucket/disk.img ./disk.img -t 32 -s 64MiB`,
		Args: cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := target.Parse(args[0], "")
			if err != nil {
				fail("cmd/stream_upload", err)
			}
			cfg, err := utils.NewUploadConfig(utils.UploadConfig{
				Threads:       threads,
				SliceSize:     int64(sliceSize),
				TransferChunk: int64(transferChunk),
			})
			if err != nil {
				fail("cmd/stream_upload", err)
			}
			var src io.Reader = os.Stdin
			if len(args) > 1 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					fail("cmd/stream_upload", fmt.Errorf("error opening input: %w", err))
				}
				defer f.Close()
				src = f
			}
			factory, err := resolveFactory(t.Protocol, cfg.Threads, cfg.TransferChunk)
			if err != nil {
				fail("cmd/stream_upload", err)
			}

			mgr := output.NewManager()
			mgr.StartDisplay()
			report, err := upload.StreamUpload(cmd.Context(), cfg, t, factory, src, mgr)
			mgr.StopDisplay()
			if report != nil && report.LeftoverSlices > 0 {
				output.PrintWarning(fmt.Sprintf("%d slice objects remain; run: slicer clean %s", report.LeftoverSlices, t.String()))
			}
			if err != nil {
				fail("cmd/stream_upload", err)
			}
			output.PrintSuccess(fmt.Sprintf("Uploaded %s to %s in %.1fs (%d Mbits per second)",
				utils.FormatBytes(uint64(report.Bytes)), t.String(), report.Elapsed.Seconds(), report.Throughput()))
		},
	}
	cmd.Flags().IntVarP(&threads, "threads", "t", utils.DefaultUploadThreads(), "Number of concurrent slice uploads")
	cmd.Flags().VarP(&sliceSize, "slice_size", "s", "Size of each upload slice (default 16MiB)")
	cmd.Flags().VarP(&transferChunk, "transfer_chunk", "c", "Part or chunk size used when sending each slice (default 16MiB)")
	return cmd
}

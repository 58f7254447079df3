package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tanq16/slicer/internal/download"
	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/store"
)

func newDownload2Cmd() *cobra.Command {
	var flags downloadFlags
	cmd := &cobra.Command{
		Use:   "download2 INPUT_LINES",
		Short: "Download a list of objects one after another",
		Long: `Download every object listed in INPUT_LINES, one at a time, each with full slicing.

INPUT_LINES is a file or - for stdin. Each line holds an object URL and an optional
file path. A .yaml or .yml file is read as a list of {link, op} entries instead.
A failed object does not stop the rest; the command exits non-zero if any failed.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := readBatchInput(args[0])
			if err != nil {
				fail("cmd/download2", err)
			}
			if len(entries) == 0 {
				output.PrintWarning("No objects to download")
				return
			}
			cfg, err := flags.config()
			if err != nil {
				fail("cmd/download2", err)
			}
			resolve := func(protocol string) (store.Factory, error) {
				return resolveFactory(protocol, cfg.Processes*cfg.Threads, cfg.TransferChunk)
			}

			mgr := output.NewManager()
			mgr.StartDisplay()
			results, err := download.RunBatch(cmd.Context(), cfg, entries, resolve, mgr)
			mgr.StopDisplay()
			for _, r := range results {
				if r.Err == nil {
					output.PrintDetail(fmt.Sprintf("%s -> %s (%d Mbits per second)", r.Entry.URL, r.Report.Target.Filename, r.Report.Throughput()))
				}
			}
			if err != nil {
				fail("cmd/download2", err)
			}
			output.PrintSuccess(fmt.Sprintf("Downloaded %d objects", len(results)))
		},
	}
	flags.register(cmd, false)
	return cmd
}

func readBatchInput(path string) ([]download.Entry, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error opening input: %w", err)
		}
		defer f.Close()
		r = f
	}
	ext := strings.ToLower(filepath.Ext(path))
	return download.ReadEntries(r, ext == ".yaml" || ext == ".yml")
}

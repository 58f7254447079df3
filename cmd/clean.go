package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/target"
	"github.com/tanq16/slicer/internal/upload"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean OBJECT_PATH",
		Short: "Delete slice objects left behind by a failed stream upload",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := target.Parse(args[0], "")
			if err != nil {
				fail("cmd/clean", err)
			}
			factory, err := resolveFactory(t.Protocol, 1, 0)
			if err != nil {
				fail("cmd/clean", err)
			}
			st, err := factory(cmd.Context())
			if err != nil {
				fail("cmd/clean", err)
			}
			deleted, err := upload.Clean(cmd.Context(), st, t)
			st.Close()
			if err != nil {
				fail("cmd/clean", err)
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d slice objects for %s", deleted, t.String()))
		},
	}
}

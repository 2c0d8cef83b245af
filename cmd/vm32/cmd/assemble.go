package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/kvasm/vm32/compiler"
	"github.com/kvasm/vm32/internal/diagnostics"
	"github.com/spf13/cobra"
)

var (
	assembleOut     string
	assembleVerbose bool
)

var assembleCmd = &cobra.Command{
	Use:     "assemble <file>",
	GroupID: "pipeline",
	Short:   "Assemble a .vasm source file into a flat binary image",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAssemble(cmd, args[0])
	},
}

func init() {
	assembleCmd.Flags().StringVarP(&assembleOut, "out", "o", "", "output path (default: <file> with .bin extension)")
	assembleCmd.Flags().BoolVarP(&assembleVerbose, "verbose", "v", false, "print a trace of pipeline stages alongside the result")
}

func runAssemble(cmd *cobra.Command, path string) error {
	dctx := diagnostics.New(path)

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	dctx.SetPhase("read")
	dctx.Info(dctx.Loc(0, len(source)), fmt.Sprintf("read %d bytes from %s", len(source), path))

	dctx.SetPhase("assemble")
	img, diags := compiler.Assemble(string(source))
	if len(diags) > 0 {
		for _, d := range diags {
			dctx.Error(dctx.Loc(d.Span.Start, d.Span.End), d.String())
		}
		printTrace(cmd, dctx, assembleVerbose)
		for _, d := range diags {
			cmd.PrintErrln(d.String())
		}
		return fmt.Errorf("assembly failed with %d diagnostic(s)", len(diags))
	}

	out := assembleOut
	if out == "" {
		out = strings.TrimSuffix(path, ".vasm") + ".bin"
	}
	if err := os.WriteFile(out, img.Bytes, 0o644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	dctx.SetPhase("write")
	dctx.Info(dctx.Loc(0, len(img.Bytes)), fmt.Sprintf("wrote %d bytes to %s", len(img.Bytes), out))

	printTrace(cmd, dctx, assembleVerbose)
	cmd.Printf("wrote %d bytes to %s\n", len(img.Bytes), out)
	return nil
}

// printTrace dumps every entry recorded on dctx, in phase order, when
// verbose output was requested.
func printTrace(cmd *cobra.Command, dctx *diagnostics.Context, verbose bool) {
	if !verbose {
		return
	}
	for _, e := range dctx.Entries() {
		cmd.PrintErrln(e.String())
	}
}

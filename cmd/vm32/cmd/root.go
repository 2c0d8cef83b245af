package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vm32",
	Short: "vm32 assembler and interpreter",
	Long:  `vm32 assembles and runs programs for a 32-bit register-based virtual CPU.`,
}

// Execute runs the root command and exits with status 1 on any error cobra
// itself surfaces (bad flags, unknown subcommand).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "pipeline", Title: "Pipeline commands:"},
		&cobra.Group{ID: "tools", Title: "Tool commands:"},
	)

	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(disasmCmd)
}

package cmd

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/kvasm/vm32/vm"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:     "disasm <file>",
	GroupID: "tools",
	Short:   "Disassemble a flat binary image back to assembly-like text",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDisasm(cmd, args[0])
	},
}

func runDisasm(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	if len(data)%4 != 0 {
		return fmt.Errorf("image length %d is not a multiple of 4", len(data))
	}

	for offset := 0; offset < len(data); offset += 4 {
		word := binary.LittleEndian.Uint32(data[offset:])
		cmd.Printf("%08x: %s\n", offset, vm.Disassemble(word))
	}
	return nil
}

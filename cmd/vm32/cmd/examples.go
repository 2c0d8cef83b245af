package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var examplesCmd = &cobra.Command{
	Use:     "examples <dir>",
	GroupID: "tools",
	Short:   "Write the canonical example programs to a directory",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExamples(cmd, args[0])
	},
}

// exampleProgram names and sources every concrete end-to-end scenario
// program, written out verbatim as a standalone .vasm file.
type exampleProgram struct {
	name   string
	source string
}

var examplePrograms = []exampleProgram{
	{"halt", "syscalli 0\n"},
	{"add-immediate-constants", "li $r2, 100\nli $r0, 32\nadd $r0, $r2\nsyscalli 0\n"},
	{"print", "li $r1, %s\nli $r2, 14\nsyscalli 1\nli $r1, 0\nsyscalli 0\ns:\n.str \"Hello, world!\\n\"\n"},
	{"call-and-return-address", "ji 4\njil 16\nli $r1, 0\nsyscalli 0\nli $r0, 32\ncpy $r3, $ra\nli $r1, 0\nsyscalli 0\n"},
	{"divisor-zero", "li $r0, 20\nli $r1, 0\ndiv $r0, $r1\nsyscalli 0\n"},
	{"expression-folding", ".i32 (1 + 2) * 3\n"},
	{"operator-precedence", ".i32 1 + 2 * 3\n.i32 4 * 2 + 3\n"},
}

func runExamples(cmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, ex := range examplePrograms {
		path := filepath.Join(dir, ex.name+".vasm")
		if err := os.WriteFile(path, []byte(ex.source), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		cmd.Printf("wrote %s\n", path)
	}
	return nil
}

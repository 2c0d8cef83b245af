package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kvasm/vm32/compiler"
	"github.com/kvasm/vm32/internal/diagnostics"
	"github.com/kvasm/vm32/vm"
	"github.com/spf13/cobra"
)

var (
	runJSON    bool
	runTrace   bool
	runConsole bool
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:     "run <file>",
	GroupID: "pipeline",
	Short:   "Assemble and execute a .vasm source file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the final register snapshot and exit code as JSON")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print one disassembled line per executed instruction")
	runCmd.Flags().BoolVar(&runConsole, "console", false, "serve SYSCALLI 1 output over a TCP loopback console instead of stdout")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print a trace of pipeline stages alongside the result")
}

type runReport struct {
	ExitCode   uint32        `json:"exit_code"`
	Registers  vm.Snapshot   `json:"registers"`
	Statistics vm.Statistics `json:"statistics"`
}

func runRun(cmd *cobra.Command, path string) error {
	dctx := diagnostics.New(path)

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	dctx.SetPhase("assemble")
	img, diags := compiler.Assemble(string(source))
	if len(diags) > 0 {
		for _, d := range diags {
			dctx.Error(dctx.Loc(d.Span.Start, d.Span.End), d.String())
		}
		printTrace(cmd, dctx, runVerbose)
		for _, d := range diags {
			cmd.PrintErrln(d.String())
		}
		return fmt.Errorf("assembly failed with %d diagnostic(s)", len(diags))
	}
	dctx.Info(dctx.Loc(0, len(img.Bytes)), fmt.Sprintf("assembled %d bytes", len(img.Bytes)))

	var sink vm.StdoutSink = os.Stdout
	var console *vm.SerialConsole
	if runConsole {
		console, err = vm.ListenSerialConsole()
		if err != nil {
			return fmt.Errorf("opening console: %w", err)
		}
		defer console.Close()
		cmd.Printf("console listening on %s, waiting for a client to attach...\n", console.Addr())
		if err := console.Accept(); err != nil {
			return fmt.Errorf("accepting console connection: %w", err)
		}
		sink = console
	}

	m := vm.New(vm.DefaultMemorySize, sink)
	if !m.LoadImage(img.Bytes) {
		return fmt.Errorf("image of %d bytes does not fit in %d bytes of memory", len(img.Bytes), vm.DefaultMemorySize)
	}

	var trace vm.TraceFunc
	if runTrace {
		trace = func(ip uint32, word uint32) {
			cmd.PrintErrf("%08x: %s\n", ip, vm.Disassemble(word))
		}
	}

	dctx.SetPhase("execute")
	var exitCode uint32
	var snap vm.Snapshot
	if trace != nil {
		exitCode, snap = m.ExecuteTraced(0, trace)
	} else {
		exitCode, snap = m.Execute(0)
	}
	dctx.Info(dctx.Loc(0, 0), fmt.Sprintf("exit code %d after %d instruction(s)", exitCode, m.Statistics().InstructionsExecuted))
	printTrace(cmd, dctx, runVerbose)

	if runJSON {
		report := runReport{ExitCode: exitCode, Registers: snap, Statistics: m.Statistics()}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	cmd.Printf("exit code: %d\n", exitCode)
	return nil
}

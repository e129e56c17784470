// orionppvm loads and executes an Orion++ binary module, or validates it
// without running any instructions.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/orionpp/orionpp/ir"
	"github.com/orionpp/orionpp/vm"
)

var (
	debug           bool
	strict          bool
	verbose         bool
	validateOnly    bool
	validationLevel int
)

func main() {
	root := &cobra.Command{
		Use:   "orionppvm FILE",
		Short: "run or validate an Orion++ binary module",
		Args:  cobra.ExactArgs(1),
		RunE:  runVM,
	}
	root.Flags().BoolVarP(&debug, "debug", "d", false, "enter the interactive debugger before execution")
	root.Flags().BoolVarP(&strict, "strict", "s", false, "escalate relaxed checks (e.g. LEA) to faults")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log load/execute diagnostics to stderr")
	root.Flags().BoolVar(&validateOnly, "validate-only", false, "check the module without executing it")
	root.Flags().IntVar(&validationLevel, "validation-level", 3, "depth of --validate-only checking (0-3)")
	root.SilenceUsage = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runVM(cmd *cobra.Command, args []string) error {
	path := args[0]
	if validationLevel < 0 || validationLevel > 3 {
		return fmt.Errorf("--validation-level must be 0-3, got %d", validationLevel)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if validateOnly {
		return validate(f, path)
	}

	logger := log.New(os.Stderr, "orionppvm: ", 0)
	opts := []vm.Option{WithConditionalLogger(verbose, logger)}
	if strict {
		opts = append(opts, vm.WithStrict())
	}
	machine := vm.New(opts...)

	if err := machine.Load(f); err != nil {
		return err
	}
	if err := machine.Prepare(); err != nil {
		return err
	}

	if debug {
		dbg := vm.NewDebugger(machine, bufio.NewReader(os.Stdin), os.Stdout)
		if err := dbg.Run(); err != nil {
			return err
		}
	} else if err := machine.Execute(); err != nil {
		return err
	}

	if machine.State() == vm.StateFaulted {
		fmt.Fprintf(os.Stderr, "fault: %v\n", machine.FaultError())
		os.Exit(2)
	}

	if rv, ok := machine.ReturnValue(); ok {
		fmt.Printf("exit: %d\n", rv.Num)
	}
	return nil
}

// WithConditionalLogger returns a no-op option when verbose logging was
// not requested, so the caller always has a uniform option to append.
func WithConditionalLogger(on bool, l *log.Logger) vm.Option {
	if !on {
		return func(*vm.VM) {}
	}
	return vm.WithLogger(l)
}

// validate re-reads path at the requested --validation-level strictness
// without ever executing an instruction.
//
//	0 - magic and version only
//	1 - full binary decode (string table, instruction framing)
//	2 - structural validation (types, opcode/feature pairing)
//	3 - label resolution against a prepared VM (default)
func validate(f *os.File, path string) error {
	if validationLevel == 0 {
		version, err := ir.ReadHeader(f)
		if err != nil {
			fmt.Printf("INVALID: %s - %v\n", path, err)
			os.Exit(1)
		}
		if err := ir.CheckVersion(version); err != nil {
			fmt.Printf("INVALID: %s - %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("VALID: %s\n", path)
		return nil
	}

	m, err := ir.Read(f)
	if err != nil {
		fmt.Printf("INVALID: %s - %v\n", path, err)
		os.Exit(1)
	}
	if validationLevel == 1 {
		fmt.Printf("VALID: %s\n", path)
		return nil
	}

	if err := m.Validate(); err != nil {
		fmt.Printf("INVALID: %s - %v\n", path, err)
		os.Exit(1)
	}
	if validationLevel == 2 {
		fmt.Printf("VALID: %s\n", path)
		return nil
	}

	machine := vm.New()
	if err := machine.LoadModule(m); err != nil {
		fmt.Printf("INVALID: %s - %v\n", path, err)
		os.Exit(1)
	}
	if err := machine.Prepare(); err != nil {
		fmt.Printf("INVALID: %s - %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("VALID: %s\n", path)
	return nil
}

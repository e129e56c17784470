// oriondump inspects Orion object files and Orion++ binaries: header,
// sections, symbols, function table, and instruction disassembly, in
// human, JSON, or XML form.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orionpp/orionpp/dump"
	"github.com/orionpp/orionpp/ir"
	"github.com/orionpp/orionpp/object"
)

var (
	showHeader  bool
	showSecs    bool
	showSyms    bool
	showFuncs   bool
	showInstrs  bool
	showStats   bool
	validate    bool
	hexDump     bool
	formatName  string
	showAll     bool
	verbose     bool
	showVersion bool
)

const oriondumpVersion = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "oriondump FILE...",
		Short: "inspect Orion object files and Orion++ binaries",
		Args:  cobra.MinimumNArgs(0),
		RunE:  runDump,
	}
	flags := root.Flags()
	flags.BoolVarP(&showHeader, "header", "H", false, "print the header")
	flags.BoolVarP(&showSecs, "sections", "s", false, "print sections")
	flags.BoolVarP(&showSyms, "symbols", "S", false, "print symbols")
	flags.BoolVarP(&showFuncs, "functions", "f", false, "print the function table")
	flags.BoolVarP(&showInstrs, "instructions", "i", false, "print instruction disassembly")
	flags.BoolVarP(&showStats, "stats", "t", false, "print summary statistics")
	flags.BoolVarP(&validate, "validate", "c", false, "validate only, printing VALID/INVALID")
	flags.BoolVarP(&hexDump, "hex", "x", false, "include a hex dump of each section's bytes")
	flags.StringVarP(&formatName, "format", "o", "human", "output format: human, json, xml")
	flags.BoolVarP(&showAll, "all", "a", true, "print everything (default)")
	flags.BoolVarP(&verbose, "verbose", "V", false, "verbose diagnostics")
	flags.BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	root.SilenceUsage = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runDump(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Println("oriondump", oriondumpVersion)
		return nil
	}
	if len(args) == 0 {
		return cmd.Usage()
	}

	var format dump.OutputFormat
	switch formatName {
	case "human":
		format = dump.FormatHuman
	case "json":
		format = dump.FormatJSON
	case "xml":
		format = dump.FormatXML
	default:
		return fmt.Errorf("unknown format %q (want human, json, or xml)", formatName)
	}

	// Any individual section flag narrows the report; absent any of them
	// -a's default stands.
	selective := showHeader || showSecs || showSyms || showFuncs || showInstrs || showStats
	if selective {
		showAll = false
	}

	failed := false
	for _, path := range args {
		if validate {
			result := dump.ValidateFile(path)
			fmt.Println(result)
			if !result.Valid {
				failed = true
			}
			continue
		}
		if err := dumpOne(path, format); err != nil {
			fmt.Fprintf(os.Stderr, "oriondump: %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func dumpOne(path string, format dump.OutputFormat) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	kind, err := dump.Sniff(bytes.NewReader(data))
	if err != nil {
		return err
	}

	switch kind {
	case dump.FormatObject:
		f, err := object.LoadFromFile(path)
		if err != nil {
			return err
		}
		rep := dump.DumpObject(path, f, hexDump)
		if !showAll {
			if !showHeader {
				rep.Header = dump.ObjectHeader{}
			}
			if !showSecs {
				rep.Sections = nil
			}
			if !showSyms {
				rep.Symbols = nil
			}
		}
		return dump.WriteObjectReport(os.Stdout, rep, format)

	case dump.FormatOrionpp:
		m, err := ir.Read(bytes.NewReader(data))
		if err != nil {
			return err
		}
		rep := dump.DumpOrionpp(path, m)
		if !showAll {
			if !showFuncs {
				rep.Functions = nil
			}
			if !showInstrs {
				rep.Disassembly = ""
			}
			if !showHeader && !showStats {
				rep.Version = ""
				rep.Features = 0
			}
		}
		return dump.WriteOrionppReport(os.Stdout, rep, format)

	default:
		return fmt.Errorf("unrecognized magic bytes")
	}
}

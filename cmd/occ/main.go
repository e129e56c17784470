// occ compiles a C-subset source file down to Orion++ IR, writing either
// the binary container or its human-readable text form.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orionpp/orionpp/cfront"
	"github.com/orionpp/orionpp/ir"
)

var (
	outFile      string
	verbose      bool
	debugTokens  bool
	debugAST     bool
)

func main() {
	root := &cobra.Command{
		Use:   "occ FILE",
		Short: "compile a C-subset source file to Orion++ IR",
		Args:  cobra.ExactArgs(1),
		RunE:  runOcc,
	}
	root.Flags().StringVarP(&outFile, "o", "o", "", "output file")
	root.Flags().BoolVarP(&verbose, "v", "v", false, "verbose output")
	root.Flags().BoolVar(&debugTokens, "debug-tokens", false, "print the token stream and exit")
	root.Flags().BoolVar(&debugAST, "debug-ast", false, "print the parsed AST and exit")
	root.SilenceUsage = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runOcc(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger := log.New(os.Stderr, "occ: ", 0)

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if debugTokens {
		return dumpTokens(string(src))
	}

	p := cfront.NewParser(string(src), path)
	prog := p.ParseProgram()
	if len(p.Diagnostics()) > 0 {
		for _, d := range p.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return fmt.Errorf("%d parse error(s)", len(p.Diagnostics()))
	}

	if debugAST {
		fmt.Fprintf(os.Stdout, "%+v\n", prog)
		return nil
	}

	features := ir.FeatureSet(0).
		With(ir.FeatureISA).
		With(ir.FeatureHINT)

	lw := cfront.NewLowering(features, path)
	lw.LowerProgram(prog)
	if len(lw.Diagnostics()) > 0 {
		for _, d := range lw.Diagnostics() {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return fmt.Errorf("%d lowering error(s)", len(lw.Diagnostics()))
	}
	m := lw.Module()

	if verbose {
		logger.Printf("lowered %s: %d instructions, %d bytes of strings", path, len(m.Instructions), m.Strings.Len())
	}

	dest := outFile
	binary := true
	if dest == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		dest = base + ".opp"
	} else if strings.HasSuffix(dest, ".hopp") {
		binary = false
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()

	if binary {
		if err := ir.Write(out, m); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
	} else {
		if _, err := out.WriteString(ir.Disassemble(m)); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
	}

	if verbose {
		logger.Printf("wrote %s", dest)
	}
	return nil
}

func dumpTokens(src string) error {
	lex := cfront.NewLexer(src)
	for {
		tok := lex.Next()
		fmt.Printf("%d:%d\t%s\t%q\n", tok.Line, tok.Col, tok.Type, tok.Lexeme)
		if tok.Type == cfront.TokEOF {
			return nil
		}
	}
}

package dump

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"text/tabwriter"
)

// OutputFormat selects how a report is rendered.
type OutputFormat int

const (
	FormatHuman OutputFormat = iota
	FormatJSON
	FormatXML
)

// WriteObjectReport renders an ObjectReport in the requested format.
func WriteObjectReport(w io.Writer, rep ObjectReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatXML:
		return writeXML(w, rep)
	default:
		return writeObjectHuman(w, rep)
	}
}

// WriteOrionppReport renders an OrionppReport in the requested format.
func WriteOrionppReport(w io.Writer, rep OrionppReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatXML:
		return writeXML(w, rep)
	default:
		return writeOrionppHuman(w, rep)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeXML(w io.Writer, v any) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n"))
	return err
}

func writeObjectHuman(w io.Writer, rep ObjectReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", rep.Path)
	fmt.Fprintf(tw, "magic:\t%s\n", rep.Header.Magic)
	fmt.Fprintf(tw, "version:\t%d\n", rep.Header.Version)
	fmt.Fprintf(tw, "type:\t%s\n", rep.Header.ObjType)
	fmt.Fprintf(tw, "arch:\t%s\n", rep.Header.TargetArch)
	fmt.Fprintf(tw, "variant:\t%s\n", rep.Header.Variant)
	fmt.Fprintf(tw, "flags:\t%#x\n", rep.Header.Flags)
	fmt.Fprintf(tw, "entry:\t%#x\n", rep.Header.EntryPoint)
	fmt.Fprintf(tw, "sections:\t%d\n", rep.Header.SectionCount)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nsections:\n")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "idx\tname\ttype\tsize\tflags\n")
	for _, s := range rep.Sections {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%#x\n", s.Index, s.Name, s.Type, s.Size, s.Flags)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, s := range rep.Sections {
		if s.HexDump != "" {
			fmt.Fprintf(w, "\n%s:\n%s", s.Name, s.HexDump)
		}
	}

	fmt.Fprintf(w, "\nsymbols:\n")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\tbinding\ttype\tsection\tvalue\tsize\n")
	for _, sym := range rep.Symbols {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%#x\t%d\n", sym.Name, sym.Binding, sym.Type, sym.SectionIndex, sym.Value, sym.Size)
	}
	return tw.Flush()
}

func writeOrionppHuman(w io.Writer, rep OrionppReport) error {
	fmt.Fprintf(w, "file:     %s\n", rep.Path)
	fmt.Fprintf(w, "version:  %s\n", rep.Version)
	fmt.Fprintf(w, "features: %#x\n", rep.Features)
	fmt.Fprintf(w, "instructions: %d\n", rep.InstrCount)

	fmt.Fprintf(w, "\nfunctions:\n")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\tstart\tend\n")
	for _, f := range rep.Functions {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", f.Name, f.StartIndex, f.EndIndex)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\ndisassembly:\n%s", rep.Disassembly)
	return nil
}

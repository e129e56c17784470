package dump

import (
	"fmt"

	"github.com/orionpp/orionpp/ir"
)

// OrionppReport is the structured form of an Orion++ binary dump:
// header, function table, and a full disassembly. Dump delegates to
// ir.Disassemble rather than reimplementing the text grammar.
type OrionppReport struct {
	Path          string           `json:"path" xml:"path"`
	Version       string           `json:"version" xml:"version"`
	Features      uint32           `json:"features" xml:"features"`
	Functions     []FunctionReport `json:"functions" xml:"functions>function"`
	Disassembly   string           `json:"disassembly" xml:"disassembly"`
	InstrCount    int              `json:"instruction_count" xml:"instructionCount"`
}

// FunctionReport is one HINT.FUNCBEGIN/HINT.FUNCEND span resolved through
// the string table.
type FunctionReport struct {
	Name       string `json:"name" xml:"name"`
	StartIndex int    `json:"start_index" xml:"startIndex"`
	EndIndex   int    `json:"end_index" xml:"endIndex"`
}

// DumpOrionpp builds a report for m.
func DumpOrionpp(path string, m *ir.Module) OrionppReport {
	rep := OrionppReport{
		Path:       path,
		Version:    formatVersion(m.Version),
		Features:   uint32(m.Features),
		InstrCount: len(m.Instructions),
	}
	rep.Functions = functionTable(m)
	rep.Disassembly = ir.Disassemble(m)
	return rep
}

func formatVersion(v ir.Version) string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// functionTable pairs each HINT.FUNCBEGIN with the next HINT.FUNCEND,
// resolving the begin marker's symbol name through the string table
//.
func functionTable(m *ir.Module) []FunctionReport {
	var funcs []FunctionReport
	var open *FunctionReport
	for i, in := range m.Instructions {
		if in.Feature != ir.FeatureHINT {
			continue
		}
		switch in.Opcode {
		case ir.OpHintFuncBegin:
			name := ""
			if len(in.Values) > 0 {
				if s, err := m.Strings.Get(in.Values[0].StrOffset); err == nil {
					name = s
				}
			}
			open = &FunctionReport{Name: name, StartIndex: i, EndIndex: -1}
		case ir.OpHintFuncEnd:
			if open != nil {
				open.EndIndex = i
				funcs = append(funcs, *open)
				open = nil
			}
		}
	}
	if open != nil {
		funcs = append(funcs, *open)
	}
	return funcs
}

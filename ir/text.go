package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble renders m in the documented text grammar: one instruction
// per line, "feature.op value, value, …". Disassembly is round-trippable
// within the subset the grammar covers (variables, symbols, numeric
// literals, labels, strings, arrays); exotic values (typed raw bytes)
// render as a lossy "UNKNOWN(root.tag)" placeholder since the grammar
// has no spelling for them.
func Disassemble(m *Module) string {
	var b strings.Builder
	for _, in := range m.Instructions {
		b.WriteString(in.Mnemonic())
		for i, v := range in.Values {
			if i == 0 {
				b.WriteString(" ")
			} else {
				b.WriteString(", ")
			}
			writeTextValue(&b, v, m.Strings)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeTextValue(b *strings.Builder, v *Value, strs *StringTable) {
	switch v.Tag {
	case TagVariable:
		fmt.Fprintf(b, "$%d", v.VariableID)
	case TagLabel:
		fmt.Fprintf(b, ".L%d", v.LabelID)
	case TagSymbol:
		name, err := strs.Get(v.StrOffset)
		if err != nil {
			name = ""
		}
		fmt.Fprintf(b, "@%s@", name)
	case TagString:
		s, err := strs.Get(v.StrOffset)
		if err != nil {
			s = ""
		}
		b.WriteString(strconv.Quote(s))
	case TagNumeric:
		if v.NumNegative {
			b.WriteByte('-')
		}
		switch v.NumBase {
		case Base2:
			fmt.Fprintf(b, "%%b%s", strconv.FormatUint(v.NumMagnitude, 2))
		case Base8:
			fmt.Fprintf(b, "%%o%s", strconv.FormatUint(v.NumMagnitude, 8))
		case Base16:
			fmt.Fprintf(b, "%%x%s", strconv.FormatUint(v.NumMagnitude, 16))
		default:
			fmt.Fprintf(b, "%%d%s", strconv.FormatUint(v.NumMagnitude, 10))
		}
	case TagArray:
		b.WriteString("[")
		for i, e := range v.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeTextValue(b, e, strs)
		}
		b.WriteString("]")
	default:
		root := "?"
		if v.Tag == TagTypedBytes && v.PrimType != nil {
			root = v.PrimType.Root.String()
		}
		fmt.Fprintf(b, "UNKNOWN(%s.%s)", root, v.Tag)
	}
}

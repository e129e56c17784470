package dump

import (
	"github.com/orionpp/orionpp/object"
)

// ObjectReport is the structured form of an object-file dump: header
// fields, one entry per section (index/name/type/size/flags and an
// optional hex dump), and the resolved symbol table.
type ObjectReport struct {
	Path     string          `json:"path" xml:"path"`
	Header   ObjectHeader    `json:"header" xml:"header"`
	Sections []SectionReport `json:"sections" xml:"sections>section"`
	Symbols  []SymbolReport  `json:"symbols" xml:"symbols>symbol"`
}

// ObjectHeader mirrors object.Header's fields as strings/ints suitable
// for direct marshaling.
type ObjectHeader struct {
	Magic        string `json:"magic" xml:"magic"`
	Version      uint8  `json:"version" xml:"version"`
	ObjType      string `json:"obj_type" xml:"objType"`
	TargetArch   string `json:"target_arch" xml:"targetArch"`
	Variant      string `json:"variant" xml:"variant"`
	Flags        uint32 `json:"flags" xml:"flags"`
	EntryPoint   uint64 `json:"entry_point" xml:"entryPoint"`
	SectionCount uint32 `json:"section_count" xml:"sectionCount"`
}

// SectionReport is one section's reportable fields plus an optional hex
// dump of its body.
type SectionReport struct {
	Index   int    `json:"index" xml:"index,attr"`
	Name    string `json:"name" xml:"name"`
	Type    string `json:"type" xml:"type"`
	Size    uint64 `json:"size" xml:"size"`
	Flags   uint64 `json:"flags" xml:"flags"`
	HexDump string `json:"hex_dump,omitempty" xml:"hexDump,omitempty"`
}

// SymbolReport is one resolved symbol table entry.
type SymbolReport struct {
	Name         string `json:"name" xml:"name"`
	Binding      string `json:"binding" xml:"binding"`
	Type         string `json:"type" xml:"type"`
	SectionIndex uint16 `json:"section_index" xml:"sectionIndex"`
	Value        uint64 `json:"value" xml:"value"`
	Size         uint64 `json:"size" xml:"size"`
}

// DumpObject builds a report for f, including a hex dump of each
// section's body when withHex is set.
func DumpObject(path string, f *object.File, withHex bool) ObjectReport {
	rep := ObjectReport{
		Path: path,
		Header: ObjectHeader{
			Magic:        "ORIO",
			Version:      f.Header.Version,
			ObjType:      f.Header.ObjType.String(),
			TargetArch:   f.Header.TargetArch.String(),
			Variant:      f.Header.VariantKind.String(),
			Flags:        f.Header.Flags,
			EntryPoint:   f.Header.EntryPoint,
			SectionCount: f.Header.SectionCount,
		},
	}
	for i, s := range f.Sections {
		sr := SectionReport{
			Index: i,
			Name:  s.Name,
			Type:  s.Header.Type.String(),
			Size:  s.Header.Size,
			Flags: uint64(s.Header.Flags),
		}
		if withHex && len(s.Data) > 0 {
			sr.HexDump = hexDump(s.Data)
		}
		rep.Sections = append(rep.Sections, sr)
	}
	for _, sym := range f.Symbols {
		rep.Symbols = append(rep.Symbols, SymbolReport{
			Name:         sym.Name,
			Binding:      sym.Binding.String(),
			Type:         sym.Type.String(),
			SectionIndex: sym.SectionIndex,
			Value:        sym.Value,
			Size:         sym.Size,
		})
	}
	return rep
}

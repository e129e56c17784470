package object

import "github.com/orionpp/orionpp/ir"

// File is an in-memory Orion object file: header, sections (each owning
// its raw bytes), and a symbol table. Section index 0 is always a null
// section. The File owns its sections'
// string table.
type File struct {
	Header  Header
	Strings *ir.StringTable
	Sections []*Section
	Symbols []*Symbol

	strtabIndex int
}

// New creates an empty object file with just the mandatory null section
// and a dedicated section-name/symbol string table.
func New(objType ObjType, arch TargetArch, variant Variant) *File {
	f := &File{
		Header: Header{
			Magic:       MagicOrion,
			Version:     1,
			ObjType:     objType,
			TargetArch:  arch,
			VariantKind: variant,
		},
		Strings: ir.NewStringTable(),
	}
	f.Sections = append(f.Sections, &Section{Name: "", Header: SectionHeader{Type: SectionNull}})

	idx := f.AddSection(".strtab", SectionStrtab, 0, 1)
	f.strtabIndex = idx
	f.Header.StringTableIndex = uint32(idx)
	return f
}

// AddSection appends a new section and returns its index.
func (f *File) AddSection(name string, typ SectionType, flags SectionFlags, align uint64) int {
	off := f.Strings.Add(name)
	sec := &Section{
		Name: name,
		Header: SectionHeader{
			NameOffset: off,
			Type:       typ,
			Flags:      flags,
			Alignment:  align,
		},
	}
	f.Sections = append(f.Sections, sec)
	return len(f.Sections) - 1
}

// GetSectionByIndex returns the section at idx, or an InvalidSection
// error if out of range.
func (f *File) GetSectionByIndex(idx int) (*Section, error) {
	if idx < 0 || idx >= len(f.Sections) {
		return nil, errf(KindInvalidSection, "section index %d out of range", idx)
	}
	return f.Sections[idx], nil
}

// GetSectionByName finds a section by exact name match.
func (f *File) GetSectionByName(name string) (*Section, int, error) {
	for i, s := range f.Sections {
		if s.Name == name {
			return s, i, nil
		}
	}
	return nil, -1, errf(KindInvalidSection, "no section named %q", name)
}

// SetSectionBytes replaces a non-BSS section's body and updates its
// logical size. BSS sections never carry file bytes; setting
// bytes on one is an error.
func (f *File) SetSectionBytes(idx int, data []byte) error {
	sec, err := f.GetSectionByIndex(idx)
	if err != nil {
		return err
	}
	if sec.Header.Type.IsBSS() {
		return errf(KindInvalidSection, "section %q is BSS-class and cannot carry file bytes", sec.Name)
	}
	sec.Data = append([]byte(nil), data...)
	sec.Header.Size = uint64(len(data))
	return nil
}

// SetSectionSize sets a BSS-class section's logical size without backing
// bytes.
func (f *File) SetSectionSize(idx int, size uint64) error {
	sec, err := f.GetSectionByIndex(idx)
	if err != nil {
		return err
	}
	if !sec.Header.Type.IsBSS() {
		return errf(KindInvalidSection, "section %q is not BSS-class", sec.Name)
	}
	sec.Header.Size = size
	return nil
}

// SetFlags sets a section's flags.
func (f *File) SetFlags(idx int, flags SectionFlags) error {
	sec, err := f.GetSectionByIndex(idx)
	if err != nil {
		return err
	}
	sec.Header.Flags = flags
	return nil
}

// SetAlignment sets a section's byte alignment.
func (f *File) SetAlignment(idx int, align uint64) error {
	sec, err := f.GetSectionByIndex(idx)
	if err != nil {
		return err
	}
	sec.Header.Alignment = align
	return nil
}

// AddSymbol appends a symbol table entry.
func (f *File) AddSymbol(name string, binding SymBinding, typ SymType, sectionIndex uint16, value, size uint64) *Symbol {
	off := f.Strings.Add(name)
	sym := &Symbol{
		Name:         name,
		NameOffset:   off,
		Binding:      binding,
		Type:         typ,
		SectionIndex: sectionIndex,
		Value:        value,
		Size:         size,
	}
	f.Symbols = append(f.Symbols, sym)
	return sym
}

// FindSymbol looks up a symbol by name.
func (f *File) FindSymbol(name string) (*Symbol, error) {
	for _, s := range f.Symbols {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, errf(KindInvalidSymbol, "no symbol named %q", name)
}

// AddString interns s in the shared string table and returns its offset.
func (f *File) AddString(s string) uint32 { return f.Strings.Add(s) }

// LookupString resolves a string-table offset back to its content.
func (f *File) LookupString(off uint32) (string, error) {
	s, err := f.Strings.Get(off)
	if err != nil {
		return "", wrapf(KindBufferTooSmall, err, "string lookup")
	}
	return s, nil
}

package object

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/orionpp/orionpp/ir"
)

func alignUp(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	rem := v % align
	if rem == 0 {
		return v
	}
	return v + (align - rem)
}

// syncSymtab serializes f.Symbols into the .symtab section's Data so the
// in-memory symbol table travels with the file on disk. It is called by
// WriteTo before layout so section sizes reflect the encoded table.
func (f *File) syncSymtab() error {
	_, idx, err := f.GetSectionByName(".symtab")
	if err != nil {
		idx = f.AddSection(".symtab", SectionSymtab, 0, 8)
	}
	buf := &bytes.Buffer{}
	for _, s := range f.Symbols {
		binary.Write(buf, binary.LittleEndian, s.NameOffset)
		buf.WriteByte(s.Info())
		buf.WriteByte(0) // "other", reserved
		binary.Write(buf, binary.LittleEndian, s.SectionIndex)
		binary.Write(buf, binary.LittleEndian, s.Value)
		binary.Write(buf, binary.LittleEndian, s.Size)
	}
	return f.SetSectionBytes(idx, buf.Bytes())
}

// loadSymtab reconstructs f.Symbols from a .symtab section's raw bytes,
// resolving names through the string table.
func (f *File) loadSymtab() error {
	sec, _, err := f.GetSectionByName(".symtab")
	if err != nil {
		return nil // no symbol table present is not an error
	}
	r := bytes.NewReader(sec.Data)
	for r.Len() > 0 {
		if r.Len() < symbolEntrySize {
			return errf(KindInvalidFormat, "truncated symbol table entry")
		}
		var nameOff uint32
		var info, other uint8
		var secIdx uint16
		var value, size uint64
		binary.Read(r, binary.LittleEndian, &nameOff)
		binary.Read(r, binary.LittleEndian, &info)
		binary.Read(r, binary.LittleEndian, &other)
		binary.Read(r, binary.LittleEndian, &secIdx)
		binary.Read(r, binary.LittleEndian, &value)
		binary.Read(r, binary.LittleEndian, &size)
		name, err := f.Strings.Get(nameOff)
		if err != nil {
			return wrapf(KindInvalidFormat, err, "resolving symbol name")
		}
		sym := &Symbol{Name: name, NameOffset: nameOff, SectionIndex: secIdx, Value: value, Size: size}
		sym.SetInfo(info)
		f.Symbols = append(f.Symbols, sym)
	}
	return nil
}

// WriteTo serializes f as an Orion object file. Section
// bodies are laid out in declaration order with 8-byte alignment
//; BSS sections contribute no bytes.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if err := f.syncSymtab(); err != nil {
		return 0, err
	}

	strtabSec, strtabIdx, err := f.GetSectionByName(".strtab")
	if err == nil {
		strtabSec.Data = f.Strings.Bytes()
		strtabSec.Header.Size = uint64(len(strtabSec.Data))
		f.Header.StringTableIndex = uint32(strtabIdx)
	}

	f.Header.SectionCount = uint32(len(f.Sections))
	f.Header.SectionHeaderSize = SectionHeaderSize
	f.Header.SectionHeaderOffset = uint32(HeaderSize)

	bodyStart := uint64(HeaderSize) + uint64(len(f.Sections))*SectionHeaderSize
	offset := alignUp(bodyStart, 8)
	for _, s := range f.Sections {
		if s.Header.Type == SectionNull || s.Header.Type.IsBSS() {
			s.Header.Offset = 0
			continue
		}
		offset = alignUp(offset, 8)
		s.Header.Offset = offset
		s.Header.Size = uint64(len(s.Data))
		offset += s.Header.Size
	}

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, &f.Header); err != nil {
		return 0, wrapf(KindIoError, err, "writing header")
	}
	for _, s := range f.Sections {
		if err := binary.Write(buf, binary.LittleEndian, &s.Header); err != nil {
			return 0, wrapf(KindIoError, err, "writing section header %q", s.Name)
		}
	}
	for _, s := range f.Sections {
		if s.Header.Type == SectionNull || s.Header.Type.IsBSS() {
			continue
		}
		for uint64(buf.Len()) < s.Header.Offset {
			buf.WriteByte(0)
		}
		buf.Write(s.Data)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom deserializes an Orion object file from r.
func ReadFrom(r io.ReaderAt, size int64) (*File, error) {
	hdrBuf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(hdrBuf, 0); err != nil {
		return nil, wrapf(KindIoError, err, "reading header")
	}
	var h Header
	if err := binary.Read(bytes.NewReader(hdrBuf), binary.LittleEndian, &h); err != nil {
		return nil, wrapf(KindInvalidFormat, err, "decoding header")
	}
	if h.Magic != MagicOrion {
		return nil, errf(KindInvalidMagic, "expected magic %#x, got %#x", MagicOrion, h.Magic)
	}
	if h.Version != 1 {
		return nil, errf(KindInvalidVersion, "unsupported object version %d", h.Version)
	}

	f := &File{Header: h}

	shBuf := make([]byte, uint64(h.SectionCount)*uint64(h.SectionHeaderSize))
	if _, err := r.ReadAt(shBuf, int64(h.SectionHeaderOffset)); err != nil {
		return nil, wrapf(KindBufferTooSmall, err, "reading section headers")
	}
	shr := bytes.NewReader(shBuf)
	for i := uint32(0); i < h.SectionCount; i++ {
		var sh SectionHeader
		if err := binary.Read(shr, binary.LittleEndian, &sh); err != nil {
			return nil, wrapf(KindInvalidFormat, err, "decoding section header %d", i)
		}
		sec := &Section{Header: sh}
		if sh.Type != SectionNull && !sh.Type.IsBSS() && sh.Size > 0 {
			if int64(sh.Offset+sh.Size) > size {
				return nil, errf(KindBufferTooSmall, "section %d body exceeds file size", i)
			}
			data := make([]byte, sh.Size)
			if _, err := r.ReadAt(data, int64(sh.Offset)); err != nil {
				return nil, wrapf(KindBufferTooSmall, err, "reading section %d body", i)
			}
			sec.Data = data
		}
		f.Sections = append(f.Sections, sec)
	}

	if int(h.StringTableIndex) < len(f.Sections) {
		strs, err := ir.LoadStringTable(f.Sections[h.StringTableIndex].Data)
		if err != nil {
			return nil, wrapf(KindInvalidFormat, err, "decoding string table")
		}
		f.Strings = strs
		for i, s := range f.Sections {
			if i == 0 {
				continue
			}
			name, err := strs.Get(s.Header.NameOffset)
			if err == nil {
				s.Name = name
			}
		}
	} else {
		f.Strings = ir.NewStringTable()
	}

	if err := f.loadSymtab(); err != nil {
		return nil, err
	}
	return f, nil
}

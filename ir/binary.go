package ir

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// MagicOrionpp is the four-byte little-endian magic tag for an Orion++
// binary file: "OPPO" read as a little-endian u32.
const MagicOrionpp uint32 = 0x4F50504F

// header is the fixed-width Orion++ binary file envelope.
type header struct {
	Magic           uint32
	VersionMajor    uint16
	VersionMinor    uint16
	VersionPatch    uint32
	Features        uint32
	StringTableSize uint32
	InstructionCount uint32
	Reserved        [4]uint32
}

const headerSize = 4 + 2 + 2 + 4 + 4 + 4 + 4 + 4*4 // 40 bytes

// Write serializes m to w using the binary container format. Writing
// then reading a valid module yields a module equal under
// value-equivalence (instruction-stream equality; string-table offsets
// may differ as long as dereferenced strings agree). Write itself
// preserves m.Strings verbatim; Read is free to re-compact the table
// since only content equality is required, not offset equality.
func Write(w io.Writer, m *Module) error {
	bw := bufio.NewWriter(w)

	h := header{
		Magic:            MagicOrionpp,
		VersionMajor:     m.Version.Major,
		VersionMinor:     m.Version.Minor,
		VersionPatch:     m.Version.Patch,
		Features:         uint32(m.Features),
		StringTableSize:  uint32(m.Strings.Len()),
		InstructionCount: uint32(len(m.Instructions)),
	}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return Wrapf(KindIoError, err, "writing header")
	}
	if _, err := bw.Write(m.Strings.Bytes()); err != nil {
		return Wrapf(KindIoError, err, "writing string table")
	}
	for i, in := range m.Instructions {
		if err := writeInstruction(bw, in); err != nil {
			return Wrapf(KindIoError, err, "writing instruction %d", i)
		}
	}
	return bw.Flush()
}

func writeInstruction(w *bufio.Writer, in *Instruction) error {
	if err := binary.Write(w, binary.LittleEndian, in.Feature); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.Opcode); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, in.Flags); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(in.Values))); err != nil {
		return err
	}
	for _, v := range in.Values {
		if err := writeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w *bufio.Writer, v *Value) error {
	if v.Tag == TagEndOfStatement || v.Tag == TagImmediateFollows {
		return Errf(KindInvalidValue, "tag %s is reserved for the text grammar and may not be serialized", v.Tag)
	}
	payload, moduleTag, err := encodeValuePayload(v)
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(v.Tag)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, moduleTag); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func encodeValuePayload(v *Value) (payload []byte, moduleTag uint8, err error) {
	buf := &bytes.Buffer{}
	switch v.Tag {
	case TagVariable:
		binary.Write(buf, binary.LittleEndian, v.VariableID)
	case TagLabel:
		binary.Write(buf, binary.LittleEndian, v.LabelID)
	case TagSymbol, TagString:
		binary.Write(buf, binary.LittleEndian, v.StrOffset)
		binary.Write(buf, binary.LittleEndian, v.StrLength)
	case TagNumeric:
		buf.WriteByte(byte(v.NumBase))
		if v.NumNegative {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		binary.Write(buf, binary.LittleEndian, v.NumMagnitude)
	case TagArray:
		binary.Write(buf, binary.LittleEndian, uint32(len(v.Elements)))
		for _, e := range v.Elements {
			bw := bufio.NewWriter(buf)
			if err := writeValue(bw, e); err != nil {
				return nil, 0, err
			}
			bw.Flush()
		}
	case TagTypedBytes:
		mt, err := encodePrimType(v.PrimType)
		if err != nil {
			return nil, 0, err
		}
		moduleTag = mt
		buf.Write(v.RawBytes)
	default:
		return nil, 0, Errf(KindInvalidValue, "unsupported value tag %s", v.Tag)
	}
	return buf.Bytes(), moduleTag, nil
}

// encodePrimType packs a primitive (void or integer) type into one byte
// for the TagTypedBytes "module-tag" field. Only void and plain integer
// widths are representable; anything richer belongs in a TYPE-feature
// declaration instead.
func encodePrimType(t *Type) (byte, error) {
	if t == nil || t.Root == RootVoid {
		return 0, nil
	}
	if t.Root != RootInteger {
		return 0, Errf(KindInvalidType, "typed-bytes primitive type must be void or integer, got %s", t.Root)
	}
	var widthCode byte
	switch t.Width {
	case Width8:
		widthCode = 0
	case Width16:
		widthCode = 1
	case Width32:
		widthCode = 2
	case Width64:
		widthCode = 3
	default:
		return 0, Errf(KindInvalidType, "invalid integer width %d", t.Width)
	}
	b := byte(0x10) | widthCode
	if t.Signed {
		b |= 0x20
	}
	return b, nil
}

func decodePrimType(b byte) *Type {
	if b == 0 {
		return Void()
	}
	signed := b&0x20 != 0
	var width IntWidth
	switch b & 0x0F {
	case 0:
		width = Width8
	case 1:
		width = Width16
	case 2:
		width = Width32
	case 3:
		width = Width64
	}
	return Int(width, signed)
}

// ReadHeader decodes only the fixed 40-byte envelope (magic and
// version), without touching the string table or instruction stream.
// Cheaper than Read when the caller only needs to check that a file
// claims to be an Orion++ binary of a supported version.
func ReadHeader(r io.Reader) (Version, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Version{}, Errf(KindBufferOverflow, "truncated header")
		}
		return Version{}, Wrapf(KindIoError, err, "reading header")
	}
	if h.Magic != MagicOrionpp {
		return Version{}, Errf(KindInvalidMagic, "expected magic %#x, got %#x", MagicOrionpp, h.Magic)
	}
	return Version{Major: h.VersionMajor, Minor: h.VersionMinor, Patch: h.VersionPatch}, nil
}

// Read deserializes a module from r. Reads that exhaust the buffer return
// BufferOverflow (the guarantee iii).
func Read(r io.Reader) (*Module, error) {
	br := bufio.NewReader(r)

	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, Errf(KindBufferOverflow, "truncated header")
		}
		return nil, Wrapf(KindIoError, err, "reading header")
	}
	if h.Magic != MagicOrionpp {
		return nil, Errf(KindInvalidMagic, "expected magic %#x, got %#x", MagicOrionpp, h.Magic)
	}
	v := Version{Major: h.VersionMajor, Minor: h.VersionMinor, Patch: h.VersionPatch}
	if err := CheckVersion(v); err != nil {
		return nil, err
	}

	strRaw := make([]byte, h.StringTableSize)
	if _, err := io.ReadFull(br, strRaw); err != nil {
		return nil, Errf(KindBufferOverflow, "truncated string table: %v", err)
	}
	strs, err := LoadStringTable(strRaw)
	if err != nil {
		return nil, err
	}

	m := &Module{Version: v, Features: FeatureSet(h.Features), Strings: strs}
	for i := uint32(0); i < h.InstructionCount; i++ {
		in, err := readInstruction(br)
		if err != nil {
			return nil, Wrapf(KindBufferOverflow, err, "reading instruction %d", i)
		}
		m.Instructions = append(m.Instructions, in)
	}
	return m, nil
}

func readInstruction(r io.Reader) (*Instruction, error) {
	var feature Feature
	var op Opcode
	var flags uint16
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &feature); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &op); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	in := &Instruction{Feature: feature, Opcode: op, Flags: flags}
	for i := uint32(0); i < count; i++ {
		v, err := readValue(r)
		if err != nil {
			return nil, err
		}
		in.Values = append(in.Values, v)
	}
	return in, nil
}

func readValue(r io.Reader) (*Value, error) {
	var tag uint8
	var moduleTag uint8
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &moduleTag); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, Errf(KindBufferOverflow, "value payload truncated: %v", err)
	}
	return decodeValuePayload(ValueTag(tag), moduleTag, payload)
}

func decodeValuePayload(tag ValueTag, moduleTag uint8, payload []byte) (*Value, error) {
	buf := bytes.NewReader(payload)
	switch tag {
	case TagVariable:
		var id uint32
		if err := binary.Read(buf, binary.LittleEndian, &id); err != nil {
			return nil, Errf(KindBufferOverflow, "truncated variable payload")
		}
		return Variable(id), nil
	case TagLabel:
		var id uint32
		if err := binary.Read(buf, binary.LittleEndian, &id); err != nil {
			return nil, Errf(KindBufferOverflow, "truncated label payload")
		}
		return Label(id), nil
	case TagSymbol, TagString:
		var off, length uint32
		if err := binary.Read(buf, binary.LittleEndian, &off); err != nil {
			return nil, Errf(KindBufferOverflow, "truncated symbol/string payload")
		}
		if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
			return nil, Errf(KindBufferOverflow, "truncated symbol/string payload")
		}
		if tag == TagSymbol {
			return Symbol(off, length), nil
		}
		return StringVal(off, length), nil
	case TagNumeric:
		base, err := buf.ReadByte()
		if err != nil {
			return nil, Errf(KindBufferOverflow, "truncated numeric payload")
		}
		neg, err := buf.ReadByte()
		if err != nil {
			return nil, Errf(KindBufferOverflow, "truncated numeric payload")
		}
		var mag uint64
		if err := binary.Read(buf, binary.LittleEndian, &mag); err != nil {
			return nil, Errf(KindBufferOverflow, "truncated numeric payload")
		}
		return Numeric(NumericBase(base), mag, neg != 0), nil
	case TagArray:
		var count uint32
		if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
			return nil, Errf(KindBufferOverflow, "truncated array payload")
		}
		elems := make([]*Value, 0, count)
		for i := uint32(0); i < count; i++ {
			e, err := readValue(buf)
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return &Value{Tag: TagArray, Elements: elems}, nil
	case TagTypedBytes:
		return TypedBytes(decodePrimType(moduleTag), payload), nil
	default:
		return nil, Errf(KindInvalidValue, "unrecognized value tag %d", tag)
	}
}

package ir

import "fmt"

// ValueTag is the closed tag enumeration for Value.
type ValueTag uint8

const (
	TagVariable ValueTag = iota
	TagLabel
	TagSymbol
	TagString
	TagNumeric
	TagArray
	TagTypedBytes
	TagEndOfStatement // reserved stream-terminator, text grammar only
	TagImmediateFollows // reserved marker, text grammar only
)

func (t ValueTag) String() string {
	switch t {
	case TagVariable:
		return "variable"
	case TagLabel:
		return "label"
	case TagSymbol:
		return "symbol"
	case TagString:
		return "string"
	case TagNumeric:
		return "numeric"
	case TagArray:
		return "array"
	case TagTypedBytes:
		return "typed-bytes"
	case TagEndOfStatement:
		return "end-of-statement"
	case TagImmediateFollows:
		return "immediate-follows"
	default:
		return "unknown"
	}
}

// NumericBase is the radix a numeric literal was spelled in.
// It has no effect on the literal's value, only on how the text grammar
// renders it back.
type NumericBase uint8

const (
	Base2  NumericBase = 2
	Base8  NumericBase = 8
	Base10 NumericBase = 10
	Base16 NumericBase = 16
)

// Value is a single operand carried by an Instruction. Exactly the fields
// relevant to Tag are meaningful; this mirrors the closed-sum-type
// discipline used throughout the pack's IR nodes (tag + dispatch, no
// inheritance, the "Tagged variants").
type Value struct {
	Tag ValueTag

	VariableID uint32 // TagVariable
	LabelID    uint32 // TagLabel

	StrOffset uint32 // TagSymbol, TagString: offset into the string table
	StrLength uint32 // TagSymbol, TagString: length, for bounds checking on read

	NumBase      NumericBase // TagNumeric
	NumMagnitude uint64      // TagNumeric: unsigned 64-bit magnitude
	NumNegative  bool        // TagNumeric: sign, applied to magnitude by consumers

	Elements []*Value // TagArray: deeply owned by this value

	PrimType *Type  // TagTypedBytes
	RawBytes []byte // TagTypedBytes: owned raw payload
}

func Variable(id uint32) *Value { return &Value{Tag: TagVariable, VariableID: id} }

func Label(id uint32) *Value { return &Value{Tag: TagLabel, LabelID: id} }

func Symbol(off, length uint32) *Value { return &Value{Tag: TagSymbol, StrOffset: off, StrLength: length} }

func StringVal(off, length uint32) *Value { return &Value{Tag: TagString, StrOffset: off, StrLength: length} }

func Numeric(base NumericBase, magnitude uint64, negative bool) *Value {
	return &Value{Tag: TagNumeric, NumBase: base, NumMagnitude: magnitude, NumNegative: negative}
}

func ArrayVal(elements ...*Value) *Value { return &Value{Tag: TagArray, Elements: elements} }

func TypedBytes(t *Type, raw []byte) *Value {
	return &Value{Tag: TagTypedBytes, PrimType: t, RawBytes: append([]byte(nil), raw...)}
}

// TypeOperand wraps a bare type descriptor with no payload bytes, the
// form VAR/CONST use for their "type" operand (the instruction
// semantics table).
func TypeOperand(t *Type) *Value { return TypedBytes(t, nil) }

// Equal reports value equality under the module's value-equivalence
// relation (ordering preserved; string/symbol
// content is compared via the owning string tables rather than offset,
// since offsets may be re-compacted on write.
func (v *Value) Equal(o *Value, ts, os *StringTable) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Tag != o.Tag {
		return false
	}
	switch v.Tag {
	case TagVariable:
		return v.VariableID == o.VariableID
	case TagLabel:
		return v.LabelID == o.LabelID
	case TagSymbol, TagString:
		vs, err1 := ts.Get(v.StrOffset)
		os_, err2 := os.Get(o.StrOffset)
		return err1 == nil && err2 == nil && vs == os_
	case TagNumeric:
		return v.NumBase == o.NumBase && v.NumMagnitude == o.NumMagnitude && v.NumNegative == o.NumNegative
	case TagArray:
		if len(v.Elements) != len(o.Elements) {
			return false
		}
		for i := range v.Elements {
			if !v.Elements[i].Equal(o.Elements[i], ts, os) {
				return false
			}
		}
		return true
	case TagTypedBytes:
		if !v.PrimType.Equal(o.PrimType) || len(v.RawBytes) != len(o.RawBytes) {
			return false
		}
		for i := range v.RawBytes {
			if v.RawBytes[i] != o.RawBytes[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v *Value) String() string {
	switch v.Tag {
	case TagVariable:
		return fmt.Sprintf("$%d", v.VariableID)
	case TagLabel:
		return fmt.Sprintf(".L%d", v.LabelID)
	case TagSymbol:
		return fmt.Sprintf("@sym@%d", v.StrOffset)
	case TagString:
		return fmt.Sprintf("str@%d", v.StrOffset)
	case TagNumeric:
		sign := ""
		if v.NumNegative {
			sign = "-"
		}
		return fmt.Sprintf("%s%d", sign, v.NumMagnitude)
	case TagArray:
		return fmt.Sprintf("[%d elements]", len(v.Elements))
	case TagTypedBytes:
		return fmt.Sprintf("bytes(%s, %d)", v.PrimType, len(v.RawBytes))
	default:
		return v.Tag.String()
	}
}

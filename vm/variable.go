package vm

import "github.com/orionpp/orionpp/ir"

// Variable is a VM-resident value slot: a 32-bit identifier, its declared
// type, an initialized flag, and a value union covering the
// representations the VM's instruction set actually produces. Exactly
// one of the numeric/string fields is meaningful, selected by Type's
// root category.
type Variable struct {
	ID          uint32
	Type        *ir.Type
	Initialized bool

	Num      uint64 // numeric magnitude, reinterpreted per Type.Signed/Width
	Negative bool

	Str string // owned string payload, for pointer-to-byte / string types
}

// sizeOf estimates the byte cost of a variable's value for memory
// accounting.
func (v *Variable) sizeOf() int {
	if v.Type != nil && v.Type.Root == ir.RootQualifierPointer {
		return 8 + len(v.Str)
	}
	return 8
}

// asInt64 returns the variable's numeric value as a signed int64,
// applying the sign bit tracked separately from the unsigned magnitude.
func (v *Variable) asInt64() int64 {
	if v.Negative {
		return -int64(v.Num)
	}
	return int64(v.Num)
}

func numericVariable(id uint32, ty *ir.Type) *Variable {
	return &Variable{ID: id, Type: ty}
}

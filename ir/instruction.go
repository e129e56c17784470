package ir

// Instruction is a two-level opcode (Feature, Opcode) followed by an
// ordered sequence of Values.
type Instruction struct {
	Feature Feature
	Opcode  Opcode
	Flags   uint16
	Values  []*Value
}

// NewInstruction constructs an instruction and validates the opcode pair
// is part of the closed enumeration (a closed tag set).
func NewInstruction(f Feature, op Opcode, values ...*Value) (*Instruction, error) {
	if !Valid(f, op) {
		return nil, Errf(KindInvalidInstruction, "unrecognized opcode pair (%s, %d)", f, op)
	}
	return &Instruction{Feature: f, Opcode: op, Values: values}, nil
}

// Mnemonic returns "feature.op", e.g. "ISA.ADD".
func (in *Instruction) Mnemonic() string {
	name, ok := in.Feature.OpcodeName(in.Opcode)
	if !ok {
		return "UNKNOWN"
	}
	return in.Feature.String() + "." + name
}

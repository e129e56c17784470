package ir

// Builder gives an imperative emission API over a Module: monotonic
// variable/label id allocation plus Emit, so a front-end's lowering pass
// never touches binary framing directly (the "Lowering" contracts
// reference next_var/next_label counters).
type Builder struct {
	Module  *Module
	nextVar uint32
	nextLbl uint32
}

// NewBuilder wraps a fresh module with the given enabled features.
func NewBuilder(features FeatureSet) *Builder {
	return &Builder{Module: NewModule(features)}
}

// NewVariable allocates and returns the next unused variable id. Ids are
// never reused within a Builder's lifetime.
func (b *Builder) NewVariable() uint32 {
	id := b.nextVar
	b.nextVar++
	return id
}

// NewLabel allocates and returns the next unused label id.
func (b *Builder) NewLabel() uint32 {
	id := b.nextLbl
	b.nextLbl++
	return id
}

// Emit appends an instruction to the underlying module.
func (b *Builder) Emit(f Feature, op Opcode, values ...*Value) (*Instruction, error) {
	return b.Module.Emit(f, op, values...)
}

// AddString interns s in the module's string table and returns its offset.
func (b *Builder) AddString(s string) uint32 {
	return b.Module.Strings.Add(s)
}

// Symbol interns name and returns a TagSymbol value referencing it.
func (b *Builder) Symbol(name string) *Value {
	off := b.AddString(name)
	return Symbol(off, uint32(len(name)))
}

// StringLiteral interns s and returns a TagString value referencing it.
func (b *Builder) StringLiteral(s string) *Value {
	off := b.AddString(s)
	return StringVal(off, uint32(len(s)))
}

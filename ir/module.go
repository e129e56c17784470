package ir

// Version is the module's semantic version.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint32
}

// LibraryVersion is the version of this implementation, used to decide
// compatibility when reading a module: magic and major must match;
// minor is accepted if <= library minor; patch is ignored.
var LibraryVersion = Version{Major: 1, Minor: 0, Patch: 0}

// Module is the in-memory container: version, enabled-features bitmask,
// string table, and ordered instruction stream.
type Module struct {
	Version      Version
	Features     FeatureSet
	Strings      *StringTable
	Instructions []*Instruction
}

// NewModule creates an empty module with the library's current version.
func NewModule(features FeatureSet) *Module {
	return &Module{
		Version:  LibraryVersion,
		Features: features,
		Strings:  NewStringTable(),
	}
}

// Emit appends an instruction after validating its feature is enabled.
func (m *Module) Emit(f Feature, op Opcode, values ...*Value) (*Instruction, error) {
	if !m.Features.Has(f) {
		return nil, Errf(KindUnsupportedFeature, "feature %s not enabled in module", f)
	}
	in, err := NewInstruction(f, op, values...)
	if err != nil {
		return nil, err
	}
	m.Instructions = append(m.Instructions, in)
	return in, nil
}

// CheckVersion applies the version-compatibility rule documented on
// LibraryVersion.
func CheckVersion(v Version) error {
	if v.Major != LibraryVersion.Major {
		return Errf(KindUnsupportedVersion, "major version %d unsupported (library major %d)", v.Major, LibraryVersion.Major)
	}
	if v.Minor > LibraryVersion.Minor {
		return Errf(KindUnsupportedVersion, "minor version %d exceeds library minor %d", v.Minor, LibraryVersion.Minor)
	}
	return nil
}

// Validate checks every instruction's opcode pair is recognized, its
// feature bit is enabled, and every type operand is a well-formed type
// tree, without executing anything (static validation).
func (m *Module) Validate() error {
	for i, in := range m.Instructions {
		if !Valid(in.Feature, in.Opcode) {
			return Errf(KindInvalidInstruction, "instruction %d: unrecognized opcode pair (%s, %d)", i, in.Feature, in.Opcode)
		}
		if !m.Features.Has(in.Feature) {
			return Errf(KindUnsupportedFeature, "instruction %d: feature %s not enabled", i, in.Feature)
		}
		for _, val := range in.Values {
			if val.Tag == TagTypedBytes && val.PrimType != nil {
				if err := val.PrimType.Validate(); err != nil {
					return Wrapf(KindInvalidType, err, "instruction %d", i)
				}
			}
		}
	}
	return nil
}

// Equal reports value-equivalence between two modules: ordering
// preserved; string-table offsets may differ but dereferenced strings
// must agree.
func (m *Module) Equal(o *Module) bool {
	if m.Version != o.Version || m.Features != o.Features || len(m.Instructions) != len(o.Instructions) {
		return false
	}
	for i := range m.Instructions {
		a, b := m.Instructions[i], o.Instructions[i]
		if a.Feature != b.Feature || a.Opcode != b.Opcode || a.Flags != b.Flags || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if !a.Values[j].Equal(b.Values[j], m.Strings, o.Strings) {
				return false
			}
		}
	}
	return true
}

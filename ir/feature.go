package ir

// Feature identifies one of the top-level opcode groups an instruction
// belongs to. A module must enable a feature's bit before any instruction
// of that feature may load.
type Feature uint8

const (
	FeatureOBJ Feature = iota
	FeatureISA
	FeatureHINT
	FeatureTYPE
	FeatureABI
	FeatureCTYPES

	featureCount
)

func (f Feature) String() string {
	switch f {
	case FeatureOBJ:
		return "OBJ"
	case FeatureISA:
		return "ISA"
	case FeatureHINT:
		return "HINT"
	case FeatureTYPE:
		return "TYPE"
	case FeatureABI:
		return "ABI"
	case FeatureCTYPES:
		return "C"
	default:
		return "UNKNOWN"
	}
}

// FeatureByName resolves the uppercase text form used by the disassembly
// grammar ("feature.op") back to a Feature; the match is case-sensitive.
func FeatureByName(name string) (Feature, bool) {
	for f := Feature(0); f < featureCount; f++ {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Bit returns the single-bit mask for this feature within a FeatureSet.
func (f Feature) Bit() FeatureSet { return FeatureSet(1) << uint(f) }

// FeatureSet is the module-level "enabled features" bitmask.
type FeatureSet uint32

// Has reports whether feature f's bit is set.
func (s FeatureSet) Has(f Feature) bool { return s&f.Bit() != 0 }

// With returns s with f's bit set.
func (s FeatureSet) With(f Feature) FeatureSet { return s | f.Bit() }

// AllFeatures is a convenience set with every known feature enabled.
var AllFeatures = func() FeatureSet {
	var s FeatureSet
	for f := Feature(0); f < featureCount; f++ {
		s = s.With(f)
	}
	return s
}()

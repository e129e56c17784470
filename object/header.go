package object

// MagicOrion is the four-byte little-endian magic tag for an Orion object
// file: "ORIO" read as a little-endian u32.
const MagicOrion uint32 = 0x4F49524F

// ObjType identifies what an object file primarily carries.
type ObjType uint8

const (
	ObjTypeRelocatable ObjType = iota
	ObjTypeExecutable
	ObjTypeShared
)

func (t ObjType) String() string {
	switch t {
	case ObjTypeRelocatable:
		return "relocatable"
	case ObjTypeExecutable:
		return "executable"
	case ObjTypeShared:
		return "shared"
	default:
		return "unknown"
	}
}

// TargetArch identifies the native architecture of any native-* sections,
// or ArchNone for a pure Orion++/variant object.
type TargetArch uint8

const (
	ArchNone TargetArch = iota
	ArchX86_64
	ArchARM64
	ArchRISCV64
)

func (a TargetArch) String() string {
	switch a {
	case ArchNone:
		return "none"
	case ArchX86_64:
		return "x86_64"
	case ArchARM64:
		return "arm64"
	case ArchRISCV64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// Variant identifies which Orion pseudo-native ISA variant-* sections
// target, or VariantNone when the object carries no variant sections.
type Variant uint8

const (
	VariantNone Variant = iota
	VariantOrionX86
	VariantOrionARM
)

func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantOrionX86:
		return "orion-x86"
	case VariantOrionARM:
		return "orion-arm"
	default:
		return "unknown"
	}
}

// Header is the fixed-width Orion object-file envelope.
type Header struct {
	Magic               uint32
	Version             uint8
	ObjType             ObjType
	TargetArch          TargetArch
	VariantKind         Variant
	Flags               uint32
	EntryPoint          uint64
	SectionHeaderOffset uint32
	SectionCount        uint32
	SectionHeaderSize   uint32
	StringTableIndex    uint32
	Reserved            [4]uint32
}

// HeaderSize is the on-disk size of Header in bytes.
const HeaderSize = 4 + 1 + 1 + 1 + 1 + 4 + 8 + 4 + 4 + 4 + 4 + 4*4

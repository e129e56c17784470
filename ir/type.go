package ir

import "strings"

// RootCategory is the root tag of a Type tree node.
type RootCategory uint8

const (
	RootVoid RootCategory = iota
	RootQualifierPointer
	RootQualifierConst
	RootQualifierVolatile
	RootInteger
	RootCFamily // catch-all for C-subset primitive aliases (char, etc.)
	RootFunction
	RootStruct
	RootUnion
	RootArray
)

func (r RootCategory) String() string {
	switch r {
	case RootVoid:
		return "void"
	case RootQualifierPointer:
		return "ptr"
	case RootQualifierConst:
		return "const"
	case RootQualifierVolatile:
		return "volatile"
	case RootInteger:
		return "int"
	case RootCFamily:
		return "c"
	case RootFunction:
		return "func"
	case RootStruct:
		return "struct"
	case RootUnion:
		return "union"
	case RootArray:
		return "array"
	default:
		return "unknown"
	}
}

// IntWidth is an integer type's bit width: 8, 16, 32, or 64.
type IntWidth uint8

const (
	Width8 IntWidth = 8
	Width16 IntWidth = 16
	Width32 IntWidth = 32
	Width64 IntWidth = 64
)

// MaxTypeDepth bounds recursive type trees to prevent stack blow-up in
// recursive traversal. 32 sits within the documented 10–64 cap.
const MaxTypeDepth = 32

// Type is a tree: a root category plus an ordered list of child types.
// Function types carry return types first, then parameter types, with
// NumReturns marking the split point. Integer nodes set Width/Signed.
type Type struct {
	Root       RootCategory
	Width      IntWidth
	Signed     bool
	Children   []*Type
	NumReturns int // for RootFunction: Children[:NumReturns] are returns
	Name       string // for RootStruct/RootUnion/RootCFamily aliases
}

// Depth returns the tree's maximum depth, 1 for a leaf.
func (t *Type) Depth() int {
	if t == nil || len(t.Children) == 0 {
		return 1
	}
	max := 0
	for _, c := range t.Children {
		if d := c.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Validate checks the depth cap and structural invariants (pointer/const/
// volatile take exactly one child; cycles are rejected implicitly since
// Type is a tree built bottom-up and Go has no way to alias a *Type into
// its own ancestor chain without deliberate aliasing, which Validate also
// guards against via a depth-bounded walk rather than a visited-set).
func (t *Type) Validate() error {
	return t.validate(0)
}

func (t *Type) validate(depth int) error {
	if t == nil {
		return Errf(KindInvalidType, "nil type node")
	}
	if depth >= MaxTypeDepth {
		return Errf(KindInvalidType, "type depth exceeds cap of %d", MaxTypeDepth)
	}
	switch t.Root {
	case RootQualifierPointer, RootQualifierConst, RootQualifierVolatile:
		if len(t.Children) != 1 {
			return Errf(KindInvalidType, "qualifier %s must have exactly one child", t.Root)
		}
	case RootInteger:
		switch t.Width {
		case Width8, Width16, Width32, Width64:
		default:
			return Errf(KindInvalidType, "invalid integer width %d", t.Width)
		}
	}
	for _, c := range t.Children {
		if err := c.validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports structural equality between two type trees.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Root != o.Root || t.Width != o.Width || t.Signed != o.Signed ||
		t.NumReturns != o.NumReturns || t.Name != o.Name || len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Constructors for the common type shapes.

func Void() *Type { return &Type{Root: RootVoid} }

func Int(width IntWidth, signed bool) *Type {
	return &Type{Root: RootInteger, Width: width, Signed: signed}
}

func Pointer(to *Type) *Type { return &Type{Root: RootQualifierPointer, Children: []*Type{to}} }

func Const(of *Type) *Type { return &Type{Root: RootQualifierConst, Children: []*Type{of}} }

func Volatile(of *Type) *Type { return &Type{Root: RootQualifierVolatile, Children: []*Type{of}} }

func Function(returns, params []*Type) *Type {
	children := make([]*Type, 0, len(returns)+len(params))
	children = append(children, returns...)
	children = append(children, params...)
	return &Type{Root: RootFunction, Children: children, NumReturns: len(returns)}
}

func StructOf(name string, fields []*Type) *Type {
	return &Type{Root: RootStruct, Name: name, Children: fields}
}

func Array(of *Type, length int) *Type {
	return &Type{Root: RootArray, Children: []*Type{of}, NumReturns: length}
}

// String renders a compact human-readable form, e.g. "ptr(const(i32))".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.Root {
	case RootInteger:
		if t.Signed {
			b.WriteString("i")
		} else {
			b.WriteString("u")
		}
		switch t.Width {
		case Width8:
			b.WriteString("8")
		case Width16:
			b.WriteString("16")
		case Width32:
			b.WriteString("32")
		case Width64:
			b.WriteString("64")
		}
		return
	case RootVoid:
		b.WriteString("void")
		return
	}
	b.WriteString(t.Root.String())
	if t.Name != "" {
		b.WriteString(" ")
		b.WriteString(t.Name)
	}
	if len(t.Children) > 0 {
		b.WriteString("(")
		for i, c := range t.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			c.write(b)
		}
		b.WriteString(")")
	}
}

// Package ir implements the Orion++ intermediate representation: the
// opcode/type taxonomy, the instruction and value data model, binary
// container read/write, and text disassembly/assembly.
package ir

import "fmt"

// Kind is a closed error-kind enumeration shared across the Orion++
// toolchain. Every fallible operation in this package returns
// an *Error whose Kind field can be inspected with errors.As.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindOutOfMemory
	KindBufferOverflow
	KindInvalidInstruction
	KindInvalidType
	KindInvalidValue
	KindInvalidMagic
	KindUnsupportedVersion
	KindUnsupportedFeature
	KindIoError
	KindParseError
	KindCorruptData
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindBufferOverflow:
		return "BufferOverflow"
	case KindInvalidInstruction:
		return "InvalidInstruction"
	case KindInvalidType:
		return "InvalidType"
	case KindInvalidValue:
		return "InvalidValue"
	case KindInvalidMagic:
		return "InvalidMagic"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	case KindUnsupportedFeature:
		return "UnsupportedFeature"
	case KindIoError:
		return "IoError"
	case KindParseError:
		return "ParseError"
	case KindCorruptData:
		return "CorruptData"
	case KindNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Error wraps a Kind with a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Errf builds an *Error with a formatted message.
func Errf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrapf builds an *Error with a formatted message and a wrapped cause.
func Wrapf(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

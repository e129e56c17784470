// Package object implements the Orion object-file container: header,
// section-header table, raw section bodies, and symbol table, used to
// package Orion++ IR or native sections for linking.
package object

import "fmt"

// Kind is the closed error-kind enumeration for this package.
type Kind int

const (
	KindInvalidMagic Kind = iota
	KindInvalidVersion
	KindInvalidFormat
	KindFileNotFound
	KindPermissionDenied
	KindOutOfMemory
	KindInvalidSection
	KindInvalidSymbol
	KindBufferTooSmall
	KindIoError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidMagic:
		return "InvalidMagic"
	case KindInvalidVersion:
		return "InvalidVersion"
	case KindInvalidFormat:
		return "InvalidFormat"
	case KindFileNotFound:
		return "FileNotFound"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindInvalidSection:
		return "InvalidSection"
	case KindInvalidSymbol:
		return "InvalidSymbol"
	case KindBufferTooSmall:
		return "BufferTooSmall"
	case KindIoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error pairs a Kind with a message and an optional wrapped cause.
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

func errf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

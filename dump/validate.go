package dump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/orionpp/orionpp/ir"
	"github.com/orionpp/orionpp/object"
)

// ValidateResult is one file's VALID/INVALID verdict: one line per file,
// with a reason attached on failure.
type ValidateResult struct {
	Path   string
	Valid  bool
	Reason string
}

func (r ValidateResult) String() string {
	if r.Valid {
		return fmt.Sprintf("VALID: %s", r.Path)
	}
	return fmt.Sprintf("INVALID: %s - %s", r.Path, r.Reason)
}

// ValidateFile re-reads only the header of path, classifying by magic
// and checking version compatibility without loading section bodies or
// instructions.
func ValidateFile(path string) ValidateResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidateResult{Path: path, Reason: err.Error()}
	}

	format, err := Sniff(bytes.NewReader(data))
	if err != nil {
		return ValidateResult{Path: path, Reason: err.Error()}
	}

	switch format {
	case FormatObject:
		return validateObjectHeader(path, data)
	case FormatOrionpp:
		return validateOrionppHeader(path, data)
	default:
		return ValidateResult{Path: path, Reason: "unrecognized magic bytes"}
	}
}

func validateObjectHeader(path string, data []byte) ValidateResult {
	if len(data) < object.HeaderSize {
		return ValidateResult{Path: path, Reason: "file smaller than object header"}
	}
	var h object.Header
	if err := binary.Read(bytes.NewReader(data[:object.HeaderSize]), binary.LittleEndian, &h); err != nil {
		return ValidateResult{Path: path, Reason: err.Error()}
	}
	if h.Magic != object.MagicOrion {
		return ValidateResult{Path: path, Reason: fmt.Sprintf("bad object magic %#x", h.Magic)}
	}
	if h.Version != 1 {
		return ValidateResult{Path: path, Reason: fmt.Sprintf("unsupported object version %d", h.Version)}
	}
	return ValidateResult{Path: path, Valid: true}
}

func validateOrionppHeader(path string, data []byte) ValidateResult {
	version, err := ir.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return ValidateResult{Path: path, Reason: err.Error()}
	}
	if err := ir.CheckVersion(version); err != nil {
		return ValidateResult{Path: path, Reason: err.Error()}
	}
	return ValidateResult{Path: path, Valid: true}
}

package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/orionpp/orionpp/ir"
	"github.com/orionpp/orionpp/object"
)

func TestValidateFileValidOrionpp(t *testing.T) {
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	v0 := b.NewVariable()
	if _, err := b.Emit(ir.FeatureISA, ir.OpVar, ir.Variable(v0), ir.TypeOperand(ir.Int(ir.Width32, true))); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var buf bytes.Buffer
	if err := ir.Write(&buf, b.Module); err != nil {
		t.Fatalf("Write: %v", err)
	}
	path := filepath.Join(t.TempDir(), "sample.opp")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result := ValidateFile(path)
	if !result.Valid {
		t.Fatalf("ValidateFile(%s) = %+v, want Valid", path, result)
	}
	if result.String() != "VALID: "+path {
		t.Fatalf("String() = %q, want %q", result.String(), "VALID: "+path)
	}
}

func TestValidateFileValidObject(t *testing.T) {
	f := object.NewOrionObject()
	path := filepath.Join(t.TempDir(), "sample.orio")
	if err := object.SaveToFile(f, path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	result := ValidateFile(path)
	if !result.Valid {
		t.Fatalf("ValidateFile(%s) = %+v, want Valid", path, result)
	}
}

func TestValidateFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.orio")
	result := ValidateFile(path)
	if result.Valid {
		t.Fatal("ValidateFile of a missing path: want Valid=false")
	}
	want := "INVALID: " + path + " - " + result.Reason
	if result.String() != want {
		t.Fatalf("String() = %q, want %q", result.String(), want)
	}
}

func TestValidateFileUnrecognizedMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, []byte("JUNKDATA"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	result := ValidateFile(path)
	if result.Valid {
		t.Fatal("ValidateFile of unrecognized magic: want Valid=false")
	}
}

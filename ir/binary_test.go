package ir

import (
	"bytes"
	"testing"
)

func buildSampleModule(t testing.TB) *Module {
	t.Helper()
	b := NewBuilder(FeatureISA.Bit() | FeatureHINT.Bit())
	v0 := b.NewVariable()
	v1 := b.NewVariable()
	lbl := b.NewLabel()

	mustEmit := func(f Feature, op Opcode, values ...*Value) {
		if _, err := b.Emit(f, op, values...); err != nil {
			t.Fatalf("Emit(%s, %d): %v", f, op, err)
		}
	}

	mustEmit(FeatureHINT, OpHintFuncBegin, b.Symbol("main"))
	mustEmit(FeatureISA, OpVar, Variable(v0), TypeOperand(Int(Width32, true)))
	mustEmit(FeatureISA, OpConst, Variable(v0), TypeOperand(Int(Width32, true)), Numeric(Base10, 41, false))
	mustEmit(FeatureISA, OpVar, Variable(v1), TypeOperand(Int(Width32, true)))
	mustEmit(FeatureISA, OpAdd, Variable(v1), Variable(v0), Numeric(Base10, 1, false))
	mustEmit(FeatureISA, OpLabel, Label(lbl))
	mustEmit(FeatureISA, OpRet, Variable(v1))
	mustEmit(FeatureHINT, OpHintFuncEnd)
	return b.Module
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := buildSampleModule(t)

	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !m.Equal(got) {
		t.Fatalf("round-tripped module not equal to original:\nwant %s\ngot  %s", Disassemble(m), Disassemble(got))
	}
}

func TestReadRejectsTruncatedHeader(t *testing.T) {
	m := buildSampleModule(t)
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	truncated := buf.Bytes()[:headerSize/2]
	if _, err := Read(bytes.NewReader(truncated)); err == nil {
		t.Fatal("Read of truncated header: want error, got nil")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	m := buildSampleModule(t)
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[0] ^= 0xFF
	if _, err := Read(bytes.NewReader(corrupt)); err == nil {
		t.Fatal("Read of corrupt magic: want error, got nil")
	}
}

func FuzzRead(f *testing.F) {
	m := buildSampleModule(f)
	var buf bytes.Buffer
	_ = Write(&buf, m)
	f.Add(buf.Bytes())
	f.Add([]byte{})
	f.Add([]byte{0x4F, 0x50, 0x50, 0x4F})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Read must never panic on arbitrary bytes; an error return is the
		// only acceptable failure mode for malformed input.
		_, _ = Read(bytes.NewReader(data))
	})
}

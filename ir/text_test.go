package ir

import "testing"

func buildRoundTrippableModule(t testing.TB) *Module {
	t.Helper()
	b := NewBuilder(FeatureISA.Bit() | FeatureHINT.Bit())
	v0 := b.NewVariable()
	lbl := b.NewLabel()

	mustEmit := func(f Feature, op Opcode, values ...*Value) {
		if _, err := b.Emit(f, op, values...); err != nil {
			t.Fatalf("Emit(%s, %d): %v", f, op, err)
		}
	}

	mustEmit(FeatureHINT, OpHintFuncBegin, b.Symbol("sum"))
	mustEmit(FeatureISA, OpConst, Variable(v0), Numeric(Base10, 7, false))
	mustEmit(FeatureISA, OpLabel, Label(lbl))
	mustEmit(FeatureISA, OpAdd, Variable(v0), Variable(v0), Numeric(Base16, 0xA, false))
	mustEmit(FeatureISA, OpRet, Variable(v0))
	mustEmit(FeatureHINT, OpHintFuncEnd)
	return b.Module
}

func TestDisassembleAssembleIdempotent(t *testing.T) {
	m := buildRoundTrippableModule(t)
	text := Disassemble(m)

	reassembled, err := Assemble(text, m.Features)
	if err != nil {
		t.Fatalf("Assemble: %v\ntext:\n%s", err, text)
	}

	text2 := Disassemble(reassembled)
	if text != text2 {
		t.Fatalf("disassembly not idempotent:\nfirst:\n%s\nsecond:\n%s", text, text2)
	}
}

func TestAssembleRejectsUnknownPlaceholder(t *testing.T) {
	if _, err := Assemble("ISA.VAR UNKNOWN(int.typedbytes)\n", FeatureISA.Bit()); err == nil {
		t.Fatal("Assemble of an UNKNOWN(...) placeholder: want error, got nil")
	}
}

package vm

import (
	"testing"

	"github.com/orionpp/orionpp/ir"
)

func mustEmit(t testing.TB, b *ir.Builder, f ir.Feature, op ir.Opcode, values ...*ir.Value) {
	t.Helper()
	if _, err := b.Emit(f, op, values...); err != nil {
		t.Fatalf("Emit(%s, %d): %v", f, op, err)
	}
}

// buildDivModule builds a module that computes a / b where b is a
// zero-valued variable: VAR a word; CONST a word 10; VAR b word;
// CONST b word 0; VAR c word; DIV c, a, b; RET c.
func buildDivModule(t testing.TB) *ir.Module {
	t.Helper()
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	a := b.NewVariable()
	bv := b.NewVariable()
	c := b.NewVariable()

	ty := ir.TypeOperand(ir.Int(ir.Width32, true))
	mustEmit(t, b, ir.FeatureISA, ir.OpVar, ir.Variable(a), ty)
	mustEmit(t, b, ir.FeatureISA, ir.OpConst, ir.Variable(a), ty, ir.Numeric(ir.Base10, 10, false))
	mustEmit(t, b, ir.FeatureISA, ir.OpVar, ir.Variable(bv), ty)
	mustEmit(t, b, ir.FeatureISA, ir.OpConst, ir.Variable(bv), ty, ir.Numeric(ir.Base10, 0, false))
	mustEmit(t, b, ir.FeatureISA, ir.OpVar, ir.Variable(c), ty)
	mustEmit(t, b, ir.FeatureISA, ir.OpDiv, ir.Variable(c), ir.Variable(a), ir.Variable(bv))
	mustEmit(t, b, ir.FeatureISA, ir.OpRet, ir.Variable(c))
	return b.Module
}

// TestDivisionByZeroFaults checks that a division by a zero-valued
// variable faults with DivisionByZero, never crashing or silently
// producing a result.
func TestDivisionByZeroFaults(t *testing.T) {
	m := buildDivModule(t)
	v := New()
	if err := v.LoadModule(m); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := v.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	err := v.Execute()
	if err == nil {
		t.Fatal("Execute of a division by zero: want error, got nil")
	}
	if v.State() != StateFaulted {
		t.Fatalf("state = %s, want Faulted", v.State())
	}
	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *vm.Error", err)
	}
	if verr.Kind != KindDivisionByZero {
		t.Fatalf("fault kind = %s, want DivisionByZero", verr.Kind)
	}
	if v.FaultError() != err {
		t.Fatalf("FaultError() = %v, want the same error Execute returned", v.FaultError())
	}
}

// buildUninitializedReadModule builds a module that declares a
// variable with VAR and immediately returns it, reading it before any
// CONST/MOV initializes it.
func buildUninitializedReadModule(t testing.TB) *ir.Module {
	t.Helper()
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	a := b.NewVariable()
	ty := ir.TypeOperand(ir.Int(ir.Width32, true))
	mustEmit(t, b, ir.FeatureISA, ir.OpVar, ir.Variable(a), ty)
	mustEmit(t, b, ir.FeatureISA, ir.OpRet, ir.Variable(a))
	return b.Module
}

// TestUninitializedReadFaults checks that reading a variable that was
// declared (VAR) but never given a value faults with
// UninitializedVariable.
func TestUninitializedReadFaults(t *testing.T) {
	m := buildUninitializedReadModule(t)
	v := New()
	if err := v.LoadModule(m); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := v.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	err := v.Execute()
	if err == nil {
		t.Fatal("Execute reading an uninitialized variable: want error, got nil")
	}
	if v.State() != StateFaulted {
		t.Fatalf("state = %s, want Faulted", v.State())
	}
	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *vm.Error", err)
	}
	if verr.Kind != KindUninitializedVariable {
		t.Fatalf("fault kind = %s, want UninitializedVariable", verr.Kind)
	}
}

// TestDuplicateLabelRejected checks that each label id may appear in
// exactly one ISA.LABEL; Prepare must reject a module that declares the
// same label id twice.
func TestDuplicateLabelRejected(t *testing.T) {
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	lbl := b.NewLabel()
	mustEmit(t, b, ir.FeatureISA, ir.OpLabel, ir.Label(lbl))
	mustEmit(t, b, ir.FeatureISA, ir.OpLabel, ir.Label(lbl))

	v := New()
	if err := v.LoadModule(b.Module); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	err := v.Prepare()
	if err == nil {
		t.Fatal("Prepare with a duplicate label id: want error, got nil")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Kind != KindInvalidLabelId {
		t.Fatalf("error = %v, want *vm.Error{Kind: InvalidLabelId}", err)
	}
}

// TestUndefinedJumpTargetFaults checks the complementary case: a JMP to
// a label id that was never registered must fault rather than running
// off into undefined behavior.
func TestUndefinedJumpTargetFaults(t *testing.T) {
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	mustEmit(t, b, ir.FeatureISA, ir.OpJmp, ir.Label(99))

	v := New()
	if err := v.LoadModule(b.Module); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := v.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	err := v.Execute()
	if err == nil {
		t.Fatal("Execute with an undefined jump target: want error, got nil")
	}
	if v.State() != StateFaulted {
		t.Fatalf("state = %s, want Faulted", v.State())
	}
}

// TestSimpleAddAndReturn exercises straight-line VAR/CONST/ADD/RET
// execution and checks the returned value, independent of the fault
// scenarios above.
func TestSimpleAddAndReturn(t *testing.T) {
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	d := b.NewVariable()
	ty := ir.TypeOperand(ir.Int(ir.Width32, true))
	mustEmit(t, b, ir.FeatureISA, ir.OpVar, ir.Variable(d), ty)
	mustEmit(t, b, ir.FeatureISA, ir.OpConst, ir.Variable(d), ty, ir.Numeric(ir.Base10, 41, false))
	mustEmit(t, b, ir.FeatureISA, ir.OpAdd, ir.Variable(d), ir.Variable(d), ir.Numeric(ir.Base10, 1, false))
	mustEmit(t, b, ir.FeatureISA, ir.OpRet, ir.Variable(d))

	v := New()
	if err := v.LoadModule(b.Module); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := v.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := v.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v.State() != StateHalted {
		t.Fatalf("state = %s, want Halted", v.State())
	}
	ret, ok := v.ReturnValue()
	if !ok {
		t.Fatal("ReturnValue: ok = false in Halted state")
	}
	if ret.asInt64() != 42 {
		t.Fatalf("return value = %d, want 42", ret.asInt64())
	}
}

// TestMemoryCapExceededFaults covers the memory-accounting half of
// resource-limit enforcement: a cap too small for even one
// instruction must fault with MemoryLimitExceeded during Load.
func TestMemoryCapExceededFaults(t *testing.T) {
	b := ir.NewBuilder(ir.FeatureISA.Bit())
	mustEmit(t, b, ir.FeatureISA, ir.OpLabel, ir.Label(b.NewLabel()))

	v := New(WithMemoryCap(1))
	err := v.LoadModule(b.Module)
	if err == nil {
		t.Fatal("LoadModule against an exhausted memory cap: want error, got nil")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Kind != KindMemoryLimitExceeded {
		t.Fatalf("error = %v, want *vm.Error{Kind: MemoryLimitExceeded}", err)
	}
}

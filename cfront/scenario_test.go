package cfront

import (
	"testing"

	"github.com/orionpp/orionpp/ir"
	"github.com/orionpp/orionpp/vm"
)

// compileAndRun drives the full occ pipeline (parse → lower → VM run) and
// returns the VM after Execute, for scenario assertions against its
// state and return value.
func compileAndRun(t *testing.T, src string) *vm.VM {
	t.Helper()
	p := NewParser(src, "scenario.c")
	prog := p.ParseProgram()
	if len(p.Diagnostics()) != 0 {
		t.Fatalf("parse diagnostics for %q: %v", src, p.Diagnostics())
	}

	features := ir.FeatureSet(0).With(ir.FeatureISA).With(ir.FeatureHINT)
	l := NewLowering(features, "scenario.c")
	l.LowerProgram(prog)
	if len(l.Diagnostics()) != 0 {
		t.Fatalf("lowering diagnostics for %q: %v", src, l.Diagnostics())
	}

	v := vm.New()
	if err := v.LoadModule(l.Module()); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := v.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := v.Execute(); err != nil {
		t.Fatalf("Execute: %v (fault: %v)", err, v.FaultError())
	}
	return v
}

// TestScenarioArithmeticReturn checks that "int main() { return 2 +
// 3 * 4; }" lowers to three CONSTs, one MUL, one ADD, one RET, and the
// VM halts with 14.
func TestScenarioArithmeticReturn(t *testing.T) {
	l := NewLowering(ir.FeatureSet(0).With(ir.FeatureISA).With(ir.FeatureHINT), "s1.c")
	p := NewParser("int main() { return 2 + 3 * 4; }", "s1.c")
	prog := p.ParseProgram()
	if len(p.Diagnostics()) != 0 {
		t.Fatalf("parse diagnostics: %v", p.Diagnostics())
	}
	l.LowerProgram(prog)
	if len(l.Diagnostics()) != 0 {
		t.Fatalf("lowering diagnostics: %v", l.Diagnostics())
	}

	var constCount, mulCount, addCount, retCount int
	for _, in := range l.Module().Instructions {
		if in.Feature != ir.FeatureISA {
			continue
		}
		switch in.Opcode {
		case ir.OpConst:
			constCount++
		case ir.OpMul:
			mulCount++
		case ir.OpAdd:
			addCount++
		case ir.OpRet:
			retCount++
		}
	}
	if constCount != 3 || mulCount != 1 || addCount != 1 || retCount != 1 {
		t.Fatalf("instruction counts CONST=%d MUL=%d ADD=%d RET=%d, want 3/1/1/1",
			constCount, mulCount, addCount, retCount)
	}

	v := compileAndRun(t, "int main() { return 2 + 3 * 4; }")
	if v.State() != vm.StateHalted {
		t.Fatalf("state = %s, want Halted", v.State())
	}
	ret, ok := v.ReturnValue()
	if !ok {
		t.Fatal("ReturnValue: ok = false in Halted state")
	}
	got := int64(ret.Num)
	if ret.Negative {
		got = -got
	}
	if got != 14 {
		t.Fatalf("return value = %d, want 14", got)
	}
}

// TestScenarioBranchOnComparison checks that "int f(){ int x = 5;
// if (x > 3) return 1; return 0; }" returns 1, exercising the
// BRGT → CONST/JMP/LABEL comparison pattern followed by the BRZ-guarded
// if/else skip.
func TestScenarioBranchOnComparison(t *testing.T) {
	v := compileAndRun(t, "int f(){ int x = 5; if (x > 3) return 1; return 0; }")
	if v.State() != vm.StateHalted {
		t.Fatalf("state = %s, want Halted", v.State())
	}
	ret, ok := v.ReturnValue()
	if !ok {
		t.Fatal("ReturnValue: ok = false in Halted state")
	}
	if ret.Num != 1 || ret.Negative {
		t.Fatalf("return value = %d, want 1", int64(ret.Num))
	}
}

// TestScenarioBranchOnComparisonFalse covers the complementary branch:
// when the comparison is false, f must return 0.
func TestScenarioBranchOnComparisonFalse(t *testing.T) {
	v := compileAndRun(t, "int f(){ int x = 1; if (x > 3) return 1; return 0; }")
	ret, ok := v.ReturnValue()
	if !ok {
		t.Fatal("ReturnValue: ok = false in Halted state")
	}
	if ret.Num != 0 {
		t.Fatalf("return value = %d, want 0", int64(ret.Num))
	}
}

// TestScenarioWhileLoop checks that "int main(){ int i=0; int s=0;
// while (i<10) { s=s+i; i=i+1; } return s; }" returns 45 (the sum
// 0+1+...+9).
func TestScenarioWhileLoop(t *testing.T) {
	v := compileAndRun(t, "int main(){ int i=0; int s=0; while (i<10) { s=s+i; i=i+1; } return s; }")
	if v.State() != vm.StateHalted {
		t.Fatalf("state = %s, want Halted", v.State())
	}
	ret, ok := v.ReturnValue()
	if !ok {
		t.Fatal("ReturnValue: ok = false in Halted state")
	}
	if ret.Num != 45 || ret.Negative {
		t.Fatalf("return value = %d, want 45", int64(ret.Num))
	}
}

package cfront

import (
	"testing"
	"time"
)

func parseOK(t *testing.T, src string) *Program {
	t.Helper()
	p := NewParser(src, "test.c")
	prog := p.ParseProgram()
	if len(p.Diagnostics()) != 0 {
		t.Fatalf("ParseProgram(%q) diagnostics: %v", src, p.Diagnostics())
	}
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parseOK(t, "int main() { return 42; }")
	if len(prog.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" || fn.ReturnType != "int" {
		t.Fatalf("function = %+v, want name=main returnType=int", fn)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(fn.Body.Stmts))
	}
	ret, ok := fn.Body.Stmts[0].(*Return)
	if !ok {
		t.Fatalf("statement type = %T, want *Return", fn.Body.Stmts[0])
	}
	num, ok := ret.Value.(*Number)
	if !ok || num.Value != 42 {
		t.Fatalf("return value = %+v, want Number{42}", ret.Value)
	}
}

func TestParseParams(t *testing.T) {
	prog := parseOK(t, "int add(int a, int b) { return a + b; }")
	fn := prog.Functions[0]
	if len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Fatalf("params = %+v, want [a b]", fn.Params)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseOK(t, "int f() { if (1) { return 1; } else { return 0; } }")
	stmt := prog.Functions[0].Body.Stmts[0]
	ifs, ok := stmt.(*If)
	if !ok {
		t.Fatalf("statement type = %T, want *If", stmt)
	}
	if ifs.Else == nil {
		t.Fatal("If.Else = nil, want a populated else block")
	}
}

func TestParseWhileAndFor(t *testing.T) {
	prog := parseOK(t, "int f() { while (1) {} for (int i = 0; i; i++) {} }")
	stmts := prog.Functions[0].Body.Stmts
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if _, ok := stmts[0].(*While); !ok {
		t.Fatalf("statement 0 type = %T, want *While", stmts[0])
	}
	if _, ok := stmts[1].(*For); !ok {
		t.Fatalf("statement 1 type = %T, want *For", stmts[1])
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := parseOK(t, "int f() { return 1 + 2 * 3; }")
	ret := prog.Functions[0].Body.Stmts[0].(*Return)
	top, ok := ret.Value.(*BinaryOp)
	if !ok || top.Op != "+" {
		t.Fatalf("top operator = %+v, want BinaryOp{+}", ret.Value)
	}
	rhs, ok := top.Right.(*BinaryOp)
	if !ok || rhs.Op != "*" {
		t.Fatalf("right operand = %+v, want BinaryOp{*} (precedence climbing)", top.Right)
	}
}

func TestParseErrorRecoverySynchronizes(t *testing.T) {
	// A malformed declaration must be reported as a diagnostic, and
	// panic-mode recovery must terminate ParseProgram rather than
	// looping or panicking on the malformed input.
	p := NewParser("int ; int g() { return 0; }", "test.c")
	done := make(chan *Program, 1)
	go func() { done <- p.ParseProgram() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ParseProgram did not terminate on malformed input (recovery loop?)")
	}
	if len(p.Diagnostics()) == 0 {
		t.Fatal("want at least one diagnostic for the malformed declaration")
	}
}

package cfront

import (
	"fmt"

	"github.com/orionpp/orionpp/ir"
)

var wordType = ir.Int(ir.Width64, true)
var byteType = ir.Int(ir.Width8, true)
var strType = ir.Pointer(byteType)

func cType(name string) *ir.Type {
	switch name {
	case "char":
		return byteType
	case "void":
		return ir.Void()
	default:
		return wordType
	}
}

// Lowering walks an AST and emits Orion++ IR. It
// maintains a symbol table (name → variable-id) and the Builder's
// monotonic next_var/next_label counters. The symbol table is reset at
// each function boundary: this C subset has no nested lexical scoping,
// every name declared in a function lives for the whole function body.
type Lowering struct {
	b     *ir.Builder
	file  string
	vars  map[string]uint32
	diags []*Diagnostic
}

// NewLowering returns a Lowering targeting a fresh module with features
// enabled.
func NewLowering(features ir.FeatureSet, file string) *Lowering {
	return &Lowering{b: ir.NewBuilder(features), file: file, vars: map[string]uint32{}}
}

// Module returns the module built so far.
func (l *Lowering) Module() *ir.Module { return l.b.Module }

// Diagnostics returns every diagnostic raised while lowering.
func (l *Lowering) Diagnostics() []*Diagnostic { return l.diags }

func (l *Lowering) errorAt(n Node, format string, args ...any) {
	line, col := n.Position()
	l.diags = append(l.diags, &Diagnostic{File: l.file, Line: line, Col: col, Message: fmt.Sprintf(format, args...)})
}

// emit wraps Builder.Emit, surfacing a rejected opcode pair or disabled
// feature as a diagnostic rather than a panic.
func (l *Lowering) emit(f ir.Feature, op ir.Opcode, values ...*ir.Value) {
	if _, err := l.b.Emit(f, op, values...); err != nil {
		l.diags = append(l.diags, &Diagnostic{File: l.file, Message: err.Error()})
	}
}

// LowerProgram lowers every function in program order.
func (l *Lowering) LowerProgram(prog *Program) {
	for _, fn := range prog.Functions {
		l.lowerFunction(fn)
	}
}

// lowerFunction. Declares parameters (VAR each, id from symbol table);
// lowers the body; emits HINT.FUNCEND.
func (l *Lowering) lowerFunction(fn *Function) {
	l.vars = map[string]uint32{}
	l.emit(ir.FeatureHINT, ir.OpHintFuncBegin, l.b.Symbol(fn.Name))
	for _, p := range fn.Params {
		id := l.b.NewVariable()
		l.vars[p.Name] = id
		l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(id), ir.TypeOperand(cType(p.Type)))
	}
	l.lowerBlock(fn.Body)
	l.emit(ir.FeatureHINT, ir.OpHintFuncEnd)
}

func (l *Lowering) lowerBlock(b *Block) {
	for _, s := range b.Stmts {
		l.lowerStmt(s)
	}
}

func (l *Lowering) lowerStmt(n Node) {
	switch s := n.(type) {
	case *VariableDecl:
		l.lowerVariableDecl(s)
	case *If:
		l.lowerIf(s)
	case *While:
		l.lowerWhile(s)
	case *For:
		l.lowerFor(s)
	case *Return:
		l.lowerReturn(s)
	case *Block:
		l.lowerBlock(s)
	case *ExpressionStmt:
		l.lowerExpr(s.Expr)
	default:
		l.lowerExpr(n)
	}
}

// lowerVariableDecl. Emit ISA.VAR id, type. If an initializer is present,
// lower it to a result variable r and emit ISA.MOV id, r.
func (l *Lowering) lowerVariableDecl(decl *VariableDecl) {
	id := l.b.NewVariable()
	l.vars[decl.Name] = id
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(id), ir.TypeOperand(cType(decl.Type)))
	if decl.Init != nil {
		r := l.lowerExpr(decl.Init)
		l.emit(ir.FeatureISA, ir.OpMov, ir.Variable(id), ir.Variable(r))
	}
}

// lowerExpr lowers an expression node to the id of a variable holding its
// result, emitting whatever instructions are required to produce it.
func (l *Lowering) lowerExpr(n Node) uint32 {
	switch e := n.(type) {
	case *Identifier:
		if id, ok := l.vars[e.Name]; ok {
			return id
		}
		l.errorAt(e, "undefined variable %q", e.Name)
		return l.constNumeric(0, false)
	case *Number:
		return l.constNumeric(uint64(e.Value), e.Value < 0)
	case *Char:
		return l.constNumeric(uint64(e.Value), false)
	case *String:
		d := l.b.NewVariable()
		l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(strType))
		l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(strType), l.b.StringLiteral(e.Value))
		return d
	case *Assignment:
		return l.lowerAssignment(e)
	case *BinaryOp:
		return l.lowerBinaryOp(e)
	case *UnaryOp:
		return l.lowerUnaryOp(e)
	case *Call:
		return l.lowerCall(e)
	default:
		return l.constNumeric(0, false)
	}
}

func (l *Lowering) constNumeric(magnitude uint64, negative bool) uint32 {
	d := l.b.NewVariable()
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, magnitude, negative))
	return d
}

// lowerAssignment. Lower RHS to r; emit ISA.MOV id, r for the bound name.
// Assignment returns the target's id.
func (l *Lowering) lowerAssignment(a *Assignment) uint32 {
	r := l.lowerExpr(a.Value)
	id, ok := l.vars[a.Target]
	if !ok {
		l.errorAt(a, "undefined variable %q", a.Target)
		return r
	}
	l.emit(ir.FeatureISA, ir.OpMov, ir.Variable(id), ir.Variable(r))
	return id
}

var comparisonOps = map[string]ir.Opcode{
	"==": ir.OpBreq, "!=": ir.OpBrneq,
	"<": ir.OpBrlt, "<=": ir.OpBrle,
	">": ir.OpBrgt, ">=": ir.OpBrge,
}

var arithmeticOps = map[string]ir.Opcode{
	"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpDiv, "%": ir.OpMod,
	"&": ir.OpAnd, "|": ir.OpOr, "^": ir.OpXor, "<<": ir.OpShl, ">>": ir.OpShr,
}

func (l *Lowering) lowerBinaryOp(b *BinaryOp) uint32 {
	switch b.Op {
	case "&&":
		return l.lowerLogicalAnd(b)
	case "||":
		return l.lowerLogicalOr(b)
	}
	if op, ok := comparisonOps[b.Op]; ok {
		return l.lowerComparison(b, op)
	}
	op := arithmeticOps[b.Op]
	left := l.lowerExpr(b.Left)
	right := l.lowerExpr(b.Right)
	d := l.b.NewVariable()
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
	l.emit(ir.FeatureISA, op, ir.Variable(d), ir.Variable(left), ir.Variable(right))
	return d
}

// lowerComparison. Lower operands to l, r; allocate d; emit ISA.VAR d,
// word; allocate L_true, L_end; emit ISA.BR<op> l, r, L_true; emit
// ISA.CONST d, word, 0; emit ISA.JMP L_end; emit ISA.LABEL L_true; emit
// ISA.CONST d, word, 1; emit ISA.LABEL L_end. Emitted in this exact
// order for reproducible output.
func (l *Lowering) lowerComparison(b *BinaryOp, op ir.Opcode) uint32 {
	left := l.lowerExpr(b.Left)
	right := l.lowerExpr(b.Right)
	d := l.b.NewVariable()
	lTrue := l.b.NewLabel()
	lEnd := l.b.NewLabel()
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
	l.emit(ir.FeatureISA, op, ir.Variable(left), ir.Variable(right), ir.Label(lTrue))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, 0, false))
	l.emit(ir.FeatureISA, ir.OpJmp, ir.Label(lEnd))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lTrue))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, 1, false))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lEnd))
	return d
}

// lowerLogicalAnd generalizes the If/While "standard lowering using BRZ"
// pattern to short-circuit &&: the right operand is only evaluated if
// the left is nonzero.
func (l *Lowering) lowerLogicalAnd(b *BinaryOp) uint32 {
	d := l.b.NewVariable()
	lFalse := l.b.NewLabel()
	lEnd := l.b.NewLabel()
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
	left := l.lowerExpr(b.Left)
	l.emit(ir.FeatureISA, ir.OpBrz, ir.Variable(left), ir.Label(lFalse))
	right := l.lowerExpr(b.Right)
	l.emit(ir.FeatureISA, ir.OpBrz, ir.Variable(right), ir.Label(lFalse))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, 1, false))
	l.emit(ir.FeatureISA, ir.OpJmp, ir.Label(lEnd))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lFalse))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, 0, false))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lEnd))
	return d
}

func (l *Lowering) lowerLogicalOr(b *BinaryOp) uint32 {
	d := l.b.NewVariable()
	lTrue := l.b.NewLabel()
	lEnd := l.b.NewLabel()
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
	left := l.lowerExpr(b.Left)
	l.emit(ir.FeatureISA, ir.OpBrnz, ir.Variable(left), ir.Label(lTrue))
	right := l.lowerExpr(b.Right)
	l.emit(ir.FeatureISA, ir.OpBrnz, ir.Variable(right), ir.Label(lTrue))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, 0, false))
	l.emit(ir.FeatureISA, ir.OpJmp, ir.Label(lEnd))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lTrue))
	l.emit(ir.FeatureISA, ir.OpConst, ir.Variable(d), ir.TypeOperand(wordType), ir.Numeric(ir.Base10, 1, false))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lEnd))
	return d
}

// lowerUnaryOp. -x → VAR zero; CONST zero,0; SUB d, zero, x. !x → NOT d,
// x. ++x/--x → INC/DEC d, x; MOV x, d. x++/x-- → INCp/DECp d, x.
func (l *Lowering) lowerUnaryOp(u *UnaryOp) uint32 {
	switch u.Op {
	case "-":
		x := l.lowerExpr(u.Operand)
		zero := l.constNumeric(0, false)
		d := l.b.NewVariable()
		l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
		l.emit(ir.FeatureISA, ir.OpSub, ir.Variable(d), ir.Variable(zero), ir.Variable(x))
		return d
	case "!":
		x := l.lowerExpr(u.Operand)
		d := l.b.NewVariable()
		l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
		l.emit(ir.FeatureISA, ir.OpNot, ir.Variable(d), ir.Variable(x))
		return d
	case "pre++", "pre--":
		xid := l.identVar(u.Operand)
		d := l.b.NewVariable()
		op := ir.OpInc
		if u.Op == "pre--" {
			op = ir.OpDec
		}
		l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
		l.emit(ir.FeatureISA, op, ir.Variable(d), ir.Variable(xid))
		l.emit(ir.FeatureISA, ir.OpMov, ir.Variable(xid), ir.Variable(d))
		return d
	case "post++", "post--":
		xid := l.identVar(u.Operand)
		d := l.b.NewVariable()
		op := ir.OpIncp
		if u.Op == "post--" {
			op = ir.OpDecp
		}
		l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(d), ir.TypeOperand(wordType))
		l.emit(ir.FeatureISA, op, ir.Variable(d), ir.Variable(xid))
		return d
	}
	return l.lowerExpr(u.Operand)
}

func (l *Lowering) identVar(n Node) uint32 {
	id, ok := n.(*Identifier)
	if !ok {
		l.errorAt(n, "increment/decrement operand must be a variable")
		return l.lowerExpr(n)
	}
	v, found := l.vars[id.Name]
	if !found {
		l.errorAt(n, "undefined variable %q", id.Name)
		return l.constNumeric(0, false)
	}
	return v
}

// lowerCall. Lower arguments left-to-right to ids; emit ISA.CALL
// result_var, symbol(name), arg_var*.
func (l *Lowering) lowerCall(c *Call) uint32 {
	argVals := make([]*ir.Value, 0, len(c.Args)+2)
	result := l.b.NewVariable()
	l.emit(ir.FeatureISA, ir.OpVar, ir.Variable(result), ir.TypeOperand(wordType))
	argVals = append(argVals, ir.Variable(result), l.b.Symbol(c.Callee))
	for _, a := range c.Args {
		argID := l.lowerExpr(a)
		argVals = append(argVals, ir.Variable(argID))
	}
	l.emit(ir.FeatureISA, ir.OpCall, argVals...)
	return result
}

// lowerIf. Standard lowering using BRZ on the lowered condition to an
// else/end label (the canonical pattern).
func (l *Lowering) lowerIf(s *If) {
	cond := l.lowerExpr(s.Cond)
	lElse := l.b.NewLabel()
	l.emit(ir.FeatureISA, ir.OpBrz, ir.Variable(cond), ir.Label(lElse))
	l.lowerBlock(s.Then)
	if s.Else != nil {
		lEnd := l.b.NewLabel()
		l.emit(ir.FeatureISA, ir.OpJmp, ir.Label(lEnd))
		l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lElse))
		l.lowerBlock(s.Else)
		l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lEnd))
	} else {
		l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lElse))
	}
}

// lowerWhile. Standard lowering using BRZ on the lowered condition to the
// loop's end label, re-evaluated each iteration.
func (l *Lowering) lowerWhile(s *While) {
	lStart := l.b.NewLabel()
	lEnd := l.b.NewLabel()
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lStart))
	cond := l.lowerExpr(s.Cond)
	l.emit(ir.FeatureISA, ir.OpBrz, ir.Variable(cond), ir.Label(lEnd))
	l.lowerBlock(s.Body)
	l.emit(ir.FeatureISA, ir.OpJmp, ir.Label(lStart))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lEnd))
}

func (l *Lowering) lowerFor(s *For) {
	if s.Init != nil {
		l.lowerForInit(s.Init)
	}
	lStart := l.b.NewLabel()
	lEnd := l.b.NewLabel()
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lStart))
	if s.Cond != nil {
		cond := l.lowerExpr(s.Cond)
		l.emit(ir.FeatureISA, ir.OpBrz, ir.Variable(cond), ir.Label(lEnd))
	}
	l.lowerBlock(s.Body)
	if s.Post != nil {
		l.lowerExpr(s.Post)
	}
	l.emit(ir.FeatureISA, ir.OpJmp, ir.Label(lStart))
	l.emit(ir.FeatureISA, ir.OpLabel, ir.Label(lEnd))
}

func (l *Lowering) lowerForInit(n Node) {
	if decl, ok := n.(*VariableDecl); ok {
		l.lowerVariableDecl(decl)
		return
	}
	l.lowerExpr(n)
}

// lowerReturn. Lower expression if present; emit ISA.RET r?.
func (l *Lowering) lowerReturn(s *Return) {
	if s.Value == nil {
		l.emit(ir.FeatureISA, ir.OpRet)
		return
	}
	r := l.lowerExpr(s.Value)
	l.emit(ir.FeatureISA, ir.OpRet, ir.Variable(r))
}

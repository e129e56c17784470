package vm

import (
	"strings"

	"github.com/orionpp/orionpp/ir"
)

// step executes the instruction at the current PC and reports whether
// execution should halt. Control-flow opcodes set v.pc explicitly; every
// other opcode falls through to the trailing increment: validate
// runtime safety, dispatch, then update PC.
func (v *VM) step() (halted bool, err error) {
	in := v.module.Instructions[v.pc]

	if in.Feature != ir.FeatureISA {
		v.pc++
		return false, nil // HINT/TYPE/ABI/OBJ execute as no-ops
	}

	switch in.Opcode {
	case ir.OpVar:
		err = v.execVar(in)
	case ir.OpConst:
		err = v.execConst(in)
	case ir.OpMov:
		err = v.execMov(in)
	case ir.OpLea:
		err = v.execLea(in)
	case ir.OpLabel:
		// no-op at run time, registered in Prepare
	case ir.OpJmp:
		return false, v.execJmp(in)
	case ir.OpBreq, ir.OpBrneq, ir.OpBrlt, ir.OpBrle, ir.OpBrgt, ir.OpBrge:
		return false, v.execBranchCompare(in)
	case ir.OpBrz, ir.OpBrnz:
		return false, v.execBranchZero(in)
	case ir.OpCall:
		err = v.execCall(in)
	case ir.OpRet:
		return true, v.execRet(in)
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		err = v.execArith(in)
	case ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpShr:
		err = v.execBitwise(in)
	case ir.OpNot:
		err = v.execNot(in)
	case ir.OpInc, ir.OpDec:
		err = v.execIncDec(in)
	case ir.OpIncp, ir.OpDecp:
		err = v.execIncDecPost(in)
	default:
		err = errf(KindInvalidInstruction, v.pc, "unrecognized ISA opcode %d", in.Opcode)
	}
	if err != nil {
		return false, err
	}
	v.pc++
	return false, nil
}

// execVar. Create uninitialized variable; error if id already defined.
func (v *VM) execVar(in *ir.Instruction) error {
	id := in.Values[0].VariableID
	if _, exists := v.vars[id]; exists {
		return errf(KindInvalidVariableId, v.pc, "variable %d already defined", id)
	}
	ty := in.Values[1].PrimType
	if err := v.chargeMemory(8); err != nil {
		return err
	}
	v.vars[id] = numericVariable(id, ty)
	return nil
}

// execConst. Create if absent; set value; mark initialized.
func (v *VM) execConst(in *ir.Instruction) error {
	id := in.Values[0].VariableID
	ty := in.Values[1].PrimType
	lit := in.Values[2]

	va, exists := v.vars[id]
	if !exists {
		if err := v.chargeMemory(8); err != nil {
			return err
		}
		va = numericVariable(id, ty)
		v.vars[id] = va
	}
	switch lit.Tag {
	case ir.TagNumeric:
		va.Num = lit.NumMagnitude
		va.Negative = lit.NumNegative
	case ir.TagString:
		s, err := v.module.Strings.Get(lit.StrOffset)
		if err != nil {
			return wrapf(KindCorruptData, v.pc, err, "resolving CONST string literal")
		}
		va.Str = s
	default:
		return errf(KindTypeMismatch, v.pc, "CONST literal has unsupported tag %s", lit.Tag)
	}
	va.Type = ty
	va.Initialized = true
	return nil
}

// execMov. src must be initialized; convert to dst.type (numeric↔numeric
// permitted; string copy deep).
func (v *VM) execMov(in *ir.Instruction) error {
	dstID := in.Values[0].VariableID
	srcID := in.Values[1].VariableID
	src, err := v.requireInitialized(srcID)
	if err != nil {
		return err
	}
	dst, ok := v.vars[dstID]
	if !ok {
		return errf(KindInvalidVariableId, v.pc, "variable %d not declared", dstID)
	}
	dst.Num = src.Num
	dst.Negative = src.Negative
	dst.Str = src.Str
	dst.Initialized = true
	return nil
}

// execLea. Address-of. Implementation-defined; rejected outright in
// strict mode since this VM has no addressable memory model beyond the
// variable store, only a best-effort alias in relaxed mode.
func (v *VM) execLea(in *ir.Instruction) error {
	if v.strict {
		return errf(KindInvalidInstruction, v.pc, "LEA is rejected in strict mode")
	}
	dstID := in.Values[0].VariableID
	srcID := in.Values[1].VariableID
	src, err := v.lookup(srcID)
	if err != nil {
		return err
	}
	dst, ok := v.vars[dstID]
	if !ok {
		return errf(KindInvalidVariableId, v.pc, "variable %d not declared", dstID)
	}
	dst.Num = uint64(srcID)
	dst.Type = ir.Pointer(src.Type)
	dst.Initialized = true
	return nil
}

func (v *VM) execJmp(in *ir.Instruction) error {
	idx, err := v.resolveLabel(in.Values[0].LabelID)
	if err != nil {
		return err
	}
	v.pc = idx
	return nil
}

func (v *VM) execBranchCompare(in *ir.Instruction) error {
	a, err := v.requireInitialized(in.Values[0].VariableID)
	if err != nil {
		return err
	}
	b, err := v.requireInitialized(in.Values[1].VariableID)
	if err != nil {
		return err
	}
	idx, err := v.resolveLabel(in.Values[2].LabelID)
	if err != nil {
		return err
	}

	var take bool
	if a.Str != "" || b.Str != "" {
		cmp := strings.Compare(a.Str, b.Str)
		take = compareHolds(in.Opcode, cmp)
	} else {
		av, bv := a.asInt64(), b.asInt64()
		cmp := 0
		switch {
		case av < bv:
			cmp = -1
		case av > bv:
			cmp = 1
		}
		take = compareHolds(in.Opcode, cmp)
	}
	if take {
		v.pc = idx
	} else {
		v.pc++
	}
	return nil
}

func compareHolds(op ir.Opcode, cmp int) bool {
	switch op {
	case ir.OpBreq:
		return cmp == 0
	case ir.OpBrneq:
		return cmp != 0
	case ir.OpBrlt:
		return cmp < 0
	case ir.OpBrle:
		return cmp <= 0
	case ir.OpBrgt:
		return cmp > 0
	case ir.OpBrge:
		return cmp >= 0
	default:
		return false
	}
}

// execBranchZero. v initialized and numeric; jump iff value is zero /
// non-zero.
func (v *VM) execBranchZero(in *ir.Instruction) error {
	val, err := v.requireInitialized(in.Values[0].VariableID)
	if err != nil {
		return err
	}
	idx, err := v.resolveLabel(in.Values[1].LabelID)
	if err != nil {
		return err
	}
	isZero := val.Num == 0
	take := isZero
	if in.Opcode == ir.OpBrnz {
		take = !isZero
	}
	if take {
		v.pc = idx
	} else {
		v.pc++
	}
	return nil
}

// execCall. Validate depth < cap; dispatch by symbol name; store result.
// Built-in print is required.
func (v *VM) execCall(in *ir.Instruction) error {
	if v.callDepth >= v.callCap {
		return errf(KindCallDepthExceeded, v.pc, "call depth exceeds cap of %d", v.callCap)
	}
	resultID := in.Values[0].VariableID
	name, err := v.module.Strings.Get(in.Values[1].StrOffset)
	if err != nil {
		return wrapf(KindInvalidFunctionCall, v.pc, err, "resolving call target")
	}

	args := make([]*Variable, 0, len(in.Values)-2)
	for _, a := range in.Values[2:] {
		av, err := v.requireInitialized(a.VariableID)
		if err != nil {
			return err
		}
		args = append(args, av)
	}

	result, ok := v.vars[resultID]
	if !ok {
		return errf(KindInvalidVariableId, v.pc, "variable %d not declared", resultID)
	}

	switch name {
	case "print":
		if len(args) != 1 {
			return errf(KindInvalidFunctionCall, v.pc, "print takes exactly one argument, got %d", len(args))
		}
		v.callDepth++
		v.printBuiltin(args[0])
		v.callDepth--
		result.Num = 0
		result.Initialized = true
		return nil
	default:
		return errf(KindInvalidFunctionCall, v.pc, "unknown call target %q", name)
	}
}

func (v *VM) printBuiltin(arg *Variable) {
	if arg.Str != "" {
		v.logger.Printf("print: %s", arg.Str)
		return
	}
	v.logger.Printf("print: %d", arg.asInt64())
}

// execRet. Copy v into the VM's return slot (deep for strings); halt.
func (v *VM) execRet(in *ir.Instruction) error {
	if len(in.Values) == 0 {
		v.returnVar = nil
		return nil
	}
	src, err := v.requireInitialized(in.Values[0].VariableID)
	if err != nil {
		return err
	}
	v.returnVar = &Variable{ID: src.ID, Type: src.Type, Initialized: true, Num: src.Num, Negative: src.Negative, Str: src.Str}
	return nil
}

// execArith. Initialized numeric operands; DIV/MOD reject zero b with
// DivisionByZero.
func (v *VM) execArith(in *ir.Instruction) error {
	d, a, b, err := v.arithOperands(in)
	if err != nil {
		return err
	}
	av, bv := a.asInt64(), b.asInt64()
	var result int64
	switch in.Opcode {
	case ir.OpAdd:
		result = av + bv
	case ir.OpSub:
		result = av - bv
	case ir.OpMul:
		result = av * bv
	case ir.OpDiv:
		if bv == 0 {
			return errf(KindDivisionByZero, v.pc, "division by zero")
		}
		result = av / bv
	case ir.OpMod:
		if bv == 0 {
			return errf(KindDivisionByZero, v.pc, "modulo by zero")
		}
		result = av % bv
	}
	setSigned(d, result)
	return nil
}

func (v *VM) execBitwise(in *ir.Instruction) error {
	d, a, b, err := v.arithOperands(in)
	if err != nil {
		return err
	}
	av, bv := a.Num, b.Num
	var result uint64
	switch in.Opcode {
	case ir.OpAnd:
		result = av & bv
	case ir.OpOr:
		result = av | bv
	case ir.OpXor:
		result = av ^ bv
	case ir.OpShl:
		result = av << (bv & 63)
	case ir.OpShr:
		result = av >> (bv & 63)
	}
	d.Num = result
	d.Negative = false
	d.Initialized = true
	return nil
}

func (v *VM) execNot(in *ir.Instruction) error {
	d, ok := v.vars[in.Values[0].VariableID]
	if !ok {
		return errf(KindInvalidVariableId, v.pc, "variable %d not declared", in.Values[0].VariableID)
	}
	a, err := v.requireInitialized(in.Values[1].VariableID)
	if err != nil {
		return err
	}
	d.Num = ^a.Num
	d.Negative = false
	d.Initialized = true
	return nil
}

// execIncDec. d ← a ± 1 (a unchanged).
func (v *VM) execIncDec(in *ir.Instruction) error {
	d, ok := v.vars[in.Values[0].VariableID]
	if !ok {
		return errf(KindInvalidVariableId, v.pc, "variable %d not declared", in.Values[0].VariableID)
	}
	a, err := v.requireInitialized(in.Values[1].VariableID)
	if err != nil {
		return err
	}
	delta := int64(1)
	if in.Opcode == ir.OpDec {
		delta = -1
	}
	setSigned(d, a.asInt64()+delta)
	return nil
}

// execIncDecPost. d ← a; a ← a ± 1.
func (v *VM) execIncDecPost(in *ir.Instruction) error {
	d, ok := v.vars[in.Values[0].VariableID]
	if !ok {
		return errf(KindInvalidVariableId, v.pc, "variable %d not declared", in.Values[0].VariableID)
	}
	a, err := v.requireInitialized(in.Values[1].VariableID)
	if err != nil {
		return err
	}
	d.Num = a.Num
	d.Negative = a.Negative
	d.Initialized = true
	delta := int64(1)
	if in.Opcode == ir.OpDecp {
		delta = -1
	}
	setSigned(a, a.asInt64()+delta)
	return nil
}

// arithOperands resolves the (d, a, b) triple common to the arithmetic
// and bitwise opcodes. d must name a previously declared variable; a and
// b may each be a variable (which must be initialized) or a numeric
// literal used directly as an immediate.
func (v *VM) arithOperands(in *ir.Instruction) (d, a, b *Variable, err error) {
	dv := in.Values[0]
	if dv.Tag != ir.TagVariable {
		return nil, nil, nil, errf(KindTypeMismatch, v.pc, "arithmetic destination has tag %s, want variable", dv.Tag)
	}
	var ok bool
	d, ok = v.vars[dv.VariableID]
	if !ok {
		return nil, nil, nil, errf(KindInvalidVariableId, v.pc, "variable %d not declared", dv.VariableID)
	}
	a, err = v.resolveArithOperand(in.Values[1])
	if err != nil {
		return nil, nil, nil, err
	}
	b, err = v.resolveArithOperand(in.Values[2])
	if err != nil {
		return nil, nil, nil, err
	}
	return d, a, b, nil
}

// resolveArithOperand reads a value usable as an arithmetic/bitwise
// right-hand side: an initialized variable, or a numeric literal used as
// an immediate. Any other tag is a type mismatch.
func (v *VM) resolveArithOperand(val *ir.Value) (*Variable, error) {
	switch val.Tag {
	case ir.TagVariable:
		return v.requireInitialized(val.VariableID)
	case ir.TagNumeric:
		return &Variable{Num: val.NumMagnitude, Negative: val.NumNegative, Initialized: true}, nil
	default:
		return nil, errf(KindTypeMismatch, v.pc, "arithmetic operand has tag %s, want variable or numeric", val.Tag)
	}
}

func setSigned(v *Variable, n int64) {
	if n < 0 {
		v.Num = uint64(-n)
		v.Negative = true
	} else {
		v.Num = uint64(n)
		v.Negative = false
	}
	v.Initialized = true
}

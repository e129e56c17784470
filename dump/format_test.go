package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orionpp/orionpp/ir"
	"github.com/orionpp/orionpp/object"
)

func TestDumpObjectAndWriteHuman(t *testing.T) {
	f := object.NewOrionObject()
	text, textIdx, err := f.GetSectionByName(".orionpp.text")
	if err != nil {
		t.Fatalf("GetSectionByName: %v", err)
	}
	_ = text
	if err := f.SetSectionBytes(textIdx, []byte("ABC\x00")); err != nil {
		t.Fatalf("SetSectionBytes: %v", err)
	}
	f.AddSymbol("main", object.BindGlobal, object.SymFunc, uint16(textIdx), 0, 4)

	rep := DumpObject("test.orio", f, true)
	if rep.Path != "test.orio" {
		t.Fatalf("rep.Path = %q, want test.orio", rep.Path)
	}
	if len(rep.Symbols) != 1 || rep.Symbols[0].Name != "main" {
		t.Fatalf("rep.Symbols = %+v, want one symbol named main", rep.Symbols)
	}

	var buf bytes.Buffer
	if err := WriteObjectReport(&buf, rep, FormatHuman); err != nil {
		t.Fatalf("WriteObjectReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "main") || !strings.Contains(out, ".orionpp.text") {
		t.Fatalf("human output missing expected content:\n%s", out)
	}
}

func TestDumpObjectWriteJSON(t *testing.T) {
	f := object.NewOrionObject()
	rep := DumpObject("test.orio", f, false)
	var buf bytes.Buffer
	if err := WriteObjectReport(&buf, rep, FormatJSON); err != nil {
		t.Fatalf("WriteObjectReport(JSON): %v", err)
	}
	if !strings.Contains(buf.String(), `"path"`) {
		t.Fatalf("JSON output missing \"path\" field:\n%s", buf.String())
	}
}

func TestDumpOrionppFunctionTable(t *testing.T) {
	b := ir.NewBuilder(ir.FeatureISA.Bit() | ir.FeatureHINT.Bit())
	if _, err := b.Emit(ir.FeatureHINT, ir.OpHintFuncBegin, b.Symbol("main")); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	v0 := b.NewVariable()
	if _, err := b.Emit(ir.FeatureISA, ir.OpVar, ir.Variable(v0), ir.TypeOperand(ir.Int(ir.Width32, true))); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if _, err := b.Emit(ir.FeatureISA, ir.OpRet, ir.Variable(v0)); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if _, err := b.Emit(ir.FeatureHINT, ir.OpHintFuncEnd); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	rep := DumpOrionpp("test.opp", b.Module)
	if len(rep.Functions) != 1 || rep.Functions[0].Name != "main" {
		t.Fatalf("rep.Functions = %+v, want one function named main", rep.Functions)
	}
	if rep.Functions[0].StartIndex != 0 || rep.Functions[0].EndIndex != 3 {
		t.Fatalf("function span = [%d,%d], want [0,3]", rep.Functions[0].StartIndex, rep.Functions[0].EndIndex)
	}
	if rep.Disassembly == "" {
		t.Fatal("rep.Disassembly is empty")
	}
}

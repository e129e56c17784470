package vm

import (
	"io"
	"log"

	"github.com/orionpp/orionpp/ir"
)

// VM is the Orion++ virtual machine: a loaded instruction stream, a label
// table, a variable store, and a program counter driving fetch/dispatch
//. The zero value is not usable; construct with New.
type VM struct {
	module *ir.Module
	labels labelTable
	vars   map[uint32]*Variable

	pc        int
	callDepth int
	memUsed   int
	memCap    int
	callCap   int

	state     State
	returnVar *Variable
	faultErr  error
	strict    bool

	logger *log.Logger
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithMemoryCap overrides the default 16MiB memory accounting cap.
func WithMemoryCap(n int) Option { return func(v *VM) { v.memCap = n } }

// WithCallDepthCap overrides the default call-depth cap of 1000.
func WithCallDepthCap(n int) Option { return func(v *VM) { v.callCap = n } }

// WithStrict enables strict mode, in which LEA faults with
// InvalidInstruction; no other instruction behaves differently.
func WithStrict() Option { return func(v *VM) { v.strict = true } }

// WithLogger attaches a logger for load/execute diagnostics. Without it,
// log output is discarded.
func WithLogger(l *log.Logger) Option { return func(v *VM) { v.logger = l } }

// New returns a Fresh VM.
func New(opts ...Option) *VM {
	v := &VM{
		vars:    map[uint32]*Variable{},
		memCap:  DefaultMemoryCap,
		callCap: DefaultCallDepthCap,
		logger:  log.New(io.Discard, "", 0),
		state:   StateFresh,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// State returns the VM's current lifecycle state.
func (v *VM) State() State { return v.state }

// FaultError returns the error that put the VM into Faulted, or nil.
func (v *VM) FaultError() error { return v.faultErr }

// ReturnValue returns the value RET last stored, valid only in Halted.
func (v *VM) ReturnValue() (*Variable, bool) {
	if v.state != StateHalted {
		return nil, false
	}
	return v.returnVar, true
}

// Load consumes a binary Orion++ stream, populating the instruction
// array and charging memory for each loaded instruction. Rejects a
// module whose feature bits this VM doesn't support.
func (v *VM) Load(r io.Reader) error {
	m, err := ir.Read(r)
	if err != nil {
		return wrapf(KindInvalidArgument, 0, err, "loading module")
	}
	supported := ir.FeatureISA.Bit() | ir.FeatureHINT.Bit() | ir.FeatureTYPE.Bit() |
		ir.FeatureABI.Bit() | ir.FeatureOBJ.Bit() | ir.FeatureCTYPES.Bit()
	if m.Features & ^supported != 0 {
		return errf(KindUnsupportedFeature, 0, "module requires unsupported feature bits %#x", m.Features & ^supported)
	}
	for i := range m.Instructions {
		if err := v.chargeMemory(instructionCost); err != nil {
			return err
		}
		_ = i
	}
	v.module = m
	v.state = StateLoaded
	v.logger.Printf("loaded module: %d instructions, features=%#x", len(m.Instructions), m.Features)
	return nil
}

// LoadModule accepts an already-parsed module directly, bypassing binary
// decode. Used by tests and by callers chaining a cfront compile step.
func (v *VM) LoadModule(m *ir.Module) error {
	for range m.Instructions {
		if err := v.chargeMemory(instructionCost); err != nil {
			return err
		}
	}
	v.module = m
	v.state = StateLoaded
	return nil
}

// Prepare performs the single label-registration pre-pass: every
// ISA.LABEL is indexed by its position in the instruction stream.
// Duplicate label ids are an error.
func (v *VM) Prepare() error {
	if v.state != StateLoaded {
		return errf(KindInvalidArgument, 0, "Prepare called in state %s, want Loaded", v.state)
	}
	v.labels = labelTable{}
	for i, in := range v.module.Instructions {
		if in.Feature != ir.FeatureISA || in.Opcode != ir.OpLabel {
			continue
		}
		id := in.Values[0].LabelID
		if _, dup := v.labels[id]; dup {
			return errf(KindInvalidLabelId, i, "duplicate label id %d", id)
		}
		v.labels[id] = i
	}
	v.logger.Printf("prepared: %d labels registered", len(v.labels))
	return nil
}

// Execute runs the fetch/dispatch loop to completion. On success the VM
// ends Halted with a return value retrievable via ReturnValue; on
// failure it ends Faulted and the error is both returned and retained
// for FaultError.
func (v *VM) Execute() error {
	if v.state != StateLoaded {
		return errf(KindInvalidArgument, 0, "Execute called in state %s, want Loaded", v.state)
	}
	v.state = StateRunning
	v.pc = 0
	for {
		if v.pc >= len(v.module.Instructions) {
			v.state = StateHalted
			v.logger.Printf("halted: pc ran past the last instruction")
			return nil
		}
		halted, err := v.step()
		if err != nil {
			v.state = StateFaulted
			v.faultErr = err
			v.logger.Printf("faulted: %v", err)
			return err
		}
		if halted {
			v.state = StateHalted
			v.logger.Printf("halted: pc=%d", v.pc)
			return nil
		}
	}
}

// Run is a convenience wrapper chaining Load, Prepare, and Execute.
func (v *VM) Run(r io.Reader) error {
	if err := v.Load(r); err != nil {
		return err
	}
	if err := v.Prepare(); err != nil {
		return err
	}
	return v.Execute()
}

// Reset returns the VM to Fresh: variables freed, labels cleared, memory
// counter reset.
func (v *VM) Reset() {
	v.module = nil
	v.labels = nil
	v.vars = map[uint32]*Variable{}
	v.pc = 0
	v.callDepth = 0
	v.memUsed = 0
	v.state = StateFresh
	v.returnVar = nil
	v.faultErr = nil
}

func (v *VM) lookup(id uint32) (*Variable, error) {
	va, ok := v.vars[id]
	if !ok {
		return nil, errf(KindInvalidVariableId, v.pc, "variable %d not declared", id)
	}
	return va, nil
}

func (v *VM) requireInitialized(id uint32) (*Variable, error) {
	va, err := v.lookup(id)
	if err != nil {
		return nil, err
	}
	if !va.Initialized {
		return nil, errf(KindUninitializedVariable, v.pc, "read of uninitialized variable %d", id)
	}
	return va, nil
}

func (v *VM) resolveLabel(id uint32) (int, error) {
	idx, ok := v.labels.resolve(id)
	if !ok {
		return 0, errf(KindInvalidLabelId, v.pc, "undefined label %d", id)
	}
	return idx, nil
}

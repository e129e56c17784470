package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Debugger drives an interactive single-step REPL over a VM, putting the
// terminal into raw mode for the duration the way emul's trace/main setup
// does for its console UART (the "debugger protocol" is explicitly
// out of scope as a wire protocol, but an interactive `-d` REPL over the
// existing Execute loop is in scope as a CLI convenience).
type Debugger struct {
	vm  *VM
	in  io.Reader
	out io.Writer

	fd           int
	rawMode      bool
	savedState   *term.State
}

// NewDebugger wraps vm with a REPL reading from in and writing to out.
func NewDebugger(v *VM, in io.Reader, out io.Writer) *Debugger {
	return &Debugger{vm: v, in: in, out: out}
}

// enterRaw puts stdin into raw mode if it is a real terminal, mirroring
// emul/main.go's setupTerminal/restoreTerminal pair.
func (d *Debugger) enterRaw() {
	f, ok := d.in.(*os.File)
	if !ok {
		return
	}
	d.fd = int(f.Fd())
	if !term.IsTerminal(d.fd) {
		return
	}
	state, err := term.GetState(d.fd)
	if err != nil {
		return
	}
	d.savedState = state
	if _, err := term.MakeRaw(d.fd); err == nil {
		d.rawMode = true
	}
}

func (d *Debugger) exitRaw() {
	if d.rawMode && d.savedState != nil {
		term.Restore(d.fd, d.savedState)
	}
}

// Run drives the step/continue/print/quit REPL until the VM halts,
// faults, or the user quits. Commands: 's' step one instruction, 'c'
// run to completion, 'p <id>' print a variable, 'q' quit.
func (d *Debugger) Run() error {
	d.enterRaw()
	defer d.exitRaw()

	// Raw mode disables line buffering at the tty layer; a bufio.Scanner
	// still gives us one command per Enter press, same shape as a
	// cooked-mode REPL, since we never turn on character-at-a-time
	// dispatch (that belongs to the UART emulation this pattern is
	// borrowed from, not to this command loop).
	scanner := bufio.NewScanner(d.in)
	fmt.Fprintf(d.out, "orionppvm debugger. commands: s(tep) c(ontinue) p(rint) <id> q(uit)\r\n")

	for {
		if d.vm.state == StateHalted || d.vm.state == StateFaulted {
			fmt.Fprintf(d.out, "vm is %s\r\n", d.vm.state)
			return d.vm.faultErr
		}
		fmt.Fprintf(d.out, "(pc=%d)> ", d.vm.pc)
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s", "step":
			if err := d.step(); err != nil {
				fmt.Fprintf(d.out, "fault: %v\r\n", err)
			}
		case "c", "continue":
			var err error
			if d.vm.state == StateLoaded {
				err = d.vm.Execute()
			} else {
				for err == nil && d.vm.state == StateRunning {
					err = d.step()
				}
			}
			if err != nil {
				fmt.Fprintf(d.out, "fault: %v\r\n", err)
			}
		case "p", "print":
			if len(fields) < 2 {
				fmt.Fprintf(d.out, "usage: p <variable-id>\r\n")
				continue
			}
			d.printVar(fields[1])
		case "q", "quit":
			return nil
		default:
			fmt.Fprintf(d.out, "unknown command %q\r\n", fields[0])
		}
	}
}

func (d *Debugger) step() error {
	if d.vm.state != StateRunning {
		d.vm.state = StateRunning
		d.vm.pc = 0
	}
	halted, err := d.vm.step()
	if err != nil {
		d.vm.state = StateFaulted
		d.vm.faultErr = err
		return err
	}
	if halted || d.vm.pc >= len(d.vm.module.Instructions) {
		d.vm.state = StateHalted
	}
	return nil
}

func (d *Debugger) printVar(idStr string) {
	var id uint32
	if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil {
		fmt.Fprintf(d.out, "invalid variable id %q\r\n", idStr)
		return
	}
	va, ok := d.vm.vars[id]
	if !ok {
		fmt.Fprintf(d.out, "no such variable %d\r\n", id)
		return
	}
	if !va.Initialized {
		fmt.Fprintf(d.out, "$%d = <uninitialized>\r\n", id)
		return
	}
	if va.Str != "" {
		fmt.Fprintf(d.out, "$%d = %q\r\n", id, va.Str)
		return
	}
	fmt.Fprintf(d.out, "$%d = %d\r\n", id, va.asInt64())
}

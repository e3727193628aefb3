package core

import (
	"errors"
	"fmt"

	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// Execute runs one instruction. Number and text literals are entered on
// the stack; commands go through Dispatch. The code may be ErrSuspended,
// in which case the task on m.Sched must be driven before anything else
// executes.
func (m *Machine) Execute(in bytecode.Instr) vm.ErrorKind {
	switch in.Op {
	case bytecode.OpNumber:
		if m.Sched.Active() {
			return vm.ErrBusy
		}
		x, err := scalar.Parse(in.Arg.Text)
		if err != nil {
			log.Debugf("bad number literal: %s", err)
			return vm.ErrInvalidData
		}
		m.pushResult(vm.NewReal(x))
		m.noLift = false
		return vm.ErrNone
	case bytecode.OpString:
		if m.Sched.Active() {
			return vm.ErrBusy
		}
		m.pushResult(vm.NewString(in.Arg.Text))
		m.noLift = false
		return vm.ErrNone
	}
	if in.Arg.Kind == bytecode.ArgKindNone {
		return m.Dispatch(in.Op, nil)
	}
	arg := in.Arg
	return m.Dispatch(in.Op, &arg)
}

// ExecuteWait runs one instruction and drives any task it starts to the
// end. interrupted is polled between quanta and may be nil.
func (m *Machine) ExecuteWait(in bytecode.Instr, interrupted func() bool) vm.ErrorKind {
	err := m.Execute(in)
	if err == vm.ErrSuspended {
		err = m.Sched.Run(interrupted)
	}
	return err
}

// ---------------------------------------------------------------------------
// Program runner
// ---------------------------------------------------------------------------

// ExecError reports the program line that stopped a run.
type ExecError struct {
	Line  int
	Instr bytecode.Instr
	Kind  vm.ErrorKind
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("line %02d %s: %s", e.Line, e.Instr, e.Kind)
}

func (e *ExecError) Unwrap() error { return e.Kind }

type runState struct {
	prog    *bytecode.Program
	pc      int
	line    int
	current bytecode.Instr
}

// Start begins running p. A run or task already in progress is an error.
func (m *Machine) Start(p *bytecode.Program) error {
	if m.run != nil {
		return errors.New("core: a program is already running")
	}
	if m.Sched.Active() {
		return vm.ErrTaskActive
	}
	m.run = &runState{prog: p}
	log.Debugf("program of %d bytes started", len(p.Code))
	return nil
}

// Running reports whether a program is in progress.
func (m *Machine) Running() bool { return m.run != nil }

// Step advances the running program by one quantum: one quantum of a
// suspended command, or one instruction. It returns false when the program
// has ended, with a non-nil error if it stopped on a failure.
func (m *Machine) Step(interrupted bool) (bool, error) {
	r := m.run
	if r == nil {
		return false, nil
	}
	if m.Sched.Active() {
		done, code := m.Sched.Resume(interrupted)
		if !done {
			return true, nil
		}
		if code != vm.ErrNone {
			return m.stop(code)
		}
		return true, nil
	}
	if interrupted {
		return m.stop(vm.ErrInterrupted)
	}

	in, next, err := r.prog.At(r.pc)
	if errors.Is(err, bytecode.ErrEnd) {
		m.run = nil
		log.Debugf("program ended after %d lines", r.line)
		return false, nil
	}
	if err != nil {
		m.run = nil
		return false, fmt.Errorf("cannot decode program: %w", err)
	}
	r.pc = next
	r.line++
	r.current = in
	code := m.Execute(in)
	if code.Failed() {
		return m.stop(code)
	}
	return true, nil
}

func (m *Machine) stop(code vm.ErrorKind) (bool, error) {
	r := m.run
	m.run = nil
	log.Debugf("program stopped at line %02d: %s", r.line, code)
	return false, &ExecError{Line: r.line, Instr: r.current, Kind: code}
}

// Run executes p to the end. interrupted is polled before every step and
// may be nil.
func (m *Machine) Run(p *bytecode.Program, interrupted func() bool) error {
	if err := m.Start(p); err != nil {
		return err
	}
	for {
		stop := interrupted != nil && interrupted()
		running, err := m.Step(stop)
		if !running {
			return err
		}
	}
}

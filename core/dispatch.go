package core

import (
	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/vm"
)

// Dispatch validates the operands of op against its descriptor and runs
// its handler. The handler's code is returned verbatim, including
// ErrSuspended when it left a task on the scheduler. Dispatch itself never
// changes the stack.
func (m *Machine) Dispatch(op bytecode.Opcode, arg *bytecode.Arg) vm.ErrorKind {
	d := Lookup(op)
	if d == nil {
		return vm.ErrInvalidOpcode
	}
	if d.Handler == nil {
		return vm.ErrNotYetImplemented
	}
	if m.Sched.Active() {
		log.Debugf("%s refused: task %s is running", d.Name(), m.Sched.ID())
		return vm.ErrBusy
	}
	if err := m.checkArity(d); err != vm.ErrNone {
		return err
	}
	if err := m.checkTypes(d); err != vm.ErrNone {
		return err
	}

	log.Debugf("dispatch %s", d.Name())
	err := d.Handler(m, arg)
	if !err.Failed() && op != bytecode.OpEnter && op != bytecode.OpClx {
		m.noLift = false
	}
	return err
}

func (m *Machine) checkArity(d *Descriptor) vm.ErrorKind {
	depth := m.Stack.Depth()
	argc := int(d.ArgCount)
	if !m.Stack.Big() {
		if argc > vm.ClassicDepth || depth < argc {
			return vm.ErrTooFewArguments
		}
		return vm.ErrNone
	}
	if argc == ArgVariable {
		if depth >= 2 {
			return vm.ErrNone
		}
		if depth == 1 {
			if t := m.X().Type(); t == vm.TypeComplex || t == vm.TypeComplexMatrix {
				return vm.ErrNone
			}
		}
		return vm.ErrTooFewArguments
	}
	if depth < argc {
		return vm.ErrTooFewArguments
	}
	return vm.ErrNone
}

func (m *Machine) checkTypes(d *Descriptor) vm.ErrorKind {
	if d.ArgCount <= 0 || d.Types == vm.MaskAll {
		return vm.ErrNone
	}
	for level := 0; level < int(d.ArgCount); level++ {
		t := m.Stack.Peek(level).Type()
		if t.Mask()&d.Types != 0 {
			continue
		}
		if t == vm.TypeString {
			return vm.ErrAlphaDataInvalid
		}
		return vm.ErrInvalidType
	}
	return vm.ErrNone
}

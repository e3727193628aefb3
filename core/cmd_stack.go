package core

import (
	"github.com/chazu/calc42/arith"
	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/vm"
)

func cmdClx(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	m.replaceX(vm.NewReal(0))
	m.noLift = true
	return vm.ErrNone
}

func cmdEnter(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	x, err := m.X().Dup()
	if err != vm.ErrNone {
		return err
	}
	m.Stack.Push(x)
	m.noLift = true
	return vm.ErrNone
}

func cmdSwap(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	return m.Stack.Swap()
}

func cmdRdn(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	m.Stack.RollDown()
	return vm.ErrNone
}

func cmdClst(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	m.Stack.Clear()
	return vm.ErrNone
}

func cmdLastX(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	v, err := m.LastX.Dup()
	if err != vm.ErrNone {
		return err
	}
	return m.pushResult(v)
}

// +/- does not save LASTX.
func cmdChs(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	v, err := arith.Negate(m.Heap, m.X())
	if err != vm.ErrNone {
		return err
	}
	return m.replaceX(v)
}

// Package core is the command interpreter of the calculator: the static
// command table, the dispatcher that enforces each command's operand
// contract, the command handlers, and the program runner.
//
// A Machine is not safe for concurrent use. Package host serialises
// access to it on a single goroutine.
package core

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/calc42/linalg"
	"github.com/chazu/calc42/vm"
)

var log = commonlog.GetLogger("calc42.core")

// Machine is the live calculator state.
type Machine struct {
	Stack    *vm.Stack
	LastX    vm.Value
	Regs     []vm.Value
	Vars     map[string]vm.Value
	Settings vm.Settings

	Heap   *vm.Heap
	Sched  *vm.Scheduler
	Engine *linalg.Engine

	// noLift is set by ENTER and CLX: the next push overwrites X.
	noLift bool

	run *runState
}

// New creates a machine with the given settings.
func New(s vm.Settings) *Machine {
	if s.StepBudget <= 0 {
		s.StepBudget = vm.DefaultStepBudget
	}
	if s.Registers < 0 {
		s.Registers = 0
	}
	heap := vm.NewHeap(s.MemoryLimit)
	sched := vm.NewScheduler()
	m := &Machine{
		Stack:    vm.NewStack(s.BigStack),
		LastX:    vm.NewReal(0),
		Regs:     make([]vm.Value, s.Registers),
		Vars:     make(map[string]vm.Value),
		Settings: s,
		Heap:     heap,
		Sched:    sched,
		Engine:   linalg.NewEngine(heap, sched, s.StepBudget),
	}
	for i := range m.Regs {
		m.Regs[i] = vm.NewReal(0)
	}
	return m
}

// Policy returns the numeric policy for a computation started now.
func (m *Machine) Policy() vm.Policy {
	return m.Settings.Policy()
}

// SetBigStack switches the stack mode.
func (m *Machine) SetBigStack(big bool) {
	m.Settings.BigStack = big
	m.Stack.SetBig(big)
}

// X returns the value in X, or nil when the stack is empty.
func (m *Machine) X() vm.Value { return m.Stack.Peek(vm.LevelX) }

// Y returns the value in Y, or nil.
func (m *Machine) Y() vm.Value { return m.Stack.Peek(vm.LevelY) }

// ---------------------------------------------------------------------------
// Result commit
// ---------------------------------------------------------------------------

func (m *Machine) setLastX(v vm.Value) {
	if m.LastX != nil {
		m.LastX.Release()
	}
	m.LastX = v
}

// replaceX stores v in X and releases the old X without touching LASTX.
func (m *Machine) replaceX(v vm.Value) vm.ErrorKind {
	if m.Stack.Depth() == 0 {
		m.Stack.Push(v)
		return vm.ErrNone
	}
	m.Stack.Replace(vm.LevelX, v).Release()
	return vm.ErrNone
}

// unaryResult stores v in X; the old X becomes LASTX.
func (m *Machine) unaryResult(v vm.Value) vm.ErrorKind {
	old := m.Stack.Replace(vm.LevelX, v)
	m.setLastX(old)
	return vm.ErrNone
}

// binaryResult drops X, stores v in the old Y and makes the old X LASTX.
// When the drop fails the stack is left as it was and v is released.
func (m *Machine) binaryResult(v vm.Value) vm.ErrorKind {
	x, err := m.Stack.Pop()
	if err != vm.ErrNone {
		v.Release()
		return err
	}
	m.Stack.Replace(vm.LevelX, v).Release()
	m.setLastX(x)
	return vm.ErrNone
}

// pushResult lifts the stack and places v in X, or overwrites X when lift
// is disabled.
func (m *Machine) pushResult(v vm.Value) vm.ErrorKind {
	if m.noLift && m.Stack.Depth() > 0 {
		return m.replaceX(v)
	}
	m.Stack.Push(v)
	return vm.ErrNone
}

// commit returns a completion that hands a successful result to fn.
func commit(fn func(vm.Value) vm.ErrorKind) linalg.Completion {
	return func(err vm.ErrorKind, v vm.Value) vm.ErrorKind {
		if err != vm.ErrNone {
			return err
		}
		return fn(v)
	}
}

// Reset clears the stack, LASTX, registers and variables. Any active task
// is interrupted first.
func (m *Machine) Reset() {
	if m.Sched.Active() {
		m.Sched.Resume(true)
	}
	m.Stack.Clear()
	m.setLastX(vm.NewReal(0))
	for i, r := range m.Regs {
		r.Release()
		m.Regs[i] = vm.NewReal(0)
	}
	for k, v := range m.Vars {
		v.Release()
		delete(m.Vars, k)
	}
	m.noLift = false
	m.run = nil
}

package core

import (
	"fmt"

	"github.com/chazu/calc42/vm"
	"github.com/chazu/calc42/vm/wire"
)

// Snapshot captures the stack, LASTX, registers and variables.
func (m *Machine) Snapshot() (*wire.Snapshot, error) {
	stack, err := wire.Items(m.Stack.Values())
	if err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	lastX, err := wire.FromValue(m.LastX)
	if err != nil {
		return nil, fmt.Errorf("lastx: %w", err)
	}
	regs, err := wire.Items(m.Regs)
	if err != nil {
		return nil, fmt.Errorf("registers: %w", err)
	}
	s := &wire.Snapshot{
		BigStack: m.Stack.Big(),
		Stack:    stack,
		LastX:    &lastX,
		Regs:     regs,
	}
	if len(m.Vars) > 0 {
		s.Vars = make(map[string]wire.Item, len(m.Vars))
		for name, v := range m.Vars {
			it, err := wire.FromValue(v)
			if err != nil {
				return nil, fmt.Errorf("variable %q: %w", name, err)
			}
			s.Vars[name] = it
		}
	}
	return s, nil
}

// Restore replaces the machine state with a snapshot. The machine is left
// untouched when any part of the snapshot fails to decode. Registers
// beyond the configured count are dropped.
func (m *Machine) Restore(s *wire.Snapshot) error {
	if !s.BigStack && len(s.Stack) != vm.ClassicDepth {
		return fmt.Errorf("classic stack snapshot with %d levels", len(s.Stack))
	}
	var built []vm.Value
	fail := func(err error) error {
		for _, v := range built {
			v.Release()
		}
		return err
	}

	stack, err := wire.Values(s.Stack, m.Heap)
	if err != nil {
		return fail(fmt.Errorf("stack: %w", err))
	}
	built = append(built, stack...)

	var lastX vm.Value = vm.NewReal(0)
	if s.LastX != nil {
		if lastX, err = s.LastX.Value(m.Heap); err != nil {
			return fail(fmt.Errorf("lastx: %w", err))
		}
		built = append(built, lastX)
	}

	regs, err := wire.Values(s.Regs, m.Heap)
	if err != nil {
		return fail(fmt.Errorf("registers: %w", err))
	}
	built = append(built, regs...)
	for i, r := range regs {
		if vm.IsMatrix(r) {
			return fail(fmt.Errorf("register %02d holds a matrix", i))
		}
	}

	vars := make(map[string]vm.Value, len(s.Vars))
	for _, name := range s.VarNames() {
		v, err := s.Vars[name].Value(m.Heap)
		if err != nil {
			return fail(fmt.Errorf("variable %q: %w", name, err))
		}
		built = append(built, v)
		vars[name] = v
	}

	m.Reset()
	m.SetBigStack(s.BigStack)
	m.Stack.Clear()
	for _, v := range stack {
		m.Stack.Push(v)
	}
	m.setLastX(lastX)
	for i := range m.Regs {
		if i < len(regs) {
			m.Regs[i] = regs[i]
		}
	}
	for _, r := range regs[min(len(regs), len(m.Regs)):] {
		r.Release()
	}
	m.Vars = vars
	log.Debugf("restored %d stack levels, %d registers, %d variables", len(stack), len(regs), len(vars))
	return nil
}

package core

import (
	"testing"

	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// newMachine returns a machine whose tasks need many quanta.
func newMachine(big bool) *Machine {
	s := vm.DefaultSettings()
	s.BigStack = big
	s.StepBudget = 5
	return New(s)
}

// run executes each written instruction and drives suspended commands
// to the end.
func run(t *testing.T, m *Machine, lines ...string) {
	t.Helper()
	for _, l := range lines {
		in, err := bytecode.Parse(l)
		if err != nil {
			t.Fatalf("Parse(%q): %v", l, err)
		}
		if code := m.ExecuteWait(in, nil); code != vm.ErrNone {
			t.Fatalf("%s: %v", l, code)
		}
	}
}

// try executes one instruction and returns its final code.
func try(t *testing.T, m *Machine, line string) vm.ErrorKind {
	t.Helper()
	in, err := bytecode.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return m.ExecuteWait(in, nil)
}

func realAt(t *testing.T, m *Machine, level int) scalar.Scalar {
	t.Helper()
	r, ok := m.Stack.Peek(level).(*vm.Real)
	if !ok {
		t.Fatalf("level %d holds %v, want a real", level, m.Stack.Peek(level))
	}
	return r.X
}

func pushMatrix(t *testing.T, m *Machine, rows, cols int, vals ...scalar.Scalar) *vm.RealMatrix {
	t.Helper()
	mat, err := vm.NewRealMatrix(m.Heap, rows, cols)
	if err != vm.ErrNone {
		t.Fatalf("NewRealMatrix: %v", err)
	}
	copy(mat.Data, vals)
	m.Stack.Push(mat)
	return mat
}

// stub replaces the handler of op for the duration of the test and
// counts its invocations.
func stub(t *testing.T, op bytecode.Opcode) *int {
	t.Helper()
	saved := table[op]
	calls := new(int)
	table[op].Handler = func(*Machine, *bytecode.Arg) vm.ErrorKind {
		*calls++
		return vm.ErrNone
	}
	t.Cleanup(func() { table[op] = saved })
	return calls
}

package core

import (
	"strings"

	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

type locKind uint8

const (
	locRegister locKind = iota
	locStack
	locLastX
	locVariable
)

// location is a resolved storage target.
type location struct {
	kind  locKind
	index int // register number or stack level
	name  string
}

// resolve turns an argument into a storage location, following one level
// of indirection.
func (m *Machine) resolve(arg *bytecode.Arg) (location, vm.ErrorKind) {
	if arg == nil || arg.Kind == bytecode.ArgKindNone {
		return location{}, vm.ErrInvalidData
	}
	loc, err := m.direct(arg.Direct())
	if err != vm.ErrNone || !arg.Indirect() {
		return loc, err
	}

	ptr, err := m.load(loc)
	if err != vm.ErrNone {
		return location{}, err
	}
	switch p := ptr.(type) {
	case *vm.Real:
		n := int(scalar.Abs(p.X))
		if n >= len(m.Regs) {
			return location{}, vm.ErrSizeError
		}
		return location{kind: locRegister, index: n}, vm.ErrNone
	case *vm.String:
		if p.Text == "" {
			return location{}, vm.ErrInvalidData
		}
		return location{kind: locVariable, name: p.Text}, vm.ErrNone
	}
	return location{}, vm.ErrInvalidType
}

func (m *Machine) direct(a bytecode.Arg) (location, vm.ErrorKind) {
	switch a.Kind {
	case bytecode.ArgKindNum:
		if a.Num < 0 || a.Num >= len(m.Regs) {
			return location{}, vm.ErrSizeError
		}
		return location{kind: locRegister, index: a.Num}, vm.ErrNone
	case bytecode.ArgKindStk:
		if a.Stk == 'L' {
			return location{kind: locLastX}, vm.ErrNone
		}
		level := strings.IndexByte("XYZT", a.Stk)
		if level < 0 {
			return location{}, vm.ErrInvalidData
		}
		if level >= m.Stack.Depth() {
			return location{}, vm.ErrNonexistent
		}
		return location{kind: locStack, index: level}, vm.ErrNone
	case bytecode.ArgKindStr:
		return location{kind: locVariable, name: a.Text}, vm.ErrNone
	}
	return location{}, vm.ErrInvalidData
}

// load returns the value at loc. The machine keeps ownership.
func (m *Machine) load(loc location) (vm.Value, vm.ErrorKind) {
	switch loc.kind {
	case locRegister:
		return m.Regs[loc.index], vm.ErrNone
	case locStack:
		return m.Stack.Peek(loc.index), vm.ErrNone
	case locLastX:
		return m.LastX, vm.ErrNone
	}
	v, ok := m.Vars[loc.name]
	if !ok {
		return nil, vm.ErrNonexistent
	}
	return v, vm.ErrNone
}

// store puts v at loc, releasing what was there. It takes ownership of v
// on every path.
func (m *Machine) store(loc location, v vm.Value) vm.ErrorKind {
	switch loc.kind {
	case locRegister:
		if vm.IsMatrix(v) {
			v.Release()
			return vm.ErrInvalidType
		}
		m.Regs[loc.index].Release()
		m.Regs[loc.index] = v
	case locStack:
		m.Stack.Replace(loc.index, v).Release()
	case locLastX:
		m.setLastX(v)
	case locVariable:
		if old, ok := m.Vars[loc.name]; ok {
			old.Release()
		}
		m.Vars[loc.name] = v
	}
	return vm.ErrNone
}

func cmdSto(m *Machine, arg *bytecode.Arg) vm.ErrorKind {
	loc, err := m.resolve(arg)
	if err != vm.ErrNone {
		return err
	}
	if loc.kind == locStack && loc.index == vm.LevelX {
		return vm.ErrNone
	}
	if loc.kind == locRegister && vm.IsMatrix(m.X()) {
		return vm.ErrInvalidType
	}
	v, err := m.X().Dup()
	if err != vm.ErrNone {
		return err
	}
	return m.store(loc, v)
}

func cmdRcl(m *Machine, arg *bytecode.Arg) vm.ErrorKind {
	loc, err := m.resolve(arg)
	if err != vm.ErrNone {
		return err
	}
	cur, err := m.load(loc)
	if err != vm.ErrNone {
		return err
	}
	v, err := cur.Dup()
	if err != vm.ErrNone {
		return err
	}
	return m.pushResult(v)
}

// storeArith returns the STO+ family handler: target = target op X.
func storeArith(op binaryOp) Handler {
	return func(m *Machine, arg *bytecode.Arg) vm.ErrorKind {
		loc, err := m.resolve(arg)
		if err != vm.ErrNone {
			return err
		}
		cur, err := m.load(loc)
		if err != vm.ErrNone {
			return err
		}
		return op(m, cur, m.X(), commit(func(v vm.Value) vm.ErrorKind {
			return m.store(loc, v)
		}))
	}
}

// recallArith returns the RCL+ family handler: X = X op target.
func recallArith(op binaryOp) Handler {
	return func(m *Machine, arg *bytecode.Arg) vm.ErrorKind {
		loc, err := m.resolve(arg)
		if err != vm.ErrNone {
			return err
		}
		cur, err := m.load(loc)
		if err != vm.ErrNone {
			return err
		}
		return op(m, m.X(), cur, commit(m.unaryResult))
	}
}

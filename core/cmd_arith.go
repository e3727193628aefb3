package core

import (
	"github.com/chazu/calc42/arith"
	"github.com/chazu/calc42/linalg"
	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/vm"
)

// binaryOp computes left op right and hands the outcome to done. Matrix
// multiplication and division may suspend.
type binaryOp func(m *Machine, left, right vm.Value, done linalg.Completion) vm.ErrorKind

func add(m *Machine, left, right vm.Value, done linalg.Completion) vm.ErrorKind {
	v, err := arith.Add(m.Heap, left, right, m.Policy())
	return done(err, v)
}

func subtract(m *Machine, left, right vm.Value, done linalg.Completion) vm.ErrorKind {
	v, err := arith.Sub(m.Heap, left, right, m.Policy())
	return done(err, v)
}

func multiply(m *Machine, left, right vm.Value, done linalg.Completion) vm.ErrorKind {
	return arith.Mul(m.Engine, left, right, m.Policy(), done)
}

func divide(m *Machine, left, right vm.Value, done linalg.Completion) vm.ErrorKind {
	return arith.Div(m.Engine, left, right, m.Policy(), done)
}

func stackBinary(op binaryOp) Handler {
	return func(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
		return op(m, m.Y(), m.X(), commit(m.binaryResult))
	}
}

var (
	cmdAdd = stackBinary(add)
	cmdSub = stackBinary(subtract)
	cmdMul = stackBinary(multiply)
	cmdDiv = stackBinary(divide)
)

func cmdInv(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	return arith.Reciprocal(m.Engine, m.X(), m.Policy(), commit(m.unaryResult))
}

func cmdSquare(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	v, err := arith.Square(m.Heap, m.X(), m.Policy())
	if err != vm.ErrNone {
		return err
	}
	return m.unaryResult(v)
}

func cmdSqrt(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	v, err := arith.Sqrt(m.Heap, m.X())
	if err != vm.ErrNone {
		return err
	}
	return m.unaryResult(v)
}

// ---------------------------------------------------------------------------
// COMPLEX
// ---------------------------------------------------------------------------

// cmdComplex combines real Y and X into Y+iX, or splits a complex X into
// its real part in Y and its imaginary part in X. Matrices are combined
// and split elementwise.
func cmdComplex(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	switch x := m.X().(type) {
	case *vm.Complex:
		return m.splitResult(vm.NewReal(x.Re), vm.NewReal(x.Im))
	case *vm.ComplexMatrix:
		re, im, err := splitMatrix(m.Heap, x)
		if err != vm.ErrNone {
			return err
		}
		return m.splitResult(re, im)
	case *vm.String:
		return vm.ErrAlphaDataInvalid
	case *vm.Real:
		switch y := m.Y().(type) {
		case *vm.Real:
			return m.binaryResult(vm.NewComplex(y.X, x.X))
		case *vm.String:
			return vm.ErrAlphaDataInvalid
		case nil:
			return vm.ErrTooFewArguments
		}
		return vm.ErrInvalidType
	case *vm.RealMatrix:
		var y *vm.RealMatrix
		switch v := m.Y().(type) {
		case *vm.RealMatrix:
			y = v
		case *vm.String:
			return vm.ErrAlphaDataInvalid
		case nil:
			return vm.ErrTooFewArguments
		default:
			return vm.ErrInvalidType
		}
		if x.ContainsStrings() || y.ContainsStrings() {
			return vm.ErrAlphaDataInvalid
		}
		if x.Rows != y.Rows || x.Cols != y.Cols {
			return vm.ErrDimensionError
		}
		c, err := vm.NewComplexMatrix(m.Heap, x.Rows, x.Cols)
		if err != vm.ErrNone {
			return err
		}
		for i := range x.Data {
			c.Data[2*i] = y.Data[i]
			c.Data[2*i+1] = x.Data[i]
		}
		return m.binaryResult(c)
	}
	return vm.ErrInvalidType
}

func splitMatrix(a vm.Allocator, x *vm.ComplexMatrix) (*vm.RealMatrix, *vm.RealMatrix, vm.ErrorKind) {
	re, err := vm.NewRealMatrix(a, x.Rows, x.Cols)
	if err != vm.ErrNone {
		return nil, nil, err
	}
	im, err := vm.NewRealMatrix(a, x.Rows, x.Cols)
	if err != vm.ErrNone {
		re.Release()
		return nil, nil, err
	}
	for i := range re.Data {
		re.Data[i] = x.Data[2*i]
		im.Data[i] = x.Data[2*i+1]
	}
	return re, im, vm.ErrNone
}

// splitResult replaces X with re, lifts, and places im in X. The old X
// becomes LASTX.
func (m *Machine) splitResult(re, im vm.Value) vm.ErrorKind {
	m.unaryResult(re)
	m.Stack.Push(im)
	return vm.ErrNone
}

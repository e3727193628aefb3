package core

import (
	"github.com/chazu/calc42/linalg"
	"github.com/chazu/calc42/pkg/bytecode"
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// maxDim bounds each NEWMAT dimension before the allocator is asked.
const maxDim = 1 << 20

// cmdNewMat creates a zero real matrix with Y rows and X columns.
func cmdNewMat(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	rows := scalar.Abs(m.Y().(*vm.Real).X)
	cols := scalar.Abs(m.X().(*vm.Real).X)
	if rows < 1 || cols < 1 {
		return vm.ErrDimensionError
	}
	if rows > maxDim || cols > maxDim || rows*cols > vm.MaxWords {
		return vm.ErrInsufficientMemory
	}
	res, err := vm.NewRealMatrix(m.Heap, int(rows), int(cols))
	if err != vm.ErrNone {
		return err
	}
	return m.binaryResult(res)
}

func cmdDet(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	return m.Engine.Det(m.X(), m.Policy(), commit(m.unaryResult))
}

func cmdInvrt(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	return m.Engine.Invert(m.X(), m.Policy(), commit(m.unaryResult))
}

// matrixUnary adapts a synchronous matrix utility to a handler whose
// result replaces X.
func matrixUnary(fn func(m *Machine, x vm.Value) (vm.Value, vm.ErrorKind)) Handler {
	return func(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
		v, err := fn(m, m.X())
		if err != vm.ErrNone {
			return err
		}
		return m.unaryResult(v)
	}
}

func norm(fn func(vm.Value, vm.Policy) (scalar.Scalar, vm.ErrorKind)) Handler {
	return matrixUnary(func(m *Machine, x vm.Value) (vm.Value, vm.ErrorKind) {
		n, err := fn(x, m.Policy())
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewReal(n), vm.ErrNone
	})
}

var (
	cmdRnrm = norm(linalg.RowNorm)
	cmdFnrm = norm(linalg.FrobeniusNorm)

	cmdTrans = matrixUnary(func(m *Machine, x vm.Value) (vm.Value, vm.ErrorKind) {
		return m.Engine.Transpose(x)
	})
	cmdRsum = matrixUnary(func(m *Machine, x vm.Value) (vm.Value, vm.ErrorKind) {
		return m.Engine.RowSums(x, m.Policy())
	})
	cmdUvec = matrixUnary(func(m *Machine, x vm.Value) (vm.Value, vm.ErrorKind) {
		return m.Engine.UnitVector(x, m.Policy())
	})
)

func cmdDot(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	v, err := linalg.Dot(m.Y(), m.X(), m.Policy())
	if err != vm.ErrNone {
		return err
	}
	return m.binaryResult(v)
}

func cmdCross(m *Machine, _ *bytecode.Arg) vm.ErrorKind {
	v, err := m.Engine.Cross(m.Y(), m.X(), m.Policy())
	if err != vm.ErrNone {
		return err
	}
	return m.binaryResult(v)
}

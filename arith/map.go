// Package arith dispatches arithmetic over the numeric value variants.
//
// Elementwise functions are written once per scalar variant pair and
// lifted to matrices by MapUnary and MapBinary. Binary operands are always
// given in algebraic order: Sub(left, right) computes left - right, which
// for a stack command is Y - X.
package arith

import (
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// Unary holds the per-variant forms of an elementwise function. A nil C
// rejects complex operands with ErrInvalidType.
type Unary struct {
	R func(x scalar.Scalar) (scalar.Scalar, vm.ErrorKind)
	C func(re, im scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind)
}

// Binary holds the four variant-pair forms of an elementwise function. The
// first scalar argument is always the left operand. A nil entry rejects the
// corresponding pair with ErrInvalidType.
type Binary struct {
	RR func(x, y scalar.Scalar) (scalar.Scalar, vm.ErrorKind)
	RC func(x, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind)
	CR func(xre, xim, y scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind)
	CC func(xre, xim, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind)
}

// AssertNumeric rejects strings and real matrices holding strings.
func AssertNumeric(v vm.Value) vm.ErrorKind {
	switch v := v.(type) {
	case *vm.String:
		return vm.ErrAlphaDataInvalid
	case *vm.RealMatrix:
		if v.ContainsStrings() {
			return vm.ErrAlphaDataInvalid
		}
	}
	return vm.ErrNone
}

// MapUnary applies f to a scalar or to every element of a matrix. The
// result is a new value; v is not modified.
func MapUnary(a vm.Allocator, v vm.Value, f Unary) (vm.Value, vm.ErrorKind) {
	if err := AssertNumeric(v); err != vm.ErrNone {
		return nil, err
	}
	switch v := v.(type) {
	case *vm.Real:
		x, err := f.R(v.X)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewReal(x), vm.ErrNone
	case *vm.Complex:
		if f.C == nil {
			return nil, vm.ErrInvalidType
		}
		re, im, err := f.C(v.Re, v.Im)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewComplex(re, im), vm.ErrNone
	case *vm.RealMatrix:
		m, err := vm.NewRealMatrix(a, v.Rows, v.Cols)
		if err != vm.ErrNone {
			return nil, err
		}
		for i, x := range v.Data {
			if m.Data[i], err = f.R(x); err != vm.ErrNone {
				m.Release()
				return nil, err
			}
		}
		return m, vm.ErrNone
	case *vm.ComplexMatrix:
		if f.C == nil {
			return nil, vm.ErrInvalidType
		}
		m, err := vm.NewComplexMatrix(a, v.Rows, v.Cols)
		if err != vm.ErrNone {
			return nil, err
		}
		for i := 0; i < len(v.Data); i += 2 {
			if m.Data[i], m.Data[i+1], err = f.C(v.Data[i], v.Data[i+1]); err != vm.ErrNone {
				m.Release()
				return nil, err
			}
		}
		return m, vm.ErrNone
	}
	return nil, vm.ErrInvalidType
}

// operand is a uniform element view over any numeric value. A scalar
// operand repeats its single element.
type operand struct {
	re, im []scalar.Scalar
	rows   int
	cols   int
	cplx   bool
	matrix bool
	single bool
}

func view(v vm.Value) (operand, vm.ErrorKind) {
	switch v := v.(type) {
	case *vm.Real:
		return operand{re: []scalar.Scalar{v.X}, single: true}, vm.ErrNone
	case *vm.Complex:
		return operand{re: []scalar.Scalar{v.Re}, im: []scalar.Scalar{v.Im}, cplx: true, single: true}, vm.ErrNone
	case *vm.RealMatrix:
		return operand{re: v.Data, matrix: true, rows: v.Rows, cols: v.Cols}, vm.ErrNone
	case *vm.ComplexMatrix:
		return operand{re: v.Data, cplx: true, matrix: true, rows: v.Rows, cols: v.Cols}, vm.ErrNone
	}
	return operand{}, vm.ErrInvalidType
}

// at returns element n; scalars ignore n.
func (o operand) at(n int) (scalar.Scalar, scalar.Scalar) {
	if o.single {
		if o.cplx {
			return o.re[0], o.im[0]
		}
		return o.re[0], 0
	}
	if o.cplx {
		return o.re[2*n], o.re[2*n+1]
	}
	return o.re[n], 0
}

// MapBinary applies f elementwise to left and right. A scalar operand is
// combined with every element of a matrix operand; two matrices must have
// the same shape. Any complex operand makes the result complex.
func MapBinary(a vm.Allocator, left, right vm.Value, f Binary) (vm.Value, vm.ErrorKind) {
	if err := AssertNumeric(left); err != vm.ErrNone {
		return nil, err
	}
	if err := AssertNumeric(right); err != vm.ErrNone {
		return nil, err
	}
	l, err := view(left)
	if err != vm.ErrNone {
		return nil, err
	}
	r, err := view(right)
	if err != vm.ErrNone {
		return nil, err
	}
	if l.matrix && r.matrix && (l.rows != r.rows || l.cols != r.cols) {
		return nil, vm.ErrDimensionError
	}
	if !f.supports(l.cplx, r.cplx) {
		return nil, vm.ErrInvalidType
	}

	cplx := l.cplx || r.cplx
	if !l.matrix && !r.matrix {
		re, im, err := apply(f, l, r, 0)
		if err != vm.ErrNone {
			return nil, err
		}
		if cplx {
			return vm.NewComplex(re, im), vm.ErrNone
		}
		return vm.NewReal(re), vm.ErrNone
	}

	rows, cols := l.rows, l.cols
	if !l.matrix {
		rows, cols = r.rows, r.cols
	}
	if !cplx {
		m, err := vm.NewRealMatrix(a, rows, cols)
		if err != vm.ErrNone {
			return nil, err
		}
		for n := range m.Data {
			if m.Data[n], _, err = apply(f, l, r, n); err != vm.ErrNone {
				m.Release()
				return nil, err
			}
		}
		return m, vm.ErrNone
	}
	m, err := vm.NewComplexMatrix(a, rows, cols)
	if err != vm.ErrNone {
		return nil, err
	}
	for n := 0; n < rows*cols; n++ {
		if m.Data[2*n], m.Data[2*n+1], err = apply(f, l, r, n); err != vm.ErrNone {
			m.Release()
			return nil, err
		}
	}
	return m, vm.ErrNone
}

// supports reports whether f has an entry for a variant pair.
func (f Binary) supports(lc, rc bool) bool {
	switch {
	case !lc && !rc:
		return f.RR != nil
	case !lc:
		return f.RC != nil
	case !rc:
		return f.CR != nil
	}
	return f.CC != nil
}

func apply(f Binary, l, r operand, n int) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
	xre, xim := l.at(n)
	yre, yim := r.at(n)
	switch {
	case !l.cplx && !r.cplx:
		z, err := f.RR(xre, yre)
		return z, 0, err
	case !l.cplx:
		return f.RC(xre, yre, yim)
	case !r.cplx:
		return f.CR(xre, xim, yre)
	}
	return f.CC(xre, xim, yre, yim)
}

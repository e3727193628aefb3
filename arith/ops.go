package arith

import (
	"github.com/chazu/calc42/linalg"
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// ---------------------------------------------------------------------------
// Elementwise function sets
// ---------------------------------------------------------------------------

func rangeC(pol vm.Policy, re, im scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
	re, err := pol.Range(re)
	if err != vm.ErrNone {
		return 0, 0, err
	}
	im, err = pol.Range(im)
	if err != vm.ErrNone {
		return 0, 0, err
	}
	return re, im, vm.ErrNone
}

func sum(pol vm.Policy) Binary {
	return Binary{
		RR: func(x, y scalar.Scalar) (scalar.Scalar, vm.ErrorKind) { return pol.Range(x + y) },
		RC: func(x, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, x+yre, yim)
		},
		CR: func(xre, xim, y scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, xre+y, xim)
		},
		CC: func(xre, xim, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, xre+yre, xim+yim)
		},
	}
}

func difference(pol vm.Policy) Binary {
	return Binary{
		RR: func(x, y scalar.Scalar) (scalar.Scalar, vm.ErrorKind) { return pol.Range(x - y) },
		RC: func(x, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, x-yre, -yim)
		},
		CR: func(xre, xim, y scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, xre-y, xim)
		},
		CC: func(xre, xim, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, xre-yre, xim-yim)
		},
	}
}

func product(pol vm.Policy) Binary {
	return Binary{
		RR: func(x, y scalar.Scalar) (scalar.Scalar, vm.ErrorKind) { return pol.Range(x * y) },
		RC: func(x, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, x*yre, x*yim)
		},
		CR: func(xre, xim, y scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			return rangeC(pol, xre*y, xim*y)
		},
		CC: func(xre, xim, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			re, im := scalar.CMul(xre, xim, yre, yim)
			return rangeC(pol, re, im)
		},
	}
}

// quotient divides by a scalar; a zero divisor is ErrDivideBy0.
func quotient(pol vm.Policy) Binary {
	return Binary{
		RR: func(x, y scalar.Scalar) (scalar.Scalar, vm.ErrorKind) {
			if y == 0 {
				return 0, vm.ErrDivideBy0
			}
			return pol.Range(x / y)
		},
		RC: func(x, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			if yre == 0 && yim == 0 {
				return 0, 0, vm.ErrDivideBy0
			}
			re, im := scalar.CDiv(x, 0, yre, yim)
			return rangeC(pol, re, im)
		},
		CR: func(xre, xim, y scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			if y == 0 {
				return 0, 0, vm.ErrDivideBy0
			}
			return rangeC(pol, xre/y, xim/y)
		},
		CC: func(xre, xim, yre, yim scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			if yre == 0 && yim == 0 {
				return 0, 0, vm.ErrDivideBy0
			}
			re, im := scalar.CDiv(xre, xim, yre, yim)
			return rangeC(pol, re, im)
		},
	}
}

var negation = Unary{
	R: func(x scalar.Scalar) (scalar.Scalar, vm.ErrorKind) { return -x, vm.ErrNone },
	C: func(re, im scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) { return -re, -im, vm.ErrNone },
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Add returns left + right.
func Add(a vm.Allocator, left, right vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	return MapBinary(a, left, right, sum(pol))
}

// Sub returns left - right.
func Sub(a vm.Allocator, left, right vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	return MapBinary(a, left, right, difference(pol))
}

// Negate returns -v.
func Negate(a vm.Allocator, v vm.Value) (vm.Value, vm.ErrorKind) {
	return MapUnary(a, v, negation)
}

// Mul computes left × right. Two matrices multiply as matrices on the
// engine and may suspend; every other pairing is elementwise and completes
// synchronously. The result goes to done.
func Mul(e *linalg.Engine, left, right vm.Value, pol vm.Policy, done linalg.Completion) vm.ErrorKind {
	if vm.IsMatrix(left) && vm.IsMatrix(right) {
		return e.Mul(left, right, pol, done)
	}
	res, err := MapBinary(e.Alloc, left, right, product(pol))
	return done(err, res)
}

// Div computes left ÷ right. A matrix divisor is inverted: matrix ÷ matrix
// solves right·X = left, scalar ÷ matrix is the scalar times the inverse.
// A scalar divisor divides elementwise and fails with ErrDivideBy0 when it
// is zero.
func Div(e *linalg.Engine, left, right vm.Value, pol vm.Policy, done linalg.Completion) vm.ErrorKind {
	if !vm.IsMatrix(right) {
		res, err := MapBinary(e.Alloc, left, right, quotient(pol))
		return done(err, res)
	}
	if vm.IsMatrix(left) {
		return e.Div(left, right, pol, done)
	}
	if err := AssertNumeric(left); err != vm.ErrNone {
		return done(err, nil)
	}
	if err := AssertNumeric(right); err != vm.ErrNone {
		return done(err, nil)
	}
	if t := left.Type(); t != vm.TypeReal && t != vm.TypeComplex {
		return done(vm.ErrInvalidType, nil)
	}
	return e.Invert(right, pol, func(err vm.ErrorKind, inv vm.Value) vm.ErrorKind {
		if err != vm.ErrNone {
			return done(err, nil)
		}
		res, err := MapBinary(e.Alloc, left, inv, product(pol))
		inv.Release()
		return done(err, res)
	})
}

// Reciprocal computes 1/v. A matrix is inverted.
func Reciprocal(e *linalg.Engine, v vm.Value, pol vm.Policy, done linalg.Completion) vm.ErrorKind {
	if vm.IsMatrix(v) {
		return e.Invert(v, pol, done)
	}
	one := vm.NewReal(1)
	res, err := MapBinary(e.Alloc, one, v, quotient(pol))
	return done(err, res)
}

// Square computes v² elementwise.
func Square(a vm.Allocator, v vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	return MapUnary(a, v, Unary{
		R: func(x scalar.Scalar) (scalar.Scalar, vm.ErrorKind) { return pol.Range(x * x) },
		C: func(re, im scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			zr, zi := scalar.CMul(re, im, re, im)
			return rangeC(pol, zr, zi)
		},
	})
}

// Sqrt returns the principal square root. The root of a negative real is
// complex; a negative element of a real matrix is ErrInvalidData.
func Sqrt(a vm.Allocator, v vm.Value) (vm.Value, vm.ErrorKind) {
	switch v := v.(type) {
	case *vm.Real:
		if v.X < 0 {
			return vm.NewComplex(0, scalar.Sqrt(-v.X)), vm.ErrNone
		}
		return vm.NewReal(scalar.Sqrt(v.X)), vm.ErrNone
	case *vm.Complex:
		re, im := scalar.CSqrt(v.Re, v.Im)
		return vm.NewComplex(re, im), vm.ErrNone
	}
	return MapUnary(a, v, Unary{
		R: func(x scalar.Scalar) (scalar.Scalar, vm.ErrorKind) {
			if x < 0 {
				return 0, vm.ErrInvalidData
			}
			return scalar.Sqrt(x), vm.ErrNone
		},
		C: func(re, im scalar.Scalar) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
			zr, zi := scalar.CSqrt(re, im)
			return zr, zi, vm.ErrNone
		},
	})
}

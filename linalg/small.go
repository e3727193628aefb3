package linalg

import (
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// ---------------------------------------------------------------------------
// Scaled products
// ---------------------------------------------------------------------------

// exponent returns the binary exponent used to normalise a, 0 for zero
// and infinities.
func exponent(a scalar.Scalar) int {
	return scalar.Ilogb(a)
}

// dot2dScaled returns a1·a3 ± a2·a4 as a mantissa and a binary scale.
// Each factor is normalised before multiplying so that the products
// neither overflow nor lose precision to underflow; the two partial
// products are aligned on the larger exponent.
func dot2dScaled(a1, a2, a3, a4 scalar.Scalar, add bool) (scalar.Scalar, int) {
	s1, s2, s3, s4 := exponent(a1), exponent(a2), exponent(a3), exponent(a4)
	p1 := scalar.Scalbn(a1, -s1) * scalar.Scalbn(a3, -s3)
	z1 := s1 + s3
	p2 := scalar.Scalbn(a2, -s2) * scalar.Scalbn(a4, -s4)
	z2 := s2 + s4
	if z1 > z2 {
		p2 = scalar.Scalbn(p2, z2-z1)
	} else {
		p1 = scalar.Scalbn(p1, z1-z2)
		z1 = z2
	}
	if add {
		return p1 + p2, z1
	}
	return p1 - p2, z1
}

// dot2d returns a1·a3 ± a2·a4 at full scale.
func dot2d(a1, a2, a3, a4 scalar.Scalar, add bool) scalar.Scalar {
	r, s := dot2dScaled(a1, a2, a3, a4, add)
	return scalar.Scalbn(r, s)
}

// ssubScaled returns a1·2^s1 − a2·2^s2 as a mantissa and a binary scale.
func ssubScaled(a1 scalar.Scalar, s1 int, a2 scalar.Scalar, s2 int) (scalar.Scalar, int) {
	if s1 > s2 {
		a2 = scalar.Scalbn(a2, s2-s1)
	} else {
		a1 = scalar.Scalbn(a1, s1-s2)
		s1 = s2
	}
	return a1 - a2, s1
}

// ssub returns a1·2^s1 − a2·2^s2.
func ssub(a1 scalar.Scalar, s1 int, a2 scalar.Scalar, s2 int) scalar.Scalar {
	r, s := ssubScaled(a1, s1, a2, s2)
	return scalar.Scalbn(r, s)
}

// quoScaled returns x / (mant·2^s) without forming the scaled divisor.
func quoScaled(x, mant scalar.Scalar, s int) scalar.Scalar {
	e := exponent(x)
	return scalar.Scalbn(scalar.Scalbn(x, -e)/mant, e-s)
}

// cquoScaled is quoScaled for a complex dividend and divisor.
func cquoScaled(xre, xim, mre, mim scalar.Scalar, s int) (scalar.Scalar, scalar.Scalar) {
	e := exponent(max(scalar.Abs(xre), scalar.Abs(xim)))
	re, im := scalar.CDiv(scalar.Scalbn(xre, -e), scalar.Scalbn(xim, -e), mre, mim)
	return scalar.Scalbn(re, e-s), scalar.Scalbn(im, e-s)
}

// ---------------------------------------------------------------------------
// Closed-form determinant
// ---------------------------------------------------------------------------

func smallDet(m vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	switch m := m.(type) {
	case *vm.RealMatrix:
		d, err := smallDetReal(m, pol)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewReal(d), vm.ErrNone
	case *vm.ComplexMatrix:
		re, im, err := smallDetComplex(m, pol)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewComplex(re, im), vm.ErrNone
	}
	return nil, vm.ErrInvalidType
}

func smallDetReal(m *vm.RealMatrix, pol vm.Policy) (scalar.Scalar, vm.ErrorKind) {
	a := m.Data
	if m.Rows == 1 {
		return a[0], vm.ErrNone
	}
	return pol.Range(dot2d(a[0], a[1], a[3], a[2], false))
}

func smallDetComplex(m *vm.ComplexMatrix, pol vm.Policy) (scalar.Scalar, scalar.Scalar, vm.ErrorKind) {
	a := m.Data
	if m.Rows == 1 {
		return a[0], a[1], vm.ErrNone
	}
	r1re, s1 := dot2dScaled(a[0], a[1], a[6], a[7], false)
	r1im, s2 := dot2dScaled(a[0], a[1], a[7], a[6], true)
	r2re, s3 := dot2dScaled(a[2], a[3], a[4], a[5], false)
	r2im, s4 := dot2dScaled(a[2], a[3], a[5], a[4], true)
	re, err := pol.Range(ssub(r1re, s1, r2re, s3))
	if err != vm.ErrNone {
		return 0, 0, err
	}
	im, err := pol.Range(ssub(r1im, s2, r2im, s4))
	if err != vm.ErrNone {
		return 0, 0, err
	}
	return re, im, vm.ErrNone
}

// ---------------------------------------------------------------------------
// Closed-form inverse
// ---------------------------------------------------------------------------

// smallInverse inverts a 1×1 or 2×2 matrix. The result is a new matrix
// owned by the caller.
func (e *Engine) smallInverse(m vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	switch m := m.(type) {
	case *vm.RealMatrix:
		inv, err := e.smallInverseReal(m, pol)
		if err != vm.ErrNone {
			return nil, err
		}
		return inv, vm.ErrNone
	case *vm.ComplexMatrix:
		inv, err := e.smallInverseComplex(m, pol)
		if err != vm.ErrNone {
			return nil, err
		}
		return inv, vm.ErrNone
	}
	return nil, vm.ErrInvalidType
}

func (e *Engine) smallInverseReal(m *vm.RealMatrix, pol vm.Policy) (*vm.RealMatrix, vm.ErrorKind) {
	if m.Rows == 1 {
		x := m.Data[0]
		var r scalar.Scalar
		if x == 0 {
			if pol.ReportSingular {
				return nil, vm.ErrSingularMatrix
			}
			r = scalar.PosHuge
		} else {
			var err vm.ErrorKind
			if r, err = pol.Accumulate(1 / x); err != vm.ErrNone {
				return nil, err
			}
		}
		inv, err := vm.NewRealMatrix(e.Alloc, 1, 1)
		if err != vm.ErrNone {
			return nil, err
		}
		inv.Data[0] = r
		return inv, vm.ErrNone
	}

	// The determinant stays in scaled form: it may be out of range even
	// when every element of the inverse is not.
	a := m.Data
	det, s := dot2dScaled(a[0], a[1], a[3], a[2], false)
	if det == 0 && pol.ReportSingular {
		return nil, vm.ErrSingularMatrix
	}
	inv, err := vm.NewRealMatrix(e.Alloc, 2, 2)
	if err != vm.ErrNone {
		return nil, err
	}
	d := inv.Data
	if det == 0 {
		d[0] = scalar.PosHuge
		d[3] = scalar.PosHuge
		return inv, vm.ErrNone
	}
	scale := pol.Lenient()
	for i, x := range m.Data {
		if d[i], err = scale.Range(quoScaled(x, det, s)); err != vm.ErrNone {
			inv.Release()
			return nil, err
		}
	}
	d[0], d[3] = d[3], d[0]
	d[1] = -d[1]
	d[2] = -d[2]
	return inv, vm.ErrNone
}

func (e *Engine) smallInverseComplex(m *vm.ComplexMatrix, pol vm.Policy) (*vm.ComplexMatrix, vm.ErrorKind) {
	if m.Rows == 1 {
		re, im := m.Data[0], m.Data[1]
		var rre, rim scalar.Scalar
		if re == 0 && im == 0 {
			if pol.ReportSingular {
				return nil, vm.ErrSingularMatrix
			}
			rre = scalar.PosHuge
		} else {
			var err vm.ErrorKind
			rre, rim = scalar.CInv(re, im)
			if rre, err = pol.Accumulate(rre); err != vm.ErrNone {
				return nil, err
			}
			if rim, err = pol.Accumulate(rim); err != vm.ErrNone {
				return nil, err
			}
		}
		inv, err := vm.NewComplexMatrix(e.Alloc, 1, 1)
		if err != vm.ErrNone {
			return nil, err
		}
		inv.Data[0], inv.Data[1] = rre, rim
		return inv, vm.ErrNone
	}

	a := m.Data
	r1re, s1 := dot2dScaled(a[0], a[1], a[6], a[7], false)
	r1im, s2 := dot2dScaled(a[0], a[1], a[7], a[6], true)
	r2re, s3 := dot2dScaled(a[2], a[3], a[4], a[5], false)
	r2im, s4 := dot2dScaled(a[2], a[3], a[5], a[4], true)
	dre, sr := ssubScaled(r1re, s1, r2re, s3)
	dim, si := ssubScaled(r1im, s2, r2im, s4)
	singular := dre == 0 && dim == 0
	s := max(sr, si)
	dre = scalar.Scalbn(dre, sr-s)
	dim = scalar.Scalbn(dim, si-s)
	if singular && pol.ReportSingular {
		return nil, vm.ErrSingularMatrix
	}
	inv, err := vm.NewComplexMatrix(e.Alloc, 2, 2)
	if err != vm.ErrNone {
		return nil, err
	}
	d := inv.Data
	if singular {
		d[0] = scalar.PosHuge
		d[6] = scalar.PosHuge
		return inv, vm.ErrNone
	}
	scale := pol.Lenient()
	for i := 0; i < 8; i += 2 {
		re, im := cquoScaled(a[i], a[i+1], dre, dim, s)
		if d[i], err = scale.Range(re); err != vm.ErrNone {
			inv.Release()
			return nil, err
		}
		if d[i+1], err = scale.Range(im); err != vm.ErrNone {
			inv.Release()
			return nil, err
		}
	}
	d[0], d[6] = d[6], d[0]
	d[1], d[7] = d[7], d[1]
	for i := 2; i < 6; i++ {
		d[i] = -d[i]
	}
	return inv, vm.ErrNone
}

package linalg

import (
	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// ---------------------------------------------------------------------------
// Synchronous matrix utilities
// ---------------------------------------------------------------------------

// Identity returns the n×n real identity matrix.
func (e *Engine) Identity(n int) (*vm.RealMatrix, vm.ErrorKind) {
	m, err := vm.NewRealMatrix(e.Alloc, n, n)
	if err != vm.ErrNone {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.Data[i*n+i] = 1
	}
	return m, vm.ErrNone
}

// Transpose returns a new transposed copy of m. Alpha elements move with
// their positions.
func (e *Engine) Transpose(m vm.Value) (vm.Value, vm.ErrorKind) {
	switch m := m.(type) {
	case *vm.RealMatrix:
		t, err := vm.NewRealMatrix(e.Alloc, m.Cols, m.Rows)
		if err != vm.ErrNone {
			return nil, err
		}
		for i := 0; i < m.Rows; i++ {
			for j := 0; j < m.Cols; j++ {
				n := i*m.Cols + j
				if s, ok := m.Strings[n]; ok {
					t.SetString(j, i, s)
					continue
				}
				t.Data[j*m.Rows+i] = m.Data[n]
			}
		}
		return t, vm.ErrNone
	case *vm.ComplexMatrix:
		t, err := vm.NewComplexMatrix(e.Alloc, m.Cols, m.Rows)
		if err != vm.ErrNone {
			return nil, err
		}
		for i := 0; i < m.Rows; i++ {
			for j := 0; j < m.Cols; j++ {
				re, im := m.At(i, j)
				t.Set(j, i, re, im)
			}
		}
		return t, vm.ErrNone
	case *vm.String:
		return nil, vm.ErrAlphaDataInvalid
	}
	return nil, vm.ErrInvalidType
}

// elementAbs returns |x| for reals and the modulus for complex elements.
func elementAbs(m vm.Value, n int) scalar.Scalar {
	if c, ok := m.(*vm.ComplexMatrix); ok {
		return scalar.CAbs(c.Data[2*n], c.Data[2*n+1])
	}
	return scalar.Abs(m.(*vm.RealMatrix).Data[n])
}

func checkNumeric(m vm.Value) vm.ErrorKind {
	switch m.(type) {
	case *vm.RealMatrix:
		if hasStrings(m) {
			return vm.ErrAlphaDataInvalid
		}
		return vm.ErrNone
	case *vm.ComplexMatrix:
		return vm.ErrNone
	case *vm.String:
		return vm.ErrAlphaDataInvalid
	}
	return vm.ErrInvalidType
}

// RowNorm returns the largest sum of absolute values over the rows.
func RowNorm(m vm.Value, pol vm.Policy) (scalar.Scalar, vm.ErrorKind) {
	if err := checkNumeric(m); err != vm.ErrNone {
		return 0, err
	}
	rows, cols, _ := vm.Dims(m)
	var best scalar.Scalar
	for i := 0; i < rows; i++ {
		var nrm scalar.Scalar
		for j := 0; j < cols; j++ {
			nrm += elementAbs(m, i*cols+j)
		}
		if scalar.IsInf(nrm) != 0 {
			return pol.Range(nrm)
		}
		if nrm > best {
			best = nrm
		}
	}
	return best, vm.ErrNone
}

// FrobeniusNorm returns the square root of the sum of squared absolute
// values, accumulated with a running scale so that intermediate squares
// do not overflow.
func FrobeniusNorm(m vm.Value, pol vm.Policy) (scalar.Scalar, vm.ErrorKind) {
	if err := checkNumeric(m); err != vm.ErrNone {
		return 0, err
	}
	rows, cols, _ := vm.Dims(m)
	var scale scalar.Scalar
	var ssq scalar.Scalar = 1
	for n := 0; n < rows*cols; n++ {
		a := elementAbs(m, n)
		if a == 0 {
			continue
		}
		if scale < a {
			r := scale / a
			ssq = 1 + ssq*r*r
			scale = a
		} else {
			r := a / scale
			ssq += r * r
		}
	}
	return pol.Range(scale * scalar.Sqrt(ssq))
}

// RowSums returns a column vector holding the sum of each row.
func (e *Engine) RowSums(m vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	if err := checkNumeric(m); err != vm.ErrNone {
		return nil, err
	}
	rows, cols, _ := vm.Dims(m)
	cplx := isComplex(m)
	res, err := e.newMatrix(rows, 1, cplx)
	if err != vm.ErrNone {
		return nil, err
	}
	src, dst := data(m), data(res)
	w := 1
	if cplx {
		w = 2
	}
	for i := 0; i < rows; i++ {
		for part := 0; part < w; part++ {
			var sum scalar.Scalar
			for j := 0; j < cols; j++ {
				sum += src[w*(i*cols+j)+part]
			}
			if sum, err = pol.Range(sum); err != vm.ErrNone {
				res.Release()
				return nil, err
			}
			dst[w*i+part] = sum
		}
	}
	return res, vm.ErrNone
}

// ---------------------------------------------------------------------------
// Vector operations
// ---------------------------------------------------------------------------

// Dot returns the dot product of two matrices with the same number of
// elements, or of two complex numbers taken as plane vectors.
func Dot(x, y vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	if cx, ok := x.(*vm.Complex); ok {
		cy, ok := y.(*vm.Complex)
		if !ok {
			return nil, typeError(y)
		}
		d, err := pol.Range(cx.Re*cy.Re + cx.Im*cy.Im)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewReal(d), vm.ErrNone
	}
	if err := checkNumeric(x); err != vm.ErrNone {
		return nil, err
	}
	if err := checkNumeric(y); err != vm.ErrNone {
		return nil, err
	}
	xr, xc, _ := vm.Dims(x)
	yr, yc, _ := vm.Dims(y)
	if xr*xc != yr*yc {
		return nil, vm.ErrDimensionError
	}
	if !isComplex(x) && !isComplex(y) {
		a, b := data(x), data(y)
		var sum scalar.Scalar
		for i := range a {
			sum += a[i] * b[i]
		}
		d, err := pol.Range(sum)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewReal(d), vm.ErrNone
	}
	a, b := complexReader(x), complexReader(y)
	var sum complex128
	for i := 0; i < xr*xc; i++ {
		sum += a.get(i) * b.get(i)
	}
	sum, err := settle(sum, pol.Range)
	if err != vm.ErrNone {
		return nil, err
	}
	return toValue(sum), vm.ErrNone
}

// Cross returns the cross product. Two complex numbers give the z
// component of their plane cross product; two real vectors of two or
// three elements give a three element vector shaped like x when x has
// three elements and 1×3 otherwise.
func (e *Engine) Cross(x, y vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	if cx, ok := x.(*vm.Complex); ok {
		cy, ok := y.(*vm.Complex)
		if !ok {
			return nil, typeError(y)
		}
		d, err := pol.Range(cx.Re*cy.Im - cx.Im*cy.Re)
		if err != vm.ErrNone {
			return nil, err
		}
		return vm.NewReal(d), vm.ErrNone
	}
	mx, ok := x.(*vm.RealMatrix)
	if !ok {
		return nil, typeError(x)
	}
	my, ok := y.(*vm.RealMatrix)
	if !ok {
		return nil, typeError(y)
	}
	if mx.ContainsStrings() || my.ContainsStrings() {
		return nil, vm.ErrAlphaDataInvalid
	}
	var a, b [3]scalar.Scalar
	nx, ny := len(mx.Data), len(my.Data)
	if nx < 2 || nx > 3 || ny < 2 || ny > 3 {
		return nil, vm.ErrDimensionError
	}
	copy(a[:], mx.Data)
	copy(b[:], my.Data)
	rows, cols := 1, 3
	if nx == 3 {
		rows, cols = mx.Rows, mx.Cols
	}
	res, err := vm.NewRealMatrix(e.Alloc, rows, cols)
	if err != vm.ErrNone {
		return nil, err
	}
	c := [3]scalar.Scalar{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	for i, v := range c {
		if res.Data[i], err = pol.Range(v); err != vm.ErrNone {
			res.Release()
			return nil, err
		}
	}
	return res, vm.ErrNone
}

// UnitVector scales a complex number or a real matrix to unit length.
func (e *Engine) UnitVector(x vm.Value, pol vm.Policy) (vm.Value, vm.ErrorKind) {
	switch x := x.(type) {
	case *vm.Complex:
		n := scalar.CAbs(x.Re, x.Im)
		if n == 0 {
			return nil, vm.ErrInvalidData
		}
		return vm.NewComplex(x.Re/n, x.Im/n), vm.ErrNone
	case *vm.RealMatrix:
		n, err := FrobeniusNorm(x, pol)
		if err != vm.ErrNone {
			return nil, err
		}
		if n == 0 {
			return nil, vm.ErrInvalidData
		}
		res, err := vm.NewRealMatrix(e.Alloc, x.Rows, x.Cols)
		if err != vm.ErrNone {
			return nil, err
		}
		for i, v := range x.Data {
			res.Data[i] = v / n
		}
		return res, vm.ErrNone
	}
	return nil, typeError(x)
}

func typeError(v vm.Value) vm.ErrorKind {
	if v.Type() == vm.TypeString {
		return vm.ErrAlphaDataInvalid
	}
	return vm.ErrInvalidType
}

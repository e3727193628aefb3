package linalg

import (
	"math"
	"math/cmplx"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// elem is the arithmetic domain of a task: float64 for real matrices and
// complex128 for complex ones. Buffers stay in scalar form; reader and
// buffer convert on access.
type elem interface {
	float64 | complex128
}

type reader[T elem] interface {
	get(i int) T
}

type buffer[T elem] interface {
	reader[T]
	set(i int, v T)
}

// realBuf views a real matrix buffer.
type realBuf []scalar.Scalar

func (b realBuf) get(i int) float64    { return float64(b[i]) }
func (b realBuf) set(i int, v float64) { b[i] = scalar.Scalar(v) }

// complexBuf views an interleaved complex matrix buffer.
type complexBuf []scalar.Scalar

func (b complexBuf) get(i int) complex128 {
	return complex(float64(b[2*i]), float64(b[2*i+1]))
}

func (b complexBuf) set(i int, v complex128) {
	b[2*i] = scalar.Scalar(real(v))
	b[2*i+1] = scalar.Scalar(imag(v))
}

// promoted reads a real matrix buffer as complex numbers.
type promoted []scalar.Scalar

func (b promoted) get(i int) complex128 { return complex(float64(b[i]), 0) }

// complexReader returns a complex view of a real or complex matrix.
func complexReader(v vm.Value) reader[complex128] {
	if isComplex(v) {
		return complexBuf(data(v))
	}
	return promoted(data(v))
}

// tinyPivot replaces an exact zero pivot when singular matrices are not
// reported, so that later quotients saturate instead of failing.
const tinyPivot = 0x1p-1022

func magnitude[T elem](v T) float64 {
	switch x := any(v).(type) {
	case float64:
		return math.Abs(x)
	case complex128:
		return cmplx.Abs(x)
	}
	panic("linalg: unsupported element type")
}

// settle applies a scalar overflow rule to each component of v.
func settle[T elem](v T, rule func(scalar.Scalar) (scalar.Scalar, vm.ErrorKind)) (T, vm.ErrorKind) {
	switch x := any(v).(type) {
	case float64:
		if !math.IsInf(x, 0) {
			return v, vm.ErrNone
		}
		r, err := rule(scalar.Scalar(x))
		return any(float64(r)).(T), err
	case complex128:
		if !cmplx.IsInf(x) {
			return v, vm.ErrNone
		}
		re, err := rule(scalar.Scalar(real(x)))
		if err != vm.ErrNone {
			return v, err
		}
		im, err := rule(scalar.Scalar(imag(x)))
		if err != vm.ErrNone {
			return v, err
		}
		return any(complex(float64(re), float64(im))).(T), vm.ErrNone
	}
	panic("linalg: unsupported element type")
}

// toValue wraps a single element as a Real or Complex value.
func toValue[T elem](v T) vm.Value {
	switch x := any(v).(type) {
	case float64:
		return vm.NewReal(scalar.Scalar(x))
	case complex128:
		return vm.NewComplex(scalar.Scalar(real(x)), scalar.Scalar(imag(x)))
	}
	panic("linalg: unsupported element type")
}

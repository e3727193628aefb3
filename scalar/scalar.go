// Package scalar is the numeric primitive of the calculator: a binary64
// backed real with the device's saturation constants, binary exponent
// helpers and decimal text conversion.
package scalar

import "math"

// Scalar is a single real number as seen by the engine.
type Scalar float64

// Saturation constants. Overflowing results clamp to PosHuge/NegHuge;
// PosTiny is the smallest positive normal value.
const (
	PosHuge Scalar = math.MaxFloat64
	NegHuge Scalar = -math.MaxFloat64
	PosTiny Scalar = 0x1p-1022
	NegTiny Scalar = -0x1p-1022
)

// IsInf returns 1 for +Inf, -1 for -Inf and 0 otherwise.
func IsInf(x Scalar) int {
	switch {
	case math.IsInf(float64(x), 1):
		return 1
	case math.IsInf(float64(x), -1):
		return -1
	}
	return 0
}

// IsNaN reports whether x is not a number.
func IsNaN(x Scalar) bool { return math.IsNaN(float64(x)) }

// Huge returns the saturated value with the sign of the infinity s
// (1 or -1).
func Huge(s int) Scalar {
	if s < 0 {
		return NegHuge
	}
	return PosHuge
}

// Clamp replaces an infinity by the saturated value of the same sign.
func Clamp(x Scalar) Scalar {
	if s := IsInf(x); s != 0 {
		return Huge(s)
	}
	return x
}

// Ilogb returns the unbiased binary exponent of x. Zero and infinities
// yield 0, which is what the scaled products need.
func Ilogb(x Scalar) int {
	if x == 0 || IsInf(x) != 0 || IsNaN(x) {
		return 0
	}
	return math.Ilogb(float64(x))
}

// Scalbn returns x * 2**n.
func Scalbn(x Scalar, n int) Scalar {
	return Scalar(math.Ldexp(float64(x), n))
}

func Abs(x Scalar) Scalar { return Scalar(math.Abs(float64(x))) }

func Sqrt(x Scalar) Scalar { return Scalar(math.Sqrt(float64(x))) }

func Hypot(x, y Scalar) Scalar { return Scalar(math.Hypot(float64(x), float64(y))) }

package vm

import "github.com/chazu/calc42/scalar"

// DefaultStepBudget is the number of elementary steps a worker performs
// per quantum.
const DefaultStepBudget = 1000

// Settings are the machine-wide flags and limits that influence numeric
// behavior. They are loaded from calc42.toml by package manifest.
type Settings struct {
	// ReportSingular makes a singular matrix an error. When false, zero
	// pivots and zero determinants saturate instead.
	ReportSingular bool
	// MatrixOutOfRange makes an overflowing matrix accumulation an error.
	// When false, accumulations clamp to the largest finite value.
	MatrixOutOfRange bool
	// RangeErrorIgnore clamps every overflow, overriding MatrixOutOfRange.
	RangeErrorIgnore bool
	// BigStack selects the unbounded stack.
	BigStack bool

	StepBudget  int
	MemoryLimit int
	Registers   int
}

// DefaultSettings returns the settings of a freshly reset machine.
func DefaultSettings() Settings {
	return Settings{
		ReportSingular:   true,
		MatrixOutOfRange: true,
		StepBudget:       DefaultStepBudget,
		Registers:        25,
	}
}

// Policy returns the numeric policy snapshot for a computation chain.
func (s Settings) Policy() Policy {
	return Policy{
		ReportSingular:  s.ReportSingular,
		OverflowIsError: s.MatrixOutOfRange,
		IgnoreRange:     s.RangeErrorIgnore,
	}
}

// Policy is the numeric policy captured by value when a computation
// starts. Overrides for a sub-computation are made on a copy, never on the
// machine settings.
type Policy struct {
	ReportSingular  bool
	OverflowIsError bool
	IgnoreRange     bool
}

// Accumulate applies the matrix overflow rule to the result of an
// accumulation: an infinity is an error when overflow is an error and
// range errors are not ignored, and is clamped otherwise.
func (p Policy) Accumulate(x scalar.Scalar) (scalar.Scalar, ErrorKind) {
	if s := scalar.IsInf(x); s != 0 {
		if p.OverflowIsError && !p.IgnoreRange {
			return 0, ErrOutOfRange
		}
		return scalar.Huge(s), ErrNone
	}
	return x, ErrNone
}

// Range applies the scalar range rule: an infinity is clamped only when
// range errors are ignored.
func (p Policy) Range(x scalar.Scalar) (scalar.Scalar, ErrorKind) {
	if s := scalar.IsInf(x); s != 0 {
		if p.IgnoreRange {
			return scalar.Huge(s), ErrNone
		}
		return 0, ErrOutOfRange
	}
	return x, ErrNone
}

// Lenient returns a copy of p used for elementwise scaling inside matrix
// operations: range errors are ignored unless overflow is an error.
func (p Policy) Lenient() Policy {
	q := p
	q.IgnoreRange = !p.OverflowIsError || p.IgnoreRange
	return q
}

// Singular returns a copy of p that reports singular matrices.
func (p Policy) Singular() Policy {
	q := p
	q.ReportSingular = true
	return q
}

package linalg

import (
	"github.com/chazu/calc42/vm"
)

// ---------------------------------------------------------------------------
// Multiplication
// ---------------------------------------------------------------------------

// mulTask computes left (m×q) times right (q×n) one multiply-accumulate per
// step, in i, j, k order. Each finished cell is checked for overflow.
type mulTask[T elem] struct {
	left, right reader[T]
	out         buffer[T]
	res         vm.Value // owned until delivered

	m, q, n int
	i, j, k int
	sum     T

	pol    vm.Policy
	budget int
	done   Completion
}

func (t *mulTask[T]) Resume(interrupted bool) vm.Step {
	if interrupted {
		return vm.Done(t.abort(vm.ErrInterrupted))
	}
	for steps := 0; steps < t.budget; steps++ {
		t.sum += t.left.get(t.i*t.q+t.k) * t.right.get(t.k*t.n+t.j)
		t.k++
		if t.k < t.q {
			continue
		}
		sum, err := settle(t.sum, t.pol.Accumulate)
		if err != vm.ErrNone {
			return vm.Done(t.abort(err))
		}
		t.out.set(t.i*t.n+t.j, sum)
		t.sum = 0
		t.k = 0
		t.j++
		if t.j < t.n {
			continue
		}
		t.j = 0
		t.i++
		if t.i == t.m {
			res := t.res
			t.res = nil
			return vm.Done(t.done(vm.ErrNone, res))
		}
	}
	return vm.Continue
}

func (t *mulTask[T]) abort(err vm.ErrorKind) vm.ErrorKind {
	if t.res != nil {
		t.res.Release()
		t.res = nil
	}
	return t.done(err, nil)
}

// Mul multiplies two matrices. Mixed real and complex operands produce a
// complex result. The product always runs as a task; the return value is
// ErrSuspended unless the operands are rejected up front, in which case it
// is whatever done returns.
func (e *Engine) Mul(left, right vm.Value, pol vm.Policy, done Completion) vm.ErrorKind {
	lr, lc, lok := vm.Dims(left)
	rr, rc, rok := vm.Dims(right)
	if !lok || !rok {
		return done(vm.ErrInvalidType, nil)
	}
	if lc != rr {
		return done(vm.ErrDimensionError, nil)
	}
	if hasStrings(left) || hasStrings(right) {
		return done(vm.ErrAlphaDataInvalid, nil)
	}
	cplx := isComplex(left) || isComplex(right)
	res, err := e.newMatrix(lr, rc, cplx)
	if err != vm.ErrNone {
		return done(err, nil)
	}
	if !cplx {
		return e.start("mul", &mulTask[float64]{
			left:   realBuf(data(left)),
			right:  realBuf(data(right)),
			out:    realBuf(data(res)),
			res:    res,
			m:      lr,
			q:      lc,
			n:      rc,
			pol:    pol,
			budget: e.budget(),
			done:   done,
		})
	}
	return e.start("mul", &mulTask[complex128]{
		left:   complexReader(left),
		right:  complexReader(right),
		out:    complexBuf(data(res)),
		res:    res,
		m:      lr,
		q:      lc,
		n:      rc,
		pol:    pol,
		budget: e.budget(),
		done:   done,
	})
}

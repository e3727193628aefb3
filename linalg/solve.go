package linalg

import (
	"github.com/chazu/calc42/vm"
)

// ---------------------------------------------------------------------------
// Division and inversion through LU
// ---------------------------------------------------------------------------

// solveTask decomposes a copy of the divisor and then back-substitutes
// into the result, which starts out as the right-hand side.
type solveTask[T elem] struct {
	dec decomp[T]
	sub backsub[T]

	lu  vm.Value // owned
	res vm.Value // owned until delivered

	solving bool
	budget  int
	done    Completion
}

func (t *solveTask[T]) Resume(interrupted bool) vm.Step {
	if interrupted {
		return vm.Done(t.abort(vm.ErrInterrupted))
	}
	budget := t.budget
	if !t.solving {
		used, finished, err := t.dec.run(budget)
		if err != vm.ErrNone {
			return vm.Done(t.abort(err))
		}
		if !finished {
			return vm.Continue
		}
		log.Debugf("lu decomposition of order %d complete", t.dec.n)
		t.solving = true
		if budget -= used; budget <= 0 {
			return vm.Continue
		}
	}
	_, finished, err := t.sub.run(budget)
	if err != vm.ErrNone {
		return vm.Done(t.abort(err))
	}
	if !finished {
		return vm.Continue
	}
	t.lu.Release()
	t.lu = nil
	res := t.res
	t.res = nil
	return vm.Done(t.done(vm.ErrNone, res))
}

func (t *solveTask[T]) abort(err vm.ErrorKind) vm.ErrorKind {
	if t.lu != nil {
		t.lu.Release()
		t.lu = nil
	}
	if t.res != nil {
		t.res.Release()
		t.res = nil
	}
	return t.done(err, nil)
}

// Div solves right·X = left, the calculator's left ÷ right. right must be
// square with as many rows as left. Orders 1 and 2 invert right in closed
// form and multiply; larger orders decompose and back-substitute.
func (e *Engine) Div(left, right vm.Value, pol vm.Policy, done Completion) vm.ErrorKind {
	lr, lc, lok := vm.Dims(left)
	rr, rc, rok := vm.Dims(right)
	if !lok || !rok {
		return done(vm.ErrInvalidType, nil)
	}
	if rr != rc || rr != lr {
		return done(vm.ErrDimensionError, nil)
	}
	if hasStrings(left) || hasStrings(right) {
		return done(vm.ErrAlphaDataInvalid, nil)
	}
	if rr <= 2 {
		inv, err := e.smallInverse(right, pol)
		if err != vm.ErrNone {
			return done(err, nil)
		}
		return e.Mul(inv, left, pol, func(err vm.ErrorKind, res vm.Value) vm.ErrorKind {
			inv.Release()
			return done(err, res)
		})
	}
	cplx := isComplex(left) || isComplex(right)
	lu, err := e.newMatrix(rr, rr, cplx)
	if err != vm.ErrNone {
		return done(err, nil)
	}
	res, err := e.newMatrix(lr, lc, cplx)
	if err != vm.ErrNone {
		lu.Release()
		return done(err, nil)
	}
	fill(lu, right)
	fill(res, left)
	return e.start("div", e.solver(lu, res, rr, lc, pol, done))
}

// Invert inverts a square matrix.
func (e *Engine) Invert(m vm.Value, pol vm.Policy, done Completion) vm.ErrorKind {
	rows, cols, ok := vm.Dims(m)
	if !ok {
		return done(vm.ErrInvalidType, nil)
	}
	if rows != cols {
		return done(vm.ErrDimensionError, nil)
	}
	if hasStrings(m) {
		return done(vm.ErrAlphaDataInvalid, nil)
	}
	if rows <= 2 {
		inv, err := e.smallInverse(m, pol)
		if err != vm.ErrNone {
			return done(err, nil)
		}
		return done(vm.ErrNone, inv)
	}
	cplx := isComplex(m)
	lu, err := e.newMatrix(rows, rows, cplx)
	if err != vm.ErrNone {
		return done(err, nil)
	}
	res, err := e.newMatrix(rows, rows, cplx)
	if err != vm.ErrNone {
		lu.Release()
		return done(err, nil)
	}
	fill(lu, m)
	d := data(res)
	stride := 1
	if cplx {
		stride = 2
	}
	for i := 0; i < rows; i++ {
		d[stride*(i*rows+i)] = 1
	}
	return e.start("invert", e.solver(lu, res, rows, rows, pol, done))
}

func (e *Engine) solver(lu, res vm.Value, n, m int, pol vm.Policy, done Completion) job {
	if isComplex(lu) {
		t := &solveTask[complex128]{lu: lu, res: res, budget: e.budget(), done: done}
		t.dec = newDecomp[complex128](complexBuf(data(lu)), n, pol)
		t.sub = newBacksub[complex128](complexBuf(data(lu)), complexBuf(data(res)), n, m, t.dec.perm, pol)
		return t
	}
	t := &solveTask[float64]{lu: lu, res: res, budget: e.budget(), done: done}
	t.dec = newDecomp[float64](realBuf(data(lu)), n, pol)
	t.sub = newBacksub[float64](realBuf(data(lu)), realBuf(data(res)), n, m, t.dec.perm, pol)
	return t
}

// ---------------------------------------------------------------------------
// Determinant
// ---------------------------------------------------------------------------

// detTask decomposes a private copy of the matrix. The decomposition never
// fudges pivots; a zero pivot is an error under the caller's policy when it
// reports singular matrices and a zero determinant otherwise.
type detTask[T elem] struct {
	dec    decomp[T]
	work   vm.Value // owned
	pol    vm.Policy
	budget int
	done   Completion
}

func (t *detTask[T]) Resume(interrupted bool) vm.Step {
	if interrupted {
		return vm.Done(t.abort(vm.ErrInterrupted))
	}
	_, finished, err := t.dec.run(t.budget)
	if err == vm.ErrSingularMatrix && !t.pol.ReportSingular {
		t.work.Release()
		t.work = nil
		var zero T
		return vm.Done(t.done(vm.ErrNone, toValue(zero)))
	}
	if err != vm.ErrNone {
		return vm.Done(t.abort(err))
	}
	if !finished {
		return vm.Continue
	}
	det, err := settle(t.dec.determinant(), t.pol.Range)
	t.work.Release()
	t.work = nil
	if err != vm.ErrNone {
		return vm.Done(t.done(err, nil))
	}
	return vm.Done(t.done(vm.ErrNone, toValue(det)))
}

func (t *detTask[T]) abort(err vm.ErrorKind) vm.ErrorKind {
	if t.work != nil {
		t.work.Release()
		t.work = nil
	}
	return t.done(err, nil)
}

// Det computes the determinant of a square matrix. Larger matrices are
// decomposed under a copy of pol that always reports singularity, so a
// zero pivot is never replaced by a substitute value.
func (e *Engine) Det(m vm.Value, pol vm.Policy, done Completion) vm.ErrorKind {
	rows, cols, ok := vm.Dims(m)
	if !ok {
		return done(vm.ErrInvalidType, nil)
	}
	if rows != cols {
		return done(vm.ErrDimensionError, nil)
	}
	if hasStrings(m) {
		return done(vm.ErrAlphaDataInvalid, nil)
	}
	if rows <= 2 {
		det, err := smallDet(m, pol)
		if err != vm.ErrNone {
			return done(err, nil)
		}
		return done(vm.ErrNone, det)
	}
	work, err := m.Dup()
	if err != vm.ErrNone {
		return done(err, nil)
	}
	chain := pol.Singular()
	if isComplex(work) {
		return e.start("det", &detTask[complex128]{
			dec:    newDecomp[complex128](complexBuf(data(work)), rows, chain),
			work:   work,
			pol:    pol,
			budget: e.budget(),
			done:   done,
		})
	}
	return e.start("det", &detTask[float64]{
		dec:    newDecomp[float64](realBuf(data(work)), rows, chain),
		work:   work,
		pol:    pol,
		budget: e.budget(),
		done:   done,
	})
}

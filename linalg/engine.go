// Package linalg implements the matrix algebra engine: multiplication,
// LU decomposition, division (solving), inversion and determinants of real
// and complex matrices.
//
// Long operations run as resumable tasks on the machine's scheduler and
// report through a Completion. Small matrices (order 1 and 2) are handled
// in closed form without suspending, except for the multiplication step of
// a small division.
//
// Operands are borrowed and never modified. Every intermediate buffer is
// owned by exactly one task and released on every path; the result is
// handed to the completion, which takes ownership.
package linalg

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

var log = commonlog.GetLogger("calc42.linalg")

// Completion receives the outcome of an operation. On failure result is
// nil. The code it returns becomes the final code of the operation.
type Completion func(err vm.ErrorKind, result vm.Value) vm.ErrorKind

// Engine runs matrix operations against an allocator and a scheduler.
type Engine struct {
	Alloc  vm.Allocator
	Sched  *vm.Scheduler
	Budget int // steps per quantum, 0 selects vm.DefaultStepBudget
}

// NewEngine creates an engine.
func NewEngine(alloc vm.Allocator, sched *vm.Scheduler, budget int) *Engine {
	return &Engine{Alloc: alloc, Sched: sched, Budget: budget}
}

func (e *Engine) budget() int {
	if e.Budget <= 0 {
		return vm.DefaultStepBudget
	}
	return e.Budget
}

// job is a task that can be abandoned before its first quantum.
type job interface {
	vm.Task
	abort(err vm.ErrorKind) vm.ErrorKind
}

// start installs j on the scheduler. A busy scheduler fails the job
// through its completion.
func (e *Engine) start(name string, j job) vm.ErrorKind {
	if err := e.Sched.Start(name, j); err != nil {
		log.Debugf("cannot start %s: %s", name, err)
		return j.abort(vm.ErrBusy)
	}
	return vm.ErrSuspended
}

// Wait runs op and drives any task it starts to completion, returning the
// result delivered to the completion.
func (e *Engine) Wait(op func(done Completion) vm.ErrorKind) (vm.Value, vm.ErrorKind) {
	var (
		res    vm.Value
		code   vm.ErrorKind
		called bool
	)
	rc := op(func(err vm.ErrorKind, v vm.Value) vm.ErrorKind {
		called = true
		res, code = v, err
		return err
	})
	if rc == vm.ErrSuspended {
		rc = e.Sched.Run(nil)
	}
	if !called {
		return nil, rc
	}
	return res, code
}

// ---------------------------------------------------------------------------
// Operand checks
// ---------------------------------------------------------------------------

// hasStrings reports whether v is a real matrix holding alpha data.
func hasStrings(v vm.Value) bool {
	m, ok := v.(*vm.RealMatrix)
	return ok && m.ContainsStrings()
}

func isComplex(v vm.Value) bool {
	return v.Type() == vm.TypeComplexMatrix
}

// newMatrix allocates a rows×cols matrix that is complex when cplx is set.
func (e *Engine) newMatrix(rows, cols int, cplx bool) (vm.Value, vm.ErrorKind) {
	if cplx {
		m, err := vm.NewComplexMatrix(e.Alloc, rows, cols)
		if err != vm.ErrNone {
			return nil, err
		}
		return m, vm.ErrNone
	}
	m, err := vm.NewRealMatrix(e.Alloc, rows, cols)
	if err != vm.ErrNone {
		return nil, err
	}
	return m, vm.ErrNone
}

// data returns the backing buffer of a matrix value.
func data(v vm.Value) []scalar.Scalar {
	switch m := v.(type) {
	case *vm.RealMatrix:
		return m.Data
	case *vm.ComplexMatrix:
		return m.Data
	}
	return nil
}

// fill copies src into the matrix dst, promoting reals when dst is
// complex.
func fill(dst, src vm.Value) {
	d := data(dst)
	s := data(src)
	if isComplex(dst) && !isComplex(src) {
		for i, x := range s {
			d[2*i] = x
			d[2*i+1] = 0
		}
		return
	}
	copy(d, s)
}

// release frees every non-nil value.
func release(vs ...vm.Value) {
	for _, v := range vs {
		if v != nil {
			v.Release()
		}
	}
}

package linalg

import (
	"math"
	"testing"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

// testBudget is deliberately small so that every task spans many quanta.
const testBudget = 7

func newTestEngine() (*Engine, *vm.Heap) {
	h := vm.NewHeap(0)
	return NewEngine(h, vm.NewScheduler(), testBudget), h
}

func realMatrix(t *testing.T, h *vm.Heap, rows, cols int, vals ...float64) *vm.RealMatrix {
	t.Helper()
	if len(vals) != rows*cols {
		t.Fatalf("realMatrix: %d values for %dx%d", len(vals), rows, cols)
	}
	m, err := vm.NewRealMatrix(h, rows, cols)
	if err != vm.ErrNone {
		t.Fatalf("NewRealMatrix: %v", err)
	}
	for i, v := range vals {
		m.Data[i] = scalar.Scalar(v)
	}
	return m
}

// complexMatrix takes interleaved re, im pairs.
func complexMatrix(t *testing.T, h *vm.Heap, rows, cols int, vals ...float64) *vm.ComplexMatrix {
	t.Helper()
	if len(vals) != 2*rows*cols {
		t.Fatalf("complexMatrix: %d values for %dx%d", len(vals), rows, cols)
	}
	m, err := vm.NewComplexMatrix(h, rows, cols)
	if err != vm.ErrNone {
		t.Fatalf("NewComplexMatrix: %v", err)
	}
	for i, v := range vals {
		m.Data[i] = scalar.Scalar(v)
	}
	return m
}

// recorder is a Completion double that remembers what it received.
type recorder struct {
	calls  int
	err    vm.ErrorKind
	result vm.Value
}

func (r *recorder) done(err vm.ErrorKind, v vm.Value) vm.ErrorKind {
	r.calls++
	r.err = err
	r.result = v
	return err
}

func approx(a, b scalar.Scalar, tol float64) bool {
	d := math.Abs(float64(a - b))
	return d <= tol || d <= tol*math.Abs(float64(b))
}

func mustWait(t *testing.T, e *Engine, op func(Completion) vm.ErrorKind) vm.Value {
	t.Helper()
	v, err := e.Wait(op)
	if err != vm.ErrNone {
		t.Fatalf("operation failed: %v", err)
	}
	return v
}

func assertSameData(t *testing.T, got, want vm.Value, tol float64) {
	t.Helper()
	gr, gc, _ := vm.Dims(got)
	wr, wc, _ := vm.Dims(want)
	if gr != wr || gc != wc || got.Type() != want.Type() {
		t.Fatalf("shape %dx%d %s, want %dx%d %s", gr, gc, got.Type(), wr, wc, want.Type())
	}
	g, w := data(got), data(want)
	for i := range w {
		if !approx(g[i], w[i], tol) {
			t.Errorf("element %d = %v, want %v", i, g[i], w[i])
		}
	}
}

func assertIdentity(t *testing.T, m vm.Value, tol float64) {
	t.Helper()
	n, cols, _ := vm.Dims(m)
	if n != cols {
		t.Fatalf("not square: %dx%d", n, cols)
	}
	stride := 1
	if isComplex(m) {
		stride = 2
	}
	d := data(m)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k := stride * (i*n + j)
			want := scalar.Scalar(0)
			if i == j {
				want = 1
			}
			if math.Abs(float64(d[k]-want)) > tol {
				t.Errorf("(%d,%d) = %v, want %v", i, j, d[k], want)
			}
			if stride == 2 && math.Abs(float64(d[k+1])) > tol {
				t.Errorf("(%d,%d) imaginary part = %v, want 0", i, j, d[k+1])
			}
		}
	}
}

package linalg

import (
	"testing"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

func TestDot2dScaling(t *testing.T) {
	// Each product is far outside the range of its factors' exponents but
	// the scaled computation stays finite.
	got := dot2d(1e300, 1e300, 1e-300, 1e-300, true)
	if !approx(got, 2, 1e-15) {
		t.Errorf("dot2d sum = %v, want 2", got)
	}
	got = dot2d(3, 2, 5, 7, false)
	if got != 1 {
		t.Errorf("3·5 - 2·7 = %v, want 1", got)
	}
	if got := dot2d(0, 0, 5, 7, false); got != 0 {
		t.Errorf("zero factors = %v", got)
	}
	if got := ssub(3, 4, 1, 2); got != 44 {
		t.Errorf("ssub(3·2^4, 2^2) = %v, want 44", got)
	}
}

func TestSmallDetCancellation(t *testing.T) {
	// a·d and b·c agree in all but the last bits.
	e, h := newTestEngine()
	m := realMatrix(t, h, 2, 2, 1e154, 1e154, 1e154, 1e154*(1+0x1p-52))
	d := mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Det(m, strict, done) })
	x := d.(*vm.Real).X
	if x <= 0 || scalar.IsInf(x) != 0 {
		t.Errorf("det = %v, want a small positive value", x)
	}
}

func TestSmallDetOverflow(t *testing.T) {
	e, h := newTestEngine()
	m := realMatrix(t, h, 2, 2, 1e200, 0, 0, 1e200)
	if _, err := e.Wait(func(done Completion) vm.ErrorKind { return e.Det(m, strict, done) }); err != vm.ErrOutOfRange {
		t.Errorf("err = %v, want %v", err, vm.ErrOutOfRange)
	}
	ignore := vm.Policy{IgnoreRange: true}
	d := mustWait(t, e, func(done Completion) vm.ErrorKind { return e.Det(m, ignore, done) })
	if d.(*vm.Real).X != scalar.PosHuge {
		t.Errorf("det = %v, want PosHuge", d.(*vm.Real).X)
	}
}

func TestSmallInverseSingular(t *testing.T) {
	e, h := newTestEngine()
	quiet := vm.Policy{OverflowIsError: true}

	one := realMatrix(t, h, 1, 1, 0)
	if _, err := e.smallInverse(one, strict); err != vm.ErrSingularMatrix {
		t.Errorf("1x1 zero with reporting = %v", err)
	}
	inv, err := e.smallInverse(one, quiet)
	if err != vm.ErrNone || data(inv)[0] != scalar.PosHuge {
		t.Errorf("1x1 zero without reporting = %v, %v", err, inv)
	}
	inv.Release()

	two := realMatrix(t, h, 2, 2, 1, 2, 2, 4)
	if _, err := e.smallInverse(two, strict); err != vm.ErrSingularMatrix {
		t.Errorf("2x2 singular with reporting = %v", err)
	}
	inv, err = e.smallInverse(two, quiet)
	if err != vm.ErrNone {
		t.Fatalf("2x2 singular without reporting = %v", err)
	}
	want := []scalar.Scalar{scalar.PosHuge, 0, 0, scalar.PosHuge}
	for i, x := range data(inv) {
		if x != want[i] {
			t.Errorf("element %d = %v, want %v", i, x, want[i])
		}
	}
	inv.Release()

	c := complexMatrix(t, h, 2, 2, 1, 0, 2, 0, 2, 0, 4, 0)
	inv, err = e.smallInverse(c, quiet)
	if err != vm.ErrNone {
		t.Fatalf("complex 2x2 singular without reporting = %v", err)
	}
	d := data(inv)
	for i, x := range d {
		w := scalar.Scalar(0)
		if i == 0 || i == 6 {
			w = scalar.PosHuge
		}
		if x != w {
			t.Errorf("complex element %d = %v, want %v", i, x, w)
		}
	}
	inv.Release()
}

func TestSmallInverseValues(t *testing.T) {
	e, h := newTestEngine()
	m := realMatrix(t, h, 2, 2, 4, 7, 2, 6)
	inv, err := e.smallInverse(m, strict)
	if err != vm.ErrNone {
		t.Fatalf("smallInverse: %v", err)
	}
	want := realMatrix(t, h, 2, 2, 0.6, -0.7, -0.2, 0.4)
	assertSameData(t, inv, want, 1e-15)

	c := complexMatrix(t, h, 1, 1, 0, 2)
	ci, err := e.smallInverse(c, strict)
	if err != vm.ErrNone {
		t.Fatalf("complex 1x1: %v", err)
	}
	if d := data(ci); d[0] != 0 || d[1] != -0.5 {
		t.Errorf("1/(2i) = %v%+vi, want -0.5i", d[0], d[1])
	}
}

func TestSmallInverseOutOfRangeDeterminant(t *testing.T) {
	e, h := newTestEngine()
	tests := []struct {
		name string
		m    vm.Value
		want vm.Value
	}{
		{"real large", realMatrix(t, h, 2, 2, 1e200, 0, 0, 1e200), realMatrix(t, h, 2, 2, 1e-200, 0, 0, 1e-200)},
		{"real small", realMatrix(t, h, 2, 2, 1e-200, 0, 0, 1e-200), realMatrix(t, h, 2, 2, 1e200, 0, 0, 1e200)},
		{"complex large", complexMatrix(t, h, 2, 2, 0, 1e200, 0, 0, 0, 0, 1e200, 0),
			complexMatrix(t, h, 2, 2, 0, -1e-200, 0, 0, 0, 0, 1e-200, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := e.smallInverse(tt.m, strict)
			if err != vm.ErrNone {
				t.Fatalf("smallInverse: %v", err)
			}
			assertSameData(t, inv, tt.want, 1e-15)
			inv.Release()
		})
	}
}

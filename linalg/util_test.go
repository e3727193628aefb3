package linalg

import (
	"testing"

	"github.com/chazu/calc42/scalar"
	"github.com/chazu/calc42/vm"
)

func TestNorms(t *testing.T) {
	_, h := newTestEngine()
	m := realMatrix(t, h, 2, 3, 1, -2, 3, -4, 5, 6)
	tests := []struct {
		name string
		fn   func(vm.Value, vm.Policy) (scalar.Scalar, vm.ErrorKind)
		want scalar.Scalar
	}{
		{"RNRM", RowNorm, 15},
		{"FNRM", FrobeniusNorm, scalar.Sqrt(91)},
	}
	for _, tt := range tests {
		got, err := tt.fn(m, strict)
		if err != vm.ErrNone {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !approx(got, tt.want, 1e-15) {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	c := complexMatrix(t, h, 1, 2, 3, 4, 0, 1)
	if got, _ := RowNorm(c, strict); got != 6 {
		t.Errorf("complex RNRM = %v, want 6", got)
	}
	huge := realMatrix(t, h, 1, 2, 1e308, 1e308)
	if _, err := RowNorm(huge, strict); err != vm.ErrOutOfRange {
		t.Errorf("overflowing RNRM = %v, want %v", err, vm.ErrOutOfRange)
	}
	if got, _ := FrobeniusNorm(huge, strict); scalar.IsInf(got) != 0 {
		t.Errorf("FNRM overflowed on representable result: %v", got)
	}
	if got, err := RowNorm(huge, vm.Policy{IgnoreRange: true}); err != vm.ErrNone || got != scalar.PosHuge {
		t.Errorf("ignored RNRM = %v, %v", got, err)
	}
}

func TestRowSums(t *testing.T) {
	e, h := newTestEngine()
	m := realMatrix(t, h, 2, 3, 1, 2, 3, 4, 5, 6)
	got, err := e.RowSums(m, strict)
	if err != vm.ErrNone {
		t.Fatalf("RowSums: %v", err)
	}
	assertSameData(t, got, realMatrix(t, h, 2, 1, 6, 15), 0)

	c := complexMatrix(t, h, 1, 2, 1, 2, 3, 4)
	got, err = e.RowSums(c, strict)
	if err != vm.ErrNone {
		t.Fatalf("complex RowSums: %v", err)
	}
	assertSameData(t, got, complexMatrix(t, h, 1, 1, 4, 6), 0)

	neg := realMatrix(t, h, 1, 2, -1e308, -1e308)
	before := h.Outstanding()
	if _, err := e.RowSums(neg, strict); err != vm.ErrOutOfRange {
		t.Errorf("overflow = %v", err)
	}
	if h.Outstanding() != before {
		t.Error("failed RowSums leaked its result")
	}
	got, _ = e.RowSums(neg, vm.Policy{IgnoreRange: true})
	if data(got)[0] != scalar.NegHuge {
		t.Errorf("clamped sum = %v, want NegHuge", data(got)[0])
	}
}

func TestTranspose(t *testing.T) {
	e, h := newTestEngine()
	m := realMatrix(t, h, 2, 3, 1, 2, 3, 4, 5, 6)
	m.SetString(0, 1, "AB")
	got, err := e.Transpose(m)
	if err != vm.ErrNone {
		t.Fatalf("Transpose: %v", err)
	}
	tr := got.(*vm.RealMatrix)
	if tr.Rows != 3 || tr.Cols != 2 {
		t.Fatalf("shape = %dx%d", tr.Rows, tr.Cols)
	}
	if tr.At(2, 1) != 6 || tr.At(0, 1) != 4 {
		t.Errorf("transposed data = %v", tr.Data)
	}
	if tr.Strings[1*2+0] != "AB" {
		t.Errorf("string did not move: %v", tr.Strings)
	}
	if _, err := e.Transpose(vm.NewString("x")); err != vm.ErrAlphaDataInvalid {
		t.Errorf("Transpose(string) = %v", err)
	}
}

func TestDotCross(t *testing.T) {
	e, h := newTestEngine()
	a := realMatrix(t, h, 1, 3, 1, 2, 3)
	b := realMatrix(t, h, 3, 1, 4, 5, 6)
	d, err := Dot(a, b, strict)
	if err != vm.ErrNone || d.(*vm.Real).X != 32 {
		t.Errorf("DOT = %v, %v; want 32", d, err)
	}
	if _, err := Dot(a, realMatrix(t, h, 1, 2, 1, 2), strict); err != vm.ErrDimensionError {
		t.Errorf("DOT size mismatch = %v", err)
	}
	d, err = Dot(vm.NewComplex(1, 2), vm.NewComplex(3, 4), strict)
	if err != vm.ErrNone || d.(*vm.Real).X != 11 {
		t.Errorf("complex DOT = %v, %v; want 11", d, err)
	}
	d, err = Dot(complexMatrix(t, h, 1, 1, 1, 2), complexMatrix(t, h, 1, 1, 3, 4), strict)
	if err != vm.ErrNone {
		t.Fatalf("complex matrix DOT: %v", err)
	}
	if c := d.(*vm.Complex); c.Re != -5 || c.Im != 10 {
		t.Errorf("complex matrix DOT = %v%+vi", c.Re, c.Im)
	}

	x := realMatrix(t, h, 1, 3, 1, 0, 0)
	y := realMatrix(t, h, 1, 3, 0, 1, 0)
	c, err := e.Cross(x, y, strict)
	if err != vm.ErrNone {
		t.Fatalf("CROSS: %v", err)
	}
	assertSameData(t, c, realMatrix(t, h, 1, 3, 0, 0, 1), 0)
	z, err := e.Cross(vm.NewComplex(1, 0), vm.NewComplex(0, 1), strict)
	if err != vm.ErrNone || z.(*vm.Real).X != 1 {
		t.Errorf("complex CROSS = %v, %v", z, err)
	}
	if _, err := e.Cross(realMatrix(t, h, 1, 4, 1, 2, 3, 4), y, strict); err != vm.ErrDimensionError {
		t.Errorf("CROSS of 4-vector = %v", err)
	}
	if _, err := e.Cross(vm.NewComplex(1, 0), vm.NewString("s"), strict); err != vm.ErrAlphaDataInvalid {
		t.Errorf("CROSS with string = %v", err)
	}
}

func TestUnitVector(t *testing.T) {
	e, h := newTestEngine()
	u, err := e.UnitVector(vm.NewComplex(3, 4), strict)
	if err != vm.ErrNone {
		t.Fatalf("UVEC complex: %v", err)
	}
	if c := u.(*vm.Complex); !approx(c.Re, 0.6, 1e-15) || !approx(c.Im, 0.8, 1e-15) {
		t.Errorf("UVEC(3+4i) = %v%+vi", c.Re, c.Im)
	}
	u, err = e.UnitVector(realMatrix(t, h, 1, 2, 0, -5), strict)
	if err != vm.ErrNone {
		t.Fatalf("UVEC matrix: %v", err)
	}
	assertSameData(t, u, realMatrix(t, h, 1, 2, 0, -1), 0)
	if _, err := e.UnitVector(vm.NewComplex(0, 0), strict); err != vm.ErrInvalidData {
		t.Errorf("UVEC(0) = %v", err)
	}
}

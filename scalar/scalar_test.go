package scalar

import (
	"math"
	"testing"
)

func TestIsInf(t *testing.T) {
	tests := []struct {
		x    Scalar
		want int
	}{
		{Scalar(math.Inf(1)), 1},
		{Scalar(math.Inf(-1)), -1},
		{PosHuge, 0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := IsInf(tt.x); got != tt.want {
			t.Errorf("IsInf(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(Scalar(math.Inf(-1))); got != NegHuge {
		t.Errorf("Clamp(-Inf) = %v, want NegHuge", got)
	}
	if got := Clamp(3); got != 3 {
		t.Errorf("Clamp(3) = %v", got)
	}
}

func TestIlogbScalbn(t *testing.T) {
	if got := Ilogb(8); got != 3 {
		t.Errorf("Ilogb(8) = %d, want 3", got)
	}
	if got := Ilogb(0); got != 0 {
		t.Errorf("Ilogb(0) = %d, want 0", got)
	}
	if got := Ilogb(Scalar(math.Inf(1))); got != 0 {
		t.Errorf("Ilogb(Inf) = %d, want 0", got)
	}
	if got := Scalbn(3, 4); got != 48 {
		t.Errorf("Scalbn(3, 4) = %v, want 48", got)
	}
	x := Scalar(1e300)
	if got := Scalbn(Scalbn(x, -Ilogb(x)), Ilogb(x)); got != x {
		t.Errorf("scalbn round trip = %v, want %v", got, x)
	}
}

func TestComplex(t *testing.T) {
	re, im := CMul(1, 2, 3, 4)
	if re != -5 || im != 10 {
		t.Errorf("CMul = (%v, %v), want (-5, 10)", re, im)
	}
	re, im = CDiv(-5, 10, 3, 4)
	if math.Abs(float64(re-1)) > 1e-15 || math.Abs(float64(im-2)) > 1e-15 {
		t.Errorf("CDiv = (%v, %v), want (1, 2)", re, im)
	}
	re, im = CInv(0, 2)
	if re != 0 || im != -0.5 {
		t.Errorf("CInv(2i) = (%v, %v), want (0, -0.5)", re, im)
	}
	re, im = CSqrt(-4, 0)
	if re != 0 || im != 2 {
		t.Errorf("CSqrt(-4) = (%v, %v), want (0, 2)", re, im)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Scalar
	}{
		{"1", 1},
		{"-2.5", -2.5},
		{"1E3", 1000},
		{"e3", 1000},
		{"1.5e-2", 0.015},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := Parse("abc"); err == nil {
		t.Error("Parse(abc) should fail")
	}
	if _, err := Parse(""); err == nil {
		t.Error("Parse(\"\") should fail")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   Scalar
		want string
	}{
		{0, "0"},
		{1, "1"},
		{100, "100"},
		{-2, "-2"},
		{0.1, "0.1"},
		{1.0 / 3, "0.333333333333"},
		{Scalar(math.Inf(1)), "<Infinity>"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := FormatComplex(1, -2); got != "1 -i2" {
		t.Errorf("FormatComplex = %q", got)
	}
}

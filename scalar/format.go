package scalar

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Digits is the number of significant digits shown on the display.
const Digits = 12

var displayCtx = apd.BaseContext.WithPrecision(Digits)

// Parse converts calculator number syntax to a Scalar. Besides plain
// decimal syntax it accepts a leading "-" on the exponent and the
// exponent marker "E" with no mantissa ("E3" is 1000).
func Parse(s string) (Scalar, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, fmt.Errorf("scalar: empty number")
	}
	up := strings.ToUpper(t)
	if strings.HasPrefix(up, "E") || strings.HasPrefix(up, "-E") {
		up = strings.Replace(up, "E", "1E", 1)
	}
	d, _, err := apd.NewFromString(up)
	if err != nil {
		return 0, fmt.Errorf("scalar: cannot parse %q: %w", s, err)
	}
	f, err := d.Float64()
	if err != nil {
		return 0, fmt.Errorf("scalar: %q out of range: %w", s, err)
	}
	return Scalar(f), nil
}

// Format renders x with Digits significant digits, dropping trailing
// zeros. Saturated and non-finite values are rendered the way the
// display shows them.
func Format(x Scalar) string {
	switch IsInf(x) {
	case 1:
		return "<Infinity>"
	case -1:
		return "-<Infinity>"
	}
	if IsNaN(x) {
		return "<Not a Number>"
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(float64(x)); err != nil {
		return fmt.Sprintf("%g", float64(x))
	}
	if _, err := displayCtx.Round(&d, &d); err != nil {
		return fmt.Sprintf("%g", float64(x))
	}
	d.Reduce(&d)
	if d.Exponent > 0 && int(d.NumDigits())+int(d.Exponent) <= Digits {
		if _, err := displayCtx.Quantize(&d, &d, 0); err != nil {
			return fmt.Sprintf("%g", float64(x))
		}
	}
	return d.Text('G')
}

// FormatComplex renders re + i·im in rectangular form.
func FormatComplex(re, im Scalar) string {
	if im < 0 || isNegZero(im) {
		return Format(re) + " -i" + Format(-im)
	}
	return Format(re) + " i" + Format(im)
}

func isNegZero(x Scalar) bool {
	return x == 0 && 1/x < 0
}

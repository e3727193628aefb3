package scalar

// ---------------------------------------------------------------------------
// Complex helpers on (re, im) pairs
// ---------------------------------------------------------------------------

// CMul returns (ar + i·ai)(br + i·bi).
func CMul(ar, ai, br, bi Scalar) (Scalar, Scalar) {
	return ar*br - ai*bi, ai*br + ar*bi
}

// CDiv returns (ar + i·ai)/(br + i·bi) using Smith's scaling. Division by
// complex zero yields infinities, as real division does.
func CDiv(ar, ai, br, bi Scalar) (Scalar, Scalar) {
	if br == 0 && bi == 0 {
		return ar / 0, ai / 0
	}
	if Abs(br) >= Abs(bi) {
		r := bi / br
		d := br + bi*r
		return (ar + ai*r) / d, (ai - ar*r) / d
	}
	r := br / bi
	d := br*r + bi
	return (ar*r + ai) / d, (ai*r - ar) / d
}

// CInv returns the reciprocal of br + i·bi.
func CInv(br, bi Scalar) (Scalar, Scalar) {
	return CDiv(1, 0, br, bi)
}

// CAbs returns the modulus of re + i·im.
func CAbs(re, im Scalar) Scalar { return Hypot(re, im) }

// CSqrt returns the principal square root of re + i·im.
func CSqrt(re, im Scalar) (Scalar, Scalar) {
	if re == 0 && im == 0 {
		return 0, 0
	}
	m := CAbs(re, im)
	if re >= 0 {
		t := Sqrt((m + re) / 2)
		return t, im / (2 * t)
	}
	t := Sqrt((m - re) / 2)
	if im < 0 {
		t = -t
	}
	return im / (2 * t), t
}

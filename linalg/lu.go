package linalg

import (
	"github.com/chazu/calc42/vm"
)

// ---------------------------------------------------------------------------
// LU decomposition with partial pivoting
// ---------------------------------------------------------------------------

type decompPhase int

const (
	pivoting decompPhase = iota
	eliminating
	decomposed
)

// decomp factors the n×n matrix in a in place into a unit lower and an
// upper triangle. perm[k] records the row swapped with row k at step k.
type decomp[T elem] struct {
	a    buffer[T]
	n    int
	perm []int
	sign int
	pol  vm.Policy
	tol  []float64 // per column, below which a pivot counts as zero

	phase   decompPhase
	k, i, j int
	factor  T
	inRow   bool
}

// pivotEpsilon is the unit roundoff of the element type.
const pivotEpsilon = 0x1p-52

// newDecomp expects a to hold the matrix already; the zero-pivot
// tolerance is taken from its column magnitudes.
func newDecomp[T elem](a buffer[T], n int, pol vm.Policy) decomp[T] {
	tol := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tol[j] = max(tol[j], magnitude(a.get(i*n+j)))
		}
	}
	for j := range tol {
		tol[j] *= float64(n) * pivotEpsilon
	}
	return decomp[T]{a: a, n: n, perm: make([]int, n), sign: 1, pol: pol, tol: tol}
}

// run advances the decomposition by at most budget steps. It returns the
// steps used and whether the decomposition is complete. A pivot within
// rounding of zero fails with ErrSingularMatrix when the policy reports
// singular matrices. Otherwise an exact zero is replaced by the smallest
// normal value and a near-zero pivot is kept.
func (d *decomp[T]) run(budget int) (int, bool, vm.ErrorKind) {
	n := d.n
	used := 0
	for used < budget {
		switch d.phase {
		case pivoting:
			if d.k == n {
				d.phase = decomposed
				return used, true, vm.ErrNone
			}
			k := d.k
			p := k
			best := magnitude(d.a.get(k*n + k))
			for i := k + 1; i < n; i++ {
				if m := magnitude(d.a.get(i*n + k)); m > best {
					p, best = i, m
				}
			}
			used += n - k
			d.perm[k] = p
			if p != k {
				for j := 0; j < n; j++ {
					x := d.a.get(k*n + j)
					d.a.set(k*n+j, d.a.get(p*n+j))
					d.a.set(p*n+j, x)
				}
				d.sign = -d.sign
			}
			if best <= d.tol[k] {
				if d.pol.ReportSingular {
					return used, true, vm.ErrSingularMatrix
				}
				if best == 0 {
					var tiny T = tinyPivot
					d.a.set(k*n+k, tiny)
				}
			}
			d.i = k + 1
			d.inRow = false
			d.phase = eliminating

		case eliminating:
			k := d.k
			if d.i == n {
				d.k++
				d.phase = pivoting
				continue
			}
			if !d.inRow {
				f, err := settle(d.a.get(d.i*n+k)/d.a.get(k*n+k), d.pol.Accumulate)
				if err != vm.ErrNone {
					return used, true, err
				}
				d.a.set(d.i*n+k, f)
				d.factor = f
				d.j = k + 1
				d.inRow = true
				used++
			}
			for d.j < n && used < budget {
				v, err := settle(d.a.get(d.i*n+d.j)-d.factor*d.a.get(k*n+d.j), d.pol.Accumulate)
				if err != vm.ErrNone {
					return used, true, err
				}
				d.a.set(d.i*n+d.j, v)
				d.j++
				used++
			}
			if d.j == n {
				d.i++
				d.inRow = false
			}

		case decomposed:
			return used, true, vm.ErrNone
		}
	}
	return used, false, vm.ErrNone
}

// determinant returns the signed product of the pivots.
func (d *decomp[T]) determinant() T {
	var det T = 1
	for k := 0; k < d.n; k++ {
		det *= d.a.get(k*d.n + k)
	}
	if d.sign < 0 {
		det = -det
	}
	return det
}

// ---------------------------------------------------------------------------
// Back-substitution
// ---------------------------------------------------------------------------

type substPhase int

const (
	permuting substPhase = iota
	forward
	backward
	substituted
)

// backsub solves LU·X = B for the n×m right-hand side held in b, leaving
// X in b.
type backsub[T elem] struct {
	lu   reader[T]
	b    buffer[T]
	n, m int
	perm []int
	pol  vm.Policy
	tol  []float64 // per column, below which a pivot counts as zero

	phase   substPhase
	c, i, j int
	sum     T
	inCell  bool
}

func newBacksub[T elem](lu reader[T], b buffer[T], n, m int, perm []int, pol vm.Policy) backsub[T] {
	return backsub[T]{lu: lu, b: b, n: n, m: m, perm: perm, pol: pol}
}

func (s *backsub[T]) run(budget int) (int, bool, vm.ErrorKind) {
	n, m := s.n, s.m
	used := 0
	for used < budget {
		switch s.phase {
		case permuting:
			for k := 0; k < n; k++ {
				p := s.perm[k]
				if p == k {
					continue
				}
				for c := 0; c < m; c++ {
					x := s.b.get(k*m + c)
					s.b.set(k*m+c, s.b.get(p*m+c))
					s.b.set(p*m+c, x)
				}
			}
			used += n
			s.phase = forward

		case forward:
			if !s.inCell {
				s.sum = s.b.get(s.i*m + s.c)
				s.j = 0
				s.inCell = true
			}
			for s.j < s.i && used < budget {
				if err := s.accumulate(s.lu.get(s.i*n+s.j) * s.b.get(s.j*m+s.c)); err != vm.ErrNone {
					return used, true, err
				}
				s.j++
				used++
			}
			if s.j < s.i {
				return used, false, vm.ErrNone
			}
			s.b.set(s.i*m+s.c, s.sum)
			s.inCell = false
			used++
			s.i++
			if s.i == n {
				s.i = 0
				s.c++
				if s.c == m {
					s.c = 0
					s.i = n - 1
					s.phase = backward
				}
			}

		case backward:
			if !s.inCell {
				s.sum = s.b.get(s.i*m + s.c)
				s.j = s.i + 1
				s.inCell = true
			}
			for s.j < n && used < budget {
				if err := s.accumulate(s.lu.get(s.i*n+s.j) * s.b.get(s.j*m+s.c)); err != vm.ErrNone {
					return used, true, err
				}
				s.j++
				used++
			}
			if s.j < n {
				return used, false, vm.ErrNone
			}
			v, err := settle(s.sum/s.lu.get(s.i*n+s.i), s.pol.Accumulate)
			if err != vm.ErrNone {
				return used, true, err
			}
			s.b.set(s.i*m+s.c, v)
			s.inCell = false
			used++
			if s.i > 0 {
				s.i--
				continue
			}
			s.i = n - 1
			s.c++
			if s.c == m {
				s.phase = substituted
				return used, true, vm.ErrNone
			}

		case substituted:
			return used, true, vm.ErrNone
		}
	}
	return used, false, vm.ErrNone
}

// accumulate subtracts p from the running sum and applies the overflow
// rule to the partial result.
func (s *backsub[T]) accumulate(p T) vm.ErrorKind {
	v, err := settle(s.sum-p, s.pol.Accumulate)
	if err != vm.ErrNone {
		return err
	}
	s.sum = v
	return vm.ErrNone
}

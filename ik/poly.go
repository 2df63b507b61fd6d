/*
 * poly.go, part of slikmc.
 *
 * Copyright 2026 The slikmc authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package ik

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

//cpoly is a polynomial with complex coefficients, lowest degree first.
type cpoly []complex128

func (p cpoly) mul(q cpoly) cpoly {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	ret := make(cpoly, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			ret[i+j] += a * b
		}
	}
	return ret
}

func (p cpoly) sub(q cpoly) cpoly {
	n := max(len(p), len(q))
	ret := make(cpoly, n)
	copy(ret, p)
	for i, b := range q {
		ret[i] -= b
	}
	return ret
}

//scaled returns the real polynomial q multiplied by the complex scalar a.
func scaled(a complex128, q [3]float64) cpoly {
	return cpoly{a * complex(q[0], 0), a * complex(q[1], 0), a * complex(q[2], 0)}
}

//at returns the coefficient of degree i, which is zero beyond the length of p.
func (p cpoly) at(i int) complex128 {
	if i < len(p) {
		return p[i]
	}
	return 0
}

//quad evaluates the real quadratic with coefficients c (lowest degree first) at x.
func quad(c [3]float64, x complex128) complex128 {
	return (complex(c[2], 0)*x+complex(c[1], 0))*x + complex(c[0], 0)
}

//cdet returns the determinant of the n x n complex matrix A, which is destroyed.
//Gaussian elimination with partial pivoting.
func cdet(A [][]complex128) complex128 {
	n := len(A)
	d := complex(1, 0)
	for i := 0; i < n; i++ {
		p := i
		for r := i + 1; r < n; r++ {
			if cmplx.Abs(A[r][i]) > cmplx.Abs(A[p][i]) {
				p = r
			}
		}
		if A[p][i] == 0 {
			return 0
		}
		if p != i {
			A[i], A[p] = A[p], A[i]
			d = -d
		}
		d *= A[i][i]
		for r := i + 1; r < n; r++ {
			f := A[r][i] / A[i][i]
			for c := i; c < n; c++ {
				A[r][c] -= f * A[i][c]
			}
		}
	}
	return d
}

//interpolate recovers the coefficients of a polynomial of degree lower than n (a power of 2)
//from its values on the n complex roots of unity. Only the real parts are returned, as the
//polynomials interpolated here have real coefficients.
func interpolate(f func(z complex128) complex128, n, degree int) []float64 {
	vals := make([]complex128, n)
	for k := range vals {
		vals[k] = f(cmplx.Rect(1, 2*math.Pi*float64(k)/float64(n)))
	}
	fft := fourier.NewCmplxFFT(n)
	coefs := fft.Coefficients(nil, vals)
	ret := make([]float64, degree+1)
	for i := range ret {
		ret[i] = real(coefs[i]) / float64(n)
	}
	return ret
}

//trim removes the leading coefficients of c that are negligible compared with the
//largest one.
func trim(c []float64, rel float64) []float64 {
	big := 0.0
	for _, v := range c {
		big = math.Max(big, math.Abs(v))
	}
	if big == 0 {
		return nil
	}
	for len(c) > 0 && math.Abs(c[len(c)-1]) <= rel*big {
		c = c[:len(c)-1]
	}
	return c
}

//realRoots returns the real roots of the polynomial with coefficients c, lowest
//degree first, from the eigenvalues of its companion matrix. Roots are polished with
//a few Newton steps.
func realRoots(c []float64) []float64 {
	c = trim(c, 1e-11)
	n := len(c) - 1
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{-c[0] / c[1]}
	}
	comp := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		comp.Set(i, n-1, -c[i]/c[n])
	}
	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil
	}
	vals := eig.Values(nil)
	ret := make([]float64, 0, n)
	for _, v := range vals {
		if math.Abs(imag(v)) > 1e-5*(1+cmplx.Abs(v)) {
			continue
		}
		ret = append(ret, newtonPoly(c, real(v)))
	}
	return ret
}

func newtonPoly(c []float64, x float64) float64 {
	for it := 0; it < 8; it++ {
		p, dp := 0.0, 0.0
		for i := len(c) - 1; i >= 0; i-- {
			dp = dp*x + p
			p = p*x + c[i]
		}
		if dp == 0 {
			break
		}
		step := p / dp
		if math.IsNaN(step) || math.IsInf(step, 0) {
			break
		}
		x -= step
		if math.Abs(step) < 1e-15*(1+math.Abs(x)) {
			break
		}
	}
	return x
}

//quadRoots returns the real roots of c[2]x^2+c[1]x+c[0]. Slightly negative discriminants
//are taken as zero, so tangent solutions are not lost.
func quadRoots(c [3]float64) []float64 {
	a, b, k := c[2], c[1], c[0]
	scale := math.Max(math.Abs(a), math.Max(math.Abs(b), math.Abs(k)))
	if scale == 0 {
		return nil
	}
	if math.Abs(a) < 1e-12*scale {
		if math.Abs(b) < 1e-12*scale {
			return nil
		}
		return []float64{-k / b}
	}
	d := b*b - 4*a*k
	if d < 0 {
		if d < -1e-8*scale*scale {
			return nil
		}
		d = 0
	}
	d = math.Sqrt(d)
	//the numerically stable form
	q := -0.5 * (b + math.Copysign(d, b))
	if q == 0 {
		return []float64{0}
	}
	return []float64{q / a, k / q}
}

/*
 * timecorr.go, part of slikmc.
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

//Package chemstat estimates how correlated the successive conformations of a sampling run are.
package chemstat

import (
	"errors"
	"math"
	"math/cmplx"

	chem "github.com/loopkin/slikmc"
	v3 "github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

//CrossCorr returns the normalized cross-correlation of c1 and c2, which must have the same length,
//for lags 0 to len(c1)-1, obtained by FFT. The element k is the correlation between c1[i+k] and c2[i].
//It returns nil if either series is constant or has less than 2 elements.
func CrossCorr(c1, c2 []float64) []float64 {
	n := len(c1)
	if n < 2 || len(c2) != n {
		return nil
	}
	m1, v1 := stat.MeanVariance(c1, nil)
	m2, v2 := stat.MeanVariance(c2, nil)
	//population variances, so the autocorrelation at lag 0 is 1.
	norm := math.Sqrt(v1*v2) * float64(n-1)
	if norm == 0 || math.IsNaN(norm) {
		return nil
	}
	//zero padding avoids the circular wrap-around.
	c1pad := make([]complex128, 2*n)
	c2pad := make([]complex128, 2*n)
	for i := range c1 {
		c1pad[i] = complex(c1[i]-m1, 0)
		c2pad[i] = complex(c2[i]-m2, 0)
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxMulConj(c1pad, c2pad)
	f.Sequence(c1pad, c1pad)
	ret := make([]float64, n)
	for k := range ret {
		ret[k] = real(c1pad[k]) / float64(len(c1pad)) / norm
	}
	return ret
}

//AutoCorr returns the normalized autocorrelation function of c.
func AutoCorr(c []float64) []float64 {
	return CrossCorr(c, c)
}

//IntegratedTime returns the integrated autocorrelation time of the series c, in steps, with
//Sokal's automatic window: the sum of the autocorrelation function is truncated at the first lag M
//with M >= window*tau(M). A window of 5 is customary. An uncorrelated series gives a time near 1.
//It returns NaN for constant or too short series.
func IntegratedTime(c []float64, window float64) float64 {
	ac := AutoCorr(c)
	if ac == nil {
		return math.NaN()
	}
	tau := 1.0
	for m := 1; m < len(ac); m++ {
		tau += 2 * ac[m]
		if float64(m) >= window*tau {
			break
		}
	}
	return math.Max(tau, 1)
}

//CircularTime returns the integrated autocorrelation time of a series of angles, in degrees,
//as the largest of the times of their cosines and sines. Constant components are ignored.
func CircularTime(angles []float64, window float64) float64 {
	cos := make([]float64, len(angles))
	sin := make([]float64, len(angles))
	for i, a := range angles {
		sin[i], cos[i] = math.Sincos(a * chem.Deg2Rad)
	}
	tc := IntegratedTime(cos, window)
	ts := IntegratedTime(sin, window)
	switch {
	case math.IsNaN(tc):
		return ts
	case math.IsNaN(ts):
		return tc
	}
	return math.Max(tc, ts)
}

//EffectiveSize returns the number of effectively independent samples in a series of n elements
//with integrated autocorrelation time tau.
func EffectiveSize(n int, tau float64) float64 {
	if math.IsNaN(tau) || tau <= 0 {
		return math.NaN()
	}
	return float64(n) / tau
}

//TrajSeries reads the trajectory t to its end, and returns the value of f for each frame.
func TrajSeries(t chem.Traj, f func(c *v3.Matrix) float64) ([]float64, error) {
	coord := v3.Zeros(t.Len())
	var ret []float64
	for {
		err := t.Next(coord)
		if err != nil {
			var l chem.LastFrameError
			if errors.As(err, &l) {
				return ret, nil
			}
			return ret, chem.ErrDecorate(err, "TrajSeries")
		}
		ret = append(ret, f(coord))
	}
}

//DihedralFunc returns a function that measures, in degrees, the dihedral defined by the atoms
//a, b, c and d in a set of coordinates.
func DihedralFunc(a, b, c, d int) func(coords *v3.Matrix) float64 {
	return func(coords *v3.Matrix) float64 {
		return chem.Dihedral(coords.Vec(a), coords.Vec(b), coords.Vec(c), coords.Vec(d)) * chem.Rad2Deg
	}
}

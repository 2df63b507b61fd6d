/*
 * bfactor.go, part of slikmc.
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

package prior

import (
	"math"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

//BFactor is a Gaussian restraint of each atom to a reference position, with the
//mean square displacement given by the atom's B-factor, <u^2> = 3B/(8 pi^2).
//Atoms with non-positive B-factors are not restrained.
type BFactor struct {
	ref    *v3.Matrix
	sigma2 []float64 //per-axis variance, 0 for unrestrained atoms
}

//NewBFactor returns a B-factor prior that takes the current positions and B-factors
//of C as reference.
func NewBFactor(C *chem.Chain) *BFactor {
	B := &BFactor{ref: v3.Zeros(C.NAtoms()), sigma2: make([]float64, C.NAtoms())}
	B.ref.Copy(C.Coords())
	for i, b := range C.Bfactors() {
		if b > 0 {
			B.sigma2[i] = b / (8 * math.Pi * math.Pi)
		}
	}
	return B
}

//LogDensity returns the log density of the atoms of the residues first to last.
func (B *BFactor) LogDensity(C *chem.Chain, first, last int) (float64, error) {
	if err := checkRange(C, first, last, "BFactor.LogDensity"); err != nil {
		return math.NaN(), err
	}
	if C.NAtoms() != len(B.sigma2) {
		return math.NaN(), chem.NewError(chem.ErrStateMismatch, true, "BFactor.LogDensity")
	}
	var ret float64
	for i := C.Residue(first).First(); i <= C.Residue(last).Last(); i++ {
		s2 := B.sigma2[i]
		if s2 <= 0 {
			continue
		}
		d := r3.Sub(C.Position(i), B.ref.Vec(i))
		n := distuv.Normal{Mu: 0, Sigma: math.Sqrt(s2)}
		ret += n.LogProb(d.X) + n.LogProb(d.Y) + n.LogProb(d.Z)
	}
	return ret, nil
}

/*
 * restraint.go, part of slikmc.
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
	"fmt"
	"math"

	chem "github.com/loopkin/slikmc"
	"gonum.org/v1/gonum/spatial/r3"
)

//DistanceRestraint is a flat-bottomed harmonic restraint on the distance between two atoms.
//The log density is -K/2 (|d-Target|-Tolerance)^2 when |d-Target| > Tolerance, and 0 otherwise.
type DistanceRestraint struct {
	Res1, Res2   int //whole-chain residue indexes
	Name1, Name2 string
	Target       float64 //A
	Tolerance    float64 //A
	K            float64 //1/A^2
}

//Evaluate returns the log density of the restraint in the current conformation of C.
func (D *DistanceRestraint) Evaluate(C *chem.Chain) (float64, error) {
	p1, err := C.AtomPosition(D.Res1, D.Name1)
	if err != nil {
		return math.NaN(), chem.ErrDecorate(err, "DistanceRestraint.Evaluate")
	}
	p2, err := C.AtomPosition(D.Res2, D.Name2)
	if err != nil {
		return math.NaN(), chem.ErrDecorate(err, "DistanceRestraint.Evaluate")
	}
	dev := math.Abs(r3.Norm(r3.Sub(p1, p2))-D.Target) - D.Tolerance
	if dev <= 0 {
		return 0, nil
	}
	return -0.5 * D.K * dev * dev, nil
}

func (D *DistanceRestraint) String() string {
	return fmt.Sprintf("%d%s-%d%s %.2f+/-%.2f A, K=%.2f", D.Res1, D.Name1, D.Res2, D.Name2, D.Target, D.Tolerance, D.K)
}

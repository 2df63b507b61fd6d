/*
 * metric.go, part of slikmc.
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

//Package metric computes the volume correction needed when two dihedrals of a block are
//sampled freely and the other six are then fixed by closing the block exactly. The
//correction enters the log proposal density of the Metropolis-Hastings test.
package metric

import (
	"fmt"
	"math"

	chem "github.com/loopkin/slikmc"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

//Free and determined DOFs of a block.
const (
	NFree       = 2
	NDetermined = 6
	NDOF        = NFree + NDetermined
)

//MaxCond is the largest condition number of the determined part of the Jacobian
//that is not considered singular.
const MaxCond = 1e12

//Tensor is the result of the metric tensor calculation for a block.
type Tensor struct {
	Det      float64 //det(I + S^T S), where S = Jd^-1 Jf
	LogDet   float64
	Cond     float64 //condition number of Jd
	Singular bool
}

//axes returns the origin and unit direction of the eight backbone DOFs of the block that starts at
//residue first: phi and psi of the four residues.
func axes(C *chem.Chain, first int) ([NDOF]r3.Vec, [NDOF]r3.Vec, error) {
	var org, dir [NDOF]r3.Vec
	if first < 0 || first+3 >= C.Len() {
		return org, dir, chem.NewError(fmt.Sprintf("%s: block starting at %d in a %d residue chain", chem.ErrOutOfRange, first, C.Len()), false, "axes")
	}
	for k := 0; k < 4; k++ {
		n, err := C.AtomPosition(first+k, chem.BbN)
		if err != nil {
			return org, dir, chem.ErrDecorate(err, "axes")
		}
		ca, _ := C.AtomPosition(first+k, chem.BbCA)
		c, _ := C.AtomPosition(first+k, chem.BbC)
		org[2*k] = n
		dir[2*k] = r3.Unit(r3.Sub(ca, n))
		org[2*k+1] = ca
		dir[2*k+1] = r3.Unit(r3.Sub(c, ca))
	}
	return org, dir, nil
}

//Jacobian returns the 6x8 Jacobian of the rigid-body motion of the last residue of the block that
//starts at residue first, measured at the point anchor, with respect to the eight backbone DOFs
//of the block (radians). Rows 0-2 are the linear velocity of the anchor, rows 3-5 the angular velocity.
//Columns 0 and 1 are the free DOFs (phi and psi of the first residue).
func Jacobian(C *chem.Chain, first int, anchor r3.Vec) (*mat.Dense, error) {
	org, dir, err := axes(C, first)
	if err != nil {
		return nil, chem.ErrDecorate(err, "Jacobian")
	}
	J := mat.NewDense(6, NDOF, nil)
	for j := 0; j < NDOF; j++ {
		lin := r3.Cross(dir[j], r3.Sub(anchor, org[j]))
		J.Set(0, j, lin.X)
		J.Set(1, j, lin.Y)
		J.Set(2, j, lin.Z)
		J.Set(3, j, dir[j].X)
		J.Set(4, j, dir[j].Y)
		J.Set(5, j, dir[j].Z)
	}
	return J, nil
}

//FromJacobian obtains the metric tensor from a 6x8 Jacobian.
func FromJacobian(J *mat.Dense) Tensor {
	var t Tensor
	Jd := J.Slice(0, 6, NFree, NDOF)
	Jf := J.Slice(0, 6, 0, NFree)
	t.Cond = mat.Cond(Jd, 2)
	if math.IsNaN(t.Cond) || math.IsInf(t.Cond, 0) || t.Cond > MaxCond {
		t.Singular = true
		t.LogDet = math.NaN()
		t.Det = math.NaN()
		return t
	}
	var inv mat.Dense
	if err := inv.Inverse(Jd); err != nil {
		t.Singular = true
		t.LogDet = math.NaN()
		t.Det = math.NaN()
		return t
	}
	var S, G mat.Dense
	S.Mul(&inv, Jf)
	G.Mul(S.T(), &S)
	for i := 0; i < NFree; i++ {
		G.Set(i, i, G.At(i, i)+1)
	}
	t.Det = mat.Det(&G)
	t.LogDet = math.Log(t.Det)
	return t
}

//Compute returns the metric tensor of the block that starts at residue first, in the current
//geometry of the chain. The Jacobian is computed both at the CA and at the C atom of the
//last residue, and the better conditioned one is used. Both give the same tensor in exact
//arithmetic.
func Compute(C *chem.Chain, first int) (Tensor, error) {
	if first < 0 || first+3 >= C.Len() {
		return Tensor{Singular: true}, chem.NewError(fmt.Sprintf("%s: block starting at %d in a %d residue chain", chem.ErrOutOfRange, first, C.Len()), false, "metric.Compute")
	}
	var best Tensor
	for i, name := range []string{chem.BbCA, chem.BbC} {
		anchor, err := C.AtomPosition(first+3, name)
		if err != nil {
			return Tensor{Singular: true}, chem.ErrDecorate(err, "metric.Compute")
		}
		J, err := Jacobian(C, first, anchor)
		if err != nil {
			return Tensor{Singular: true}, chem.ErrDecorate(err, "metric.Compute")
		}
		t := FromJacobian(J)
		if i == 0 || (!t.Singular && (best.Singular || t.Cond < best.Cond)) {
			best = t
		}
	}
	return best, nil
}

//LogQ assembles the log proposal density of a closed block from the log prior density
//used to propose the free dihedrals (0 if they were not drawn from a prior), the number of
//exact closures found, and the metric tensor. It returns NaN if the tensor is singular or there
//are no closures.
func LogQ(logPrior float64, nSolutions int, t Tensor) float64 {
	if t.Singular || nSolutions <= 0 {
		return math.NaN()
	}
	return logPrior - math.Log(float64(nSolutions)) - 0.5*t.LogDet
}

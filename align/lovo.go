/*
 * lovo.go, part of slikmc.
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

//Package align superimposes conformations and finds, with the LOVO procedure, which residues
//stay rigid along a trajectory, for instance, the snapshots of a sampling run.
package align

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/traj/stf"
	v3 "github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func allIndexes(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

func centroid(M *v3.Matrix, indexes []int) r3.Vec {
	var c r3.Vec
	for _, i := range indexes {
		c = r3.Add(c, M.Vec(i))
	}
	return r3.Scale(1/float64(len(indexes)), c)
}

//Super returns a copy of test superimposed on templa, so the atoms in indexes (all atoms, if nil)
//have the smallest possible RMSD. Reflections are never used.
func Super(test, templa *v3.Matrix, indexes []int) (*v3.Matrix, error) {
	if test.NVecs() != templa.NVecs() {
		return nil, chem.NewError(fmt.Sprintf("Can't superimpose %d atoms on %d", test.NVecs(), templa.NVecs()), false, "align.Super")
	}
	if indexes == nil {
		indexes = allIndexes(test.NVecs())
	}
	if len(indexes) < 3 {
		return nil, chem.NewError("At least 3 atoms are needed for a superposition", false, "align.Super")
	}
	ct := centroid(test, indexes)
	cm := centroid(templa, indexes)
	H := mat.NewDense(3, 3, nil)
	for _, i := range indexes {
		a := r3.Sub(test.Vec(i), ct)
		b := r3.Sub(templa.Vec(i), cm)
		av := [3]float64{a.X, a.Y, a.Z}
		bv := [3]float64{b.X, b.Y, b.Z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				H.Set(r, c, H.At(r, c)+av[r]*bv[c])
			}
		}
	}
	var svd mat.SVD
	if !svd.Factorize(H, mat.SVDFull) {
		return nil, chem.NewError("SVD failed", false, "align.Super")
	}
	var U, V, R mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	R.Mul(&V, U.T())
	if mat.Det(&R) < 0 {
		//the smallest singular value is the last one.
		for r := 0; r < 3; r++ {
			V.Set(r, 2, -V.At(r, 2))
		}
		R.Mul(&V, U.T())
	}
	ret := v3.Zeros(test.NVecs())
	for i := 0; i < test.NVecs(); i++ {
		a := r3.Sub(test.Vec(i), ct)
		b := r3.Vec{
			X: R.At(0, 0)*a.X + R.At(0, 1)*a.Y + R.At(0, 2)*a.Z,
			Y: R.At(1, 0)*a.X + R.At(1, 1)*a.Y + R.At(1, 2)*a.Z,
			Z: R.At(2, 0)*a.X + R.At(2, 1)*a.Y + R.At(2, 2)*a.Z,
		}
		ret.SetVec(i, r3.Add(b, cm))
	}
	return ret, nil
}

//RMSD returns the root of the mean square deviation between the atoms in indexes (all
//atoms, if nil) of test and template, without superimposing them.
func RMSD(test, template *v3.Matrix, indexes []int) (float64, error) {
	if test.NVecs() != template.NVecs() {
		return math.NaN(), chem.NewError("Ill formed matrices for RMSD calculation", false, "align.RMSD")
	}
	if indexes == nil {
		indexes = allIndexes(test.NVecs())
	}
	var sum float64
	for _, i := range indexes {
		d := r3.Sub(test.Vec(i), template.Vec(i))
		sum += r3.Dot(d, d)
	}
	return math.Sqrt(sum / float64(len(indexes))), nil
}

func isLastFrame(err error) bool {
	var l chem.LastFrameError
	return errors.As(err, &l)
}

//MSDTraj superimposes each frame of traj on ref, using the atoms in super, and returns the mean square
//deviation from ref of each atom in indexes, over the frames, and the number of frames used.
func MSDTraj(ref *v3.Matrix, traj chem.Traj, super, indexes []int, o *Options) ([]float64, int, error) {
	if o == nil {
		o = DefaultOptions()
	}
	if traj.Len() != ref.NVecs() {
		return nil, 0, chem.NewError(fmt.Sprintf("Trajectory with %d atoms, reference with %d", traj.Len(), ref.NVecs()), false, "MSDTraj")
	}
	msd := make([]float64, len(indexes))
	frame := v3.Zeros(traj.Len())
	frames := 0
	for read := 0; ; read++ {
		var target *v3.Matrix
		if read >= o.begin && (read-o.begin)%(o.skip+1) == 0 {
			target = frame
		}
		err := traj.Next(target)
		if isLastFrame(err) {
			break
		}
		if err != nil {
			return nil, frames, chem.ErrDecorate(err, "MSDTraj")
		}
		if target == nil {
			continue
		}
		s, err := Super(frame, ref, super)
		if err != nil {
			return nil, frames, chem.ErrDecorate(err, "MSDTraj")
		}
		for k, i := range indexes {
			d := r3.Sub(s.Vec(i), ref.Vec(i))
			msd[k] += r3.Dot(d, d)
		}
		frames++
	}
	if frames == 0 {
		return nil, 0, chem.NewError("No frames read", false, "MSDTraj")
	}
	for k := range msd {
		msd[k] /= float64(frames)
	}
	return msd, frames, nil
}

//LOVOReturn contains the results of a MostRigid call.
type LOVOReturn struct {
	Residues   []int     //the rigid residues (whole-chain indexes)
	MolIDs     []int     //their residue numbers
	RMSD       []float64 //RMSD of each residue of the chain in the last iteration
	Frames     int
	Iterations int
}

func (L *LOVOReturn) String() string {
	return fmt.Sprintf("N: %d, Frames: %d, Iterations: %d, Rigid residues: %v", len(L.Residues), L.Frames, L.Iterations, L.MolIDs)
}

//PyMOLSel returns a PyMOL command that selects the rigid residues.
func (L *LOVOReturn) PyMOLSel() string {
	ids := make([]string, len(L.MolIDs))
	for i, v := range L.MolIDs {
		ids[i] = fmt.Sprint(v)
	}
	return "select rigid, resi " + strings.Join(ids, "+")
}

//MostRigid finds the residues of C that stay rigid, within o.LessThanRMSD, in the stf trajectory
//trajname, once the frames are superimposed on ref. The superposition starts using all residues
//and is repeated with the rigid ones until they don't change (the LOVO procedure).
func MostRigid(C *chem.Chain, ref *v3.Matrix, trajname string, o *Options) (*LOVOReturn, error) {
	if o == nil {
		o = DefaultOptions()
	}
	resatoms := make([][]int, C.Len())
	var atoms []int
	for i := range resatoms {
		for _, n := range o.atomNames {
			if a := C.Residue(i).Atom(n); a >= 0 {
				resatoms[i] = append(resatoms[i], a)
				atoms = append(atoms, a)
			}
		}
	}
	sel := allIndexes(C.Len())
	ret := new(LOVOReturn)
	rmsd := make([]float64, C.Len())
	for it := 0; it < o.maxIter; it++ {
		var super []int
		for _, r := range sel {
			super = append(super, resatoms[r]...)
		}
		traj, _, err := stf.New(trajname)
		if err != nil {
			return nil, chem.ErrDecorate(err, "MostRigid")
		}
		msd, frames, err := MSDTraj(ref, traj, super, atoms, o)
		traj.Close()
		if err != nil {
			return nil, chem.ErrDecorate(err, "MostRigid")
		}
		k := 0
		for i, ats := range resatoms {
			if len(ats) == 0 {
				rmsd[i] = math.Inf(1)
				continue
			}
			var sum float64
			for range ats {
				sum += msd[k]
				k++
			}
			rmsd[i] = math.Sqrt(sum / float64(len(ats)))
		}
		var newsel []int
		for i, r := range rmsd {
			if r < o.lessThanRMSD {
				newsel = append(newsel, i)
			}
		}
		if len(newsel) < o.minimumN {
			newsel = allIndexes(C.Len())
			sort.SliceStable(newsel, func(i, j int) bool { return rmsd[newsel[i]] < rmsd[newsel[j]] })
			newsel = newsel[:min(o.minimumN, len(newsel))]
			sort.Ints(newsel)
		}
		ret.Frames = frames
		ret.Iterations = it + 1
		same := len(newsel) == len(sel)
		for i := 0; same && i < len(sel); i++ {
			same = sel[i] == newsel[i]
		}
		sel = newsel
		if same {
			break
		}
	}
	ret.Residues = sel
	ret.RMSD = rmsd
	for _, r := range sel {
		ret.MolIDs = append(ret.MolIDs, C.Residue(r).MolID)
	}
	return ret, nil
}

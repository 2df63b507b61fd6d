/*
 * solver.go, part of slikmc.
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
	"fmt"
	"math"

	chem "github.com/loopkin/slikmc"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

//positions of the backbone atoms of a window
const (
	iN1 = iota
	iA1
	iC1
	iN2
	iA2
	iC2
	iN3
	iA3
	iC3
	iO3
	nbb
)

//DefaultTolerance is the largest distance, in A, allowed between a closed atom and its goal.
const DefaultTolerance = 1e-4

type backbone struct {
	res   [3]int
	p     [nbb]r3.Vec
	theta [3]float64 //N-CA-C angles, radians
}

//Goals are the positions the CA, C and O atoms of the last residue of a window
//must take.
type Goals struct {
	CA r3.Vec
	C  r3.Vec
	O  r3.Vec
}

//GoalsOf returns the current positions of the CA, C and O atoms of the residue res.
func GoalsOf(C *chem.Chain, res int) (Goals, error) {
	var g Goals
	var err error
	if g.CA, err = C.AtomPosition(res, chem.BbCA); err != nil {
		return g, chem.ErrDecorate(err, "GoalsOf")
	}
	if g.C, err = C.AtomPosition(res, chem.BbC); err != nil {
		return g, chem.ErrDecorate(err, "GoalsOf")
	}
	if g.O, err = C.AtomPosition(res, chem.BbO); err != nil {
		return g, chem.ErrDecorate(err, "GoalsOf")
	}
	return g, nil
}

//Window returns the closure window that starts at the residue first.
func Window(first int) [3]int {
	return [3]int{first, first + 1, first + 2}
}

func readBackbone(C *chem.Chain, window [3]int) (*backbone, error) {
	if window[1] != window[0]+1 || window[2] != window[0]+2 || window[0] < 0 || window[2] >= C.Len() {
		return nil, chem.NewError(fmt.Sprintf("%s: window %v is not three consecutive residues of a %d residue chain", chem.ErrOutOfRange, window, C.Len()), false, "readBackbone")
	}
	if !C.Connected(window[1]) || !C.Connected(window[2]) {
		return nil, chem.NewError(fmt.Sprintf("Chain break in window %v", window), false, "readBackbone")
	}
	bb := &backbone{res: window}
	names := [3]string{chem.BbN, chem.BbCA, chem.BbC}
	var err error
	for k, res := range window {
		for j, name := range names {
			if bb.p[3*k+j], err = C.AtomPosition(res, name); err != nil {
				return nil, chem.ErrDecorate(err, "readBackbone")
			}
		}
		bb.theta[k] = chem.BondAngle(bb.p[3*k], bb.p[3*k+1], bb.p[3*k+2])
	}
	if bb.p[iO3], err = C.AtomPosition(window[2], chem.BbO); err != nil {
		return nil, chem.ErrDecorate(err, "readBackbone")
	}
	return bb, nil
}

//Solution is one closure of a window, as the six rotations (phi and psi of each residue
//of the window, in that order) that take the chain from its current geometry to the
//closed one. All moves are Forward.
type Solution struct {
	Moves []chem.Move
}

//Degrees returns the six rotations of the solution, in degrees.
func (s Solution) Degrees() []float64 {
	ret := make([]float64, len(s.Moves))
	for i, v := range s.Moves {
		ret[i] = v.Degrees
	}
	return ret
}

//Solver finds the exact closures of tripeptide windows.
type Solver struct {
	tol float64
}

//NewSolver returns a solver with the default tolerance.
func NewSolver() *Solver {
	return &Solver{tol: DefaultTolerance}
}

//Tolerance returns the closure tolerance in A, after setting it to the first
//element of tol, if given.
func (S *Solver) Tolerance(tol ...float64) float64 {
	if len(tol) > 0 && tol[0] > 0 {
		S.tol = tol[0]
	}
	return S.tol
}

//FindClosures returns all the assignments of the phi and psi dihedrals of the three residues
//in window that place the CA, C and O atoms of the last residue on the goals, keeping the
//bond lengths and angles of the current geometry. The chain is not modified. No solutions
//is not an error, it just means the window can't be closed.
func (S *Solver) FindClosures(C *chem.Chain, window [3]int, goals Goals) ([]Solution, error) {
	bb, err := readBackbone(C, window)
	if err != nil {
		return nil, chem.ErrDecorate(err, "FindClosures")
	}
	sys, ok := newSystem(bb, goals)
	if !ok {
		return nil, nil
	}
	var ret []Solution
	for _, s := range sys.solve() {
		moves, ok := bb.moves(sys, s, goals, S.tol)
		if ok {
			ret = append(ret, Solution{Moves: moves})
		}
	}
	return ret, nil
}

//FindSelfClosures returns the closures of the window that keep the last residue where it
//currently is. One of them is always the current geometry.
func (S *Solver) FindSelfClosures(C *chem.Chain, window [3]int) ([]Solution, error) {
	goals, err := GoalsOf(C, window[2])
	if err != nil {
		return nil, chem.ErrDecorate(err, "FindSelfClosures")
	}
	return S.FindClosures(C, window, goals)
}

//Pick returns the number of closures of the window and one of them, chosen uniformly at random.
//If there are no closures, the returned solution is empty.
func (S *Solver) Pick(C *chem.Chain, window [3]int, goals Goals, rnd *rand.Rand) (Solution, int, error) {
	sols, err := S.FindClosures(C, window, goals)
	if err != nil || len(sols) == 0 {
		return Solution{}, 0, chem.ErrDecorate(err, "Pick")
	}
	return sols[rnd.Intn(len(sols))], len(sols), nil
}

//moves turns the solution s into rotations of the window DOFs, by aligning the current backbone
//with the closed positions one DOF at a time.
func (bb *backbone) moves(sys *system, s [3]float64, goals Goals, tol float64) ([]chem.Move, bool) {
	c1, n2, c2, n3 := sys.positions(s)
	p := bb.p
	steps := [6]struct {
		a, b, moving int
		target       r3.Vec
	}{
		{iN1, iA1, iC1, c1},
		{iA1, iC1, iN2, n2},
		{iN2, iA2, iC2, c2},
		{iA2, iC2, iN3, n3},
		{iN3, iA3, iC3, goals.C},
		{iA3, iC3, iO3, goals.O},
	}
	ret := make([]chem.Move, 0, 6)
	for k, st := range steps {
		ang := chem.TorsionAbout(p[st.a], p[st.b], p[st.moving], st.target)
		if math.IsNaN(ang) {
			return nil, false
		}
		rot, ok := chem.NewRotator(p[st.a], p[st.b], ang)
		if !ok {
			return nil, false
		}
		for i := st.b + 1; i < nbb; i++ {
			p[i] = rot.Rotate(p[i])
		}
		dof := chem.PhiDOF(bb.res[k/2])
		if k%2 == 1 {
			dof = chem.PsiDOF(bb.res[k/2])
		}
		ret = append(ret, chem.Move{Kind: chem.Backbone, DOF: dof, Dir: chem.Forward, Degrees: ang * chem.Rad2Deg})
	}
	for i, g := range [3]r3.Vec{goals.CA, goals.C, goals.O} {
		d := r3.Norm(r3.Sub(p[iA3+i], g))
		if math.IsNaN(d) || d > tol {
			return nil, false
		}
	}
	return ret, true
}

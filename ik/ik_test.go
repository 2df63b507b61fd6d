/*
 * ik_test.go, part of slikmc.
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
	"sort"
	"testing"

	chem "github.com/loopkin/slikmc"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

func loop(Te *testing.T) *chem.Chain {
	seq := []string{"ALA", "ALA", "ALA", "ALA", "ALA"}
	phi := []float64{-65, -120, -70, -100, -60}
	psi := []float64{-40, 130, -30, 140, -45}
	C, err := chem.BuildPeptide(seq, phi, psi)
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

func goalDistance(C *chem.Chain, res int, g Goals) float64 {
	cur, _ := GoalsOf(C, res)
	d := r3.Norm(r3.Sub(cur.CA, g.CA))
	d = math.Max(d, r3.Norm(r3.Sub(cur.C, g.C)))
	return math.Max(d, r3.Norm(r3.Sub(cur.O, g.O)))
}

func TestSelfClosure(Te *testing.T) {
	C := loop(Te)
	S := NewSolver()
	sols, err := S.FindSelfClosures(C, Window(1))
	if err != nil {
		Te.Fatal(err)
	}
	if len(sols) == 0 {
		Te.Fatal("No self closure found")
	}
	identity := false
	for _, s := range sols {
		if len(s.Moves) != 6 {
			Te.Fatalf("Solution with %d moves", len(s.Moves))
		}
		small := true
		for _, d := range s.Degrees() {
			if math.Abs(d) > 1e-6 {
				small = false
			}
		}
		if small {
			identity = true
		}
	}
	if !identity {
		Te.Errorf("The current geometry is not among the %d closures", len(sols))
	}
}

func TestClosureAfterProposal(Te *testing.T) {
	C := loop(Te)
	goals, _ := GoalsOf(C, 3)
	block, _ := C.Top().Sub(0, 3)
	if err := block.Attach(); err != nil {
		Te.Fatal(err)
	}
	block.Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PhiDOF(0), Dir: chem.Forward, Degrees: 8})
	block.Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(0), Dir: chem.Forward, Degrees: -6})
	if goalDistance(C, 3, goals) < 0.1 {
		Te.Fatal("The proposal didn't move the end of the block")
	}
	S := NewSolver()
	sols, err := S.FindClosures(C, Window(1), goals)
	if err != nil {
		Te.Fatal(err)
	}
	if len(sols) == 0 {
		Te.Fatal("No closure found for a small proposal")
	}
	state := block.Save()
	before := C.Coords().RawVecs(0, C.NAtoms())
	for i, s := range sols {
		if err := block.MultiRotate(s.Moves); err != nil {
			Te.Fatal(err)
		}
		if d := goalDistance(C, 3, goals); d > 1e-5 {
			Te.Errorf("Solution %d misses the goals by %g A", i, d)
		}
		if err := block.Restore(state); err != nil {
			Te.Fatal(err)
		}
	}
	after := C.Coords().RawVecs(0, C.NAtoms())
	for i := range before {
		if before[i] != after[i] {
			Te.Fatal("FindClosures or Restore changed the chain")
		}
	}
	n := len(sols)
	_, count, err := S.Pick(C, Window(1), goals, rand.New(rand.NewSource(1)))
	if err != nil || count != n {
		Te.Errorf("Pick counted %d closures, FindClosures %d (%v)", count, n, err)
	}
}

func TestNoClosure(Te *testing.T) {
	C := loop(Te)
	goals, _ := GoalsOf(C, 3)
	shift := r3.Vec{X: 25}
	goals.CA = r3.Add(goals.CA, shift)
	goals.C = r3.Add(goals.C, shift)
	goals.O = r3.Add(goals.O, shift)
	sols, err := NewSolver().FindClosures(C, Window(1), goals)
	if err != nil {
		Te.Fatal(err)
	}
	if len(sols) != 0 {
		Te.Errorf("Found %d closures to an unreachable goal", len(sols))
	}
}

func TestBadWindow(Te *testing.T) {
	C := loop(Te)
	_, err := NewSolver().FindClosures(C, [3]int{0, 2, 3}, Goals{})
	if err == nil {
		Te.Fatal("A non-consecutive window was accepted")
	}
	if chem.IsCritical(err) {
		Te.Error("A bad window is a input error, not a critical one")
	}
	if _, err := NewSolver().FindSelfClosures(C, Window(3)); err == nil {
		Te.Error("A window past the end of the chain was accepted")
	}
}

func TestCCD(Te *testing.T) {
	C := loop(Te)
	goals, _ := GoalsOf(C, 3)
	block, _ := C.Top().Sub(0, 3)
	block.Attach()
	block.Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(0), Dir: chem.Forward, Degrees: 10})
	start := goalDistance(C, 3, goals)
	moves, rmsd, err := CCD(C, Window(1), goals, 200, 1e-3)
	if err != nil {
		Te.Fatal(err)
	}
	if rmsd > start {
		Te.Errorf("CCD made things worse: %f > %f", rmsd, start)
	}
	if err := block.MultiRotate(moves); err != nil {
		Te.Fatal(err)
	}
	cur, _ := GoalsOf(C, 3)
	var sum float64
	for i, p := range [3]r3.Vec{cur.CA, cur.C, cur.O} {
		g := [3]r3.Vec{goals.CA, goals.C, goals.O}[i]
		d := r3.Sub(p, g)
		sum += r3.Dot(d, d)
	}
	if got := math.Sqrt(sum / 3); math.Abs(got-rmsd) > 1e-6 {
		Te.Errorf("Applying the CCD moves gives an RMSD of %f, CCD reported %f", got, rmsd)
	}
}

func TestRealRoots(Te *testing.T) {
	//(x-1)(x+2)(x-3)(x^2+1)
	c := []float64{6, -5, 4, -4, -2, 1}
	roots := realRoots(c)
	sort.Float64s(roots)
	expected := []float64{-2, 1, 3}
	if len(roots) != len(expected) {
		Te.Fatalf("Expected roots %v, got %v", expected, roots)
	}
	for i, r := range roots {
		if math.Abs(r-expected[i]) > 1e-10 {
			Te.Errorf("Root %d: expected %f got %f", i, expected[i], r)
		}
	}
	q := quadRoots([3]float64{2, -3, 1})
	sort.Float64s(q)
	if len(q) != 2 || math.Abs(q[0]-1) > 1e-14 || math.Abs(q[1]-2) > 1e-14 {
		Te.Errorf("Wrong quadratic roots %v", q)
	}
	if q := quadRoots([3]float64{1, 0, 1}); len(q) != 0 {
		Te.Errorf("x^2+1 has no real roots, got %v", q)
	}
}

func TestInterpolate(Te *testing.T) {
	expected := []float64{1, -2, 0, 0, 0, 3.5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.25}
	f := func(z complex128) complex128 {
		var ret complex128
		for i := len(expected) - 1; i >= 0; i-- {
			ret = ret*z + complex(expected[i], 0)
		}
		return ret
	}
	c := interpolate(f, 32, 16)
	for i := range expected {
		if math.Abs(c[i]-expected[i]) > 1e-12 {
			Te.Errorf("Coefficient %d: expected %f got %f", i, expected[i], c[i])
		}
	}
	A := [][]complex128{{2, 1}, {1i, 3}}
	if d := cdet(A); cmplx.Abs(d-(6-1i)) > 1e-14 {
		Te.Errorf("Wrong determinant %v", d)
	}
}

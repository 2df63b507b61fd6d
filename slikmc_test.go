/*
 * slikmc_test.go, part of slikmc.
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

package chem

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func testPeptide(Te *testing.T, seq ...string) *Chain {
	phi := make([]float64, len(seq))
	psi := make([]float64, len(seq))
	for i := range seq {
		phi[i] = -65
		psi[i] = -40
		if i%2 == 1 {
			phi[i] = -120
			psi[i] = 130
		}
	}
	C, err := BuildPeptide(seq, phi, psi)
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

func angleDiff(a, b float64) float64 {
	return math.Abs(WrapDegrees(a - b))
}

func sameVec(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestBuildPeptide(Te *testing.T) {
	seq := []string{"ALA", "GLY", "SER", "PHE", "LYS", "PRO", "VAL"}
	phi := []float64{0, -80, -65, -150, 60, -70, -100}
	psi := []float64{150, 170, -40, 160, 40, 150, 120}
	C, err := BuildPeptide(seq, phi, psi)
	if err != nil {
		Te.Fatal(err)
	}
	if C.Len() != len(seq) {
		Te.Fatalf("Expected %d residues, got %d", len(seq), C.Len())
	}
	if C.Sequence() != "AGSFKPV" {
		Te.Errorf("Wrong sequence %s", C.Sequence())
	}
	if _, ok := C.Phi(0); ok {
		Te.Error("phi of the first residue should be undefined")
	}
	if _, ok := C.Psi(len(seq) - 1); ok {
		Te.Error("psi of the last residue should be undefined")
	}
	for i := range seq {
		if i > 0 {
			p, ok := C.Phi(i)
			if !ok || angleDiff(p, phi[i]) > 1e-6 {
				Te.Errorf("phi %d: expected %f got %f (%v)", i, phi[i], p, ok)
			}
			if !C.Connected(i) {
				Te.Errorf("Residue %d should be bonded to the previous one", i)
			}
		}
		if i < len(seq)-1 {
			p, ok := C.Psi(i)
			if !ok || angleDiff(p, psi[i]) > 1e-6 {
				Te.Errorf("psi %d: expected %f got %f (%v)", i, psi[i], p, ok)
			}
			o, ok := C.Omega(i)
			if !ok || math.Abs(o-180) > 1e-6 {
				Te.Errorf("omega %d: expected 180, got %f", i, o)
			}
		}
	}
	//Lys has 4 chi angles, Pro none.
	if C.NChi(4) != 4 || C.NChi(5) != 0 {
		Te.Errorf("Wrong number of chi DOFs: %d %d", C.NChi(4), C.NChi(5))
	}
	chi, ok := C.Chi(4, 0)
	if !ok || angleDiff(chi, -60) > 1e-6 {
		Te.Errorf("Lys chi1 should be -60, got %f", chi)
	}
}

func TestRotateForwardBackward(Te *testing.T) {
	C := testPeptide(Te, "ALA", "ALA", "ALA", "ALA", "ALA", "ALA")
	top := C.Top()
	before := C.Coords().RawVecs(0, C.NAtoms())
	phi2, _ := C.Phi(2)
	if err := top.Rotate(Move{Kind: Backbone, DOF: PhiDOF(2), Dir: Forward, Degrees: 30}); err != nil {
		Te.Fatal(err)
	}
	p, _ := C.Phi(2)
	if angleDiff(p, phi2+30) > 1e-8 {
		Te.Errorf("Forward rotation: expected phi %f, got %f", phi2+30, p)
	}
	n2 := C.Residue(2).Atom(BbN)
	for i := 0; i <= n2; i++ {
		if !sameVec(C.Position(i), r3.Vec{X: before[3*i], Y: before[3*i+1], Z: before[3*i+2]}, 1e-12) {
			Te.Errorf("Atom %d is upstream of the bond and moved", i)
		}
	}
	after := C.Coords().RawVecs(0, C.NAtoms())
	psi3, _ := C.Psi(3)
	if err := top.Rotate(Move{Kind: Backbone, DOF: PsiDOF(3), Dir: Backward, Degrees: 20}); err != nil {
		Te.Fatal(err)
	}
	p, _ = C.Psi(3)
	if angleDiff(p, psi3+20) > 1e-8 {
		Te.Errorf("Backward rotation: expected psi %f, got %f", psi3+20, p)
	}
	for i := C.Residue(4).First(); i < C.NAtoms(); i++ {
		if !sameVec(C.Position(i), r3.Vec{X: after[3*i], Y: after[3*i+1], Z: after[3*i+2]}, 1e-12) {
			Te.Errorf("Atom %d is downstream of the bond and moved", i)
		}
	}
}

func TestMultiRotateInverse(Te *testing.T) {
	C := testPeptide(Te, "SER", "LEU", "ALA", "GLU", "THR", "GLY", "ALA")
	top := C.Top()
	before := C.Coords().RawVecs(0, C.NAtoms())
	moves := []Move{
		{Backbone, PhiDOF(1), Forward, 12.5},
		{Backbone, PsiDOF(2), Backward, -33},
		{SideChain, ChiDOF(1, 1), Forward, 77},
		{Backbone, PhiDOF(4), Backward, 101},
		{Backbone, PsiDOF(5), Forward, -5},
	}
	if err := top.MultiRotate(moves); err != nil {
		Te.Fatal(err)
	}
	if err := top.AntiMultiRotate(moves); err != nil {
		Te.Fatal(err)
	}
	after := C.Coords().RawVecs(0, C.NAtoms())
	for i := range before {
		if math.Abs(before[i]-after[i]) > 1e-9 {
			Te.Fatalf("Coordinate %d not restored: %f vs %f", i, before[i], after[i])
		}
	}
}

func TestViewOwnership(Te *testing.T) {
	C := testPeptide(Te, "ALA", "ALA", "ALA", "ALA", "ALA", "ALA")
	top := C.Top()
	v, err := top.Sub(1, 3)
	if err != nil {
		Te.Fatal(err)
	}
	m := Move{Kind: Backbone, DOF: PhiDOF(2), Dir: Forward, Degrees: 40}
	if err := v.Rotate(m); err == nil {
		Te.Error("A detached view should not be able to rotate")
	}
	if err := v.Attach(); err != nil {
		Te.Fatal(err)
	}
	if !v.Attached() {
		Te.Error("View should be attached")
	}
	if err := top.Rotate(m); err == nil {
		Te.Error("The top view doesn't own residues 1 to 3 and still rotated")
	}
	r4 := C.Residue(4)
	before := C.Coords().RawVecs(r4.First(), C.NAtoms()-r4.First())
	if err := v.Rotate(m); err != nil {
		Te.Fatal(err)
	}
	after := C.Coords().RawVecs(r4.First(), C.NAtoms()-r4.First())
	for i := range before {
		if before[i] != after[i] {
			Te.Fatal("Atoms outside the view moved")
		}
	}
	if err := v.Rotate(Move{Kind: Backbone, DOF: PhiDOF(4), Dir: Forward, Degrees: 10}); err == nil {
		Te.Error("A DOF outside the view was rotated")
	}
	w, _ := v.Sub(0, 1)
	if !w.IsSubChainOf(v) || !w.IsSubChainOf(top) {
		Te.Error("IsSubChainOf failed")
	}
	v.Detach()
	if err := w.Attach(); err == nil {
		Te.Error("w attached although its parent doesn't own its residues")
	}
	if err := top.Rotate(m); err != nil {
		Te.Errorf("Top view should own its residues after Detach: %v", err)
	}
	if s, e := w.TopLevel(); s != 1 || e != 2 {
		Te.Errorf("Wrong top level range %d %d", s, e)
	}
}

type countingIndex struct {
	updates int
	first   int
	last    int
}

func (c *countingIndex) Update(C *Chain, first, last int) error {
	c.updates++
	c.first, c.last = first, last
	return nil
}

func TestSaveRestoreDirty(Te *testing.T) {
	C := testPeptide(Te, "ALA", "VAL", "ALA", "ALA", "ILE", "ALA")
	idx := new(countingIndex)
	if err := C.SetIndex(idx); err != nil {
		Te.Fatal(err)
	}
	if C.Dirty() {
		Te.Error("Chain should be clean after SetIndex")
	}
	v, _ := C.Top().Sub(1, 4)
	v.Attach()
	s := v.Save()
	if err := v.Restore(s); err != nil {
		Te.Fatal(err)
	}
	if C.Dirty() {
		Te.Error("Restoring an unchanged state should not mark the chain as dirty")
	}
	before := C.Coords().RawVecs(0, C.NAtoms())
	v.Rotate(Move{Kind: Backbone, DOF: PsiDOF(2), Dir: Forward, Degrees: 33.3})
	v.Rotate(Move{Kind: SideChain, DOF: ChiDOF(4, 0), Dir: Forward, Degrees: -50})
	if !C.Dirty() {
		Te.Error("Chain should be dirty")
	}
	if err := v.Restore(s); err != nil {
		Te.Fatal(err)
	}
	after := C.Coords().RawVecs(0, C.NAtoms())
	for i := range before {
		if before[i] != after[i] {
			Te.Fatalf("Restore is not exact at %d", i)
		}
	}
	if err := C.Commit(); err != nil {
		Te.Fatal(err)
	}
	if idx.updates != 2 || C.Dirty() {
		Te.Errorf("Expected one commit update after the initial one, got %d", idx.updates-1)
	}
	first, last := v.AtomRange()
	if idx.first < first || idx.last > last {
		Te.Errorf("Commit range %d-%d outside the view %d-%d", idx.first, idx.last, first, last)
	}
	other := testPeptide(Te, "ALA", "ALA")
	if err := other.Top().Restore(s); err == nil {
		Te.Error("State from another chain was restored")
	}
}

func TestSetChi(Te *testing.T) {
	C := testPeptide(Te, "GLY", "LYS", "GLY")
	v, _ := C.Top().Sub(1, 1)
	v.Attach()
	ca := C.Position(C.Residue(1).Atom(BbCA))
	for k, target := range []float64{175, -70, 65, 180} {
		if err := v.SetChi(0, k, target); err != nil {
			Te.Fatal(err)
		}
		chi, _ := C.Chi(1, k)
		if angleDiff(chi, target) > 1e-8 {
			Te.Errorf("chi%d: expected %f got %f", k+1, target, chi)
		}
	}
	if !sameVec(ca, C.Position(C.Residue(1).Atom(BbCA)), 0) {
		Te.Error("CA moved when setting chis")
	}
	if err := v.SetChi(0, 4, 10); err == nil {
		Te.Error("Lys has no chi5")
	}
}

func TestPDBIO(Te *testing.T) {
	C := testPeptide(Te, "MET", "ASP", "TRP", "HIS", "ARG")
	var buf bytes.Buffer
	if err := PDBWriteTo(&buf, C, "test run"); err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(buf.String(), "REMARK     test run") {
		Te.Error("Remark not written")
	}
	C2, err := PDBReadFrom(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if C2.NAtoms() != C.NAtoms() || C2.Len() != C.Len() {
		Te.Fatalf("Read %d atoms %d residues, expected %d, %d", C2.NAtoms(), C2.Len(), C.NAtoms(), C.Len())
	}
	for i := 0; i < C.NAtoms(); i++ {
		if !sameVec(C.Position(i), C2.Position(i), 1e-3) {
			Te.Errorf("Atom %d: %v vs %v", i, C.Position(i), C2.Position(i))
		}
		if C.Atom(i).Name != C2.Atom(i).Name || C.Atom(i).Symbol != C2.Atom(i).Symbol {
			Te.Errorf("Atom %d: %s %s vs %s %s", i, C.Atom(i).Name, C.Atom(i).Symbol, C2.Atom(i).Name, C2.Atom(i).Symbol)
		}
	}
	for i := 1; i < C.Len(); i++ {
		p1, _ := C.Phi(i)
		p2, _ := C2.Phi(i)
		if angleDiff(p1, p2) > 0.1 {
			Te.Errorf("phi %d changed from %f to %f", i, p1, p2)
		}
	}
}

func TestGeometry(Te *testing.T) {
	a := r3.Vec{X: 1, Y: 1}
	b := r3.Vec{}
	c := r3.Vec{Z: 1.5}
	d := Place(a, b, c, 1.4, 110*Deg2Rad, 70*Deg2Rad)
	if t := Dihedral(a, b, c, d) * Rad2Deg; math.Abs(t-70) > 1e-9 {
		Te.Errorf("Place gave a dihedral of %f", t)
	}
	if ang := BondAngle(b, c, d) * Rad2Deg; math.Abs(ang-110) > 1e-9 {
		Te.Errorf("Place gave an angle of %f", ang)
	}
	e := RotateAbout(d, b, c, 0.3)
	if t := TorsionAbout(b, c, d, e); math.Abs(t-0.3) > 1e-9 {
		Te.Errorf("TorsionAbout: expected 0.3 got %f", t)
	}
	if t := Dihedral(a, b, c, e) * Rad2Deg; math.Abs(t-70-0.3*Rad2Deg) > 1e-9 {
		Te.Errorf("Rotation changed the dihedral to %f", t)
	}
	if !math.IsNaN(Dihedral(a, b, r3.Scale(2, b), d)) {
		Te.Error("Dihedral of coincident points should be NaN")
	}
	if w := WrapDegrees(-190); math.Abs(w-170) > 1e-12 {
		Te.Errorf("WrapDegrees(-190)=%f", w)
	}
}

func TestBondedWithin(Te *testing.T) {
	C := testPeptide(Te, "ALA", "ALA")
	ca := C.Residue(0).Atom(BbCA)
	near := C.BondedWithin(ca, 1)
	//N, CA, C and CB
	if len(near) != 4 {
		Te.Errorf("Expected 4 atoms within 1 bond of CA, got %v", near)
	}
	n1 := C.Residue(1).Atom(BbN)
	if !C.Bonded(C.Residue(0).Atom(BbC), n1) {
		Te.Error("Missing peptide bond")
	}
	within2 := C.BondedWithin(ca, 2)
	found := false
	for _, v := range within2 {
		if v == n1 {
			found = true
		}
	}
	if !found {
		Te.Error("N of residue 1 is two bonds away from CA 0")
	}
}

func TestLetters(Te *testing.T) {
	for _, name := range []string{"ALA", "GLY", "TRP", "PRO"} {
		if got := ThreeLetter(OneLetter(name)); got != name {
			Te.Errorf("%s went to %s and back", name, got)
		}
	}
	if ThreeLetter('a') != "ALA" || ThreeLetter('#') != "UNK" || OneLetter("HOH") != 'X' {
		Te.Error("Wrong handling of lowercase or unknown codes")
	}
}

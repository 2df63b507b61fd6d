package chem

import (
	"fmt"
	"math"
)

//RamaSet contains the backbone dihedrals of a residue, in degrees. An angle
//that is not defined (the phi of the first residue of a chain, the psi of the last)
//has its OK field set to false, and a NaN value.
type RamaSet struct {
	Res     int
	Molname string
	MolID   int
	Phi     float64
	Psi     float64
	PhiOK   bool
	PsiOK   bool
}

//Phi returns the phi dihedral of residue i, in degrees, and false if it is not defined.
func (C *Chain) Phi(i int) (float64, bool) {
	return C.DOFValue(Backbone, PhiDOF(i))
}

//Psi returns the psi dihedral of residue i, in degrees, and false if it is not defined.
func (C *Chain) Psi(i int) (float64, bool) {
	return C.DOFValue(Backbone, PsiDOF(i))
}

//Omega returns the omega dihedral (CA(i), C(i), N(i+1), CA(i+1)) between residues i and i+1,
//in degrees, normalized to the [0,360) range, and false if it is not defined.
func (C *Chain) Omega(i int) (float64, bool) {
	if i < 0 || i+1 >= len(C.res) || !C.connected[i+1] {
		return math.NaN(), false
	}
	r, n := C.res[i], C.res[i+1]
	d := Dihedral(C.coords.Vec(r.Atom(BbCA)), C.coords.Vec(r.Atom(BbC)), C.coords.Vec(n.Atom(BbN)), C.coords.Vec(n.Atom(BbCA)))
	if math.IsNaN(d) {
		return d, false
	}
	d *= Rad2Deg
	if d < 0 {
		d += 360
	}
	return d, true
}

//Chi returns the chi dihedral k+1 (k is 0-based) of residue i, in degrees, and false if
//the residue has no such dihedral or lacks some of its atoms.
func (C *Chain) Chi(i, k int) (float64, bool) {
	return C.DOFValue(SideChain, ChiDOF(i, k))
}

//RamaList returns the backbone dihedrals of all the residues of the view.
func (V *View) RamaList() []RamaSet {
	ret := make([]RamaSet, 0, V.Len())
	for i := V.start; i <= V.end; i++ {
		r := V.chain.res[i]
		s := RamaSet{Res: i, Molname: r.Name, MolID: r.MolID}
		s.Phi, s.PhiOK = V.chain.Phi(i)
		s.Psi, s.PsiOK = V.chain.Psi(i)
		ret = append(ret, s)
	}
	return ret
}

//RamaResidueFilter filters the set of dihedral angles of a ramachandran plot by residue name
//(for instance, only GLY, or everything but GLY). Whether the residues in filterdata are
//filtered in or out depends on shouldBePresent.
func RamaResidueFilter(dihedrals []RamaSet, filterdata []string, shouldBePresent bool) []RamaSet {
	ret := make([]RamaSet, 0, len(dihedrals))
	for _, val := range dihedrals {
		present := false
		for _, f := range filterdata {
			if f == val.Molname {
				present = true
				break
			}
		}
		if present == shouldBePresent {
			ret = append(ret, val)
		}
	}
	return ret
}

//SetChi sets the chi dihedral k+1 (k is 0-based) of the ith residue of the view to the value
//target, in degrees. Only the side chain moves.
func (V *View) SetChi(i, k int, target float64) error {
	if i < 0 || i >= V.Len() || k < 0 || k >= V.chain.NChi(V.start+i) {
		return NewError(fmt.Sprintf("%s: chi%d of residue %d of a %d residue view", ErrOutOfRange, k+1, i, V.Len()), false, "View.SetChi")
	}
	return ErrDecorate(V.SetDOF(SideChain, ChiDOF(V.start+i, k), Forward, target), "View.SetChi")
}

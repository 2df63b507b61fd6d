/*
 * chem.go, part of slikmc.
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
	"fmt"
	"strings"

	v3 "github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"
)

//Atom contains the information read for an atom, except for the coordinates,
//which are kept by the Chain.
type Atom struct {
	Name      string
	ID        int
	MolName   string //residue name
	MolID     int    //residue number
	Chain     string
	Symbol    string
	Occupancy float64
	Bfactor   float64
	Het       bool
	index     int
}

//Index returns the position of the atom in its chain.
func (A *Atom) Index() int {
	return A.index
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	ret := *A
	return &ret
}

//Backbone atom names
const (
	BbN  = "N"
	BbCA = "CA"
	BbC  = "C"
	BbO  = "O"
)

//Residue is a contiguous run of atoms in a chain.
type Residue struct {
	Name  string
	MolID int
	Chain string
	first int
	last  int
	names map[string]int
}

//First returns the index of the first atom of the residue in its chain
func (R *Residue) First() int { return R.first }

//Last returns the index of the last atom of the residue in its chain
func (R *Residue) Last() int { return R.last }

//Len returns the number of atoms in the residue
func (R *Residue) Len() int { return R.last - R.first + 1 }

//Atom returns the chain index of the atom with the given name in the residue,
//or -1 if there is no such atom.
func (R *Residue) Atom(name string) int {
	i, ok := R.names[name]
	if !ok {
		return -1
	}
	return i
}

//Chain is the kinematic chain: residues and atoms in a contiguous arena, their
//coordinates, the bond graph and the rotatable bonds. Sub-chains are Views on a Chain.
type Chain struct {
	atoms     []*Atom
	res       []*Residue
	coords    *v3.Matrix
	graph     *simple.UndirectedGraph
	bonds     [][2]int
	connected []bool //connected[i] is true if residue i is bonded to residue i-1
	bb        []dof  //two per residue, phi and psi
	sc        [][]dof
	owner     []*View
	top       *View

	dirty      bool
	dirtyFirst int
	dirtyLast  int
	index      SpatialIndex
}

//NewChain builds a chain from atoms and their coordinates. Atoms of a residue must be
//contiguous, and each residue must have N, CA and C atoms. The atoms are owned by the
//chain after this call. The coordinates are copied.
func NewChain(atoms []*Atom, coords *v3.Matrix) (*Chain, error) {
	if len(atoms) == 0 || coords == nil {
		return nil, NewError(ErrNilData, false, "NewChain")
	}
	if coords.NVecs() != len(atoms) {
		return nil, NewError(fmt.Sprintf("%d atoms but %d coordinates", len(atoms), coords.NVecs()), false, "NewChain")
	}
	C := new(Chain)
	C.atoms = atoms
	C.coords = v3.Zeros(len(atoms))
	C.coords.Copy(coords)
	var cur *Residue
	for i, at := range atoms {
		at.index = i
		if at.Symbol == "" {
			at.Symbol = symbolFromName(at.Name)
		}
		if cur == nil || at.MolID != cur.MolID || at.Chain != cur.Chain || at.MolName != cur.Name {
			cur = &Residue{Name: at.MolName, MolID: at.MolID, Chain: at.Chain, first: i, names: make(map[string]int)}
			C.res = append(C.res, cur)
		}
		cur.last = i
		if _, ok := cur.names[at.Name]; !ok {
			cur.names[at.Name] = i
		}
	}
	for i, r := range C.res {
		for _, n := range []string{BbN, BbCA, BbC} {
			if r.Atom(n) < 0 {
				return nil, NewError(fmt.Sprintf("%s: residue %d (%s %d) has no %s atom", ErrNoBackbone, i, r.Name, r.MolID, n), false, "NewChain")
			}
		}
	}
	C.assignBonds()
	if err := C.assignDOFs(); err != nil {
		return nil, ErrDecorate(err, "NewChain")
	}
	C.top = &View{chain: C, start: 0, end: len(C.res) - 1}
	C.owner = make([]*View, len(C.res))
	for i := range C.owner {
		C.owner[i] = C.top
	}
	return C, nil
}

//Len returns the number of residues in the chain
func (C *Chain) Len() int {
	return len(C.res)
}

//NAtoms returns the number of atoms in the chain
func (C *Chain) NAtoms() int {
	return len(C.atoms)
}

//Atom returns the ith atom of the chain
func (C *Chain) Atom(i int) *Atom {
	return C.atoms[i]
}

//Residue returns the ith residue of the chain
func (C *Chain) Residue(i int) *Residue {
	return C.res[i]
}

//Top returns the view of the whole chain.
func (C *Chain) Top() *View {
	return C.top
}

//Coords returns the coordinates of the chain. The matrix must be treated as read-only,
//all changes to the geometry go through Views.
func (C *Chain) Coords() *v3.Matrix {
	return C.coords
}

//Position returns the position of the ith atom
func (C *Chain) Position(i int) r3.Vec {
	return C.coords.Vec(i)
}

//AtomPosition returns the position of the atom with the given name in the
//residue res.
func (C *Chain) AtomPosition(res int, name string) (r3.Vec, error) {
	if res < 0 || res >= len(C.res) {
		return r3.Vec{}, NewError(fmt.Sprintf("%s: residue %d", ErrOutOfRange, res), true, "AtomPosition")
	}
	i := C.res[res].Atom(name)
	if i < 0 {
		return r3.Vec{}, NewError(fmt.Sprintf("No atom %s in residue %d", name, res), false, "AtomPosition")
	}
	return C.coords.Vec(i), nil
}

//Connected returns true if residue i is covalently bonded to residue i-1.
func (C *Chain) Connected(i int) bool {
	if i <= 0 || i >= len(C.res) {
		return false
	}
	return C.connected[i]
}

//Bonds returns the list of bonds of the chain, as pairs of atom indexes.
func (C *Chain) Bonds() [][2]int {
	return C.bonds
}

//Bfactors returns a slice with the b-factors of all atoms in the chain.
func (C *Chain) Bfactors() []float64 {
	ret := make([]float64, len(C.atoms))
	for i, v := range C.atoms {
		ret[i] = v.Bfactor
	}
	return ret
}

//Sequence returns the one-letter sequence of the chain.
func (C *Chain) Sequence() string {
	var b strings.Builder
	for _, r := range C.res {
		b.WriteByte(OneLetter(r.Name))
	}
	return b.String()
}

//Copy returns a deep copy of the chain. The copy has no spatial index and
//all its residues are owned by its top view.
func (C *Chain) Copy() *Chain {
	ats := make([]*Atom, len(C.atoms))
	for i, v := range C.atoms {
		ats[i] = v.Copy()
	}
	ret, err := NewChain(ats, C.coords)
	if err != nil {
		//the original chain was valid, so this can't happen
		panic(err.Error())
	}
	return ret
}

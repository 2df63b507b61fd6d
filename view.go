/*
 * view.go, part of slikmc.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

//View is a contiguous range of residues of a Chain. Views don't copy anything.
//A View can only change the geometry of its residues while it owns them, which
//happens after Attach. Atoms outside the view never move when the view rotates a DOF.
type View struct {
	chain  *Chain
	parent *View
	start  int //residue indexes in the whole chain, inclusive
	end    int
}

//Sub returns a view of the residues start to end (inclusive) of V, where
//start and end are counted from the beginning of V.
func (V *View) Sub(start, end int) (*View, error) {
	if start < 0 || end < start || end >= V.Len() {
		return nil, NewError(fmt.Sprintf("%s: sub-chain [%d,%d] of a %d residue chain", ErrOutOfRange, start, end, V.Len()), false, "View.Sub")
	}
	return &View{chain: V.chain, parent: V, start: V.start + start, end: V.start + end}, nil
}

//Chain returns the chain of which V is a view.
func (V *View) Chain() *Chain { return V.chain }

//Parent returns the view from which V was obtained, or nil for the top view.
func (V *View) Parent() *View { return V.parent }

//Len returns the number of residues in the view.
func (V *View) Len() int { return V.end - V.start + 1 }

//TopLevel returns the first and last residues of the view, as indexes of the whole chain.
func (V *View) TopLevel() (int, int) { return V.start, V.end }

//Global returns the index in the whole chain of the ith residue of the view.
func (V *View) Global(i int) int { return V.start + i }

//Residue returns the ith residue of the view.
func (V *View) Residue(i int) *Residue { return V.chain.res[V.start+i] }

//Contains returns true if the residue res (whole-chain index) is in the view.
func (V *View) Contains(res int) bool {
	return res >= V.start && res <= V.end
}

//IsSubChainOf returns true if all residues of V are in O, and both are views of the same chain.
func (V *View) IsSubChainOf(O *View) bool {
	return V.chain == O.chain && V.start >= O.start && V.end <= O.end
}

//AtomRange returns the first and last atom of the view.
func (V *View) AtomRange() (int, int) {
	return V.chain.res[V.start].first, V.chain.res[V.end].last
}

//Attach gives the ownership of the residues of V to V. The parent of V must own them.
func (V *View) Attach() error {
	if V.parent == nil {
		return nil //the top view never needs attaching
	}
	for i := V.start; i <= V.end; i++ {
		if o := V.chain.owner[i]; o != V.parent && o != V {
			return NewError(fmt.Sprintf("%s: residue %d is not owned by the parent view", ErrNotAttached, i), false, "View.Attach")
		}
	}
	for i := V.start; i <= V.end; i++ {
		V.chain.owner[i] = V
	}
	return nil
}

//Detach returns the ownership of V's residues to its parent. It does nothing if V doesn't own them.
func (V *View) Detach() {
	if V.parent == nil {
		return
	}
	for i := V.start; i <= V.end; i++ {
		if V.chain.owner[i] == V {
			V.chain.owner[i] = V.parent
		}
	}
}

//Attached returns true if V owns all its residues.
func (V *View) Attached() bool {
	for i := V.start; i <= V.end; i++ {
		if V.chain.owner[i] != V {
			return false
		}
	}
	return true
}

func (V *View) checkOwner(caller string) error {
	if !V.Attached() {
		return NewError(ErrNotAttached, false, caller)
	}
	return nil
}

//Returns the DOF for the move, if it exists and belongs to the view.
func (V *View) dofFor(m Move) (dof, error) {
	res := m.ResidueOf()
	if m.DOF < 0 || !V.Contains(res) {
		return dof{}, NewError(fmt.Sprintf("%s: DOF %d of residue %d is not in the view [%d,%d]", ErrOutOfRange, m.DOF, res, V.start, V.end), false, "dofFor")
	}
	var d dof
	if m.Kind == SideChain {
		k := m.DOF % 4
		if k >= len(V.chain.sc[res]) {
			return dof{}, NewError(fmt.Sprintf("%s: residue %d (%s) has no chi%d", ErrOutOfRange, res, V.chain.res[res].Name, k+1), false, "dofFor")
		}
		d = V.chain.sc[res][k]
	} else {
		d = V.chain.bb[m.DOF]
	}
	if !d.defined() {
		return dof{}, NewError(fmt.Sprintf("%s: DOF %s has no bond", ErrUndefinedAngle, m), false, "dofFor")
	}
	if d.ring {
		return dof{}, NewError(ErrRingBond, false, "dofFor")
	}
	return d, nil
}

//Rotate applies the move to the chain. Only atoms of the view move.
func (V *View) Rotate(m Move) error {
	if err := V.checkOwner("View.Rotate"); err != nil {
		return err
	}
	d, err := V.dofFor(m)
	if err != nil {
		return ErrDecorate(err, "View.Rotate")
	}
	if m.Degrees == 0 {
		return nil
	}
	if math.IsNaN(m.Degrees) || math.IsInf(m.Degrees, 0) {
		return NewError(fmt.Sprintf("Non-finite rotation %v", m.Degrees), false, "View.Rotate")
	}
	C := V.chain
	set := d.down
	angle := m.Degrees * Deg2Rad
	if m.Dir == Backward {
		set = d.up
		angle = -angle
	}
	rot, ok := NewRotator(C.coords.Vec(d.a), C.coords.Vec(d.b), angle)
	if !ok {
		return NewError(fmt.Sprintf("Degenerate bond %d-%d", d.a, d.b), true, "View.Rotate")
	}
	first, last := V.AtomRange()
	lo, hi := -1, -1
	for _, s := range set {
		from, to := max(s.lo, first), min(s.hi, last)
		for i := from; i <= to; i++ {
			C.coords.SetVec(i, rot.Rotate(C.coords.Vec(i)))
		}
		if from <= to {
			if lo < 0 {
				lo = from
			}
			hi = to
		}
	}
	if lo >= 0 {
		C.markDirty(lo, hi)
	}
	return nil
}

//MultiRotate applies the moves, in order.
func (V *View) MultiRotate(moves []Move) error {
	for i, m := range moves {
		if err := V.Rotate(m); err != nil {
			return ErrDecorate(err, fmt.Sprintf("View.MultiRotate(move %d)", i))
		}
	}
	return nil
}

//AntiMultiRotate undoes the moves, that is, applies their inverses in the reverse order.
func (V *View) AntiMultiRotate(moves []Move) error {
	for i := len(moves) - 1; i >= 0; i-- {
		if err := V.Rotate(moves[i].Inverse()); err != nil {
			return ErrDecorate(err, fmt.Sprintf("View.AntiMultiRotate(move %d)", i))
		}
	}
	return nil
}

//Position returns the position of the atom name in the ith residue of the view.
func (V *View) Position(i int, name string) (r3.Vec, error) {
	if i < 0 || i >= V.Len() {
		return r3.Vec{}, NewError(fmt.Sprintf("%s: residue %d of a %d residue view", ErrOutOfRange, i, V.Len()), false, "View.Position")
	}
	return V.chain.AtomPosition(V.start+i, name)
}

//DOFAtoms returns the four atoms that define the dihedral of a DOF, or false if the
//dihedral is not defined (for instance, the phi of the first residue). The DOF
//doesn't need to be in the view.
func (C *Chain) DOFAtoms(kind BlockType, index int) ([4]int, bool) {
	var ret [4]int
	if kind == SideChain {
		res, k := index/4, index%4
		if res < 0 || res >= len(C.res) || k >= len(C.sc[res]) {
			return ret, false
		}
		def := chiDefinitions[C.res[res].Name][k]
		r := C.res[res]
		for i, n := range def {
			ret[i] = r.Atom(n)
			if ret[i] < 0 {
				return ret, false
			}
		}
		return ret, true
	}
	res := index / 2
	if index < 0 || res >= len(C.res) {
		return ret, false
	}
	r := C.res[res]
	if index%2 == 0 {
		if !C.Connected(res) {
			return ret, false
		}
		return [4]int{C.res[res-1].Atom(BbC), r.Atom(BbN), r.Atom(BbCA), r.Atom(BbC)}, true
	}
	if res+1 >= len(C.res) || !C.Connected(res+1) {
		return ret, false
	}
	return [4]int{r.Atom(BbN), r.Atom(BbCA), r.Atom(BbC), C.res[res+1].Atom(BbN)}, true
}

//DOFValue returns the current value, in degrees, of the dihedral of a DOF.
func (C *Chain) DOFValue(kind BlockType, index int) (float64, bool) {
	ats, ok := C.DOFAtoms(kind, index)
	if !ok {
		return math.NaN(), false
	}
	d := Dihedral(C.coords.Vec(ats[0]), C.coords.Vec(ats[1]), C.coords.Vec(ats[2]), C.coords.Vec(ats[3]))
	if math.IsNaN(d) {
		return d, false
	}
	return d * Rad2Deg, true
}

//SetDOF rotates the DOF, in the given direction, so its dihedral takes the value target (degrees).
func (V *View) SetDOF(kind BlockType, index int, dir Direction, target float64) error {
	cur, ok := V.chain.DOFValue(kind, index)
	if !ok {
		return NewError(fmt.Sprintf("%s: %s DOF %d", ErrUndefinedAngle, kind, index), false, "View.SetDOF")
	}
	return ErrDecorate(V.Rotate(Move{Kind: kind, DOF: index, Dir: dir, Degrees: WrapDegrees(target - cur)}), "View.SetDOF")
}

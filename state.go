/*
 * state.go, part of slikmc.
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

import "fmt"

//State is a snapshot of the positions of a range of atoms of a chain.
type State struct {
	chain *Chain
	first int
	data  []float64
}

//Len returns the number of atoms in the state.
func (S *State) Len() int {
	return len(S.data) / 3
}

//Save returns the current positions of all atoms of the view.
func (V *View) Save() *State {
	first, last := V.AtomRange()
	return &State{chain: V.chain, first: first, data: V.chain.coords.RawVecs(first, last-first+1)}
}

//Restore puts the positions saved in S back. The positions are restored bit by bit.
//S must have been saved from a view of the same chain that is covered by V, and V has
//to own its residues. The chain is marked as dirty only if some position changed.
func (V *View) Restore(S *State) error {
	if S == nil {
		return NewError(ErrNilData, false, "View.Restore")
	}
	if S.chain != V.chain {
		return NewError(ErrStateMismatch, false, "View.Restore")
	}
	first, last := V.AtomRange()
	if S.first < first || S.first+S.Len()-1 > last {
		return NewError(fmt.Sprintf("%s: state covers atoms %d to %d, view %d to %d", ErrStateMismatch, S.first, S.first+S.Len()-1, first, last), false, "View.Restore")
	}
	if err := V.checkOwner("View.Restore"); err != nil {
		return err
	}
	if V.chain.coords.PutRawVecs(S.first, S.data) {
		V.chain.markDirty(S.first, S.first+S.Len()-1)
	}
	return nil
}

//SpatialIndex is a structure that accelerates distance queries on a chain, and needs
//to know when atoms move.
type SpatialIndex interface {
	//Update tells the index that the atoms first to last (inclusive) of C may have moved.
	Update(C *Chain, first, last int) error
}

func (C *Chain) markDirty(first, last int) {
	if !C.dirty {
		C.dirty = true
		C.dirtyFirst, C.dirtyLast = first, last
		return
	}
	C.dirtyFirst = min(C.dirtyFirst, first)
	C.dirtyLast = max(C.dirtyLast, last)
}

//Dirty returns true if atoms have moved since the last commit.
func (C *Chain) Dirty() bool {
	return C.dirty
}

//DirtyRange returns the range of atoms that may have moved since the last commit, and
//false if none did.
func (C *Chain) DirtyRange() (int, int, bool) {
	return C.dirtyFirst, C.dirtyLast, C.dirty
}

//SetIndex sets the spatial index of the chain, which is fully updated.
func (C *Chain) SetIndex(idx SpatialIndex) error {
	C.index = idx
	if idx == nil {
		return nil
	}
	if err := idx.Update(C, 0, len(C.atoms)-1); err != nil {
		return ErrDecorate(err, "SetIndex")
	}
	C.dirty = false
	return nil
}

//Index returns the spatial index of the chain, or nil.
func (C *Chain) Index() SpatialIndex {
	return C.index
}

//Commit passes the changes since the last commit to the spatial index, if any,
//and marks the chain as clean.
func (C *Chain) Commit() error {
	if !C.dirty {
		return nil
	}
	if C.index != nil {
		if err := C.index.Update(C, C.dirtyFirst, C.dirtyLast); err != nil {
			return ErrDecorate(err, "Commit")
		}
	}
	C.dirty = false
	return nil
}

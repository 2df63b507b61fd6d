/*
 * clash.go, part of slikmc.
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

//Package clash implements a spatial grid over the atoms of a chain, which answers
//whether a part of the chain collides with the rest.
package clash

import (
	"fmt"
	"math"
	"sort"

	chem "github.com/loopkin/slikmc"
	"gonum.org/v1/gonum/spatial/r3"
)

//Options for the collision grid.
type Options struct {
	scale   float64
	exclude int
}

//DefaultOptions returns the default options: two atoms collide if they are closer than 0.75 times
//the sum of their van der Waals radii, and atoms 3 or fewer bonds apart never collide.
func DefaultOptions() *Options {
	return &Options{scale: 0.75, exclude: 3}
}

//Scale returns the fraction of the sum of the van der Waals radii of two atoms under which they
//collide, and sets it to the value given, if valid.
func (O *Options) Scale(scale ...float64) float64 {
	ret := O.scale
	if len(scale) > 0 && scale[0] > 0 {
		O.scale = scale[0]
	}
	return ret
}

//Exclude returns the number of bonds under which two atoms are never considered to collide,
//and sets it to the value given, if valid.
func (O *Options) Exclude(exclude ...int) int {
	ret := O.exclude
	if len(exclude) > 0 && exclude[0] >= 0 {
		O.exclude = exclude[0]
	}
	return ret
}

type cell [3]int

//Grid is a uniform spatial grid over the atoms of a chain. It implements chem.SpatialIndex,
//so it is kept up to date by the chain's Commit method.
type Grid struct {
	chain  *chem.Chain
	size   float64
	scale  float64
	radii  []float64
	excl   [][]int //sorted
	cells  map[cell][]int
	where  []cell
	placed []bool
}

//NewGrid returns a grid for the chain C and sets it as C's spatial index.
func NewGrid(C *chem.Chain, options ...*Options) (*Grid, error) {
	o := DefaultOptions()
	if len(options) > 0 && options[0] != nil {
		o = options[0]
	}
	G := &Grid{chain: C, scale: o.scale, radii: make([]float64, C.NAtoms()), excl: make([][]int, C.NAtoms())}
	var maxr float64
	for i := range G.radii {
		G.radii[i] = chem.VdWRadius(C.Atom(i).Symbol)
		maxr = math.Max(maxr, G.radii[i])
		G.excl[i] = C.BondedWithin(i, o.exclude)
	}
	G.size = 2 * maxr * o.scale
	if G.size <= 0 {
		return nil, chem.NewError("No van der Waals radii for the atoms of the chain", false, "NewGrid")
	}
	G.cells = make(map[cell][]int)
	G.where = make([]cell, C.NAtoms())
	G.placed = make([]bool, C.NAtoms())
	if err := C.SetIndex(G); err != nil {
		return nil, chem.ErrDecorate(err, "NewGrid")
	}
	return G, nil
}

func (G *Grid) cellOf(p r3.Vec) cell {
	return cell{int(math.Floor(p.X / G.size)), int(math.Floor(p.Y / G.size)), int(math.Floor(p.Z / G.size))}
}

func (G *Grid) remove(i int) {
	l := G.cells[G.where[i]]
	for k, v := range l {
		if v == i {
			l[k] = l[len(l)-1]
			l = l[:len(l)-1]
			break
		}
	}
	if len(l) == 0 {
		delete(G.cells, G.where[i])
		return
	}
	G.cells[G.where[i]] = l
}

//Update moves the atoms first to last of C to their current cells.
func (G *Grid) Update(C *chem.Chain, first, last int) error {
	if C != G.chain {
		return chem.NewError(chem.ErrStateMismatch, true, "Grid.Update")
	}
	if first < 0 || last >= C.NAtoms() {
		return chem.NewError(fmt.Sprintf("%s: atoms %d to %d", chem.ErrOutOfRange, first, last), true, "Grid.Update")
	}
	for i := first; i <= last; i++ {
		c := G.cellOf(C.Position(i))
		if G.placed[i] {
			if c == G.where[i] {
				continue
			}
			G.remove(i)
		}
		G.cells[c] = append(G.cells[c], i)
		G.where[i] = c
		G.placed[i] = true
	}
	return nil
}

func (G *Grid) excluded(i, j int) bool {
	e := G.excl[i]
	k := sort.SearchInts(e, j)
	return k < len(e) && e[k] == j
}

//collides calls f for each atom of the chain that collides with atom i, until f returns false.
func (G *Grid) collides(i int, f func(j int, d float64) bool) {
	p := G.chain.Position(i)
	c := G.cellOf(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, j := range G.cells[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if j == i || G.excluded(i, j) {
						continue
					}
					d := r3.Norm(r3.Sub(p, G.chain.Position(j)))
					if d < G.scale*(G.radii[i]+G.radii[j]) && !f(j, d) {
						return
					}
				}
			}
		}
	}
}

func (G *Grid) check(V *chem.View, caller string) error {
	if V.Chain() != G.chain {
		return chem.NewError(chem.ErrStateMismatch, true, caller)
	}
	if G.chain.Dirty() {
		return chem.NewError(chem.ErrStaleIndex, true, caller)
	}
	return nil
}

//InAnyCollision returns true if any atom of the view collides with any other atom of the chain.
//Querying a chain with uncommitted changes is an error.
func (G *Grid) InAnyCollision(V *chem.View) (bool, error) {
	if err := G.check(V, "Grid.InAnyCollision"); err != nil {
		return false, err
	}
	first, last := V.AtomRange()
	found := false
	for i := first; i <= last && !found; i++ {
		G.collides(i, func(int, float64) bool {
			found = true
			return false
		})
	}
	return found, nil
}

//Collision is a pair of colliding atoms and their distance.
type Collision struct {
	I, J int
	Dist float64
}

//Collisions returns all the pairs of colliding atoms where at least one atom is in the view.
//Each pair is reported once, with I < J.
func (G *Grid) Collisions(V *chem.View) ([]Collision, error) {
	if err := G.check(V, "Grid.Collisions"); err != nil {
		return nil, err
	}
	first, last := V.AtomRange()
	var ret []Collision
	for i := first; i <= last; i++ {
		G.collides(i, func(j int, d float64) bool {
			if j > i || j < first {
				ret = append(ret, Collision{I: min(i, j), J: max(i, j), Dist: d})
			}
			return true
		})
	}
	sort.Slice(ret, func(a, b int) bool {
		if ret[a].I != ret[b].I {
			return ret[a].I < ret[b].I
		}
		return ret[a].J < ret[b].J
	})
	return ret, nil
}

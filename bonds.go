/*
 * bonds.go, part of slikmc.
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
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/spatial/r3"
)

//Peptide bonds longer than this mean a chain break.
const maxPeptideBond = 2.0

var symbolMaxBonds = map[string]int{
	"H": 1,
	"C": 4,
	"N": 4,
	"O": 2,
	"S": 4,
}

//span is an inclusive range of atom indexes.
type span struct {
	lo int
	hi int
}

//dof is a rotatable bond. The rotation axis goes from atom a to atom b.
//down contains the atoms on the b side of the bond, up those on the a side.
type dof struct {
	a    int
	b    int
	down []span
	up   []span
	ring bool
}

func (d dof) defined() bool {
	return d.a >= 0 && d.b >= 0
}

type pair struct {
	i, j int
	d    float64
}

//Assigns bonds based on a simple distance criterium, similar to that described
//in DOI:10.1186/1758-2946-3-33. Only atoms in the same residue are considered, plus the
//peptide bonds between consecutive residues. The CD-N bond of prolines is left out
//of the bond graph, as the kinematic graph must be a tree.
func (C *Chain) assignBonds() {
	C.graph = simple.NewUndirectedGraph()
	for i := range C.atoms {
		C.graph.AddNode(simple.Node(int64(i)))
	}
	C.connected = make([]bool, len(C.res))
	nbonds := make([]int, len(C.atoms))
	for _, r := range C.res {
		cands := make([]pair, 0, r.Len()*2)
		for i := r.first; i <= r.last; i++ {
			at1 := C.atoms[i]
			cov1 := CovalentRadius(at1.Symbol)
			if cov1 == 0 {
				continue //we don't bond what we don't know
			}
			for j := i + 1; j <= r.last; j++ {
				at2 := C.atoms[j]
				cov2 := CovalentRadius(at2.Symbol)
				if cov2 == 0 {
					continue
				}
				if r.Name == "PRO" && ((at1.Name == "CD" && at2.Name == BbN) || (at2.Name == "CD" && at1.Name == BbN)) {
					continue
				}
				d := r3.Norm(r3.Sub(C.coords.Vec(i), C.coords.Vec(j)))
				if d < cov1+cov2+bondtol && d > tooclose {
					cands = append(cands, pair{i, j, d})
				}
			}
		}
		//the shortest bonds get priority when an atom would have too many.
		sort.Slice(cands, func(i, j int) bool { return cands[i].d < cands[j].d })
		for _, c := range cands {
			if C.full(c.i, nbonds) || C.full(c.j, nbonds) {
				continue
			}
			C.addBond(c.i, c.j, nbonds)
		}
	}
	for i := 1; i < len(C.res); i++ {
		prev, cur := C.res[i-1], C.res[i]
		if prev.Chain != cur.Chain {
			continue
		}
		c := prev.Atom(BbC)
		n := cur.Atom(BbN)
		if r3.Norm(r3.Sub(C.coords.Vec(c), C.coords.Vec(n))) < maxPeptideBond {
			C.addBond(c, n, nbonds)
			C.connected[i] = true
		}
	}
}

func (C *Chain) full(i int, nbonds []int) bool {
	max := symbolMaxBonds[C.atoms[i].Symbol]
	return max != 0 && nbonds[i] >= max
}

func (C *Chain) addBond(i, j int, nbonds []int) {
	C.graph.SetEdge(simple.Edge{F: simple.Node(int64(i)), T: simple.Node(int64(j))})
	C.bonds = append(C.bonds, [2]int{i, j})
	nbonds[i]++
	nbonds[j]++
}

//Bonded returns true if atoms i and j are covalently bonded.
func (C *Chain) Bonded(i, j int) bool {
	return C.graph.HasEdgeBetween(int64(i), int64(j))
}

//BondedWithin returns the indexes of all the atoms that are at most n bonds
//away from atom i, including i itself.
func (C *Chain) BondedWithin(i, n int) []int {
	ret := make([]int, 0, 10)
	bf := traverse.BreadthFirst{Visit: func(node graph.Node) { ret = append(ret, int(node.ID())) }}
	bf.Walk(C.graph, simple.Node(int64(i)), func(_ graph.Node, d int) bool { return d >= n })
	sort.Ints(ret)
	return ret
}

//side returns the atoms reachable from "from" without crossing the from-other bond,
//as sorted spans. It also returns true if "other" is reachable anyway, which means
//the bond is in a ring.
func (C *Chain) side(from, other int) ([]span, bool) {
	var reached []int
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			f, t := int(e.From().ID()), int(e.To().ID())
			return !((f == from && t == other) || (f == other && t == from))
		},
		Visit: func(n graph.Node) { reached = append(reached, int(n.ID())) },
	}
	bf.Walk(C.graph, simple.Node(int64(from)), nil)
	sort.Ints(reached)
	ring := false
	i := sort.SearchInts(reached, other)
	if i < len(reached) && reached[i] == other {
		ring = true
	}
	return compress(reached), ring
}

//compress turns a sorted list of ints into spans.
func compress(l []int) []span {
	ret := make([]span, 0, 4)
	for i, v := range l {
		if i > 0 && v == l[i-1]+1 {
			ret[len(ret)-1].hi = v
			continue
		}
		ret = append(ret, span{v, v})
	}
	return ret
}

func (C *Chain) newDOF(a, b int) dof {
	if a < 0 || b < 0 || !C.Bonded(a, b) {
		return dof{a: -1, b: -1}
	}
	d := dof{a: a, b: b}
	var ring bool
	d.down, ring = C.side(b, a)
	d.up, _ = C.side(a, b)
	d.ring = ring
	return d
}

//Sets up the backbone (phi, psi) and side chain (chi) rotatable bonds.
func (C *Chain) assignDOFs() error {
	C.bb = make([]dof, 2*len(C.res))
	C.sc = make([][]dof, len(C.res))
	for i, r := range C.res {
		n, ca, c := r.Atom(BbN), r.Atom(BbCA), r.Atom(BbC)
		if !C.Bonded(n, ca) || !C.Bonded(ca, c) {
			return NewError(fmt.Sprintf("%s: residue %d (%s %d) has an unbonded N-CA-C backbone", ErrNoBackbone, i, r.Name, r.MolID), false, "assignDOFs")
		}
		C.bb[2*i] = C.newDOF(n, ca)
		C.bb[2*i+1] = C.newDOF(ca, c)
		defs := chiDefinitions[r.Name]
		C.sc[i] = make([]dof, len(defs))
		for k, def := range defs {
			C.sc[i][k] = C.newDOF(r.Atom(def[1]), r.Atom(def[2]))
		}
	}
	return nil
}

//NChi returns the number of side chain dihedrals defined for residue i.
//Missing side chain atoms mean a chi is not defined, even if it is counted here.
func (C *Chain) NChi(i int) int {
	return len(C.sc[i])
}

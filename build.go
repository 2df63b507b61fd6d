/*
 * build.go, part of slikmc.
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
	"strings"

	v3 "github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

//Ideal backbone geometry, from Engh and Huber (1991). Distances in A, angles in degrees.
const (
	BondNCA       = 1.458
	BondCAC       = 1.525
	BondCN        = 1.329
	BondCO        = 1.231
	BondCACB      = 1.53
	AngleNCAC     = 111.2
	AngleCACN     = 116.2
	AngleCNCA     = 121.7
	AngleCACO     = 120.1
	AngleCCACB    = 110.1
	TorsionNCCACB = 122.6 //improper N-C-CA-CB of L-amino acids
)

//BuildPeptide builds a peptide with ideal geometry from a sequence of three-letter
//residue names and backbone dihedrals (degrees). phi of the first residue is ignored,
//and the psi of the last only orients its O atom. If omega is given, its first element
//is used for all peptide bonds, otherwise they are trans (180).
//Only heavy atoms are built.
func BuildPeptide(seq []string, phi, psi []float64, omega ...float64) (*Chain, error) {
	n := len(seq)
	if n == 0 {
		return nil, NewError(ErrNilData, false, "BuildPeptide")
	}
	if len(phi) != n || len(psi) != n {
		return nil, NewError(fmt.Sprintf("%d residues but %d phi and %d psi angles", n, len(phi), len(psi)), false, "BuildPeptide")
	}
	om := 180.0
	if len(omega) > 0 {
		om = omega[0]
	}
	atoms := make([]*Atom, 0, n*8)
	pos := make([]r3.Vec, 0, n*8)
	add := func(name, resname string, res int, p r3.Vec) {
		atoms = append(atoms, &Atom{Name: name, ID: len(atoms) + 1, MolName: resname, MolID: res + 1, Chain: "A", Symbol: symbolFromName(name), Occupancy: 1})
		pos = append(pos, p)
	}
	//the first residue is placed in the xy plane
	N := r3.Vec{}
	CA := r3.Vec{X: BondNCA}
	C := r3.Add(CA, r3.Vec{X: -BondCAC * cosd(AngleNCAC), Y: BondCAC * sind(AngleNCAC)})
	for i, name := range seq {
		name = strings.ToUpper(name)
		if _, ok := sideChainTemplates[name]; !ok {
			return nil, NewError(fmt.Sprintf("Unknown residue %s", name), false, "BuildPeptide")
		}
		if i > 0 {
			prevN, prevCA, prevC := N, CA, C
			N = Place(prevN, prevCA, prevC, BondCN, AngleCACN*Deg2Rad, psi[i-1]*Deg2Rad)
			CA = Place(prevCA, prevC, N, BondNCA, AngleCNCA*Deg2Rad, om*Deg2Rad)
			C = Place(prevC, N, CA, BondCAC, AngleNCAC*Deg2Rad, phi[i]*Deg2Rad)
		}
		O := Place(N, CA, C, BondCO, AngleCACO*Deg2Rad, (psi[i]+180)*Deg2Rad)
		placed := map[string]r3.Vec{BbN: N, BbCA: CA, BbC: C, BbO: O}
		add(BbN, name, i, N)
		add(BbCA, name, i, CA)
		add(BbC, name, i, C)
		add(BbO, name, i, O)
		if name == "GLY" {
			continue
		}
		CB := Place(N, C, CA, BondCACB, AngleCCACB*Deg2Rad, TorsionNCCACB*Deg2Rad)
		placed["CB"] = CB
		add("CB", name, i, CB)
		chis := defaultChis[name]
		for _, za := range sideChainTemplates[name] {
			t := za.torsion
			if za.chi >= 0 {
				t = chis[za.chi]
			}
			p := Place(placed[za.a], placed[za.b], placed[za.c], za.bond, za.angle*Deg2Rad, t*Deg2Rad)
			placed[za.name] = p
			add(za.name, name, i, p)
		}
	}
	coords := v3.Zeros(len(pos))
	for i, p := range pos {
		coords.SetVec(i, p)
	}
	return NewChain(atoms, coords)
}

func cosd(a float64) float64 { return math.Cos(a * Deg2Rad) }
func sind(a float64) float64 { return math.Sin(a * Deg2Rad) }

/*
 * sidechains.go, part of slikmc.
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

//The four atoms defining each chi dihedral of the amino acids. Prolines have no
//chi DOFs, as their side chain is a ring.
var chiDefinitions = map[string][][4]string{
	"ARG": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD"}, {"CB", "CG", "CD", "NE"}, {"CG", "CD", "NE", "CZ"}},
	"ASN": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "OD1"}},
	"ASP": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "OD1"}},
	"CYS": {{"N", "CA", "CB", "SG"}},
	"GLN": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD"}, {"CB", "CG", "CD", "OE1"}},
	"GLU": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD"}, {"CB", "CG", "CD", "OE1"}},
	"HIS": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "ND1"}},
	"ILE": {{"N", "CA", "CB", "CG1"}, {"CA", "CB", "CG1", "CD1"}},
	"LEU": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD1"}},
	"LYS": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD"}, {"CB", "CG", "CD", "CE"}, {"CG", "CD", "CE", "NZ"}},
	"MET": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "SD"}, {"CB", "CG", "SD", "CE"}},
	"PHE": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD1"}},
	"SER": {{"N", "CA", "CB", "OG"}},
	"THR": {{"N", "CA", "CB", "OG1"}},
	"TRP": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD1"}},
	"TYR": {{"N", "CA", "CB", "CG"}, {"CA", "CB", "CG", "CD1"}},
	"VAL": {{"N", "CA", "CB", "CG1"}},
}

//ChiCount returns the number of chi dihedrals of the residue type.
func ChiCount(resname string) int {
	return len(chiDefinitions[resname])
}

//zAtom places an atom from three previously placed ones, by internal coordinates.
//If chi is not negative, the torsion is taken from that chi instead.
type zAtom struct {
	name    string
	a, b, c string
	bond    float64
	angle   float64
	torsion float64
	chi     int
}

func z(name, a, b, c string, bond, angle, torsion float64) zAtom {
	return zAtom{name, a, b, c, bond, angle, torsion, -1}
}

func zchi(name, a, b, c string, bond, angle float64, chi int) zAtom {
	return zAtom{name, a, b, c, bond, angle, 0, chi}
}

//Default chi values used when building side chains.
var defaultChis = map[string][]float64{
	"ARG": {-60, 180, 180, 180},
	"ASN": {-60, -20},
	"ASP": {-60, -20},
	"CYS": {-60},
	"GLN": {-60, 180, 0},
	"GLU": {-60, 180, 0},
	"HIS": {-60, 90},
	"ILE": {-60, 170},
	"LEU": {-60, 170},
	"LYS": {-60, 180, 180, 180},
	"MET": {-60, 180, 70},
	"PHE": {-60, 90},
	"SER": {-60},
	"THR": {-60},
	"TRP": {-60, 90},
	"TYR": {-60, 90},
	"VAL": {175},
}

//Approximate heavy-atom side chain geometries. Every residue but glycine starts with
//CB, which is placed from N, C and CA.
var sideChainTemplates = map[string][]zAtom{
	"ALA": {},
	"ARG": {
		zchi("CG", "N", "CA", "CB", 1.52, 113.8, 0),
		zchi("CD", "CA", "CB", "CG", 1.52, 111.8, 1),
		zchi("NE", "CB", "CG", "CD", 1.46, 111.7, 2),
		zchi("CZ", "CG", "CD", "NE", 1.33, 124.8, 3),
		z("NH1", "CD", "NE", "CZ", 1.33, 120.0, 0),
		z("NH2", "CD", "NE", "CZ", 1.33, 120.0, 180),
	},
	"ASN": {
		zchi("CG", "N", "CA", "CB", 1.52, 112.6, 0),
		zchi("OD1", "CA", "CB", "CG", 1.23, 120.8, 1),
		z("ND2", "OD1", "CB", "CG", 1.33, 116.4, 180),
	},
	"ASP": {
		zchi("CG", "N", "CA", "CB", 1.52, 112.6, 0),
		zchi("OD1", "CA", "CB", "CG", 1.25, 118.4, 1),
		z("OD2", "OD1", "CB", "CG", 1.25, 118.4, 180),
	},
	"CYS": {
		zchi("SG", "N", "CA", "CB", 1.81, 114.0, 0),
	},
	"GLN": {
		zchi("CG", "N", "CA", "CB", 1.52, 113.8, 0),
		zchi("CD", "CA", "CB", "CG", 1.52, 112.6, 1),
		zchi("OE1", "CB", "CG", "CD", 1.23, 120.8, 2),
		z("NE2", "OE1", "CG", "CD", 1.33, 116.4, 180),
	},
	"GLU": {
		zchi("CG", "N", "CA", "CB", 1.52, 113.8, 0),
		zchi("CD", "CA", "CB", "CG", 1.52, 112.6, 1),
		zchi("OE1", "CB", "CG", "CD", 1.25, 118.4, 2),
		z("OE2", "OE1", "CG", "CD", 1.25, 118.4, 180),
	},
	"GLY": nil,
	"HIS": {
		zchi("CG", "N", "CA", "CB", 1.50, 113.7, 0),
		zchi("ND1", "CA", "CB", "CG", 1.38, 122.7, 1),
		z("CD2", "ND1", "CB", "CG", 1.36, 131.0, 180),
		z("CE1", "CB", "CG", "ND1", 1.32, 109.0, 180),
		z("NE2", "CB", "CG", "CD2", 1.37, 107.0, 180),
	},
	"ILE": {
		zchi("CG1", "N", "CA", "CB", 1.53, 110.4, 0),
		z("CG2", "CG1", "CA", "CB", 1.53, 110.5, -122.0),
		zchi("CD1", "CA", "CB", "CG1", 1.52, 113.8, 1),
	},
	"LEU": {
		zchi("CG", "N", "CA", "CB", 1.53, 116.1, 0),
		zchi("CD1", "CA", "CB", "CG", 1.52, 110.3, 1),
		z("CD2", "CD1", "CB", "CG", 1.52, 110.6, 122.0),
	},
	"LYS": {
		zchi("CG", "N", "CA", "CB", 1.52, 113.8, 0),
		zchi("CD", "CA", "CB", "CG", 1.52, 111.5, 1),
		zchi("CE", "CB", "CG", "CD", 1.52, 111.5, 2),
		zchi("NZ", "CG", "CD", "CE", 1.49, 111.7, 3),
	},
	"MET": {
		zchi("CG", "N", "CA", "CB", 1.52, 113.8, 0),
		zchi("SD", "CA", "CB", "CG", 1.81, 112.7, 1),
		zchi("CE", "CB", "CG", "SD", 1.79, 100.9, 2),
	},
	"PHE": {
		zchi("CG", "N", "CA", "CB", 1.50, 113.8, 0),
		zchi("CD1", "CA", "CB", "CG", 1.39, 120.0, 1),
		z("CD2", "CD1", "CB", "CG", 1.39, 120.0, 180),
		z("CE1", "CB", "CG", "CD1", 1.39, 120.0, 180),
		z("CE2", "CB", "CG", "CD2", 1.39, 120.0, 180),
		z("CZ", "CG", "CD1", "CE1", 1.39, 120.0, 0),
	},
	"PRO": {
		z("CG", "N", "CA", "CB", 1.50, 104.5, 29.6),
		z("CD", "CA", "CB", "CG", 1.51, 105.5, -34.8),
	},
	"SER": {
		zchi("OG", "N", "CA", "CB", 1.42, 111.1, 0),
	},
	"THR": {
		zchi("OG1", "N", "CA", "CB", 1.43, 109.2, 0),
		z("CG2", "OG1", "CA", "CB", 1.52, 111.1, -120.0),
	},
	"TRP": {
		zchi("CG", "N", "CA", "CB", 1.50, 114.1, 0),
		zchi("CD1", "CA", "CB", "CG", 1.37, 127.1, 1),
		z("CD2", "CD1", "CB", "CG", 1.43, 126.6, 180),
		z("NE1", "CB", "CG", "CD1", 1.38, 110.2, 180),
		z("CE2", "CB", "CG", "CD2", 1.41, 107.2, 180),
		z("CE3", "CB", "CG", "CD2", 1.40, 133.9, 0),
		z("CZ2", "CG", "CD2", "CE2", 1.40, 122.4, 180),
		z("CZ3", "CG", "CD2", "CE3", 1.39, 118.7, 180),
		z("CH2", "CD2", "CE2", "CZ2", 1.37, 117.5, 0),
	},
	"TYR": {
		zchi("CG", "N", "CA", "CB", 1.51, 113.8, 0),
		zchi("CD1", "CA", "CB", "CG", 1.39, 120.8, 1),
		z("CD2", "CD1", "CB", "CG", 1.39, 120.8, 180),
		z("CE1", "CB", "CG", "CD1", 1.39, 121.2, 180),
		z("CE2", "CB", "CG", "CD2", 1.39, 121.2, 180),
		z("CZ", "CG", "CD1", "CE1", 1.38, 119.6, 0),
		z("OH", "CD1", "CE1", "CZ", 1.38, 119.9, 180),
	},
	"VAL": {
		zchi("CG1", "N", "CA", "CB", 1.53, 110.7, 0),
		z("CG2", "CG1", "CA", "CB", 1.53, 110.4, 122.9),
	},
}

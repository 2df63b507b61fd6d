/*
 * atomicdata.go, part of slikmc.
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
	"strings"
	"unicode"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
//Note that just common "bio-elements" are present
var symbolCovrad = map[string]float64{
	"H":  0.31,
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
}

//A map for assigning van der Waals radii to elements
//Values from 10.1021/j100785a001 and 10.1021/jp8111556
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"C":  1.70,
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Se": 1.90,
}

//A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

//CovalentRadius returns the covalent radius, in A, for the element symbol,
//or 0 if it is not known.
func CovalentRadius(symbol string) float64 {
	return symbolCovrad[symbol]
}

//VdWRadius returns the van der Waals radius, in A, for the element symbol.
//Unknown elements get the radius of carbon.
func VdWRadius(symbol string) float64 {
	r, ok := symbolVdwrad[symbol]
	if !ok {
		return symbolVdwrad["C"]
	}
	return r
}

//OneLetter returns the one-letter code of an amino acid residue name,
//or 'X' if it is unknown.
func OneLetter(resname string) byte {
	l, ok := three2OneLetter[strings.ToUpper(resname)]
	if !ok {
		return 'X'
	}
	return l
}

//ThreeLetter returns the residue name for a one-letter amino acid code, or "UNK"
//if the code is unknown.
func ThreeLetter(code byte) string {
	code = byte(unicode.ToUpper(rune(code)))
	for k, v := range three2OneLetter {
		if v == code {
			return k
		}
	}
	return "UNK"
}

//This tries to guess a chemical element symbol from a PDB atom name.
//It only deals with the elements found in proteins.
func symbolFromName(name string) string {
	name = strings.TrimLeft(name, "0123456789")
	if name == "" {
		return ""
	}
	if name == "SE" {
		return "Se"
	}
	switch name[0] {
	case 'H', 'C', 'N', 'O', 'S', 'P':
		return name[:1]
	}
	return ""
}

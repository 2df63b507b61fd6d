/*
 * files.go, part of slikmc.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/loopkin/slikmc/v3"
)

//Parses a valid ATOM or HETATM line of a PDB file, returns an Atom
//object with the info except for the coordinates, which are returned separately.
func readPDBLine(line string, contlines int) (*Atom, [3]float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return nil, c, NewError(fmt.Sprintf("Line %d is too short for an atom record", contlines), false, "readPDBLine")
	}
	errs := make([]error, 5)
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, errs[0] = strconv.Atoi(strings.TrimSpace(line[6:11]))
	atom.Name = strings.TrimSpace(line[12:16])
	atom.MolName = strings.TrimSpace(line[17:20])
	atom.Chain = string(line[21])
	atom.MolID, errs[1] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	c[0], errs[2] = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
	c[1], errs[3] = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
	c[2], errs[4] = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
	for _, err := range errs {
		if err != nil {
			return nil, c, NewError(fmt.Sprintf("Line %d: %s", contlines, err.Error()), false, "readPDBLine")
		}
	}
	//Occupancy, b-factor and symbol are optional, we just take them if they are there.
	atom.Occupancy = 1
	if len(line) >= 60 {
		if o, err := strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64); err == nil {
			atom.Occupancy = o
		}
	}
	if len(line) >= 66 {
		if b, err := strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64); err == nil {
			atom.Bfactor = b
		}
	}
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
		if len(atom.Symbol) == 2 {
			atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
		}
	}
	if atom.Symbol == "" {
		atom.Symbol = symbolFromName(atom.Name)
	}
	return atom, c, nil
}

//PDBRead reads the first model of a PDB file and returns it as a chain.
//Water molecules and alternate locations other than the first are skipped.
func PDBRead(pdbname string) (*Chain, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, NewError(err.Error(), false, "PDBRead")
	}
	defer pdbfile.Close()
	C, err := PDBReadFrom(pdbfile)
	return C, ErrDecorate(err, "PDBRead "+pdbname)
}

//PDBReadFrom reads the first model of a PDB from r.
func PDBReadFrom(r io.Reader) (*Chain, error) {
	atoms := make([]*Atom, 0, 100)
	coords := make([]float64, 0, 300)
	pdb := bufio.NewScanner(r)
	contlines := 0
	for pdb.Scan() {
		line := pdb.Text()
		contlines++
		if strings.HasPrefix(line, "ENDMDL") {
			break //we only want the first model
		}
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		if len(line) > 16 && line[16] != ' ' && line[16] != 'A' {
			continue
		}
		at, c, err := readPDBLine(line, contlines)
		if err != nil {
			return nil, ErrDecorate(err, "PDBReadFrom")
		}
		if at.MolName == "HOH" || at.MolName == "WAT" {
			continue
		}
		atoms = append(atoms, at)
		coords = append(coords, c[:]...)
	}
	if err := pdb.Err(); err != nil {
		return nil, NewError(err.Error(), false, "PDBReadFrom")
	}
	if len(atoms) == 0 {
		return nil, NewError("No atoms in PDB", false, "PDBReadFrom")
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, ErrDecorate(err, "PDBReadFrom")
	}
	C, err := NewChain(atoms, m)
	return C, ErrDecorate(err, "PDBReadFrom")
}

//PDBWrite writes the chain C to a PDB file with the file name pdbname. Each remark,
//if any, is written in a REMARK line.
func PDBWrite(pdbname string, C *Chain, remarks ...string) error {
	out, err := os.Create(pdbname)
	if err != nil {
		return NewError(err.Error(), false, "PDBWrite")
	}
	defer out.Close()
	return ErrDecorate(PDBWriteTo(out, C, remarks...), "PDBWrite "+pdbname)
}

//PDBWriteTo writes the chain C in PDB format to w.
func PDBWriteTo(w io.Writer, C *Chain, remarks ...string) error {
	if C == nil {
		return NewError(ErrNilData, false, "PDBWriteTo")
	}
	out := bufio.NewWriter(w)
	fmt.Fprint(out, "REMARK     WRITTEN WITH SLIKMC\n")
	for _, r := range remarks {
		fmt.Fprintf(out, "REMARK     %s\n", r)
	}
	var err error
	chainprev := C.atoms[0].Chain
	for i, at := range C.atoms {
		if at.Chain != chainprev {
			fmt.Fprintln(out, "TER")
			chainprev = at.Chain
		}
		first := "ATOM"
		if at.Het {
			first = "HETATM"
		}
		c := C.coords.Vec(i)
		ch := byte(' ')
		if at.Chain != "" {
			ch = at.Chain[0]
		}
		//4 chars for the atom name are used when hydrogens are included.
		if len(at.Name) < 4 {
			_, err = fmt.Fprintf(out, "%-6s%5d  %-3s %3s %1c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n", first, at.ID, at.Name, at.MolName, ch,
				at.MolID, c.X, c.Y, c.Z, at.Occupancy, at.Bfactor, at.Symbol)
		} else if len(at.Name) == 4 {
			_, err = fmt.Fprintf(out, "%-6s%5d %4s %3s %1c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n", first, at.ID, at.Name, at.MolName, ch,
				at.MolID, c.X, c.Y, c.Z, at.Occupancy, at.Bfactor, at.Symbol)
		} else {
			err = NewError(fmt.Sprintf("Atom name %s too long", at.Name), false, "PDBWriteTo")
		}
		if err != nil {
			return ErrDecorate(err, "PDBWriteTo")
		}
	}
	fmt.Fprint(out, "END\n")
	if err := out.Flush(); err != nil {
		return NewError(err.Error(), false, "PDBWriteTo")
	}
	return nil
}

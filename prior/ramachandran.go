/*
 * ramachandran.go, part of slikmc.
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

package prior

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/histo"
	"github.com/rmera/scu"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

//General is the key of the Ramachandran distribution used for residues without one of their own.
const General = "*"

//PrePro is the key of the distribution used for residues other than glycine and proline that
//precede a proline.
const PrePro = "PREPRO"

//RamaBins is the number of bins per axis of the built-in Ramachandran distributions.
const RamaBins = 36

//cells with no data get this fraction of the mean weight, so no conformation has a zero density.
const ramaFloor = 1e-3

//Ramachandran is the backbone dihedral prior: a 2D (phi, psi) density per residue type,
//in degrees.
type Ramachandran struct {
	grids map[string]*histo.Grid
}

//a component of a mixture of products of von Mises distributions in phi and psi.
type vonMises struct {
	w          float64
	phi, psi   float64 //degrees
	kphi, kpsi float64
}

//logDensity uses the large kappa approximation of the von Mises normalization constant.
func (v vonMises) logDensity(phi, psi float64) float64 {
	norm := 0.5*math.Log(2*math.Pi/v.kphi) + 0.5*math.Log(2*math.Pi/v.kpsi)
	return math.Log(v.w) - norm + v.kphi*(math.Cos((phi-v.phi)*chem.Deg2Rad)-1) + v.kpsi*(math.Cos((psi-v.psi)*chem.Deg2Rad)-1)
}

//Coarse fits of the high-resolution distributions.
var builtinRama = map[string][]vonMises{
	General: {
		{0.45, -63, -43, 14, 12},
		{0.30, -120, 130, 6, 6},
		{0.17, -65, 145, 12, 8},
		{0.05, 57, 47, 15, 10},
		{0.03, -90, 0, 6, 4},
	},
	"GLY": {
		{0.25, -75, -30, 8, 6},
		{0.25, 75, 30, 8, 6},
		{0.25, -80, 170, 5, 5},
		{0.25, 80, -170, 5, 5},
	},
	"PRO": {
		{0.55, -65, 145, 30, 8},
		{0.45, -65, -35, 30, 12},
	},
	//alpha is depleted and the zeta region, near (-140, 80), appears.
	PrePro: {
		{0.40, -120, 135, 6, 6},
		{0.25, -65, 145, 12, 8},
		{0.20, -88, -30, 10, 8},
		{0.12, -140, 75, 8, 6},
		{0.03, 57, 47, 15, 10},
	},
}

func rasterize(comps []vonMises) *histo.Grid {
	div := histo.Dividers(-180, 180, RamaBins)
	G := histo.NewGrid(div, div)
	logs := make([]float64, len(comps))
	half := 180.0 / RamaBins
	for r := 0; r < RamaBins; r++ {
		for c := 0; c < RamaBins; c++ {
			for k, v := range comps {
				logs[k] = v.logDensity(div[r]+half, div[c]+half)
			}
			G.Set(r, c, math.Exp(floats.LogSumExp(logs)))
		}
	}
	G.AddAll(ramaFloor * G.Sum() / (RamaBins * RamaBins))
	return G
}

//NewRamachandran returns the built-in Ramachandran prior, with distributions for glycine,
//proline, residues before a proline, and all other residues.
func NewRamachandran() *Ramachandran {
	R := &Ramachandran{grids: make(map[string]*histo.Grid, len(builtinRama))}
	for k, v := range builtinRama {
		R.grids[k] = rasterize(v)
	}
	return R
}

//RamachandranFromFile reads a Ramachandran prior from a text file. Each line has a residue
//name (or * for all residues without their own distribution), phi, psi, and a count or weight. Lines
//starting with # are ignored. The file gives the weights of 10 degree cells; a weight
//is assigned to the cell that contains the given phi, psi. Residue types
//missing from the file take the built-in distribution.
func RamachandranFromFile(name string) (*Ramachandran, error) {
	fin, err := scu.NewMustReadFile(name)
	if err != nil {
		return nil, chem.NewError(fmt.Sprintf("Can't open Ramachandran file %s: %v", name, err), false, "RamachandranFromFile")
	}
	defer fin.Close()
	div := histo.Dividers(-180, 180, RamaBins)
	read := make(map[string]*histo.Grid)
	lineno := 0
	for line := fin.Next(); line != "EOF"; line = fin.Next() {
		lineno++
		f := strings.Fields(line)
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if len(f) < 4 {
			return nil, chem.NewError(fmt.Sprintf("%s:%d: expected 4 fields, got %d", name, lineno, len(f)), false, "RamachandranFromFile")
		}
		var v [3]float64
		for i := range v {
			if v[i], err = strconv.ParseFloat(f[i+1], 64); err != nil {
				return nil, chem.NewError(fmt.Sprintf("%s:%d: %v", name, lineno, err), false, "RamachandranFromFile")
			}
		}
		G, ok := read[f[0]]
		if !ok {
			G = histo.NewGrid(div, div)
			read[f[0]] = G
		}
		r, c, ok := G.Cell(chem.WrapDegrees(v[0]), chem.WrapDegrees(v[1]))
		if !ok || v[2] < 0 {
			return nil, chem.NewError(fmt.Sprintf("%s:%d: bad entry %s", name, lineno, strings.TrimSpace(line)), false, "RamachandranFromFile")
		}
		G.Set(r, c, G.At(r, c)+v[2])
	}
	R := NewRamachandran()
	for k, G := range read {
		if G.Sum() <= 0 {
			continue
		}
		G.AddAll(ramaFloor * G.Sum() / (RamaBins * RamaBins))
		R.grids[k] = G
	}
	return R, nil
}

//Grid returns the distribution used for the residue type resname.
func (R *Ramachandran) Grid(resname string) *histo.Grid {
	if G, ok := R.grids[resname]; ok {
		return G
	}
	return R.grids[General]
}

//Key returns the name of the distribution used for the residue i of C: PrePro if it precedes
//a proline and is not a glycine or a proline, the residue name otherwise.
func (R *Ramachandran) Key(C *chem.Chain, i int) string {
	name := C.Residue(i).Name
	if name == "GLY" || name == "PRO" || i+1 >= C.Len() || C.Residue(i+1).Name != "PRO" {
		return name
	}
	if _, ok := R.grids[PrePro]; !ok {
		return name
	}
	return PrePro
}

//LogDensityAngles returns the log density of the residue type resname for the given phi and psi
//(degrees). If only one of the angles is defined, the marginal density of that angle is used,
//and if none is, the result is 0.
func (R *Ramachandran) LogDensityAngles(resname string, phi, psi float64, phiOK, psiOK bool) float64 {
	G := R.Grid(resname)
	phi, psi = chem.WrapDegrees(phi), chem.WrapDegrees(psi)
	switch {
	case phiOK && psiOK:
		return G.LogDensity(phi, psi)
	case phiOK:
		return G.MarginalX().LogDensity(phi)
	case psiOK:
		return G.MarginalY().LogDensity(psi)
	}
	return 0
}

//LogDensity returns the sum of the log densities of the residues first to last of C.
func (R *Ramachandran) LogDensity(C *chem.Chain, first, last int) (float64, error) {
	if err := checkRange(C, first, last, "Ramachandran.LogDensity"); err != nil {
		return math.NaN(), err
	}
	var ret float64
	for i := first; i <= last; i++ {
		phi, phiOK := C.Phi(i)
		psi, psiOK := C.Psi(i)
		ret += R.LogDensityAngles(R.Key(C, i), phi, psi, phiOK, psiOK)
	}
	return ret, nil
}

//Sample draws a phi, psi pair (degrees) for the residue type resname.
func (R *Ramachandran) Sample(resname string, rnd *rand.Rand) (float64, float64) {
	return R.Grid(resname).Sample(rnd)
}

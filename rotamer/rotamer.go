/*
 * rotamer.go, part of slikmc.
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

//Package rotamer implements a backbone-dependent rotamer library, which can sample side chain
//conformations given the backbone dihedrals of a residue, and give the log probability of a
//side chain conformation.
package rotamer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/histo"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

//Width of the phi/psi buckets of the library, in degrees.
const (
	BucketWidth        = 10.0
	SpecialBucketWidth = 5.0
)

//Range of the terminal chi of the non-rotameric residues. For residues with symmetric
//terminal groups, it spans only 180 degrees.
var specialRange = map[string][2]float64{
	"ASN": {-180, 180},
	"ASP": {0, 180},
	"GLN": {-180, 180},
	"GLU": {0, 180},
	"HIS": {-180, 180},
	"PHE": {0, 180},
	"TRP": {-180, 180},
	"TYR": {0, 180},
}

//Special returns true if the terminal chi of the residue type is not rotameric, so it is taken
//from a discretized distribution instead of a normal one.
func Special(resname string) bool {
	_, ok := specialRange[resname]
	return ok
}

//Bucket returns the library grid point closest to the angle (degrees) for the residue type.
func Bucket(resname string, angle float64) int {
	w := BucketWidth
	if Special(resname) {
		w = SpecialBucketWidth
	}
	b := int(math.Round(chem.WrapDegrees(angle)/w) * w)
	if b == 180 {
		b = -180
	}
	return b
}

//Entry is one rotamer of a residue type, for a given backbone conformation.
type Entry struct {
	Rot   [4]int     //rotamer indexes, 0 for the chis that have none
	Prob  float64    //probability of the rotamer
	Chi   [4]float64 //mean chi values, degrees
	Sigma [4]float64 //standard deviations of the chis, degrees
	term  *histo.Data
}

//Term returns the distribution of the terminal chi of a non-rotameric residue, or nil.
func (e *Entry) Term() *histo.Data {
	return e.term
}

//SetTerm sets the distribution of the terminal chi of a non-rotameric residue, as the weights
//of equally spaced bins over the range of the chi.
func (e *Entry) SetTerm(resname string, weights []float64) error {
	r, ok := specialRange[resname]
	if !ok {
		return chem.NewError(fmt.Sprintf("%s has a rotameric terminal chi", resname), false, "Entry.SetTerm")
	}
	if len(weights) == 0 || floats.Min(weights) < 0 || floats.Sum(weights) <= 0 {
		return chem.NewError(fmt.Sprintf("Invalid terminal chi weights for %s", resname), false, "Entry.SetTerm")
	}
	e.term = histo.NewData(histo.Dividers(r[0], r[1], len(weights)), nil)
	for i, w := range weights {
		e.term.SetBin(i, w)
	}
	return nil
}

type key struct {
	res      string
	phi, psi int
}

//Library is a backbone-dependent rotamer library. It can also hold backbone-independent
//entries for a residue type, which are used when there are no entries for the given backbone.
type Library struct {
	entries     map[key][]*Entry
	independent map[string][]*Entry
}

//NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{entries: make(map[key][]*Entry), independent: make(map[string][]*Entry)}
}

//Add adds an entry for the residue type and the bucket that contains phi and psi.
func (L *Library) Add(resname string, phi, psi float64, e *Entry) {
	k := key{resname, Bucket(resname, phi), Bucket(resname, psi)}
	L.entries[k] = append(L.entries[k], e)
}

//AddIndependent adds an entry that is used for the residue type regardless of the backbone,
//unless the library has entries for the particular backbone conformation.
func (L *Library) AddIndependent(resname string, e *Entry) {
	L.independent[resname] = append(L.independent[resname], e)
}

//Trained returns true if the library can give rotamers for the residue type whatever its
//backbone conformation: it has backbone-independent entries for it, or entries for every
//phi/psi bucket.
func (L *Library) Trained(resname string) bool {
	if len(L.independent[resname]) > 0 {
		return true
	}
	w := BucketWidth
	if Special(resname) {
		w = SpecialBucketWidth
	}
	nb := int(math.Round(360 / w))
	var covered int
	for k, e := range L.entries {
		if k.res == resname && len(e) > 0 {
			covered++
		}
	}
	return covered >= nb*nb
}

//Entries returns the rotamers of the residue type for the given backbone dihedrals. Residues
//without chis have no rotamers and give an empty list. Otherwise, if there are no entries for the
//residue and backbone, an UntrainedError is returned.
func (L *Library) Entries(resname string, phi, psi float64) ([]*Entry, error) {
	if chem.ChiCount(resname) == 0 {
		return nil, nil
	}
	if e, ok := L.entries[key{resname, Bucket(resname, phi), Bucket(resname, psi)}]; ok && len(e) > 0 {
		return e, nil
	}
	if e := L.independent[resname]; len(e) > 0 {
		return e, nil
	}
	return nil, UntrainedError{Residue: resname, Phi: phi, Psi: psi}
}

//Check returns an UntrainedError for the first residue of C which has chis but
//for which the library can't give rotamers for some backbone conformation, or nil.
func (L *Library) Check(C *chem.Chain) error {
	for i := 0; i < C.Len(); i++ {
		name := C.Residue(i).Name
		if C.NChi(i) > 0 && !L.Trained(name) {
			return UntrainedError{Residue: name, Phi: math.NaN(), Psi: math.NaN()}
		}
	}
	return nil
}

//pick draws an index of entries with probability proportional to their Prob fields.
func pick(entries []*Entry, rnd *rand.Rand) int {
	cdf := make([]float64, len(entries))
	for i, e := range entries {
		cdf[i] = e.Prob
	}
	floats.CumSum(cdf, cdf)
	u := rnd.Float64() * cdf[len(cdf)-1]
	i := sort.Search(len(cdf), func(j int) bool { return cdf[j] > u })
	return min(i, len(cdf)-1)
}

//Sample draws a rotamer for the residue type and backbone dihedrals, and chi values for it.
//It returns the chis, in degrees, and the index of the chosen rotamer among the library entries.
func (L *Library) Sample(resname string, phi, psi float64, rnd *rand.Rand) ([]float64, int, error) {
	entries, err := L.Entries(resname, phi, psi)
	if err != nil || len(entries) == 0 {
		return nil, -1, err
	}
	r := pick(entries, rnd)
	e := entries[r]
	n := chem.ChiCount(resname)
	chis := make([]float64, n)
	for k := range chis {
		if k == n-1 && e.term != nil {
			chis[k] = e.term.Sample(rnd)
			continue
		}
		if e.Sigma[k] <= 0 {
			chis[k] = chem.WrapDegrees(e.Chi[k])
			continue
		}
		N := distuv.Normal{Mu: e.Chi[k], Sigma: e.Sigma[k], Src: rnd}
		chis[k] = chem.WrapDegrees(N.Rand())
	}
	return chis, r, nil
}

//circular distance between two angles, in degrees.
func angdist(a, b float64) float64 {
	return math.Abs(chem.WrapDegrees(a - b))
}

//Assign returns the index of the rotamer closest to the given chis, among the entries for the
//residue type and backbone dihedrals.
func (L *Library) Assign(resname string, phi, psi float64, chis []float64) (int, error) {
	entries, err := L.Entries(resname, phi, psi)
	if err != nil || len(entries) == 0 {
		return -1, err
	}
	best, bestd := -1, math.Inf(1)
	for i, e := range entries {
		var d float64
		for k, c := range chis {
			if k >= 4 || (k == len(chis)-1 && e.term != nil) {
				break
			}
			d += angdist(c, e.Chi[k])
		}
		if d < bestd {
			best, bestd = i, d
		}
	}
	return best, nil
}

//toRange brings the terminal chi to the range of its distribution.
func toRange(resname string, chi float64) float64 {
	r := specialRange[resname]
	chi = chem.WrapDegrees(chi)
	if r[1]-r[0] <= 180 && chi < r[0] {
		chi += 180
	}
	return chi
}

//LogProb returns the log of the probability of the rotamer rot (an index as returned by Sample
//or Assign) for the residue type and backbone dihedrals. For non-rotameric residues, the
//log probability of the bin of the terminal chi is added.
func (L *Library) LogProb(resname string, phi, psi float64, rot int, chis []float64) (float64, error) {
	entries, err := L.Entries(resname, phi, psi)
	if err != nil {
		return math.NaN(), err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if rot < 0 || rot >= len(entries) {
		return math.NaN(), chem.NewError(fmt.Sprintf("%s: rotamer %d of %d", chem.ErrOutOfRange, rot, len(entries)), false, "Library.LogProb")
	}
	e := entries[rot]
	var tot float64
	for _, v := range entries {
		tot += v.Prob
	}
	ret := math.Log(e.Prob / tot)
	if e.term != nil {
		if len(chis) < chem.ChiCount(resname) {
			return math.NaN(), chem.NewError(fmt.Sprintf("%d chis given for %s", len(chis), resname), false, "Library.LogProb")
		}
		ret += math.Log(e.term.Probability(e.term.Bin(toRange(resname, chis[len(chis)-1]))))
	}
	return ret, nil
}

//residueChis returns the defined chis of the residue i of C, and false if some is missing.
func residueChis(C *chem.Chain, i int) ([]float64, bool) {
	chis := make([]float64, C.NChi(i))
	for k := range chis {
		var ok bool
		if chis[k], ok = C.Chi(i, k); !ok {
			return nil, false
		}
	}
	return chis, true
}

//LogDensity returns the sum of the log probabilities of the side chains of residues first to
//last of C, each assigned to its closest rotamer. Residues without chis, with missing side chain
//atoms, or without a defined phi or psi, don't contribute.
func (L *Library) LogDensity(C *chem.Chain, first, last int) (float64, error) {
	if first < 0 || last >= C.Len() || last < first {
		return math.NaN(), chem.NewError(fmt.Sprintf("%s: residues %d to %d of a %d residue chain", chem.ErrOutOfRange, first, last, C.Len()), true, "Library.LogDensity")
	}
	var ret float64
	for i := first; i <= last; i++ {
		name := C.Residue(i).Name
		phi, phiOK := C.Phi(i)
		psi, psiOK := C.Psi(i)
		chis, chiOK := residueChis(C, i)
		if !phiOK || !psiOK || !chiOK || len(chis) == 0 {
			continue
		}
		rot, err := L.Assign(name, phi, psi, chis)
		if err != nil {
			return math.NaN(), chem.ErrDecorate(err, "Library.LogDensity")
		}
		lp, err := L.LogProb(name, phi, psi, rot, chis)
		if err != nil {
			return math.NaN(), chem.ErrDecorate(err, "Library.LogDensity")
		}
		ret += lp
	}
	return ret, nil
}

//Resample draws new chis for the ith residue of the view (a view-local index), given its current
//backbone dihedrals, and sets them. Residues for which LogDensity gives no contribution are left unchanged.
func (L *Library) Resample(V *chem.View, i int, rnd *rand.Rand) error {
	C := V.Chain()
	g := V.Global(i)
	phi, phiOK := C.Phi(g)
	psi, psiOK := C.Psi(g)
	if _, ok := residueChis(C, g); !ok || !phiOK || !psiOK {
		return nil
	}
	chis, _, err := L.Sample(V.Residue(i).Name, phi, psi, rnd)
	if err != nil {
		return chem.ErrDecorate(err, "Library.Resample")
	}
	for k, c := range chis {
		if err := V.SetChi(i, k, c); err != nil {
			return chem.ErrDecorate(err, "Library.Resample")
		}
	}
	return nil
}

//UntrainedError is returned when the library has no entries for a residue type and backbone
//conformation. As the library is checked against the chain before sampling, this
//error signals a broken invariant, and is critical.
type UntrainedError struct {
	Residue  string
	Phi, Psi float64
	deco     []string
}

func (e UntrainedError) Error() string {
	msg := fmt.Sprintf("No rotamers for %s with phi %.1f psi %.1f", e.Residue, e.Phi, e.Psi)
	if len(e.deco) == 0 {
		return msg
	}
	return strings.Join(e.deco, ": ") + ": " + msg
}

//Decorate adds dec to the decoration slice and returns the result.
func (e UntrainedError) Decorate(dec string) []string {
	if dec != "" {
		e.deco = append(e.deco, dec)
	}
	return e.deco
}

//Critical always returns true.
func (e UntrainedError) Critical() bool { return true }

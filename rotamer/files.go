package rotamer

import (
	"fmt"
	"strconv"
	"strings"

	chem "github.com/loopkin/slikmc"
	"github.com/rmera/scu"
)

//ReadLibrary reads a rotamer library from a text file. Lines starting with # are ignored.
//Rotamer lines have the fields:
//	RES phi psi count r1 r2 r3 r4 prob chi1 chi2 chi3 chi4 sig1 sig2 sig3 sig4
//and the terminal chi distributions of non-rotameric residues are given in lines:
//	TERM RES phi psi r1 r2 r3 r4 w1 w2 ... wn
//with n equally spaced bins over the range of the chi. A TERM line must come after the
//rotamer line it refers to. A phi or psi of * marks a backbone-independent entry.
func ReadLibrary(name string) (*Library, error) {
	fin, err := scu.NewMustReadFile(name)
	if err != nil {
		return nil, chem.NewError(fmt.Sprintf("Can't open rotamer library %s: %v", name, err), false, "ReadLibrary")
	}
	defer fin.Close()
	L := NewLibrary()
	lineno := 0
	for line := fin.Next(); line != "EOF"; line = fin.Next() {
		lineno++
		f := strings.Fields(line)
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if f[0] == "TERM" {
			err = L.parseTerm(f[1:])
		} else {
			err = L.parseRotamer(f)
		}
		if err != nil {
			return nil, chem.NewError(fmt.Sprintf("%s:%d: %v", name, lineno, err), false, "ReadLibrary")
		}
	}
	return L, nil
}

//returns the entries for the given residue and backbone, or the backbone-independent ones.
func (L *Library) bucket(res, phi, psi string) ([]*Entry, func(*Entry), error) {
	if phi == "*" || psi == "*" {
		l := L.independent[res]
		return l, func(e *Entry) { L.AddIndependent(res, e) }, nil
	}
	p, err := strconv.ParseFloat(phi, 64)
	if err != nil {
		return nil, nil, err
	}
	s, err := strconv.ParseFloat(psi, 64)
	if err != nil {
		return nil, nil, err
	}
	l := L.entries[key{res, Bucket(res, p), Bucket(res, s)}]
	return l, func(e *Entry) { L.Add(res, p, s, e) }, nil
}

func (L *Library) parseRotamer(f []string) error {
	if len(f) != 17 {
		return fmt.Errorf("rotamer line with %d fields, expected 17", len(f))
	}
	res := f[0]
	if chem.ChiCount(res) == 0 {
		return fmt.Errorf("residue %s has no chis", res)
	}
	_, add, err := L.bucket(res, f[1], f[2])
	if err != nil {
		return err
	}
	e := new(Entry)
	for k := 0; k < 4; k++ {
		if e.Rot[k], err = strconv.Atoi(f[4+k]); err != nil {
			return err
		}
		if e.Chi[k], err = strconv.ParseFloat(f[9+k], 64); err != nil {
			return err
		}
		if e.Sigma[k], err = strconv.ParseFloat(f[13+k], 64); err != nil {
			return err
		}
	}
	if e.Prob, err = strconv.ParseFloat(f[8], 64); err != nil {
		return err
	}
	if e.Prob < 0 {
		return fmt.Errorf("negative probability %f", e.Prob)
	}
	add(e)
	return nil
}

func (L *Library) parseTerm(f []string) error {
	if len(f) < 8 {
		return fmt.Errorf("TERM line with %d fields, expected at least 9", len(f)+1)
	}
	res := f[0]
	entries, _, err := L.bucket(res, f[1], f[2])
	if err != nil {
		return err
	}
	var rot [4]int
	for k := range rot {
		if rot[k], err = strconv.Atoi(f[3+k]); err != nil {
			return err
		}
	}
	w := make([]float64, len(f)-7)
	for i := range w {
		if w[i], err = strconv.ParseFloat(f[7+i], 64); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if e.Rot == rot {
			return e.SetTerm(res, w)
		}
	}
	return fmt.Errorf("no rotamer %v for the TERM line", rot)
}

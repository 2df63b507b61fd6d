package rotamer

import chem "github.com/loopkin/slikmc"

type state struct {
	chi, p float64
}

var (
	chi1States  = []state{{62, 0.15}, {180, 0.33}, {-65, 0.52}}
	valStates   = []state{{63, 0.08}, {175, 0.72}, {-60, 0.20}}
	innerStates = []state{{65, 0.15}, {180, 0.70}, {-65, 0.15}}
)

//Number of bins of the flat terminal chi distributions of the built-in library.
const termBins = 36

//Sigma of all the chis of the built-in library, in degrees.
const builtinSigma = 10.0

//BackboneIndependent returns a coarse backbone-independent library, with the usual three staggered
//states for each rotameric chi, and flat distributions for the terminal chis of non-rotameric
//residues. It covers all residue types with chis.
func BackboneIndependent() *Library {
	L := NewLibrary()
	for _, res := range []string{"ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "HIS", "ILE", "LEU", "LYS", "MET", "PHE", "SER", "THR", "TRP", "TYR", "VAL"} {
		n := chem.ChiCount(res)
		rotameric := n
		if Special(res) {
			rotameric--
		}
		var build func(k int, e Entry)
		build = func(k int, e Entry) {
			if k == rotameric {
				ne := e
				if Special(res) {
					w := make([]float64, termBins)
					for i := range w {
						w[i] = 1
					}
					ne.SetTerm(res, w)
				}
				L.AddIndependent(res, &ne)
				return
			}
			states := innerStates
			if k == 0 {
				states = chi1States
				if res == "VAL" {
					states = valStates
				}
			}
			for i, s := range states {
				ne := e
				ne.Rot[k] = i + 1
				ne.Chi[k] = s.chi
				ne.Sigma[k] = builtinSigma
				ne.Prob *= s.p
				build(k+1, ne)
			}
		}
		build(0, Entry{Prob: 1})
	}
	return L
}

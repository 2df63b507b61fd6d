package prior

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/loopkin/slikmc"
	"golang.org/x/exp/rand"
)

func peptide(Te *testing.T) *chem.Chain {
	C, err := chem.BuildPeptide([]string{"ALA", "GLY", "SER", "PRO", "LEU"}, []float64{-60, 80, -120, -65, -70}, []float64{-45, 20, 130, 145, -40})
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

func TestRamachandran(Te *testing.T) {
	R := NewRamachandran()
	alpha := R.LogDensityAngles("ALA", -63, -43, true, true)
	forbidden := R.LogDensityAngles("ALA", 60, -120, true, true)
	if alpha <= forbidden {
		Te.Errorf("The alpha region (%f) should be more likely than (60,-120) (%f)", alpha, forbidden)
	}
	if math.IsInf(forbidden, 0) {
		Te.Error("No conformation should have zero density")
	}
	//glycine is symmetric, other residues aren't.
	if g := R.LogDensityAngles("GLY", 75, 33, true, true); math.Abs(g-R.LogDensityAngles("GLY", -75, -33, true, true)) > 1e-9 {
		Te.Error("The glycine distribution is not symmetric")
	}
	if R.LogDensityAngles("ALA", 0, 0, false, false) != 0 {
		Te.Error("A residue with no defined angles should contribute nothing")
	}
	C := peptide(Te)
	//the first residue has no phi, so only its psi counts
	phi0, ok := C.Phi(0)
	if ok || !math.IsNaN(phi0) {
		Te.Errorf("The phi of the first residue should be undefined, got %f", phi0)
	}
	psi0, _ := C.Psi(0)
	got, err := R.LogDensity(C, 0, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if exp := R.Grid("ALA").MarginalY().LogDensity(psi0); math.Abs(got-exp) > 1e-12 {
		Te.Errorf("Expected the marginal psi density %f, got %f", exp, got)
	}
	all, err := R.LogDensity(C, 0, C.Len()-1)
	if err != nil || math.IsNaN(all) || math.IsInf(all, 0) {
		Te.Errorf("Bad density for the whole chain: %f, %v", all, err)
	}
	if _, err := R.LogDensity(C, 2, 9); err == nil {
		Te.Error("Out of range residues were accepted")
	}
	rnd := rand.New(rand.NewSource(3))
	var inalpha int
	for i := 0; i < 1000; i++ {
		phi, psi := R.Sample("ALA", rnd)
		if phi < 0 && psi > -100 && psi < 20 {
			inalpha++
		}
	}
	if inalpha < 300 {
		Te.Errorf("Only %d samples of 1000 in the alpha region", inalpha)
	}
}

func TestRamachandranFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "rama.dat")
	data := "# RES phi psi count\nALA -65 -45 90\nALA -115 125 10\n* -65 -45 1\n"
	if err := os.WriteFile(name, []byte(data), 0644); err != nil {
		Te.Fatal(err)
	}
	R, err := RamachandranFromFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	a := R.LogDensityAngles("ALA", -65, -45, true, true)
	b := R.LogDensityAngles("ALA", -115, 125, true, true)
	if math.Abs(a-b-math.Log(9.0/1.0)) > 0.01 {
		Te.Errorf("Expected a log density ratio close to log(9), got %f", a-b)
	}
	if R.Grid("LEU") != R.grids[General] {
		Te.Error("Residues without a distribution of their own should use the general one")
	}
	if R.Grid("GLY") == R.grids[General] {
		Te.Error("Glycine is not in the file, it should keep the built-in distribution")
	}
	bad := filepath.Join(Te.TempDir(), "bad.dat")
	os.WriteFile(bad, []byte("ALA -65 x 3\n"), 0644)
	if _, err := RamachandranFromFile(bad); err == nil {
		Te.Error("A malformed file was accepted")
	}
}

func TestBFactor(Te *testing.T) {
	C := peptide(Te)
	for i := 0; i < C.NAtoms(); i++ {
		C.Atom(i).Bfactor = 20
	}
	B := NewBFactor(C)
	ref, err := B.LogDensity(C, 1, 3)
	if err != nil {
		Te.Fatal(err)
	}
	C.Top().Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(1), Dir: chem.Forward, Degrees: 20})
	moved, err := B.LogDensity(C, 1, 3)
	if err != nil {
		Te.Fatal(err)
	}
	if moved >= ref {
		Te.Errorf("Moving atoms away from their reference should lower the density: %f >= %f", moved, ref)
	}
	first, _ := B.LogDensity(C, 0, 0)
	n := float64(C.Residue(0).Len())
	s2 := 20 / (8 * math.Pi * math.Pi)
	if math.Abs(first-n*(-1.5*math.Log(2*math.Pi*s2))) > 1e-9 {
		Te.Errorf("Unmoved atoms should be at the maximum density, got %f", first)
	}
}

func TestCustom(Te *testing.T) {
	C := peptide(Te)
	ca0, _ := C.AtomPosition(0, chem.BbCA)
	ca4, _ := C.AtomPosition(4, chem.BbCA)
	d := math.Sqrt((ca0.X-ca4.X)*(ca0.X-ca4.X) + (ca0.Y-ca4.Y)*(ca0.Y-ca4.Y) + (ca0.Z-ca4.Z)*(ca0.Z-ca4.Z))
	var P Custom = &DistanceRestraint{Res1: 0, Name1: chem.BbCA, Res2: 4, Name2: chem.BbCA, Target: d + 3, Tolerance: 1, K: 2}
	v, err := P.Evaluate(C)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(v-(-4)) > 1e-9 {
		Te.Errorf("Expected -4, got %f", v)
	}
	P = &DistanceRestraint{Res1: 0, Name1: chem.BbCA, Res2: 4, Name2: chem.BbCA, Target: d, Tolerance: 0.5, K: 2}
	if v, _ := P.Evaluate(C); v != 0 {
		Te.Errorf("A satisfied restraint should give 0, got %f", v)
	}
	P = &DistanceRestraint{Res1: 0, Name1: "XX", Res2: 4, Name2: chem.BbCA}
	if _, err := P.Evaluate(C); err == nil {
		Te.Error("A missing atom was accepted")
	}
	P = CustomFunc(func(C *chem.Chain) (float64, error) { return -1, nil })
	if v, _ := P.Evaluate(C); v != -1 {
		Te.Error("CustomFunc doesn't call the function")
	}
}

func TestPreProline(Te *testing.T) {
	R := NewRamachandran()
	C := peptide(Te)
	if k := R.Key(C, 2); k != PrePro {
		Te.Errorf("SER before PRO should use the %s distribution, got %s", PrePro, k)
	}
	for i, want := range map[int]string{0: "ALA", 1: "GLY", 3: "PRO", 4: "LEU"} {
		if k := R.Key(C, i); k != want {
			Te.Errorf("Residue %d: expected key %s, got %s", i, want, k)
		}
	}
	//alpha is depleted before a proline.
	if R.LogDensityAngles(PrePro, -63, -43, true, true) >= R.LogDensityAngles("SER", -63, -43, true, true) {
		Te.Error("The alpha region should be less likely before a proline")
	}
	zeta := R.LogDensityAngles(PrePro, -140, 75, true, true)
	if zeta <= R.LogDensityAngles("SER", -140, 75, true, true) {
		Te.Error("The zeta region should be more likely before a proline")
	}
}

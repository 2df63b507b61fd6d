package align

import (
	"math"
	"path/filepath"
	"testing"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/traj/stf"
	v3 "github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

func peptide(Te *testing.T) *chem.Chain {
	seq := []string{"ALA", "ALA", "GLY", "ALA", "SER", "ALA", "ALA"}
	phi := []float64{-65, -65, -80, -120, -65, -70, -120}
	psi := []float64{-40, -40, 150, 130, -40, 140, 130}
	C, err := chem.BuildPeptide(seq, phi, psi)
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

//moved returns the coordinates of C rotated by angle radians around an arbitrary axis and translated.
func moved(C *chem.Chain, angle float64) *v3.Matrix {
	ret := v3.Zeros(C.NAtoms())
	rot, _ := chem.NewRotator(r3.Vec{X: 1, Y: -2, Z: 0.5}, r3.Vec{X: 2, Y: 1, Z: 3}, angle)
	shift := r3.Vec{X: 3, Y: -7, Z: 12}
	for i := 0; i < C.NAtoms(); i++ {
		ret.SetVec(i, r3.Add(rot.Rotate(C.Position(i)), shift))
	}
	return ret
}

func TestSuper(Te *testing.T) {
	C := peptide(Te)
	M := moved(C, 1.1)
	if r, _ := RMSD(M, C.Coords(), nil); r < 1 {
		Te.Fatalf("The test coordinates were not moved (RMSD %f)", r)
	}
	S, err := Super(M, C.Coords(), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if r, _ := RMSD(S, C.Coords(), nil); r > 1e-8 {
		Te.Errorf("RMSD after superposition %g", r)
	}
	if _, err := Super(M, C.Coords(), []int{0, 1}); err == nil {
		Te.Error("A superposition on 2 atoms was accepted")
	}
	//mirror images can't be superimposed without a reflection.
	mirror := v3.Zeros(C.NAtoms())
	for i := 0; i < C.NAtoms(); i++ {
		p := C.Position(i)
		p.X = -p.X
		mirror.SetVec(i, p)
	}
	S, err = Super(mirror, C.Coords(), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if r, _ := RMSD(S, C.Coords(), nil); r < 0.1 {
		Te.Errorf("A mirror image was superimposed with RMSD %f", r)
	}
}

func TestMostRigid(Te *testing.T) {
	C := peptide(Te)
	ref := v3.Zeros(C.NAtoms())
	ref.Copy(C.Coords())
	name := filepath.Join(Te.TempDir(), "lovo.stf")
	W, err := stf.NewWriter(name, C.NAtoms(), nil)
	if err != nil {
		Te.Fatal(err)
	}
	//only the residues after the psi of residue 4 move: psi4 takes the values 0, 60, -60, 90 and -90
	//relative to the reference.
	for f, deg := range []float64{0, 60, -120, 150, -180} {
		C.Top().Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(4), Dir: chem.Forward, Degrees: deg})
		if err := W.WNext(moved(C, 0.3*float64(f))); err != nil {
			Te.Fatal(err)
		}
	}
	W.Close()
	o := DefaultOptions()
	o.LessThanRMSD(0.5)
	L, err := MostRigid(C, ref, name, o)
	if err != nil {
		Te.Fatal(err)
	}
	if L.Frames != 5 {
		Te.Errorf("Expected 5 frames, got %d", L.Frames)
	}
	rigid := make(map[int]bool)
	for _, r := range L.Residues {
		rigid[r] = true
	}
	for r := 0; r <= 4; r++ {
		if !rigid[r] {
			Te.Errorf("Residue %d should be rigid: %v (RMSD %v)", r, L, L.RMSD)
		}
	}
	if rigid[6] {
		Te.Errorf("The last residue moves: %v (RMSD %v)", L, L.RMSD)
	}
	for r := 0; r <= 3; r++ {
		if L.RMSD[r] > 0.5 || math.IsNaN(L.RMSD[r]) {
			Te.Errorf("Residue %d has RMSD %f after superimposing on the rigid part", r, L.RMSD[r])
		}
	}
}

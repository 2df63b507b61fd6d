package metric

import (
	"math"
	"testing"

	chem "github.com/loopkin/slikmc"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func block(Te *testing.T, phi, psi []float64) *chem.Chain {
	seq := make([]string, len(phi))
	for i := range seq {
		seq[i] = "ALA"
	}
	C, err := chem.BuildPeptide(seq, phi, psi)
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

//The linear part of each column must match the displacement of the anchor under a small rotation.
func TestJacobianFiniteDifferences(Te *testing.T) {
	C := block(Te, []float64{-65, -120, -70, -100, -60, -80}, []float64{-40, 130, -30, 140, -45, 150})
	anchor, _ := C.AtomPosition(4, chem.BbC)
	J, err := Jacobian(C, 1, anchor)
	if err != nil {
		Te.Fatal(err)
	}
	const delta = 1e-5
	ci := C.Residue(4).Atom(chem.BbC)
	for j := 0; j < NDOF; j++ {
		m := chem.Move{Kind: chem.Backbone, DOF: chem.PhiDOF(1 + j/2), Dir: chem.Forward, Degrees: delta * chem.Rad2Deg}
		if j%2 == 1 {
			m.DOF = chem.PsiDOF(1 + j/2)
		}
		before := C.Position(ci)
		if err := C.Top().Rotate(m); err != nil {
			Te.Fatal(err)
		}
		d := r3.Scale(1/delta, r3.Sub(C.Position(ci), before))
		C.Top().Rotate(m.Inverse())
		col := r3.Vec{X: J.At(0, j), Y: J.At(1, j), Z: J.At(2, j)}
		if r3.Norm(r3.Sub(d, col)) > 1e-4 {
			Te.Errorf("Column %d: analytic %v, numerical %v", j, col, d)
		}
	}
}

func TestTensorAnchorIndependent(Te *testing.T) {
	C := block(Te, []float64{-65, -120, -70, -100, -60}, []float64{-40, 130, -30, 140, -45})
	var dets []float64
	for _, name := range []string{chem.BbCA, chem.BbC, chem.BbO} {
		anchor, _ := C.AtomPosition(3, name)
		J, err := Jacobian(C, 0, anchor)
		if err != nil {
			Te.Fatal(err)
		}
		t := FromJacobian(J)
		if t.Singular {
			Te.Fatalf("Unexpected singular tensor with the anchor at %s", name)
		}
		if t.Det < 1 {
			Te.Errorf("det(I+S^TS) must be at least 1, got %f", t.Det)
		}
		dets = append(dets, t.LogDet)
	}
	for _, d := range dets[1:] {
		if math.Abs(d-dets[0]) > 1e-8 {
			Te.Errorf("The tensor depends on the anchor: %v", dets)
		}
	}
	t, err := Compute(C, 0)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(t.LogDet-dets[0]) > 1e-8 {
		Te.Errorf("Compute gave %f, expected %f", t.LogDet, dets[0])
	}
}

func TestSingular(Te *testing.T) {
	J := mat.NewDense(6, NDOF, nil)
	for i := 0; i < 6; i++ {
		J.Set(i, 0, 1)
		J.Set(i, 1, float64(i))
	}
	//the determined columns only span one direction
	for j := NFree; j < NDOF; j++ {
		J.Set(0, j, float64(j))
	}
	t := FromJacobian(J)
	if !t.Singular {
		Te.Fatal("A rank-deficient Jacobian should give a singular tensor")
	}
	if !math.IsNaN(LogQ(0, 2, t)) {
		Te.Error("The proposal density of a singular tensor must be NaN")
	}
}

func TestLogQ(Te *testing.T) {
	t := Tensor{Det: math.E * math.E, LogDet: 2}
	if q := LogQ(-1.5, 4, t); math.Abs(q-(-1.5-math.Log(4)-1)) > 1e-12 {
		Te.Errorf("Wrong log proposal density %f", q)
	}
	if !math.IsNaN(LogQ(0, 0, t)) {
		Te.Error("No closures must give NaN")
	}
	C := block(Te, []float64{-65, -120, -70}, []float64{-40, 130, -30})
	if _, err := Compute(C, 0); err == nil {
		Te.Error("A three residue chain has no four residue block")
	}
}

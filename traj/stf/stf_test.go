package stf

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	chem "github.com/loopkin/slikmc"
	v3 "github.com/loopkin/slikmc/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ chem.Traj = (*StfR)(nil)
var _ chem.TrajWriter = (*StfW)(nil)

func TestSTFWriteRead(Te *testing.T) {
	C, err := chem.BuildPeptide([]string{"ALA", "GLY", "SER", "ALA"}, []float64{-60, -70, -120, -65}, []float64{-40, 140, 130, -35})
	if err != nil {
		Te.Fatal(err)
	}
	name := filepath.Join(Te.TempDir(), "run.stf")
	W, err := NewWriter(name, C.NAtoms(), map[string]string{"run": "test", "seq": C.Sequence()})
	if err != nil {
		Te.Fatal(err)
	}
	var frames []*v3.Matrix
	for f := 0; f < 3; f++ {
		if f > 0 {
			C.Top().Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(1), Dir: chem.Forward, Degrees: 15})
		}
		c := v3.Zeros(C.NAtoms())
		c.Copy(C.Coords())
		frames = append(frames, c)
		if err := W.WNext(C.Coords()); err != nil {
			Te.Fatal(err)
		}
	}
	if err := W.WNext(v3.Zeros(2)); err == nil {
		Te.Error("A frame with the wrong number of atoms was written")
	}
	W.Close()
	R, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	if header["run"] != "test" || header["seq"] != C.Sequence() || header["prec"] != "2" {
		Te.Errorf("Wrong header %v", header)
	}
	if R.Len() != C.NAtoms() {
		Te.Fatalf("Expected %d atoms, got %d", C.NAtoms(), R.Len())
	}
	read := v3.Zeros(R.Len())
	for f := 0; ; f++ {
		err := R.Next(read)
		if err != nil {
			var last chem.LastFrameError
			if !errors.As(err, &last) {
				Te.Fatal(err)
			}
			if f != 3 {
				Te.Errorf("Read %d frames, expected 3", f)
			}
			break
		}
		for i := 0; i < R.Len(); i++ {
			if d := r3.Norm(r3.Sub(read.Vec(i), frames[f].Vec(i))); d > 0.01 || math.IsNaN(d) {
				Te.Fatalf("Frame %d atom %d is %f A off", f, i, d)
			}
		}
	}
	if R.Readable() {
		Te.Error("The trajectory should be closed after the last frame")
	}
}

func TestSTFBadPrecision(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "bad.stf")
	if _, err := NewWriter(name, 3, map[string]string{"prec": "-1"}); err == nil {
		Te.Error("A negative precision was accepted")
	}
	if _, _, err := New(filepath.Join(Te.TempDir(), "missing.stf")); err == nil {
		Te.Error("A missing file was opened")
	}
}

package ik

import (
	"math"

	chem "github.com/loopkin/slikmc"
	"gonum.org/v1/gonum/spatial/r3"
)

//CCD closes the window approximately, by cyclic coordinate descent on its six backbone
//dihedrals. It returns the rotations to apply, and the RMSD of the CA, C and O atoms of the last
//residue from their goals after the rotations. The chain is not modified.
//Unlike FindClosures, CCD returns a single closure, which depends on the starting geometry.
func CCD(C *chem.Chain, window [3]int, goals Goals, maxiter int, tol float64) ([]chem.Move, float64, error) {
	bb, err := readBackbone(C, window)
	if err != nil {
		return nil, math.NaN(), chem.ErrDecorate(err, "CCD")
	}
	p := bb.p
	g := [3]r3.Vec{goals.CA, goals.C, goals.O}
	axes := [6][2]int{{iN1, iA1}, {iA1, iC1}, {iN2, iA2}, {iA2, iC2}, {iN3, iA3}, {iA3, iC3}}
	var total [6]float64
	rmsd := ccdRMSD(&p, g)
	for it := 0; it < maxiter && rmsd > tol; it++ {
		for k, ax := range axes {
			axis := r3.Unit(r3.Sub(p[ax[1]], p[ax[0]]))
			var num, den float64
			for i := iA3; i <= iO3; i++ {
				if i <= ax[1] {
					continue //on the axis or upstream
				}
				r := perp(r3.Sub(p[i], p[ax[1]]), axis)
				f := perp(r3.Sub(g[i-iA3], p[ax[1]]), axis)
				num += r3.Dot(axis, r3.Cross(r, f))
				den += r3.Dot(r, f)
			}
			ang := math.Atan2(num, den)
			if ang == 0 || math.IsNaN(ang) {
				continue
			}
			rot, ok := chem.NewRotator(p[ax[0]], p[ax[1]], ang)
			if !ok {
				continue
			}
			for i := ax[1] + 1; i < nbb; i++ {
				p[i] = rot.Rotate(p[i])
			}
			total[k] += ang
		}
		rmsd = ccdRMSD(&p, g)
	}
	moves := make([]chem.Move, 6)
	for k := range moves {
		dof := chem.PhiDOF(window[k/2])
		if k%2 == 1 {
			dof = chem.PsiDOF(window[k/2])
		}
		moves[k] = chem.Move{Kind: chem.Backbone, DOF: dof, Dir: chem.Forward, Degrees: chem.WrapDegrees(total[k] * chem.Rad2Deg)}
	}
	return moves, rmsd, nil
}

func perp(v, axis r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, axis), axis))
}

func ccdRMSD(p *[nbb]r3.Vec, g [3]r3.Vec) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		d := r3.Sub(p[iA3+i], g[i])
		sum += r3.Dot(d, d)
	}
	return math.Sqrt(sum / 3)
}

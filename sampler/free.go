package sampler

import (
	"fmt"

	chem "github.com/loopkin/slikmc"
	"gonum.org/v1/gonum/stat/distuv"
)

//FreeChain samples the backbone of the residues of V with single dihedral Gaussian moves and no
//closure, for the given number of steps, using the priors, collision checks and acceptance test of
//the block sampler. V must contain one end of the chain, which is the end that moves.
//It returns the number of accepted moves.
func (S *Sampler) FreeChain(V *chem.View, steps int) (int, error) {
	C := S.chain
	if V.Chain() != C {
		return 0, chem.NewError("The view belongs to another chain", false, "FreeChain")
	}
	first, last := V.TopLevel()
	dir := chem.Forward
	switch {
	case last == C.Len()-1:
	case first == 0:
		dir = chem.Backward
	default:
		return 0, chem.NewError(fmt.Sprintf("Residues %d to %d don't include an end of the chain", first, last), false, "FreeChain")
	}
	if err := V.Attach(); err != nil {
		return 0, chem.ErrDecorate(err, "FreeChain")
	}
	defer V.Detach()
	P, err := S.LogP(V)
	if err != nil {
		return 0, chem.ErrDecorate(err, "FreeChain")
	}
	n := distuv.Normal{Mu: 0, Sigma: S.o.proposalSigma, Src: S.rnd}
	accepted := 0
	for i := 0; i < steps; i++ {
		res := V.Global(S.rnd.Intn(V.Len()))
		m := chem.Move{Kind: chem.Backbone, DOF: chem.PhiDOF(res), Dir: dir, Degrees: n.Rand()}
		if S.rnd.Intn(2) == 1 {
			m.DOF = chem.PsiDOF(res)
		}
		if _, ok := C.DOFValue(m.Kind, m.DOF); !ok {
			continue //terminal phi or psi
		}
		saved := V.Save()
		if err := V.Rotate(m); err != nil {
			return accepted, chem.ErrDecorate(err, "FreeChain")
		}
		Pp, err := S.LogP(V)
		if err != nil {
			return accepted, chem.ErrDecorate(err, "FreeChain")
		}
		if !MetropolisHastings(P, 0, Pp, 0, S.rnd) {
			if err := S.restore(V, saved); err != nil {
				return accepted, chem.ErrDecorate(err, "FreeChain")
			}
			continue
		}
		if err := C.Commit(); err != nil {
			return accepted, chem.ErrDecorate(err, "FreeChain")
		}
		if S.o.collision {
			hit, err := S.d.Oracle.InAnyCollision(V)
			if err != nil {
				return accepted, chem.ErrDecorate(err, "FreeChain")
			}
			if hit {
				if err := S.restore(V, saved); err != nil {
					return accepted, chem.ErrDecorate(err, "FreeChain")
				}
				continue
			}
		}
		P = Pp
		accepted++
	}
	return accepted, nil
}

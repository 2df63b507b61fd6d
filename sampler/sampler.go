/*
 * sampler.go, part of slikmc.
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

//Package sampler implements SLIKMC: a blocked Gibbs / Metropolis-Hastings sampler of protein backbone
//conformations. The chain is divided in overlapping four residue blocks. For each block, the
//phi and psi dihedrals of the first residue are proposed, and the other six dihedrals are set by
//exact closure, so the rest of the chain doesn't move. The proposal density includes the metric
//tensor correction for the closure.
package sampler

import (
	"fmt"
	"log"
	"math"
	"time"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/clash"
	"github.com/loopkin/slikmc/ik"
	"github.com/loopkin/slikmc/metric"
	"github.com/loopkin/slikmc/prior"
	"github.com/loopkin/slikmc/rotamer"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//Oracle tells whether a part of a chain collides with the rest of it.
type Oracle interface {
	InAnyCollision(V *chem.View) (bool, error)
}

//Data holds the collaborators of a sampler. The fields required by the options
//that are nil are replaced by the defaults: the built-in Ramachandran prior, a B-factor prior
//built from the starting chain, the built-in rotamer library, and a collision grid.
type Data struct {
	Rama     *prior.Ramachandran
	BFactor  *prior.BFactor
	Rotamers *rotamer.Library
	Custom   []prior.Custom //always used, evaluated on the whole chain
	Oracle   Oracle
}

//Blocks returns the N-3 overlapping four residue blocks of an N residue chain, as
//sub-views of the top view of the chain. Block i covers residues i to i+3.
func Blocks(C *chem.Chain) ([]*chem.View, error) {
	if C.Len() < 4 {
		return nil, chem.NewError(fmt.Sprintf("A %d residue chain has no 4 residue blocks", C.Len()), false, "Blocks")
	}
	ret := make([]*chem.View, C.Len()-3)
	for i := range ret {
		v, err := C.Top().Sub(i, i+3)
		if err != nil {
			return nil, chem.ErrDecorate(err, "Blocks")
		}
		ret[i] = v
	}
	return ret, nil
}

//SnapshotFunc is called by Run with the number of iterations done and the chain.
type SnapshotFunc func(iteration int, C *chem.Chain) error

//Sampler samples the conformations of a chain. It is not safe for concurrent use.
type Sampler struct {
	chain       *chem.Chain
	o           Options
	rnd         *rand.Rand
	blocks      []*chem.View
	first, last int //first and last blocks sampled
	solver      *ik.Solver
	d           Data
	tensor      func(C *chem.Chain, first int) (metric.Tensor, error)
	stats       *Stats
	trace       []Decision
	iteration   int
}

//New returns a sampler for the chain C, with a copy of the options o (the defaults if nil) and the
//collaborators in data, if given. All random numbers are drawn from rnd.
func New(C *chem.Chain, o *Options, rnd *rand.Rand, data ...Data) (*Sampler, error) {
	if C == nil || rnd == nil {
		return nil, chem.NewError(chem.ErrNilData, false, "sampler.New")
	}
	if o == nil {
		o = DefaultOptions()
	}
	S := &Sampler{chain: C, o: *o, rnd: rnd, solver: ik.NewSolver(), tensor: metric.Compute}
	var err error
	if S.blocks, err = Blocks(C); err != nil {
		return nil, chem.ErrDecorate(err, "sampler.New")
	}
	start, end := S.o.Range()
	if end < 0 || end >= C.Len() {
		end = C.Len() - 1
	}
	if start > end-3 {
		return nil, chem.NewError(fmt.Sprintf("The range %d-%d contains no complete block", start, end), false, "sampler.New")
	}
	S.first, S.last = start, end-3
	if len(data) > 0 {
		S.d = data[0]
		S.d.Custom = append([]prior.Custom(nil), data[0].Custom...)
	}
	if S.o.rama && S.d.Rama == nil {
		S.d.Rama = prior.NewRamachandran()
	}
	if S.o.bfactor && S.d.BFactor == nil {
		S.d.BFactor = prior.NewBFactor(C)
	}
	if S.o.sidechains {
		if S.d.Rotamers == nil {
			S.d.Rotamers = rotamer.BackboneIndependent()
		}
		if err := S.d.Rotamers.Check(C); err != nil {
			return nil, chem.ErrDecorate(err, "sampler.New")
		}
	}
	if S.o.collision && S.d.Oracle == nil {
		G, err := clash.NewGrid(C)
		if err != nil {
			return nil, chem.ErrDecorate(err, "sampler.New")
		}
		S.d.Oracle = G
	}
	if err := C.Commit(); err != nil {
		return nil, chem.ErrDecorate(err, "sampler.New")
	}
	S.stats = newStats(len(S.blocks))
	return S, nil
}

//Chain returns the chain being sampled.
func (S *Sampler) Chain() *chem.Chain { return S.chain }

//Blocks returns the blocks of the chain, including those out of the sampled range.
func (S *Sampler) Blocks() []*chem.View { return S.blocks }

//Options returns a copy of the options of the sampler.
func (S *Sampler) Options() *Options {
	o := S.o
	return &o
}

//Stats returns a copy of the current counters.
func (S *Sampler) Stats() *Stats { return S.stats.Copy() }

//Trace returns the decisions recorded so far, if tracing is on.
func (S *Sampler) Trace() []Decision { return append([]Decision(nil), S.trace...) }

func (S *Sampler) logf(level int, format string, v ...interface{}) {
	if S.o.verbose >= level {
		log.Printf("slikmc/sampler: "+format, v...)
	}
}

//LogP returns the log of the target density for the residues of V: the sum of the enabled
//priors over those residues, plus the custom priors, which are evaluated on the whole chain.
func (S *Sampler) LogP(V *chem.View) (float64, error) {
	first, last := V.TopLevel()
	evals := make([]prior.Evaluator, 0, 3)
	if S.o.rama {
		evals = append(evals, S.d.Rama)
	}
	if S.o.bfactor {
		evals = append(evals, S.d.BFactor)
	}
	if S.o.sidechains {
		evals = append(evals, S.d.Rotamers)
	}
	var ret float64
	for _, e := range evals {
		v, err := e.LogDensity(S.chain, first, last)
		if err != nil {
			return math.NaN(), chem.ErrDecorate(err, "LogP")
		}
		ret += v
	}
	for _, c := range S.d.Custom {
		v, err := c.Evaluate(S.chain)
		if err != nil {
			return math.NaN(), chem.ErrDecorate(err, "LogP")
		}
		ret += v
	}
	return ret, nil
}

//logQ returns the log proposal density of the current conformation of the block that starts at
//residue first, given the number of closures, and false if the metric tensor is singular.
func (S *Sampler) logQ(first, nsol int) (float64, bool, error) {
	t, err := S.tensor(S.chain, first)
	if err != nil {
		return math.NaN(), false, chem.ErrDecorate(err, "logQ")
	}
	if t.Singular {
		return math.NaN(), false, nil
	}
	var lp float64
	phi, phiOK := S.chain.Phi(first)
	if S.o.rama && phiOK {
		psi, psiOK := S.chain.Psi(first)
		lp = S.d.Rama.LogDensityAngles(S.d.Rama.Key(S.chain, first), phi, psi, phiOK, psiOK)
	}
	return metric.LogQ(lp, nsol, t), true, nil
}

//propose changes the phi and psi of the first residue of the block. They are drawn from the
//Ramachandran prior if it is on, or perturbed with Gaussian noise otherwise. If the first
//residue has no phi, both are perturbed by a bounded uniform angle.
func (S *Sampler) propose(V *chem.View) error {
	first := V.Global(0)
	phiDOF, psiDOF := chem.PhiDOF(first), chem.PsiDOF(first)
	move := func(dof int, deg float64) chem.Move {
		return chem.Move{Kind: chem.Backbone, DOF: dof, Dir: chem.Forward, Degrees: deg}
	}
	_, phiOK := S.chain.Phi(first)
	switch {
	case !phiOK:
		u := distuv.Uniform{Min: -S.o.terminusRange, Max: S.o.terminusRange, Src: S.rnd}
		return V.MultiRotate([]chem.Move{move(phiDOF, u.Rand()), move(psiDOF, u.Rand())})
	case S.o.rama:
		phi, psi := S.d.Rama.Sample(S.d.Rama.Key(S.chain, first), S.rnd)
		if err := V.SetDOF(chem.Backbone, phiDOF, chem.Forward, phi); err != nil {
			return err
		}
		return V.SetDOF(chem.Backbone, psiDOF, chem.Forward, psi)
	}
	n := distuv.Normal{Mu: 0, Sigma: S.o.proposalSigma, Src: S.rnd}
	return V.MultiRotate([]chem.Move{move(phiDOF, n.Rand()), move(psiDOF, n.Rand())})
}

//perturbEnds moves the ends of the chain, if the block is at one of them and the free-end mode is on.
//This breaks the closure at the ends of the chain only.
func (S *Sampler) perturbEnds(V *chem.View) error {
	if !S.o.freeEnd {
		return nil
	}
	first, last := V.TopLevel()
	u := distuv.Uniform{Min: -S.o.freeEndRange, Max: S.o.freeEndRange, Src: S.rnd}
	if first == 0 {
		if err := V.Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(first), Dir: chem.Backward, Degrees: u.Rand()}); err != nil {
			return err
		}
	}
	if last == S.chain.Len()-1 {
		return V.Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PhiDOF(last), Dir: chem.Forward, Degrees: u.Rand()})
	}
	return nil
}

//restore puts the block back to its saved state and commits the chain.
func (S *Sampler) restore(V *chem.View, saved *chem.State) error {
	if err := V.Restore(saved); err != nil {
		return err
	}
	return S.chain.Commit()
}

//closeProposal proposes new free dihedrals for the block and closes it, until a closure is found
//or the attempts run out. It returns the number of closures for the accepted proposal, or 0 if
//there was none, in which case the block is left in its saved state.
func (S *Sampler) closeProposal(V *chem.View, window [3]int, goals ik.Goals, saved *chem.State, bs *BlockStats) (int, error) {
	for try := 0; try < S.o.maxIKSample; try++ {
		if err := S.propose(V); err != nil {
			return 0, err
		}
		sol, n, err := S.solver.Pick(S.chain, window, goals, S.rnd)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			if err := V.MultiRotate(sol.Moves); err != nil {
				return 0, err
			}
			return n, S.perturbEnds(V)
		}
		bs.IKFailures++
		if err := V.Restore(saved); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

//sampleBlock runs the Metropolis-Hastings loop for block j. If it fails, the block is
//put back in the state it had before the call.
func (S *Sampler) sampleBlock(j int) (out Outcome, err error) {
	V := S.blocks[j]
	C := S.chain
	bs := &S.stats.Blocks[j]
	bs.Visits++
	if err := V.Attach(); err != nil {
		return Skipped, err
	}
	defer V.Detach()
	first, last := V.TopLevel()
	saved := V.Save()
	defer func() {
		if err == nil {
			return
		}
		if rerr := S.restore(V, saved); rerr != nil {
			S.logf(0, "block %d could not be restored after an error: %v", j, rerr)
		}
	}()
	window := ik.Window(first + 1)
	goals, err := ik.GoalsOf(C, last)
	if err != nil {
		return Skipped, err
	}
	self, err := S.solver.FindSelfClosures(C, window)
	if err != nil {
		if chem.IsCritical(err) {
			return Skipped, err
		}
		S.logf(2, "block %d can't be closed: %v", j, err)
		return Skipped, nil
	}
	P, err := S.LogP(V)
	if err != nil {
		return Skipped, err
	}
	//the current conformation is always one of the closures, even if the solver misses it.
	Q, ok, err := S.logQ(first, max(len(self), 1))
	if err != nil {
		return Skipped, err
	}
	if !ok {
		bs.Singular++
		return Skipped, nil
	}
	var mh, col int
	for mh < S.o.maxMetropolisReject && col < S.o.maxCollisionReject {
		n, err := S.closeProposal(V, window, goals, saved, bs)
		if err != nil {
			return Skipped, err
		}
		if n == 0 {
			bs.IKAbandoned++
			return IKAbandoned, nil
		}
		if S.o.sidechains {
			for i := 0; i < V.Len(); i++ {
				if err := S.d.Rotamers.Resample(V, i, S.rnd); err != nil {
					return Skipped, err
				}
			}
		}
		bs.Proposals++
		Pp, err := S.LogP(V)
		if err != nil {
			return Skipped, err
		}
		Qp, ok, err := S.logQ(first, n)
		if err != nil {
			return Skipped, err
		}
		if !ok || !MetropolisHastings(P, Q, Pp, Qp, S.rnd) {
			if !ok {
				bs.Singular++
			} else {
				bs.MHRejects++
			}
			mh++
			if err := S.restore(V, saved); err != nil {
				return Skipped, err
			}
			continue
		}
		if err := C.Commit(); err != nil {
			return Skipped, err
		}
		if S.o.collision {
			hit, err := S.d.Oracle.InAnyCollision(V)
			if err != nil {
				return Skipped, err
			}
			if hit {
				bs.CollisionRejects++
				col++
				if err := S.restore(V, saved); err != nil {
					return Skipped, err
				}
				continue
			}
		}
		bs.Accepted++
		return Accepted, nil
	}
	if col >= S.o.maxCollisionReject {
		return CollisionRejected, nil
	}
	return MHRejected, nil
}

//Iterate samples each block in the range once, in order. It returns true if any block changed.
func (S *Sampler) Iterate() (bool, error) {
	changed := false
	for j := S.first; j <= S.last; j++ {
		out, err := S.sampleBlock(j)
		if err != nil {
			return changed, chem.ErrDecorate(err, fmt.Sprintf("Iterate(block %d)", j))
		}
		if S.o.trace {
			S.trace = append(S.trace, Decision{Iteration: S.iteration, Block: j, Outcome: out})
		}
		S.logf(2, "iteration %d block %d: %s", S.iteration, j, out)
		if out == Accepted {
			changed = true
		}
	}
	S.iteration++
	S.stats.Conformations++
	if changed {
		S.stats.Distinct++
	}
	S.logf(1, "iteration %d done, %d distinct conformations", S.iteration, S.stats.Distinct)
	return changed, nil
}

//Run performs iterations until the given number is reached or the time budget is over. The time
//is only checked between iterations. If iterations is not positive, the sampler runs until the
//time is over. snapshot, if not nil, is called every LogEvery iterations.
func (S *Sampler) Run(iterations int, snapshot SnapshotFunc) (*Stats, error) {
	if iterations <= 0 && S.o.timeBudget <= 0 {
		return S.stats.Copy(), chem.NewError("Neither a number of iterations nor a time budget was given", false, "Sampler.Run")
	}
	start := time.Now()
	for it := 0; iterations <= 0 || it < iterations; it++ {
		if S.o.timeBudget > 0 && time.Since(start) >= S.o.timeBudget {
			S.logf(1, "time budget of %v over after %d iterations", S.o.timeBudget, it)
			break
		}
		if _, err := S.Iterate(); err != nil {
			return S.stats.Copy(), chem.ErrDecorate(err, "Sampler.Run")
		}
		if snapshot != nil && S.iteration%S.o.logEvery == 0 {
			if err := snapshot(S.iteration, S.chain); err != nil {
				return S.stats.Copy(), chem.ErrDecorate(err, "Sampler.Run")
			}
		}
	}
	return S.stats.Copy(), nil
}

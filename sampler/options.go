/*
 * options.go, part of slikmc.
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

package sampler

import "time"

//Options configures a Sampler. The sampler keeps a copy of the options it was created with,
//so changing them later has no effect on it. As in the rest of the library, each option has a
//method that returns its current value and sets a new one, if a valid one is given.
type Options struct {
	collision  bool
	rama       bool
	bfactor    bool
	sidechains bool
	freeEnd    bool

	freeEndRange  float64 //degrees
	proposalSigma float64 //degrees
	terminusRange float64 //degrees

	maxIKSample         int
	maxMetropolisReject int
	maxCollisionReject  int

	logEvery   int
	timeBudget time.Duration
	start, end int //residues, end<0 means the last residue
	verbose    int
	trace      bool
}

//DefaultOptions returns the default options: collision checking and Ramachandran
//priors on, the other terms off, and the whole chain sampled.
func DefaultOptions() *Options {
	return &Options{
		collision:           true,
		rama:                true,
		freeEndRange:        30,
		proposalSigma:       10,
		terminusRange:       30,
		maxIKSample:         100,
		maxMetropolisReject: 10,
		maxCollisionReject:  10,
		logEvery:            1,
		end:                 -1,
	}
}

func setb(dst *bool, v []bool) bool {
	ret := *dst
	if len(v) > 0 {
		*dst = v[0]
	}
	return ret
}

func setf(dst *float64, v []float64) float64 {
	ret := *dst
	if len(v) > 0 && v[0] > 0 {
		*dst = v[0]
	}
	return ret
}

func seti(dst *int, v []int) int {
	ret := *dst
	if len(v) > 0 && v[0] > 0 {
		*dst = v[0]
	}
	return ret
}

//Collision returns whether accepted proposals are checked for collisions, and sets it, if given.
func (O *Options) Collision(c ...bool) bool { return setb(&O.collision, c) }

//Rama returns whether the Ramachandran prior is used, both as a term of the target density
//and to propose backbone dihedrals, and sets it, if given.
func (O *Options) Rama(r ...bool) bool { return setb(&O.rama, r) }

//BFactor returns whether the B-factor prior is used, and sets it, if given.
func (O *Options) BFactor(b ...bool) bool { return setb(&O.bfactor, b) }

//SideChains returns whether side chains are resampled from the rotamer library after each
//backbone proposal, and the rotamer prior used, and sets it, if given.
func (O *Options) SideChains(s ...bool) bool { return setb(&O.sidechains, s) }

//FreeEnd returns whether the ends of the sampled range are allowed to move, and sets it, if given.
func (O *Options) FreeEnd(f ...bool) bool { return setb(&O.freeEnd, f) }

//Trace returns whether the sampler records every block decision, and sets it, if given.
func (O *Options) Trace(t ...bool) bool { return setb(&O.trace, t) }

//FreeEndRange returns the largest perturbation, in degrees, of the terminal dihedrals in free-end
//mode, and sets it, if a valid value is given.
func (O *Options) FreeEndRange(r ...float64) float64 { return setf(&O.freeEndRange, r) }

//ProposalSigma returns the standard deviation, in degrees, of the Gaussian perturbations of the free
//dihedrals of a block, used when the Ramachandran prior is off. It sets it, if a valid value is given.
func (O *Options) ProposalSigma(s ...float64) float64 { return setf(&O.proposalSigma, s) }

//TerminusRange returns the largest perturbation, in degrees, of the free dihedrals of a block that
//starts at the first residue of the chain, which has no phi. It sets it, if a valid value is given.
func (O *Options) TerminusRange(r ...float64) float64 { return setf(&O.terminusRange, r) }

//MaxIKSample returns the number of proposals tried for a block before giving up if none can be
//closed, and sets it, if a valid value is given.
func (O *Options) MaxIKSample(m ...int) int { return seti(&O.maxIKSample, m) }

//MaxMetropolisReject returns the number of rejections by the Metropolis-Hastings test after which
//a block is left unchanged, and sets it, if a valid value is given.
func (O *Options) MaxMetropolisReject(m ...int) int { return seti(&O.maxMetropolisReject, m) }

//MaxCollisionReject returns the number of rejections due to collisions after which a block is
//left unchanged, and sets it, if a valid value is given.
func (O *Options) MaxCollisionReject(m ...int) int { return seti(&O.maxCollisionReject, m) }

//LogEvery returns the number of iterations between snapshots, and sets it, if a valid value is given.
func (O *Options) LogEvery(l ...int) int { return seti(&O.logEvery, l) }

//Verbose returns the verbosity level, and sets it, if a valid value is given.
func (O *Options) Verbose(v ...int) int { return seti(&O.verbose, v) }

//TimeBudget returns the wall-clock time after which a run stops, and sets it, if a valid value is given.
//A zero budget means no limit.
func (O *Options) TimeBudget(t ...time.Duration) time.Duration {
	ret := O.timeBudget
	if len(t) > 0 && t[0] > 0 {
		O.timeBudget = t[0]
	}
	return ret
}

//Range returns the first and last residues sampled, and sets them, if given. Only the blocks
//completely within the range are sampled. A negative last residue means the end of the chain.
func (O *Options) Range(firstlast ...int) (int, int) {
	s, e := O.start, O.end
	if len(firstlast) > 1 && firstlast[0] >= 0 {
		O.start, O.end = firstlast[0], firstlast[1]
	}
	return s, e
}

/*
 * mh.go, part of slikmc.
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

import (
	"math"

	"golang.org/x/exp/rand"
)

//logRatio returns the log of the Metropolis-Hastings ratio, P'+Q-P-Q'.
func logRatio(P, Q, Pp, Qp float64) float64 {
	return Pp + Q - P - Qp
}

//AcceptanceProbability returns the probability of accepting a move from a state with log density P to a
//state with log density Pp, where Q is the log density of proposing the current state from the proposed one,
//and Qp that of proposing the proposed state from the current one. A NaN ratio is never accepted.
func AcceptanceProbability(P, Q, Pp, Qp float64) float64 {
	r := logRatio(P, Q, Pp, Qp)
	if math.IsNaN(r) {
		return 0
	}
	if r >= 0 {
		return 1
	}
	return math.Exp(r)
}

//MetropolisHastings returns true if the move should be accepted. See AcceptanceProbability.
//If the ratio is at least 1, the move is accepted without drawing a random number.
func MetropolisHastings(P, Q, Pp, Qp float64, rnd *rand.Rand) bool {
	r := logRatio(P, Q, Pp, Qp)
	if math.IsNaN(r) {
		return false
	}
	if r >= 0 {
		return true
	}
	return rnd.Float64() < math.Exp(r)
}

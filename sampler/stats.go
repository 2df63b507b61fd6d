/*
 * stats.go, part of slikmc.
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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

//BlockStats counts the outcomes of the proposals for one block.
type BlockStats struct {
	Visits           int //times the block was sampled
	Proposals        int //proposals that could be closed, and went to the acceptance test
	Accepted         int
	IKFailures       int //proposals that could not be closed
	IKAbandoned      int //visits ended because no proposal could be closed
	Singular         int //visits skipped and proposals rejected because of a singular metric tensor
	MHRejects        int
	CollisionRejects int
}

//AcceptanceRate returns the fraction of visits in which the block changed.
func (b BlockStats) AcceptanceRate() float64 {
	if b.Visits == 0 {
		return math.NaN()
	}
	return float64(b.Accepted) / float64(b.Visits)
}

//Stats holds the counters of a sampling run.
type Stats struct {
	Conformations int //iterations performed
	Distinct      int //iterations where at least one block changed
	Blocks        []BlockStats
}

func newStats(nblocks int) *Stats {
	return &Stats{Blocks: make([]BlockStats, nblocks)}
}

//Copy returns a deep copy of the stats.
func (s *Stats) Copy() *Stats {
	ret := *s
	ret.Blocks = append([]BlockStats(nil), s.Blocks...)
	return &ret
}

//Acceptance returns the mean and standard deviation of the acceptance rates of the
//blocks that were visited at least once.
func (s *Stats) Acceptance() (float64, float64) {
	rates := make([]float64, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		if b.Visits > 0 {
			rates = append(rates, b.AcceptanceRate())
		}
	}
	if len(rates) == 0 {
		return math.NaN(), math.NaN()
	}
	if len(rates) == 1 {
		return rates[0], 0
	}
	return stat.MeanStdDev(rates, nil)
}

//Summary returns the two main counters in the format of the summary file.
func (s *Stats) Summary() string {
	return fmt.Sprintf("stat_distinct:\t%d\nstat_conformation:\t%d\n", s.Distinct, s.Conformations)
}

func (s *Stats) String() string {
	m, sd := s.Acceptance()
	ret := []string{fmt.Sprintf("Iterations: %d, distinct: %d, acceptance: %.3f +/- %.3f", s.Conformations, s.Distinct, m, sd)}
	for i, b := range s.Blocks {
		ret = append(ret, fmt.Sprintf("block %3d: %+v", i, b))
	}
	return strings.Join(ret, "\n")
}

//Outcome is the result of sampling one block once.
type Outcome int

const (
	Accepted Outcome = iota
	MHRejected
	CollisionRejected
	IKAbandoned
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case MHRejected:
		return "rejected"
	case CollisionRejected:
		return "collision"
	case IKAbandoned:
		return "no closure"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

//Decision records the outcome of a block visit.
type Decision struct {
	Iteration int
	Block     int
	Outcome   Outcome
}

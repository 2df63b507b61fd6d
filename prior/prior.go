/*
 * prior.go, part of slikmc.
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

//Package prior implements the log probability densities that make up the target
//distribution of the sampler.
package prior

import (
	"fmt"

	chem "github.com/loopkin/slikmc"
)

//Evaluator is a log probability density of the conformation of a range of residues
//(whole-chain indexes, inclusive) of a chain.
type Evaluator interface {
	LogDensity(C *chem.Chain, first, last int) (float64, error)
}

//Custom is a user-supplied log probability density, always evaluated on the whole chain.
type Custom interface {
	Evaluate(C *chem.Chain) (float64, error)
}

//CustomFunc allows to use an ordinary function as a Custom prior.
type CustomFunc func(C *chem.Chain) (float64, error)

//Evaluate calls f(C).
func (f CustomFunc) Evaluate(C *chem.Chain) (float64, error) {
	return f(C)
}

func checkRange(C *chem.Chain, first, last int, caller string) error {
	if first < 0 || last >= C.Len() || last < first {
		return chem.NewError(fmt.Sprintf("%s: residues %d to %d of a %d residue chain", chem.ErrOutOfRange, first, last, C.Len()), true, caller)
	}
	return nil
}

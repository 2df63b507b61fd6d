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

package align

//Options contains the options for the MostRigid and MSDTraj functions
type Options struct {
	begin int
	skip  int
	//The following are ignored by the MSDTraj function
	atomNames    []string
	lessThanRMSD float64 //residues with an RMSD lower than this (A) are considered rigid
	minimumN     int     //the smallest number of rigid residues accepted
	maxIter      int
}

//DefaultOptions return reasonable options for sampled protein conformations.
//It superimposes alpha carbons (CA), trying to use all CAs with RMSD lower than 1.0 A.
func DefaultOptions() *Options {
	r := new(Options)
	r.atomNames = []string{"CA"}
	r.lessThanRMSD = 1.0
	r.minimumN = 3 //3 points define a superposition
	r.maxIter = 20
	return r
}

//Begin returns the index of the first frame to use,
//and sets it to a new value, if given.
func (O *Options) Begin(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.begin = n[0]
	}
	return O.begin
}

//Skip returns the number of frames skipped between reads,
//and sets it to a new value, if given.
func (O *Options) Skip(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.skip = n[0]
	}
	return O.skip
}

//AtomNames returns the names of the atoms used to represent each residue, and
//sets them, if given.
func (O *Options) AtomNames(names ...string) []string {
	if len(names) > 0 {
		O.atomNames = append([]string(nil), names...)
	}
	return append([]string(nil), O.atomNames...)
}

//LessThanRMSD returns the RMSD (A) below which a residue is rigid, and sets it, if given.
func (O *Options) LessThanRMSD(r ...float64) float64 {
	if len(r) > 0 && r[0] > 0 {
		O.lessThanRMSD = r[0]
	}
	return O.lessThanRMSD
}

//MinimumN returns the smallest number of residues used for the superposition, and sets it, if given.
func (O *Options) MinimumN(n ...int) int {
	if len(n) > 0 && n[0] >= 3 {
		O.minimumN = n[0]
	}
	return O.minimumN
}

//MaxIter returns the maximum number of LOVO iterations, and sets it, if given.
func (O *Options) MaxIter(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxIter = n[0]
	}
	return O.maxIter
}

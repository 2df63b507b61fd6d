/*
 * interfaces.go, part of slikmc.
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

package chem

import v3 "github.com/loopkin/slikmc/v3"

// Traj is a trajectory of conformations of a chain that can be read frame by frame.
type Traj interface {

	//Is the trajectory ready to be read?
	Readable() bool

	//Next puts the next frame in output, or discards it if output is nil.
	//At the end of the trajectory it returns an error implementing LastFrameError.
	Next(output *v3.Matrix) error

	//Returns the number of atoms per frame
	Len() int
}

// TrajWriter receives the conformations of a chain, one frame at a time.
type TrajWriter interface {
	WNext(coords *v3.Matrix) error
	Len() int
	Close()
}

// LastFrameError is returned by trajectory readers when there are no more frames.
// It is not an actual error condition.
type LastFrameError interface {
	Error
	NormalLastFrameTermination()
}

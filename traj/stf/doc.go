/*
 * doc.go, part of slikmc.
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

//Package stf writes and reads the snapshots of a sampling run in the simple trajectory format (stf).
//
/******************** Format   ***************************************************

An stf file is text, compressed with z-standard (zstd).

The file starts with a header of key=value lines, which must include the precision
("prec", an integer greater than 0). The header ends with a line that starts with "**" followed
by one or more spaces and the number of atoms per frame.

Each frame has one line per atom, with the x, y and z coordinates, in A, multiplied by 10 to the
power of the precision and rounded to integers. A frame ends with a line that starts with "*".
The "**" sequence only appears at the end of the header.

Samplers add the keys "run" (the run identifier), "seq" (the sequence of the chain, one letter
per residue) and "every" (iterations between frames).

*************************************************************************************/
package stf

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

/*
Package chem is the main package of slikmc. It provides the kinematic chain used by the
loop samplers: an arena of residues and atoms with their coordinates, the bond graph and
the rotatable bonds (degrees of freedom, DOFs) defined on it, and light sub-chain views
that own a range of residues while a block of the chain is being mutated.

	**Capabilities**

	Reads and writes PDB files (one model).

	Builds ideal-geometry peptides from a sequence and backbone dihedrals.

	Measures phi, psi, omega and chi dihedrals; undefined angles are reported
	as such, never as a placeholder value.

	Rotates any DOF, forward (the C-terminal side moves) or backward (the
	N-terminal side moves). Sequences of rotations (Moves) can be applied
	and exactly undone.

	Saves and restores the positions of a residue range bit by bit.

	Keeps track of whether the spatial index used for collision detection
	is stale, and commits the changes to it only when asked to.

Angles in the public API are in degrees unless otherwise stated.
*/
package chem

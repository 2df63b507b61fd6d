/*
 * dof.go, part of slikmc.
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

import "fmt"

//BlockType tells whether a DOF index refers to a backbone or to a side chain dihedral.
type BlockType int

const (
	Backbone BlockType = iota
	SideChain
)

func (b BlockType) String() string {
	if b == SideChain {
		return "sidechain"
	}
	return "backbone"
}

//Direction tells which side of a rotatable bond moves. Forward moves the atoms
//on the C-terminal (or side chain tip) side, Backward the others. Both change the
//dihedral by the same amount.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

//Move is the rotation of one DOF. Backbone DOFs are indexed 2*residue for phi and
//2*residue+1 for psi. Side chain DOFs are indexed 4*residue+k for chi k+1.
//Residue indexes are always those of the whole chain.
type Move struct {
	Kind    BlockType
	DOF     int
	Dir     Direction
	Degrees float64
}

//Inverse returns the move that undoes M.
func (M Move) Inverse() Move {
	M.Degrees = -M.Degrees
	return M
}

func (M Move) String() string {
	return fmt.Sprintf("%s %d %s %.4f", M.Kind, M.DOF, M.Dir, M.Degrees)
}

//PhiDOF returns the DOF index of the phi dihedral of residue res
func PhiDOF(res int) int { return 2 * res }

//PsiDOF returns the DOF index of the psi dihedral of residue res
func PsiDOF(res int) int { return 2*res + 1 }

//ChiDOF returns the DOF index of the chi dihedral k (0-based) of residue res
func ChiDOF(res, k int) int { return 4*res + k }

//ResidueOf returns the residue to which the DOF of the move belongs.
func (M Move) ResidueOf() int {
	if M.Kind == SideChain {
		return M.DOF / 4
	}
	return M.DOF / 2
}

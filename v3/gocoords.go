/*
 * gocoords.go, part of slikmc.
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

package v3

import (
	"fmt"
	"strings"
)

//NVecs returns the number of vectors in the matrix.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3)
	}
	return r
}

//Len is an alias for NVecs
func (F *Matrix) Len() int {
	return F.NVecs()
}

//SomeVecs puts in the receiver the vectors of A whose indexes are in clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

//SetVecs sets the vectors of the receiver whose indexes are in clist to
//the vectors of A, in order.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < 3; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

//AddVec adds the vector vec to each vector of A, putting the result in the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	if vr, _ := vec.Dims(); vr != 1 || ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

//SubVec subtracts the vector vec from each vector of A, putting the result in the receiver.
func (F *Matrix) SubVec(A, vec *Matrix) {
	ar, _ := A.Dims()
	if vr, _ := vec.Dims(); vr != 1 || ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)-vec.At(0, j))
		}
	}
}

//RawVecs returns a copy of the raw data of n vectors, starting from the first-th.
func (F *Matrix) RawVecs(first, n int) []float64 {
	if first < 0 || n < 0 || first+n > F.NVecs() {
		panic(ErrIndex)
	}
	ret := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		ret[3*i] = F.At(first+i, 0)
		ret[3*i+1] = F.At(first+i, 1)
		ret[3*i+2] = F.At(first+i, 2)
	}
	return ret
}

//PutRawVecs copies data, as returned by RawVecs, back into the matrix, starting
//from the first-th vector. It returns true if any value changed.
func (F *Matrix) PutRawVecs(first int, data []float64) bool {
	n := len(data) / 3
	if len(data)%3 != 0 || first < 0 || first+n > F.NVecs() {
		panic(ErrIndex)
	}
	changed := false
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			if F.At(first+i, j) != data[3*i+j] {
				F.Set(first+i, j, data[3*i+j])
				changed = true
			}
		}
	}
	return changed
}

//String returns a string representation of the matrix, one vector per line.
func (F *Matrix) String() string {
	if F == nil {
		return "<nil>"
	}
	r := F.NVecs()
	v := make([]string, 0, r)
	for i := 0; i < r; i++ {
		v = append(v, fmt.Sprintf("%8.3f %8.3f %8.3f", F.At(i, 0), F.At(i, 1), F.At(i, 2)))
	}
	return strings.Join(v, "\n")
}

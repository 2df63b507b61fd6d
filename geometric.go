/*
 * geometric.go, part of slikmc.
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

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	Deg2Rad = math.Pi / 180.0
	Rad2Deg = 180.0 / math.Pi
)

//vectors shorter than this are considered zero.
const appzero = 1e-12

//Angle returns the angle, in radians, between the vectors v1 and v2.
func Angle(v1, v2 r3.Vec) float64 {
	n := r3.Norm(v1) * r3.Norm(v2)
	if n < appzero {
		return math.NaN()
	}
	c := r3.Dot(v1, v2) / n
	//floating point can push c slightly over 1
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

//BondAngle returns the angle a-b-c, in radians.
func BondAngle(a, b, c r3.Vec) float64 {
	return Angle(r3.Sub(a, b), r3.Sub(c, b))
}

//Dihedral calculates the dihedral between the points a, b, c, d, where the first plane
//is defined by abc and the second by bcd. The result is in radians, in (-pi, pi].
//It returns NaN for collinear points.
func Dihedral(a, b, c, d r3.Vec) float64 {
	bma := r3.Sub(b, a)
	cmb := r3.Sub(c, b)
	dmc := r3.Sub(d, c)
	bmascmb := r3.Cross(bma, cmb)
	cmbscdmc := r3.Cross(cmb, dmc)
	if r3.Norm(bmascmb) < appzero || r3.Norm(cmbscdmc) < appzero {
		return math.NaN()
	}
	first := r3.Dot(r3.Scale(r3.Norm(cmb), bma), cmbscdmc)
	second := r3.Dot(bmascmb, cmbscdmc)
	return math.Atan2(first, second)
}

//Rotator applies the rotation of a given angle about an axis, to any number of points.
//The axis goes from ax1 to ax2, and the rotation is right-handed.
type Rotator struct {
	origin r3.Vec
	k      r3.Vec
	cos    float64
	sin    float64
}

//NewRotator returns a rotator for the angle (radians) about the ax1->ax2 axis.
//It returns false if the axis is too short to be defined.
func NewRotator(ax1, ax2 r3.Vec, angle float64) (Rotator, bool) {
	axis := r3.Sub(ax2, ax1)
	n := r3.Norm(axis)
	if n < appzero || math.IsNaN(n) {
		return Rotator{}, false
	}
	s, c := math.Sincos(angle)
	return Rotator{origin: ax1, k: r3.Scale(1/n, axis), cos: c, sin: s}, true
}

//Rotate returns p, rotated. Uses Rodrigues' formula.
func (R Rotator) Rotate(p r3.Vec) r3.Vec {
	v := r3.Sub(p, R.origin)
	kv := r3.Dot(R.k, v)
	ret := r3.Scale(R.cos, v)
	ret = r3.Add(ret, r3.Scale(R.sin, r3.Cross(R.k, v)))
	ret = r3.Add(ret, r3.Scale(kv*(1-R.cos), R.k))
	return r3.Add(ret, R.origin)
}

//RotateAbout returns p rotated by angle (radians) about the ax1->ax2 axis.
func RotateAbout(p, ax1, ax2 r3.Vec, angle float64) r3.Vec {
	r, ok := NewRotator(ax1, ax2, angle)
	if !ok {
		return r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	return r.Rotate(p)
}

//TorsionAbout returns the signed angle, in radians, of the right-handed rotation about
//the ax1->ax2 axis that takes the point from to the half-plane that contains the
//point to. It returns NaN if either point lies on the axis.
func TorsionAbout(ax1, ax2, from, to r3.Vec) float64 {
	axis := r3.Sub(ax2, ax1)
	n := r3.Norm(axis)
	if n < appzero {
		return math.NaN()
	}
	k := r3.Scale(1/n, axis)
	u := r3.Sub(from, ax2)
	u = r3.Sub(u, r3.Scale(r3.Dot(k, u), k))
	v := r3.Sub(to, ax2)
	v = r3.Sub(v, r3.Scale(r3.Dot(k, v), k))
	if r3.Norm(u) < 1e-9 || r3.Norm(v) < 1e-9 {
		return math.NaN()
	}
	return math.Atan2(r3.Dot(k, r3.Cross(u, v)), r3.Dot(u, v))
}

//WrapDegrees returns a in the (-180, 180] range.
func WrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

//Place puts a point d at distance bond from c, with the angle b-c-d equal to angle and the
//dihedral a-b-c-d equal to torsion (both in radians). It is the usual NeRF
//construction from internal coordinates.
func Place(a, b, c r3.Vec, bond, angle, torsion float64) r3.Vec {
	bc := r3.Unit(r3.Sub(c, b))
	n := r3.Unit(r3.Cross(r3.Sub(b, a), bc))
	m := r3.Cross(n, bc)
	sa, ca := math.Sincos(angle)
	st, ct := math.Sincos(torsion)
	d2 := r3.Vec{X: -bond * ca, Y: bond * sa * ct, Z: bond * sa * st}
	d := r3.Add(r3.Scale(d2.X, bc), r3.Add(r3.Scale(d2.Y, m), r3.Scale(d2.Z, n)))
	return r3.Add(c, d)
}

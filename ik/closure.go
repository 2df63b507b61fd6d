/*
 * closure.go, part of slikmc.
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

package ik

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

//The tripeptide closure is solved as a triangle of the three alpha carbons, A1, A2 and A3,
//with a rigid body along each side: body 0 holds A1, C1, N2 and A2, body 1 holds
//A2, C2, N3 and A3, and body 2, which doesn't move, holds the goal A3 and C3, and the
//fixed N1 and A1. Each body can rotate about its side of the triangle, by the angles s0, s1
//and s2. The bond angle N-CA-C at each alpha carbon gives one equation that involves the
//rotations of the two bodies meeting there. The system is reduced to a polynomial of
//degree 16 in tan(s2/2).

//desc describes a point of a rigid body by its coordinates relative to one of the
//vertices of the body's side: the axial distance along the side, the radius around it,
//and the phase from a reference direction.
type desc struct {
	ax  float64
	rad float64
	ph  float64
}

type body struct {
	l float64 //length of the side
	c desc    //the C atom, relative to the first vertex
	n desc    //the N atom, relative to the last vertex
	e r3.Vec  //reference frame
	r r3.Vec
	w r3.Vec
}

//perpendicular returns a unit vector perpendicular to the unit vector e.
func perpendicular(e r3.Vec) r3.Vec {
	t := r3.Vec{X: 1}
	if math.Abs(e.X) > 0.9 {
		t = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(t, e))
}

func triangleNormal(a, b, c r3.Vec) (r3.Vec, bool) {
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm(n) < 1e-10 {
		return r3.Vec{}, false
	}
	return r3.Unit(n), true
}

func newBody(p, q, nref r3.Vec, defined bool, cpoint, npoint r3.Vec) body {
	var b body
	edge := r3.Sub(q, p)
	b.l = r3.Norm(edge)
	b.e = r3.Scale(1/b.l, edge)
	r := r3.Cross(nref, b.e)
	if !defined || r3.Norm(r) < 1e-10 {
		b.r = perpendicular(b.e)
	} else {
		b.r = r3.Unit(r)
	}
	b.w = r3.Cross(b.e, b.r)
	b.c = b.describe(r3.Sub(cpoint, p))
	b.n = b.describe(r3.Sub(npoint, q))
	return b
}

func (b body) describe(v r3.Vec) desc {
	x, y := r3.Dot(v, b.r), r3.Dot(v, b.w)
	return desc{ax: r3.Dot(v, b.e), rad: math.Hypot(x, y), ph: math.Atan2(y, x)}
}

func (d desc) norm() float64 {
	return math.Hypot(d.ax, d.rad)
}

//vectors returns the three vectors whose combination with 1, cos(s) and sin(s) gives
//the position of the point, for a body along the unit vector e, in a triangle with normal n.
func (d desc) vectors(e, n r3.Vec) [3]r3.Vec {
	r := r3.Cross(n, e)
	s, c := math.Sincos(d.ph)
	return [3]r3.Vec{
		r3.Scale(d.ax, e),
		r3.Scale(d.rad, r3.Add(r3.Scale(c, r), r3.Scale(s, n))),
		r3.Scale(d.rad, r3.Add(r3.Scale(-s, r), r3.Scale(c, n))),
	}
}

//point returns the position of the point, relative to its vertex, when the body along e
//is rotated by s in a triangle with normal n.
func (d desc) point(e, n r3.Vec, s float64) r3.Vec {
	r := r3.Cross(n, e)
	sn, c := math.Sincos(s + d.ph)
	return r3.Add(r3.Scale(d.ax, e), r3.Scale(d.rad, r3.Add(r3.Scale(c, r), r3.Scale(sn, n))))
}

//vertex holds the equation for the bond angle at an alpha carbon, in the form
//[1 cos(sin) sin(sin)] M [1 cos(sout) sin(sout)]^T = 0, where sin is the rotation of the
//body that ends at the vertex and sout that of the body that starts there.
type vertex struct {
	m     [3][3]float64
	scale float64
}

func newVertex(in, out body, ein, eout, n r3.Vec, lcos float64) vertex {
	var v vertex
	vn := in.n.vectors(ein, n)
	vc := out.c.vectors(eout, n)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v.m[i][j] = r3.Dot(vn[i], vc[j])
			v.scale += math.Abs(v.m[i][j])
		}
	}
	v.m[0][0] -= lcos
	v.scale += math.Abs(lcos)
	return v
}

func (v vertex) eval(sin, sout float64) float64 {
	si, ci := math.Sincos(sin)
	so, co := math.Sincos(sout)
	u := [3]float64{1, ci, si}
	w := [3]float64{1, co, so}
	var f float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			f += u[i] * v.m[i][j] * w[j]
		}
	}
	return f
}

//grad returns the derivatives of the equation with respect to sin and sout.
func (v vertex) grad(sin, sout float64) (float64, float64) {
	si, ci := math.Sincos(sin)
	so, co := math.Sincos(sout)
	u := [3]float64{1, ci, si}
	du := [3]float64{0, -si, ci}
	w := [3]float64{1, co, so}
	dw := [3]float64{0, -so, co}
	var din, dout float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			din += du[i] * v.m[i][j] * w[j]
			dout += u[i] * v.m[i][j] * dw[j]
		}
	}
	return din, dout
}

//half returns the equation after the half-angle substitution x=tan(sin/2), y=tan(sout/2),
//multiplied by (1+x^2)(1+y^2). The element [i][j] is the coefficient of x^i y^j.
func (v vertex) half() [3][3]float64 {
	k := [3][3]float64{{1, 0, 1}, {1, 0, -1}, {0, 2, 0}}
	var mk, ret [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for l := 0; l < 3; l++ {
				mk[i][j] += v.m[i][l] * k[l][j]
			}
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for l := 0; l < 3; l++ {
				ret[i][j] += k[l][i] * mk[l][j]
			}
		}
	}
	return ret
}

//system is the closure problem for one window and one set of goals.
type system struct {
	bodies [3]body
	angles [3]float64 //interior angles of the triangle at A1, A2 and A3
	v      [3]vertex  //at A1 (s2, s0), A2 (s0, s1) and A3 (s1, s2)
	a1     r3.Vec
	a3     r3.Vec
}

func lawOfCosines(opp, a, b float64) (float64, bool) {
	c := (a*a + b*b - opp*opp) / (2 * a * b)
	if c > 1 || c < -1 || math.IsNaN(c) {
		return 0, false
	}
	return math.Acos(c), true
}

//newSystem sets up the closure problem. It returns false if no closure is geometrically
//possible, because the triangle of alpha carbons can't be built.
func newSystem(bb *backbone, goals Goals) (*system, bool) {
	S := new(system)
	A1, A2, A3 := bb.p[iA1], bb.p[iA2], bb.p[iA3]
	S.a1, S.a3 = A1, goals.CA
	ngoal, okgoal := triangleNormal(A1, A2, goals.CA)
	ncur, okcur := triangleNormal(A1, A2, A3)
	S.bodies[0] = newBody(A1, A2, ngoal, okgoal, bb.p[iC1], bb.p[iN2])
	S.bodies[1] = newBody(A2, A3, ncur, okcur, bb.p[iC2], bb.p[iN3])
	S.bodies[2] = newBody(goals.CA, A1, ngoal, okgoal, goals.C, bb.p[iN1])
	l0, l1, l2 := S.bodies[0].l, S.bodies[1].l, S.bodies[2].l
	if l2 < 1e-6 {
		return nil, false
	}
	var ok0, ok1, ok2 bool
	S.angles[0], ok0 = lawOfCosines(l1, l2, l0)
	S.angles[1], ok1 = lawOfCosines(l2, l0, l1)
	S.angles[2], ok2 = lawOfCosines(l0, l1, l2)
	if !(ok0 && ok1 && ok2) {
		return nil, false
	}
	//The triangle in its own plane: A1 at the origin, A2 on the x axis, normal along z.
	n := r3.Vec{Z: 1}
	p2 := r3.Vec{X: l0}
	s, c := math.Sincos(S.angles[0])
	p3 := r3.Vec{X: l2 * c, Y: l2 * s}
	e := [3]r3.Vec{r3.Vec{X: 1}, r3.Unit(r3.Sub(p3, p2)), r3.Unit(r3.Scale(-1, p3))}
	for i := 0; i < 3; i++ {
		in, out := (i+2)%3, i
		lcos := S.bodies[in].n.norm() * S.bodies[out].c.norm() * math.Cos(bb.theta[i])
		S.v[i] = newVertex(S.bodies[in], S.bodies[out], e[in], e[out], n, lcos)
	}
	return S, true
}

func (S *system) residuals(s [3]float64) [3]float64 {
	return [3]float64{S.v[0].eval(s[2], s[0]), S.v[1].eval(s[0], s[1]), S.v[2].eval(s[1], s[2])}
}

func (S *system) resultant(t2 complex128) complex128 {
	p0 := S.v[0].half() //t2^i t0^j
	p1 := S.v[1].half() //t0^i t1^j
	p2 := S.v[2].half() //t1^i t2^j
	var A [3]complex128
	for j := 0; j < 3; j++ {
		A[j] = quad([3]float64{p0[0][j], p0[1][j], p0[2][j]}, t2)
	}
	//B_j(t1) are the coefficients of t0^j in the second equation.
	B := [3][3]float64{p1[0], p1[1], p1[2]}
	//Resultant in t0 of sum A_j t0^j and sum B_j(t1) t0^j
	a2b0 := scaled(A[2], B[0]).sub(scaled(A[0], B[2]))
	a2b1 := scaled(A[2], B[1]).sub(scaled(A[1], B[2]))
	a1b0 := scaled(A[1], B[0]).sub(scaled(A[0], B[1]))
	R := a2b0.mul(a2b0).sub(a2b1.mul(a1b0))
	var C [3]complex128
	for m := 0; m < 3; m++ {
		C[m] = quad(p2[m], t2)
	}
	//Sylvester matrix of R (degree 4 in t1) and C (degree 2 in t1)
	syl := make([][]complex128, 6)
	for i := range syl {
		syl[i] = make([]complex128, 6)
	}
	for r := 0; r < 2; r++ {
		for k := 0; k <= 4; k++ {
			syl[r][r+k] = R.at(4 - k)
		}
	}
	for r := 0; r < 4; r++ {
		for k := 0; k <= 2; k++ {
			syl[2+r][r+k] = C[2-k]
		}
	}
	return cdet(syl)
}

//polish refines a solution with Newton's method on the three angle equations.
func (S *system) polish(s [3]float64) ([3]float64, bool) {
	J := mat.NewDense(3, 3, nil)
	f := mat.NewVecDense(3, nil)
	var step mat.VecDense
	for it := 0; it < 20; it++ {
		res := S.residuals(s)
		f.SetVec(0, res[0])
		f.SetVec(1, res[1])
		f.SetVec(2, res[2])
		d20, d00 := S.v[0].grad(s[2], s[0])
		d01, d11 := S.v[1].grad(s[0], s[1])
		d12, d22 := S.v[2].grad(s[1], s[2])
		J.Set(0, 0, d00)
		J.Set(0, 1, 0)
		J.Set(0, 2, d20)
		J.Set(1, 0, d01)
		J.Set(1, 1, d11)
		J.Set(1, 2, 0)
		J.Set(2, 0, 0)
		J.Set(2, 1, d12)
		J.Set(2, 2, d22)
		if err := step.SolveVec(J, f); err != nil {
			break //singular, keep what we have
		}
		maxstep := 0.0
		for i := 0; i < 3; i++ {
			s[i] -= step.AtVec(i)
			maxstep = math.Max(maxstep, math.Abs(step.AtVec(i)))
		}
		if maxstep < 1e-14 {
			break
		}
	}
	res := S.residuals(s)
	for i, r := range res {
		if math.IsNaN(r) || math.Abs(r) > 1e-9*S.v[i].scale {
			return s, false
		}
	}
	return s, true
}

//solve returns all the solutions (s0, s1, s2) of the system.
func (S *system) solve() [][3]float64 {
	coefs := interpolate(S.resultant, 32, 16)
	roots := realRoots(coefs)
	var sols [][3]float64
	p0 := S.v[0].half()
	p2 := S.v[2].half()
	for _, t2 := range roots {
		var a, c [3]float64
		for j := 0; j < 3; j++ {
			a[j] = p0[0][j] + p0[1][j]*t2 + p0[2][j]*t2*t2
			c[j] = p2[j][0] + p2[j][1]*t2 + p2[j][2]*t2*t2
		}
		s2 := 2 * math.Atan(t2)
		for _, t0 := range quadRoots(a) {
			s0 := 2 * math.Atan(t0)
			for _, t1 := range quadRoots(c) {
				s1 := 2 * math.Atan(t1)
				if math.Abs(S.v[1].eval(s0, s1)) > 1e-3*S.v[1].scale {
					continue
				}
				s, ok := S.polish([3]float64{s0, s1, s2})
				if !ok {
					continue
				}
				if !seen(sols, s) {
					sols = append(sols, s)
				}
			}
		}
	}
	return sols
}

func angdist(a, b float64) float64 {
	return math.Abs(math.Remainder(a-b, 2*math.Pi))
}

func seen(sols [][3]float64, s [3]float64) bool {
	for _, v := range sols {
		if angdist(v[0], s[0]) < 1e-6 && angdist(v[1], s[1]) < 1e-6 && angdist(v[2], s[2]) < 1e-6 {
			return true
		}
	}
	return false
}

//positions returns the closed positions of C1, N2, C2 and N3 for the solution s.
func (S *system) positions(s [3]float64) (c1, n2, c2, n3 r3.Vec) {
	b2 := S.bodies[2]
	sn, cs := math.Sincos(s[2])
	r2 := r3.Sub(r3.Scale(cs, b2.r), r3.Scale(sn, b2.w))
	n := r3.Add(r3.Scale(sn, b2.r), r3.Scale(cs, b2.w))
	sa, ca := math.Sincos(S.angles[2])
	a2 := r3.Add(S.a3, r3.Scale(S.bodies[1].l, r3.Add(r3.Scale(ca, b2.e), r3.Scale(sa, r2))))
	e0 := r3.Unit(r3.Sub(a2, S.a1))
	e1 := r3.Unit(r3.Sub(S.a3, a2))
	c1 = r3.Add(S.a1, S.bodies[0].c.point(e0, n, s[0]))
	n2 = r3.Add(a2, S.bodies[0].n.point(e0, n, s[0]))
	c2 = r3.Add(a2, S.bodies[1].c.point(e1, n, s[1]))
	n3 = r3.Add(S.a3, S.bodies[1].n.point(e1, n, s[1]))
	return
}

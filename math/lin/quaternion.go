// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// Q is a unit-length quaternion tracking a clump's orientation. Every
// owner carries one (scene.Owner.Ori); dynamic.Integrate advances it
// each step from the owner's angular velocity via SetAa, and
// kinematic.BuildPrimitives uses it through V3.MultvQ to carry a
// clump's fixed component offsets and an analytical body's normal into
// world space.
type Q struct {
	X float64
	Y float64
	Z float64
	W float64
}

// QI is the identity rotation. It should never be changed.
var QI = &Q{0, 0, 0, 1}

// Set (=, copy, clone) assigns all the element values from quaternion r
// to quaternion q. The updated quaternion q is returned.
func (q *Q) Set(r *Q) *Q {
	q.X, q.Y, q.Z, q.W = r.X, r.Y, r.Z, r.W
	return q
}

// Mult (*) multiplies quaternions r and s returning the result in q:
// the combined rotation of applying r then s. It is safe to use the
// calling quaternion q as one or both of the parameters — Integrate
// composes a step's incremental rotation onto an owner's orientation
// with q.Mult(dq, &o.Ori).
func (q *Q) Mult(r, s *Q) *Q {
	x := r.W*s.X + r.X*s.W - r.Y*s.Z + r.Z*s.Y
	y := r.W*s.Y + r.X*s.Z + r.Y*s.W - r.Z*s.X
	z := r.W*s.Z - r.X*s.Y + r.Y*s.X + r.Z*s.W
	w := r.W*s.W - r.X*s.X - r.Y*s.Y - r.Z*s.Z
	q.X, q.Y, q.Z, q.W = x, y, z, w
	return q
}

// Dot returns the dot product of quaternions q and r.
func (q *Q) Dot(r *Q) float64 { return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W }

// Len returns the length of quaternion q.
func (q *Q) Len() float64 { return math.Sqrt(q.Dot(q)) }

// Unit normalizes quaternion q to have length 1. q is left unchanged if
// its length is zero. Integrate calls this every step to keep
// accumulated floating-point drift from growing an owner's orientation
// away from a true rotation.
func (q *Q) Unit() *Q {
	if qlen := q.Len(); qlen != 0 {
		inv := 1 / qlen
		q.X, q.Y, q.Z, q.W = q.X*inv, q.Y*inv, q.Z*inv, q.W*inv
	}
	return q
}

// SetAa, set axis-angle, updates q to have the rotation of the given
// axis (ax, ay, az) and angle (in radians). dynamic.Integrate builds
// each step's incremental rotation this way, from the owner's unit
// angular-velocity axis and its angle turned this step (|angular
// velocity| * h). q is left as identity if the axis length is zero.
func (q *Q) SetAa(ax, ay, az, angle float64) *Q {
	alenSqr := ax*ax + ay*ay + az*az
	if alenSqr == 0 {
		q.X, q.Y, q.Z, q.W = 0, 0, 0, 1
		return q
	}
	s := math.Sin(angle*0.5) / math.Sqrt(alenSqr)
	q.X, q.Y, q.Z, q.W = ax*s, ay*s, az*s, math.Cos(angle*0.5)
	return q
}

// methods above do not allocate memory.
// ============================================================================
// convenience functions for allocating quaternions. Nothing else should allocate.

// NewQ creates a new, all zero, quaternion.
func NewQ() *Q { return &Q{} }

// NewQI creates a new identity quaternion — every owner starts here
// until a template or scenebuild call gives it a real orientation.
func NewQI() *Q { return &Q{W: 1} }

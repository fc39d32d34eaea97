// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package lin provides the vector and quaternion arithmetic the DEM
// engine needs to track clump position, orientation, and the contact
// geometry derived from them. It is pared down to the operations the
// solver actually calls: no matrices, no 3D-transform type, no
// homogeneous (W) coordinate — those belong to a rendering pipeline,
// not a physics kernel.
package lin

import "math"

// Epsilon is used to distinguish when a float is close enough to a
// number that the difference is simulation noise rather than signal.
const Epsilon float64 = 0.000001

// AeqZ (~=) almost-equals returns true if the difference between x and
// zero is so small that it doesn't matter.
func AeqZ(x float64) bool { return math.Abs(x) < Epsilon }

// Aeq (~=) almost-equals returns true if the difference between a and b
// is so small that it doesn't matter.
func Aeq(a, b float64) bool { return math.Abs(a-b) < Epsilon }

// Rad converts degrees to radians.
func Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Deg converts radians to degrees.
func Deg(rad float64) float64 { return rad * 180 / math.Pi }

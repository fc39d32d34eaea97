// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import (
	"math"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/math/lin"
)

// geometricOverlap tests whether primitives a and b overlap within
// tolerance beta and, if so, which contact.Kind they form (spec.md
// §4.6's per-kind overlap tests).
func geometricOverlap(a, b Primitive, beta float64) (contact.Kind, bool) {
	switch {
	case a.Kind == Sphere && b.Kind == Sphere:
		return contact.SphereSphere, sphereSphereOverlap(a, b, beta)
	case a.Kind == Sphere && b.Kind == Plane:
		return contact.SpherePlane, spherePlaneOverlap(a, b, beta)
	case a.Kind == Plane && b.Kind == Sphere:
		return contact.SpherePlane, spherePlaneOverlap(b, a, beta)
	case a.Kind == Sphere && b.Kind == Plate:
		return contact.SpherePlate, spherePlateOverlap(a, b, beta)
	case a.Kind == Plate && b.Kind == Sphere:
		return contact.SpherePlate, spherePlateOverlap(b, a, beta)
	case a.Kind == Sphere && b.Kind == Facet:
		return contact.SphereMesh, sphereFacetOverlap(a, b, beta)
	case a.Kind == Facet && b.Kind == Sphere:
		return contact.SphereMesh, sphereFacetOverlap(b, a, beta)
	default:
		return 0, false // no other pairing is a supported contact kind.
	}
}

func sphereSphereOverlap(a, b Primitive, beta float64) bool {
	d := lin.NewV3().Sub(&a.Center, &b.Center)
	return d.Len() <= a.Radius+b.Radius+beta
}

// signedDistance returns the signed distance from sphere s's center to
// the plane through origin with unit outward normal.
func signedDistance(center, origin, normal lin.V3) float64 {
	d := lin.NewV3().Sub(&center, &origin)
	return d.Dot(&normal)
}

func spherePlaneOverlap(sphere, plane Primitive, beta float64) bool {
	d := signedDistance(sphere.Center, plane.Center, plane.Normal)
	return d <= sphere.Radius+beta
}

func spherePlateOverlap(sphere, plate Primitive, beta float64) bool {
	d := signedDistance(sphere.Center, plate.Center, plate.Normal)
	if d > sphere.Radius+beta {
		return false
	}
	// project the sphere center onto the plate's plane, then test
	// against the plate's local half-extents using an arbitrary
	// orthonormal basis in that plane.
	u, v := planeBasis(plate.Normal)
	rel := lin.NewV3().Sub(&sphere.Center, &plate.Center)
	lu := rel.Dot(&u)
	lv := rel.Dot(&v)
	pad := sphere.Radius + beta
	return math.Abs(lu) <= plate.Half[0]+pad && math.Abs(lv) <= plate.Half[1]+pad
}

// planeBasis returns two unit vectors orthogonal to n and each other.
func planeBasis(n lin.V3) (u, v lin.V3) {
	ref := lin.V3{X: 1}
	if math.Abs(n.X) > 0.9 {
		ref = lin.V3{Y: 1}
	}
	uv := lin.NewV3().Cross(&n, &ref)
	uv.Unit()
	vv := lin.NewV3().Cross(&n, uv)
	vv.Unit()
	return *uv, *vv
}

func sphereFacetOverlap(sphere, facet Primitive, beta float64) bool {
	p := closestPointOnTriangle(sphere.Center, facet.Tri[0], facet.Tri[1], facet.Tri[2])
	d := lin.NewV3().Sub(&sphere.Center, &p)
	return d.Len() <= sphere.Radius+beta
}

// closestPointOnTriangle returns the closest point to p on triangle
// (a,b,c), using barycentric clamping (the standard Ericson
// "Real-Time Collision Detection" construction).
func closestPointOnTriangle(p, a, b, c lin.V3) lin.V3 {
	ab := lin.NewV3().Sub(&b, &a)
	ac := lin.NewV3().Sub(&c, &a)
	ap := lin.NewV3().Sub(&p, &a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := lin.NewV3().Sub(&p, &b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		t := d1 / (d1 - d3)
		out := lin.NewV3().Scale(ab, t)
		out.Add(out, &a)
		return *out
	}

	cp := lin.NewV3().Sub(&p, &c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		t := d2 / (d2 - d6)
		out := lin.NewV3().Scale(ac, t)
		out.Add(out, &a)
		return *out
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		t := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		bc := lin.NewV3().Sub(&c, &b)
		out := lin.NewV3().Scale(bc, t)
		out.Add(out, &b)
		return *out
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	out := lin.NewV3().Scale(ab, v)
	acw := lin.NewV3().Scale(ac, w)
	out.Add(out, acw)
	out.Add(out, &a)
	return *out
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import "github.com/galvanized/dem/math/lin"

// Geometry is the per-contact scalar/vector detail the force evaluator
// needs beyond the admissibility test: the outward normal (pointing
// from B's geometry toward A's), the signed overlap (positive means
// penetrating), and each side's contact point as a world-oriented
// offset from that side's primitive (a sphere's center, a plane or
// plate's center, a facet's first vertex), not from its owner's center
// and not rotated into the owner's frame. Nothing outside this file
// reads the contact points.
type Geometry struct {
	Normal   lin.V3
	Overlap  float64
	ContactA lin.V3 // offset from primitive A, world orientation.
	ContactB lin.V3 // offset from primitive B, world orientation.
}

// Resolve computes contact Geometry for the primitive pair (a, b).
// Pairs are handled symmetrically: whichever of a/b is the sphere in a
// sphere/analytical or sphere/mesh pairing is detected from its Kind,
// not from argument order.
func Resolve(a, b Primitive) Geometry {
	switch {
	case a.Kind == Sphere && b.Kind == Sphere:
		return resolveSphereSphere(a, b)
	case a.Kind == Sphere && (b.Kind == Plane || b.Kind == Plate):
		return resolveSphereAnalytical(a, b)
	case b.Kind == Sphere && (a.Kind == Plane || a.Kind == Plate):
		g := resolveSphereAnalytical(b, a)
		g.Normal = *lin.NewV3().Neg(&g.Normal)
		g.ContactA, g.ContactB = g.ContactB, g.ContactA
		return g
	case a.Kind == Sphere && b.Kind == Facet:
		return resolveSphereFacet(a, b)
	case b.Kind == Sphere && a.Kind == Facet:
		g := resolveSphereFacet(b, a)
		g.Normal = *lin.NewV3().Neg(&g.Normal)
		g.ContactA, g.ContactB = g.ContactB, g.ContactA
		return g
	default:
		return Geometry{}
	}
}

func resolveSphereSphere(a, b Primitive) Geometry {
	d := lin.NewV3().Sub(&a.Center, &b.Center)
	dist := d.Len()
	n := *d
	if dist != 0 {
		n = *lin.NewV3().Scale(d, 1/dist)
	}
	overlap := a.Radius + b.Radius - dist
	ca := lin.NewV3().Scale(&n, -a.Radius)
	cb := lin.NewV3().Scale(lin.NewV3().Neg(&n), -b.Radius)
	return Geometry{Normal: n, Overlap: overlap, ContactA: *ca, ContactB: *cb}
}

func resolveSphereAnalytical(sphere, analytical Primitive) Geometry {
	d := signedDistance(sphere.Center, analytical.Center, analytical.Normal)
	overlap := sphere.Radius - d
	contactA := lin.NewV3().Scale(&analytical.Normal, -sphere.Radius)
	worldContact := lin.NewV3().Scale(&analytical.Normal, -d)
	worldContact.Add(worldContact, &sphere.Center)
	contactB := lin.NewV3().Sub(worldContact, &analytical.Center)
	return Geometry{Normal: analytical.Normal, Overlap: overlap, ContactA: *contactA, ContactB: *contactB}
}

func resolveSphereFacet(sphere, facet Primitive) Geometry {
	p := closestPointOnTriangle(sphere.Center, facet.Tri[0], facet.Tri[1], facet.Tri[2])
	d := lin.NewV3().Sub(&sphere.Center, &p)
	dist := d.Len()
	n := *d
	if dist != 0 {
		n = *lin.NewV3().Scale(d, 1/dist)
	}
	overlap := sphere.Radius - dist
	contactA := lin.NewV3().Scale(&n, -sphere.Radius)
	contactB := lin.NewV3().Sub(&p, &facet.Tri[0])
	return Geometry{Normal: n, Overlap: overlap, ContactA: *contactA, ContactB: *contactB}
}

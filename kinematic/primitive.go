// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package kinematic implements the kinematic thread's three stages:
// broad-phase binning (spec.md §4.5), narrow-phase pair filtering
// (§4.6), and history mapping (§4.7).
package kinematic

import (
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
	"github.com/galvanized/dem/template"
)

// Kind tags what geometric test a Primitive participates in.
type Kind uint8

const (
	Sphere Kind = iota
	Plane
	Plate
	Facet
)

// Primitive is one piece of world-space contact geometry derived from
// an owner for one kT production: a clump contributes one Primitive per
// component sphere, an analytical owner contributes one Plane/Plate
// Primitive, a mesh owner contributes one Facet Primitive per triangle.
type Primitive struct {
	Owner    uint32
	Kind     Kind
	Index    int // component/facet index within the owning template, for shared-owner and contact-point bookkeeping.
	Center   lin.V3
	Normal   lin.V3     // outward normal; meaningful for Plane/Plate/Facet.
	Radius   float64    // sphere radius; zero otherwise.
	Half     [2]float64 // plate half-extents along its local X/Y.
	Tri      [3]lin.V3  // facet vertices in world space.
	Material material.Handle
}

// BuildPrimitives flattens every owner's geometry into world-space
// primitives using the owner's current pose and per-owner size scale
// (spec.md §4.3's ChangeOwnerSizes, §4.5's broad-phase input).
func BuildPrimitives(domain *spatial.Domain, owners []scene.Owner, clumps *template.ClumpStore, analyticals *template.AnalyticalStore, meshes *template.MeshStore) []Primitive {
	var out []Primitive
	for ownerID, o := range owners {
		px, py, pz := domain.ToPos(o.Addr)
		pos := lin.V3{X: px, Y: py, Z: pz}

		switch o.Kind {
		case scene.Clump:
			ct := clumps.Template(o.Template)
			for ci, c := range ct.Components {
				offset := lin.NewV3().MultvQ(&c.Offset, &o.Ori)
				center := lin.NewV3().Scale(offset, o.Scale)
				center.Add(center, &pos)
				out = append(out, Primitive{
					Owner: uint32(ownerID), Kind: Sphere, Index: ci,
					Center: *center, Radius: c.Radius * o.Scale, Material: c.Material,
				})
			}
		case scene.Analytical:
			at := analyticals.Template(o.Template)
			rel := lin.NewV3().MultvQ(&at.RelativePos, &o.Ori)
			center := lin.NewV3().Add(rel, &pos)
			combined := lin.NewQ().Mult(&o.Ori, &at.RelativeRot)
			normal := lin.NewV3().MultvQ(&at.Normal, combined).Unit()

			p := Primitive{Owner: uint32(ownerID), Center: *center, Normal: *normal, Material: at.Material}
			if at.Kind == template.Plate {
				p.Kind = Plate
				p.Half = at.HalfExtents
			} else {
				p.Kind = Plane
			}
			out = append(out, p)
		case scene.Mesh:
			mt := meshes.Template(o.Template)
			for fi, f := range mt.Facets {
				v0 := lin.NewV3().MultvQ(&f.V0, &o.Ori)
				v1 := lin.NewV3().MultvQ(&f.V1, &o.Ori)
				v2 := lin.NewV3().MultvQ(&f.V2, &o.Ori)
				v0.Add(v0, &pos)
				v1.Add(v1, &pos)
				v2.Add(v2, &pos)
				out = append(out, Primitive{
					Owner: uint32(ownerID), Kind: Facet, Index: fi,
					Tri: [3]lin.V3{*v0, *v1, *v2}, Material: f.Material,
				})
			}
		}
	}
	return out
}

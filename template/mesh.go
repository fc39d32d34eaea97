// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package template

import (
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
)

// Facet is one triangle of a MeshTemplate: three vertex offsets in the
// mesh's local frame, wound counter-clockwise when viewed from the
// outward side, plus the material of the facet.
type Facet struct {
	V0, V1, V2 lin.V3
	Material   material.Handle
}

// MeshTemplate is a list of triangles representing a rigid body whose
// contact geometry isn't well modeled by fused spheres (spec.md §3).
type MeshTemplate struct {
	Facets []Facet
}

// FlipWinding reverses every facet's vertex order in place, used when a
// loaded mesh's face winding disagrees with its supplied vertex normals
// (spec.md §3: "may optionally flip facet winding to match supplied
// vertex normals").
func (m *MeshTemplate) FlipWinding() {
	for i := range m.Facets {
		m.Facets[i].V1, m.Facets[i].V2 = m.Facets[i].V2, m.Facets[i].V1
	}
}

// Normal returns facet i's outward normal in the mesh's local frame.
func (m *MeshTemplate) Normal(i int) *lin.V3 {
	f := m.Facets[i]
	e1, e2 := lin.NewV3(), lin.NewV3()
	e1.Sub(&f.V1, &f.V0)
	e2.Sub(&f.V2, &f.V0)
	n := lin.NewV3().Cross(e1, e2)
	return n.Unit()
}

// MeshStore holds mesh templates in creation order.
type MeshStore struct {
	templates []MeshTemplate
}

// NewMeshStore returns an empty mesh template store.
func NewMeshStore() *MeshStore { return &MeshStore{} }

// Add appends t and returns its handle.
func (s *MeshStore) Add(t MeshTemplate) Handle {
	s.templates = append(s.templates, t)
	return Handle(len(s.templates) - 1)
}

// Count returns the number of mesh templates added so far.
func (s *MeshStore) Count() int { return len(s.templates) }

// Template returns the mesh template for h.
func (s *MeshStore) Template(h Handle) MeshTemplate { return s.templates[h] }

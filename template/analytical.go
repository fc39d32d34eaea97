// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package template

import (
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
)

// AnalyticalKind distinguishes the two closed-form boundary shapes
// spec.md §3 allows: an unbounded plane and a finite rectangular plate.
type AnalyticalKind uint8

const (
	Plane AnalyticalKind = iota
	Plate
)

// AnalyticalTemplate is a closed-form boundary shape attached to an
// owner with a pose relative to that owner's frame. PLANE uses only
// Normal (through the owner's origin after the relative pose is
// applied); PLATE additionally bounds the surface to HalfExtents along
// its own local X and Y axes.
type AnalyticalTemplate struct {
	Kind        AnalyticalKind
	RelativePos lin.V3 // offset from the owning owner's center.
	RelativeRot lin.Q  // orientation of the plane/plate normal frame.
	Normal      lin.V3 // outward normal in the template's local frame, usually +Z.
	HalfExtents [2]float64
	Material    material.Handle
}

// AnalyticalStore holds analytical templates in creation order. Unlike
// ClumpStore there is no embed/spill split — analytical geometry never
// grows large enough in component count to need one.
type AnalyticalStore struct {
	templates []AnalyticalTemplate
}

// NewAnalyticalStore returns an empty analytical template store.
func NewAnalyticalStore() *AnalyticalStore { return &AnalyticalStore{} }

// Add appends t and returns its handle.
func (s *AnalyticalStore) Add(t AnalyticalTemplate) Handle {
	s.templates = append(s.templates, t)
	return Handle(len(s.templates) - 1)
}

// Count returns the number of analytical templates added so far.
func (s *AnalyticalStore) Count() int { return len(s.templates) }

// Template returns the analytical template for h.
func (s *AnalyticalStore) Template(h Handle) AnalyticalTemplate { return s.templates[h] }

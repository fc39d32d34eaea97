// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package template holds the immutable geometry templates owners
// reference: clumps of fused spheres, analytical planes/plates, and
// triangle meshes (spec.md §3, §4.2). A ClumpStore additionally flattens
// clump templates into the embedded/spilled layout a jitified kernel
// expects.
package template

import (
	"fmt"

	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
)

// Handle identifies one template within its store. Handles are stable
// array indices in creation order; they never change across a Flatten
// even though the internal kernel layout is re-sorted.
type Handle int

// Component is one fused sphere making up a clump, offset from the
// clump's center of mass in the clump's local frame.
type Component struct {
	Offset   lin.V3
	Radius   float64
	Material material.Handle
}

// ClumpTemplate is an ordered list of component spheres plus the mass
// properties spec.md §3 says a clump carries: mass, principal-frame
// inertia, and volume.
type ClumpTemplate struct {
	Components []Component
	Mass       float64
	Inertia    lin.V3 // diagonal principal-frame inertia (Ixx, Iyy, Izz).
	Volume     float64
}

// SpilledOffset is a sentinel index for the spilled (global-memory)
// path. Flatten does not use it: it marks a spilled template with
// Embed.Spilled instead.
const SpilledOffset = -1

// Embed is where one clump template lands after ClumpStore.Flatten:
// either an index into the kernel-embedded component table, or, with
// Spilled set, an index into the spilled component table.
type Embed struct {
	Index   int
	Spilled bool
}

// ClumpStore holds clump templates in creation order and, after
// Flatten, their embedded/spilled kernel layout (spec.md §4.2).
type ClumpStore struct {
	templates []ClumpTemplate
	embeds    []Embed // embeds[handle], valid only after flatten.
	tJIT      int
	flat      bool
}

// NewClumpStore returns a store that embeds up to tJIT cumulative
// components into generated kernel source before spilling the rest to
// global arrays.
func NewClumpStore(tJIT int) *ClumpStore {
	return &ClumpStore{tJIT: tJIT}
}

// Add appends a clump template and returns its handle. Add panics if
// called after Flatten: templates are immutable once a run has
// initialized (spec.md §3 Lifecycle); adding one mandates
// re-initialization, modeled here as building a fresh store.
func (s *ClumpStore) Add(t ClumpTemplate) Handle {
	if s.flat {
		panic("template: Add called on a ClumpStore that has already been flattened")
	}
	s.templates = append(s.templates, t)
	return Handle(len(s.templates) - 1)
}

// Count returns the number of clump templates added so far.
func (s *ClumpStore) Count() int { return len(s.templates) }

// Template returns the clump template for h.
func (s *ClumpStore) Template(h Handle) ClumpTemplate { return s.templates[h] }

// Flatten sorts a copy of the template indices ascending by component
// count, then walks that order accumulating component counts: every
// template whose inclusion keeps the running total at or under tJIT is
// embedded; the first to exceed it, and everything after, is spilled.
// A second call is a no-op.
func (s *ClumpStore) Flatten() {
	if s.flat {
		return
	}
	order := make([]int, len(s.templates))
	for i := range order {
		order[i] = i
	}
	// insertion sort ascending by component count: template counts are
	// small (tens) so this avoids pulling in sort for one pass.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && len(s.templates[order[j-1]].Components) > len(s.templates[order[j]].Components); j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	s.embeds = make([]Embed, len(s.templates))
	embedded, spilled := 0, 0
	running := 0
	for _, idx := range order {
		n := len(s.templates[idx].Components)
		if running+n <= s.tJIT {
			running += n
			s.embeds[idx] = Embed{Index: embedded}
			embedded++
			continue
		}
		s.embeds[idx] = Embed{Index: spilled, Spilled: true}
		spilled++
	}
	s.flat = true
}

// Embed returns h's kernel layout. It is only meaningful after Flatten.
func (s *ClumpStore) Embed(h Handle) Embed {
	if !s.flat {
		panic("template: Embed called before Flatten")
	}
	return s.embeds[h]
}

// Validate checks every component's material handle against lib and
// returns the first invalid reference, if any.
func (s *ClumpStore) Validate(lib *material.Library) error {
	for h, t := range s.templates {
		for i, c := range t.Components {
			if int(c.Material) < 0 || int(c.Material) >= lib.Count() {
				return fmt.Errorf("template: clump handle %d component %d references unknown material %d", h, i, c.Material)
			}
		}
	}
	return nil
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package scenebuild

import (
	"fmt"

	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/template"
)

// Inspect evaluates a previously-created inspector against the current
// scene state (spec.md §6 CreateInspector). Owner positions/velocities
// reflect whatever the most recent completed step (or scene build, if
// no step has run yet) left them at.
func (s *Scene) Inspect(h ObjectHandle) (InspectorResult, error) {
	insp, ok := s.inspectors[h]
	if !ok {
		return InspectorResult{}, fmt.Errorf("scenebuild: Inspect: unknown inspector handle")
	}
	return insp.evaluate(s.coord.Scene, s.coord.Scene.Snapshot())
}

// TrackedPos returns a tracked owner's current position (spec.md §6
// Track).
func (s *Scene) TrackedPos(h ObjectHandle) (x, y, z float64, err error) {
	id, ok := s.trackers[h]
	if !ok {
		return 0, 0, 0, fmt.Errorf("scenebuild: TrackedPos: handle was never passed to Track")
	}
	return s.coord.Scene.GetOwnerPos(id)
}

// TrackedVel returns a tracked owner's current linear velocity
// (spec.md §6 Track).
func (s *Scene) TrackedVel(h ObjectHandle) (lin.V3, error) {
	id, ok := s.trackers[h]
	if !ok {
		return lin.V3{}, fmt.Errorf("scenebuild: TrackedVel: handle was never passed to Track")
	}
	return s.coord.Scene.GetOwnerVel(id)
}

// AppendClumps instantiates additional owners of an already-loaded
// template mid-run, the "mid-run append" operation of spec.md §4.10:
// device arrays grow and kT/dT are re-packed, but no template, material,
// or wildcard changes are possible this way. Callers must only call
// AppendClumps at a sync point (immediately after DoDynamicsThenSync or
// Sync returns), never while a DoDynamics call is outstanding.
func (s *Scene) AppendClumps(t template.Handle, positions, velocities []lin.V3, orientations []lin.Q, families []family.ID) ([]uint32, error) {
	if s.running != nil {
		return nil, fmt.Errorf("scenebuild: AppendClumps: called while a DoDynamics run is outstanding; call Sync first")
	}
	if int(t) < 0 || int(t) >= s.coord.Clumps.Count() {
		return nil, fmt.Errorf("scenebuild: AppendClumps: unknown clump template %d", t)
	}
	n := len(positions)
	if velocities != nil && len(velocities) != n {
		return nil, fmt.Errorf("scenebuild: AppendClumps: %d positions but %d velocities", n, len(velocities))
	}
	if orientations != nil && len(orientations) != n {
		return nil, fmt.Errorf("scenebuild: AppendClumps: %d positions but %d orientations", n, len(orientations))
	}
	if families != nil && len(families) != n {
		return nil, fmt.Errorf("scenebuild: AppendClumps: %d positions but %d families", n, len(families))
	}

	ct := s.coord.Clumps.Template(t)
	ids := make([]uint32, n)
	for i, pos := range positions {
		o := scene.Owner{
			Kind: scene.Clump, Template: t, Family: familyAt(families, i),
			Mass: ct.Mass, Inertia: ct.Inertia, Scale: 1,
			Ori: quatAt(orientations, i), Vel: v3At(velocities, i),
		}
		id := s.coord.Scene.AddOwner(o)
		if err := s.coord.Scene.SetOwnerPos(id, pos.X, pos.Y, pos.Z); err != nil {
			return nil, fmt.Errorf("scenebuild: AppendClumps: %w", err)
		}
		ids[i] = id
	}
	return ids, nil
}

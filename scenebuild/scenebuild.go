// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package scenebuild implements spec.md §6's scene-build API: the
// sequence of Load/Add/Set calls a caller makes before Initialize, and
// the two Initialize-gated entry points, DoDynamics and
// DoDynamicsThenSync, that drive the coordinator afterward.
//
// A Builder buffers every declaration (materials, templates, owners,
// family rules, config) until Initialize assembles them into a running
// scene (spec.md §3 Lifecycle: "Templates are immutable after the
// first initialization"). Calling any Load/Add/Set method after
// Initialize is a programming error and panics, matching the teacher's
// ClumpStore.Add-after-Flatten contract.
package scenebuild

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/galvanized/dem/dynamic"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/template"
)

// ObjectHandle identifies an owner or batch of owners created before
// Initialize. It stays valid afterward: Initialize only resolves what
// it already refers to, it never renumbers owners.
type ObjectHandle uuid.UUID

// clumpBatch is one AddClumps call, buffered until Initialize can
// create the owners against a real Scene and Domain.
type clumpBatch struct {
	handle      ObjectHandle
	template    template.Handle
	positions   []lin.V3
	velocities  []lin.V3
	orientations []lin.Q
	families    []family.ID
}

// externalObject is an AddExternalObject/AddWavefrontMeshObject
// handle, holding whichever geometry was later attached to it.
type externalObject struct {
	handle   ObjectHandle
	kind     objectKind
	plane    *template.AnalyticalTemplate
	mesh     *template.MeshTemplate
	position lin.V3
	family   family.ID
}

type objectKind uint8

const (
	objectPending objectKind = iota
	objectAnalytical
	objectMesh
)

// familySetting is one buffered family-policy declaration, replayed
// against the real family.Policy once Initialize knows FMax.
type familySetting struct {
	kind      familySettingKind
	a, b      family.ID
	fixed     family.ID
	motion    family.ID
	pm        family.PrescribedMotion
	transition family.TransitionRule
}

type familySettingKind uint8

const (
	settingDisable familySettingKind = iota
	settingEnable
	settingFixed
	settingPrescribed
	settingTransition
)

// Builder accumulates a scene-build sequence. The zero value is not
// usable; construct one with NewBuilder.
type Builder struct {
	forceLawSrc string

	materials *material.Library
	clumps    *template.ClumpStore
	analyticals *template.AnalyticalStore
	meshes    *template.MeshStore

	batches   []clumpBatch
	externals map[ObjectHandle]*externalObject

	familySettings []familySetting
	maxFamilySeen  family.ID

	domainX, domainY, domainZ float64
	exactAxis                 int
	domainSet                 bool

	gravity   lin.V3
	h         float64
	u         int
	vmax      float64
	s         float64
	binSize   float64
	rule      dynamic.Rule
	tJIT      int
	workers   int

	inspectors      map[ObjectHandle]*Inspector
	pendingTrackers []ObjectHandle

	initialized bool
}

// defaults mirror the teacher's configDefaults pattern: sane values a
// caller may simply not override.
const (
	defaultH       = 1e-5
	defaultU       = 1
	defaultS       = 1.1
	defaultTJIT    = 64
	defaultBinSize = 0.1
)

// NewBuilder returns a Builder ready to accumulate a scene-build
// sequence. forceLawSrc is the force-law fragment spec.md §6 calls the
// "force-law contract"; it is parsed (after jit token substitution) at
// Initialize so that configuration errors in it surface there, not
// earlier or later.
func NewBuilder(forceLawSrc string) *Builder {
	return &Builder{
		forceLawSrc: forceLawSrc,
		materials:   material.NewLibrary(),
		clumps:      template.NewClumpStore(defaultTJIT),
		analyticals: template.NewAnalyticalStore(),
		meshes:      template.NewMeshStore(),
		externals:   map[ObjectHandle]*externalObject{},
		inspectors:  map[ObjectHandle]*Inspector{},
		h:           defaultH,
		u:           defaultU,
		s:           defaultS,
		binSize:     defaultBinSize,
		rule:        dynamic.CenteredDifference,
		tJIT:        defaultTJIT,
	}
}

func (b *Builder) assertNotInitialized(call string) {
	if b.initialized {
		panic(fmt.Sprintf("scenebuild: %s called after Initialize", call))
	}
}

// LoadMaterial declares a new material from a name -> value property
// map (spec.md §6).
func (b *Builder) LoadMaterial(props map[string]float64) material.Handle {
	b.assertNotInitialized("LoadMaterial")
	return b.materials.Add(props)
}

// ComponentSpec is one fused sphere of a clump template, by offset,
// radius, and material handle (spec.md §3 Clump Template).
type ComponentSpec struct {
	Offset   lin.V3
	Radius   float64
	Material material.Handle
}

// LoadClumpType declares a new clump template (spec.md §6).
func (b *Builder) LoadClumpType(mass float64, moi lin.V3, components []ComponentSpec) template.Handle {
	b.assertNotInitialized("LoadClumpType")
	comps := make([]template.Component, len(components))
	volume := 0.0
	for i, c := range components {
		comps[i] = template.Component{Offset: c.Offset, Radius: c.Radius, Material: c.Material}
		volume += (4.0 / 3.0) * 3.141592653589793 * c.Radius * c.Radius * c.Radius
	}
	return b.clumps.Add(template.ClumpTemplate{Components: comps, Mass: mass, Inertia: moi, Volume: volume})
}

// AddClumps instantiates owners of template t at the given positions
// (spec.md §6). velocities, orientations, and families may each be nil
// to mean "zero/identity/family 0" for every instance, or must match
// len(positions) otherwise. Returns an opaque batch handle resolved to
// real owner ids at Initialize.
func (b *Builder) AddClumps(t template.Handle, positions, velocities []lin.V3, orientations []lin.Q, families []family.ID) (ObjectHandle, error) {
	b.assertNotInitialized("AddClumps")
	if int(t) < 0 || int(t) >= b.clumps.Count() {
		return ObjectHandle{}, fmt.Errorf("scenebuild: AddClumps: unknown clump template %d", t)
	}
	n := len(positions)
	if velocities != nil && len(velocities) != n {
		return ObjectHandle{}, fmt.Errorf("scenebuild: AddClumps: %d positions but %d velocities", n, len(velocities))
	}
	if orientations != nil && len(orientations) != n {
		return ObjectHandle{}, fmt.Errorf("scenebuild: AddClumps: %d positions but %d orientations", n, len(orientations))
	}
	if families != nil && len(families) != n {
		return ObjectHandle{}, fmt.Errorf("scenebuild: AddClumps: %d positions but %d families", n, len(families))
	}
	for _, f := range families {
		b.noteFamily(f)
	}
	h := ObjectHandle(uuid.New())
	b.batches = append(b.batches, clumpBatch{
		handle: h, template: t,
		positions: positions, velocities: velocities,
		orientations: orientations, families: families,
	})
	return h, nil
}

// AddExternalObject reserves a handle for an analytical or mesh object
// whose geometry is attached by a following AddPlane/AddPlate call
// (spec.md §6). AddWavefrontMeshObject creates its own handle.
func (b *Builder) AddExternalObject() ObjectHandle {
	b.assertNotInitialized("AddExternalObject")
	h := ObjectHandle(uuid.New())
	b.externals[h] = &externalObject{handle: h}
	return h
}

// AddPlane attaches an unbounded analytical plane to a handle returned
// by AddExternalObject (spec.md §3, §6).
func (b *Builder) AddPlane(h ObjectHandle, pos, outwardNormal lin.V3, mat material.Handle) error {
	b.assertNotInitialized("AddPlane")
	obj, ok := b.externals[h]
	if !ok {
		return fmt.Errorf("scenebuild: AddPlane: unknown object handle")
	}
	if obj.kind != objectPending {
		return fmt.Errorf("scenebuild: AddPlane: handle already has geometry attached")
	}
	obj.kind = objectAnalytical
	obj.position = pos
	obj.plane = &template.AnalyticalTemplate{
		Kind: template.Plane, Normal: outwardNormal, RelativeRot: *lin.NewQI(), Material: mat,
	}
	return nil
}

// AddPlate attaches a finite rectangular plate to a handle returned by
// AddExternalObject (spec.md §3, §6).
func (b *Builder) AddPlate(h ObjectHandle, pos, outwardNormal lin.V3, halfExtents [2]float64, mat material.Handle) error {
	b.assertNotInitialized("AddPlate")
	obj, ok := b.externals[h]
	if !ok {
		return fmt.Errorf("scenebuild: AddPlate: unknown object handle")
	}
	if obj.kind != objectPending {
		return fmt.Errorf("scenebuild: AddPlate: handle already has geometry attached")
	}
	obj.kind = objectAnalytical
	obj.position = pos
	obj.plane = &template.AnalyticalTemplate{
		Kind: template.Plate, Normal: outwardNormal, RelativeRot: *lin.NewQI(),
		HalfExtents: halfExtents, Material: mat,
	}
	return nil
}

// noteFamily tracks the highest family id ever mentioned across the
// whole build sequence, so Initialize can size family.Policy's
// triangular mask matrix (NewPolicy(fMax)) without requiring a
// separate "declare F_MAX up front" call the external interface never
// names.
func (b *Builder) noteFamily(f family.ID) {
	if f > b.maxFamilySeen {
		b.maxFamilySeen = f
	}
}

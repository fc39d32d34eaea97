// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package dem implements a discrete-element granular-mechanics
// simulation engine: rigid clumps of fused spheres, analytical planes
// and plates, triangle-mesh bodies, and a two-goroutine kinematic/
// dynamic coordinator driving them forward in time (spec.md §1-§5).
//
// Engine wraps package scenebuild's buffer-then-finalize Builder/Scene
// pair behind the teacher's own engine lifecycle shape: construct with
// New, declare materials/templates/owners, Initialize, then Advance or
// AdvanceThenSync to step time forward.
package dem

import (
	"context"
	"errors"
	"fmt"

	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scenebuild"
	"github.com/galvanized/dem/template"
)

// ObjectHandle re-exports scenebuild.ObjectHandle so callers never need
// to import scenebuild directly for the common path.
type ObjectHandle = scenebuild.ObjectHandle

// ComponentSpec re-exports scenebuild.ComponentSpec.
type ComponentSpec = scenebuild.ComponentSpec

var errNotInitialized = errors.New("engine not initialized")

// Engine is the top of the simulation hierarchy. Before Initialize it
// behaves like a scenebuild.Builder (every Load/Add/Set call panics
// once Initialize has been called); afterward it behaves like a
// scenebuild.Scene (Advance/AdvanceThenSync/Stats become available).
type Engine struct {
	cfg Config
	b   *scenebuild.Builder
	sc  *scenebuild.Scene
}

// New constructs an Engine from a force-law source fragment (spec.md
// §6's "force-law contract") and optional configuration attributes.
func New(forceLawSrc string, attrs ...Attr) *Engine {
	cfg := configDefaults
	for _, attr := range attrs {
		attr(&cfg)
	}
	b := scenebuild.NewBuilder(forceLawSrc)
	b.SetGravitationalAcceleration(lin.V3{X: cfg.gravityX, Y: cfg.gravityY, Z: cfg.gravityZ})
	b.SetInitTimeStep(cfg.h)
	b.SetIntegrator(cfg.rule)
	b.SetCDUpdateFreq(cfg.u)
	b.SetExpandSafetyParam(cfg.s)
	b.SetMaxVelocity(cfg.vmax)
	b.SetInitBinSize(cfg.binSize)
	b.SetNarrowPhaseWorkers(cfg.workers)
	b.SetTemplateEmbedBudget(cfg.tJIT)
	return &Engine{cfg: cfg, b: b}
}

// InstructBoxDomainDimension fixes the simulated world's box dimensions
// (spec.md §4.1, §6).
func (e *Engine) InstructBoxDomainDimension(x, y, z float64, exactAxis int) {
	e.b.InstructBoxDomainDimension(x, y, z, exactAxis)
}

// LoadMaterial declares a new material (spec.md §6).
func (e *Engine) LoadMaterial(props map[string]float64) material.Handle {
	return e.b.LoadMaterial(props)
}

// LoadClumpType declares a new clump template (spec.md §6).
func (e *Engine) LoadClumpType(mass float64, moi lin.V3, components []ComponentSpec) template.Handle {
	return e.b.LoadClumpType(mass, moi, components)
}

// AddClumps instantiates owners of a clump template (spec.md §6).
func (e *Engine) AddClumps(t template.Handle, positions, velocities []lin.V3, orientations []lin.Q, families []family.ID) (ObjectHandle, error) {
	return e.b.AddClumps(t, positions, velocities, orientations, families)
}

// AddExternalObject reserves a handle for a following AddPlane/
// AddPlate/AddWavefrontMeshObject call (spec.md §6).
func (e *Engine) AddExternalObject() ObjectHandle { return e.b.AddExternalObject() }

// AddPlane attaches an unbounded analytical plane to h (spec.md §6).
func (e *Engine) AddPlane(h ObjectHandle, pos, outwardNormal lin.V3, mat material.Handle) error {
	return e.b.AddPlane(h, pos, outwardNormal, mat)
}

// AddPlate attaches a finite rectangular plate to h (spec.md §6).
func (e *Engine) AddPlate(h ObjectHandle, pos, outwardNormal lin.V3, halfExtents [2]float64, mat material.Handle) error {
	return e.b.AddPlate(h, pos, outwardNormal, halfExtents, mat)
}

// AddWavefrontMeshObject loads a Wavefront OBJ file as a mesh body
// (spec.md §6).
func (e *Engine) AddWavefrontMeshObject(path string, mat material.Handle) (ObjectHandle, error) {
	return e.b.AddWavefrontMeshObject(path, mat)
}

// DisableContactBetweenFamilies prevents future contacts between a and
// b (spec.md §4.4, §6).
func (e *Engine) DisableContactBetweenFamilies(a, b family.ID) {
	e.b.DisableContactBetweenFamilies(a, b)
}

// EnableContactBetweenFamilies re-allows contacts between a and b
// (spec.md §4.4, §6).
func (e *Engine) EnableContactBetweenFamilies(a, b family.ID) {
	e.b.EnableContactBetweenFamilies(a, b)
}

// SetFamilyFixed marks family f as immovable (spec.md §3 invariant 4).
func (e *Engine) SetFamilyFixed(f family.ID) { e.b.SetFamilyFixed(f) }

// SetFamilyPrescribedAngVel installs a prescribed angular-velocity (or
// angular-displacement) rule for family f (spec.md §4.4, §6).
func (e *Engine) SetFamilyPrescribedAngVel(f family.ID, wx, wy, wz family.Expr, asPosition bool) {
	e.b.SetFamilyPrescribedAngVel(f, wx, wy, wz, asPosition)
}

// AddFamilyTransition registers an on-fly family-transition rule
// (spec.md §4.4 "On-fly family change").
func (e *Engine) AddFamilyTransition(r family.TransitionRule) { e.b.AddFamilyTransition(r) }

// CreateInspector registers an aggregate quantity to evaluate later via
// Inspect (spec.md §6).
func (e *Engine) CreateInspector(quantity string, predicate family.Expr) ObjectHandle {
	return e.b.CreateInspector(quantity, predicate)
}

// Track registers interest in a single owner's pose/velocity (spec.md
// §6). It must be called before Initialize; use TrackedPos/TrackedVel
// afterward.
func (e *Engine) Track(h ObjectHandle) (ObjectHandle, error) { return e.b.Track(h) }

// Initialize assembles every buffered call into a running scene
// (spec.md §3 Lifecycle). After Initialize, Load/Add/Set methods panic
// and Advance/AdvanceThenSync/Stats become available.
func (e *Engine) Initialize() error {
	sc, err := e.b.Initialize()
	if err != nil {
		return &ConfigError{Field: "Initialize", Err: err}
	}
	e.sc = sc
	return nil
}

// Advance steps the simulation forward by duration seconds without
// blocking the caller (spec.md §5's implicitly-async default). A
// subsequent Advance, AdvanceThenSync, or Finalize call joins the
// outstanding run first.
func (e *Engine) Advance(ctx context.Context, duration float64) error {
	if e.sc == nil {
		return &ConfigError{Field: "Advance", Err: errNotInitialized}
	}
	return e.sc.DoDynamics(ctx, duration)
}

// AdvanceThenSync steps the simulation forward by duration seconds and
// blocks until it and the scene state are fully synced (spec.md §5
// "driver blocks on cv_mainCanProceed").
func (e *Engine) AdvanceThenSync(ctx context.Context, duration float64) error {
	if e.sc == nil {
		return &ConfigError{Field: "AdvanceThenSync", Err: errNotInitialized}
	}
	return e.sc.DoDynamicsThenSync(ctx, duration)
}

// Finalize blocks until any outstanding Advance call completes,
// leaving the scene in a consistent state for pose/velocity
// accessors, Stats, or AppendClumps. It is a no-op if no Advance call
// is outstanding.
func (e *Engine) Finalize() error {
	if e.sc == nil {
		return nil
	}
	return e.sc.Sync()
}

// OwnerIDs resolves a batch or single-object handle to its real owner
// ids, valid after Initialize.
func (e *Engine) OwnerIDs(h ObjectHandle) ([]uint32, bool) {
	if e.sc == nil {
		return nil, false
	}
	return e.sc.OwnerIDs(h)
}

// Pos returns an owner's current position.
func (e *Engine) Pos(id uint32) (x, y, z float64, err error) {
	if e.sc == nil {
		return 0, 0, 0, fmt.Errorf("dem: Pos: %w", errNotInitialized)
	}
	return e.sc.Coordinator().Scene.GetOwnerPos(id)
}

// Vel returns an owner's current linear velocity.
func (e *Engine) Vel(id uint32) (lin.V3, error) {
	if e.sc == nil {
		return lin.V3{}, fmt.Errorf("dem: Vel: %w", errNotInitialized)
	}
	return e.sc.Coordinator().Scene.GetOwnerVel(id)
}

// TrackedPos returns a tracked owner's current position (spec.md §6
// Track).
func (e *Engine) TrackedPos(h ObjectHandle) (x, y, z float64, err error) {
	if e.sc == nil {
		return 0, 0, 0, fmt.Errorf("dem: TrackedPos: %w", errNotInitialized)
	}
	return e.sc.TrackedPos(h)
}

// TrackedVel returns a tracked owner's current linear velocity
// (spec.md §6 Track).
func (e *Engine) TrackedVel(h ObjectHandle) (lin.V3, error) {
	if e.sc == nil {
		return lin.V3{}, fmt.Errorf("dem: TrackedVel: %w", errNotInitialized)
	}
	return e.sc.TrackedVel(h)
}

// Inspect evaluates a previously-created inspector against the current
// scene state (spec.md §6 CreateInspector).
func (e *Engine) Inspect(h ObjectHandle) (scenebuild.InspectorResult, error) {
	if e.sc == nil {
		return scenebuild.InspectorResult{}, fmt.Errorf("dem: Inspect: %w", errNotInitialized)
	}
	return e.sc.Inspect(h)
}

// AppendClumps instantiates additional owners of an already-loaded
// template mid-run (spec.md §4.10). Call only at a sync point,
// immediately after AdvanceThenSync or Finalize returns.
func (e *Engine) AppendClumps(t template.Handle, positions, velocities []lin.V3, orientations []lin.Q, families []family.ID) ([]uint32, error) {
	if e.sc == nil {
		return nil, fmt.Errorf("dem: AppendClumps: %w", errNotInitialized)
	}
	return e.sc.AppendClumps(t, positions, velocities, orientations, families)
}

// Warnings returns every non-fatal warning collected at Initialize
// (spec.md §7).
func (e *Engine) Warnings() []string {
	if e.sc == nil {
		return nil
	}
	return e.sc.Warnings()
}

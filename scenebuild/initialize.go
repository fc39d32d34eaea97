// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package scenebuild

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/galvanized/dem/coordinator"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/jit"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
	"github.com/galvanized/dem/wildcard"
)

// Scene is the running handle Initialize returns: the assembled
// coordinator plus the buffered-handle bookkeeping DoDynamics,
// DoDynamicsThenSync, and the Inspector/Tracker accessors need
// afterward.
type Scene struct {
	coord *coordinator.Coordinator

	owners   map[ObjectHandle][]uint32
	inspectors map[ObjectHandle]*Inspector
	trackers   map[ObjectHandle]uint32

	warnings []string

	running chan error // non-nil while a DoDynamics call is in flight.
}

// Coordinator exposes the underlying coordinator for callers that need
// direct access (sceneio export, custom drivers).
func (s *Scene) Coordinator() *coordinator.Coordinator { return s.coord }

// Warnings returns every non-fatal warning collected at Initialize
// (spec.md §7): missing material properties, a force law that never
// assigns forceA.x/y/z, and declared wildcards the force law never
// assigns. Use of the reserved family F_MAX produces no warning.
func (s *Scene) Warnings() []string { return append([]string(nil), s.warnings...) }

// OwnerIDs resolves a batch or single-object handle to its real owner
// ids, valid after Initialize.
func (s *Scene) OwnerIDs(h ObjectHandle) ([]uint32, bool) {
	ids, ok := s.owners[h]
	return ids, ok
}

// Initialize assembles every buffered Load/Add/Set call into a running
// Scene (spec.md §3 Lifecycle, §6). After Initialize, the Builder's
// Load/Add/Set methods panic; use the returned Scene's DoDynamics/
// DoDynamicsThenSync to advance the simulation.
func (b *Builder) Initialize() (*Scene, error) {
	if b.initialized {
		return nil, fmt.Errorf("scenebuild: Initialize called twice")
	}
	if !b.domainSet {
		return nil, fmt.Errorf("scenebuild: Initialize: InstructBoxDomainDimension was never called (zero domain is a configuration error, spec.md §6)")
	}
	if b.domainX <= 0 || b.domainY <= 0 || b.domainZ <= 0 {
		return nil, fmt.Errorf("scenebuild: Initialize: domain dimensions must be positive, got (%g, %g, %g)", b.domainX, b.domainY, b.domainZ)
	}

	domain, err := spatial.NewDomain(b.domainX, b.domainY, b.domainZ, b.exactAxis)
	if err != nil {
		return nil, fmt.Errorf("scenebuild: Initialize: %w", err)
	}

	policy := family.NewPolicy(b.maxFamilySeen)
	for _, set := range b.familySettings {
		switch set.kind {
		case settingDisable:
			policy.DisableContact(set.a, set.b)
		case settingEnable:
			policy.EnableContact(set.a, set.b)
		case settingFixed:
			policy.SetFamilyFixed(set.fixed)
		case settingPrescribed:
			policy.SetPrescribedMotion(set.motion, set.pm)
		case settingTransition:
			policy.AddTransition(set.transition)
		}
	}

	sc := scene.New(domain, policy)
	owners := map[ObjectHandle][]uint32{}

	b.clumps.Flatten()
	if err := b.clumps.Validate(b.materials); err != nil {
		return nil, fmt.Errorf("scenebuild: Initialize: %w", err)
	}

	for _, batch := range b.batches {
		ct := b.clumps.Template(batch.template)
		ids := make([]uint32, len(batch.positions))
		for i, pos := range batch.positions {
			o := scene.Owner{
				Kind: scene.Clump, Template: batch.template, Family: familyAt(batch.families, i),
				Mass: ct.Mass, Inertia: ct.Inertia, Scale: 1,
				Ori: quatAt(batch.orientations, i),
				Vel: v3At(batch.velocities, i),
			}
			id := sc.AddOwner(o)
			if err := sc.SetOwnerPos(id, pos.X, pos.Y, pos.Z); err != nil {
				return nil, fmt.Errorf("scenebuild: Initialize: placing clump owner: %w", err)
			}
			ids[i] = id
		}
		owners[batch.handle] = ids
	}

	for h, obj := range b.externals {
		switch obj.kind {
		case objectAnalytical:
			th := b.analyticals.Add(*obj.plane)
			id := sc.AddOwner(scene.Owner{Kind: scene.Analytical, Template: th, Family: obj.family, Scale: 1, Ori: *lin.NewQI()})
			if err := sc.SetOwnerPos(id, obj.position.X, obj.position.Y, obj.position.Z); err != nil {
				return nil, fmt.Errorf("scenebuild: Initialize: placing analytical owner: %w", err)
			}
			owners[h] = []uint32{id}
		case objectMesh:
			th := b.meshes.Add(*obj.mesh)
			id := sc.AddOwner(scene.Owner{Kind: scene.Mesh, Template: th, Family: obj.family, Scale: 1, Ori: *lin.NewQI()})
			if err := sc.SetOwnerPos(id, obj.position.X, obj.position.Y, obj.position.Z); err != nil {
				return nil, fmt.Errorf("scenebuild: Initialize: placing mesh owner: %w", err)
			}
			owners[h] = []uint32{id}
		default:
			return nil, fmt.Errorf("scenebuild: Initialize: object handle was never given geometry (AddPlane/AddPlate/AddWavefrontMeshObject)")
		}
	}

	jb := jit.NewBuilder().
		Set("nClumpTemplates", itoa(b.clumps.Count())).
		Set("nAnalyticalTemplates", itoa(b.analyticals.Count())).
		Set("nMeshTemplates", itoa(b.meshes.Count())).
		Set("tJIT", itoa(b.tJIT)).
		Set("fMax", itoa(int(b.maxFamilySeen)))
	specializedSrc, err := jb.Render(b.forceLawSrc)
	if err != nil {
		return nil, fmt.Errorf("scenebuild: Initialize: %w", err)
	}
	law, err := forcelaw.ParseLaw(specializedSrc)
	if err != nil {
		return nil, fmt.Errorf("scenebuild: Initialize: force law: %w", err)
	}

	var warnings []string
	warnings = append(warnings, b.materials.Reconcile(law.Requires)...)
	if !forceAssigned(law) {
		msg := "force law never assigns output force (forceA.x/y/z)"
		warnings = append(warnings, msg)
		slog.Warn("scenebuild: " + msg)
	}
	declared := map[string]bool{}
	for _, name := range append(append([]string(nil), law.Reads...), law.Writes...) {
		if _, ok := law.Outputs["wc_"+name]; !ok && !declared[name] {
			msg := fmt.Sprintf("force law declares wildcard %q but never assigns wc_%s", name, name)
			warnings = append(warnings, msg)
			slog.Warn("scenebuild: " + msg)
		}
		declared[name] = true
	}

	binSize := b.binSize
	if binSize <= 0 {
		binSize = defaultBinSize
	}
	grid, err := spatial.NewBinGrid(domain, binSize)
	if err != nil {
		return nil, fmt.Errorf("scenebuild: Initialize: %w", err)
	}

	wc := wildcard.NewSet()
	for _, name := range append(append([]string{}, law.Reads...), law.Writes...) {
		if _, err := wc.Declare(name); err != nil {
			return nil, fmt.Errorf("scenebuild: Initialize: %w", err)
		}
	}

	trackers := map[ObjectHandle]uint32{}
	for _, h := range b.pendingTrackers {
		ids := owners[h]
		if len(ids) != 1 {
			return nil, fmt.Errorf("scenebuild: Initialize: tracked handle resolved to %d owners, want exactly 1", len(ids))
		}
		trackers[h] = ids[0]
	}

	coord := &coordinator.Coordinator{
		Scene: sc, Domain: domain, Grid: grid,
		Clumps: b.clumps, Analyticals: b.analyticals, Meshes: b.meshes,
		Law: law, Materials: b.materials, Wildcards: wc,
		Policy: &coordinator.Policy{U: b.u, S: b.s, VMax: b.vmax, ConstantTimeStep: true},
		Rule:   b.rule, Gravity: b.gravity, H: b.h, Workers: b.workers,
	}

	b.initialized = true
	return &Scene{
		coord: coord, owners: owners,
		inspectors: b.inspectors, trackers: trackers,
		warnings: warnings,
	}, nil
}

// DoDynamicsThenSync advances the simulation by duration seconds and
// blocks until every step has completed and the scene state is fully
// synced (spec.md §5 "driver blocks on cv_mainCanProceed", §6).
func (s *Scene) DoDynamicsThenSync(ctx context.Context, duration float64) error {
	if err := s.Sync(); err != nil {
		return err
	}
	steps := stepsFor(duration, s.coord.H)
	return s.coord.Run(ctx, steps)
}

// DoDynamics advances the simulation by duration seconds without
// blocking the caller; the driver may keep issuing other calls while
// it runs. A later DoDynamics, DoDynamicsThenSync, or Sync call joins
// the outstanding run first (spec.md §5's suspension points treat
// "blocks on request" and "runs freely otherwise" as distinct modes).
func (s *Scene) DoDynamics(ctx context.Context, duration float64) error {
	if err := s.Sync(); err != nil {
		return err
	}
	steps := stepsFor(duration, s.coord.H)
	done := make(chan error, 1)
	go func() { done <- s.coord.Run(ctx, steps) }()
	s.running = done
	return nil
}

// Sync blocks until any outstanding DoDynamics call finishes, joining
// its goroutine and returning its error. It is a no-op if no
// DoDynamics call is outstanding.
func (s *Scene) Sync() error {
	if s.running == nil {
		return nil
	}
	err := <-s.running
	s.running = nil
	return err
}

func stepsFor(duration, h float64) int {
	if h <= 0 {
		return 0
	}
	n := int(duration/h + 0.5)
	if n < 0 {
		n = 0
	}
	return n
}

func familyAt(fs []family.ID, i int) family.ID {
	if fs == nil {
		return 0
	}
	return fs[i]
}

func v3At(vs []lin.V3, i int) lin.V3 {
	if vs == nil {
		return lin.V3{}
	}
	return vs[i]
}

func quatAt(qs []lin.Q, i int) lin.Q {
	if qs == nil {
		return *lin.NewQI()
	}
	return qs[i]
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }

// forceAssigned reports whether law assigns all three components of
// the mandatory force output, per spec.md §7's "the core warns if
// declared wildcards or the output force are not assigned".
func forceAssigned(law *forcelaw.Law) bool {
	for _, n := range []string{"forceA.x", "forceA.y", "forceA.z"} {
		if _, ok := law.Outputs[n]; !ok {
			return false
		}
	}
	return true
}

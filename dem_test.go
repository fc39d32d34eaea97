// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dem

import (
	"context"
	"math"
	"testing"

	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/math/lin"
)

const springLaw = `
require stiffness
output forceA.x = matA_stiffness * overlap * nx
output forceA.y = matA_stiffness * overlap * ny
output forceA.z = matA_stiffness * overlap * nz
output torqueForceA.x = 0
output torqueForceA.y = 0
output torqueForceA.z = 0
output contactA.x = 0
output contactA.y = 0
output contactA.z = 0
output contactB.x = 0
output contactB.y = 0
output contactB.z = 0
`

// TestSingleSphereCollideSeparatesAndBoundsEnergy exercises the
// "SingleSphereCollide" scenario: two equal spheres thrown at each
// other rebound off their shared spring contact and end up further
// apart than they started, with their combined kinetic energy neither
// blowing up nor draining away (this force law is a lossless linear
// spring, so energy should come out close to conserved).
func TestSingleSphereCollideSeparatesAndBoundsEnergy(t *testing.T) {
	e := New(springLaw, InitTimeStep(1e-4), InitBinSize(1))
	e.InstructBoxDomainDimension(10, 10, 10, -1)

	mat := e.LoadMaterial(map[string]float64{"stiffness": 1e5})
	tmpl := e.LoadClumpType(1, lin.V3{X: 1, Y: 1, Z: 1}, []ComponentSpec{{Radius: 0.5, Material: mat}})

	batch, err := e.AddClumps(tmpl,
		[]lin.V3{{X: -0.6}, {X: 0.6}},
		[]lin.V3{{X: 1}, {X: -1}},
		nil, nil)
	if err != nil {
		t.Fatalf("AddClumps: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	ids, _ := e.OwnerIDs(batch)

	startKE := kineticEnergy(t, e, ids)

	if err := e.AdvanceThenSync(context.Background(), 0.2); err != nil {
		t.Fatalf("AdvanceThenSync: %v", err)
	}

	xa, _, _, err := e.Pos(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	xb, _, _, err := e.Pos(ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if xb-xa <= 1.2 {
		t.Errorf("separation after rebound = %g, want > 1.2 (starting gap)", xb-xa)
	}

	endKE := kineticEnergy(t, e, ids)
	if ratio := endKE / startKE; ratio < 0.5 || ratio > 1.1 {
		t.Errorf("combined KE ratio = %g, want roughly conserved (0.5-1.1)", ratio)
	}
}

func kineticEnergy(t *testing.T, e *Engine, ids []uint32) float64 {
	t.Helper()
	total := 0.0
	for _, id := range ids {
		v, err := e.Vel(id)
		if err != nil {
			t.Fatal(err)
		}
		total += 0.5 * (v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	}
	return total
}

// TestFMaxFamilyIsImplicitlyFixed covers family.Policy.Fixed's rule
// that the highest family id ever mentioned (F_MAX) is fixed even
// without an explicit SetFamilyFixed call: an owner placed in the only
// family this build sequence ever names should not move under gravity.
func TestFMaxFamilyIsImplicitlyFixed(t *testing.T) {
	e := New(springLaw, InitTimeStep(1e-3), InitBinSize(1), Gravity(0, 0, -9.8))
	e.InstructBoxDomainDimension(10, 10, 10, -1)

	mat := e.LoadMaterial(map[string]float64{"stiffness": 1e5})
	tmpl := e.LoadClumpType(1, lin.V3{X: 1, Y: 1, Z: 1}, []ComponentSpec{{Radius: 0.5, Material: mat}})

	batch, err := e.AddClumps(tmpl, []lin.V3{{Z: 5}}, nil, nil, []family.ID{3})
	if err != nil {
		t.Fatalf("AddClumps: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	ids, _ := e.OwnerIDs(batch)

	if err := e.AdvanceThenSync(context.Background(), 1e-2); err != nil {
		t.Fatalf("AdvanceThenSync: %v", err)
	}
	_, _, z, err := e.Pos(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(z-5) > 1e-9 {
		t.Errorf("owner in the implicit F_MAX family moved to z=%g, want unchanged at 5", z)
	}
}

// TestOnFlyFamilyChangeDisablesContact covers the "On-fly family
// change" scenario: an owner starting below the origin plane
// transitions out of family 0 into family 1 as soon as its z is
// negative, and contact between families 0 and 1 is disabled, so it
// never pushes back against an owner that starts at z=0 and stays in
// family 0.
func TestOnFlyFamilyChangeDisablesContact(t *testing.T) {
	e := New(springLaw, InitTimeStep(1e-3), InitBinSize(1))
	e.InstructBoxDomainDimension(10, 10, 10, -1)

	mat := e.LoadMaterial(map[string]float64{"stiffness": 1e5})
	tmpl := e.LoadClumpType(1, lin.V3{X: 1, Y: 1, Z: 1}, []ComponentSpec{{Radius: 0.5, Material: mat}})

	e.DisableContactBetweenFamilies(0, 1)
	// max(-z, 0) is nonzero exactly when z < 0, and 0 right at z == 0,
	// matching Policy.Evaluate's "fires on nonzero" contract without a
	// comparison operator in the expression grammar.
	cond, err := forcelaw.Parse("max(-z, 0)")
	if err != nil {
		t.Fatal(err)
	}
	e.AddFamilyTransition(family.TransitionRule{From: 0, To: 1, Condition: cond})

	batch, err := e.AddClumps(tmpl,
		[]lin.V3{{X: 0, Z: -0.6}, {X: 0.4, Z: 0}},
		nil, nil, []family.ID{0, 0})
	if err != nil {
		t.Fatalf("AddClumps: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	ids, _ := e.OwnerIDs(batch)

	if err := e.AdvanceThenSync(context.Background(), 5e-2); err != nil {
		t.Fatalf("AdvanceThenSync: %v", err)
	}

	xb, _, zb, err := e.Pos(ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(xb-0.4) > 1e-9 || math.Abs(zb) > 1e-9 {
		t.Errorf("family-0 owner at z=0 should never be pushed by the transitioned owner, moved to (x=%g, z=%g)", xb, zb)
	}
}

// TestGrowThenSettleAppend covers the "grow then settle" scenario:
// clumps appended mid-run via AppendClumps join the live owner count,
// and the first owners' positions stay finite after the final step.
func TestGrowThenSettleAppend(t *testing.T) {
	e := New(springLaw, InitTimeStep(1e-2), InitBinSize(1), Gravity(0, 0, -1))
	e.InstructBoxDomainDimension(10, 10, 10, -1)

	mat := e.LoadMaterial(map[string]float64{"stiffness": 1e5})
	tmpl := e.LoadClumpType(1, lin.V3{X: 1, Y: 1, Z: 1}, []ComponentSpec{{Radius: 0.5, Material: mat}})

	first, err := e.AddClumps(tmpl, []lin.V3{{X: -3}, {X: 3}}, nil, nil, nil)
	if err != nil {
		t.Fatalf("AddClumps: %v", err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	total := 2
	for layer := 0; layer < 5; layer++ {
		if err := e.AdvanceThenSync(context.Background(), 0.1); err != nil {
			t.Fatalf("AdvanceThenSync layer %d: %v", layer, err)
		}
		ids, err := e.AppendClumps(tmpl, []lin.V3{{X: -3, Y: float64(layer)}, {X: 3, Y: float64(layer)}}, nil, nil, nil)
		if err != nil {
			t.Fatalf("AppendClumps layer %d: %v", layer, err)
		}
		total += len(ids)
	}
	if err := e.AdvanceThenSync(context.Background(), 0.1); err != nil {
		t.Fatalf("final AdvanceThenSync: %v", err)
	}

	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalOwners != total {
		t.Errorf("TotalOwners = %d, want %d", stats.TotalOwners, total)
	}

	firstIDs, _ := e.OwnerIDs(first)
	for _, id := range firstIDs {
		x, y, z, err := e.Pos(id)
		if err != nil {
			t.Fatal(err)
		}
		if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) {
			t.Errorf("owner %d position went NaN: (%g, %g, %g)", id, x, y, z)
		}
	}
}

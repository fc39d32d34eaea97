// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/galvanized/dem/dynamic"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
	"github.com/galvanized/dem/template"
	"github.com/galvanized/dem/wildcard"
)

const repelLaw = `
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

func newTestCoordinator(t *testing.T) (*Coordinator, *scene.Scene) {
	t.Helper()

	domain, err := spatial.NewDomain(10, 10, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	grid, err := spatial.NewBinGrid(domain, 1)
	if err != nil {
		t.Fatal(err)
	}

	matlib := material.NewLibrary()
	h := matlib.Add(map[string]float64{"stiffness": 500})

	clumps := template.NewClumpStore(32)
	sphere := clumps.Add(template.ClumpTemplate{
		Components: []template.Component{{Radius: 0.5, Material: h}},
		Mass:       1,
		Inertia:    lin.V3{X: 0.1, Y: 0.1, Z: 0.1},
	})
	clumps.Flatten()

	law, err := forcelaw.ParseLaw(repelLaw)
	if err != nil {
		t.Fatal(err)
	}

	policy := family.NewPolicy(1)
	sc := scene.New(domain, policy)
	sc.AddOwner(scene.Owner{Kind: scene.Clump, Template: sphere, Mass: 1, Inertia: lin.V3{X: 0.1, Y: 0.1, Z: 0.1}, Ori: *lin.NewQI(), Addr: domain.ToAddress(0, 0, 0)})
	sc.AddOwner(scene.Owner{Kind: scene.Clump, Template: sphere, Mass: 1, Inertia: lin.V3{X: 0.1, Y: 0.1, Z: 0.1}, Ori: *lin.NewQI(), Addr: domain.ToAddress(0.8, 0, 0)})

	c := &Coordinator{
		Scene:     sc,
		Domain:    domain,
		Grid:      grid,
		Clumps:    clumps,
		Materials: matlib,
		Wildcards: wildcard.NewSet(),
		Law:       law,
		Policy:    &Policy{U: 0, S: 1.1, VMax: 5, ConstantTimeStep: true},
		Rule:      dynamic.ForwardEuler,
		Gravity:   lin.V3{},
		H:         0.01,
	}
	return c, sc
}

func TestRunPushesOverlappingSpheresApart(t *testing.T) {
	c, sc := newTestCoordinator(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx, 20); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	x0, _, _, err := sc.GetOwnerPos(0)
	if err != nil {
		t.Fatal(err)
	}
	x1, _, _, err := sc.GetOwnerPos(1)
	if err != nil {
		t.Fatal(err)
	}
	if x1-x0 <= 0.8 {
		t.Errorf("expected the overlapping spheres to separate past their initial 0.8 gap, got %g", x1-x0)
	}
}

func TestRunWithUpdateFrequencyStillCompletes(t *testing.T) {
	c, _ := newTestCoordinator(t)
	c.Policy.U = 5

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx, 30); err != nil {
		t.Fatalf("Run with U=5 returned an error: %v", err)
	}
}

func TestPolicyEnvelopeFormula(t *testing.T) {
	p := &Policy{U: 10, S: 1.1, VMax: 3, ConstantTimeStep: true}
	got := p.Envelope(1e-5)
	vmax, h, s := 3.0, 1e-5, 1.1
	want := vmax * h * 10 * s
	if got != want {
		t.Errorf("Envelope = %g, want %g", got, want)
	}
}

func TestPolicyPinnedBetaOverridesFormula(t *testing.T) {
	p := &Policy{U: 10, S: 1.1, VMax: 3, ConstantTimeStep: true, Beta: 0.25}
	if got := p.Envelope(1e-5); got != 0.25 {
		t.Errorf("Envelope = %g, want the pinned value 0.25", got)
	}
}

func TestPolicyNeedsFreshContact(t *testing.T) {
	synchronous := &Policy{U: 0}
	if !synchronous.NeedsFreshContact(0) {
		t.Error("U=0 should always need a fresh contact list")
	}

	bounded := &Policy{U: 3}
	if bounded.NeedsFreshContact(2) {
		t.Error("U=3 should not need fresh contact data before 3 steps have elapsed")
	}
	if !bounded.NeedsFreshContact(3) {
		t.Error("U=3 should need fresh contact data once 3 steps have elapsed")
	}

	drift := &Policy{U: -1}
	if drift.NeedsFreshContact(1000) {
		t.Error("U<0 should never force a wait for fresh contact data")
	}
}

func TestFamilyTransitionSeesPerOwnerPosition(t *testing.T) {
	c, sc := newTestCoordinator(t)

	cond, err := forcelaw.Parse("z")
	if err != nil {
		t.Fatal(err)
	}
	// Policy.Evaluate fires a rule when its Condition evaluates non-
	// zero, so "z" alone distinguishes an owner below the origin plane
	// (z=-1, non-zero) from one sitting exactly on it (z=0).
	c.Scene.Policy = family.NewPolicy(2)
	c.Scene.Policy.AddTransition(family.TransitionRule{From: 0, To: 1, Condition: cond})

	if err := sc.SetOwnerPos(0, 0, 0, -1); err != nil {
		t.Fatal(err)
	}
	if err := sc.SetOwnerPos(1, 5, 5, 0); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx, 1); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	if sc.Snapshot()[0].Family != 1 {
		t.Errorf("owner at z=-1 should have transitioned to family 1, got family %d", sc.Snapshot()[0].Family)
	}
	if sc.Snapshot()[1].Family != 0 {
		t.Errorf("owner at z=0 should have stayed in family 0, got family %d", sc.Snapshot()[1].Family)
	}
}

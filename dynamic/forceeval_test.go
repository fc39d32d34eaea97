// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dynamic

import (
	"testing"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/wildcard"
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

func twoTouchingSpherePrims() []kinematic.Primitive {
	return []kinematic.Primitive{
		{Owner: 0, Kind: kinematic.Sphere, Center: lin.V3{X: 0, Y: 0, Z: 0}, Radius: 1},
		{Owner: 1, Kind: kinematic.Sphere, Center: lin.V3{X: 1.5, Y: 0, Z: 0}, Radius: 1},
	}
}

func TestEvaluateForcesAppliesActionReactionPair(t *testing.T) {
	law, err := forcelaw.ParseLaw(springLaw)
	if err != nil {
		t.Fatal(err)
	}
	matlib := material.NewLibrary()
	h := matlib.Add(map[string]float64{"stiffness": 100})

	prims := twoTouchingSpherePrims()
	prims[0].Material, prims[1].Material = h, h
	pairs := []contact.Pair{{IDA: 0, IDB: 1, Kind: contact.SphereSphere, HistorySlot: contact.NullMapping}}

	owners := []scene.Owner{
		{Mass: 1, Ori: *lin.NewQI()},
		{Mass: 1, Ori: *lin.NewQI()},
	}
	policy := family.NewPolicy(0)
	families := []family.ID{0, 0}
	wc := wildcard.NewSet()

	accum := EvaluateForces(prims, pairs, law, matlib, wc, owners, families, policy)

	if accum[0].Force.X >= 0 {
		t.Errorf("owner A pushed toward B instead of away: forceA.x = %g", accum[0].Force.X)
	}
	if accum[1].Force.X != -accum[0].Force.X {
		t.Errorf("force on B = %g, want the negation of force on A (%g)", accum[1].Force.X, accum[0].Force.X)
	}
}

func TestEvaluateForcesSkipsPairsWithFamilyFlippedMidStep(t *testing.T) {
	law, err := forcelaw.ParseLaw(springLaw)
	if err != nil {
		t.Fatal(err)
	}
	matlib := material.NewLibrary()
	h := matlib.Add(map[string]float64{"stiffness": 100})

	prims := twoTouchingSpherePrims()
	prims[0].Material, prims[1].Material = h, h
	pairs := []contact.Pair{{IDA: 0, IDB: 1, Kind: contact.SphereSphere, HistorySlot: contact.NullMapping}}

	owners := []scene.Owner{
		{Mass: 1, Ori: *lin.NewQI(), Family: 1}, // family changed since the production that built pairs.
		{Mass: 1, Ori: *lin.NewQI(), Family: 0},
	}
	policy := family.NewPolicy(1)
	startFamilies := []family.ID{0, 0}
	wc := wildcard.NewSet()

	accum := EvaluateForces(prims, pairs, law, matlib, wc, owners, startFamilies, policy)

	if accum[0].Force != (lin.V3{}) || accum[1].Force != (lin.V3{}) {
		t.Errorf("expected no force applied once a family changed mid-step, got %+v / %+v", accum[0].Force, accum[1].Force)
	}
}

func TestEvaluateForcesSkipsInadmissiblePairs(t *testing.T) {
	law, err := forcelaw.ParseLaw(springLaw)
	if err != nil {
		t.Fatal(err)
	}
	matlib := material.NewLibrary()
	h := matlib.Add(map[string]float64{"stiffness": 100})

	prims := twoTouchingSpherePrims()
	prims[0].Material, prims[1].Material = h, h
	pairs := []contact.Pair{{IDA: 0, IDB: 1, Kind: contact.SphereSphere, HistorySlot: contact.NullMapping}}

	owners := []scene.Owner{
		{Mass: 1, Ori: *lin.NewQI(), Family: 0},
		{Mass: 1, Ori: *lin.NewQI(), Family: 1},
	}
	policy := family.NewPolicy(1)
	policy.DisableContact(0, 1)
	startFamilies := []family.ID{0, 1}
	wc := wildcard.NewSet()

	accum := EvaluateForces(prims, pairs, law, matlib, wc, owners, startFamilies, policy)

	if accum[0].Force != (lin.V3{}) || accum[1].Force != (lin.V3{}) {
		t.Errorf("expected no force applied for an inadmissible family pair, got %+v / %+v", accum[0].Force, accum[1].Force)
	}
}

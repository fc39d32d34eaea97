// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import (
	"testing"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
	"github.com/galvanized/dem/template"
)

func setupTwoTouchingSpheres(t *testing.T) (*spatial.BinGrid, []Primitive, *family.Policy, []scene.Owner) {
	t.Helper()
	d, err := spatial.NewDomain(10, 10, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	grid, err := spatial.NewBinGrid(d, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	lib := material.NewLibrary()
	h := lib.Add(map[string]float64{"E": 1e7})

	clumps := template.NewClumpStore(1000)
	one := clumps.Add(template.ClumpTemplate{Components: []template.Component{{Radius: 0.5, Material: h}}})
	clumps.Flatten()

	owners := []scene.Owner{
		{Kind: scene.Clump, Template: one, Family: 0, Scale: 1, Addr: d.ToAddress(1, 1, 1)},
		{Kind: scene.Clump, Template: one, Family: 0, Scale: 1, Addr: d.ToAddress(1.9, 1, 1)},
	}
	prims := BuildPrimitives(d, owners, clumps, nil, nil)
	policy := family.NewPolicy(1)
	return grid, prims, policy, owners
}

func TestBroadAndNarrowPhaseFindTouchingSpheres(t *testing.T) {
	grid, prims, policy, owners := setupTwoTouchingSpheres(t)
	prod, err := BroadPhase(grid, prims, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	pairs := NarrowPhase(prod, policy, owners)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	if pairs[0].Kind != contact.SphereSphere {
		t.Errorf("pair kind = %v, want SphereSphere", pairs[0].Kind)
	}
}

func TestSharedOwnerSpheresNeverContact(t *testing.T) {
	d, err := spatial.NewDomain(10, 10, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	grid, err := spatial.NewBinGrid(d, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	lib := material.NewLibrary()
	h := lib.Add(map[string]float64{"E": 1e7})
	clumps := template.NewClumpStore(1000)
	two := clumps.Add(template.ClumpTemplate{Components: []template.Component{
		{Radius: 0.5, Material: h},
		{Radius: 0.5, Material: h},
	}})
	clumps.Flatten()
	owners := []scene.Owner{{Kind: scene.Clump, Template: two, Family: 0, Scale: 1, Addr: d.ToAddress(1, 1, 1)}}
	prims := BuildPrimitives(d, owners, clumps, nil, nil)
	prod, err := BroadPhase(grid, prims, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	policy := family.NewPolicy(1)
	pairs := NarrowPhase(prod, policy, owners)
	if len(pairs) != 0 {
		t.Errorf("two spheres of the same clump should never contact, got %d pairs", len(pairs))
	}
}

func TestDisabledFamilyPairIsFiltered(t *testing.T) {
	grid, prims, policy, owners := setupTwoTouchingSpheres(t)
	owners[1].Family = 1
	policy = family.NewPolicy(2)
	policy.DisableContact(0, 1)
	prod, err := BroadPhase(grid, prims, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	pairs := NarrowPhase(prod, policy, owners)
	if len(pairs) != 0 {
		t.Errorf("disabled family pair should yield no contacts, got %d", len(pairs))
	}
}

func TestMapHistoryFindsSurvivingPair(t *testing.T) {
	prev := []contact.Pair{{IDA: 1, IDB: 2, Kind: contact.SphereSphere, PreviousSlot: contact.NullMapping}}
	next := []contact.Pair{{IDA: 2, IDB: 1, Kind: contact.SphereSphere, PreviousSlot: contact.NullMapping}}
	next = MapHistory(prev, next)
	if next[0].PreviousSlot != 0 {
		t.Errorf("PreviousSlot = %d, want 0", next[0].PreviousSlot)
	}
}

func TestInactiveFindsDisappearedPair(t *testing.T) {
	prev := []contact.Pair{{IDA: 1, IDB: 2, Kind: contact.SphereSphere}}
	next := []contact.Pair{}
	gone := Inactive(prev, next)
	if len(gone) != 1 || gone[0] != 0 {
		t.Errorf("Inactive() = %v, want [0]", gone)
	}
}

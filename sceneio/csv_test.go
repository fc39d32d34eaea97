// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package sceneio

import (
	"strings"
	"testing"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/dynamic"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
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

func TestWriteSphereRowsEmitsOneRowPerSpherePrimitive(t *testing.T) {
	owners := []scene.Owner{
		{Ori: *lin.NewQI(), Vel: lin.V3{X: 3, Y: 4, Z: 0}, Family: 1, Scale: 1.5},
	}
	prims := []kinematic.Primitive{
		{Owner: 0, Kind: kinematic.Sphere, Center: lin.V3{X: 1, Y: 2, Z: 3}, Radius: 0.5, Material: material.Handle(2)},
		{Owner: 0, Kind: kinematic.Plane}, // must be skipped: not a sphere primitive.
	}

	var buf strings.Builder
	err := WriteSphereRows(&buf, prims, owners, []SphereColumn{ColumnXYZ, ColumnAbsV, ColumnFamily, ColumnExpFactor})
	if err != nil {
		t.Fatalf("WriteSphereRows: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a header and one sphere row, got %d lines: %q", len(lines), lines)
	}
	if !strings.Contains(lines[1], "1,2,3,5,1,1.5") {
		t.Errorf("sphere row = %q, want fields 1,2,3,5,1,1.5 in order", lines[1])
	}
}

func TestWriteContactRowsRejectsLengthMismatch(t *testing.T) {
	var buf strings.Builder
	err := WriteContactRows(&buf, []contact.Pair{{}}, nil, []ContactColumn{ColumnOwners})
	if err == nil {
		t.Error("expected an error when pairs and details have different lengths")
	}
}

func TestWriteContactRowsEmitsForceLawOutput(t *testing.T) {
	law, err := forcelaw.ParseLaw(repelLaw)
	if err != nil {
		t.Fatal(err)
	}
	matlib := material.NewLibrary()
	h := matlib.Add(map[string]float64{"stiffness": 100})

	prims := []kinematic.Primitive{
		{Owner: 0, Kind: kinematic.Sphere, Center: lin.V3{X: 0, Y: 0, Z: 0}, Radius: 0.6, Material: h},
		{Owner: 1, Kind: kinematic.Sphere, Center: lin.V3{X: 1, Y: 0, Z: 0}, Radius: 0.6, Material: h},
	}
	pairs := []contact.Pair{{IDA: 0, IDB: 1, Kind: contact.SphereSphere, HistorySlot: -1, PreviousSlot: contact.NullMapping}}
	owners := []scene.Owner{
		{Ori: *lin.NewQI(), Family: 0},
		{Ori: *lin.NewQI(), Family: 0},
	}
	policy := family.NewPolicy(0)
	families := []family.ID{0, 0}

	_, details := dynamic.EvaluateForcesDetailed(prims, pairs, law, matlib, wildcard.NewSet(), owners, families, policy)
	if len(details) != 1 {
		t.Fatalf("EvaluateForcesDetailed produced %d results, want 1", len(details))
	}

	var buf strings.Builder
	if err := WriteContactRows(&buf, pairs, details, []ContactColumn{ColumnOwners, ColumnComponent}); err != nil {
		t.Fatalf("WriteContactRows: %v", err)
	}
	if !strings.Contains(buf.String(), "0,1,SPHERE_SPHERE") {
		t.Errorf("output = %q, want a row containing 0,1,SPHERE_SPHERE", buf.String())
	}
}

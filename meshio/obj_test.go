// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package meshio

import (
	"strings"
	"testing"

	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
)

const cubeCorner = `
# a single corner of a cube, two triangles
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1 2 3
f 1 3 4
`

func TestLoadOBJParsesTriangleFaces(t *testing.T) {
	mesh, err := LoadOBJ(strings.NewReader(cubeCorner), material.Handle(3))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mesh.Facets) != 2 {
		t.Fatalf("Facets = %d, want 2", len(mesh.Facets))
	}
	for i, f := range mesh.Facets {
		if f.Material != material.Handle(3) {
			t.Errorf("facet %d Material = %v, want 3", i, f.Material)
		}
	}
	if mesh.Facets[0].V0 != (lin.V3{}) {
		t.Errorf("facet 0 V0 = %+v, want origin", mesh.Facets[0].V0)
	}
}

const quadFace = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestLoadOBJFanTriangulatesQuads(t *testing.T) {
	mesh, err := LoadOBJ(strings.NewReader(quadFace), material.Handle(0))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mesh.Facets) != 2 {
		t.Fatalf("a quad face should fan triangulate into 2 facets, got %d", len(mesh.Facets))
	}
}

const indexedFaceWithNormals = `
v 0 0 0
v 1 0 0
v 1 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

func TestLoadOBJIgnoresNormalAndTextureIndices(t *testing.T) {
	mesh, err := LoadOBJ(strings.NewReader(indexedFaceWithNormals), material.Handle(0))
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(mesh.Facets) != 1 {
		t.Fatalf("Facets = %d, want 1", len(mesh.Facets))
	}
}

func TestLoadOBJRejectsEmptyInput(t *testing.T) {
	if _, err := LoadOBJ(strings.NewReader("# comment only\n"), material.Handle(0)); err == nil {
		t.Error("expected an error loading a file with no faces")
	}
}

func TestLoadOBJRejectsOutOfRangeFaceIndex(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 9\n"
	if _, err := LoadOBJ(strings.NewReader(src), material.Handle(0)); err == nil {
		t.Error("expected an error for a face index past the vertex count")
	}
}

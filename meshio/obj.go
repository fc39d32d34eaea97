// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package meshio loads the triangle geometry behind a MeshTemplate from
// disk formats external tools produce. A Wavefront OBJ file is a text
// representation of one or more 3D models; this loader only cares about
// its vertex positions and triangle faces (spec.md §3's mesh bodies have
// no use for the texture/shading data a renderer would want).
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/template"
)

// LoadOBJ parses r as a Wavefront OBJ file and returns a MeshTemplate
// whose facets use mat. Only "v" (vertex) and "f" (face) records are
// read; normals, texture coordinates, groups, and material directives
// are accepted but ignored. A face with more than three vertices is fan
// triangulated around its first vertex. r is expected to already be
// open; the caller closes it.
func LoadOBJ(r io.Reader, mat material.Handle) (template.MeshTemplate, error) {
	var verts []lin.V3
	var t template.MeshTemplate

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(line)
		switch tokens[0] {
		case "v":
			v, err := parseVertex(tokens[1:])
			if err != nil {
				return template.MeshTemplate{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
			}
			verts = append(verts, v)
		case "f":
			facets, err := parseFace(tokens[1:], verts, mat)
			if err != nil {
				return template.MeshTemplate{}, fmt.Errorf("meshio: line %d: %w", lineNo, err)
			}
			t.Facets = append(t.Facets, facets...)
		case "vn", "vt", "o", "g", "s", "mtllib", "usemtl":
			// rendering/grouping metadata; no effect on contact geometry.
		}
	}
	if err := scanner.Err(); err != nil {
		return template.MeshTemplate{}, fmt.Errorf("meshio: %w", err)
	}
	if len(t.Facets) == 0 {
		return template.MeshTemplate{}, fmt.Errorf("meshio: no triangle faces found")
	}
	return t, nil
}

func parseVertex(fields []string) (lin.V3, error) {
	if len(fields) < 3 {
		return lin.V3{}, fmt.Errorf("bad vertex %q", strings.Join(fields, " "))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return lin.V3{}, fmt.Errorf("bad vertex %q: %w", strings.Join(fields, " "), err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return lin.V3{}, fmt.Errorf("bad vertex %q: %w", strings.Join(fields, " "), err)
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return lin.V3{}, fmt.Errorf("bad vertex %q: %w", strings.Join(fields, " "), err)
	}
	return lin.V3{X: x, Y: y, Z: z}, nil
}

// parseFace turns one face record's vertex/texture/normal index groups
// into one or more triangle facets, fan triangulating anything past a
// triangle. Indices are 1-based per the OBJ spec and are resolved
// against verts, which already holds every "v" record seen so far (OBJ
// requires faces to follow the vertices they reference).
func parseFace(fields []string, verts []lin.V3, mat material.Handle) ([]template.Facet, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face %q needs at least 3 vertices", strings.Join(fields, " "))
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		v, err := parseFaceVertexIndex(f)
		if err != nil {
			return nil, err
		}
		if v < 0 || v >= len(verts) {
			return nil, fmt.Errorf("face vertex index %d out of range (%d vertices so far)", v+1, len(verts))
		}
		idx[i] = v
	}
	facets := make([]template.Facet, 0, len(idx)-2)
	for i := 1; i < len(idx)-1; i++ {
		facets = append(facets, template.Facet{
			V0:       verts[idx[0]],
			V1:       verts[idx[i]],
			V2:       verts[idx[i+1]],
			Material: mat,
		})
	}
	return facets, nil
}

// parseFaceVertexIndex extracts the vertex index from one face token,
// which may be a bare "v", "v/t", "v//n", or "v/t/n" group. Only the
// vertex index is needed; texture and normal indices are discarded. The
// returned index is zero based.
func parseFaceVertexIndex(token string) (int, error) {
	v := token
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		v = token[:slash]
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q: %w", token, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("relative face index %q is not supported", token)
	}
	return n - 1, nil
}

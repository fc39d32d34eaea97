// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dem

import (
	"io"

	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/sceneio"
)

// ExportSpheres writes one CSV row per sphere primitive in the current
// scene state to w (spec.md §6's per-sphere CSV output). Call it
// between steps, i.e. after Initialize or after a Sync.
func (e *Engine) ExportSpheres(w io.Writer, cols []sceneio.SphereColumn) error {
	if e.sc == nil {
		return &ConfigError{Field: "ExportSpheres", Err: errNotInitialized}
	}
	coord := e.sc.Coordinator()
	owners := coord.Scene.Snapshot()
	prims := kinematic.BuildPrimitives(coord.Domain, owners, coord.Clumps, coord.Analyticals, coord.Meshes)
	return sceneio.WriteSphereRows(w, prims, owners, cols)
}

// ExportContacts writes one CSV row per contact pair surviving the most
// recently completed dT step to w (spec.md §6's per-contact CSV
// output). It reports nothing before the first Advance/AdvanceThenSync
// call completes.
func (e *Engine) ExportContacts(w io.Writer, cols []sceneio.ContactColumn) error {
	if e.sc == nil {
		return &ConfigError{Field: "ExportContacts", Err: errNotInitialized}
	}
	coord := e.sc.Coordinator()
	return sceneio.WriteContactRows(w, coord.LastPairs, coord.LastDetails, cols)
}

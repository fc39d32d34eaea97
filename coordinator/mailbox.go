// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package coordinator

import (
	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/scene"
)

// PoseSnapshot is dT's mailbox message into kT: a private pose-state copy
// for one production, replacing the original's dT->kT device buffer
// (spec.md §9 Design Notes).
type PoseSnapshot struct {
	Owners []scene.Owner
	Time   float64
	Step   uint64
}

// ContactSet is kT's mailbox message into dT: one production's surviving
// contact pairs and the world-space primitives they reference, replacing
// the original's kT->dT device buffer.
type ContactSet struct {
	Primitives []kinematic.Primitive
	Pairs      []contact.Pair
	// StepStartFamilies is each owner's family as of the PoseSnapshot this
	// set was produced from — dT compares against the live family at
	// evaluation time to implement the "mask flipped mid-step" skip rule
	// of spec.md §4.8.
	StepStartFamilies []family.ID
	Step              uint64
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package dynamic implements the dynamic thread's two stages: force
// evaluation against the active force law (spec.md §4.8) and pose/
// velocity integration (spec.md §4.9).
package dynamic

import (
	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/wildcard"
)

// Accum is the force/torque accumulated on one owner this step, prior
// to integration.
type Accum struct {
	Force  lin.V3
	Torque lin.V3
}

// PairForce is one surviving contact's evaluated force-law output,
// retained alongside the per-owner Accum it folded into so a CSV
// exporter can emit spec.md §6's contact-pair columns (`OWNERS`,
// `FORCE`, `POINT`, `NORMAL`, `TORQUE_ONLY_FORCE`) without re-running
// the force law.
type PairForce struct {
	OwnerA, OwnerB uint32
	Normal         lin.V3
	Force          lin.V3 // applied to OwnerA; OwnerB receives the negation.
	PointA, PointB lin.V3 // world-space contact points on each owner's surface.
	TorqueOnlyForce lin.V3
}

// EvaluateForces walks every contact pair, evaluates the active force
// law against each, and returns the per-owner force/torque accumulation
// (spec.md §4.8). families holds each owner's family as of the start of
// the step the contact list was produced for; an owner whose family
// changed since then has its contacts skipped (force set to zero), per
// spec.md §4.8's "mask flipped mid-step" rule.
func EvaluateForces(prims []kinematic.Primitive, pairs []contact.Pair, law *forcelaw.Law, matlib *material.Library, wc *wildcard.Set, owners []scene.Owner, stepStartFamilies []family.ID, policy *family.Policy) []Accum {
	accum, _ := EvaluateForcesDetailed(prims, pairs, law, matlib, wc, owners, stepStartFamilies, policy)
	return accum
}

// EvaluateForcesDetailed is EvaluateForces plus a PairForce record for
// every surviving contact, in the same order as pairs (skipped pairs are
// simply absent). Used by sceneio's contact-row CSV export.
func EvaluateForcesDetailed(prims []kinematic.Primitive, pairs []contact.Pair, law *forcelaw.Law, matlib *material.Library, wc *wildcard.Set, owners []scene.Owner, stepStartFamilies []family.ID, policy *family.Policy) ([]Accum, []PairForce) {
	accum := make([]Accum, len(owners))
	var details []PairForce
	for _, pair := range pairs {
		pa, pb := prims[pair.IDA], prims[pair.IDB]
		oa, ob := owners[pa.Owner], owners[pb.Owner]

		if stepStartFamilies[pa.Owner] != oa.Family || stepStartFamilies[pb.Owner] != ob.Family {
			continue
		}
		if !policy.Admissible(oa.Family, ob.Family) {
			continue
		}

		geom := kinematic.Resolve(pa, pb)
		vars := contactVars(pa, pb, oa, ob, geom, matlib, law)
		if pair.HistorySlot >= 0 {
			for _, name := range law.Reads {
				v, _ := wc.Get(name, pair.HistorySlot)
				vars["wc_"+name] = v
			}
		}

		out := law.Eval(vars)
		forceA := lin.V3{X: out["forceA.x"], Y: out["forceA.y"], Z: out["forceA.z"]}
		torqueA := lin.V3{X: out["torqueForceA.x"], Y: out["torqueForceA.y"], Z: out["torqueForceA.z"]}
		contactA := lin.V3{X: out["contactA.x"], Y: out["contactA.y"], Z: out["contactA.z"]}
		contactB := lin.V3{X: out["contactB.x"], Y: out["contactB.y"], Z: out["contactB.z"]}

		rA := lin.NewV3().MultvQ(&contactA, &oa.Ori)
		rB := lin.NewV3().MultvQ(&contactB, &ob.Ori)
		torqueFromForceA := lin.NewV3().Cross(rA, &forceA)
		negForce := lin.NewV3().Neg(&forceA)
		torqueFromForceB := lin.NewV3().Cross(rB, negForce)

		accum[pa.Owner].Force.Add(&accum[pa.Owner].Force, &forceA)
		accum[pa.Owner].Torque.Add(&accum[pa.Owner].Torque, torqueFromForceA)
		accum[pa.Owner].Torque.Add(&accum[pa.Owner].Torque, &torqueA)

		accum[pb.Owner].Force.Add(&accum[pb.Owner].Force, negForce)
		accum[pb.Owner].Torque.Add(&accum[pb.Owner].Torque, torqueFromForceB)

		if pair.HistorySlot >= 0 {
			for _, name := range law.Writes {
				if v, ok := out["wc_"+name]; ok {
					wc.Set(name, pair.HistorySlot, v)
				}
			}
		}

		pointA := lin.NewV3().Add(rA, &pa.Center)
		pointB := lin.NewV3().Add(rB, &pb.Center)
		details = append(details, PairForce{
			OwnerA: pa.Owner, OwnerB: pb.Owner,
			Normal: geom.Normal, Force: forceA,
			PointA: *pointA, PointB: *pointB,
			TorqueOnlyForce: torqueA,
		})
	}
	return accum, details
}

func contactVars(pa, pb kinematic.Primitive, oa, ob scene.Owner, geom kinematic.Geometry, matlib *material.Library, law *forcelaw.Law) map[string]float64 {
	vars := map[string]float64{
		"overlap": geom.Overlap,
		"nx":      geom.Normal.X, "ny": geom.Normal.Y, "nz": geom.Normal.Z,
		"posA.x": pa.Center.X, "posA.y": pa.Center.Y, "posA.z": pa.Center.Z,
		"posB.x": pb.Center.X, "posB.y": pb.Center.Y, "posB.z": pb.Center.Z,
		"velA.x": oa.Vel.X, "velA.y": oa.Vel.Y, "velA.z": oa.Vel.Z,
		"velB.x": ob.Vel.X, "velB.y": ob.Vel.Y, "velB.z": ob.Vel.Z,
	}
	for _, name := range law.Requires {
		va, _ := matlib.Get(pa.Material, name)
		vb, _ := matlib.Get(pb.Material, name)
		vars["matA_"+name] = va
		vars["matB_"+name] = vb
	}
	return vars
}

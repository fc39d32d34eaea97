// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dynamic

import (
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
)

// Rule selects which of the three integration schemes spec.md §4.9
// names advances pose and velocity from the accumulated acceleration.
type Rule uint8

const (
	ForwardEuler Rule = iota
	CenteredDifference
	ExtendedTaylor
)

// Integrate advances every owner one step of size h, following the
// teacher's pbd_simulate loop shape: iterate owners, skip fixed ones,
// compute acceleration from accumulated force/torque plus gravity, then
// apply the selected update rule. Prescribed-motion families bypass the
// force-driven update for whichever axis their PrescribedMotion rule
// covers (spec.md §4.9). vars supplies the variable environment
// prescribed-motion expressions evaluate against (typically at least
// "t", the simulation time).
func Integrate(owners []scene.Owner, accum []Accum, domain *spatial.Domain, policy *family.Policy, gravity lin.V3, h float64, rule Rule, vars map[string]float64) {
	for i := range owners {
		o := &owners[i]
		if policy.Fixed(o.Family) {
			continue
		}

		linAcc := *lin.NewV3().Scale(&accum[i].Force, 1/o.Mass)
		linAcc.Add(&linAcc, &gravity)
		angAcc := angularAcceleration(o, accum[i].Torque)

		prescribed, hasPrescribed := policy.PrescribedMotion(o.Family)

		applyLinear(o, domain, &linAcc, h, rule)
		applyAngular(o, &angAcc, h, prescribed, hasPrescribed, vars)

		o.Acc = linAcc
		o.AAcc = angAcc
		o.Ori.Unit()
		o.Addr = domain.Normalize(o.Addr)
	}
}

// angularAcceleration divides torque by the owner's diagonal
// principal-frame inertia, guarding against a zero inertia component.
func angularAcceleration(o *scene.Owner, torque lin.V3) lin.V3 {
	inv := func(i, t float64) float64 {
		if i == 0 {
			return 0
		}
		return t / i
	}
	return lin.V3{X: inv(o.Inertia.X, torque.X), Y: inv(o.Inertia.Y, torque.Y), Z: inv(o.Inertia.Z, torque.Z)}
}

// applyLinear advances o's linear velocity and, via domain, its
// voxel/sub-voxel position, honoring the selected integration rule. No
// family rule prescribes linear motion directly — only SetFamilyFixed
// (handled by Integrate itself) and SetFamilyPrescribedAngVel, which
// governs rotation (applyAngular) — so this is rule-only.
func applyLinear(o *scene.Owner, domain *spatial.Domain, acc *lin.V3, h float64, rule Rule) {
	x, y, z := domain.ToPos(o.Addr)
	newVel := *lin.NewV3().Scale(acc, h)
	newVel.Add(&newVel, &o.Vel)
	o.Vel = newVel

	var dx, dy, dz float64
	switch rule {
	case ForwardEuler, CenteredDifference:
		dx, dy, dz = newVel.X*h, newVel.Y*h, newVel.Z*h
	case ExtendedTaylor:
		dx = newVel.X*h + 0.5*acc.X*h*h
		dy = newVel.Y*h + 0.5*acc.Y*h*h
		dz = newVel.Z*h + 0.5*acc.Z*h*h
	}
	o.Addr = domain.ToAddress(x+dx, y+dy, z+dz)
}

// applyAngular advances o's angular velocity and orientation. A
// prescribed-motion rule on o's family overrides whichever axes it
// names: with AsPosition the axis expression is a per-step angle
// increment applied directly; otherwise it replaces that axis's angular
// velocity before the usual integration.
func applyAngular(o *scene.Owner, acc *lin.V3, h float64, pm family.PrescribedMotion, hasPM bool, vars map[string]float64) {
	newAVel := *lin.NewV3().Scale(acc, h)
	newAVel.Add(&newAVel, &o.AVel)

	var axisAngle lin.V3 // pure prescribed angle increments, applied after velocity-driven rotation.
	havePrescribedAngle := false
	if hasPM {
		overridePrescribedAxis(&newAVel.X, &axisAngle.X, pm.Wx, pm.AsPosition, vars, &havePrescribedAngle)
		overridePrescribedAxis(&newAVel.Y, &axisAngle.Y, pm.Wy, pm.AsPosition, vars, &havePrescribedAngle)
		overridePrescribedAxis(&newAVel.Z, &axisAngle.Z, pm.Wz, pm.AsPosition, vars, &havePrescribedAngle)
	}
	o.AVel = newAVel

	if speed := newAVel.Len(); speed != 0 {
		dq := lin.NewQ().SetAa(newAVel.X/speed, newAVel.Y/speed, newAVel.Z/speed, speed*h)
		o.Ori.Mult(dq, &o.Ori)
	}
	if havePrescribedAngle {
		if angle := axisAngle.Len(); angle != 0 {
			dq := lin.NewQ().SetAa(axisAngle.X/angle, axisAngle.Y/angle, axisAngle.Z/angle, angle)
			o.Ori.Mult(dq, &o.Ori)
		}
	}
}

// overridePrescribedAxis applies one axis of a prescribed angular-
// velocity rule. When asPosition is set, the expression is a direct
// angle increment written to angle and the axis's angular velocity is
// zeroed; otherwise the expression replaces that axis's angular
// velocity in place.
func overridePrescribedAxis(avel, angle *float64, rule family.AxisRule, asPosition bool, vars map[string]float64, have *bool) {
	if rule.None() {
		return
	}
	v := rule.Expr.Eval(vars)
	if asPosition {
		*angle = v
		*avel = 0
		*have = true
		return
	}
	*avel = v
}

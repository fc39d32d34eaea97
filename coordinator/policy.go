// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package coordinator runs the kinematic (kT) and dynamic (dT) goroutines
// of spec.md §4.11/§9 over typed mailbox channels, applying the envelope
// and update-frequency policy spec.md §5 describes.
package coordinator

import "log/slog"

// Policy is the coordinator's update-frequency and contact-envelope
// policy (spec.md §5).
type Policy struct {
	// U is the update frequency: 0 means dT waits for kT every step,
	// >0 means dT may run up to U steps on the last contact list before
	// blocking for a fresh one, <0 means unbounded drift (warned once).
	U int
	// S is the envelope safety multiplier.
	S float64
	// VMax is the expected maximum sphere speed used by the automatic
	// envelope formula.
	VMax float64
	// ConstantTimeStep must be true for Envelope to compute beta
	// automatically; with a variable step size the caller must pin Beta.
	ConstantTimeStep bool
	// Beta, when non-zero, pins the contact envelope instead of letting
	// Envelope derive it from U/S/VMax/h.
	Beta float64

	warnedDrift bool
}

// NeedsFreshContact reports whether dT must block for a new contact set
// before running the step that follows stepsSinceUpdate steps on the
// current one. U<0 never forces a wait (warning once on first call);
// U==0 always does; U>0 does once stepsSinceUpdate reaches U.
func (p *Policy) NeedsFreshContact(stepsSinceUpdate int) bool {
	switch {
	case p.U < 0:
		if !p.warnedDrift {
			p.warnedDrift = true
			slog.Warn("coordinator: negative update frequency U permits unbounded dT/kT drift", "U", p.U)
		}
		return false
	case p.U == 0:
		return true
	default:
		return stepsSinceUpdate >= p.U
	}
}

// Envelope computes the contact safety envelope β for timestep h
// (spec.md §5): β = VMax * h * U * S when the timestep is constant and
// Beta isn't pinned; otherwise it returns the pinned Beta unchanged.
// U<0 uses |U| and U==0 uses 1 in the formula, so the envelope is
// never negative or zero.
func (p *Policy) Envelope(h float64) float64 {
	if p.Beta > 0 || !p.ConstantTimeStep {
		return p.Beta
	}
	u := p.U
	if u < 0 {
		u = -u
	}
	if u == 0 {
		u = 1
	}
	return p.VMax * h * float64(u) * p.S
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package family implements the family-based contact mask, prescribed
// motion, and on-fly family transition rules of spec.md §4.4.
package family

import "fmt"

// ID is a family tag on an owner. Valid values are [0, FMax]; FMax is
// reserved to mean "fixed" (spec.md §3 invariant 4).
type ID int

// Mask is whether a family pair may contact.
type Mask uint8

const (
	DontPrevent Mask = iota
	Prevent
)

// Expr is anything that can be evaluated to a scalar given a named
// variable environment. forcelaw.Expression satisfies this; family only
// needs to call Eval, so it depends on the narrow interface rather than
// the forcelaw package itself.
type Expr interface {
	Eval(vars map[string]float64) float64
}

// AxisRule is the prescribed-motion rule for one scalar degree of
// freedom: either None (integrate normally) or an expression the
// force-law assembler evaluates every step.
type AxisRule struct {
	Expr Expr // nil means None.
}

func (r AxisRule) None() bool { return r.Expr == nil }

// PrescribedMotion holds, for one family, its prescribed angular
// velocity rule per axis plus the as_position flag spec.md §6's
// SetFamilyPrescribedAngVel exposes: when true, each axis expression
// supplies a direct angular displacement for the step rather than an
// angular velocity to integrate.
type PrescribedMotion struct {
	Wx, Wy, Wz AxisRule
	AsPosition bool
}

func (m PrescribedMotion) isZero() bool {
	return m.Wx.None() && m.Wy.None() && m.Wz.None()
}

// TransitionRule is an on-fly family-change rule: Condition is
// evaluated per owner per step on kT; when it evaluates non-zero the
// owner moves from From to To before the subsequent broad phase runs
// (spec.md §4.4, scenario "On-fly family change").
type TransitionRule struct {
	From, To  ID
	Condition Expr
}

// Policy is the family-mask matrix plus prescribed-motion and
// transition rules for one simulation.
type Policy struct {
	FMax        ID
	mask        []Mask // flattened triangular matrix, indexed via locateMaskPair.
	fixed       map[ID]bool
	prescribed  map[ID]PrescribedMotion
	transitions []TransitionRule
}

// NewPolicy returns a policy over families [0, fMax] with every pair
// allowed to contact and no prescribed motion or transitions.
func NewPolicy(fMax ID) *Policy {
	n := int(fMax)
	size := 0
	if n > 0 {
		size = n * (n + 1) / 2
	}
	return &Policy{
		FMax:       fMax,
		mask:       make([]Mask, size),
		fixed:      map[ID]bool{},
		prescribed: map[ID]PrescribedMotion{},
	}
}

// locateMaskPair maps an ordered family pair (a < b < n, where n is the
// number of families, FMax+1) to its slot in the flattened triangular
// matrix, per spec.md §4.4: a*(2*n - a - 1)/2 + (b - a - 1).
func locateMaskPair(a, b, n ID) int {
	return int(a)*(2*int(n)-int(a)-1)/2 + (int(b) - int(a) - 1)
}

// maskIndex normalizes a family pair to (min,max) and returns its
// triangular-matrix slot, or -1 if a == b (contacts within one family
// are always admissible — the matrix only constrains cross-family
// contact, matching spec.md's "for any two owners a, b" phrasing which
// implicitly excludes a == b since every owner trivially contacts its
// own family unless excluded by some other rule).
func (p *Policy) maskIndex(a, b ID) int {
	if a == b {
		return -1
	}
	if a > b {
		a, b = b, a
	}
	if b > p.FMax {
		return -1
	}
	return locateMaskPair(a, b, p.FMax+1)
}

// SetMask sets whether families a and b may contact. Order doesn't
// matter: locateMaskPair(a,b) == locateMaskPair(b,a) after
// normalization, so this call is inherently symmetric.
func (p *Policy) SetMask(a, b ID, m Mask) error {
	idx := p.maskIndex(a, b)
	if idx < 0 {
		return fmt.Errorf("family: cannot set a contact mask between family %d and itself", a)
	}
	p.mask[idx] = m
	return nil
}

// DisableContact prevents future contacts between families a and b.
func (p *Policy) DisableContact(a, b ID) { p.SetMask(a, b, Prevent) }

// EnableContact re-allows contacts between families a and b.
func (p *Policy) EnableContact(a, b ID) { p.SetMask(a, b, DontPrevent) }

// Admissible reports whether a contact between families a and b is
// allowed (spec.md §3 invariant 3). Families equal to FMax are always
// mutually admissible between themselves and every other family unless
// explicitly disabled — FMax only governs immovability, not contact.
func (p *Policy) Admissible(a, b ID) bool {
	idx := p.maskIndex(a, b)
	if idx < 0 {
		return true
	}
	return p.mask[idx] == DontPrevent
}

// SetFamilyFixed marks family f as immovable regardless of any
// prescribed motion (spec.md §3 invariant 4). FMax is implicitly fixed;
// SetFamilyFixed lets additional families opt into the same behavior.
func (p *Policy) SetFamilyFixed(f ID) { p.fixed[f] = true }

// Fixed reports whether owners of family f never move.
func (p *Policy) Fixed(f ID) bool { return f == p.FMax || p.fixed[f] }

// SetPrescribedMotion installs a prescribed-motion rule for family f.
func (p *Policy) SetPrescribedMotion(f ID, m PrescribedMotion) { p.prescribed[f] = m }

// PrescribedMotion returns family f's prescribed-motion rule and
// whether one was set.
func (p *Policy) PrescribedMotion(f ID) (PrescribedMotion, bool) {
	m, ok := p.prescribed[f]
	return m, ok && !m.isZero()
}

// AddTransition registers an on-fly family-transition rule, evaluated
// per owner per step on kT (spec.md §4.4).
func (p *Policy) AddTransition(r TransitionRule) { p.transitions = append(p.transitions, r) }

// Transitions returns the registered on-fly transition rules.
func (p *Policy) Transitions() []TransitionRule {
	out := make([]TransitionRule, len(p.transitions))
	copy(out, p.transitions)
	return out
}

// Evaluate runs every transition rule whose From matches cur against
// vars and returns the first matching To, or cur if none fire. Multiple
// rules targeting the same From are evaluated in registration order;
// the first whose condition evaluates non-zero wins.
func (p *Policy) Evaluate(cur ID, vars map[string]float64) ID {
	for _, r := range p.transitions {
		if r.From != cur {
			continue
		}
		if r.Condition.Eval(vars) != 0 {
			return r.To
		}
	}
	return cur
}

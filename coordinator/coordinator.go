// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package coordinator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/dynamic"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/forcelaw"
	"github.com/galvanized/dem/kinematic"
	"github.com/galvanized/dem/material"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
	"github.com/galvanized/dem/template"
	"github.com/galvanized/dem/wildcard"
)

// Coordinator owns the Scene and every read-only asset table the kT/dT
// goroutine pair needs, and drives them for a run of Run steps (spec.md
// §4.11, §9). It replaces the original's two-OS-thread, shared-device-
// buffer design with two goroutines over typed mailbox channels.
type Coordinator struct {
	Scene       *scene.Scene
	Domain      *spatial.Domain
	Grid        *spatial.BinGrid
	Clumps      *template.ClumpStore
	Analyticals *template.AnalyticalStore
	Meshes      *template.MeshStore
	Law         *forcelaw.Law
	Materials   *material.Library
	Wildcards   *wildcard.Set

	Policy  *Policy
	Rule    dynamic.Rule
	Gravity lin.V3
	H       float64 // timestep.
	Workers int     // narrow-phase worker pool size; 0 means runtime.NumCPU().
	VarsFn  func(step int, t float64) map[string]float64

	// LastPairs/LastDetails hold the contact list and per-contact
	// force-law output from the most recently completed dT step, for
	// sceneio.WriteContactRows callers that want a CSV snapshot between
	// Run calls (spec.md §6's per-contact CSV output).
	LastPairs   []contact.Pair
	LastDetails []dynamic.PairForce
}

func (c *Coordinator) vars(step int, t float64) map[string]float64 {
	if c.VarsFn != nil {
		return c.VarsFn(step, t)
	}
	return map[string]float64{"t": t}
}

// Run drives steps dT steps and the kT goroutine that feeds it,
// supervised by an errgroup: a fatal error from either goroutine cancels
// the other via ctx, which is drained and joined before the error is
// returned (spec.md §7's "never catch errors silently", §9's "coordinator
// never catches errors from worker threads silently").
func (c *Coordinator) Run(ctx context.Context, steps int) error {
	poseCh := make(chan PoseSnapshot, 1)
	contactCh := make(chan ContactSet, 1)

	// dT finishing its requested steps is not itself a failure, so it
	// doesn't trip errgroup's own auto-cancel (only a non-nil return
	// does) — cancel explicitly once dT is done so kT's blocked send/
	// receive unblocks instead of leaking the goroutine.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.runKinematic(gctx, poseCh, contactCh) })
	g.Go(func() error {
		defer cancel()
		return c.runDynamic(gctx, steps, poseCh, contactCh)
	})
	return g.Wait()
}

// runKinematic is the kT goroutine: broad phase, narrow phase, history
// mapping, and on-fly family transitions, one production per received
// PoseSnapshot (spec.md §4.5-§4.7, §4.4 scenario 4).
func (c *Coordinator) runKinematic(ctx context.Context, poseCh <-chan PoseSnapshot, contactCh chan<- ContactSet) error {
	var prevPairs []contact.Pair
	for {
		var snap PoseSnapshot
		select {
		case <-ctx.Done():
			// Shutdown: either dT finished its run, or the real error (if
			// any) is already being returned from whichever goroutine hit
			// it — kT itself has nothing further to report here.
			return nil
		case s, ok := <-poseCh:
			if !ok {
				return nil
			}
			snap = s
		}

		c.applyFamilyTransitions(snap, c.vars(int(snap.Step), snap.Time))

		prims := kinematic.BuildPrimitives(c.Domain, snap.Owners, c.Clumps, c.Analyticals, c.Meshes)
		beta := c.Policy.Envelope(c.H)
		prod, err := kinematic.BroadPhase(c.Grid, prims, beta)
		if err != nil {
			return fmt.Errorf("coordinator: kT broad phase: %w", err)
		}
		pairs, err := kinematic.NarrowPhaseConcurrent(ctx, prod, c.Scene.Policy, snap.Owners, c.Workers)
		if err != nil {
			return fmt.Errorf("coordinator: kT narrow phase: %w", err)
		}
		if c.Law.Historyed {
			pairs = kinematic.MapHistory(prevPairs, pairs)
		}
		pairs = kinematic.AssignHistorySlots(prevPairs, pairs, c.Wildcards)
		prevPairs = pairs

		families := make([]family.ID, len(snap.Owners))
		for i, o := range snap.Owners {
			families[i] = o.Family
		}

		set := ContactSet{Primitives: prims, Pairs: pairs, StepStartFamilies: families, Step: snap.Step}
		select {
		case <-ctx.Done():
			return nil
		case contactCh <- set:
		}
	}
}

// applyFamilyTransitions evaluates every registered on-fly transition
// rule against snap's owners and writes any resulting family change back
// to the live scene, so it governs the next production's mask checks
// (spec.md §4.4 scenario "On-fly family change"). Each owner's x/y/z
// position is merged into vars before Evaluate runs, since a
// transition condition like "z < 0" is inherently per-owner, not a
// single global quantity shared by every owner in the step.
func (c *Coordinator) applyFamilyTransitions(snap PoseSnapshot, vars map[string]float64) {
	if len(c.Scene.Policy.Transitions()) == 0 {
		return
	}
	ownerVars := make(map[string]float64, len(vars)+3)
	for id, o := range snap.Owners {
		for k, v := range vars {
			ownerVars[k] = v
		}
		x, y, z := c.Domain.ToPos(o.Addr)
		ownerVars["x"], ownerVars["y"], ownerVars["z"] = x, y, z
		next := c.Scene.Policy.Evaluate(o.Family, ownerVars)
		if next != o.Family {
			// id ranges over snap.Owners itself, so it is always a valid
			// scene owner id; ChangeFamily cannot fail here.
			_ = c.Scene.ChangeFamily(uint32(id), next)
		}
	}
}

// runDynamic is the dT goroutine: it seeds kT with the initial pose,
// then for each of steps iterations evaluates forces against the
// coordinator's policy-governed contact list and integrates (spec.md
// §4.8, §4.9).
func (c *Coordinator) runDynamic(ctx context.Context, steps int, poseCh chan<- PoseSnapshot, contactCh <-chan ContactSet) error {
	defer close(poseCh)

	seed := PoseSnapshot{Owners: c.Scene.Snapshot(), Time: 0, Step: 0}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case poseCh <- seed:
	}

	var current ContactSet
	haveContact := false
	stepsSinceUpdate := 0
	t := 0.0

	for step := 0; step < steps; step++ {
		if !haveContact || c.Policy.NeedsFreshContact(stepsSinceUpdate) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case cs, ok := <-contactCh:
				if !ok {
					return fmt.Errorf("coordinator: kT mailbox closed before dT finished its %d requested steps", steps)
				}
				current = cs
				haveContact = true
				stepsSinceUpdate = 0
			}
		} else {
			select {
			case cs := <-contactCh:
				current = cs
				stepsSinceUpdate = 0
			default:
			}
		}

		vars := c.vars(step, t)
		var accum []dynamic.Accum
		var details []dynamic.PairForce
		c.Scene.WithOwners(func(owners []scene.Owner) {
			accum, details = dynamic.EvaluateForcesDetailed(current.Primitives, current.Pairs, c.Law, c.Materials, c.Wildcards, owners, current.StepStartFamilies, c.Scene.Policy)
			dynamic.Integrate(owners, accum, c.Domain, c.Scene.Policy, c.Gravity, c.H, c.Rule, vars)
		})
		c.LastPairs, c.LastDetails = current.Pairs, details
		stepsSinceUpdate++
		t += c.H

		select {
		case <-ctx.Done():
			return ctx.Err()
		case poseCh <- PoseSnapshot{Owners: c.Scene.Snapshot(), Time: t, Step: uint64(step + 1)}:
		}
	}
	return nil
}

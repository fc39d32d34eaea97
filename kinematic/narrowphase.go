// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import (
	"sort"

	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/spatial"
)

// activeBins returns prod's occupied bin ids in ascending order. Offsets
// is a map, so ranging over it directly would make NarrowPhase's output
// order vary run to run for the same Production; sorting first keeps the
// "stable ordering within one production" half of invariant 5 honest.
func activeBins(prod *Production) []spatial.BinID {
	bins := make([]spatial.BinID, 0, len(prod.Offsets))
	for bin := range prod.Offsets {
		bins = append(bins, bin)
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i] < bins[j] })
	return bins
}

// NarrowPhase enumerates every candidate pair within each bin Production
// produced, applies the family mask, shared-owner rejection, geometric
// overlap, and owner-bin dedup filters of spec.md §4.6, and returns the
// surviving pairs in bin-major, then pair-index-within-bin order
// (invariant 5: each admissible unordered overlap appears at most once,
// in a stable order within one production).
func NarrowPhase(prod *Production, policy *family.Policy, owners []scene.Owner) []contact.Pair {
	var out []contact.Pair
	for _, bin := range activeBins(prod) {
		out = append(out, narrowPhaseBin(prod, bin, policy, owners)...)
	}
	return out
}

// narrowPhaseBin evaluates every candidate pair local to one bin.
func narrowPhaseBin(prod *Production, bin spatial.BinID, policy *family.Policy, owners []scene.Owner) []contact.Pair {
	members := prod.binMembers(bin)
	var out []contact.Pair
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			pair, ok := evaluatePair(prod, bin, a, b, policy, owners)
			if ok {
				out = append(out, pair)
			}
		}
	}
	return out
}

func evaluatePair(prod *Production, bin spatial.BinID, ai, bi uint32, policy *family.Policy, owners []scene.Owner) (contact.Pair, bool) {
	pa, pb := prod.Primitives[ai], prod.Primitives[bi]

	if pa.Owner == pb.Owner {
		return contact.Pair{}, false // shared-owner rejection.
	}
	fa, fb := owners[pa.Owner].Family, owners[pb.Owner].Family
	if !policy.Admissible(fa, fb) {
		return contact.Pair{}, false
	}

	kind, overlaps := geometricOverlap(pa, pb, prod.Beta)
	if !overlaps {
		return contact.Pair{}, false
	}

	if !isOwnerBin(prod, bin, ai, bi) {
		return contact.Pair{}, false
	}

	return contact.Pair{IDA: ai, IDB: bi, Kind: kind, HistorySlot: -1, PreviousSlot: contact.NullMapping}, true
}

// isOwnerBin applies the "owner-bin" dedup rule: a pair is only emitted
// from the lexicographically smallest bin coordinate both primitives'
// ranges share, so it is never emitted twice from two different shared
// bins (spec.md §4.6; ground truth is the original engine's
// inOwnerBin check).
func isOwnerBin(prod *Production, bin spatial.BinID, ai, bi uint32) bool {
	ra, rb := prod.Ranges[ai], prod.Ranges[bi]
	loX := maxI(ra.Lo.X, rb.Lo.X)
	hiX := minI(ra.Hi.X, rb.Hi.X)
	loY := maxI(ra.Lo.Y, rb.Lo.Y)
	hiY := minI(ra.Hi.Y, rb.Hi.Y)
	loZ := maxI(ra.Lo.Z, rb.Lo.Z)
	hiZ := minI(ra.Hi.Z, rb.Hi.Z)

	smallest := spatial.BinCoord{X: loX, Y: loY, Z: loZ}
	id, ok := prod.Grid.ID(smallest)
	if !ok || hiX < loX || hiY < loY || hiZ < loZ {
		return false
	}
	return id == bin
}

func minI(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

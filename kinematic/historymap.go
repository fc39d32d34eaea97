// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import "github.com/galvanized/dem/contact"

// MapHistory fills in PreviousSlot on every pair in next by looking up
// its (IDA,IDB) key in prev, and returns next (spec.md §4.7). Pairs with
// no counterpart in prev keep contact.NullMapping. Skipped entirely by
// the caller when the active force law is historyless.
func MapHistory(prev, next []contact.Pair) []contact.Pair {
	index := make(map[pairKey]int, len(prev))
	for i, p := range prev {
		index[keyOf(p)] = i
	}
	for i := range next {
		if prevIdx, ok := index[keyOf(next[i])]; ok {
			next[i].PreviousSlot = prevIdx
		} else {
			next[i].PreviousSlot = contact.NullMapping
		}
	}
	return next
}

// Inactive returns the indices into prev whose pair does not appear in
// next — contacts that disappeared this production, whose wildcard
// slots dT must drop (spec.md §4.7).
func Inactive(prev, next []contact.Pair) []int {
	present := make(map[pairKey]bool, len(next))
	for _, p := range next {
		present[keyOf(p)] = true
	}
	var out []int
	for i, p := range prev {
		if !present[keyOf(p)] {
			out = append(out, i)
		}
	}
	return out
}

type pairKey struct {
	a, b uint32
	kind contact.Kind
}

func keyOf(p contact.Pair) pairKey {
	a, b := p.IDA, p.IDB
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b, kind: p.Kind}
}

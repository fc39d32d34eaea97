// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematic

import (
	"github.com/galvanized/dem/contact"
	"github.com/galvanized/dem/wildcard"
)

// AssignHistorySlots finalizes next's HistorySlot fields after MapHistory
// has already filled in PreviousSlot: a pair's history slot is simply
// its own position in next (bounded by the current contact count, not
// an ever-growing counter), and any surviving pair's wildcard row is
// carried over from its old slot to its new one (spec.md §4.7,
// invariant 6). Permute rebuilds wc in a single pass so a chain of pairs
// that all shift position (next[2] <- prev[0], next[0] <- prev[2]) each
// read their source row from the pre-permutation table rather than from
// a row some other pair already overwrote. A historyless force law has
// no wildcards declared on wc, so this call is cheap to make
// unconditionally.
func AssignHistorySlots(prev, next []contact.Pair, wc *wildcard.Set) []contact.Pair {
	mapping := make([]int, len(next))
	for i, p := range next {
		if p.PreviousSlot == contact.NullMapping {
			mapping[i] = -1
			continue
		}
		mapping[i] = prev[p.PreviousSlot].HistorySlot
	}
	wc.Permute(mapping)
	for i := range next {
		next[i].HistorySlot = i
	}
	return next
}

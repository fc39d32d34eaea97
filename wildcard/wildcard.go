// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package wildcard implements the named scalar extension arrays spec.md
// §3 attaches per-contact and per-owner (a rolling-resistance
// accumulator, an electric charge, and so on). A Set is declared at
// scene-build time and grows its row count as owners/contacts are
// appended; it never grows its column count past MaxWildcards.
package wildcard

import "fmt"

// MaxWildcards is W_MAX from spec.md §3: the ceiling on how many
// distinct named wildcards one Set may carry.
const MaxWildcards = 8

// Set is a column-per-name, row-per-entity table of float64 extension
// values, following the same parallel-array shape as material.Library.
type Set struct {
	names  []string
	index  map[string]int
	values [][]float64
	rows   int
}

// NewSet returns an empty wildcard set.
func NewSet() *Set { return &Set{index: map[string]int{}} }

// Declare registers name if it isn't already known and returns its
// column index. Declaring past MaxWildcards distinct names is a
// configuration error (spec.md §3's "at most W_MAX of each").
func (s *Set) Declare(name string) (int, error) {
	if idx, ok := s.index[name]; ok {
		return idx, nil
	}
	if len(s.names) >= MaxWildcards {
		return 0, fmt.Errorf("wildcard: cannot declare %q, already at the %d-wildcard limit", name, MaxWildcards)
	}
	idx := len(s.names)
	s.names = append(s.names, name)
	s.index[name] = idx
	s.values = append(s.values, make([]float64, s.rows))
	return idx, nil
}

// Grow ensures the set has at least n rows, backfilling new rows with
// zero on every declared column. Callers invoke this whenever a new
// owner or contact slot is allocated.
func (s *Set) Grow(n int) {
	if n <= s.rows {
		return
	}
	for i := range s.values {
		for len(s.values[i]) < n {
			s.values[i] = append(s.values[i], 0)
		}
	}
	s.rows = n
}

// Rows returns the current row count.
func (s *Set) Rows() int { return s.rows }

// Names returns the declared wildcard names in declaration order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get returns the value of wildcard name at row id, and whether name has
// been declared on this set.
func (s *Set) Get(name string, id int) (float64, bool) {
	idx, ok := s.index[name]
	if !ok || id < 0 || id >= len(s.values[idx]) {
		return 0, false
	}
	return s.values[idx][id], true
}

// Set writes the value of wildcard name at row id. It is a no-op if
// name was never declared or id is out of range; callers that need to
// know about a missing declaration should check Declare's error instead.
func (s *Set) Set(name string, id int, v float64) {
	idx, ok := s.index[name]
	if !ok || id < 0 || id >= len(s.values[idx]) {
		return
	}
	s.values[idx][id] = v
}

// Remap copies row src's values into row dst across every column, used
// by the contact history mapper (spec.md §4.7) to carry a surviving
// contact's wildcards to its new slot in the freshly produced contact
// list. Callers remapping several rows in one pass should use Permute
// instead: chained single Remap calls can read a row after some earlier
// call already overwrote it.
func (s *Set) Remap(dst, src int) {
	for i := range s.values {
		if src < len(s.values[i]) && dst < len(s.values[i]) {
			s.values[i][dst] = s.values[i][src]
		}
	}
}

// Permute rebuilds every column so its new row i holds the old row
// mapping[i]'s value, or zero if mapping[i] is negative, and resizes the
// set to len(mapping) rows. Unlike a sequence of Remap calls, every
// source row is read from the pre-permutation table, so overlapping
// source/destination indices (row 0 feeding row 1 while row 1 also
// feeds row 0) can't clobber each other.
func (s *Set) Permute(mapping []int) {
	for i, old := range s.values {
		next := make([]float64, len(mapping))
		for dst, src := range mapping {
			if src >= 0 && src < len(old) {
				next[dst] = old[src]
			}
		}
		s.values[i] = next
	}
	s.rows = len(mapping)
}

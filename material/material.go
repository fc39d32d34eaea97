// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package material stores the DEM material property table: a named map of
// scalar properties (E, nu, CoR, mu, Crr, ...) per spec.md §3, held as
// parallel arrays, one per declared property name, so the force-evaluation
// kernel can index straight into flat float64 slices instead of chasing
// per-material maps.
package material

import (
	"fmt"
	"log/slog"
)

// Handle identifies one material in a Library. Handles are stable array
// indices; materials are immutable once declared, matching spec.md's
// "Templates are immutable after the first initialization" rule extended
// to materials.
type Handle int

// Library is the parallel-array material property table.
type Library struct {
	names  []string       // declared property names, in declaration order.
	index  map[string]int // name -> index into names/values.
	values [][]float64    // values[propertyIndex][materialIndex]
	count  int            // number of materials declared so far.
}

// NewLibrary returns an empty material library.
func NewLibrary() *Library {
	return &Library{index: map[string]int{}}
}

// declareProperty ensures a parallel array exists for name, sized to the
// current material count (backfilled with zero), and returns its index.
func (l *Library) declareProperty(name string) int {
	if idx, ok := l.index[name]; ok {
		return idx
	}
	idx := len(l.names)
	l.names = append(l.names, name)
	l.index[name] = idx
	l.values = append(l.values, make([]float64, l.count))
	return idx
}

// Add declares a new material from a name -> value property map and
// returns its handle. Any property name not previously seen grows a new
// parallel array, backfilled with zero for every earlier material.
func (l *Library) Add(props map[string]float64) Handle {
	h := Handle(l.count)
	l.count++
	for i := range l.values {
		if len(l.values[i]) < l.count {
			l.values[i] = append(l.values[i], 0)
		}
	}
	for name, v := range props {
		idx := l.declareProperty(name)
		for len(l.values[idx]) < l.count {
			l.values[idx] = append(l.values[idx], 0)
		}
		l.values[idx][h] = v
	}
	return h
}

// Get returns the value of property name for material h, and whether the
// property has ever been declared on this library.
func (l *Library) Get(h Handle, name string) (float64, bool) {
	idx, ok := l.index[name]
	if !ok {
		return 0, false
	}
	row := l.values[idx]
	if int(h) < 0 || int(h) >= len(row) {
		return 0, false
	}
	return row[h], true
}

// Count returns the number of materials declared.
func (l *Library) Count() int { return l.count }

// PropertyNames returns the declared property names in declaration order.
func (l *Library) PropertyNames() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Reconcile is called once at Initialize with the set of property names
// the active force law declares as required (spec.md §3, §7). Any
// material missing a required property is backfilled with 0 and a
// warning is appended; properties the library holds that the law never
// reads are left alone (the law simply won't be given them).
func (l *Library) Reconcile(required []string) []string {
	var warnings []string
	for _, name := range required {
		idx, declared := l.index[name]
		if !declared {
			idx = l.declareProperty(name)
			for len(l.values[idx]) < l.count {
				l.values[idx] = append(l.values[idx], 0)
			}
			warnings = append(warnings, fmt.Sprintf("material property %q required by the force law was never declared on any material; substituting 0", name))
			continue
		}
		for h := 0; h < l.count; h++ {
			if h >= len(l.values[idx]) {
				l.values[idx] = append(l.values[idx], 0)
				warnings = append(warnings, fmt.Sprintf("material %d missing required property %q; substituting 0", h, name))
			}
		}
	}
	for _, w := range warnings {
		slog.Warn(w)
	}
	return warnings
}

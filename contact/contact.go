// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package contact defines the Contact Pair type shared between the
// kinematic and dynamic threads (spec.md §3, §4.6, §4.7).
package contact

// Kind is the contact's geometry pairing. Only these four are
// supported; generic convex-convex contact is a spec.md Non-goal.
type Kind uint8

const (
	SphereSphere Kind = iota
	SphereMesh
	SpherePlane
	SpherePlate
)

func (k Kind) String() string {
	switch k {
	case SphereSphere:
		return "SPHERE_SPHERE"
	case SphereMesh:
		return "SPHERE_MESH"
	case SpherePlane:
		return "SPHERE_PLANE"
	case SpherePlate:
		return "SPHERE_PLATE"
	default:
		return "UNKNOWN"
	}
}

// NullMapping marks a contact with no previous-step counterpart
// (spec.md §3 invariant 6).
const NullMapping = -1

// Pair is one admissible geometric overlap between two contact
// geometries, identified by component index rather than owner id (a
// clump owner contributes one geometry index per sphere).
type Pair struct {
	IDA, IDB     uint32
	Kind         Kind
	HistorySlot  int // index into a persistent per-contact history store, or -1.
	PreviousSlot int // this pair's index in the previous kT production's list, or NullMapping.
}

// List is one kT production's contact list: invariant 5 (each
// unordered admissible overlap appears at most once, stable ordering
// within a production) is the responsibility of the kinematic package
// that builds one of these; List itself only carries the result.
type List struct {
	Pairs []Pair
}

// Len, Less and Swap let a List be sorted with sort.Sort when a
// narrow-phase stage needs a canonical (idA,idB) order before dedup.
func (l List) Len() int { return len(l.Pairs) }
func (l List) Less(i, j int) bool {
	if l.Pairs[i].IDA != l.Pairs[j].IDA {
		return l.Pairs[i].IDA < l.Pairs[j].IDA
	}
	return l.Pairs[i].IDB < l.Pairs[j].IDB
}
func (l List) Swap(i, j int) { l.Pairs[i], l.Pairs[j] = l.Pairs[j], l.Pairs[i] }

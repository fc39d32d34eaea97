// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package scene holds the Scene State of spec.md §4.3: per-owner pose,
// velocity, family, and size, with sync-on-read accessors that block
// while the dynamic thread is mid-step.
package scene

import (
	"fmt"
	"sync"

	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/spatial"
	"github.com/galvanized/dem/template"
)

// Kind tags an owner's geometry.
type Kind uint8

const (
	Clump Kind = iota
	Analytical
	Mesh
)

// Owner is one rigid body in the scene (spec.md §3 Owner).
type Owner struct {
	Kind     Kind
	Template template.Handle
	Family   family.ID

	Mass    float64
	Inertia lin.V3 // diagonal principal-frame inertia.

	Addr  spatial.Address
	Ori   lin.Q
	Vel   lin.V3
	AVel  lin.V3
	Acc   lin.V3
	AAcc  lin.V3
	Scale float64 // radius/offset scale factor applied by ChangeOwnerSizes.
}

// Scene is the append-only table of owners for one run. Owners are
// never destroyed (spec.md §3 Lifecycle) so, unlike gazed-vu's eid
// allocator, there is no edition/reuse bookkeeping: an owner id is
// simply its index into owners.
type Scene struct {
	Domain *spatial.Domain
	Policy *family.Policy

	mu     sync.RWMutex // held exclusively by the dynamic thread for the duration of a step.
	owners []Owner
}

// New returns an empty scene over the given domain and family policy.
func New(d *spatial.Domain, p *family.Policy) *Scene {
	return &Scene{Domain: d, Policy: p}
}

// AddOwner appends a new owner and returns its id. Safe to call between
// steps (mid-run append, spec.md §4.10) or during scene build.
func (s *Scene) AddOwner(o Owner) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Scale == 0 {
		o.Scale = 1
	}
	s.owners = append(s.owners, o)
	return uint32(len(s.owners) - 1)
}

// Count returns the number of owners in the scene.
func (s *Scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.owners)
}

// BeginStep takes the exclusive lock for the duration of one dT step.
// Every Get*/Set* accessor below blocks on this lock, giving the
// "accessors block until the current dT step is complete" sync-on-read
// behavior spec.md §4.3 asks for.
func (s *Scene) BeginStep() { s.mu.Lock() }

// EndStep releases the lock BeginStep took.
func (s *Scene) EndStep() { s.mu.Unlock() }

// WithOwners runs fn with direct, mutable access to the live owner
// table, held under the same exclusive lock BeginStep/EndStep wrap
// around a dT step. The coordinator's dynamic-thread goroutine uses this
// to run force evaluation and integration in place, without copying the
// owner table out and back on every step.
func (s *Scene) WithOwners(fn func([]Owner)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.owners)
}

// Snapshot copies the current owner table under a read lock, for the
// kinematic thread's private pose buffer (spec.md §5).
func (s *Scene) Snapshot() []Owner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Owner, len(s.owners))
	copy(out, s.owners)
	return out
}

func (s *Scene) owner(id uint32) (*Owner, error) {
	if int(id) >= len(s.owners) {
		return nil, fmt.Errorf("scene: owner id %d out of range (%d owners)", id, len(s.owners))
	}
	return &s.owners[id], nil
}

// GetOwnerPos returns owner id's physical-unit position.
func (s *Scene) GetOwnerPos(id uint32) (x, y, z float64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.owner(id)
	if err != nil {
		return 0, 0, 0, err
	}
	x, y, z = s.Domain.ToPos(o.Addr)
	return
}

// SetOwnerPos sets owner id's position from physical units.
func (s *Scene) SetOwnerPos(id uint32, x, y, z float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.Addr = s.Domain.ToAddress(x, y, z)
	return nil
}

// GetOwnerVel returns owner id's linear velocity.
func (s *Scene) GetOwnerVel(id uint32) (lin.V3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.owner(id)
	if err != nil {
		return lin.V3{}, err
	}
	return o.Vel, nil
}

// SetOwnerVel sets owner id's linear velocity.
func (s *Scene) SetOwnerVel(id uint32, v lin.V3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.Vel = v
	return nil
}

// GetOwnerOriQ returns owner id's orientation.
func (s *Scene) GetOwnerOriQ(id uint32) (lin.Q, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.owner(id)
	if err != nil {
		return lin.Q{}, err
	}
	return o.Ori, nil
}

// SetOwnerOriQ sets owner id's orientation.
func (s *Scene) SetOwnerOriQ(id uint32, q lin.Q) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.Ori = q
	return nil
}

// GetOwnerAngVel returns owner id's angular velocity.
func (s *Scene) GetOwnerAngVel(id uint32) (lin.V3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.owner(id)
	if err != nil {
		return lin.V3{}, err
	}
	return o.AVel, nil
}

// SetOwnerAngVel sets owner id's angular velocity.
func (s *Scene) SetOwnerAngVel(id uint32, v lin.V3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.AVel = v
	return nil
}

// GetOwnerAcc returns owner id's linear acceleration buffer.
func (s *Scene) GetOwnerAcc(id uint32) (lin.V3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.owner(id)
	if err != nil {
		return lin.V3{}, err
	}
	return o.Acc, nil
}

// SetOwnerAcc sets owner id's linear acceleration buffer.
func (s *Scene) SetOwnerAcc(id uint32, v lin.V3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.Acc = v
	return nil
}

// GetOwnerAngAcc returns owner id's angular acceleration buffer.
func (s *Scene) GetOwnerAngAcc(id uint32) (lin.V3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, err := s.owner(id)
	if err != nil {
		return lin.V3{}, err
	}
	return o.AAcc, nil
}

// SetOwnerAngAcc sets owner id's angular acceleration buffer.
func (s *Scene) SetOwnerAngAcc(id uint32, v lin.V3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.AAcc = v
	return nil
}

// ChangeFamily moves owner id into family to, honoring the same
// semantics as an on-fly transition (spec.md §4.4): the new family
// governs the very next kT production's mask checks.
func (s *Scene) ChangeFamily(id uint32, to family.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.owner(id)
	if err != nil {
		return err
	}
	o.Family = to
	return nil
}

// ChangeOwnerSizes scales the radii and offsets of each owner in ids by
// the matching entry in factors (spec.md §4.3). Templates stay
// immutable; the scale is carried per-owner and applied whenever a
// component's world-space geometry is computed.
func (s *Scene) ChangeOwnerSizes(ids []uint32, factors []float64) error {
	if len(ids) != len(factors) {
		return fmt.Errorf("scene: ChangeOwnerSizes got %d ids but %d factors", len(ids), len(factors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		o, err := s.owner(id)
		if err != nil {
			return err
		}
		o.Scale *= factors[i]
	}
	return nil
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package scene

import (
	"math"
	"testing"

	"github.com/galvanized/dem/family"
	"github.com/galvanized/dem/math/lin"
	"github.com/galvanized/dem/spatial"
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	d, err := spatial.NewDomain(10, 10, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	p := family.NewPolicy(4)
	return New(d, p)
}

func TestAddOwnerAndPosRoundTrip(t *testing.T) {
	s := newTestScene(t)
	id := s.AddOwner(Owner{Kind: Clump, Family: 0})
	if err := s.SetOwnerPos(id, 1.5, 2.5, 3.5); err != nil {
		t.Fatal(err)
	}
	x, y, z, err := s.GetOwnerPos(id)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-1.5) > s.Domain.Length || math.Abs(y-2.5) > s.Domain.Length || math.Abs(z-3.5) > s.Domain.Length {
		t.Errorf("pos round trip = (%g,%g,%g), want ~(1.5,2.5,3.5)", x, y, z)
	}
}

func TestChangeFamily(t *testing.T) {
	s := newTestScene(t)
	id := s.AddOwner(Owner{Kind: Clump, Family: 0})
	if err := s.ChangeFamily(id, 2); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap[id].Family != 2 {
		t.Errorf("family after ChangeFamily = %d, want 2", snap[id].Family)
	}
}

func TestChangeOwnerSizesScalesCumulatively(t *testing.T) {
	s := newTestScene(t)
	id := s.AddOwner(Owner{Kind: Clump, Family: 0})
	if err := s.ChangeOwnerSizes([]uint32{id}, []float64{2}); err != nil {
		t.Fatal(err)
	}
	if err := s.ChangeOwnerSizes([]uint32{id}, []float64{1.5}); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if math.Abs(snap[id].Scale-3) > 1e-9 {
		t.Errorf("cumulative scale = %g, want 3", snap[id].Scale)
	}
}

func TestUnknownOwnerIsAnError(t *testing.T) {
	s := newTestScene(t)
	if _, _, _, err := s.GetOwnerPos(99); err == nil {
		t.Error("expected an error for an out-of-range owner id")
	}
}

func TestVelocityAccessors(t *testing.T) {
	s := newTestScene(t)
	id := s.AddOwner(Owner{Kind: Clump, Family: 0})
	want := lin.V3{X: 1, Y: 2, Z: 3}
	if err := s.SetOwnerVel(id, want); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetOwnerVel(id)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("GetOwnerVel = %+v, want %+v", got, want)
	}
}

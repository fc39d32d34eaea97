// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestQSetAaIdentityForZeroAxis(t *testing.T) {
	q := NewQ().SetAa(0, 0, 0, Rad(45))
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("SetAa with a zero axis = %+v, want identity", q)
	}
}

func TestQSetAaUnitLength(t *testing.T) {
	q := NewQ().SetAa(1, 2, 3, Rad(117))
	if !Aeq(q.Len(), 1) {
		t.Errorf("SetAa quaternion length = %g, want 1", q.Len())
	}
}

// TestQMultComposesRotations mirrors dynamic.Integrate's use of Mult to
// fold a step's incremental rotation dq onto an owner's running
// orientation: two 90 degree turns about the same axis compose into a
// 180 degree turn.
func TestQMultComposesRotations(t *testing.T) {
	quarter := NewQ().SetAa(0, 0, 1, Rad(90))
	half := NewQ().Mult(quarter, quarter)

	v := NewV3().MultvQ(&V3{1, 0, 0}, half)
	if !Aeq(v.X, -1) || !Aeq(v.Y, 0) {
		t.Errorf("two composed quarter turns rotated {1 0 0} to %+v, want {-1 0 0}", v)
	}
}

func TestQUnitLeavesZeroQuaternionUnchanged(t *testing.T) {
	q := &Q{}
	if q.Unit(); q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 0 {
		t.Error("Unit of a zero quaternion must stay zero, not divide by zero")
	}
}

func TestQISetInRelativeRotFields(t *testing.T) {
	q := NewQI()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("NewQI = %+v, want identity", q)
	}
	if *QI != *q {
		t.Error("QI constant must equal the identity quaternion NewQI returns")
	}
}

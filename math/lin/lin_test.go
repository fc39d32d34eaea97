// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestAeq(t *testing.T) {
	if !Aeq(0.0, 0.0000001) {
		t.Error("values within Epsilon should be Aeq")
	}
	if Aeq(0.0, 0.1) {
		t.Error("values outside Epsilon should not be Aeq")
	}
}

func TestAeqZ(t *testing.T) {
	if !AeqZ(0.0000001) || !AeqZ(-0.0000001) {
		t.Error("values within Epsilon of zero should be AeqZ")
	}
	if AeqZ(0.1) {
		t.Error("values outside Epsilon of zero should not be AeqZ")
	}
}

func TestRadDeg(t *testing.T) {
	if !Aeq(Rad(180), 3.141592653589793) {
		t.Errorf("Rad(180) = %g, want pi", Rad(180))
	}
	if !Aeq(Deg(Rad(90)), 90) {
		t.Errorf("Deg(Rad(90)) = %g, want 90", Deg(Rad(90)))
	}
}

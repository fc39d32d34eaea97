// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package template

import (
	"testing"

	"github.com/galvanized/dem/material"
)

func components(n int) []Component {
	c := make([]Component, n)
	for i := range c {
		c[i] = Component{Radius: 1, Material: 0}
	}
	return c
}

func TestFlattenEmbedsUnderThreshold(t *testing.T) {
	s := NewClumpStore(10)
	small := s.Add(ClumpTemplate{Components: components(2)})
	big := s.Add(ClumpTemplate{Components: components(20)})
	s.Flatten()

	if e := s.Embed(small); e.Spilled {
		t.Errorf("small template should embed, got spilled index %d", e.Index)
	}
	if e := s.Embed(big); !e.Spilled {
		t.Errorf("template exceeding T_JIT should spill, got embedded index %d", e.Index)
	}
}

func TestFlattenOrdersByComponentCountNotHandle(t *testing.T) {
	s := NewClumpStore(3)
	large := s.Add(ClumpTemplate{Components: components(5)})
	small := s.Add(ClumpTemplate{Components: components(1)})
	s.Flatten()

	// small has fewer components so it sorts first and should embed even
	// though it was added second (handle > large's handle).
	if e := s.Embed(small); e.Spilled {
		t.Errorf("smaller template should embed ahead of the larger one, got spilled")
	}
	if e := s.Embed(large); !e.Spilled {
		t.Errorf("larger template should spill once the threshold is exhausted")
	}
}

func TestAddAfterFlattenPanics(t *testing.T) {
	s := NewClumpStore(10)
	s.Flatten()
	defer func() {
		if recover() == nil {
			t.Error("expected Add after Flatten to panic")
		}
	}()
	s.Add(ClumpTemplate{Components: components(1)})
}

func TestValidateRejectsUnknownMaterial(t *testing.T) {
	lib := material.NewLibrary()
	lib.Add(map[string]float64{"E": 1})
	s := NewClumpStore(10)
	s.Add(ClumpTemplate{Components: []Component{{Radius: 1, Material: 5}}})
	if err := s.Validate(lib); err == nil {
		t.Error("expected Validate to reject an out-of-range material handle")
	}
}

// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dem

// stats.go reports per-run summary statistics, grounded on the
// original DEMdemo_GRCPrep_Part3.cpp demo's per-batch clump/sphere
// counts (spec.md Design Notes §9, SPEC_FULL §8): after AddClumps and
// after a run, a caller wants to know how many owners of each template
// exist and the aggregate speed distribution, without writing an
// Inspector for it every time.

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/galvanized/dem/scene"
	"github.com/galvanized/dem/template"
)

// SceneStats is one Engine.Stats() call's summary over the live scene.
type SceneStats struct {
	TotalOwners     int
	OwnersByTemplate map[template.Handle]int
	TotalSpheres    int

	MeanSpeed, SpeedVariance float64
	MinSpeed, MaxSpeed       float64

	Warnings []string
}

// Stats computes SceneStats from the current owner snapshot. It is
// safe to call between steps, i.e. after Initialize or after a Sync.
func (e *Engine) Stats() (SceneStats, error) {
	if e.sc == nil {
		return SceneStats{}, &ConfigError{Field: "Stats", Err: errNotInitialized}
	}
	coord := e.sc.Coordinator()
	owners := coord.Scene.Snapshot()

	st := SceneStats{OwnersByTemplate: map[template.Handle]int{}, Warnings: e.sc.Warnings()}
	var speeds []float64
	for _, o := range owners {
		st.TotalOwners++
		if o.Kind != scene.Clump {
			continue
		}
		st.OwnersByTemplate[o.Template]++
		st.TotalSpheres += len(coord.Clumps.Template(o.Template).Components)
		speeds = append(speeds, floats.Norm([]float64{o.Vel.X, o.Vel.Y, o.Vel.Z}, 2))
	}
	if len(speeds) > 0 {
		st.MeanSpeed, st.SpeedVariance = stat.MeanVariance(speeds, nil)
		st.MinSpeed, st.MaxSpeed = floats.Min(speeds), floats.Max(speeds)
	}
	return st, nil
}

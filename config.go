// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dem

// config.go reduces the New engine API footprint using functional
// options, following the teacher's own config.go pattern exactly.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

import "github.com/galvanized/dem/dynamic"

// Config holds the simulation-wide attributes a caller may set before
// Initialize (spec.md §4.9, §4.11, §6): gravity, the initial
// integration timestep, integrator choice, the broad-phase update
// frequency U and envelope safety parameter s, the initial bin size,
// an expected max velocity, and narrow-phase worker/jit tunables.
type Config struct {
	gravityX, gravityY, gravityZ float64

	h       float64
	rule    dynamic.Rule
	u       int
	s       float64
	vmax    float64
	binSize float64

	workers int
	tJIT    int
}

// configDefaults mirrors the teacher's pattern of reasonable defaults
// so a simulation runs even when the caller overrides nothing.
var configDefaults = Config{
	h:       1e-5,
	rule:    dynamic.CenteredDifference,
	u:       1,
	s:       1.1,
	binSize: 0.1,
	tJIT:    64,
}

// Attr defines an optional simulation attribute, used as follows:
//
//	eng := dem.New(forceLaw,
//	   dem.Gravity(0, 0, -9.8),
//	   dem.InitTimeStep(1e-5),
//	)
type Attr func(*Config)

// Gravity sets the uniform acceleration applied to every non-fixed
// owner each step (spec.md §4.9).
func Gravity(x, y, z float64) Attr {
	return func(c *Config) { c.gravityX, c.gravityY, c.gravityZ = x, y, z }
}

// InitTimeStep sets the initial integration timestep h (spec.md §6).
func InitTimeStep(h float64) Attr {
	return func(c *Config) { c.h = h }
}

// Integrator selects the pose-update rule (spec.md §4.9, §6).
func Integrator(r dynamic.Rule) Attr {
	return func(c *Config) { c.rule = r }
}

// CDUpdateFreq sets the coordinator's contact-detection update
// frequency U (spec.md §4.11, §6).
func CDUpdateFreq(u int) Attr {
	return func(c *Config) { c.u = u }
}

// ExpandSafetyParam sets the envelope safety multiplier s (spec.md
// §4.11, §6).
func ExpandSafetyParam(s float64) Attr {
	return func(c *Config) { c.s = s }
}

// MaxVelocity sets the expected maximum sphere speed the automatic
// contact-envelope formula uses (spec.md §4.11, §6).
func MaxVelocity(v float64) Attr {
	return func(c *Config) { c.vmax = v }
}

// InitBinSize sets the broad-phase bin edge length (spec.md §4.1, §6).
// The default is 0.1; zero or a negative value also falls back to 0.1
// at Initialize. The bin size is not derived from sphere radii.
func InitBinSize(binSize float64) Attr {
	return func(c *Config) { c.binSize = binSize }
}

// NarrowPhaseWorkers overrides the narrow-phase worker pool size; 0
// (the default) means runtime.NumCPU().
func NarrowPhaseWorkers(n int) Attr {
	return func(c *Config) { c.workers = n }
}

// TemplateEmbedBudget overrides T_JIT, the cumulative component count
// the template store embeds directly into generated kernel source
// before spilling the rest (spec.md §4.2).
func TemplateEmbedBudget(tJIT int) Attr {
	return func(c *Config) { c.tJIT = tJIT }
}

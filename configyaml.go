// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package dem

// configyaml.go loads batch/headless run configuration from YAML
// documents, following the teacher's load/shd.go pattern of unmarshal-
// then-validate against known names.

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SimulationConfig is the YAML-loadable form of Config, for batch or
// headless runs that configure a simulation from a file rather than Go
// code.
type SimulationConfig struct {
	Gravity struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
		Z float64 `yaml:"z"`
	} `yaml:"gravity"`
	InitTimeStep       float64 `yaml:"init_time_step"`
	CDUpdateFreq       int     `yaml:"cd_update_freq"`
	ExpandSafetyParam  float64 `yaml:"expand_safety_param"`
	MaxVelocity        float64 `yaml:"max_velocity"`
	InitBinSize        float64 `yaml:"init_bin_size"`
	NarrowPhaseWorkers int     `yaml:"narrow_phase_workers"`
}

// LoadSimulationConfig unmarshals a SimulationConfig document and
// converts it into the Attr options New expects.
func LoadSimulationConfig(data []byte) ([]Attr, error) {
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Field: "SimulationConfig", Err: fmt.Errorf("yaml: %w", err)}
	}
	var attrs []Attr
	attrs = append(attrs, Gravity(cfg.Gravity.X, cfg.Gravity.Y, cfg.Gravity.Z))
	if cfg.InitTimeStep > 0 {
		attrs = append(attrs, InitTimeStep(cfg.InitTimeStep))
	}
	if cfg.CDUpdateFreq != 0 {
		attrs = append(attrs, CDUpdateFreq(cfg.CDUpdateFreq))
	}
	if cfg.ExpandSafetyParam > 0 {
		attrs = append(attrs, ExpandSafetyParam(cfg.ExpandSafetyParam))
	}
	if cfg.MaxVelocity > 0 {
		attrs = append(attrs, MaxVelocity(cfg.MaxVelocity))
	}
	if cfg.InitBinSize > 0 {
		attrs = append(attrs, InitBinSize(cfg.InitBinSize))
	}
	if cfg.NarrowPhaseWorkers > 0 {
		attrs = append(attrs, NarrowPhaseWorkers(cfg.NarrowPhaseWorkers))
	}
	return attrs, nil
}

// MaterialLibraryDoc is the YAML-loadable form of a material.Library:
// a name -> property-map document (spec.md §3 Material), letting a
// caller declare every material for a run in one file instead of
// repeated LoadMaterial calls.
type MaterialLibraryDoc struct {
	Materials map[string]map[string]float64 `yaml:"materials"`
}

// LoadMaterialLibraryDoc unmarshals a MaterialLibraryDoc. The caller is
// expected to feed the returned property maps to Engine.LoadMaterial in
// a stable order (e.g. sorted by name) to get deterministic handles.
func LoadMaterialLibraryDoc(data []byte) (*MaterialLibraryDoc, error) {
	var doc MaterialLibraryDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Field: "MaterialLibrary", Err: fmt.Errorf("yaml: %w", err)}
	}
	return &doc, nil
}

// Package config loads and validates the solver's optional threshold
// overrides, following the teacher plugin's defaulting/validation split
// (defaults.go / validation.go).
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/jiro4989/calendar-solver/internal/solver"
)

// Default threshold constants, named in spec §4.2. A tuning file is
// optional; the solver is correct with zero configuration.
const (
	DefaultReduceGlobalLoadThreshold = 0.6
	DefaultImproveSplitThreshold     = 0.9
	DefaultCreateSplitThreshold      = 0.4
)

// Thresholds is the YAML-shaped tuning file. Field names match the
// threshold names used in spec §4.2 and AMBIENT STACK §2a.
type Thresholds struct {
	ReduceGlobalLoadThreshold *float64 `json:"reduceGlobalLoadThreshold,omitempty"`
	ImproveSplitThreshold     *float64 `json:"improveSplitThreshold,omitempty"`
	CreateSplitThreshold      *float64 `json:"createSplitThreshold,omitempty"`
}

// SetDefaults fills any unset field with the constant named in spec §4.2,
// mirroring SetDefaults_MultiObjectiveArgs's "defaulted only if unset"
// shape from the teacher plugin.
func (t *Thresholds) SetDefaults() {
	if t.ReduceGlobalLoadThreshold == nil {
		v := DefaultReduceGlobalLoadThreshold
		t.ReduceGlobalLoadThreshold = &v
	}
	if t.ImproveSplitThreshold == nil {
		v := DefaultImproveSplitThreshold
		t.ImproveSplitThreshold = &v
	}
	if t.CreateSplitThreshold == nil {
		v := DefaultCreateSplitThreshold
		t.CreateSplitThreshold = &v
	}
}

// Validate reports a non-nil error if any threshold falls outside [0, 1] —
// they gate mean-load ratios, which never exceed 1 for a feasible judge
// input.
func (t Thresholds) Validate() error {
	for name, v := range map[string]*float64{
		"reduceGlobalLoadThreshold": t.ReduceGlobalLoadThreshold,
		"improveSplitThreshold":     t.ImproveSplitThreshold,
		"createSplitThreshold":      t.CreateSplitThreshold,
	} {
		if v == nil {
			continue
		}
		if *v < 0 || *v > 1 {
			return fmt.Errorf("config: %s must be between 0 and 1, got %v", name, *v)
		}
	}
	return nil
}

// ToSolverThresholds converts a fully-defaulted Thresholds into the type
// the move generator consumes.
func (t Thresholds) ToSolverThresholds() solver.Thresholds {
	return solver.Thresholds{
		ReduceGlobalLoad: *t.ReduceGlobalLoadThreshold,
		ImproveSplit:     *t.ImproveSplitThreshold,
		CreateSplit:      *t.CreateSplitThreshold,
	}
}

// Load reads a threshold-tuning file at path, if non-empty, defaults and
// validates it, and returns the resulting solver.Thresholds. An empty path
// returns the pure defaults with no file access.
func Load(path string) (solver.Thresholds, error) {
	var t Thresholds
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return solver.Thresholds{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &t); err != nil {
			return solver.Thresholds{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	t.SetDefaults()
	if err := t.Validate(); err != nil {
		return solver.Thresholds{}, err
	}
	return t.ToSolverThresholds(), nil
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// ScheduleKind selects how the learning rate evolves over a run.
type ScheduleKind string

const (
	// WarmupCosine ramps linearly to LRPeak, holds it, then decays along a
	// cosine to LRFloor.
	WarmupCosine ScheduleKind = "warmup-cosine"
	// StepDecay uses LRPeak until StepAt and LRFloor afterwards.
	StepDecay ScheduleKind = "step"
)

// OutputKind selects what a Result carries besides the shared mesh.
type OutputKind string

const (
	OutputMesh  OutputKind = "mesh"
	OutputSites OutputKind = "sites"
)

// WallNorm is the per-edge norm of the wall-length loss.
type WallNorm string

const (
	L1        WallNorm = "l1"
	L2Squared WallNorm = "l2sq"
)

// Weights scales each loss term.
type Weights struct {
	RegionArea float64 `toml:"region_area" json:"region_area"`
	TotalArea  float64 `toml:"total_area" json:"total_area"`
	WallLength float64 `toml:"wall_length" json:"wall_length"`
	Anchor     float64 `toml:"anchor" json:"anchor"`
	Centroid   float64 `toml:"centroid" json:"centroid"`

	// The adjacency weight ramps from TopologyStart to TopologyEnd until
	// the decay phase starts.
	TopologyStart float64 `toml:"topology_start" json:"topology_start"`
	TopologyEnd   float64 `toml:"topology_end" json:"topology_end"`
	// ContiguityScale multiplies the adjacency weight for split regions.
	ContiguityScale float64 `toml:"contiguity_scale" json:"contiguity_scale"`
}

// Config parametrizes a run. PlannerConfig and BlockConfig are the two
// presets; LoadConfig overlays a TOML file on either of them.
type Config struct {
	Weights        Weights  `toml:"weights" json:"weights"`
	AnchorExponent int      `toml:"anchor_exponent" json:"anchor_exponent"`
	WallNorm       WallNorm `toml:"wall_norm" json:"wall_norm"`

	// Iteration budget: BaseIterations for up to 10 sites, growing
	// linearly to MaxIterations at 60 sites, scaled by AnchorScale when any
	// anchor weight is set.
	BaseIterations int     `toml:"base_iterations" json:"base_iterations"`
	MaxIterations  int     `toml:"max_iterations" json:"max_iterations"`
	AnchorScale    float64 `toml:"anchor_scale" json:"anchor_scale"`

	Schedule ScheduleKind `toml:"schedule" json:"schedule"`
	LRStart  float64      `toml:"lr_start" json:"lr_start"`
	LRPeak   float64      `toml:"lr_peak" json:"lr_peak"`
	LRFloor  float64      `toml:"lr_floor" json:"lr_floor"`
	StepAt   int          `toml:"step_at" json:"step_at"`

	Beta1       float64 `toml:"beta1" json:"beta1"`
	Beta2       float64 `toml:"beta2" json:"beta2"`
	Epsilon     float64 `toml:"epsilon" json:"epsilon"`
	WeightDecay float64 `toml:"weight_decay" json:"weight_decay"`

	Output OutputKind `toml:"output" json:"output"`
	// CatchPanics converts panics inside Optimize into CodeInvariant errors.
	CatchPanics bool `toml:"catch_panics" json:"catch_panics"`

	// DelaunayThreshold is the active-site count from which the
	// tessellation filters candidate neighbours through a triangulation.
	DelaunayThreshold int `toml:"delaunay_threshold" json:"delaunay_threshold"`
}

// PlannerConfig returns the preset of the floor-plan generator: scheduled
// budget and learning rate, mesh output, panics caught.
func PlannerConfig() Config {
	return Config{
		Weights: Weights{
			RegionArea:      50000,
			TotalArea:       10000,
			WallLength:      20,
			Anchor:          1e7,
			Centroid:        0.1,
			TopologyStart:   10,
			TopologyEnd:     150,
			ContiguityScale: 1,
		},
		AnchorExponent:    4,
		WallNorm:          L1,
		BaseIterations:    250,
		MaxIterations:     600,
		AnchorScale:       1.1,
		Schedule:          WarmupCosine,
		LRStart:           0.02,
		LRPeak:            0.08,
		LRFloor:           0.005,
		Beta1:             0.9,
		Beta2:             0.95,
		Epsilon:           1e-8,
		WeightDecay:       0.01,
		Output:            OutputMesh,
		CatchPanics:       true,
		DelaunayThreshold: 32,
	}
}

// BlockConfig returns the preset of the block generator: fixed budget, step
// learning rate, final site output, panics propagate.
func BlockConfig() Config {
	return Config{
		Weights: Weights{
			RegionArea:      5,
			TotalArea:       10,
			WallLength:      0.02,
			Anchor:          100,
			Centroid:        0.2,
			TopologyStart:   1,
			TopologyEnd:     1,
			ContiguityScale: 1,
		},
		AnchorExponent:    2,
		WallNorm:          L1,
		BaseIterations:    250,
		MaxIterations:     250,
		AnchorScale:       1,
		Schedule:          StepDecay,
		LRStart:           0.05,
		LRPeak:            0.05,
		LRFloor:           0.005,
		StepAt:            150,
		Beta1:             0.9,
		Beta2:             0.999,
		Epsilon:           1e-8,
		WeightDecay:       0.01,
		Output:            OutputSites,
		CatchPanics:       false,
		DelaunayThreshold: 32,
	}
}

// Preset returns the named preset, "planner" or "block".
func Preset(name string) (Config, error) {
	switch name {
	case "planner", "":
		return PlannerConfig(), nil
	case "block":
		return BlockConfig(), nil
	}
	return Config{}, fmt.Errorf("unknown preset %q", name)
}

// LoadConfig overlays the TOML file at path on base. Keys absent from the
// file keep their value from base.
func LoadConfig(path string, base Config) (Config, error) {
	cfg := base
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent field as a CodeInvariant error.
func (c Config) Validate() error {
	switch {
	case c.AnchorExponent < 2 || c.AnchorExponent%2 != 0:
		return CodeInvariant.errorf("anchor_exponent must be a positive even number, got %d", c.AnchorExponent)
	case c.WallNorm != L1 && c.WallNorm != L2Squared:
		return CodeInvariant.errorf("unknown wall_norm %q", c.WallNorm)
	case c.BaseIterations < 1:
		return CodeInvariant.errorf("base_iterations must be positive, got %d", c.BaseIterations)
	case c.MaxIterations < c.BaseIterations:
		return CodeInvariant.errorf("max_iterations %d is below base_iterations %d", c.MaxIterations,
			c.BaseIterations)
	case c.AnchorScale <= 0:
		return CodeInvariant.errorf("anchor_scale must be positive, got %v", c.AnchorScale)
	case c.Schedule != WarmupCosine && c.Schedule != StepDecay:
		return CodeInvariant.errorf("unknown schedule %q", c.Schedule)
	case c.LRStart < 0 || c.LRPeak <= 0 || c.LRFloor < 0 || c.LRFloor > c.LRPeak:
		return CodeInvariant.errorf("learning rates must satisfy 0 <= lr_floor <= lr_peak, lr_peak > 0")
	case c.Beta1 < 0 || c.Beta1 >= 1 || c.Beta2 < 0 || c.Beta2 >= 1:
		return CodeInvariant.errorf("beta1 and beta2 must lie in [0, 1)")
	case c.Epsilon <= 0:
		return CodeInvariant.errorf("epsilon must be positive, got %v", c.Epsilon)
	case c.WeightDecay < 0:
		return CodeInvariant.errorf("weight_decay must be non-negative, got %v", c.WeightDecay)
	case c.Output != OutputMesh && c.Output != OutputSites:
		return CodeInvariant.errorf("unknown output %q", c.Output)
	case c.DelaunayThreshold < 4:
		return CodeInvariant.errorf("delaunay_threshold must be at least 4, got %d", c.DelaunayThreshold)
	}
	return nil
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import "math"

// Plan is the iteration budget of one run together with its phase
// boundaries.
type Plan struct {
	Iterations int
	Warmup     int
	DecayStart int

	cfg Config
}

// NewPlan computes the budget for numSites sites. anchored reports whether
// any anchor weight is non-zero.
func NewPlan(cfg Config, numSites int, anchored bool) Plan {
	n := cfg.BaseIterations + max(numSites-10, 0)*(cfg.MaxIterations-cfg.BaseIterations)/50
	if anchored {
		n = int(math.Round(float64(n) * cfg.AnchorScale))
	}
	return Plan{
		Iterations: n,
		Warmup:     n / 20,
		DecayStart: n / 6,
		cfg:        cfg,
	}
}

// LearningRate returns the step size of iteration t.
func (p Plan) LearningRate(t int) float64 {
	c := p.cfg
	if c.Schedule == StepDecay {
		if t < c.StepAt {
			return c.LRPeak
		}
		return c.LRFloor
	}

	switch {
	case t < p.Warmup:
		return c.LRStart + (c.LRPeak-c.LRStart)*float64(t)/float64(p.Warmup)
	case t < p.DecayStart:
		return c.LRPeak
	}
	progress := float64(t-p.DecayStart) / float64(p.Iterations-p.DecayStart)
	return c.LRFloor + 0.5*(c.LRPeak-c.LRFloor)*(1+math.Cos(math.Pi*progress))
}

// TopologyWeight returns the adjacency weight of iteration t.
func (p Plan) TopologyWeight(t int) float64 {
	w := p.cfg.Weights
	if t < p.DecayStart {
		return w.TopologyStart + (w.TopologyEnd-w.TopologyStart)*float64(t)/float64(p.DecayStart)
	}
	return w.TopologyEnd
}

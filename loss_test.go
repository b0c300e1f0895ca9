// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"math"
	"slices"
	"testing"

	"github.com/2dChan/floorplan/polygon"
	"github.com/2dChan/floorplan/utils"
	"github.com/golang/geo/r2"
)

func TestTerm_String(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{RegionArea, "region_area"},
		{Topology, "topology"},
		{Centroid, "centroid"},
		{Term(-1), "unknown"},
		{numTerms, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("Term(%d).String() = %q, want %q", int(tt.term), got, tt.want)
		}
	}
	if got := len(Terms()); got != int(numTerms) {
		t.Errorf("len(Terms()) = %v, want %v", got, numTerms)
	}
}

func TestLosses_Total(t *testing.T) {
	var l Losses
	l[RegionArea] = 1
	l[WallLength] = 2.5
	l[Anchor] = 0.5
	if got := l.Total(); got != 4 {
		t.Errorf("Total() = %v, want 4", got)
	}
	if got := l.Map()["wall_length"]; got != 2.5 {
		t.Errorf("Map()[\"wall_length\"] = %v, want 2.5", got)
	}
}

func TestEvaluate_SymmetricSplit(t *testing.T) {
	sites := []r2.Point{{X: 0.25, Y: 0.5}, {X: 0.75, Y: 0.5}}
	p := Problem{
		Boundary:    unitSquare,
		Sites:       sites,
		Regions:     []int{0, 1},
		TargetAreas: []float64{0.5, 0.5},
	}

	tests := []struct {
		name string
		norm WallNorm
	}{
		{"l1", L1},
		{"l2 squared", L2Squared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := PlannerConfig()
			cfg.WallNorm = tt.norm
			ev := mustEvaluate(t, p, cfg, sites)

			// A single unit-length wall.
			if got, want := ev.losses[WallLength], cfg.Weights.WallLength; math.Abs(got-want) > 1e-12 {
				t.Errorf("wall length loss = %v, want %v", got, want)
			}
			for _, term := range []Term{RegionArea, TotalArea, Topology, Contiguity, Anchor, Centroid} {
				if got := ev.losses[term]; math.Abs(got) > 1e-9 {
					t.Errorf("%s loss = %v, want 0", term, got)
				}
			}
		})
	}
}

func TestAnchorLoss_ZeroWeights(t *testing.T) {
	initial := []r2.Point{{X: 0.3, Y: 0.5}, {X: 0.6, Y: 0.45}}
	moved := []r2.Point{{X: 0.2, Y: 0.4}, {X: 0.7, Y: 0.5}}
	for _, anchors := range [][]float64{nil, {0, 0, 0, 0}} {
		p := Problem{
			Boundary:    unitSquare,
			Sites:       initial,
			Regions:     []int{0, 1},
			Anchors:     anchors,
			TargetAreas: []float64{0.5, 0.5},
		}
		ev := mustEvaluate(t, p, PlannerConfig(), moved)
		if got := ev.losses[Anchor]; got != 0 {
			t.Errorf("anchor loss with anchors %v = %v, want 0", anchors, got)
		}
	}
}

func TestAnchorLoss(t *testing.T) {
	initial := []r2.Point{{X: 0.3, Y: 0.5}, {X: 0.6, Y: 0.45}}
	moved := []r2.Point{{X: 0.2, Y: 0.5}, {X: 0.7, Y: 0.45}}
	p := Problem{
		Boundary:    unitSquare,
		Sites:       initial,
		Regions:     []int{0, 1},
		Anchors:     []float64{10, 10, 0, 0},
		TargetAreas: []float64{0.5, 0.5},
	}
	cfg := PlannerConfig()
	ev := mustEvaluate(t, p, cfg, moved)
	// ((0.2 - 0.3) * 10)^4 = 1.
	if got, want := ev.losses[Anchor], cfg.Weights.Anchor; math.Abs(got-want) > 1e-6*want {
		t.Errorf("anchor loss = %v, want %v", got, want)
	}
}

func TestEvaluate_GradientFiniteDifference(t *testing.T) {
	tests := []struct {
		name     string
		boundary []r2.Point
		norm     WallNorm
	}{
		{"unit square l1", unitSquare, L1},
		{"l shape l1", lShape, L1},
		{"l shape l2 squared", lShape, L2Squared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initial := utils.GenerateRandomPoints(tt.boundary, 8, 3)
			area := polygon.Area(tt.boundary)
			p := Problem{
				Boundary:    tt.boundary,
				Sites:       initial,
				Regions:     []int{0, 1, 2, 3, 0, 1, 2, 3},
				Anchors:     []float64{1, 1, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0},
				TargetAreas: []float64{0.4 * area, 0.3 * area, 0.2 * area, 0.1 * area},
			}
			cfg := PlannerConfig()
			cfg.WallNorm = tt.norm
			// Pull targets are frozen, so only the differentiable terms are compared.
			cfg.Weights.ContiguityScale = 0
			cfg.Weights.TotalArea = 0

			sites := slices.Clone(initial)
			for s := range sites {
				sites[s] = sites[s].Add(r2.Point{X: 0.01, Y: -0.005})
			}
			r := newRun(p, cfg)
			ev, err := r.evaluate(sites, 10)
			if err != nil {
				t.Fatalf("evaluate(...) error = %v, want nil", err)
			}
			objective := func(s []r2.Point) float64 {
				e, err := r.evaluate(s, 10)
				if err != nil {
					t.Fatalf("evaluate(...) error = %v, want nil", err)
				}
				return e.losses.Total()
			}

			const h = 1e-6
			for s := range sites {
				for c := range 2 {
					x := slices.Clone(sites)
					x[s] = shift(sites[s], c, h)
					fp := objective(x)
					x[s] = shift(sites[s], c, -h)
					fm := objective(x)
					want := (fp - fm) / (2 * h)
					got := ev.grad[s].X
					if c == 1 {
						got = ev.grad[s].Y
					}
					if math.Abs(got-want) > 1e-4*math.Max(1, math.Abs(want)) {
						t.Errorf("grad[%d][%d] = %v, want %v", s, c, got, want)
					}
				}
			}
		})
	}
}

func TestEvaluate_CoincidentSites(t *testing.T) {
	p := Problem{
		Boundary:    unitSquare,
		Sites:       []r2.Point{{X: 0.5, Y: 0.5}, {X: 0.5, Y: 0.5}},
		Regions:     []int{0, 1},
		TargetAreas: []float64{0.5, 0.5},
	}
	_, err := newRun(p, PlannerConfig()).evaluate(p.Sites, 10)
	if !Is(err, CodeComputation) {
		t.Errorf("evaluate(coincident sites) error = %v, want %s", err, CodeComputation)
	}
}

func shift(p r2.Point, c int, h float64) r2.Point {
	if c == 0 {
		p.X += h
	} else {
		p.Y += h
	}
	return p
}

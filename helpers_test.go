// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"testing"

	"github.com/golang/geo/r2"
)

// Helpers

var (
	unitSquare = []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	lShape     = []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
)

func mustEvaluate(t *testing.T, p Problem, cfg Config, sites []r2.Point) *evaluation {
	t.Helper()
	if err := p.Validate(); err != nil {
		t.Fatalf("p.Validate() error = %v, want nil", err)
	}
	ev, err := newRun(p, cfg).evaluate(sites, cfg.Weights.TopologyStart)
	if err != nil {
		t.Fatalf("evaluate(...) error = %v, want nil", err)
	}
	return ev
}

func mustOptimize(t *testing.T, p Problem, cfg Config, obs ...Observer) *Result {
	t.Helper()
	res, err := Optimize(p, cfg, obs...)
	if err != nil {
		t.Fatalf("Optimize(...) error = %v, want nil", err)
	}
	return res
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
)

var strip = []r2.Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 1}, {X: 0, Y: 1}}

func TestAdjacencyPulls(t *testing.T) {
	sites := []r2.Point{{X: 0.5, Y: 0.5}, {X: 1.5, Y: 0.5}, {X: 2.5, Y: 0.5}}
	regions := []int{0, 1, 2}
	d := mustNewDiagram(t, strip, sites, nil)
	walls := Walls(d, regions)

	tests := []struct {
		name      string
		adjacency [][2]int
		want      []pull
	}{
		{"adjacent pair", [][2]int{{0, 1}, {2, 1}}, nil},
		{"same region", [][2]int{{1, 1}}, nil},
		{"empty region", [][2]int{{0, 3}}, nil},
		{"separated pair", [][2]int{{2, 0}}, []pull{
			{site: 2, target: sites[0]},
			{site: 0, target: sites[2]},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adjacencyPulls(sites, regions, walls, tt.adjacency)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(pull{})); diff != "" {
				t.Errorf("adjacencyPulls(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClosestPair(t *testing.T) {
	sites := []r2.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 3, Y: 0}, {X: 9, Y: 0}}
	regions := []int{0, 0, 1, 1}
	s, u, ok := closestPair(sites, regions, 0, 1)
	if !ok || s != 1 || u != 2 {
		t.Errorf("closestPair(...) = %d, %d, %v, want 1, 2, true", s, u, ok)
	}
	if _, _, ok := closestPair(sites, regions, 0, 2); ok {
		t.Errorf("closestPair(..., empty region) ok = true, want false")
	}
}

func TestPullLoss(t *testing.T) {
	sites := []r2.Point{{X: 1, Y: 2}, {X: 0, Y: 0}}
	pulls := []pull{{site: 0, target: r2.Point{X: 0, Y: 0}}, {site: 1, target: r2.Point{X: 1, Y: 2}}}
	grad := make([]r2.Point, 2)

	got := pullLoss(pulls, sites, 3, grad)
	if got != 10 {
		t.Errorf("pullLoss(...) = %v, want 10", got)
	}
	want := []r2.Point{{X: 6, Y: 12}, {X: -6, Y: -12}}
	if diff := cmp.Diff(want, grad); diff != "" {
		t.Errorf("pullLoss(...) grad mismatch (-want +got):\n%s", diff)
	}
}

func TestContiguityPulls(t *testing.T) {
	tests := []struct {
		name  string
		xs    []float64
		want  []pull
		comps int
	}{
		// Cells [0, 1], [1, 2.1], [2.1, 3]: the left piece of region 0 is larger.
		{"left piece larger", []float64{0.5, 1.5, 2.7}, []pull{{site: 2, target: r2.Point{X: 0.5, Y: 0.5}}}, 3},
		// Cells [0, 0.9], [0.9, 2], [2, 3]: the right piece is larger.
		{"right piece larger", []float64{0.3, 1.5, 2.5}, []pull{{site: 0, target: r2.Point{X: 2.5, Y: 0.5}}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites := make([]r2.Point, len(tt.xs))
			for i, x := range tt.xs {
				sites[i] = r2.Point{X: x, Y: 0.5}
			}
			regions := []int{0, 1, 0}
			d := mustNewDiagram(t, strip, sites, nil)
			areas := make([]float64, len(sites))
			for s := range sites {
				c, _ := d.Cell(s)
				areas[s] = c.Area()
			}

			_, n := regionComponents(d, regions)
			if n != tt.comps {
				t.Errorf("regionComponents(...) count = %v, want %v", n, tt.comps)
			}
			got := contiguityPulls(d, regions, areas, 2)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(pull{})); diff != "" {
				t.Errorf("contiguityPulls(...) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContiguityPulls_Connected(t *testing.T) {
	sites := []r2.Point{{X: 0.5, Y: 0.5}, {X: 1.5, Y: 0.5}, {X: 2.5, Y: 0.5}}
	regions := []int{0, 0, 1}
	d := mustNewDiagram(t, strip, sites, nil)
	if got := contiguityPulls(d, regions, []float64{1, 1, 1}, 2); len(got) != 0 {
		t.Errorf("contiguityPulls(...) = %v, want none", got)
	}
}

func TestTopologyLoss_ZeroIffAdjacent(t *testing.T) {
	sites := []r2.Point{{X: 0.5, Y: 0.5}, {X: 1.5, Y: 0.5}, {X: 2.5, Y: 0.5}}
	p := Problem{
		Boundary:    strip,
		Sites:       sites,
		Regions:     []int{0, 1, 2},
		TargetAreas: []float64{1, 1, 1},
	}

	p.Adjacency = [][2]int{{0, 1}, {1, 2}}
	if got := mustEvaluate(t, p, PlannerConfig(), sites).losses[Topology]; got != 0 {
		t.Errorf("topology loss for adjacent pairs = %v, want 0", got)
	}

	p.Adjacency = [][2]int{{0, 2}}
	got := mustEvaluate(t, p, PlannerConfig(), sites).losses[Topology]
	// Both sites are pulled across a distance of 2 with weight 10.
	if want := 10.0 * 2 * 4; math.Abs(got-want) > 1e-9 {
		t.Errorf("topology loss for separated pair = %v, want %v", got, want)
	}
}

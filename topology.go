// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"github.com/2dChan/floorplan/voronoi2"
	"github.com/golang/geo/r2"
)

// pull attracts a site to a target frozen for the current iteration.
type pull struct {
	site   int
	target r2.Point
}

// pullLoss returns Σ |p_s - target|² and adds w times its gradient to grad.
// No gradient flows through the targets.
func pullLoss(pulls []pull, sites []r2.Point, w float64, grad []r2.Point) float64 {
	loss := 0.0
	for _, p := range pulls {
		d := sites[p.site].Sub(p.target)
		loss += d.Dot(d)
		grad[p.site] = grad[p.site].Add(d.Mul(2 * w))
	}
	return loss
}

// adjacencyPulls brings every required but non-adjacent region pair
// together: the closest two sites of the pair are pulled onto each other.
// Pairs within one region and pairs with an empty region are skipped.
func adjacencyPulls(sites []r2.Point, regions []int, walls []Wall, adjacency [][2]int) []pull {
	adj := adjacentRegions(walls, regions)
	var pulls []pull
	for _, pair := range adjacency {
		a, b := pair[0], pair[1]
		if a == b || adj[regionPair(a, b)] {
			continue
		}
		s, t, ok := closestPair(sites, regions, a, b)
		if !ok {
			continue
		}
		pulls = append(pulls,
			pull{site: s, target: sites[t]},
			pull{site: t, target: sites[s]})
	}
	return pulls
}

func closestPair(sites []r2.Point, regions []int, a, b int) (int, int, bool) {
	bestS, bestT, best := -1, -1, 0.0
	for s, rs := range regions {
		if rs != a {
			continue
		}
		for t, rt := range regions {
			if rt != b {
				continue
			}
			d := sites[s].Sub(sites[t])
			if dd := d.Dot(d); bestS < 0 || dd < best {
				bestS, bestT, best = s, t, dd
			}
		}
	}
	return bestS, bestT, bestS >= 0
}

// contiguityPulls reconnects regions whose cells fall apart: every site
// outside the component with the largest area is pulled to its nearest
// site inside it.
func contiguityPulls(d *voronoi2.Diagram, regions []int, cellAreas []float64, numRegions int) []pull {
	comp, numComps := regionComponents(d, regions)
	compArea := make([]float64, numComps)
	for s, c := range comp {
		if c >= 0 {
			compArea[c] += cellAreas[s]
		}
	}

	// main[r] is the largest component of region r; split[r] marks
	// regions with more than one component.
	main := make([]int, numRegions)
	split := make([]bool, numRegions)
	for r := range main {
		main[r] = -1
	}
	for s, c := range comp {
		if c < 0 {
			continue
		}
		r := regions[s]
		switch m := main[r]; {
		case m < 0:
			main[r] = c
		case m != c:
			split[r] = true
			if compArea[c] > compArea[m] {
				main[r] = c
			}
		}
	}

	var pulls []pull
	for s, c := range comp {
		if c < 0 || !split[regions[s]] || c == main[regions[s]] {
			continue
		}
		best, bestDist := -1, 0.0
		for t, ct := range comp {
			if ct != main[regions[s]] {
				continue
			}
			v := d.Sites[s].Sub(d.Sites[t])
			if dd := v.Dot(v); best < 0 || dd < bestDist {
				best, bestDist = t, dd
			}
		}
		pulls = append(pulls, pull{site: s, target: d.Sites[best]})
	}
	return pulls
}

// regionComponents labels the connected components of same-region cells.
// Inactive sites get -1.
func regionComponents(d *voronoi2.Diagram, regions []int) ([]int, int) {
	comp := make([]int, len(regions))
	for s := range comp {
		comp[s] = -1
	}
	n := 0
	var stack []int
	for s0, r := range regions {
		if r == Inactive || comp[s0] >= 0 {
			continue
		}
		comp[s0] = n
		stack = append(stack[:0], s0)
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, j := range d.CellNeighbors[d.CellOffsets[s]:d.CellOffsets[s+1]] {
				if j != voronoi2.NoNeighbor && regions[j] == r && comp[j] < 0 {
					comp[j] = n
					stack = append(stack, j)
				}
			}
		}
		n++
	}
	return comp, n
}

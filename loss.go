// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"math"

	"github.com/2dChan/floorplan/polygon"
	"github.com/2dChan/floorplan/voronoi2"
	"github.com/golang/geo/r2"
)

// Term identifies one loss term.
type Term int

const (
	RegionArea Term = iota
	TotalArea
	WallLength
	Topology
	Contiguity
	Anchor
	Centroid
	numTerms
)

var termNames = [numTerms]string{
	"region_area",
	"total_area",
	"wall_length",
	"topology",
	"contiguity",
	"anchor",
	"centroid",
}

func (t Term) String() string {
	if t < 0 || t >= numTerms {
		return "unknown"
	}
	return termNames[t]
}

// Terms returns every loss term in reporting order.
func Terms() []Term {
	out := make([]Term, numTerms)
	for i := range out {
		out[i] = Term(i)
	}
	return out
}

// Losses holds the weighted value of every term.
type Losses [numTerms]float64

// Total returns the weighted sum.
func (l Losses) Total() float64 {
	s := 0.0
	for _, v := range l {
		s += v
	}
	return s
}

// Map returns the losses keyed by term name.
func (l Losses) Map() map[string]float64 {
	m := make(map[string]float64, numTerms)
	for t, v := range l {
		m[Term(t).String()] = v
	}
	return m
}

// evaluation is the tessellation of one iteration with everything derived
// from it.
type evaluation struct {
	diagram     *voronoi2.Diagram
	cellAreas   []float64
	regionAreas []float64
	walls       []Wall
	losses      Losses
	grad        []r2.Point
}

// evaluate tessellates sites and returns every loss term with the gradient
// of their weighted sum.
func (r *run) evaluate(sites []r2.Point, topologyWeight float64) (*evaluation, error) {
	d, err := voronoi2.NewDiagram(r.boundary, sites, r.active,
		voronoi2.WithDelaunayThreshold(r.cfg.DelaunayThreshold))
	if err != nil {
		return nil, CodeComputation.wrap(err, "tessellation failed")
	}

	w := r.cfg.Weights
	ev := &evaluation{
		diagram:   d,
		cellAreas: make([]float64, len(sites)),
		grad:      make([]r2.Point, len(sites)),
	}
	vertexGrad := make([]r2.Point, len(d.Vertices))
	polys := make([][]r2.Point, len(sites))
	for s := range sites {
		c, err := d.Cell(s)
		if err != nil {
			return nil, CodeInvariant.wrap(err, "cell %d", s)
		}
		if c.NumVertices() >= 3 {
			polys[s] = c.Polygon()
			ev.cellAreas[s] = polygon.SignedArea(polys[s])
		}
	}
	scatter := func(s int, local []r2.Point) {
		for k, v := range d.CellVertices[d.CellOffsets[s]:d.CellOffsets[s+1]] {
			vertexGrad[v] = vertexGrad[v].Add(local[k])
		}
	}

	// Region and total area.
	ev.regionAreas = RegionAreas(r.grouping, ev.cellAreas)
	sum := 0.0
	for _, a := range ev.regionAreas {
		sum += a
	}
	regionGrad := make([]float64, len(ev.regionAreas))
	for k, a := range ev.regionAreas {
		diff := a - r.targets[k]
		ev.losses[RegionArea] += w.RegionArea * diff * diff
		regionGrad[k] = 2*w.RegionArea*diff + w.TotalArea*sign(sum-r.boundaryArea)
	}
	ev.losses[TotalArea] = w.TotalArea * math.Abs(sum-r.boundaryArea)
	for s, g := range cellAreaGradient(r.grouping, regionGrad) {
		if g == 0 || polys[s] == nil {
			continue
		}
		local := make([]r2.Point, len(polys[s]))
		polygon.AreaBackward(polys[s], g, local)
		scatter(s, local)
	}

	// Wall length.
	ev.walls = Walls(d, r.regions)
	for _, wl := range ev.walls {
		e := d.Vertices[wl.V1].Sub(d.Vertices[wl.V0])
		var g r2.Point
		switch r.cfg.WallNorm {
		case L2Squared:
			ev.losses[WallLength] += w.WallLength * e.Dot(e)
			g = e.Mul(2 * w.WallLength)
		default:
			ev.losses[WallLength] += w.WallLength * (math.Abs(e.X) + math.Abs(e.Y))
			g = r2.Point{X: sign(e.X), Y: sign(e.Y)}.Mul(w.WallLength)
		}
		vertexGrad[wl.V1] = vertexGrad[wl.V1].Add(g)
		vertexGrad[wl.V0] = vertexGrad[wl.V0].Sub(g)
	}

	// Adjacency and contiguity.
	ev.losses[Topology] = topologyWeight *
		pullLoss(adjacencyPulls(sites, r.regions, ev.walls, r.adjacency), sites, topologyWeight, ev.grad)
	cw := topologyWeight * w.ContiguityScale
	ev.losses[Contiguity] = cw *
		pullLoss(contiguityPulls(d, r.regions, ev.cellAreas, len(r.targets)), sites, cw, ev.grad)

	// Anchors.
	k := r.cfg.AnchorExponent
	for s, p := range sites {
		delta := p.Sub(r.initial[s])
		dx := delta.X * r.anchors[2*s]
		dy := delta.Y * r.anchors[2*s+1]
		ev.losses[Anchor] += w.Anchor * (math.Pow(dx, float64(k)) + math.Pow(dy, float64(k)))
		ev.grad[s] = ev.grad[s].Add(r2.Point{
			X: w.Anchor * float64(k) * math.Pow(dx, float64(k-1)) * r.anchors[2*s],
			Y: w.Anchor * float64(k) * math.Pow(dy, float64(k-1)) * r.anchors[2*s+1],
		})
	}

	// Shape regularity.
	for s, poly := range polys {
		if poly == nil || r.regions[s] == Inactive {
			continue
		}
		ct, area, ok := polygon.Centroid(poly)
		if !ok || area <= 0 {
			continue
		}
		delta := sites[s].Sub(ct)
		ev.losses[Centroid] += w.Centroid * delta.Dot(delta)
		ev.grad[s] = ev.grad[s].Add(delta.Mul(2 * w.Centroid))
		local := make([]r2.Point, len(poly))
		polygon.CentroidBackward(poly, delta.Mul(-2*w.Centroid), local)
		scatter(s, local)
	}

	if err := d.Backward(vertexGrad, ev.grad); err != nil {
		return nil, CodeInvariant.wrap(err, "vertex gradient")
	}

	for t, v := range ev.losses {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, CodeComputation.errorf("%s loss is not finite", Term(t))
		}
	}
	for s, g := range ev.grad {
		if math.IsNaN(g.X) || math.IsNaN(g.Y) || math.IsInf(g.X, 0) || math.IsInf(g.Y, 0) {
			return nil, CodeComputation.errorf("gradient of site %d is not finite", s)
		}
	}
	return ev, nil
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

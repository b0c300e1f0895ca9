// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package voronoi2 implements planar Voronoi diagrams clipped to a boundary
// polygon. Every generated vertex remembers how it was constructed, which
// makes the diagram differentiable with respect to its sites.

package voronoi2

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/2dChan/floorplan/delaunay2"
	"github.com/2dChan/floorplan/polygon"
	"github.com/golang/geo/r2"
)

const (
	defaultEps               = 1e-12
	defaultDelaunayThreshold = 32

	// NoNeighbor marks a cell edge that lies on the boundary.
	NoNeighbor = -1
)

// Diagram is a Voronoi diagram of Sites clipped to Boundary.
//
// Cell i owns CellVertices[CellOffsets[i]:CellOffsets[i+1]]. CellNeighbors[k]
// is the site across the edge from CellVertices[k] to the next vertex of the
// same cell, or NoNeighbor. Inactive sites own empty runs.
type Diagram struct {
	Boundary []r2.Point
	Sites    []r2.Point
	Active   []bool
	Vertices []r2.Point

	// NOTE: Sort in CCW per Cell.
	CellVertices []int
	// NOTE: Sort in CCW per Cell.
	CellNeighbors []int
	CellOffsets   []int

	// deps[v] lists the sites vertex v depends on with d(vertex)/d(site).
	deps [][]dependency
	opts DiagramOptions
}

// NumCells returns the number of cells, one per site.
func (d *Diagram) NumCells() int {
	return len(d.Sites)
}

// Cell returns the cell of site i.
// It returns an error if the index is out of range.
func (d *Diagram) Cell(i int) (Cell, error) {
	if i < 0 || i >= d.NumCells() {
		return Cell{}, fmt.Errorf("Cell: index %d out of range [0 %d)", i, d.NumCells())
	}
	return Cell{idx: i, d: d}, nil
}

// Backward adds the pullback of vertexGrad through the vertex constructions
// to siteGrad: siteGrad[s] += Σ_v (d Vertices[v] / d Sites[s])ᵀ vertexGrad[v].
func (d *Diagram) Backward(vertexGrad, siteGrad []r2.Point) error {
	if len(vertexGrad) != len(d.Vertices) {
		return fmt.Errorf("Backward: len(vertexGrad) = %d, want %d", len(vertexGrad), len(d.Vertices))
	}
	if len(siteGrad) != len(d.Sites) {
		return fmt.Errorf("Backward: len(siteGrad) = %d, want %d", len(siteGrad), len(d.Sites))
	}
	for v, g := range vertexGrad {
		if g == (r2.Point{}) {
			continue
		}
		for _, dep := range d.deps[v] {
			siteGrad[dep.site] = siteGrad[dep.site].Add(dep.jac.transposeApply(g))
		}
	}
	return nil
}

// Relax applies steps iterations of Lloyd's algorithm: every active site is
// moved to the centroid of its cell and the diagram is recomputed.
func (d *Diagram) Relax(steps int) error {
	if steps < 0 {
		return fmt.Errorf("Relax: steps must be non-negative, got %d", steps)
	}
	for range steps {
		sites := slices.Clone(d.Sites)
		for i := range d.NumCells() {
			c, err := d.Cell(i)
			if err != nil {
				return err
			}
			if ct, ok := c.Centroid(); ok {
				sites[i] = ct
			}
		}
		nd, err := build(d.Boundary, sites, d.Active, d.opts)
		if err != nil {
			return err
		}
		*d = *nd
	}
	return nil
}

type DiagramOptions struct {
	Eps               float64
	DelaunayThreshold int
}

type DiagramOption func(*DiagramOptions) error

func WithEps(eps float64) DiagramOption {
	return func(o *DiagramOptions) error {
		if eps <= 0 {
			return fmt.Errorf("WithEps: eps must be positive, got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

// WithDelaunayThreshold sets the number of active sites from which candidate
// neighbours are taken from a Delaunay triangulation instead of all pairs.
func WithDelaunayThreshold(n int) DiagramOption {
	return func(o *DiagramOptions) error {
		if n < 4 {
			return fmt.Errorf("WithDelaunayThreshold: threshold must be at least 4, got %d", n)
		}
		o.DelaunayThreshold = n
		return nil
	}
}

// NewDiagram computes the Voronoi diagram of sites clipped to boundary.
// Only sites with active[i] set own a cell; a nil active slice marks every
// site active. The boundary is stored in counter-clockwise order.
func NewDiagram(boundary, sites []r2.Point, active []bool, setters ...DiagramOption) (*Diagram, error) {
	opts := DiagramOptions{
		Eps:               defaultEps,
		DelaunayThreshold: defaultDelaunayThreshold,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	if len(boundary) < 3 {
		return nil, fmt.Errorf("NewDiagram: boundary needs at least 3 vertices, got %d", len(boundary))
	}
	if polygon.Area(boundary) <= opts.Eps {
		return nil, errors.New("NewDiagram: boundary has zero area")
	}
	if active == nil {
		active = make([]bool, len(sites))
		for i := range active {
			active[i] = true
		}
	}
	if len(active) != len(sites) {
		return nil, fmt.Errorf("NewDiagram: len(active) = %d, want %d", len(active), len(sites))
	}
	for i, s := range sites {
		if active[i] && !isFinite(s) {
			return nil, fmt.Errorf("NewDiagram: site %d is not finite: %v", i, s)
		}
	}
	if err := checkCoincident(sites, active, opts.Eps); err != nil {
		return nil, err
	}

	return build(polygon.CCW(slices.Clone(boundary)), slices.Clone(sites), slices.Clone(active), opts)
}

func build(boundary, sites []r2.Point, active []bool, opts DiagramOptions) (*Diagram, error) {
	candidates := candidateNeighbors(sites, active, opts)

	b := newBuilder(boundary, sites, opts.Eps)
	d := &Diagram{
		Boundary:    boundary,
		Sites:       sites,
		Active:      active,
		CellOffsets: make([]int, len(sites)+1),
		opts:        opts,
	}
	for i := range sites {
		if active[i] {
			poly := clipCell(boundary, sites, i, candidates[i])
			if err := b.addCell(i, poly, candidates[i]); err != nil {
				return nil, err
			}
		}
		d.CellOffsets[i+1] = len(b.cellVertices)
	}
	d.Vertices = b.vertices
	d.CellVertices = b.cellVertices
	d.CellNeighbors = b.cellNeighbors
	d.deps = b.deps
	return d, nil
}

// candidateNeighbors returns, per active site, the sites whose bisectors may
// bound its cell, in ascending order.
func candidateNeighbors(sites []r2.Point, active []bool, opts DiagramOptions) [][]int {
	var idx []int
	for i, a := range active {
		if a {
			idx = append(idx, i)
		}
	}

	out := make([][]int, len(sites))
	if len(idx) >= opts.DelaunayThreshold {
		if nb, ok := delaunayNeighbors(sites, idx, opts.Eps); ok {
			for k, i := range idx {
				out[i] = nb[k]
			}
			return out
		}
	}
	for _, i := range idx {
		for _, j := range idx {
			if j != i {
				out[i] = append(out[i], j)
			}
		}
	}
	return out
}

func delaunayNeighbors(sites []r2.Point, idx []int, eps float64) ([][]int, bool) {
	pts := make([]r2.Point, len(idx))
	for k, i := range idx {
		pts[k] = sites[i]
	}
	dt, err := delaunay2.NewTriangulation(pts, delaunay2.WithEps(eps))
	if err != nil {
		return nil, false
	}
	out := make([][]int, len(idx))
	for k := range idx {
		nb := dt.Neighbors(k)
		// A site the hull dropped would get the whole boundary as its cell.
		if len(nb) == 0 {
			return nil, false
		}
		out[k] = make([]int, len(nb))
		for m, v := range nb {
			out[k][m] = idx[v]
		}
		slices.Sort(out[k])
	}
	return out, true
}

func checkCoincident(sites []r2.Point, active []bool, eps float64) error {
	var idx []int
	for i, a := range active {
		if a {
			idx = append(idx, i)
		}
	}
	slices.SortFunc(idx, func(a, b int) int {
		if c := cmp.Compare(sites[a].X, sites[b].X); c != 0 {
			return c
		}
		return cmp.Compare(sites[a].Y, sites[b].Y)
	})
	for k := 1; k < len(idx); k++ {
		a, b := idx[k-1], idx[k]
		if sites[a].Sub(sites[b]).Norm() <= eps {
			return fmt.Errorf("NewDiagram: sites %d and %d coincide at %v", min(a, b), max(a, b), sites[a])
		}
	}
	return nil
}

func isFinite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

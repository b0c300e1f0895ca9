// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package floorplan generates floor plans by optimizing the sites of a
// Voronoi diagram clipped to a boundary. Each site belongs to a region;
// the optimizer moves the sites until region areas match their targets,
// required regions touch, walls are short and anchored sites stay put.
package floorplan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/2dChan/floorplan/polygon"
	"github.com/2dChan/floorplan/utils"
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// Problem is the input of a run.
type Problem struct {
	Boundary []r2.Point
	Sites    []r2.Point
	// Regions[s] is the region of site s or Inactive.
	Regions []int
	// Anchors holds a weight per site coordinate (x0, y0, x1, y1, ...);
	// zero leaves the coordinate free. A nil slice anchors nothing.
	Anchors     []float64
	TargetAreas []float64
	// Adjacency lists unordered region pairs that must share a wall.
	Adjacency [][2]int
}

// NumRegions returns the number of regions.
func (p Problem) NumRegions() int {
	return len(p.TargetAreas)
}

// Anchored reports whether any anchor weight is non-zero.
func (p Problem) Anchored() bool {
	return slices.ContainsFunc(p.Anchors, func(w float64) bool { return w != 0 })
}

// Validate checks the problem for consistency.
func (p Problem) Validate() error {
	if len(p.Boundary) < 3 {
		return CodeComputation.errorf("boundary needs at least 3 vertices, got %d", len(p.Boundary))
	}
	if polygon.Area(p.Boundary) == 0 {
		return CodeComputation.errorf("boundary has zero area")
	}
	if len(p.Sites) == 0 {
		return CodeInvariant.errorf("no sites")
	}
	if len(p.TargetAreas) == 0 {
		return CodeInvariant.errorf("no regions")
	}
	if len(p.Regions) != len(p.Sites) {
		return CodeInvariant.errorf("len(regions) = %d, want %d", len(p.Regions), len(p.Sites))
	}
	if p.Anchors != nil && len(p.Anchors) != 2*len(p.Sites) {
		return CodeInvariant.errorf("len(anchors) = %d, want %d", len(p.Anchors), 2*len(p.Sites))
	}
	for s, r := range p.Regions {
		if r != Inactive && (r < 0 || r >= p.NumRegions()) {
			return CodeInvariant.errorf("site %d has region %d, want Inactive or [0 %d)", s, r,
				p.NumRegions())
		}
	}
	for r, a := range p.TargetAreas {
		if !(a > 0) {
			return CodeInvariant.errorf("region %d has non-positive target area %v", r, a)
		}
	}
	for _, pair := range p.Adjacency {
		for _, r := range pair {
			if r < 0 || r >= p.NumRegions() {
				return CodeInvariant.errorf("adjacency pair %v references region %d, want [0 %d)", pair,
					r, p.NumRegions())
			}
		}
	}
	return nil
}

// FlatProblem is the interleaved-coordinate form of a Problem used in
// problem files and over HTTP.
type FlatProblem struct {
	Boundary    []float64 `toml:"boundary" json:"boundary"`
	Sites       []float64 `toml:"sites" json:"sites"`
	Regions     []int     `toml:"regions" json:"regions"`
	Anchors     []float64 `toml:"anchors" json:"anchors,omitempty"`
	TargetAreas []float64 `toml:"target_areas" json:"target_areas"`
	Adjacency   [][2]int  `toml:"adjacency" json:"adjacency,omitempty"`
}

// FromFlat converts f into a Problem.
func FromFlat(f FlatProblem) (Problem, error) {
	if len(f.Boundary)%2 != 0 {
		return Problem{}, CodeInvariant.errorf("boundary has an odd number of coordinates")
	}
	if len(f.Sites)%2 != 0 {
		return Problem{}, CodeInvariant.errorf("sites have an odd number of coordinates")
	}
	return Problem{
		Boundary:    utils.Unflatten(f.Boundary),
		Sites:       utils.Unflatten(f.Sites),
		Regions:     f.Regions,
		Anchors:     f.Anchors,
		TargetAreas: f.TargetAreas,
		Adjacency:   f.Adjacency,
	}, nil
}

// Result is the mesh of the final iteration.
type Result struct {
	Iterations int `json:"iterations"`

	Vertices     []r2.Point `json:"-"`
	CellOffsets  []int      `json:"cell_offsets"`
	CellVertices []int      `json:"cell_vertices"`
	Walls        []Wall     `json:"walls"`
	RegionAreas  []float64  `json:"region_areas"`
	Losses       Losses     `json:"-"`

	// CellRegions is set for OutputMesh, Sites for OutputSites.
	CellRegions []int      `json:"cell_regions,omitempty"`
	Sites       []r2.Point `json:"-"`
}

// FlatResult is the interleaved-coordinate form of a Result.
type FlatResult struct {
	Iterations   int                `json:"iterations"`
	Vertices     []float64          `json:"vertices"`
	CellOffsets  []int              `json:"cell_offsets"`
	CellVertices []int              `json:"cell_vertices"`
	CellRegions  []int              `json:"cell_regions,omitempty"`
	Sites        []float64          `json:"sites,omitempty"`
	Walls        []Wall             `json:"walls"`
	RegionAreas  []float64          `json:"region_areas"`
	Losses       map[string]float64 `json:"losses"`
}

// Flat returns r in interleaved-coordinate form.
func (r *Result) Flat() FlatResult {
	f := FlatResult{
		Iterations:   r.Iterations,
		Vertices:     utils.Flatten(r.Vertices),
		CellOffsets:  r.CellOffsets,
		CellVertices: r.CellVertices,
		CellRegions:  r.CellRegions,
		Walls:        r.Walls,
		RegionAreas:  r.RegionAreas,
		Losses:       r.Losses.Map(),
	}
	if r.Sites != nil {
		f.Sites = utils.Flatten(r.Sites)
	}
	return f
}

// Result converts f back into a Result.
func (f FlatResult) Result() *Result {
	r := &Result{
		Iterations:   f.Iterations,
		Vertices:     utils.Unflatten(f.Vertices),
		CellOffsets:  f.CellOffsets,
		CellVertices: f.CellVertices,
		CellRegions:  f.CellRegions,
		Walls:        f.Walls,
		RegionAreas:  f.RegionAreas,
	}
	if f.Sites != nil {
		r.Sites = utils.Unflatten(f.Sites)
	}
	for _, t := range Terms() {
		r.Losses[t] = f.Losses[t.String()]
	}
	return r
}

// run holds the state that stays fixed for a whole optimization.
type run struct {
	cfg          Config
	boundary     []r2.Point
	boundaryArea float64
	initial      []r2.Point
	regions      []int
	active       []bool
	anchors      []float64
	targets      []float64
	adjacency    [][2]int
	grouping     *mat.Dense
}

// Optimize moves the sites of p for the budget given by cfg and returns the
// mesh of the last iteration. Observers are called after every step.
//
// Errors are *Error values. With cfg.CatchPanics set, a panic inside the
// run is returned as a CodeInvariant error instead of propagating.
func Optimize(p Problem, cfg Config, obs ...Observer) (res *Result, err error) {
	if cfg.CatchPanics {
		defer func() {
			if r := recover(); r != nil {
				res, err = nil, CodeInvariant.errorf("recovered panic: %v", r)
			}
		}()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r := newRun(p, cfg)
	return r.optimize(slices.Clone(p.Sites), NewPlan(cfg, len(p.Sites), p.Anchored()), obs)
}

func newRun(p Problem, cfg Config) *run {
	boundary := polygon.CCW(slices.Clone(p.Boundary))
	anchors := p.Anchors
	if anchors == nil {
		anchors = make([]float64, 2*len(p.Sites))
	}
	active := make([]bool, len(p.Sites))
	for s, reg := range p.Regions {
		active[s] = reg != Inactive
	}
	return &run{
		cfg:          cfg,
		boundary:     boundary,
		boundaryArea: polygon.Area(boundary),
		initial:      slices.Clone(p.Sites),
		regions:      slices.Clone(p.Regions),
		active:       active,
		anchors:      anchors,
		targets:      slices.Clone(p.TargetAreas),
		adjacency:    slices.Clone(p.Adjacency),
		grouping:     GroupingMatrix(p.Regions, p.NumRegions()),
	}
}

func (r *run) optimize(sites []r2.Point, plan Plan, obs []Observer) (*Result, error) {
	if plan.Iterations < 1 {
		return nil, CodeInvariant.errorf("iteration budget is %d", plan.Iterations)
	}
	opt := newAdamW(r.cfg, len(sites))
	var res *Result
	for t := range plan.Iterations {
		lr := plan.LearningRate(t)
		tw := plan.TopologyWeight(t)
		ev, err := r.evaluate(sites, tw)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Message = fmt.Sprintf("iteration %d: %s", t, e.Message)
			}
			return nil, err
		}
		opt.Step(sites, ev.grad, lr)

		it := &Iteration{
			Index:          t,
			Total:          plan.Iterations,
			LearningRate:   lr,
			TopologyWeight: tw,
			Losses:         ev.losses,
			Diagram:        ev.diagram,
			Walls:          ev.walls,
			Sites:          sites,
			Regions:        r.regions,
			RegionAreas:    ev.regionAreas,
		}
		for _, o := range obs {
			if err := o.Observe(it); err != nil {
				return nil, CodeObserver.wrap(err, "observer failed at iteration %d", t)
			}
		}

		if it.Last() {
			res = r.capture(ev, sites, plan.Iterations)
		}
	}
	return res, nil
}

func (r *run) capture(ev *evaluation, sites []r2.Point, iterations int) *Result {
	d := ev.diagram
	res := &Result{
		Iterations:   iterations,
		Vertices:     slices.Clone(d.Vertices),
		CellOffsets:  slices.Clone(d.CellOffsets),
		CellVertices: slices.Clone(d.CellVertices),
		Walls:        ev.walls,
		RegionAreas:  ev.regionAreas,
		Losses:       ev.losses,
	}
	switch r.cfg.Output {
	case OutputSites:
		res.Sites = slices.Clone(sites)
	default:
		res.CellRegions = slices.Clone(r.regions)
	}
	return res
}

// String summarizes the losses of r.
func (r *Result) String() string {
	return fmt.Sprintf("floorplan.Result{iterations: %d, vertices: %d, walls: %d, loss: %.6g}",
		r.Iterations, len(r.Vertices), len(r.Walls), r.Losses.Total())
}

// WallLength returns the total Euclidean length of the walls of r.
func (r *Result) WallLength() float64 {
	l := 0.0
	for _, w := range r.Walls {
		l += r.Vertices[w.V1].Sub(r.Vertices[w.V0]).Norm()
	}
	return l
}

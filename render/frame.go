// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package render draws floor plans as SVG documents and animated GIFs.
package render

import (
	"image/color"

	"github.com/2dChan/floorplan"
	"github.com/2dChan/floorplan/polygon"
	"github.com/2dChan/floorplan/voronoi2"
	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
)

// Frame is one drawable layout.
type Frame struct {
	Boundary []r2.Point
	// Cells[i] is the polygon of site i; empty for inactive sites.
	Cells   [][]r2.Point
	Regions []int
	Walls   [][2]r2.Point
	Sites   []r2.Point
}

// FrameFromIteration returns the layout of the diagram observed in it.
func FrameFromIteration(it *floorplan.Iteration) Frame {
	return diagramFrame(it.Diagram, it.Regions, it.Walls)
}

// FrameFromDiagram returns the layout of d with sites grouped by regions.
func FrameFromDiagram(d *voronoi2.Diagram, regions []int) Frame {
	return diagramFrame(d, regions, floorplan.Walls(d, regions))
}

func diagramFrame(d *voronoi2.Diagram, regions []int, walls []floorplan.Wall) Frame {
	f := Frame{
		Boundary: d.Boundary,
		Cells:    make([][]r2.Point, d.NumCells()),
		Regions:  regions,
		Walls:    make([][2]r2.Point, len(walls)),
		Sites:    d.Sites,
	}
	for i := range d.NumCells() {
		cell, err := d.Cell(i)
		if err != nil {
			continue
		}
		f.Cells[i] = cell.Polygon()
	}
	for i, w := range walls {
		f.Walls[i] = [2]r2.Point{d.Vertices[w.V0], d.Vertices[w.V1]}
	}
	return f
}

// FrameFromResult returns the layout of res, taking whatever res does not
// carry (regions or sites, depending on the output kind) from p.
func FrameFromResult(p floorplan.Problem, res *floorplan.Result) Frame {
	n := len(res.CellOffsets) - 1
	f := Frame{
		Boundary: polygon.CCW(p.Boundary),
		Cells:    make([][]r2.Point, n),
		Regions:  res.CellRegions,
		Walls:    make([][2]r2.Point, len(res.Walls)),
		Sites:    res.Sites,
	}
	if f.Regions == nil {
		f.Regions = p.Regions
	}
	if f.Sites == nil {
		f.Sites = p.Sites
	}
	for i := range n {
		idx := res.CellVertices[res.CellOffsets[i]:res.CellOffsets[i+1]]
		cell := make([]r2.Point, len(idx))
		for k, v := range idx {
			cell[k] = res.Vertices[v]
		}
		f.Cells[i] = cell
	}
	for i, w := range res.Walls {
		f.Walls[i] = [2]r2.Point{res.Vertices[w.V0], res.Vertices[w.V1]}
	}
	return f
}

// Pastel region colors, cycled for plans with more regions.
var pastels = mustHexColors(
	"#AEC6CF", "#C7F0BD", "#C9A0DC", "#FF9AA2",
	"#B5EAD7", "#FFFACD", "#FFB347", "#F8B7D8",
)

var (
	background = colorful.Color{R: 1, G: 1, B: 1}
	outline    = colorful.Color{}
)

// RegionColor returns the fill color of region r.
func RegionColor(r int) colorful.Color {
	if r < 0 {
		return background
	}
	return pastels[r%len(pastels)]
}

// Palette returns the GIF palette: background, outline, then the region
// colors.
func Palette() color.Palette {
	p := color.Palette{background, outline}
	for _, c := range pastels {
		p = append(p, c)
	}
	return p
}

func mustHexColors(hex ...string) []colorful.Color {
	out := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// viewport maps plan coordinates onto a size × size image with the y axis
// pointing down.
type viewport struct {
	lo     r2.Point
	scale  float64
	margin float64
	size   float64
}

func newViewport(boundary []r2.Point, size int) viewport {
	const marginFrac = 0.05
	b := polygon.Bounds(boundary)
	s := float64(size)
	margin := s * marginFrac
	extent := max(b.Size().X, b.Size().Y)
	if extent <= 0 {
		extent = 1
	}
	return viewport{
		lo:     b.Lo(),
		scale:  (s - 2*margin) / extent,
		margin: margin,
		size:   s,
	}
}

func (v viewport) project(p r2.Point) (float64, float64) {
	x := v.margin + (p.X-v.lo.X)*v.scale
	y := v.size - v.margin - (p.Y-v.lo.Y)*v.scale
	return x, y
}

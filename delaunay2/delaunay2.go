// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package delaunay2 computes planar Delaunay triangulations as the lower
// convex hull of the sites lifted onto the paraboloid z = x² + y².
package delaunay2

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/markus-wa/quickhull-go/v2"
)

const (
	defaultEps = 1e-12
)

type Triangulation struct {
	Vertices []r2.Point
	// NOTE: Sort in CCW per triangle.
	Triangles               [][3]int
	IncidentTriangleIndices []int
	IncidentTriangleOffsets []int
}

func (dt *Triangulation) IncidentTriangles(vIdx int) []int {
	if vIdx < 0 || vIdx+1 >= len(dt.IncidentTriangleOffsets) {
		panic("IncidentTriangles: vIdx out of range")
	}
	start := dt.IncidentTriangleOffsets[vIdx]
	end := dt.IncidentTriangleOffsets[vIdx+1]
	return dt.IncidentTriangleIndices[start:end]
}

func (dt *Triangulation) TriangleVertices(tIdx int) (r2.Point, r2.Point, r2.Point) {
	if tIdx < 0 || tIdx >= len(dt.Triangles) {
		panic("TriangleVertices: tIdx out of bounds")
	}
	t := dt.Triangles[tIdx]
	return dt.Vertices[t[0]], dt.Vertices[t[1]], dt.Vertices[t[2]]
}

// Neighbors returns the vertices sharing a triangle edge with vIdx, in
// ascending order.
func (dt *Triangulation) Neighbors(vIdx int) []int {
	var out []int
	for _, tIdx := range dt.IncidentTriangles(vIdx) {
		t := dt.Triangles[tIdx]
		out = append(out, NextVertex(t, vIdx), PrevVertex(t, vIdx))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

type TriangulationOptions struct {
	Eps float64
}

type TriangulationOption func(*TriangulationOptions) error

func WithEps(eps float64) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if eps <= 0 {
			return fmt.Errorf("WithEps: eps must be positive, got %v", eps)
		}
		o.Eps = eps
		return nil
	}
}

func NewTriangulation(vertices []r2.Point, setters ...TriangulationOption) (dt *Triangulation, err error) {
	opts := TriangulationOptions{
		Eps: defaultEps,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	numVertices := len(vertices)
	if numVertices < 4 {
		return nil,
			errors.New("delaunay2: insufficient vertices for triangulation (minimum 4 required)")
	}

	// QuickHull panics on some fully degenerate inputs (all points
	// cocircular lift onto one plane).
	defer func() {
		if r := recover(); r != nil {
			dt, err = nil, fmt.Errorf("delaunay2: degenerate input: %v", r)
		}
	}()

	lifted := lift(vertices)
	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(lifted, true, true, opts.Eps)
	if len(ch.Indices) == 0 || len(ch.Indices)%3 != 0 {
		return nil, errors.New("delaunay2: inconsistent number of indices returned from QuickHull")
	}

	var center r3.Vector
	for _, v := range lifted {
		center = center.Add(v)
	}
	center = center.Mul(1 / float64(numVertices))

	dt = &Triangulation{
		Vertices:                vertices,
		IncidentTriangleOffsets: make([]int, numVertices+1),
	}
	for i := 0; i < len(ch.Indices); i += 3 {
		t := [3]int{ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]}
		a, b, c := lifted[t[0]], lifted[t[1]], lifted[t[2]]
		norm := b.Sub(a).Cross(c.Sub(a))
		if norm.Dot(a.Sub(center)) < 0 {
			norm = norm.Mul(-1)
		}
		// Faces of the lower hull project onto Delaunay triangles.
		if norm.Z >= 0 {
			continue
		}
		sortTriangleVerticesCCW(&t, vertices)
		dt.Triangles = append(dt.Triangles, t)
	}
	if len(dt.Triangles) == 0 {
		return nil, errors.New("delaunay2: no lower hull faces, input is degenerate")
	}

	for _, t := range dt.Triangles {
		for _, v := range t {
			dt.IncidentTriangleOffsets[v+1]++
		}
	}
	for i := range numVertices {
		dt.IncidentTriangleOffsets[i+1] += dt.IncidentTriangleOffsets[i]
	}
	dt.IncidentTriangleIndices = make([]int, dt.IncidentTriangleOffsets[numVertices])
	nxt := make([]int, numVertices)
	copy(nxt, dt.IncidentTriangleOffsets[:numVertices])
	for i, t := range dt.Triangles {
		for _, v := range t {
			dt.IncidentTriangleIndices[nxt[v]] = i
			nxt[v]++
		}
	}

	return dt, nil
}

// lift maps vertices onto the paraboloid after normalizing them into the
// unit box, which keeps the hull well conditioned for large coordinates.
func lift(vertices []r2.Point) []r3.Vector {
	bound := r2.RectFromPoints(vertices...)
	center := bound.Center()
	size := bound.Size()
	scale := max(size.X, size.Y)
	if scale == 0 {
		scale = 1
	}

	out := make([]r3.Vector, len(vertices))
	for i, p := range vertices {
		q := p.Sub(center).Mul(1 / scale)
		out[i] = r3.Vector{X: q.X, Y: q.Y, Z: q.Dot(q)}
	}
	return out
}

func sortTriangleVerticesCCW(t *[3]int, v []r2.Point) {
	p0, p1, p2 := v[t[0]], v[t[1]], v[t[2]]
	if p1.Sub(p0).Cross(p2.Sub(p0)) < 0 {
		t[1], t[2] = t[2], t[1]
	}
}

func PrevVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[2]
	case t[1]:
		return t[0]
	case t[2]:
		return t[1]
	}
	panic("PrevVertex: vIdx not in triangle")
}

func NextVertex(t [3]int, vIdx int) int {
	switch vIdx {
	case t[0]:
		return t[1]
	case t[1]:
		return t[2]
	case t[2]:
		return t[0]
	}
	panic("NextVertex: vIdx not in triangle")
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voronoi2

import (
	"fmt"

	"github.com/2dChan/floorplan/polygon"
	"github.com/golang/geo/r2"
)

// Cell represents a clipped Voronoi cell. It is a view structure for accessing a cell in a Diagram.
// The cell's index corresponds to the index of its site in the Diagram's Sites.
type Cell struct {
	idx int
	d   *Diagram
}

// SiteIndex returns the index of the site in the Diagram's Sites.
func (c Cell) SiteIndex() int {
	return c.idx
}

// Site returns the site point of the cell.
func (c Cell) Site() r2.Point {
	return c.d.Sites[c.idx]
}

// IsActive reports whether the site takes part in the diagram.
func (c Cell) IsActive() bool {
	return c.d.Active[c.idx]
}

// NumVertices returns the number of vertices in the cell.
// This equals the number of neighbors. It is zero for inactive sites.
func (c Cell) NumVertices() int {
	return c.d.CellOffsets[c.idx+1] - c.d.CellOffsets[c.idx]
}

// VertexIndices returns the indices of the vertices that form the cell in the Diagram's Vertices,
// sorted in counter-clockwise order.
func (c Cell) VertexIndices() []int {
	return c.d.CellVertices[c.d.CellOffsets[c.idx]:c.d.CellOffsets[c.idx+1]]
}

// Vertex returns the vertex at the specified index.
// It returns an error if the index is out of range.
func (c Cell) Vertex(i int) (r2.Point, error) {
	start := c.d.CellOffsets[c.idx]
	end := c.d.CellOffsets[c.idx+1]
	if i < 0 || i >= end-start {
		return r2.Point{}, fmt.Errorf("Vertex: index %d out of range [0 %d)", i, end-start)
	}
	return c.d.Vertices[c.d.CellVertices[start+i]], nil
}

// NumNeighbors returns the number of edges of the cell, including those on
// the boundary. This equals the number of vertices.
func (c Cell) NumNeighbors() int {
	return c.d.CellOffsets[c.idx+1] - c.d.CellOffsets[c.idx]
}

// NeighborIndices returns, for every edge of the cell, the index of the site
// across it or NoNeighbor, sorted in counter-clockwise order.
func (c Cell) NeighborIndices() []int {
	return c.d.CellNeighbors[c.d.CellOffsets[c.idx]:c.d.CellOffsets[c.idx+1]]
}

// Neighbor returns the neighboring cell across edge i.
// It returns an error if the index is out of range or the edge lies on the boundary.
func (c Cell) Neighbor(i int) (Cell, error) {
	start := c.d.CellOffsets[c.idx]
	end := c.d.CellOffsets[c.idx+1]
	if i < 0 || i >= end-start {
		return Cell{}, fmt.Errorf("Neighbor: index %d out of range [0 %d)", i, end-start)
	}
	nIdx := c.d.CellNeighbors[start+i]
	if nIdx == NoNeighbor {
		return Cell{}, fmt.Errorf("Neighbor: edge %d lies on the boundary", i)
	}
	nc, err := c.d.Cell(nIdx)
	if err != nil {
		return Cell{}, err
	}
	return nc, nil
}

// Polygon returns a copy of the cell vertices.
func (c Cell) Polygon() []r2.Point {
	idx := c.VertexIndices()
	out := make([]r2.Point, len(idx))
	for k, v := range idx {
		out[k] = c.d.Vertices[v]
	}
	return out
}

// Area returns the area of the cell.
func (c Cell) Area() float64 {
	if c.NumVertices() < 3 {
		return 0
	}
	return polygon.Area(c.Polygon())
}

// Centroid returns the area centroid of the cell. ok is false for empty or
// degenerate cells.
func (c Cell) Centroid() (r2.Point, bool) {
	if c.NumVertices() < 3 {
		return r2.Point{}, false
	}
	ct, area, ok := polygon.Centroid(c.Polygon())
	return ct, ok && area > 0
}

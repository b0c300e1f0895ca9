// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"github.com/2dChan/floorplan/voronoi2"
)

// Wall is a cell edge separating two regions. V0 and V1 index the diagram
// vertices; Site0 < Site1 are the sites on either side.
type Wall struct {
	V0    int `json:"v0"`
	V1    int `json:"v1"`
	Site0 int `json:"site0"`
	Site1 int `json:"site1"`
}

// Walls returns the edges of d between active sites of different regions,
// each reported once from the lower site index.
func Walls(d *voronoi2.Diagram, regions []int) []Wall {
	var walls []Wall
	for i := range d.NumCells() {
		if regions[i] == Inactive {
			continue
		}
		start, end := d.CellOffsets[i], d.CellOffsets[i+1]
		m := end - start
		for k := range m {
			j := d.CellNeighbors[start+k]
			if j == voronoi2.NoNeighbor || i >= j || regions[j] == Inactive || regions[j] == regions[i] {
				continue
			}
			walls = append(walls, Wall{
				V0:    d.CellVertices[start+k],
				V1:    d.CellVertices[start+(k+1)%m],
				Site0: i,
				Site1: j,
			})
		}
	}
	return walls
}

// regionPair returns the unordered pair {a, b} in canonical order.
func regionPair(a, b int) [2]int {
	return [2]int{min(a, b), max(a, b)}
}

// adjacentRegions returns the region pairs sharing at least one wall.
func adjacentRegions(walls []Wall, regions []int) map[[2]int]bool {
	adj := make(map[[2]int]bool, len(walls))
	for _, w := range walls {
		adj[regionPair(regions[w.Site0], regions[w.Site1])] = true
	}
	return adj
}

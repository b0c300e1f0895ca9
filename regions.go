// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"gonum.org/v1/gonum/mat"
)

// Inactive is the region id of a site that takes no part in the partition.
const Inactive = -1

// GroupingMatrix returns the numRegions × len(regions) matrix with a one at
// (regions[s], s) for every active site s.
func GroupingMatrix(regions []int, numRegions int) *mat.Dense {
	g := mat.NewDense(numRegions, len(regions), nil)
	for s, r := range regions {
		if r != Inactive {
			g.Set(r, s, 1)
		}
	}
	return g
}

// RegionAreas sums cell areas per region.
func RegionAreas(g *mat.Dense, cellAreas []float64) []float64 {
	numRegions, _ := g.Dims()
	var out mat.VecDense
	out.MulVec(g, mat.NewVecDense(len(cellAreas), cellAreas))
	areas := make([]float64, numRegions)
	for r := range areas {
		areas[r] = out.AtVec(r)
	}
	return areas
}

// cellAreaGradient pulls a per-region gradient back to cells: Gᵀ·regionGrad.
func cellAreaGradient(g *mat.Dense, regionGrad []float64) []float64 {
	_, numSites := g.Dims()
	var out mat.VecDense
	out.MulVec(g.T(), mat.NewVecDense(len(regionGrad), regionGrad))
	grad := make([]float64, numSites)
	for s := range grad {
		grad[s] = out.AtVec(s)
	}
	return grad
}

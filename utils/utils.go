// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils provides utility functions for generating planar sites inside a boundary polygon.

package utils

import (
	"math/rand"

	"github.com/2dChan/floorplan/polygon"
	"github.com/golang/geo/r2"
)

// maxRejections bounds the rejection sampler for boundaries that cover a
// tiny fraction of their bounding box.
const maxRejections = 1 << 20

// GenerateRandomPoints generates cnt random points inside boundary.
// The seed parameter ensures reproducibility. Fewer than cnt points are
// returned only when boundary has (almost) no interior.
func GenerateRandomPoints(boundary []r2.Point, cnt int, seed int64) []r2.Point {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	bound := polygon.Bounds(boundary)
	lo, size := bound.Lo(), bound.Size()
	sites := make([]r2.Point, 0, cnt)

	for tries := 0; len(sites) < cnt && tries < maxRejections; tries++ {
		p := r2.Point{
			X: lo.X + random.Float64()*size.X,
			Y: lo.Y + random.Float64()*size.Y,
		}
		if polygon.Contains(boundary, p) {
			sites = append(sites, p)
		}
	}

	return sites
}

// Flatten returns points as interleaved x, y coordinates.
func Flatten(points []r2.Point) []float64 {
	out := make([]float64, 0, 2*len(points))
	for _, p := range points {
		out = append(out, p.X, p.Y)
	}
	return out
}

// Unflatten is the inverse of Flatten. A trailing odd coordinate is ignored.
func Unflatten(xy []float64) []r2.Point {
	out := make([]r2.Point, len(xy)/2)
	for i := range out {
		out[i] = r2.Point{X: xy[2*i], Y: xy[2*i+1]}
	}
	return out
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package polygon provides planar polygon operators together with their
// analytic gradients with respect to the polygon vertices.
//
// Backward functions accumulate into a gradient slice aligned with the
// polygon's vertices; they never reset it.
package polygon

import (
	"math"

	"github.com/golang/geo/r2"
)

// SignedArea returns the shoelace area of pts. It is positive for
// counter-clockwise polygons.
func SignedArea(pts []r2.Point) float64 {
	n := len(pts)
	s := 0.0
	for i := range n {
		s += pts[i].Cross(pts[(i+1)%n])
	}
	return 0.5 * s
}

// Area returns the absolute area of pts.
func Area(pts []r2.Point) float64 {
	return math.Abs(SignedArea(pts))
}

// AreaBackward adds g * d(SignedArea)/d(pts[k]) to grad[k] for every vertex.
func AreaBackward(pts []r2.Point, g float64, grad []r2.Point) {
	n := len(pts)
	if len(grad) != n {
		panic("AreaBackward: len(grad) != len(pts)")
	}
	for k := range n {
		prv := pts[(k+n-1)%n]
		nxt := pts[(k+1)%n]
		grad[k] = grad[k].Add(r2.Point{X: nxt.Y - prv.Y, Y: prv.X - nxt.X}.Mul(0.5 * g))
	}
}

// Centroid returns the area centroid of pts and its signed area.
// ok is false when the area is too small for the centroid to be defined.
func Centroid(pts []r2.Point) (c r2.Point, area float64, ok bool) {
	n := len(pts)
	var sx, sy float64
	for k := range n {
		a, b := pts[k], pts[(k+1)%n]
		cr := a.Cross(b)
		area += cr
		sx += (a.X + b.X) * cr
		sy += (a.Y + b.Y) * cr
	}
	area *= 0.5
	if math.Abs(area) <= minArea {
		return r2.Point{}, area, false
	}
	return r2.Point{X: sx / (6 * area), Y: sy / (6 * area)}, area, true
}

// minArea is the area below which a centroid is considered undefined.
const minArea = 1e-12

// CentroidBackward adds gc · d(Centroid)/d(pts[k]) to grad[k] for every
// vertex. It does nothing when the centroid is undefined.
func CentroidBackward(pts []r2.Point, gc r2.Point, grad []r2.Point) {
	n := len(pts)
	if len(grad) != n {
		panic("CentroidBackward: len(grad) != len(pts)")
	}
	c, area, ok := Centroid(pts)
	if !ok {
		return
	}

	// C = S / (6A); dC = (dS - 6 C dA) / (6A), dA = dcross / 2.
	wx := gc.X / (6 * area)
	wy := gc.Y / (6 * area)
	wa := -(gc.X*c.X + gc.Y*c.Y) / area
	for k := range n {
		kb := (k + 1) % n
		a, b := pts[k], pts[kb]
		cr := a.Cross(b)
		sx, sy := a.X+b.X, a.Y+b.Y
		dca := r2.Point{X: b.Y, Y: -b.X}
		dcb := r2.Point{X: -a.Y, Y: a.X}
		grad[k] = grad[k].Add(r2.Point{
			X: wx*(cr+sx*dca.X) + wy*sy*dca.X + wa*0.5*dca.X,
			Y: wx*sx*dca.Y + wy*(cr+sy*dca.Y) + wa*0.5*dca.Y,
		})
		grad[kb] = grad[kb].Add(r2.Point{
			X: wx*(cr+sx*dcb.X) + wy*sy*dcb.X + wa*0.5*dcb.X,
			Y: wx*sx*dcb.Y + wy*(cr+sy*dcb.Y) + wa*0.5*dcb.Y,
		})
	}
}

// IsCCW reports whether pts is oriented counter-clockwise.
func IsCCW(pts []r2.Point) bool {
	return SignedArea(pts) > 0
}

// Reverse returns a copy of pts in reverse order.
func Reverse(pts []r2.Point) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// CCW returns pts if it is counter-clockwise and a reversed copy otherwise.
func CCW(pts []r2.Point) []r2.Point {
	if IsCCW(pts) {
		return pts
	}
	return Reverse(pts)
}

// Contains reports whether p lies inside pts using the even-odd rule.
func Contains(pts []r2.Point, p r2.Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the bounding rectangle of pts.
func Bounds(pts []r2.Point) r2.Rect {
	return r2.RectFromPoints(pts...)
}

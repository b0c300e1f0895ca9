// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voronoi2

import "github.com/golang/geo/r2"

// clipVertex is a vertex of a cell under construction. in labels the edge
// that ends at the vertex: a site index for a bisector, or boundaryLabel(e)
// for boundary edge e.
type clipVertex struct {
	p  r2.Point
	in int
}

func boundaryLabel(e int) int {
	return -(e + 1)
}

func isBoundaryLabel(l int) bool {
	return l < 0
}

func boundaryEdge(l int) int {
	return -l - 1
}

// clipCell clips the boundary by the half-planes closer to sites[i] than to
// each candidate (Sutherland–Hodgman).
func clipCell(boundary, sites []r2.Point, i int, candidates []int) []clipVertex {
	nb := len(boundary)
	poly := make([]clipVertex, nb)
	for k, p := range boundary {
		poly[k] = clipVertex{p: p, in: boundaryLabel((k + nb - 1) % nb)}
	}

	pi := sites[i]
	buf := make([]clipVertex, 0, nb)
	for _, j := range candidates {
		pj := sites[j]
		n := pj.Sub(pi)
		m := pi.Add(pj).Mul(0.5)
		side := func(p r2.Point) float64 { return p.Sub(m).Dot(n) }

		buf = buf[:0]
		for k, cur := range poly {
			nxt := poly[(k+1)%len(poly)]
			fc, fn := side(cur.p), side(nxt.p)
			switch {
			case fc <= 0 && fn <= 0:
				buf = append(buf, nxt)
			case fc <= 0:
				t := fc / (fc - fn)
				buf = append(buf, clipVertex{p: cur.p.Add(nxt.p.Sub(cur.p).Mul(t)), in: nxt.in})
			case fn <= 0:
				t := fc / (fc - fn)
				buf = append(buf,
					clipVertex{p: cur.p.Add(nxt.p.Sub(cur.p).Mul(t)), in: j},
					nxt)
			}
		}
		poly, buf = buf, poly
		if len(poly) == 0 {
			break
		}
	}
	return poly
}

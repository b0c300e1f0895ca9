// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package voronoi2

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/2dChan/floorplan/polygon"
	"github.com/golang/geo/r2"
)

// degenerateTol is the relative size below which a vertex construction is
// treated as singular.
const degenerateTol = 1e-10

// crossingTol is the relative slack used when splitting bisector edges:
// crossings this close to an endpoint belong to the endpoint.
const crossingTol = 1e-9

type keyKind int

const (
	cornerKey keyKind = iota // boundary vertex a
	edgeKey                  // boundary edge a ∩ bisector(b, c), b < c
	circumKey                // circumcenter of sites a < b < c
	looseKey                 // singular construction, a is a serial number
)

// vertexKey identifies a vertex by its construction, so cells sharing a
// vertex share its index.
type vertexKey struct {
	kind    keyKind
	a, b, c int
}

// jacobian is the 2×2 derivative of a vertex with respect to one site,
// row r holding d(vertex_r)/d(site).
type jacobian [2][2]float64

func outer(u, v r2.Point) jacobian {
	return jacobian{{u.X * v.X, u.X * v.Y}, {u.Y * v.X, u.Y * v.Y}}
}

func (j jacobian) transposeApply(g r2.Point) r2.Point {
	return r2.Point{
		X: j[0][0]*g.X + j[1][0]*g.Y,
		Y: j[0][1]*g.X + j[1][1]*g.Y,
	}
}

type dependency struct {
	site int
	jac  jacobian
}

type builder struct {
	boundary []r2.Point
	sites    []r2.Point
	eps      float64

	index         map[vertexKey]int
	loose         int
	vertices      []r2.Point
	deps          [][]dependency
	cellVertices  []int
	cellNeighbors []int
}

func newBuilder(boundary, sites []r2.Point, eps float64) *builder {
	return &builder{
		boundary: boundary,
		sites:    sites,
		eps:      eps,
		index:    make(map[vertexKey]int),
	}
}

// addCell appends the clipped polygon of site i to the cell tables.
//
// On a non-convex boundary the clipped polygon may consist of several pieces
// joined by zero-area runs along bisectors. Bisector edges are split where
// they cross the boundary or another bisector of site i, and the runs lying
// outside the boundary or nearer to another candidate get NoNeighbor.
func (b *builder) addCell(i int, poly []clipVertex, candidates []int) error {
	m := len(poly)
	if m < 3 {
		return nil
	}
	start := len(b.cellVertices)
	push := func(v, nb int) {
		// Vertices produced twice by a bisector through an existing vertex.
		if n := len(b.cellVertices); n > start && b.cellVertices[n-1] == v {
			b.cellNeighbors[n-1] = nb
			return
		}
		b.cellVertices = append(b.cellVertices, v)
		b.cellNeighbors = append(b.cellNeighbors, nb)
	}
	for k := range m {
		lin := poly[k].in
		lout := poly[(k+1)%m].in
		v, err := b.vertex(b.key(i, lin, lout), poly[k].p)
		if err != nil {
			return err
		}
		if isBoundaryLabel(lout) {
			push(v, NoNeighbor)
			continue
		}

		p, q := poly[k].p, poly[(k+1)%m].p
		for _, c := range b.crossings(i, lout, p, q, candidates) {
			w, err := b.vertex(c.key, c.p)
			if err != nil {
				return err
			}
			push(v, b.across(i, lout, p, c.p, candidates))
			v, p = w, c.p
		}
		push(v, b.across(i, lout, p, q, candidates))
	}
	if n := len(b.cellVertices); n-start > 1 && b.cellVertices[n-1] == b.cellVertices[start] {
		b.cellVertices = b.cellVertices[:n-1]
		b.cellNeighbors = b.cellNeighbors[:n-1]
	}
	if len(b.cellVertices)-start < 3 {
		b.cellVertices = b.cellVertices[:start]
		b.cellNeighbors = b.cellNeighbors[:start]
	}
	return nil
}

// across returns the neighbour of cell i over the edge from p to q on the
// bisector of i and j: j if the edge is part of the clipped diagram and
// NoNeighbor otherwise.
func (b *builder) across(i, j int, p, q r2.Point, candidates []int) int {
	mid := p.Add(q).Mul(0.5)
	if !polygon.Contains(b.boundary, mid) {
		return NoNeighbor
	}
	dist2 := func(s int) float64 {
		r := mid.Sub(b.sites[s])
		return r.Dot(r)
	}
	di := dist2(i)
	for _, k := range candidates {
		if k != j && dist2(k) < di*(1-crossingTol) {
			return NoNeighbor
		}
	}
	return j
}

type crossing struct {
	key vertexKey
	t   float64
	p   r2.Point
}

// crossings returns the points where the open edge pq on the bisector of
// sites i and j crosses a boundary edge or the bisector of i and another
// candidate, ordered from p to q.
func (b *builder) crossings(i, j int, p, q r2.Point, candidates []int) []crossing {
	d := q.Sub(p)
	var out []crossing
	add := func(key vertexKey, t float64) {
		if t > crossingTol && t < 1-crossingTol {
			out = append(out, crossing{key: key, t: t, p: p.Add(d.Mul(t))})
		}
	}

	for e, q0 := range b.boundary {
		f := b.boundary[(e+1)%len(b.boundary)].Sub(q0)
		den := d.Cross(f)
		if math.Abs(den) <= degenerateTol*d.Norm()*f.Norm() {
			continue
		}
		r := q0.Sub(p)
		if s := r.Cross(d) / den; s < 0 || s >= 1 {
			continue
		}
		add(vertexKey{kind: edgeKey, a: e, b: min(i, j), c: max(i, j)}, r.Cross(f)/den)
	}

	pi := b.sites[i]
	for _, k := range candidates {
		if k == j {
			continue
		}
		pk := b.sites[k]
		n := pk.Sub(pi)
		dn := d.Dot(n)
		if math.Abs(dn) <= degenerateTol*d.Norm()*n.Norm() {
			continue
		}
		s := []int{i, j, k}
		slices.Sort(s)
		add(vertexKey{kind: circumKey, a: s[0], b: s[1], c: s[2]}, pi.Add(pk).Mul(0.5).Sub(p).Dot(n)/dn)
	}

	slices.SortFunc(out, func(x, y crossing) int { return cmp.Compare(x.t, y.t) })
	return out
}

// key returns the construction of the vertex of cell i between the edges
// labelled lin and lout.
func (b *builder) key(i, lin, lout int) vertexKey {
	switch {
	case isBoundaryLabel(lin) && isBoundaryLabel(lout):
		return vertexKey{kind: cornerKey, a: boundaryEdge(lout)}
	case isBoundaryLabel(lin):
		return vertexKey{kind: edgeKey, a: boundaryEdge(lin), b: min(i, lout), c: max(i, lout)}
	case isBoundaryLabel(lout):
		return vertexKey{kind: edgeKey, a: boundaryEdge(lout), b: min(i, lin), c: max(i, lin)}
	case lin == lout:
		return b.looseKey()
	}
	s := []int{i, lin, lout}
	slices.Sort(s)
	return vertexKey{kind: circumKey, a: s[0], b: s[1], c: s[2]}
}

func (b *builder) looseKey() vertexKey {
	b.loose++
	return vertexKey{kind: looseKey, a: b.loose}
}

// vertex returns the index of the vertex constructed by key, creating it if
// needed. clipped is the position found by clipping, used when the
// construction is singular.
func (b *builder) vertex(key vertexKey, clipped r2.Point) (int, error) {
	if v, ok := b.index[key]; ok {
		return v, nil
	}

	var (
		p    r2.Point
		deps []dependency
		ok   = true
	)
	switch key.kind {
	case cornerKey:
		p = b.boundary[key.a]
	case edgeKey:
		p, deps, ok = b.edgeVertex(key.a, key.b, key.c)
	case circumKey:
		p, deps, ok = b.circumVertex(key.a, key.b, key.c)
	case looseKey:
		p = clipped
	}
	if !ok {
		key = b.looseKey()
		p, deps = clipped, nil
	}
	if !isFinite(p) {
		return 0, fmt.Errorf("NewDiagram: vertex %v is not finite", key)
	}

	v := len(b.vertices)
	b.index[key] = v
	b.vertices = append(b.vertices, p)
	b.deps = append(b.deps, deps)
	return v, nil
}

// edgeVertex intersects boundary edge e with the bisector of sites i and j.
func (b *builder) edgeVertex(e, i, j int) (r2.Point, []dependency, bool) {
	q0 := b.boundary[e]
	q1 := b.boundary[(e+1)%len(b.boundary)]
	d := q1.Sub(q0)
	pi, pj := b.sites[i], b.sites[j]
	n := pj.Sub(pi)
	nd := n.Dot(d)
	if math.Abs(nd) <= degenerateTol*n.Norm()*d.Norm() {
		return r2.Point{}, nil, false
	}

	t := (pj.Dot(pj) - pi.Dot(pi) - 2*n.Dot(q0)) / (2 * nd)
	x := q0.Add(d.Mul(t))
	return x, []dependency{
		{site: i, jac: outer(d, x.Sub(pi).Mul(1/nd))},
		{site: j, jac: outer(d, pj.Sub(x).Mul(1/nd))},
	}, true
}

// circumVertex returns the point equidistant from sites i, j and k.
func (b *builder) circumVertex(i, j, k int) (r2.Point, []dependency, bool) {
	pa, pb, pc := b.sites[i], b.sites[j], b.sites[k]
	u, w := pb.Sub(pa), pc.Sub(pa)
	det := 4 * u.Cross(w)
	if math.Abs(det) <= degenerateTol*4*u.Norm()*w.Norm() {
		return r2.Point{}, nil, false
	}

	// M = 2[uᵀ; wᵀ], M x = r.
	inv := func(r r2.Point) r2.Point {
		return r2.Point{
			X: (2*w.Y*r.X - 2*u.Y*r.Y) / det,
			Y: (-2*w.X*r.X + 2*u.X*r.Y) / det,
		}
	}
	x := inv(r2.Point{X: pb.Dot(pb) - pa.Dot(pa), Y: pc.Dot(pc) - pa.Dot(pa)})
	return x, []dependency{
		{site: i, jac: outer(inv(r2.Point{X: 1, Y: 1}), x.Sub(pa).Mul(2))},
		{site: j, jac: outer(inv(r2.Point{X: 1}), pb.Sub(x).Mul(2))},
		{site: k, jac: outer(inv(r2.Point{Y: 1}), pc.Sub(x).Mul(2))},
	}, true
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package render

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/golang/geo/r2"
)

const (
	cellStyle     = "fill:%s;stroke:rgb(170,170,170);stroke-width:1"
	boundaryStyle = "fill:none;stroke:rgb(0,0,0);stroke-width:3"
	wallStyle     = "stroke:rgb(0,0,0);stroke-width:2"
	siteStyle     = "fill:rgb(255,0,0)"
)

// WriteSVG draws f on a size × size canvas: cells filled by region, then
// walls, the boundary and the sites.
func WriteSVG(w io.Writer, f Frame, size int) error {
	ew := &errWriter{w: w}
	vp := newViewport(f.Boundary, size)

	canvas := svg.New(ew)
	canvas.Start(size, size)
	canvas.Rect(0, 0, size, size, "fill:rgb(255,255,255)")

	for i, cell := range f.Cells {
		if len(cell) < 3 {
			continue
		}
		xs, ys := screenPolygon(vp, cell)
		canvas.Polygon(xs, ys, fmt.Sprintf(cellStyle, RegionColor(region(f, i)).Hex()))
	}
	for _, wall := range f.Walls {
		x0, y0 := screenPoint(vp, wall[0])
		x1, y1 := screenPoint(vp, wall[1])
		canvas.Line(x0, y0, x1, y1, wallStyle)
	}
	xs, ys := screenPolygon(vp, f.Boundary)
	canvas.Polygon(xs, ys, boundaryStyle)
	for _, s := range f.Sites {
		x, y := screenPoint(vp, s)
		canvas.Circle(x, y, 3, siteStyle)
	}
	canvas.End()
	return ew.err
}

// SaveSVG writes f to path, replacing any existing file.
func SaveSVG(path string, f Frame, size int) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteSVG(file, f, size)
}

func region(f Frame, i int) int {
	if i >= len(f.Regions) {
		return -1
	}
	return f.Regions[i]
}

func screenPoint(vp viewport, p r2.Point) (int, int) {
	x, y := vp.project(p)
	return int(math.Round(x)), int(math.Round(y))
}

func screenPolygon(vp viewport, pts []r2.Point) ([]int, []int) {
	xs := make([]int, len(pts))
	ys := make([]int, len(pts))
	for k, p := range pts {
		xs[k], ys[k] = screenPoint(vp, p)
	}
	return xs, ys
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package render

import (
	"image"
	"image/draw"
	"image/gif"
	"os"

	"github.com/2dChan/floorplan"
	"github.com/fogleman/gg"
)

const (
	DefaultGIFPath  = "floorplan.gif"
	DefaultGIFSize  = 500
	DefaultGIFEvery = 5
)

// GIFRecorder collects one frame every Every iterations and the last one,
// and writes them as an animated GIF when the run ends. The output file is
// created with the first frame, so a bad path fails the run at once.
type GIFRecorder struct {
	Path  string
	Size  int
	Every int
	// Delay between frames in hundredths of a second.
	Delay int

	anim gif.GIF
	file *os.File
}

// NewGIFRecorder returns a recorder writing to path with the default size
// and frame interval.
func NewGIFRecorder(path string) *GIFRecorder {
	if path == "" {
		path = DefaultGIFPath
	}
	return &GIFRecorder{Path: path, Size: DefaultGIFSize, Every: DefaultGIFEvery, Delay: 2}
}

func (g *GIFRecorder) Observe(it *floorplan.Iteration) error {
	if !it.Last() && (g.Every <= 0 || it.Index%g.Every != 0) {
		return nil
	}
	if err := g.create(); err != nil {
		return err
	}
	g.Add(FrameFromIteration(it))
	if it.Last() {
		return g.Save()
	}
	return nil
}

// Add appends f as a frame.
func (g *GIFRecorder) Add(f Frame) {
	img := rasterize(f, g.Size)
	pal := image.NewPaletted(img.Bounds(), Palette())
	draw.Draw(pal, pal.Bounds(), img, image.Point{}, draw.Src)
	g.anim.Image = append(g.anim.Image, pal)
	g.anim.Delay = append(g.anim.Delay, g.Delay)
}

// Frames returns the number of recorded frames.
func (g *GIFRecorder) Frames() int {
	return len(g.anim.Image)
}

// Save writes the recorded frames to g.Path, replacing any existing file.
func (g *GIFRecorder) Save() (err error) {
	if err := g.create(); err != nil {
		return err
	}
	file := g.file
	g.file = nil
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return gif.EncodeAll(file, &g.anim)
}

// Close releases the output file of a run that ended before its last
// iteration. It is a no-op after Save.
func (g *GIFRecorder) Close() error {
	if g.file == nil {
		return nil
	}
	err := g.file.Close()
	g.file = nil
	return err
}

func (g *GIFRecorder) create() error {
	if g.file != nil {
		return nil
	}
	file, err := os.Create(g.Path)
	if err != nil {
		return err
	}
	g.file = file
	return nil
}

func rasterize(f Frame, size int) image.Image {
	vp := newViewport(f.Boundary, size)
	dc := gg.NewContext(size, size)
	dc.SetColor(background)
	dc.Clear()

	for i, cell := range f.Cells {
		if len(cell) < 3 {
			continue
		}
		for _, p := range cell {
			dc.LineTo(vp.project(p))
		}
		dc.ClosePath()
		dc.SetColor(RegionColor(region(f, i)))
		dc.Fill()
	}

	dc.SetColor(outline)
	dc.SetLineWidth(2)
	for _, w := range f.Walls {
		x0, y0 := vp.project(w[0])
		x1, y1 := vp.project(w[1])
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}
	for _, p := range f.Boundary {
		dc.LineTo(vp.project(p))
	}
	dc.ClosePath()
	dc.SetLineWidth(3)
	dc.Stroke()

	for _, s := range f.Sites {
		x, y := vp.project(s)
		dc.DrawCircle(x, y, 2)
		dc.Fill()
	}
	return dc.Image()
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/2dChan/floorplan"
	"github.com/2dChan/floorplan/render"
	"github.com/2dChan/floorplan/voronoi2"
	"github.com/spf13/cobra"
)

type tessellateOptions struct {
	svg   string
	size  int
	relax int
}

func newTessellateCmd() *cobra.Command {
	var opts tessellateOptions

	cmd := &cobra.Command{
		Use:   "tessellate PROBLEM",
		Short: "Draw the Voronoi diagram of the initial sites",
		Long: `Build the clipped Voronoi diagram of the sites in PROBLEM, optionally
move them with Lloyd relaxation, and write it as SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tessellate(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.svg, "svg", "voronoi.svg", "output SVG file")
	cmd.Flags().IntVar(&opts.size, "size", render.DefaultGIFSize, "image size in pixels")
	cmd.Flags().IntVar(&opts.relax, "relax", 0, "Lloyd relaxation steps")

	return cmd
}

func tessellate(w io.Writer, path string, opts tessellateOptions) error {
	flat, err := loadProblem(path)
	if err != nil {
		return err
	}
	p, err := floorplan.FromFlat(flat)
	if err != nil {
		return err
	}
	if len(p.Regions) != len(p.Sites) {
		return fmt.Errorf("len(regions) = %d, want %d", len(p.Regions), len(p.Sites))
	}

	d, err := voronoi2.NewDiagram(p.Boundary, p.Sites, active(p.Regions))
	if err != nil {
		return err
	}
	if opts.relax > 0 {
		if err := d.Relax(opts.relax); err != nil {
			return err
		}
	}

	if err := render.SaveSVG(opts.svg, render.FrameFromDiagram(d, p.Regions), opts.size); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}

	printSuccess(w, "Tessellated %d sites", len(p.Sites))
	printKeyValue(w, "cells", strconv.Itoa(d.NumCells()))
	printKeyValue(w, "vertices", strconv.Itoa(len(d.Vertices)))
	if opts.relax > 0 {
		printKeyValue(w, "relaxed", strconv.Itoa(opts.relax)+" steps")
	}
	printFile(w, opts.svg)
	return nil
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/2dChan/floorplan"
	"github.com/2dChan/floorplan/cache"
	"github.com/2dChan/floorplan/observer"
	"github.com/2dChan/floorplan/render"
	"github.com/spf13/cobra"
)

type runOptions struct {
	preset   string
	config   string
	gif      string
	gifEvery int
	svg      string
	size     int
	convLog  string
	out      string
	cacheDir string
	every    int
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run PROBLEM",
		Short: "Optimize a floor plan",
		Long: `Optimize the problem in PROBLEM (.toml or .json) and print a summary.

The result is written as JSON with --out. --svg draws the final layout,
--gif records the run and --log appends a CSV row per iteration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "planner", "configuration preset: planner or block")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML file overlaid on the preset")
	cmd.Flags().StringVar(&opts.gif, "gif", "", "record the run as an animated GIF")
	cmd.Flags().Lookup("gif").NoOptDefVal = render.DefaultGIFPath
	cmd.Flags().IntVar(&opts.gifEvery, "gif-every", render.DefaultGIFEvery, "iterations between GIF frames")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write the final layout as SVG")
	cmd.Flags().IntVar(&opts.size, "size", render.DefaultGIFSize, "image size in pixels")
	cmd.Flags().StringVar(&opts.convLog, "log", "", "append per-iteration losses as CSV")
	cmd.Flags().Lookup("log").NoOptDefVal = observer.DefaultConvergencePath
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the result as JSON")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "reuse results cached in this directory")
	cmd.Flags().IntVar(&opts.every, "every", 50, "iterations between debug log lines")

	return cmd
}

func runOptimize(ctx context.Context, w io.Writer, path string, opts runOptions) (err error) {
	logger := loggerFromContext(ctx)

	flat, err := loadProblem(path)
	if err != nil {
		return err
	}
	p, err := floorplan.FromFlat(flat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.preset, opts.config)
	if err != nil {
		return err
	}

	// Recordings need a live run, so the cache is skipped for them.
	c := cache.NewNullCache()
	if opts.cacheDir != "" && opts.gif == "" && opts.convLog == "" {
		if c, err = cache.NewFileCache(opts.cacheDir); err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
	}
	defer c.Close()
	key, err := cache.Key("optimize", flat, cfg)
	if err != nil {
		return err
	}

	res, cached, err := cachedResult(ctx, c, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if !cached {
		obs := []floorplan.Observer{observer.Logger{Log: logger, Every: opts.every}}
		if opts.convLog != "" {
			cl, openErr := observer.OpenConvergenceLog(opts.convLog)
			if openErr != nil {
				return openErr
			}
			defer func() {
				if cerr := cl.Close(); err == nil {
					err = cerr
				}
			}()
			obs = append(obs, cl)
		}
		if opts.gif != "" {
			rec := render.NewGIFRecorder(opts.gif)
			rec.Size = opts.size
			rec.Every = opts.gifEvery
			defer rec.Close()
			obs = append(obs, rec)
		}

		prog := newProgress(logger)
		res, err = floorplan.Optimize(p, cfg, obs...)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Optimized %d sites in %d iterations", len(p.Sites), res.Iterations))

		if data, err := json.Marshal(res.Flat()); err == nil {
			if err := c.Set(ctx, key, data, 0); err != nil {
				logger.Warn("cache write failed", "err", err)
			}
		}
	}

	printSummary(w, p, res, cached)
	if opts.gif != "" {
		printFile(w, opts.gif)
	}
	if opts.convLog != "" {
		printFile(w, opts.convLog)
	}
	if opts.svg != "" {
		if err := render.SaveSVG(opts.svg, render.FrameFromResult(p, res), opts.size); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		printFile(w, opts.svg)
	}
	if opts.out != "" {
		if err := writeResult(opts.out, res); err != nil {
			return err
		}
		printFile(w, opts.out)
	}
	return nil
}

func cachedResult(ctx context.Context, c cache.Cache, key string) (*floorplan.Result, bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var flat floorplan.FlatResult
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, false, err
	}
	return flat.Result(), true, nil
}

func writeResult(path string, res *floorplan.Result) error {
	data, err := json.MarshalIndent(res.Flat(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printSummary(w io.Writer, p floorplan.Problem, res *floorplan.Result, cached bool) {
	printSuccess(w, "Floor plan ready")
	printKeyValue(w, "iterations", styleNumber.Render(strconv.Itoa(res.Iterations)))
	printKeyValue(w, "loss", styleNumber.Render(fmt.Sprintf("%.6g", res.Losses.Total())))
	printKeyValue(w, "walls", fmt.Sprintf("%d (length %.4g)", len(res.Walls), res.WallLength()))
	printStatus(w, cached)

	rows := make([][]string, len(res.RegionAreas))
	for r, a := range res.RegionAreas {
		target := p.TargetAreas[r]
		rows[r] = []string{
			strconv.Itoa(r),
			fmt.Sprintf("%.4f", target),
			fmt.Sprintf("%.4f", a),
			fmt.Sprintf("%+.2f%%", 100*(a-target)/target),
		}
	}
	fmt.Fprintln(w, renderTable([]string{"region", "target", "area", "error"}, rows))
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/2dChan/floorplan"
	"github.com/2dChan/floorplan/internal/server"
	"github.com/spf13/cobra"
)

type scheduleOptions struct {
	sites    int
	anchored bool
	preset   string
	config   string
	samples  int
}

func newScheduleCmd() *cobra.Command {
	var opts scheduleOptions

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the iteration budget and learning-rate curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.sites < 1 {
				return fmt.Errorf("--sites must be positive, got %d", opts.sites)
			}
			if opts.samples < 2 {
				return fmt.Errorf("--samples must be at least 2, got %d", opts.samples)
			}
			cfg, err := loadConfig(opts.preset, opts.config)
			if err != nil {
				return err
			}
			plan := floorplan.NewPlan(cfg, opts.sites, opts.anchored)
			printSchedule(cmd.OutOrStdout(), server.Schedule(plan, opts.samples))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.sites, "sites", "n", 10, "number of sites")
	cmd.Flags().BoolVar(&opts.anchored, "anchored", false, "assume non-zero anchor weights")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "planner", "configuration preset: planner or block")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML file overlaid on the preset")
	cmd.Flags().IntVar(&opts.samples, "samples", 11, "number of sampled iterations")

	return cmd
}

func printSchedule(w io.Writer, s server.ScheduleResponse) {
	printTitle(w, "Schedule")
	printKeyValue(w, "iterations", styleNumber.Render(strconv.Itoa(s.Iterations)))
	printKeyValue(w, "warmup", strconv.Itoa(s.Warmup))
	printKeyValue(w, "decay start", strconv.Itoa(s.DecayStart))

	rows := make([][]string, len(s.Samples))
	for i, p := range s.Samples {
		rows[i] = []string{
			strconv.Itoa(p.Iteration),
			fmt.Sprintf("%.5f", p.LearningRate),
			fmt.Sprintf("%.2f", p.TopologyWeight),
		}
	}
	fmt.Fprintln(w, renderTable([]string{"iteration", "lr", "topology"}, rows))
}

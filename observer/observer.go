// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package observer provides floorplan.Observer implementations that record
// the progress of a run.
package observer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/2dChan/floorplan"
	"github.com/charmbracelet/log"
)

// DefaultConvergencePath is the file ConvergenceLog appends to when no path
// is given.
const DefaultConvergencePath = "conv.csv"

// ConvergenceLog appends one CSV row per iteration: the iteration index,
// every weighted loss term in floorplan.Terms order, and the learning rate.
// The file is never truncated, so repeated runs accumulate.
type ConvergenceLog struct {
	f io.WriteCloser
	w *csv.Writer
}

// OpenConvergenceLog opens path for appending, creating it if needed.
func OpenConvergenceLog(path string) (*ConvergenceLog, error) {
	if path == "" {
		path = DefaultConvergencePath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open convergence log: %w", err)
	}
	return newConvergenceLog(f), nil
}

func newConvergenceLog(f io.WriteCloser) *ConvergenceLog {
	return &ConvergenceLog{f: f, w: csv.NewWriter(f)}
}

func (c *ConvergenceLog) Observe(it *floorplan.Iteration) error {
	row := make([]string, 0, len(it.Losses)+2)
	row = append(row, strconv.Itoa(it.Index))
	for _, v := range it.Losses {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	row = append(row, strconv.FormatFloat(it.LearningRate, 'g', -1, 64))
	if err := c.w.Write(row); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// Close flushes buffered rows and closes the file.
func (c *ConvergenceLog) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		_ = c.f.Close()
		return err
	}
	return c.f.Close()
}

// Logger writes iterations to a structured logger: a debug line every Every
// iterations and an info line for the last one.
type Logger struct {
	Log   *log.Logger
	Every int
}

func (l Logger) Observe(it *floorplan.Iteration) error {
	if it.Last() {
		l.Log.Info("optimization finished",
			"iterations", it.Total,
			"loss", it.Losses.Total(),
			"walls", len(it.Walls),
		)
		return nil
	}
	if l.Every <= 0 || it.Index%l.Every != 0 {
		return nil
	}
	kv := []any{
		"iter", it.Index,
		"lr", it.LearningRate,
		"loss", it.Losses.Total(),
	}
	if it.TopologyWeight > 0 {
		kv = append(kv, "topology_weight", it.TopologyWeight)
	}
	l.Log.Debug("step", kv...)
	return nil
}

var (
	_ floorplan.Observer = (*ConvergenceLog)(nil)
	_ floorplan.Observer = Logger{}
)

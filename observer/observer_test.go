// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package observer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/2dChan/floorplan"
	"github.com/charmbracelet/log"
	"github.com/golang/geo/r2"
)

func TestConvergenceLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.csv")

	res := mustRun(t, path)
	rows := mustReadCSV(t, path)
	if len(rows) != res.Iterations {
		t.Fatalf("len(rows) = %d, want %d", len(rows), res.Iterations)
	}
	wantCols := len(floorplan.Terms()) + 2
	for i, row := range rows {
		if len(row) != wantCols {
			t.Fatalf("len(rows[%d]) = %d, want %d", i, len(row), wantCols)
		}
		if row[0] != strconv.Itoa(i) {
			t.Errorf("rows[%d][0] = %q, want %d", i, row[0], i)
		}
		for j, cell := range row[1:] {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				t.Errorf("rows[%d][%d] = %q is not a float", i, j+1, cell)
			}
		}
	}
}

func TestConvergenceLog_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.csv")

	res := mustRun(t, path)
	mustRun(t, path)
	if got, want := len(mustReadCSV(t, path)), 2*res.Iterations; got != want {
		t.Errorf("len(rows) after two runs = %d, want %d", got, want)
	}
}

func TestOpenConvergenceLog_Error(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "conv.csv")
	if _, err := OpenConvergenceLog(path); err == nil {
		t.Errorf("OpenConvergenceLog(%q) error = nil, want non-nil", path)
	}
}

func TestConvergenceLog_WriteError(t *testing.T) {
	w := &failingWriter{after: 1}
	cl := newConvergenceLog(w)

	_, err := floorplan.Optimize(twoRooms(), floorplan.PlannerConfig(), cl)
	if !floorplan.Is(err, floorplan.CodeObserver) {
		t.Fatalf("Optimize(...) error = %v, want %s", err, floorplan.CodeObserver)
	}
	if !strings.Contains(err.Error(), "iteration 1") {
		t.Errorf("Optimize(...) error = %v, want failure at iteration 1", err)
	}
	if w.writes != 2 {
		t.Errorf("writes = %d, want one per row up to the failure", w.writes)
	}
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     log.Level
		every     int
		wantSteps int
	}{
		{"info hides steps", log.InfoLevel, 10, 0},
		{"debug every 100", log.DebugLevel, 100, 3},
		{"debug disabled", log.DebugLevel, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewWithOptions(&buf, log.Options{Level: tt.level})

			res, err := floorplan.Optimize(twoRooms(), floorplan.PlannerConfig(), Logger{Log: logger, Every: tt.every})
			if err != nil {
				t.Fatalf("Optimize(...) error = %v, want nil", err)
			}
			if res.Iterations != 250 {
				t.Fatalf("res.Iterations = %d, want 250", res.Iterations)
			}

			out := buf.String()
			if got := strings.Count(out, "step"); got != tt.wantSteps {
				t.Errorf("step lines = %d, want %d\n%s", got, tt.wantSteps, out)
			}
			if got := strings.Count(out, "optimization finished"); got != 1 {
				t.Errorf("finish lines = %d, want 1\n%s", got, out)
			}
		})
	}
}

// Helpers

func twoRooms() floorplan.Problem {
	return floorplan.Problem{
		Boundary:    []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Sites:       []r2.Point{{X: 0.3, Y: 0.5}, {X: 0.6, Y: 0.45}},
		Regions:     []int{0, 1},
		TargetAreas: []float64{0.5, 0.5},
	}
}

func mustRun(t *testing.T, path string) *floorplan.Result {
	t.Helper()
	cl, err := OpenConvergenceLog(path)
	if err != nil {
		t.Fatalf("OpenConvergenceLog(%q) error = %v, want nil", path, err)
	}
	res, err := floorplan.Optimize(twoRooms(), floorplan.PlannerConfig(), cl)
	if err != nil {
		t.Fatalf("Optimize(...) error = %v, want nil", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("cl.Close() error = %v, want nil", err)
	}
	return res
}

func mustReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open(%q) error = %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv ReadAll() error = %v", err)
	}
	return rows
}

// failingWriter accepts after writes and fails every later one.
type failingWriter struct {
	after  int
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	if w.writes > w.after {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func (w *failingWriter) Close() error {
	return nil
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package utils

import (
	"testing"

	"github.com/2dChan/floorplan/polygon"
	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
)

var lShape = []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}

func TestGenerateRandomPoints_Length(t *testing.T) {
	tests := []struct {
		name string
		cnt  int
		seed int64
	}{
		{"zero points", 0, 42},
		{"one point", 1, 42},
		{"ten points", 10, 0},
		{"hundred points", 100, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := GenerateRandomPoints(lShape, tt.cnt, tt.seed)
			if len(points) != tt.cnt {
				t.Errorf("GenerateRandomPoints(lShape, %v, %v) len = %v, want %v", tt.cnt, tt.seed,
					len(points), tt.cnt)
			}
		})
	}
}

func TestGenerateRandomPoints_InsideBoundary(t *testing.T) {
	const (
		cnt  = 200
		seed = 0
	)
	points := GenerateRandomPoints(lShape, cnt, seed)
	for i, p := range points {
		if !polygon.Contains(lShape, p) {
			t.Errorf("GenerateRandomPoints(lShape, %v, %v)[%d] = %v, want inside boundary", cnt, seed,
				i, p)
		}
	}
}

func TestGenerateRandomPoints_Determinism(t *testing.T) {
	const (
		cnt  = 10
		seed = 0
	)
	a := GenerateRandomPoints(lShape, cnt, seed)
	b := GenerateRandomPoints(lShape, cnt, seed)
	if diff := cmp.Diff(b, a); diff != "" {
		t.Errorf("GenerateRandomPoints(lShape, %v, %v) mismatch (-want +got):\n%v", cnt, seed, diff)
	}
}

func TestGenerateRandomPoints_DegenerateBoundary(t *testing.T) {
	segment := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	if got := GenerateRandomPoints(segment, 5, 0); len(got) != 0 {
		t.Errorf("GenerateRandomPoints(segment, 5, 0) len = %v, want 0", len(got))
	}
}

func TestFlatten(t *testing.T) {
	points := []r2.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	flat := Flatten(points)
	if diff := cmp.Diff([]float64{1, 2, 3, 4}, flat); diff != "" {
		t.Errorf("Flatten(...) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(points, Unflatten(flat)); diff != "" {
		t.Errorf("Unflatten(Flatten(...)) mismatch (-want +got):\n%s", diff)
	}
	if got := Unflatten([]float64{1, 2, 3}); len(got) != 1 {
		t.Errorf("Unflatten(odd) len = %v, want 1", len(got))
	}
}

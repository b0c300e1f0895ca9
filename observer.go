// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"github.com/2dChan/floorplan/voronoi2"
	"github.com/golang/geo/r2"
)

// Iteration is the state reported to observers after each optimizer step.
// Its slices are owned by the run and must not be retained or modified.
type Iteration struct {
	Index          int
	Total          int
	LearningRate   float64
	TopologyWeight float64
	Losses         Losses

	// Diagram is the tessellation the step was computed from; Sites are
	// the positions after the step.
	Diagram     *voronoi2.Diagram
	Walls       []Wall
	Sites       []r2.Point
	Regions     []int
	RegionAreas []float64
}

// Last reports whether this is the final iteration of the run.
func (it *Iteration) Last() bool {
	return it.Index == it.Total-1
}

// Observer receives every iteration of a run. A non-nil error aborts the
// run with CodeObserver.
type Observer interface {
	Observe(it *Iteration) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(it *Iteration) error

func (f ObserverFunc) Observe(it *Iteration) error {
	return f(it)
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"math"

	"github.com/golang/geo/r2"
)

// adamW is Adam with decoupled weight decay over a set of points.
type adamW struct {
	beta1, beta2 float64
	eps          float64
	weightDecay  float64

	m, v []r2.Point
	step int
}

func newAdamW(cfg Config, n int) *adamW {
	return &adamW{
		beta1:       cfg.Beta1,
		beta2:       cfg.Beta2,
		eps:         cfg.Epsilon,
		weightDecay: cfg.WeightDecay,
		m:           make([]r2.Point, n),
		v:           make([]r2.Point, n),
	}
}

// Step updates params in place with learning rate lr.
func (o *adamW) Step(params, grad []r2.Point, lr float64) {
	o.step++
	scaleM := 1 / (1 - math.Pow(o.beta1, float64(o.step)))
	scaleV := 1 / (1 - math.Pow(o.beta2, float64(o.step)))
	decay := 1 - lr*o.weightDecay

	update := func(theta, g float64, m, v *float64) float64 {
		*m = o.beta1**m + (1-o.beta1)*g
		*v = o.beta2**v + (1-o.beta2)*g*g
		mHat := *m * scaleM
		vHat := *v * scaleV
		return theta*decay - lr*mHat/(math.Sqrt(vHat)+o.eps)
	}
	for i, g := range grad {
		params[i].X = update(params[i].X, g.X, &o.m[i].X, &o.v[i].X)
		params[i].Y = update(params[i].Y, g.Y, &o.m[i].Y, &o.v[i].Y)
	}
}

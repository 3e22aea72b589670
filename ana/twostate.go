// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import "math"

// RelaxingPair implements the index-1 two-state DAE
//
//	y1' = y2      y1 + y2 = 1      y1(0) = 0
//
// The consistent algebraic value at t=0 is y2 = 1, and the solution is
// y1 = 1 - exp(-t), y2 = exp(-t)
type RelaxingPair struct{}

// Calc computes (y1, y2) at t
func (o RelaxingPair) Calc(t float64) (y1, y2 float64) {
	y2 = math.Exp(-t)
	y1 = 1.0 - y2
	return
}

// UnitRamp implements the trivial forced problem y' = 1, y(0) = 0 with solution y = t;
// useful for exercising forced stop-times
type UnitRamp struct{}

// Calc computes y at t
func (o UnitRamp) Calc(t float64) float64 { return t }

// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import (
	"math"

	"github.com/cpmech/gosl/fun"
)

// Harmonic implements the undamped oscillator
//
//	y1' = y2      y2' = -ω² y1      y1(0) = A      y2(0) = 0
//
// with solution y1 = A cos(ω t) and y2 = -A ω sin(ω t). The first zero of y1 sits at
// t = π/(2ω)
type Harmonic struct {
	A float64 // amplitude
	W float64 // angular frequency ω
}

// Init initialises this structure with parameters
//
//	"A" -- amplitude
//	"w" -- angular frequency
func (o *Harmonic) Init(prms fun.Params) {
	o.A, o.W = 1, 1
	for _, p := range prms {
		switch p.N {
		case "A":
			o.A = p.V
		case "w":
			o.W = p.V
		}
	}
}

// Calc computes (y1, y2) at t
func (o Harmonic) Calc(t float64) (y1, y2 float64) {
	y1 = o.A * math.Cos(o.W*t)
	y2 = -o.A * o.W * math.Sin(o.W*t)
	return
}

// FirstZero returns the time of the first zero crossing of y1
func (o Harmonic) FirstZero() float64 {
	return math.Pi / (2.0 * o.W)
}

// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical solutions of benchmark DAE problems
package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// LinearDecay implements the scalar decay problem
//
//	y' = -λ y      y(0) = y0      ⇒      y(t) = y0 exp(-λ t)
type LinearDecay struct {
	Y0  float64 // initial value
	Lam float64 // decay rate λ
}

// Init initialises this structure with parameters
//
//	"y0"  -- initial value
//	"lam" -- decay rate
func (o *LinearDecay) Init(prms fun.Params) {
	o.Y0, o.Lam = 1, 1
	for _, p := range prms {
		switch p.N {
		case "y0":
			o.Y0 = p.V
		case "lam":
			o.Lam = p.V
		}
	}
}

// Calc computes y(t)
func (o LinearDecay) Calc(t float64) float64 {
	return o.Y0 * math.Exp(-o.Lam*t)
}

// CalcD computes y'(t)
func (o LinearDecay) CalcD(t float64) float64 {
	return -o.Lam * o.Calc(t)
}

// CalcDlam computes the sensitivity ∂y/∂λ
func (o LinearDecay) CalcDlam(t float64) float64 {
	return -t * o.Calc(t)
}

// CheckY compares a computed trajectory against the analytical solution
func (o LinearDecay) CheckY(tst *testing.T, T []float64, Y [][]float64, tol float64) {
	for i, t := range T {
		chk.Float64(tst, io.Sf("y(%g)", t), tol, Y[i][0], o.Calc(t))
	}
}

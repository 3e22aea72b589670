// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_icinit01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("icinit01. ODE shortcut equals the residual at (t, y, 0)")

	// oscillator residual in the f(t,y) - y' form
	ex := &System{
		N: 2,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = y[1] - yp[0]
			res[1] = -y[0] - yp[1]
			return nil
		},
	}
	integ := NewBdf(ex, denseLinSol(), bdfSolverData(), 0)
	defer integ.Free()
	integ.Init(0, []float64{1, 0.5}, []float64{99, 99}, nil)

	// the shortcut must overwrite the bogus derivative with f(t, y)
	ic := newConsistentInit(ex, integ, true)
	err := ic.Correct(IcYaYdp, 0, nil)
	if err != nil {
		tst.Errorf("Correct failed:\n%v", err)
		return
	}
	chk.Array(tst, "yp", 1e-17, integ.Deriv(), []float64{0.5, -1})
}

func Test_icinit02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("icinit02. implicit solve for algebraic variables and derivatives")

	ex := &System{
		N: 2,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = y[1] - yp[0]
			res[1] = y[0] + y[1] - 1.0
			return nil
		},
		Mask: []float64{1, 0},
	}
	integ := NewBdf(ex, denseLinSol(), bdfSolverData(), 0)
	defer integ.Free()

	// y1=0.3 is held; y2 and y1' must be solved
	integ.Init(0, []float64{0.3, 0}, []float64{0, 0}, nil)
	err := integ.CalcIC(IcYaYdp, nextTime(0))
	if err != nil {
		tst.Errorf("CalcIC failed:\n%v", err)
		return
	}
	chk.Float64(tst, "y1 held", 1e-15, integ.State()[0], 0.3)
	chk.Float64(tst, "y2", 1e-8, integ.State()[1], 0.7)
	chk.Float64(tst, "y1'", 1e-8, integ.Deriv()[0], 0.7)
}

func Test_icinit03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("icinit03. implicit solve for all variables with fixed derivatives")

	ex := &System{
		N: 2,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = y[1] - yp[0]
			res[1] = y[0] + y[1] - 1.0
			return nil
		},
		Mask: []float64{1, 0},
	}
	integ := NewBdf(ex, denseLinSol(), bdfSolverData(), 0)
	defer integ.Free()

	// with y' = (1, -1) fixed, the consistent state is y = (0, 1)
	integ.Init(0, []float64{5, 5}, []float64{1, -1}, nil)
	err := integ.CalcIC(IcYAll, nextTime(0))
	if err != nil {
		tst.Errorf("CalcIC failed:\n%v", err)
		return
	}
	chk.Float64(tst, "y1", 1e-8, integ.State()[0], 0)
	chk.Float64(tst, "y2", 1e-8, integ.State()[1], 1)
}

func Test_icinit04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("icinit04. perturbed future time makes progress near and away from zero")

	if !(nextTime(0) > 0) {
		tst.Errorf("nextTime(0) must be positive\n")
		return
	}
	if !(nextTime(1e6) > 1e6) {
		tst.Errorf("nextTime must make progress away from zero\n")
		return
	}
	if !(nextTime(-1e-30) > -1e-30) {
		tst.Errorf("nextTime must make progress for tiny negative times\n")
	}
}

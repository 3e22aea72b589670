// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_sim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. read .sim file and merge defaults")

	sim := ReadSim("data/decay.sim")
	chk.String(tst, sim.Key, "decay")
	chk.String(tst, sim.Data.Problem, "decay")

	// provided values
	chk.Float64(tst, "rtol", 1e-17, sim.Solver.Rtol, 1e-7)
	chk.Float64(tst, "atol", 1e-17, sim.Solver.Atol, 1e-9)
	chk.Float64(tst, "dtmax", 1e-17, sim.Solver.DtMax, 0.05)
	if !sim.Solver.CalcIc {
		tst.Errorf("calcic must be on\n")
		return
	}
	chk.String(tst, sim.LinSol.Name, "dense")

	// defaults survive the decode
	chk.IntAssert(sim.Solver.MaxOrd, 2)
	chk.IntAssert(sim.Solver.NmaxIt, 4)
	chk.String(tst, sim.LinSol.Jacobian, "num")

	// derived constants
	if !(sim.Solver.Itol > 0) {
		tst.Errorf("Itol must be derived by PostProcess\n")
		return
	}

	// guard
	chk.IntAssert(sim.Guard.Window, 20)
	if sim.Guard.Disabled() {
		tst.Errorf("guard must be armed\n")
		return
	}

	// schedules
	chk.Array(tst, "teval", 1e-17, sim.Control.TEval, []float64{0, 0.5, 1, 2})
	chk.Array(tst, "tinterp", 1e-17, sim.Control.TInterp, []float64{0.25, 0.75})
	if !sim.Control.SaveInterp {
		tst.Errorf("interp flag must be on\n")
	}
}

func Test_sim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. schedule validation")

	var ctl TimeControl

	// too short
	ctl.TEval = []float64{0}
	if ctl.Validate() == nil {
		tst.Errorf("single-entry teval must be invalid\n")
		return
	}

	// not strictly increasing
	ctl.TEval = []float64{0, 1, 1}
	if ctl.Validate() == nil {
		tst.Errorf("repeated teval entries must be invalid\n")
		return
	}

	// interp point outside the window
	ctl.TEval = []float64{0, 1}
	ctl.TInterp = []float64{1.5}
	if ctl.Validate() == nil {
		tst.Errorf("out-of-window tinterp must be invalid\n")
		return
	}

	// valid
	ctl.TInterp = []float64{0.25, 0.5}
	if err := ctl.Validate(); err != nil {
		tst.Errorf("valid schedules flagged: %v\n", err)
	}
}

func Test_sim03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim03. guard options and linspace helper")

	gd := GuardData{Window: 0, Threshold: 1}
	if !gd.Disabled() {
		tst.Errorf("window=0 must disable the guard\n")
		return
	}
	gd = GuardData{Window: 5, Threshold: 0}
	if !gd.Disabled() {
		tst.Errorf("threshold=0 must disable the guard\n")
		return
	}

	ctl := LinSpaceControl(0, 2, 5)
	chk.Array(tst, "teval", 1e-15, ctl.TEval, []float64{0, 0.5, 1, 1.5, 2})
	if err := ctl.Validate(); err != nil {
		tst.Errorf("linspace schedule must be valid: %v\n", err)
	}
}

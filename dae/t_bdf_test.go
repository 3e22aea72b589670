// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"testing"

	"github.com/cpmech/godae/ana"
	"github.com/cpmech/godae/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// decaySystem returns y' = -λ y in implicit form, with λ as the single input
func decaySystem() *System {
	return &System{
		N:  1,
		Np: 1,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = -inputs[0]*y[0] - yp[0]
			return nil
		},
	}
}

// bdfSolverData returns tight tunables for the numeric tests
func bdfSolverData() (sd *inp.SolverData) {
	sd = new(inp.SolverData)
	sd.SetDefault()
	sd.Rtol = 1e-7
	sd.Atol = 1e-9
	sd.DtMax = 0.05
	sd.MaxSteps = 100000
	sd.PostProcess()
	return
}

func denseLinSol() (lsd *inp.LinSolData) {
	lsd = new(inp.LinSolData)
	lsd.SetDefault()
	lsd.Name = "dense"
	return
}

func Test_bdf01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf01. linear decay against the analytical solution")

	var sol ana.LinearDecay
	sol.Init(fun.Params{})

	drv := New(decaySystem(), denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
	defer drv.Free()

	ctl := inp.TimeControl{TEval: []float64{0, 0.5, 1.0, 2.0}}
	res, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	chk.IntAssert(res.Ntime, 4)
	chk.Array(tst, "t", 1e-14, res.T, ctl.TEval)
	sol.CheckY(tst, res.T, res.Y, 1e-4)
	io.Pforan("y(2) = %v\n", res.Y[3][0])

	// idempotent solve: a second run is bit-identical
	res2, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
	if err != nil {
		tst.Errorf("second Solve failed:\n%v", err)
		return
	}
	for i := 0; i < res.Ntime; i++ {
		chk.Float64(tst, "bitwise y", 0, res2.Y[i][0], res.Y[i][0])
	}
}

func Test_bdf02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf02. two-state DAE with inconsistent algebraic start")

	ex := &System{
		N: 2,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = y[1] - yp[0]
			res[1] = y[0] + y[1] - 1.0
			return nil
		},
		Mask: []float64{1, 0},
	}
	sd := bdfSolverData()
	sd.CalcIc = true
	sd.SuppressAlg = true
	drv := New(ex, denseLinSol(), sd, &inp.GuardData{}, 0, false)
	defer drv.Free()
	if drv.IsODE() {
		tst.Errorf("mask [1,0] must select DAE mode\n")
		return
	}

	// y2(0)=0 is inconsistent; the IC solve must correct it to 1
	ctl := inp.TimeControl{TEval: []float64{0, 1}}
	res, err := drv.Solve(ctl, []float64{0, 0}, []float64{0, 0}, nil)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	chk.Float64(tst, "y2(0) after IC", 1e-6, res.Y[0][1], 1.0)

	var rp ana.RelaxingPair
	y1, y2 := rp.Calc(1)
	chk.Float64(tst, "y1(1)", 1e-4, res.Y[1][0], y1)
	chk.Float64(tst, "y2(1)", 1e-4, res.Y[1][1], y2)
}

func Test_bdf03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf03. harmonic oscillator stops on the zero crossing")

	var osc ana.Harmonic
	osc.Init(fun.Params{})
	ex := &System{
		N: 2,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = y[1] - yp[0]
			res[1] = -osc.W*osc.W*y[0] - yp[1]
			return nil
		},
		Nev: 1,
		Evs: func(res []float64, t float64, y, yp, inputs []float64) {
			res[0] = y[0]
		},
	}
	drv := New(ex, denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
	defer drv.Free()

	ctl := inp.TimeControl{TEval: []float64{0, 10}}
	res, err := drv.Solve(ctl, []float64{1, 0}, []float64{0, -1}, nil)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, RootReturn)
	tlast := res.T[res.Ntime-1]
	io.Pforan("root at t = %v (analytic %v)\n", tlast, osc.FirstZero())
	chk.Float64(tst, "root time", 1e-3, tlast, osc.FirstZero())
	chk.Float64(tst, "y1(root)", 1e-3, res.Y[res.Ntime-1][0], 0)
}

func Test_bdf04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf04. forced stop-times on the unit ramp")

	ex := &System{
		N: 1,
		Fcn: func(res []float64, t float64, y, yp, inputs []float64) error {
			res[0] = 1.0 - yp[0]
			return nil
		},
	}
	drv := New(ex, denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
	defer drv.Free()

	ctl := inp.TimeControl{TEval: []float64{0, 1, 2}}
	res, err := drv.Solve(ctl, []float64{0}, []float64{1}, nil)
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	chk.IntAssert(res.Ntime, 3)
	chk.Array(tst, "t", 1e-14, res.T, []float64{0, 1, 2})
	var ramp ana.UnitRamp
	for i, t := range res.T {
		chk.Float64(tst, io.Sf("y(%g)", t), 1e-7, res.Y[i][0], ramp.Calc(t))
	}
}

func Test_bdf05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf05. outputs-only mode on the decay problem")

	var sol ana.LinearDecay
	sol.Init(fun.Params{})

	ex := decaySystem()
	ex.OutFns = []OutputExpr{&ScalarOutput{
		F:    func(t float64, y, inputs []float64) float64 { return y[0] * y[0] },
		DyFn: func(t float64, y, inputs []float64) []float64 { return []float64{2 * y[0]} },
		Cols: []int{0},
	}}
	drv := New(ex, denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
	defer drv.Free()

	ctl := inp.TimeControl{TEval: []float64{0, 0.5, 1.0, 2.0}}
	res, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	chk.IntAssert(res.Nret, 1)
	if res.S != nil {
		tst.Errorf("sensitivity tensor must be empty without parameters\n")
		return
	}
	for i, t := range res.T {
		yref := sol.Calc(t)
		chk.Float64(tst, io.Sf("f(%g)", t), 1e-3, res.Y[i][0], yref*yref)
	}

	// terminal raw state
	chk.IntAssert(res.Nterm, 1)
	chk.Float64(tst, "yterm", 1e-4, res.Yterm[0], sol.Calc(2))
}

func Test_bdf06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf06. adaptive snapshots interleave the scheduled points")

	drv := New(decaySystem(), denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
	defer drv.Free()

	ctl := inp.TimeControl{TEval: []float64{0, 0.5, 1.0, 2.0}, SaveAdaptive: true}
	res, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	if res.Ntime < 4 {
		tst.Errorf("adaptive run must hold at least the scheduled points; N=%d\n", res.Ntime)
		return
	}

	// non-decreasing times, and every scheduled point present
	for i := 1; i < res.Ntime; i++ {
		if res.T[i] < res.T[i-1] {
			tst.Errorf("times must be non-decreasing: t[%d]=%g < t[%d]=%g\n", i, res.T[i], i-1, res.T[i-1])
			return
		}
	}
	for _, te := range ctl.TEval {
		found := false
		for _, t := range res.T {
			if t == te {
				found = true
				break
			}
		}
		if !found {
			tst.Errorf("scheduled point t=%g is missing\n", te)
			return
		}
	}
	io.Pforan("number of snapshots = %v\n", res.Ntime)
}

func Test_bdf07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf07. forward sensitivity of decay with respect to λ")

	var sol ana.LinearDecay
	sol.Init(fun.Params{})

	drv := New(decaySystem(), denseLinSol(), bdfSolverData(), &inp.GuardData{}, 1, false)
	defer drv.Free()

	// extended vectors: base then the λ block; ∂y'/∂λ(0) = -y0
	ctl := inp.TimeControl{TEval: []float64{0, 0.5, 1.0}}
	res, err := drv.Solve(ctl, []float64{1, 0}, []float64{-1, -1}, []float64{1})
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	chk.Ints(tst, "sens axes", res.SensAxes[:], []int{1, 3, 1})
	for i, t := range res.T {
		chk.Float64(tst, io.Sf("dy/dlam(%g)", t), 5e-3, res.S[0][i][0], sol.CalcDlam(t))
	}
}

func Test_bdf08(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf08. Hermite rows follow the decay derivative")

	var sol ana.LinearDecay
	sol.Init(fun.Params{})

	drv := New(decaySystem(), denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, true)
	defer drv.Free()

	ctl := inp.TimeControl{TEval: []float64{0, 0.5, 1.0}}
	res, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	if !res.SaveHermite {
		tst.Errorf("solution must carry derivative rows\n")
		return
	}
	for i, t := range res.T {
		chk.Float64(tst, io.Sf("yp(%g)", t), 5e-3, res.Yp[i][0], sol.CalcD(t))
	}
}

func Test_bdf09(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf09. nested eval schedules agree on shared points")

	ctlA := inp.TimeControl{TEval: []float64{0, 1, 2}}
	ctlB := inp.TimeControl{TEval: []float64{0, 0.5, 1, 1.5, 2}}

	solve := func(ctl inp.TimeControl) *Solution {
		drv := New(decaySystem(), denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
		defer drv.Free()
		res, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
		if err != nil {
			tst.Fatalf("Solve failed:\n%v", err)
		}
		return res
	}
	resA := solve(ctlA)
	resB := solve(ctlB)

	chk.Float64(tst, "y(1)", 1e-3, resA.Y[1][0], resB.Y[2][0])
	chk.Float64(tst, "y(2)", 1e-3, resA.Y[2][0], resB.Y[4][0])
}

func Test_bdf10(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bdf10. interp schedule resolved by dense output")

	var sol ana.LinearDecay
	sol.Init(fun.Params{})

	drv := New(decaySystem(), denseLinSol(), bdfSolverData(), &inp.GuardData{}, 0, false)
	defer drv.Free()

	ctl := inp.TimeControl{
		TEval:      []float64{0, 1, 2},
		TInterp:    []float64{0.25, 0.75, 1.5},
		SaveInterp: true,
	}
	res, err := drv.Solve(ctl, []float64{1}, []float64{-1}, []float64{1})
	if err != nil {
		tst.Errorf("Solve failed:\n%v", err)
		return
	}
	chk.IntAssert(res.Flag, Success)
	chk.IntAssert(res.Ntime, 6)
	chk.Array(tst, "t", 1e-14, res.T, []float64{0, 0.25, 0.75, 1, 1.5, 2})
	for i, t := range res.T {
		chk.Float64(tst, io.Sf("y(%g)", t), 1e-3, res.Y[i][0], sol.Calc(t))
	}
}

// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/cpmech/godae/ana"
	"github.com/cpmech/godae/dae"
	"github.com/cpmech/godae/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// message
	io.PfWhite("\nGodae -- implicit DAE integration driver\n\n")
	io.Pf("Copyright 2017 The Godae Authors. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	// simulation filenamepath
	flag.Parse()
	var fnamepath string
	if len(flag.Args()) > 0 {
		fnamepath = flag.Arg(0)
	} else {
		chk.Panic("Please, provide a filename. Ex.: decay.sim")
	}
	if io.FnExt(fnamepath) == "" {
		fnamepath += ".sim"
	}

	// read input data
	sim := inp.ReadSim(fnamepath)

	// build problem
	ex, y0, yp0, inputs := buildProblem(sim.Data.Problem, sim.Data.Nparam)

	// allocate driver
	drv := dae.New(ex, &sim.LinSol, &sim.Solver, &sim.Guard, sim.Data.Nparam, sim.Data.Hermite)
	defer drv.Free()
	drv.Verbose = sim.LinSol.Verbose

	// solve
	sol, err := drv.Solve(sim.Control, y0, yp0, inputs)
	if err != nil {
		chk.Panic("solve failed:\n%v", err)
	}

	// print trajectory
	io.Pf("\n%13s", "t")
	for j := 0; j < sol.Nret; j++ {
		io.Pf("%23s", io.Sf("y%d", j))
	}
	io.Pf("\n")
	for i := 0; i < sol.Ntime; i++ {
		io.Pf("%13.6f", sol.T[i])
		for j := 0; j < sol.Nret; j++ {
			io.Pf("%23.15e", sol.Y[i][j])
		}
		io.Pf("\n")
	}

	// status
	if sol.Failed() {
		io.PfRed("\nstatus flag = %d\n", sol.Flag)
	} else {
		io.PfGreen("\nstatus flag = %d\n", sol.Flag)
	}
	if sim.Data.Stat {
		if b, ok := drv.Backend().(*dae.Bdf); ok {
			io.Pf("number of F evaluations  = %d\n", b.Stat.Nfeval)
			io.Pf("number of J evaluations  = %d\n", b.Stat.Njeval)
			io.Pf("number of decompositions = %d\n", b.Stat.Ndecomp)
			io.Pf("number of lin solutions  = %d\n", b.Stat.Nlinsol)
			io.Pf("number of accepted steps = %d\n", b.Stat.Naccepted)
			io.Pf("number of rejected steps = %d\n", b.Stat.Nrejected)
		}
	}
}

// buildProblem returns the expression set and extended initial vectors of a named
// benchmark problem
func buildProblem(name string, npar int) (ex dae.ExprSet, y0, yp0, inputs []float64) {
	switch name {

	case "decay":
		var sol ana.LinearDecay
		sol.Init(fun.Params{})
		ex = &dae.System{
			N:  1,
			Np: 1,
			Fcn: func(res []float64, t float64, y, yp, in []float64) error {
				res[0] = -in[0]*y[0] - yp[0]
				return nil
			},
		}
		y0 = extend([]float64{sol.Y0}, npar)
		yp0 = extend([]float64{-sol.Lam * sol.Y0}, npar)
		inputs = []float64{sol.Lam}

	case "ramp":
		ex = &dae.System{
			N: 1,
			Fcn: func(res []float64, t float64, y, yp, in []float64) error {
				res[0] = 1.0 - yp[0]
				return nil
			},
		}
		y0 = extend([]float64{0}, npar)
		yp0 = extend([]float64{1}, npar)

	case "oscillator":
		var sol ana.Harmonic
		sol.Init(fun.Params{})
		w := sol.W
		ex = &dae.System{
			N: 2,
			Fcn: func(res []float64, t float64, y, yp, in []float64) error {
				res[0] = y[1] - yp[0]
				res[1] = -w*w*y[0] - yp[1]
				return nil
			},
			Nev: 1,
			Evs: func(res []float64, t float64, y, yp, in []float64) {
				res[0] = y[0]
			},
		}
		y0 = extend([]float64{sol.A, 0}, npar)
		yp0 = extend([]float64{0, -w * w * sol.A}, npar)

	case "relaxpair":
		ex = &dae.System{
			N: 2,
			Fcn: func(res []float64, t float64, y, yp, in []float64) error {
				res[0] = y[1] - yp[0]
				res[1] = y[0] + y[1] - 1.0
				return nil
			},
			Mask: []float64{1, 0},
		}
		y0 = extend([]float64{0, 1}, npar)
		yp0 = extend([]float64{1, -1}, npar)

	default:
		chk.Panic("cannot find benchmark problem named %q", name)
	}
	return
}

// extend pads the base initial vector with zeroed sensitivity blocks
func extend(base []float64, npar int) (res []float64) {
	n := len(base)
	res = make([]float64, n*(1+npar))
	copy(res, base)
	return
}

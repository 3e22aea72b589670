// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dae implements a stepping driver for stiff, parameterised, index-1 DAE systems
// of the implicit form F(t, y, y'; p) = 0, with forward sensitivities, event detection
// and three snapshot schedules on top of an opaque one-step integrator back-end
package dae

import (
	"github.com/cpmech/godae/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// Driver coordinates one trajectory: it advances the back-end in single internal steps,
// interleaves the eval/interp/adaptive snapshot schedules, absorbs the discontinuities
// introduced by forced stop-times, and freezes the recorded snapshots into a Solution.
// One driver owns one integrator session; drivers on independent trajectories are
// trivially parallel
type Driver struct {

	// configuration
	ex      ExprSet         // expression set (shared, read-only during integration)
	sd      *inp.SolverData // integration tunables; may be re-applied between solves
	gd      *inp.GuardData  // no-progress guard configuration
	npar    int             // number of sensitivity parameters
	hermite bool            // record derivative snapshots
	Verbose bool            // print the running time column

	// components
	integ  Integrator       // back-end session (exclusively owned)
	icin   *ConsistentInit  // consistent-initialisation corrector
	stager *OutputStager    // snapshot transformer
	rec    *StepRecorder    // snapshot buffers
	guard  *NoProgressGuard // stall detector; rebuilt per solve

	// derived
	n     int  // number of states
	isODE bool // all variables differential

	// scratch for dense-output snapshots
	ywork  []float64
	ypwork []float64
	swork  [][]float64
	spwork [][]float64
}

// New allocates a driver with the built-in BDF back-end. Structural errors (unknown
// linear solver or Jacobian mode, empty system, Hermite with outputs-only results)
// panic here, before any stepping
func New(ex ExprSet, lsd *inp.LinSolData, sd *inp.SolverData, gd *inp.GuardData, npar int, hermite bool) (o *Driver) {
	lsd.Validate()
	integ := NewBdf(ex, lsd, sd, npar)
	return newDriver(ex, integ, sd, gd, npar, hermite)
}

// newDriver wires a driver around an existing integrator session
func newDriver(ex ExprSet, integ Integrator, sd *inp.SolverData, gd *inp.GuardData, npar int, hermite bool) (o *Driver) {
	if ex == nil || ex.Ndim() < 1 {
		chk.Panic("expression set is empty")
	}
	o = new(Driver)
	o.ex = ex
	o.sd = sd
	o.gd = gd
	o.npar = npar
	o.hermite = hermite
	o.integ = integ
	o.n = ex.Ndim()

	// ODE/DAE mode flag
	o.isODE = true
	for _, m := range ex.DiffMask() {
		if !(m > 0.999) {
			o.isODE = false
			break
		}
	}

	// components
	o.icin = newConsistentInit(ex, integ, o.isODE)
	o.stager = NewOutputStager(ex, npar)
	if o.stager.OutputsMode() && hermite {
		chk.Panic("Hermite snapshots require full-state results")
	}
	o.rec = NewStepRecorder(o.n, npar, o.stager.Nret(), o.stager.OutputsMode(), hermite)

	// scratch
	o.ywork = make([]float64, o.n)
	o.ypwork = make([]float64, o.n)
	if npar > 0 {
		o.swork = la.MatAlloc(npar, o.n)
		o.spwork = la.MatAlloc(npar, o.n)
	}
	return
}

// SetSolver re-applies integration tunables. Structural choices cannot change; allocate
// a fresh driver for those
func (o *Driver) SetSolver(sd *inp.SolverData) {
	o.sd = sd
	if s, ok := o.integ.(interface{ SetSolverData(*inp.SolverData) }); ok {
		s.SetSolverData(sd)
	}
}

// Free releases the back-end session. The driver must not be used afterwards
func (o *Driver) Free() {
	o.integ.Free()
}

// Solve integrates over ctl.TEval, recording snapshots per the three schedules, and
// returns the frozen result. Schedule and sizing problems return a synchronous error
// with no partial result; integration failures return the partially filled result with
// a negative Flag and a nil error
func (o *Driver) Solve(ctl inp.TimeControl, y0, yp0, inputs []float64) (sol *Solution, err error) {

	// preconditions
	err = ctl.Validate()
	if err != nil {
		return nil, err
	}
	next := o.n * (1 + o.npar)
	if len(y0) != next || len(yp0) != next {
		return nil, chk.Err("initial state must have length nstates*(1+nparam)=%d; len(y0)=%d len(yp0)=%d", next, len(y0), len(yp0))
	}
	if len(inputs) != o.ex.Ninput() {
		return nil, chk.Err("inputs must have length %d; got %d", o.ex.Ninput(), len(inputs))
	}

	// schedules
	tEval := ctl.TEval
	tInterp := ctl.TInterp
	if !ctl.SaveInterp {
		tInterp = nil
	}
	t0 := tEval[0]
	tf := tEval[len(tEval)-1]

	// INIT: prime the back-end and correct the initial condition
	err = o.integ.Init(t0, y0, yp0, inputs)
	if err != nil {
		return nil, chk.Err("cannot initialise integrator:\n%v", err)
	}
	if o.sd.CalcIc {
		err = o.icin.Correct(IcYaYdp, t0, inputs)
		if err != nil {
			return nil, err
		}
	}
	o.rec.Reserve(len(ctl.TEval) + len(ctl.TInterp))
	o.guard = NewNoProgressGuard(o.gd.Window, o.gd.Threshold)

	// initial snapshot; interp points coinciding with t0 are recorded from the working
	// vectors since no dense-output window exists yet
	iInterp := 0
	o.writeCurrent(t0, inputs)
	for iInterp < len(tInterp) && tInterp[iInterp] <= t0 {
		o.writeCurrent(tInterp[iInterp], inputs)
		iInterp++
	}

	// STEPPING
	iEval := 1
	o.integ.SetStopTime(tEval[iEval])
	flag := Success
	nsteps := 0
	tprev := t0

loop:
	for {
		tval, status := o.integ.StepOne(tf)

		// failure
		if status < 0 {
			flag = status
			break
		}

		// duplicate time: synthesise a stall failure
		if tval == tprev {
			flag = StallFail
			break
		}

		// work cap per stop interval
		nsteps++
		if o.sd.MaxSteps > 0 && nsteps > o.sd.MaxSteps {
			flag = ErrFail
			break
		}

		if o.Verbose {
			io.PfWhite("%30.15f\r", tval)
		}

		switch status {

		// plain success: catch up interp points, then maybe an adaptive snapshot
		case Success:
			err = o.catchUp(tval, tInterp, &iInterp, inputs, false)
			if err != nil {
				flag = BadInput
				break loop
			}
			if ctl.SaveAdaptive {
				o.writeCurrent(tval, inputs)
			}
			o.guard.Add(o.integ.LastStepSize())
			if o.guard.Violated() {
				flag = StallFail
				break loop
			}

		// stop-time hit: record, then either finish or absorb the discontinuity
		case StopReturn:
			err = o.catchUp(tval, tInterp, &iInterp, inputs, true)
			if err != nil {
				flag = BadInput
				break loop
			}
			o.writeCurrent(tval, inputs)
			if iEval == len(tEval)-1 {
				flag = Success
				break loop
			}
			iEval++
			o.integ.SetStopTime(tEval[iEval])
			err = o.integ.Reinit(tval)
			if err != nil {
				flag = MemFail
				break loop
			}
			err = o.icin.Correct(IcYaYdp, tval, inputs)
			if err != nil {
				flag = ConvFail
				break loop
			}
			nsteps = 0

		// root hit: record the event snapshot and finish
		case RootReturn:
			err = o.catchUp(tval, tInterp, &iInterp, inputs, true)
			if err != nil {
				flag = BadInput
				break loop
			}
			o.writeCurrent(tval, inputs)
			flag = RootReturn
			break loop
		}

		tprev = tval
	}

	// assemble; in outputs-only mode the terminal raw state is kept so callers can
	// restart from it
	var yterm []float64
	if o.stager.OutputsMode() {
		yterm = o.integ.State()
	}
	return assemble(o.rec, flag, o.npar, o.hermite, yterm), nil
}

// writeCurrent stages the integrator's working vectors and writes one snapshot at t
func (o *Driver) writeCurrent(t float64, inputs []float64) {
	yrow, srow, yprow, sprow := o.stager.Stage(t, o.integ.State(), o.integ.Deriv(), o.integ.Sens(), o.integ.SensDeriv(), inputs)
	o.rec.Write(t, yrow, srow, yprow, sprow)
}

// catchUp records every pending interp point up to tval via dense output. When the
// triggering event was a stop or root (restore=true) the working vectors are re-fetched
// at tval afterwards, so the stop/root snapshot sees the back-end state at tval again
func (o *Driver) catchUp(tval float64, tInterp []float64, iInterp *int, inputs []float64, restore bool) (err error) {
	wrote := false
	for *iInterp < len(tInterp) && tInterp[*iInterp] <= tval {
		ti := tInterp[*iInterp]
		err = o.integ.Interp(ti, 0, o.ywork)
		if err != nil {
			return
		}
		if o.hermite {
			err = o.integ.Interp(ti, 1, o.ypwork)
			if err != nil {
				return
			}
		}
		if o.npar > 0 {
			err = o.integ.InterpSens(ti, 0, o.swork)
			if err != nil {
				return
			}
			if o.hermite {
				err = o.integ.InterpSens(ti, 1, o.spwork)
				if err != nil {
					return
				}
			}
		}
		yrow, srow, yprow, sprow := o.stager.Stage(ti, o.ywork, o.ypwork, o.swork, o.spwork, inputs)
		o.rec.Write(ti, yrow, srow, yprow, sprow)
		(*iInterp)++
		wrote = true
	}
	if restore && wrote {
		err = o.integ.Interp(tval, 0, o.integ.State())
		if err != nil {
			return
		}
		err = o.integ.Interp(tval, 1, o.integ.Deriv())
		if err != nil {
			return
		}
		if o.npar > 0 {
			err = o.integ.InterpSens(tval, 0, o.integ.Sens())
			if err != nil {
				return
			}
			err = o.integ.InterpSens(tval, 1, o.integ.SensDeriv())
			if err != nil {
				return
			}
		}
	}
	return
}

// IsODE tells whether every variable is differential
func (o *Driver) IsODE() bool { return o.isODE }

// Backend returns the integrator session; e.g. for statistics inspection
func (o *Driver) Backend() Integrator { return o.integ }

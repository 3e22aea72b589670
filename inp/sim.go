// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	goio "io"
	"math"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/floats"
)

// Data holds global data for runs
type Data struct {
	Desc    string `json:"desc"`    // description of run
	Problem string `json:"problem"` // name of benchmark problem; e.g. "decay"
	Nparam  int    `json:"nparam"`  // number of sensitivity parameters
	Hermite bool   `json:"hermite"` // save derivative snapshots for Hermite reconstruction
	Stat    bool   `json:"stat"`    // print statistics at the end of the run
}

// LinSolData holds structural data fixed at integrator construction: the kind of linear
// solver and Jacobian, the preconditioner, and the worker count for vector kernels
type LinSolData struct {
	Name     string `json:"name"`     // "dense", "banded", "umfpack", "cg", "gmres", "tfqmr", "fgmres"
	Jacobian string `json:"jacobian"` // "num", "sparse", "dense", "none"
	Precond  string `json:"precond"`  // "" or "bbd"
	Mupper   int    `json:"mupper"`   // half-bandwidth (upper); banded and BBD only
	Mlower   int    `json:"mlower"`   // half-bandwidth (lower); banded and BBD only
	Nworkers int    `json:"nworkers"` // number of worker threads for vector operations
	Verbose  bool   `json:"verbose"`  // verbose?
}

// SolverData holds integration tunables. A new set may be applied between solves;
// structural choices (LinSolData) require a fresh driver
type SolverData struct {

	// stepping
	MaxOrd   int     `json:"maxord"`   // maximum BDF order
	DtIni    float64 `json:"dtini"`    // initial step size
	DtMin    float64 `json:"dtmin"`    // minimum step size
	DtMax    float64 `json:"dtmax"`    // maximum step size; 0 means unbounded
	MaxSteps int     `json:"maxsteps"` // maximum number of internal steps per stop interval

	// nonlinear solver
	NmaxIt  int     `json:"nmaxit"`  // maximum number of Newton iterations per step
	NlCoef  float64 `json:"nlcoef"`  // nonlinear convergence coefficient
	MaxEtf  int     `json:"maxetf"`  // cap on error-test failures per step attempt
	MaxNcf  int     `json:"maxncf"`  // cap on nonlinear convergence failures per step attempt
	CteTg   bool    `json:"ctetg"`   // constant tangent (modified Newton) during iterations
	ScaleLs bool    `json:"scalels"` // scale linear-system solutions

	// tolerances
	Atol        float64 `json:"atol"`        // absolute tolerance
	Rtol        float64 `json:"rtol"`        // relative tolerance
	SuppressAlg bool    `json:"suppressalg"` // exclude algebraic variables from the error test

	// initial condition
	CalcIc     bool `json:"calcic"`     // run consistent-initialisation at t0
	IcMaxIt    int  `json:"icmaxit"`    // cap on consistent-initialisation iterations
	LineSearch bool `json:"linesearch"` // use line search in consistent-initialisation

	// output
	ShowR bool `json:"showr"` // show residuals during iterations

	// constants
	Eps float64 `json:"eps"` // machine-precision constant used when deriving Itol

	// derived
	Itol float64 // iterations tolerance
}

// GuardData holds data for the no-progress guard: a sliding window over the last
// Window step sizes whose sum must not fall below Threshold
type GuardData struct {
	Window    int     `json:"window"`    // number of steps in the window; 0 disables
	Threshold float64 `json:"threshold"` // minimum sum of step sizes; 0 disables
}

// TimeControl holds the snapshot schedules for one solve
type TimeControl struct {
	TEval        []float64 `json:"teval"`    // forced stop-times; first = t0, last = tf
	TInterp      []float64 `json:"tinterp"`  // interior times resolved by dense output
	SaveAdaptive bool      `json:"adaptive"` // record one snapshot per successful internal step
	SaveInterp   bool      `json:"interp"`   // record snapshots at TInterp
}

// Simulation holds all data for a run
type Simulation struct {

	// input
	Data    Data        `json:"data"`    // global data
	LinSol  LinSolData  `json:"linsol"`  // linear solver data
	Solver  SolverData  `json:"solver"`  // integration tunables
	Guard   GuardData   `json:"guard"`   // no-progress guard data
	Control TimeControl `json:"control"` // snapshot schedules

	// derived
	Key string // simulation key; e.g. mysim01.sim => mysim01
}

// linear solver names understood by the option records. The integrator back-end may
// support a subset and must reject the rest at construction
var linsolnames = []string{"dense", "banded", "umfpack", "cg", "gmres", "tfqmr", "fgmres"}

// jacnames holds the Jacobian modes understood by the option records
var jacnames = []string{"num", "sparse", "dense", "none"}

// ReadSim reads all data for a run from a .sim JSON file
func ReadSim(simfilepath string) *Simulation {

	// new sim
	var o Simulation

	// read file
	b := io.ReadFile(simfilepath)

	// set default values
	o.Solver.SetDefault()
	o.LinSol.SetDefault()

	// decode
	err := json.Unmarshal(b, &o)
	if err != nil {
		chk.Panic("ReadSim: cannot unmarshal simulation file %q", simfilepath)
	}

	// filename key
	o.Key = io.FnKey(filepath.Base(simfilepath))

	// set solver constants and validate
	o.Solver.PostProcess()
	o.LinSol.Validate()
	err = o.Control.Validate()
	if err != nil {
		chk.Panic("ReadSim: invalid time control in %q:\n%v", simfilepath, err)
	}
	return &o
}

// GetInfo returns formatted information
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return
}

// extra settings //////////////////////////////////////////////////////////////////////////////////

// SetDefault sets default values
func (o *LinSolData) SetDefault() {
	o.Name = "umfpack"
	o.Jacobian = "num"
	o.Nworkers = 1
}

// Validate panics if the record holds names the option layer does not understand
func (o *LinSolData) Validate() {
	if utl.StrIndexSmall(linsolnames, o.Name) < 0 {
		chk.Panic("cannot find linear solver named %q", o.Name)
	}
	if utl.StrIndexSmall(jacnames, o.Jacobian) < 0 {
		chk.Panic("cannot handle Jacobian mode named %q", o.Jacobian)
	}
	if o.Precond != "" && o.Precond != "bbd" {
		chk.Panic("cannot handle preconditioner named %q", o.Precond)
	}
	if o.Nworkers < 1 {
		o.Nworkers = 1
	}
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {

	// stepping
	o.MaxOrd = 2
	o.DtIni = 1e-6
	o.DtMin = 1e-12
	o.MaxSteps = 500

	// nonlinear solver
	o.NmaxIt = 4
	o.NlCoef = 0.33
	o.MaxEtf = 10
	o.MaxNcf = 10

	// tolerances
	o.Atol = 1e-8
	o.Rtol = 1e-6

	// initial condition
	o.IcMaxIt = 10

	// constants
	o.Eps = 1e-16
}

// PostProcess computes derived constants from the just read values
func (o *SolverData) PostProcess() {
	if o.MaxOrd < 1 {
		o.MaxOrd = 1
	}
	if o.MaxOrd > 2 {
		o.MaxOrd = 2
	}
	o.Itol = utl.Max(10.0*o.Eps/o.Rtol, utl.Min(0.01, math.Sqrt(o.Rtol)))
}

// Disabled tells whether the guard is armed or not
func (o *GuardData) Disabled() bool {
	return o.Window == 0 || o.Threshold == 0
}

// Validate checks the snapshot schedules; see also dae.Driver which assumes these
// conditions hold
func (o *TimeControl) Validate() (err error) {
	if len(o.TEval) < 2 {
		return chk.Err("teval must have at least two entries (t0 and tf); len(teval)=%d", len(o.TEval))
	}
	if floats.HasNaN(o.TEval) {
		return chk.Err("teval has NaN entries")
	}
	for i := 1; i < len(o.TEval); i++ {
		if o.TEval[i] <= o.TEval[i-1] {
			return chk.Err("teval must be strictly increasing: teval[%d]=%g ≤ teval[%d]=%g", i, o.TEval[i], i-1, o.TEval[i-1])
		}
	}
	if len(o.TInterp) > 0 {
		if floats.HasNaN(o.TInterp) {
			return chk.Err("tinterp has NaN entries")
		}
		t0, tf := o.TEval[0], o.TEval[len(o.TEval)-1]
		for i, t := range o.TInterp {
			if i > 0 && t <= o.TInterp[i-1] {
				return chk.Err("tinterp must be strictly increasing: tinterp[%d]=%g ≤ tinterp[%d]=%g", i, t, i-1, o.TInterp[i-1])
			}
			if t < t0 || t > tf {
				return chk.Err("tinterp[%d]=%g is outside [t0,tf]=[%g,%g]", i, t, t0, tf)
			}
		}
	}
	return
}

// LinSpaceControl returns a TimeControl with np equally spaced stop-times in [t0, tf]
func LinSpaceControl(t0, tf float64, np int) (o TimeControl) {
	o.TEval = utl.LinSpace(t0, tf, np)
	return
}

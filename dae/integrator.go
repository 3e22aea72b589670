// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

// status flags surfaced in results. Positive values are valid terminal conditions;
// negative values abort the stepping loop and are forwarded as-is to the caller
const (
	Success    = 0  // terminal stop-time reached
	StopReturn = 1  // intermediate stop-time reached exactly
	RootReturn = 2  // event function crossed zero
	ErrFail    = -1 // error-test failures exceeded cap, step size underflow, or the driver's per-interval step cap exceeded
	ConvFail   = -2 // Newton iterations failed to converge past cap
	MemFail    = -3 // workspace allocation or sizing failure
	BadInput   = -4 // malformed call arguments detected by the back-end
	StallFail  = -5 // synthesised by the driver: no progress over the guard window, or a repeated step time
)

// IcMode selects the consistent-initialisation strategy of the back-end
type IcMode int

const (
	// IcYaYdp fixes differential variables and solves for algebraic variables and the
	// derivatives of differential variables; derivatives of algebraic variables are zeroed
	IcYaYdp IcMode = iota

	// IcYAll solves for all variables with derivatives fixed
	IcYAll
)

// Integrator is the opaque back-end advancing one implicit-DAE trajectory. Init begins a
// session; Free releases it. Between steps the working vectors returned by State, Deriv,
// Sens and SensDeriv reflect the solution at Time. Interp is only valid within the last
// completed step window
type Integrator interface {

	// Init starts a session at t0 with the extended vectors y0 and yp0 (base state
	// followed by one sensitivity block per parameter) and the scalar inputs consumed
	// by the residual. The slices are copied
	Init(t0 float64, y0, yp0, inputs []float64) (err error)

	// Reinit re-primes the integrator at time t keeping the current working vectors;
	// step history and step-size memory are discarded
	Reinit(t float64) (err error)

	// SetStopTime instructs the next steps to halt exactly on tstop
	SetStopTime(tstop float64)

	// CalcIC corrects the working vectors into a consistent (y, y') pair at the current
	// time. tnext must lie strictly ahead of the current time
	CalcIC(mode IcMode, tnext float64) (err error)

	// StepOne advances the solution by a single internal step towards tend and returns
	// the reached time together with a status flag
	StepOne(tend float64) (t float64, status int)

	// Interp evaluates the dense-output polynomial of the last step at t. der selects
	// the derivative order (0 or 1)
	Interp(t float64, der int, res []float64) (err error)

	// InterpSens evaluates the dense output of the sensitivity vectors at t. der selects
	// the derivative order (0 or 1)
	InterpSens(t float64, der int, res [][]float64) (err error)

	// Time returns the current time
	Time() float64

	// State returns the working state vector (live; do not retain)
	State() []float64

	// Deriv returns the working derivative vector (live; do not retain)
	Deriv() []float64

	// Sens returns the working sensitivity vectors, one per parameter (live)
	Sens() [][]float64

	// SensDeriv returns the working sensitivity derivative vectors (live)
	SensDeriv() [][]float64

	// LastStepSize returns the size of the last accepted step
	LastStepSize() float64

	// Free releases the session. The integrator must not be used afterwards
	Free()
}

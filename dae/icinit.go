// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// macheps is the smallest number satisfying 1.0 + macheps > 1.0
const macheps = 2.220446049250313e-16

// nextTime returns a time strictly ahead of t, usable as the ordered future time some
// back-ends require for consistent-initialisation solves. The additive term guarantees
// progress near zero; the multiplicative one away from it
func nextTime(t float64) float64 {
	se := math.Sqrt(macheps)
	return (1.0+se)*t + se
}

// ConsistentInit corrects (y, y') into a mutually consistent pair at a given time. Pure
// ODE systems take a shortcut: with a residual of the form f(t, y) − I·y', evaluating
// the residual at y' = 0 recovers y' = f(t, y) in one call. General DAE systems delegate
// to the back-end's implicit solve
type ConsistentInit struct {
	ex     ExprSet   // expression set
	integ  Integrator // back-end session
	isODE  bool      // all variables differential
	ycache []float64 // zeroed derivative scratch for the ODE shortcut
}

// newConsistentInit returns a corrector bound to one integrator session
func newConsistentInit(ex ExprSet, integ Integrator, isODE bool) (o *ConsistentInit) {
	o = new(ConsistentInit)
	o.ex = ex
	o.integ = integ
	o.isODE = isODE
	o.ycache = make([]float64, ex.Ndim())
	return
}

// Correct makes the working vectors of the integrator consistent at time t. The ODE
// shortcut only applies when the caller asks to re-solve the derivative block (IcYaYdp)
func (o *ConsistentInit) Correct(mode IcMode, t float64, inputs []float64) (err error) {

	// ODE shortcut
	if o.isODE && mode == IcYaYdp {
		la.VecFill(o.ycache, 0)
		yp := o.integ.Deriv()
		err = o.ex.Residual(yp, t, o.integ.State(), o.ycache, inputs)
		if err != nil {
			return chk.Err("ODE consistent-init residual evaluation failed:\n%v", err)
		}
		return
	}

	// general DAE: implicit solve with a strictly ordered future time
	err = o.integ.CalcIC(mode, nextTime(t))
	if err != nil {
		return chk.Err("consistent-initialisation failed at t=%g:\n%v", t, err)
	}
	return
}

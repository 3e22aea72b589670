// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"github.com/cpmech/gosl/la"
)

// ExprSet bundles the compiled expressions of one DAE system: the residual, an optional
// analytic Jacobian, the event functions and the output expressions. One expression set
// is shared read-only by a single driver; its scratch buffers are reentrant only within
// that driver
type ExprSet interface {

	// Ndim returns the number of state variables
	Ndim() int

	// Ninput returns the expected length of the scalar parameter vector
	Ninput() int

	// Nevent returns the number of event (root) functions
	Nevent() int

	// Residual computes res = F(t, y, y'; inputs)
	Residual(res []float64, t float64, y, yp, inputs []float64) (err error)

	// HasJacobian tells whether Jacobian may be called
	HasJacobian() bool

	// Jacobian assembles J = ∂F/∂y + cj ∂F/∂y' into tri
	Jacobian(tri *la.Triplet, t float64, y, yp, inputs []float64, cj float64) (err error)

	// Events computes the event functions g(t, y, y'; inputs)
	Events(res []float64, t float64, y, yp, inputs []float64)

	// DiffMask returns the differential-variable mask: 1 marks a differential variable,
	// 0 an algebraic one
	DiffMask() []float64

	// Outputs returns the output expressions; an empty set selects full-state results
	Outputs() []OutputExpr
}

// OutputExpr is one user-supplied output expression f(t, y; inputs) together with its
// sparse derivatives. Eval appends NnzOut values; EvalDy and EvalDp follow the column and
// row indices returned by DyCols and DpRows
type OutputExpr interface {

	// Eval computes res = f(t, y; inputs); len(res) = NnzOut()
	Eval(res []float64, t float64, y, inputs []float64)

	// NnzOut returns the number of entries this expression contributes to the output row
	NnzOut() int

	// OutShape returns the extent of dimension d of the output
	OutShape(d int) int

	// EvalDy computes the nonzero entries of ∂f/∂y, aligned with DyCols
	EvalDy(res []float64, t float64, y, inputs []float64)

	// DyCols returns the state indices of the nonzero columns of ∂f/∂y
	DyCols() []int

	// EvalDp computes the nonzero entries of the explicit ∂f/∂p, aligned with DpRows
	EvalDp(res []float64, t float64, y, inputs []float64)

	// DpRows returns the parameter indices of the nonzero rows of the explicit ∂f/∂p
	DpRows() []int
}

// System implements ExprSet with plain Go closures. Nil callbacks select the matching
// defaults: no analytic Jacobian, no events, all-differential mask, full-state results
type System struct {
	N      int                                                                // number of states
	Np     int                                                                // number of inputs
	Fcn    func(res []float64, t float64, y, yp, inputs []float64) error      // residual
	Jac    func(tri *la.Triplet, t float64, y, yp, inputs []float64, cj float64) error // Jacobian
	Evs    func(res []float64, t float64, y, yp, inputs []float64)            // events
	Nev    int                                                                // number of events
	Mask   []float64                                                          // differential mask
	OutFns []OutputExpr                                                       // output expressions
}

// Ndim returns the number of state variables
func (o *System) Ndim() int { return o.N }

// Ninput returns the expected length of the parameter vector
func (o *System) Ninput() int { return o.Np }

// Nevent returns the number of event functions
func (o *System) Nevent() int {
	if o.Evs == nil {
		return 0
	}
	return o.Nev
}

// Residual computes res = F(t, y, y'; inputs)
func (o *System) Residual(res []float64, t float64, y, yp, inputs []float64) error {
	return o.Fcn(res, t, y, yp, inputs)
}

// HasJacobian tells whether an analytic Jacobian is available
func (o *System) HasJacobian() bool { return o.Jac != nil }

// Jacobian assembles J = ∂F/∂y + cj ∂F/∂y'
func (o *System) Jacobian(tri *la.Triplet, t float64, y, yp, inputs []float64, cj float64) error {
	return o.Jac(tri, t, y, yp, inputs, cj)
}

// Events computes the event functions
func (o *System) Events(res []float64, t float64, y, yp, inputs []float64) {
	o.Evs(res, t, y, yp, inputs)
}

// DiffMask returns the differential-variable mask
func (o *System) DiffMask() []float64 {
	if o.Mask == nil {
		o.Mask = make([]float64, o.N)
		for i := 0; i < o.N; i++ {
			o.Mask[i] = 1
		}
	}
	return o.Mask
}

// Outputs returns the output expressions
func (o *System) Outputs() []OutputExpr { return o.OutFns }

// ScalarOutput implements OutputExpr for a single scalar f(t, y; inputs) with dense-row
// derivative callbacks restricted to the given sparsity
type ScalarOutput struct {
	F      func(t float64, y, inputs []float64) float64   // the output
	DyFn   func(t float64, y, inputs []float64) []float64 // values of ∂f/∂y on Cols
	DpFn   func(t float64, y, inputs []float64) []float64 // values of ∂f/∂p on Rows
	Cols   []int                                          // state indices of ∂f/∂y nonzeros
	Rows   []int                                          // parameter indices of ∂f/∂p nonzeros
}

// Eval computes the output value
func (o *ScalarOutput) Eval(res []float64, t float64, y, inputs []float64) {
	res[0] = o.F(t, y, inputs)
}

// NnzOut returns 1
func (o *ScalarOutput) NnzOut() int { return 1 }

// OutShape returns the extent of dimension d
func (o *ScalarOutput) OutShape(d int) int { return 1 }

// EvalDy computes the nonzero entries of ∂f/∂y
func (o *ScalarOutput) EvalDy(res []float64, t float64, y, inputs []float64) {
	copy(res, o.DyFn(t, y, inputs))
}

// DyCols returns the state indices of the ∂f/∂y nonzeros
func (o *ScalarOutput) DyCols() []int { return o.Cols }

// EvalDp computes the nonzero entries of the explicit ∂f/∂p
func (o *ScalarOutput) EvalDp(res []float64, t float64, y, inputs []float64) {
	if o.DpFn == nil {
		return
	}
	copy(res, o.DpFn(t, y, inputs))
}

// DpRows returns the parameter indices of the explicit ∂f/∂p nonzeros
func (o *ScalarOutput) DpRows() []int { return o.Rows }

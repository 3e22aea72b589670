// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"github.com/cpmech/gosl/la"
)

// OutputStager transforms one raw snapshot (y, y', S, S') into the row handed to the
// recorder: either the full state or the user outputs with their parametric
// sensitivities. Output sensitivities follow the chain rule
//
//	∂f_k/∂p = (∂f_k/∂p)_explicit + Σ_j (∂f_k/∂y)[j] · S_p[j]
//
// where the explicit part is densified first and the chain-rule sum is added on top, so
// overlapping sparsity accumulates. Derivative values of multi-entry expressions are
// laid out row-major over (NnzOut × number of indices), every entry sharing the
// expression's sparsity pattern. All accumulation is in double precision
type OutputStager struct {

	// configuration
	ex      ExprSet      // the expression set
	exprs   []OutputExpr // cached output expressions
	npar    int          // number of sensitivity parameters
	nret    int          // Σ nnz over the output expressions, or nstates
	outputs bool         // outputs-only mode

	// scratch (outputs-only mode)
	yrow []float64   // one staged output row [nret]
	srow [][]float64 // staged sensitivities [nret][npar]
	val  []float64   // expression evaluation buffer
	dy   []float64   // ∂f/∂y values buffer
	dp   []float64   // explicit ∂f/∂p values buffer
}

// NewOutputStager returns a stager for the expression set. An empty output-expression
// list selects full-state mode
func NewOutputStager(ex ExprSet, npar int) (o *OutputStager) {
	o = new(OutputStager)
	o.ex = ex
	o.exprs = ex.Outputs()
	o.npar = npar
	o.outputs = len(o.exprs) > 0
	if !o.outputs {
		o.nret = ex.Ndim()
		return
	}
	maxnnz, maxdy, maxdp := 0, 0, 0
	for _, e := range o.exprs {
		o.nret += e.NnzOut()
		if e.NnzOut() > maxnnz {
			maxnnz = e.NnzOut()
		}
		if n := e.NnzOut() * len(e.DyCols()); n > maxdy {
			maxdy = n
		}
		if n := e.NnzOut() * len(e.DpRows()); n > maxdp {
			maxdp = n
		}
	}
	o.yrow = make([]float64, o.nret)
	if npar > 0 {
		o.srow = la.MatAlloc(o.nret, npar)
	}
	o.val = make([]float64, maxnnz)
	o.dy = make([]float64, maxdy)
	o.dp = make([]float64, maxdp)
	return
}

// OutputsMode tells whether the stager produces output rows instead of the full state
func (o *OutputStager) OutputsMode() bool { return o.outputs }

// Nret returns the length of one staged row
func (o *OutputStager) Nret() int { return o.nret }

// Stage transforms one raw snapshot. In full-state mode the returned slices alias the
// arguments; in outputs-only mode they alias the stager's scratch. The recorder copies
// either way
func (o *OutputStager) Stage(t float64, y, yp []float64, s, sp [][]float64, inputs []float64) (yrow []float64, srow [][]float64, yprow []float64, sprow [][]float64) {

	// full-state: pass through
	if !o.outputs {
		return y, s, yp, sp
	}

	// evaluate output expressions
	k := 0
	for _, e := range o.exprs {
		nnz := e.NnzOut()
		e.Eval(o.val[:nnz], t, y, inputs)
		copy(o.yrow[k:k+nnz], o.val[:nnz])

		// sensitivities: explicit part first, then the chain-rule sum
		if o.npar > 0 {
			cols := e.DyCols()
			rows := e.DpRows()
			if len(cols) > 0 {
				e.EvalDy(o.dy[:nnz*len(cols)], t, y, inputs)
			}
			if len(rows) > 0 {
				e.EvalDp(o.dp[:nnz*len(rows)], t, y, inputs)
			}
			for e2 := 0; e2 < nnz; e2++ {
				drow := o.srow[k+e2]
				la.VecFill(drow, 0)
				for j, p := range rows {
					drow[p] = o.dp[e2*len(rows)+j]
				}
				for p := 0; p < o.npar; p++ {
					for j, c := range cols {
						drow[p] += o.dy[e2*len(cols)+j] * s[p][c]
					}
				}
			}
		}
		k += nnz
	}
	return o.yrow, o.srow, nil, nil
}

// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements solution output handling for analyses and plotting
package out

import (
	"github.com/cpmech/godae/dae"
	"github.com/cpmech/gosl/chk"
)

// Global variables
var (

	// data set by Start
	Sol *dae.Solution // the solution being analysed

	// extracted series
	Times []float64 // snapshot times
)

// Start starts handling of results given a solution
func Start(sol *dae.Solution) {
	if sol == nil {
		chk.Panic("solution is not available")
	}
	Sol = sol
	Times = sol.T
}

// GetY returns the series of return-vector component j across all snapshots
func GetY(j int) (res []float64) {
	if Sol == nil {
		chk.Panic("Start must be called first")
	}
	if j < 0 || j >= Sol.Nret {
		chk.Panic("component %d is out of range; the return vector has length %d", j, Sol.Nret)
	}
	res = make([]float64, Sol.Ntime)
	for i := 0; i < Sol.Ntime; i++ {
		res[i] = Sol.Y[i][j]
	}
	return
}

// GetYp returns the series of derivative component j; Hermite mode only
func GetYp(j int) (res []float64) {
	if Sol == nil {
		chk.Panic("Start must be called first")
	}
	if !Sol.SaveHermite {
		chk.Panic("derivative snapshots were not recorded")
	}
	res = make([]float64, Sol.Ntime)
	for i := 0; i < Sol.Ntime; i++ {
		res[i] = Sol.Yp[i][j]
	}
	return
}

// GetS returns the sensitivity series ∂y_j/∂p_p across all snapshots, hiding the axis
// flip between full-state storage (nparam, ntime, nstates) and outputs-only storage
// (ntime, nret, nparam)
func GetS(p, j int) (res []float64) {
	if Sol == nil {
		chk.Panic("Start must be called first")
	}
	if p < 0 || p >= Sol.Nparam {
		chk.Panic("parameter %d is out of range; nparam=%d", p, Sol.Nparam)
	}
	if j < 0 || j >= Sol.Nret {
		chk.Panic("component %d is out of range; the return vector has length %d", j, Sol.Nret)
	}
	res = make([]float64, Sol.Ntime)
	if Sol.OutputsMode {
		for i := 0; i < Sol.Ntime; i++ {
			res[i] = Sol.S[i][j][p]
		}
		return
	}
	for i := 0; i < Sol.Ntime; i++ {
		res[i] = Sol.S[p][i][j]
	}
	return
}

// GetSp returns the sensitivity derivative series ∂y'_j/∂p_p; full-state Hermite only
func GetSp(p, j int) (res []float64) {
	if Sol == nil {
		chk.Panic("Start must be called first")
	}
	if !Sol.SaveHermite || Sol.OutputsMode {
		chk.Panic("sensitivity derivative snapshots were not recorded")
	}
	res = make([]float64, Sol.Ntime)
	for i := 0; i < Sol.Ntime; i++ {
		res[i] = Sol.Sp[p][i][j]
	}
	return
}

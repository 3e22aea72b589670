// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

// Solution is the immutable, owning result of one solve. Buffers are moved out of the
// recorder at assembly; the Solution may outlive the driver that produced it.
//
// Sensitivity axes depend on the mode and are part of the external contract:
//
//	full-state   -- S[p][i][j] with axes (nparam, ntime, nstates)
//	outputs-only -- S[i][k][p] with axes (ntime, nret, nparam)
//
// Key off OutputsMode to interpret the strides
type Solution struct {

	// status
	Flag int // back-end status or driver-synthesised value; see the flag constants

	// dimensions
	Ntime       int    // number of snapshots
	Nret        int    // length of one return row
	Nparam      int    // number of sensitivity parameters
	SensAxes    [3]int // extents of the sensitivity axes in storage order
	Nterm       int    // length of the terminal raw-state slice; 0 unless outputs-only
	OutputsMode bool   // outputs-only layout
	SaveHermite bool   // derivative rows present

	// buffers
	T     []float64     // times [Ntime]
	Y     [][]float64   // state or output rows [Ntime][Nret]
	Yp    [][]float64   // derivative rows [Ntime][Nret]; nil unless SaveHermite
	S     [][][]float64 // sensitivities; see axes above
	Sp    [][][]float64 // sensitivity derivatives; nil unless SaveHermite and full-state
	Yterm []float64     // terminal raw state [Nterm]; outputs-only mode
}

// assemble freezes the recorder into a Solution. The recorder is left empty; the
// returned value owns every buffer
func assemble(rec *StepRecorder, flag, npar int, hermite bool, yterm []float64) (sol *Solution) {
	sol = new(Solution)
	sol.Flag = flag
	sol.Nparam = npar
	sol.OutputsMode = rec.outputs
	sol.SaveHermite = hermite
	sol.Nret = rec.nret
	nstates := rec.nstates
	sol.T, sol.Y, sol.Yp, sol.S, sol.Sp, sol.Ntime = rec.Freeze()
	if rec.outputs {
		sol.SensAxes = [3]int{sol.Ntime, sol.Nret, npar}
	} else {
		sol.SensAxes = [3]int{npar, sol.Ntime, nstates}
	}
	if yterm != nil {
		sol.Yterm = make([]float64, len(yterm))
		copy(sol.Yterm, yterm)
		sol.Nterm = len(yterm)
	}
	return
}

// Failed tells whether the run aborted with a negative flag
func (o *Solution) Failed() bool { return o.Flag < 0 }

// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// StepRecorder owns the growing snapshot buffers and the write cursor. Two layouts are
// supported:
//
//	full-state   -- Y[N][nstates], S[npar][N][nstates] and, with Hermite on,
//	                Yp[N][nstates], Sp[npar][N][nstates]
//	outputs-only -- Y[N][L] and S[N][L][npar] with L = Σ nnz(output_i)
//
// The recorder does not deduplicate times; the driver guarantees monotonicity
type StepRecorder struct {

	// configuration
	nstates int  // number of state variables
	npar    int  // number of sensitivity parameters
	nret    int  // length of one output row: nstates or L
	outputs bool // outputs-only layout
	hermite bool // keep derivative rows

	// buffers
	T  []float64     // times
	Y  [][]float64   // state or output rows
	Yp [][]float64   // derivative rows (full-state Hermite only)
	S  [][][]float64 // sensitivities; axes depend on layout
	Sp [][][]float64 // sensitivity derivatives (full-state Hermite only)

	// cursor
	isave int // number of valid entries
}

// NewStepRecorder returns a recorder for the given layout. nret must equal nstates in
// full-state mode
func NewStepRecorder(nstates, npar, nret int, outputs, hermite bool) (o *StepRecorder) {
	if !outputs && nret != nstates {
		chk.Panic("full-state recorder needs nret == nstates; %d != %d", nret, nstates)
	}
	if outputs && hermite {
		chk.Panic("Hermite derivative rows are only kept in full-state layout")
	}
	o = new(StepRecorder)
	o.nstates, o.npar, o.nret = nstates, npar, nret
	o.outputs, o.hermite = outputs, hermite
	return
}

// Reserve (re-)initialises the buffers to hold n snapshots, if and only if the current
// capacity is smaller. The cursor is always reset
func (o *StepRecorder) Reserve(n int) {
	if n > len(o.T) {
		o.T = make([]float64, n)
		o.Y = la.MatAlloc(n, o.nret)
		if o.hermite {
			o.Yp = la.MatAlloc(n, o.nstates)
		}
		if o.npar > 0 {
			if o.outputs {
				o.S = make([][][]float64, n)
				for i := 0; i < n; i++ {
					o.S[i] = la.MatAlloc(o.nret, o.npar)
				}
			} else {
				o.S = make([][][]float64, o.npar)
				for p := 0; p < o.npar; p++ {
					o.S[p] = la.MatAlloc(n, o.nstates)
				}
				if o.hermite {
					o.Sp = make([][][]float64, o.npar)
					for p := 0; p < o.npar; p++ {
						o.Sp[p] = la.MatAlloc(n, o.nstates)
					}
				}
			}
		}
	}
	o.isave = 0
}

// extendOne grows every buffer by one slot; used by adaptive-mode writes past the
// reserved region
func (o *StepRecorder) extendOne() {
	o.T = append(o.T, 0)
	o.Y = append(o.Y, make([]float64, o.nret))
	if o.hermite {
		o.Yp = append(o.Yp, make([]float64, o.nstates))
	}
	if o.npar > 0 {
		if o.outputs {
			o.S = append(o.S, la.MatAlloc(o.nret, o.npar))
		} else {
			for p := 0; p < o.npar; p++ {
				o.S[p] = append(o.S[p], make([]float64, o.nstates))
				if o.hermite {
					o.Sp[p] = append(o.Sp[p], make([]float64, o.nstates))
				}
			}
		}
	}
}

// Write stores one snapshot at the cursor and advances it. y holds the staged row
// (length nret). s follows the layout: [npar][nstates] in full-state mode or [L][npar]
// in outputs-only mode. yp and sp are only consulted with Hermite on and may be nil
// otherwise
func (o *StepRecorder) Write(t float64, y []float64, s [][]float64, yp []float64, sp [][]float64) {
	if o.isave >= len(o.T) {
		o.extendOne()
	}
	i := o.isave
	o.T[i] = t
	copy(o.Y[i], y)
	if o.hermite {
		copy(o.Yp[i], yp)
	}
	if o.npar > 0 {
		if o.outputs {
			for k := 0; k < o.nret; k++ {
				copy(o.S[i][k], s[k])
			}
		} else {
			for p := 0; p < o.npar; p++ {
				copy(o.S[p][i], s[p])
				if o.hermite {
					copy(o.Sp[p][i], sp[p])
				}
			}
		}
	}
	o.isave++
}

// Nsaved returns the number of valid entries
func (o *StepRecorder) Nsaved() int { return o.isave }

// LastTime returns the time of the last written snapshot
func (o *StepRecorder) LastTime() float64 {
	if o.isave == 0 {
		chk.Panic("recorder is empty")
	}
	return o.T[o.isave-1]
}

// Freeze trims the buffers to the cursor, releases ownership to the caller and leaves
// the recorder empty
func (o *StepRecorder) Freeze() (t []float64, y, yp [][]float64, s, sp [][][]float64, n int) {
	n = o.isave
	t = o.T[:n]
	y = o.Y[:n]
	if o.hermite {
		yp = o.Yp[:n]
	}
	if o.npar > 0 {
		if o.outputs {
			s = o.S[:n]
		} else {
			s = make([][][]float64, o.npar)
			for p := 0; p < o.npar; p++ {
				s[p] = o.S[p][:n]
			}
			if o.hermite {
				sp = make([][][]float64, o.npar)
				for p := 0; p < o.npar; p++ {
					sp[p] = o.Sp[p][:n]
				}
			}
		}
	}
	o.T, o.Y, o.Yp, o.S, o.Sp = nil, nil, nil, nil, nil
	o.isave = 0
	return
}

// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

// NoProgressGuard flags stalled integration: it watches the last Window accepted step
// sizes and reports a violation when their sum drops strictly below Threshold. The
// buffer is pre-filled with the threshold value so a fresh guard is not armed before
// Window real steps have been seen
type NoProgressGuard struct {
	win      []float64 // circular buffer of step sizes
	thresh   float64   // minimum sum of step sizes
	next     int       // next slot to overwrite
	disabled bool      // all operations no-op
}

// NewNoProgressGuard returns a new guard. window=0 or threshold=0 disables it
func NewNoProgressGuard(window int, threshold float64) (o *NoProgressGuard) {
	o = new(NoProgressGuard)
	o.thresh = threshold
	if window == 0 || threshold == 0 {
		o.disabled = true
		return
	}
	o.win = make([]float64, window)
	for i := range o.win {
		o.win[i] = threshold
	}
	return
}

// Add records the size of one accepted step, overwriting the oldest entry
func (o *NoProgressGuard) Add(dt float64) {
	if o.disabled {
		return
	}
	o.win[o.next] = dt
	o.next = (o.next + 1) % len(o.win)
}

// Violated reports whether the window's sum is strictly below the threshold. The partial
// sum short-circuits as soon as it reaches the threshold
func (o *NoProgressGuard) Violated() bool {
	if o.disabled {
		return false
	}
	sum := 0.0
	for _, dt := range o.win {
		sum += dt
		if sum >= o.thresh {
			return false
		}
	}
	return true
}

// Disabled tells whether the guard no-ops
func (o *NoProgressGuard) Disabled() bool { return o.disabled }

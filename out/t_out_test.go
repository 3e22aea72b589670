// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"testing"

	"github.com/cpmech/godae/dae"
	"github.com/cpmech/gosl/chk"
)

func Test_out01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out01. series extraction in full-state mode")

	sol := &dae.Solution{
		Ntime:       3,
		Nret:        2,
		Nparam:      1,
		SaveHermite: true,
		T:           []float64{0, 1, 2},
		Y:           [][]float64{{1, 10}, {2, 20}, {3, 30}},
		Yp:          [][]float64{{-1, -10}, {-2, -20}, {-3, -30}},
		S:           [][][]float64{{{5, 50}, {6, 60}, {7, 70}}}, // axes (nparam, ntime, nstates)
		Sp:          [][][]float64{{{8, 80}, {9, 90}, {10, 100}}},
	}
	Start(sol)

	chk.Array(tst, "T", 1e-17, Times, []float64{0, 1, 2})
	chk.Array(tst, "y0", 1e-17, GetY(0), []float64{1, 2, 3})
	chk.Array(tst, "y1", 1e-17, GetY(1), []float64{10, 20, 30})
	chk.Array(tst, "yp1", 1e-17, GetYp(1), []float64{-10, -20, -30})
	chk.Array(tst, "S[0] of y1", 1e-17, GetS(0, 1), []float64{50, 60, 70})
	chk.Array(tst, "Sp[0] of y0", 1e-17, GetSp(0, 0), []float64{8, 9, 10})
}

func Test_out02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("out02. series extraction honours the outputs-only axis flip")

	sol := &dae.Solution{
		Ntime:       2,
		Nret:        2,
		Nparam:      2,
		OutputsMode: true,
		T:           []float64{0, 1},
		Y:           [][]float64{{1, 2}, {3, 4}},
		S: [][][]float64{ // axes (ntime, nret, nparam)
			{{10, 11}, {20, 21}},
			{{30, 31}, {40, 41}},
		},
	}
	Start(sol)

	chk.Array(tst, "f1", 1e-17, GetY(1), []float64{2, 4})
	chk.Array(tst, "S of f0 wrt p0", 1e-17, GetS(0, 0), []float64{10, 30})
	chk.Array(tst, "S of f1 wrt p1", 1e-17, GetS(1, 1), []float64{21, 41})
}

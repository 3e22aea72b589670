// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"
)

// Plot draws the series of return-vector components js against time into one figure
// saved under dirout with the given filename key
func Plot(js []int, dirout, fnkey string) {
	plt.Reset(true, nil)
	for _, j := range js {
		plt.Plot(Times, GetY(j), &plt.A{M: ".", L: io.Sf("$y_%d$", j)})
	}
	plt.Gll("$t$", "$y$", nil)
	plt.Save(dirout, fnkey)
}

// PlotS draws the sensitivity series ∂y_j/∂p_p against time
func PlotS(p int, js []int, dirout, fnkey string) {
	plt.Reset(true, nil)
	for _, j := range js {
		plt.Plot(Times, GetS(p, j), &plt.A{M: ".", L: io.Sf("$\\partial y_%d/\\partial p_%d$", j, p)})
	}
	plt.Gll("$t$", io.Sf("$\\partial y/\\partial p_%d$", p), nil)
	plt.Save(dirout, fnkey)
}

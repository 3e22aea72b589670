// Copyright 2017 The Godae Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dae

import (
	"math"

	"github.com/cpmech/godae/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// BdfStat holds work counters of one Bdf session
type BdfStat struct {
	Nfeval    int // number of residual evaluations
	Njeval    int // number of Jacobian assemblies
	Ndecomp   int // number of factorisations
	Nlinsol   int // number of linear solutions
	Naccepted int // number of accepted steps
	Nrejected int // number of rejected step attempts
}

// Bdf is the built-in integrator back-end: a variable-step BDF1/BDF2 method with Newton
// corrector iterations, stop-time clamping, event root location on the dense-output
// polynomial, Hermite cubic dense output and staggered-direct forward sensitivities.
// The Newton matrix J = ∂F/∂y + cj ∂F/∂y' is factorised with either the dense solver or
// Umfpack, per the structural options fixed at construction
type Bdf struct {

	// configuration
	ex     ExprSet         // expression set
	sd     *inp.SolverData // tunables
	n      int             // number of states
	npar   int             // number of sensitivity parameters
	nev    int             // number of event functions
	dense  bool            // dense linear solver
	anaJac bool            // analytic (triplet) Jacobian
	mask   []float64       // differential mask

	// current solution
	t      float64
	y, yp  []float64
	s, sp  [][]float64
	inputs []float64

	// step history (previous accepted node)
	ym1      []float64
	sm1      [][]float64
	h1       float64 // gap between the previous node and the current one
	havePrev bool    // BDF2 available

	// step-size control
	h     float64 // size to attempt next
	hLast float64 // last accepted size
	q     int     // order used in the last attempt

	// dense-output window (last completed step)
	tlo, thi             float64
	ylo, yhi, yplo, yphi []float64
	slo, shi, splo, sphi [][]float64
	haveWindow           bool

	// stop-time
	tstop   float64
	stopSet bool

	// events
	gOld, gNew, gTmp []float64

	// linear solver
	tri     la.Triplet
	lis     la.Umfpack
	lsReady bool
	J, Ji   *la.Matrix
	c0fact  float64 // cj at the last factorisation; for linear-solution scaling

	// scratch
	res, res2   []float64
	ypred       []float64
	ytmp, yptmp []float64
	hist        []float64 // yp = c0*y + hist
	histS       []float64
	dy          []float64
	scal        []float64
	yint, ypint []float64 // root location interpolants

	// statistics
	Stat BdfStat
}

// NewBdf allocates the back-end. Unknown or unavailable structural choices panic here:
// only the "dense" and "umfpack" linear solvers are built in, and the "sparse" Jacobian
// mode needs an analytic Jacobian in the expression set
func NewBdf(ex ExprSet, lsd *inp.LinSolData, sd *inp.SolverData, npar int) (o *Bdf) {

	// structural checks
	switch lsd.Name {
	case "dense":
	case "umfpack":
	default:
		chk.Panic("linear solver %q is not available in this back-end", lsd.Name)
	}
	switch lsd.Jacobian {
	case "num", "dense":
	case "sparse":
		if !ex.HasJacobian() {
			chk.Panic("Jacobian mode %q needs an analytic Jacobian in the expression set", lsd.Jacobian)
		}
	default:
		chk.Panic("Jacobian mode %q is not available in this back-end", lsd.Jacobian)
	}
	if lsd.Precond != "" {
		chk.Panic("preconditioner %q is not available in this back-end", lsd.Precond)
	}

	// allocate
	o = new(Bdf)
	o.ex = ex
	o.sd = sd
	o.n = ex.Ndim()
	o.npar = npar
	o.nev = ex.Nevent()
	o.dense = lsd.Name == "dense"
	o.anaJac = lsd.Jacobian == "sparse"
	o.mask = ex.DiffMask()

	n := o.n
	o.y = make([]float64, n)
	o.yp = make([]float64, n)
	o.ym1 = make([]float64, n)
	o.ylo = make([]float64, n)
	o.yhi = make([]float64, n)
	o.yplo = make([]float64, n)
	o.yphi = make([]float64, n)
	o.res = make([]float64, n)
	o.res2 = make([]float64, n)
	o.ypred = make([]float64, n)
	o.ytmp = make([]float64, n)
	o.yptmp = make([]float64, n)
	o.hist = make([]float64, n)
	o.histS = make([]float64, n)
	o.dy = make([]float64, n)
	o.scal = make([]float64, n)
	o.yint = make([]float64, n)
	o.ypint = make([]float64, n)
	if npar > 0 {
		o.s = la.MatAlloc(npar, n)
		o.sp = la.MatAlloc(npar, n)
		o.sm1 = la.MatAlloc(npar, n)
		o.slo = la.MatAlloc(npar, n)
		o.shi = la.MatAlloc(npar, n)
		o.splo = la.MatAlloc(npar, n)
		o.sphi = la.MatAlloc(npar, n)
	}
	if o.nev > 0 {
		o.gOld = make([]float64, o.nev)
		o.gNew = make([]float64, o.nev)
		o.gTmp = make([]float64, o.nev)
	}
	if o.dense {
		o.J = la.NewMatrix(n, n)
		o.Ji = la.NewMatrix(n, n)
	} else {
		o.tri.Init(n, n, n*n)
	}
	return
}

// SetSolverData re-applies integration tunables
func (o *Bdf) SetSolverData(sd *inp.SolverData) { o.sd = sd }

// Init starts a session at t0. y0 and yp0 carry the base state followed by one
// sensitivity block per parameter
func (o *Bdf) Init(t0 float64, y0, yp0, inputs []float64) (err error) {
	if len(y0) != o.n*(1+o.npar) || len(yp0) != o.n*(1+o.npar) {
		return chk.Err("extended initial vectors must have length %d", o.n*(1+o.npar))
	}
	if len(inputs) != o.ex.Ninput() {
		return chk.Err("inputs must have length %d", o.ex.Ninput())
	}
	o.t = t0
	copy(o.y, y0[:o.n])
	copy(o.yp, yp0[:o.n])
	for p := 0; p < o.npar; p++ {
		copy(o.s[p], y0[(1+p)*o.n:(2+p)*o.n])
		copy(o.sp[p], yp0[(1+p)*o.n:(2+p)*o.n])
	}
	o.inputs = make([]float64, len(inputs))
	copy(o.inputs, inputs)
	o.h = o.sd.DtIni
	o.hLast = 0
	o.havePrev = false
	o.haveWindow = false
	o.stopSet = false
	o.Stat = BdfStat{}
	if o.nev > 0 {
		o.ex.Events(o.gOld, t0, o.y, o.yp, o.inputs)
	}
	return
}

// Reinit re-primes the session at t keeping the working vectors. Step history and
// step-size memory are discarded; the dense-output window of the last step survives
func (o *Bdf) Reinit(t float64) (err error) {
	o.t = t
	o.h = o.sd.DtIni
	o.havePrev = false
	if o.nev > 0 {
		o.ex.Events(o.gOld, t, o.y, o.yp, o.inputs)
	}
	return
}

// SetStopTime instructs the next steps to halt exactly on tstop
func (o *Bdf) SetStopTime(tstop float64) {
	o.tstop = tstop
	o.stopSet = true
}

// Time returns the current time
func (o *Bdf) Time() float64 { return o.t }

// State returns the working state vector
func (o *Bdf) State() []float64 { return o.y }

// Deriv returns the working derivative vector
func (o *Bdf) Deriv() []float64 { return o.yp }

// Sens returns the working sensitivity vectors
func (o *Bdf) Sens() [][]float64 { return o.s }

// SensDeriv returns the working sensitivity derivative vectors
func (o *Bdf) SensDeriv() [][]float64 { return o.sp }

// LastStepSize returns the size of the last accepted step
func (o *Bdf) LastStepSize() float64 { return o.hLast }

// Free releases the linear solver workspace. Release order mirrors allocation in
// reverse: sensitivity blocks and vectors are garbage collected; the sparse solver
// holds the only native handle
func (o *Bdf) Free() {
	if !o.dense && o.lsReady {
		o.lis.Free()
		o.lsReady = false
	}
}

// StepOne advances the solution by one internal step towards tend
func (o *Bdf) StepOne(tend float64) (t float64, status int) {

	// roundoff guard: already sitting on the stop-time
	uround := 100.0 * macheps * (math.Abs(o.t) + math.Abs(o.h))
	if o.stopSet && o.tstop-o.t <= uround {
		o.t = o.tstop
		return o.t, StopReturn
	}

	netf, nncf := 0, 0
	for {

		// select step size
		h := o.h
		if o.sd.DtMax > 0 && h > o.sd.DtMax {
			h = o.sd.DtMax
		}
		if h < o.sd.DtMin {
			return o.t, ErrFail
		}
		hitStop := false
		if o.stopSet && o.t+h >= o.tstop {
			h = o.tstop - o.t
			hitStop = true
		}
		tnew := o.t + h

		// corrector
		if !o.attempt(tnew, h) {
			nncf++
			o.Stat.Nrejected++
			if nncf > o.sd.MaxNcf {
				return o.t, ConvFail
			}
			o.h = 0.25 * h
			continue
		}

		// error test
		errn := o.errNorm()
		if errn > 1.0 {
			netf++
			o.Stat.Nrejected++
			if netf > o.sd.MaxEtf {
				return o.t, ErrFail
			}
			fac := utl.Max(0.1, 0.9*math.Pow(errn, -1.0/float64(o.q+1)))
			o.h = h * utl.Min(0.9, fac)
			continue
		}

		// accept
		o.accept(tnew, h, errn, hitStop)

		// event check on the fresh window
		if o.nev > 0 {
			o.ex.Events(o.gNew, o.t, o.y, o.yp, o.inputs)
			if troot, hit := o.locateRoot(); hit {
				o.t = troot
				o.Interp(troot, 0, o.y)
				o.Interp(troot, 1, o.yp)
				if o.npar > 0 {
					o.InterpSens(troot, 0, o.s)
					o.InterpSens(troot, 1, o.sp)
				}
				return o.t, RootReturn
			}
			copy(o.gOld, o.gNew)
		}

		if hitStop {
			return o.t, StopReturn
		}
		return o.t, Success
	}
}

// attempt runs predictor plus Newton corrector for one step to tnew of size h. On
// success the candidate solution sits in ytmp/yptmp and the Newton matrix is factorised
// at coefficient c0
func (o *Bdf) attempt(tnew, h float64) (converged bool) {

	// order and BDF coefficients: yp_new = c0*y_new + hist
	o.q = 1
	c0 := 1.0 / h
	for i := 0; i < o.n; i++ {
		o.hist[i] = -o.y[i] / h
	}
	if o.havePrev && o.sd.MaxOrd >= 2 {
		o.q = 2
		h1 := o.h1
		c0 = (2.0*h + h1) / (h * (h + h1))
		a1 := -(h + h1) / (h * h1)
		a2 := h / (h1 * (h + h1))
		for i := 0; i < o.n; i++ {
			o.hist[i] = a1*o.y[i] + a2*o.ym1[i]
		}
	}

	// predictor
	for i := 0; i < o.n; i++ {
		o.ypred[i] = o.y[i] + h*o.yp[i]
		o.ytmp[i] = o.ypred[i]
		o.yptmp[i] = c0*o.ytmp[i] + o.hist[i]
		o.scal[i] = o.sd.Atol + o.sd.Rtol*math.Abs(o.ytmp[i])
	}

	// Newton iterations
	itol := o.sd.NlCoef * o.sd.Itol
	for it := 0; it < o.sd.NmaxIt; it++ {

		// residual
		err := o.ex.Residual(o.res, tnew, o.ytmp, o.yptmp, o.inputs)
		o.Stat.Nfeval++
		if err != nil {
			return false
		}

		// factorise Newton matrix
		if it == 0 || !o.sd.CteTg {
			if !o.factorise(tnew, c0) {
				return false
			}
		}

		// solve for the update
		if !o.linSolve(o.dy, o.res) {
			return false
		}

		// linear-solution scaling for the modified-Newton path
		if o.sd.ScaleLs && o.sd.CteTg && o.c0fact != c0 {
			cjr := 2.0 / (1.0 + c0/o.c0fact)
			for i := 0; i < o.n; i++ {
				o.dy[i] *= cjr
			}
		}

		// update candidate
		Ldx := 0.0
		for i := 0; i < o.n; i++ {
			o.ytmp[i] -= o.dy[i]
			o.yptmp[i] = c0*o.ytmp[i] + o.hist[i]
			Ldx += (o.dy[i] / o.scal[i]) * (o.dy[i] / o.scal[i])
		}
		Ldx = math.Sqrt(Ldx / float64(o.n))

		// message
		if o.sd.ShowR {
			io.Pf("%13.6e%4d%23.15e\n", tnew, it, Ldx)
		}

		// convergence on the update norm
		if Ldx < itol {
			return true
		}
	}
	return false
}

// factorise assembles and factorises J = ∂F/∂y + c0 ∂F/∂y' at the candidate point
func (o *Bdf) factorise(tnew, c0 float64) (ok bool) {

	// assemble
	if o.anaJac {
		o.tri.Start()
		err := o.ex.Jacobian(&o.tri, tnew, o.ytmp, o.yptmp, o.inputs, c0)
		if err != nil {
			return false
		}
	} else {
		if !o.numJacobian(tnew, c0) {
			return false
		}
	}
	o.Stat.Njeval++

	// factorise
	if o.dense {
		la.MatInv(o.Ji, o.J, false)
	} else {
		if !o.lsReady {
			o.lis.Init(&o.tri, &la.SpArgs{})
			o.lsReady = true
		}
		o.lis.Fact()
	}
	o.Stat.Ndecomp++
	o.c0fact = c0
	return true
}

// numJacobian fills the Newton matrix by forward differences, perturbing y and y'
// simultaneously so each column carries ∂F/∂y + c0 ∂F/∂y'
func (o *Bdf) numJacobian(tnew, c0 float64) (ok bool) {
	if !o.dense {
		o.tri.Start()
	}
	for j := 0; j < o.n; j++ {
		δ := math.Sqrt(macheps) * utl.Max(1e-5, math.Abs(o.ytmp[j]))
		yj, ypj := o.ytmp[j], o.yptmp[j]
		o.ytmp[j] += δ
		o.yptmp[j] += c0 * δ
		err := o.ex.Residual(o.res2, tnew, o.ytmp, o.yptmp, o.inputs)
		o.Stat.Nfeval++
		o.ytmp[j], o.yptmp[j] = yj, ypj
		if err != nil {
			return false
		}
		for i := 0; i < o.n; i++ {
			v := (o.res2[i] - o.res[i]) / δ
			if o.dense {
				o.J.Set(i, j, v)
			} else if v != 0 || i == j {
				o.tri.Put(i, j, v)
			}
		}
	}
	return true
}

// linSolve computes x = J⁻¹ b with the factorised Newton matrix
func (o *Bdf) linSolve(x, b []float64) (ok bool) {
	if o.dense {
		for i := 0; i < o.n; i++ {
			x[i] = 0
			for j := 0; j < o.n; j++ {
				x[i] += o.Ji.Get(i, j) * b[j]
			}
		}
	} else {
		o.lis.Solve(x, b, false)
	}
	o.Stat.Nlinsol++
	return true
}

// errNorm computes the weighted RMS norm of the predictor-corrector difference. With
// SuppressAlg on, algebraic components are excluded from the test
func (o *Bdf) errNorm() float64 {
	sum, cnt := 0.0, 0
	k := 1.0 / float64(o.q+1)
	for i := 0; i < o.n; i++ {
		if o.sd.SuppressAlg && o.mask[i] < 0.5 {
			continue
		}
		e := k * (o.ytmp[i] - o.ypred[i]) / o.scal[i]
		sum += e * e
		cnt++
	}
	if cnt == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(cnt))
}

// accept commits the candidate step: sensitivities are advanced with the staggered
// direct method, the dense-output window and the history are rotated, and the next
// step size is proposed
func (o *Bdf) accept(tnew, h, errn float64, hitStop bool) {

	// window: low end is the departing node
	o.tlo = o.t
	copy(o.ylo, o.y)
	copy(o.yplo, o.yp)
	for p := 0; p < o.npar; p++ {
		copy(o.slo[p], o.s[p])
		copy(o.splo[p], o.sp[p])
	}

	// sensitivities next: the history combination consumes the old nodes and rotates
	// them internally before overwriting
	if o.npar > 0 {
		o.advanceSens(tnew, h)
	}

	// rotate state history
	copy(o.ym1, o.y)
	o.h1 = h
	o.havePrev = true

	// commit
	copy(o.y, o.ytmp)
	copy(o.yp, o.yptmp)
	o.t = tnew
	if hitStop {
		o.t = o.tstop
	}
	o.hLast = h
	o.Stat.Naccepted++

	// window: high end is the fresh node
	o.thi = o.t
	copy(o.yhi, o.y)
	copy(o.yphi, o.yp)
	for p := 0; p < o.npar; p++ {
		copy(o.shi[p], o.s[p])
		copy(o.sphi[p], o.sp[p])
	}
	o.haveWindow = true

	// next step size
	fac := 0.9 * math.Pow(utl.Max(errn, 1e-10), -1.0/float64(o.q+1))
	o.h = h * utl.Min(2.0, utl.Max(0.5, fac))
}

// advanceSens solves the sensitivity systems with the staggered-direct method: the
// factorised Newton matrix J = A + c0 B is reused and the right-hand side
// −(∂F/∂p + B·hist_S) is built with directional differences
func (o *Bdf) advanceSens(tnew, h float64) {

	// BDF combination for the sensitivity derivative: Sp = c0*S + hist_S
	c0 := 1.0 / h
	a1 := -1.0 / h
	a2 := 0.0
	if o.q == 2 {
		h1 := o.h1
		c0 = (2.0*h + h1) / (h * (h + h1))
		a1 = -(h + h1) / (h * h1)
		a2 = h / (h1 * (h + h1))
	}

	// base residual at the accepted candidate
	o.ex.Residual(o.res, tnew, o.ytmp, o.yptmp, o.inputs)
	o.Stat.Nfeval++

	for p := 0; p < o.npar; p++ {

		// history combination from the old nodes, then rotate so the new value can
		// overwrite s[p]
		for i := 0; i < o.n; i++ {
			o.histS[i] = a1*o.s[p][i] + a2*o.sm1[p][i]
		}
		copy(o.sm1[p], o.s[p])

		// B·hist_S by a directional difference on y'
		vnorm := 0.0
		for i := 0; i < o.n; i++ {
			vnorm = utl.Max(vnorm, math.Abs(o.histS[i]))
		}
		for i := 0; i < o.n; i++ {
			o.dy[i] = 0
		}
		if vnorm > 0 {
			δ := math.Sqrt(macheps) / vnorm
			for i := 0; i < o.n; i++ {
				o.yptmp[i] += δ * o.histS[i]
			}
			o.ex.Residual(o.res2, tnew, o.ytmp, o.yptmp, o.inputs)
			o.Stat.Nfeval++
			for i := 0; i < o.n; i++ {
				o.yptmp[i] -= δ * o.histS[i]
				o.dy[i] = (o.res2[i] - o.res[i]) / δ
			}
		}

		// ∂F/∂p by an input perturbation; parameters beyond the input vector carry no
		// explicit residual dependence
		if p < len(o.inputs) {
			δp := math.Sqrt(macheps) * utl.Max(1e-5, math.Abs(o.inputs[p]))
			o.inputs[p] += δp
			o.ex.Residual(o.res2, tnew, o.ytmp, o.yptmp, o.inputs)
			o.Stat.Nfeval++
			o.inputs[p] -= δp
			for i := 0; i < o.n; i++ {
				o.res2[i] = (o.res2[i] - o.res[i]) / δp
			}
		} else {
			for i := 0; i < o.n; i++ {
				o.res2[i] = 0
			}
		}

		// rhs = −(∂F/∂p + B·hist_S)
		for i := 0; i < o.n; i++ {
			o.res2[i] = -(o.res2[i] + o.dy[i])
		}

		// S = J⁻¹ rhs; Sp from the BDF combination
		o.linSolve(o.s[p], o.res2)
		for i := 0; i < o.n; i++ {
			o.sp[p][i] = c0*o.s[p][i] + o.histS[i]
		}
	}
}

// locateRoot scans the event functions for a sign change over the last step and
// bisects the earliest crossing on the dense-output polynomial
func (o *Bdf) locateRoot() (troot float64, hit bool) {
	troot = o.thi
	for i := 0; i < o.nev; i++ {
		if o.gOld[i] == 0 {
			// a root on the departing node was already reported
			continue
		}
		if o.gOld[i]*o.gNew[i] > 0 {
			continue
		}
		a, b := o.tlo, o.thi
		ga := o.gOld[i]
		for it := 0; it < 80 && b-a > macheps*100.0*(math.Abs(a)+math.Abs(b)); it++ {
			m := 0.5 * (a + b)
			o.Interp(m, 0, o.yint)
			o.Interp(m, 1, o.ypint)
			o.ex.Events(o.gTmp, m, o.yint, o.ypint, o.inputs)
			if ga*o.gTmp[i] <= 0 {
				b = m
			} else {
				a = m
				ga = o.gTmp[i]
			}
		}
		if b < troot || !hit {
			troot = b
			hit = true
		}
	}
	return
}

// CalcIC corrects the working vectors into a consistent pair at the current time with a
// damped Newton solve. IcYaYdp fixes differential variables and solves for algebraic
// variables and the derivatives of differential variables; derivatives of algebraic
// variables are set to zero. IcYAll solves for all variables with derivatives fixed
func (o *Bdf) CalcIC(mode IcMode, tnext float64) (err error) {
	if tnext <= o.t {
		return chk.Err("consistent-initialisation needs tnext=%g strictly ahead of t=%g", tnext, o.t)
	}

	// unknown mapping: diffVar[i] selects between y'[i] (true) and y[i]
	diffVar := make([]bool, o.n)
	for i := 0; i < o.n; i++ {
		switch mode {
		case IcYaYdp:
			diffVar[i] = o.mask[i] > 0.5
			if !diffVar[i] {
				o.yp[i] = 0
			}
		case IcYAll:
			diffVar[i] = false
		}
	}

	get := func(i int) float64 {
		if diffVar[i] {
			return o.yp[i]
		}
		return o.y[i]
	}
	add := func(i int, v float64) {
		if diffVar[i] {
			o.yp[i] += v
		} else {
			o.y[i] += v
		}
	}

	ftol := utl.Max(o.sd.Atol, 1e-12)
	for it := 0; it < o.sd.IcMaxIt; it++ {

		// residual and convergence check
		err = o.ex.Residual(o.res, o.t, o.y, o.yp, o.inputs)
		o.Stat.Nfeval++
		if err != nil {
			return chk.Err("residual evaluation failed during consistent-initialisation:\n%v", err)
		}
		rmax := 0.0
		for i := 0; i < o.n; i++ {
			rmax = utl.Max(rmax, math.Abs(o.res[i]))
		}
		if rmax < ftol {
			return nil
		}

		// Jacobian with respect to the unknowns, by forward differences
		if !o.dense {
			o.tri.Start()
		}
		for j := 0; j < o.n; j++ {
			δ := math.Sqrt(macheps) * utl.Max(1e-5, math.Abs(get(j)))
			add(j, δ)
			err = o.ex.Residual(o.res2, o.t, o.y, o.yp, o.inputs)
			o.Stat.Nfeval++
			add(j, -δ)
			if err != nil {
				return chk.Err("residual evaluation failed during consistent-initialisation:\n%v", err)
			}
			for i := 0; i < o.n; i++ {
				v := (o.res2[i] - o.res[i]) / δ
				if o.dense {
					o.J.Set(i, j, v)
				} else if v != 0 || i == j {
					o.tri.Put(i, j, v)
				}
			}
		}
		o.Stat.Njeval++
		if o.dense {
			la.MatInv(o.Ji, o.J, false)
		} else {
			if !o.lsReady {
				o.lis.Init(&o.tri, &la.SpArgs{})
				o.lsReady = true
			}
			o.lis.Fact()
		}
		o.Stat.Ndecomp++
		o.linSolve(o.dy, o.res)

		// update, with optional backtracking line search
		λ := 1.0
		for ls := 0; ; ls++ {
			for i := 0; i < o.n; i++ {
				add(i, -λ*o.dy[i])
			}
			if !o.sd.LineSearch || ls >= 10 {
				break
			}
			err = o.ex.Residual(o.res2, o.t, o.y, o.yp, o.inputs)
			o.Stat.Nfeval++
			if err != nil {
				return chk.Err("residual evaluation failed during consistent-initialisation:\n%v", err)
			}
			rnew := 0.0
			for i := 0; i < o.n; i++ {
				rnew = utl.Max(rnew, math.Abs(o.res2[i]))
			}
			if rnew <= rmax {
				break
			}
			// undo and halve
			for i := 0; i < o.n; i++ {
				add(i, λ*o.dy[i])
			}
			λ *= 0.5
		}
	}

	// final check
	err = o.ex.Residual(o.res, o.t, o.y, o.yp, o.inputs)
	o.Stat.Nfeval++
	if err != nil {
		return chk.Err("residual evaluation failed during consistent-initialisation:\n%v", err)
	}
	rmax := 0.0
	for i := 0; i < o.n; i++ {
		rmax = utl.Max(rmax, math.Abs(o.res[i]))
	}
	if rmax < ftol {
		return nil
	}
	return chk.Err("consistent-initialisation did not converge: |F|max=%g after %d iterations", rmax, o.sd.IcMaxIt)
}

// Interp evaluates the Hermite cubic dense output of the last step at t. der selects
// the value (0) or the first derivative (1)
func (o *Bdf) Interp(t float64, der int, res []float64) (err error) {
	if !o.haveWindow {
		if t == o.t {
			switch der {
			case 0:
				copy(res, o.y)
			case 1:
				copy(res, o.yp)
			}
			return
		}
		return chk.Err("dense output is not available before the first step")
	}
	hw := o.thi - o.tlo
	tol := 100.0 * macheps * (math.Abs(o.tlo) + math.Abs(o.thi))
	if t < o.tlo-tol || t > o.thi+tol {
		return chk.Err("dense output at t=%g is outside the last step window [%g,%g]", t, o.tlo, o.thi)
	}
	hermite(res, t, o.tlo, hw, o.ylo, o.yhi, o.yplo, o.yphi, der)
	return
}

// InterpSens evaluates the dense output of the sensitivity vectors at t
func (o *Bdf) InterpSens(t float64, der int, res [][]float64) (err error) {
	if !o.haveWindow {
		if t == o.t {
			for p := 0; p < o.npar; p++ {
				switch der {
				case 0:
					copy(res[p], o.s[p])
				case 1:
					copy(res[p], o.sp[p])
				}
			}
			return
		}
		return chk.Err("dense output is not available before the first step")
	}
	hw := o.thi - o.tlo
	tol := 100.0 * macheps * (math.Abs(o.tlo) + math.Abs(o.thi))
	if t < o.tlo-tol || t > o.thi+tol {
		return chk.Err("dense output at t=%g is outside the last step window [%g,%g]", t, o.tlo, o.thi)
	}
	for p := 0; p < o.npar; p++ {
		hermite(res[p], t, o.tlo, hw, o.slo[p], o.shi[p], o.splo[p], o.sphi[p], der)
	}
	return
}

// hermite evaluates the cubic Hermite interpolant (or its derivative) on one window
func hermite(res []float64, t, tlo, h float64, ylo, yhi, yplo, yphi []float64, der int) {
	σ := (t - tlo) / h
	if der == 0 {
		h00 := 2.0*σ*σ*σ - 3.0*σ*σ + 1.0
		h10 := σ*σ*σ - 2.0*σ*σ + σ
		h01 := -2.0*σ*σ*σ + 3.0*σ*σ
		h11 := σ*σ*σ - σ*σ
		for i := range res {
			res[i] = h00*ylo[i] + h10*h*yplo[i] + h01*yhi[i] + h11*h*yphi[i]
		}
		return
	}
	d00 := (6.0*σ*σ - 6.0*σ) / h
	d10 := 3.0*σ*σ - 4.0*σ + 1.0
	d01 := (-6.0*σ*σ + 6.0*σ) / h
	d11 := 3.0*σ*σ - 2.0*σ
	for i := range res {
		res[i] = d00*ylo[i] + d10*yplo[i] + d01*yhi[i] + d11*yphi[i]
	}
}

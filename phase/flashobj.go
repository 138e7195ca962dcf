// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phase

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// flash tolerances
const (
	flashGtol    = 1e-3  // gradient tolerance of the split minimisation
	flashNmaxIt  = 100   // iteration cap of the split minimisation
	flashBackoff = 0.9   // safety factor keeping iterates strictly interior
	initSatMax   = 0.25  // largest trial saturation of the initial search
	initNsteps   = 200   // contraction steps of the initial search
	initFactor   = 0.5   // geometric contraction factor
	initThresh   = -1e-7 // ΔA below which a trial state is accepted
)

// FlashObjective computes the Helmholtz free-energy difference ΔA between
// a two-phase configuration and the one-phase base state, parameterised by
// the split vector x ∈ ℝ^{c+1}:
//  x[i] = N′i/Ni (i < c),  x[c] = V′/V
// The gradient is
//  g[i] = Ni·RT·(loga′i − loga″i),  g[c] = V·(p″ − p′)
// with loga = lnφ + ln(N/V), and the energy follows from integrating the
// gradient along a linear path from the base state:
//  ΔA = ⟨g, x⟩ + (pBase − p″)·V − Σi Ni·RT·(logaBase,i − loga″i)
// The objective owns all scratch buffers; one instance serves a whole
// flash call
type FlashObjective struct {

	// input
	mdl Model
	n   []float64
	v   float64
	rt  float64

	// base state
	logaBase []float64 // lnφ(N,V,RT) + ln(N/V)
	pBase    float64

	// scratch
	n1, n2       []float64
	loga1, loga2 []float64
}

// NewFlashObjective precomputes the base-state data. An infeasible base
// state surfaces the equation-of-state domain error immediately
func NewFlashObjective(mdl Model, n []float64, v, rt float64) (o *FlashObjective, err error) {
	nc := mdl.NumComponents()
	o = &FlashObjective{
		mdl:      mdl,
		n:        n,
		v:        v,
		rt:       rt,
		logaBase: make([]float64, nc),
		n1:       make([]float64, nc),
		n2:       make([]float64, nc),
		loga1:    make([]float64, nc),
		loga2:    make([]float64, nc),
	}
	err = mdl.LogActivity(o.logaBase, n, v, rt)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nc; i++ {
		o.logaBase[i] += math.Log(n[i] / v)
	}
	o.pBase = mdl.Pressure(n, v, rt)
	return
}

// split maps the state vector to the two phases
func (o *FlashObjective) split(x []float64) (v1, v2 float64, err error) {
	nc := len(o.n)
	for i := 0; i < nc; i++ {
		if x[i] <= 0 || x[i] >= 1 {
			return 0, 0, chk.Err("split fraction x[%d]=%g is outside (0,1)", i, x[i])
		}
		o.n1[i] = o.n[i] * x[i]
		o.n2[i] = o.n[i] - o.n1[i]
	}
	if x[nc] <= 0 || x[nc] >= 1 {
		return 0, 0, chk.Err("volume fraction x[%d]=%g is outside (0,1)", nc, x[nc])
	}
	v1 = o.v * x[nc]
	v2 = o.v - v1
	return
}

// Eval computes ΔA(x) filling grad in place
func (o *FlashObjective) Eval(x, grad []float64) (res float64, err error) {
	nc := len(o.n)
	v1, v2, err := o.split(x)
	if err != nil {
		return math.NaN(), err
	}
	err = o.mdl.LogActivity(o.loga1, o.n1, v1, o.rt)
	if err != nil {
		return math.NaN(), err
	}
	err = o.mdl.LogActivity(o.loga2, o.n2, v2, o.rt)
	if err != nil {
		return math.NaN(), err
	}
	for i := 0; i < nc; i++ {
		o.loga1[i] += math.Log(o.n1[i] / v1)
		o.loga2[i] += math.Log(o.n2[i] / v2)
	}
	p1 := o.mdl.Pressure(o.n1, v1, o.rt)
	p2 := o.mdl.Pressure(o.n2, v2, o.rt)
	for i := 0; i < nc; i++ {
		grad[i] = o.n[i] * o.rt * (o.loga1[i] - o.loga2[i])
		res += grad[i] * x[i]
	}
	grad[nc] = o.v * (p2 - p1)
	res += grad[nc] * x[nc]
	res += (o.pBase - p2) * o.v
	for i := 0; i < nc; i++ {
		res -= o.n[i] * o.rt * (o.logaBase[i] - o.loga2[i])
	}
	return
}

// MaxStep returns 0.9 of the largest α keeping x + α·d strictly inside
// 0 < xi < 1 and the phase-1 covolume bound Σxi·Ni·bi < x[c]·V. The
// symmetric phase-2 bound holds by complementarity. When no finite positive
// step exists the return is zero, which marks a fatal step-computation
// failure
func (o *FlashObjective) MaxStep(x, d []float64) float64 {
	nc := len(o.n)
	bb := o.mdl.Covolume()
	α := math.Inf(1)
	xb, db := 0.0, 0.0
	for i := 0; i <= nc; i++ {
		if d[i] > 0 {
			α = math.Min(α, (1.0-x[i])/d[i])
		}
		if d[i] < 0 {
			α = math.Min(α, -x[i]/d[i])
		}
		if i < nc {
			xb += x[i] * o.n[i] * bb[i]
			db += d[i] * o.n[i] * bb[i]
		}
	}
	xb -= x[nc] * o.v
	db -= d[nc] * o.v
	if db > 0 {
		αcov := -xb / db
		if αcov > 0 {
			α = math.Min(α, αcov)
		}
	}
	if math.IsNaN(α) || math.IsInf(α, 1) || α <= 0 {
		return 0
	}
	return flashBackoff * α
}

// InitState locates a feasible starting split with ΔA below the
// acceptance threshold by contracting the saturation of the trial phase
// along the unstable direction ηBest found by the stability test:
//  x[i] = ηBest[i]·s·V/Ni,  x[c] = s,  s = satMax·0.5^k
// Equation-of-state domain failures are skipped; exhaustion of all
// contraction steps is fatal
func (o *FlashObjective) InitState(ηBest []float64) (x []float64, err error) {
	nc := len(o.n)
	x = make([]float64, nc+1)
	grad := make([]float64, nc+1)
	s := initSatMax
	for k := 0; k < initNsteps; k++ {
		for i := 0; i < nc; i++ {
			x[i] = ηBest[i] * s * o.v / o.n[i]
		}
		x[nc] = s
		res, e := o.Eval(x, grad)
		if e == nil && !math.IsNaN(res) && !math.IsInf(res, 0) && res < initThresh {
			return x, nil
		}
		s *= initFactor
	}
	return nil, chk.Err("initial two-phase state not found after %d contractions", initNsteps)
}

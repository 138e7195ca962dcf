// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phase

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/vvpisarev/CubicEoS/opt"
)

// stability tolerances
const (
	stabThreshold = -1e-5 // tangent-plane distance below which the parent is unstable
	stabGtol      = 1e-3  // gradient tolerance of the trial minimisations
	stabNmaxIt    = 1000  // iteration cap of the trial minimisations
)

// StabilityTry records one trial-phase minimisation of the tangent-plane
// distance
type StabilityTry struct {
	Eta         []float64 // trial concentration at the minimum [mol/m³]
	D           float64   // tangent-plane distance at the minimum
	LocalStable bool      // this try did not prove instability
}

// StabilityObjective computes the tangent-plane distance functional
//  D(η) = ⟨∇D(η), η⟩ − (p(η,1,RT) − pParent)/RT
//  ∇D(η) = lnφ(η,1,RT) + ln η − logaParent
// for a trial phase taken at unit volume. One objective is shared by all
// four stability tries; it owns the scratch buffers
type StabilityObjective struct {

	// input
	mdl Model
	rt  float64

	// base state
	logaParent []float64 // lnφ(N,V,RT) + ln(N/V)
	pParent    float64

	// scratch
	lnphi []float64
}

// NewStabilityObjective precomputes the parent-phase data
func NewStabilityObjective(mdl Model, n []float64, v, rt float64) (o *StabilityObjective, err error) {
	nc := mdl.NumComponents()
	o = &StabilityObjective{
		mdl:        mdl,
		rt:         rt,
		logaParent: make([]float64, nc),
		lnphi:      make([]float64, nc),
	}
	err = mdl.LogActivity(o.logaParent, n, v, rt)
	if err != nil {
		return nil, err
	}
	for i := 0; i < nc; i++ {
		o.logaParent[i] += math.Log(n[i] / v)
	}
	o.pParent = mdl.Pressure(n, v, rt)
	return
}

// Eval computes D(η) filling grad in place
func (o *StabilityObjective) Eval(η, grad []float64) (res float64, err error) {
	for i, c := range η {
		if c <= 0 {
			return math.NaN(), chk.Err("trial concentration η[%d]=%g is not positive", i, c)
		}
	}
	err = o.mdl.LogActivity(o.lnphi, η, 1.0, o.rt)
	if err != nil {
		return math.NaN(), err
	}
	for i := range η {
		grad[i] = o.lnphi[i] + math.Log(η[i]) - o.logaParent[i]
		res += grad[i] * η[i]
	}
	p := o.mdl.Pressure(η, 1.0, o.rt)
	res -= (p - o.pParent) / o.rt
	return
}

// MaxStep returns the largest α keeping η + α·d strictly positive and
// inside the unit-volume covolume bound Σbi·ηi < 1. No safety back-off is
// applied: the line search absorbs boundary-touching trials
func (o *StabilityObjective) MaxStep(η, d []float64) float64 {
	α := math.Inf(1)
	bb := o.mdl.Covolume()
	ηb, db := 0.0, 0.0
	for i := range η {
		if d[i] < 0 {
			α = math.Min(α, -η[i]/d[i])
		}
		ηb += η[i] * bb[i]
		db += d[i] * bb[i]
	}
	if db > 0 {
		α = math.Min(α, (1.0-ηb)/db)
	}
	return α
}

// Stability runs the VT-stability test on the state (N, V, RT). It
// minimises the tangent-plane distance from four Wilson-seeded starting
// concentrations (parent-gas and parent-liquid seeds, each resolved
// through the gas and the liquid compressibility root) and exits early on
// the first minimum below the instability threshold. All executed tries
// are returned so the flash initializer can reuse the winner
func Stability(mdl Model, n []float64, v, rt float64) (stable bool, tries []StabilityTry, err error) {

	err = checkState(mdl, n, v, rt)
	if err != nil {
		return
	}
	obj, err := NewStabilityObjective(mdl, n, v, rt)
	if err != nil {
		return
	}

	// Wilson seeds
	nc := mdl.NumComponents()
	psat := make([]float64, nc)
	mdl.WilsonPsat(psat, rt)
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}

	// parent-gas seed: p = ⟨psat, z⟩ with z = N/ΣN
	ηgas := make([]float64, nc)
	pgas := 0.0
	for i := 0; i < nc; i++ {
		pgas += psat[i] * n[i] / ntot
	}
	for i := 0; i < nc; i++ {
		ηgas[i] = n[i] * psat[i] / pgas
	}

	// parent-liquid seed: η ∝ N/psat, p = ⟨psat, η⟩
	ηliq := make([]float64, nc)
	sliq := 0.0
	for i := 0; i < nc; i++ {
		ηliq[i] = n[i] / psat[i]
		sliq += ηliq[i]
	}
	pliq := 0.0
	for i := 0; i < nc; i++ {
		ηliq[i] /= sliq
		pliq += psat[i] * ηliq[i]
	}

	// four tries in fixed order
	seeds := []struct {
		η     []float64
		pInit float64
		gas   bool
	}{
		{ηgas, pgas, true},
		{ηgas, pgas, false},
		{ηliq, pliq, true},
		{ηliq, pliq, false},
	}

	η := make([]float64, nc)
	hess := la.MatAlloc(nc, nc)
	lnphi := make([]float64, nc)
	nan := 0
	for _, seed := range seeds {
		try := runStabilityTry(mdl, obj, seed.η, seed.pInit, rt, seed.gas, η, hess, lnphi)
		tries = append(tries, try)
		if math.IsNaN(try.D) {
			nan++
			continue
		}
		if try.D < stabThreshold {
			// unstable; skip the remaining seeds
			return false, tries, nil
		}
	}
	if nan == len(seeds) {
		return false, tries, chk.Err("stability test failed: all %d tries returned NaN", nan)
	}
	return true, tries, nil
}

// runStabilityTry scales the seed through the selected compressibility
// root and minimises the tangent-plane distance from there. Failures are
// reported as a NaN-distance try
func runStabilityTry(mdl Model, obj *StabilityObjective, η0 []float64, pInit, rt float64, gas bool, η []float64, hess [][]float64, lnphi []float64) (try StabilityTry) {

	nc := len(η0)
	try.D = math.NaN()
	try.LocalStable = true

	z, err := mdl.Compressibility(η0, pInit, rt, gas)
	if err != nil {
		return
	}
	s0 := 0.0
	for _, c := range η0 {
		s0 += c
	}
	for i := 0; i < nc; i++ {
		η[i] = η0[i] * pInit / (z * rt * s0)
	}

	// curvature at the seed: ∂²D/∂η² = ∂lnφ/∂η + diag(1/η)
	err = mdl.LogActivityJac(lnphi, hess, η, 1.0, rt)
	if err != nil {
		return
	}
	for i := 0; i < nc; i++ {
		hess[i][i] += 1.0 / η[i]
	}

	var sol opt.BFGS
	sol.Init(nc)
	sol.Gtol = stabGtol
	sol.NmaxIt = stabNmaxIt
	sol.ConstrainStep = obj.MaxStep
	sol.SetHessian(hess)

	d, err := sol.Min(obj.Eval, η)
	if err != nil {
		return
	}
	try.Eta = make([]float64, nc)
	copy(try.Eta, η)
	try.D = d
	try.LocalStable = !(d < stabThreshold)
	return
}

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

// Result holds the outcome of a flash computation. On a two-phase result
// phase 1 is the gas phase (higher compressibility factor); on a
// single-phase result phase 1 carries the whole system and phase 2 is
// zero. The two branches are mutually exclusive
type Result struct {
	Converged   bool      // the split minimisation reached its gradient tolerance
	SinglePhase bool      // the system is stable as one phase
	RT          float64   // thermal parameter of the computation
	N1          []float64 // phase-1 molar amounts [mol]
	V1          float64   // phase-1 volume [m³]
	N2          []float64 // phase-2 molar amounts [mol]
	V2          float64   // phase-2 volume [m³]
}

// Flash decides whether the system (N, V, RT) is stable as a single phase
// and, if not, computes the two-phase split minimising the Helmholtz free
// energy under mass and volume conservation. The split minimisation is
// seeded by the stability trial with the lowest tangent-plane distance and
// preconditioned with the exact Hessian of ΔA at the starting state
func Flash(mdl Model, n []float64, v, rt float64) (res Result, err error) {

	err = checkState(mdl, n, v, rt)
	if err != nil {
		return
	}
	nc := mdl.NumComponents()
	res.RT = rt

	// stability
	stable, tries, err := Stability(mdl, n, v, rt)
	if err != nil {
		return
	}
	if stable {
		res.Converged = true
		res.SinglePhase = true
		res.N1 = make([]float64, nc)
		copy(res.N1, n)
		res.V1 = v
		res.N2 = make([]float64, nc)
		return
	}

	// unstable direction with the lowest tangent-plane distance
	ηBest := bestTry(tries)
	if ηBest == nil {
		return res, chk.Err("stability reported instability but no usable try")
	}

	// initial split state
	obj, err := NewFlashObjective(mdl, n, v, rt)
	if err != nil {
		return
	}
	x, err := obj.InitState(ηBest)
	if err != nil {
		return
	}

	// exact Hessian preconditioner at the starting state
	hess := la.MatAlloc(nc+1, nc+1)
	asm := NewFlashHessian(mdl, n, v, rt)
	err = asm.Assemble(hess, x)
	if err != nil {
		return
	}

	// split minimisation
	var sol opt.BFGS
	sol.Init(nc + 1)
	sol.Gtol = flashGtol
	sol.NmaxIt = flashNmaxIt
	sol.ConstrainStep = obj.MaxStep
	sol.SetHessian(hess)
	_, err = sol.Min(obj.Eval, x)
	if err != nil {
		return
	}
	res.Converged = sol.Converged

	// extract the split
	res.N1 = make([]float64, nc)
	res.N2 = make([]float64, nc)
	for i := 0; i < nc; i++ {
		res.N1[i] = n[i] * x[i]
		res.N2[i] = n[i] - res.N1[i]
	}
	res.V1 = v * x[nc]
	res.V2 = v - res.V1

	// phase 1 is the gas phase: Z = p·V/(ΣN·RT)
	z1 := zFactor(mdl, res.N1, res.V1, rt)
	z2 := zFactor(mdl, res.N2, res.V2, rt)
	if z2 > z1 {
		res.N1, res.N2 = res.N2, res.N1
		res.V1, res.V2 = res.V2, res.V1
	}
	return
}

// bestTry returns the concentration of the lowest-distance usable try
func bestTry(tries []StabilityTry) (η []float64) {
	best := math.Inf(1)
	for _, try := range tries {
		if try.Eta == nil || math.IsNaN(try.D) {
			continue
		}
		if try.D < best {
			best = try.D
			η = try.Eta
		}
	}
	return
}

// zFactor computes the compressibility factor of a phase
func zFactor(mdl Model, n []float64, v, rt float64) float64 {
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	return mdl.Pressure(n, v, rt) * v / (ntot * rt)
}

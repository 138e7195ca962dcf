// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package phase implements isochoric-isothermal (VT) phase-equilibrium
// computations: a tangent-plane-distance stability test and a two-phase
// split minimising the Helmholtz free energy
//  References:
//   [1] Michelsen ML (1982) The isothermal flash problem. Part I.
//       Stability. Fluid Phase Equilibria, 9(1) 1-19
//   [2] Mikyska J and Firoozabadi A (2012) Investigation of mixture
//       stability at given volume, temperature, and number of moles.
//       Fluid Phase Equilibria, 321 1-9
package phase

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Model defines the equation-of-state capabilities consumed by the
// stability and flash drivers. eos.Mixture implements this interface;
// alternative cubic models may be inserted without touching the drivers.
// All operations are pure in their inputs; output buffers are caller-owned
type Model interface {

	// NumComponents returns the number of components
	NumComponents() int

	// Covolume returns the per-component covolume vector b
	Covolume() []float64

	// Pressure computes p(N,V,RT)
	Pressure(n []float64, v, rt float64) float64

	// LogActivity fills res with the residual ln φi(N,V,RT); an error
	// marks the state as infeasible for the equation of state
	LogActivity(res []float64, n []float64, v, rt float64) error

	// LogActivityJac fills res with ln φ and jac with ∂lnφi/∂Nj at
	// fixed V, RT
	LogActivityJac(res []float64, jac [][]float64, n []float64, v, rt float64) error

	// PressureGrad fills dpdn with ∂p/∂Ni and returns ∂p/∂V
	PressureGrad(dpdn []float64, n []float64, v, rt float64) (dpdv float64, err error)

	// Compressibility returns Z from the gas (largest) or liquid
	// (smallest) root of the pressure equation
	Compressibility(n []float64, p, rt float64, gas bool) (z float64, err error)

	// WilsonPsat fills psat with the Wilson saturation-pressure
	// correlation of each component
	WilsonPsat(psat []float64, rt float64)
}

// checkState validates a thermodynamic state (N, V, RT)
func checkState(mdl Model, n []float64, v, rt float64) error {
	if len(n) != mdl.NumComponents() {
		return chk.Err("composition has %d entries but mixture has %d components", len(n), mdl.NumComponents())
	}
	if v <= 0 || rt <= 0 {
		return chk.Err("volume and RT must be positive: V=%g, RT=%g", v, rt)
	}
	bcov := 0.0
	for i, ni := range n {
		if ni <= 0 || math.IsNaN(ni) {
			return chk.Err("molar amounts must be positive: N[%d]=%g", i, ni)
		}
		bcov += ni * mdl.Covolume()[i]
	}
	if v <= bcov {
		return chk.Err("volume %g is below the mixture covolume %g", v, bcov)
	}
	return nil
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package eos implements the Brusilovsky cubic equation of state for
// multicomponent fluid mixtures
//  References:
//   [1] Brusilovsky AI (1992) Mathematical simulation of phase behavior of
//       natural multicomponent systems at high pressures with an equation
//       of state. SPE Reservoir Engineering, 7(1) 117-122
//       http://dx.doi.org/10.2118/20180-PA
//   [2] Wilson GM (1969) A modified Redlich-Kwong equation of state,
//       application to general physical data calculations. 65th National
//       AIChE Meeting, Cleveland, OH
package eos

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/fun/dbf"
)

// GasConst is the universal gas constant R [J/(mol·K)]
const GasConst = 8.314462618

// Substance holds the Brusilovsky coefficients of one pure component.
// All quantities are in SI units: Pa, m³/mol, J/mol, kg/mol
type Substance struct {

	// identification
	Name string // substance key

	// EoS coefficients (see [1])
	Ac  float64 // critical attraction coefficient aᶜ [Pa·m⁶/mol²]
	B   float64 // covolume b [m³/mol]
	C   float64 // volume shift c [m³/mol]
	D   float64 // volume shift d [m³/mol]
	Psi float64 // primary coefficient Ψ of the α-function [-]

	// critical point and correlation data
	Pc       float64 // critical pressure [Pa]
	RTc      float64 // gas constant times critical temperature [J/mol]
	Acentric float64 // Pitzer acentric factor ω [-]
	Molar    float64 // molar mass [kg/mol]
}

// Init initialises substance from parameters
func (o *Substance) Init(name string, prms dbf.Params) (err error) {
	o.Name = name
	for _, p := range prms {
		switch p.N {
		case "ac":
			o.Ac = p.V
		case "b":
			o.B = p.V
		case "c":
			o.C = p.V
		case "d":
			o.D = p.V
		case "psi":
			o.Psi = p.V
		case "Pc":
			o.Pc = p.V
		case "RTc":
			o.RTc = p.V
		case "acentric":
			o.Acentric = p.V
		case "molar":
			o.Molar = p.V
		default:
			return chk.Err("substance %q: parameter named %q is incorrect", name, p.N)
		}
	}
	if o.B <= 0 {
		return chk.Err("substance %q: covolume b must be positive", name)
	}
	if o.Pc <= 0 || o.RTc <= 0 {
		return chk.Err("substance %q: critical point (Pc, RTc) must be positive", name)
	}
	return
}

// GetPrms gets current parameters
func (o Substance) GetPrms() dbf.Params {
	return []*fun.P{
		&fun.P{N: "ac", V: o.Ac},
		&fun.P{N: "b", V: o.B},
		&fun.P{N: "c", V: o.C},
		&fun.P{N: "d", V: o.D},
		&fun.P{N: "psi", V: o.Psi},
		&fun.P{N: "Pc", V: o.Pc},
		&fun.P{N: "RTc", V: o.RTc},
		&fun.P{N: "acentric", V: o.Acentric},
		&fun.P{N: "molar", V: o.Molar},
	}
}

// Ai computes the attraction coefficient at thermal parameter RT:
//  a(RT) = aᶜ·[1 + Ψ·(1 − √(RT/RTc))]²
func (o Substance) Ai(rt float64) float64 {
	s := 1.0 + o.Psi*(1.0-math.Sqrt(rt/o.RTc))
	return o.Ac * s * s
}

// WilsonPsat computes the Wilson correlation for the saturation pressure:
//  psat(RT) = Pc·exp(5.373·(1+ω)·(1 − RTc/RT))
func (o Substance) WilsonPsat(rt float64) float64 {
	return o.Pc * math.Exp(5.373*(1.0+o.Acentric)*(1.0-o.RTc/rt))
}

// GetSubstance returns a catalog substance with fitted Brusilovsky
// coefficients [1]
func GetSubstance(name string) (o *Substance, err error) {
	prms, ok := catalog[name]
	if !ok {
		return nil, chk.Err("substance %q is not available in catalog", name)
	}
	o = new(Substance)
	err = o.Init(name, prms)
	return
}

// catalog holds fitted parameters of common substances. Coefficients are
// from [1]; critical data from NIST
var catalog = map[string]dbf.Params{
	"methane": {
		&fun.P{N: "ac", V: 0.231752},
		&fun.P{N: "b", V: 4.2452e-5},
		&fun.P{N: "c", V: 1.1912e-5},
		&fun.P{N: "d", V: 3.7536e-5},
		&fun.P{N: "psi", V: 0.37447},
		&fun.P{N: "Pc", V: 4.5992e6},
		&fun.P{N: "RTc", V: GasConst * 190.564},
		&fun.P{N: "acentric", V: 0.01142},
		&fun.P{N: "molar", V: 0.016043},
	},
	"nitrogen": {
		&fun.P{N: "ac", V: 0.136902},
		&fun.P{N: "b", V: 3.1270e-5},
		&fun.P{N: "c", V: 8.6385e-6},
		&fun.P{N: "d", V: 2.8147e-5},
		&fun.P{N: "psi", V: 0.37182},
		&fun.P{N: "Pc", V: 3.3958e6},
		&fun.P{N: "RTc", V: GasConst * 126.192},
		&fun.P{N: "acentric", V: 0.0372},
		&fun.P{N: "molar", V: 0.0280134},
	},
	"carbon-dioxide": {
		&fun.P{N: "ac", V: 0.396716},
		&fun.P{N: "b", V: 2.6845e-5},
		&fun.P{N: "c", V: 2.2574e-5},
		&fun.P{N: "d", V: 1.9551e-5},
		&fun.P{N: "psi", V: 0.74212},
		&fun.P{N: "Pc", V: 7.3773e6},
		&fun.P{N: "RTc", V: GasConst * 304.128},
		&fun.P{N: "acentric", V: 0.22394},
		&fun.P{N: "molar", V: 0.0440095},
	},
	"n-pentane": {
		&fun.P{N: "ac", V: 2.32681},
		&fun.P{N: "b", V: 1.01234e-4},
		&fun.P{N: "c", V: 5.3641e-5},
		&fun.P{N: "d", V: 8.7903e-5},
		&fun.P{N: "psi", V: 0.79858},
		&fun.P{N: "Pc", V: 3.370e6},
		&fun.P{N: "RTc", V: GasConst * 469.7},
		&fun.P{N: "acentric", V: 0.2515},
		&fun.P{N: "molar", V: 0.0721488},
	},
	"n-decane": {
		&fun.P{N: "ac", V: 5.74838},
		&fun.P{N: "b", V: 1.98541e-4},
		&fun.P{N: "c", V: 9.4163e-5},
		&fun.P{N: "d", V: 1.71942e-4},
		&fun.P{N: "psi", V: 1.07023},
		&fun.P{N: "Pc", V: 2.103e6},
		&fun.P{N: "RTc", V: GasConst * 617.7},
		&fun.P{N: "acentric", V: 0.4923},
		&fun.P{N: "molar", V: 0.1422817},
	},
}

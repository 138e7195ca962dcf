// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eos

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Mixture holds an ordered set of substances and their binary interaction
// coefficients. The three symmetric matrices are combined at temperature
// T = RT/R into
//  kij(T) = Kconst[i][j] + Klin[i][j]·T + Kquad[i][j]·T²
//  aij(RT) = (1 − kij)·√(ai(RT)·aj(RT))
// Mixture data is read-only after Init and may be shared among concurrent
// callers
type Mixture struct {

	// components
	Subs []*Substance // ordered substances

	// binary interaction coefficients
	Kconst [][]float64 // constant coefficients
	Klin   [][]float64 // linear-in-T coefficients [1/K]
	Kquad  [][]float64 // quadratic-in-T coefficients [1/K²]

	// derived
	bb []float64 // per-component covolumes
	cc []float64 // per-component c shifts
	dd []float64 // per-component d shifts
}

// NewMixture returns a mixture of substances. Nil interaction matrices
// stand for zero coefficients
func NewMixture(subs []*Substance, kconst, klin, kquad [][]float64) (o *Mixture, err error) {
	nc := len(subs)
	if nc < 1 {
		return nil, chk.Err("mixture needs at least one substance")
	}
	o = &Mixture{Subs: subs}
	o.Kconst, err = checkInteraction("constant", kconst, nc)
	if err != nil {
		return nil, err
	}
	o.Klin, err = checkInteraction("linear", klin, nc)
	if err != nil {
		return nil, err
	}
	o.Kquad, err = checkInteraction("quadratic", kquad, nc)
	if err != nil {
		return nil, err
	}
	o.bb = make([]float64, nc)
	o.cc = make([]float64, nc)
	o.dd = make([]float64, nc)
	for i, s := range subs {
		o.bb[i] = s.B
		o.cc[i] = s.C
		o.dd[i] = s.D
	}
	return
}

// checkInteraction validates one interaction matrix
func checkInteraction(name string, k [][]float64, nc int) ([][]float64, error) {
	if k == nil {
		return la.MatAlloc(nc, nc), nil
	}
	if len(k) != nc {
		return nil, chk.Err("%s interaction matrix must be %d×%d", name, nc, nc)
	}
	for i := 0; i < nc; i++ {
		if len(k[i]) != nc {
			return nil, chk.Err("%s interaction matrix must be %d×%d", name, nc, nc)
		}
		for j := i + 1; j < nc; j++ {
			if k[i][j] != k[j][i] {
				return nil, chk.Err("%s interaction matrix must be symmetric", name)
			}
		}
	}
	return k, nil
}

// NumComponents returns the number of components
func (o *Mixture) NumComponents() int {
	return len(o.Subs)
}

// Covolume returns the per-component covolume vector b
func (o *Mixture) Covolume() []float64 {
	return o.bb
}

// Kij computes the combined interaction coefficient of pair (i,j) at RT
func (o *Mixture) Kij(i, j int, rt float64) float64 {
	t := rt / GasConst
	return o.Kconst[i][j] + o.Klin[i][j]*t + o.Kquad[i][j]*t*t
}

// EosParams computes the aggregates of the equation of state at (N, RT):
//  A = Σij Ni·Nj·aij   B = Σi Ni·bi   C = Σi Ni·ci   D = Σi Ni·di
// and the pair matrix aij(RT)
func (o *Mixture) EosParams(n []float64, rt float64) (pA, pB, pC, pD float64, aij [][]float64) {
	nc := len(o.Subs)
	aij = la.MatAlloc(nc, nc)
	ai := make([]float64, nc)
	for i, s := range o.Subs {
		ai[i] = s.Ai(rt)
		pB += n[i] * o.bb[i]
		pC += n[i] * o.cc[i]
		pD += n[i] * o.dd[i]
	}
	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			aij[i][j] = (1.0 - o.Kij(i, j, rt)) * math.Sqrt(ai[i]*ai[j])
			pA += n[i] * n[j] * aij[i][j]
		}
	}
	return
}

// aggregates computes A, B, C, D and the gradient Ai = ∂A/∂Ni = 2·Σj aij·Nj
// using the caller-provided buffer dA (len nc; may be nil to skip)
func (o *Mixture) aggregates(n []float64, rt float64, dA []float64) (pA, pB, pC, pD float64) {
	nc := len(o.Subs)
	ai := make([]float64, nc)
	for i, s := range o.Subs {
		ai[i] = s.Ai(rt)
		pB += n[i] * o.bb[i]
		pC += n[i] * o.cc[i]
		pD += n[i] * o.dd[i]
	}
	for i := 0; i < nc; i++ {
		sum := 0.0
		for j := 0; j < nc; j++ {
			sum += n[j] * (1.0 - o.Kij(i, j, rt)) * math.Sqrt(ai[i]*ai[j])
		}
		pA += n[i] * sum
		if dA != nil {
			dA[i] = 2.0 * sum
		}
	}
	return
}

// Pressure computes the Brusilovsky pressure
//  p(N,V,RT) = ΣN·RT/(V−B) − A/((V+C)(V+D))
func (o *Mixture) Pressure(n []float64, v, rt float64) float64 {
	pA, pB, pC, pD := o.aggregates(n, rt, nil)
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	return ntot*rt/(v-pB) - pA/((v+pC)*(v+pD))
}

// ResidualHelmholtz computes the residual Helmholtz free energy
//  Ares(N,V,RT) = ΣN·RT·ln(V/(V−B)) + A/(C−D)·ln((V+D)/(V+C))
func (o *Mixture) ResidualHelmholtz(n []float64, v, rt float64) float64 {
	pA, pB, pC, pD := o.aggregates(n, rt, nil)
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	return ntot*rt*math.Log(v/(v-pB)) + pA/(pC-pD)*math.Log((v+pD)/(v+pC))
}

// LogActivity computes the residual log-activity coefficients
//  ln φi = (∂Ares/∂Ni)/RT  at fixed V, RT
// filling the caller-owned vector res (len nc)
func (o *Mixture) LogActivity(res []float64, n []float64, v, rt float64) (err error) {
	nc := len(o.Subs)
	dA := make([]float64, nc)
	pA, pB, pC, pD := o.aggregates(n, rt, dA)
	if v-pB <= 0 {
		return chk.Err("volume %g is below covolume %g", v, pB)
	}
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	q := pC - pD
	el := math.Log((v + pD) / (v + pC))
	lrep := math.Log(v / (v - pB))
	for i := 0; i < nc; i++ {
		res[i] = lrep + ntot*o.bb[i]/(v-pB) +
			((dA[i]/q-pA*(o.cc[i]-o.dd[i])/(q*q))*el+
				pA/q*(o.dd[i]/(v+pD)-o.cc[i]/(v+pC)))/rt
	}
	return
}

// LogActivityJac computes ln φ and its Jacobian ∂lnφi/∂Nj at fixed V, RT,
// filling the caller-owned res (len nc) and jac (nc×nc). The Jacobian is
// symmetric
func (o *Mixture) LogActivityJac(res []float64, jac [][]float64, n []float64, v, rt float64) (err error) {
	nc := len(o.Subs)
	dA := make([]float64, nc)
	ai := make([]float64, nc)
	for i, s := range o.Subs {
		ai[i] = s.Ai(rt)
	}
	pA, pB, pC, pD := o.aggregates(n, rt, dA)
	if v-pB <= 0 {
		return chk.Err("volume %g is below covolume %g", v, pB)
	}
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	q := pC - pD
	el := math.Log((v + pD) / (v + pC))
	lrep := math.Log(v / (v - pB))
	for i := 0; i < nc; i++ {
		gi := o.dd[i]/(v+pD) - o.cc[i]/(v+pC)
		res[i] = lrep + ntot*o.bb[i]/(v-pB) +
			((dA[i]/q-pA*(o.cc[i]-o.dd[i])/(q*q))*el+pA/q*gi)/rt
		for j := 0; j <= i; j++ {
			aij := (1.0 - o.Kij(i, j, rt)) * math.Sqrt(ai[i]*ai[j])
			qi := o.cc[i] - o.dd[i]
			qj := o.cc[j] - o.dd[j]
			gj := o.dd[j]/(v+pD) - o.cc[j]/(v+pC)
			rep := o.bb[j]/(v-pB) + o.bb[i]/(v-pB) + ntot*o.bb[i]*o.bb[j]/((v-pB)*(v-pB))
			att := (2.0*aij/q-(dA[i]*qj+dA[j]*qi)/(q*q)+2.0*pA*qi*qj/(q*q*q))*el +
				(dA[i]/q-pA*qi/(q*q))*gj +
				(dA[j]/q-pA*qj/(q*q))*gi +
				pA/q*(o.cc[i]*o.cc[j]/((v+pC)*(v+pC))-o.dd[i]*o.dd[j]/((v+pD)*(v+pD)))
			jac[i][j] = rep + att/rt
			jac[j][i] = jac[i][j]
		}
	}
	return
}

// PressureGrad computes the pressure gradient at fixed RT:
//  dpdn[i] = ∂p/∂Ni  and the returned dpdv = ∂p/∂V
// from the equation-of-state aggregates by direct differentiation
func (o *Mixture) PressureGrad(dpdn []float64, n []float64, v, rt float64) (dpdv float64, err error) {
	nc := len(o.Subs)
	dA := make([]float64, nc)
	pA, pB, pC, pD := o.aggregates(n, rt, dA)
	if v-pB <= 0 {
		return 0, chk.Err("volume %g is below covolume %g", v, pB)
	}
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	vb := v - pB
	vc := v + pC
	vd := v + pD
	for i := 0; i < nc; i++ {
		dpdn[i] = rt/vb + ntot*rt*o.bb[i]/(vb*vb) - dA[i]/(vc*vd) +
			pA*(o.cc[i]/(vc*vc*vd)+o.dd[i]/(vc*vd*vd))
	}
	dpdv = -ntot*rt/(vb*vb) + pA*(1.0/(vc*vc*vd)+1.0/(vc*vd*vd))
	return
}

// WilsonPsat fills the caller-owned vector psat with the Wilson saturation
// pressures of all components at RT
func (o *Mixture) WilsonPsat(psat []float64, rt float64) {
	for i, s := range o.Subs {
		psat[i] = s.WilsonPsat(rt)
	}
}

// Compressibility selects the gas (largest) or liquid (smallest) volume
// root of the pressure cubic at given (N, p, RT) and returns the
// compressibility factor Z = p·V/(ΣN·RT)
func (o *Mixture) Compressibility(n []float64, p, rt float64, gas bool) (z float64, err error) {
	pA, pB, pC, pD := o.aggregates(n, rt, nil)
	ntot := 0.0
	for _, ni := range n {
		ntot += ni
	}
	nrt := ntot * rt

	// cubic in V: p·(V−B)(V+C)(V+D) − ΣN·RT·(V+C)(V+D) + A·(V−B) = 0
	c3 := p
	c2 := p*(pC+pD-pB) - nrt
	c1 := p*(pC*pD-pB*(pC+pD)) - nrt*(pC+pD) + pA
	c0 := -p*pB*pC*pD - nrt*pC*pD - pA*pB

	roots, nr := SolveCubic(c3, c2, c1, c0)
	vsel := math.NaN()
	for k := 0; k < nr; k++ {
		if roots[k] <= pB {
			continue
		}
		if math.IsNaN(vsel) {
			vsel = roots[k]
			continue
		}
		if gas && roots[k] > vsel {
			vsel = roots[k]
		}
		if !gas && roots[k] < vsel {
			vsel = roots[k]
		}
	}
	if math.IsNaN(vsel) {
		return 0, chk.Err("no physical root of the cubic at p=%g, RT=%g", p, rt)
	}
	return p * vsel / nrt, nil
}

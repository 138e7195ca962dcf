// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phase

import (
	"github.com/cpmech/gosl/la"
)

// FlashHessian assembles the exact (c+1)×(c+1) Hessian of the Helmholtz
// difference ΔA at a state x, used to precondition the split minimisation.
// With J = ∂lnφ/∂N at fixed V, RT and primes marking the two phases:
//  H[i][j] = RT·Ni·Nj·(J′ij + J″ij) + δij·RT·Ni²·(1/N′i + 1/N″i)
//  H[i][c] = −V·Ni·(∂p/∂Ni|′ + ∂p/∂Ni|″)
//  H[c][c] = −V²·(∂p/∂V|′ + ∂p/∂V|″)
// The diagonal δij term is the ideal part of the chemical potential, which
// the residual-only Jacobian of the model does not carry. Buffers are
// owned by the assembler and reused across calls
type FlashHessian struct {

	// input
	mdl Model
	n   []float64
	v   float64
	rt  float64

	// scratch
	n1, n2       []float64
	jac1, jac2   [][]float64
	dpdn1, dpdn2 []float64
	lnphi        []float64
}

// NewFlashHessian allocates the assembler
func NewFlashHessian(mdl Model, n []float64, v, rt float64) (o *FlashHessian) {
	nc := mdl.NumComponents()
	return &FlashHessian{
		mdl:   mdl,
		n:     n,
		v:     v,
		rt:    rt,
		n1:    make([]float64, nc),
		n2:    make([]float64, nc),
		jac1:  la.MatAlloc(nc, nc),
		jac2:  la.MatAlloc(nc, nc),
		dpdn1: make([]float64, nc),
		dpdn2: make([]float64, nc),
		lnphi: make([]float64, nc),
	}
}

// Assemble fills the caller-owned hess ((c+1)×(c+1)) with the Hessian at x
func (o *FlashHessian) Assemble(hess [][]float64, x []float64) (err error) {

	nc := len(o.n)
	for i := 0; i < nc; i++ {
		o.n1[i] = o.n[i] * x[i]
		o.n2[i] = o.n[i] - o.n1[i]
	}
	v1 := o.v * x[nc]
	v2 := o.v - v1

	err = o.mdl.LogActivityJac(o.lnphi, o.jac1, o.n1, v1, o.rt)
	if err != nil {
		return
	}
	err = o.mdl.LogActivityJac(o.lnphi, o.jac2, o.n2, v2, o.rt)
	if err != nil {
		return
	}
	dpdv1, err := o.mdl.PressureGrad(o.dpdn1, o.n1, v1, o.rt)
	if err != nil {
		return
	}
	dpdv2, err := o.mdl.PressureGrad(o.dpdn2, o.n2, v2, o.rt)
	if err != nil {
		return
	}

	for i := 0; i < nc; i++ {
		for j := 0; j < nc; j++ {
			hess[i][j] = o.rt * o.n[i] * o.n[j] * (o.jac1[i][j] + o.jac2[i][j])
		}
		hess[i][i] += o.rt * o.n[i] * o.n[i] * (1.0/o.n1[i] + 1.0/o.n2[i])
		hess[i][nc] = -o.v * o.n[i] * (o.dpdn1[i] + o.dpdn2[i])
		hess[nc][i] = hess[i][nc]
	}
	hess[nc][nc] = -o.v * o.v * (dpdv1 + dpdv2)
	return
}

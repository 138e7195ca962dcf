// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package opt implements a dense quasi-Newton minimiser with bounded steps
package opt

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// CholFactor holds the lower-triangular factor of a modified Cholesky
// factorization
//  L·Lᵀ = B + τ·I
// where τ ≥ 0 is zero when the plain factorization succeeds and otherwise
// the first value of an increasing, doubling sequence of inflations that
// renders the matrix positive definite
type CholFactor struct {
	L   [][]float64 // lower factor
	Tau float64     // diagonal inflation of the last Factor call
	n   int
}

// Init allocates the factor for n×n matrices
func (o *CholFactor) Init(n int) {
	o.n = n
	o.L = la.MatAlloc(n, n)
}

// Factor computes the modified factorization of the symmetric matrix a.
// a is not modified
func (o *CholFactor) Factor(a [][]float64) (err error) {

	// initial inflation from the most negative diagonal entry
	n := o.n
	dmin, dmax := a[0][0], math.Abs(a[0][0])
	for i := 1; i < n; i++ {
		dmin = math.Min(dmin, a[i][i])
		dmax = math.Max(dmax, math.Abs(a[i][i]))
	}
	if dmax == 0 {
		dmax = 1.0
	}
	β := 1e-3 * dmax
	τ := 0.0
	if dmin <= 0 {
		τ = β - dmin
	}

	for trial := 0; trial < 64; trial++ {
		if o.try(a, τ) {
			o.Tau = τ
			return
		}
		τ = math.Max(2.0*τ, β)
	}
	return chk.Err("modified Cholesky failed: matrix cannot be made positive definite (τ=%g)", τ)
}

// try attempts a plain Cholesky factorization of a + τI
func (o *CholFactor) try(a [][]float64, τ float64) bool {
	n := o.n
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			if i == j {
				sum += τ
			}
			for k := 0; k < j; k++ {
				sum -= o.L[i][k] * o.L[j][k]
			}
			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return false
				}
				o.L[i][i] = math.Sqrt(sum)
			} else {
				o.L[i][j] = sum / o.L[j][j]
			}
		}
	}
	return true
}

// Solve solves (L·Lᵀ)·x = b by forward and back substitution
func (o *CholFactor) Solve(x, b []float64) {
	n := o.n
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= o.L[i][k] * x[k]
		}
		x[i] = sum / o.L[i][i]
	}
	for i := n - 1; i >= 0; i-- {
		sum := x[i]
		for k := i + 1; k < n; k++ {
			sum -= o.L[k][i] * x[k]
		}
		x[i] = sum / o.L[i][i]
	}
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opt

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Objective evaluates the function at x, fills the gradient g in place and
// returns the value. An error marks x as infeasible
type Objective func(x, g []float64) (float64, error)

// BFGS minimises a smooth function subject to feasibility bounds imposed
// through a step limiter. It maintains a dense approximation B of the
// Hessian; search directions solve B·d = −g through a modified Cholesky
// factorization, so d is a descent direction even when B turns indefinite
// under the quasi-Newton updates
type BFGS struct {

	// configuration
	Gtol          float64                      // gradient ∞-norm tolerance
	NmaxIt        int                          // maximum number of iterations
	ConstrainStep func(x, d []float64) float64 // returns the largest feasible step along d; nil means unbounded
	LsNmaxIt      int                          // maximum number of line-search backtracks
	LsC1          float64                      // Armijo sufficient-decrease constant

	// results
	It        int     // number of iterations performed
	Converged bool    // gradient tolerance reached
	Fmin      float64 // objective value at the final iterate
	NumFeval  int     // number of objective evaluations

	// scratch
	ndim  int
	hess  [][]float64
	chol  CholFactor
	g     []float64
	gnew  []float64
	d     []float64
	xnew  []float64
	s     []float64
	y     []float64
	bs    []float64
	fresh bool // hessian was preloaded and not yet consumed
}

// Init allocates the minimiser for ndim variables and sets defaults
func (o *BFGS) Init(ndim int) {
	o.ndim = ndim
	o.Gtol = 1e-6
	o.NmaxIt = 200
	o.LsNmaxIt = 40
	o.LsC1 = 1e-4
	o.hess = la.MatAlloc(ndim, ndim)
	o.chol.Init(ndim)
	o.g = make([]float64, ndim)
	o.gnew = make([]float64, ndim)
	o.d = make([]float64, ndim)
	o.xnew = make([]float64, ndim)
	o.s = make([]float64, ndim)
	o.y = make([]float64, ndim)
	o.bs = make([]float64, ndim)
	o.resetIdentity()
}

// SetHessian preloads the curvature model with the matrix h (copied).
// The next Min call starts from this matrix and keeps updating it without
// resetting it to identity; a Min call with no SetHessian since the
// previous Min starts from the identity
func (o *BFGS) SetHessian(h [][]float64) {
	la.MatCopy(o.hess, 1, h)
	o.fresh = true
}

// resetIdentity sets the curvature model to the identity
func (o *BFGS) resetIdentity() {
	la.MatFill(o.hess, 0)
	for i := 0; i < o.ndim; i++ {
		o.hess[i][i] = 1.0
	}
}

// Min minimises ffcn starting from x. On return x holds the final iterate
// and Fmin, It, Converged the outcome. A non-nil error means the run could
// not proceed (infeasible start or no feasible step); mere non-convergence
// within NmaxIt is reported through Converged only
func (o *BFGS) Min(ffcn Objective, x []float64) (fmin float64, err error) {

	n := o.ndim
	o.It = 0
	o.Converged = false
	o.NumFeval = 0
	if !o.fresh {
		o.resetIdentity()
	}
	o.fresh = false

	f, err := ffcn(x, o.g)
	o.NumFeval++
	if err != nil {
		return f, chk.Err("objective failed at the starting point: %v", err)
	}
	if math.IsNaN(f) {
		return f, chk.Err("objective is NaN at the starting point")
	}

	for it := 0; it < o.NmaxIt; it++ {
		o.It = it

		// convergence on the gradient
		if infNorm(o.g) <= o.Gtol {
			o.Converged = true
			break
		}

		// direction: B·d = −g through modified Cholesky
		err = o.chol.Factor(o.hess)
		if err != nil {
			return f, err
		}
		o.chol.Solve(o.d, o.g)
		for i := 0; i < n; i++ {
			o.d[i] = -o.d[i]
		}
		gd := la.VecDot(o.g, o.d)
		if gd >= 0 {
			// roundoff produced an ascent direction; fall back to steepest descent
			for i := 0; i < n; i++ {
				o.d[i] = -o.g[i]
			}
			gd = -la.VecDot(o.g, o.g)
		}

		// feasible step bound
		αmax := math.Inf(1)
		if o.ConstrainStep != nil {
			αmax = o.ConstrainStep(x, o.d)
		}
		if !(αmax > 0) {
			return f, chk.Err("step limiter found no feasible step at iteration %d", it)
		}

		// backtracking line search with Armijo condition; infeasible or
		// non-finite trials count as rejected
		α := math.Min(1.0, αmax)
		var fnew float64
		accepted := false
		for ls := 0; ls < o.LsNmaxIt; ls++ {
			for i := 0; i < n; i++ {
				o.xnew[i] = x[i] + α*o.d[i]
			}
			var e error
			fnew, e = ffcn(o.xnew, o.gnew)
			o.NumFeval++
			if e == nil && !math.IsNaN(fnew) && !math.IsInf(fnew, 0) && fnew <= f+o.LsC1*α*gd {
				accepted = true
				break
			}
			α *= 0.5
		}
		if !accepted {
			o.Fmin = f
			return f, nil
		}

		// a non-finite gradient at the accepted point aborts the run at the
		// current iterate without convergence
		for i := 0; i < n; i++ {
			if math.IsNaN(o.gnew[i]) || math.IsInf(o.gnew[i], 0) {
				o.Fmin = f
				return f, nil
			}
		}

		// curvature pair
		for i := 0; i < n; i++ {
			o.s[i] = o.xnew[i] - x[i]
			o.y[i] = o.gnew[i] - o.g[i]
		}
		o.updateHessian()

		// shift
		copy(x, o.xnew)
		copy(o.g, o.gnew)
		f = fnew
		o.It = it + 1
	}

	if infNorm(o.g) <= o.Gtol {
		o.Converged = true
	}
	o.Fmin = f
	return f, nil
}

// updateHessian applies the BFGS update to the Hessian approximation:
//  B ← B − (B·s)(B·s)ᵀ/(sᵀ·B·s) + y·yᵀ/(yᵀ·s)
// skipping the update when the pair has no positive curvature
func (o *BFGS) updateHessian() {
	n := o.ndim
	ys := la.VecDot(o.y, o.s)
	snorm := la.VecNorm(o.s)
	ynorm := la.VecNorm(o.y)
	if ys <= 1e-10*snorm*ynorm {
		return
	}
	la.MatVecMul(o.bs, 1, o.hess, o.s)
	sbs := la.VecDot(o.s, o.bs)
	if sbs <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			o.hess[i][j] += o.y[i]*o.y[j]/ys - o.bs[i]*o.bs[j]/sbs
		}
	}
}

// infNorm returns the ∞-norm of a vector
func infNorm(v []float64) (res float64) {
	for _, x := range v {
		res = math.Max(res, math.Abs(x))
	}
	return
}

// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eos

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// testMixture returns the methane/n-decane pair used throughout the tests
func testMixture(tst *testing.T) *Mixture {
	c1, err := GetSubstance("methane")
	if err != nil {
		tst.Fatalf("catalog failed: %v\n", err)
	}
	c10, err := GetSubstance("n-decane")
	if err != nil {
		tst.Fatalf("catalog failed: %v\n", err)
	}
	kconst := [][]float64{
		{0, 0.05},
		{0.05, 0},
	}
	mix, err := NewMixture([]*Substance{c1, c10}, kconst, nil, nil)
	if err != nil {
		tst.Fatalf("mixture failed: %v\n", err)
	}
	return mix
}

// verbose enables the verbose test output
func verbose() {
	chk.Verbose = true
}

func Test_sub01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sub01. substance catalog and correlations")

	sub, err := GetSubstance("methane")
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// at the critical temperature the α-function is one and the Wilson
	// correlation returns the critical pressure
	chk.Scalar(tst, "a(RTc) = ac", 1e-15, sub.Ai(sub.RTc), sub.Ac)
	chk.Scalar(tst, "psat(RTc) = Pc", 1e-8, sub.WilsonPsat(sub.RTc), sub.Pc)

	// attraction grows on cooling
	if sub.Ai(0.5*sub.RTc) <= sub.Ac {
		tst.Errorf("attraction coefficient must grow on cooling\n")
	}

	// unknown substance
	_, err = GetSubstance("unobtainium")
	if err == nil {
		tst.Errorf("catalog must reject unknown substances\n")
	}
}

func Test_mix01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mix01. pressure and residual Helmholtz consistency")

	mix := testMixture(tst)
	n := []float64{0.6, 0.4}
	v := 1e-3
	rt := GasConst * 300.0

	// p = ΣN·RT/V − ∂Ares/∂V
	p := mix.Pressure(n, v, rt)
	chk.DerivScaSca(tst, "p", 1.0, p, v, 1e-8, chk.Verbose, func(x float64) (float64, error) {
		ntot := n[0] + n[1]
		return -mix.ResidualHelmholtz(n, x, rt) + ntot*rt*math.Log(x), nil
	})
	if chk.Verbose {
		io.Pforan("p = %v Pa\n", p)
	}

	// lnφi·RT = ∂Ares/∂Ni
	lnphi := make([]float64, 2)
	err := mix.LogActivity(lnphi, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	ana := []float64{lnphi[0] * rt, lnphi[1] * rt}
	chk.DerivScaVec(tst, "lnphi*RT", 1e-2, ana, n, 1e-7, chk.Verbose, func(x []float64) (float64, error) {
		return mix.ResidualHelmholtz(x, v, rt), nil
	})
}

func Test_mix02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mix02. Jacobian of the log-activity")

	mix := testMixture(tst)
	n := []float64{0.7, 0.3}
	v := 8e-4
	rt := GasConst * 320.0

	lnphi := make([]float64, 2)
	jac := [][]float64{{0, 0}, {0, 0}}
	err := mix.LogActivityJac(lnphi, jac, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// value agrees with the plain evaluation
	tmp := make([]float64, 2)
	err = mix.LogActivity(tmp, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Vector(tst, "lnphi", 1e-14, lnphi, tmp)

	// symmetry
	chk.Scalar(tst, "J symmetric", 1e-12, jac[0][1], jac[1][0])

	// against divided differences
	chk.DerivVecVec(tst, "dlnphi/dn", 1e-3, jac, n, 1e-7, chk.Verbose, func(f, x []float64) error {
		return mix.LogActivity(f, x, v, rt)
	})
}

func Test_mix03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mix03. pressure gradients")

	mix := testMixture(tst)
	n := []float64{0.5, 0.5}
	v := 9e-4
	rt := GasConst * 310.0

	dpdn := make([]float64, 2)
	dpdv, err := mix.PressureGrad(dpdn, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	chk.DerivScaVec(tst, "dp/dn", 1e2, dpdn, n, 1e-7, chk.Verbose, func(x []float64) (float64, error) {
		return mix.Pressure(x, v, rt), nil
	})
	chk.DerivScaSca(tst, "dp/dv", 1e4, dpdv, v, 1e-9, chk.Verbose, func(x float64) (float64, error) {
		return mix.Pressure(n, x, rt), nil
	})
}

func Test_mix04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mix04. input validation")

	c1, _ := GetSubstance("methane")

	// asymmetric interaction matrix
	bad := [][]float64{
		{0, 0.1},
		{0.2, 0},
	}
	c10, _ := GetSubstance("n-decane")
	_, err := NewMixture([]*Substance{c1, c10}, bad, nil, nil)
	if err == nil {
		tst.Errorf("asymmetric interaction matrix must be rejected\n")
	}

	// empty mixture
	_, err = NewMixture(nil, nil, nil, nil)
	if err == nil {
		tst.Errorf("empty mixture must be rejected\n")
	}

	// volume below covolume
	mix, err := NewMixture([]*Substance{c1}, nil, nil, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	lnphi := make([]float64, 1)
	err = mix.LogActivity(lnphi, []float64{1}, 1e-6, GasConst*300)
	if err == nil {
		tst.Errorf("log-activity below the covolume must fail\n")
	}
}

func Test_mix05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mix05. supercritical isotherm is monotone in volume")

	mix := testMixture(tst)
	n := []float64{0.9, 0.1}
	rt := GasConst * 700.0

	V := utl.LinSpace(3e-4, 3e-3, 21)
	pold := math.Inf(1)
	for _, v := range V {
		p := mix.Pressure(n, v, rt)
		if p >= pold {
			tst.Errorf("supercritical pressure must decrease with volume: p(%g)=%g\n", v, p)
			return
		}
		pold = p
	}
}

func Test_z01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("z01. compressibility roots")

	// near-ideal conditions: Z close to one
	c1, _ := GetSubstance("methane")
	mix, err := NewMixture([]*Substance{c1}, nil, nil, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	rt := GasConst * 400.0
	z, err := mix.Compressibility([]float64{1}, 1e5, rt, true)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "Z ideal limit", 1e-2, z, 1.0)

	// subcritical n-decane: gas root above liquid root
	c10, _ := GetSubstance("n-decane")
	mixL, err := NewMixture([]*Substance{c10}, nil, nil, nil)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	rt = GasConst * 400.0
	psat := c10.WilsonPsat(rt)
	zg, err := mixL.Compressibility([]float64{1}, psat, rt, true)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	zl, err := mixL.Compressibility([]float64{1}, psat, rt, false)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if chk.Verbose {
		io.Pforan("Zgas = %v  Zliq = %v\n", zg, zl)
	}
	if zg <= zl {
		tst.Errorf("gas root must exceed liquid root: Zg=%g Zl=%g\n", zg, zl)
	}
	if zl <= 0 {
		tst.Errorf("liquid root must be positive: Zl=%g\n", zl)
	}
}

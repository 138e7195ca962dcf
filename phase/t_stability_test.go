// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package phase

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/vvpisarev/CubicEoS/eos"
)

// methaneDecane returns the binary test mixture
func methaneDecane(tst *testing.T) *eos.Mixture {
	c1, err := eos.GetSubstance("methane")
	if err != nil {
		tst.Fatalf("catalog failed: %v\n", err)
	}
	c10, err := eos.GetSubstance("n-decane")
	if err != nil {
		tst.Fatalf("catalog failed: %v\n", err)
	}
	kconst := [][]float64{
		{0, 0.05},
		{0.05, 0},
	}
	mix, err := eos.NewMixture([]*eos.Substance{c1, c10}, kconst, nil, nil)
	if err != nil {
		tst.Fatalf("mixture failed: %v\n", err)
	}
	return mix
}

// pureMethane returns a single-component mixture
func pureMethane(tst *testing.T) *eos.Mixture {
	c1, err := eos.GetSubstance("methane")
	if err != nil {
		tst.Fatalf("catalog failed: %v\n", err)
	}
	mix, err := eos.NewMixture([]*eos.Substance{c1}, nil, nil, nil)
	if err != nil {
		tst.Fatalf("mixture failed: %v\n", err)
	}
	return mix
}

// verbose enables the verbose test output
func verbose() {
	chk.Verbose = true
}

func Test_stabobj01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stabobj01. gradient of the tangent-plane distance")

	mix := methaneDecane(tst)
	n := []float64{0.5, 0.5}
	v := 5e-4
	rt := eos.GasConst * 300.0

	obj, err := NewStabilityObjective(mix, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	η := []float64{900, 100}
	grad := make([]float64, 2)
	gtmp := make([]float64, 2)
	_, err = obj.Eval(η, grad)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.DerivScaVec(tst, "dD/dη", 1e-6, grad, η, 1e-3, chk.Verbose, func(x []float64) (float64, error) {
		return obj.Eval(x, gtmp)
	})

	// the parent concentration is a stationary point with D = 0
	ηp := []float64{n[0] / v, n[1] / v}
	d, err := obj.Eval(ηp, grad)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	chk.Scalar(tst, "D(parent)", 1e-9, d, 0)
	chk.Vector(tst, "gradD(parent)", 1e-9, grad, []float64{0, 0})
}

func Test_stabobj02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stabobj02. step limiter of the trial phase")

	mix := methaneDecane(tst)
	n := []float64{0.5, 0.5}
	v := 5e-4
	rt := eos.GasConst * 300.0

	obj, err := NewStabilityObjective(mix, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}

	// positivity bound
	η := []float64{100, 100}
	α := obj.MaxStep(η, []float64{-200, 0})
	chk.Scalar(tst, "positivity bound", 1e-12, α, 0.5)

	// covolume bound: Σb·η grows along d
	bb := mix.Covolume()
	ηb := η[0]*bb[0] + η[1]*bb[1]
	d := []float64{1e4, 1e4}
	db := d[0]*bb[0] + d[1]*bb[1]
	α = obj.MaxStep(η, d)
	chk.Scalar(tst, "covolume bound", 1e-12, α, (1.0-ηb)/db)

	// unconstrained direction
	α = obj.MaxStep(η, []float64{1e-9, -1e-9})
	if !math.IsInf(α, 1) && α < 1e9 {
		tst.Errorf("nearly-null direction must give a huge bound: α=%g\n", α)
	}

	// no back-off: stepping the full α onto the positivity bound lands
	// exactly on zero concentration
	α = obj.MaxStep(η, []float64{-200, 0})
	chk.Scalar(tst, "boundary touch", 1e-12, η[0]+α*(-200), 0)
}

func Test_stab01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stab01. pure methane at supercritical conditions")

	mix := pureMethane(tst)
	n := []float64{1.0}
	v := 0.1
	rt := eos.GasConst * 300.0

	stable, tries, err := Stability(mix, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if chk.Verbose {
		for _, try := range tries {
			io.Pforan("D = %v  η = %v\n", try.D, try.Eta)
		}
	}
	if !stable {
		tst.Errorf("supercritical pure methane must be stable\n")
	}
	chk.IntAssert(len(tries), 4)
}

func Test_stab02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stab02. methane/n-decane at 300 K is unstable")

	mix := methaneDecane(tst)
	n := []float64{0.5, 0.5}
	v := 5e-4
	rt := eos.GasConst * 300.0

	stable, tries, err := Stability(mix, n, v, rt)
	if err != nil {
		tst.Errorf("test failed: %v\n", err)
		return
	}
	if stable {
		tst.Errorf("mixture must be unstable at these conditions\n")
	}

	// early exit: the winning try is the last one and proves instability
	last := tries[len(tries)-1]
	if last.LocalStable || !(last.D < stabThreshold) {
		tst.Errorf("winning try must have D below threshold: D=%g\n", last.D)
	}
	for i, try := range tries {
		if chk.Verbose {
			io.Pforan("try %d: D = %v\n", i, try.D)
		}
	}

	// the winner concentration is feasible
	bb := mix.Covolume()
	ηb := 0.0
	for i, c := range last.Eta {
		if c <= 0 {
			tst.Errorf("winner concentration must be positive: η[%d]=%g\n", i, c)
		}
		ηb += c * bb[i]
	}
	if ηb >= 1 {
		tst.Errorf("winner concentration must respect the covolume bound: Σbη=%g\n", ηb)
	}
}

func Test_stab03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stab03. invalid states are rejected")

	mix := methaneDecane(tst)
	rt := eos.GasConst * 300.0

	_, _, err := Stability(mix, []float64{-1, 1}, 1e-3, rt)
	if err == nil {
		tst.Errorf("negative amounts must be rejected\n")
	}
	_, _, err = Stability(mix, []float64{1, 1}, 1e-4, rt)
	if err == nil {
		tst.Errorf("volume below covolume must be rejected\n")
	}
	_, _, err = Stability(mix, []float64{1}, 1e-3, rt)
	if err == nil {
		tst.Errorf("wrong composition length must be rejected\n")
	}
}

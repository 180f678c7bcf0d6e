package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/telemetry"
)

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector(config.Defaults())

	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %f round-tripped to %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVector_ApplyKeepsConfigValid(t *testing.T) {
	base := config.Defaults()
	pv := NewParamVector(base)

	for _, v := range [][]float64{
		{-100, -100, -100, -100},
		{1e9, 1e9, 1e9, 1e9},
		pv.DefaultVector(),
	} {
		cfg := *base
		pv.ApplyToConfig(&cfg, v)
		if err := cfg.Validate(); err != nil {
			t.Errorf("applying %v produced invalid config: %v", v, err)
		}
	}
}

func TestParamVector_DefaultsMatchBase(t *testing.T) {
	base := config.Defaults()
	pv := NewParamVector(base)

	got := pv.DefaultVector()
	want := pv.ExtractFromConfig(base)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s default %f, want %f", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestComputeFitness_ExtinctionRanksWorse(t *testing.T) {
	fe := &FitnessEvaluator{steps: 100, target: 10}

	surviving := &runResult{extinctionStep: -1}
	for i := 1; i <= 10; i++ {
		surviving.records = append(surviving.records, telemetry.MetricsRecord{Step: i * 10, Population: 1000})
	}
	early := &runResult{extinctionStep: 10}
	late := &runResult{extinctionStep: 90}

	s, _ := fe.computeFitness(surviving)
	e, _ := fe.computeFitness(early)
	l, _ := fe.computeFitness(late)

	if !(s < l && l < e) {
		t.Errorf("expected surviving < late extinction < early extinction, got %f, %f, %f", s, l, e)
	}
}

func TestComputeFitness_OnTargetIsZero(t *testing.T) {
	fe := &FitnessEvaluator{steps: 100, target: 20}

	r := &runResult{extinctionStep: -1}
	for i := 1; i <= 10; i++ {
		r.records = append(r.records, telemetry.MetricsRecord{Step: i * 10, Population: 20})
	}

	got, mean := fe.computeFitness(r)
	if got != 0 || mean != 20 {
		t.Errorf("expected zero fitness at target, got %f (mean %f)", got, mean)
	}
}

func TestEvaluate_SerialMatchesParallel(t *testing.T) {
	base := config.Defaults()
	pv := NewParamVector(base)
	x := pv.DefaultVector()
	seeds := []int64{42, 1042, 2042}

	serial := NewFitnessEvaluator(pv, 60, seeds, 20, base, 1)
	parallel := NewFitnessEvaluator(pv, 60, seeds, 20, base, 0)

	a := serial.Evaluate(x)
	b := parallel.Evaluate(x)
	if a != b {
		t.Errorf("worker count changed fitness: %f vs %f", a, b)
	}
	if serial.LastMeanPopulation() != parallel.LastMeanPopulation() {
		t.Errorf("worker count changed mean population: %f vs %f",
			serial.LastMeanPopulation(), parallel.LastMeanPopulation())
	}
}

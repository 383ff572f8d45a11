package main

import (
	"math"
	"testing"

	"github.com/zackthomas1/particle-game/config"
)

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	v := []float64{-100, 1000, 4.6, 0.5}

	got := pv.Clamp(v)
	want := []float64{10, 30, 5, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: Clamp = %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestParamVectorApplyExtract(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	pv.ApplyToConfig(cfg, []float64{120, 5, 6.2, 0.25})
	got := pv.ExtractFromConfig(cfg)
	want := []float64{120, 5, 6, 0.25}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: extracted %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestDefaultsMatchConfigDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestFitnessPrefersTargetFill(t *testing.T) {
	fe := &FitnessEvaluator{targetFill: 0.5}
	onTarget := fe.computeFitness(runMetrics{Fill: 0.5})
	offTarget := fe.computeFitness(runMetrics{Fill: 0.9})
	if onTarget >= offTarget {
		t.Errorf("fitness on target %v should beat off target %v", onTarget, offTarget)
	}
	if got := fe.computeFitness(runMetrics{Fill: 0.5, Overlap: 0.2}); got <= onTarget {
		t.Errorf("overlap should raise fitness, got %v", got)
	}
}

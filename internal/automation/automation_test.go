package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/logging"
	"github.com/san-kum/shapesim/internal/sim"
)

const scenarioYAML = `
name: soften
description: drop the same ball twice
steps:
  - preset: drop
    frames: 5
    save_as: stiff
    params:
      stiffness: 0.9
  - preset: jelly
    frames: 5
    mode: rigid
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Name != "soften" {
		t.Errorf("expected name soften, got %s", sc.Name)
	}
	if len(sc.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(sc.Steps))
	}
	if sc.Steps[0].Params["stiffness"] != 0.9 {
		t.Errorf("expected stiffness 0.9, got %f", sc.Steps[0].Params["stiffness"])
	}
	if sc.Steps[0].Name() != "stiff" || sc.Steps[1].Name() != "jelly" {
		t.Errorf("unexpected step names %s, %s", sc.Steps[0].Name(), sc.Steps[1].Name())
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestStepBuild(t *testing.T) {
	cfg, err := Step{Preset: "jelly", Frames: 7, Mode: "rigid", Seed: 3, Params: map[string]float64{"velocity_damping": 0.05}}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scene.Frames != 7 {
		t.Errorf("expected 7 frames, got %d", cfg.Scene.Frames)
	}
	if cfg.Material.Mode != "rigid" {
		t.Errorf("expected rigid, got %s", cfg.Material.Mode)
	}
	if cfg.Seed != 3 {
		t.Errorf("expected seed 3, got %d", cfg.Seed)
	}
	if cfg.Material.VelocityDamping != 0.05 {
		t.Errorf("expected damping 0.05, got %f", cfg.Material.VelocityDamping)
	}
	if cfg.Bodies[0].Mesh != "ball" {
		t.Errorf("expected the jelly preset body, got %s", cfg.Bodies[0].Mesh)
	}

	tests := []struct {
		name string
		step Step
	}{
		{"unknown preset", Step{Preset: "nope"}},
		{"unknown param", Step{Params: map[string]float64{"viscosity": 1}}},
		{"missing config", Step{Config: "does-not-exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.step.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Result.FramesRun != 5 {
			t.Errorf("%s: expected 5 frames, got %d", r.Name, r.Result.FramesRun)
		}
		if _, ok := r.Result.Metrics["energy"]; !ok {
			t.Errorf("%s: expected energy metric", r.Name)
		}
	}
	if results[0].Config.Material.Stiffness != 0.9 {
		t.Errorf("expected stiffness 0.9, got %f", results[0].Config.Material.Stiffness)
	}
}

func TestRunScenarioStopsOnBadStep(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Preset: "drop", Frames: 2}, {Preset: "nope"}}}
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), logging.Discard())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 1 {
		t.Errorf("expected the first step to be kept, got %d results", len(results))
	}
}

func TestRunScenarioCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := &Scenario{Steps: []Step{{Preset: "drop", Frames: 5}}}
	_, err := RunScenario(ctx, sc, experiment.NewRegistry(), logging.Discard())
	if !errors.Is(err, sim.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	sw := &Sweep{
		Base:   config.DefaultConfig,
		Param:  "stiffness",
		Min:    0.1,
		Max:    0.5,
		Steps:  3,
		Frames: 5,
	}
	results, err := RunSweep(context.Background(), sw, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.1, 0.3, 0.5}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, r := range results {
		if diff := r.Value - want[i]; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("step %d: expected %f, got %f", i, want[i], r.Value)
		}
		if !r.Stable || r.FramesRun != 5 {
			t.Errorf("step %d: expected stable 5-frame run, got stable=%t frames=%d", i, r.Stable, r.FramesRun)
		}
	}

	if _, err := RunSweep(context.Background(), &Sweep{Base: config.DefaultConfig, Param: "stiffness"}, experiment.NewRegistry()); err == nil {
		t.Error("expected error for zero steps")
	}
	sw.Param = "viscosity"
	if _, err := RunSweep(context.Background(), sw, experiment.NewRegistry()); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	mc := &MonteCarlo{
		Base:   config.DefaultConfig,
		Jitter: 0.01,
		Trials: 3,
		Seed:   42,
		Frames: 5,
	}
	a, err := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := RunMonteCarlo(context.Background(), mc, experiment.NewRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(a))
	}
	for i := range a {
		if a[i].Seed != b[i].Seed {
			t.Errorf("trial %d: expected repeatable seed, got %d and %d", i, a[i].Seed, b[i].Seed)
		}
		if a[i].Metrics["shape_error"] != b[i].Metrics["shape_error"] {
			t.Errorf("trial %d: expected repeatable shape error", i)
		}
	}
	if a[0].Seed == a[1].Seed {
		t.Error("expected distinct trial seeds")
	}
	if stable, unstable := MonteCarloStats(a); stable != 3 || unstable != 0 {
		t.Errorf("expected 3 stable trials, got %d stable %d unstable", stable, unstable)
	}
}

func TestMonteCarloStats(t *testing.T) {
	results := []MonteCarloResult{{Stable: true}, {Stable: false}, {Stable: true}}
	stable, unstable := MonteCarloStats(results)
	if stable != 2 || unstable != 1 {
		t.Errorf("expected 2/1, got %d/%d", stable, unstable)
	}
}


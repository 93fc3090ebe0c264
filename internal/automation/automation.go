// Package automation runs scripted sequences of scenes, single-parameter
// sweeps and seeded Monte Carlo trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/experiment"
	"github.com/san-kum/shapesim/internal/logging"
	"github.com/san-kum/shapesim/internal/sim"
)

// Scenario is a scripted list of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step runs one scene. Config, when set, is a config file path and takes
// precedence over Preset. Params are applied with experiment.ApplyParams.
type Step struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Mode       string             `yaml:"mode"`
	Frames     int                `yaml:"frames"`
	Seed       int64              `yaml:"seed"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// StepResult pairs a step's final config with its run.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	return &sc, nil
}

// Build resolves the step into a config.
func (s Step) Build() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Mode != "" {
		cfg.Material.Mode = s.Mode
	}
	if s.Frames > 0 {
		cfg.Scene.Frames = s.Frames
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if err := experiment.ApplyParams(cfg, s.Params); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Name is SaveAs, or the preset, or "step".
func (s Step) Name() string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	}
	return "step"
}

// RunScenario executes every step in order with the registry's default
// metrics. A step that fails to build aborts the scenario; a step whose
// simulation diverges is kept with its partial result.
func RunScenario(ctx context.Context, sc *Scenario, registry *experiment.Registry, log *logging.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		log.Info(ctx, "scenario step", "step", i+1, "of", len(sc.Steps), "name", step.Name())

		cfg, err := step.Build()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := experiment.New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		exp.Setup(registry.DefaultMetrics())

		result, err := exp.Run(ctx)
		if result == nil || errors.Is(err, sim.ErrContextCanceled) {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		if err != nil {
			log.Warn(ctx, "step stopped early", "step", i+1, "error", err)
		}
		results = append(results, StepResult{Name: step.Name(), Config: cfg, Result: result})
	}

	return results, nil
}

// Sweep varies one named parameter over [Min, Max] in Steps points.
type Sweep struct {
	Base   func() *config.Config
	Param  string
	Min    float64
	Max    float64
	Steps  int
	Frames int
}

type SweepResult struct {
	Value     float64
	Metrics   map[string]float64
	FramesRun int
	Stable    bool
}

func RunSweep(ctx context.Context, sw *Sweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sw.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least 1 step, got %d", sw.Steps)
	}
	results := make([]SweepResult, 0, sw.Steps)

	step := 0.0
	if sw.Steps > 1 {
		step = (sw.Max - sw.Min) / float64(sw.Steps-1)
	}
	for i := 0; i < sw.Steps; i++ {
		v := sw.Min + float64(i)*step
		cfg := sw.Base()
		if sw.Frames > 0 {
			cfg.Scene.Frames = sw.Frames
		}
		if err := experiment.ApplyParams(cfg, map[string]float64{sw.Param: v}); err != nil {
			return nil, err
		}
		r, err := runOne(ctx, cfg, registry)
		if err != nil {
			return results, err
		}
		r.Value = v
		results = append(results, r)
	}
	return results, nil
}

// MonteCarlo repeats a scene with every body's rest shape jittered by a
// different seed.
type MonteCarlo struct {
	Base   func() *config.Config
	Jitter float64
	Trials int
	Seed   int64
	Frames int
}

type MonteCarloResult struct {
	Trial   int
	Seed    int64
	Stable  bool
	Metrics map[string]float64
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarlo, registry *experiment.Registry) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, mc.Trials)
	rng := rand.New(rand.NewSource(mc.Seed))

	for trial := 0; trial < mc.Trials; trial++ {
		cfg := mc.Base()
		cfg.Seed = rng.Int63()
		if mc.Frames > 0 {
			cfg.Scene.Frames = mc.Frames
		}
		for i := range cfg.Bodies {
			cfg.Bodies[i].Jitter = mc.Jitter
		}

		r, err := runOne(ctx, cfg, registry)
		if err != nil {
			return results, err
		}
		results = append(results, MonteCarloResult{
			Trial:   trial,
			Seed:    cfg.Seed,
			Stable:  r.Stable,
			Metrics: r.Metrics,
		})
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

// runOne treats a diverged run as unstable rather than as an error.
func runOne(ctx context.Context, cfg *config.Config, registry *experiment.Registry) (SweepResult, error) {
	exp, err := experiment.New(cfg)
	if err != nil {
		return SweepResult{}, err
	}
	exp.Setup(registry.DefaultMetrics())
	result, err := exp.Run(ctx)
	if result == nil || errors.Is(err, sim.ErrContextCanceled) {
		return SweepResult{}, err
	}
	return SweepResult{
		Metrics:   result.Metrics,
		FramesRun: result.FramesRun,
		Stable:    err == nil,
	}, nil
}

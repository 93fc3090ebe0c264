// Package experiment turns a scene configuration into a runnable
// simulation.
package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/mesh"
	"github.com/san-kum/shapesim/internal/scene"
	"github.com/san-kum/shapesim/internal/sim"
	"github.com/san-kum/shapesim/internal/softbody"
)

type Experiment struct {
	cfg       *config.Config
	scene     *scene.Scene
	simulator *sim.Simulator
	notes     []string
}

// New normalizes cfg and builds its scene. cfg is modified in place.
func New(cfg *config.Config) (*Experiment, error) {
	notes := cfg.Normalize()
	sc, err := BuildScene(cfg)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:       cfg,
		scene:     sc,
		simulator: sim.New(sc),
		notes:     notes,
	}, nil
}

// Setup registers metrics on the simulator.
func (e *Experiment) Setup(metrics []sim.Metric) {
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, sim.Config{
		Frames:        e.cfg.Scene.Frames,
		ValidateState: true,
	})
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Scene() *scene.Scene    { return e.scene }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Notes lists the values Normalize had to clamp.
func (e *Experiment) Notes() []string { return e.notes }

// BuildScene loads, shapes and places every configured body. Bodies are
// registered in configuration order.
func BuildScene(cfg *config.Config) (*scene.Scene, error) {
	if len(cfg.Bodies) == 0 {
		return nil, fmt.Errorf("config has no bodies")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	sc := scene.New(cfg.Scene.Substeps)

	for i, bc := range cfg.Bodies {
		b, err := buildBody(cfg, i, rng)
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Mesh, err)
		}
		name := bc.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", bc.Mesh, i)
		}
		sc.Add(name, b)
	}
	return sc, nil
}

func buildBody(cfg *config.Config, i int, rng *rand.Rand) (*softbody.Body, error) {
	bc := cfg.Bodies[i]
	m, err := mesh.Load(bc.Mesh)
	if err != nil {
		return nil, err
	}
	if bc.Scale > 0 {
		m.Scale(bc.Scale)
	}
	if bc.Jitter > 0 {
		m.Jitter(bc.Jitter, cfg.Seed+int64(i))
	}

	at := mgl64.Vec3(bc.Translate)
	if bc.Random {
		at[0] = rng.Float64()*2 - 1
		at[2] = rng.Float64()*2 - 1
	}
	m.Translate(at)

	p, err := cfg.Params(i)
	if err != nil {
		return nil, err
	}
	b, err := softbody.New(m, p)
	if err != nil {
		return nil, err
	}
	if err := b.SetParams(p); err != nil {
		return nil, err
	}
	stepper, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	b.Stepper = stepper
	return b, nil
}

package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/shapesim/internal/config"
	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/mesh"
	"github.com/san-kum/shapesim/internal/metrics"
	"github.com/san-kum/shapesim/internal/sim"
	"github.com/san-kum/shapesim/internal/softbody"
)

// Registry names everything a scene can be assembled from.
type Registry struct {
	integrators map[string]func() (integrators.Stepper, error)
	metrics     map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() (integrators.Stepper, error)),
		metrics:     make(map[string]func() sim.Metric),
	}

	for _, name := range integrators.Names() {
		r.integrators[name] = func() (integrators.Stepper, error) { return integrators.New(name) }
	}

	r.metrics["energy"] = func() sim.Metric { return metrics.NewEnergy() }
	r.metrics["final_energy"] = func() sim.Metric { return metrics.NewFinalEnergy() }
	r.metrics["avg_speed"] = func() sim.Metric { return metrics.NewAverageSpeed() }
	r.metrics["max_speed"] = func() sim.Metric { return metrics.NewMaxSpeed() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(4.0) }
	r.metrics["penetration"] = func() sim.Metric { return metrics.NewPenetration() }
	r.metrics["contact_ratio"] = func() sim.Metric { return metrics.NewContactRatio() }
	r.metrics["shape_error"] = func() sim.Metric { return metrics.NewShapeError() }

	return r
}

func (r *Registry) GetIntegrator(name string) (integrators.Stepper, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn()
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMesh(name string) (*mesh.Mesh, error) {
	return mesh.Load(name)
}

func (r *Registry) GetPreset(name string) (*config.Config, error) {
	c := config.GetPreset(name)
	if c == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return c, nil
}

func (r *Registry) ListMeshes() []string { return mesh.Primitives() }

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func (r *Registry) ListMetrics() []string { return sortedKeys(r.metrics) }

func (r *Registry) ListModes() []string {
	var out []string
	for _, m := range softbody.Modes() {
		out = append(out, m.String())
	}
	return out
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

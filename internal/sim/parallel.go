package sim

import (
	"context"
	"sync"

	"github.com/san-kum/shapesim/internal/scene"
)

// SceneFactory builds an independent scene for a seed.
type SceneFactory func(seed int64) (*scene.Scene, error)

// Ensemble runs the same scene recipe with consecutive seeds in parallel.
// Every run gets its own scene and its own metrics.
type Ensemble struct {
	build     SceneFactory
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

func NewEnsemble(build SceneFactory, metrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, metrics: metrics, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sc, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			s := New(sc)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

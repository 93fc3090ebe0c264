package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/shapesim/internal/linalg"
	"github.com/san-kum/shapesim/internal/scene"
)

type Simulator struct {
	scene     *scene.Scene
	metrics   []Metric
	observers []Observer
}

func New(s *scene.Scene) *Simulator {
	return &Simulator{
		scene:     s,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) Scene() *scene.Scene    { return s.scene }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances the scene cfg.Frames frames. A numeric failure stops the
// run; the partial result is returned along with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	stride := max(cfg.Stride, 1)
	start := time.Now()

	result := &Result{
		Snapshots: make([]Snapshot, 0, cfg.Frames/stride+1),
		Metrics:   make(map[string]float64),
	}
	for _, e := range s.scene.Entries() {
		result.Names = append(result.Names, e.Name)
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	result.Snapshots = append(result.Snapshots, Capture(0, s.scene))

	var runErr error
	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			runErr = fmt.Errorf("%w: %v", ErrContextCanceled, ctx.Err())
		default:
		}
		if runErr != nil {
			break
		}

		if err := s.scene.Frame(); err != nil {
			runErr = SimError{Frame: i, Time: s.scene.Time, Message: err.Error(), Err: err}
			result.Errors = append(result.Errors, runErr)
			break
		}
		if cfg.ValidateState {
			if err := s.checkState(cfg); err != nil {
				runErr = SimError{Frame: i, Time: s.scene.Time, Message: err.Error(), Err: err}
				result.Errors = append(result.Errors, runErr)
				break
			}
		}

		result.FramesRun = i
		for _, m := range s.metrics {
			m.Observe(s.scene)
		}
		for _, o := range s.observers {
			o.OnFrame(i, s.scene)
		}
		if i%stride == 0 || i == cfg.Frames {
			result.Snapshots = append(result.Snapshots, Capture(i, s.scene))
		}
	}

	result.FinalTime = s.scene.Time
	result.WallClocks = time.Since(start).Seconds()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}

// RunWithCallback advances frame by frame until cb returns false, the
// context ends or a frame fails.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, cb func(frame int, sc *scene.Scene) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.scene.Frame(); err != nil {
			return SimError{Frame: i, Time: s.scene.Time, Message: err.Error(), Err: err}
		}
		if !cb(i, s.scene) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.Stride < 0 {
		return fmt.Errorf("stride must not be negative, got %d", cfg.Stride)
	}
	if s.scene == nil || s.scene.Len() == 0 {
		return fmt.Errorf("scene has no bodies")
	}
	return nil
}

func (s *Simulator) checkState(cfg Config) error {
	limit := cfg.EscapeDist
	for _, e := range s.scene.Entries() {
		if !linalg.FiniteVec3(e.Center) {
			return fmt.Errorf("%w: body %s", ErrInvalidState, e.Name)
		}
		if limit <= 0 {
			limit = 4 * e.Body.Params.WallDist
		}
		for k := 0; k < 3; k++ {
			if e.Center[k] > limit || e.Center[k] < -limit {
				return fmt.Errorf("%w: body %s at %v", ErrUnstable, e.Name, e.Center)
			}
		}
	}
	return nil
}

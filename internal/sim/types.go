// Package sim drives a scene frame by frame, recording body trajectories
// and feeding metrics and observers.
package sim

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/scene"
)

var (
	ErrInvalidState    = errors.New("sim: invalid state (NaN or Inf detected)")
	ErrUnstable        = errors.New("sim: body escaped the wall box")
	ErrContextCanceled = errors.New("sim: run canceled")
)

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(s *scene.Scene)
	Value() float64
	Reset()
}

// Observer is notified after every frame.
type Observer interface {
	OnFrame(frame int, s *scene.Scene)
}

type Config struct {
	Frames int
	// Stride records every Stride-th frame. Zero or one records all.
	Stride int
	// ValidateState stops the run when a body leaves EscapeDist.
	ValidateState bool
	EscapeDist    float64
}

// BodyState is one body's recorded state.
type BodyState struct {
	Center          mgl64.Vec3 `json:"center"`
	Radius          float64    `json:"radius"`
	AverageVelocity mgl64.Vec3 `json:"average_velocity"`
	Energy          float64    `json:"energy"`
}

// Snapshot is the scene after one recorded frame.
type Snapshot struct {
	Frame    int         `json:"frame"`
	Time     float64     `json:"time"`
	Bodies   []BodyState `json:"bodies"`
	Contacts int         `json:"contacts"`
}

// Energy sums the bodies' kinetic energies.
func (s Snapshot) Energy() float64 {
	var e float64
	for _, b := range s.Bodies {
		e += b.Energy
	}
	return e
}

type Result struct {
	Names      []string
	Snapshots  []Snapshot
	Metrics    map[string]float64
	Errors     []error
	FramesRun  int
	FinalTime  float64
	Cancelled  bool
	WallClocks float64
}

// Series extracts one scalar per snapshot for body i.
func (r *Result) Series(i int, f func(BodyState) float64) []float64 {
	out := make([]float64, 0, len(r.Snapshots))
	for _, s := range r.Snapshots {
		if i < len(s.Bodies) {
			out = append(out, f(s.Bodies[i]))
		}
	}
	return out
}

// Times returns the time of every snapshot.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Time
	}
	return out
}

// SimError records a failure at a given frame.
type SimError struct {
	Frame   int
	Time    float64
	Message string
	Err     error
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %s", e.Frame, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }

// Capture snapshots the scene.
func Capture(frame int, s *scene.Scene) Snapshot {
	snap := Snapshot{Frame: frame, Time: s.Time, Contacts: s.Contacts}
	for _, e := range s.Entries() {
		snap.Bodies = append(snap.Bodies, BodyState{
			Center:          e.Center,
			Radius:          e.Radius,
			AverageVelocity: e.Body.AverageVelocity,
			Energy:          e.Body.KineticEnergy(),
		})
	}
	return snap
}

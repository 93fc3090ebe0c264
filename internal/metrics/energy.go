// Package metrics holds scalar summaries observed once per frame.
package metrics

import (
	"math"

	"github.com/san-kum/shapesim/internal/scene"
)

// Energy is the mean total kinetic energy over the observed frames.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s *scene.Scene) {
	e.totalEnergy += s.KineticEnergy()
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// FinalEnergy is the kinetic energy at the last observed frame. A body
// that has come to rest scores near zero.
type FinalEnergy struct {
	name string
	last float64
}

func NewFinalEnergy() *FinalEnergy {
	return &FinalEnergy{name: "final_energy"}
}

func (e *FinalEnergy) Name() string           { return e.name }
func (e *FinalEnergy) Observe(s *scene.Scene) { e.last = s.KineticEnergy() }
func (e *FinalEnergy) Value() float64         { return e.last }
func (e *FinalEnergy) Reset()                 { e.last = 0 }

// MaxSpeed tracks the fastest vertex seen.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s *scene.Scene) {
	for _, e := range s.Entries() {
		for _, v := range e.Body.Velocity {
			m.max = math.Max(m.max, v.Len())
		}
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }
func (m *MaxSpeed) Reset()         { m.max = 0 }

// AverageSpeed is the mean over frames and bodies of |average velocity|.
type AverageSpeed struct {
	name    string
	total   float64
	samples int
}

func NewAverageSpeed() *AverageSpeed {
	return &AverageSpeed{name: "avg_speed"}
}

func (a *AverageSpeed) Name() string { return a.name }

func (a *AverageSpeed) Observe(s *scene.Scene) {
	for _, e := range s.Entries() {
		a.total += e.Body.AverageVelocity.Len()
		a.samples++
	}
}

func (a *AverageSpeed) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.total / float64(a.samples)
}

func (a *AverageSpeed) Reset() {
	a.total = 0
	a.samples = 0
}

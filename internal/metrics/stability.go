package metrics

import (
	"math"

	"github.com/san-kum/shapesim/internal/linalg"
	"github.com/san-kum/shapesim/internal/scene"
)

// Stability is the fraction of frames in which every body centre is finite
// and stays within threshold of the origin on each axis.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sc *scene.Scene) {
	s.samples++
	for _, e := range sc.Entries() {
		c := e.Center
		if !linalg.FiniteVec3(c) || math.Abs(c[0]) > s.threshold || math.Abs(c[1]) > s.threshold || math.Abs(c[2]) > s.threshold {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Penetration is the largest number of vertices found outside the wall box
// in a single frame.
type Penetration struct {
	name string
	max  int
}

func NewPenetration() *Penetration {
	return &Penetration{name: "penetration"}
}

func (p *Penetration) Name() string { return p.name }

func (p *Penetration) Observe(sc *scene.Scene) {
	n := 0
	for _, e := range sc.Entries() {
		n += e.Body.OutsideWalls()
	}
	p.max = max(p.max, n)
}

func (p *Penetration) Value() float64 { return float64(p.max) }
func (p *Penetration) Reset()         { p.max = 0 }

// ContactRatio is the fraction of frames that ended with at least one
// overlapping pair.
type ContactRatio struct {
	name     string
	touching int
	samples  int
}

func NewContactRatio() *ContactRatio {
	return &ContactRatio{name: "contact_ratio"}
}

func (c *ContactRatio) Name() string { return c.name }

func (c *ContactRatio) Observe(sc *scene.Scene) {
	c.samples++
	if sc.Contacts > 0 {
		c.touching++
	}
}

func (c *ContactRatio) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.touching) / float64(c.samples)
}

func (c *ContactRatio) Reset() {
	c.touching = 0
	c.samples = 0
}

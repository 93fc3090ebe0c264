package metrics

import (
	"github.com/san-kum/shapesim/internal/scene"
)

// ShapeError is the mean distance between vertices and their goal
// positions, averaged over vertices and frames. Stiff bodies score low.
type ShapeError struct {
	name    string
	total   float64
	samples int
}

func NewShapeError() *ShapeError {
	return &ShapeError{name: "shape_error"}
}

func (s *ShapeError) Name() string { return s.name }

func (s *ShapeError) Observe(sc *scene.Scene) {
	for _, e := range sc.Entries() {
		b := e.Body
		for i, x := range b.Mesh.Vertices {
			s.total += x.Sub(b.Goal[i]).Len()
			s.samples++
		}
	}
}

func (s *ShapeError) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.total / float64(s.samples)
}

func (s *ShapeError) Reset() {
	s.total = 0
	s.samples = 0
}

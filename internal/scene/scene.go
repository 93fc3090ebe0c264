// Package scene keeps the registry of simulated bodies and advances them
// together, resolving contacts between their bounding spheres.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/softbody"
)

var ErrUnknownBody = errors.New("scene: unknown body")

const DefaultSubsteps = 4

// Entry is one registered body with its world bounding sphere.
type Entry struct {
	ID     int
	Name   string
	Body   *softbody.Body
	Center mgl64.Vec3
	Radius float64
}

// Refresh recomputes the bounding sphere from the live vertices.
func (e *Entry) Refresh() {
	e.Center, e.Radius = e.Body.Mesh.BoundingSphere()
}

// TouchesWalls reports whether the bounding sphere reaches the wall box.
func (e *Entry) TouchesWalls() bool {
	w := e.Body.Params.WallDist
	for k := 0; k < 3; k++ {
		if e.Center[k]+e.Radius > w || e.Center[k]-e.Radius < -w {
			return true
		}
	}
	return false
}

// Scene advances its bodies in registration order.
type Scene struct {
	entries  []*Entry
	nextID   int
	substeps int

	Time   float64
	Passes int
	Frames int

	// Contacts is the number of overlapping pairs seen in the last pass.
	Contacts int
}

func New(substeps int) *Scene {
	s := &Scene{}
	s.SetSubsteps(substeps)
	return s
}

// SetSubsteps sets the passes per frame. Values below one become one.
func (s *Scene) SetSubsteps(n int) {
	if n < 1 {
		n = 1
	}
	s.substeps = n
}

func (s *Scene) Substeps() int { return s.substeps }

// Add registers b and returns its entry.
func (s *Scene) Add(name string, b *softbody.Body) *Entry {
	e := &Entry{ID: s.nextID, Name: name, Body: b}
	s.nextID++
	e.Refresh()
	s.entries = append(s.entries, e)
	return e
}

func (s *Scene) Remove(id int) error {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownBody, id)
}

func (s *Scene) Get(id int) (*Entry, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownBody, id)
}

// Entries returns the registered bodies in order. The slice must not be
// modified.
func (s *Scene) Entries() []*Entry { return s.entries }

func (s *Scene) Len() int { return len(s.entries) }

// Apply calls f on every body's parameters, re-clamping the result.
func (s *Scene) Apply(f func(*softbody.Params)) error {
	var errs []error
	for _, e := range s.entries {
		p := e.Body.Params
		f(&p)
		if err := e.Body.SetParams(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AdvanceBody runs shape matching and one integration pass for e, then
// refreshes its bounding sphere.
func (s *Scene) AdvanceBody(e *Entry) error {
	if err := e.Body.Advance(); err != nil {
		return fmt.Errorf("body %d (%s): %w", e.ID, e.Name, err)
	}
	e.Refresh()
	return nil
}

// Advance moves every body by one pass and then applies the inter-body
// penalties, which act on the following pass.
func (s *Scene) Advance() error {
	var dt float64
	for _, e := range s.entries {
		if err := s.AdvanceBody(e); err != nil {
			return err
		}
		dt = max(dt, e.Body.Params.Timestep)
	}
	n, err := s.Collide()
	if err != nil {
		return err
	}
	s.Contacts = n
	s.Time += dt
	s.Passes++
	return nil
}

// Frame runs the configured number of passes back to back.
func (s *Scene) Frame() error {
	for i := 0; i < s.substeps; i++ {
		if err := s.Advance(); err != nil {
			return err
		}
	}
	s.Frames++
	return nil
}

// Reset puts every body back to its rest shape.
func (s *Scene) Reset() error {
	for _, e := range s.entries {
		if err := e.Body.Reset(); err != nil {
			return err
		}
		e.Refresh()
	}
	s.Time, s.Passes, s.Frames, s.Contacts = 0, 0, 0, 0
	return nil
}

// KineticEnergy sums the bodies' kinetic energies.
func (s *Scene) KineticEnergy() float64 {
	var e float64
	for _, en := range s.entries {
		e += en.Body.KineticEnergy()
	}
	return e
}

// Package mesh holds the triangulated surfaces that soft bodies deform.
//
// Vertex and triangle indices are 0-based. The legacy 1-based convention of
// Wavefront OBJ files is converted at the read/write boundary only.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrEmptyMesh    = errors.New("mesh: no vertices or triangles")
	ErrBadTriangle  = errors.New("mesh: triangle index out of range")
	ErrRestMismatch = errors.New("mesh: rest and current vertex counts differ")
)

// Mesh is a triangle surface with a live vertex array and the rest shape it
// was built from. Triangles never change after construction.
type Mesh struct {
	Name      string
	Vertices  []mgl64.Vec3
	Rest      []mgl64.Vec3
	Triangles [][3]int
}

// New validates the topology and copies vertices into both the live and
// rest arrays.
func New(name string, vertices []mgl64.Vec3, triangles [][3]int) (*Mesh, error) {
	if len(vertices) == 0 || len(triangles) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, t := range triangles {
		for _, v := range t {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrBadTriangle, i, v, len(vertices))
			}
		}
	}
	m := &Mesh{
		Name:      name,
		Vertices:  append([]mgl64.Vec3(nil), vertices...),
		Rest:      append([]mgl64.Vec3(nil), vertices...),
		Triangles: append([][3]int(nil), triangles...),
	}
	return m, nil
}

func (m *Mesh) NumVertices() int  { return len(m.Vertices) }
func (m *Mesh) NumTriangles() int { return len(m.Triangles) }

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:      m.Name,
		Vertices:  append([]mgl64.Vec3(nil), m.Vertices...),
		Rest:      append([]mgl64.Vec3(nil), m.Rest...),
		Triangles: append([][3]int(nil), m.Triangles...),
	}
}

// Translate moves both the live and rest shapes by t.
func (m *Mesh) Translate(t mgl64.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(t)
		m.Rest[i] = m.Rest[i].Add(t)
	}
}

// Scale scales both shapes about the origin.
func (m *Mesh) Scale(s float64) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Mul(s)
		m.Rest[i] = m.Rest[i].Mul(s)
	}
}

// CaptureRest copies the live positions into the rest array.
func (m *Mesh) CaptureRest() {
	if len(m.Rest) != len(m.Vertices) {
		m.Rest = make([]mgl64.Vec3, len(m.Vertices))
	}
	copy(m.Rest, m.Vertices)
}

// ResetToRest restores the live positions from the rest array.
func (m *Mesh) ResetToRest() error {
	if len(m.Rest) != len(m.Vertices) {
		return ErrRestMismatch
	}
	copy(m.Vertices, m.Rest)
	return nil
}

// Flat returns live positions as [x0 y0 z0 x1 y1 z1 ...].
func (m *Mesh) Flat() []float64 {
	out := make([]float64, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

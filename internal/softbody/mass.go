package softbody

import (
	"math"

	"github.com/san-kum/shapesim/internal/linalg"
)

// MassScale picks the power of ten that lifts 1/n to its first
// significant digit, divided by 100. A body with n vertices has total mass
// MassScale(n), keeping vertex masses in a comparable range across mesh
// resolutions.
func MassScale(n int) float64 {
	value := 1 / float64(n)
	ten := 1.0
	test := int(math.Floor(value))
	for test%10 == 0 {
		value *= 10
		test = int(math.Floor(value))
		ten *= 10
	}
	return ten / 100
}

// computeMass lumps a third of every incident triangle's area on each
// vertex, normalized by the surface area and scaled by MassScale.
func (b *Body) computeMass() error {
	m := b.Mesh
	areas := make([]float64, m.NumTriangles())
	var surface float64
	for t := range areas {
		areas[t] = m.Area(t)
		surface += areas[t]
	}
	if !(surface > 0) {
		return linalg.Degenerate("mass", "mesh %s has zero surface area", m.Name)
	}

	scale := MassScale(m.NumVertices())
	b.TotalMass = 0
	for v, tris := range b.TrianglesOf {
		var a float64
		for _, t := range tris {
			a += areas[t]
		}
		b.Mass[v] = a / 3 / surface * scale
		if !(b.Mass[v] > 0) {
			return linalg.Degenerate("mass", "vertex %d has no incident area", v)
		}
		b.TotalMass += b.Mass[v]
	}
	return nil
}

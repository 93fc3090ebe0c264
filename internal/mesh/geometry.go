package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// TriangleArea is half the magnitude of the edge cross product.
func TriangleArea(a, b, c mgl64.Vec3) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Len()
}

// Area returns the area of triangle t in the rest shape.
func (m *Mesh) Area(t int) float64 {
	tri := m.Triangles[t]
	return TriangleArea(m.Rest[tri[0]], m.Rest[tri[1]], m.Rest[tri[2]])
}

// SurfaceArea sums the rest-shape triangle areas.
func (m *Mesh) SurfaceArea() float64 {
	var total float64
	for t := range m.Triangles {
		total += m.Area(t)
	}
	return total
}

// Centroid is the unweighted mean of the live vertices.
func (m *Mesh) Centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	if len(m.Vertices) == 0 {
		return c
	}
	for _, v := range m.Vertices {
		c = c.Add(v)
	}
	return c.Mul(1.0 / float64(len(m.Vertices)))
}

// BoundingSphere returns the vertex mean and the largest distance from it.
func (m *Mesh) BoundingSphere() (mgl64.Vec3, float64) {
	c := m.Centroid()
	var r float64
	for _, v := range m.Vertices {
		if d := v.Sub(c).Len(); d > r {
			r = d
		}
	}
	return c, r
}

// Bounds returns the axis-aligned extent of the live vertices.
func (m *Mesh) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	return lo, hi
}

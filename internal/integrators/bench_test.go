package integrators

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func BenchmarkModifiedEuler(b *testing.B) {
	s := NewModifiedEuler()
	v := Vertex{Goal: mgl64.Vec3{0.1, 0.2, 0.3}, Force: mgl64.Vec3{0, -0.7, 0}, Mass: 0.025}
	c := Coefficients{Stiffness: 0.1, Damping: 0.01, Timestep: 0.002}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Position, v.Velocity = s.Step(v, c)
	}
}

func BenchmarkExplicit(b *testing.B) {
	s := NewExplicit()
	v := Vertex{Goal: mgl64.Vec3{0.1, 0.2, 0.3}, Force: mgl64.Vec3{0, -0.7, 0}, Mass: 0.025}
	c := Coefficients{Stiffness: 0.1, Damping: 0.01, Timestep: 0.002}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.Position, v.Velocity = s.Step(v, c)
	}
}

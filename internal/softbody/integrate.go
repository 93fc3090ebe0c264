package softbody

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/linalg"
)

// Integrate advances every free vertex one timestep toward its goal.
//
// The external force a vertex sees is whatever was accumulated since its
// previous pass: gravity and wall penalties from CheckWallCollision, plus
// inter-body penalties added by the scene. The wall check at the end of
// each vertex's update therefore acts on the next pass. Pinned vertices
// drop whatever was accumulated and start the next pass from gravity.
func (b *Body) Integrate() error {
	c := integrators.Coefficients{
		Stiffness: b.stiffness,
		Damping:   b.Params.VelocityDamping,
		Timestep:  b.Params.Timestep,
	}
	verts := b.Mesh.Vertices

	var sum mgl64.Vec3
	for i, x := range verts {
		if b.Pinned(x) {
			b.Force[i] = b.gravity()
			continue
		}
		if b.dragging {
			b.Force[i] = b.Force[i].Add(b.userForce)
		}
		pos, vel := b.Stepper.Step(integrators.Vertex{
			Position: x,
			Velocity: b.Velocity[i],
			Goal:     b.Goal[i],
			Force:    b.Force[i],
			Mass:     b.Mass[i],
		}, c)
		verts[i] = pos
		b.Velocity[i] = vel
		sum = sum.Add(vel)

		b.CheckWallCollision(i)
	}
	b.AverageVelocity = sum.Mul(1 / float64(len(verts)))

	if !linalg.FiniteVec3(b.AverageVelocity) {
		return linalg.Degenerate("integrate", "%s diverged (average velocity %v)", b.Mesh.Name, b.AverageVelocity)
	}
	return nil
}

// KineticEnergy is ½ Σ m|v|².
func (b *Body) KineticEnergy() float64 {
	var e float64
	for i, v := range b.Velocity {
		e += 0.5 * b.Mass[i] * v.Dot(v)
	}
	return e
}

// Package integrators advances one vertex of a shape-matched body by one
// timestep.
package integrators

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Coefficients are the per-pass scalars shared by every vertex.
type Coefficients struct {
	Stiffness float64 // α, pull toward the goal
	Damping   float64 // δ, linear velocity damping
	Timestep  float64 // h
}

// Vertex is the state the kernel reads for one particle.
type Vertex struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Goal     mgl64.Vec3
	Force    mgl64.Vec3
	Mass     float64
}

// Stepper returns the new position and velocity of a vertex.
type Stepper interface {
	Name() string
	Step(v Vertex, c Coefficients) (position, velocity mgl64.Vec3)
}

// ModifiedEuler is the semi-implicit step of shape matching:
//
//	v += (α/h)(g - x) + (h/m)F
//	v -= δv
//	x += h·v
//
// The position update uses the velocity just computed.
type ModifiedEuler struct{}

func NewModifiedEuler() *ModifiedEuler {
	return &ModifiedEuler{}
}

func (e *ModifiedEuler) Name() string { return "modified-euler" }

func (e *ModifiedEuler) Step(v Vertex, c Coefficients) (mgl64.Vec3, mgl64.Vec3) {
	vel := velocityUpdate(v, c)
	return v.Position.Add(vel.Mul(c.Timestep)), vel
}

// Explicit advances the position with the velocity from the start of the
// step. It is kept for comparison runs; it drifts faster than ModifiedEuler.
type Explicit struct{}

func NewExplicit() *Explicit {
	return &Explicit{}
}

func (e *Explicit) Name() string { return "explicit-euler" }

func (e *Explicit) Step(v Vertex, c Coefficients) (mgl64.Vec3, mgl64.Vec3) {
	vel := velocityUpdate(v, c)
	return v.Position.Add(v.Velocity.Mul(c.Timestep)), vel
}

func velocityUpdate(v Vertex, c Coefficients) mgl64.Vec3 {
	fromGoal := v.Goal.Sub(v.Position).Mul(c.Stiffness / c.Timestep)
	fromForce := v.Force.Mul(c.Timestep / v.Mass)
	vel := v.Velocity.Add(fromGoal).Add(fromForce)
	return vel.Sub(vel.Mul(c.Damping))
}

var steppers = map[string]func() Stepper{
	"modified-euler": func() Stepper { return NewModifiedEuler() },
	"explicit-euler": func() Stepper { return NewExplicit() },
}

// New looks a stepper up by name. The empty name selects ModifiedEuler.
func New(name string) (Stepper, error) {
	if name == "" {
		return NewModifiedEuler(), nil
	}
	f, ok := steppers[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return f(), nil
}

// Names lists the registered steppers.
func Names() []string {
	return []string{"modified-euler", "explicit-euler"}
}

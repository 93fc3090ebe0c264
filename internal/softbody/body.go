package softbody

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/shapesim/internal/integrators"
	"github.com/san-kum/shapesim/internal/mesh"
)

// Body is the physics state of one simulated mesh. Every per-vertex slice
// is indexed like Mesh.Vertices. The mesh's live vertex array is written
// in place by Integrate.
type Body struct {
	Mesh    *mesh.Mesh
	Params  Params
	Stepper integrators.Stepper

	Mass      []float64
	TotalMass float64

	Velocity   []mgl64.Vec3
	Force      []mgl64.Vec3
	Goal       []mgl64.Vec3
	RelRest    []mgl64.Vec3
	RelCurrent []mgl64.Vec3

	CMRest    mgl64.Vec3
	CMCurrent mgl64.Vec3

	Rotation mgl64.Mat3
	Apq      mgl64.Mat3
	Aqq      mgl64.Mat3

	// Quadratic mode: 3x9 moment, fixed 9x9 inverse shape matrix and the
	// per-vertex features [x y z x² y² z² xy yz zx] of RelRest.
	QuadMoment   *mat.Dense
	QuadShapeInv *mat.Dense
	Features     []*mat.VecDense

	AverageVelocity mgl64.Vec3

	TrianglesOf [][]int
	Neighbors   [][]int

	quadErr   error
	stiffness float64
	userForce mgl64.Vec3
	dragging  bool
}

// New builds the neighbour structures of m and initializes a body whose
// rest shape is m's current shape.
func New(m *mesh.Mesh, p Params) (*Body, error) {
	b := &Body{
		Mesh:    m,
		Params:  p.Clamp(),
		Stepper: integrators.NewModifiedEuler(),
	}
	b.TrianglesOf = m.TrianglesOfVertex()
	b.Neighbors = m.VerticesOfVertex(b.TrianglesOf)
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("init %s: %w", m.Name, err)
	}
	return b, nil
}

func (b *Body) init() error {
	n := b.Mesh.NumVertices()
	b.Mass = make([]float64, n)
	b.Velocity = make([]mgl64.Vec3, n)
	b.Force = make([]mgl64.Vec3, n)
	b.Goal = make([]mgl64.Vec3, n)
	b.RelRest = make([]mgl64.Vec3, n)
	b.RelCurrent = make([]mgl64.Vec3, n)
	b.Features = make([]*mat.VecDense, n)

	b.Mesh.CaptureRest()
	if err := b.computeMass(); err != nil {
		return err
	}
	if err := b.restMoments(); err != nil {
		return err
	}
	b.settle()
	return nil
}

// settle puts the dynamic state back to rest without touching the
// geometry-derived quantities.
func (b *Body) settle() {
	g := b.gravity()
	for i := range b.Velocity {
		b.Velocity[i] = mgl64.Vec3{}
		b.Force[i] = g
		b.Goal[i] = b.Mesh.Vertices[i]
		b.RelCurrent[i] = b.RelRest[i]
	}
	b.CMCurrent = b.CMRest
	b.Rotation = mgl64.Ident3()
	b.Apq = mgl64.Mat3{}
	b.AverageVelocity = mgl64.Vec3{}
	b.stiffness = b.Params.Stiffness
	b.dragging = false
	b.userForce = mgl64.Vec3{}
}

// Reset restores the rest shape and zeroes the dynamic state. Neighbour
// lists and moment matrices are reused.
func (b *Body) Reset() error {
	if err := b.Mesh.ResetToRest(); err != nil {
		return err
	}
	b.settle()
	return nil
}

func (b *Body) NumVertices() int { return len(b.Mass) }

func (b *Body) gravity() mgl64.Vec3 {
	return mgl64.Vec3{0, b.Params.Gravity, 0}
}

// SetParams applies p after clamping it. Asking for quadratic mode on a
// body without a usable quadratic shape matrix leaves the parameters
// unchanged.
func (b *Body) SetParams(p Params) error {
	p = p.Clamp()
	if p.Mode == Quadratic && b.quadErr != nil {
		return fmt.Errorf("quadratic mode unavailable for %s: %w", b.Mesh.Name, b.quadErr)
	}
	b.Params = p
	return nil
}

// SetMode switches the goal rule. Quadratic mode needs a non-singular
// nine-parameter shape matrix, which small meshes lack.
func (b *Body) SetMode(m Mode) error {
	p := b.Params
	p.Mode = m
	return b.SetParams(p)
}

// SupportsQuadratic reports whether the quadratic shape matrix is invertible.
func (b *Body) SupportsQuadratic() bool { return b.quadErr == nil }

// SetUserForce adds f to every free vertex's external force on each pass
// until ClearUserForce is called.
func (b *Body) SetUserForce(f mgl64.Vec3) {
	b.userForce = f
	b.dragging = true
}

func (b *Body) ClearUserForce() {
	b.userForce = mgl64.Vec3{}
	b.dragging = false
}

func (b *Body) UserForce() (mgl64.Vec3, bool) {
	return b.userForce, b.dragging
}

// Advance runs one shape-matching update followed by one integration pass.
func (b *Body) Advance() error {
	if err := b.UpdateShape(); err != nil {
		return err
	}
	return b.Integrate()
}

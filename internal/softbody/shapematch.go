package softbody

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/shapesim/internal/linalg"
)

const linearDetEpsilon = 1e-12

func (b *Body) centerOfMass(pos []mgl64.Vec3) mgl64.Vec3 {
	var c mgl64.Vec3
	for i, p := range pos {
		c = c.Add(p.Mul(b.Mass[i]))
	}
	return c.Mul(1 / b.TotalMass)
}

// restMoments computes the rest centre of mass, the rest-relative
// positions and the inverse shape matrices. They depend on the rest shape
// only.
func (b *Body) restMoments() error {
	rest := b.Mesh.Rest
	b.CMRest = b.centerOfMass(rest)

	var aqq mgl64.Mat3
	for i, p := range rest {
		q := p.Sub(b.CMRest)
		b.RelRest[i] = q
		aqq = aqq.Add(linalg.Outer(q, q).Mul(b.Mass[i]))
	}
	inv, err := linalg.Inverse3(aqq)
	if err != nil {
		return fmt.Errorf("rest shape matrix: %w", err)
	}
	b.Aqq = inv

	taqq := mat.NewDense(9, 9, nil)
	for i, q := range b.RelRest {
		f := linalg.Quadratic(q)
		b.Features[i] = f
		taqq.RankOne(taqq, b.Mass[i], f, f)
	}
	b.QuadShapeInv, b.quadErr = linalg.Inverse(taqq)
	b.QuadMoment = mat.NewDense(3, 9, nil)
	if b.quadErr != nil && b.Params.Mode == Quadratic {
		return fmt.Errorf("quadratic shape matrix: %w", b.quadErr)
	}
	return nil
}

// UpdateShape recomputes the current centre of mass, the best-fit rotation
// and the goal position of every vertex for the configured mode.
func (b *Body) UpdateShape() error {
	b.CMCurrent = b.centerOfMass(b.Mesh.Vertices)

	var apq mgl64.Mat3
	for i, x := range b.Mesh.Vertices {
		p := x.Sub(b.CMCurrent)
		b.RelCurrent[i] = p
		apq = apq.Add(linalg.Outer(p, b.RelRest[i]).Mul(b.Mass[i]))
	}
	b.Apq = apq

	r, err := linalg.Polar(apq)
	if err != nil {
		return fmt.Errorf("rotation of %s: %w", b.Mesh.Name, err)
	}
	b.Rotation = r
	b.stiffness = b.Params.Stiffness

	switch b.Params.Mode {
	case RigidBody:
		b.stiffness = 1
		b.linearGoals(r)
	case Linear:
		return b.linearBlendGoals()
	case Quadratic:
		return b.quadraticGoals()
	default:
		b.linearGoals(r)
	}
	return nil
}

// linearGoals sets g = t·q + cm for a 3x3 transform t.
func (b *Body) linearGoals(t mgl64.Mat3) {
	for i, q := range b.RelRest {
		b.Goal[i] = t.Mul3x1(q).Add(b.CMCurrent)
	}
}

// linearBlendGoals blends the affine fit Apq·Aqq, scaled to unit
// determinant, with the rotation. The real cube root keeps the sign of an
// inverted fit.
func (b *Body) linearBlendGoals() error {
	a := b.Apq.Mul3(b.Aqq)
	det := a.Det()
	if math.IsNaN(det) || math.Abs(det) < linearDetEpsilon {
		return linalg.Degenerate("linear", "affine fit of %s has det %g", b.Mesh.Name, det)
	}
	beta := b.Params.LinearBlend
	t := a.Mul(beta / math.Cbrt(det)).Add(b.Rotation.Mul(1 - beta))
	b.linearGoals(t)
	return nil
}

func (b *Body) quadraticGoals() error {
	if b.quadErr != nil {
		return fmt.Errorf("quadratic shape matrix of %s: %w", b.Mesh.Name, b.quadErr)
	}
	b.QuadMoment.Zero()
	for i, p := range b.RelCurrent {
		b.QuadMoment.RankOne(b.QuadMoment, b.Mass[i], mat.NewVecDense(3, []float64{p[0], p[1], p[2]}), b.Features[i])
	}
	fit, err := linalg.Mul(b.QuadMoment, b.QuadShapeInv)
	if err != nil {
		return err
	}
	beta := b.Params.LinearBlend
	r9, err := linalg.Add(linalg.Scale(beta, fit), linalg.Scale(1-beta, linalg.Embed3x9(b.Rotation)))
	if err != nil {
		return err
	}

	g := mat.NewVecDense(3, nil)
	for i, f := range b.Features {
		g.MulVec(r9, f)
		b.Goal[i] = mgl64.Vec3{g.AtVec(0), g.AtVec(1), g.AtVec(2)}.Add(b.CMCurrent)
	}
	return nil
}

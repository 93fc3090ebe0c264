package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/linalg"
	"github.com/san-kum/shapesim/internal/softbody"
)

// Overlaps reports whether two spheres touch or intersect.
func Overlaps(c1, c2 mgl64.Vec3, r1, r2 float64) bool {
	return c1.Sub(c2).Len() <= r1+r2
}

// ContactPoints returns, for two overlapping spheres, the point of each
// sphere that faces the other, and the unit normal n pointing from the
// second centre to the first. Every vertex of the first body lies on the
// +n side of p1, every vertex of the second on the -n side of p2.
func ContactPoints(c1, c2 mgl64.Vec3, r1, r2 float64) (p1, p2, n mgl64.Vec3, err error) {
	d := c1.Sub(c2)
	l := d.Len()
	if l == 0 {
		return p1, p2, n, linalg.Degenerate("sphere contact", "coincident centres at %v", c1)
	}
	n = d.Mul(1 / l)
	return c1.Sub(n.Mul(r1)), c2.Add(n.Mul(r2)), n, nil
}

// Collide applies penalty forces to every overlapping pair once and
// returns the number of pairs in contact.
func (s *Scene) Collide() (int, error) {
	contacts := 0
	for i, a := range s.entries {
		for _, b := range s.entries[i+1:] {
			if !Overlaps(a.Center, b.Center, a.Radius, b.Radius) {
				continue
			}
			pa, pb, n, err := ContactPoints(a.Center, b.Center, a.Radius, b.Radius)
			if err != nil {
				return contacts, err
			}
			pushAway(a.Body, pa, n, a.Radius, b.Body.AverageVelocity)
			pushAway(b.Body, pb, n.Mul(-1), b.Radius, a.Body.AverageVelocity)
			contacts++
		}
	}
	return contacts, nil
}

// pushAway adds a spring and damper force to every vertex of b directed
// away from the contact point, falling off with the squared distance.
// Within half a radius of the contact the direction is the separation
// normal and the distance is held at half a radius, which keeps the 1/l²
// force bounded for vertices next to the contact point.
func pushAway(b *softbody.Body, contact, normal mgl64.Vec3, radius float64, otherVel mgl64.Vec3) {
	k, c := b.Params.SphereSpring, b.Params.SphereDamping
	near := 0.5 * radius
	for i, x := range b.Mesh.Vertices {
		d := x.Sub(contact)
		l := d.Len()
		u := normal
		if l < near {
			l = near
		} else {
			u = d.Mul(1 / l)
		}
		if l == 0 {
			continue
		}
		rel := b.Velocity[i].Sub(otherVel).Dot(u)
		f := u.Mul((k - c*rel) * b.Mass[i] / (l * l))
		b.Force[i] = b.Force[i].Add(f)
	}
}

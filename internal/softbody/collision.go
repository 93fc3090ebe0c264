package softbody

import "github.com/go-gl/mathgl/mgl64"

// wallAnchor is the distance from the centre of the synthetic contact point
// a penetrating vertex is pushed away from. It sits inside the opposite
// face, so the push is always along the face normal.
const wallAnchor = 1.0

// Pinned reports whether x is frozen by the sticky floor.
func (b *Body) Pinned(x mgl64.Vec3) bool {
	return b.Params.StickyFloor && x[1] <= -b.Params.WallDist
}

// CheckWallCollision resets the external force on vertex i to gravity and
// adds a spring and a damper for every wall face the vertex has crossed.
func (b *Body) CheckWallCollision(i int) {
	x := b.Mesh.Vertices[i]
	w := b.Params.WallDist

	faces := [...]struct {
		hit     bool
		contact mgl64.Vec3
		depth   float64
	}{
		{x[0] > w, mgl64.Vec3{-wallAnchor, x[1], x[2]}, x[0] - w},
		{x[0] < -w, mgl64.Vec3{wallAnchor, x[1], x[2]}, -w - x[0]},
		{x[1] > w, mgl64.Vec3{x[0], -wallAnchor, x[2]}, x[1] - w},
		{x[1] <= -w, mgl64.Vec3{x[0], wallAnchor, x[2]}, -w - x[1]},
		{x[2] > w, mgl64.Vec3{x[0], x[1], -wallAnchor}, x[2] - w},
		{x[2] < -w, mgl64.Vec3{x[0], x[1], wallAnchor}, -w - x[2]},
	}

	f := b.gravity()
	m := b.Mass[i]
	for _, fc := range faces {
		if !fc.hit {
			continue
		}
		dir := x.Sub(fc.contact)
		if l := dir.Len(); l > 0 {
			f = f.Add(dir.Mul(-b.Params.WallSpring * fc.depth * m / l))
		}
		f = f.Add(b.Velocity[i].Mul(-b.Params.WallDamping * m))
	}
	b.Force[i] = f
}

// OutsideWalls counts the vertices currently beyond any wall face.
func (b *Body) OutsideWalls() int {
	w := b.Params.WallDist
	n := 0
	for _, x := range b.Mesh.Vertices {
		if x[0] > w || x[0] < -w || x[1] > w || x[1] <= -w || x[2] > w || x[2] < -w {
			n++
		}
	}
	return n
}

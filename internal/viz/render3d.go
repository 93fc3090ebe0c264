package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/shapesim/internal/mesh"
)

// Camera orbits the origin and projects world points onto the canvas.
type Camera struct {
	Yaw, Pitch float64
	Distance   float64
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: 0.5, Pitch: 0.35, Distance: 8, Zoom: 1}
}

func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw += dYaw
	c.Pitch = math.Max(-1.5, math.Min(1.5, c.Pitch+dPitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Project maps p to dot coordinates on a w x h dot raster. depth grows
// away from the viewer; ok is false behind the camera or off screen.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (x, y int, depth float64, ok bool) {
	v := c.view().Mul3x1(p).Mul(c.Zoom)
	d := c.Distance - v[2]
	if d <= 0.1 {
		return 0, 0, 0, false
	}
	scale := c.Distance / d * float64(min(w, h)) / 5
	x = int(v[0]*scale) + w/2
	y = int(-v[1]*scale) + h/2
	return x, y, d, x >= 0 && x < w && y >= 0 && y < h
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func (w *Wireframe) AddEdge(a, b mgl64.Vec3) { w.Edges = append(w.Edges, Edge{a, b}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

// AddMesh appends every triangle edge of m once, using live positions.
func (w *Wireframe) AddMesh(m *mesh.Mesh) {
	seen := make(map[[2]int]bool, 3*m.NumTriangles()/2)
	for _, t := range m.Triangles {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if seen[[2]int{a, b}] {
				continue
			}
			seen[[2]int{a, b}] = true
			w.AddEdge(m.Vertices[a], m.Vertices[b])
		}
	}
}

// AddBox appends the twelve edges of the cube [-s, s]³.
func (w *Wireframe) AddBox(s float64) {
	var v [8]mgl64.Vec3
	for i := range v {
		v[i] = mgl64.Vec3{s, s, s}
		for k := 0; k < 3; k++ {
			if i&(1<<k) == 0 {
				v[i][k] = -s
			}
		}
	}
	for i := range v {
		for k := 0; k < 3; k++ {
			if j := i | 1<<k; j != i {
				w.AddEdge(v[i], v[j])
			}
		}
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe far to near.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	dw, dh := c.DotWidth(), c.DotHeight()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, dw, dh)
		x2, y2, d2, v2 := cam.Project(e.End, dw, dh)
		if !v1 && !v2 {
			continue
		}
		if d1 == 0 || d2 == 0 {
			continue
		}
		proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

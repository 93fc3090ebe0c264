package mesh

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Tetrahedron is a regular tetrahedron centred on the origin whose
// vertices sit at distance size from the centre.
func Tetrahedron(size float64) *Mesh {
	s := size / math.Sqrt(3)
	verts := []mgl64.Vec3{
		{s, s, s},
		{s, -s, -s},
		{-s, s, -s},
		{-s, -s, s},
	}
	tris := [][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
	m, _ := New("tetrahedron", verts, tris)
	return m
}

// Cube is an axis-aligned cube of half-extent size, two triangles per face.
func Cube(size float64) *Mesh {
	s := size
	verts := []mgl64.Vec3{
		{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
		{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
	}
	tris := [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{3, 6, 2}, {3, 7, 6},
		{0, 4, 7}, {0, 7, 3},
		{1, 2, 6}, {1, 6, 5},
	}
	m, _ := New("cube", verts, tris)
	return m
}

// Icosphere subdivides an icosahedron subdiv times and projects every
// vertex onto the sphere of the given radius.
func Icosphere(subdiv int, radius float64) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	verts := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	tris := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for i := 0; i < subdiv; i++ {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if idx, ok := mid[key]; ok {
				return idx
			}
			verts = append(verts, verts[a].Add(verts[b]).Normalize())
			mid[key] = len(verts) - 1
			return len(verts) - 1
		}
		next := make([][3]int, 0, 4*len(tris))
		for _, tr := range tris {
			a := midpoint(tr[0], tr[1])
			b := midpoint(tr[1], tr[2])
			c := midpoint(tr[2], tr[0])
			next = append(next,
				[3]int{tr[0], a, c},
				[3]int{tr[1], b, a},
				[3]int{tr[2], c, b},
				[3]int{a, b, c},
			)
		}
		tris = next
	}

	for i := range verts {
		verts[i] = verts[i].Mul(radius)
	}
	m, _ := New(fmt.Sprintf("icosphere%d", subdiv), verts, tris)
	return m
}

// Jitter displaces every vertex (live and rest) by a deterministic random
// offset of at most amount per axis.
func (m *Mesh) Jitter(amount float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Vertices {
		d := mgl64.Vec3{
			(2*rng.Float64() - 1) * amount,
			(2*rng.Float64() - 1) * amount,
			(2*rng.Float64() - 1) * amount,
		}
		m.Vertices[i] = m.Vertices[i].Add(d)
		m.Rest[i] = m.Rest[i].Add(d)
	}
}

var primitives = map[string]func() *Mesh{
	"tetrahedron": func() *Mesh { return Tetrahedron(0.25) },
	"cube":        func() *Mesh { return Cube(0.2) },
	"sphere":      func() *Mesh { return Icosphere(1, 0.25) },
	"ball":        func() *Mesh { return Icosphere(2, 0.3) },
}

// Primitive returns a fresh copy of a named built-in mesh.
func Primitive(name string) (*Mesh, error) {
	f, ok := primitives[name]
	if !ok {
		return nil, fmt.Errorf("unknown mesh: %s", name)
	}
	m := f()
	m.Name = name
	return m, nil
}

// Primitives lists the built-in mesh names in sorted order.
func Primitives() []string {
	names := make([]string, 0, len(primitives))
	for n := range primitives {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

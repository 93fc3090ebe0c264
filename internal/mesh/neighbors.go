package mesh

// TrianglesOfVertex lists, for every vertex, the triangles incident to it.
func (m *Mesh) TrianglesOfVertex() [][]int {
	out := make([][]int, len(m.Vertices))
	for t, tri := range m.Triangles {
		for _, v := range tri {
			out[v] = append(out[v], t)
		}
	}
	return out
}

// VerticesOfVertex lists the distinct vertices sharing a triangle with each
// vertex, built from the incident triangle lists.
func (m *Mesh) VerticesOfVertex(trianglesOf [][]int) [][]int {
	out := make([][]int, len(m.Vertices))
	for v, tris := range trianglesOf {
		var nb []int
		for _, t := range tris {
			for _, u := range m.Triangles[t] {
				if u != v {
					nb = append(nb, u)
				}
			}
		}
		out[v] = dedup(nb)
	}
	return out
}

// dedup keeps the first occurrence of each index. Vertex degree is small so
// the quadratic scan is fine.
func dedup(in []int) []int {
	out := in[:0]
	for _, x := range in {
		seen := false
		for _, y := range out {
			if x == y {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, x)
		}
	}
	return out
}

package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/geom"
	"github.com/chazu/spatia/pkg/octree"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // scene solid this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Points returns the vertex positions.
func (m *Mesh) Points() []v3.Vec {
	pts := make([]v3.Vec, m.VertexCount())
	for i := range pts {
		pts[i] = vertexAt(m.Vertices, i)
	}
	return pts
}

// Bounds returns the tight box around every vertex, or false for an empty mesh.
func (m *Mesh) Bounds() (geom.Bounds3, bool) {
	if m.IsEmpty() {
		return geom.Bounds3{}, false
	}
	p := vertexAt(m.Vertices, 0)
	b := geom.NewBounds3(p, p)
	for i := 1; i < m.VertexCount(); i++ {
		p = vertexAt(m.Vertices, i)
		b = b.Union(geom.NewBounds3(p, p))
	}
	return b, true
}

// Weld merges vertices lying within tolerance of an earlier vertex and
// remaps the indices onto the survivors. Triangles that collapse are
// dropped, and the normals of merged vertices are averaged. The receiver is
// not modified.
func (m *Mesh) Weld(tolerance float64) *Mesh {
	out := &Mesh{PartName: m.PartName}
	if m.IsEmpty() {
		return out
	}
	tolerance = max(tolerance, 0)

	pts := m.Points()
	bounds, _ := geom.FromPoints(pts)
	index := octree.New(bounds, octree.DefaultCapacity)
	slot := make(map[v3.Vec]uint32, len(pts))
	remap := make([]uint32, len(pts))
	hasNormals := len(m.Normals) == len(m.Vertices)
	var sums []v3.Vec

	for i, p := range pts {
		if q, ok := index.Nearest(p, tolerance); ok {
			remap[i] = slot[q]
		} else {
			j := uint32(len(slot))
			slot[p] = j
			index.Insert(p)
			out.Vertices = append(out.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			sums = append(sums, v3.Vec{})
			remap[i] = j
		}
		if hasNormals {
			sums[remap[i]] = sums[remap[i]].Add(vertexAt(m.Normals, i))
		}
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := remap[m.Indices[t]], remap[m.Indices[t+1]], remap[m.Indices[t+2]]
		if a == b || b == c || a == c {
			continue
		}
		out.Indices = append(out.Indices, a, b, c)
	}

	if hasNormals {
		out.Normals = make([]float32, 0, len(out.Vertices))
		for _, n := range sums {
			if l := n.Length(); l > 0 {
				n = n.DivScalar(l)
			}
			out.Normals = append(out.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	return out
}

func vertexAt(flat []float32, i int) v3.Vec {
	return v3.Vec{X: float64(flat[i*3]), Y: float64(flat[i*3+1]), Z: float64(flat[i*3+2])}
}

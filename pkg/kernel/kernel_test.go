package kernel

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/geom"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Points / Bounds ---

func TestMeshPointsAndBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, 2, 3, -1, 5, 0, 4, -2, 1}}

	pts := m.Points()
	if len(pts) != 3 {
		t.Fatalf("Points() len = %d, want 3", len(pts))
	}
	if pts[1] != (v3.Vec{X: -1, Y: 5, Z: 0}) {
		t.Errorf("Points()[1] = %v, want (-1, 5, 0)", pts[1])
	}

	b, ok := m.Bounds()
	if !ok {
		t.Fatal("Bounds() ok = false for non-empty mesh")
	}
	want := geom.NewBounds3(v3.Vec{X: -1, Y: -2, Z: 0}, v3.Vec{X: 4, Y: 5, Z: 3})
	if b != want {
		t.Errorf("Bounds() = %v, want %v", b, want)
	}

	if _, ok := (&Mesh{}).Bounds(); ok {
		t.Error("Bounds() ok = true for empty mesh")
	}
}

// --- Weld ---

// quad returns two triangles sharing an edge, stored unindexed the way
// marching cubes emits them: six vertices, four distinct positions.
func quad() *Mesh {
	return &Mesh{
		Vertices: []float32{
			0, 0, 0, 1, 0, 0, 1, 1, 0,
			1, 1, 0, 0, 1, 0, 0, 0, 0,
		},
		Normals: []float32{
			0, 0, 1, 0, 0, 1, 0, 0, 1,
			0, 0, 1, 0, 0, 1, 0, 0, 1,
		},
		Indices:  []uint32{0, 1, 2, 3, 4, 5},
		PartName: "quad",
	}
}

func TestWeldMergesSharedVertices(t *testing.T) {
	m := quad()
	w := m.Weld(0)

	if got := w.VertexCount(); got != 4 {
		t.Errorf("VertexCount() = %d, want 4", got)
	}
	if got := w.TriangleCount(); got != 2 {
		t.Errorf("TriangleCount() = %d, want 2", got)
	}
	if len(w.Normals) != len(w.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(w.Normals), len(w.Vertices))
	}
	if w.PartName != "quad" {
		t.Errorf("PartName = %q, want quad", w.PartName)
	}
	// Second triangle now reuses the first triangle's corners.
	want := []uint32{0, 1, 2, 2, 3, 0}
	for i := range want {
		if w.Indices[i] != want[i] {
			t.Fatalf("Indices = %v, want %v", w.Indices, want)
		}
	}
	if m.VertexCount() != 6 {
		t.Error("Weld() modified its receiver")
	}
}

func TestWeldWithNonFiniteVertex(t *testing.T) {
	m := quad()
	nan := float32(math.NaN())
	m.Vertices = append(m.Vertices, nan, 0, 0, 1, 0, 0, 1, 1, 0)
	m.Normals = append(m.Normals, 0, 0, 1, 0, 0, 1, 0, 0, 1)
	m.Indices = append(m.Indices, 6, 7, 8)

	w := m.Weld(0)
	// The NaN vertex stays on its own; the finite ones still merge.
	if got := w.VertexCount(); got != 5 {
		t.Errorf("VertexCount() = %d, want 5", got)
	}
	if got := w.TriangleCount(); got != 3 {
		t.Errorf("TriangleCount() = %d, want 3", got)
	}
}

func TestWeldTolerance(t *testing.T) {
	m := quad()
	// Nudge the duplicate of vertex 0 off by a small amount.
	m.Vertices[15] = 0.001

	tests := []struct {
		name      string
		tolerance float64
		want      int
	}{
		{"exact only", 0, 5},
		{"below nudge", 0.0005, 5},
		{"above nudge", 0.01, 4},
		{"negative treated as zero", -1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Weld(tt.tolerance).VertexCount(); got != tt.want {
				t.Errorf("Weld(%v).VertexCount() = %d, want %d", tt.tolerance, got, tt.want)
			}
		})
	}
}

func TestWeldDropsCollapsedTriangles(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 0.001, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2},
	}
	w := m.Weld(0.01)
	if w.TriangleCount() != 0 {
		t.Errorf("TriangleCount() = %d, want 0", w.TriangleCount())
	}
	if w.Normals != nil {
		t.Errorf("Normals = %v, want nil for a mesh without normals", w.Normals)
	}
}

func TestWeldAveragesNormals(t *testing.T) {
	m := &Mesh{
		Vertices: []float32{0, 0, 0, 0, 0, 0},
		Normals:  []float32{1, 0, 0, 0, 1, 0},
	}
	w := m.Weld(0)
	if w.VertexCount() != 1 {
		t.Fatalf("VertexCount() = %d, want 1", w.VertexCount())
	}
	inv := float32(1 / math.Sqrt2)
	for i, want := range []float32{inv, inv, 0} {
		if math.Abs(float64(w.Normals[i]-want)) > 1e-6 {
			t.Errorf("Normals[%d] = %v, want %v", i, w.Normals[i], want)
		}
	}
}

func TestWeldEmpty(t *testing.T) {
	w := (&Mesh{PartName: "none"}).Weld(1)
	if !w.IsEmpty() || w.PartName != "none" {
		t.Errorf("Weld() on empty mesh = %+v", w)
	}
}

// --- Compile-time interface check with a stub kernel ---

type stubSolid struct {
	bounds geom.Bounds3
}

func (s *stubSolid) BoundingBox() geom.Bounds3 {
	return s.bounds
}

type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{bounds: geom.FromCenterSize(v3.Vec{}, v3.Vec{X: x, Y: y, Z: z})}
}

func (k *stubKernel) Sphere(r float64) Solid {
	return &stubSolid{bounds: geom.FromCenterSize(v3.Vec{}, v3.Vec{X: 2 * r, Y: 2 * r, Z: 2 * r})}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{bounds: geom.FromCenterSize(v3.Vec{}, v3.Vec{X: 2 * radius, Y: 2 * radius, Z: height})}
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	b := k.Box(10, 20, 30).BoundingBox()
	want := geom.NewBounds3(v3.Vec{X: -5, Y: -10, Z: -15}, v3.Vec{X: 5, Y: 10, Z: 15})
	if b != want {
		t.Errorf("Box bounds = %v, want %v", b, want)
	}
}

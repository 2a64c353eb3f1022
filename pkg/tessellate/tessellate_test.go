package tessellate_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/geom"
	"github.com/chazu/spatia/pkg/kernel"
	"github.com/chazu/spatia/pkg/kernel/sdfx"
	"github.com/chazu/spatia/pkg/scene"
	"github.com/chazu/spatia/pkg/tessellate"
)

// boxKernel is a kernel whose solids are just bounding boxes. It records the
// operations it was asked to perform.
type boxKernel struct {
	ops []string
}

type boxSolid struct {
	b geom.Bounds3
}

func (s *boxSolid) BoundingBox() geom.Bounds3 { return s.b }

func cube(x, y, z float64) kernel.Solid {
	return &boxSolid{b: geom.FromCenterSize(v3.Vec{}, v3.Vec{X: x, Y: y, Z: z})}
}

func (k *boxKernel) Box(x, y, z float64) kernel.Solid {
	k.ops = append(k.ops, "box")
	return cube(x, y, z)
}

func (k *boxKernel) Sphere(r float64) kernel.Solid {
	k.ops = append(k.ops, "sphere")
	return cube(2*r, 2*r, 2*r)
}

func (k *boxKernel) Cylinder(h, r float64, _ int) kernel.Solid {
	k.ops = append(k.ops, "cylinder")
	return cube(2*r, 2*r, h)
}

func (k *boxKernel) Union(a, b kernel.Solid) kernel.Solid {
	k.ops = append(k.ops, "union")
	return &boxSolid{b: a.BoundingBox().Union(b.BoundingBox())}
}

func (k *boxKernel) Difference(a, _ kernel.Solid) kernel.Solid {
	k.ops = append(k.ops, "difference")
	return a
}

func (k *boxKernel) Intersection(a, _ kernel.Solid) kernel.Solid {
	k.ops = append(k.ops, "intersection")
	return a
}

func (k *boxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.ops = append(k.ops, fmt.Sprintf("translate(%g,%g,%g)", x, y, z))
	d := v3.Vec{X: x, Y: y, Z: z}
	b := s.BoundingBox()
	return &boxSolid{b: geom.NewBounds3(b.Min.Add(d), b.Max.Add(d))}
}

func (k *boxKernel) Rotate(s kernel.Solid, _, _, _ float64) kernel.Solid { return s }

// ToMesh emits the two opposite corners as a degenerate mesh.
func (k *boxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	b := s.BoundingBox()
	return &kernel.Mesh{Vertices: []float32{
		float32(b.Min.X), float32(b.Min.Y), float32(b.Min.Z),
		float32(b.Max.X), float32(b.Max.Y), float32(b.Max.Z),
	}}, nil
}

func meshBounds(t *testing.T, m *kernel.Mesh) geom.Bounds3 {
	t.Helper()
	b, ok := m.Bounds()
	if !ok {
		t.Fatalf("mesh %q is empty", m.PartName)
	}
	return b
}

func TestNilScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, &boxKernel{})
	if err != nil || meshes != nil {
		t.Errorf("Tessellate(nil) = %v, %v; want nil, nil", meshes, err)
	}
}

func TestOneMeshPerSolidInOrder(t *testing.T) {
	sc := scene.New()
	sc.AddSolid("side-panel", scene.Box(4, 3, 1), v3.Vec{})
	sc.AddSelection("ignored", []v3.Vec{{}})
	sc.AddSolid("knob", scene.Sphere(1), v3.Vec{})

	meshes, err := tessellate.Tessellate(sc, &boxKernel{})
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if meshes[0].PartName != "side-panel" || meshes[1].PartName != "knob" {
		t.Errorf("part names = %q, %q", meshes[0].PartName, meshes[1].PartName)
	}
}

func TestSolidPlacement(t *testing.T) {
	sc := scene.New()
	sc.AddSolid("shelf", scene.Box(10, 4, 2).Moved(v3.Vec{Z: 1}), v3.Vec{X: 100})

	k := &boxKernel{}
	meshes, err := tessellate.Tessellate(sc, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	got := meshBounds(t, meshes[0])
	want := geom.NewBounds3(v3.Vec{X: 95, Y: -2, Z: 0}, v3.Vec{X: 105, Y: 2, Z: 2})
	if got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
	wantOps := "box translate(0,0,1) translate(100,0,0)"
	if strings.Join(k.ops, " ") != wantOps {
		t.Errorf("ops = %v, want %s", k.ops, wantOps)
	}
}

func TestBooleanFold(t *testing.T) {
	sc := scene.New()
	sc.AddSolid("blob", scene.Combine(scene.ShapeUnion,
		scene.Box(2, 2, 2),
		scene.Sphere(1).Moved(v3.Vec{X: 4}),
		scene.Combine(scene.ShapeDifference, scene.Box(2, 2, 2), scene.Cylinder(4, 0.5)).Moved(v3.Vec{Y: -4}),
	), v3.Vec{})

	k := &boxKernel{}
	meshes, err := tessellate.Tessellate(sc, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	want := geom.NewBounds3(v3.Vec{X: -1, Y: -5, Z: -1}, v3.Vec{X: 5, Y: 1, Z: 1})
	if got := meshBounds(t, meshes[0]); got != want {
		t.Errorf("bounds = %v, want %v", got, want)
	}
	wantOps := "box sphere translate(4,0,0) union box cylinder difference translate(0,-4,0) union"
	if strings.Join(k.ops, " ") != wantOps {
		t.Errorf("ops = %s\nwant  %s", strings.Join(k.ops, " "), wantOps)
	}
}

func TestMissingShape(t *testing.T) {
	sc := scene.New()
	sc.AddSolid("ghost", nil, v3.Vec{})
	_, err := tessellate.Tessellate(sc, &boxKernel{})
	if err == nil || !strings.Contains(err.Error(), `solid "ghost"`) {
		t.Errorf("expected error naming the solid, got %v", err)
	}
}

func TestSdfxKernel(t *testing.T) {
	sc := scene.New()
	sc.AddSolid("ball", scene.Sphere(5), v3.Vec{X: 20})

	meshes, err := tessellate.Tessellate(sc, sdfx.New(sdfx.WithCells(32)))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	m := meshes[0]
	if m.IsEmpty() || m.TriangleCount() == 0 {
		t.Fatal("mesh should not be empty")
	}
	c := meshBounds(t, m).Center()
	if math.Abs(c.X-20) > 0.5 || math.Abs(c.Y) > 0.5 || math.Abs(c.Z) > 0.5 {
		t.Errorf("mesh center = %v, want ~(20, 0, 0)", c)
	}
}

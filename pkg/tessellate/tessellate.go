// Package tessellate turns the solids of a scene into triangle meshes using
// a geometry kernel. One mesh is produced per solid, in declaration order.
package tessellate

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/kernel"
	"github.com/chazu/spatia/pkg/scene"
)

// Tessellate builds and meshes every solid in sc. It never mutates the scene.
func Tessellate(sc *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if sc == nil {
		return nil, nil
	}

	var meshes []*kernel.Mesh
	for _, e := range sc.Solids() {
		data, ok := e.Data.(scene.SolidData)
		if !ok {
			return nil, fmt.Errorf("tessellate: solid %q has unexpected data type %T", e.Name, e.Data)
		}

		solid, err := build(k, data.Shape)
		if err != nil {
			return nil, fmt.Errorf("tessellate: solid %q: %w", e.Name, err)
		}
		solid = translate(k, solid, data.At)

		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for solid %q: %w", e.Name, err)
		}
		mesh.PartName = e.Name
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// build converts a shape tree into a kernel solid, depth first.
func build(k kernel.Kernel, sh *scene.Shape) (kernel.Solid, error) {
	if sh == nil {
		return nil, fmt.Errorf("missing shape")
	}

	var solid kernel.Solid
	switch sh.Kind {
	case scene.ShapeBox:
		solid = k.Box(sh.Size.X, sh.Size.Y, sh.Size.Z)
	case scene.ShapeSphere:
		solid = k.Sphere(sh.Radius)
	case scene.ShapeCylinder:
		solid = k.Cylinder(sh.Height, sh.Radius, 32)
	case scene.ShapeUnion, scene.ShapeDifference, scene.ShapeIntersection:
		if len(sh.Operands) == 0 {
			return nil, fmt.Errorf("%s has no operands", sh.Kind)
		}
		var err error
		if solid, err = build(k, sh.Operands[0]); err != nil {
			return nil, err
		}
		for _, op := range sh.Operands[1:] {
			next, err := build(k, op)
			if err != nil {
				return nil, err
			}
			solid = combine(k, sh.Kind, solid, next)
		}
	default:
		return nil, fmt.Errorf("unknown shape kind: %v", sh.Kind)
	}
	return translate(k, solid, sh.Offset), nil
}

func combine(k kernel.Kernel, kind scene.ShapeKind, a, b kernel.Solid) kernel.Solid {
	switch kind {
	case scene.ShapeDifference:
		return k.Difference(a, b)
	case scene.ShapeIntersection:
		return k.Intersection(a, b)
	default:
		return k.Union(a, b)
	}
}

func translate(k kernel.Kernel, s kernel.Solid, d v3.Vec) kernel.Solid {
	if d == (v3.Vec{}) {
		return s
	}
	return k.Translate(s, d.X, d.Y, d.Z)
}

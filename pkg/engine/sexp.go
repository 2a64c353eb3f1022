package engine

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/spatia/pkg/geom"
	"github.com/chazu/spatia/pkg/octree"
	"github.com/chazu/spatia/pkg/scene"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpBounds wraps an axis-aligned box.
type sexpBounds struct {
	b geom.Bounds3
}

func (b *sexpBounds) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(bounds %g %g %g %g %g %g)",
		b.b.Min.X, b.b.Min.Y, b.b.Min.Z, b.b.Max.X, b.b.Max.Y, b.b.Max.Z)
}
func (b *sexpBounds) Type() *zygo.RegisteredType { return nil }

// sexpOctree is a handle to an index registered in the scene.
type sexpOctree struct {
	name string
	tree *octree.Octree
}

func (o *sexpOctree) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(octree %q :points %d :leaves %d)", o.name, o.tree.CountPoints(), o.tree.CountLeaves())
}
func (o *sexpOctree) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a shape tree node.
type sexpShape struct {
	shape *scene.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", s.shape.Kind)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

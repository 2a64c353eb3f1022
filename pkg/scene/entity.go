package scene

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/octree"
)

// Kind enumerates the entities a sketch can declare.
type Kind int

const (
	KindIndex     Kind = iota // octree point index
	KindSelection             // named point list, usually a query result
	KindSolid                 // solid to tessellate
)

func (k Kind) String() string {
	switch k {
	case KindIndex:
		return "index"
	case KindSelection:
		return "selection"
	case KindSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// Entity is a named element of a Scene.
type Entity struct {
	Name string     `json:"name"`
	Kind Kind       `json:"kind"`
	Data EntityData `json:"data"`
}

// EntityData is the interface for kind-specific payloads.
type EntityData interface {
	entityData() // marker method restricting implementations to this package
}

// IndexData wraps a live octree.
type IndexData struct {
	Tree *octree.Octree `json:"tree"`
}

// SelectionData is a point list captured at declaration time.
type SelectionData struct {
	Points []v3.Vec `json:"points"`
}

// SolidData is a shape tree placed at a translation.
type SolidData struct {
	Shape *Shape `json:"shape"`
	At    v3.Vec `json:"at"`
}

func (IndexData) entityData()     {}
func (SelectionData) entityData() {}
func (SolidData) entityData()     {}

// ShapeKind enumerates shape tree nodes.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
	ShapeCylinder
	ShapeUnion
	ShapeDifference
	ShapeIntersection
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	case ShapeUnion:
		return "union"
	case ShapeDifference:
		return "difference"
	case ShapeIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// IsBoolean reports whether k combines operand shapes.
func (k ShapeKind) IsBoolean() bool {
	return k >= ShapeUnion
}

// Shape is a node of a constructive solid tree. Primitives are centered on
// the origin and then moved by Offset.
type Shape struct {
	Kind     ShapeKind `json:"kind"`
	Size     v3.Vec    `json:"size"`             // box
	Radius   float64   `json:"radius,omitempty"` // sphere, cylinder
	Height   float64   `json:"height,omitempty"` // cylinder
	Offset   v3.Vec    `json:"offset"`
	Operands []*Shape  `json:"operands,omitempty"`
}

// Box returns a box shape.
func Box(x, y, z float64) *Shape {
	return &Shape{Kind: ShapeBox, Size: v3.Vec{X: x, Y: y, Z: z}}
}

// Sphere returns a sphere shape.
func Sphere(radius float64) *Shape {
	return &Shape{Kind: ShapeSphere, Radius: radius}
}

// Cylinder returns a cylinder along z.
func Cylinder(height, radius float64) *Shape {
	return &Shape{Kind: ShapeCylinder, Height: height, Radius: radius}
}

// Combine returns a boolean shape over operands.
func Combine(kind ShapeKind, operands ...*Shape) *Shape {
	return &Shape{Kind: kind, Operands: operands}
}

// Moved returns a copy of s translated by d.
func (s *Shape) Moved(d v3.Vec) *Shape {
	c := *s
	c.Offset = s.Offset.Add(d)
	return &c
}

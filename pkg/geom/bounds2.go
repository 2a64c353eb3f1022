package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Quadrant indices into the array returned by Bounds2.Split.
const (
	SouthWest = iota
	SouthEast
	NorthWest
	NorthEast
)

// QuadrantCount is the number of sub-rectangles produced by a split.
const QuadrantCount = 4

// Bounds2 is an axis-aligned rectangle.
type Bounds2 struct {
	Min v2.Vec `json:"min"`
	Max v2.Vec `json:"max"`
}

// NewBounds2 returns the rectangle spanning min and max.
func NewBounds2(min, max v2.Vec) Bounds2 {
	return Bounds2{Min: min, Max: max}
}

// IsFinite2 is the 2D counterpart of IsFinite.
func IsFinite2(v v2.Vec) bool {
	return finite(v.X) && finite(v.Y)
}

// FromPoints2 is the 2D counterpart of FromPoints.
func FromPoints2(points []v2.Vec) (Bounds2, bool) {
	lb := v2.Vec{X: math.MaxFloat64, Y: math.MaxFloat64}
	ub := v2.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64}
	found := false
	for _, p := range points {
		if !IsFinite2(p) {
			continue
		}
		found = true
		lb.X = math.Min(lb.X, p.X)
		lb.Y = math.Min(lb.Y, p.Y)
		ub.X = math.Max(ub.X, p.X)
		ub.Y = math.Max(ub.Y, p.Y)
	}
	if !found {
		return Bounds2{}, false
	}
	pad := 2 * Epsilon
	return Bounds2{
		Min: v2.Vec{X: lb.X - pad, Y: lb.Y - pad},
		Max: v2.Vec{X: ub.X + pad, Y: ub.Y + pad},
	}, true
}

// Contains is the half-open containment test (min inclusive, max exclusive).
func (b Bounds2) Contains(v v2.Vec) bool {
	return v.X >= b.Min.X && v.X < b.Max.X &&
		v.Y >= b.Min.Y && v.Y < b.Max.Y
}

// ContainsInclusive tests containment with every edge inclusive.
func (b Bounds2) ContainsInclusive(v v2.Vec) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X &&
		v.Y >= b.Min.Y && v.Y <= b.Max.Y
}

// Intersects reports whether two rectangles overlap or touch.
func (b Bounds2) Intersects(o Bounds2) bool {
	return b.Max.X >= o.Min.X && b.Min.X <= o.Max.X &&
		b.Max.Y >= o.Min.Y && b.Min.Y <= o.Max.Y
}

// IntersectsCircleSq reports whether a circle, radius squared, overlaps b.
func (b Bounds2) IntersectsCircleSq(center v2.Vec, rsq float64) bool {
	xd := axisGap(center.X, b.Min.X, b.Max.X)
	yd := axisGap(center.Y, b.Min.Y, b.Max.Y)
	return xd*xd+yd*yd <= rsq
}

// Center returns the midpoint of b.
func (b Bounds2) Center() v2.Vec {
	return v2.Vec{X: (b.Min.X + b.Max.X) * 0.5, Y: (b.Min.Y + b.Max.Y) * 0.5}
}

// Verified mirrors Bounds3.Verified.
func (b Bounds2) Verified() Bounds2 {
	minX, maxX := verifyAxis(b.Min.X, b.Max.X)
	minY, maxY := verifyAxis(b.Min.Y, b.Max.Y)
	return Bounds2{Min: v2.Vec{X: minX, Y: minY}, Max: v2.Vec{X: maxX, Y: maxY}}
}

// Split divides b into quadrants at relative factors tx, ty.
func (b Bounds2) Split(tx, ty float64) [QuadrantCount]Bounds2 {
	tx = clampFactor(tx)
	ty = clampFactor(ty)
	x := (1-tx)*b.Min.X + tx*b.Max.X
	y := (1-ty)*b.Min.Y + ty*b.Max.Y

	lo, hi := b.Min, b.Max
	return [QuadrantCount]Bounds2{
		SouthWest: {Min: v2.Vec{X: lo.X, Y: lo.Y}, Max: v2.Vec{X: x, Y: y}},
		SouthEast: {Min: v2.Vec{X: x, Y: lo.Y}, Max: v2.Vec{X: hi.X, Y: y}},
		NorthWest: {Min: v2.Vec{X: lo.X, Y: y}, Max: v2.Vec{X: x, Y: hi.Y}},
		NorthEast: {Min: v2.Vec{X: x, Y: y}, Max: v2.Vec{X: hi.X, Y: hi.Y}},
	}
}

func (b Bounds2) String() string {
	return fmt.Sprintf("[(%g, %g) (%g, %g)]", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// DistSq2 returns the squared distance between two 2D points.
func DistSq2(a, b v2.Vec) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

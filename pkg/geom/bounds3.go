package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the tolerance used to pad degenerate bounds and to keep split
// factors away from the box faces.
const Epsilon = 1e-6

// Octant indices into the array returned by Bounds3.Split. Bit 0 selects
// east (x), bit 1 north (y), bit 2 front (z).
const (
	BackSouthWest = iota
	BackSouthEast
	BackNorthWest
	BackNorthEast
	FrontSouthWest
	FrontSouthEast
	FrontNorthWest
	FrontNorthEast
)

// OctantCount is the number of sub-boxes produced by a split.
const OctantCount = 8

// Bounds3 is an axis-aligned box. Callers are expected to keep Min <= Max
// componentwise; Verified repairs boxes that do not.
type Bounds3 struct {
	Min v3.Vec `json:"min"`
	Max v3.Vec `json:"max"`
}

// NewBounds3 returns the box spanning min and max.
func NewBounds3(min, max v3.Vec) Bounds3 {
	return Bounds3{Min: min, Max: max}
}

// UnitCubeSigned returns the box [-1, 1] on every axis.
func UnitCubeSigned() Bounds3 {
	return Bounds3{Min: v3.Vec{X: -1, Y: -1, Z: -1}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
}

// UnitCubeUnsigned returns the box [0, 1] on every axis.
func UnitCubeUnsigned() Bounds3 {
	return Bounds3{Max: v3.Vec{X: 1, Y: 1, Z: 1}}
}

// FromCenterSize returns a box of the given size centered on c.
func FromCenterSize(c, size v3.Vec) Bounds3 {
	half := size.MulScalar(0.5)
	return Bounds3{Min: c.Sub(half), Max: c.Add(half)}
}

// FromBox3 converts an sdfx box.
func FromBox3(b sdf.Box3) Bounds3 {
	return Bounds3{Min: b.Min, Max: b.Max}
}

// Box3 converts to an sdfx box.
func (b Bounds3) Box3() sdf.Box3 {
	return sdf.Box3{Min: b.Min, Max: b.Max}
}

// IsFinite reports whether every component of v is neither NaN nor infinite.
func IsFinite(v v3.Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FromPoints returns the smallest box holding every finite point, padded by
// 2*Epsilon so that the maximum points still pass the half-open Contains
// test. Points with NaN or infinite components are ignored. It returns false
// when no finite point remains.
func FromPoints(points []v3.Vec) (Bounds3, bool) {
	lb := v3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	ub := v3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	found := false
	for _, p := range points {
		if !IsFinite(p) {
			continue
		}
		found = true
		lb.X = math.Min(lb.X, p.X)
		lb.Y = math.Min(lb.Y, p.Y)
		lb.Z = math.Min(lb.Z, p.Z)
		ub.X = math.Max(ub.X, p.X)
		ub.Y = math.Max(ub.Y, p.Y)
		ub.Z = math.Max(ub.Z, p.Z)
	}
	if !found {
		return Bounds3{}, false
	}

	pad := 2 * Epsilon
	return Bounds3{
		Min: v3.Vec{X: lb.X - pad, Y: lb.Y - pad, Z: lb.Z - pad},
		Max: v3.Vec{X: ub.X + pad, Y: ub.Y + pad, Z: ub.Z + pad},
	}, true
}

// Contains reports whether v lies in b with the lower faces inclusive and the
// upper faces exclusive, so that boxes tiling a volume own each point once.
func (b Bounds3) Contains(v v3.Vec) bool {
	return v.X >= b.Min.X && v.X < b.Max.X &&
		v.Y >= b.Min.Y && v.Y < b.Max.Y &&
		v.Z >= b.Min.Z && v.Z < b.Max.Z
}

// ContainsInclusive reports whether v lies in b with every face inclusive.
func (b Bounds3) ContainsInclusive(v v3.Vec) bool {
	return v.X >= b.Min.X && v.X <= b.Max.X &&
		v.Y >= b.Min.Y && v.Y <= b.Max.Y &&
		v.Z >= b.Min.Z && v.Z <= b.Max.Z
}

// Intersects reports whether two boxes overlap or touch.
func (b Bounds3) Intersects(o Bounds3) bool {
	return b.Max.X >= o.Min.X && b.Min.X <= o.Max.X &&
		b.Max.Y >= o.Min.Y && b.Min.Y <= o.Max.Y &&
		b.Max.Z >= o.Min.Z && b.Min.Z <= o.Max.Z
}

// IntersectsSphere reports whether the sphere at center with the given
// radius overlaps or touches b.
func (b Bounds3) IntersectsSphere(center v3.Vec, radius float64) bool {
	return b.IntersectsSphereSq(center, radius*radius)
}

// IntersectsSphereSq is IntersectsSphere with the radius already squared.
func (b Bounds3) IntersectsSphereSq(center v3.Vec, rsq float64) bool {
	xd := axisGap(center.X, b.Min.X, b.Max.X)
	yd := axisGap(center.Y, b.Min.Y, b.Max.Y)
	zd := axisGap(center.Z, b.Min.Z, b.Max.Z)
	return xd*xd+yd*yd+zd*zd <= rsq
}

// axisGap is the signed distance from c to the interval [lo, hi], zero inside.
func axisGap(c, lo, hi float64) float64 {
	switch {
	case c < lo:
		return c - lo
	case c > hi:
		return c - hi
	}
	return 0
}

// Center returns the midpoint of b.
func (b Bounds3) Center() v3.Vec {
	return v3.Vec{
		X: (b.Min.X + b.Max.X) * 0.5,
		Y: (b.Min.Y + b.Max.Y) * 0.5,
		Z: (b.Min.Z + b.Max.Z) * 0.5,
	}
}

// Size returns the extent of b on each axis.
func (b Bounds3) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Volume returns the unsigned volume of b.
func (b Bounds3) Volume() float64 {
	s := b.Size()
	return math.Abs(s.X * s.Y * s.Z)
}

// Union returns the smallest box holding both a and b.
func (b Bounds3) Union(o Bounds3) Bounds3 {
	return Bounds3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Verified returns a copy of b with Min and Max swapped where inverted and
// zero-width axes padded by 2*Epsilon.
func (b Bounds3) Verified() Bounds3 {
	minX, maxX := verifyAxis(b.Min.X, b.Max.X)
	minY, maxY := verifyAxis(b.Min.Y, b.Max.Y)
	minZ, maxZ := verifyAxis(b.Min.Z, b.Max.Z)
	return Bounds3{
		Min: v3.Vec{X: minX, Y: minY, Z: minZ},
		Max: v3.Vec{X: maxX, Y: maxY, Z: maxZ},
	}
}

// IsValid reports whether Min <= Max on every axis and no coordinate is NaN.
func (b Bounds3) IsValid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

func verifyAxis(lo, hi float64) (float64, float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo <= Epsilon {
		lo -= 2 * Epsilon
		hi += 2 * Epsilon
	}
	return lo, hi
}

// Split divides b into eight octants at the relative factors tx, ty, tz,
// each clamped to [Epsilon, 1-Epsilon]. The result is indexed by the octant
// constants (BackSouthWest .. FrontNorthEast).
func (b Bounds3) Split(tx, ty, tz float64) [OctantCount]Bounds3 {
	tx = clampFactor(tx)
	ty = clampFactor(ty)
	tz = clampFactor(tz)

	x := (1-tx)*b.Min.X + tx*b.Max.X
	y := (1-ty)*b.Min.Y + ty*b.Max.Y
	z := (1-tz)*b.Min.Z + tz*b.Max.Z

	lo, hi := b.Min, b.Max
	return [OctantCount]Bounds3{
		BackSouthWest:  {Min: v3.Vec{X: lo.X, Y: lo.Y, Z: lo.Z}, Max: v3.Vec{X: x, Y: y, Z: z}},
		BackSouthEast:  {Min: v3.Vec{X: x, Y: lo.Y, Z: lo.Z}, Max: v3.Vec{X: hi.X, Y: y, Z: z}},
		BackNorthWest:  {Min: v3.Vec{X: lo.X, Y: y, Z: lo.Z}, Max: v3.Vec{X: x, Y: hi.Y, Z: z}},
		BackNorthEast:  {Min: v3.Vec{X: x, Y: y, Z: lo.Z}, Max: v3.Vec{X: hi.X, Y: hi.Y, Z: z}},
		FrontSouthWest: {Min: v3.Vec{X: lo.X, Y: lo.Y, Z: z}, Max: v3.Vec{X: x, Y: y, Z: hi.Z}},
		FrontSouthEast: {Min: v3.Vec{X: x, Y: lo.Y, Z: z}, Max: v3.Vec{X: hi.X, Y: y, Z: hi.Z}},
		FrontNorthWest: {Min: v3.Vec{X: lo.X, Y: y, Z: z}, Max: v3.Vec{X: x, Y: hi.Y, Z: hi.Z}},
		FrontNorthEast: {Min: v3.Vec{X: x, Y: y, Z: z}, Max: v3.Vec{X: hi.X, Y: hi.Y, Z: hi.Z}},
	}
}

// SplitAt divides b into octants meeting at v. It returns false, and zero
// boxes, when v is not strictly inside b.
func (b Bounds3) SplitAt(v v3.Vec) ([OctantCount]Bounds3, bool) {
	if !(v.X > b.Min.X && v.X < b.Max.X &&
		v.Y > b.Min.Y && v.Y < b.Max.Y &&
		v.Z > b.Min.Z && v.Z < b.Max.Z) {
		return [OctantCount]Bounds3{}, false
	}
	s := b.Size()
	return b.Split((v.X-b.Min.X)/s.X, (v.Y-b.Min.Y)/s.Y, (v.Z-b.Min.Z)/s.Z), true
}

func clampFactor(t float64) float64 {
	return math.Max(Epsilon, math.Min(1-Epsilon, t))
}

func (b Bounds3) String() string {
	return fmt.Sprintf("[(%g, %g, %g) (%g, %g, %g)]",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}

// DistSq returns the squared Euclidean distance between a and b.
func DistSq(a, b v3.Vec) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// DistChebyshev returns the largest per-axis distance between a and b.
func DistChebyshev(a, b v3.Vec) float64 {
	return math.Max(math.Abs(a.X-b.X), math.Max(math.Abs(a.Y-b.Y), math.Abs(a.Z-b.Z)))
}

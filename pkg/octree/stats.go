package octree

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/geom"
)

// Leaf describes one leaf node. Points is a copy.
type Leaf struct {
	Bounds geom.Bounds3
	Level  int
	Points []v3.Vec
}

func everything(geom.Bounds3) bool { return true }

// CountLeaves returns the number of leaf nodes; 1 for an unsplit tree.
func (o *Octree) CountLeaves() int {
	count := 0
	o.visit(everything, func(*node) { count++ })
	return count
}

// CountPoints returns the number of points held across all leaves.
func (o *Octree) CountPoints() int {
	count := 0
	o.visit(everything, func(n *node) { count += len(n.points) })
	return count
}

// Len is CountPoints.
func (o *Octree) Len() int { return o.CountPoints() }

// TotalCapacity is the sum of the capacities of all leaves.
func (o *Octree) TotalCapacity() int {
	return o.CountLeaves() * o.capacity
}

// Depth returns the deepest level present in the tree; 0 for an unsplit
// tree. The split limit set by WithMaxLevel is a separate setting.
func (o *Octree) Depth() int {
	deepest := RootLevel
	for i := range o.nodes {
		deepest = max(deepest, o.nodes[i].level)
	}
	return deepest
}

// Points returns a copy of every point in the tree, leaf by leaf.
func (o *Octree) Points() []v3.Vec {
	pts := make([]v3.Vec, 0, o.capacity)
	o.visit(everything, func(n *node) { pts = append(pts, n.points...) })
	return pts
}

// Leaves returns every leaf in depth-first octant order.
func (o *Octree) Leaves() []Leaf {
	var leaves []Leaf
	o.visit(everything, func(n *node) {
		leaves = append(leaves, Leaf{
			Bounds: n.bounds,
			Level:  n.level,
			Points: append([]v3.Vec(nil), n.points...),
		})
	})
	return leaves
}

// CentersMean returns the mean of the points in each leaf. Empty leaves
// contribute the center of their bounds when includeEmpty is set and are
// skipped otherwise.
func (o *Octree) CentersMean(includeEmpty bool) []v3.Vec {
	var centers []v3.Vec
	o.visit(everything, func(n *node) {
		switch len(n.points) {
		case 0:
			if includeEmpty {
				centers = append(centers, n.bounds.Center())
			}
		case 1:
			centers = append(centers, n.points[0])
		default:
			var sum v3.Vec
			for _, p := range n.points {
				sum = sum.Add(p)
			}
			centers = append(centers, sum.MulScalar(1/float64(len(n.points))))
		}
	})
	return centers
}

package octree

import (
	"cmp"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/spatia/pkg/geom"
)

// Query returns the points inside r, faces inclusive. Subtrees whose bounds
// do not touch r are skipped. The order of the result is unspecified.
func (o *Octree) Query(r geom.Bounds3) []v3.Vec {
	found := make([]v3.Vec, 0)
	o.visit(r.Intersects, func(n *node) {
		for _, p := range n.points {
			if r.ContainsInclusive(p) {
				found = append(found, p)
			}
		}
	})
	return found
}

// QuerySphere returns the points within radius of origin, the boundary
// included, ordered nearest first. A negative radius matches nothing.
func (o *Octree) QuerySphere(origin v3.Vec, radius float64) []v3.Vec {
	found := make([]v3.Vec, 0)
	if radius < 0 {
		return found
	}

	rsq := radius * radius
	type hit struct {
		p   v3.Vec
		dsq float64
	}
	var hits []hit
	touches := func(b geom.Bounds3) bool {
		return b.IntersectsSphereSq(origin, rsq)
	}
	o.visit(touches, func(n *node) {
		for _, p := range n.points {
			if dsq := geom.DistSq(origin, p); dsq <= rsq {
				hits = append(hits, hit{p: p, dsq: dsq})
			}
		}
	})

	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(a.dsq, b.dsq)
	})
	for _, h := range hits {
		found = append(found, h.p)
	}
	return found
}

// Nearest returns the point closest to origin within radius.
func (o *Octree) Nearest(origin v3.Vec, radius float64) (v3.Vec, bool) {
	pts := o.QuerySphere(origin, radius)
	if len(pts) == 0 {
		return v3.Vec{}, false
	}
	return pts[0], true
}

// visit walks the tree depth first, children in octant order, descending
// only into nodes whose bounds satisfy keep, and calls leaf on each kept leaf.
func (o *Octree) visit(keep func(geom.Bounds3) bool, leaf func(*node)) {
	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &o.nodes[idx]
		if !keep(n.bounds) {
			continue
		}
		if n.isLeaf() {
			leaf(n)
			continue
		}
		for i := ChildCount - 1; i >= 0; i-- {
			stack = append(stack, n.first+i)
		}
	}
}

// Package quadtree is the planar counterpart of package octree: a capacity
// split point index over a rectangle, stored in a flat node arena.
package quadtree

import (
	"cmp"
	"slices"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"go.uber.org/zap"

	"github.com/chazu/spatia/pkg/geom"
)

const (
	// DefaultCapacity is the number of points a leaf holds before splitting.
	DefaultCapacity = 8

	// DefaultMaxLevel bounds the depth of the tree. Leaves at this level keep
	// accepting points past capacity instead of splitting.
	DefaultMaxLevel = 24

	// ChildCount is the number of children held by an internal node.
	ChildCount = geom.QuadrantCount
)

// Quadrant indices, re-exported from geom for callers that walk children.
const (
	SouthWest = geom.SouthWest
	SouthEast = geom.SouthEast
	NorthWest = geom.NorthWest
	NorthEast = geom.NorthEast
)

type node struct {
	bounds geom.Bounds2
	level  int
	first  int // arena slot of child 0, or 0 for a leaf
	points []v2.Vec
}

func (n *node) isLeaf() bool { return n.first == 0 }

// Quadtree indexes 2D points. It is not safe for concurrent use.
type Quadtree struct {
	nodes    []node
	capacity int
	maxLevel int
	logger   *zap.Logger
}

// Option configures a Quadtree.
type Option func(*Quadtree)

// WithMaxLevel sets the deepest level a leaf may be split down to. Values
// below zero are treated as zero, which keeps the root a leaf forever.
func WithMaxLevel(level int) Option {
	return func(q *Quadtree) { q.maxLevel = max(level, 0) }
}

// WithLogger routes split diagnostics to logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(q *Quadtree) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// New returns an empty tree over bounds with capacity clamped to at least 1.
func New(bounds geom.Bounds2, capacity int, opts ...Option) *Quadtree {
	q := &Quadtree{
		capacity: max(capacity, 1),
		maxLevel: DefaultMaxLevel,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.nodes = []node{{bounds: bounds}}
	return q
}

// NewFromPoints builds a tree over the padded bounding rectangle of points
// and inserts them. Non-finite points are dropped; with none left the tree
// covers [-1, 1] on both axes.
func NewFromPoints(points []v2.Vec, capacity int, opts ...Option) *Quadtree {
	bounds, ok := geom.FromPoints2(points)
	if !ok {
		bounds = geom.NewBounds2(v2.Vec{X: -1, Y: -1}, v2.Vec{X: 1, Y: 1})
	}
	q := New(bounds, capacity, opts...)
	q.InsertAll(points)
	return q
}

// Bounds returns the rectangle covered by the root.
func (q *Quadtree) Bounds() geom.Bounds2 { return q.nodes[0].bounds }

// Capacity returns the per-leaf split threshold.
func (q *Quadtree) Capacity() int { return q.capacity }

// IsLeaf reports whether the root has never been split.
func (q *Quadtree) IsLeaf() bool { return q.nodes[0].isLeaf() }

// Insert adds p, returning false when p is outside the half-open bounds.
func (q *Quadtree) Insert(p v2.Vec) bool {
	return q.insert(0, p)
}

// InsertAll inserts in order and reports whether all succeeded. Earlier
// points are kept when a later one is rejected.
func (q *Quadtree) InsertAll(points []v2.Vec) bool {
	ok := true
	for _, p := range points {
		ok = q.Insert(p) && ok
	}
	return ok
}

func (q *Quadtree) insert(idx int, p v2.Vec) bool {
	if !q.nodes[idx].bounds.Contains(p) {
		return false
	}
	for !q.nodes[idx].isLeaf() {
		first := q.nodes[idx].first
		next := -1
		for i := 0; i < ChildCount; i++ {
			if q.nodes[first+i].bounds.Contains(p) {
				next = first + i
				break
			}
		}
		if next < 0 {
			return false
		}
		idx = next
	}

	n := &q.nodes[idx]
	if slices.Contains(n.points, p) {
		return true
	}
	n.points = append(n.points, p)
	if len(n.points) > q.capacity {
		q.split(idx)
	}
	return true
}

func (q *Quadtree) split(idx int) {
	n := &q.nodes[idx]
	if !n.isLeaf() {
		return
	}
	if n.level >= q.maxLevel {
		q.logger.Debug("quadtree: leaf at max level kept over capacity",
			zap.Int("level", n.level), zap.Int("points", len(n.points)))
		return
	}

	level := n.level + 1
	quads := n.bounds.Split(0.5, 0.5)
	held := n.points

	first := len(q.nodes)
	for _, b := range quads {
		q.nodes = append(q.nodes, node{bounds: b, level: level})
	}
	n = &q.nodes[idx]
	n.first = first
	n.points = nil

	for _, p := range held {
		for i := 0; i < ChildCount; i++ {
			if q.insert(first+i, p) {
				break
			}
		}
	}
}

// Reset drops every point and child, keeping the bounds.
func (q *Quadtree) Reset() {
	b := q.nodes[0].bounds
	clear(q.nodes)
	q.nodes = q.nodes[:1]
	q.nodes[0] = node{bounds: b}
}

// Query returns the points inside r, edges inclusive.
func (q *Quadtree) Query(r geom.Bounds2) []v2.Vec {
	found := make([]v2.Vec, 0)
	q.visit(r.Intersects, func(n *node) {
		for _, p := range n.points {
			if r.ContainsInclusive(p) {
				found = append(found, p)
			}
		}
	})
	return found
}

// QueryCircle returns the points within radius of origin, nearest first.
func (q *Quadtree) QueryCircle(origin v2.Vec, radius float64) []v2.Vec {
	found := make([]v2.Vec, 0)
	if radius < 0 {
		return found
	}
	rsq := radius * radius
	q.visit(func(b geom.Bounds2) bool {
		return b.IntersectsCircleSq(origin, rsq)
	}, func(n *node) {
		for _, p := range n.points {
			if geom.DistSq2(origin, p) <= rsq {
				found = append(found, p)
			}
		}
	})
	slices.SortStableFunc(found, func(a, b v2.Vec) int {
		return cmp.Compare(geom.DistSq2(origin, a), geom.DistSq2(origin, b))
	})
	return found
}

// CountLeaves returns the number of leaf nodes; 1 for an unsplit tree.
func (q *Quadtree) CountLeaves() int {
	count := 0
	q.visit(all, func(*node) { count++ })
	return count
}

// CountPoints returns the number of points held across all leaves.
func (q *Quadtree) CountPoints() int {
	count := 0
	q.visit(all, func(n *node) { count += len(n.points) })
	return count
}

// Points returns a copy of every held point, leaf by leaf. An empty tree
// yields an empty, non-nil slice.
func (q *Quadtree) Points() []v2.Vec {
	pts := make([]v2.Vec, 0, q.capacity)
	q.visit(all, func(n *node) { pts = append(pts, n.points...) })
	return pts
}

// Depth returns the deepest level present; 0 for an unsplit tree. The split
// limit set by WithMaxLevel is a separate setting.
func (q *Quadtree) Depth() int {
	deepest := 0
	for i := range q.nodes {
		deepest = max(deepest, q.nodes[i].level)
	}
	return deepest
}

func all(geom.Bounds2) bool { return true }

func (q *Quadtree) visit(keep func(geom.Bounds2) bool, leaf func(*node)) {
	stack := []int{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &q.nodes[idx]
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

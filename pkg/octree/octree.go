// Package octree indexes 3D points for box and sphere range queries.
//
// A tree starts as a single leaf covering its bounds. When an insertion
// leaves a leaf holding more points than the tree capacity, the leaf is split
// into eight octants and its points are pushed down into them. Internal nodes
// never turn back into leaves; the whole tree is reset or replaced as a unit.
//
// Nodes live in a flat arena. The root is slot 0 and the eight children of an
// internal node occupy contiguous slots, so a node only records the slot of
// its first child. An Octree is not safe for concurrent use.
package octree

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/spatia/pkg/geom"
)

const (
	// DefaultCapacity is the number of points a leaf holds before splitting.
	DefaultCapacity = 8

	// DefaultMaxLevel bounds the depth of the tree. Leaves at this level keep
	// accepting points past capacity instead of splitting, which stops
	// clusters of near-coincident points from subdividing without end.
	DefaultMaxLevel = 24

	// RootLevel is the level of the root node.
	RootLevel = 0

	// ChildCount is the number of children held by an internal node.
	ChildCount = geom.OctantCount
)

// Octant indices, re-exported from geom for callers that walk children.
const (
	BackSouthWest  = geom.BackSouthWest
	BackSouthEast  = geom.BackSouthEast
	BackNorthWest  = geom.BackNorthWest
	BackNorthEast  = geom.BackNorthEast
	FrontSouthWest = geom.FrontSouthWest
	FrontSouthEast = geom.FrontSouthEast
	FrontNorthWest = geom.FrontNorthWest
	FrontNorthEast = geom.FrontNorthEast
)

// noChildren marks a leaf. Slot 0 is the root, so it is never a child.
const noChildren = 0

type node struct {
	bounds geom.Bounds3
	level  int
	first  int // arena slot of child 0, or noChildren
	points []v3.Vec
}

func (n *node) isLeaf() bool {
	return n.first == noChildren
}

// Octree is a point index over a fixed axis-aligned box.
type Octree struct {
	nodes    []node
	capacity int
	maxLevel int
	logger   *zap.Logger
}

// Option configures an Octree.
type Option func(*Octree)

// WithMaxLevel sets the deepest level a leaf may be split down to. Values
// below zero are treated as zero, which keeps the root a leaf forever.
func WithMaxLevel(level int) Option {
	return func(o *Octree) {
		o.maxLevel = max(level, RootLevel)
	}
}

// WithLogger attaches a logger that receives split diagnostics at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Octree) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns an empty tree covering bounds. Capacity is clamped to at least 1.
func New(bounds geom.Bounds3, capacity int, opts ...Option) *Octree {
	o := &Octree{
		capacity: max(capacity, 1),
		maxLevel: DefaultMaxLevel,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.nodes = []node{{bounds: bounds, level: RootLevel}}
	return o
}

// NewFromPoints builds a tree whose bounds enclose points and inserts them.
// An empty slice produces a tree over the unit cube.
func NewFromPoints(points []v3.Vec, capacity int, opts ...Option) *Octree {
	bounds, ok := geom.FromPoints(points)
	if !ok {
		bounds = geom.UnitCubeSigned()
	}
	o := New(bounds, capacity, opts...)
	o.InsertAll(points)
	return o
}

// Bounds returns the box covered by the root.
func (o *Octree) Bounds() geom.Bounds3 {
	return o.nodes[0].bounds
}

// Capacity returns the per-leaf point capacity.
func (o *Octree) Capacity() int {
	return o.capacity
}

// IsLeaf reports whether the root has not been split.
func (o *Octree) IsLeaf() bool {
	return o.nodes[0].isLeaf()
}

// Insert adds p to the tree. It returns false, leaving the tree untouched,
// when p lies outside the root bounds under the half-open test. Inserting a
// point equal to one already held is a successful no-op.
func (o *Octree) Insert(p v3.Vec) bool {
	return o.insert(0, p)
}

// InsertAll inserts points in order and reports whether every insertion
// succeeded. Points accepted before a rejected one stay in the tree.
func (o *Octree) InsertAll(points []v3.Vec) bool {
	ok := true
	for _, p := range points {
		ok = o.Insert(p) && ok
	}
	return ok
}

func (o *Octree) insert(idx int, p v3.Vec) bool {
	for {
		n := &o.nodes[idx]
		if !n.bounds.Contains(p) {
			return false
		}
		if n.isLeaf() {
			break
		}
		next := -1
		for i := 0; i < ChildCount; i++ {
			if o.nodes[n.first+i].bounds.Contains(p) {
				next = n.first + i
				break
			}
		}
		if next < 0 {
			// Children tile the parent, so this only happens when
			// rounding leaves a sliver no child owns.
			o.logger.Debug("octree: point in parent but no child",
				zap.Int("node", idx), zap.Stringer("bounds", n.bounds))
			return false
		}
		idx = next
	}

	n := &o.nodes[idx]
	for _, q := range n.points {
		if q == p {
			return true
		}
	}
	n.points = append(n.points, p)
	if len(n.points) > o.capacity {
		o.split(idx)
	}
	return true
}

// split turns the leaf at idx into an internal node with eight children and
// redistributes its points. Leaves at the max level are left over capacity.
func (o *Octree) split(idx int) {
	n := &o.nodes[idx]
	if !n.isLeaf() {
		return
	}
	if n.level >= o.maxLevel {
		o.logger.Debug("octree: leaf at max level kept over capacity",
			zap.Int("level", n.level), zap.Int("points", len(n.points)))
		return
	}

	level := n.level + 1
	octants := n.bounds.Split(0.5, 0.5, 0.5)
	held := n.points

	first := len(o.nodes)
	for i := 0; i < ChildCount; i++ {
		o.nodes = append(o.nodes, node{bounds: octants[i], level: level})
	}
	// The append may have moved the arena; re-take the pointer.
	n = &o.nodes[idx]
	n.first = first
	n.points = nil

	o.logger.Debug("octree: split",
		zap.Int("node", idx), zap.Int("level", level-1), zap.Int("points", len(held)))

	for _, p := range held {
		for i := 0; i < ChildCount; i++ {
			if o.insert(first+i, p) {
				break
			}
		}
	}
}

// Reset clears every point and child, keeping bounds and capacity.
func (o *Octree) Reset() {
	root := o.nodes[0]
	clear(o.nodes)
	o.nodes = o.nodes[:1]
	o.nodes[0] = node{bounds: root.bounds, level: RootLevel}
}

// ResetBounds clears the tree and replaces its bounds.
func (o *Octree) ResetBounds(b geom.Bounds3) {
	o.Reset()
	o.nodes[0].bounds = b
}

// Subdivide splits every leaf, iterations times over, regardless of how many
// points the leaves hold. Leaves at the max level are not split.
func (o *Octree) Subdivide(iterations int) {
	for ; iterations > 0; iterations-- {
		var leaves []int
		for i := range o.nodes {
			if o.nodes[i].isLeaf() {
				leaves = append(leaves, i)
			}
		}
		for _, idx := range leaves {
			o.split(idx)
		}
	}
}

package octree

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/segmentio/encoding/json"

	"github.com/chazu/spatia/pkg/geom"
)

// nodeJSON is the serialized form of one node. Leaves carry points, internal
// nodes carry their eight children in octant order.
type nodeJSON struct {
	Bounds   geom.Bounds3 `json:"bounds"`
	Level    int          `json:"level"`
	Points   []v3.Vec     `json:"points,omitempty"`
	Children []nodeJSON   `json:"children,omitempty"`
}

type treeJSON struct {
	Capacity int      `json:"capacity"`
	MaxLevel int      `json:"maxLevel"` // split limit, not the current depth
	Root     nodeJSON `json:"root"`
}

// MarshalJSON writes the tree as nested nodes.
func (o *Octree) MarshalJSON() ([]byte, error) {
	return json.Marshal(treeJSON{
		Capacity: o.capacity,
		MaxLevel: o.maxLevel,
		Root:     o.nodeJSON(0),
	})
}

func (o *Octree) nodeJSON(idx int) nodeJSON {
	n := &o.nodes[idx]
	out := nodeJSON{Bounds: n.bounds, Level: n.level}
	if n.isLeaf() {
		out.Points = n.points
		return out
	}
	out.Children = make([]nodeJSON, ChildCount)
	for i := range out.Children {
		out.Children[i] = o.nodeJSON(n.first + i)
	}
	return out
}

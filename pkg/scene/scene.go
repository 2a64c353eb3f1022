package scene

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/spatia/pkg/octree"
)

// Scene is the evaluation result of one sketch.
type Scene struct {
	entities  []*Entity
	nameIndex map[string]*Entity
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{nameIndex: make(map[string]*Entity)}
}

// Add appends an entity. It does not check for duplicate names; a later
// entity shadows an earlier one in Lookup and Validate reports the clash.
func (s *Scene) Add(e *Entity) {
	s.entities = append(s.entities, e)
	if e.Name != "" {
		s.nameIndex[e.Name] = e
	}
}

// AddIndex declares an octree under name.
func (s *Scene) AddIndex(name string, tree *octree.Octree) *Entity {
	e := &Entity{Name: name, Kind: KindIndex, Data: IndexData{Tree: tree}}
	s.Add(e)
	return e
}

// AddSelection declares a named point list.
func (s *Scene) AddSelection(name string, points []v3.Vec) *Entity {
	e := &Entity{Name: name, Kind: KindSelection, Data: SelectionData{Points: points}}
	s.Add(e)
	return e
}

// AddSolid declares a solid placed at at.
func (s *Scene) AddSolid(name string, shape *Shape, at v3.Vec) *Entity {
	e := &Entity{Name: name, Kind: KindSolid, Data: SolidData{Shape: shape, At: at}}
	s.Add(e)
	return e
}

// Lookup returns the entity with the given name, or nil.
func (s *Scene) Lookup(name string) *Entity {
	return s.nameIndex[name]
}

// MustLookup returns the entity with the given name, or panics.
func (s *Scene) MustLookup(name string) *Entity {
	e := s.Lookup(name)
	if e == nil {
		panic(fmt.Sprintf("scene: no entity named %q", name))
	}
	return e
}

// Entities returns every entity in declaration order.
func (s *Scene) Entities() []*Entity {
	return s.entities
}

// Indexes returns the index entities in declaration order.
func (s *Scene) Indexes() []*Entity {
	return s.ofKind(KindIndex)
}

// Selections returns the selection entities in declaration order.
func (s *Scene) Selections() []*Entity {
	return s.ofKind(KindSelection)
}

// Solids returns the solid entities in declaration order.
func (s *Scene) Solids() []*Entity {
	return s.ofKind(KindSolid)
}

// Count returns the total number of entities.
func (s *Scene) Count() int {
	return len(s.entities)
}

func (s *Scene) ofKind(k Kind) []*Entity {
	return lo.Filter(s.entities, func(e *Entity, _ int) bool {
		return e.Kind == k
	})
}

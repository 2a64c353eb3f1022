package engine

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/spatia/pkg/geom"
	"github.com/chazu/spatia/pkg/octree"
	"github.com/chazu/spatia/pkg/scene"
)

// MaxGridSteps bounds the per-axis step count of grid-points.
const MaxGridSteps = 128

// builtinEnv is the state shared by the builtins of one evaluation.
type builtinEnv struct {
	scene    *scene.Scene
	capacity int
	maxLevel int
	logger   *zap.Logger
	anon     int // counter for unnamed octrees
}

func (b *builtinEnv) anonName(prefix string) string {
	b.anon++
	return fmt.Sprintf("%s_%d", prefix, b.anon)
}

// registerBuiltins installs the sketch DSL into a zygomys environment. The
// builtins populate b.scene as the program runs.
//
// Source code must be preprocessed with preprocessSource() first, so that
// :keyword tokens arrive as recognizable string literals and hyphenated
// names such as query-sphere arrive as query_sphere.
func registerBuiltins(env *zygo.Zlisp, b *builtinEnv) {
	registerGeometryBuiltins(env)
	registerIndexBuiltins(env, b)
	registerSolidBuiltins(env, b)
}

// ---------------------------------------------------------------------------
// Geometry values
// ---------------------------------------------------------------------------

func registerGeometryBuiltins(env *zygo.Zlisp) {
	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (bounds (vec3 0 0 0) (vec3 1 1 1)) or (bounds 0 0 0 1 1 1)
	env.AddFunction("bounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 2:
			lo, err := toVec3(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bounds: min: %w", err)
			}
			hi, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bounds: max: %w", err)
			}
			return &sexpBounds{b: geom.NewBounds3(lo, hi)}, nil
		case 6:
			var c [6]float64
			for i := range c {
				f, err := toFloat64(args[i])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("bounds: argument %d: %w", i+1, err)
				}
				c[i] = f
			}
			return &sexpBounds{b: geom.NewBounds3(
				v3.Vec{X: c[0], Y: c[1], Z: c[2]},
				v3.Vec{X: c[3], Y: c[4], Z: c[5]},
			)}, nil
		}
		return zygo.SexpNull, fmt.Errorf("bounds requires 2 vec3 or 6 numbers, got %d arguments", len(args))
	})

	// (grid-points (bounds ...) 4) -> 64 cell centers
	env.AddFunction("grid_points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("grid-points requires bounds and a step count")
		}
		bb, err := toBounds(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid-points: %w", err)
		}
		n, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid-points: steps: %w", err)
		}
		if n < 1 || n > MaxGridSteps {
			return zygo.SexpNull, fmt.Errorf("grid-points: steps must be in 1..%d, got %d", MaxGridSteps, n)
		}
		return pointList(gridPoints(bb, n)), nil
	})
}

// gridPoints returns the centers of an n*n*n lattice over b, x varying fastest.
func gridPoints(b geom.Bounds3, n int) []v3.Vec {
	step := b.Size().DivScalar(float64(n))
	pts := make([]v3.Vec, 0, n*n*n)
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				pts = append(pts, v3.Vec{
					X: b.Min.X + (float64(i)+0.5)*step.X,
					Y: b.Min.Y + (float64(j)+0.5)*step.Y,
					Z: b.Min.Z + (float64(k)+0.5)*step.Z,
				})
			}
		}
	}
	return pts
}

// ---------------------------------------------------------------------------
// Point indexes
// ---------------------------------------------------------------------------

func registerIndexBuiltins(env *zygo.Zlisp, b *builtinEnv) {
	// (octree (bounds ...) :capacity 4 :max-level 12 :name "cloud")
	env.AddFunction("octree", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("octree requires bounds as its only positional argument")
		}
		bb, err := toBounds(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("octree: %w", err)
		}

		capacity, maxLevel := b.capacity, b.maxLevel
		if v, ok := pa.kw["capacity"]; ok {
			if capacity, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("octree: capacity: %w", err)
			}
		}
		if v, ok := pa.kw["max-level"]; ok {
			if maxLevel, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("octree: max-level: %w", err)
			}
		}
		treeName := b.anonName("octree")
		if v, ok := pa.kw["name"]; ok {
			if treeName, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("octree: name: %w", err)
			}
		}

		tree := octree.New(bb, capacity,
			octree.WithMaxLevel(maxLevel),
			octree.WithLogger(b.logger.With(zap.String("index", treeName))))
		b.scene.AddIndex(treeName, tree)
		return &sexpOctree{name: treeName, tree: tree}, nil
	})

	// (insert tree (vec3 ...)) -> bool
	env.AddFunction("insert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		o, p, err := treeAndPoint("insert", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return sexpBool(o.tree.Insert(p)), nil
	})

	// (insert-all tree (list ...)) -> bool
	env.AddFunction("insert_all", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("insert-all requires a tree and a point list")
		}
		o, err := toOctree(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-all: %w", err)
		}
		pts, err := toPoints(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("insert-all: points: %w", err)
		}
		return sexpBool(o.tree.InsertAll(pts)), nil
	})

	// (query tree (bounds ...)) -> list of vec3
	env.AddFunction("query", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("query requires a tree and bounds")
		}
		o, err := toOctree(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("query: %w", err)
		}
		bb, err := toBounds(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("query: %w", err)
		}
		return pointList(o.tree.Query(bb)), nil
	})

	// (query-sphere tree (vec3 ...) radius) -> list of vec3, nearest first
	env.AddFunction("query_sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		o, origin, radius, err := treePointRadius("query-sphere", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return pointList(o.tree.QuerySphere(origin, radius)), nil
	})

	// (nearest tree (vec3 ...) radius) -> vec3 or nil
	env.AddFunction("nearest", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		o, origin, radius, err := treePointRadius("nearest", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		p, ok := o.tree.Nearest(origin, radius)
		if !ok {
			return zygo.SexpNull, nil
		}
		return &sexpVec3{vec: p}, nil
	})

	// (subdivide tree 2)
	env.AddFunction("subdivide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("subdivide requires a tree and an iteration count")
		}
		o, err := toOctree(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: %w", err)
		}
		n, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: iterations: %w", err)
		}
		if n < 0 || n > 4 {
			return zygo.SexpNull, fmt.Errorf("subdivide: iterations must be in 0..4, got %d", n)
		}
		o.tree.Subdivide(n)
		return o, nil
	})

	treeFunc := func(label string, fn func(*octree.Octree) zygo.Sexp) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly one tree argument", label)
			}
			o, err := toOctree(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
			}
			return fn(o.tree), nil
		}
	}
	env.AddFunction("is_leaf", treeFunc("is-leaf", func(t *octree.Octree) zygo.Sexp {
		return sexpBool(t.IsLeaf())
	}))
	env.AddFunction("count_points", treeFunc("count-points", func(t *octree.Octree) zygo.Sexp {
		return sexpInt(t.CountPoints())
	}))
	env.AddFunction("count_leaves", treeFunc("count-leaves", func(t *octree.Octree) zygo.Sexp {
		return sexpInt(t.CountLeaves())
	}))
	env.AddFunction("tree_depth", treeFunc("tree-depth", func(t *octree.Octree) zygo.Sexp {
		return sexpInt(t.Depth())
	}))
	env.AddFunction("tree_points", treeFunc("tree-points", func(t *octree.Octree) zygo.Sexp {
		return pointList(t.Points())
	}))
	env.AddFunction("reset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("reset requires exactly one tree argument")
		}
		o, err := toOctree(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reset: %w", err)
		}
		o.tree.Reset()
		return o, nil
	})

	// (select "name" points) records a named point list.
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("select requires a name and a point list")
		}
		selName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: name: %w", err)
		}
		pts, err := toPoints(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: points: %w", err)
		}
		b.scene.AddSelection(selName, pts)
		return args[1], nil
	})
}

func treeAndPoint(label string, args []zygo.Sexp) (*sexpOctree, v3.Vec, error) {
	if len(args) != 2 {
		return nil, v3.Vec{}, fmt.Errorf("%s requires a tree and a point", label)
	}
	o, err := toOctree(args[0])
	if err != nil {
		return nil, v3.Vec{}, fmt.Errorf("%s: %w", label, err)
	}
	p, err := toVec3(args[1])
	if err != nil {
		return nil, v3.Vec{}, fmt.Errorf("%s: point: %w", label, err)
	}
	return o, p, nil
}

func treePointRadius(label string, args []zygo.Sexp) (*sexpOctree, v3.Vec, float64, error) {
	if len(args) != 3 {
		return nil, v3.Vec{}, 0, fmt.Errorf("%s requires a tree, an origin and a radius", label)
	}
	o, p, err := treeAndPoint(label, args[:2])
	if err != nil {
		return nil, v3.Vec{}, 0, err
	}
	r, err := toFloat64(args[2])
	if err != nil {
		return nil, v3.Vec{}, 0, fmt.Errorf("%s: radius: %w", label, err)
	}
	return o, p, r, nil
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

func registerSolidBuiltins(env *zygo.Zlisp, b *builtinEnv) {
	// (box 10 20 5)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("box", args, "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: scene.Box(f[0], f[1], f[2])}, nil
	})

	// (sphere 5)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("sphere", args, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: scene.Sphere(f[0])}, nil
	})

	// (cylinder height radius)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("cylinder", args, "height", "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: scene.Cylinder(f[0], f[1])}, nil
	})

	booleanOp := func(label string, kind scene.ShapeKind) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least two shapes, got %d", label, len(args))
			}
			operands := make([]*scene.Shape, 0, len(args))
			for i, a := range args {
				sh, err := toShape(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: operand %d: %w", label, i+1, err)
				}
				operands = append(operands, sh.shape)
			}
			return &sexpShape{shape: scene.Combine(kind, operands...)}, nil
		}
	}
	env.AddFunction("union", booleanOp("union", scene.ShapeUnion))
	env.AddFunction("difference", booleanOp("difference", scene.ShapeDifference))
	env.AddFunction("intersection", booleanOp("intersection", scene.ShapeIntersection))

	// (move shape (vec3 ...))
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("move requires a shape and a vec3")
		}
		sh, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		d, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: offset: %w", err)
		}
		return &sexpShape{shape: sh.shape.Moved(d)}, nil
	})

	// (defsolid "name" shape :at (vec3 ...))
	env.AddFunction("defsolid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("defsolid requires a name and a shape expression")
		}
		solidName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: name: %w", err)
		}
		sh, err := toShape(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: %w", err)
		}
		var at v3.Vec
		if v, ok := pa.kw["at"]; ok {
			if at, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defsolid: at: %w", err)
			}
		}
		b.scene.AddSolid(solidName, sh.shape, at)
		return sh, nil
	})
}

// numbers extracts exactly len(names) numeric arguments.
func numbers(label string, args []zygo.Sexp, names ...string) ([]float64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("%s requires %d arguments, got %d", label, len(names), len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", label, names[i], err)
		}
		out[i] = f
	}
	return out, nil
}

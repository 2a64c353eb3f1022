package main

import (
	"fmt"
	"io"
	"os"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/chazu/spatia/pkg/geom"
	"github.com/chazu/spatia/pkg/octree"
	"github.com/chazu/spatia/pkg/quadtree"
)

type indexOptions struct {
	capacity int
	maxLevel int
	box      []float64
	sphere   []float64
	dump     bool
	limit    int
	plane    bool
}

func (c *cli) newIndexCmd() *cobra.Command {
	var opts indexOptions
	cmd := &cobra.Command{
		Use:   "index [file]",
		Short: "Build an octree over a point file and query it",
		Long: `Read one point per line ("x y z", commas or whitespace separated, '#'
comments allowed), index them in an octree sized to fit, print statistics and
run the optional box and sphere queries. Use "-" to read standard input.

With --plane the points are projected onto the XY plane and indexed in a
quadtree; --box then takes x0,y0,x1,y1 and --sphere takes a circle x,y,r.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("capacity") {
				opts.capacity = c.cfg.Index.Capacity
			}
			if !cmd.Flags().Changed("max-level") {
				opts.maxLevel = c.cfg.Index.MaxLevel
			}
			points, err := readPointFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return c.runIndex(cmd.OutOrStdout(), points, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.capacity, "capacity", "c", octree.DefaultCapacity, "points per leaf before splitting")
	cmd.Flags().IntVar(&opts.maxLevel, "max-level", octree.DefaultMaxLevel, "deepest level a leaf may split to")
	cmd.Flags().Float64SliceVar(&opts.box, "box", nil, "box query as x0,y0,z0,x1,y1,z1")
	cmd.Flags().Float64SliceVar(&opts.sphere, "sphere", nil, "sphere query as x,y,z,r")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the tree as JSON")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum query results to print")
	cmd.Flags().BoolVar(&opts.plane, "plane", false, "index the XY projection in a quadtree")
	return cmd
}

func readPointFile(name string, stdin io.Reader) ([]v3.Vec, error) {
	if name == "-" {
		return readPoints(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open points: %w", err)
	}
	defer f.Close()
	return readPoints(f)
}

func (c *cli) runIndex(w io.Writer, points []v3.Vec, opts indexOptions) error {
	if opts.plane {
		return c.runPlaneIndex(w, points, opts)
	}

	var box geom.Bounds3
	if opts.box != nil {
		if len(opts.box) != 6 {
			return fmt.Errorf("--box needs 6 values, got %d", len(opts.box))
		}
		box = geom.Bounds3{
			Min: v3.Vec{X: opts.box[0], Y: opts.box[1], Z: opts.box[2]},
			Max: v3.Vec{X: opts.box[3], Y: opts.box[4], Z: opts.box[5]},
		}
	}
	if opts.sphere != nil && len(opts.sphere) != 4 {
		return fmt.Errorf("--sphere needs 4 values, got %d", len(opts.sphere))
	}

	tree := octree.NewFromPoints(points, opts.capacity,
		octree.WithMaxLevel(opts.maxLevel),
		octree.WithLogger(c.logger.Named("octree")))

	if opts.dump {
		return writeJSON(w, tree)
	}

	fmt.Fprintln(w, "Octree")
	fmt.Fprintln(w, "====================")
	fmt.Fprintf(w, "Bounds: %s\n", tree.Bounds())
	fmt.Fprintf(w, "Points: %d (read %d)\n", tree.CountPoints(), len(points))
	fmt.Fprintf(w, "Leaves: %d\n", tree.CountLeaves())
	fmt.Fprintf(w, "Depth: %d\n", tree.Depth())
	fmt.Fprintf(w, "Capacity: %d per leaf, %d total\n", tree.Capacity(), tree.TotalCapacity())

	if opts.box != nil {
		found := tree.Query(box)
		fmt.Fprintf(w, "\nBox %s: %d points\n", box, len(found))
		printPoints(w, found, opts.limit)
	}
	if opts.sphere != nil {
		origin := v3.Vec{X: opts.sphere[0], Y: opts.sphere[1], Z: opts.sphere[2]}
		found := tree.QuerySphere(origin, opts.sphere[3])
		fmt.Fprintf(w, "\nSphere (%g, %g, %g) r=%g: %d points\n", origin.X, origin.Y, origin.Z, opts.sphere[3], len(found))
		printPoints(w, found, opts.limit)
	}
	return nil
}

func printPoints(w io.Writer, points []v3.Vec, limit int) {
	for i, p := range points {
		if limit >= 0 && i >= limit {
			fmt.Fprintf(w, "  ... %d more\n", len(points)-i)
			return
		}
		fmt.Fprintf(w, "  %g %g %g\n", p.X, p.Y, p.Z)
	}
}

func (c *cli) runPlaneIndex(w io.Writer, points []v3.Vec, opts indexOptions) error {
	if opts.dump {
		return fmt.Errorf("--dump is not supported with --plane")
	}
	var rect geom.Bounds2
	if opts.box != nil {
		if len(opts.box) != 4 {
			return fmt.Errorf("--box needs 4 values with --plane, got %d", len(opts.box))
		}
		rect = geom.Bounds2{
			Min: v2.Vec{X: opts.box[0], Y: opts.box[1]},
			Max: v2.Vec{X: opts.box[2], Y: opts.box[3]},
		}
	}
	if opts.sphere != nil && len(opts.sphere) != 3 {
		return fmt.Errorf("--sphere needs 3 values with --plane, got %d", len(opts.sphere))
	}

	flat := lo.Map(points, func(p v3.Vec, _ int) v2.Vec { return v2.Vec{X: p.X, Y: p.Y} })
	tree := quadtree.NewFromPoints(flat, opts.capacity,
		quadtree.WithMaxLevel(opts.maxLevel),
		quadtree.WithLogger(c.logger.Named("quadtree")))

	fmt.Fprintln(w, "Quadtree")
	fmt.Fprintln(w, "====================")
	fmt.Fprintf(w, "Bounds: %s\n", tree.Bounds())
	fmt.Fprintf(w, "Points: %d (read %d)\n", tree.CountPoints(), len(points))
	fmt.Fprintf(w, "Leaves: %d\n", tree.CountLeaves())
	fmt.Fprintf(w, "Depth: %d\n", tree.Depth())
	fmt.Fprintf(w, "Capacity: %d per leaf\n", tree.Capacity())

	if opts.box != nil {
		found := tree.Query(rect)
		fmt.Fprintf(w, "\nBox %s: %d points\n", rect, len(found))
		printPlanePoints(w, found, opts.limit)
	}
	if opts.sphere != nil {
		origin := v2.Vec{X: opts.sphere[0], Y: opts.sphere[1]}
		found := tree.QueryCircle(origin, opts.sphere[2])
		fmt.Fprintf(w, "\nCircle (%g, %g) r=%g: %d points\n", origin.X, origin.Y, opts.sphere[2], len(found))
		printPlanePoints(w, found, opts.limit)
	}
	return nil
}

func printPlanePoints(w io.Writer, points []v2.Vec, limit int) {
	for i, p := range points {
		if limit >= 0 && i >= limit {
			fmt.Fprintf(w, "  ... %d more\n", len(points)-i)
			return
		}
		fmt.Fprintf(w, "  %g %g\n", p.X, p.Y)
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/spatia/pkg/engine"
	"github.com/chazu/spatia/pkg/kernel/sdfx"
	"github.com/chazu/spatia/pkg/scene"
	"github.com/chazu/spatia/pkg/tessellate"
)

// entitySummary describes one scene entity in eval output.
type entitySummary struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Points int    `json:"points,omitempty"`
	Leaves int    `json:"leaves,omitempty"`
	Depth  int    `json:"depth,omitempty"`
	Shape  string `json:"shape,omitempty"`
}

type meshSummary struct {
	Name      string `json:"name"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
}

type evalReport struct {
	Entities []entitySummary `json:"entities"`
	Meshes   []meshSummary   `json:"meshes,omitempty"`
	Warnings []string        `json:"warnings"`
}

func (c *cli) newEvalCmd() *cobra.Command {
	var (
		asJSON bool
		mesh   bool
	)
	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a sketch and summarize the resulting scene",
		Long: `Evaluate a sketch headlessly. Indexes, selections and solids are listed
in declaration order. With --mesh every solid is tessellated and its welded
vertex and triangle counts are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read sketch: %w", err)
			}
			report, err := c.evaluate(string(src), mesh)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printReport(cmd.OutOrStdout(), args[0], report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&mesh, "mesh", false, "tessellate solids and report mesh sizes")
	return cmd
}

// evaluate runs source through the engine configured from c.cfg.
func (c *cli) evaluate(source string, mesh bool) (*evalReport, error) {
	eng := engine.NewEngine(c.cfg.EngineOptions(c.logger.Named("engine"))...)
	sc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			c.logger.Error("eval", zap.Int("line", e.Line), zap.String("message", e.Message))
		}
		return nil, fmt.Errorf("sketch has %d error(s): %w", len(evalErrs), evalErrs[0])
	}

	report := &evalReport{
		Entities: lo.Map(sc.Entities(), func(e *scene.Entity, _ int) entitySummary {
			return summarize(e)
		}),
		Warnings: lo.Map(engine.Warnings(sc), func(w engine.EvalWarning, _ int) string {
			return w.Entity + ": " + w.Message
		}),
	}

	if mesh {
		k := sdfx.New(c.cfg.KernelOptions(c.logger.Named("kernel"))...)
		meshes, err := tessellate.Tessellate(sc, k)
		if err != nil {
			return nil, err
		}
		for _, m := range meshes {
			report.Meshes = append(report.Meshes, meshSummary{
				Name:      m.PartName,
				Vertices:  m.VertexCount(),
				Triangles: m.TriangleCount(),
			})
		}
	}
	return report, nil
}

func summarize(e *scene.Entity) entitySummary {
	s := entitySummary{Name: e.Name, Kind: e.Kind.String()}
	switch d := e.Data.(type) {
	case scene.IndexData:
		s.Points = d.Tree.CountPoints()
		s.Leaves = d.Tree.CountLeaves()
		s.Depth = d.Tree.Depth()
	case scene.SelectionData:
		s.Points = len(d.Points)
	case scene.SolidData:
		s.Shape = d.Shape.Kind.String()
	}
	return s
}

func printReport(w io.Writer, name string, r *evalReport) {
	fmt.Fprintf(w, "Sketch: %s\n", name)
	fmt.Fprintln(w, "====================")
	for _, e := range r.Entities {
		switch e.Kind {
		case "index":
			fmt.Fprintf(w, "  %-10s %-16s %d points, %d leaves, depth %d\n", e.Kind, e.Name, e.Points, e.Leaves, e.Depth)
		case "selection":
			fmt.Fprintf(w, "  %-10s %-16s %d points\n", e.Kind, e.Name, e.Points)
		default:
			fmt.Fprintf(w, "  %-10s %-16s %s\n", e.Kind, e.Name, e.Shape)
		}
	}
	for _, m := range r.Meshes {
		fmt.Fprintf(w, "  %-10s %-16s %d vertices, %d triangles\n", "mesh", m.Name, m.Vertices, m.Triangles)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

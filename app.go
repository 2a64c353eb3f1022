package main

import (
	"context"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"

	"github.com/chazu/spatia/internal/config"
	"github.com/chazu/spatia/pkg/engine"
	"github.com/chazu/spatia/pkg/kernel"
	"github.com/chazu/spatia/pkg/kernel/sdfx"
	"github.com/chazu/spatia/pkg/scene"
	"github.com/chazu/spatia/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to
// meshes and point sets.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	kernel kernel.Kernel
	logger *zap.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// PointSetData is a flat xyz point list drawn as a point cloud.
type PointSetData struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	Points []float32 `json:"points"`
	Color  string    `json:"color"`
	Leaves int       `json:"leaves,omitempty"`
	Depth  int       `json:"depth,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes    []MeshData      `json:"meshes"`
	PointSets []PointSetData  `json:"pointSets"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with default settings and a no-op logger.
func NewApp() *App {
	return NewAppWithConfig(config.Default(), zap.NewNop())
}

// NewAppWithConfig creates an App whose engine and kernel follow cfg.
func NewAppWithConfig(cfg config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		engine: engine.NewEngine(cfg.EngineOptions(logger.Named("engine"))...),
		kernel: sdfx.New(cfg.KernelOptions(logger.Named("kernel"))...),
		logger: logger,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.logger.Info("spatia started")
}

// Evaluate takes sketch source and returns mesh data, point sets and errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:    []MeshData{},
		PointSets: []PointSetData{},
		Errors:    []EvalErrorData{},
		Warnings:  []EvalErrorData{},
	}

	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, w := range engine.Warnings(sc) {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    w.Line,
			Col:     w.Col,
			Message: w.Entity + ": " + w.Message,
		})
	}

	result.PointSets = pointSets(sc)

	meshes, err := tessellate.Tessellate(sc, a.kernel)
	if err != nil {
		a.logger.Error("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	a.logger.Debug("evaluated",
		zap.Int("entities", sc.Count()),
		zap.Int("meshes", len(result.Meshes)),
		zap.Int("pointSets", len(result.PointSets)))
	return result
}

// pointSets flattens indexes and selections in declaration order.
func pointSets(sc *scene.Scene) []PointSetData {
	sets := []PointSetData{}
	for _, e := range sc.Entities() {
		var ps PointSetData
		switch d := e.Data.(type) {
		case scene.IndexData:
			ps = PointSetData{
				Points: flatten(d.Tree.Points()),
				Leaves: d.Tree.CountLeaves(),
				Depth:  d.Tree.Depth(),
			}
		case scene.SelectionData:
			ps = PointSetData{Points: flatten(d.Points)}
		default:
			continue
		}
		ps.Name = e.Name
		ps.Kind = e.Kind.String()
		ps.Color = colorPalette[len(sets)%len(colorPalette)]
		sets = append(sets, ps)
	}
	return sets
}

func flatten(points []v3.Vec) []float32 {
	out := make([]float32, 0, 3*len(points))
	for _, p := range points {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

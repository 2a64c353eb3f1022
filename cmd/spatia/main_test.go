package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const linePoints = `# four points on the x axis
1 0 0
2,0,0

3 0 0
9 0 0 extra
`

// ---------------------------------------------------------------------------
// Point files
// ---------------------------------------------------------------------------

func TestReadPoints(t *testing.T) {
	points, err := readPoints(strings.NewReader(linePoints))
	require.NoError(t, err)
	assert.Equal(t, []v3.Vec{{X: 1}, {X: 2}, {X: 3}, {X: 9}}, points)
}

func TestReadPointsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"too few fields", "1 2\n", "line 1: expected x y z"},
		{"not a number", "0 0 0\n1 y 2\n", "line 2:"},
		{"nan", "0 0 0\n1 1 1\nnan 0.5 0.5\n", "line 3: coordinates must be finite"},
		{"infinity", "inf 0 0\n", "line 1: coordinates must be finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readPoints(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// index
// ---------------------------------------------------------------------------

func TestIndexStats(t *testing.T) {
	path := writeFile(t, "points.xyz", linePoints)

	out, err := run(t, "index", path, "--capacity", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Points: 4 (read 4)")
	assert.Contains(t, out, "Capacity: 1 per leaf")
	assert.NotContains(t, out, "Leaves: 1\n", "capacity 1 forces splits")
}

func TestIndexQueries(t *testing.T) {
	path := writeFile(t, "points.xyz", linePoints)

	out, err := run(t, "index", path,
		"--box", "0,-1,-1,2.5,1,1",
		"--sphere", "0,0,0,2.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Box [(0, -1, -1) (2.5, 1, 1)]: 2 points")
	assert.Contains(t, out, "Sphere (0, 0, 0) r=2.5: 2 points\n  1 0 0\n  2 0 0\n")
}

func TestIndexLimit(t *testing.T) {
	path := writeFile(t, "points.xyz", linePoints)

	out, err := run(t, "index", path, "--sphere", "0,0,0,100", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "  1 0 0\n  ... 3 more\n")
}

func TestIndexBadQueryFlags(t *testing.T) {
	path := writeFile(t, "points.xyz", linePoints)

	_, err := run(t, "index", path, "--box", "0,0,0")
	assert.ErrorContains(t, err, "--box needs 6 values")

	_, err = run(t, "index", path, "--sphere", "0,0,0")
	assert.ErrorContains(t, err, "--sphere needs 4 values")
}

func TestIndexDump(t *testing.T) {
	path := writeFile(t, "points.xyz", linePoints)

	out, err := run(t, "index", path, "--dump", "--capacity", "2")
	require.NoError(t, err)

	var dump struct {
		Capacity int `json:"capacity"`
		Root     struct {
			Children []any `json:"children"`
		} `json:"root"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	assert.Equal(t, 2, dump.Capacity)
	assert.Len(t, dump.Root.Children, 8)
}

func TestIndexRejectsNonFinitePoints(t *testing.T) {
	path := writeFile(t, "points.xyz", "0 0 0\n1 1 1\nNaN 0.5 0.5\n0.5 0.5 0.5\n")

	out, err := run(t, "index", path)
	assert.ErrorContains(t, err, "line 3: coordinates must be finite")
	assert.NotContains(t, out, "Points:")
}

func TestIndexPlane(t *testing.T) {
	path := writeFile(t, "points.xyz", "0 0 5\n1 0 -5\n2 0 0\n0 3 1\n1 0 7\n")

	out, err := run(t, "index", path, "--plane", "--capacity", "1",
		"--box", "0.5,-1,2.5,1",
		"--sphere", "0,0,1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Quadtree\n")
	assert.Contains(t, out, "Points: 4 (read 5)", "points sharing an XY projection collapse")
	assert.NotContains(t, out, "Leaves: 1\n")
	assert.Contains(t, out, "Box [(0.5, -1) (2.5, 1)]: 2 points")
	assert.Contains(t, out, "Circle (0, 0) r=1.5: 2 points\n  0 0\n  1 0\n")
}

func TestIndexPlaneBadFlags(t *testing.T) {
	path := writeFile(t, "points.xyz", linePoints)

	_, err := run(t, "index", path, "--plane", "--box", "0,0,0,1,1,1")
	assert.ErrorContains(t, err, "--box needs 4 values with --plane")

	_, err = run(t, "index", path, "--plane", "--sphere", "0,0,0,1")
	assert.ErrorContains(t, err, "--sphere needs 3 values with --plane")

	_, err = run(t, "index", path, "--plane", "--dump")
	assert.ErrorContains(t, err, "--dump is not supported with --plane")
}

func TestIndexMissingFile(t *testing.T) {
	_, err := run(t, "index", filepath.Join(t.TempDir(), "absent.xyz"))
	assert.ErrorContains(t, err, "open points")
}

func TestIndexCapacityFromConfig(t *testing.T) {
	points := writeFile(t, "points.xyz", linePoints)
	cfg := writeFile(t, "spatia.yaml", "index:\n  capacity: 3\n")

	out, err := run(t, "--config", cfg, "index", points)
	require.NoError(t, err)
	assert.Contains(t, out, "Capacity: 3 per leaf")
}

// ---------------------------------------------------------------------------
// eval
// ---------------------------------------------------------------------------

func TestEvalExampleJSON(t *testing.T) {
	out, err := run(t, "eval", "../../examples/cloud.spz", "--json")
	require.NoError(t, err)

	var report evalReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Entities, 6)

	assert.Equal(t, entitySummary{Name: "cloud", Kind: "index", Points: 512,
		Leaves: report.Entities[0].Leaves, Depth: report.Entities[0].Depth}, report.Entities[0])
	assert.Greater(t, report.Entities[0].Leaves, 1)
	assert.Equal(t, 64, report.Entities[1].Points)
	assert.Equal(t, 8, report.Entities[2].Points)
	assert.Equal(t, "sphere", report.Entities[3].Shape)
	assert.Equal(t, "difference", report.Entities[4].Shape)
	assert.Empty(t, report.Meshes, "meshes are only built with --mesh")
	assert.Empty(t, report.Warnings)
}

func TestEvalText(t *testing.T) {
	path := writeFile(t, "s.spz", `(octree (bounds 0 0 0 1 1 1) :name "empty")`)

	out, err := run(t, "eval", path)
	require.NoError(t, err)
	assert.Contains(t, out, "empty")
	assert.Contains(t, out, "warning: empty: index holds no points")
}

func TestEvalMesh(t *testing.T) {
	path := writeFile(t, "s.spz", `(defsolid "cube" (box 2 2 2))`)
	cfg := writeFile(t, "spatia.yaml", "mesh:\n  cells: 24\n")

	out, err := run(t, "--config", cfg, "eval", path, "--mesh", "--json")
	require.NoError(t, err)

	var report evalReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Meshes, 1)
	assert.Equal(t, "cube", report.Meshes[0].Name)
	assert.Positive(t, report.Meshes[0].Triangles)
	assert.Less(t, report.Meshes[0].Vertices, 3*report.Meshes[0].Triangles, "vertices are welded")
}

func TestEvalErrors(t *testing.T) {
	path := writeFile(t, "bad.spz", `(defsolid "x" (sphere 0))`)

	_, err := run(t, "eval", path)
	assert.ErrorContains(t, err, "sphere radius must be positive")

	_, err = run(t, "eval", filepath.Join(t.TempDir(), "absent.spz"))
	assert.ErrorContains(t, err, "read sketch")
}

func TestBadLogLevel(t *testing.T) {
	path := writeFile(t, "s.spz", `(vec3 0 0 0)`)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--log-level", "loud", "eval", path})
	assert.ErrorContains(t, root.Execute(), "log.level")
}

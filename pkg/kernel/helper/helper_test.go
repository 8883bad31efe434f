package helper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/gostep/pkg/geometry"
	"github.com/philipparndt/gostep/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestHelperProcess is not a real test. It is the fake helper executable
// that the tests below run by re-executing the test binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GOSTEP_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "no command")
		os.Exit(2)
	}
	command, rest := args[1], args[2:]
	path := rest[len(rest)-1]

	if strings.Contains(path, "broken") {
		fmt.Fprintln(os.Stderr, "StepReader: file is not a valid STEP model")
		os.Exit(1)
	}

	switch command {
	case "topology":
		fmt.Print(`{
			"faces": [
				{"surface_type": "planar", "orientation": "reversed", "area": 4,
				 "centroid": [1, 1, 0], "bounds": [0, 0, 0, 2, 2, 0],
				 "plane_axis": [0, 0, 1], "step_id": 11},
				{"surface_type": "cylindrical", "orientation": "forward", "area": 3.14,
				 "centroid": [0, 0, 1], "bounds": [-1, -1, 0, 1, 1, 2],
				 "cylinder": {"radius": 1, "axis_direction": [0, 0, 1], "axis_point": [0, 0, 0],
				              "u_min": 0, "u_max": 3.141592653589793}}
			],
			"edges": 2
		}`)
	case "mesh":
		fmt.Printf(`{
			"faces": [
				{"nodes": [[0,0,0],[2,0,0],[0,2,0]], "triangles": [[1,2,3]],
				 "location": [1,0,0,%s, 0,1,0,0, 0,0,1,0]},
				null
			],
			"edges": [
				{"points": [[0,0,0],[2,0,0]]},
				{"error": "degenerate curve"}
			]
		}`, rest[1])
	case "edges":
		fmt.Printf(`{"edges": [{"points": [[0,0,0],[%s,0,0]]}, {"points": [[1,1,1],[2,2,2]]}]}`, rest[1])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s\n", command)
		os.Exit(2)
	}
	os.Exit(0)
}

func fakeHelper(t *testing.T) *Kernel {
	t.Helper()
	k := New(os.Args[0], []string{"-test.run=TestHelperProcess", "--"}, zap.NewNop())
	k.Env = []string{"GOSTEP_WANT_HELPER_PROCESS=1"}
	return k
}

func stepFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("ISO-10303-21;\n"), 0644))
	return path
}

func TestLoadTopology(t *testing.T) {
	shape, err := fakeHelper(t).Load(stepFile(t, "part.step"))
	require.NoError(t, err)

	faces := shape.Faces()
	require.Len(t, faces, 2)
	assert.Len(t, shape.Edges(), 2)

	plane := faces[0]
	assert.Equal(t, kernel.Planar, plane.SurfaceType())
	assert.Equal(t, kernel.Reversed, plane.Orientation())
	assert.Equal(t, 4.0, plane.Area())
	assert.Equal(t, geometry.NewVector3(0, 0, 1), plane.PlaneAxis())
	assert.Equal(t, [6]float64{0, 0, 0, 2, 2, 0}, plane.Bounds().Array())
	assert.Equal(t, 11, plane.StepID())
	assert.Nil(t, plane.Triangulation())

	cyl := faces[1]
	assert.Equal(t, kernel.Cylindrical, cyl.SurfaceType())
	assert.Equal(t, kernel.Forward, cyl.Orientation())
	assert.Equal(t, 1.0, cyl.Cylinder().Radius)
	assert.InDelta(t, 3.141592653589793, cyl.Cylinder().UMax, 1e-12)
	assert.Equal(t, 0, cyl.StepID())
}

func TestMeshAndEdges(t *testing.T) {
	shape, err := fakeHelper(t).Load(stepFile(t, "part.step"))
	require.NoError(t, err)
	require.NoError(t, shape.Mesh(0.25, 0.5))

	faces := shape.Faces()
	tri := faces[0].Triangulation()
	require.NotNil(t, tri)
	assert.Len(t, tri.Nodes, 3)
	assert.Equal(t, [][3]int{{1, 2, 3}}, tri.Triangles)
	assert.False(t, tri.HasNormals())
	// The fake helper encodes the linear deflection as the X translation
	assert.Equal(t, geometry.NewVector3(0.25, 0, 0), tri.Location.Apply(geometry.Vector3{}))
	assert.Nil(t, faces[1].Triangulation())

	edges := shape.Edges()
	points, err := edges[0].Discretize(0.5, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Vector3{{}, {X: 2}}, points)

	_, err = edges[1].Discretize(0.5, 0.25)
	assert.Error(t, err)

	// Different tolerances re-run the helper
	points, err = edges[0].Discretize(0.1, 0.75)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Vector3{{}, {X: 0.1}}, points)
	points, err = edges[1].Discretize(0.1, 0.75)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestLoadFailures(t *testing.T) {
	k := fakeHelper(t)

	_, err := k.Load(stepFile(t, "broken.step"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid STEP model")

	_, err = k.Load(filepath.Join(t.TempDir(), "missing.step"))
	assert.True(t, errors.Is(err, kernel.ErrNotFound))

	_, err = New("", nil, nil).Load(stepFile(t, "part.step"))
	assert.Error(t, err)

	_, err = New("gostep-helper-that-does-not-exist", nil, nil).Load(stepFile(t, "part.step"))
	assert.Error(t, err)
}

package cad

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gostep/pkg/geometry"
	"github.com/philipparndt/gostep/pkg/kernel"
	"github.com/stretchr/testify/require"
)

const platePath = "testdata/plate.step"

// quad triangulates the parallelogram origin, origin+u, origin+u+v, origin+v
// with the kernel's 1-based indices.
func quad(origin, u, v geometry.Vector3) *kernel.Triangulation {
	return &kernel.Triangulation{
		Nodes: []geometry.Vector3{
			origin,
			origin.Add(u),
			origin.Add(u).Add(v),
			origin.Add(v),
		},
		Triangles: [][3]int{{1, 2, 3}, {1, 3, 4}},
		Location:  geometry.Identity(),
	}
}

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geometry.BoundingBox {
	return geometry.NewBoundingBoxFromArray([6]float64{minX, minY, minZ, maxX, maxY, maxZ})
}

// plateShape mirrors testdata/plate.step: six faces of a 10x10x2 plate with
// a bore. Face 3 fails to mesh and the second edge fails to discretize.
func plateShape() *kernel.MemoryShape {
	faces := []*kernel.MemoryFace{
		{
			Surface: kernel.Planar, Orient: kernel.Reversed, AreaVal: 100,
			Center: geometry.NewVector3(5, 5, 0), Box: box(0, 0, 0, 10, 10, 0),
			Axis: geometry.NewVector3(0, 0, 1), EntityID: 11,
		},
		{
			Surface: kernel.Planar, Orient: kernel.Forward, AreaVal: 100,
			Center: geometry.NewVector3(5, 5, 2), Box: box(0, 0, 2, 10, 10, 2),
			Axis: geometry.NewVector3(0, 0, 1), EntityID: 12,
		},
		{
			Surface: kernel.Planar, Orient: kernel.Forward, AreaVal: 20,
			Center: geometry.NewVector3(10, 5, 1), Box: box(10, 0, 0, 10, 10, 2),
			Axis: geometry.NewVector3(1, 0, 0), EntityID: 13,
		},
		{
			Surface: kernel.Planar, Orient: kernel.Forward, AreaVal: 20,
			Center: geometry.NewVector3(5, 10, 1), Box: box(0, 10, 0, 10, 10, 2),
			Axis: geometry.NewVector3(0, 1, 0), EntityID: 14,
		},
		{
			Surface: kernel.Planar, Orient: kernel.Reversed, AreaVal: 20,
			Center: geometry.NewVector3(0, 5, 1), Box: box(0, 0, 0, 0, 10, 2),
			Axis: geometry.NewVector3(1, 0, 0), EntityID: 15,
		},
		{
			Surface: kernel.Cylindrical, Orient: kernel.Reversed, AreaVal: 2 * math.Pi * 2.5 * 2,
			Center: geometry.NewVector3(5, 5, 1), Box: box(2.5, 2.5, 0, 7.5, 7.5, 2),
			Cyl: kernel.Cylinder{
				Radius:    2.5,
				Direction: geometry.NewVector3(0, 0, 1),
				Location:  geometry.NewVector3(5, 5, 0),
				UMin:      0,
				UMax:      2 * math.Pi,
			},
			EntityID: 16,
		},
	}

	edges := []*kernel.MemoryEdge{
		{Points: []geometry.Vector3{{}, {X: 10}, {X: 10, Y: 10}}},
		{Err: errors.New("degenerate edge")},
	}

	return &kernel.MemoryShape{
		FaceList: faces,
		EdgeList: edges,
		Mesher: func(s *kernel.MemoryShape, linear, angular float64) error {
			f := s.FaceList
			f[0].Mesh = quad(geometry.Vector3{}, geometry.NewVector3(10, 0, 0), geometry.NewVector3(0, 10, 0))
			f[1].Mesh = quad(geometry.NewVector3(0, 0, 2), geometry.NewVector3(10, 0, 0), geometry.NewVector3(0, 10, 0))
			f[1].Mesh.Normals = []geometry.Vector3{{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1}}
			f[2].Mesh = quad(geometry.NewVector3(10, 0, 0), geometry.NewVector3(0, 10, 0), geometry.NewVector3(0, 0, 2))
			f[3].Mesh = nil
			f[4].Mesh = quad(geometry.Vector3{}, geometry.NewVector3(0, 10, 0), geometry.NewVector3(0, 0, 2))
			f[5].Mesh = &kernel.Triangulation{
				Nodes: []geometry.Vector3{
					{X: 7.5, Y: 5}, {X: 5, Y: 7.5}, {X: 5, Y: 7.5, Z: 2},
				},
				Normals: []geometry.Vector3{
					{X: 1}, {Y: 1}, {Y: 1},
				},
				Triangles: [][3]int{{1, 2, 3}},
				Location:  geometry.Identity(),
			}
			return nil
		},
	}
}

func plateKernel(t *testing.T) *kernel.MemoryKernel {
	t.Helper()
	k := kernel.NewMemoryKernel()
	k.RegisterFunc(platePath, plateShape)
	return k
}

func loadPlate(t *testing.T) *Session {
	t.Helper()
	s, err := LoadSession(plateKernel(t), platePath, nil)
	require.NoError(t, err)
	return s
}

func readPlate(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(platePath)
	require.NoError(t, err)
	return string(data)
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

package cad

import (
	"errors"
	"testing"

	"github.com/philipparndt/gostep/pkg/kernel"
	"github.com/philipparndt/gostep/pkg/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepNames(s *Session) []string {
	out := make([]string, 0, s.NumFaces())
	for _, meta := range s.Faces() {
		if meta.StepName == nil {
			out = append(out, "")
		} else {
			out = append(out, *meta.StepName)
		}
	}
	return out
}

func TestLoadSessionInfo(t *testing.T) {
	s := loadPlate(t)
	info := s.Info()

	assert.Equal(t, 6, info.NumFaces)
	assert.Equal(t, 6, info.NumStepEntities)
	assert.Equal(t, "mm", info.LengthUnit)
	assert.Equal(t, 1.0, info.LengthScale)
	assert.Equal(t, platePath, info.Path)
	assert.Equal(t, s.ID.String(), info.SessionID)
	assert.Equal(t, "plate", s.Document.Stem())
}

func TestLoadSessionMetadata(t *testing.T) {
	s := loadPlate(t)
	faces := s.Faces()
	require.Len(t, faces, s.NumFaces())
	for i, meta := range faces {
		assert.Equal(t, i, meta.ID)
	}

	assert.Equal(t, []string{"", "top", "", "side's", "", "bore"}, stepNames(s))
	assert.Equal(t, [3]float64{0, 0, -1}, faces[0].Normal)
	assert.Equal(t, 31.4159, faces[5].Area)
	require.NotNil(t, faces[5].ArcAngle)
	assert.Equal(t, 360.0, *faces[5].ArcAngle)

	faces[0].Area = -1
	assert.Equal(t, 100.0, s.Faces()[0].Area, "Faces returns a copy")
}

func TestSessionFace(t *testing.T) {
	s := loadPlate(t)

	meta, err := s.Face(5)
	require.NoError(t, err)
	assert.Equal(t, kernel.Cylindrical, meta.SurfaceType)

	for _, id := range []int{-1, 6, 100} {
		_, err := s.Face(id)
		assert.ErrorIs(t, err, ErrFaceNotFound, "face %d", id)
	}
}

func TestLoadSessionErrors(t *testing.T) {
	_, err := LoadSession(plateKernel(t), "testdata/missing.step", nil)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "testdata/missing.step", loadErr.Path)

	// readable text the kernel cannot parse
	_, err = LoadSession(kernel.NewMemoryKernel(), platePath, nil)
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, kernel.ErrNotFound)
}

func TestEntityJoinByStepID(t *testing.T) {
	shape := plateShape()
	// kernel enumerates the bore first
	shape.FaceList[0], shape.FaceList[5] = shape.FaceList[5], shape.FaceList[0]

	s := NewSession(step.NewDocument(platePath, readPlate(t)), shape, nil)
	assert.Equal(t, []string{"bore", "top", "", "side's", "", ""}, stepNames(s))

	entity, ok := s.EntityForFace(0)
	require.True(t, ok)
	assert.Equal(t, 16, entity.EntityID)
}

func TestEntityJoinFallsBackToPosition(t *testing.T) {
	shape := plateShape()
	for _, f := range shape.FaceList {
		f.EntityID = 0
	}
	shape.FaceList[0], shape.FaceList[5] = shape.FaceList[5], shape.FaceList[0]

	s := NewSession(step.NewDocument(platePath, readPlate(t)), shape, nil)
	assert.Equal(t, []string{"", "top", "", "side's", "", "bore"}, stepNames(s))
}

func TestEntityJoinMixed(t *testing.T) {
	shape := plateShape()
	shape.FaceList[1].EntityID = 99 // unknown id
	shape.FaceList[2].EntityID = 12 // claims the entity at position 1

	s := NewSession(step.NewDocument(platePath, readPlate(t)), shape, nil)

	entity, ok := s.EntityForFace(2)
	require.True(t, ok)
	assert.Equal(t, 12, entity.EntityID)

	_, ok = s.EntityForFace(1)
	assert.False(t, ok, "position 1 is already claimed by id")
}

func TestEntityJoinMoreFacesThanEntities(t *testing.T) {
	shape := plateShape()
	for _, f := range shape.FaceList {
		f.EntityID = 0
	}
	text := "DATA;\n#1 = ADVANCED_FACE('only',(#2),#3,.T.);\nENDSEC;\n"

	s := NewSession(step.NewDocument("short.step", text), shape, nil)
	assert.Equal(t, 1, s.Info().NumStepEntities)
	assert.Equal(t, []string{"only", "", "", "", "", ""}, stepNames(s))
	assert.Len(t, s.Entities(), 1)
}

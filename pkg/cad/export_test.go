package cad

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philipparndt/gostep/pkg/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportEmptyFeaturesIsByteIdentical(t *testing.T) {
	s := loadPlate(t)
	out := tempPath(t, "named.step")

	path, err := s.ExportNamed(FeatureMap{}, out)
	require.NoError(t, err)
	assert.Equal(t, out, path)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, readPlate(t), string(data))
}

func TestExportSingleRename(t *testing.T) {
	s := loadPlate(t)
	original := readPlate(t)

	text, err := s.NamedText(FeatureMap{{Name: "mount", Members: []FeatureMember{{FaceID: 0}}}})
	require.NoError(t, err)

	assert.Equal(t, len(original)+len("mount"), len(text))
	assert.Contains(t, text, "#11 = ADVANCED_FACE('mount',(#20),#30,.T.);")
	assert.Equal(t, strings.Replace(original, "#11 = ADVANCED_FACE(''", "#11 = ADVANCED_FACE('mount'", 1), text)
}

func TestExportReplacesExistingNames(t *testing.T) {
	s := loadPlate(t)
	original := readPlate(t)

	text, err := s.NamedText(FeatureMap{
		{Name: "lid", Members: []FeatureMember{{FaceID: 1}}},
		{Name: "o'ring", Members: []FeatureMember{{FaceID: 3}}},
		{Name: "bore", Members: []FeatureMember{{FaceID: 5, SubName: "wall"}}},
	})
	require.NoError(t, err)

	want := original
	want = strings.Replace(want, "ADVANCED_FACE('top'", "ADVANCED_FACE('lid'", 1)
	want = strings.Replace(want, "advanced_face ( 'side''s'", "advanced_face ( 'o''ring'", 1)
	want = strings.Replace(want, "ADVANCED_FACE('bore'", "ADVANCED_FACE('bore.wall'", 1)
	assert.Equal(t, want, text)

	// the escaped name reads back through the indexer
	entities := step.IndexEntities(text)
	require.Len(t, entities, 6)
	assert.Equal(t, "o'ring", entities[3].Name)
}

func TestExportLastFeatureWins(t *testing.T) {
	s := loadPlate(t)
	first := FeatureMember{FaceID: 2}

	text, err := s.NamedText(FeatureMap{
		{Name: "early", Members: []FeatureMember{first}},
		{Name: "late", Members: []FeatureMember{{FaceID: 2, SubName: "edge"}}},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "#13 = ADVANCED_FACE('late.edge'")
	assert.NotContains(t, text, "early")
}

func TestExportSkipsFacesWithoutEntity(t *testing.T) {
	s := loadPlate(t)
	text, err := s.NamedText(FeatureMap{{Name: "ghost", Members: []FeatureMember{{FaceID: 42}}}})
	require.NoError(t, err)
	assert.Equal(t, readPlate(t), text)
}

func TestExportWriteFailure(t *testing.T) {
	s := loadPlate(t)
	out := filepath.Join(t.TempDir(), "missing", "named.step")

	_, err := s.ExportNamed(FeatureMap{}, out)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, out, ioErr.Path)
}

func TestEngineExportWithoutModel(t *testing.T) {
	e := NewEngine(plateKernel(t), nil)
	_, err := e.ExportNamed(FeatureMap{}, tempPath(t, "out.step"))

	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestEngineExportUsesStoredFeatures(t *testing.T) {
	e := NewEngine(plateKernel(t), nil)
	_, err := e.Load(platePath)
	require.NoError(t, err)
	require.NoError(t, e.SetFeatures(FeatureMap{{Name: "base", Members: []FeatureMember{{FaceID: 0}}}}))

	out := tempPath(t, "named.step")
	_, err = e.ExportNamed(nil, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#11 = ADVANCED_FACE('base'")
}

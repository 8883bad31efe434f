package cad

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func names(m FeatureMap) []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.Name
	}
	return out
}

func TestFeatureMapJSONKeepsOrder(t *testing.T) {
	input := `{
		"zeta": [{"face_id": 1}],
		"alpha": {"color": [1, 0, 0], "faces": [{"face_id": 2, "sub_name": "inner"}]},
		"mid": []
	}`

	var m FeatureMap
	require.NoError(t, json.Unmarshal([]byte(input), &m))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names(m))

	alpha, ok := m.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 0}, alpha.Color)
	assert.Equal(t, []FeatureMember{{FaceID: 2, SubName: "inner"}}, alpha.Members)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(data))
	assert.Equal(t, `{"zeta":[{"face_id":1}],"alpha":{"color":[1,0,0],"faces":[{"face_id":2,"sub_name":"inner"}]},"mid":[]}`, string(data))
}

func TestFeatureMapJSONDuplicateKeyReplacesInPlace(t *testing.T) {
	var m FeatureMap
	require.NoError(t, json.Unmarshal([]byte(`{"a":[{"face_id":1}],"b":[],"a":[{"face_id":7}]}`), &m))
	assert.Equal(t, []string{"a", "b"}, names(m))
	assert.Equal(t, 7, m[0].Members[0].FaceID)
}

func TestFeatureMapJSONErrors(t *testing.T) {
	for _, input := range []string{
		`[1, 2]`,
		`{"a": 3}`,
		`{"a": [{"face_id": "x"}]}`,
		`{"a": [`,
	} {
		var m FeatureMap
		assert.Error(t, json.Unmarshal([]byte(input), &m), input)
	}

	var m FeatureMap
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Nil(t, m)
}

func TestFeatureMapYAMLKeepsOrder(t *testing.T) {
	input := `
mounting:
  - face_id: 4
  - face_id: 0
    sub_name: base
bore:
  color: [0.2, 0.4, 0.6]
  faces:
    - face_id: 5
`
	var m FeatureMap
	require.NoError(t, yaml.Unmarshal([]byte(input), &m))
	assert.Equal(t, []string{"mounting", "bore"}, names(m))
	assert.Equal(t, []FeatureMember{{FaceID: 4}, {FaceID: 0, SubName: "base"}}, m[0].Members)
	assert.Equal(t, []float64{0.2, 0.4, 0.6}, m[1].Color)

	out, err := yaml.Marshal(m)
	require.NoError(t, err)

	var again FeatureMap
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, m, again)
}

func TestFeatureMapYAMLErrors(t *testing.T) {
	var m FeatureMap
	assert.Error(t, yaml.Unmarshal([]byte("- a\n- b\n"), &m))
	assert.Error(t, yaml.Unmarshal([]byte("a: 3\n"), &m))
}

func TestParseFeatures(t *testing.T) {
	fromJSON, err := ParseFeatures([]byte(`  {"a": [{"face_id": 1}]}`))
	require.NoError(t, err)
	fromYAML, err := ParseFeatures([]byte("a:\n  - face_id: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)

	empty, err := ParseFeatures([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFeatureMapFaceNames(t *testing.T) {
	m := FeatureMap{
		{Name: "flange", Members: []FeatureMember{{FaceID: 1}, {FaceID: 2, SubName: "top"}}},
		{Name: "bore", Members: []FeatureMember{{FaceID: 2}, {FaceID: 5}}},
	}
	assert.Equal(t, map[int]string{1: "flange", 2: "bore", 5: "bore"}, m.FaceNames())

	swapped := FeatureMap{m[1], m[0]}
	assert.Equal(t, "flange.top", swapped.FaceNames()[2])
}

func TestFeatureMapSetAndDelete(t *testing.T) {
	m := FeatureMap{{Name: "a"}, {Name: "b"}}

	replaced := m.Set(Feature{Name: "a", Members: []FeatureMember{{FaceID: 3}}})
	assert.Equal(t, []string{"a", "b"}, names(replaced))
	assert.Empty(t, m[0].Members, "Set must not modify the receiver")

	appended := m.Set(Feature{Name: "c"})
	assert.Equal(t, []string{"a", "b", "c"}, names(appended))

	assert.Equal(t, []string{"b"}, names(m.Delete("a")))
	assert.Len(t, m, 2)
}

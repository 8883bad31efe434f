package cad

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FeatureMember is one face of a feature, optionally with a sub-label
type FeatureMember struct {
	FaceID  int    `json:"face_id" yaml:"face_id"`
	SubName string `json:"sub_name,omitempty" yaml:"sub_name,omitempty"`
}

// Feature is a user-named group of faces
type Feature struct {
	Name    string
	Members []FeatureMember
	// Color is carried for viewers and ignored by export
	Color []float64
}

// FeatureMap maps feature names to members. It is an ordered list because
// export resolves faces claimed by several features with last-write-wins,
// which needs a reproducible iteration order. JSON and YAML decoding keep the
// order of the keys in the document.
type FeatureMap []Feature

// Get returns the feature with the given name
func (m FeatureMap) Get(name string) (Feature, bool) {
	for _, f := range m {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Set replaces a feature in place or appends it
func (m FeatureMap) Set(f Feature) FeatureMap {
	for i := range m {
		if m[i].Name == f.Name {
			out := append(FeatureMap(nil), m...)
			out[i] = f
			return out
		}
	}
	return append(append(FeatureMap(nil), m...), f)
}

// Delete removes the feature with the given name
func (m FeatureMap) Delete(name string) FeatureMap {
	out := make(FeatureMap, 0, len(m))
	for _, f := range m {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

// FaceNames resolves the export name of every face that belongs to a
// feature: "<feature>.<sub_name>" with a sub-label, "<feature>" without.
// A face listed under several features takes the name from the last one.
func (m FeatureMap) FaceNames() map[int]string {
	names := make(map[int]string)
	for _, f := range m {
		for _, member := range f.Members {
			name := f.Name
			if member.SubName != "" {
				name = f.Name + "." + member.SubName
			}
			names[member.FaceID] = name
		}
	}
	return names
}

type featureObject struct {
	Color []float64       `json:"color,omitempty" yaml:"color,omitempty"`
	Faces []FeatureMember `json:"faces" yaml:"faces"`
}

// MarshalJSON encodes the map as a JSON object in list order. Features
// without a color encode as a member array, the others as {color, faces}.
func (m FeatureMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		members := f.Members
		if members == nil {
			members = []FeatureMember{}
		}
		var value any = members
		if f.Color != nil {
			value = featureObject{Color: f.Color, Faces: members}
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order. Each value is
// either a member array or an object with "faces" and an optional "color".
func (m *FeatureMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode features: %w", err)
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("features must be a JSON object")
	}

	out := FeatureMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode features: %w", err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode feature %q: %w", name, err)
		}
		f, err := decodeJSONFeature(name, raw)
		if err != nil {
			return err
		}
		out = out.Set(f)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode features: %w", err)
	}

	*m = out
	return nil
}

func decodeJSONFeature(name string, raw json.RawMessage) (Feature, error) {
	trimmed := bytes.TrimSpace(raw)
	f := Feature{Name: name}

	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &f.Members); err != nil {
			return Feature{}, fmt.Errorf("failed to decode members of feature %q: %w", name, err)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var obj featureObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Feature{}, fmt.Errorf("failed to decode feature %q: %w", name, err)
		}
		f.Members = obj.Faces
		f.Color = obj.Color
	case bytes.Equal(trimmed, []byte("null")):
	default:
		return Feature{}, fmt.Errorf("feature %q must be a list of members or an object", name)
	}
	return f, nil
}

// UnmarshalYAML decodes a YAML mapping keeping key order
func (m *FeatureMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: features must be a mapping", node.Line)
	}

	out := FeatureMap{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		f := Feature{Name: key.Value}

		switch value.Kind {
		case yaml.SequenceNode:
			if err := value.Decode(&f.Members); err != nil {
				return fmt.Errorf("line %d: feature %q: %w", value.Line, f.Name, err)
			}
		case yaml.MappingNode:
			var obj featureObject
			if err := value.Decode(&obj); err != nil {
				return fmt.Errorf("line %d: feature %q: %w", value.Line, f.Name, err)
			}
			f.Members = obj.Faces
			f.Color = obj.Color
		case yaml.ScalarNode:
			if value.Tag != "!!null" {
				return fmt.Errorf("line %d: feature %q must be a list of members or a mapping", value.Line, f.Name)
			}
		default:
			return fmt.Errorf("line %d: feature %q must be a list of members or a mapping", value.Line, f.Name)
		}
		out = out.Set(f)
	}

	*m = out
	return nil
}

// MarshalYAML encodes the map as an ordered YAML mapping
func (m FeatureMap) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range m {
		members := f.Members
		if members == nil {
			members = []FeatureMember{}
		}
		var value any = members
		if f.Color != nil {
			value = featureObject{Color: f.Color, Faces: members}
		}

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			valueNode)
	}
	return node, nil
}

// ParseFeatures decodes a feature file. JSON documents are detected by their
// leading brace; anything else is read as YAML.
func ParseFeatures(data []byte) (FeatureMap, error) {
	var m FeatureMap
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FeatureMap{}, nil
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err := yaml.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("failed to decode features: %w", err)
	}
	return m, nil
}

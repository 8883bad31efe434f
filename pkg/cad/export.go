package cad

import (
	"os"
	"sort"

	"github.com/philipparndt/gostep/pkg/step"
	"go.uber.org/zap"
)

// RenamePatches computes one patch per named face that has a joined STEP
// entity. Faces without an entity are skipped.
func (s *Session) RenamePatches(features FeatureMap) []step.Patch {
	names := features.FaceNames()

	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	patches := make([]step.Patch, 0, len(ids))
	for _, id := range ids {
		entity := s.entityAt(id)
		if entity == nil {
			s.logger.Debug("no STEP entity for named face", zap.Int("face_id", id))
			continue
		}
		patches = append(patches, step.RenamePatch(*entity, names[id]))
	}
	return patches
}

// NamedText returns the original STEP text with the feature names written
// into the first argument of each member face's ADVANCED_FACE entity. Every
// other byte is left untouched.
func (s *Session) NamedText(features FeatureMap) (string, error) {
	return step.ApplyPatches(s.Document.Text, s.RenamePatches(features))
}

// ExportNamed writes the named text to outPath
func (s *Session) ExportNamed(features FeatureMap, outPath string) (string, error) {
	text, err := s.NamedText(features)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return "", &IOError{Path: outPath, Err: err}
	}
	s.logger.Info("exported named STEP", zap.String("out", outPath), zap.Int("features", len(features)))
	return outPath, nil
}

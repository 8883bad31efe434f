package cad

import (
	"sync"

	"github.com/philipparndt/gostep/pkg/kernel"
	"go.uber.org/zap"
)

// Engine holds the single live model shared by concurrent callers.
// Loads build a complete Session outside the lock and swap it in; queries
// and exports work on the Session current when they started.
type Engine struct {
	kernel kernel.Kernel
	logger *zap.Logger

	mu       sync.RWMutex
	session  *Session
	features FeatureMap
}

// NewEngine creates an engine without a loaded model
func NewEngine(k kernel.Kernel, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{kernel: k, logger: logger}
}

// Load replaces the current model. On failure the previous model stays loaded.
// Stored features survive a reload of the same path and are cleared otherwise.
func (e *Engine) Load(path string) (LoadInfo, error) {
	s, err := e.Open(path)
	if err != nil {
		return LoadInfo{}, err
	}
	return s.Info(), nil
}

// Open is Load returning the session it swapped in. Callers that need info,
// faces and mesh of one model use that session rather than the live one,
// which a concurrent load may have replaced already.
func (e *Engine) Open(path string) (*Session, error) {
	s, err := LoadSession(e.kernel, path, e.logger)
	if err != nil {
		e.logger.Warn("load failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	e.mu.Lock()
	if e.session == nil || e.session.Document.Path != s.Document.Path {
		e.features = nil
	}
	e.session = s
	e.mu.Unlock()

	return s, nil
}

// IsCurrent reports whether s is the live session
func (e *Engine) IsCurrent(s *Session) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return s != nil && e.session == s
}

// Reload loads the current model's file again
func (e *Engine) Reload() (LoadInfo, error) {
	s, err := e.Session("reload")
	if err != nil {
		return LoadInfo{}, err
	}
	return e.Load(s.Document.Path)
}

// Session returns the live session or a StateError naming op
func (e *Engine) Session(op string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return nil, &StateError{Op: op}
	}
	return e.session, nil
}

// CurrentPath returns the path of the loaded file, empty without a model
func (e *Engine) CurrentPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return ""
	}
	return e.session.Document.Path
}

// Info returns the summary of the loaded model
func (e *Engine) Info() (LoadInfo, error) {
	s, err := e.Session("info")
	if err != nil {
		return LoadInfo{}, err
	}
	return s.Info(), nil
}

// Tessellate meshes the loaded model
func (e *Engine) Tessellate(opts MeshOptions) (*MeshBuffers, error) {
	s, err := e.Session("tessellate")
	if err != nil {
		return nil, err
	}
	return s.Tessellate(opts)
}

// Faces returns the metadata of every face
func (e *Engine) Faces() ([]FaceMetadata, error) {
	s, err := e.Session("faces")
	if err != nil {
		return nil, err
	}
	return s.Faces(), nil
}

// Face returns the metadata of one face
func (e *Engine) Face(id int) (FaceMetadata, error) {
	s, err := e.Session("face")
	if err != nil {
		return FaceMetadata{}, err
	}
	return s.Face(id)
}

// Features returns the feature map stored for the loaded model
func (e *Engine) Features() FeatureMap {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append(FeatureMap(nil), e.features...)
}

// SetFeatures stores a feature map for the loaded model
func (e *Engine) SetFeatures(features FeatureMap) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return &StateError{Op: "set features"}
	}
	e.features = append(FeatureMap(nil), features...)
	return nil
}

// ExportNamed writes the loaded STEP file with feature names applied.
// A nil features map exports the stored features.
func (e *Engine) ExportNamed(features FeatureMap, outPath string) (string, error) {
	e.mu.RLock()
	s := e.session
	if features == nil {
		features = e.features
	}
	e.mu.RUnlock()

	if s == nil {
		return "", &StateError{Op: "export"}
	}
	return s.ExportNamed(features, outPath)
}

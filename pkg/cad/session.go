package cad

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/philipparndt/gostep/pkg/kernel"
	"github.com/philipparndt/gostep/pkg/step"
	"go.uber.org/zap"
)

// LoadInfo summarizes a freshly loaded model
type LoadInfo struct {
	SessionID       string  `json:"session_id"`
	Path            string  `json:"path"`
	NumFaces        int     `json:"num_faces"`
	NumStepEntities int     `json:"num_step_entities"`
	LengthUnit      string  `json:"length_unit"`
	LengthScale     float64 `json:"length_scale"`
}

// Session is one loaded model: the STEP text, its entity index, the kernel
// shape and the face metadata derived from them. Its fields are never
// reassigned after LoadSession returns; a new load produces a new Session.
type Session struct {
	ID       uuid.UUID
	Document *step.Document
	Unit     step.Unit
	LoadedAt time.Time

	shape      kernel.Shape
	faces      []kernel.Face
	edges      []kernel.Edge
	entities   []step.EntityRecord
	faceEntity []int
	metadata   []FaceMetadata

	// meshMu serializes kernel meshing, which replaces the shape's triangulations
	meshMu sync.Mutex
	logger *zap.Logger
}

// LoadSession reads a STEP file, loads its shape through the kernel and
// extracts the metadata of every face. Any failure is reported as a LoadError.
func LoadSession(k kernel.Kernel, path string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := step.ReadDocument(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	shape, err := k.Load(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return NewSession(doc, shape, logger), nil
}

// NewSession builds a session from an already read document and loaded shape
func NewSession(doc *step.Document, shape kernel.Shape, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		ID:       uuid.New(),
		Document: doc,
		Unit:     step.ResolveUnit(doc.Text),
		LoadedAt: time.Now(),
		shape:    shape,
		faces:    shape.Faces(),
		edges:    shape.Edges(),
		entities: step.IndexEntities(doc.Text),
	}
	s.logger = logger.With(zap.String("session", s.ID.String()), zap.String("path", doc.Path))

	if len(s.entities) != len(s.faces) {
		s.logger.Warn("STEP entity count differs from kernel face count",
			zap.Int("entities", len(s.entities)),
			zap.Int("faces", len(s.faces)))
	}

	s.faceEntity = joinEntities(s.faces, s.entities)
	s.metadata = make([]FaceMetadata, len(s.faces))
	for id, face := range s.faces {
		s.metadata[id] = ExtractMetadata(face, id, s.entityAt(id))
	}

	s.logger.Info("model loaded",
		zap.Int("faces", len(s.faces)),
		zap.Int("edges", len(s.edges)),
		zap.Int("entities", len(s.entities)),
		zap.String("unit", s.Unit.Name))
	return s
}

// joinEntities maps every face to the index of its ADVANCED_FACE entity or -1.
// Faces reporting a STEP id are matched by id. The others fall back to the
// entity at the same ordinal position if no face claimed it by id.
func joinEntities(faces []kernel.Face, entities []step.EntityRecord) []int {
	byID := make(map[int]int, len(entities))
	for i, e := range entities {
		if _, ok := byID[e.EntityID]; !ok {
			byID[e.EntityID] = i
		}
	}

	join := make([]int, len(faces))
	claimed := make([]bool, len(entities))
	for i, face := range faces {
		join[i] = -1
		if idx, ok := byID[face.StepID()]; ok && face.StepID() > 0 && !claimed[idx] {
			join[i] = idx
			claimed[idx] = true
		}
	}
	for i := range faces {
		if join[i] < 0 && i < len(entities) && !claimed[i] {
			join[i] = i
			claimed[i] = true
		}
	}
	return join
}

func (s *Session) entityAt(faceID int) *step.EntityRecord {
	if faceID < 0 || faceID >= len(s.faceEntity) || s.faceEntity[faceID] < 0 {
		return nil
	}
	return &s.entities[s.faceEntity[faceID]]
}

// Info returns the load summary
func (s *Session) Info() LoadInfo {
	return LoadInfo{
		SessionID:       s.ID.String(),
		Path:            s.Document.Path,
		NumFaces:        len(s.faces),
		NumStepEntities: len(s.entities),
		LengthUnit:      s.Unit.Name,
		LengthScale:     s.Unit.Scale,
	}
}

// NumFaces returns the number of kernel faces
func (s *Session) NumFaces() int {
	return len(s.faces)
}

// Faces returns a copy of the metadata of every face, indexed by face id
func (s *Session) Faces() []FaceMetadata {
	out := make([]FaceMetadata, len(s.metadata))
	copy(out, s.metadata)
	return out
}

// Face returns the metadata of one face
func (s *Session) Face(id int) (FaceMetadata, error) {
	if id < 0 || id >= len(s.metadata) {
		return FaceMetadata{}, fmt.Errorf("%w: %d (model has %d faces)", ErrFaceNotFound, id, len(s.metadata))
	}
	return s.metadata[id], nil
}

// Entities returns a copy of the indexed ADVANCED_FACE entities in file order
func (s *Session) Entities() []step.EntityRecord {
	out := make([]step.EntityRecord, len(s.entities))
	copy(out, s.entities)
	return out
}

// EntityForFace returns the STEP entity joined to a face
func (s *Session) EntityForFace(id int) (step.EntityRecord, bool) {
	e := s.entityAt(id)
	if e == nil {
		return step.EntityRecord{}, false
	}
	return *e, true
}

// Tessellate meshes the shape and assembles the mesh buffers
func (s *Session) Tessellate(opts MeshOptions) (*MeshBuffers, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s.meshMu.Lock()
	defer s.meshMu.Unlock()

	start := time.Now()
	if err := s.shape.Mesh(opts.LinearDeflection, opts.AngularDeflection); err != nil {
		return nil, fmt.Errorf("failed to mesh shape: %w", err)
	}
	mesh := AssembleMesh(s.faces, s.edges, opts, s.logger)

	s.logger.Debug("tessellated",
		zap.Float64("linear", opts.LinearDeflection),
		zap.Float64("angular", opts.AngularDeflection),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("segments", mesh.SegmentCount()),
		zap.Duration("took", time.Since(start)))
	return mesh, nil
}

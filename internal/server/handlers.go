package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/philipparndt/gostep/pkg/analysis"
	"github.com/philipparndt/gostep/pkg/cad"
	"github.com/philipparndt/gostep/pkg/step"
	"github.com/philipparndt/gostep/version"
	"go.uber.org/zap"
)

// UploadResponse is returned by POST /api/upload
type UploadResponse struct {
	Success  bool               `json:"success"`
	Info     *cad.LoadInfo      `json:"info"`
	Mesh     *cad.MeshBuffers   `json:"mesh"`
	Faces    []cad.FaceMetadata `json:"faces"`
	Filename string             `json:"filename,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type featuresBody struct {
	Features cad.FeatureMap `json:"features"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeEngineError maps engine errors to status codes. noModel is the status
// used when no model is loaded.
func writeEngineError(w http.ResponseWriter, err error, noModel int) {
	switch {
	case errors.Is(err, cad.ErrNoModel):
		writeError(w, noModel, "No model loaded")
	case errors.Is(err, cad.ErrFaceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cad.ErrInvalidDeflection):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"version":      version.GetVersion(),
		"model_loaded": s.engine.CurrentPath() != "",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	if !step.IsStepPath(name) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s", filepath.Ext(name)))
		return
	}

	path, err := s.saveUpload(name, file)
	if err != nil {
		s.logger.Error("failed to store upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sess, err := s.open(path)
	if err != nil {
		_ = os.RemoveAll(filepath.Dir(path))
		writeJSON(w, http.StatusOK, UploadResponse{Success: false, Error: err.Error()})
		return
	}
	s.replaceUpload(filepath.Dir(path))

	// Everything below reads the session this upload produced, even if
	// another load has replaced it in the meantime.
	info := sess.Info()
	mesh, err := s.tessellate(sess, s.cfg.Mesh)
	if err != nil {
		writeJSON(w, http.StatusOK, UploadResponse{Success: false, Info: &info, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success:  true,
		Info:     &info,
		Mesh:     mesh,
		Faces:    sess.Faces(),
		Filename: name,
	})
}

// saveUpload stores an upload in its own directory so that the original
// file name, and with it the export name, is preserved
func (s *Server) saveUpload(name string, src io.Reader) (string, error) {
	dir, err := os.MkdirTemp(s.uploadDir, "upload-")
	if err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

// replaceUpload records dir as the live upload and removes the previous one.
// When a later load has already replaced the model from dir, dir itself is
// stale and is removed instead.
func (s *Server) replaceUpload(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale := dir
	if filepath.Dir(s.engine.CurrentPath()) == dir {
		stale = s.lastUpload
		s.lastUpload = dir
	}
	if stale != "" && stale != s.lastUpload {
		_ = os.RemoveAll(stale)
	}
}

func (s *Server) tessellate(sess *cad.Session, opts cad.MeshOptions) (*cad.MeshBuffers, error) {
	start := time.Now()
	mesh, err := sess.Tessellate(opts)
	s.metrics.ObserveOperation("tessellate", start, err)
	if err == nil && s.engine.IsCurrent(sess) {
		s.metrics.MeshTriangles.Set(float64(mesh.TriangleCount()))
	}
	return mesh, err
}

func (s *Server) handleFaces(w http.ResponseWriter, r *http.Request) {
	faces, err := s.engine.Faces()
	if err != nil {
		writeEngineError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"faces": faces})
}

func (s *Server) handleFace(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "face id must be an integer")
		return
	}

	face, err := s.engine.Face(id)
	if err != nil {
		if errors.Is(err, cad.ErrFaceNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Face %d not found", id))
			return
		}
		writeEngineError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, face)
}

func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	opts := s.cfg.Mesh
	query := r.URL.Query()

	for _, p := range []struct {
		name   string
		target *float64
	}{
		{"linear", &opts.LinearDeflection},
		{"angular", &opts.AngularDeflection},
	} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a number", p.name))
			return
		}
		*p.target = v
	}

	sess, err := s.engine.Session("tessellate")
	if err != nil {
		writeEngineError(w, err, http.StatusNotFound)
		return
	}
	mesh, err := s.tessellate(sess, opts)
	if err != nil {
		writeEngineError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mesh)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Session("summary")
	if err != nil {
		writeEngineError(w, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"info":     sess.Info(),
		"summary":  analysis.Summarize(sess.Faces()),
		"features": s.engine.Features(),
	})
}

func (s *Server) handleGetFeatures(w http.ResponseWriter, r *http.Request) {
	features := s.engine.Features()
	if features == nil {
		features = cad.FeatureMap{}
	}
	writeJSON(w, http.StatusOK, featuresBody{Features: features})
}

func (s *Server) handleSetFeatures(w http.ResponseWriter, r *http.Request) {
	var body featuresBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid features: %v", err))
		return
	}
	if err := s.engine.SetFeatures(body.Features); err != nil {
		writeEngineError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body featuresBody
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid features: %v", err))
			return
		}
	}

	sess, err := s.engine.Session("export")
	if err != nil {
		writeEngineError(w, err, http.StatusBadRequest)
		return
	}

	dir, err := os.MkdirTemp("", "gostep-export-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.RemoveAll(dir)

	features := body.Features
	if features == nil {
		features = s.engine.Features()
	}

	out := filepath.Join(dir, sess.Document.Stem()+"_named.step")
	start := time.Now()
	_, err = sess.ExportNamed(features, out)
	s.metrics.ObserveOperation("export", start, err)
	if err != nil {
		writeEngineError(w, err, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(out)))
	http.ServeFile(w, r, out)
}

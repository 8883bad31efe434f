// Package helper adapts an external B-rep helper executable to the
// kernel.Kernel interface. The helper is invoked once per operation and
// answers with a JSON document on stdout.
package helper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/philipparndt/gostep/pkg/geometry"
	"github.com/philipparndt/gostep/pkg/kernel"
	"go.uber.org/zap"
)

// Kernel runs the helper executable
type Kernel struct {
	Command string
	Args    []string
	Env     []string
	WorkDir string
	Logger  *zap.Logger
}

// New creates a helper kernel for the given command and leading arguments
func New(command string, args []string, logger *zap.Logger) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kernel{
		Command: command,
		Args:    args,
		Logger:  logger,
	}
}

// Load reads the topology of a STEP file
func (k *Kernel) Load(path string) (kernel.Shape, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kernel.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var doc topologyDoc
	if err := k.call(&doc, "topology", path); err != nil {
		return nil, err
	}

	shape := &Shape{
		k:    k,
		path: path,
		mem:  &kernel.MemoryShape{},
	}
	for _, f := range doc.Faces {
		shape.mem.FaceList = append(shape.mem.FaceList, f.toFace())
	}
	for i := 0; i < doc.Edges; i++ {
		shape.edges = append(shape.edges, &edge{shape: shape, index: i})
	}

	k.logger().Debug("helper topology loaded",
		zap.String("path", path),
		zap.Int("faces", len(doc.Faces)),
		zap.Int("edges", doc.Edges))

	return shape, nil
}

func (k *Kernel) logger() *zap.Logger {
	if k.Logger == nil {
		return zap.NewNop()
	}
	return k.Logger
}

// call runs the helper with args and decodes its stdout into out
func (k *Kernel) call(out any, args ...string) error {
	if k.Command == "" {
		return fmt.Errorf("no geometry kernel helper configured")
	}
	if _, err := exec.LookPath(k.Command); err != nil {
		return fmt.Errorf("geometry kernel helper %q not found: %w", k.Command, err)
	}

	cmd := exec.Command(k.Command, append(append([]string{}, k.Args...), args...)...)
	cmd.Dir = k.WorkDir
	if len(k.Env) > 0 {
		cmd.Env = append(os.Environ(), k.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var errMsg strings.Builder
		errMsg.WriteString(fmt.Sprintf("helper %s failed: %v", args[0], err))
		if stderr.Len() > 0 {
			errMsg.WriteString("; stderr: ")
			errMsg.WriteString(strings.TrimSpace(stderr.String()))
		}
		return errors.New(errMsg.String())
	}

	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return fmt.Errorf("failed to decode helper %s output: %w", args[0], err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Shape is a shape loaded through the helper
type Shape struct {
	k     *Kernel
	path  string
	mem   *kernel.MemoryShape
	edges []kernel.Edge

	mu        sync.Mutex
	edgeKey   [2]float64
	edgeCache []edgeDoc
}

// Faces returns the faces reported by the helper, in helper order
func (s *Shape) Faces() []kernel.Face {
	return s.mem.Faces()
}

// Edges returns one handle per edge reported by the helper
func (s *Shape) Edges() []kernel.Edge {
	return s.edges
}

// Mesh asks the helper to triangulate every face and discretize every edge
func (s *Shape) Mesh(linearDeflection, angularDeflection float64) error {
	var doc meshDoc
	err := s.k.call(&doc, "mesh",
		"--linear", formatFloat(linearDeflection),
		"--angular", formatFloat(angularDeflection),
		s.path)
	if err != nil {
		return err
	}
	if len(doc.Faces) != len(s.mem.FaceList) {
		return fmt.Errorf("helper meshed %d faces, topology has %d", len(doc.Faces), len(s.mem.FaceList))
	}

	for i, t := range doc.Faces {
		face := s.mem.FaceList[i]
		face.Mesh = nil
		if t == nil {
			continue
		}
		tri, err := t.toTriangulation()
		if err != nil {
			s.k.logger().Warn("dropping face triangulation", zap.Int("face", i), zap.Error(err))
			continue
		}
		face.Mesh = tri
	}

	if doc.Edges != nil {
		s.storeEdges(angularDeflection, linearDeflection, doc.Edges)
	}
	return nil
}

func (s *Shape) storeEdges(angular, linear float64, edges []edgeDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edgeKey = [2]float64{angular, linear}
	s.edgeCache = edges
}

// polyline returns the cached polyline of edge i, re-running the helper when
// the tolerances differ from the cached ones
func (s *Shape) polyline(i int, angular, linear float64) ([]geometry.Vector3, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edgeCache == nil || s.edgeKey != [2]float64{angular, linear} {
		var doc meshDoc
		err := s.k.call(&doc, "edges",
			"--angular", formatFloat(angular),
			"--linear", formatFloat(linear),
			s.path)
		if err != nil {
			return nil, err
		}
		s.edgeKey = [2]float64{angular, linear}
		s.edgeCache = doc.Edges
	}

	if i >= len(s.edgeCache) {
		return nil, fmt.Errorf("helper returned no polyline for edge %d", i)
	}
	return s.edgeCache[i].polyline()
}

type edge struct {
	shape *Shape
	index int
}

func (e *edge) Discretize(angularDeflection, linearDeflection float64) ([]geometry.Vector3, error) {
	return e.shape.polyline(e.index, angularDeflection, linearDeflection)
}

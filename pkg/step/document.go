// Package step reads STEP (ISO 10303-21) text just far enough to resolve the
// length unit, locate named ADVANCED_FACE entities and patch their names in
// place. It is not a STEP parser: everything it does not understand is left
// byte-for-byte untouched.
package step

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is the immutable raw text of a loaded STEP file
type Document struct {
	Path string
	Text string
}

// NewDocument wraps already loaded STEP text
func NewDocument(path, text string) *Document {
	return &Document{Path: path, Text: text}
}

// ReadDocument reads a STEP file from disk
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STEP file: %w", err)
	}
	return NewDocument(path, string(data)), nil
}

// Stem returns the file name without directory and extension
func (d *Document) Stem() string {
	if d.Path == "" {
		return "model"
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsStepPath reports whether the path has a .step or .stp extension
func IsStepPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".step", ".stp":
		return true
	}
	return false
}

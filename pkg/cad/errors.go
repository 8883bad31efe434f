package cad

import (
	"errors"
	"fmt"
)

var (
	// ErrNoModel is wrapped by StateError when an operation needs a loaded model
	ErrNoModel = errors.New("no STEP file loaded")
	// ErrFaceNotFound is returned for face ids outside [0, num_faces)
	ErrFaceNotFound = errors.New("face not found")
	// ErrInvalidDeflection is returned for non-positive tessellation tolerances
	ErrInvalidDeflection = errors.New("deflection must be positive")
)

// LoadError reports a file that could not be read or parsed.
// The previously loaded model, if any, is left in place.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// StateError reports an operation that requires a loaded model
type StateError struct {
	Op string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, ErrNoModel)
}

func (e *StateError) Unwrap() error {
	return ErrNoModel
}

// IOError reports a failure to write an exported file
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

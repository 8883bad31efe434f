package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/philipparndt/gostep/pkg/geometry"
)

// Format selects the STL encoding
type Format int

const (
	Binary Format = iota
	ASCII
)

const headerSize = 80

// facet is the 50-byte binary record of one triangle
type facet struct {
	Normal    [3]float32
	V1        [3]float32
	V2        [3]float32
	V3        [3]float32
	Attribute uint16
}

func float32s(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// WriteBinary writes the model as binary STL. The name goes into the
// 80-byte header, truncated if longer.
func WriteBinary(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, headerSize)
	copy(header, model.Name)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(model.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	for i, t := range model.Triangles {
		record := facet{
			Normal: float32s(t.Normal),
			V1:     float32s(t.V1),
			V2:     float32s(t.V2),
			V3:     float32s(t.V3),
		}
		if err := binary.Write(bw, binary.LittleEndian, &record); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// WriteASCII writes the model as ASCII STL
func WriteASCII(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)
	name := asciiName(model.Name)

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range model.Triangles {
		fmt.Fprintf(bw, "  facet normal %e %e %e\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		for _, v := range [3]geometry.Vector3{t.V1, t.V2, t.V3} {
			fmt.Fprintf(bw, "      vertex %e %e %e\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)

	return bw.Flush()
}

// asciiName keeps the solid name on one line
func asciiName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

// Write encodes the model in the given format
func Write(w io.Writer, model *Model, format Format) error {
	if format == ASCII {
		return WriteASCII(w, model)
	}
	return WriteBinary(w, model)
}

// WriteFile writes the model to path
func WriteFile(path string, model *Model, format Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, model, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

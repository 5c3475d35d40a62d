package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/datamapper/pkg/diagram"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a built graph to indented JSON bytes.
func MarshalGraph(g *diagram.Graph, revision string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(FromDiagram(g, revision), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a built graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *diagram.Graph, revision, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(FromDiagram(g, revision), f)
}

// WriteGraph writes a built graph as JSON to an io.Writer.
func WriteGraph(g *diagram.Graph, revision string, w io.Writer) error {
	return writeGraphTo(FromDiagram(g, revision), w)
}

// ReadGraphFile reads a serialized graph from a JSON file.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// ReadGraph decodes a serialized graph from an io.Reader.
func ReadGraph(r io.Reader) (Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}
	return data, nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

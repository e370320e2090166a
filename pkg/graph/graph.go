package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/render/position"
)

// =============================================================================
// Streaming API
// =============================================================================

// WriteLayout writes a Layout as indented JSON to an io.Writer.
// Use MarshalLayout for in-memory serialization or WriteLayoutFile for files.
func WriteLayout(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadLayout decodes and validates a Layout from an io.Reader.
func ReadLayout(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("decode: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteGraph exports a compiled graph and writes it as JSON.
func WriteGraph(g flow.Graph, cfg position.Config, w io.Writer) error {
	return WriteLayout(Export(g, cfg), w)
}

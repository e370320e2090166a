package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/journeyline/journeyline/pkg/timeline"
)

// file is the wrapped form written by [WriteJSON].
type file struct {
	Records []timeline.Record `json:"records"`
}

// WriteJSON encodes records as an indented {"records": [...]} document.
// The output can be re-imported with [ReadJSON].
func WriteJSON(records []timeline.Record, w io.Writer) error {
	out := file{Records: records}
	if out.Records == nil {
		out.Records = []timeline.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes records to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(records []timeline.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(records, f)
}

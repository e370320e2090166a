package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/journeyline/journeyline/pkg/timeline"
)

// ErrUnknownFormat is returned when the input is neither a record array nor
// a known object shape.
var ErrUnknownFormat = errors.New("unrecognized record file format")

// ReadJSON decodes milestone records from r.
//
// Three shapes are accepted:
//
//	[{"id": "a", ...}, ...]                      // flat record array
//	{"records": [{"id": "a", ...}, ...]}          // wrapped record array
//	{"jobs": [...], "education": [...], ...}      // grouped collections
//
// Grouped collections are flattened with [timeline.Collections.Records], so
// records without a type take their collection's category. ReadJSON does not
// validate ids or hierarchy; that is the normalizer's job. It does not
// close r.
func ReadJSON(r io.Reader) ([]timeline.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return decode(raw)
}

// ImportJSON reads a record file at path.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path.
func ImportJSON(path string) ([]timeline.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func decode(raw []byte) ([]timeline.Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode: %w", ErrUnknownFormat)
	}

	switch trimmed[0] {
	case '[':
		var recs []timeline.Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		return recs, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		if data, ok := probe["records"]; ok {
			var recs []timeline.Record
			if err := json.Unmarshal(data, &recs); err != nil {
				return nil, fmt.Errorf("decode records: %w", err)
			}
			return recs, nil
		}
		if !hasCollectionKey(probe) {
			return nil, fmt.Errorf("decode: %w", ErrUnknownFormat)
		}
		var c timeline.Collections
		if err := json.Unmarshal(trimmed, &c); err != nil {
			return nil, fmt.Errorf("decode collections: %w", err)
		}
		return c.Records(), nil
	}
	return nil, fmt.Errorf("decode: %w", ErrUnknownFormat)
}

var collectionKeys = []string{"jobs", "education", "projects", "events", "actions", "careerTransitions"}

func hasCollectionKey(probe map[string]json.RawMessage) bool {
	for _, k := range collectionKeys {
		if _, ok := probe[k]; ok {
			return true
		}
	}
	return false
}

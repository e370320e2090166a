// Package store persists milestone records per user.
//
// The layout engine never talks to a database; it receives a slice of
// [timeline.Record] from whatever owns persistence. This package is that
// owner for the CLI and the HTTP server.
//
// # Backends
//
//   - [MemoryStore]: process-local, optionally seeded from a record file
//   - [MongoStore]: one document per record in the timeline_nodes collection
//
// Use [Open] to pick a backend from configuration. Every backend returned by
// Open reports its calls to [observability.Store].
//
// # Semantics
//
// Records are stored flat: embedded children are split into their own
// records with ParentID set. [Store.List] returns records in first-insert
// order, which the sorter uses as its final tie-breaker. [Store.Delete]
// removes the record and every descendant.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/journeyline/journeyline/pkg/io"
	"github.com/journeyline/journeyline/pkg/observability"
	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// ErrNotFound is returned when a record does not exist for the user.
var ErrNotFound = errors.New("record not found")

// ErrUnknownBackend is returned by [Open] for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Store is the persistence collaborator of the layout engine.
type Store interface {
	// List returns every record of the user, flat, in first-insert order.
	List(ctx context.Context, userID string) ([]timeline.Record, error)

	// Get returns one record or ErrNotFound.
	Get(ctx context.Context, userID, id string) (timeline.Record, error)

	// Upsert inserts or replaces rec (and any embedded children) keyed by
	// (userID, rec.ID). A replaced record keeps its list position.
	Upsert(ctx context.Context, userID string, rec timeline.Record) error

	// Delete removes the record and its descendants and returns how many
	// records were removed. Returns ErrNotFound if id does not exist.
	Delete(ctx context.Context, userID, id string) (int, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string
	Mongo   MongoOptions

	// SeedFile, when set, is imported into SeedUser after opening.
	SeedFile string
	SeedUser string
}

// Open creates the configured backend. An empty backend name means memory.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s       Store
		backend = opts.Backend
	)
	switch backend {
	case "", BackendMemory:
		backend = BackendMemory
		s = NewMemoryStore()
	case BackendMongo:
		m, err := NewMongoStore(ctx, opts.Mongo)
		if err != nil {
			return nil, err
		}
		s = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}

	s = WithHooks(s, backend)
	if opts.SeedFile != "" {
		if err := Seed(ctx, s, opts.SeedUser, opts.SeedFile); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

// Seed imports a record file into the user's timeline.
func Seed(ctx context.Context, s Store, userID, path string) error {
	recs, err := io.ImportJSON(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	for _, r := range transform.Flatten(recs) {
		if err := s.Upsert(ctx, userID, r); err != nil {
			return fmt.Errorf("seed %s: %w", r.ID, err)
		}
	}
	return nil
}

// validate rejects records no backend may store.
func validate(rec timeline.Record) error {
	if rec.ID == "" {
		return timeline.ErrInvalidNodeID
	}
	if rec.ParentID == rec.ID {
		return fmt.Errorf("%w: %s is its own parent", timeline.ErrCyclicHierarchy, rec.ID)
	}
	return nil
}

// descendants returns id followed by every record below it.
func descendants(recs []timeline.Record, id string) []string {
	children := make(map[string][]string)
	for _, r := range recs {
		if r.ParentID != "" {
			children[r.ParentID] = append(children[r.ParentID], r.ID)
		}
	}

	out := []string{id}
	seen := map[string]bool{id: true}
	for i := 0; i < len(out); i++ {
		for _, c := range children[out[i]] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// =============================================================================
// Instrumentation
// =============================================================================

type hooked struct {
	Store
	backend string
}

// WithHooks wraps s so every call is reported to the registered
// [observability.StoreHooks].
func WithHooks(s Store, backend string) Store {
	return &hooked{Store: s, backend: backend}
}

func (h *hooked) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, h.backend, op, time.Since(start), err)
}

func (h *hooked) List(ctx context.Context, userID string) ([]timeline.Record, error) {
	start := time.Now()
	recs, err := h.Store.List(ctx, userID)
	h.report(ctx, "list", start, err)
	return recs, err
}

func (h *hooked) Get(ctx context.Context, userID, id string) (timeline.Record, error) {
	start := time.Now()
	rec, err := h.Store.Get(ctx, userID, id)
	h.report(ctx, "get", start, err)
	return rec, err
}

func (h *hooked) Upsert(ctx context.Context, userID string, rec timeline.Record) error {
	start := time.Now()
	err := h.Store.Upsert(ctx, userID, rec)
	h.report(ctx, "upsert", start, err)
	return err
}

func (h *hooked) Delete(ctx context.Context, userID, id string) (int, error) {
	start := time.Now()
	n, err := h.Store.Delete(ctx, userID, id)
	h.report(ctx, "delete", start, err)
	return n, err
}

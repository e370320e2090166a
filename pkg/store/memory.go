package store

import (
	"context"
	"slices"
	"sync"

	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// MemoryStore keeps records in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*userRecords
}

type userRecords struct {
	order []string
	byID  map[string]timeline.Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*userRecords)}
}

func (s *MemoryStore) List(ctx context.Context, userID string) ([]timeline.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.users[userID]
	if u == nil {
		return []timeline.Record{}, nil
	}
	out := make([]timeline.Record, 0, len(u.order))
	for _, id := range u.order {
		out = append(out, clone(u.byID[id]))
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, userID, id string) (timeline.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.users[userID]; u != nil {
		if r, ok := u.byID[id]; ok {
			return clone(r), nil
		}
	}
	return timeline.Record{}, ErrNotFound
}

func (s *MemoryStore) Upsert(ctx context.Context, userID string, rec timeline.Record) error {
	flat := transform.Flatten([]timeline.Record{rec})
	for _, r := range flat {
		if err := validate(r); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if u == nil {
		u = &userRecords{byID: make(map[string]timeline.Record)}
		s.users[userID] = u
	}
	for _, r := range flat {
		if _, ok := u.byID[r.ID]; !ok {
			u.order = append(u.order, r.ID)
		}
		u.byID[r.ID] = clone(r)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userID]
	if u == nil {
		return 0, ErrNotFound
	}
	if _, ok := u.byID[id]; !ok {
		return 0, ErrNotFound
	}

	recs := make([]timeline.Record, 0, len(u.order))
	for _, rid := range u.order {
		recs = append(recs, u.byID[rid])
	}
	gone := descendants(recs, id)
	for _, rid := range gone {
		delete(u.byID, rid)
	}
	u.order = slices.DeleteFunc(u.order, func(rid string) bool {
		_, ok := u.byID[rid]
		return !ok
	})
	return len(gone), nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func clone(r timeline.Record) timeline.Record {
	r.Meta = r.Meta.Clone()
	r.Children = nil
	return r
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// Package memory is an in-process note repository. It backs local
// development and tests and loses everything on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

// Store keeps notes in a map guarded by a RWMutex.
// Notes are cloned on the way in and out so callers never share state.
type Store struct {
	mu    sync.RWMutex
	notes map[string]*domain.Note // ID -> Note
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		notes: make(map[string]*domain.Note),
		now:   time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// List returns one page of the owner's matching notes and the match count.
func (s *Store) List(_ context.Context, owner string, f domain.Filter, p domain.Page) ([]*domain.Note, int64, error) {
	page, total := domain.Evaluate(s.snapshot(owner), owner, f, p)
	return page, total, nil
}

// Count returns how many of the owner's notes match f.
func (s *Store) Count(_ context.Context, owner string, f domain.Filter) (int64, error) {
	m := domain.NewMatcher(owner, f)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, note := range s.notes {
		if m.Match(note) {
			n++
		}
	}
	return n, nil
}

// GetByID retrieves a note regardless of owner.
func (s *Store) GetByID(_ context.Context, id string) (*domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n.Clone(), nil
}

// Create stores a new note with a fresh id and timestamps.
func (s *Store) Create(_ context.Context, n *domain.Note) (*domain.Note, error) {
	stored := n.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC().Truncate(domain.TimestampPrecision)
	stored.UpdatedAt = stored.CreatedAt
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[stored.ID] = stored
	return stored.Clone(), nil
}

// Update applies the present patch fields and refreshes UpdatedAt.
func (s *Store) Update(_ context.Context, id string, patch domain.NotePatch) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := current.Clone()
	patch.Apply(next)
	next.UpdatedAt = domain.Touch(current.UpdatedAt, s.now())
	s.notes[id] = next
	return next.Clone(), nil
}

// Delete removes a note. Deleting a missing id reports ErrNotFound.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

// DistinctCategories returns the categories the owner uses.
func (s *Store) DistinctCategories(_ context.Context, owner string) ([]string, error) {
	return domain.DistinctCategories(s.snapshot(owner)), nil
}

// TagCounts groups the owner's tags by number of notes.
func (s *Store) TagCounts(_ context.Context, owner string) ([]domain.TagCount, error) {
	return domain.CountTags(s.snapshot(owner)), nil
}

// OwnerNotes returns copies of all the owner's notes.
func (s *Store) OwnerNotes(_ context.Context, owner string) ([]*domain.Note, error) {
	return s.snapshot(owner), nil
}

// Len returns the number of stored notes across owners.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

func (s *Store) snapshot(owner string) []*domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.Owner == owner {
			out = append(out, n.Clone())
		}
	}
	return out
}

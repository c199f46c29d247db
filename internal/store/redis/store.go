// Package redis stores notes as JSON documents in Redis, one key per note
// plus a set of note IDs per owner. Filtering, ordering and pagination run
// in process over the owner's notes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

// maxTxRetries bounds optimistic retries when a watched note changes under us.
const maxTxRetries = 5

// Store handles Redis operations for notes
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Create stores a new note and indexes it under its owner.
func (s *Store) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	stored := n.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC().Truncate(domain.TimestampPrecision)
	stored.UpdatedAt = stored.CreatedAt
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal note: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, NoteKey(stored.ID), data, 0)
		pipe.SAdd(ctx, OwnerNotesKey(stored.Owner), stored.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save note: %w", err)
	}
	return stored, nil
}

// GetByID retrieves a note regardless of owner
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	return getNote(ctx, s.client, id)
}

// Update applies the present patch fields under WATCH so concurrent writers
// never lose each other's changes.
func (s *Store) Update(ctx context.Context, id string, patch domain.NotePatch) (*domain.Note, error) {
	key := NoteKey(id)
	var updated *domain.Note

	txf := func(tx *redis.Tx) error {
		current, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		patch.Apply(next)
		next.UpdatedAt = domain.Touch(current.UpdatedAt, s.now())

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal note: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = next
		return nil
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a note and its owner index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	key := NoteKey(id)

	txf := func(tx *redis.Tx) error {
		current, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		var del *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, key)
			pipe.SRem(ctx, OwnerNotesKey(current.Owner), id)
			return nil
		})
		if err != nil {
			return err
		}
		if del.Val() == 0 {
			return domain.ErrNotFound
		}
		return nil
	}

	return s.watch(ctx, txf, key)
}

// OwnerNotes loads every note indexed under owner. Index entries whose
// document is gone are skipped.
func (s *Store) OwnerNotes(ctx context.Context, owner string) ([]*domain.Note, error) {
	ids, err := s.client.SMembers(ctx, OwnerNotesKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get note IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Note{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = NoteKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}

	notes := make([]*domain.Note, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var n domain.Note
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal note %s: %w", ids[i], err)
		}
		if n.Owner != owner {
			continue
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		notes = append(notes, &n)
	}
	return notes, nil
}

// List returns one page of the owner's matching notes and the match count.
func (s *Store) List(ctx context.Context, owner string, f domain.Filter, p domain.Page) ([]*domain.Note, int64, error) {
	notes, err := s.OwnerNotes(ctx, owner)
	if err != nil {
		return nil, 0, err
	}
	page, total := domain.Evaluate(notes, owner, f, p)
	return page, total, nil
}

// Count returns how many of the owner's notes match f.
func (s *Store) Count(ctx context.Context, owner string, f domain.Filter) (int64, error) {
	notes, err := s.OwnerNotes(ctx, owner)
	if err != nil {
		return 0, err
	}
	m := domain.NewMatcher(owner, f)
	var n int64
	for _, note := range notes {
		if m.Match(note) {
			n++
		}
	}
	return n, nil
}

// DistinctCategories returns the categories the owner uses.
func (s *Store) DistinctCategories(ctx context.Context, owner string) ([]string, error) {
	notes, err := s.OwnerNotes(ctx, owner)
	if err != nil {
		return nil, err
	}
	return domain.DistinctCategories(notes), nil
}

// TagCounts groups the owner's tags by number of notes.
func (s *Store) TagCounts(ctx context.Context, owner string) ([]domain.TagCount, error) {
	notes, err := s.OwnerNotes(ctx, owner)
	if err != nil {
		return nil, err
	}
	return domain.CountTags(notes), nil
}

func (s *Store) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("note %v changed concurrently, giving up after %d attempts", keys, maxTxRetries)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getNote(ctx context.Context, c getter, id string) (*domain.Note, error) {
	data, err := c.Get(ctx, NoteKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	var n domain.Note
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal note: %w", err)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

// PruneOwnerIndexes removes owner index entries whose note document no
// longer exists and returns how many were removed.
func (s *Store) PruneOwnerIndexes(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixOwner+"*:notes", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		ids, err := s.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to read index %s: %w", indexKey, err)
		}
		if len(ids) == 0 {
			continue
		}

		pipe := s.client.Pipeline()
		exists := make([]*redis.IntCmd, len(ids))
		for i, id := range ids {
			exists[i] = pipe.Exists(ctx, NoteKey(id))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return removed, fmt.Errorf("failed to check notes of %s: %w", indexKey, err)
		}

		var dangling []interface{}
		for i, cmd := range exists {
			if cmd.Val() == 0 {
				dangling = append(dangling, ids[i])
			}
		}
		if len(dangling) == 0 {
			continue
		}
		n, err := s.client.SRem(ctx, indexKey, dangling...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to prune index %s: %w", indexKey, err)
		}
		removed += int(n)
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan owner indexes: %w", err)
	}
	return removed, nil
}

// Package mongo stores notes in a MongoDB collection. Filtering, ordering
// and pagination are pushed down to the server.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/cloudnotes/cloudnotes/internal/domain"
	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/retry"
)

// CollectionName holds the notes.
const CollectionName = "notes"

// maxUpdateRetries bounds optimistic retries when a note changes under us.
const maxUpdateRetries = 5

// ConnectOptions defines the client and its startup retry behavior.
type ConnectOptions struct {
	URI      string // ex: "mongodb://localhost:27017"
	Database string
	Retry    retry.Policy
}

// Connect creates a client and blocks until the primary answers a ping.
func Connect(ctx context.Context, opts ConnectOptions, log logger.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	if err := retry.Ping(ctx, "mongo", opts.Database, opts.Retry, ping, log); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Store handles MongoDB operations for notes
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewStore binds the store to the notes collection of database.
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(CollectionName),
		now:    time.Now,
	}
}

// EnsureIndexes creates the index backing owner-scoped listings.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner", Value: 1},
			{Key: "pinned", Value: -1},
			{Key: "updatedAt", Value: -1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create notes index: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// List returns one page of the owner's matching notes and the match count.
func (s *Store) List(ctx context.Context, owner string, f domain.Filter, p domain.Page) ([]*domain.Note, int64, error) {
	filter := buildFilter(owner, f)

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	opts := options.Find().
		SetSort(listSort).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Size))
	notes, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// Count returns how many of the owner's notes match f.
func (s *Store) Count(ctx context.Context, owner string, f domain.Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, buildFilter(owner, f))
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}

// GetByID retrieves a note regardless of owner.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var doc noteDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return doc.toNote(), nil
}

// Create inserts a new note with a fresh id and timestamps.
func (s *Store) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	stored := n.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC().Truncate(domain.TimestampPrecision)
	stored.UpdatedAt = stored.CreatedAt
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	if _, err := s.coll.InsertOne(ctx, fromNote(stored)); err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	return stored, nil
}

// Update applies the present patch fields. The write is conditioned on the
// updatedAt that was read, and retried when another writer got there first.
func (s *Store) Update(ctx context.Context, id string, patch domain.NotePatch) (*domain.Note, error) {
	for i := 0; i < maxUpdateRetries; i++ {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next := current.Clone()
		patch.Apply(next)
		next.UpdatedAt = domain.Touch(current.UpdatedAt, s.now())

		res, err := s.coll.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: id}, {Key: "updatedAt", Value: current.UpdatedAt}},
			bson.D{{Key: "$set", Value: patchSet(patch, next)}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update note: %w", err)
		}
		if res.MatchedCount == 1 {
			return next, nil
		}
	}
	return nil, fmt.Errorf("note %s changed concurrently, giving up after %d attempts", id, maxUpdateRetries)
}

// Delete removes a note. Deleting a missing id reports ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DistinctCategories returns the categories the owner uses.
func (s *Store) DistinctCategories(ctx context.Context, owner string) ([]string, error) {
	var categories []string
	err := s.coll.Distinct(ctx, "category", bson.D{{Key: "owner", Value: owner}}).Decode(&categories)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	sort.Strings(categories)
	return categories, nil
}

// TagCounts groups the owner's tags by number of notes.
func (s *Store) TagCounts(ctx context.Context, owner string) ([]domain.TagCount, error) {
	cursor, err := s.coll.Aggregate(ctx, tagCountPipeline(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Tag   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode tag counts: %w", err)
	}
	out := make([]domain.TagCount, len(rows))
	for i, r := range rows {
		out[i] = domain.TagCount{Tag: r.Tag, Count: r.Count}
	}
	return out, nil
}

// OwnerNotes returns all of the owner's notes, unordered.
func (s *Store) OwnerNotes(ctx context.Context, owner string) ([]*domain.Note, error) {
	return s.find(ctx, bson.D{{Key: "owner", Value: owner}})
}

func (s *Store) find(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]*domain.Note, error) {
	cursor, err := s.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to find notes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	notes := make([]*domain.Note, len(docs))
	for i, d := range docs {
		notes[i] = d.toNote()
	}
	return notes, nil
}

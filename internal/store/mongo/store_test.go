package mongo

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/cloudnotes/cloudnotes/internal/domain"
	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/retry"
)

// testMongoURIEnv points the suite at an existing mongod instead of a container.
const testMongoURIEnv = "CLOUDNOTES_TEST_MONGO_URI"

var (
	containerOnce sync.Once
	container     *mongodb.MongoDBContainer
	containerURI  string
	containerErr  error
)

func TestMain(m *testing.M) {
	code := m.Run()
	if container != nil {
		_ = container.Terminate(context.Background())
	}
	os.Exit(code)
}

func mongoURI(t *testing.T) string {
	t.Helper()
	if uri := os.Getenv(testMongoURIEnv); uri != "" {
		return uri
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	containerOnce.Do(func() {
		ctx := context.Background()
		container, containerErr = mongodb.Run(ctx, "mongo:7.0")
		if containerErr != nil {
			return
		}
		containerURI, containerErr = container.ConnectionString(ctx)
	})
	require.NoError(t, containerErr, "start mongo container")
	return containerURI
}

// stepClock advances one second per call, so every write gets a distinct updatedAt.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database := "cloudnotes_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	client, err := Connect(ctx, ConnectOptions{
		URI:      mongoURI(t),
		Database: database,
		Retry: retry.Policy{
			Timeout:       30 * time.Second,
			Initial:       200 * time.Millisecond,
			MaxWait:       2 * time.Second,
			PingTimeout:   5 * time.Second,
			WarnThreshold: 3,
		},
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(database).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	s := NewStore(client, database)
	s.now = stepClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func mustCreate(t *testing.T, s *Store, n *domain.Note) *domain.Note {
	t.Helper()
	created, err := s.Create(context.Background(), n)
	require.NoError(t, err)
	return created
}

func TestStoreCreateGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	n := mustCreate(t, s, &domain.Note{Owner: "alice", Title: "t", Content: "c", Category: domain.CategoryWork})
	require.NoError(t, uuid.Validate(n.ID))
	assert.Equal(t, []string{}, n.Tags)
	assert.True(t, n.CreatedAt.Equal(n.UpdatedAt))

	got, err := s.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, domain.CategoryWork, got.Category)
	assert.NotNil(t, got.Tags)
	assert.True(t, got.CreatedAt.Equal(n.CreatedAt))

	require.NoError(t, s.Delete(ctx, n.ID))
	assert.ErrorIs(t, s.Delete(ctx, n.ID), domain.ErrNotFound)

	_, err = s.GetByID(ctx, n.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := mustCreate(t, s, &domain.Note{Owner: "alice", Title: "draft", Content: "body", Tags: []string{"a"}})

	u1, err := s.Update(ctx, n.ID, domain.NotePatch{Title: domain.Some("final")})
	require.NoError(t, err)
	assert.Equal(t, "final", u1.Title)
	assert.Equal(t, "body", u1.Content)
	assert.Equal(t, []string{"a"}, u1.Tags)
	assert.True(t, u1.UpdatedAt.After(n.UpdatedAt))
	assert.True(t, u1.CreatedAt.Equal(n.CreatedAt))

	u2, err := s.Update(ctx, n.ID, domain.NotePatch{Pinned: domain.Some(true)})
	require.NoError(t, err)
	assert.True(t, u2.Pinned)
	assert.True(t, u2.UpdatedAt.After(u1.UpdatedAt))

	got, err := s.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.True(t, got.Pinned)
	assert.True(t, got.UpdatedAt.Equal(u2.UpdatedAt))

	_, err = s.Update(ctx, uuid.NewString(), domain.NotePatch{Title: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreConcurrentUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	n := mustCreate(t, s, &domain.Note{Owner: "alice", Title: "t"})

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, n.ID, domain.NotePatch{Content: domain.Some("x")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestStoreListScopesAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, s, &domain.Note{Owner: "alice", Title: "first", Category: domain.CategoryWork})
	mustCreate(t, s, &domain.Note{Owner: "alice", Title: "second", Category: domain.CategoryWork, Tags: []string{"x"}})
	mustCreate(t, s, &domain.Note{Owner: "alice", Title: "third a.b", Category: domain.CategoryIdeas})
	mustCreate(t, s, &domain.Note{Owner: "bob", Title: "bob's", Category: domain.CategoryWork})

	_, err := s.Update(ctx, first.ID, domain.NotePatch{Pinned: domain.Some(true)})
	require.NoError(t, err)

	page, total, err := s.List(ctx, "alice", domain.Filter{}, domain.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "first", page[0].Title, "pinned first")
	assert.Equal(t, "third a.b", page[1].Title, "then most recently updated")

	page, _, err = s.List(ctx, "alice", domain.Filter{}, domain.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Title)

	page, total, err = s.List(ctx, "alice", domain.Filter{Category: "work"}, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, n := range page {
		assert.Equal(t, "alice", n.Owner)
	}

	unpinned := false
	n, err := s.Count(ctx, "alice", domain.Filter{Pinned: &unpinned})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// search is literal and case-insensitive over title, content and tags
	page, _, err = s.List(ctx, "alice", domain.Filter{Search: "A.B"}, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "third a.b", page[0].Title)

	page, _, err = s.List(ctx, "alice", domain.Filter{Search: "a*b"}, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, page)

	page, _, err = s.List(ctx, "alice", domain.Filter{Search: "x"}, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Title)

	all, err := s.OwnerNotes(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "bob's", all[0].Title)
}

func TestStoreCategoriesAndTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, &domain.Note{Owner: "alice", Title: "a", Category: domain.CategoryWork, Tags: []string{"x", "y", "x"}})
	mustCreate(t, s, &domain.Note{Owner: "alice", Title: "b", Category: domain.CategoryIdeas, Tags: []string{"x"}})
	mustCreate(t, s, &domain.Note{Owner: "bob", Title: "c", Category: domain.CategoryTravel, Tags: []string{"z"}})

	cats, err := s.DistinctCategories(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"ideas", "work"}, cats)

	counts, err := s.TagCounts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []domain.TagCount{{Tag: "x", Count: 2}, {Tag: "y", Count: 1}}, counts)

	cats, err = s.DistinctCategories(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, []string{}, cats)

	counts, err = s.TagCounts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

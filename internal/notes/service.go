// Package notes is the only place allowed to mutate notes. It resolves
// ownership, normalizes input and enforces the storage quota before
// delegating to a Repository.
package notes

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cloudnotes/cloudnotes/internal/domain"
	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/quota"
)

const (
	// SearchLimit caps the search endpoint result size.
	SearchLimit = 50
	// PopularTagsLimit caps the tags reported by Stats.
	PopularTagsLimit = 10
)

// Options tunes listing defaults.
type Options struct {
	DefaultPageSize int // used when the client sends no or an invalid limit
	MaxPageSize     int // upper bound for client-provided limits
}

type Service struct {
	repo       Repository
	accountant *quota.Accountant
	logger     logger.Logger
	opts       Options
}

func NewService(repo Repository, accountant *quota.Accountant, log logger.Logger, opts Options) *Service {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 50
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}
	return &Service{repo: repo, accountant: accountant, logger: log, opts: opts}
}

// ListRequest holds the raw listing parameters. Zero Page/Limit pick defaults.
type ListRequest struct {
	Filter domain.Filter
	Page   int
	Limit  int
}

// ListResult is one page plus what a client needs to render pagination.
type ListResult struct {
	Notes []*domain.Note
	Page  int
	Limit int
	Total int64
	Pages int64
}

func (s *Service) List(ctx context.Context, owner string, req ListRequest) (*ListResult, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}

	page := domain.Page{Number: req.Page, Size: req.Limit}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = s.opts.DefaultPageSize
	}
	if page.Size > s.opts.MaxPageSize {
		page.Size = s.opts.MaxPageSize
	}
	req.Filter.Search = strings.TrimSpace(req.Filter.Search)

	notes, total, err := s.repo.List(ctx, owner, req.Filter, page)
	if err != nil {
		return nil, internal("Failed to get notes", err)
	}
	return &ListResult{
		Notes: notes,
		Page:  page.Number,
		Limit: page.Size,
		Total: total,
		Pages: domain.Pages(total, page.Size),
	}, nil
}

func (s *Service) Get(ctx context.Context, owner, id string) (*domain.Note, error) {
	return s.authorize(ctx, owner, id)
}

func (s *Service) Create(ctx context.Context, owner string, in domain.NewNoteInput) (*domain.Note, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}

	in = in.Normalize()
	if in.Title == "" {
		return nil, domain.Validation("Title is required")
	}

	n := &domain.Note{
		Owner:    owner,
		Title:    in.Title,
		Content:  in.Content,
		Tags:     in.Tags,
		Category: domain.Category(in.Category),
	}
	if err := domain.Validate(n); err != nil {
		return nil, err
	}

	decision, err := s.accountant.CanCreate(ctx, owner, n.Title, n.Content)
	if err != nil {
		return nil, internal("Failed to create note", err)
	}
	if !decision.Allowed {
		s.logger.Info("note rejected by storage quota",
			logger.Owner(owner),
			logger.Int64("used_bytes", decision.UsedBytes))
		return nil, domain.QuotaExceeded(decision.UsedMB, s.accountant.LimitMB())
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, internal("Failed to create note", err)
	}
	s.logger.Debug("note created",
		logger.Owner(owner),
		logger.NoteID(created.ID))
	return created, nil
}

// Update applies only the fields present in patch. Pin state is not
// updatable here; use TogglePin.
func (s *Service) Update(ctx context.Context, owner, id string, patch domain.NotePatch) (*domain.Note, error) {
	current, err := s.authorize(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	patch = patch.Normalize()
	patch.Pinned = domain.Optional[bool]{}

	candidate := current.Clone()
	patch.Apply(candidate)
	if err := domain.Validate(candidate); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, storeErr("Failed to update note", err)
	}
	return updated, nil
}

func (s *Service) TogglePin(ctx context.Context, owner, id string) (*domain.Note, error) {
	current, err := s.authorize(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, domain.NotePatch{Pinned: domain.Some(!current.Pinned)})
	if err != nil {
		return nil, storeErr("Failed to toggle pin", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.authorize(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("Failed to delete note", err)
	}
	s.logger.Debug("note deleted",
		logger.Owner(owner),
		logger.NoteID(id))
	return nil
}

// Search returns up to SearchLimit notes whose title, content or tags
// contain query, using the same ordering as List.
func (s *Service) Search(ctx context.Context, owner, query string) ([]*domain.Note, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Validation("Search query is required")
	}

	notes, _, err := s.repo.List(ctx, owner, domain.Filter{Search: query}, domain.Page{Number: 1, Size: SearchLimit})
	if err != nil {
		return nil, internal("Search failed", err)
	}
	return notes, nil
}

// Stats is the dashboard overview of an owner's notes.
type Stats struct {
	Total          int64             `json:"total"`
	Pinned         int64             `json:"pinned"`
	Categories     int               `json:"categories"`
	Tags           int               `json:"tags"`
	UsedMB         float64           `json:"usedMB"`
	LimitMB        int64             `json:"limitMB"`
	CategoriesList []string          `json:"categoriesList"`
	PopularTags    []domain.TagCount `json:"popularTags"`
}

func (s *Service) Stats(ctx context.Context, owner string) (*Stats, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}

	var (
		st         = &Stats{LimitMB: s.accountant.LimitMB()}
		usedBytes  int64
		tagCounts  []domain.TagCount
		categories []string
		pinned     = true
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Total, err = s.repo.Count(gctx, owner, domain.Filter{})
		return err
	})
	g.Go(func() (err error) {
		st.Pinned, err = s.repo.Count(gctx, owner, domain.Filter{Pinned: &pinned})
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.repo.DistinctCategories(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		tagCounts, err = s.repo.TagCounts(gctx, owner)
		return err
	})
	g.Go(func() (err error) {
		usedBytes, err = s.accountant.UsedBytes(gctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internal("Failed to get stats", err)
	}

	st.UsedMB = quota.ToMB(usedBytes)
	st.CategoriesList = categories
	st.Categories = len(categories)
	st.Tags = len(tagCounts)
	if len(tagCounts) > PopularTagsLimit {
		tagCounts = tagCounts[:PopularTagsLimit]
	}
	st.PopularTags = tagCounts
	return st, nil
}

// Categories lists the categories the owner actually uses.
func (s *Service) Categories(ctx context.Context, owner string) ([]string, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	categories, err := s.repo.DistinctCategories(ctx, owner)
	if err != nil {
		return nil, internal("Failed to get categories", err)
	}
	return categories, nil
}

// Tags lists the owner's tags, most used first.
func (s *Service) Tags(ctx context.Context, owner string) ([]string, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	counts, err := s.repo.TagCounts(ctx, owner)
	if err != nil {
		return nil, internal("Failed to get tags", err)
	}
	tags := make([]string, len(counts))
	for i, c := range counts {
		tags[i] = c.Tag
	}
	return tags, nil
}

// authorize looks the note up by id first and only then compares owners,
// so a missing note is NotFound and someone else's note is Forbidden.
func (s *Service) authorize(ctx context.Context, owner, id string) (*domain.Note, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("Failed to get note", err)
	}
	if n.Owner != owner {
		s.logger.Warn("note access denied",
			logger.Owner(owner),
			logger.NoteID(id))
		return nil, domain.ErrForbidden
	}
	return n, nil
}

func requireOwner(owner string) error {
	if owner == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// storeErr passes NotFound through and turns anything else into Internal.
func storeErr(msg string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return internal(msg, err)
}

func internal(msg string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		return de
	}
	return domain.Internal(msg, err)
}

package notes

import (
	"context"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

// Repository is the storage contract the service depends on.
//
// GetByID, Update and Delete address a note by id alone; ownership is the
// service's concern. Missing ids are reported as domain.ErrNotFound, and a
// second Delete of the same id must fail that way too.
type Repository interface {
	// List returns one page of the owner's notes matching f, ordered pinned
	// first then by updatedAt descending, plus the pre-pagination total.
	List(ctx context.Context, owner string, f domain.Filter, p domain.Page) ([]*domain.Note, int64, error)
	Count(ctx context.Context, owner string, f domain.Filter) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	// Create assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, n *domain.Note) (*domain.Note, error)
	// Update applies the present fields and refreshes UpdatedAt.
	Update(ctx context.Context, id string, patch domain.NotePatch) (*domain.Note, error)
	Delete(ctx context.Context, id string) error
	DistinctCategories(ctx context.Context, owner string) ([]string, error)
	TagCounts(ctx context.Context, owner string) ([]domain.TagCount, error)
	OwnerNotes(ctx context.Context, owner string) ([]*domain.Note, error)
}

package mongo

import (
	"time"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

// noteDocument is the persisted shape of a note.
type noteDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Tags      []string  `bson:"tags"`
	Category  string    `bson:"category"`
	Pinned    bool      `bson:"pinned"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func fromNote(n *domain.Note) noteDocument {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteDocument{
		ID:        n.ID,
		Owner:     n.Owner,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		Category:  string(n.Category),
		Pinned:    n.Pinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (d noteDocument) toNote() *domain.Note {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Note{
		ID:        d.ID,
		Owner:     d.Owner,
		Title:     d.Title,
		Content:   d.Content,
		Tags:      tags,
		Category:  domain.Category(d.Category),
		Pinned:    d.Pinned,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

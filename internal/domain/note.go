package domain

import "time"

// Field limits, in characters.
const (
	MaxTitleLength   = 200
	MaxContentLength = 10000
	MaxTagLength     = 50
)

// Note is the only persisted entity the service manages.
//
// ID, Owner and CreatedAt are fixed at creation. Every mutation refreshes
// UpdatedAt, which never goes backwards and is never below CreatedAt.
type Note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title" validate:"required,max=200"`
	Content   string    `json:"content" validate:"max=10000"`
	Tags      []string  `json:"tags" validate:"dive,required,max=50"`
	Category  Category  `json:"category" validate:"category"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate tags freely.
// Tags are never nil on the copy, so a tagless note encodes as "tags":[].
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Tags = make([]string, len(n.Tags))
	copy(cp.Tags, n.Tags)
	return &cp
}

// SizeBytes is the storage footprint used for quota accounting:
// UTF-8 bytes of title, content and every tag.
func (n *Note) SizeBytes() int64 {
	size := int64(len(n.Title) + len(n.Content))
	for _, tag := range n.Tags {
		size += int64(len(tag))
	}
	return size
}

// Category is one of a fixed set of lowercase labels.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryIdeas     Category = "ideas"
	CategoryImportant Category = "important"
	CategoryStudy     Category = "study"
	CategoryProjects  Category = "projects"
	CategoryTravel    Category = "travel"
	CategoryFinance   Category = "finance"
	CategoryHealth    Category = "health"
	CategoryShopping  Category = "shopping"
	CategoryOthers    Category = "others"
)

// CategoryAll is accepted by list filters and means "any category".
const CategoryAll = "all"

var categories = []Category{
	CategoryGeneral, CategoryWork, CategoryPersonal, CategoryIdeas,
	CategoryImportant, CategoryStudy, CategoryProjects, CategoryTravel,
	CategoryFinance, CategoryHealth, CategoryShopping, CategoryOthers,
}

// Categories lists every valid category in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Valid reports whether c belongs to the enumerated set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

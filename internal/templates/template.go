// Package templates provides the note templates offered to clients.
package templates

import "github.com/cloudnotes/cloudnotes/internal/domain"

// Template is a ready-made starting point for a note.
type Template struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// Input returns the create input for a note based on t.
func (t *Template) Input() domain.NewNoteInput {
	return domain.NewNoteInput{
		Title:    t.Title,
		Content:  t.Content,
		Tags:     append([]string(nil), t.Tags...),
		Category: t.Category,
	}
}

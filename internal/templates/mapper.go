package templates

import (
	"fmt"
	"strings"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

// Mapper converts a TemplatesConfig to templates that would pass note
// validation if used as-is.
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapTemplates normalizes every entry. Entries that could never become a
// valid note are rejected, as are duplicate keys.
func (m *Mapper) MapTemplates(config TemplatesConfig) ([]*Template, error) {
	var out []*Template
	seen := make(map[string]bool)

	for _, entry := range config {
		for rawKey, props := range entry {
			key := strings.ToLower(strings.TrimSpace(rawKey))
			if key == "" {
				return nil, fmt.Errorf("template with empty key")
			}
			if seen[key] {
				return nil, fmt.Errorf("duplicate template %q", key)
			}
			seen[key] = true

			in := domain.NewNoteInput{
				Title:    props.Title,
				Content:  props.Content,
				Tags:     props.Tags,
				Category: props.Category,
			}.Normalize()

			candidate := &domain.Note{
				Title:    in.Title,
				Content:  in.Content,
				Tags:     in.Tags,
				Category: domain.Category(in.Category),
			}
			if err := domain.Validate(candidate); err != nil {
				return nil, fmt.Errorf("template %q: %w", key, err)
			}

			out = append(out, &Template{
				Key:         key,
				Title:       in.Title,
				Content:     in.Content,
				Category:    in.Category,
				Tags:        in.Tags,
				Description: strings.TrimSpace(props.Description),
			})
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no templates found")
	}

	return out, nil
}

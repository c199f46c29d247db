package domain

import "strings"

// NormalizeTitle trims surrounding whitespace.
func NormalizeTitle(s string) string { return strings.TrimSpace(s) }

// NormalizeContent trims surrounding whitespace.
func NormalizeContent(s string) string { return strings.TrimSpace(s) }

// NormalizeCategory lowercases and trims, defaulting to general when empty.
func NormalizeCategory(s string) Category {
	c := strings.ToLower(strings.TrimSpace(s))
	if c == "" {
		return CategoryGeneral
	}
	return Category(c)
}

// NormalizeTags trims and lowercases every tag and drops the empty ones.
// Order is preserved and duplicates are kept.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// NewNoteInput carries the client-provided fields of a note to create.
type NewNoteInput struct {
	Title    string
	Content  string
	Tags     []string
	Category string
}

// Normalize applies the create-time normalization rules.
func (in NewNoteInput) Normalize() NewNoteInput {
	return NewNoteInput{
		Title:    NormalizeTitle(in.Title),
		Content:  NormalizeContent(in.Content),
		Tags:     NormalizeTags(in.Tags),
		Category: string(NormalizeCategory(in.Category)),
	}
}

package domain

import (
	"regexp"
	"sort"
	"strings"
)

// Filter narrows a listing. Zero values mean "no constraint".
// All present constraints are ANDed; Search matches title OR content OR any tag.
type Filter struct {
	Category string
	Pinned   *bool
	Search   string
}

// HasCategory reports whether the category constraint is active.
// Both "" and the "all" sentinel disable it.
func (f Filter) HasCategory() bool {
	c := f.CategoryValue()
	return c != "" && c != CategoryAll
}

// CategoryValue is the normalized category constraint.
func (f Filter) CategoryValue() string {
	return strings.ToLower(strings.TrimSpace(f.Category))
}

// SearchPattern compiles the search string into a case-insensitive literal
// substring matcher. Metacharacters are escaped so "a.b*c" only matches
// that exact text. Returns nil when there is no search constraint.
func (f Filter) SearchPattern() *regexp.Regexp {
	if f.Search == "" {
		return nil
	}
	return regexp.MustCompile("(?i)" + EscapePattern(f.Search))
}

// EscapePattern escapes every regular expression metacharacter in s.
// The result is also valid for the document store's regex operator.
func EscapePattern(s string) string {
	return regexp.QuoteMeta(s)
}

// Matcher evaluates a Filter against notes of a single owner.
type Matcher struct {
	owner    string
	filter   Filter
	category string
	pattern  *regexp.Regexp
}

// NewMatcher prepares f for repeated evaluation.
func NewMatcher(owner string, f Filter) *Matcher {
	m := &Matcher{owner: owner, filter: f, pattern: f.SearchPattern()}
	if f.HasCategory() {
		m.category = f.CategoryValue()
	}
	return m
}

// Match reports whether n belongs to the owner and satisfies every constraint.
func (m *Matcher) Match(n *Note) bool {
	if n == nil || n.Owner != m.owner {
		return false
	}
	if m.category != "" && string(n.Category) != m.category {
		return false
	}
	if m.filter.Pinned != nil && n.Pinned != *m.filter.Pinned {
		return false
	}
	if m.pattern == nil {
		return true
	}
	if m.pattern.MatchString(n.Title) || m.pattern.MatchString(n.Content) {
		return true
	}
	for _, tag := range n.Tags {
		if m.pattern.MatchString(tag) {
			return true
		}
	}
	return false
}

// Page selects a window of results. Number is 1-indexed.
type Page struct {
	Number int
	Size   int
}

// Offset is the count of matching items skipped before this page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Pages is ceil(total/size), the page count a client should display.
func Pages(total int64, size int) int64 {
	if size <= 0 {
		return 0
	}
	s := int64(size)
	return (total + s - 1) / s
}

// SortNotes orders notes pinned first, then by UpdatedAt descending.
// The order is fixed; ties fall back to ID for a stable result.
func SortNotes(notes []*Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// Paginate returns the window described by p. Out of range pages are empty.
func Paginate(notes []*Note, p Page) []*Note {
	if p.Size <= 0 {
		return []*Note{}
	}
	start := p.Offset()
	if start >= len(notes) {
		return []*Note{}
	}
	end := start + p.Size
	if end > len(notes) {
		end = len(notes)
	}
	return notes[start:end]
}

// Evaluate runs a complete listing over an owner's candidate notes:
// filter, sort, paginate. total is the pre-pagination match count.
func Evaluate(candidates []*Note, owner string, f Filter, p Page) (page []*Note, total int64) {
	m := NewMatcher(owner, f)
	matched := make([]*Note, 0, len(candidates))
	for _, n := range candidates {
		if m.Match(n) {
			matched = append(matched, n)
		}
	}
	SortNotes(matched)
	return Paginate(matched, p), int64(len(matched))
}

package domain

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a field was present in an inbound payload.
// An absent field leaves the stored value untouched; a present one replaces it.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

// UnmarshalJSON is only invoked for keys present in the document, which is
// exactly what Set tracks. A JSON null is treated as the zero value.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// TagList decodes a JSON array keeping only its string entries.
// Anything other than an array decodes to an empty list.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = TagList{}
		return nil
	}
	out := make(TagList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	*t = out
	return nil
}

// NotePatch is a partial update. Only fields with Set are applied.
type NotePatch struct {
	Title    Optional[string]
	Content  Optional[string]
	Tags     Optional[[]string]
	Category Optional[string]
	Pinned   Optional[bool]
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return !p.Title.Set && !p.Content.Set && !p.Tags.Set && !p.Category.Set && !p.Pinned.Set
}

// Normalize applies create-time normalization to every present field.
func (p NotePatch) Normalize() NotePatch {
	out := p
	if p.Title.Set {
		out.Title = Some(NormalizeTitle(p.Title.Value))
	}
	if p.Content.Set {
		out.Content = Some(NormalizeContent(p.Content.Value))
	}
	if p.Tags.Set {
		out.Tags = Some(NormalizeTags(p.Tags.Value))
	}
	if p.Category.Set {
		out.Category = Some(string(NormalizeCategory(p.Category.Value)))
	}
	return out
}

// Apply writes the present fields onto n. Timestamps are the store's job.
func (p NotePatch) Apply(n *Note) {
	if p.Title.Set {
		n.Title = p.Title.Value
	}
	if p.Content.Set {
		n.Content = p.Content.Value
	}
	if p.Tags.Set {
		n.Tags = append([]string{}, p.Tags.Value...)
	}
	if p.Category.Set {
		n.Category = Category(p.Category.Value)
	}
	if p.Pinned.Set {
		n.Pinned = p.Pinned.Value
	}
}

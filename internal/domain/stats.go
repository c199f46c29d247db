package domain

import (
	"sort"
	"time"
)

// TagCount is the number of notes carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int64  `json:"count"`
}

// CountTags groups tags across notes. A tag repeated inside one note counts
// once for that note. Result is sorted by count desc, then tag asc.
func CountTags(notes []*Note) []TagCount {
	counts := make(map[string]int64)
	for _, n := range notes {
		seen := make(map[string]struct{}, len(n.Tags))
		for _, tag := range n.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, c := range counts {
		out = append(out, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// DistinctCategories returns the categories used by notes, sorted.
func DistinctCategories(notes []*Note) []string {
	seen := make(map[string]struct{})
	for _, n := range notes {
		seen[string(n.Category)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Timestamp precision shared by every store (the document store keeps milliseconds).
const TimestampPrecision = time.Millisecond

// Now returns the current time at store precision, in UTC.
func Now() time.Time {
	return time.Now().UTC().Truncate(TimestampPrecision)
}

// Touch returns the UpdatedAt to store for a mutation happening at now.
// It is always strictly after prev so consecutive mutations stay ordered.
func Touch(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(TimestampPrecision)
	if !now.After(prev) {
		return prev.Add(TimestampPrecision)
	}
	return now
}

package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "trim lowercase drop empty", in: []string{"Work", " Urgent ", ""}, want: []string{"work", "urgent"}},
		{name: "whitespace only dropped", in: []string{"   ", "\t"}, want: []string{}},
		{name: "duplicates kept in order", in: []string{"b", "A", "b"}, want: []string{"b", "a", "b"}},
		{name: "nil input", in: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]Category{
		"":         CategoryGeneral,
		"  ":       CategoryGeneral,
		"WORK":     CategoryWork,
		" Ideas ":  CategoryIdeas,
		"Unknown!": Category("unknown!"),
	}
	for in, want := range tests {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewNoteInputNormalize(t *testing.T) {
	in := NewNoteInput{Title: "  Groceries ", Content: "\n<p>milk</p>\n", Tags: []string{"Home", " "}, Category: "Shopping"}
	got := in.Normalize()
	want := NewNoteInput{Title: "Groceries", Content: "<p>milk</p>", Tags: []string{"home"}, Category: "shopping"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestTagListDropsNonStrings(t *testing.T) {
	var body struct {
		Tags TagList `json:"tags"`
	}
	if err := json.Unmarshal([]byte(`{"tags":["Work", 3, null, {"x":1}, " Urgent "]}`), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := TagList{"Work", " Urgent "}
	if !reflect.DeepEqual(body.Tags, want) {
		t.Errorf("TagList = %q, want %q", body.Tags, want)
	}

	if err := json.Unmarshal([]byte(`{"tags":"work"}`), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(body.Tags) != 0 {
		t.Errorf("non-array tags should decode empty, got %q", body.Tags)
	}
}

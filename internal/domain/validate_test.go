package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := func() *Note {
		return &Note{Title: "ok", Content: "body", Tags: []string{"a"}, Category: CategoryGeneral}
	}

	tests := []struct {
		name    string
		mutate  func(n *Note)
		wantErr string
	}{
		{name: "valid", mutate: func(n *Note) {}},
		{name: "empty title", mutate: func(n *Note) { n.Title = "" }, wantErr: "Title is required"},
		{name: "title too long", mutate: func(n *Note) { n.Title = strings.Repeat("t", MaxTitleLength+1) }, wantErr: "Title must be at most 200"},
		{name: "title counts characters not bytes", mutate: func(n *Note) { n.Title = strings.Repeat("é", MaxTitleLength) }},
		{name: "content too long", mutate: func(n *Note) { n.Content = strings.Repeat("c", MaxContentLength+1) }, wantErr: "Content must be at most 10000"},
		{name: "tag too long", mutate: func(n *Note) { n.Tags = []string{strings.Repeat("x", MaxTagLength+1)} }, wantErr: "Tag must be at most 50"},
		{name: "unknown category", mutate: func(n *Note) { n.Category = "misc" }, wantErr: `"misc" is not a valid category`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valid()
			tt.mutate(n)
			err := Validate(n)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() kind = %v, want validation", KindOf(err))
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	if Category("General").Valid() {
		t.Error("categories are stored lowercase")
	}
	if len(Categories()) != 12 {
		t.Errorf("len(Categories()) = %d, want 12", len(Categories()))
	}
}

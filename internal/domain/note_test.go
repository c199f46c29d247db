package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCloneKeepsTagsNonNil(t *testing.T) {
	tests := []struct {
		name string
		tags []string
	}{
		{"nil", nil},
		{"empty", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := (&Note{Title: "t", Tags: tt.tags}).Clone()
			if cp.Tags == nil {
				t.Fatal("Clone() returned nil tags")
			}
			data, err := json.Marshal(cp)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), `"tags":[]`) {
				t.Errorf("encoded note = %s, want \"tags\":[]", data)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Note{Tags: []string{"a", "b"}}
	cp := orig.Clone()
	cp.Tags[0] = "changed"
	if orig.Tags[0] != "a" {
		t.Errorf("mutating the clone changed the original: %v", orig.Tags)
	}
	if (*Note)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

package detect

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	known := []string{"claude-code", "cursor", "windsurf", "github-copilot", "codex", "gemini"}

	tests := []struct {
		name      string
		input     string
		wantFirst string
		wantNone  bool
	}{
		{name: "one edit away", input: "codx", wantFirst: "codex"},
		{name: "exact match first", input: "cursor", wantFirst: "cursor"},
		{name: "nothing close", input: "zzzzzzzzzzzzzzzz", wantNone: true},
		{name: "case insensitive", input: "GEMINI", wantFirst: "gemini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.input, known)
			for _, name := range got {
				found := false
				for _, k := range known {
					if name == k {
						found = true
					}
				}
				if !found {
					t.Errorf("suggestion %q is not a known name", name)
				}
			}
			if len(got) > maxSuggestions {
				t.Errorf("got %d suggestions, want at most %d", len(got), maxSuggestions)
			}
			if tt.wantNone {
				if len(got) != 0 {
					t.Errorf("Suggest(%q) = %v, want none", tt.input, got)
				}
				return
			}
			if len(got) == 0 || got[0] != tt.wantFirst {
				t.Errorf("Suggest(%q) = %v, want %q first", tt.input, got, tt.wantFirst)
			}
		})
	}
}

func TestSuggest_CapsAtFive(t *testing.T) {
	known := []string{"name1", "name2", "name3", "name4", "name5", "name6", "name7"}

	got := Suggest("name", known)
	if len(got) != maxSuggestions {
		t.Fatalf("got %d suggestions, want %d", len(got), maxSuggestions)
	}
	// Equal distances fall back to alphabetical order.
	want := []string{"name1", "name2", "name3", "name4", "name5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest = %v, want %v", got, want)
	}
}

func TestSuggest_DistanceBound(t *testing.T) {
	// Distance 6 from "a" must be excluded, distance 5 kept.
	known := []string{"abcdef", "abcdefg"}

	got := Suggest("a", known)
	if !reflect.DeepEqual(got, []string{"abcdef"}) {
		t.Errorf("Suggest = %v, want only the name within distance 5", got)
	}
}

func TestSuggest_Deduplicates(t *testing.T) {
	got := Suggest("codx", []string{"codex", "codex", "codex"})
	if len(got) != 1 {
		t.Errorf("Suggest = %v, want one deduplicated entry", got)
	}
}

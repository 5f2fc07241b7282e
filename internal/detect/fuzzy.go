package detect

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	maxSuggestionDistance = 5
	maxSuggestions        = 5
)

// Suggest returns known names within edit distance 5 of input, closest
// first with alphabetical tie-break, capped at 5. Comparison is
// case-insensitive and duplicates in known are collapsed.
func Suggest(input string, known []string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))

	type candidate struct {
		name string
		dist int
	}

	seen := make(map[string]bool, len(known))
	var matches []candidate
	for _, name := range known {
		if seen[name] {
			continue
		}
		seen[name] = true

		d := levenshtein.ComputeDistance(needle, strings.ToLower(name))
		if d <= maxSuggestionDistance {
			matches = append(matches, candidate{name: name, dist: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

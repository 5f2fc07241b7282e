package scan

import (
	"strings"
	"unicode/utf8"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// MaxMatchedText caps the matched-line excerpt carried in a match.
const MaxMatchedText = 100

// ContextLines is how many raw lines are kept on each side of a match.
const ContextLines = 2

// Match is one pattern hit on one line. Immutable once produced;
// severity and category come verbatim from the pattern definition.
type Match struct {
	ID            string         `json:"id"`
	Category      types.Category `json:"category"`
	Severity      types.Severity `json:"severity"`
	Description   string         `json:"description"`
	Line          int            `json:"line"`
	MatchedText   string         `json:"matched_text"`
	ContextBefore []string       `json:"context_before,omitempty"`
	ContextAfter  []string       `json:"context_after,omitempty"`
}

// Result holds all matches for one file. Files with zero matches never
// produce a Result.
type Result struct {
	FilePath string  `json:"file_path"`
	Matches  []Match `json:"matches"`
}

// Matcher applies a resolved pattern list to file content, line by
// line. It holds no mutable state and is safe to share.
type Matcher struct {
	patterns []patterns.Compiled
}

// NewMatcher creates a matcher over a resolved pattern list. The list
// is used in order; match output preserves registration order within a
// line.
func NewMatcher(list []patterns.Compiled) *Matcher {
	return &Matcher{patterns: list}
}

// Patterns returns the matcher's resolved pattern list.
func (m *Matcher) Patterns() []patterns.Compiled {
	return m.patterns
}

// ScanFile tests every line of content against every pattern, in line
// order then registration order. Each (line, pattern) pair yields at
// most one match: a pattern is tested once per line as a boolean, so a
// pattern hitting twice on the same line still reports once, while the
// same pattern may report on many lines. Pure function of its inputs.
func (m *Matcher) ScanFile(path string, content string) Result {
	lines := SplitLines(content)

	var matches []Match
	for i, line := range lines {
		for _, p := range m.patterns {
			if !p.Regexp.MatchString(line) {
				continue
			}
			matches = append(matches, Match{
				ID:            p.ID,
				Category:      p.Category,
				Severity:      p.Severity,
				Description:   p.Description,
				Line:          i + 1,
				MatchedText:   TruncateText(strings.TrimSpace(line), MaxMatchedText),
				ContextBefore: contextBefore(lines, i),
				ContextAfter:  contextAfter(lines, i),
			})
		}
	}

	return Result{FilePath: path, Matches: matches}
}

// SplitLines splits content on \n, trimming a trailing \r from each
// line so CRLF input matches the same as LF input. Mirrors a plain
// split: content ending in a newline yields a final empty line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// TruncateText hard-truncates s to at most max bytes without splitting
// a rune. No ellipsis is added.
func TruncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// contextBefore returns up to ContextLines raw lines preceding index i,
// clipped at the start of the file. Never padded.
func contextBefore(lines []string, i int) []string {
	start := i - ContextLines
	if start < 0 {
		start = 0
	}
	if start == i {
		return nil
	}
	return append([]string(nil), lines[start:i]...)
}

// contextAfter returns up to ContextLines raw lines following index i,
// clipped at the end of the file. Never padded.
func contextAfter(lines []string, i int) []string {
	end := i + 1 + ContextLines
	if end > len(lines) {
		end = len(lines)
	}
	if i+1 >= end {
		return nil
	}
	return append([]string(nil), lines[i+1:end]...)
}

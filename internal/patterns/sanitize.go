package patterns

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxPatternLength caps regex source length to guard against pathological
// expressions in user catalogs.
const MaxPatternLength = 4096

// invisibleRunes are zero-width and formatting characters that can smuggle
// content past a human reviewer. They are rejected inside pattern expressions
// and annotated when they appear in matched text.
var invisibleRunes = map[rune]string{
	'​':      "ZERO WIDTH SPACE",
	'‌':      "ZERO WIDTH NON-JOINER",
	'‍':      "ZERO WIDTH JOINER",
	'⁠':      "WORD JOINER",
	'­':      "SOFT HYPHEN",
	'\uFEFF': "ZERO WIDTH NO-BREAK SPACE",
	'‪':      "LEFT-TO-RIGHT EMBEDDING",
	'‫':      "RIGHT-TO-LEFT EMBEDDING",
	'‬':      "POP DIRECTIONAL FORMATTING",
	'‭':      "LEFT-TO-RIGHT OVERRIDE",
	'‮':      "RIGHT-TO-LEFT OVERRIDE",
	'⁦':      "LEFT-TO-RIGHT ISOLATE",
	'⁧':      "RIGHT-TO-LEFT ISOLATE",
	'⁨':      "FIRST STRONG ISOLATE",
	'⁩':      "POP DIRECTIONAL ISOLATE",
}

// CheckExpression validates a regex source string before compilation.
// Rejects NUL bytes, control characters, invisible Unicode, and
// over-length expressions. Escaped forms like \x{200B} are fine; only
// raw characters are rejected.
func CheckExpression(expr string) error {
	if expr == "" {
		return fmt.Errorf("empty pattern")
	}
	if len(expr) > MaxPatternLength {
		return fmt.Errorf("pattern exceeds %d characters (%d)", MaxPatternLength, len(expr))
	}

	for _, r := range expr {
		if r == 0 {
			return fmt.Errorf("pattern contains NUL byte")
		}
		if r < 32 && r != '\t' {
			return fmt.Errorf("pattern contains control character U+%04X", r)
		}
		if name, ok := invisibleRunes[r]; ok {
			return fmt.Errorf("pattern contains invisible character U+%04X (%s)", r, name)
		}
	}

	return nil
}

// IsInvisible reports whether r is a zero-width or directional
// formatting character.
func IsInvisible(r rune) bool {
	_, ok := invisibleRunes[r]
	return ok
}

// HasInvisible reports whether s contains any invisible character.
func HasInvisible(s string) bool {
	for _, r := range s {
		if IsInvisible(r) {
			return true
		}
	}
	return false
}

// AnnotateInvisible rewrites invisible characters in s as visible
// escapes (e.g. <U+200B>) so stealth content shows up in reports.
// Strings without invisible characters are returned unchanged.
func AnnotateInvisible(s string) string {
	if !HasInvisible(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	for _, r := range s {
		if IsInvisible(r) {
			sb.WriteString(fmt.Sprintf("<U+%04X>", r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FoldHidden applies NFKC normalization, collapsing fullwidth and
// compatibility forms so lookalike text compares equal to its plain
// ASCII rendering.
func FoldHidden(s string) string {
	return norm.NFKC.String(s)
}

// InspectHidden reports evasion signals in a text fragment: invisible
// characters, text whose NFKC normalization differs from its raw form,
// and control characters outside tab/newline.
func InspectHidden(s string) (suspicious bool, reasons []string) {
	if HasInvisible(s) {
		suspicious = true
		reasons = append(reasons, "contains invisible characters")
	}

	if folded := FoldHidden(s); folded != s {
		suspicious = true
		reasons = append(reasons, "normalization changes text (lookalike characters)")
	}

	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			suspicious = true
			reasons = append(reasons, "contains control characters")
			break
		}
	}

	return
}

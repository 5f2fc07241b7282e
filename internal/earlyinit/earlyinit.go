// Package earlyinit runs before charmbracelet/bubbletea's init() to prevent
// terminal escape sequence leaks into machine-read output.
//
// Problem: bubbletea's init() calls lipgloss.HasDarkBackground() which sends
// OSC 11 (background color query) and DSR (cursor position) escape sequences
// to stdout. When the binary is invoked by a shell for tab completion
// (COMP_LINE set) or with --json, stdout is parsed by a machine and the
// sequences corrupt it.
//
// Solution: This package only imports "os" (stdlib), so Go initializes it
// before bubbletea (which depends on lipgloss → termenv). When a completion
// request or --json is detected, TERM is temporarily set to "dumb", which
// causes termenv's termStatusReport() to bail out without sending any escape
// sequences. The original TERM is saved so the caller can restore the color
// profile for styled stderr logging after bubbletea's init() has completed.
//
// Init order guarantee (Go spec): packages are initialized in dependency
// order; ties are broken by lexicographic package path. Since this package
// has fewer dependencies than bubbletea and "ASRagab" < "charmbracelet",
// this init() runs first.
package earlyinit

import "os"

// Completion is true when the invocation is a shell completion request.
var Completion bool

// JSONOutput is true when --json was detected in os.Args.
var JSONOutput bool

// OrigTERM holds the original TERM value before earlyinit set it to "dumb".
// Used to restore the color profile for styled log output.
var OrigTERM string

// HasJSONFlag reports whether args contains "--json" before any "--".
// Exported for testing; init() calls this with os.Args.
func HasJSONFlag(args []string) bool {
	if len(args) < 2 {
		return false
	}
	for _, arg := range args[1:] {
		if arg == "--json" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

func init() {
	Completion = os.Getenv("COMP_LINE") != "" || os.Getenv("COMP_INSTALL") != "" || os.Getenv("COMP_UNINSTALL") != ""
	JSONOutput = HasJSONFlag(os.Args)
	if !Completion && !JSONOutput {
		return
	}

	// Save original TERM, then set to "dumb" to suppress terminal queries.
	// termenv's termStatusReport() checks strings.HasPrefix(term, "dumb")
	// and returns early without sending OSC escape sequences.
	OrigTERM = os.Getenv("TERM")
	os.Setenv("TERM", "dumb")
}

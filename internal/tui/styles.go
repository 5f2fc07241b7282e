package tui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui/terminal"
)

// plainMode disables all styling: no colors, no icons, no boxes.
// When enabled, output is clean plain text suitable for CI, piped output, or --no-color.
var (
	plainMode bool
	plainOnce sync.Once
	plainMu   sync.RWMutex
)

// initPlainMode auto-detects plain mode from environment on first call.
// Precedence: NO_COLOR > TTY detection > terminal capability detection.
func initPlainMode() {
	plainOnce.Do(func() {
		// NO_COLOR wins, see https://no-color.org
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			plainMode = true
			return
		}
		// Not a terminal (piped, redirected, CI) → plain mode
		if !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // Fd() fits in int on all supported platforms
			plainMode = true
			return
		}
		// Unknown terminal with no detected capabilities → plain mode.
		if terminal.Detect().Caps == terminal.CapNone {
			plainMode = true
		}
	})
}

// SetPlainMode explicitly enables or disables plain mode.
// Call this early (e.g. when parsing --no-color flag) before any styled output.
func SetPlainMode(plain bool) {
	plainMu.Lock()
	defer plainMu.Unlock()
	plainMode = plain
	// Mark as initialized so auto-detect doesn't override
	plainOnce.Do(func() {})
}

// IsPlainMode returns true if styling is disabled.
func IsPlainMode() bool {
	initPlainMode()
	plainMu.RLock()
	defer plainMu.RUnlock()
	return plainMode
}

// Color palette: cool steel-and-signal tones. Adapts to OS theme.
var (
	ColorPrimary  = lipgloss.AdaptiveColor{Light: "#1E6E8C", Dark: "#4FB3D9"} // Steel Blue
	ColorAccent   = lipgloss.AdaptiveColor{Light: "#3A7CA5", Dark: "#81C7E8"} // Pale Cyan
	ColorSuccess  = lipgloss.AdaptiveColor{Light: "#3E7A4E", Dark: "#5FB573"} // Green
	ColorError    = lipgloss.AdaptiveColor{Light: "#A93535", Dark: "#D95757"} // Signal Red
	ColorWarning  = lipgloss.AdaptiveColor{Light: "#9A7014", Dark: "#E6B450"} // Amber
	ColorInfo     = lipgloss.AdaptiveColor{Light: "#56707E", Dark: "#9BB2BE"} // Slate
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#8B949E"} // Gray
	ColorHigh     = lipgloss.AdaptiveColor{Light: "#B0501E", Dark: "#E8834A"} // Rust
	ColorSevLow   = lipgloss.AdaptiveColor{Light: "#56707E", Dark: "#9BB2BE"} // Slate (low)
	ColorSevMed   = lipgloss.AdaptiveColor{Light: "#9A7014", Dark: "#E6B450"} // Amber (medium)
)

// Reusable styles.
var (
	StyleTitle    = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	StyleSubtitle = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleSuccess  = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError    = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning  = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo     = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted    = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold     = lipgloss.NewStyle().Bold(true)
	StyleAccent   = lipgloss.NewStyle().Foreground(ColorAccent)

	// Branded prefix: [aiguard] (unexported, use Prefix() instead)
	stylePrefix = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// Box style for per-ecosystem report sections, rounded border
	StyleBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 2)

	// Severity badge styles
	StyleCritical = lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	StyleHigh     = lipgloss.NewStyle().Foreground(ColorHigh)
	StyleMedium   = lipgloss.NewStyle().Foreground(ColorSevMed)
	StyleLow      = lipgloss.NewStyle().Foreground(ColorSevLow)
)

// Prefix returns the branded [aiguard] prefix string.
func Prefix() string {
	if IsPlainMode() {
		return "[aiguard]"
	}
	return stylePrefix.Render("[aiguard]")
}

// SeverityStyle returns the style for a severity level.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "critical":
		return StyleCritical
	case "high":
		return StyleHigh
	case "medium":
		return StyleMedium
	case "low":
		return StyleLow
	default:
		return StyleMuted
	}
}

// SeverityBadge returns a styled severity badge like "■ CRITICAL".
func SeverityBadge(severity string) string {
	label := strings.ToUpper(severity)
	if IsPlainMode() {
		return "[" + label + "]"
	}
	return SeverityStyle(severity).Render(IconSquare + " " + label)
}

// hasCapability reports whether the current terminal supports the given capability.
// Always returns false in plain mode (no styled output).
func hasCapability(c terminal.Capability) bool {
	if IsPlainMode() {
		return false
	}
	return terminal.Detect().Caps.Has(c)
}

// Separator returns a section separator bar with a fading trail.
func Separator(title string) string {
	if IsPlainMode() {
		if title == "" {
			return "---"
		}
		return "--- " + title + " ---"
	}
	bar := "▸▸"
	trail := gradientTrail("━", 24, "#4FB3D9", "#23323B")
	if title == "" {
		return StyleMuted.Render(bar) + trail
	}
	return StyleAccent.Render(bar+" ") + StyleBold.Render(title) + StyleAccent.Render(" "+bar) + trail
}

// gradientTrail renders a repeated character with a smooth color gradient fade.
func gradientTrail(char string, length int, from, to string) string {
	colors := GenerateGradient(from, to, length)
	var b strings.Builder
	for _, c := range colors {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(char))
	}
	return b.String()
}

// Hyperlink wraps text in an OSC 8 clickable link if the terminal supports it.
// Falls back to plain text when unsupported or in plain mode.
func Hyperlink(url, text string) string {
	if url == "" || !hasCapability(terminal.CapHyperlinks) {
		return text
	}
	return termenv.Hyperlink(url, text)
}

// WindowTitle sets the terminal window title via OSC 2.
// No-op if the terminal doesn't support it or in plain mode.
// Not goroutine-safe; call only from the main goroutine.
func WindowTitle(title string) {
	if !hasCapability(terminal.CapWindowTitle) {
		return
	}
	termenv.DefaultOutput().SetWindowTitle(title)
}

var styleFaint = lipgloss.NewStyle().Faint(true)

// Faint returns text with faint/dim formatting if supported.
func Faint(text string) string {
	if !hasCapability(terminal.CapFaint) {
		return text
	}
	return styleFaint.Render(text)
}

//go:build !notui

package banner

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui"
)

// ASCII art lines for the AIGUARD logo.
// Uses solid block characters (█ ▀ ▄) for a filled pixel-art style.
var logoLines = []string{
	`▄███▄  ███  ▄███▄  █   █  ▄███▄  ████▄  ████▄`,
	`█   █   █   █      █   █  █   █  █   █  █   █`,
	`█████   █   █  ██  █   █  █████  ████▀  █   █`,
	`█   █   █   █   █  █   █  █   █  █  █   █   █`,
	`█   █  ███  ▀███▀  ▀███▀  █   █  █   █  ████▀`,
}

// logoWidth is the rune count of the widest logo line (for consistent gradient mapping).
var logoWidth int

// gradientHex holds the per-column gradient colors, steel blue out to ice.
var gradientHex []string

func init() {
	for _, line := range logoLines {
		if w := utf8.RuneCountInString(line); w > logoWidth {
			logoWidth = w
		}
	}
	gradientHex = tui.GenerateGradient("#1E6E8C", "#4FB3D9", 12)
	gradientHex = append(gradientHex, tui.GenerateGradient("#4FB3D9", "#B8E4F5", 13)[1:]...)
}

// renderLogoLine colors each visible rune using a column-aligned gradient.
// A non-nil shimmer overlays its moving highlight on the base colors.
func renderLogoLine(line string, shimmer *tui.ShimmerState) string {
	runes := []rune(line)
	if len(runes) == 0 {
		return ""
	}
	span := max(logoWidth-1, 1)

	var b strings.Builder
	for i, r := range runes {
		if r == ' ' {
			b.WriteRune(r)
			continue
		}
		color := gradientHex[i*(len(gradientHex)-1)/span]
		if shimmer != nil {
			color = shimmer.ShimmerColor(color, i)
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// renderTagline builds the styled version + subtitle line.
func renderTagline(version string) string {
	indent := "       "
	if version != "" {
		return indent + tui.StyleMuted.Render("v"+version) + "  " + tui.StyleSubtitle.Render("Static security triage for AI tools")
	}
	return indent + tui.StyleSubtitle.Render("Static security triage for AI tools")
}

// renderBannerContent builds the full banner content. Pass a nil shimmer
// for the static gradient rendering.
func renderBannerContent(version string, shimmer *tui.ShimmerState) string {
	lines := make([]string, 0, len(logoLines))
	for _, line := range logoLines {
		lines = append(lines, renderLogoLine(line, shimmer))
	}
	return strings.Join(lines, "\n") + "\n\n" + renderTagline(version)
}

// ─── Animated banner (bubbletea) ────────────────────────────────────────────

// Animation phases.
const (
	phaseReveal  = 0
	phaseShimmer = 1
)

type bannerRevealMsg struct{}

type bannerModel struct {
	version   string
	logoChars int // total runes across all logo lines
	revealed  int // runes revealed so far
	phase     int
	shimmer   tui.ShimmerState
	done      bool
}

func newBannerModel(version string) bannerModel {
	total := 0
	for _, line := range logoLines {
		total += utf8.RuneCountInString(line)
	}
	return bannerModel{
		version:   version,
		logoChars: total,
		shimmer:   tui.NewShimmer(tui.DefaultShimmerConfig()),
	}
}

func (m bannerModel) Init() tea.Cmd {
	return revealTick()
}

func revealTick() tea.Cmd {
	return tea.Tick(12*time.Millisecond, func(_ time.Time) tea.Msg {
		return bannerRevealMsg{}
	})
}

func (m bannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case bannerRevealMsg:
		m.revealed += 6
		if m.revealed >= m.logoChars {
			m.revealed = m.logoChars
			m.phase = phaseShimmer
			m.shimmer.Start(logoWidth)
			return m, m.shimmer.Tick()
		}
		return m, revealTick()
	case tui.ShimmerTickMsg:
		if m.shimmer.Advance() {
			m.done = true
			return m, tea.Quit
		}
		return m, m.shimmer.Tick()
	case tea.KeyMsg:
		// Any key press skips animation
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m bannerModel) View() string {
	if m.done {
		return tui.StyleBox.Render(renderBannerContent(m.version, nil)) + "\n"
	}

	if m.phase == phaseShimmer {
		return tui.StyleBox.Render(renderBannerContent(m.version, &m.shimmer)) + "\n"
	}

	// Reveal phase: render revealed runes with the gradient, pad the rest
	// with spaces so the box keeps its dimensions.
	remaining := m.revealed
	span := max(logoWidth-1, 1)
	rendered := make([]string, 0, len(logoLines))

	for _, raw := range logoLines {
		runes := []rune(raw)
		for len(runes) < logoWidth {
			runes = append(runes, ' ')
		}

		var b strings.Builder
		for i, r := range runes {
			if remaining <= 0 {
				b.WriteRune(' ')
				continue
			}
			remaining--
			if r == ' ' {
				b.WriteRune(' ')
				continue
			}
			color := gradientHex[i*(len(gradientHex)-1)/span]
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(string(r)))
		}
		rendered = append(rendered, b.String())
	}

	// Tagline appears once the logo is fully revealed
	inner := strings.Join(rendered, "\n") + "\n\n"
	return tui.StyleBox.Render(inner) + "\n"
}

// PrintBanner renders the gradient AIGUARD banner in a bordered box.
// If interactive, plays a reveal animation followed by a shimmer sweep.
// In plain mode, prints a simple text banner with no colors or boxes.
func PrintBanner(version string) {
	if tui.IsPlainMode() {
		PrintBannerPlain(version)
		return
	}

	// Try animated version if we have a TTY
	if isTerminal() {
		m := newBannerModel(version)
		p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
		if _, err := p.Run(); err == nil {
			return
		}
		// Fall through to static on error
	}

	// Static fallback
	box := tui.StyleBox.Render(renderBannerContent(version, nil))
	fmt.Println(box)
}

// isTerminal checks if stderr is a terminal (for animation support).
// Uses golang.org/x/term for portable detection across Linux, macOS, and Windows.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd())) //nolint:gosec // Fd() fits in int on all supported platforms
}

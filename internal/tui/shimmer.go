//go:build !notui

package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ShimmerTickMsg is the shared frame message for sweep animations.
type ShimmerTickMsg struct{}

// ShimmerConfig controls one highlight sweep.
type ShimmerConfig struct {
	Radius       int // half-width of the highlight band, in character cells
	Step         int // cells advanced per tick
	TickInterval time.Duration
	HighlightTo  string  // hex color the band interpolates toward
	Factor       float64 // interpolation strength at the band center, 0.0 to 1.0
}

// DefaultShimmerConfig is tuned for the startup banner sweep.
func DefaultShimmerConfig() ShimmerConfig {
	return ShimmerConfig{
		Radius:       4,
		Step:         2,
		TickInterval: 15 * time.Millisecond,
		HighlightTo:  "#E8F6FF", // cool white, matches the steel-blue palette
		Factor:       0.9,
	}
}

// ShimmerState tracks a single left-to-right sweep.
type ShimmerState struct {
	Config ShimmerConfig
	Pos    int // center of the highlight band
	Width  int // content width to sweep across
	Active bool
}

// NewShimmer creates an idle ShimmerState.
func NewShimmer(cfg ShimmerConfig) ShimmerState {
	return ShimmerState{Config: cfg}
}

// Start begins a sweep across width cells. Restarting mid-sweep resets
// the band to the left edge.
func (s *ShimmerState) Start(width int) {
	s.Width = width
	s.Pos = -s.Config.Radius
	s.Active = true
}

// Advance moves the band forward one step. Returns true once the band
// has swept past the right edge.
func (s *ShimmerState) Advance() bool {
	if !s.Active {
		return true
	}
	s.Pos += s.Config.Step
	if s.Pos > s.Width+s.Config.Radius {
		s.Active = false
		return true
	}
	return false
}

// ShimmerColor returns the highlight-adjusted color for the cell at
// charPos. Cells outside the band keep their base color; inside it the
// base interpolates toward HighlightTo with smoothstep falloff.
func (s *ShimmerState) ShimmerColor(base string, charPos int) string {
	if !s.Active {
		return base
	}
	dist := charPos - s.Pos
	if dist < 0 {
		dist = -dist
	}
	if dist > s.Config.Radius {
		return base
	}
	t := 1.0 - float64(dist)/float64(s.Config.Radius+1)
	t = t * t * (3 - 2*t)
	return InterpolateColor(base, s.Config.HighlightTo, t*s.Config.Factor)
}

// Tick schedules the next frame.
func (s *ShimmerState) Tick() tea.Cmd {
	return tea.Tick(s.Config.TickInterval, func(_ time.Time) tea.Msg {
		return ShimmerTickMsg{}
	})
}

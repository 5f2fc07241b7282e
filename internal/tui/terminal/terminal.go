// Package terminal detects what the current terminal emulator can
// render, so styled output can degrade instead of printing escape
// codes the terminal will not honor.
package terminal

import (
	"os"
	"strings"
	"sync"
)

// Capability is a bitfield of terminal features.
type Capability uint16

const (
	CapTruecolor   Capability = 1 << iota // 24-bit color
	CapHyperlinks                         // OSC 8 clickable links
	CapFaint                              // ANSI faint/dim attribute
	CapWindowTitle                        // OSC 0/2 title setting
)

// Composite capability sets.
const (
	CapNone Capability = 0
	CapAll  Capability = CapTruecolor | CapHyperlinks | CapFaint | CapWindowTitle
)

// Has reports whether the capability set includes all bits in v.
func (c Capability) Has(v Capability) bool { return c&v == v }

// With returns the set with v added.
func (c Capability) With(v Capability) Capability { return c | v }

// Without returns the set with v removed.
func (c Capability) Without(v Capability) Capability { return c &^ v }

// Info holds detected terminal capabilities.
type Info struct {
	Caps        Capability
	Multiplexed bool // running inside tmux or screen
}

// EnvFunc is the signature for environment variable lookup (matches os.Getenv).
type EnvFunc func(string) string

var (
	cachedInfo Info
	detectOnce sync.Once
)

// Detect identifies the capabilities of the current terminal.
// The result is cached after the first call.
func Detect() Info {
	detectOnce.Do(func() {
		cachedInfo = DetectWith(os.Getenv)
	})
	return cachedInfo
}

// markerCaps maps identifying environment variables to the capability
// profile of the emulator that sets them. Checked in order, so the
// most specific markers come first.
var markerCaps = []struct {
	env  string
	caps Capability
}{
	{"WT_SESSION", CapAll}, // Windows Terminal
	{"KITTY_WINDOW_ID", CapAll},
	{"ALACRITTY_LOG", CapAll},
	{"WEZTERM_EXECUTABLE", CapAll},
	{"KONSOLE_VERSION", CapAll.Without(CapHyperlinks)},
	{"GNOME_TERMINAL_SCREEN", CapAll},
}

// programCaps maps TERM_PROGRAM values to capability profiles.
var programCaps = map[string]Capability{
	"vscode":         CapAll,
	"iTerm.app":      CapAll,
	"ghostty":        CapAll,
	"Apple_Terminal": CapAll.Without(CapHyperlinks),
}

// DetectWith identifies terminal capabilities using a custom env
// lookup. Not cached; the seam exists for tests.
func DetectWith(getenv EnvFunc) Info {
	info := Info{
		Multiplexed: getenv("TMUX") != "" || getenv("STY") != "",
	}

	// CI runners keep TERM set but have no real emulator attached.
	if getenv("CI") != "" {
		return info
	}

	info.Caps = lookupCaps(getenv)

	// Unrecognized terminal: trust COLORTERM for truecolor support.
	if info.Caps == CapNone {
		if ct := getenv("COLORTERM"); ct == "truecolor" || ct == "24bit" {
			info.Caps = CapTruecolor | CapFaint
		}
	}
	return info
}

func lookupCaps(getenv EnvFunc) Capability {
	for _, m := range markerCaps {
		if getenv(m.env) != "" {
			return m.caps
		}
	}
	if caps, ok := programCaps[getenv("TERM_PROGRAM")]; ok {
		return caps
	}
	if term := getenv("TERM"); term == "foot" || strings.HasPrefix(term, "foot-") {
		return CapAll
	}
	// VTE-based terminals identify through VTE_VERSION, not TERM.
	if getenv("VTE_VERSION") != "" {
		return CapAll
	}
	return CapNone
}

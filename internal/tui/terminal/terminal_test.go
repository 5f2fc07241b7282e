package terminal

import (
	"testing"
)

// mockEnv builds an EnvFunc from a map of key-value pairs.
func mockEnv(env map[string]string) EnvFunc {
	return func(key string) string {
		return env[key]
	}
}

func TestDetectWith(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Capability
	}{
		{"windows terminal", map[string]string{"WT_SESSION": "guid"}, CapAll},
		{"kitty", map[string]string{"KITTY_WINDOW_ID": "1"}, CapAll},
		{"alacritty", map[string]string{"ALACRITTY_LOG": "/tmp/log"}, CapAll},
		{"wezterm", map[string]string{"WEZTERM_EXECUTABLE": "/usr/bin/wezterm"}, CapAll},
		{"gnome terminal", map[string]string{"GNOME_TERMINAL_SCREEN": "/org/gnome"}, CapAll},
		{"konsole no links", map[string]string{"KONSOLE_VERSION": "220401"}, CapAll.Without(CapHyperlinks)},
		{"vscode", map[string]string{"TERM_PROGRAM": "vscode"}, CapAll},
		{"iterm", map[string]string{"TERM_PROGRAM": "iTerm.app"}, CapAll},
		{"ghostty", map[string]string{"TERM_PROGRAM": "ghostty"}, CapAll},
		{"apple terminal no links", map[string]string{"TERM_PROGRAM": "Apple_Terminal"}, CapAll.Without(CapHyperlinks)},
		{"foot", map[string]string{"TERM": "foot"}, CapAll},
		{"foot variant", map[string]string{"TERM": "foot-extra"}, CapAll},
		{"vte only", map[string]string{"VTE_VERSION": "7200"}, CapAll},
		{"empty env", map[string]string{}, CapNone},
		{"unknown term", map[string]string{"TERM": "xterm-256color"}, CapNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectWith(mockEnv(tt.env))
			if info.Caps != tt.want {
				t.Errorf("Caps = %d, want %d", info.Caps, tt.want)
			}
		})
	}
}

func TestDetectWith_CI(t *testing.T) {
	// CI suppresses capabilities even when an emulator marker is present.
	info := DetectWith(mockEnv(map[string]string{
		"CI":              "true",
		"KITTY_WINDOW_ID": "1",
		"TMUX":            "/tmp/tmux-1000/default,12345,0",
	}))
	if info.Caps != CapNone {
		t.Errorf("Caps = %d, want CapNone in CI", info.Caps)
	}
	if !info.Multiplexed {
		t.Error("Multiplexed should still be detected in CI")
	}
}

func TestDetectWith_Colorterm(t *testing.T) {
	for _, ct := range []string{"truecolor", "24bit"} {
		t.Run(ct, func(t *testing.T) {
			info := DetectWith(mockEnv(map[string]string{"COLORTERM": ct}))
			if !info.Caps.Has(CapTruecolor) {
				t.Error("COLORTERM should grant CapTruecolor")
			}
			if !info.Caps.Has(CapFaint) {
				t.Error("COLORTERM should grant CapFaint")
			}
			if info.Caps.Has(CapHyperlinks) {
				t.Error("COLORTERM alone should not grant CapHyperlinks")
			}
		})
	}
}

func TestDetectWith_Priority(t *testing.T) {
	// When multiple markers are set, the more specific one wins.
	tests := []struct {
		name string
		env  map[string]string
		want Capability
	}{
		{
			"kitty over TERM_PROGRAM",
			map[string]string{"KITTY_WINDOW_ID": "1", "TERM_PROGRAM": "Apple_Terminal"},
			CapAll,
		},
		{
			"konsole over TERM_PROGRAM",
			map[string]string{"KONSOLE_VERSION": "220401", "TERM_PROGRAM": "iTerm.app"},
			CapAll.Without(CapHyperlinks),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectWith(mockEnv(tt.env))
			if info.Caps != tt.want {
				t.Errorf("Caps = %d, want %d", info.Caps, tt.want)
			}
		})
	}
}

func TestDetectWith_Multiplexed(t *testing.T) {
	info := DetectWith(mockEnv(map[string]string{
		"TMUX":            "/tmp/tmux-1000/default,12345,0",
		"KITTY_WINDOW_ID": "1",
	}))
	if !info.Multiplexed {
		t.Error("Multiplexed should be true when TMUX is set")
	}
	if info.Caps != CapAll {
		t.Error("caps should be unaffected by multiplexing")
	}

	info = DetectWith(mockEnv(map[string]string{"STY": "12345.pts-0.host"}))
	if !info.Multiplexed {
		t.Error("Multiplexed should be true when STY is set")
	}
}

func TestCapability_Has(t *testing.T) {
	tests := []struct {
		name   string
		caps   Capability
		query  Capability
		expect bool
	}{
		{"all has truecolor", CapAll, CapTruecolor, true},
		{"all has all", CapAll, CapAll, true},
		{"none has nothing", CapNone, CapTruecolor, false},
		{"none has none", CapNone, CapNone, true},
		{"single has itself", CapTruecolor, CapTruecolor, true},
		{"single lacks other", CapTruecolor, CapHyperlinks, false},
		{"partial lacks combined", CapTruecolor, CapTruecolor | CapHyperlinks, false},
		{"combined has both", CapTruecolor | CapHyperlinks, CapTruecolor | CapHyperlinks, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.Has(tt.query); got != tt.expect {
				t.Errorf("Capability(%d).Has(%d) = %v, want %v", tt.caps, tt.query, got, tt.expect)
			}
		})
	}
}

func TestCapability_WithWithout(t *testing.T) {
	c := CapNone.With(CapTruecolor).With(CapHyperlinks)
	if !c.Has(CapTruecolor) || !c.Has(CapHyperlinks) {
		t.Error("With should be additive")
	}

	c = c.Without(CapTruecolor)
	if c.Has(CapTruecolor) {
		t.Error("Without should remove the capability")
	}
	if !c.Has(CapHyperlinks) {
		t.Error("Without should not affect other caps")
	}

	if CapNone.Without(CapTruecolor) != CapNone {
		t.Error("Without on CapNone should stay CapNone")
	}
}

func TestDetect_Caching(t *testing.T) {
	a := Detect()
	b := Detect()
	if a != b {
		t.Errorf("Detect() not stable across calls: %+v vs %+v", a, b)
	}
}

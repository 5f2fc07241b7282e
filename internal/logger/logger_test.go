package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},       // empty defaults to info
		{"TRACE", LevelTrace, false}, // case-insensitive
		{"Debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"invalid", 0, true},
		{"verbose", 0, true},
		{"fatal", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) should return error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestLevelTagComplete(t *testing.T) {
	for _, lvl := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
		tag, ok := levelTag[lvl]
		if !ok || tag.label == "" {
			t.Errorf("level %d missing label", lvl)
		}
	}
}

func TestEnabled(t *testing.T) {
	orig := globalLevel
	defer SetGlobalLevel(orig)

	SetGlobalLevel(LevelWarn)
	if Enabled(LevelDebug) {
		t.Error("Enabled(debug) = true with global level warn")
	}
	if !Enabled(LevelWarn) {
		t.Error("Enabled(warn) = false with global level warn")
	}
	if !Enabled(LevelError) {
		t.Error("Enabled(error) = false with global level warn")
	}
}

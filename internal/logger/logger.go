// Package logger provides leveled stderr logging with per-component
// prefixes. Level and coloring are process-global so every component
// honors the same --log-level and --no-color settings.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents log level
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// levelTag maps each level to its bracketed label and color.
var levelTag = map[Level]struct {
	label string
	style lipgloss.Style
}{
	LevelTrace: {"TRACE", lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8B99"))}, // slate
	LevelDebug: {"DEBUG", lipgloss.NewStyle().Foreground(lipgloss.Color("#6FA8DC"))}, // sky
	LevelInfo:  {"INFO", lipgloss.NewStyle().Foreground(lipgloss.Color("#5FB573"))},  // green
	LevelWarn:  {"WARN", lipgloss.NewStyle().Foreground(lipgloss.Color("#E6B450"))},  // amber
	LevelError: {"ERROR", lipgloss.NewStyle().Foreground(lipgloss.Color("#D95757"))}, // red
}

var styleFaint = lipgloss.NewStyle().Faint(true)

var (
	globalLevel   = LevelInfo
	globalColored = true
	globalMu      sync.RWMutex
)

// Logger writes leveled messages tagged with a component prefix.
type Logger struct {
	prefix string
}

// New creates a logger for the named component.
func New(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

// SetGlobalLevel sets the minimum level emitted by all loggers.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLevel = level
}

// Enabled reports whether messages at the given level would be emitted.
// Lets hot paths skip argument formatting for suppressed trace output.
func Enabled(level Level) bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return level >= globalLevel
}

// ParseLevel converts a string to a Level, returning an error if unrecognized.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (valid: trace, debug, info, warn, error)", s)
}

// SetGlobalLevelFromString sets the level from its name.
// Unrecognized names leave the level unchanged.
func SetGlobalLevelFromString(level string) {
	if l, err := ParseLevel(level); err == nil {
		SetGlobalLevel(l)
	}
}

// SetColored enables or disables colored output
func SetColored(colored bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalColored = colored
}

func (l *Logger) log(level Level, format string, args ...any) {
	globalMu.RLock()
	if level < globalLevel {
		globalMu.RUnlock()
		return
	}
	colored := globalColored
	globalMu.RUnlock()

	ts := time.Now().Format("15:04:05")
	tag := levelTag[level]
	msg := fmt.Sprintf(format, args...)

	if !colored {
		fmt.Fprintf(os.Stderr, "%s [%s] [%s] %s\n", ts, tag.label, l.prefix, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s %s %s\n",
		styleFaint.Render(ts),
		tag.style.Render("["+tag.label+"]"),
		styleFaint.Render("["+l.prefix+"]"),
		msg)
}

// Trace logs at the most verbose level.
func (l *Logger) Trace(format string, args ...any) { l.log(LevelTrace, format, args...) }

// Debug logs diagnostic detail.
func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }

// Info logs normal operational messages.
func (l *Logger) Info(format string, args ...any) { l.log(LevelInfo, format, args...) }

// Warn logs recoverable problems.
func (l *Logger) Warn(format string, args ...any) { l.log(LevelWarn, format, args...) }

// Error logs failures.
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

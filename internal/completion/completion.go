// Package completion provides CLI tab-completion for aiguard.
//
// The binary itself handles completions: when invoked with COMP_LINE set
// (by the shell), it outputs matching completions and exits.
// Works across bash, zsh, and fish with a one-time install.
//
// This package has no TUI dependency, so it compiles in both normal and notui
// builds. User-facing output (styled messages, spinners) is handled by the
// caller in main.go, which can use TUI when available.
package completion

import (
	"os"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/install"
	"github.com/posener/complete/v2/predict"
)

// ecosystems mirrors the canonical detector names plus their accepted
// aliases, so --ecosystem completes to something the orchestrator accepts.
var ecosystems = predict.Set{
	"claude-code", "claude", "cursor", "windsurf", "codeium",
	"github-copilot", "copilot", "codex", "gemini",
}

var componentTypes = predict.Set{"mcp", "hook", "hooks", "skill", "skills", "config", "plugin"}

var patternSets = predict.Set{"base", "mcp", "hook", "skill", "config"}

// command defines the full aiguard CLI completion tree.
var command = &complete.Command{
	Sub: map[string]*complete.Command{
		"scan": {
			Flags: map[string]complete.Predictor{
				"ecosystem":   ecosystems,
				"type":        componentTypes,
				"path":        predict.Dirs("*"),
				"json":        predict.Nothing,
				"output":      predict.Files("*"),
				"config":      predict.Files("*.yaml"),
				"log-level":   predict.Set{"trace", "debug", "info", "warn", "error"},
				"no-color":    predict.Nothing,
				"no-analyzer": predict.Nothing,
				"timeout":     predict.Nothing,
			},
		},
		"ecosystems": {Flags: map[string]complete.Predictor{"json": predict.Nothing, "config": predict.Files("*.yaml")}},
		"patterns": {
			Flags: map[string]complete.Predictor{
				"set":    patternSets,
				"json":   predict.Nothing,
				"config": predict.Files("*.yaml"),
			},
		},
		"lint-patterns": {Args: predict.Files("*.yaml")},
		"serve": {
			Flags: map[string]complete.Predictor{
				"port":   predict.Nothing,
				"config": predict.Files("*.yaml"),
			},
		},
		"completion": {Sub: map[string]*complete.Command{"install": {}, "uninstall": {}}},
		"version":    {Flags: map[string]complete.Predictor{"json": predict.Nothing}},
		"help":       {},
	},
}

// Run checks if the binary was invoked for shell completion.
// If COMP_LINE is set, it outputs completions and exits (never returns).
// Otherwise it returns false and the program continues normally.
func Run() bool {
	if os.Getenv("COMP_LINE") != "" || os.Getenv("COMP_INSTALL") != "" || os.Getenv("COMP_UNINSTALL") != "" {
		command.Complete("aiguard")
		return true
	}
	return false
}

// Install sets up shell completion for the detected shells.
// Returns nil on success. The caller handles user-facing output.
func Install() error {
	return install.Install("aiguard")
}

// Uninstall removes shell completion for the detected shells.
// Returns nil on success. The caller handles user-facing output.
func Uninstall() error {
	return install.Uninstall("aiguard")
}

// IsInstalled reports whether shell completion is already set up.
func IsInstalled() bool {
	return install.IsInstalled("aiguard")
}

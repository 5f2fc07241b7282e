package detect

import (
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// builtinFactories lists every shipped ecosystem detector. Order here
// is load order; output ordering is up to the caller.
func builtinFactories() []Factory {
	return []Factory{
		{Name: "claude-code", New: NewClaudeCodeDetector},
		{Name: "cursor", New: NewCursorDetector},
		{Name: "windsurf", New: NewWindsurfDetector},
		{Name: "github-copilot", New: NewGitHubCopilotDetector},
		{Name: "codex", New: NewCodexDetector},
		{Name: "gemini", New: NewGeminiDetector},
	}
}

// NewClaudeCodeDetector detects a Claude Code installation under
// ~/.claude plus the global ~/.claude.json MCP config.
func NewClaudeCodeDetector() (Detector, error) {
	return newHomeDetector(toolSpec{
		name:     "claude-code",
		binaries: []string{"claude"},
		roots:    []string{".claude"},
		probes: []probe{
			{key: "config:settings", typ: types.ComponentConfig, rel: ".claude/settings.json"},
			{key: "config:settings-local", typ: types.ComponentConfig, rel: ".claude/settings.local.json"},
			{key: "mcp:global", typ: types.ComponentMCPServer, rel: ".claude.json"},
			{key: "hook", typ: types.ComponentHook, rel: ".claude/hooks", children: true},
			{key: "skill", typ: types.ComponentSkill, rel: ".claude/skills", children: true},
			{key: "agent", typ: types.ComponentSkill, rel: ".claude/agents", children: true},
			{key: "plugin", typ: types.ComponentPlugin, rel: ".claude/plugins", children: true},
		},
	})
}

// NewCursorDetector detects a Cursor installation under ~/.cursor.
func NewCursorDetector() (Detector, error) {
	return newHomeDetector(toolSpec{
		name:     "cursor",
		binaries: []string{"cursor"},
		roots:    []string{".cursor"},
		probes: []probe{
			{key: "mcp:user", typ: types.ComponentMCPServer, rel: ".cursor/mcp.json"},
			{key: "extension", typ: types.ComponentPlugin, rel: ".cursor/extensions", children: true},
		},
	})
}

// NewWindsurfDetector detects a Windsurf installation under
// ~/.codeium/windsurf.
func NewWindsurfDetector() (Detector, error) {
	return newHomeDetector(toolSpec{
		name:     "windsurf",
		binaries: []string{"windsurf"},
		roots:    []string{".codeium/windsurf"},
		probes: []probe{
			{key: "mcp:user", typ: types.ComponentMCPServer, rel: ".codeium/windsurf/mcp_config.json"},
			{key: "memory", typ: types.ComponentSkill, rel: ".codeium/windsurf/memories", children: true},
		},
	})
}

// NewGitHubCopilotDetector detects GitHub Copilot state under
// ~/.config/github-copilot plus Copilot extensions in the VS Code
// extensions directory.
func NewGitHubCopilotDetector() (Detector, error) {
	return newHomeDetector(toolSpec{
		name:     "github-copilot",
		binaries: []string{"copilot"},
		roots:    []string{".config/github-copilot"},
		probes: []probe{
			{key: "config:hosts", typ: types.ComponentConfig, rel: ".config/github-copilot/hosts.json"},
			{key: "config:apps", typ: types.ComponentConfig, rel: ".config/github-copilot/apps.json"},
			{key: "extension", typ: types.ComponentPlugin, rel: ".vscode/extensions", children: true,
				childPrefix: "github.copilot"},
		},
	})
}

// NewCodexDetector detects an OpenAI Codex CLI installation under
// ~/.codex.
func NewCodexDetector() (Detector, error) {
	return newHomeDetector(toolSpec{
		name:     "codex",
		binaries: []string{"codex"},
		roots:    []string{".codex"},
		probes: []probe{
			{key: "config:main", typ: types.ComponentConfig, rel: ".codex/config.toml"},
			{key: "prompt", typ: types.ComponentSkill, rel: ".codex/prompts", children: true},
		},
	})
}

// NewGeminiDetector detects a Gemini CLI installation under ~/.gemini.
func NewGeminiDetector() (Detector, error) {
	return newHomeDetector(toolSpec{
		name:     "gemini",
		binaries: []string{"gemini"},
		roots:    []string{".gemini"},
		probes: []probe{
			{key: "config:settings", typ: types.ComponentConfig, rel: ".gemini/settings.json"},
			{key: "extension", typ: types.ComponentPlugin, rel: ".gemini/extensions", children: true},
		},
	})
}

package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

func fakeLookPath(found map[string]string) func(string) (string, error) {
	return func(bin string) (string, error) {
		if path, ok := found[bin]; ok {
			return path, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func writeHomeFile(t *testing.T, home, rel string, content string) {
	t.Helper()
	path := filepath.Join(home, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", rel, err)
	}
}

func TestToolDetector_Detect(t *testing.T) {
	home := t.TempDir()
	writeHomeFile(t, home, ".claude/settings.json", "{}")
	writeHomeFile(t, home, ".claude/hooks/pre-commit.sh", "echo ok")
	writeHomeFile(t, home, ".claude/hooks/post-run.sh", "echo ok")
	writeHomeFile(t, home, ".claude/hooks/.hidden", "skip me")
	writeHomeFile(t, home, ".claude/skills/deploy/SKILL.md", "# deploy")

	d, err := newHomeDetector(toolSpec{
		name:     "claude-code",
		binaries: []string{"claude"},
		roots:    []string{".claude"},
		probes: []probe{
			{key: "config:settings", typ: types.ComponentConfig, rel: ".claude/settings.json"},
			{key: "mcp:global", typ: types.ComponentMCPServer, rel: ".claude.json"},
			{key: "hook", typ: types.ComponentHook, rel: ".claude/hooks", children: true},
			{key: "skill", typ: types.ComponentSkill, rel: ".claude/skills", children: true},
		},
	}, withHome(home), withLookPath(fakeLookPath(map[string]string{"claude": "/usr/local/bin/claude"})))
	if err != nil {
		t.Fatalf("newHomeDetector: %v", err)
	}

	res, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if !res.Found {
		t.Error("Found = false, want true")
	}

	wantKeys := []string{
		"config:settings",
		"hook:pre-commit.sh",
		"hook:post-run.sh",
		"skill:deploy",
		"executable:claude",
	}
	if len(res.Components) != len(wantKeys) {
		t.Errorf("got %d components, want %d: %+v", len(res.Components), len(wantKeys), res.Components)
	}
	for _, key := range wantKeys {
		if _, ok := res.Components[key]; !ok {
			t.Errorf("component %q missing", key)
		}
	}
	if _, ok := res.Components["mcp:global"]; ok {
		t.Error("absent probe location produced a component")
	}
	if _, ok := res.Components["hook:.hidden"]; ok {
		t.Error("dotfile child produced a component")
	}

	if got := res.Components["hook:pre-commit.sh"].Type; got != types.ComponentHook {
		t.Errorf("hook component type = %s, want hook", got)
	}
	if got := res.Components["executable:claude"].Path; got != "/usr/local/bin/claude" {
		t.Errorf("executable path = %q", got)
	}

	wantRoot := filepath.Join(home, ".claude")
	if len(res.ScanPaths) != 1 || res.ScanPaths[0] != wantRoot {
		t.Errorf("scanPaths = %v, want [%s]", res.ScanPaths, wantRoot)
	}
}

func TestToolDetector_NothingInstalled(t *testing.T) {
	d, err := newHomeDetector(toolSpec{
		name:     "cursor",
		binaries: []string{"cursor"},
		roots:    []string{".cursor"},
		probes: []probe{
			{key: "mcp:user", typ: types.ComponentMCPServer, rel: ".cursor/mcp.json"},
		},
	}, withHome(t.TempDir()), withLookPath(fakeLookPath(nil)))
	if err != nil {
		t.Fatalf("newHomeDetector: %v", err)
	}

	res, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Found {
		t.Error("Found = true for an empty home, want false")
	}
	if len(res.Components) != 0 {
		t.Errorf("components = %+v, want none", res.Components)
	}
}

func TestToolDetector_ChildPrefixFilter(t *testing.T) {
	home := t.TempDir()
	writeHomeFile(t, home, ".vscode/extensions/github.copilot-1.2.3/package.json", "{}")
	writeHomeFile(t, home, ".vscode/extensions/ms-python.python-2024.1/package.json", "{}")

	d, err := newHomeDetector(toolSpec{
		name:  "github-copilot",
		roots: []string{".config/github-copilot"},
		probes: []probe{
			{key: "extension", typ: types.ComponentPlugin, rel: ".vscode/extensions", children: true,
				childPrefix: "github.copilot"},
		},
	}, withHome(home), withLookPath(fakeLookPath(nil)))
	if err != nil {
		t.Fatalf("newHomeDetector: %v", err)
	}

	res, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if _, ok := res.Components["extension:github.copilot-1.2.3"]; !ok {
		t.Errorf("copilot extension missing: %+v", res.Components)
	}
	if _, ok := res.Components["extension:ms-python.python-2024.1"]; ok {
		t.Error("unrelated extension included despite child prefix")
	}
}

func TestToolDetector_ContextCanceled(t *testing.T) {
	d, err := newHomeDetector(toolSpec{
		name:   "codex",
		probes: []probe{{key: "config:main", typ: types.ComponentConfig, rel: ".codex/config.toml"}},
	}, withHome(t.TempDir()), withLookPath(fakeLookPath(nil)))
	if err != nil {
		t.Fatalf("newHomeDetector: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Detect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Detect on canceled ctx = %v, want context.Canceled", err)
	}
}

func TestBuiltinFactories(t *testing.T) {
	factories := builtinFactories()
	if len(factories) != 6 {
		t.Fatalf("got %d factories, want 6", len(factories))
	}

	seen := make(map[string]bool)
	for _, f := range factories {
		d, err := f.New()
		if err != nil {
			t.Errorf("factory %s: %v", f.Name, err)
			continue
		}
		if d.Name() != f.Name {
			t.Errorf("detector name %q does not match factory name %q", d.Name(), f.Name)
		}
		if seen[d.Name()] {
			t.Errorf("duplicate detector name %q", d.Name())
		}
		seen[d.Name()] = true
		if len(d.Paths()) == 0 {
			t.Errorf("detector %s reports no install roots", d.Name())
		}
	}
}

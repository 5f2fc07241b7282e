package detect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// staticDetector is a canned detector for orchestrator tests.
type staticDetector struct {
	name     string
	result   DetectionResult
	err      error
	panicMsg string
	delay    time.Duration
}

func (d *staticDetector) Name() string               { return d.name }
func (d *staticDetector) Paths() []string            { return nil }
func (d *staticDetector) CheckPATH() []ComponentInfo { return nil }

func (d *staticDetector) Detect(ctx context.Context) (DetectionResult, error) {
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.err != nil {
		return DetectionResult{}, d.err
	}
	return d.result, nil
}

func staticFactory(d Detector) Factory {
	return Factory{Name: d.Name(), New: func() (Detector, error) { return d, nil }}
}

func foundResult(eco string, components map[string]ComponentInfo) DetectionResult {
	return DetectionResult{
		Ecosystem:  eco,
		Found:      len(components) > 0,
		Components: components,
	}
}

func simpleComponents() map[string]ComponentInfo {
	return map[string]ComponentInfo{
		"config:settings": {Name: "settings.json", Path: "/tmp/settings.json", Type: types.ComponentConfig},
	}
}

func TestOrchestrator_LoadFailures(t *testing.T) {
	good := &staticDetector{name: "claude-code", result: foundResult("claude-code", simpleComponents())}

	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(good),
		{Name: "broken", New: func() (Detector, error) { return nil, errors.New("construction failed") }},
		{Name: "nil-detector", New: func() (Detector, error) { return nil, nil }},
		staticFactory(&staticDetector{name: ""}),
		staticFactory(&staticDetector{name: "claude-code"}),
	}))

	if len(o.detectors) != 1 {
		t.Errorf("loaded %d detectors, want 1", len(o.detectors))
	}
	if len(o.loadFailures) != 4 {
		t.Fatalf("got %d load failures, want 4: %+v", len(o.loadFailures), o.loadFailures)
	}
	for _, f := range o.loadFailures {
		if f.Kind != types.FailureLoad {
			t.Errorf("failure kind = %s, want load-error", f.Kind)
		}
	}

	// Load failures ride along with every batch.
	_, failures, err := o.DetectAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if len(failures) != 4 {
		t.Errorf("DetectAll carried %d failures, want 4", len(failures))
	}
}

func TestDetectAll_PanickingDetectorDoesNotAbortBatch(t *testing.T) {
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code", result: foundResult("claude-code", simpleComponents())}),
		staticFactory(&staticDetector{name: "cursor", panicMsg: "exploded"}),
		staticFactory(&staticDetector{name: "codex", result: foundResult("codex", simpleComponents())}),
	}))

	results, failures, err := o.DetectAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}

	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	if _, ok := results["cursor"]; ok {
		t.Error("panicking detector produced a result")
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want exactly 1: %+v", len(failures), failures)
	}
	if failures[0].Kind != types.FailureError {
		t.Errorf("failure kind = %s, want error", failures[0].Kind)
	}
	if failures[0].DetectorName != "cursor" {
		t.Errorf("failure detector = %s, want cursor", failures[0].DetectorName)
	}
	if !strings.Contains(failures[0].Error, "exploded") {
		t.Errorf("failure message %q does not carry the panic value", failures[0].Error)
	}
}

func TestDetectAll_ErroringDetector(t *testing.T) {
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code", err: errors.New("probe failed")}),
		staticFactory(&staticDetector{name: "cursor", result: foundResult("cursor", simpleComponents())}),
	}))

	results, failures, err := o.DetectAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
	if len(failures) != 1 || failures[0].Kind != types.FailureError {
		t.Errorf("failures = %+v, want one error-kind failure", failures)
	}
}

func TestDetectAll_SlowDetectorTimesOut(t *testing.T) {
	o := NewOrchestrator(
		WithTimeout(30*time.Millisecond),
		WithFactories([]Factory{
			staticFactory(&staticDetector{name: "claude-code", delay: 500 * time.Millisecond,
				result: foundResult("claude-code", simpleComponents())}),
			staticFactory(&staticDetector{name: "cursor", result: foundResult("cursor", simpleComponents())}),
		}),
	)

	results, failures, err := o.DetectAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}

	if _, ok := results["claude-code"]; ok {
		t.Error("timed-out detector produced a result")
	}
	if _, ok := results["cursor"]; !ok {
		t.Error("fast detector missing from results")
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1: %+v", len(failures), failures)
	}
	if failures[0].Kind != types.FailureTimeout {
		t.Errorf("failure kind = %s, want timeout", failures[0].Kind)
	}
}

func TestDetectAll_NotFoundDropped(t *testing.T) {
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code", result: DetectionResult{Ecosystem: "claude-code"}}),
	}))

	results, failures, err := o.DetectAll(context.Background(), "", "")
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("not-found detector produced a result: %+v", results)
	}
	if len(failures) != 0 {
		t.Errorf("not-found detector produced a failure: %+v", failures)
	}
}

func TestDetectAll_EcosystemFilter(t *testing.T) {
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code", result: foundResult("claude-code", simpleComponents())}),
		staticFactory(&staticDetector{name: "cursor", result: foundResult("cursor", simpleComponents())}),
	}))

	tests := []struct {
		name   string
		filter string
		want   string
	}{
		{name: "canonical", filter: "cursor", want: "cursor"},
		{name: "alias", filter: "claude", want: "claude-code"},
		{name: "case folded", filter: "Claude-Code", want: "claude-code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, _, err := o.DetectAll(context.Background(), tt.filter, "")
			if err != nil {
				t.Fatalf("DetectAll(%q): %v", tt.filter, err)
			}
			if len(results) != 1 {
				t.Fatalf("got %d results, want 1", len(results))
			}
			if _, ok := results[tt.want]; !ok {
				t.Errorf("results = %v, want %s", results, tt.want)
			}
		})
	}
}

func TestDetectAll_InvalidEcosystemIsHardError(t *testing.T) {
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code", result: foundResult("claude-code", simpleComponents())}),
		staticFactory(&staticDetector{name: "codex", result: foundResult("codex", simpleComponents())}),
	}))

	_, _, err := o.DetectAll(context.Background(), "codx", "")
	if err == nil {
		t.Fatal("DetectAll with an unknown ecosystem succeeded, want hard error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "codx") {
		t.Errorf("error %q does not name the bad input", msg)
	}
	if !strings.Contains(msg, "did you mean") || !strings.Contains(msg, "codex") {
		t.Errorf("error %q carries no suggestion for codex", msg)
	}
	if !strings.Contains(msg, "claude-code") {
		t.Errorf("error %q does not enumerate the valid list", msg)
	}
}

func TestDetectAll_ComponentTypeFilter(t *testing.T) {
	components := map[string]ComponentInfo{
		"hook:pre":        {Name: "pre", Path: "/tmp/hooks/pre", Type: types.ComponentHook},
		"mcp:user":        {Name: "mcp.json", Path: "/tmp/mcp.json", Type: types.ComponentMCPServer},
		"config:settings": {Name: "settings.json", Path: "/tmp/settings.json", Type: types.ComponentConfig},
		"skill:deploy":    {Name: "deploy", Path: "/tmp/skills/deploy"},
	}
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code", result: foundResult("claude-code", components)}),
		staticFactory(&staticDetector{name: "cursor", result: foundResult("cursor", map[string]ComponentInfo{
			"mcp:user": {Name: "mcp.json", Path: "/tmp/c/mcp.json", Type: types.ComponentMCPServer},
		})}),
	}))

	tests := []struct {
		name       string
		filter     string
		wantEcos   int
		wantKeys   []string
		wantAbsent []string
	}{
		{
			name: "plural folds to singular", filter: "hooks",
			wantEcos: 1, wantKeys: []string{"hook:pre"}, wantAbsent: []string{"mcp:user", "config:settings"},
		},
		{
			name: "type substring", filter: "mcp",
			wantEcos: 2, wantKeys: []string{"mcp:user"},
		},
		{
			name: "untyped component matches on key prefix", filter: "skills",
			wantEcos: 1, wantKeys: []string{"skill:deploy"},
		},
		{
			name: "emptied results dropped", filter: "plugins",
			wantEcos: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, _, err := o.DetectAll(context.Background(), "", tt.filter)
			if err != nil {
				t.Fatalf("DetectAll: %v", err)
			}
			if len(results) != tt.wantEcos {
				t.Fatalf("got %d ecosystems, want %d: %v", len(results), tt.wantEcos, results)
			}
			if tt.wantEcos == 0 {
				return
			}
			res := results["claude-code"]
			if tt.name == "type substring" {
				if len(results["cursor"].Components) != 1 {
					t.Errorf("cursor components = %+v, want its mcp entry kept", results["cursor"].Components)
				}
			}
			for _, key := range tt.wantKeys {
				if _, ok := res.Components[key]; !ok {
					t.Errorf("component %q filtered out, want kept: %+v", key, res.Components)
				}
			}
			for _, key := range tt.wantAbsent {
				if _, ok := res.Components[key]; ok {
					t.Errorf("component %q kept, want filtered out", key)
				}
			}
		})
	}
}

func TestResolveEcosystem(t *testing.T) {
	o := NewOrchestrator(WithFactories([]Factory{
		staticFactory(&staticDetector{name: "claude-code"}),
		staticFactory(&staticDetector{name: "windsurf"}),
	}))

	if got, err := o.ResolveEcosystem("codeium"); err != nil || got != "windsurf" {
		t.Errorf("ResolveEcosystem(codeium) = %q, %v, want windsurf", got, err)
	}
	if got, err := o.ResolveEcosystem("  CLAUDE  "); err != nil || got != "claude-code" {
		t.Errorf("ResolveEcosystem(padded alias) = %q, %v, want claude-code", got, err)
	}
	// Alias of an unloaded ecosystem stays invalid.
	if _, err := o.ResolveEcosystem("gemini-cli"); err == nil {
		t.Error("alias of an unloaded ecosystem resolved, want error")
	}
}

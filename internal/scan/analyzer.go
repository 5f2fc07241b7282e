package scan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// AnalyzerSeverity is the coarse grading used by static analyzers.
// It is translated into the pattern severity scale before merging.
type AnalyzerSeverity string

const (
	AnalyzerCritical    AnalyzerSeverity = "Critical"
	AnalyzerWarning     AnalyzerSeverity = "Warning"
	AnalyzerInformation AnalyzerSeverity = "Information"
)

// AnalyzerCategory is stamped on every analyzer-derived match. The
// constructs the analyzer flags are dynamic-execution and obfuscation
// vectors, so they land under STEALTH.
const AnalyzerCategory = types.CategoryStealth

// Warning is one static-analysis finding. Line is 1-based; Snippet is
// optional source text.
type Warning struct {
	Kind     string
	Snippet  string
	Severity AnalyzerSeverity
	Line     int
}

// Describe returns human-readable text for the warning's kind.
func (w Warning) Describe() string {
	if d, ok := warningText[w.Kind]; ok {
		return d
	}
	return "Static analysis finding: " + w.Kind
}

var warningText = map[string]string{
	"eval-call":            "Dynamic code execution via eval",
	"function-constructor": "Dynamic code construction via the Function constructor",
	"child-process":        "Child process execution from script code",
	"dynamic-import":       "Module loaded through a runtime import call",
	"websocket":            "Outbound WebSocket connection setup",
}

// Analyzer inspects script content and reports structural findings the
// line patterns cannot express.
type Analyzer interface {
	Analyze(content string) ([]Warning, error)
}

// TranslateSeverity maps an analyzer grade onto the pattern severity
// scale. Every grade must map; an unknown one is an error, not a
// silent default.
func TranslateSeverity(s AnalyzerSeverity) (types.Severity, error) {
	switch s {
	case AnalyzerCritical:
		return types.SeverityCritical, nil
	case AnalyzerWarning:
		return types.SeverityMedium, nil
	case AnalyzerInformation:
		return types.SeverityLow, nil
	}
	return "", fmt.Errorf("unmapped analyzer severity %q", s)
}

// scriptExtensions are the extensions handed to the analyzer.
var scriptExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
}

// IsScriptExt reports whether path has a script extension the analyzer
// understands.
func IsScriptExt(path string) bool {
	return scriptExtensions[strings.ToLower(filepath.Ext(path))]
}

// scriptCheck pairs one construct detector with its grade.
type scriptCheck struct {
	kind     string
	severity AnalyzerSeverity
	re       *regexp.Regexp
}

var scriptChecks = []scriptCheck{
	{"eval-call", AnalyzerCritical, regexp.MustCompile(`\beval\s*\(`)},
	{"function-constructor", AnalyzerCritical, regexp.MustCompile(`\bnew\s+Function\s*\(`)},
	{"child-process", AnalyzerWarning, regexp.MustCompile(`require\s*\(\s*['"]child_process['"]\s*\)|\b(?:exec|spawn|execFile)Sync\s*\(`)},
	{"dynamic-import", AnalyzerWarning, regexp.MustCompile(`\bimport\s*\(`)},
	{"websocket", AnalyzerInformation, regexp.MustCompile(`\bnew\s+WebSocket\s*\(`)},
}

// ScriptAnalyzer flags dynamic-execution constructs in JavaScript and
// TypeScript sources. Like the line matcher it reports each construct
// at most once per line.
type ScriptAnalyzer struct{}

// NewScriptAnalyzer creates the default script analyzer.
func NewScriptAnalyzer() *ScriptAnalyzer {
	return &ScriptAnalyzer{}
}

// Analyze scans content line by line for flagged constructs.
func (a *ScriptAnalyzer) Analyze(content string) ([]Warning, error) {
	var warnings []Warning
	for i, line := range SplitLines(content) {
		for _, c := range scriptChecks {
			if !c.re.MatchString(line) {
				continue
			}
			warnings = append(warnings, Warning{
				Kind:     c.kind,
				Snippet:  strings.TrimSpace(line),
				Severity: c.severity,
				Line:     i + 1,
			})
		}
	}
	return warnings, nil
}

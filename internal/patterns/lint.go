package patterns

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui"
	"gopkg.in/yaml.v3"
)

// LintSeverity represents the severity of a lint issue.
type LintSeverity string

// Lint severity levels (distinct from pattern Severity).
const (
	LintError   LintSeverity = "error"
	LintWarning LintSeverity = "warning"
	LintInfo    LintSeverity = "info"
)

// LintIssue represents a problem found in a pattern definition.
type LintIssue struct {
	PatternID string
	Field     string
	Severity  LintSeverity
	Message   string
}

// LintResult contains all issues found during linting.
type LintResult struct {
	Issues []LintIssue
	Errors int
	Warns  int
}

// Linter validates pattern catalogs for common mistakes.
type Linter struct {
	suspiciousExprs []suspiciousExpr
}

type suspiciousExpr struct {
	re      *regexp.Regexp
	message string
}

// NewLinter creates a new catalog linter.
func NewLinter() *Linter {
	l := &Linter{}

	suspicious := []struct {
		re  string
		msg string
	}{
		// An unanchored .* prefix matches every line
		{`^\.\*`, "expression starts with '.*' - it matches anywhere already"},
		// A bare . likely meant a literal dot
		{`(?:^|[^\\])\.(?:yaml|yml|json|sh|js|ts|md)\b`, "unescaped '.' before a file extension - did you mean '\\.'?"},
	}

	for _, s := range suspicious {
		if re, err := regexp.Compile(s.re); err == nil {
			l.suspiciousExprs = append(l.suspiciousExprs, suspiciousExpr{re: re, message: s.msg})
		}
	}

	return l
}

// LintDefinitions validates a list of definitions and returns all issues found.
func (l *Linter) LintDefinitions(defs []Definition) LintResult {
	result := LintResult{}
	seenIDs := make(map[string]bool)

	for _, def := range defs {
		if seenIDs[def.ID] {
			result.Issues = append(result.Issues, LintIssue{
				PatternID: def.ID,
				Field:     "id",
				Severity:  LintError,
				Message:   "duplicate pattern id",
			})
			result.Errors++
		}
		seenIDs[def.ID] = true

		issues := l.lintDefinition(def)
		for _, issue := range issues {
			result.Issues = append(result.Issues, issue)
			switch issue.Severity {
			case LintError:
				result.Errors++
			case LintWarning:
				result.Warns++
			case LintInfo:
				// info items don't increment counters
			}
		}
	}

	return result
}

func (l *Linter) lintDefinition(def Definition) []LintIssue {
	var issues []LintIssue

	id := def.ID
	if id == "" {
		id = "(unnamed)"
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "id",
			Severity:  LintError,
			Message:   "pattern id is required",
		})
	}

	if def.Description == "" {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "description",
			Severity:  LintError,
			Message:   "description is required",
		})
	}

	if def.Category != "" && !def.Category.Valid() {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "category",
			Severity:  LintError,
			Message:   fmt.Sprintf("unknown category: %s", def.Category),
		})
	}

	if def.Severity != "" && !def.Severity.Valid() {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "severity",
			Severity:  LintError,
			Message:   fmt.Sprintf("unknown severity: %s", def.Severity),
		})
	}

	issues = append(issues, l.lintExpression(id, def.Pattern)...)

	return issues
}

func (l *Linter) lintExpression(id, expr string) []LintIssue {
	var issues []LintIssue

	if expr == "" {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "pattern",
			Severity:  LintError,
			Message:   "empty pattern expression",
		})
		return issues
	}

	// Sanitization and compilation catch NUL bytes, invisible characters,
	// length ceiling, and invalid regex syntax
	if _, err := compileDefinition(Definition{ID: id, Pattern: expr}); err != nil {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "pattern",
			Severity:  LintError,
			Message:   err.Error(),
		})
		return issues
	}

	for _, sp := range l.suspiciousExprs {
		if sp.re.MatchString(expr) {
			issues = append(issues, LintIssue{
				PatternID: id,
				Field:     "pattern",
				Severity:  LintWarning,
				Message:   sp.message,
			})
		}
	}

	if len(expr) < 4 {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "pattern",
			Severity:  LintWarning,
			Message:   "very short expression may match too broadly",
		})
	}

	if folded := FoldHidden(expr); folded != expr {
		issues = append(issues, LintIssue{
			PatternID: id,
			Field:     "pattern",
			Severity:  LintWarning,
			Message:   "expression contains characters that normalize differently (possible lookalikes)",
		})
	}

	return issues
}

// LintFile loads and lints one catalog file.
func (l *Linter) LintFile(path string) (LintResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LintResult{}, fmt.Errorf("failed to read file: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return LintResult{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return LintResult{}, fmt.Errorf("validation error: %w", err)
	}

	return l.LintDefinitions(catalog.Patterns), nil
}

// LintBuiltin lints the embedded builtin catalogs.
func (l *Linter) LintBuiltin() (LintResult, error) {
	loader := NewLoader("")
	catalogs, err := loader.LoadBuiltin()
	if err != nil {
		return LintResult{}, fmt.Errorf("failed to load builtin patterns: %w", err)
	}

	var defs []Definition
	for _, fc := range catalogs {
		defs = append(defs, fc.Patterns...)
	}
	return l.LintDefinitions(defs), nil
}

// FormatIssues returns a human-readable string of all issues.
func (r LintResult) FormatIssues(showInfo bool) string {
	if len(r.Issues) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, issue := range r.Issues {
		if issue.Severity == LintInfo && !showInfo {
			continue
		}

		var icon, styledLine string
		if tui.IsPlainMode() {
			switch issue.Severity {
			case LintError:
				icon = "X"
			case LintWarning:
				icon = "!"
			case LintInfo:
				icon = "i"
			default:
				icon = "?"
			}
			styledLine = fmt.Sprintf("  %s [%s] %s: %s - %s\n",
				icon, issue.Severity, issue.PatternID, issue.Field, issue.Message)
		} else {
			switch issue.Severity {
			case LintError:
				icon = tui.StyleError.Render(tui.IconCross)
			case LintWarning:
				icon = tui.StyleWarning.Render(tui.IconWarning)
			case LintInfo:
				icon = tui.StyleInfo.Render(tui.IconInfo)
			default:
				icon = "?"
			}
			severity := tui.SeverityBadge(string(issue.Severity))
			styledLine = fmt.Sprintf("  %s %s %s: %s - %s\n",
				icon, severity, tui.StyleBold.Render(issue.PatternID), issue.Field, issue.Message)
		}
		sb.WriteString(styledLine)
	}

	return sb.String()
}

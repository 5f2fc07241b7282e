package patterns

import (
	"testing"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

func TestLinterBasic(t *testing.T) {
	linter := NewLinter()

	tests := []struct {
		name       string
		defs       []Definition
		wantErrors int
		wantWarns  int
	}{
		{
			name: "valid definition",
			defs: []Definition{
				{
					ID:          "good",
					Category:    types.CategoryExfiltration,
					Severity:    types.SeverityHigh,
					Pattern:     `(?i)curl\s+-d`,
					Description: "curl upload",
				},
			},
			wantErrors: 0,
			wantWarns:  0,
		},
		{
			name: "missing id",
			defs: []Definition{
				{
					Category:    types.CategoryStealth,
					Severity:    types.SeverityLow,
					Pattern:     `base64`,
					Description: "x",
				},
			},
			wantErrors: 1,
		},
		{
			name: "missing description",
			defs: []Definition{
				{
					ID:       "no-desc",
					Category: types.CategoryStealth,
					Severity: types.SeverityLow,
					Pattern:  `base64`,
				},
			},
			wantErrors: 1,
		},
		{
			name: "unknown category",
			defs: []Definition{
				{
					ID:          "bad-cat",
					Category:    "RANSOMWARE",
					Severity:    types.SeverityLow,
					Pattern:     `base64`,
					Description: "x",
				},
			},
			wantErrors: 1,
		},
		{
			name: "invalid regexp",
			defs: []Definition{
				{
					ID:          "bad-re",
					Category:    types.CategoryStealth,
					Severity:    types.SeverityLow,
					Pattern:     `(?P<oops`,
					Description: "x",
				},
			},
			wantErrors: 1,
		},
		{
			name: "duplicate ids",
			defs: []Definition{
				{ID: "same", Category: types.CategoryStealth, Severity: types.SeverityLow, Pattern: `aaaa`, Description: "x"},
				{ID: "same", Category: types.CategoryStealth, Severity: types.SeverityLow, Pattern: `bbbb`, Description: "y"},
			},
			wantErrors: 1,
		},
		{
			name: "short expression warning",
			defs: []Definition{
				{ID: "short", Category: types.CategoryStealth, Severity: types.SeverityLow, Pattern: `rm`, Description: "x"},
			},
			wantErrors: 0,
			wantWarns:  1,
		},
		{
			name: "dot-star prefix warning",
			defs: []Definition{
				{ID: "prefix", Category: types.CategoryStealth, Severity: types.SeverityLow, Pattern: `.*curl`, Description: "x"},
			},
			wantErrors: 0,
			wantWarns:  1,
		},
		{
			name: "unescaped extension dot warning",
			defs: []Definition{
				{ID: "ext-dot", Category: types.CategoryStealth, Severity: types.SeverityLow, Pattern: `settings.json`, Description: "x"},
			},
			wantErrors: 0,
			wantWarns:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := linter.LintDefinitions(tt.defs)

			if result.Errors != tt.wantErrors {
				t.Errorf("got %d errors, want %d\nIssues: %s",
					result.Errors, tt.wantErrors, result.FormatIssues(true))
			}

			if tt.wantWarns > 0 && result.Warns < tt.wantWarns {
				t.Errorf("got %d warnings, want at least %d\nIssues: %s",
					result.Warns, tt.wantWarns, result.FormatIssues(true))
			}
		})
	}
}

func TestLinterBuiltinCatalogs(t *testing.T) {
	linter := NewLinter()

	result, err := linter.LintBuiltin()
	if err != nil {
		t.Fatalf("Failed to lint builtin catalogs: %v", err)
	}

	if result.Errors > 0 {
		t.Errorf("Builtin catalogs have %d errors:\n%s", result.Errors, result.FormatIssues(true))
	}

	if result.Warns > 0 {
		t.Logf("Builtin catalogs have %d warnings:\n%s", result.Warns, result.FormatIssues(false))
	}
}

func TestLinterLintFile(t *testing.T) {
	linter := NewLinter()

	t.Run("missing file", func(t *testing.T) {
		if _, err := linter.LintFile("/nonexistent/catalog.yaml"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

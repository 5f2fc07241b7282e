package patterns

import (
	"regexp"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// Pattern sources
const (
	SourceBuiltin = "builtin"
	SourceUser    = "user"
	SourceCLI     = "cli"
)

// Set identifies a pattern set: the shared base set or one of the
// per-component-type extension sets.
type Set string

const (
	SetBase   Set = "base"
	SetMCP    Set = "mcp"
	SetHook   Set = "hook"
	SetSkill  Set = "skill"
	SetConfig Set = "config"
)

// ValidSets lists all pattern sets in catalog order.
var ValidSets = []Set{SetBase, SetMCP, SetHook, SetSkill, SetConfig}

// Valid reports whether s is a known pattern set.
func (s Set) Valid() bool {
	for _, v := range ValidSets {
		if s == v {
			return true
		}
	}
	return false
}

// Definition is one indicator pattern as authored in a catalog file.
// Definitions are immutable once loaded; scanners share them read-only.
type Definition struct {
	ID          string         `yaml:"id" json:"id" validate:"required,max=64"`
	Category    types.Category `yaml:"category" json:"category" validate:"required"`
	Severity    types.Severity `yaml:"severity" json:"severity" validate:"required"`
	Pattern     string         `yaml:"pattern" json:"pattern" validate:"required,max=4096"`
	Description string         `yaml:"description" json:"description" validate:"required,max=300"`

	// Runtime fields
	Source   string `yaml:"-" json:"source,omitempty"`
	FilePath string `yaml:"-" json:"file_path,omitempty"`
}

// Compiled pairs a definition with its compiled expression.
// Compilation happens once at registry insert; matching never re-compiles.
type Compiled struct {
	Definition
	Regexp *regexp.Regexp
}

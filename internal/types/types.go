// Package types defines common type-safe enums used across the codebase.
package types

import "strings"

// Category classifies what an indicator pattern is looking for.
type Category string

const (
	// CategoryExfiltration covers patterns that move data off the machine.
	CategoryExfiltration Category = "EXFILTRATION"
	// CategoryPromptInjection covers instruction-override and jailbreak phrasing.
	CategoryPromptInjection Category = "PROMPT_INJECTION"
	// CategorySensitiveAccess covers reads of credentials, keys, and secret stores.
	CategorySensitiveAccess Category = "SENSITIVE_ACCESS"
	// CategoryStealth covers obfuscation and hidden-content techniques.
	CategoryStealth Category = "STEALTH"
)

// ValidCategories is the set of categories accepted in pattern definitions.
var ValidCategories = map[Category]bool{
	CategoryExfiltration:    true,
	CategoryPromptInjection: true,
	CategorySensitiveAccess: true,
	CategoryStealth:         true,
}

// Valid returns true if the Category is a known valid value.
func (c Category) Valid() bool {
	return ValidCategories[c]
}

// Severity grades how dangerous a matched indicator is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ValidSeverities is the set of severities accepted in pattern definitions.
var ValidSeverities = map[Severity]bool{
	SeverityCritical: true,
	SeverityHigh:     true,
	SeverityMedium:   true,
	SeverityLow:      true,
}

// Valid returns true if the Severity is a known valid value.
func (s Severity) Valid() bool {
	return ValidSeverities[s]
}

// Rank orders severities for sorting, critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// ComponentType labels a discovered unit of installed tool surface.
type ComponentType string

const (
	ComponentMCPServer  ComponentType = "mcpServer"
	ComponentHook       ComponentType = "hook"
	ComponentSkill      ComponentType = "skill"
	ComponentConfig     ComponentType = "config"
	ComponentPlugin     ComponentType = "plugin"
	ComponentExecutable ComponentType = "executable"
)

// Valid returns true if the ComponentType is a known valid value.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentMCPServer, ComponentHook, ComponentSkill,
		ComponentConfig, ComponentPlugin, ComponentExecutable:
		return true
	}
	return false
}

// Matches reports whether this type satisfies a user-supplied filter string.
// The filter matches on type substring with singular/plural folding, so
// "hooks" matches hook-typed components and vice versa.
func (t ComponentType) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	ty := strings.ToLower(string(t))
	singular := strings.TrimSuffix(f, "s")
	return strings.Contains(ty, f) || strings.Contains(ty, singular)
}

// FileErrorKind classifies why a candidate file could not be scanned.
type FileErrorKind string

const (
	// FileErrPermission marks access-denied reads.
	FileErrPermission FileErrorKind = "permission"
	// FileErrBinary marks binary files skipped before reading. A skip, not a failure.
	FileErrBinary FileErrorKind = "binary"
	// FileErrSize marks files over the size ceiling.
	FileErrSize FileErrorKind = "size"
	// FileErrRead marks any other read failure.
	FileErrRead FileErrorKind = "read"
	// FileErrEncoding marks files whose content is not valid UTF-8 text.
	FileErrEncoding FileErrorKind = "encoding"
)

// Valid returns true if the FileErrorKind is a known valid value.
func (k FileErrorKind) Valid() bool {
	switch k {
	case FileErrPermission, FileErrBinary, FileErrSize, FileErrRead, FileErrEncoding:
		return true
	}
	return false
}

// FailureKind classifies why a detector produced no result.
type FailureKind string

const (
	// FailureTimeout marks a detector that exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureError marks a detector that returned an error or panicked.
	FailureError FailureKind = "error"
	// FailureLoad marks a detector that failed its structural validity check.
	FailureLoad FailureKind = "load-error"
)

// Valid returns true if the FailureKind is a known valid value.
func (k FailureKind) Valid() bool {
	return k == FailureTimeout || k == FailureError || k == FailureLoad
}

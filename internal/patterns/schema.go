package patterns

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance
var validate = validator.New()

// Catalog is the top-level YAML structure of one pattern file.
type Catalog struct {
	Version  int          `yaml:"version" json:"version" validate:"required,eq=1"`
	Set      Set          `yaml:"set" json:"set" validate:"required"`
	Patterns []Definition `yaml:"patterns" json:"patterns" validate:"required,min=1,dive"`
}

// Validate checks the catalog for structural and semantic errors.
// All problems are collected into a single numbered error.
func (c *Catalog) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				errs = append(errs, translateFieldError(verr))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if c.Set != "" && !c.Set.Valid() {
		errs = append(errs, fmt.Sprintf("unknown set %q (valid: %s)", c.Set, joinSets(ValidSets)))
	}

	ids := make(map[string]bool)
	for i, def := range c.Patterns {
		if def.Category != "" && !def.Category.Valid() {
			errs = append(errs, fmt.Sprintf("pattern[%d] %q: unknown category %q", i, def.ID, def.Category))
		}
		if def.Severity != "" && !def.Severity.Valid() {
			errs = append(errs, fmt.Sprintf("pattern[%d] %q: unknown severity %q", i, def.ID, def.Severity))
		}
		if def.ID != "" {
			if ids[def.ID] {
				errs = append(errs, fmt.Sprintf("pattern[%d]: duplicate id %q", i, def.ID))
			}
			ids[def.ID] = true
		}
	}

	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return fmt.Errorf("%s", errs[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:", len(errs)))
	for i, msg := range errs {
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, msg))
	}
	return fmt.Errorf("%s", sb.String())
}

// translateFieldError converts a validator error into a readable message.
func translateFieldError(err validator.FieldError) string {
	field := err.Namespace()
	// Strip the leading "Catalog." for readability
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "eq":
		return fmt.Sprintf("%s must be %s", field, err.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, err.Param())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", field, err.Param())
	default:
		return fmt.Sprintf("%s: %s", field, err.Tag())
	}
}

func joinSets(sets []Set) string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

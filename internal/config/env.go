package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides holds configuration overridable from the environment.
// Every field maps to an AIGUARD_-prefixed variable (AIGUARD_LOG_LEVEL,
// AIGUARD_NO_COLOR, ...). Pointer fields distinguish "unset" from an
// explicit false/zero.
type envOverrides struct {
	LogLevel      string `split_words:"true"`
	NoColor       *bool  `split_words:"true"`
	PatternsDir   string `split_words:"true"`
	DetectTimeout *int   `split_words:"true"`
	NoAnalyzer    *bool  `split_words:"true"`
}

// ApplyEnv overlays AIGUARD_* environment variables onto the config.
// Environment wins over the file; CLI flags are applied after this and
// win over both.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := envconfig.Process("aiguard", &o); err != nil {
		return fmt.Errorf("failed to read AIGUARD_* environment overrides: %w", err)
	}

	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.NoColor != nil {
		c.Log.NoColor = *o.NoColor
	}
	if o.PatternsDir != "" {
		c.Patterns.UserDir = o.PatternsDir
	}
	if o.DetectTimeout != nil {
		c.Detect.Timeout = *o.DetectTimeout
	}
	if o.NoAnalyzer != nil {
		c.Scan.Analyzer = !*o.NoAnalyzer
	}

	return nil
}

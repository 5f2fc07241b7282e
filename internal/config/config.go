package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/logger"
)

var cfgLog = logger.New("config")

// Config represents the aiguard configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Patterns PatternsConfig `yaml:"patterns"`
	Scan     ScanConfig     `yaml:"scan"`
	Detect   DetectConfig   `yaml:"detect"`
	Server   ServerConfig   `yaml:"server"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	NoColor bool   `yaml:"no_color"`
}

// PatternsConfig holds pattern catalog settings
type PatternsConfig struct {
	// UserDir is the directory for user pattern files (default: ~/.aiguard/patterns.d)
	UserDir        string `yaml:"user_dir"`
	DisableBuiltin bool   `yaml:"disable_builtin"` // disable embedded builtin patterns
	Watch          bool   `yaml:"watch"`           // enable file watching for hot reload (serve mode)
}

// ScanConfig holds file scanning settings
type ScanConfig struct {
	// MaxDepth bounds directory recursion below each component root.
	MaxDepth int `yaml:"max_depth"`
	// Excludes are additional glob patterns skipped during the walk,
	// on top of the built-in exclusion set.
	Excludes []string `yaml:"excludes"`
	// Analyzer toggles the heuristic script analyzer for JS/TS files.
	Analyzer bool `yaml:"analyzer"`
}

// DetectConfig holds ecosystem detection settings
type DetectConfig struct {
	// Timeout in seconds for each detector run
	Timeout int `yaml:"timeout"`
}

// ServerConfig holds serve-mode settings
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Dir returns the aiguard home directory (~/.aiguard).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aiguard"
	}
	return filepath.Join(home, ".aiguard")
}

// DefaultConfigPath returns the default config file path (~/.aiguard/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".aiguard", "config.yaml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			NoColor: false,
		},
		Patterns: PatternsConfig{
			UserDir:        "", // empty means use default ~/.aiguard/patterns.d
			DisableBuiltin: false,
			Watch:          true,
		},
		Scan: ScanConfig{
			MaxDepth: 6,
			Analyzer: true,
		},
		Detect: DetectConfig{
			Timeout: 30,
		},
		Server: ServerConfig{
			Port: 8787,
		},
	}
}

// Validate checks all Config fields and returns a multi-error report.
// Call this AFTER CLI overrides have been applied, not during Load().
func (c *Config) Validate() error {
	var errs []string

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level: %v", err))
	}

	if c.Scan.MaxDepth < 1 {
		errs = append(errs, fmt.Sprintf("scan.max_depth: must be >= 1 (got %d)", c.Scan.MaxDepth))
	}
	for _, pattern := range c.Scan.Excludes {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Sprintf("scan.excludes: bad glob %q: %v", pattern, err))
		}
	}

	// 0 means no per-detector deadline
	if c.Detect.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("detect.timeout: must be >= 0 (got %d)", c.Detect.Timeout))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: must be 1-65535 (got %d)", c.Server.Port))
	}

	if len(errs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for i, e := range errs {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, e)
	}
	return errors.New(sb.String())
}

// isUnknownFieldError returns true if the error is from yaml.Decoder.KnownFields(true)
// detecting an unrecognized key (e.g. typo like "paterns:").
func isUnknownFieldError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found in type")
}

// Load loads configuration from a YAML file.
// Note: Load does NOT call Validate(). Callers should apply environment and
// CLI overrides first, then call cfg.Validate() themselves.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Try strict decode to warn about unknown fields (typos like "paterns:")
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if isUnknownFieldError(err) {
			cfgLog.Warn("config has unknown fields (ignored): %v", err)
			// Re-parse without strict mode for forward compatibility
			cfg = DefaultConfig()
			if err2 := yaml.Unmarshal(data, cfg); err2 != nil {
				return nil, fmt.Errorf("config parse error: %w", err2)
			}
		} else {
			return nil, fmt.Errorf("config parse error: %w", err)
		}
	}

	return cfg, nil
}

package patterns

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// FileCatalog is one parsed catalog file, kept per-file so user overlay
// loading can skip a bad file without discarding the rest.
type FileCatalog struct {
	Path     string
	Set      Set
	Patterns []Definition
}

// Loader reads pattern catalogs from the embedded filesystem and the
// user overlay directory.
type Loader struct {
	userDir string
}

// NewLoader creates a new catalog loader.
func NewLoader(userDir string) *Loader {
	return &Loader{
		userDir: userDir,
	}
}

// DefaultUserPatternsDir returns the default user pattern overlay directory.
func DefaultUserPatternsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aiguard/patterns.d"
	}
	return filepath.Join(home, ".aiguard", "patterns.d")
}

// LoadBuiltin loads all embedded builtin catalogs. Any failure here is
// fatal: the builtin catalog ships with the binary and must be sound.
func (l *Loader) LoadBuiltin() ([]FileCatalog, error) {
	var catalogs []FileCatalog

	log.Trace("Loading builtin pattern catalogs from embedded filesystem")

	err := fs.WalkDir(builtinFS, "builtin", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}

		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		fc, err := l.parseCatalog(data, path, SourceBuiltin)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		log.Trace("  Loaded %d patterns from %s (set=%s)", len(fc.Patterns), path, fc.Set)
		catalogs = append(catalogs, fc)
		return nil
	})

	if err != nil {
		return nil, err
	}

	total := 0
	for _, fc := range catalogs {
		total += len(fc.Patterns)
	}
	log.Trace("Total builtin patterns loaded: %d across %d catalogs", total, len(catalogs))
	return catalogs, nil
}

// LoadUser loads catalogs from the user overlay directory. A file that
// fails to parse or validate is warned about and skipped; the rest of
// the overlay still loads.
func (l *Loader) LoadUser() ([]FileCatalog, error) {
	if l.userDir == "" {
		log.Trace("User patterns directory not configured, skipping")
		return nil, nil
	}

	log.Trace("Loading user pattern catalogs from: %s", l.userDir)

	entries, err := os.ReadDir(l.userDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Trace("  User patterns directory does not exist")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read patterns directory: %w", err)
	}

	var catalogs []FileCatalog

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(l.userDir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Failed to read pattern file %s: %v", path, err)
			continue
		}

		fc, err := l.parseCatalog(data, path, SourceUser)
		if err != nil {
			log.Warn("Failed to parse pattern file %s: %v", path, err)
			continue
		}

		log.Trace("  Loaded %d patterns from %s (set=%s)", len(fc.Patterns), entry.Name(), fc.Set)
		catalogs = append(catalogs, fc)
	}

	return catalogs, nil
}

// ValidateFile validates a single catalog file without loading it into
// a registry. Used by lint.
func (l *Loader) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	_, err = l.parseCatalog(data, path, SourceCLI)
	return err
}

// ValidateYAML validates catalog YAML content.
func (l *Loader) ValidateYAML(data []byte) error {
	_, err := l.parseCatalog(data, "inline", SourceCLI)
	return err
}

// ListUserFiles returns the catalog files present in the user directory.
func (l *Loader) ListUserFiles() ([]string, error) {
	entries, err := os.ReadDir(l.userDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// UserDir returns the configured user patterns directory.
func (l *Loader) UserDir() string {
	return l.userDir
}

// parseCatalog parses and validates one catalog file.
func (l *Loader) parseCatalog(data []byte, path string, source string) (FileCatalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return FileCatalog{}, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := catalog.Validate(); err != nil {
		return FileCatalog{}, err
	}

	defs := catalog.Patterns
	for i := range defs {
		defs[i].Source = source
		defs[i].FilePath = path
	}

	return FileCatalog{
		Path:     path,
		Set:      catalog.Set,
		Patterns: defs,
	}, nil
}

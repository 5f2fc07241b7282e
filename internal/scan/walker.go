package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultMaxDepth bounds directory recursion below the scan root.
const DefaultMaxDepth = 6

// defaultExcludes are directory names never descended into. Conventional
// build output and VCS metadata hold nothing a tool installation would
// execute, and node_modules alone can dwarf the rest of the tree.
var defaultExcludes = []string{
	".git", ".hg", ".svn",
	".idea", ".vscode",
	"node_modules", "vendor",
	"dist", "build", "bin",
	"__pycache__", ".venv",
}

// defaultExtensions is the candidate allow-list: source, markup, shell,
// JSON, Markdown. Everything else is never read.
var defaultExtensions = []string{
	".js", ".mjs", ".cjs", ".ts",
	".py", ".rb",
	".sh", ".bash", ".zsh",
	".json", ".yaml", ".yml", ".toml",
	".md", ".txt",
}

// Walker enumerates candidate files under a root: depth-bounded,
// exclusion-aware, restricted to the extension allow-list.
type Walker struct {
	maxDepth   int
	excludes   []glob.Glob
	extensions map[string]bool
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithMaxDepth overrides the recursion depth bound.
func WithMaxDepth(depth int) WalkerOption {
	return func(w *Walker) {
		w.maxDepth = depth
	}
}

// WithExcludes replaces the directory exclusion patterns.
func WithExcludes(patterns []string) WalkerOption {
	return func(w *Walker) {
		w.excludes = compileExcludes(patterns)
	}
}

// WithExtensions replaces the extension allow-list.
func WithExtensions(exts []string) WalkerOption {
	return func(w *Walker) {
		w.extensions = extensionSet(exts)
	}
}

// NewWalker creates a walker with the default depth bound, exclusion
// set, and extension allow-list.
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		maxDepth:   DefaultMaxDepth,
		excludes:   compileExcludes(defaultExcludes),
		extensions: extensionSet(defaultExtensions),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func compileExcludes(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			log.Warn("Invalid exclude pattern %q: %v", p, err)
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

func extensionSet(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[strings.ToLower(e)] = true
	}
	return m
}

// Walk returns candidate file paths under root in lexical order. The
// root has tilde and symlinks resolved before walking; entries below it
// are returned as found, symlinks unresolved (the scanner resolves them
// per file).
func (w *Walker) Walk(root string) ([]string, error) {
	root = ExpandTilde(root)

	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", root, err)
	}

	// A single-file root bypasses enumeration but not the allow-list
	if !info.IsDir() {
		if w.allowed(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, the rest of the walk continues
			log.Debug("Skipping unreadable entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if w.excluded(d.Name()) {
				return filepath.SkipDir
			}
			if w.depth(root, path) >= w.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if w.allowed(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

func (w *Walker) excluded(name string) bool {
	for _, g := range w.excludes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (w *Walker) allowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return w.extensions[ext]
}

// depth counts directory levels of path below root.
func (w *Walker) depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// ExpandTilde resolves a leading ~/ against the current home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

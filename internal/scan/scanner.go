package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/logger"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

var log = logger.New("scan")

// MaxFileSize is the content ceiling for a single candidate file.
// Files above it are recorded as skipped, never read.
const MaxFileSize = 10 * 1024 * 1024

// FileError records why one candidate file was not scanned.
type FileError struct {
	FilePath string              `json:"file_path"`
	Kind     types.FileErrorKind `json:"kind"`
	Message  string              `json:"message"`
}

// Stats counts scan outcomes for one directory scan.
// FilesScanned + FilesSkipped always equals the number of candidates
// the walker produced.
type Stats struct {
	FilesScanned       int `json:"files_scanned"`
	FilesSkipped       int `json:"files_skipped"`
	BinaryFilesSkipped int `json:"binary_files_skipped"`
	LargeFilesSkipped  int `json:"large_files_skipped"`
	PermissionErrors   int `json:"permission_errors"`
}

// Add accumulates another scan's counters into s.
func (s *Stats) Add(o Stats) {
	s.FilesScanned += o.FilesScanned
	s.FilesSkipped += o.FilesSkipped
	s.BinaryFilesSkipped += o.BinaryFilesSkipped
	s.LargeFilesSkipped += o.LargeFilesSkipped
	s.PermissionErrors += o.PermissionErrors
}

// Summary is the full outcome of one directory scan. Results holds
// only files with at least one match; clean files appear solely in
// Stats.FilesScanned.
type Summary struct {
	Results []Result    `json:"results"`
	Errors  []FileError `json:"errors"`
	Stats   Stats       `json:"stats"`
}

// TotalMatches sums match counts across all results.
func (s *Summary) TotalMatches() int {
	total := 0
	for _, r := range s.Results {
		total += len(r.Matches)
	}
	return total
}

// Scanner runs the matcher over every candidate file under a root,
// gating each file on binary content, size, and readability. A scanner
// owns its resolved pattern list and holds no scan state, so one
// instance is safe to reuse across directories and goroutines.
type Scanner struct {
	matcher  *Matcher
	walker   *Walker
	analyzer Analyzer
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithWalker replaces the default directory walker.
func WithWalker(w *Walker) ScannerOption {
	return func(s *Scanner) { s.walker = w }
}

// WithAnalyzer attaches a secondary analyzer for script files. Its
// findings are merged into the same result as the pattern matches.
func WithAnalyzer(a Analyzer) ScannerOption {
	return func(s *Scanner) { s.analyzer = a }
}

// NewScanner creates a scanner over a resolved pattern list.
func NewScanner(list []patterns.Compiled, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		matcher: NewMatcher(list),
		walker:  NewWalker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Matcher exposes the scanner's line matcher.
func (s *Scanner) Matcher() *Matcher {
	return s.matcher
}

// ScanDirectory scans every candidate file under root and returns the
// results for files with matches.
func (s *Scanner) ScanDirectory(root string) ([]Result, error) {
	sum, err := s.ScanDirectoryWithSummary(root)
	if err != nil {
		return nil, err
	}
	return sum.Results, nil
}

// ScanDirectoryWithSummary scans every candidate file under root and
// returns results plus per-file errors and counters. Per-file problems
// are captured in the summary; only a failure to enumerate candidates
// at all returns an error.
func (s *Scanner) ScanDirectoryWithSummary(root string) (*Summary, error) {
	files, err := s.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", root, err)
	}

	sum := &Summary{Results: []Result{}, Errors: []FileError{}}
	for _, path := range files {
		s.scanCandidate(path, sum)
	}

	m := GetMetrics()
	m.DirectoryScans.Add(1)
	m.FilesScanned.Add(int64(sum.Stats.FilesScanned))
	m.FilesSkipped.Add(int64(sum.Stats.FilesSkipped))
	m.MatchesFound.Add(int64(sum.TotalMatches()))

	log.Debug("Scanned %s: %d files, %d skipped, %d matches",
		root, sum.Stats.FilesScanned, sum.Stats.FilesSkipped, sum.TotalMatches())
	return sum, nil
}

// scanCandidate runs one file through the safety gates and, if it
// passes, the matcher. Content is read from the symlink-resolved path;
// every recorded path is the original one the walker produced.
func (s *Scanner) scanCandidate(path string, sum *Summary) {
	resolved := path
	if r, err := filepath.EvalSymlinks(path); err == nil {
		resolved = r
	}

	if IsBinary(resolved) {
		sum.skip(path, types.FileErrBinary, "binary content")
		sum.Stats.BinaryFilesSkipped++
		return
	}

	if info, err := os.Stat(resolved); err == nil && info.Size() > MaxFileSize {
		sum.skip(path, types.FileErrSize, fmt.Sprintf("file is %.1f MB, limit is %d MB",
			float64(info.Size())/(1024*1024), MaxFileSize/(1024*1024)))
		sum.Stats.LargeFilesSkipped++
		return
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrPermission):
			sum.skip(path, types.FileErrPermission, "permission denied")
			sum.Stats.PermissionErrors++
		case errors.Is(err, syscall.EISDIR):
			sum.Stats.FilesSkipped++
		default:
			sum.skip(path, types.FileErrRead, err.Error())
		}
		return
	}

	if !utf8.Valid(data) {
		sum.skip(path, types.FileErrEncoding, "content is not valid UTF-8 text")
		return
	}

	content := string(data)
	result := s.matcher.ScanFile(path, content)
	if s.analyzer != nil && IsScriptExt(path) {
		result.Matches = append(result.Matches, s.analyzeScript(path, content)...)
	}

	sum.Stats.FilesScanned++
	if len(result.Matches) > 0 {
		sum.Results = append(sum.Results, result)
	}
}

// analyzeScript runs the attached analyzer and converts its warnings
// into matches. A warning with an untranslatable severity is logged
// and dropped rather than failing the file.
func (s *Scanner) analyzeScript(path, content string) []Match {
	warnings, err := s.analyzer.Analyze(content)
	if err != nil {
		log.Warn("Static analysis failed for %s: %v", path, err)
		return nil
	}
	if len(warnings) == 0 {
		return nil
	}

	lines := SplitLines(content)
	var out []Match
	for _, w := range warnings {
		sev, err := TranslateSeverity(w.Severity)
		if err != nil {
			log.Warn("Dropping analyzer warning %q for %s: %v", w.Kind, path, err)
			continue
		}
		m := Match{
			ID:          "ast:" + w.Kind,
			Category:    AnalyzerCategory,
			Severity:    sev,
			Description: w.Describe(),
			Line:        w.Line,
			MatchedText: TruncateText(strings.TrimSpace(w.Snippet), MaxMatchedText),
		}
		if i := w.Line - 1; i >= 0 && i < len(lines) {
			if m.MatchedText == "" {
				m.MatchedText = TruncateText(strings.TrimSpace(lines[i]), MaxMatchedText)
			}
			m.ContextBefore = contextBefore(lines, i)
			m.ContextAfter = contextAfter(lines, i)
		}
		out = append(out, m)
	}
	return out
}

func (sum *Summary) skip(path string, kind types.FileErrorKind, msg string) {
	sum.Errors = append(sum.Errors, FileError{FilePath: path, Kind: kind, Message: msg})
	sum.Stats.FilesSkipped++
}

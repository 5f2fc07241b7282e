// Package report turns scan outcomes into terminal, JSON, and file
// output. The terminal renderer degrades to plain text when styling
// is off; the JSON shape is identical in both modes.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/detect"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/scan"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/types"
)

// Renderer writes human-readable scan reports to a single writer.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render writes the full report: one section per detected ecosystem,
// detector failures, and a summary footer.
func (r *Renderer) Render(rep *detect.ScanReport, failures []detect.DetectorFailure) error {
	r.renderHeader(rep)

	for _, eco := range sortedEcosystems(rep) {
		r.renderEcosystem(rep.EcosystemReports[eco])
	}

	r.renderFailures(failures)
	r.renderFooter(rep, failures)
	return nil
}

func sortedEcosystems(rep *detect.ScanReport) []string {
	names := make([]string, 0, len(rep.EcosystemReports))
	for eco := range rep.EcosystemReports {
		names = append(names, eco)
	}
	sort.Strings(names)
	return names
}

func (r *Renderer) renderHeader(rep *detect.ScanReport) {
	ts := rep.Timestamp.Format("2006-01-02 15:04:05 MST")
	if tui.IsPlainMode() {
		fmt.Fprintf(r.out, "aiguard scan report  %s\n\n", ts)
		return
	}
	fmt.Fprintf(r.out, "%s %s  %s\n\n",
		tui.StyleTitle.Render(tui.IconShield+" aiguard"),
		tui.StyleSubtitle.Render("scan report"),
		tui.Faint(ts))
}

func (r *Renderer) renderEcosystem(er detect.EcosystemReport) {
	var sb strings.Builder

	if tui.IsPlainMode() {
		fmt.Fprintf(&sb, "=== %s: %s ===\n", er.Ecosystem, issueCount(er.TotalIssues))
	} else {
		title := tui.StyleBold.Render(er.Ecosystem)
		count := tui.StyleMuted.Render(issueCount(er.TotalIssues))
		if er.TotalIssues > 0 {
			count = tui.StyleWarning.Render(tui.IconBolt + " " + issueCount(er.TotalIssues))
		}
		fmt.Fprintf(&sb, "%s  %s\n", title, count)
	}

	if er.TotalIssues == 0 {
		if tui.IsPlainMode() {
			fmt.Fprintf(&sb, "  all %d scanned files clean\n", er.Stats.FilesScanned)
		} else {
			fmt.Fprintf(&sb, "%s %s\n", tui.StyleSuccess.Render(tui.IconCheck),
				tui.Faint(fmt.Sprintf("all %d scanned files clean", er.Stats.FilesScanned)))
		}
	}

	for _, key := range sortedComponents(er) {
		r.renderComponent(&sb, key, er.ComponentScans[key])
	}

	if tui.IsPlainMode() {
		fmt.Fprint(r.out, sb.String()+"\n")
		return
	}
	fmt.Fprint(r.out, tui.StyleBox.Render(strings.TrimRight(sb.String(), "\n"))+"\n\n")
}

func sortedComponents(er detect.EcosystemReport) []string {
	keys := make([]string, 0, len(er.ComponentScans))
	for key := range er.ComponentScans {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Renderer) renderComponent(sb *strings.Builder, key string, results []scan.Result) {
	if tui.IsPlainMode() {
		fmt.Fprintf(sb, "\n%s\n", key)
	} else {
		fmt.Fprintf(sb, "\n%s %s\n", tui.StyleAccent.Render(tui.IconDot), tui.StyleBold.Render(key))
	}

	for _, res := range results {
		if tui.IsPlainMode() {
			fmt.Fprintf(sb, "  %s\n", res.FilePath)
		} else {
			path := res.FilePath
			if filepath.IsAbs(path) {
				path = tui.Hyperlink("file://"+path, path)
			}
			fmt.Fprintf(sb, "  %s\n", tui.Faint(path))
		}
		for _, m := range res.Matches {
			r.renderMatch(sb, m)
		}
	}
}

func (r *Renderer) renderMatch(sb *strings.Builder, m scan.Match) {
	if tui.IsPlainMode() {
		fmt.Fprintf(sb, "    [%s] %s (%s) %s\n",
			strings.ToUpper(string(m.Severity)), m.ID, m.Category, m.Description)
	} else {
		fmt.Fprintf(sb, "    %s %s %s\n",
			tui.SeverityBadge(string(m.Severity)),
			tui.StyleBold.Render(m.ID),
			tui.Faint(string(m.Category)))
		fmt.Fprintf(sb, "    %s\n", m.Description)
	}
	r.renderContext(sb, m)
}

// renderContext prints the matched line inside its captured context with
// a line-number gutter. The matched line gets a marker; context is faint.
func (r *Renderer) renderContext(sb *strings.Builder, m scan.Match) {
	width := len(fmt.Sprint(m.Line + len(m.ContextAfter)))

	bar, mark := "|", ">"
	dim := func(s string) string { return s }
	if !tui.IsPlainMode() {
		bar = tui.StyleMuted.Render("│")
		mark = tui.StyleError.Render("▸")
		dim = tui.Faint
	}

	line := func(marker string, n int, text string) {
		fmt.Fprintf(sb, "    %s %*d %s %s\n", marker, width, n, bar, text)
	}

	for i, ctx := range m.ContextBefore {
		line(" ", m.Line-len(m.ContextBefore)+i, dim(DisplayText(ctx)))
	}
	line(mark, m.Line, DisplayText(m.MatchedText))
	for i, ctx := range m.ContextAfter {
		line(" ", m.Line+1+i, dim(DisplayText(ctx)))
	}
}

func (r *Renderer) renderFailures(failures []detect.DetectorFailure) {
	if len(failures) == 0 {
		return
	}

	if tui.IsPlainMode() {
		fmt.Fprintf(r.out, "detector failures (%d)\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(r.out, "  [%s] %s: %s\n", f.Kind, f.DetectorName, f.Error)
		}
		fmt.Fprintln(r.out)
		return
	}

	fmt.Fprintln(r.out, tui.Separator("detector failures"))
	for _, f := range failures {
		style := tui.StyleError
		if f.Kind == types.FailureTimeout {
			style = tui.StyleWarning
		}
		fmt.Fprintf(r.out, "  %s %s %s %s\n",
			style.Render(tui.IconWarning),
			tui.StyleBold.Render(f.DetectorName),
			tui.Faint("("+string(f.Kind)+")"),
			f.Error)
	}
	fmt.Fprintln(r.out)
}

func (r *Renderer) renderFooter(rep *detect.ScanReport, failures []detect.DetectorFailure) {
	parts := []string{
		fmt.Sprintf("%d ecosystems", len(rep.EcosystemReports)),
		issueCount(rep.TotalIssues),
		fmt.Sprintf("%d files scanned", rep.Stats.FilesScanned),
	}
	if rep.Stats.FilesSkipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", rep.Stats.FilesSkipped))
	}
	if len(failures) > 0 {
		parts = append(parts, fmt.Sprintf("%d detector failures", len(failures)))
	}

	if tui.IsPlainMode() {
		fmt.Fprintf(r.out, "summary: %s\n", strings.Join(parts, ", "))
		return
	}

	line := strings.Join(parts, tui.StyleMuted.Render(" · "))
	if rep.TotalIssues == 0 && len(failures) == 0 {
		fmt.Fprintf(r.out, "%s %s  %s\n", tui.Prefix(), tui.StyleSuccess.Render(tui.IconCheck+" clean"), line)
	} else {
		fmt.Fprintf(r.out, "%s %s  %s\n", tui.Prefix(), tui.StyleWarning.Render(tui.IconBolt+" review needed"), line)
	}
}

func issueCount(n int) string {
	if n == 1 {
		return "1 issue"
	}
	return fmt.Sprintf("%d issues", n)
}

// DisplayText neutralizes matched text for terminal output: invisible
// Unicode becomes visible <U+XXXX> escapes and raw control bytes are
// rewritten the same way, so file content cannot restyle the report or
// hide from it.
func DisplayText(s string) string {
	s = patterns.AnnotateInvisible(s)
	if !strings.ContainsFunc(s, isRawControl) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	for _, r := range s {
		if isRawControl(r) {
			fmt.Fprintf(&sb, "<U+%04X>", r)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isRawControl(r rune) bool {
	return (r < 32 && r != '\t') || r == 0x7F
}

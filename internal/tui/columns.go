package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// AlignColumns renders two-column rows with the left column padded to
// the widest entry. Cells may already carry ANSI styling; width is
// measured with lipgloss.Width, so styled text aligns the same as
// plain text. indent prefixes every line, gap is the space count
// between columns.
func AlignColumns(rows [][2]string, indent string, gap int) string {
	if len(rows) == 0 {
		return ""
	}

	maxWidth := 0
	for _, row := range rows {
		if w := lipgloss.Width(row[0]); w > maxWidth {
			maxWidth = w
		}
	}

	gapStr := strings.Repeat(" ", gap)
	var sb strings.Builder
	for _, row := range rows {
		pad := maxWidth - lipgloss.Width(row[0])
		sb.WriteString(indent)
		sb.WriteString(row[0])
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(gapStr)
		sb.WriteString(row[1])
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Package overlay draws a popup over the main view, keeping the view visible
// around it.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Compose draws top over base. Blank cells at both ends of each top line
// leave the base visible; everything between replaces it. Both may be styled.
func Compose(base, top string, width int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(top, "\n") {
		if i >= len(baseLines) {
			break
		}
		start, end, ok := visible(line)
		if !ok {
			continue
		}

		under := baseLines[i]
		if w := ansi.StringWidth(under); w < width {
			under += strings.Repeat(" ", width-w)
		}
		out := ansi.Cut(under, 0, start) + ansi.Cut(line, start, end)
		if end < width {
			out += ansi.Cut(under, end, width)
		}
		baseLines[i] = out
	}
	return strings.Join(baseLines, "\n")
}

// visible returns the cell range between the first and last non-blank cell.
func visible(line string) (int, int, bool) {
	plain := ansi.Strip(line)
	trimmed := strings.TrimLeft(plain, " ")
	if strings.TrimSpace(trimmed) == "" {
		return 0, 0, false
	}
	start := len(plain) - len(trimmed) // leading spaces are one byte each
	end := start + ansi.StringWidth(strings.TrimRight(trimmed, " "))
	return start, end, true
}

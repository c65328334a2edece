package picker

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/ui/styles"
)

const maxVisibleResults = 15

func (m Model) popupWidth() int {
	w := m.width * 60 / 100
	if w < 40 {
		w = min(40, m.width-4)
	}
	return w
}

func (m Model) popupHeight() int {
	h := m.height * 50 / 100
	if h < 10 {
		h = min(10, m.height-2)
	}
	return h
}

func (m Model) visibleHeight() int {
	// border (2) + input line (1) + separator (1)
	h := max(m.popupHeight()-4, 1)
	return min(h, maxVisibleResults)
}

func (m Model) emptyMessage() string {
	if len(m.entries) == 0 {
		return "No searches yet"
	}
	return "No matches"
}

func formatLine(e history.Entry, innerW int, cursor bool) string {
	prefix := "  "
	if cursor {
		prefix = "> "
	}
	right := e.Kind.Title() + " · " + humanize.Time(e.SearchedAt)
	if e.Results > 0 {
		right = humanize.Comma(int64(e.Results)) + " results · " + right
	}

	availW := innerW - 4
	rightW := ansi.StringWidth(right)
	left := ansi.Truncate(e.Query, max(availW-rightW-2, 1), "…")
	gap := max(1, availW-ansi.StringWidth(left)-rightW)
	return prefix + left + strings.Repeat(" ", gap) + styles.T().S().Subtle.Render(right)
}

// View renders the popup centered in the terminal.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	s := styles.T().S()
	innerW := m.popupWidth() - 2

	input := s.Base.Render("history> " + m.query)
	separator := s.Subtle.Render(strings.Repeat("─", innerW))

	visible := m.visibleHeight()
	var lines []string
	if len(m.matches) == 0 {
		lines = append(lines, s.Subtle.Render(m.emptyMessage()))
	} else {
		end := min(m.offset+visible, len(m.matches))
		for i := m.offset; i < end; i++ {
			line := formatLine(m.entries[m.matches[i].Index], innerW, i == m.cursor)
			if i == m.cursor {
				line = s.Cursor.Render(line)
			}
			lines = append(lines, line)
		}
	}
	for len(lines) < visible {
		lines = append(lines, "")
	}

	content := input + "\n" + separator + "\n" + strings.Join(lines, "\n")
	box := styles.PanelStyle(true).Width(innerW).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// Package headerbar renders a one-line bar of labelled segments with one
// highlighted: the entity type selector and the result tabs.
package headerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/llehouerou/mbrowse/internal/ui/render"
	"github.com/llehouerou/mbrowse/internal/ui/styles"
)

// Height is the fixed height of a bar.
const Height = 1

const maxNameWidth = 24

// Item is one segment. Key, when set, is shown before the name.
type Item struct {
	Key  string
	Name string
}

func separator() string {
	return styles.T().S().Subtle.Render("│")
}

func renderItem(it Item, active bool) string {
	s := styles.T().S()
	name := render.Truncate(it.Name, maxNameWidth)
	style := s.Tab
	if active {
		style = s.TabActive
	}
	if it.Key == "" {
		return style.Render(name)
	}
	return style.Render(s.Key.Render(it.Key) + " " + name)
}

// Render lays out items after prefix within width cells. When they do not
// fit, leading items are dropped until the active one is visible.
func Render(prefix string, items []Item, active, width int) string {
	if width <= 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = renderItem(it, i == active)
	}

	avail := width - lipgloss.Width(prefix)
	start := 0
	if active >= 0 && active < len(parts) {
		for start < active && lipgloss.Width(join(parts[start:active+1])) > avail {
			start++
		}
	}

	line := join(parts[start:])
	if start > 0 {
		line = styles.T().S().Subtle.Render("‹") + line
	}
	return ansi.Truncate(prefix+line, width, "›")
}

func join(parts []string) string {
	return strings.Join(parts, separator())
}

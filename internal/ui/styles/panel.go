package styles

import "github.com/charmbracelet/lipgloss"

// PanelStyle returns the bordered style of a pane based on focus state.
func PanelStyle(focused bool) lipgloss.Style {
	t := T()
	border := t.Border
	if focused {
		border = t.BorderFocus
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

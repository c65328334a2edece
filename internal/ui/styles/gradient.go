package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Banner renders the application title in bold, blending each grapheme
// from the primary to the secondary color.
func Banner(text string) string {
	t := T()
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}

	var b strings.Builder
	for i, c := range clusters {
		pos := 0.0
		if len(clusters) > 1 {
			pos = float64(i) / float64(len(clusters)-1)
		}
		b.WriteString(lipgloss.NewStyle().
			Bold(true).
			Foreground(blend(t.Primary, t.Secondary, pos)).
			Render(c))
	}
	return b.String()
}

// ScoreStyle colors a search score from 0 to 100, fading from the muted
// foreground to the success color.
func ScoreStyle(score int) lipgloss.Style {
	t := T()
	pos := float64(min(max(score, 0), 100)) / 100
	return lipgloss.NewStyle().Foreground(blend(t.FgMuted, t.Success, pos))
}

// blend mixes two hex colors in HCL space. Non-hex colors (ANSI indexes)
// are returned unchanged.
func blend(from, to lipgloss.Color, pos float64) lipgloss.Color {
	switch {
	case pos <= 0:
		return from
	case pos >= 1:
		return to
	}
	c1, err1 := colorful.Hex(string(from))
	c2, err2 := colorful.Hex(string(to))
	if err1 != nil || err2 != nil {
		if pos < 0.5 {
			return from
		}
		return to
	}
	return lipgloss.Color(c1.BlendHcl(c2, pos).Clamped().Hex())
}

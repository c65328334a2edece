package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestBanner_KeepsText(t *testing.T) {
	assert.Equal(t, "mbrowse", ansi.Strip(Banner("mbrowse")))
	assert.Equal(t, "", Banner(""))
}

func TestBlend(t *testing.T) {
	from := lipgloss.Color("#000000")
	to := lipgloss.Color("#ffffff")

	assert.Equal(t, from, blend(from, to, 0))
	assert.Equal(t, to, blend(from, to, 1))
	assert.NotEqual(t, from, blend(from, to, 0.5))
}

func TestBlend_ANSIColors(t *testing.T) {
	from := lipgloss.Color("1")
	to := lipgloss.Color("2")

	assert.Equal(t, from, blend(from, to, 0.2))
	assert.Equal(t, to, blend(from, to, 0.8))
}

func TestScoreStyle_Clamps(t *testing.T) {
	assert.Equal(t, ScoreStyle(100).GetForeground(), ScoreStyle(250).GetForeground())
	assert.Equal(t, ScoreStyle(0).GetForeground(), ScoreStyle(-5).GetForeground())
}

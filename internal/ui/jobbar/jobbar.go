// Package jobbar shows running work (searches, detail batches) above the
// status line, one line per job.
package jobbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mbrowse/internal/ui/render"
	"github.com/llehouerou/mbrowse/internal/ui/styles"
)

// BorderHeight is the height of the borders around the bar.
const BorderHeight = 2

// Height returns the rows taken by n active jobs.
func Height(n int) int {
	if n == 0 {
		return 0
	}
	return n + BorderHeight
}

// Job is one unit of running work.
type Job struct {
	ID      string
	Label   string
	Info    string // right-hand note for jobs without progress
	Current int
	Total   int // 0 if unknown
}

// HasProgress reports whether the job knows its total.
func (j Job) HasProgress() bool {
	return j.Total > 0
}

// Render draws jobs inside a panel of width cells. frame is the spinner
// frame shown in front of each job. It returns "" without jobs.
func Render(jobs []Job, frame string, width int) string {
	if len(jobs) == 0 {
		return ""
	}
	inner := width - 2

	lines := make([]string, len(jobs))
	for i, job := range jobs {
		if job.HasProgress() {
			lines[i] = renderProgress(job, frame, inner)
		} else {
			lines[i] = renderSpinner(job, frame, inner)
		}
	}
	return styles.PanelStyle(false).
		Width(inner).
		Render(strings.Join(lines, "\n"))
}

func barFilledStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(styles.T().Primary)
}

// renderProgress draws "⠋ Label  [━━━━────] 4/25".
func renderProgress(job Job, frame string, width int) string {
	s := styles.T().S()
	count := fmt.Sprintf("%d/%d", job.Current, job.Total)

	const minBar = 10
	fixed := 2 + 2 + 3 + lipgloss.Width(count) // frame, brackets, spacing, count
	labelW := max(width-fixed-minBar, 10)
	barW := max(width-labelW-fixed, minBar)

	ratio := min(float64(job.Current)/float64(job.Total), 1)
	filled := int(float64(barW) * ratio)

	var b strings.Builder
	b.WriteString(barFilledStyle().Render(render.TruncateAndPad(frame, 1)))
	b.WriteString(" ")
	b.WriteString(s.Title.Render(render.TruncateAndPad(job.Label, labelW)))
	b.WriteString("  [")
	b.WriteString(barFilledStyle().Render(strings.Repeat("━", filled)))
	b.WriteString(s.Subtle.Render(strings.Repeat("─", barW-filled)))
	b.WriteString("] ")
	b.WriteString(s.Muted.Render(count))
	return b.String()
}

// renderSpinner draws "⠋ Label            info".
func renderSpinner(job Job, frame string, width int) string {
	s := styles.T().S()
	infoW := lipgloss.Width(job.Info)
	labelW := max(width-2-2-infoW, 10)

	var b strings.Builder
	b.WriteString(barFilledStyle().Render(render.TruncateAndPad(frame, 1)))
	b.WriteString(" ")
	b.WriteString(s.Title.Render(render.TruncateAndPad(job.Label, labelW)))
	if job.Info != "" {
		b.WriteString("  ")
		b.WriteString(s.Muted.Render(job.Info))
	}
	return b.String()
}

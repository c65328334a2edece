package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/ui/headerbar"
	"github.com/llehouerou/mbrowse/internal/ui/jobbar"
	"github.com/llehouerou/mbrowse/internal/ui/layout"
	"github.com/llehouerou/mbrowse/internal/ui/overlay"
	"github.com/llehouerou/mbrowse/internal/ui/render"
	"github.com/llehouerou/mbrowse/internal/ui/styles"
)

const (
	headerHeight  = 2*headerbar.Height + 1 // kind bar, input, tab bar
	footerHeight  = 2                      // status, short help
	fullHelpExtra = 3
)

// layout sizes the panes to the window and the running jobs.
func (m *Model) layout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	footer := footerHeight
	if m.ShowHelp {
		footer += fullHelpExtra
	}
	jobs := len(m.jobs())
	content := layout.ContentHeight(m.Height, layout.ContentOpts{
		HeaderHeight: headerHeight,
		JobBarHeight: jobbar.Height(jobs),
		FooterHeight: footer,
	})
	m.panes = layout.Split(m.Width, content)
	m.laidOutJobs = jobs

	tw, th := layout.Inner(m.panes.TableWidth, m.panes.TableHeight)
	for _, tab := range m.Tabs {
		tab.resize(tw, th)
	}
	m.Detail.Width, m.Detail.Height = layout.Inner(m.panes.DetailWidth, m.panes.DetailHeight)
	m.Input.Width = max(m.Width-lipgloss.Width(m.Input.Prompt)-1, 10)
	m.Help.Width = m.Width
}

// jobs lists the work shown in the job bar.
func (m Model) jobs() []jobbar.Job {
	var jobs []jobbar.Job
	for _, tab := range m.Tabs {
		if tab.Pending {
			jobs = append(jobs, jobbar.Job{
				ID:    fmt.Sprintf("search-%d", tab.ID),
				Label: "Searching " + tab.Params.Kind.Plural() + ": " + tab.query(),
			})
		}
	}
	switch n := len(m.Loading); {
	case m.Progress.Total > 0:
		jobs = append(jobs, jobbar.Job{
			ID:      "details",
			Label:   "Loading details",
			Current: m.Progress.Loaded,
			Total:   m.Progress.Total,
		})
	case n > 0:
		jobs = append(jobs, jobbar.Job{
			ID:    "details",
			Label: "Loading details",
			Info:  fmt.Sprintf("%d pending", n),
		})
	}
	return jobs
}

// updateDetail renders the selected record into the detail pane.
func (m *Model) updateDetail() {
	s := styles.T().S()
	var content string
	switch tab := m.ActiveTab(); {
	case tab == nil && m.showIntro:
		content = introText()
	case tab == nil:
		content = ""
	case tab.Err != nil:
		content = s.Error.Render(render.Truncate(tab.Err.Error(), m.Detail.Width))
	case tab.Selected() == nil:
		content = s.Subtle.Render("No results")
	default:
		rec := tab.Selected()
		content = renderRecord(rec, m.Loading[rec.ID()], m.Detail.Width)
	}
	m.Detail.SetContent(content)
	m.Detail.GotoTop()
}

func introText() string {
	s := styles.T().S()
	return strings.Join([]string{
		s.Title.Render("Welcome to mbrowse"),
		"",
		s.Muted.Render("Type a query and press enter to search MusicBrainz."),
		s.Muted.Render("ctrl+t changes the entity type, ctrl+r recalls a past search."),
		s.Muted.Render("Details load in the background as results arrive."),
	}, "\n")
}

// renderRecord lists the record's identity and every property, one per line.
func renderRecord(rec *entity.Record, loading bool, width int) string {
	s := styles.T().S()
	width = max(width, 20)

	lines := []string{
		s.Title.Render(render.Truncate(rec.DisplayName(), width)),
		s.Muted.Render(render.Truncate(rec.Kind().Title()+" · "+rec.ID(), width)),
		s.Subtle.Render(render.Truncate(rec.URL(), width)),
	}
	if loading {
		lines = append(lines, s.Loading.Render("loading details…"))
	}
	lines = append(lines, "")

	keys := rec.PropertyKeys()
	keyW := 0
	for _, k := range keys {
		keyW = max(keyW, len(k))
	}
	keyW = min(keyW, width/3)
	valW := max(width-keyW-1, 8)

	for _, k := range keys {
		v, _ := rec.Property(k)
		text := render.OneLine(v.Display())
		if text == "" {
			continue
		}
		lines = append(lines, s.Key.Render(render.TruncateAndPad(k, keyW))+" "+render.Truncate(text, valW))
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}

	sections := []string{
		m.renderKinds(),
		m.Input.View(),
		m.renderTabs(),
		m.renderBody(),
	}
	if bar := jobbar.Render(m.jobs(), m.Spinner.View(), m.Width); bar != "" {
		sections = append(sections, bar)
	}
	sections = append(sections, m.renderStatus())
	if m.ShowHelp {
		sections = append(sections, m.Help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.Help.ShortHelpView(m.keys.ShortHelp()))
	}
	view := strings.Join(sections, "\n")

	if m.Picker != nil {
		return overlay.Compose(view, m.Picker.View(), m.Width)
	}
	return view
}

func (m Model) renderKinds() string {
	kinds := entity.Searchable()
	items := make([]headerbar.Item, len(kinds))
	active := -1
	for i, k := range kinds {
		items[i] = headerbar.Item{Name: k.Title()}
		if k == m.Kind {
			active = i
		}
	}
	return headerbar.Render(styles.Banner("mbrowse")+" ", items, active, m.Width)
}

func (m Model) renderTabs() string {
	if len(m.Tabs) == 0 {
		return styles.T().S().Subtle.Render("no searches yet")
	}
	items := make([]headerbar.Item, len(m.Tabs))
	for i, tab := range m.Tabs {
		name := tab.Title()
		if tab.Pending {
			name += " …"
		}
		items[i] = headerbar.Item{Name: name}
	}
	return headerbar.Render("", items, m.Active, m.Width)
}

func (m Model) renderBody() string {
	var table string
	if tab := m.ActiveTab(); tab != nil {
		table = tab.Table.View()
	}
	tw, th := layout.Inner(m.panes.TableWidth, m.panes.TableHeight)
	dw, dh := layout.Inner(m.panes.DetailWidth, m.panes.DetailHeight)

	left := styles.PanelStyle(m.Focus == FocusTable).Width(tw).Height(th).Render(table)
	right := styles.PanelStyle(false).Width(dw).Height(dh).Render(m.Detail.View())
	if m.panes.Narrow {
		return lipgloss.JoinVertical(lipgloss.Left, left, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderStatus() string {
	s := styles.T().S()
	if m.ErrorMsg != "" {
		return s.Error.Render(render.Truncate(m.ErrorMsg+" (press any key)", m.Width))
	}
	var right string
	if len(m.Tabs) > 1 {
		right = s.Subtle.Render(fmt.Sprintf("tab %d/%d", m.Active+1, len(m.Tabs)))
	}
	left := s.Muted.Render(render.Truncate(m.StatusMsg, max(m.Width-lipgloss.Width(right)-1, 0)))
	return render.Row(left, right, m.Width)
}

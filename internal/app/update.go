package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/mbrowse/internal/config"
	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/errmsg"
	"github.com/llehouerou/mbrowse/internal/search"
	"github.com/llehouerou/mbrowse/internal/ui/picker"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	// the job bar grows and shrinks with the running work
	if nm, ok := next.(Model); ok && len(nm.jobs()) != nm.laidOutJobs {
		nm.layout()
		return nm, cmd
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.layout()
		m.updateDetail()
		if m.Picker != nil {
			m.Picker.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case picker.ResultMsg:
		m.Picker = nil
		if msg.Canceled {
			return m, nil
		}
		m.Input.SetValue(msg.Entry.Query)
		m.Kind = msg.Entry.Kind
		return m.startSearch()

	case SearchResultMsg:
		return m.handleSearchResult(msg)

	case HistoryLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("loading history", "err", msg.Err)
			return m, nil
		}
		m.History = msg.Entries
		return m, nil

	case DetailLoadedMsg:
		delete(m.Loading, msg.ID)
		m.Enriched[msg.ID] = true
		m.refreshRecord(msg.ID)
		return m, m.watchLoaded()

	case DetailFailedMsg:
		delete(m.Loading, msg.ID)
		m.StatusMsg = errmsg.FormatWith(errmsg.OpLookup, m.nameOf(msg.ID), msg.Err)
		m.refreshRecord(msg.ID)
		return m, m.watchFailed()

	case BatchProgressMsg:
		m.Progress.Loaded = msg.Loaded
		m.Progress.Total = msg.Total
		return m, m.watchProgress()

	case BatchCompletedMsg:
		// covers DetailLoaded events dropped on a full buffer
		for _, id := range msg.IDs {
			if m.Loading[id] {
				delete(m.Loading, id)
				m.Enriched[id] = true
				m.refreshRecord(id)
			}
		}
		m.Progress.Loaded, m.Progress.Total = 0, 0
		m.StatusMsg = fmt.Sprintf("Loaded details of %s %s",
			humanize.Comma(int64(len(msg.IDs))), pluralize(len(msg.IDs), "record"))
		return m, m.watchCompleted()

	case ErrorMsg:
		m.ErrorMsg = msg.Text
		return m, nil

	case subscriptionClosedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Picker != nil {
		p, cmd := m.Picker.Update(msg)
		m.Picker = &p
		return m, cmd
	}
	if m.ErrorMsg != "" {
		m.ErrorMsg = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.History):
		p := picker.New(m.History)
		p.SetSize(m.Width, m.Height)
		m.Picker = &p
		return m, nil
	case key.Matches(msg, m.keys.NextKind):
		m.cycleKind(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevKind):
		m.cycleKind(-1)
		return m, nil
	case key.Matches(msg, m.keys.SwitchFocus):
		m.toggleFocus()
		return m, nil
	}

	if m.Focus == FocusInput {
		if key.Matches(msg, m.keys.Search) {
			return m.startSearch()
		}
		var cmd tea.Cmd
		m.Input, cmd = m.Input.Update(msg)
		return m, cmd
	}
	return m.handleTableKey(msg)
}

func (m Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.ActiveTab()
	if tab == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.ShowHelp = !m.ShowHelp
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		return m.selectTab(m.Active + 1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.selectTab(m.Active - 1)
	case key.Matches(msg, m.keys.CloseTab):
		return m.closeTab(m.Active)
	case key.Matches(msg, m.keys.NextPage):
		if tab.Pending || !tab.Service.CanNext() {
			return m, nil
		}
		return m.changePage(tab, tab.Service.NextPage)
	case key.Matches(msg, m.keys.PrevPage):
		if tab.Pending || !tab.Service.CanPrev() {
			return m, nil
		}
		return m.changePage(tab, tab.Service.PrevPage)
	case key.Matches(msg, m.keys.Reload):
		rec := tab.Selected()
		if rec == nil {
			return m, nil
		}
		delete(m.Enriched, rec.ID())
		return m, m.submit([]*entity.Record{rec}, false)
	}

	before := tab.Table.Cursor()
	var cmd tea.Cmd
	tab.Table, cmd = tab.Table.Update(msg)
	if tab.Table.Cursor() == before {
		return m, cmd
	}
	m.updateDetail()
	if rec := tab.Selected(); rec != nil && !m.Enriched[rec.ID()] {
		return m, tea.Batch(cmd, m.submit([]*entity.Record{rec}, false))
	}
	return m, cmd
}

// startSearch opens a new tab for the input and kind, dropping the oldest
// tab beyond the configured maximum.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	p := search.Params{Query: m.Input.Value(), Kind: m.Kind, Limit: m.limit}
	if err := p.Valid(); err != nil {
		m.StatusMsg = errmsg.Format(errmsg.OpSearch, err)
		return m, nil
	}

	m.nextTabID++
	tab := newTab(m.nextTabID, p, search.NewService(m.deps.Client))
	m.Tabs = append(m.Tabs, tab)
	if len(m.Tabs) > m.maxTabs {
		m.Tabs = m.Tabs[len(m.Tabs)-m.maxTabs:]
	}
	m.Active = len(m.Tabs) - 1
	m.showIntro = false
	m.StatusMsg = "Searching " + p.Kind.Plural() + "…"
	m.layout()
	m.updateDetail()

	m.logger.Debug("search", "kind", p.Kind, "query", search.BuildQuery(p))
	return m, searchCmd(m.ctx, tab.ID, tab.Service, p)
}

func (m Model) changePage(tab *Tab, fetch pageFunc) (tea.Model, tea.Cmd) {
	tab.Pending = true
	m.StatusMsg = "Loading page…"
	return m, pageCmd(m.ctx, tab.ID, fetch)
}

func (m Model) handleSearchResult(msg SearchResultMsg) (tea.Model, tea.Cmd) {
	tab := m.tabByID(msg.TabID)
	if tab == nil {
		// closed while the request was running
		return m, nil
	}
	tab.Pending = false

	if msg.Err != nil {
		tab.Err = msg.Err
		m.StatusMsg = errmsg.FormatWith(errmsg.OpSearch, tab.Params.Query, msg.Err)
		m.logger.Warn("search failed", "kind", tab.Params.Kind, "err", msg.Err)
		return m, nil
	}

	tab.setPage(msg.Page)
	m.StatusMsg = tab.pageInfo()
	m.Focus = FocusTable
	m.applyFocus()
	m.updateDetail()

	cmds := []tea.Cmd{m.submit(tab.Records, true)}
	if msg.Page.Offset == 0 {
		cmds = append(cmds, m.addHistoryCmd(tab.Params, msg.Page.Count))
	}
	return m, tea.Batch(cmds...)
}

// submit marks recs loading and queues them with the fetcher. With reset the
// fetcher first drops everything still queued for the previous page.
func (m *Model) submit(recs []*entity.Record, reset bool) tea.Cmd {
	if m.deps.Fetcher == nil {
		return nil
	}
	if reset {
		clear(m.Loading)
		m.Progress.Loaded, m.Progress.Total = 0, 0
	}
	var pending []*entity.Record
	for _, rec := range recs {
		if rec.ID() == "" || m.Enriched[rec.ID()] {
			continue
		}
		m.Loading[rec.ID()] = true
		pending = append(pending, rec)
	}
	if tab := m.ActiveTab(); tab != nil {
		tab.refreshRows(m.Loading)
	}

	submit := m.submitCmd(pending)
	if !reset {
		return submit
	}
	f := m.deps.Fetcher
	return tea.Sequence(func() tea.Msg {
		if err := f.Clear(); err != nil {
			return ErrorMsg{Text: errmsg.Format(errmsg.OpDetailSubmit, err)}
		}
		return nil
	}, submit)
}

func (m Model) selectTab(i int) (tea.Model, tea.Cmd) {
	if len(m.Tabs) == 0 {
		return m, nil
	}
	m.Active = (i + len(m.Tabs)) % len(m.Tabs)
	m.applyFocus()
	tab := m.ActiveTab()
	tab.refreshRows(m.Loading)
	m.StatusMsg = tab.pageInfo()
	m.layout()
	m.updateDetail()
	return m, nil
}

func (m Model) closeTab(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(m.Tabs) {
		return m, nil
	}
	m.Tabs = append(m.Tabs[:i:i], m.Tabs[i+1:]...)
	if len(m.Tabs) == 0 {
		m.Active = 0
		m.Focus = FocusInput
		m.applyFocus()
		m.updateDetail()
		return m, nil
	}
	return m.selectTab(min(i, len(m.Tabs)-1))
}

func (m *Model) cycleKind(step int) {
	kinds := entity.Searchable()
	idx := 0
	for i, k := range kinds {
		if k == m.Kind {
			idx = i
			break
		}
	}
	m.Kind = kinds[(idx+step+len(kinds))%len(kinds)]
	if m.deps.Config != nil {
		kind := m.Kind.String()
		m.deps.Config.Update(func(c *config.Config) { c.UI.LastEntityType = kind })
	}
}

func (m *Model) toggleFocus() {
	if m.Focus == FocusInput && len(m.Tabs) > 0 {
		m.Focus = FocusTable
	} else {
		m.Focus = FocusInput
	}
	m.applyFocus()
}

func (m *Model) applyFocus() {
	for i, tab := range m.Tabs {
		if i == m.Active && m.Focus == FocusTable {
			tab.Table.Focus()
		} else {
			tab.Table.Blur()
		}
	}
	if m.Focus == FocusInput {
		m.Input.Focus()
	} else {
		m.Input.Blur()
	}
}

// refreshRecord redraws the active tab and the detail pane after the record
// with id changed.
func (m *Model) refreshRecord(id string) {
	tab := m.ActiveTab()
	if tab == nil || !tab.contains(id) {
		return
	}
	tab.refreshRows(m.Loading)
	if rec := tab.Selected(); rec != nil && rec.ID() == id {
		m.updateDetail()
	}
}

func (m Model) tabByID(id int) *Tab {
	for _, tab := range m.Tabs {
		if tab.ID == id {
			return tab
		}
	}
	return nil
}

func (m Model) nameOf(id string) string {
	for _, tab := range m.Tabs {
		for _, rec := range tab.Records {
			if rec.ID() == id {
				return rec.Name()
			}
		}
	}
	return id
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Package picker is the search history popup: a fuzzy filter over past
// searches that hands the chosen one back to the search box.
package picker

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mbrowse/internal/history"
)

// ResultMsg is emitted on Enter (selection) or Escape (cancel).
type ResultMsg struct {
	Entry    history.Entry
	Canceled bool
}

// Model is the history picker popup.
type Model struct {
	entries []history.Entry
	matcher *TrigramMatcher
	matches []Match
	query   string
	cursor  int
	offset  int
	width   int
	height  int
}

// New creates a picker over entries, most recent first.
func New(entries []history.Entry) Model {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Query + " " + e.Kind.String()
	}
	m := Model{entries: entries, matcher: NewTrigramMatcher(texts)}
	m.updateMatches()
	return m
}

// SetSize sets the terminal size the popup centers in.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.adjustOffset()
}

// Query returns the current filter text.
func (m Model) Query() string { return m.query }

// Selected returns the entry under the cursor.
func (m Model) Selected() (history.Entry, bool) {
	if m.cursor >= len(m.matches) {
		return history.Entry{}, false
	}
	return m.entries[m.matches[m.cursor].Index], true
}

func (m *Model) updateMatches() {
	m.matches = m.matcher.Search(m.query)
	if m.cursor >= len(m.matches) {
		m.cursor = max(0, len(m.matches)-1)
	}
	m.adjustOffset()
}

func (m *Model) adjustOffset() {
	visible := m.visibleHeight()
	if visible <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// Update handles key input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m, func() tea.Msg { return ResultMsg{Canceled: true} }

		case tea.KeyEnter:
			e, ok := m.Selected()
			return m, func() tea.Msg { return ResultMsg{Entry: e, Canceled: !ok} }

		case tea.KeyUp, tea.KeyCtrlP:
			if m.cursor > 0 {
				m.cursor--
				m.adjustOffset()
			}

		case tea.KeyDown, tea.KeyCtrlN:
			if m.cursor < len(m.matches)-1 {
				m.cursor++
				m.adjustOffset()
			}

		case tea.KeyBackspace:
			if r := []rune(m.query); len(r) > 0 {
				m.query = string(r[:len(r)-1])
				m.cursor, m.offset = 0, 0
				m.updateMatches()
			}

		case tea.KeySpace:
			m.query += " "
			m.cursor, m.offset = 0, 0
			m.updateMatches()

		case tea.KeyRunes:
			m.query += string(msg.Runes)
			m.cursor, m.offset = 0, 0
			m.updateMatches()
		}
	}
	return m, nil
}

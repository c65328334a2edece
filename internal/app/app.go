// Package app is the terminal client: a search box with an entity type
// selector, one result table per search in tabs, and a detail pane that
// fills in as the detail fetcher loads each record.
package app

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mbrowse/internal/config"
	"github.com/llehouerou/mbrowse/internal/detail"
	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/search"
	"github.com/llehouerou/mbrowse/internal/ui/layout"
	"github.com/llehouerou/mbrowse/internal/ui/picker"
)

// Fetcher queues detail lookups for records on screen.
type Fetcher interface {
	Submit(rec *entity.Record) error
	SubmitMany(recs []*entity.Record) error
	Clear() error
}

// FocusTarget is the component receiving key input.
type FocusTarget int

const (
	FocusInput FocusTarget = iota
	FocusTable
)

// Deps are the services the client drives. History and Config may be nil.
type Deps struct {
	Client       search.Searcher
	Fetcher      Fetcher
	Subscription *detail.Subscription
	History      *history.Store
	Config       *config.Store
	Logger       *slog.Logger
}

// Model is the root application model.
type Model struct {
	deps   Deps
	ctx    context.Context
	logger *slog.Logger

	Input   textinput.Model
	Kind    entity.Kind
	Focus   FocusTarget
	Tabs    []*Tab
	Active  int
	Detail  viewport.Model
	Spinner spinner.Model
	Help    help.Model
	keys    keyMap

	Picker    *picker.Model
	History   []history.Entry
	Loading   map[string]bool // ids submitted and not yet loaded or failed
	Enriched  map[string]bool
	Progress  detail.BatchProgress
	StatusMsg string
	ErrorMsg  string
	ShowHelp  bool
	maxTabs   int
	limit     int
	nextTabID int
	showIntro bool
	Width     int
	Height    int

	panes       layout.Panes
	laidOutJobs int
}

// New creates the model. ctx bounds every request it issues.
func New(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := config.Default()
	if deps.Config != nil {
		cfg = deps.Config.Config()
	}
	ui := cfg.GetUIConfig()
	api := cfg.GetAPIConfig()

	kind := entity.ParseKind(ui.LastEntityType)
	if !kind.IsKnown() {
		kind = entity.Artist
	}

	input := textinput.New()
	input.Placeholder = "Search MusicBrainz"
	input.Prompt = "› "
	input.CharLimit = 256
	input.Focus()

	return Model{
		deps:      deps,
		ctx:       ctx,
		logger:    logger.With("component", "app"),
		Input:     input,
		Kind:      kind,
		Focus:     FocusInput,
		Detail:    viewport.New(0, 0),
		Spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		Help:      help.New(),
		keys:      defaultKeys(),
		Loading:   make(map[string]bool),
		Enriched:  make(map[string]bool),
		maxTabs:   ui.MaxTabs,
		limit:     api.DefaultLimit,
		showIntro: *ui.ShowWelcome,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.Spinner.Tick,
		m.loadHistoryCmd(),
		m.watchDetailEvents(),
	)
}

// ActiveTab returns the selected tab, or nil when no search ran yet.
func (m Model) ActiveTab() *Tab {
	if m.Active < 0 || m.Active >= len(m.Tabs) {
		return nil
	}
	return m.Tabs[m.Active]
}

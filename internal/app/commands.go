package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mbrowse/internal/detail"
	"github.com/llehouerou/mbrowse/internal/entity"
	"github.com/llehouerou/mbrowse/internal/errmsg"
	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/normalize"
	"github.com/llehouerou/mbrowse/internal/search"
)

const historyLimit = 100

// waitForChannel creates a command that waits for a value from ch and converts it to a message.
// When done closes first, subscriptionClosedMsg is returned instead.
func waitForChannel[T any](ch <-chan T, done <-chan struct{}, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-ch:
			return wrap(e)
		case <-done:
			return subscriptionClosedMsg{}
		}
	}
}

func (m Model) watchLoaded() tea.Cmd {
	sub := m.deps.Subscription
	if sub == nil {
		return nil
	}
	return waitForChannel(sub.Loaded, sub.Done, func(e detail.DetailLoaded) tea.Msg { return DetailLoadedMsg(e) })
}

func (m Model) watchFailed() tea.Cmd {
	sub := m.deps.Subscription
	if sub == nil {
		return nil
	}
	return waitForChannel(sub.Failed, sub.Done, func(e detail.DetailFailed) tea.Msg { return DetailFailedMsg(e) })
}

func (m Model) watchProgress() tea.Cmd {
	sub := m.deps.Subscription
	if sub == nil {
		return nil
	}
	return waitForChannel(sub.Progress, sub.Done, func(e detail.BatchProgress) tea.Msg { return BatchProgressMsg(e) })
}

func (m Model) watchCompleted() tea.Cmd {
	sub := m.deps.Subscription
	if sub == nil {
		return nil
	}
	return waitForChannel(sub.Completed, sub.Done, func(e detail.BatchCompleted) tea.Msg { return BatchCompletedMsg(e) })
}

func (m Model) watchDetailEvents() tea.Cmd {
	return tea.Batch(m.watchLoaded(), m.watchFailed(), m.watchProgress(), m.watchCompleted())
}

func searchCmd(ctx context.Context, tabID int, svc *search.Service, p search.Params) tea.Cmd {
	return func() tea.Msg {
		page, err := svc.Search(ctx, p)
		return SearchResultMsg{TabID: tabID, Page: page, Err: err}
	}
}

// pageFunc is Service.NextPage or Service.PrevPage.
type pageFunc func(context.Context) (*normalize.Page, error)

func pageCmd(ctx context.Context, tabID int, fetch pageFunc) tea.Cmd {
	return func() tea.Msg {
		page, err := fetch(ctx)
		return SearchResultMsg{TabID: tabID, Page: page, Err: err}
	}
}

func (m Model) submitCmd(recs []*entity.Record) tea.Cmd {
	if m.deps.Fetcher == nil || len(recs) == 0 {
		return nil
	}
	f := m.deps.Fetcher
	return func() tea.Msg {
		if err := f.SubmitMany(recs); err != nil {
			return ErrorMsg{Text: errmsg.Format(errmsg.OpDetailSubmit, err)}
		}
		return nil
	}
}

func (m Model) loadHistoryCmd() tea.Cmd {
	store := m.deps.History
	if store == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		entries, err := store.Recent(ctx, historyLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

func (m Model) addHistoryCmd(p search.Params, results int) tea.Cmd {
	store := m.deps.History
	if store == nil {
		return nil
	}
	ctx := m.ctx
	e := history.Entry{Query: search.BuildQuery(p), Kind: p.Kind, Results: results}
	return func() tea.Msg {
		if err := store.Add(ctx, e); err != nil {
			return ErrorMsg{Text: errmsg.Format(errmsg.OpHistorySave, err)}
		}
		entries, err := store.Recent(ctx, historyLimit)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

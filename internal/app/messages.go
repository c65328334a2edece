package app

import (
	"github.com/llehouerou/mbrowse/internal/detail"
	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/normalize"
)

// SearchResultMsg carries the outcome of a search or page change.
type SearchResultMsg struct {
	TabID int
	Page  *normalize.Page
	Err   error
}

// HistoryLoadedMsg carries the recent searches.
type HistoryLoadedMsg struct {
	Entries []history.Entry
	Err     error
}

// DetailLoadedMsg wraps detail.DetailLoaded.
type DetailLoadedMsg detail.DetailLoaded

// DetailFailedMsg wraps detail.DetailFailed.
type DetailFailedMsg detail.DetailFailed

// BatchProgressMsg wraps detail.BatchProgress.
type BatchProgressMsg detail.BatchProgress

// BatchCompletedMsg wraps detail.BatchCompleted.
type BatchCompletedMsg detail.BatchCompleted

// ErrorMsg reports a failure that is not tied to a tab.
type ErrorMsg struct {
	Text string
}

// subscriptionClosedMsg is sent once the fetcher shut down.
type subscriptionClosedMsg struct{}

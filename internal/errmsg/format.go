// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/mbrowse/internal/musicbrainz"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// MusicBrainz requests
	OpSearch       Op = "search"
	OpNextPage     Op = "load next page"
	OpPrevPage     Op = "load previous page"
	OpLookup       Op = "load details"
	OpBrowse       Op = "browse"
	OpDiscID       Op = "look up disc"
	OpCoverArt     Op = "load cover art"
	OpDetailSubmit Op = "queue detail lookups"

	// Local storage
	OpHistoryLoad  Op = "load search history"
	OpHistorySave  Op = "save search history"
	OpHistoryClear Op = "clear search history"
	OpConfigLoad   Op = "load configuration"
	OpConfigSave   Op = "save configuration"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, describe(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, describe(err))
}

// describe replaces web service errors whose raw text is unhelpful with a
// short explanation.
func describe(err error) string {
	var mbErr *musicbrainz.Error
	if !errors.As(err, &mbErr) {
		return err.Error()
	}
	switch mbErr.Category {
	case musicbrainz.CategoryRateLimited:
		return "MusicBrainz is busy, try again in a moment"
	case musicbrainz.CategoryTimeout:
		return "request timed out"
	case musicbrainz.CategoryNotFound:
		return "not found"
	case musicbrainz.CategoryNetwork:
		return "network error: " + mbErr.Message
	}
	return err.Error()
}

package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/llehouerou/mbrowse/internal/normalize"
)

// Category is the coarse class of a failed request.
type Category int

const (
	CategoryNone Category = iota
	CategoryNetwork
	CategoryTimeout
	CategoryRateLimited
	CategoryNotFound
	CategoryAPI
	CategoryData
)

func (c Category) String() string {
	switch c {
	case CategoryNetwork:
		return "network"
	case CategoryTimeout:
		return "timeout"
	case CategoryRateLimited:
		return "rate limited"
	case CategoryNotFound:
		return "not found"
	case CategoryAPI:
		return "api"
	case CategoryData:
		return "data"
	default:
		return "none"
	}
}

// Error is returned by every Client operation.
type Error struct {
	Category Category
	Status   int // HTTP status, 0 when no response was received
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Category, e.Status, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Category, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// CategoryOf returns the category of err, or CategoryNone when err is not an
// *Error.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryNone
}

func dataError(msg string, err error) *Error {
	return &Error{Category: CategoryData, Message: msg, Err: err}
}

// transportError classifies a failure to obtain any response.
func transportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return &Error{Category: CategoryTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Category: CategoryNetwork, Message: "request canceled", Err: err}
	}
	return &Error{Category: CategoryNetwork, Message: "request failed", Err: err}
}

// limiterError classifies a failed rate limiter wait. The limiter refuses
// early when the wait would outlast the context deadline.
func limiterError(ctx context.Context, err error) *Error {
	if ctx.Err() == nil {
		return &Error{Category: CategoryTimeout, Message: "request timed out", Err: err}
	}
	return transportError(ctx.Err())
}

// statusError classifies a non-2xx response. body may carry the service's
// {"error": "..."} message.
func statusError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: http.StatusText(status)}
	var apiErr *normalize.APIError
	if _, err := normalize.ParseDetails(body); errors.As(err, &apiErr) {
		e.Message = apiErr.Message
	}
	switch {
	case status == http.StatusNotFound:
		e.Category = CategoryNotFound
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		e.Category = CategoryRateLimited
	default:
		e.Category = CategoryAPI
	}
	return e
}

// parseError maps a normalize failure onto the client taxonomy.
func parseError(err error) *Error {
	var apiErr *normalize.APIError
	if errors.As(err, &apiErr) {
		return &Error{Category: CategoryAPI, Message: apiErr.Message, Err: err}
	}
	return dataError("unexpected response", err)
}

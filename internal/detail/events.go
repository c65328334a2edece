package detail

import (
	"time"

	"github.com/llehouerou/mbrowse/internal/entity"
)

// Event is one of DetailLoaded, DetailFailed, BatchProgress or BatchCompleted.
type Event interface {
	event()
}

// DetailLoaded is emitted after a lookup succeeded and the record was
// enriched with its payload.
type DetailLoaded struct {
	ID      string
	Payload entity.Map
	Record  *entity.Record
}

// DetailFailed is emitted when a lookup failed. The id is no longer loading
// and may be resubmitted.
type DetailFailed struct {
	ID  string
	Err error
}

// BatchProgress is emitted after each successful lookup of a batch.
type BatchProgress struct {
	Loaded int
	Total  int
}

// BatchCompleted is emitted once every id of a batch has been loaded or has
// failed. IDs lists the loaded ones in drain order.
type BatchCompleted struct {
	IDs []string
}

func (DetailLoaded) event()   {}
func (DetailFailed) event()   {}
func (BatchProgress) event()  {}
func (BatchCompleted) event() {}

// State is the phase of the fetcher.
type State int

const (
	Idle State = iota
	Collecting
	Draining
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Draining:
		return "draining"
	default:
		return "idle"
	}
}

// BatchStats counts the outcome of the current (or last) batch.
type BatchStats struct {
	Requested int
	Loaded    int
	Failed    int
	Started   time.Time
}

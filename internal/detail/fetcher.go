// Package detail loads full entity details for records shown in result
// tables. Submissions are debounced into batches which are drained one lookup
// at a time, so the fetcher never has more than one request outstanding.
package detail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/llehouerou/mbrowse/internal/entity"
)

const (
	DefaultDebounce       = 500 * time.Millisecond
	MinDebounce           = 100 * time.Millisecond
	DefaultItemDelay      = 100 * time.Millisecond
	DefaultFailureDelay   = 200 * time.Millisecond
	DefaultRequestTimeout = 30 * time.Second
)

var (
	// ErrClosed is returned by operations on a closed fetcher.
	ErrClosed = errors.New("detail fetcher closed")
	// ErrNotStarted is returned by operations on a fetcher whose Start was
	// never called.
	ErrNotStarted = errors.New("detail fetcher not started")
)

// Lookuper fetches the detail payload of one entity.
type Lookuper interface {
	Lookup(ctx context.Context, kind entity.Kind, mbid string, includes ...string) (entity.Map, error)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithDebounce sets the initial debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(f *Fetcher) { f.debounce = clampDebounce(d) }
}

// WithItemDelay sets the pause after a successful lookup.
func WithItemDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.itemDelay = max(d, 0) }
}

// WithFailureDelay sets the pause after a failed lookup.
func WithFailureDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.failureDelay = max(d, 0) }
}

// WithRequestTimeout bounds a single lookup. A lookup running longer is
// reported as failed and its id stops loading.
func WithRequestTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHandler registers a callback invoked for every event, on the fetcher
// goroutine. The callback must not call back into the Fetcher.
func WithHandler(h func(Event)) Option {
	return func(f *Fetcher) { f.handler = h }
}

// Fetcher batches detail lookups. All state is owned by one goroutine started
// by Start; the exported methods post messages to it.
type Fetcher struct {
	client Lookuper
	logger *slog.Logger

	debounce     time.Duration
	itemDelay    time.Duration
	failureDelay time.Duration
	timeout      time.Duration
	handler      func(Event)

	cmds    chan func(*loop)
	stop    chan struct{}
	exited  chan struct{}
	started atomic.Bool
	once    sync.Once

	subsMu sync.RWMutex
	subs   []*Subscription
}

// New creates a fetcher. Until Start is called, every operation returns
// ErrNotStarted.
func New(client Lookuper, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := &Fetcher{
		client:       client,
		logger:       logger.With("component", "detail"),
		debounce:     DefaultDebounce,
		itemDelay:    DefaultItemDelay,
		failureDelay: DefaultFailureDelay,
		timeout:      DefaultRequestTimeout,
		cmds:         make(chan func(*loop)),
		stop:         make(chan struct{}),
		exited:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start launches the event loop. It stops when ctx is done or Close is called.
func (f *Fetcher) Start(ctx context.Context) {
	if !f.started.CompareAndSwap(false, true) {
		return
	}
	l := newLoop(f)
	go l.run(ctx)
}

// Close stops the event loop, abandons any in-flight lookup and closes all
// subscriptions.
func (f *Fetcher) Close() error {
	f.once.Do(func() {
		close(f.stop)
		if f.started.Load() {
			<-f.exited
		}
		f.subsMu.Lock()
		for _, sub := range f.subs {
			sub.close()
		}
		f.subs = nil
		f.subsMu.Unlock()
	})
	return nil
}

// Subscribe creates a new event subscription.
func (f *Fetcher) Subscribe() *Subscription {
	f.subsMu.Lock()
	defer f.subsMu.Unlock()
	sub := newSubscription()
	f.subs = append(f.subs, sub)
	return sub
}

// Submit queues rec for a detail lookup. Records without an id, and ids
// already queued or loading, are ignored.
func (f *Fetcher) Submit(rec *entity.Record) error {
	return f.send(func(l *loop) { l.submit([]*entity.Record{rec}) })
}

// SubmitMany is Submit for several records, restarting the debounce once.
func (f *Fetcher) SubmitMany(recs []*entity.Record) error {
	return f.send(func(l *loop) { l.submit(recs) })
}

// SetDebounceDelay changes the debounce delay, clamped to MinDebounce. It
// applies from the next submission.
func (f *Fetcher) SetDebounceDelay(d time.Duration) error {
	return f.send(func(l *loop) { l.debounce = clampDebounce(d) })
}

// Clear drops every queued request, the current batch and all loading
// marks. The result of an in-flight lookup is discarded.
func (f *Fetcher) Clear() error {
	return f.send(func(l *loop) { l.clear() })
}

// State returns the current phase.
func (f *Fetcher) State() State {
	reply := make(chan State, 1)
	if f.send(func(l *loop) { reply <- l.state }) != nil {
		return Idle
	}
	return <-reply
}

// Stats returns the counters of the current or last batch.
func (f *Fetcher) Stats() BatchStats {
	reply := make(chan BatchStats, 1)
	if f.send(func(l *loop) { reply <- l.stats }) != nil {
		return BatchStats{}
	}
	return <-reply
}

// IsLoading reports whether id belongs to the batch being drained and has
// not completed yet.
func (f *Fetcher) IsLoading(id string) bool {
	reply := make(chan bool, 1)
	if f.send(func(l *loop) { _, ok := l.loading[id]; reply <- ok }) != nil {
		return false
	}
	return <-reply
}

func (f *Fetcher) send(cmd func(*loop)) error {
	if !f.started.Load() {
		return ErrNotStarted
	}
	select {
	case f.cmds <- cmd:
		return nil
	case <-f.stop:
		return ErrClosed
	case <-f.exited:
		return ErrClosed
	}
}

func (f *Fetcher) emit(e Event) {
	if f.handler != nil {
		f.handler(e)
	}
	f.subsMu.RLock()
	defer f.subsMu.RUnlock()
	for _, sub := range f.subs {
		sub.send(e)
	}
}

func clampDebounce(d time.Duration) time.Duration {
	return max(d, MinDebounce)
}

package detail

import (
	"context"
	"time"

	"github.com/llehouerou/mbrowse/internal/enrich"
	"github.com/llehouerou/mbrowse/internal/entity"
)

// request is one queued detail lookup.
type request struct {
	rec       *entity.Record
	submitted time.Time
	attempts  int
}

// result is the outcome of one lookup, tagged with the generation it was
// issued in so results from before a Clear can be told apart.
type result struct {
	gen     uint64
	id      string
	payload entity.Map
	err     error
}

type loop struct {
	f *Fetcher

	state    State
	debounce time.Duration

	queue  []*request          // submitted, waiting for the next batch
	queued map[string]struct{} // ids in queue
	batch  []*request          // snapshot being drained
	next   int                 // index of the next batch entry to issue

	loading  map[string]*entity.Record // batch ids not completed yet
	inflight *request
	cancel   context.CancelFunc
	gen      uint64
	loaded   []string

	// lookups dropped by clear whose call has not returned yet; no new
	// lookup starts until they did
	abandoned int

	stats BatchStats

	debounceTimer *time.Timer
	advanceTimer  *time.Timer
	results       chan result
	done          chan struct{}
}

func newLoop(f *Fetcher) *loop {
	return &loop{
		f:        f,
		debounce: f.debounce,
		queued:   make(map[string]struct{}),
		loading:  make(map[string]*entity.Record),
		results:  make(chan result, 1),
		done:     make(chan struct{}),
	}
}

func (l *loop) run(ctx context.Context) {
	defer close(l.f.exited)
	defer close(l.done)
	defer l.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.f.stop:
			return
		case cmd := <-l.f.cmds:
			cmd(l)
		case <-timerC(l.debounceTimer):
			l.debounceTimer = nil
			l.startBatch(ctx)
		case <-timerC(l.advanceTimer):
			l.advanceTimer = nil
			l.advance(ctx)
		case r := <-l.results:
			l.complete(ctx, r)
		}
	}
}

func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (l *loop) submit(recs []*entity.Record) {
	added := 0
	for _, rec := range recs {
		if rec == nil || rec.ID() == "" {
			l.f.logger.Warn("ignoring record without id")
			continue
		}
		id := rec.ID()
		if _, ok := l.queued[id]; ok {
			continue
		}
		if _, ok := l.loading[id]; ok {
			continue
		}
		l.queue = append(l.queue, &request{rec: rec, submitted: time.Now()})
		l.queued[id] = struct{}{}
		added++
	}
	if added == 0 {
		return
	}

	// Submissions arriving during a drain wait for it to finish.
	if l.state == Draining {
		return
	}
	l.state = Collecting
	l.resetDebounce()
}

func (l *loop) resetDebounce() {
	if l.debounceTimer == nil {
		l.debounceTimer = time.NewTimer(l.debounce)
		return
	}
	l.debounceTimer.Reset(l.debounce)
}

// startBatch snapshots the queue, marks every id loading and issues the
// first lookup.
func (l *loop) startBatch(ctx context.Context) {
	if len(l.queue) == 0 {
		l.state = Idle
		return
	}

	l.batch = l.queue
	l.next = 0
	l.queue = nil
	clear(l.queued)
	for _, req := range l.batch {
		l.loading[req.rec.ID()] = req.rec
	}
	l.loaded = nil
	l.stats = BatchStats{Requested: len(l.batch), Started: time.Now()}
	l.state = Draining

	l.f.logger.Debug("batch started", "size", len(l.batch))
	l.advance(ctx)
}

// advance issues the next lookup of the batch, or finishes the batch.
func (l *loop) advance(ctx context.Context) {
	if l.state != Draining || l.inflight != nil || l.abandoned > 0 {
		return
	}
	if l.next >= len(l.batch) {
		l.finishBatch()
		return
	}

	req := l.batch[l.next]
	l.next++
	req.attempts++
	l.inflight = req
	l.f.logger.Debug("lookup", "id", req.rec.ID(), "kind", req.rec.Kind(),
		"attempt", req.attempts, "queued_for", time.Since(req.submitted))

	reqCtx, cancel := context.WithTimeout(ctx, l.f.timeout)
	l.cancel = cancel
	gen := l.gen
	rec := req.rec
	go func() {
		defer cancel()
		payload, err := l.f.client.Lookup(reqCtx, rec.Kind(), rec.ID())
		select {
		case l.results <- result{gen: gen, id: rec.ID(), payload: payload, err: err}:
		case <-l.done:
		}
	}()
}

func (l *loop) complete(ctx context.Context, r result) {
	if r.gen != l.gen {
		if l.abandoned > 0 {
			l.abandoned--
			l.advance(ctx)
		}
		return
	}
	if l.inflight == nil || l.inflight.rec.ID() != r.id {
		return
	}
	req := l.inflight
	l.inflight = nil
	l.cancel = nil
	delete(l.loading, r.id)

	delay := l.f.itemDelay
	if r.err != nil {
		l.stats.Failed++
		delay = l.f.failureDelay
		l.f.logger.Warn("detail lookup failed", "id", r.id, "kind", req.rec.Kind(), "err", r.err)
		l.f.emit(DetailFailed{ID: r.id, Err: r.err})
	} else {
		enrich.Enrich(req.rec, r.payload)
		l.stats.Loaded++
		l.loaded = append(l.loaded, r.id)
		l.f.emit(DetailLoaded{ID: r.id, Payload: r.payload, Record: req.rec})
		l.f.emit(BatchProgress{Loaded: l.stats.Loaded, Total: l.stats.Requested})
	}
	l.advanceTimer = time.NewTimer(delay)
}

func (l *loop) finishBatch() {
	ids := l.loaded
	if ids == nil {
		ids = []string{}
	}
	l.f.logger.Info("batch completed",
		"loaded", l.stats.Loaded,
		"failed", l.stats.Failed,
		"elapsed", time.Since(l.stats.Started))
	l.f.emit(BatchCompleted{IDs: ids})

	l.batch = nil
	l.next = 0
	l.loaded = nil

	if len(l.queue) > 0 {
		l.state = Collecting
		l.resetDebounce()
		return
	}
	l.state = Idle
}

func (l *loop) clear() {
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.inflight != nil {
		l.abandoned++
	}
	l.stopTimers()
	l.queue = nil
	clear(l.queued)
	clear(l.loading)
	l.batch = nil
	l.next = 0
	l.inflight = nil
	l.loaded = nil
	l.state = Idle
}

func (l *loop) stopTimers() {
	if l.debounceTimer != nil {
		l.debounceTimer.Stop()
		l.debounceTimer = nil
	}
	if l.advanceTimer != nil {
		l.advanceTimer.Stop()
		l.advanceTimer = nil
	}
}

func (l *loop) shutdown() {
	if l.cancel != nil {
		l.cancel()
	}
	l.stopTimers()
}

package detail

const eventBufferSize = 64

// Subscription provides event channels for a subscriber.
type Subscription struct {
	Loaded    <-chan DetailLoaded
	Failed    <-chan DetailFailed
	Progress  <-chan BatchProgress
	Completed <-chan BatchCompleted
	Done      <-chan struct{}

	loadedCh    chan DetailLoaded
	failedCh    chan DetailFailed
	progressCh  chan BatchProgress
	completedCh chan BatchCompleted
	doneCh      chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		loadedCh:    make(chan DetailLoaded, eventBufferSize),
		failedCh:    make(chan DetailFailed, eventBufferSize),
		progressCh:  make(chan BatchProgress, eventBufferSize),
		completedCh: make(chan BatchCompleted, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.Loaded = s.loadedCh
	s.Failed = s.failedCh
	s.Progress = s.progressCh
	s.Completed = s.completedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers e without blocking the fetcher. Events are dropped when the
// subscriber's buffer is full; records are enriched regardless.
func (s *Subscription) send(e Event) {
	switch e := e.(type) {
	case DetailLoaded:
		select {
		case s.loadedCh <- e:
		default:
		}
	case DetailFailed:
		select {
		case s.failedCh <- e:
		default:
		}
	case BatchProgress:
		select {
		case s.progressCh <- e:
		default:
		}
	case BatchCompleted:
		select {
		case s.completedCh <- e:
		default:
		}
	}
}

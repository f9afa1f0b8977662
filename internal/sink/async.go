package sink

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"go.uber.org/zap"
)

// Async is a chat.Recorder that never blocks the caller. Records wait in a
// bounded buffer; when it is full the record is dropped and logged.
type Async struct {
	d       Deliverer
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan Record
	wg     sync.WaitGroup

	dropped atomic.Int64
	failed  atomic.Int64
}

var _ chat.Recorder = (*Async)(nil)

func NewAsync(d Deliverer, buffer, workers int, timeout time.Duration, log *zap.Logger) *Async {
	if buffer <= 0 {
		buffer = 256
	}
	if workers <= 0 {
		workers = 2
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	a := &Async{d: d, timeout: timeout, log: log, ch: make(chan Record, buffer)}

	a.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go a.run(i)
	}
	return a
}

func (a *Async) run(workerID int) {
	defer a.wg.Done()
	for r := range a.ch {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		start := time.Now()
		err := a.d.Deliver(ctx, r)
		cancel()
		if err != nil {
			a.failed.Add(1)
			a.log.Error("record delivery failed",
				zap.Int("worker", workerID),
				zap.String("record_id", r.ID),
				zap.String("kind", string(r.Kind)),
				zap.String("session_id", r.SessionID()),
				zap.Duration("cost", time.Since(start)),
				zap.Error(err),
			)
		}
	}
}

func (a *Async) RecordMessage(_ context.Context, m chat.Message) { a.enqueue(MessageRecord(m)) }

func (a *Async) RecordAttempt(_ context.Context, at chat.Attempt) { a.enqueue(AttemptRecord(at)) }

func (a *Async) RecordEvent(_ context.Context, e chat.AnalyticsEvent) { a.enqueue(EventRecord(e)) }

func (a *Async) enqueue(r Record) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.drop(r, "sink closed")
		return
	}
	select {
	case a.ch <- r:
	default:
		a.drop(r, "buffer full")
	}
}

func (a *Async) drop(r Record, reason string) {
	a.dropped.Add(1)
	a.log.Warn("record dropped",
		zap.String("reason", reason),
		zap.String("kind", string(r.Kind)),
		zap.String("session_id", r.SessionID()),
	)
}

// Close stops accepting records and waits until the buffered ones are delivered.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.ch)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Async) Dropped() int64 { return a.dropped.Load() }
func (a *Async) Failed() int64  { return a.failed.Load() }

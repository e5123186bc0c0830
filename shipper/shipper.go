// Package shipper buffers incoming events and pumps them to a Sink in
// batches.
package shipper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/snapp-incubator/logship/internal/logging"
	"github.com/snapp-incubator/logship/internal/metrics"
)

// Options control the sizing of the event pump.
type Options struct {
	// Workers is the number of concurrent flush workers.
	Workers int
	// QueueSize is the capacity of the in-memory event queue.
	QueueSize int
	// BatchSize is the number of events flushed in one bulk request.
	BatchSize int
	// FlushInterval caps how long a partial batch may wait.
	FlushInterval time.Duration
}

// Shipper owns the event queue and the flush workers.
type Shipper struct {
	sink          Sink
	queue         chan Event
	batchSize     int
	flushInterval time.Duration
	workers       int
	wg            sync.WaitGroup

	// mux orders Enqueue sends against the queue close in Close, so a
	// producer that races shutdown gets a false return instead of a send
	// on a closed channel.
	mux    sync.RWMutex
	closed bool
}

// New builds a Shipper over the given sink. Zero option values fall back to
// usable defaults.
func New(sink Sink, opts Options) *Shipper {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 2048
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 500
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 5 * time.Second
	}

	return &Shipper{
		sink:          sink,
		queue:         make(chan Event, opts.QueueSize),
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
		workers:       opts.Workers,
	}
}

// Run starts the flush workers. Cancelling ctx stops the workers without
// flushing what is still buffered; use Close for a graceful drain.
func (s *Shipper) Run(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Enqueue offers an event to the queue without blocking. It reports false
// when the event was dropped, either because the queue is full or because
// the shipper is already closed.
func (s *Shipper) Enqueue(e Event) bool {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if s.closed {
		metrics.EventsDropped.Inc()
		return false
	}

	select {
	case s.queue <- e:
		metrics.EventsEnqueued.Inc()
		return true
	default:
		metrics.EventsDropped.Inc()
		return false
	}
}

// Close drains the queue and waits for the workers to finish. Enqueue calls
// arriving after Close are dropped. Close is idempotent.
func (s *Shipper) Close() {
	s.mux.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mux.Unlock()

	s.wg.Wait()
}

func (s *Shipper) worker(ctx context.Context) {
	defer s.wg.Done()

	batch := make([]Event, 0, s.batchSize)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.sink.Ship(ctx, batch); err != nil {
			logging.L.Error("failed to ship batch",
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
		}
		batch = batch[:0]
	}

	for {
		select {
		case e, ok := <-s.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, e)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			return
		}
	}
}

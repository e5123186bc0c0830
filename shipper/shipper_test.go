package shipper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// captureSink records every shipped batch.
type captureSink struct {
	mux     sync.Mutex
	batches [][]Event
}

func (c *captureSink) Ship(_ context.Context, events []Event) error {
	c.mux.Lock()
	defer c.mux.Unlock()

	batch := make([]Event, len(events))
	copy(batch, events)
	c.batches = append(c.batches, batch)
	return nil
}

func (c *captureSink) total() int {
	c.mux.Lock()
	defer c.mux.Unlock()

	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func TestShipperDrainsOnClose(t *testing.T) {
	sink := &captureSink{}
	s := New(sink, Options{Workers: 1, QueueSize: 16, BatchSize: 2, FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	for i := 0; i < 5; i++ {
		require.True(t, s.Enqueue(Event{Document: []byte(`{}`)}))
	}
	s.Close()

	require.Equal(t, 5, sink.total())
	// Full batches flush by size, the remainder flushes on close.
	for _, batch := range sink.batches {
		require.LessOrEqual(t, len(batch), 2)
	}
}

func TestShipperFlushesByInterval(t *testing.T) {
	sink := &captureSink{}
	s := New(sink, Options{Workers: 1, QueueSize: 16, BatchSize: 100, FlushInterval: 20 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	require.True(t, s.Enqueue(Event{Document: []byte(`{}`)}))

	require.Eventually(t, func() bool {
		return sink.total() == 1
	}, time.Second, 10*time.Millisecond)

	s.Close()
}

func TestShipperEnqueueAfterClose(t *testing.T) {
	sink := &captureSink{}
	s := New(sink, Options{Workers: 1, QueueSize: 16, BatchSize: 2, FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	require.True(t, s.Enqueue(Event{Document: []byte(`{}`)}))
	s.Close()

	// A producer still running at shutdown gets a drop, not a panic.
	require.NotPanics(t, func() {
		require.False(t, s.Enqueue(Event{Document: []byte(`{}`)}))
	})
	require.Equal(t, 1, sink.total())
}

func TestShipperCloseRacesEnqueue(t *testing.T) {
	s := New(&captureSink{}, Options{Workers: 1, QueueSize: 16, BatchSize: 2, FlushInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Run(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			s.Enqueue(Event{Document: []byte(`{}`)})
		}
	}()

	s.Close()
	<-done
}

func TestShipperEnqueueDropsWhenFull(t *testing.T) {
	s := New(&captureSink{}, Options{Workers: 1, QueueSize: 1, BatchSize: 1, FlushInterval: time.Hour})

	// No worker is running, so the queue fills up.
	require.True(t, s.Enqueue(Event{Document: []byte(`{}`)}))
	require.False(t, s.Enqueue(Event{Document: []byte(`{}`)}))
}

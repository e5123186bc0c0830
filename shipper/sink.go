package shipper

import (
	"context"
	"fmt"
	"os"
)

// Event is a single JSON document queued for delivery.
type Event struct {
	Document []byte
}

// Sink delivers batches of events to a destination.
type Sink interface {
	// Ship delivers the batch, or returns an error when the batch could not
	// be delivered after the configured attempts.
	Ship(ctx context.Context, events []Event) error
}

// StdoutSink is a Sink implementation that writes documents to stdout, one
// per line. It is used for dry runs.
type StdoutSink struct{}

// Ship outputs every document of the batch to stdout
func (StdoutSink) Ship(_ context.Context, events []Event) error {
	for _, e := range events {
		if _, err := fmt.Fprintln(os.Stdout, string(e.Document)); err != nil {
			return fmt.Errorf("failed to write document to stdout: %w", err)
		}
	}
	return nil
}

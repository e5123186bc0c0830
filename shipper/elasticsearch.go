package shipper

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/snapp-incubator/logship/internal/metrics"
	"github.com/snapp-incubator/logship/sink/elasticsearch"
)

// ElasticsearchSink ships batches of events to the resolved Elasticsearch
// endpoints, one endpoint per batch.
type ElasticsearchSink struct {
	commons  []*elasticsearch.Common
	balancer *balancer
}

// NewElasticsearchSink builds a sink over the given descriptors. weights
// holds one delivery weight per descriptor; when empty, endpoints are
// weighted equally.
func NewElasticsearchSink(commons []*elasticsearch.Common, weights []int) (*ElasticsearchSink, error) {
	if len(commons) == 0 {
		return nil, fmt.Errorf("at least one resolved endpoint is required")
	}
	if len(weights) == 0 {
		weights = make([]int, len(commons))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(commons) {
		return nil, fmt.Errorf("got %d endpoint weights for %d endpoints", len(weights), len(commons))
	}

	return &ElasticsearchSink{
		commons:  commons,
		balancer: newBalancer(weights),
	}, nil
}

// Ship encodes the batch with the chosen endpoint's profile and delivers it,
// honoring the configured retry attempts and backoff.
func (s *ElasticsearchSink) Ship(ctx context.Context, events []Event) error {
	common := s.commons[s.balancer.next()]

	docs := make([][]byte, len(events))
	for i, e := range events {
		docs[i] = e.Document
	}
	body, err := common.Encoder.EncodeBatch(docs)
	if err != nil {
		return fmt.Errorf("encoding batch for %s: %w", common.BaseURL, err)
	}

	attempts := common.Request.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := time.Duration(common.Request.RetryBackoffMS) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		res, err := common.SendBulk(ctx, body)
		if err != nil {
			lastErr = err
			metrics.BulkRequestCounter.WithLabelValues("error", common.BaseURL).Inc()
			continue
		}

		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()

		metrics.BulkRequestDuration.WithLabelValues(common.BaseURL).Observe(time.Since(start).Seconds())
		metrics.BulkRequestCounter.WithLabelValues(strconv.Itoa(res.StatusCode), common.BaseURL).Inc()

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			metrics.EventsShipped.Add(float64(len(events)))
			return nil
		}
		lastErr = fmt.Errorf("bulk request to %s returned status %d", common.BaseURL, res.StatusCode)
	}

	return lastErr
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/snapp-incubator/logship/internal/logging"
)

var buckets = []float64{
	0.0005,
	0.001, // 1ms
	0.002,
	0.005,
	0.01, // 10ms
	0.02,
	0.05,
	0.1, // 100 ms
	0.2,
	0.5,
	1.0, // 1s
	2.0,
	5.0,
	10.0, // 10s
	15.0,
	20.0,
	30.0,
}

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logship",
		Subsystem: "shipper",
		Name:      "events_enqueued_total",
		Help:      "Events accepted into the delivery queue",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logship",
		Subsystem: "shipper",
		Name:      "events_dropped_total",
		Help:      "Events dropped because the delivery queue was full",
	})

	EventsShipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "logship",
		Subsystem: "shipper",
		Name:      "events_shipped_total",
		Help:      "Events delivered to an endpoint",
	})

	BulkRequestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logship",
		Subsystem: "sink",
		Name:      "bulk_request_count",
		Help:      "Bulk request count",
	}, []string{"status", "endpoint"})

	BulkRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "logship",
		Subsystem: "sink",
		Name:      "bulk_request_duration",
		Help:      "Duration of each bulk request",
		Buckets:   buckets,
	}, []string{"endpoint"})

	HealthcheckUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "logship",
		Subsystem: "sink",
		Name:      "endpoint_up",
		Help:      "Result of the last health check per endpoint",
	}, []string{"endpoint"})
)

// InitializeHTTP initialize the metrics
func InitializeHTTP(bind string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := http.Server{
		Addr:    bind,
		Handler: mux,
	}
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.L.Fatal("Error in HTTP server ListenAndServe", zap.Error(err))
	}
}

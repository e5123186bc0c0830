package elasticsearch

import (
	"fmt"
	"time"

	"github.com/tidwall/sjson"
)

// MetricToLogConfig configures the conversion of metric events into
// indexable log documents.
type MetricToLogConfig struct {
	// HostTag is the metric tag carrying the host name; it is lifted into
	// the top level "host" field of the document. Defaults to "host".
	HostTag string `koanf:"host_tag"`
	// Timezone used to render the document timestamp, e.g. "Asia/Tehran".
	// Defaults to UTC.
	Timezone string `koanf:"timezone"`
}

// Metric is a single measured value with its identifying tags.
type Metric struct {
	Name      string
	Value     float64
	Tags      map[string]string
	Timestamp time.Time
}

// MetricToLog renders metrics as log documents so that a single sink can
// ship both kinds of events.
type MetricToLog struct {
	hostTag  string
	location *time.Location
}

func newMetricToLog(cfg MetricToLogConfig) (*MetricToLog, error) {
	location := time.UTC
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid metrics timezone %q: %w", cfg.Timezone, err)
		}
		location = loc
	}

	hostTag := cfg.HostTag
	if hostTag == "" {
		hostTag = "host"
	}

	return &MetricToLog{hostTag: hostTag, location: location}, nil
}

// Convert renders the metric as a JSON log document.
func (m *MetricToLog) Convert(metric Metric) ([]byte, error) {
	doc := []byte(`{}`)

	var err error
	set := func(path string, value interface{}) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, value)
		}
	}

	timestamp := metric.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	// The leading @ must be escaped so sjson treats it as a key, not a
	// modifier.
	set(`\@timestamp`, timestamp.In(m.location).Format(time.RFC3339Nano))
	set("metric.name", metric.Name)
	set("metric.value", metric.Value)

	for tag, value := range metric.Tags {
		if tag == m.hostTag {
			set("host", value)
			continue
		}
		set("tags."+tag, value)
	}

	if err != nil {
		return nil, fmt.Errorf("building log document for metric %q: %w", metric.Name, err)
	}
	return doc, nil
}

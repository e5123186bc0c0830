package config

import (
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"go.uber.org/zap"

	"github.com/snapp-incubator/logship/internal/logging"
	"github.com/snapp-incubator/logship/sink/elasticsearch"
)

var (
	// k is the global koanf instance. Use "." as the key path delimiter.
	k = koanf.New(".")

	// Shipper is the config of logship
	Shipper *ShipperConfig
)

var defaultShipper = ShipperConfig{
	Metrics: metric{
		Enabled: true,
		Bind:    "0.0.0.0:9001",
	},
	Elasticsearch: elasticsearch.Config{
		Endpoints:  []string{"http://127.0.0.1:9200"},
		APIVersion: elasticsearch.APIVersionAuto,
		DocType:    "_doc",
		Request: elasticsearch.RequestConfig{
			Timeout:        30,
			RetryAttempts:  3,
			RetryBackoffMS: 1000,
		},
	},
	Proxy: elasticsearch.ProxyConfig{
		Enabled: true,
	},
	Worker: worker{
		Count:           4,
		QueueSize:       2048,
		BatchSize:       500,
		FlushIntervalMS: 5000,
	},
	Healthcheck: healthcheck{
		Required: false,
	},
}

// ShipperConfig represent config of logship.
type ShipperConfig struct {
	Metrics       metric                    `koanf:"metrics"`
	Elasticsearch elasticsearch.Config      `koanf:"elasticsearch"`
	Proxy         elasticsearch.ProxyConfig `koanf:"proxy"`
	Worker        worker                    `koanf:"worker"`
	Healthcheck   healthcheck               `koanf:"healthcheck"`

	// EndpointWeights holds one delivery weight per configured endpoint.
	// Empty means equal weights.
	EndpointWeights []int `koanf:"endpoint_weights"`
}

type metric struct {
	Enabled bool   `koanf:"enabled"` // Enablement of the metric exposure
	Bind    string `koanf:"bind"`    // Address of the http server
}

type worker struct {
	Count           int `koanf:"count"`
	QueueSize       int `koanf:"queue_size"`
	BatchSize       int `koanf:"batch_size"`
	FlushIntervalMS int `koanf:"flush_interval_ms"`
}

type healthcheck struct {
	// Required aborts start-up when an endpoint fails its health check.
	Required bool `koanf:"required"`
}

// Load function will load the file located in path and return the parsed config for logship. This function will panic on errors
func Load(path string) *ShipperConfig {
	// Load default config in the beginning
	err := k.Load(structs.Provider(defaultShipper, "koanf"), nil)
	if err != nil {
		logging.L.Fatal("error in loading the default config", zap.Error(err))
	}

	// Load YAML config and merge into the previously loaded config.
	err = k.Load(file.Provider(path), yaml.Parser())
	if err != nil {
		logging.L.Fatal("error in loading the config file", zap.Error(err))
	}

	var c ShipperConfig
	err = k.Unmarshal("", &c)
	if err != nil {
		logging.L.Fatal("error in unmarshalling the config file", zap.Error(err))
	}

	Shipper = &c
	return &c
}

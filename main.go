package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/snapp-incubator/logship/internal/config"
	"github.com/snapp-incubator/logship/internal/logging"
	"github.com/snapp-incubator/logship/internal/metrics"
	"github.com/snapp-incubator/logship/shipper"
	"github.com/snapp-incubator/logship/sink/elasticsearch"
)

var (
	help       bool   // Indicates whether to show the help or not
	configPath string // Path of config file
	debug      bool   // Enables debug logging
	dryRun     bool   // Writes documents to stdout instead of Elasticsearch
)

func init() {
	flag.BoolVar(&help, "help", false, "Show help")
	flag.StringVar(&configPath, "config", "config.yaml", "path of config file")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.BoolVar(&dryRun, "dry-run", false, "write documents to stdout instead of Elasticsearch")

	// Parse the terminal flags
	flag.Parse()
}

func main() {
	// Usage Demo
	if help {
		flag.Usage()
		return
	}
	if debug {
		logging.EnableDebug()
	}

	c := config.Load(configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sink shipper.Sink
	if dryRun {
		sink = shipper.StdoutSink{}
	} else {
		commons, err := elasticsearch.ParseMany(ctx, &c.Elasticsearch, &c.Proxy)
		if err != nil {
			logging.L.Fatal("error in resolving the Elasticsearch endpoints", zap.Error(err))
		}

		for _, common := range commons {
			if err := common.Healthcheck(ctx); err != nil {
				metrics.HealthcheckUp.WithLabelValues(common.BaseURL).Set(0)
				if c.Healthcheck.Required {
					logging.L.Fatal("endpoint is unhealthy",
						zap.String("endpoint", common.BaseURL), zap.Error(err))
				}
				logging.L.Warn("endpoint is unhealthy, continuing anyway",
					zap.String("endpoint", common.BaseURL), zap.Error(err))
				continue
			}
			metrics.HealthcheckUp.WithLabelValues(common.BaseURL).Set(1)
		}

		sink, err = shipper.NewElasticsearchSink(commons, c.EndpointWeights)
		if err != nil {
			logging.L.Fatal("error in building the Elasticsearch sink", zap.Error(err))
		}
	}

	if c.Metrics.Enabled {
		go metrics.InitializeHTTP(c.Metrics.Bind)
	}

	s := shipper.New(sink, shipper.Options{
		Workers:       c.Worker.Count,
		QueueSize:     c.Worker.QueueSize,
		BatchSize:     c.Worker.BatchSize,
		FlushInterval: time.Duration(c.Worker.FlushIntervalMS) * time.Millisecond,
	})
	s.Run(ctx)
	logging.L.Info("shipper is running")

	go readStdin(s)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	s.Close()
	logging.L.Debug("all events drained")
}

// readStdin feeds newline-delimited JSON documents from stdin into the
// delivery queue.
func readStdin(s *shipper.Shipper) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		s.Enqueue(shipper.Event{Document: line})
	}
	if err := scanner.Err(); err != nil {
		logging.L.Error("error in reading stdin", zap.Error(err))
	}
}

package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"

	"github.com/snapp-incubator/logship/shipper"
	"github.com/snapp-incubator/logship/sink/elasticsearch"
)

type LogshipE2ETestSuite struct {
	suite.Suite

	srv        *httptest.Server
	probeCount int64
	bulkBodies chan []byte
}

func (s *LogshipE2ETestSuite) SetupSuite() {
	s.bulkBodies = make(chan []byte, 8)

	r := mux.NewRouter()
	r.HandleFunc("/_cluster/state/version", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&s.probeCount, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"cluster_name": "e2e", "version": 8})
	}).Methods("GET")

	r.HandleFunc("/_cluster/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"cluster_name": "e2e", "status": "green"})
	}).Methods("GET")

	r.HandleFunc("/_bulk", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.bulkBodies <- body

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"took": 3, "errors": false})
	}).Methods("POST")

	s.srv = httptest.NewServer(r)
}

func (s *LogshipE2ETestSuite) TearDownSuite() {
	s.srv.Close()
}

func (s *LogshipE2ETestSuite) TestShipToStubCluster() {
	cfg := &elasticsearch.Config{
		Endpoints:  []string{s.srv.URL, s.srv.URL},
		APIVersion: elasticsearch.APIVersionAuto,
		DocType:    "_doc",
		Pipeline:   "p1",
		Request:    elasticsearch.RequestConfig{Timeout: 5, RetryAttempts: 1},
	}

	ctx := context.Background()
	commons, err := elasticsearch.ParseMany(ctx, cfg, nil)
	s.Require().NoError(err)
	s.Require().Len(commons, 2)

	// A single probe serves the whole pass; both descriptors agree.
	s.Require().EqualValues(1, atomic.LoadInt64(&s.probeCount))
	s.Require().Equal(8, commons[0].Version)
	s.Require().Equal(commons[0].Version, commons[1].Version)

	for _, common := range commons {
		s.Require().NoError(common.Healthcheck(ctx))
	}

	sink, err := shipper.NewElasticsearchSink(commons, nil)
	s.Require().NoError(err)

	pump := shipper.New(sink, shipper.Options{
		Workers:       1,
		QueueSize:     16,
		BatchSize:     2,
		FlushInterval: 50 * time.Millisecond,
	})
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pump.Run(runCtx)

	s.Require().True(pump.Enqueue(shipper.Event{Document: []byte(`{"message":"hello"}`)}))
	s.Require().True(pump.Enqueue(shipper.Event{Document: []byte(`{"message":"world"}`)}))

	select {
	case body := <-s.bulkBodies:
		s.Contains(string(body), `"message":"hello"`)
		s.Contains(string(body), `"message":"world"`)
		s.Contains(string(body), `"_index"`)
	case <-time.After(5 * time.Second):
		s.FailNow("no bulk request received")
	}

	pump.Close()
}

func TestLogshipE2ETestSuite(t *testing.T) {
	suite.Run(t, new(LogshipE2ETestSuite))
}

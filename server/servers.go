package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gorilla/mux"

	"github.com/snapp-incubator/logship/internal/logging"
)

var (
	bind      = flag.String("bind", "localhost:9200", "bind address of the stub node")
	version   = flag.Int("version", 8, "cluster state version the stub reports")
	unhealthy = flag.Bool("unhealthy", false, "answer health checks with 503")
)

// The stub Elasticsearch node. It serves the administrative paths the sink
// touches during resolution plus the bulk path, for smoke runs without a
// real cluster.
func main() {
	flag.Parse()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	s := server(*bind, initRoutes)
	logging.L.Info("stub Elasticsearch node is running", zap.String("bind", *bind))

	<-c
	shutdown(s)
	logging.L.Debug("stub node is down")
	os.Exit(0)
}

// server is HTTP server creator.
func server(address string, initRoutes func(r *mux.Router)) *http.Server {
	r := mux.NewRouter()

	initRoutes(r)

	srv := &http.Server{
		Addr:         address,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}()

	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(2)*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}

func initRoutes(r *mux.Router) {
	r.HandleFunc("/_cluster/state/version", clusterStateHandler()).Methods("GET")
	r.HandleFunc("/_cluster/health", clusterHealthHandler()).Methods("GET")
	r.HandleFunc("/_bulk", bulkHandler()).Methods("POST")
}

// handlers
type clusterState struct {
	ClusterName string `json:"cluster_name"`
	Version     int    `json:"version"`
}

type clusterHealth struct {
	ClusterName string `json:"cluster_name"`
	Status      string `json:"status"`
}

type bulkResponse struct {
	Took   int  `json:"took"`
	Errors bool `json:"errors"`
}

func clusterStateHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		res := clusterState{ClusterName: "logship-stub", Version: *version}
		if err := json.NewEncoder(w).Encode(&res); err != nil {
			logging.L.Warn("error in encode response body", zap.Error(err))
		}
	}
}

func clusterHealthHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if *unhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		res := clusterHealth{ClusterName: "logship-stub", Status: "green"}
		if err := json.NewEncoder(w).Encode(&res); err != nil {
			logging.L.Warn("error in encode response body", zap.Error(err))
		}
	}
}

func bulkHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		n, err := io.Copy(io.Discard, r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			logging.L.Warn("error in reading the bulk body", zap.Error(err))
			return
		}
		logging.L.Debug("received bulk request", zap.Int64("body_bytes", n))

		res := bulkResponse{Took: 3}
		if err := json.NewEncoder(w).Encode(&res); err != nil {
			logging.L.Warn("error in encode response body", zap.Error(err))
		}
	}
}

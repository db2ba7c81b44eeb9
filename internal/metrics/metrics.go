package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_ingest_duration_seconds",
			Help:    "Duration of each ingest run in seconds.",
			Buckets: []float64{30, 60, 300, 900, 1800, 3600},
		},
	)
	IngestedJobsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_jobs_ingested_total",
			Help: "Total number of ingested job records by source and result (added, updated, skipped).",
		},
		[]string{"source", "result"},
	)
	SourceFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_source_failures_total",
			Help: "Total number of ingest runs in which a source failed.",
		},
		[]string{"source"},
	)
	FetchRequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_fetch_requests_total",
			Help: "Total number of page fetches by outcome.",
		},
		[]string{"outcome"},
	)
	SearchesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_searches_total",
			Help: "Total number of materialized searches by mode (query, random).",
		},
		[]string{"mode"},
	)
	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_active_sessions",
			Help: "Number of search sessions kept in memory.",
		},
	)
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(IngestDuration)
		prometheus.MustRegister(IngestedJobsCounter)
		prometheus.MustRegister(SourceFailuresCounter)
		prometheus.MustRegister(FetchRequestsCounter)
		prometheus.MustRegister(SearchesCounter)
		prometheus.MustRegister(ActiveSessionsGauge)
	})
}

// StartMetricsServer exposes /metrics and a plain /healthz probe.
func StartMetricsServer(address string) *http.Server {

	register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{Addr: address, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server failed: %v", err)
		}
	}()
	log.Infof("metrics server listening on %s", address)
	return server
}

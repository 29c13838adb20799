package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pawlift_command_runs_total",
		Help: "Total command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pawlift_command_errors_total",
		Help: "Total command failures",
	}, []string{"command"})
	Predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pawlift_predictions_total",
		Help: "Total predictions served by pet kind and label",
	}, []string{"kind", "label"})
	ExtractionDefaults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pawlift_extraction_defaults_total",
		Help: "Inputs that produced the all-default feature vector",
	})
	SchemaMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pawlift_schema_mismatch_total",
		Help: "Predictions rejected for schema drift",
	})
	SuggestionSessions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pawlift_suggestion_sessions_total",
		Help: "Suggestion sessions by terminal status",
	}, []string{"status"})
	GenerationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pawlift_generation_latency_seconds",
		Help:    "Latency of generation capability calls",
		Buckets: prometheus.DefBuckets,
	})
	GenerationRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pawlift_generation_retries_total",
		Help: "Total generation retry attempts",
	}, []string{"provider"})
	IngestRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pawlift_ingest_runs_total",
		Help: "Total corpus ingestion runs",
	})
	IngestErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pawlift_ingest_errors_total",
		Help: "Total corpus ingestion errors",
	})
	IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pawlift_ingest_duration_seconds",
		Help:    "Ingestion duration seconds",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		CommandRuns, CommandErrors, Predictions, ExtractionDefaults,
		SchemaMismatches, SuggestionSessions, GenerationLatency,
		GenerationRetries, IngestRuns, IngestErrors, IngestDuration,
	)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

func IncPrediction(kind, label string) { Predictions.WithLabelValues(kind, label).Inc() }

func IncSuggestionSession(status string) { SuggestionSessions.WithLabelValues(status).Inc() }

// ObserveGenerationLatency records one generation round trip.
func ObserveGenerationLatency(start time.Time) {
	GenerationLatency.Observe(time.Since(start).Seconds())
}

// ObserveIngestDuration records a run duration
func ObserveIngestDuration(start time.Time) {
	IngestDuration.Observe(time.Since(start).Seconds())
}

// IncGenerationRetry increments the retry counter for a provider.
func IncGenerationRetry(provider string) { GenerationRetries.WithLabelValues(provider).Inc() }

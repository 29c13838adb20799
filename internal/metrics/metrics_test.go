package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	IncCommandRun("score")
	IncCommandError("score")
	IncPrediction("dog", "HIGH")
	ExtractionDefaults.Inc()
	SchemaMismatches.Inc()
	IncSuggestionSession("IMPROVED")
	IncGenerationRetry("openai")
	ObserveGenerationLatency(time.Now().Add(-300 * time.Millisecond))
	IngestRuns.Inc()
	ObserveIngestDuration(time.Now().Add(-1500 * time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"pawlift_command_runs_total",
		"pawlift_command_errors_total",
		"pawlift_predictions_total",
		"pawlift_extraction_defaults_total",
		"pawlift_schema_mismatch_total",
		"pawlift_suggestion_sessions_total",
		"pawlift_generation_latency_seconds",
		"pawlift_generation_retries_total",
		"pawlift_ingest_runs_total",
		"pawlift_ingest_duration_seconds",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}

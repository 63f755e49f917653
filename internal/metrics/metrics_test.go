package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ytqa/internal/metrics"
)

func TestRecordActionOutcomes(t *testing.T) {
	m := metrics.New()

	done := m.RecordActionStart("ask")
	if got := testutil.ToFloat64(m.ActionsInFlight.WithLabelValues("ask")); got != 1 {
		t.Fatalf("in flight = %v, want 1", got)
	}
	done(nil)
	m.RecordActionStart("ask")(errors.New("boom"))

	if got := testutil.ToFloat64(m.ActionsInFlight.WithLabelValues("ask")); got != 0 {
		t.Fatalf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("ask", "success")); got != 1 {
		t.Fatalf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("ask", "failure")); got != 1 {
		t.Fatalf("failure = %v, want 1", got)
	}
}

func TestRecordStageCountsErrorsByKind(t *testing.T) {
	m := metrics.New()
	m.RecordStage("download", time.Second, nil, "")
	m.RecordStage("download", time.Second, errors.New("x"), "DownloadError")

	if got := testutil.ToFloat64(m.StageErrors.WithLabelValues("download", "DownloadError")); got != 1 {
		t.Fatalf("stage errors = %v, want 1", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *metrics.Metrics
	m.RecordActionStart("x")(nil)
	m.RecordStage("x", 0, nil, "")
	m.RecordTranscript(1, 1)
	m.RecordRetrieval(1, 1)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := metrics.New()
	m.RecordTranscript(3, 12.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "ytqa_segments_transcribed_total 3") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Fatal("expected runtime collectors to be registered")
	}
}

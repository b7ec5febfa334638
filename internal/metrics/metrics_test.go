package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordFetchAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchAttempt("orders")
	c.RecordFetchAttempt("orders")
	c.RecordFetchAttempt("users")

	if got := testutil.ToFloat64(c.fetchAttempts.WithLabelValues("orders")); got != 2 {
		t.Errorf("orders試行数 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetchAttempts.WithLabelValues("users")); got != 1 {
		t.Errorf("users試行数 = %v, want 1", got)
	}
}

func TestCollector_RecordFetchFailure_ByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchFailure("orders", "transient")
	c.RecordFetchFailure("orders", "terminal")
	c.RecordFetchFailure("orders", "transient")

	if got := testutil.ToFloat64(c.fetchFailures.WithLabelValues("orders", "transient")); got != 2 {
		t.Errorf("transient失敗数 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.fetchFailures.WithLabelValues("orders", "terminal")); got != 1 {
		t.Errorf("terminal失敗数 = %v, want 1", got)
	}
}

func TestCollector_RecordHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(500)
	c.RecordHTTPStatus(500)
	c.RecordHTTPStatus(200)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("500")); got != 2 {
		t.Errorf("500カウント = %v, want 2", got)
	}
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFetchAttempt("orders")
	c.RecordFetchRetry("orders")
	c.RecordFetchLatency(120 * time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, name := range []string{
		"messdash_backend_fetch_attempts_total",
		"messdash_backend_fetch_retries_total",
		"messdash_backend_fetch_latency_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("/metrics出力に %s が含まれていない", name)
		}
	}
}

// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はバックエンドフェッチのPrometheusメトリクスを収集する。
// backendパッケージのMetricsRecorderインターフェースを実装する。
type Collector struct {
	fetchAttempts *prometheus.CounterVec
	fetchRetries  *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messdash_backend_fetch_attempts_total",
			Help: "バックエンドフェッチ試行の合計数（リトライ含む）",
		}, []string{"endpoint"}),
		fetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messdash_backend_fetch_retries_total",
			Help: "一時的サーバーエラーによる再試行の合計数",
		}, []string{"endpoint"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messdash_backend_fetch_failures_total",
			Help: "終端エラーで終わったフェッチの合計数（エラー種別ごと）",
		}, []string{"endpoint", "kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messdash_backend_http_status_total",
			Help: "バックエンドのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "messdash_backend_fetch_latency_seconds",
			Help:    "バックエンドフェッチ1試行あたりのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.fetchAttempts,
		c.fetchRetries,
		c.fetchFailures,
		c.httpStatus,
		c.fetchLatency,
	)

	return c
}

// RecordFetchAttempt はフェッチ試行を記録する。
func (c *Collector) RecordFetchAttempt(endpoint string) {
	c.fetchAttempts.WithLabelValues(endpoint).Inc()
}

// RecordFetchRetry は再試行を記録する。
func (c *Collector) RecordFetchRetry(endpoint string) {
	c.fetchRetries.WithLabelValues(endpoint).Inc()
}

// RecordFetchFailure は終端エラーを記録する。
func (c *Collector) RecordFetchFailure(endpoint string, kind string) {
	c.fetchFailures.WithLabelValues(endpoint, kind).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

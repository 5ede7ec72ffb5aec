// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// ペルソナ生成パイプラインとHTTP層の両方から利用する。
type Collector struct {
	buildSuccess prometheus.Counter
	buildFail    *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
	fetchLatency prometheus.Histogram
	genLatency   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		buildSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "personabuilder_build_success_total",
			Help: "ペルソナ生成成功の合計数",
		}),
		buildFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "personabuilder_build_fail_total",
			Help: "ペルソナ生成失敗のステージ別合計数",
		}, []string{"stage"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "personabuilder_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "personabuilder_reddit_fetch_latency_seconds",
			Help:    "Redditアクティビティ取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		genLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "personabuilder_generation_latency_seconds",
			Help:    "LLMペルソナ生成のレイテンシ（秒）",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 300},
		}),
	}

	reg.MustRegister(
		c.buildSuccess,
		c.buildFail,
		c.httpStatus,
		c.fetchLatency,
		c.genLatency,
	)

	return c
}

// RecordBuildSuccess はペルソナ生成成功を記録する。
func (c *Collector) RecordBuildSuccess() {
	c.buildSuccess.Inc()
}

// RecordBuildFailure はペルソナ生成失敗を失敗ステージ付きで記録する。
func (c *Collector) RecordBuildFailure(stage string) {
	c.buildFail.WithLabelValues(stage).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency はRedditアクティビティ取得のレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordGenerationLatency はLLM生成のレイテンシを記録する。
func (c *Collector) RecordGenerationLatency(duration time.Duration) {
	c.genLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

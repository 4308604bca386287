// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordAuthSuccess(provider string)
	RecordAuthFailure(provider string, reason string)
	RecordGuardRedirect(path string)
	RecordAvatarBlocked()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	authSuccess    *prometheus.CounterVec
	authFailure    *prometheus.CounterVec
	guardRedirect  *prometheus.CounterVec
	avatarBlocked  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rbac_request_latency_seconds",
			Help:    "リクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_auth_success_total",
			Help: "サインイン成功の合計数（プロバイダー別）",
		}, []string{"provider"}),
		authFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_auth_failure_total",
			Help: "サインイン失敗の合計数（プロバイダー・理由別）",
		}, []string{"provider", "reason"}),
		guardRedirect: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rbac_guard_redirect_total",
			Help: "ルートガードによるリダイレクトの合計数（パス別）",
		}, []string{"path"}),
		avatarBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rbac_avatar_blocked_total",
			Help: "SSRFガードでブロックされたアバター取得の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.authSuccess,
		c.authFailure,
		c.guardRedirect,
		c.avatarBlocked,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordAuthSuccess はサインイン成功を記録する。
func (c *Collector) RecordAuthSuccess(provider string) {
	c.authSuccess.WithLabelValues(provider).Inc()
}

// RecordAuthFailure はサインイン失敗を記録する。
func (c *Collector) RecordAuthFailure(provider string, reason string) {
	c.authFailure.WithLabelValues(provider, reason).Inc()
}

// RecordGuardRedirect はルートガードによるリダイレクトを記録する。
func (c *Collector) RecordGuardRedirect(path string) {
	c.guardRedirect.WithLabelValues(path).Inc()
}

// RecordAvatarBlocked はブロックされたアバター取得を記録する。
func (c *Collector) RecordAvatarBlocked() {
	c.avatarBlocked.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

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
// ログイン処理のサービス層とHTTPミドルウェアから利用する。
type Collector struct {
	loginSuccess    prometheus.Counter
	loginFail       *prometheus.CounterVec
	usersCreated    prometheus.Counter
	exchangeLatency prometheus.Histogram
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gauth_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gauth_login_failure_total",
			Help: "ログイン失敗の合計数（失敗ステージ別）",
		}, []string{"stage"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gauth_users_created_total",
			Help: "初回ログインで作成されたユーザーの合計数",
		}),
		exchangeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gauth_exchange_latency_seconds",
			Help:    "プロバイダーとのコード交換のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gauth_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.usersCreated,
		c.exchangeLatency,
		c.httpStatus,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を失敗ステージ付きで記録する。
func (c *Collector) RecordLoginFailure(stage string) {
	c.loginFail.WithLabelValues(stage).Inc()
}

// RecordUserCreated は新規ユーザー作成を記録する。
func (c *Collector) RecordUserCreated() {
	c.usersCreated.Inc()
}

// RecordExchangeLatency はコード交換のレイテンシを記録する。
func (c *Collector) RecordExchangeLatency(duration time.Duration) {
	c.exchangeLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

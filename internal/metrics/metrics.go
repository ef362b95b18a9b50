// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 決済・権利ゲート・生成の各サービス層から利用する。
type MetricsCollector interface {
	RecordVerificationAccepted()
	RecordVerificationRejected()
	RecordCreditsGranted()
	RecordCreditConsumed()
	RecordGateDenial(reason string)
	RecordGenerationSuccess()
	RecordGenerationFailure()
	ObserveGenerationDuration(seconds float64)
	RecordOrderCreated()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	verificationAccepted prometheus.Counter
	verificationRejected prometheus.Counter
	creditsGranted       prometheus.Counter
	creditsConsumed      prometheus.Counter
	gateDenials          *prometheus.CounterVec
	generationSuccess    prometheus.Counter
	generationFailure    prometheus.Counter
	generationDuration   prometheus.Histogram
	ordersCreated        prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		verificationAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_verification_accepted_total",
			Help: "決済署名検証成功の合計数",
		}),
		verificationRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_verification_rejected_total",
			Help: "決済署名検証拒否の合計数",
		}),
		creditsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_credits_granted_total",
			Help: "クレジット付与の合計回数",
		}),
		creditsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_credits_consumed_total",
			Help: "クレジット消費の合計数",
		}),
		gateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdocs_gate_denials_total",
			Help: "理由別のクレジットゲート拒否数",
		}, []string{"reason"}),
		generationSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_generation_success_total",
			Help: "ドキュメント生成成功の合計数",
		}),
		generationFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_generation_failure_total",
			Help: "ドキュメント生成失敗の合計数",
		}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobdocs_generation_duration_seconds",
			Help:    "ドキュメント生成のレイテンシ（秒）",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 90},
		}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobdocs_orders_created_total",
			Help: "決済注文作成の合計数",
		}),
	}

	reg.MustRegister(
		c.verificationAccepted,
		c.verificationRejected,
		c.creditsGranted,
		c.creditsConsumed,
		c.gateDenials,
		c.generationSuccess,
		c.generationFailure,
		c.generationDuration,
		c.ordersCreated,
	)

	return c
}

// RecordVerificationAccepted は決済署名検証の成功を記録する。
func (c *Collector) RecordVerificationAccepted() {
	c.verificationAccepted.Inc()
}

// RecordVerificationRejected は決済署名検証の拒否を記録する。
func (c *Collector) RecordVerificationRejected() {
	c.verificationRejected.Inc()
}

// RecordCreditsGranted はクレジット付与を記録する。
func (c *Collector) RecordCreditsGranted() {
	c.creditsGranted.Inc()
}

// RecordCreditConsumed はクレジット消費を記録する。
func (c *Collector) RecordCreditConsumed() {
	c.creditsConsumed.Inc()
}

// RecordGateDenial はゲート拒否を理由付きで記録する。
// reasonは"unpaid"または"exhausted"。
func (c *Collector) RecordGateDenial(reason string) {
	c.gateDenials.WithLabelValues(reason).Inc()
}

// RecordGenerationSuccess はドキュメント生成の成功を記録する。
func (c *Collector) RecordGenerationSuccess() {
	c.generationSuccess.Inc()
}

// RecordGenerationFailure はドキュメント生成の失敗を記録する。
func (c *Collector) RecordGenerationFailure() {
	c.generationFailure.Inc()
}

// ObserveGenerationDuration は生成のレイテンシを記録する。
func (c *Collector) ObserveGenerationDuration(seconds float64) {
	c.generationDuration.Observe(seconds)
}

// RecordOrderCreated は決済注文の作成を記録する。
func (c *Collector) RecordOrderCreated() {
	c.ordersCreated.Inc()
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

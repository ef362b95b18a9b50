package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/jobdocs/internal/metrics"
	"github.com/hitoshi/jobdocs/internal/middleware"
)

// HealthChecker はヘルスチェックで使用するDB疎通確認のインターフェース。
// *sql.DB が満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 注文作成
	OrderService OrderServiceInterface
	OrderConfig  OrderHandlerConfig

	// 決済検証
	PaymentService PaymentServiceInterface

	// ドキュメント生成
	GenerateService GenerateServiceInterface
	Gate            CreditGate
	Consumer        CreditConsumer

	// メトリクス
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit(General)
//
// /healthz と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))

	orderHandler := NewOrderHandler(deps.OrderService, deps.Metrics, deps.OrderConfig)
	paymentHandler := NewPaymentHandler(deps.PaymentService)
	generateHandler := NewGenerateHandler(
		deps.GenerateService, deps.Gate, deps.Consumer,
		deps.RateLimiter, deps.Metrics, logger,
	)

	// --- 運用系ルート（レート制限の外） ---

	r.Get("/healthz", newHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// POST /api/orders - 決済注文の作成
		r.Post("/api/orders", orderHandler.CreateOrder)

		// POST /api/payments/verify - 決済検証とクレジット付与
		r.Post("/api/payments/verify", paymentHandler.VerifyPayment)

		// POST /api/generate - ドキュメント生成（生成専用レート制限を追加）
		r.With(deps.RateLimiter.GenerateMiddleware()).Post("/api/generate", generateHandler.Generate)
	})

	return r
}

// newHealthHandler はヘルスチェックハンドラーを返す。
// DBへ疎通できない場合は503を返す（コンテナオーケストレータの再起動判断用）。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

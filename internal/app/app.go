// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/jobdocs/internal/config"
	"github.com/hitoshi/jobdocs/internal/database"
	"github.com/hitoshi/jobdocs/internal/entitlement"
	"github.com/hitoshi/jobdocs/internal/generator"
	"github.com/hitoshi/jobdocs/internal/handler"
	"github.com/hitoshi/jobdocs/internal/logger"
	"github.com/hitoshi/jobdocs/internal/metrics"
	"github.com/hitoshi/jobdocs/internal/middleware"
	"github.com/hitoshi/jobdocs/internal/payment"
	"github.com/hitoshi/jobdocs/internal/repository"
	"github.com/hitoshi/jobdocs/internal/security"
	"github.com/hitoshi/jobdocs/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルでロガーを再構成する
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(logger.SetupWithLevel(w, logger.ParseLevel(cfg.LogLevel)))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// PostgreSQL（監査）とRedis（権利ストア）へ接続し、全依存関係を
// ワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続（監査・注文記録）
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. Redis接続（権利レコード）
	redisClient, err := entitlement.OpenRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to open redis: %w", err)
	}
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("entitlement store connection established")

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. リポジトリの初期化
	orderRepo := repository.NewPostgresPaymentOrderRepo(db)
	eventRepo := repository.NewPostgresPaymentEventRepo(db)

	// 5. 権利サービスの初期化
	store := entitlement.NewRedisStore(redisClient)
	entService := entitlement.NewService(store, cfg.StoreRetryDelay, slog.Default())
	gate := entitlement.NewGate(entService, slog.Default())

	// 6. 決済サービスの初期化
	verifier := payment.NewVerifier(cfg.RazorpayKeySecret)
	paymentService := payment.NewService(
		verifier, entService, orderRepo, eventRepo, collector, slog.Default(),
		payment.ServiceConfig{DevPaymentBypass: cfg.DevPaymentBypass},
	)
	if cfg.DevPaymentBypass {
		slog.Warn("DEV_PAYMENT_BYPASS is enabled: payment signatures will not be verified")
	}

	gateway := payment.NewRazorpayClient(
		&http.Client{Timeout: cfg.OrderTimeout},
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret, slog.Default(),
	)
	orderService := payment.NewOrderService(gateway, orderRepo, slog.Default())

	// 7. 生成サービスの初期化
	geminiClient := generator.NewGeminiClient(
		&http.Client{Timeout: cfg.GenerateTimeout},
		cfg.GeminiAPIKey, cfg.GeminiModel, slog.Default(),
	)
	generateService := generator.NewService(
		geminiClient, security.NewProfileSanitizer(), collector,
		cfg.GenerateTimeout, slog.Default(),
	)

	// 8. ルーターの構築
	// configのレート値はreq/min単位なのでreq/secに変換する
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:    cfg.RateLimitGeneral,
		GenerateRate:    rate.Limit(float64(cfg.RateLimitGenerate) / 60.0),
		GenerateBurst:   cfg.RateLimitGenerate,
		CleanupInterval: 5 * time.Minute,
	})
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		OrderService:   orderService,
		OrderConfig:    handler.OrderHandlerConfig{RazorpayKeyID: cfg.RazorpayKeyID},
		PaymentService: paymentService,

		GenerateService: generateService,
		Gate:            gate,
		Consumer:        handler.NewCreditConsumerAdapter(entService, eventRepo, slog.Default()),

		Metrics:         collector,
		MetricsGatherer: registry,

		HealthChecker: db,
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerateTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 監査イベントのクリーンアップジョブを日次で実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())
	cleanupJob.RetentionDays = cfg.EventRetentionDays

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Int("retention_days", cfg.EventRetentionDays),
	)

	// 起動直後に1回実行
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

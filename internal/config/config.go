// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database（注文・監査ログ）
	DatabaseURL string

	// Entitlement Store（権利レコードKV）
	RedisURL string

	// Razorpay
	RazorpayKeyID     string
	RazorpayKeySecret string

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Generation
	GenerateTimeout time.Duration

	// Payment
	OrderTimeout time.Duration

	// Entitlement Store の read-after-write リトライ間隔
	StoreRetryDelay time.Duration

	// Rate Limit
	RateLimitGeneral  int // API全般（req/min/IP）
	RateLimitGenerate int // 生成エンドポイント（req/min/identity）

	// 監査ログ保持日数
	EventRetentionDays int

	// 開発用: 決済署名の検証をスキップする。本番では必ずfalse。
	DevPaymentBypass bool

	// Server
	ServerPort string

	// Logging
	LogLevel string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}

	cfg.RazorpayKeyID = os.Getenv("RAZORPAY_KEY_ID")
	if cfg.RazorpayKeyID == "" {
		missing = append(missing, "RAZORPAY_KEY_ID")
	}

	cfg.RazorpayKeySecret = os.Getenv("RAZORPAY_KEY_SECRET")
	if cfg.RazorpayKeySecret == "" {
		missing = append(missing, "RAZORPAY_KEY_SECRET")
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-3-flash-preview")
	cfg.GenerateTimeout = getEnvDuration("GENERATE_TIMEOUT", 90*time.Second)
	cfg.OrderTimeout = getEnvDuration("ORDER_TIMEOUT", 10*time.Second)
	cfg.StoreRetryDelay = getEnvDuration("STORE_RETRY_DELAY", 200*time.Millisecond)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitGenerate = getEnvInt("RATE_LIMIT_GENERATE", 5)
	cfg.EventRetentionDays = getEnvInt("EVENT_RETENTION_DAYS", 365)
	cfg.DevPaymentBypass = getEnvBool("DEV_PAYMENT_BYPASS", false)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

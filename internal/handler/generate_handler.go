package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobdocs/internal/entitlement"
	"github.com/hitoshi/jobdocs/internal/generator"
	"github.com/hitoshi/jobdocs/internal/identity"
	"github.com/hitoshi/jobdocs/internal/model"
)

// GenerateServiceInterface は生成ハンドラーが必要とするサービスインターフェース。
type GenerateServiceInterface interface {
	// Generate はプロフィールからドキュメント一式を生成する。
	Generate(ctx context.Context, req generator.GenerateRequest) (*model.DocumentBundle, error)
}

// CreditGate は生成前の認可判定インターフェース。
// entitlement.Gateの部分集合として定義する。
type CreditGate interface {
	Decide(ctx context.Context, hashedID string) (entitlement.Decision, *model.EntitlementRecord, error)
}

// CreditConsumer は生成成功後のクレジット消費インターフェース。
// entitlement.Serviceの部分集合として定義する。
type CreditConsumer interface {
	Consume(ctx context.Context, hashedID string) (int, error)
}

// GenerateLimiter は生成レート制限の判定インターフェース。
// middleware.RateLimiterの部分集合として定義する。
type GenerateLimiter interface {
	AllowGenerate(key string) bool
}

// GenerateMetricsRecorder は生成ゲートメトリクスの記録インターフェース。
type GenerateMetricsRecorder interface {
	RecordGateDenial(reason string)
	RecordCreditConsumed()
}

// GenerateHandler はドキュメント生成のHTTPハンドラー。
// レート制限 → ゲート判定 → 生成 → クレジット消費 の順で処理する。
// クレジットは生成が成功した場合にのみ消費される。
type GenerateHandler struct {
	service  GenerateServiceInterface
	gate     CreditGate
	consumer CreditConsumer
	limiter  GenerateLimiter
	metrics  GenerateMetricsRecorder
	logger   *slog.Logger
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(
	service GenerateServiceInterface,
	gate CreditGate,
	consumer CreditConsumer,
	limiter GenerateLimiter,
	metrics GenerateMetricsRecorder,
	logger *slog.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		service:  service,
		gate:     gate,
		consumer: consumer,
		limiter:  limiter,
		metrics:  metrics,
		logger:   logger,
	}
}

// generateRequest はドキュメント生成リクエストのボディ。
// packageTypeは含まない。適用パッケージはサーバー側の権利レコードから決まる。
type generateRequest struct {
	Email    string             `json:"email"`
	Phone    string             `json:"phone"`
	Profile  *model.UserProfile `json:"profile"`
	Feedback string             `json:"feedback"`
}

// generateResponse はドキュメント生成のAPIレスポンス。
type generateResponse struct {
	Documents        *model.DocumentBundle `json:"documents"`
	RemainingCredits int                   `json:"remainingCredits"`
}

// Generate はドキュメント生成を処理する。
// POST /api/generate
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	hashedID, err := identity.Key(req.Email, req.Phone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 1. 識別キー単位のレート制限（IPベースのミドルウェア制限とは独立）
	if !h.limiter.AllowGenerate(hashedID) {
		writeAPIErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
			Code:     "RATE_LIMIT_EXCEEDED",
			Message:  "生成リクエストが多すぎます。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		})
		return
	}

	// 2. ゲート判定（クライアントの「支払済み」主張は参照しない）
	decision, record, err := h.gate.Decide(r.Context(), hashedID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	switch decision {
	case entitlement.DenyUnpaid:
		h.metrics.RecordGateDenial(decision.String())
		writeAPIErrorResponse(w, http.StatusPaymentRequired, model.NewPaymentRequiredError())
		return
	case entitlement.DenyExhausted:
		h.metrics.RecordGateDenial(decision.String())
		writeAPIErrorResponse(w, http.StatusConflict, model.NewCreditsExhaustedError())
		return
	}

	// 3. 生成（適用パッケージは権利レコードから決まる）
	bundle, err := h.service.Generate(r.Context(), generator.GenerateRequest{
		Profile:     req.Profile,
		Feedback:    req.Feedback,
		PackageType: record.PackageType,
	})
	if err != nil {
		// 失敗時はクレジットを消費しない
		handleServiceError(w, err)
		return
	}

	// 4. クレジット消費（生成成功後のみ）
	// 消費の書き込み失敗は生成結果の返却を妨げない。
	// ユーザーは既にバックエンドのコストを発生させており、再試行を強いると二重コストになる。
	remaining := record.Credits - 1
	if n, err := h.consumer.Consume(r.Context(), hashedID); err != nil {
		h.logger.Error("クレジット消費の書き込みに失敗しました",
			slog.String("identity_key", hashedID),
			slog.String("error", err.Error()),
		)
	} else {
		remaining = n
		h.metrics.RecordCreditConsumed()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(generateResponse{
		Documents:        bundle,
		RemainingCredits: remaining,
	})
}

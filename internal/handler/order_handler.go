// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/jobdocs/internal/model"
	"github.com/hitoshi/jobdocs/internal/payment"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	// CreateOrder は指定パッケージの注文を決済ゲートウェイに作成する。
	CreateOrder(ctx context.Context, email, phone string, pkg model.PackageType) (*payment.GatewayOrder, error)
}

// OrderMetricsRecorder は注文メトリクスの記録インターフェース。
type OrderMetricsRecorder interface {
	RecordOrderCreated()
}

// OrderHandlerConfig は注文ハンドラーの設定。
type OrderHandlerConfig struct {
	// RazorpayKeyID はチェックアウトウィジェットに渡す公開キーID。
	// シークレットではないためレスポンスに含めてよい。
	RazorpayKeyID string
}

// OrderHandler は決済注文作成のHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
	metrics OrderMetricsRecorder
	config  OrderHandlerConfig
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface, metrics OrderMetricsRecorder, config OrderHandlerConfig) *OrderHandler {
	return &OrderHandler{
		service: service,
		metrics: metrics,
		config:  config,
	}
}

// createOrderRequest は注文作成リクエストのボディ。
type createOrderRequest struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PackageType string `json:"packageType"`
}

// orderResponse は注文作成のAPIレスポンス。
// チェックアウトウィジェットの起動に必要な情報を返す。
type orderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateOrder は決済注文の作成を処理する。
// POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req.Email, req.Phone, model.PackageType(req.PackageType))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordOrderCreated()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(orderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.config.RazorpayKeyID,
	})
}

// --- ヘルパー関数 ---

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidIdentity,
		model.ErrCodeInvalidPackage,
		model.ErrCodeInvalidRequest,
		model.ErrCodeMalformedVerification:
		return http.StatusBadRequest
	case model.ErrCodeSignatureMismatch:
		return http.StatusUnauthorized
	case model.ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case model.ErrCodeCreditsExhausted:
		return http.StatusConflict
	case model.ErrCodeGenerationFailed, model.ErrCodeOrderCreationFailed:
		return http.StatusBadGateway
	case model.ErrCodeStoreUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

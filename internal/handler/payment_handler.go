package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/jobdocs/internal/model"
	"github.com/hitoshi/jobdocs/internal/payment"
)

// PaymentServiceInterface は決済ハンドラーが必要とするサービスインターフェース。
type PaymentServiceInterface interface {
	// VerifyAndGrant は決済完了コールバックを検証し、成功時にクレジットを付与する。
	VerifyAndGrant(ctx context.Context, req payment.VerifyRequest) error
}

// PaymentHandler は決済検証のHTTPハンドラー。
type PaymentHandler struct {
	service PaymentServiceInterface
}

// NewPaymentHandler はPaymentHandlerを生成する。
func NewPaymentHandler(service PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// verifyPaymentRequest は決済検証リクエストのボディ。
// orderId/paymentId/signatureは決済ゲートウェイのチェックアウト完了
// コールバックがクライアントに渡す値をそのまま転送したもの。
type verifyPaymentRequest struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PackageType string `json:"packageType"`
	OrderID     string `json:"orderId"`
	PaymentID   string `json:"paymentId"`
	Signature   string `json:"signature"`
}

// VerifyPayment は決済検証とクレジット付与を処理する。
// 成功時はボディなしの204を返す（付与内容はサーバー側の権利レコードが正）。
// POST /api/payments/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	err := h.service.VerifyAndGrant(r.Context(), payment.VerifyRequest{
		Email:       req.Email,
		Phone:       req.Phone,
		OrderID:     req.OrderID,
		PaymentID:   req.PaymentID,
		Signature:   req.Signature,
		PackageType: model.PackageType(req.PackageType),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

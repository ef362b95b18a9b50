package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobdocs/internal/identity"
	"github.com/hitoshi/jobdocs/internal/model"
	"github.com/hitoshi/jobdocs/internal/repository"
)

// GatewayClient は注文作成ゲートウェイのインターフェース。
// RazorpayClientの部分集合として定義する。
type GatewayClient interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error)
}

// OrderService は決済注文作成のサービス層。
// パッケージの価格表から金額を決定し、ゲートウェイに注文を作成して
// 監査用の注文レコードを永続化する。
type OrderService struct {
	gateway   GatewayClient
	orderRepo repository.PaymentOrderRepository
	logger    *slog.Logger
}

// NewOrderService はOrderServiceの新しいインスタンスを生成する。
func NewOrderService(gateway GatewayClient, orderRepo repository.PaymentOrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		gateway:   gateway,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// CreateOrder は指定パッケージの注文をゲートウェイに作成する。
// 金額は価格表のルピー額×100（パイサ）、通貨はINR固定。
// 注文レコードの永続化失敗は注文自体を失敗させない
// （ゲートウェイ側には既に注文が存在するため）。
func (s *OrderService) CreateOrder(ctx context.Context, email, phone string, pkg model.PackageType) (*GatewayOrder, error) {
	hashedID, err := identity.Key(email, phone)
	if err != nil {
		return nil, err
	}

	info, ok := model.Pricing[pkg]
	if !ok {
		return nil, model.NewInvalidPackageError(string(pkg))
	}

	receipt := "receipt_" + uuid.NewString()
	amountPaise := int64(info.AmountINR) * 100

	order, err := s.gateway.CreateOrder(ctx, amountPaise, "INR", receipt)
	if err != nil {
		s.logger.Error("ゲートウェイへの注文作成に失敗しました",
			slog.String("identity_key", hashedID),
			slog.String("package_type", string(pkg)),
			slog.String("error", err.Error()),
		)
		return nil, model.NewOrderCreationFailedError()
	}

	now := time.Now()
	record := &model.PaymentOrder{
		ID:             uuid.NewString(),
		IdentityKey:    hashedID,
		PackageType:    pkg,
		AmountPaise:    amountPaise,
		Currency:       "INR",
		ReceiptID:      receipt,
		GatewayOrderID: order.ID,
		Status:         model.OrderStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orderRepo.Create(ctx, record); err != nil {
		s.logger.Error("注文レコードの保存に失敗しました",
			slog.String("gateway_order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("注文を作成しました",
		slog.String("identity_key", hashedID),
		slog.String("package_type", string(pkg)),
		slog.Int64("amount_paise", amountPaise),
		slog.String("gateway_order_id", order.ID),
	)

	return order, nil
}

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

// Granter は検証成功後のクレジット付与インターフェース。
// entitlement.Serviceの部分集合として定義する。
type Granter interface {
	Grant(ctx context.Context, hashedID, paymentID, orderID string, pkg model.PackageType) (*model.EntitlementRecord, error)
}

// MetricsRecorder は決済メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordVerificationAccepted()
	RecordVerificationRejected()
	RecordCreditsGranted()
}

// VerifyRequest は決済検証リクエストの入力。
// Email/Phoneは生の識別情報で、サーバー側で正規化・ハッシュする。
type VerifyRequest struct {
	Email       string
	Phone       string
	OrderID     string
	PaymentID   string
	Signature   string
	PackageType model.PackageType
}

// ServiceConfig はServiceの設定。
type ServiceConfig struct {
	// DevPaymentBypass は署名検証をスキップする開発用フラグ。
	// 本番では必ずfalse。trueでも必須フィールド検査はスキップしない。
	DevPaymentBypass bool
}

// Service は決済検証のサービス層。
// フィールド検査 → 署名検証 → クレジット付与 → 監査記録 の順で処理し、
// 署名検証に失敗した場合は権利ストアへ一切書き込まない。
type Service struct {
	verifier  *Verifier
	granter   Granter
	orderRepo repository.PaymentOrderRepository
	eventRepo repository.PaymentEventRepository
	metrics   MetricsRecorder
	logger    *slog.Logger
	config    ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	verifier *Verifier,
	granter Granter,
	orderRepo repository.PaymentOrderRepository,
	eventRepo repository.PaymentEventRepository,
	metrics MetricsRecorder,
	logger *slog.Logger,
	config ServiceConfig,
) *Service {
	return &Service{
		verifier:  verifier,
		granter:   granter,
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		metrics:   metrics,
		logger:    logger,
		config:    config,
	}
}

// VerifyAndGrant は決済完了コールバックを検証し、成功時にクレジットを付与する。
// 検証失敗時はSignatureMismatchを返し、権利レコードは作成も変更もされない。
// 監査ログの書き込み失敗は付与をロールバックしない（ベストエフォート）。
func (s *Service) VerifyAndGrant(ctx context.Context, req VerifyRequest) error {
	// 1. 暗号学的検証の前に必須フィールドを検査する
	if req.OrderID == "" {
		return model.NewMalformedVerificationError("orderId")
	}
	if req.PaymentID == "" {
		return model.NewMalformedVerificationError("paymentId")
	}
	if req.Signature == "" {
		return model.NewMalformedVerificationError("signature")
	}

	hashedID, err := identity.Key(req.Email, req.Phone)
	if err != nil {
		return err
	}

	if !model.ValidPackageType(req.PackageType) {
		return model.NewInvalidPackageError(string(req.PackageType))
	}

	// 2. 署名検証
	valid := s.verifier.Verify(req.OrderID, req.PaymentID, req.Signature)
	if !valid && s.config.DevPaymentBypass {
		// 開発環境限定の迂回路。検証をスキップしたことを必ず記録する。
		s.logger.Warn("開発用バイパスにより署名検証をスキップしました",
			slog.String("identity_key", hashedID),
			slog.String("order_id", req.OrderID),
		)
		valid = true
	}

	if !valid {
		s.metrics.RecordVerificationRejected()
		s.logger.Warn("決済署名の検証に失敗しました",
			slog.String("identity_key", hashedID),
			slog.String("order_id", req.OrderID),
			slog.String("payment_id", req.PaymentID),
		)
		s.recordEvent(ctx, hashedID, model.EventVerificationRejected, req.OrderID, req.PaymentID, "signature mismatch")
		s.markOrder(ctx, req.OrderID, model.OrderStatusRejected)
		return model.NewSignatureMismatchError()
	}

	// 3. クレジット付与（既存レコードは全上書き、再購入はリセット）
	record, err := s.granter.Grant(ctx, hashedID, req.PaymentID, req.OrderID, req.PackageType)
	if err != nil {
		s.logger.Error("クレジット付与の書き込みに失敗しました",
			slog.String("identity_key", hashedID),
			slog.String("error", err.Error()),
		)
		return model.NewStoreUnavailableError()
	}

	// 4. 監査記録とメトリクス
	s.metrics.RecordVerificationAccepted()
	s.metrics.RecordCreditsGranted()
	s.recordEvent(ctx, hashedID, model.EventVerificationAccepted, req.OrderID, req.PaymentID, "")
	s.recordEvent(ctx, hashedID, model.EventCreditsGranted, req.OrderID, req.PaymentID, string(req.PackageType))
	s.markOrder(ctx, req.OrderID, model.OrderStatusVerified)

	s.logger.Info("決済検証が完了しました",
		slog.String("identity_key", hashedID),
		slog.String("order_id", req.OrderID),
		slog.Int("credits", record.Credits),
	)

	return nil
}

// recordEvent は監査イベントをベストエフォートで追記する。
// 失敗はログに記録するのみで、呼び出し元の処理を失敗させない。
func (s *Service) recordEvent(ctx context.Context, identityKey, eventType, orderID, paymentID, detail string) {
	if s.eventRepo == nil {
		return
	}
	event := &model.PaymentEvent{
		ID:          uuid.NewString(),
		IdentityKey: identityKey,
		EventType:   eventType,
		OrderID:     orderID,
		PaymentID:   paymentID,
		Detail:      detail,
		CreatedAt:   time.Now(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.Error("監査イベントの記録に失敗しました",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}

// markOrder は注文ステータスをベストエフォートで更新する。
// 注文レコードが存在しない場合（別環境で作成された注文など）は警告のみ。
func (s *Service) markOrder(ctx context.Context, gatewayOrderID, status string) {
	if s.orderRepo == nil {
		return
	}
	if err := s.orderRepo.UpdateStatus(ctx, gatewayOrderID, status); err != nil {
		s.logger.Warn("注文ステータスの更新に失敗しました",
			slog.String("gateway_order_id", gatewayOrderID),
			slog.String("status", status),
			slog.String("error", err.Error()),
		)
	}
}

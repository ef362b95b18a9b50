package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/jobdocs/internal/model"
)

// Service は権利レコードの読み書きビジネスロジックを提供する。
// ストアの結果整合性（書き込み直後の読み取りが一時的に不在を返す）を
// 1回限りの短いバックオフ付きリトライで吸収する。
type Service struct {
	store      Store
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// retryDelayはread-after-writeリトライの待機時間。
func NewService(store Store, retryDelay time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Get は権利レコードを1回だけ読み取る。未購入はnilを返す。
func (s *Service) Get(ctx context.Context, hashedID string) (*model.EntitlementRecord, error) {
	return s.store.Get(ctx, hashedID)
}

// GetWithRetry は権利レコードを読み取り、不在の場合は1回だけ
// retryDelay待機後に再読み取りする。決済検証直後の生成リクエストが
// ストアの結果整合性によって誤って「未購入」と判定されるのを防ぐ。
// リトライは不在時のみで、ストアエラー時はリトライしない。
func (s *Service) GetWithRetry(ctx context.Context, hashedID string) (*model.EntitlementRecord, error) {
	record, err := s.store.Get(ctx, hashedID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	select {
	case <-time.After(s.retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return s.store.Get(ctx, hashedID)
}

// Grant は検証済み決済に対してクレジットを付与する。
// 既存レコードの有無に関わらず全上書きし、クレジットを固定付与数に
// リセットする（再購入は加算ではなくリセット）。
// 呼び出し元はPayment Verifierの検証成功後にのみ呼ぶこと。
func (s *Service) Grant(ctx context.Context, hashedID, paymentID, orderID string, pkg model.PackageType) (*model.EntitlementRecord, error) {
	record := &model.EntitlementRecord{
		Credits:     model.CreditGrantPerPurchase,
		PaymentID:   paymentID,
		OrderID:     orderID,
		PackageType: pkg,
		VerifiedAt:  time.Now(),
	}

	if err := s.store.Set(ctx, hashedID, record); err != nil {
		return nil, err
	}

	s.logger.Info("生成クレジットを付与しました",
		slog.String("identity_key", hashedID),
		slog.String("package_type", string(pkg)),
		slog.Int("credits", record.Credits),
	)

	return record, nil
}

// Consume は成功した生成1回分のクレジットを消費し、残数を返す。
// 読み取り→検査→減算→書き込みのシーケンスはアトミックではない。
// 同一Identityのほぼ同時の生成リクエストが1クレジットを二重消費しうるが、
// 1人の購入者が同時リクエストを発行することは稀であり許容リスクとする。
// 生成失敗時にこのメソッドを呼んではならない（失敗は課金しない）。
func (s *Service) Consume(ctx context.Context, hashedID string) (int, error) {
	record, err := s.store.Get(ctx, hashedID)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, fmt.Errorf("消費対象の権利レコードが存在しません: %s", hashedID)
	}
	if record.Exhausted() {
		return 0, fmt.Errorf("クレジットが残っていません: %s", hashedID)
	}

	record.Credits--
	if err := s.store.Set(ctx, hashedID, record); err != nil {
		return 0, err
	}

	s.logger.Info("生成クレジットを消費しました",
		slog.String("identity_key", hashedID),
		slog.Int("remaining_credits", record.Credits),
	)

	return record.Credits, nil
}

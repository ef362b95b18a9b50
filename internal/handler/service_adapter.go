package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jobdocs/internal/entitlement"
	"github.com/hitoshi/jobdocs/internal/model"
	"github.com/hitoshi/jobdocs/internal/repository"
)

// CreditConsumerAdapter は entitlement.Service のクレジット消費に
// 監査イベントの追記を合成するアダプタ。
// entitlement側をrepositoryに依存させないため、合成はhandler層で行う。
type CreditConsumerAdapter struct {
	svc       *entitlement.Service
	eventRepo repository.PaymentEventRepository
	logger    *slog.Logger
}

// NewCreditConsumerAdapter はCreditConsumerAdapterを生成する。
func NewCreditConsumerAdapter(svc *entitlement.Service, eventRepo repository.PaymentEventRepository, logger *slog.Logger) *CreditConsumerAdapter {
	return &CreditConsumerAdapter{
		svc:       svc,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// Consume はクレジットを消費し、監査イベントをベストエフォートで追記する。
// 監査の書き込み失敗は消費結果を失敗させない。
func (a *CreditConsumerAdapter) Consume(ctx context.Context, hashedID string) (int, error) {
	remaining, err := a.svc.Consume(ctx, hashedID)
	if err != nil {
		return 0, err
	}

	if a.eventRepo != nil {
		event := &model.PaymentEvent{
			ID:          uuid.NewString(),
			IdentityKey: hashedID,
			EventType:   model.EventCreditConsumed,
			Detail:      fmt.Sprintf("remaining=%d", remaining),
			CreatedAt:   time.Now(),
		}
		if err := a.eventRepo.Create(ctx, event); err != nil {
			a.logger.Error("消費イベントの記録に失敗しました",
				slog.String("identity_key", hashedID),
				slog.String("error", err.Error()),
			)
		}
	}

	return remaining, nil
}

// compile-time interface check
var _ CreditConsumer = (*CreditConsumerAdapter)(nil)

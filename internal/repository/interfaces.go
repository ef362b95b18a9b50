// Package repository はデータ永続化のインターフェースを定義する。
//
// 権利レコード本体はRedis側（internal/entitlement.Store）が持つ。
// ここで扱うのは注文記録と監査ログであり、認可判断には使用しない。
package repository

import (
	"context"

	"github.com/hitoshi/jobdocs/internal/model"
)

// PaymentOrderRepository は決済注文の永続化インターフェース。
type PaymentOrderRepository interface {
	// Create は注文レコードを作成する。
	Create(ctx context.Context, order *model.PaymentOrder) error

	// FindByGatewayOrderID はゲートウェイ注文IDで注文を検索する。
	// 見つからない場合はnilを返す。
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.PaymentOrder, error)

	// UpdateStatus はゲートウェイ注文IDで指定した注文のステータスを更新する。
	UpdateStatus(ctx context.Context, gatewayOrderID, status string) error
}

// PaymentEventRepository は決済監査ログの永続化インターフェース。
// 追記専用であり、更新・削除は保持期間超過分のクリーンアップのみ。
type PaymentEventRepository interface {
	// Create は監査イベントを追記する。
	Create(ctx context.Context, event *model.PaymentEvent) error

	// ListByIdentityKey は指定Identityの監査イベントを新しい順に返す。
	ListByIdentityKey(ctx context.Context, identityKey string, limit int) ([]*model.PaymentEvent, error)
}

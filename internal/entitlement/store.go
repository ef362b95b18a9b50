// Package entitlement は購入権利（生成クレジット）の管理を提供する。
//
// サーバー側の権利レコードが唯一の真実であり、クライアントが保持する
// キャッシュは表示専用。生成可否の判断は必ずこのパッケージのGateを通す。
package entitlement

import (
	"context"

	"github.com/hitoshi/jobdocs/internal/model"
)

// Store は権利レコードの永続化インターフェース。
// キーはハッシュ済みIdentity（identity.Keyの出力）。
type Store interface {
	// Get は指定キーの権利レコードを取得する。
	// 未購入（キー不在）はエラーではなくnilを返す。
	Get(ctx context.Context, hashedID string) (*model.EntitlementRecord, error)

	// Set は権利レコードを全上書きで保存する。
	// 初回付与と再購入リセット、クレジット減算の永続化に使用する。
	Set(ctx context.Context, hashedID string, record *model.EntitlementRecord) error
}

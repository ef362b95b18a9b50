package entitlement

import (
	"context"
	"log/slog"

	"github.com/hitoshi/jobdocs/internal/model"
)

// Decision はCredit Gateの判定結果を表す。
type Decision int

const (
	// Allow は生成を許可する（呼び出し元は生成成功後にConsumeを呼ぶ）。
	Allow Decision = iota
	// DenyUnpaid は権利レコード不在（未購入）による拒否。
	DenyUnpaid
	// DenyExhausted はクレジット使い切りによる拒否。
	DenyExhausted
)

// String はログ・メトリクス用のラベルを返す。
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnpaid:
		return "deny_unpaid"
	case DenyExhausted:
		return "deny_exhausted"
	default:
		return "unknown"
	}
}

// Gate は生成呼び出し前の認可判定を行う。
// 必ずサーバー側で評価され、クライアントの「支払済み」主張は参照しない。
//
// 状態遷移: UNPAID → PAID_WITH_CREDITS →(消費)→ PAID_EXHAUSTED →(再購入)→ PAID_WITH_CREDITS
type Gate struct {
	service *Service
	logger  *slog.Logger
}

// NewGate はGateの新しいインスタンスを生成する。
func NewGate(service *Service, logger *slog.Logger) *Gate {
	return &Gate{
		service: service,
		logger:  logger,
	}
}

// Decide は指定Identityの生成可否を判定する。
// 決済直後の利用に備え、レコード読み取りには1回の限定リトライを適用する。
// ストアに到達できない場合はStoreUnavailableエラーを返す
// （判定不能時に許可へ倒さない）。
func (g *Gate) Decide(ctx context.Context, hashedID string) (Decision, *model.EntitlementRecord, error) {
	record, err := g.service.GetWithRetry(ctx, hashedID)
	if err != nil {
		g.logger.Error("権利レコードの読み取りに失敗しました",
			slog.String("identity_key", hashedID),
			slog.String("error", err.Error()),
		)
		return DenyUnpaid, nil, model.NewStoreUnavailableError()
	}

	if record == nil {
		return DenyUnpaid, nil, nil
	}
	if record.Exhausted() {
		return DenyExhausted, record, nil
	}

	return Allow, record, nil
}

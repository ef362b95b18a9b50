// Package model はドメインモデルを定義する。
package model

import "time"

// CreditGrantPerPurchase は決済1回あたりの生成クレジット付与数。
// 再購入時は加算ではなくこの値にリセットされる。
const CreditGrantPerPurchase = 3

// EntitlementRecord はハッシュ済みIdentityをキーとするサーバー権威の権利レコード。
// Creditsが生成可否を決める唯一のフィールドであり、クライアント入力を信用しない。
// 使い切っても削除せず、credits=0のまま保持する（未購入との区別のため）。
type EntitlementRecord struct {
	Credits     int         `json:"credits"`
	PaymentID   string      `json:"payment_id"`
	OrderID     string      `json:"order_id"`
	PackageType PackageType `json:"package_type"`
	VerifiedAt  time.Time   `json:"verified_at"`
}

// Exhausted はクレジットを使い切っているかを返す。
func (r *EntitlementRecord) Exhausted() bool {
	return r.Credits <= 0
}

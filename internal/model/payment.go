package model

import "time"

// PackageType は購入パッケージの種別を表す。
type PackageType string

const (
	// PackageResumeOnly はレジュメのみのスタータープラン。
	PackageResumeOnly PackageType = "resume_only"
	// PackageResumeCover はレジュメ+カバーレターのプロプラン。
	PackageResumeCover PackageType = "resume_cover"
	// PackageJobReady は全ドキュメント+採用担当者向けインサイト付きの上位プラン。
	PackageJobReady PackageType = "job_ready"
)

// PackageInfo はパッケージの価格と表示名を保持する。
// 金額はINR（ルピー）単位。ゲートウェイへはパイサ（×100）で送る。
type PackageInfo struct {
	AmountINR int
	Label     string
}

// Pricing はパッケージ種別ごとの価格表。
var Pricing = map[PackageType]PackageInfo{
	PackageResumeOnly:  {AmountINR: 99, Label: "Starter Pack"},
	PackageResumeCover: {AmountINR: 199, Label: "Pro Pack"},
	PackageJobReady:    {AmountINR: 299, Label: "Job Ready Pack"},
}

// ValidPackageType は既知のパッケージ種別かを返す。
func ValidPackageType(p PackageType) bool {
	_, ok := Pricing[p]
	return ok
}

// PaymentOrder は決済ゲートウェイに作成した注文の記録。
type PaymentOrder struct {
	ID             string
	IdentityKey    string
	PackageType    PackageType
	AmountPaise    int64
	Currency       string
	ReceiptID      string
	GatewayOrderID string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// 注文ステータス
const (
	OrderStatusCreated  = "created"
	OrderStatusVerified = "verified"
	OrderStatusRejected = "rejected"
)

// PaymentEvent は検証・付与・消費の監査ログ（追記専用）。
// 権利レコード本体とは別の記録であり、認可判断には使用しない。
type PaymentEvent struct {
	ID          string
	IdentityKey string
	EventType   string
	OrderID     string
	PaymentID   string
	Detail      string
	CreatedAt   time.Time
}

// 監査イベント種別
const (
	EventVerificationAccepted = "verification_accepted"
	EventVerificationRejected = "verification_rejected"
	EventCreditsGranted       = "credits_granted"
	EventCreditConsumed       = "credit_consumed"
)

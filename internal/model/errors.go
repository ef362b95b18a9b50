package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, payment, generation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidIdentity       = "INVALID_IDENTITY"
	ErrCodeInvalidPackage        = "INVALID_PACKAGE"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeMalformedVerification = "MALFORMED_VERIFICATION"
	ErrCodeSignatureMismatch     = "SIGNATURE_MISMATCH"
	ErrCodePaymentRequired       = "PAYMENT_REQUIRED"
	ErrCodeCreditsExhausted      = "CREDITS_EXHAUSTED"
	ErrCodeGenerationFailed      = "GENERATION_FAILED"
	ErrCodeOrderCreationFailed   = "ORDER_CREATION_FAILED"
	ErrCodeStoreUnavailable      = "STORE_UNAVAILABLE"
)

// NewInvalidIdentityError はemail/phoneが空の場合のエラーを生成する。
// ストアへのアクセス前に拒否され、自動リトライしない。
func NewInvalidIdentityError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidIdentity,
		Message:  fmt.Sprintf("識別情報が不正です: %s", reason),
		Category: "validation",
		Action:   "メールアドレスと電話番号を入力してください。",
	}
}

// NewInvalidPackageError は未知のパッケージ種別エラーを生成する。
func NewInvalidPackageError(pkg string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPackage,
		Message:  fmt.Sprintf("無効なパッケージです: %s", pkg),
		Category: "validation",
		Action:   "パッケージを選択し直してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewMalformedVerificationError は決済検証フィールド不足エラーを生成する。
// 暗号学的検証の前に拒否される。
func NewMalformedVerificationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedVerification,
		Message:  fmt.Sprintf("決済検証リクエストに必須フィールドがありません: %s", field),
		Category: "validation",
		Action:   "決済完了画面から再度お試しください。",
	}
}

// NewSignatureMismatchError は署名検証失敗エラーを生成する。
// セキュリティ上の拒否としてログに記録され、権利レコードは一切書き込まれない。
func NewSignatureMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeSignatureMismatch,
		Message:  "決済署名の検証に失敗しました。",
		Category: "auth",
		Action:   "決済が完了している場合はサポートへお問い合わせください。",
	}
}

// NewPaymentRequiredError は権利レコード未作成（未購入）エラーを生成する。
func NewPaymentRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodePaymentRequired,
		Message:  "この機能の利用には購入が必要です。",
		Category: "payment",
		Action:   "パッケージを購入してから再度お試しください。",
	}
}

// NewCreditsExhaustedError はクレジット使い切りエラーを生成する。
func NewCreditsExhaustedError() *APIError {
	return &APIError{
		Code:     ErrCodeCreditsExhausted,
		Message:  "生成クレジットを使い切りました。",
		Category: "payment",
		Action:   "再購入するとクレジットがリセットされます。",
	}
}

// NewGenerationFailedError は生成バックエンドの失敗エラーを生成する。
// このパスではクレジットは消費されない。
func NewGenerationFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  fmt.Sprintf("ドキュメント生成に失敗しました: %s", reason),
		Category: "generation",
		Action:   "しばらく待ってから再度お試しください。クレジットは消費されていません。",
	}
}

// NewOrderCreationFailedError は決済ゲートウェイへの注文作成失敗エラーを生成する。
func NewOrderCreationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeOrderCreationFailed,
		Message:  "注文の作成に失敗しました。",
		Category: "payment",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewStoreUnavailableError は権利ストアへの到達失敗エラーを生成する。
// 現在のリクエストに対して致命的であり、部分的な状態は書き込まれない。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "権利情報ストアに接続できません。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

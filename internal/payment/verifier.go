// Package payment は決済検証と注文作成のドメインロジックを提供する。
//
// ブラウザで受け取った決済成功イベントはそれ自体では信用できない
// （クライアントは成功UIを偽装できる）。ゲートウェイの共有シークレットに
// 由来する署名をサーバー側で検証した場合にのみクレジット付与を認可する。
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier は決済完了コールバックの署名を検証する純粋な述語。
// 永続化の副作用を持たず、検証ロジック単体でテスト可能にしている。
type Verifier struct {
	secret []byte
}

// NewVerifier は共有シークレットを保持するVerifierを生成する。
func NewVerifier(sharedSecret string) *Verifier {
	return &Verifier{secret: []byte(sharedSecret)}
}

// Verify は orderID + "|" + paymentID に対するHMAC-SHA256の16進表現と
// 供給された署名を比較する。比較はhmac.Equalによる定数時間比較で行い、
// タイミングチャネルを避ける。
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Package identity は購入者の(email, phone)ペアから安定した識別キーを導出する。
//
// 正規化ポリシーはクライアント・サーバー双方で同一でなければならない:
// 両フィールドの前後空白を除去し、emailを小文字化し、固定区切り文字で連結する。
// フィールド内部の空白は保持する（除去すると異なる電話番号表記が衝突しうる）。
// 連結文字列はSHA-256でハッシュしてからストアキーとして使用し、
// 生のPIIを検索キーとして永続化しない。
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/hitoshi/jobdocs/internal/model"
)

// separator はemailとphoneの連結に使う固定区切り文字。
const separator = "|"

// Normalize はemailとphoneから正規化済み複合文字列を生成する。
// emailは小文字化+トリム、phoneはトリムのみ。
// いずれかがトリム後に空の場合はInvalidIdentityエラーを返す。
func Normalize(email, phone string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	p := strings.TrimSpace(phone)

	if e == "" {
		return "", model.NewInvalidIdentityError("email is empty")
	}
	if p == "" {
		return "", model.NewInvalidIdentityError("phone is empty")
	}

	return e + separator + p, nil
}

// Digest は正規化済み文字列のSHA-256ハッシュを16進文字列で返す。
func Digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Key はNormalizeとDigestを合成し、ストアキーとして使える
// 固定長の不透明キーを返す。
func Key(email, phone string) (string, error) {
	canonical, err := Normalize(email, phone)
	if err != nil {
		return "", err
	}
	return Digest(canonical), nil
}

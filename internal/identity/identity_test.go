package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/jobdocs/internal/model"
)

// TestNormalize_CaseAndWhitespaceVariants は大文字小文字・前後空白のみが
// 異なる入力が同一の正規化結果になることを検証する。
func TestNormalize_CaseAndWhitespaceVariants(t *testing.T) {
	tests := []struct {
		name  string
		email string
		phone string
	}{
		{"そのまま", "a@x.com", "9999999999"},
		{"email前後空白", "a@x.com ", " 9999999999"},
		{"email大文字", "A@X.COM", "9999999999"},
		{"大文字+空白", "  A@X.Com ", "9999999999 "},
	}

	want, err := Normalize("a@x.com", "9999999999")
	if err != nil {
		t.Fatalf("Normalize がエラーを返した: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.email, tt.phone)
			if err != nil {
				t.Fatalf("Normalize がエラーを返した: %v", err)
			}
			if got != want {
				t.Errorf("Normalize = %q, want %q", got, want)
			}
		})
	}
}

// TestNormalize_PreservesInternalWhitespace はフィールド内部の空白が
// 保持されることを検証する（除去すると別表記の電話番号が衝突する）。
func TestNormalize_PreservesInternalWhitespace(t *testing.T) {
	a, err := Normalize("a@x.com", "99999 99999")
	if err != nil {
		t.Fatalf("Normalize がエラーを返した: %v", err)
	}
	b, err := Normalize("a@x.com", "9999999999")
	if err != nil {
		t.Fatalf("Normalize がエラーを返した: %v", err)
	}
	if a == b {
		t.Error("内部空白の有無で異なる正規化結果になるべき")
	}
}

func TestNormalize_EmptyEmail_ReturnsInvalidIdentity(t *testing.T) {
	_, err := Normalize("   ", "9999999999")
	if err == nil {
		t.Fatal("空のemailはエラーになるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返るべき: %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidIdentity {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidIdentity)
	}
}

func TestNormalize_EmptyPhone_ReturnsInvalidIdentity(t *testing.T) {
	_, err := Normalize("a@x.com", " ")
	if err == nil {
		t.Fatal("空のphoneはエラーになるべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError が返るべき: %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidIdentity {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidIdentity)
	}
}

// TestDigest_FixedLengthHex はダイジェストが64文字の16進文字列であることを検証する。
func TestDigest_FixedLengthHex(t *testing.T) {
	d := Digest("a@x.com|9999999999")
	if len(d) != 64 {
		t.Errorf("len(Digest) = %d, want 64", len(d))
	}
	if strings.ToLower(d) != d {
		t.Error("Digest は小文字16進であるべき")
	}
	for _, c := range d {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("16進以外の文字が含まれる: %q", c)
		}
	}
}

// TestKey_SameIdentitySameKey は表記違いの同一人物が同一キーになることを検証する。
// 支払った端末と別の端末から生成しても権利が引けることの前提になる。
func TestKey_SameIdentitySameKey(t *testing.T) {
	k1, err := Key("a@x.com ", " 9999999999")
	if err != nil {
		t.Fatalf("Key がエラーを返した: %v", err)
	}
	k2, err := Key("A@X.COM", "9999999999")
	if err != nil {
		t.Fatalf("Key がエラーを返した: %v", err)
	}
	if k1 != k2 {
		t.Errorf("同一人物のキーが一致しない: %q != %q", k1, k2)
	}
}

// TestKey_DifferentIdentityDifferentKey は別人が別キーになることを検証する。
func TestKey_DifferentIdentityDifferentKey(t *testing.T) {
	k1, err := Key("a@x.com", "9999999999")
	if err != nil {
		t.Fatalf("Key がエラーを返した: %v", err)
	}
	k2, err := Key("b@x.com", "9999999999")
	if err != nil {
		t.Fatalf("Key がエラーを返した: %v", err)
	}
	if k1 == k2 {
		t.Error("別人のキーが衝突した")
	}
}

// TestKey_RawPIINotInKey はキーに生のemail/phoneが含まれないことを検証する。
func TestKey_RawPIINotInKey(t *testing.T) {
	k, err := Key("a@x.com", "9999999999")
	if err != nil {
		t.Fatalf("Key がエラーを返した: %v", err)
	}
	if strings.Contains(k, "a@x.com") || strings.Contains(k, "9999999999") {
		t.Error("キーに生のPIIが含まれている")
	}
}

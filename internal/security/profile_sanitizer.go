// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ProfileSanitizerService はユーザーが入力したプロフィール情報を
// プロンプトに埋め込む前にサニタイズし、HTMLタグの混入や
// XSS攻撃からシステムを保護する。
// プロフィールは純粋なテキストとして扱うため、bluemondayの
// StrictPolicy（全タグ除去）を使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hitoshi/jobdocs/internal/model"
)

// ProfileSanitizerService はプロフィールのサニタイズ機能のインターフェースを定義する。
// ドキュメント生成のプロンプト構築前に使用される。
type ProfileSanitizerService interface {
	// SanitizeProfile はプロフィールの全テキストフィールドからHTMLタグを除去した
	// コピーを返す。入力は変更しない。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeProfile(profile *model.UserProfile) *model.UserProfile
	// SanitizeText は単一のテキストからHTMLタグを除去し、前後の空白を削る。
	SanitizeText(raw string) string
}

// profileSanitizer はProfileSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type profileSanitizer struct {
	policy *bluemonday.Policy
}

// NewProfileSanitizer はProfileSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのHTMLタグと属性を除去し、テキストのみを残す。
func NewProfileSanitizer() *profileSanitizer {
	return &profileSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は単一のテキストからHTMLタグを除去し、前後の空白を削る。
func (s *profileSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// SanitizeProfile はプロフィールの全テキストフィールドをサニタイズしたコピーを返す。
func (s *profileSanitizer) SanitizeProfile(profile *model.UserProfile) *model.UserProfile {
	if profile == nil {
		return nil
	}

	clean := &model.UserProfile{
		FullName: s.SanitizeText(profile.FullName),
		JobRole:  s.SanitizeText(profile.JobRole),
		Location: s.SanitizeText(profile.Location),
	}

	for _, skill := range profile.Skills {
		clean.Skills = append(clean.Skills, s.SanitizeText(skill))
	}

	for _, edu := range profile.Education {
		clean.Education = append(clean.Education, model.Education{
			Degree:  s.SanitizeText(edu.Degree),
			College: s.SanitizeText(edu.College),
			Year:    s.SanitizeText(edu.Year),
		})
	}
	for _, exp := range profile.Experience {
		clean.Experience = append(clean.Experience, model.Experience{
			Title:    s.SanitizeText(exp.Title),
			Company:  s.SanitizeText(exp.Company),
			Duration: s.SanitizeText(exp.Duration),
		})
	}

	return clean
}

// compile-time interface check
var _ ProfileSanitizerService = (*profileSanitizer)(nil)

package security

import (
	"strings"
	"testing"

	"github.com/hitoshi/jobdocs/internal/model"
)

// TestSanitizeText_RemovesTags は全てのHTMLタグが除去されることを検証する。
func TestSanitizeText_RemovesTags(t *testing.T) {
	sanitizer := NewProfileSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "scriptタグが除去される",
			input: `<script>alert('xss')</script>エンジニア`,
			want:  "エンジニア",
		},
		{
			name:  "イベント属性付きタグが除去される",
			input: `<img src=x onerror="alert(1)">田中太郎`,
			want:  "田中太郎",
		},
		{
			name:  "通常のタグもテキストのみ残る",
			input: "<strong>Go</strong>, <em>PostgreSQL</em>",
			want:  "Go, PostgreSQL",
		},
		{
			name:  "前後の空白が削られる",
			input: "  バックエンドエンジニア  ",
			want:  "バックエンドエンジニア",
		},
		{
			name:  "プレーンテキストは変更されない",
			input: "Bengaluru, India",
			want:  "Bengaluru, India",
		},
		{
			name:  "空文字列は空文字列のまま",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeText(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeProfile_AllFields はプロフィール全フィールドがサニタイズされることを検証する。
func TestSanitizeProfile_AllFields(t *testing.T) {
	sanitizer := NewProfileSanitizer()

	profile := &model.UserProfile{
		FullName: `<script>bad()</script>田中太郎`,
		JobRole:  "<b>Backend Engineer</b>",
		Location: "Bengaluru",
		Skills:   []string{"Go", "<i>Redis</i>", "PostgreSQL"},
		Education: []model.Education{
			{Degree: "<p>B.Tech</p>", College: "IIT Delhi", Year: "2020"},
		},
		Experience: []model.Experience{
			{Title: "<span>SDE</span>", Company: "Acme Corp", Duration: "2020-2023"},
		},
	}

	clean := sanitizer.SanitizeProfile(profile)

	if clean.FullName != "田中太郎" {
		t.Errorf("FullName = %q", clean.FullName)
	}
	if clean.JobRole != "Backend Engineer" {
		t.Errorf("JobRole = %q", clean.JobRole)
	}
	if clean.Skills[1] != "Redis" {
		t.Errorf("Skillsにタグが残っています: %q", clean.Skills[1])
	}
	if clean.Education[0].Degree != "B.Tech" {
		t.Errorf("Education.Degree = %q", clean.Education[0].Degree)
	}
	if clean.Experience[0].Title != "SDE" {
		t.Errorf("Experience.Title = %q", clean.Experience[0].Title)
	}

	// 入力が変更されていないこと
	if !strings.Contains(profile.FullName, "<script>") {
		t.Error("入力プロフィールが変更されました")
	}
}

// TestSanitizeProfile_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitizeProfile_Idempotent(t *testing.T) {
	sanitizer := NewProfileSanitizer()

	profile := &model.UserProfile{
		FullName: "<b>田中太郎</b>",
		JobRole:  "Engineer",
	}

	first := sanitizer.SanitizeProfile(profile)
	second := sanitizer.SanitizeProfile(first)

	if first.FullName != second.FullName || first.JobRole != second.JobRole {
		t.Errorf("冪等性がありません: first=%+v second=%+v", first, second)
	}
}

// TestSanitizeProfile_NilInput はnil入力にnilを返すことを検証する。
func TestSanitizeProfile_NilInput(t *testing.T) {
	sanitizer := NewProfileSanitizer()
	if sanitizer.SanitizeProfile(nil) != nil {
		t.Error("nil入力にnil以外が返されました")
	}
}

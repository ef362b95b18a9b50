package model

// UserProfile は生成リクエストに含まれる利用者のプロフィール。
// 永続化しない（GenerationRequestは一時データ）。
type UserProfile struct {
	FullName   string       `json:"fullName"`
	JobRole    string       `json:"jobRole"`
	Location   string       `json:"location"`
	Skills     []string     `json:"skills"`
	Education  []Education  `json:"education"`
	Experience []Experience `json:"experience"`
}

// Education は学歴1件を表す。
type Education struct {
	Degree  string `json:"degree"`
	College string `json:"college"`
	Year    string `json:"year"`
}

// Experience は職歴1件を表す。
type Experience struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Duration string `json:"duration"`
}

// DocumentBundle は生成バックエンドが返すドキュメント一式。
// ExperienceBulletsは職歴1件につき1つの箇条書きリストを持つ2次元配列。
// KeywordMapping以下はjob_readyパッケージでのみ必須のプレミアムフィールド。
type DocumentBundle struct {
	ResumeSummary     string     `json:"resumeSummary"`
	ExperienceBullets [][]string `json:"experienceBullets"`
	CoverLetter       string     `json:"coverLetter"`
	LinkedinSummary   string     `json:"linkedinSummary"`
	LinkedinHeadline  string     `json:"linkedinHeadline"`
	KeywordMapping    []string   `json:"keywordMapping,omitempty"`
	AtsExplanation    string     `json:"atsExplanation,omitempty"`
	RecruiterInsights string     `json:"recruiterInsights,omitempty"`
}

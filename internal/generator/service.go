package generator

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hitoshi/jobdocs/internal/model"
	"github.com/hitoshi/jobdocs/internal/security"
)

// ContentGenerator は生成バックエンドのインターフェース。
// GeminiClientの部分集合として定義する。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, userPrompt string, premium bool) (string, error)
}

// MetricsRecorder は生成メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordGenerationSuccess()
	RecordGenerationFailure()
	ObserveGenerationDuration(seconds float64)
}

// GenerateRequest はドキュメント生成の入力。
type GenerateRequest struct {
	Profile     *model.UserProfile
	Feedback    string
	PackageType model.PackageType
}

// Service はドキュメント生成のサービス層。
// プロフィールのサニタイズ、プロンプト構築、バックエンド呼び出し、
// レスポンスの検証を行う。失敗時はGENERATION_FAILEDを返し、
// 呼び出し元はクレジットを消費してはならない。
type Service struct {
	backend   ContentGenerator
	sanitizer security.ProfileSanitizerService
	metrics   MetricsRecorder
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	backend ContentGenerator,
	sanitizer security.ProfileSanitizerService,
	metrics MetricsRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		backend:   backend,
		sanitizer: sanitizer,
		metrics:   metrics,
		timeout:   timeout,
		logger:    logger,
	}
}

// Generate はプロフィールからドキュメント一式を生成する。
// プレミアムフィールド（キーワードマッピング等）はjob_readyパッケージでのみ
// 必須として検証する。タイムアウトを含む全ての失敗はGENERATION_FAILEDとなる。
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*model.DocumentBundle, error) {
	if req.Profile == nil {
		return nil, model.NewInvalidRequestError()
	}

	profile := s.sanitizer.SanitizeProfile(req.Profile)
	if profile.FullName == "" || profile.JobRole == "" {
		return nil, model.NewInvalidRequestError()
	}

	feedback := s.sanitizer.SanitizeText(req.Feedback)
	premium := req.PackageType == model.PackageJobReady
	userPrompt := BuildUserPrompt(profile, feedback)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.backend.GenerateContent(genCtx, userPrompt, premium)
	s.metrics.ObserveGenerationDuration(time.Since(start).Seconds())

	if err != nil {
		s.metrics.RecordGenerationFailure()
		s.logger.Error("ドキュメント生成に失敗しました",
			slog.String("package_type", string(req.PackageType)),
			slog.String("error", err.Error()),
		)
		return nil, model.NewGenerationFailedError("生成バックエンドの呼び出しに失敗しました")
	}

	var bundle model.DocumentBundle
	if err := json.Unmarshal([]byte(text), &bundle); err != nil {
		s.metrics.RecordGenerationFailure()
		s.logger.Error("生成レスポンスの解析に失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewGenerationFailedError("生成結果の形式が不正です")
	}

	if err := validateBundle(&bundle, premium, len(profile.Experience) > 0); err != nil {
		s.metrics.RecordGenerationFailure()
		s.logger.Error("生成レスポンスの検証に失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, model.NewGenerationFailedError("生成結果が不完全です")
	}

	s.metrics.RecordGenerationSuccess()
	s.logger.Info("ドキュメント生成が完了しました",
		slog.String("package_type", string(req.PackageType)),
		slog.Int("experience_sections", len(bundle.ExperienceBullets)),
	)

	return &bundle, nil
}

// validateBundle は生成結果の必須フィールドを検証する。
// 職歴ありのプロフィールに対してexperienceBulletsが空なら不完全とみなす
// （職歴なしの場合のみ空を許容する）。
// プレミアムフィールドはpremiumがtrueの場合のみ必須。
func validateBundle(bundle *model.DocumentBundle, premium, wantBullets bool) error {
	if bundle.ResumeSummary == "" {
		return errMissingField("resumeSummary")
	}
	if wantBullets && len(bundle.ExperienceBullets) == 0 {
		return errMissingField("experienceBullets")
	}
	if bundle.CoverLetter == "" {
		return errMissingField("coverLetter")
	}
	if bundle.LinkedinSummary == "" {
		return errMissingField("linkedinSummary")
	}
	if bundle.LinkedinHeadline == "" {
		return errMissingField("linkedinHeadline")
	}
	if premium {
		if len(bundle.KeywordMapping) == 0 {
			return errMissingField("keywordMapping")
		}
		if bundle.AtsExplanation == "" {
			return errMissingField("atsExplanation")
		}
		if bundle.RecruiterInsights == "" {
			return errMissingField("recruiterInsights")
		}
	}
	return nil
}

type errMissingField string

func (e errMissingField) Error() string {
	return "必須フィールドがありません: " + string(e)
}

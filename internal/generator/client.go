// Package generator はGemini APIを使用したドキュメント生成機能を提供する。
//
// クライアントはgenerateContent REST APIを呼び出し、JSONレスポンススキーマで
// 構造化された出力を強制する。生成の失敗はクレジットを消費しない
// （消費は生成成功後に呼び出し元が行う）。
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// defaultBaseURL はGemini APIのベースURL。
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient はGemini generateContent APIのクライアント。
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	logger     *slog.Logger
	baseURL    string // テスト用にベースURLを差し替え可能
}

// NewGeminiClient はGeminiClientの新しいインスタンスを生成する。
func NewGeminiClient(httpClient *http.Client, apiKey, model string, logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
		baseURL:    defaultBaseURL,
	}
}

// generateContentRequest はgenerateContent APIのリクエストボディ。
type generateContentRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   *responseSchema `json:"responseSchema,omitempty"`
}

// responseSchema はOpenAPI形式のレスポンススキーマ（Gemini構造化出力）。
type responseSchema struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Properties  map[string]*responseSchema `json:"properties,omitempty"`
	Items       *responseSchema            `json:"items,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

// generateContentResponse はgenerateContent APIのレスポンスボディ。
type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// documentBundleSchema はドキュメント一式のレスポンススキーマを構築する。
// premiumがtrueの場合はプレミアムフィールドも必須に含める。
func documentBundleSchema(premium bool) *responseSchema {
	str := &responseSchema{Type: "STRING"}
	required := []string{"resumeSummary", "experienceBullets", "coverLetter", "linkedinSummary", "linkedinHeadline"}
	if premium {
		required = append(required, "keywordMapping", "atsExplanation", "recruiterInsights")
	}

	return &responseSchema{
		Type: "OBJECT",
		Properties: map[string]*responseSchema{
			"resumeSummary": str,
			"experienceBullets": {
				Type:        "ARRAY",
				Description: "A 2D array where each sub-array contains 3-4 bullet points for each work experience entry.",
				Items: &responseSchema{
					Type:  "ARRAY",
					Items: str,
				},
			},
			"coverLetter":       str,
			"linkedinSummary":   str,
			"linkedinHeadline":  str,
			"keywordMapping":    {Type: "ARRAY", Items: str},
			"atsExplanation":    str,
			"recruiterInsights": str,
		},
		Required: required,
	}
}

// GenerateContent はプロンプトを送信し、生成されたJSONテキストを返す。
// 認証はx-goog-api-keyヘッダー。レスポンスの最初の候補のテキストを返す。
func (c *GeminiClient) GenerateContent(ctx context.Context, userPrompt string, premium bool) (string, error) {
	body, err := json.Marshal(generateContentRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Parts: []part{{Text: userPrompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   documentBundleSchema(premium),
		},
	})
	if err != nil {
		return "", fmt.Errorf("リクエストのシリアライズに失敗しました: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("生成APIの呼び出しに失敗しました",
			slog.String("model", c.model),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("生成APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("model", c.model),
		)
		return "", fmt.Errorf("生成APIがステータス %d を返しました", resp.StatusCode)
	}

	var result generateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("生成APIのレスポンスに候補が含まれていません")
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("生成APIのレスポンスが空です")
	}

	return text, nil
}

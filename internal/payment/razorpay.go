package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// defaultOrdersEndpoint はRazorpay注文作成APIのエンドポイント。
const defaultOrdersEndpoint = "https://api.razorpay.com/v1/orders"

// GatewayOrder はゲートウェイが作成した注文のレスポンス。
// ID（order_xxx形式）はチェックアウトウィジェットと署名検証の両方で使われる。
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// RazorpayClient はRazorpay注文作成APIのクライアント。
type RazorpayClient struct {
	httpClient *http.Client
	keyID      string
	keySecret  string
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewRazorpayClient はRazorpayClientの新しいインスタンスを生成する。
func NewRazorpayClient(httpClient *http.Client, keyID, keySecret string, logger *slog.Logger) *RazorpayClient {
	return &RazorpayClient{
		httpClient: httpClient,
		keyID:      keyID,
		keySecret:  keySecret,
		logger:     logger,
		endpoint:   defaultOrdersEndpoint,
	}
}

// createOrderRequest は注文作成リクエストのボディ。金額はパイサ単位。
type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder はゲートウェイに注文を作成する。
// amountPaiseはパイサ単位（ルピー×100）。認証はキーID/シークレットの
// Basic認証。失敗時はエラーを返す（呼び出し元がユーザー向けエラーに変換する）。
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("注文リクエストのシリアライズに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("決済ゲートウェイAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("決済ゲートウェイAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("決済ゲートウェイAPIがステータス %d を返しました", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var order GatewayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	if order.ID == "" {
		return nil, fmt.Errorf("ゲートウェイのレスポンスに注文IDが含まれていません")
	}

	return &order, nil
}

package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hitoshi/jobdocs/internal/model"
)

// mockGranter はGranterインターフェースのモック
type mockGranter struct {
	grantFunc  func(ctx context.Context, hashedID, paymentID, orderID string, pkg model.PackageType) (*model.EntitlementRecord, error)
	grantCalls int
}

func (m *mockGranter) Grant(ctx context.Context, hashedID, paymentID, orderID string, pkg model.PackageType) (*model.EntitlementRecord, error) {
	m.grantCalls++
	if m.grantFunc != nil {
		return m.grantFunc(ctx, hashedID, paymentID, orderID, pkg)
	}
	return &model.EntitlementRecord{
		Credits:     model.CreditGrantPerPurchase,
		PaymentID:   paymentID,
		OrderID:     orderID,
		PackageType: pkg,
		VerifiedAt:  time.Now(),
	}, nil
}

// mockOrderRepo はPaymentOrderRepositoryのモック
type mockOrderRepo struct {
	createFunc       func(ctx context.Context, order *model.PaymentOrder) error
	updateStatusFunc func(ctx context.Context, gatewayOrderID, status string) error
	createdOrders    []*model.PaymentOrder
	statusUpdates    map[string]string
}

func (m *mockOrderRepo) Create(ctx context.Context, order *model.PaymentOrder) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, order)
	}
	m.createdOrders = append(m.createdOrders, order)
	return nil
}

func (m *mockOrderRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.PaymentOrder, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, gatewayOrderID, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, gatewayOrderID, status)
	}
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]string)
	}
	m.statusUpdates[gatewayOrderID] = status
	return nil
}

// mockEventRepo はPaymentEventRepositoryのモック
type mockEventRepo struct {
	createFunc func(ctx context.Context, event *model.PaymentEvent) error
	events     []*model.PaymentEvent
}

func (m *mockEventRepo) Create(ctx context.Context, event *model.PaymentEvent) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, event)
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepo) ListByIdentityKey(ctx context.Context, identityKey string, limit int) ([]*model.PaymentEvent, error) {
	return m.events, nil
}

// mockPaymentMetrics はMetricsRecorderのモック
type mockPaymentMetrics struct {
	accepted int
	rejected int
	granted  int
}

func (m *mockPaymentMetrics) RecordVerificationAccepted() { m.accepted++ }
func (m *mockPaymentMetrics) RecordVerificationRejected() { m.rejected++ }
func (m *mockPaymentMetrics) RecordCreditsGranted()       { m.granted++ }

type verifyServiceFixture struct {
	service *Service
	granter *mockGranter
	orders  *mockOrderRepo
	events  *mockEventRepo
	metrics *mockPaymentMetrics
}

func newVerifyServiceFixture(bypass bool) *verifyServiceFixture {
	f := &verifyServiceFixture{
		granter: &mockGranter{},
		orders:  &mockOrderRepo{},
		events:  &mockEventRepo{},
		metrics: &mockPaymentMetrics{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewService(
		NewVerifier("test_secret"),
		f.granter,
		f.orders,
		f.events,
		f.metrics,
		logger,
		ServiceConfig{DevPaymentBypass: bypass},
	)
	return f
}

func validVerifyRequest() VerifyRequest {
	return VerifyRequest{
		Email:       "user@example.com",
		Phone:       "9999999999",
		OrderID:     "order_ABC123",
		PaymentID:   "pay_XYZ789",
		Signature:   signFor("test_secret", "order_ABC123", "pay_XYZ789"),
		PackageType: model.PackageJobReady,
	}
}

// 正しい署名でクレジットが付与されることを検証
func TestService_VerifyAndGrant_Success(t *testing.T) {
	f := newVerifyServiceFixture(false)

	err := f.service.VerifyAndGrant(context.Background(), validVerifyRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.granter.grantCalls != 1 {
		t.Errorf("expected 1 grant call, got %d", f.granter.grantCalls)
	}
	if f.metrics.accepted != 1 {
		t.Errorf("expected 1 accepted metric, got %d", f.metrics.accepted)
	}
	if f.metrics.granted != 1 {
		t.Errorf("expected 1 granted metric, got %d", f.metrics.granted)
	}
	if f.orders.statusUpdates["order_ABC123"] != model.OrderStatusVerified {
		t.Errorf("注文ステータスがverifiedに更新されていません: %v", f.orders.statusUpdates)
	}

	// 監査イベント: 検証受理 + クレジット付与
	if len(f.events.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(f.events.events))
	}
	if f.events.events[0].EventType != model.EventVerificationAccepted {
		t.Errorf("expected first event %s, got %s", model.EventVerificationAccepted, f.events.events[0].EventType)
	}
	if f.events.events[1].EventType != model.EventCreditsGranted {
		t.Errorf("expected second event %s, got %s", model.EventCreditsGranted, f.events.events[1].EventType)
	}
}

// 署名不一致で拒否され、権利ストアへ書き込まれないことを検証
func TestService_VerifyAndGrant_SignatureMismatch(t *testing.T) {
	f := newVerifyServiceFixture(false)

	req := validVerifyRequest()
	req.Signature = signFor("wrong_secret", req.OrderID, req.PaymentID)

	err := f.service.VerifyAndGrant(context.Background(), req)
	if err == nil {
		t.Fatal("署名不一致でエラーが返されませんでした")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSignatureMismatch {
		t.Errorf("expected SIGNATURE_MISMATCH, got %v", err)
	}

	// 権利の付与は一切行われない
	if f.granter.grantCalls != 0 {
		t.Errorf("署名不一致でGrantが呼ばれました: %d回", f.granter.grantCalls)
	}
	if f.metrics.rejected != 1 {
		t.Errorf("expected 1 rejected metric, got %d", f.metrics.rejected)
	}

	// 拒否も監査に記録される
	if len(f.events.events) != 1 || f.events.events[0].EventType != model.EventVerificationRejected {
		t.Errorf("拒否イベントが記録されていません: %+v", f.events.events)
	}
	if f.orders.statusUpdates["order_ABC123"] != model.OrderStatusRejected {
		t.Errorf("注文ステータスがrejectedに更新されていません: %v", f.orders.statusUpdates)
	}
}

// 必須フィールド不足は暗号学的検証の前に拒否されることを検証
func TestService_VerifyAndGrant_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*VerifyRequest)
	}{
		{"注文IDなし", func(r *VerifyRequest) { r.OrderID = "" }},
		{"決済IDなし", func(r *VerifyRequest) { r.PaymentID = "" }},
		{"署名なし", func(r *VerifyRequest) { r.Signature = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerifyServiceFixture(false)
			req := validVerifyRequest()
			tt.mutate(&req)

			err := f.service.VerifyAndGrant(context.Background(), req)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMalformedVerification {
				t.Errorf("expected MALFORMED_VERIFICATION, got %v", err)
			}
			if f.granter.grantCalls != 0 {
				t.Error("フィールド不足でGrantが呼ばれました")
			}
		})
	}
}

// 識別情報が空の場合にINVALID_IDENTITYとなることを検証
func TestService_VerifyAndGrant_EmptyIdentity(t *testing.T) {
	f := newVerifyServiceFixture(false)
	req := validVerifyRequest()
	req.Email = ""

	err := f.service.VerifyAndGrant(context.Background(), req)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidIdentity {
		t.Errorf("expected INVALID_IDENTITY, got %v", err)
	}
	if f.granter.grantCalls != 0 {
		t.Error("識別情報不正でGrantが呼ばれました")
	}
}

// 未知のパッケージ種別が拒否されることを検証
func TestService_VerifyAndGrant_InvalidPackage(t *testing.T) {
	f := newVerifyServiceFixture(false)
	req := validVerifyRequest()
	req.PackageType = "premium_deluxe"

	err := f.service.VerifyAndGrant(context.Background(), req)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidPackage {
		t.Errorf("expected INVALID_PACKAGE, got %v", err)
	}
}

// 開発用バイパスが署名検証のみをスキップすることを検証
func TestService_VerifyAndGrant_DevBypass(t *testing.T) {
	f := newVerifyServiceFixture(true)

	req := validVerifyRequest()
	req.Signature = "totally-invalid-signature"

	if err := f.service.VerifyAndGrant(context.Background(), req); err != nil {
		t.Fatalf("バイパス有効時にエラー: %v", err)
	}
	if f.granter.grantCalls != 1 {
		t.Errorf("expected 1 grant call, got %d", f.granter.grantCalls)
	}

	// バイパスが有効でもフィールド検査はスキップしない
	f2 := newVerifyServiceFixture(true)
	req2 := validVerifyRequest()
	req2.Signature = ""

	err := f2.service.VerifyAndGrant(context.Background(), req2)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeMalformedVerification {
		t.Errorf("バイパス有効時もフィールド検査が必要です: got %v", err)
	}
}

// 付与の書き込み失敗がSTORE_UNAVAILABLEとなることを検証
func TestService_VerifyAndGrant_GrantFailure(t *testing.T) {
	f := newVerifyServiceFixture(false)
	f.granter.grantFunc = func(ctx context.Context, hashedID, paymentID, orderID string, pkg model.PackageType) (*model.EntitlementRecord, error) {
		return nil, errors.New("redis: connection refused")
	}

	err := f.service.VerifyAndGrant(context.Background(), validVerifyRequest())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStoreUnavailable {
		t.Errorf("expected STORE_UNAVAILABLE, got %v", err)
	}
}

// 監査記録の失敗が付与の成功を妨げないことを検証
func TestService_VerifyAndGrant_AuditFailureDoesNotFailGrant(t *testing.T) {
	f := newVerifyServiceFixture(false)
	f.events.createFunc = func(ctx context.Context, event *model.PaymentEvent) error {
		return errors.New("db down")
	}
	f.orders.updateStatusFunc = func(ctx context.Context, gatewayOrderID, status string) error {
		return errors.New("db down")
	}

	if err := f.service.VerifyAndGrant(context.Background(), validVerifyRequest()); err != nil {
		t.Errorf("監査失敗で検証が失敗しました: %v", err)
	}
	if f.granter.grantCalls != 1 {
		t.Errorf("expected 1 grant call, got %d", f.granter.grantCalls)
	}
}

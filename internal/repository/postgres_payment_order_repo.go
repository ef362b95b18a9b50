package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobdocs/internal/model"
)

// PostgresPaymentOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresPaymentOrderRepo struct {
	db *sql.DB
}

// NewPostgresPaymentOrderRepo はPostgresPaymentOrderRepoを生成する。
func NewPostgresPaymentOrderRepo(db *sql.DB) *PostgresPaymentOrderRepo {
	return &PostgresPaymentOrderRepo{db: db}
}

// Create は注文レコードを作成する。
func (r *PostgresPaymentOrderRepo) Create(ctx context.Context, order *model.PaymentOrder) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_orders
		 (id, identity_key, package_type, amount_paise, currency, receipt_id, gateway_order_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.IdentityKey, order.PackageType, order.AmountPaise,
		order.Currency, order.ReceiptID, order.GatewayOrderID, order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment order: %w", err)
	}
	return nil
}

// FindByGatewayOrderID はゲートウェイ注文IDで注文を検索する。見つからない場合はnilを返す。
func (r *PostgresPaymentOrderRepo) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.PaymentOrder, error) {
	order := &model.PaymentOrder{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, identity_key, package_type, amount_paise, currency, receipt_id, gateway_order_id, status, created_at, updated_at
		 FROM payment_orders WHERE gateway_order_id = $1`,
		gatewayOrderID,
	).Scan(
		&order.ID, &order.IdentityKey, &order.PackageType, &order.AmountPaise,
		&order.Currency, &order.ReceiptID, &order.GatewayOrderID, &order.Status,
		&order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment order: %w", err)
	}

	return order, nil
}

// UpdateStatus はゲートウェイ注文IDで指定した注文のステータスを更新する。
func (r *PostgresPaymentOrderRepo) UpdateStatus(ctx context.Context, gatewayOrderID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payment_orders SET status = $1, updated_at = now() WHERE gateway_order_id = $2`,
		status, gatewayOrderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment order status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("payment order not found: %s", gatewayOrderID)
	}
	return nil
}

// compile-time interface check
var _ PaymentOrderRepository = (*PostgresPaymentOrderRepo)(nil)

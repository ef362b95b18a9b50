package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/jobdocs/internal/model"
)

// PostgresPaymentEventRepo はPostgreSQLを使用した監査ログリポジトリ。
type PostgresPaymentEventRepo struct {
	db *sql.DB
}

// NewPostgresPaymentEventRepo はPostgresPaymentEventRepoを生成する。
func NewPostgresPaymentEventRepo(db *sql.DB) *PostgresPaymentEventRepo {
	return &PostgresPaymentEventRepo{db: db}
}

// Create は監査イベントを追記する。
func (r *PostgresPaymentEventRepo) Create(ctx context.Context, event *model.PaymentEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_events
		 (id, identity_key, event_type, order_id, payment_id, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.IdentityKey, event.EventType,
		event.OrderID, event.PaymentID, event.Detail, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment event: %w", err)
	}
	return nil
}

// ListByIdentityKey は指定Identityの監査イベントを新しい順に返す。
func (r *PostgresPaymentEventRepo) ListByIdentityKey(ctx context.Context, identityKey string, limit int) ([]*model.PaymentEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, identity_key, event_type, order_id, payment_id, detail, created_at
		 FROM payment_events WHERE identity_key = $1
		 ORDER BY created_at DESC LIMIT $2`,
		identityKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment events: %w", err)
	}
	defer rows.Close()

	var events []*model.PaymentEvent
	for rows.Next() {
		event := &model.PaymentEvent{}
		if err := rows.Scan(
			&event.ID, &event.IdentityKey, &event.EventType,
			&event.OrderID, &event.PaymentID, &event.Detail, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment events: %w", err)
	}

	return events, nil
}

// compile-time interface check
var _ PaymentEventRepository = (*PostgresPaymentEventRepo)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

type subscriptionRepo struct {
	db *sqlx.DB
}

// NewSubscriptionRepo creates a new PostgreSQL-backed SubscriptionRepository.
func NewSubscriptionRepo(db *sqlx.DB) port.SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) GetByTenant(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := conn(ctx, r.db).GetContext(ctx, &sub, "SELECT * FROM subscriptions WHERE tenant_id = $1", tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("subscriptionRepo.GetByTenant: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	query := `INSERT INTO subscriptions (id, tenant_id, plan, status, payfast_token, amount_cents,
		last_payment_id, last_payment_at, next_billing_date, cancelled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			payfast_token = EXCLUDED.payfast_token,
			amount_cents = EXCLUDED.amount_cents,
			last_payment_id = EXCLUDED.last_payment_id,
			last_payment_at = EXCLUDED.last_payment_at,
			next_billing_date = EXCLUDED.next_billing_date,
			cancelled_at = EXCLUDED.cancelled_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		sub.ID, sub.TenantID, sub.Plan, sub.Status, sub.PayFastToken, sub.Amount,
		sub.LastPaymentID, sub.LastPaymentAt, sub.NextBillingDate, sub.CancelledAt,
		sub.CreatedAt, sub.UpdatedAt).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("subscriptionRepo.Upsert: %w", err)
	}
	return nil
}

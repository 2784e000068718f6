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

type tenantRepo struct {
	db *sqlx.DB
}

// NewTenantRepo creates a new PostgreSQL-backed TenantRepository.
func NewTenantRepo(db *sqlx.DB) port.TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := conn(ctx, r.db).GetContext(ctx, &tenant, "SELECT * FROM tenants WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", err)
	}
	return &tenant, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()
	query := `UPDATE tenants SET name = $1, email = $2, phone = $3, vat_registered = $4,
		vat_number = $5, vat_rate = $6, updated_at = $7
		WHERE id = $8`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		tenant.Name, tenant.Email, tenant.Phone, tenant.VATRegistered,
		tenant.VATNumber, tenant.VATRate, tenant.UpdatedAt, tenant.ID)
	if err != nil {
		return fmt.Errorf("tenantRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (r *tenantRepo) UpdatePlan(ctx context.Context, id uuid.UUID, plan domain.TenantPlan, status domain.SubscriptionStatus) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE tenants SET plan = $1, subscription_status = $2, updated_at = $3 WHERE id = $4",
		plan, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("tenantRepo.UpdatePlan: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

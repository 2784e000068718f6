package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

var usageTables = map[domain.UsageResource]string{
	domain.UsageQuotes:   "quotes",
	domain.UsageJobs:     "jobs",
	domain.UsageInvoices: "invoices",
}

type usageRepo struct {
	db *sqlx.DB
}

// NewUsageRepo creates a new PostgreSQL-backed UsageRepository.
func NewUsageRepo(db *sqlx.DB) port.UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, resource domain.UsageResource, since time.Time) (int, error) {
	table, ok := usageTables[resource]
	if !ok {
		return 0, fmt.Errorf("usageRepo.CountCreatedSince: unknown resource %q", resource)
	}
	var count int
	err := conn(ctx, r.db).GetContext(ctx, &count,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE tenant_id = $1 AND created_at >= $2", table),
		tenantID, since)
	if err != nil {
		return 0, fmt.Errorf("usageRepo.CountCreatedSince: %w", err)
	}
	return count, nil
}

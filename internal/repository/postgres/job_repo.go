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

const jobQuoteConstraint = "jobs_quote_key"

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB) port.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	job.ID = uuid.New()
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `INSERT INTO jobs (id, tenant_id, customer_id, quote_id, title, description, address,
		status, scheduled_date, completed_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		job.ID, job.TenantID, job.CustomerID, job.QuoteID, job.Title, job.Description, job.Address,
		job.Status, job.ScheduledDate, job.CompletedDate, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, jobQuoteConstraint) {
			return domain.ErrQuoteHasJob
		}
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := conn(ctx, r.db).GetContext(ctx, &job,
		"SELECT * FROM jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

// GetForUpdate locks the job row until the surrounding transaction ends.
func (r *jobRepo) GetForUpdate(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := conn(ctx, r.db).GetContext(ctx, &job,
		"SELECT * FROM jobs WHERE id = $1 AND tenant_id = $2 FOR UPDATE", jobID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetForUpdate: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) GetByQuoteID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := conn(ctx, r.db).GetContext(ctx, &job,
		"SELECT * FROM jobs WHERE quote_id = $1 AND tenant_id = $2", quoteID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByQuoteID: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.JobFilter, offset, limit int) ([]domain.Job, int, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM jobs "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("jobRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT * FROM jobs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", where, n+1, n+2)
	args = append(args, limit, offset)

	var jobs []domain.Job
	if err := conn(ctx, r.db).SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("jobRepo.List: %w", err)
	}
	return jobs, total, nil
}

func (r *jobRepo) UpdateStatus(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	query := `UPDATE jobs SET status = $1, scheduled_date = $2, completed_date = $3, updated_at = $4
		WHERE id = $5 AND tenant_id = $6`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		job.Status, job.ScheduledDate, job.CompletedDate, job.UpdatedAt, job.ID, job.TenantID)
	if err != nil {
		return fmt.Errorf("jobRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM jobs WHERE id = $1 AND tenant_id = $2", jobID, tenantID)
	if err != nil {
		return fmt.Errorf("jobRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

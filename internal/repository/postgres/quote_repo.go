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

const quoteNumberConstraint = "quotes_tenant_number_key"

type quoteRepo struct {
	db *sqlx.DB
}

// NewQuoteRepo creates a new PostgreSQL-backed QuoteRepository.
func NewQuoteRepo(db *sqlx.DB) port.QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) Create(ctx context.Context, quote *domain.Quote) error {
	quote.ID = uuid.New()
	quote.ShareToken = uuid.New()
	now := time.Now().UTC()
	quote.CreatedAt = now
	quote.UpdatedAt = now

	query := `INSERT INTO quotes (id, tenant_id, customer_id, quote_number, title, line_items,
		subtotal_cents, vat_rate, vat_cents, total_cents, status, valid_until, notes, share_token,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		quote.ID, quote.TenantID, quote.CustomerID, quote.QuoteNumber, quote.Title, quote.LineItems,
		quote.Subtotal, quote.VATRate, quote.VATAmount, quote.Total, quote.Status, quote.ValidUntil,
		quote.Notes, quote.ShareToken, quote.CreatedAt, quote.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, quoteNumberConstraint) {
			return domain.ErrDuplicateQuoteNumber
		}
		return fmt.Errorf("quoteRepo.Create: %w", err)
	}
	return nil
}

func (r *quoteRepo) GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := conn(ctx, r.db).GetContext(ctx, &quote,
		"SELECT * FROM quotes WHERE id = $1 AND tenant_id = $2", quoteID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quoteRepo.GetByID: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepo) GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := conn(ctx, r.db).GetContext(ctx, &quote, "SELECT * FROM quotes WHERE share_token = $1", token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quoteRepo.GetByShareToken: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.QuoteFilter, offset, limit int) ([]domain.Quote, int, error) {
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
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM quotes "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("quoteRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT * FROM quotes %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", where, n+1, n+2)
	args = append(args, limit, offset)

	var quotes []domain.Quote
	if err := conn(ctx, r.db).SelectContext(ctx, &quotes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("quoteRepo.List: %w", err)
	}
	return quotes, total, nil
}

// Update rewrites the editable content of a draft quote.
func (r *quoteRepo) Update(ctx context.Context, quote *domain.Quote) error {
	quote.UpdatedAt = time.Now().UTC()
	query := `UPDATE quotes SET customer_id = $1, title = $2, line_items = $3, subtotal_cents = $4,
		vat_rate = $5, vat_cents = $6, total_cents = $7, valid_until = $8, notes = $9, updated_at = $10
		WHERE id = $11 AND tenant_id = $12 AND status = 'draft'`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		quote.CustomerID, quote.Title, quote.LineItems, quote.Subtotal, quote.VATRate,
		quote.VATAmount, quote.Total, quote.ValidUntil, quote.Notes, quote.UpdatedAt,
		quote.ID, quote.TenantID)
	if err != nil {
		return fmt.Errorf("quoteRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotEditable
	}
	return nil
}

func (r *quoteRepo) UpdateStatus(ctx context.Context, quote *domain.Quote, from domain.QuoteStatus) error {
	quote.UpdatedAt = time.Now().UTC()
	query := `UPDATE quotes SET status = $1, sent_at = $2, viewed_at = $3, accepted_at = $4,
		rejected_at = $5, updated_at = $6
		WHERE id = $7 AND tenant_id = $8 AND status = $9`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		quote.Status, quote.SentAt, quote.ViewedAt, quote.AcceptedAt, quote.RejectedAt,
		quote.UpdatedAt, quote.ID, quote.TenantID, from)
	if err != nil {
		return fmt.Errorf("quoteRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *quoteRepo) Delete(ctx context.Context, tenantID, quoteID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM quotes WHERE id = $1 AND tenant_id = $2", quoteID, tenantID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrQuoteHasJob
		}
		return fmt.Errorf("quoteRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

func (r *quoteRepo) LatestNumber(ctx context.Context, tenantID uuid.UUID, yearPrefix string) (string, error) {
	number, err := latestNumber(ctx, conn(ctx, r.db), "quotes", "quote_number", tenantID, yearPrefix)
	if err != nil {
		return "", fmt.Errorf("quoteRepo.LatestNumber: %w", err)
	}
	return number, nil
}

func (r *quoteRepo) NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	exists, err := numberExists(ctx, conn(ctx, r.db), "quotes", "quote_number", tenantID, number)
	if err != nil {
		return false, fmt.Errorf("quoteRepo.NumberExists: %w", err)
	}
	return exists, nil
}

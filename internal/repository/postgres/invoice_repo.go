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

const (
	invoiceNumberConstraint  = "invoices_tenant_number_key"
	invoiceDepositConstraint = "invoices_job_deposit_key"
	invoiceBalanceConstraint = "invoices_job_balance_key"
	invoicePaidConstraint    = "invoices_amount_paid_range"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	invoice.ID = uuid.New()
	invoice.ShareToken = uuid.New()
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	query := `INSERT INTO invoices (id, tenant_id, customer_id, job_id, parent_invoice_id,
		invoice_number, invoice_type, stage_percentage, line_items, subtotal_cents, vat_cents,
		total_cents, amount_paid_cents, status, due_date, notes, share_token, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		invoice.ID, invoice.TenantID, invoice.CustomerID, invoice.JobID, invoice.ParentInvoiceID,
		invoice.InvoiceNumber, invoice.InvoiceType, invoice.StagePercentage, invoice.LineItems,
		invoice.Subtotal, invoice.VATAmount, invoice.Total, invoice.AmountPaid, invoice.Status,
		invoice.DueDate, invoice.Notes, invoice.ShareToken, invoice.PaidAt, invoice.CreatedAt, invoice.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, invoiceNumberConstraint):
			return domain.ErrDuplicateInvoiceNumber
		case isUniqueViolation(err, invoiceDepositConstraint):
			return domain.ErrDepositExists
		case isUniqueViolation(err, invoiceBalanceConstraint):
			return domain.ErrBalanceExists
		}
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := conn(ctx, r.db).GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE id = $1 AND tenant_id = $2", invoiceID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := conn(ctx, r.db).GetContext(ctx, &invoice, "SELECT * FROM invoices WHERE share_token = $1", token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByShareToken: %w", err)
	}
	return &invoice, nil
}

func invoiceWhere(tenantID uuid.UUID, filter port.InvoiceFilter) (string, []interface{}) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.JobID != nil {
		args = append(args, *filter.JobID)
		where += fmt.Sprintf(" AND job_id = $%d", len(args))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	return where, args
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	where, args := invoiceWhere(tenantID, filter)

	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT * FROM invoices %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d", where, n+1, n+2)
	args = append(args, limit, offset)

	var invoices []domain.Invoice
	if err := conn(ctx, r.db).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) ListAll(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter) ([]domain.Invoice, error) {
	where, args := invoiceWhere(tenantID, filter)
	var invoices []domain.Invoice
	err := conn(ctx, r.db).SelectContext(ctx, &invoices,
		"SELECT * FROM invoices "+where+" ORDER BY created_at ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListAll: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := conn(ctx, r.db).SelectContext(ctx, &invoices,
		"SELECT * FROM invoices WHERE tenant_id = $1 AND job_id = $2 ORDER BY created_at ASC, id ASC",
		tenantID, jobID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListByJob: %w", err)
	}
	return invoices, nil
}

// Update rewrites the editable content of a draft invoice.
func (r *invoiceRepo) Update(ctx context.Context, invoice *domain.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	query := `UPDATE invoices SET customer_id = $1, line_items = $2, subtotal_cents = $3, vat_cents = $4,
		total_cents = $5, due_date = $6, notes = $7, updated_at = $8
		WHERE id = $9 AND tenant_id = $10 AND status = 'draft'`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		invoice.CustomerID, invoice.LineItems, invoice.Subtotal, invoice.VATAmount, invoice.Total,
		invoice.DueDate, invoice.Notes, invoice.UpdatedAt, invoice.ID, invoice.TenantID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotEditable
	}
	return nil
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error {
	invoice.UpdatedAt = time.Now().UTC()
	query := `UPDATE invoices SET status = $1, sent_at = $2, viewed_at = $3, updated_at = $4
		WHERE id = $5 AND tenant_id = $6 AND status = $7`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		invoice.Status, invoice.SentAt, invoice.ViewedAt, invoice.UpdatedAt, invoice.ID, invoice.TenantID, from)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *invoiceRepo) ApplyPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, expectedPaid, newPaid domain.Money,
	status domain.InvoiceStatus, paidAt *time.Time) error {
	query := `UPDATE invoices SET amount_paid_cents = $1, status = $2, paid_at = COALESCE($3, paid_at), updated_at = $4
		WHERE id = $5 AND tenant_id = $6 AND amount_paid_cents = $7 AND $1 <= total_cents`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		newPaid, status, paidAt, time.Now().UTC(), invoiceID, tenantID, expectedPaid)
	if err != nil {
		if isCheckViolation(err, invoicePaidConstraint) {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("invoiceRepo.ApplyPayment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND tenant_id = $2", invoiceID, tenantID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvoiceHasPayments
		}
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) DeleteByJob(ctx context.Context, tenantID, jobID uuid.UUID) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM invoices WHERE tenant_id = $1 AND job_id = $2", tenantID, jobID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrJobHasPayments
		}
		return 0, fmt.Errorf("invoiceRepo.DeleteByJob: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *invoiceRepo) MarkOverdue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE invoices SET status = 'overdue', updated_at = $1
		WHERE tenant_id = $2 AND status IN ('sent', 'viewed') AND due_date < $3`,
		time.Now().UTC(), tenantID, today)
	if err != nil {
		return 0, fmt.Errorf("invoiceRepo.MarkOverdue: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *invoiceRepo) LatestNumber(ctx context.Context, tenantID uuid.UUID, yearPrefix string) (string, error) {
	number, err := latestNumber(ctx, conn(ctx, r.db), "invoices", "invoice_number", tenantID, yearPrefix)
	if err != nil {
		return "", fmt.Errorf("invoiceRepo.LatestNumber: %w", err)
	}
	return number, nil
}

func (r *invoiceRepo) NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	exists, err := numberExists(ctx, conn(ctx, r.db), "invoices", "invoice_number", tenantID, number)
	if err != nil {
		return false, fmt.Errorf("invoiceRepo.NumberExists: %w", err)
	}
	return exists, nil
}

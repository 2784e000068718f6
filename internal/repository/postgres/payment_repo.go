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

type paymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo creates a new PostgreSQL-backed PaymentRepository.
func NewPaymentRepo(db *sqlx.DB) port.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now().UTC()

	query := `INSERT INTO payments (id, tenant_id, invoice_id, amount_cents, payment_date, method, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		payment.ID, payment.TenantID, payment.InvoiceID, payment.Amount, payment.PaymentDate,
		payment.Method, payment.Reference, payment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvoiceNotFound
		}
		return fmt.Errorf("paymentRepo.Create: %w", err)
	}
	return nil
}

func (r *paymentRepo) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := conn(ctx, r.db).SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY payment_date ASC, created_at ASC",
		tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByInvoice: %w", err)
	}
	return payments, nil
}

func (r *paymentRepo) CountByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int, error) {
	var count int
	err := conn(ctx, r.db).GetContext(ctx, &count,
		"SELECT COUNT(*) FROM payments WHERE tenant_id = $1 AND invoice_id = $2", tenantID, invoiceID)
	if err != nil {
		return 0, fmt.Errorf("paymentRepo.CountByInvoice: %w", err)
	}
	return count, nil
}

func (r *paymentRepo) DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error) {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM payments WHERE tenant_id = $1 AND invoice_id = $2", tenantID, invoiceID)
	if err != nil {
		return 0, fmt.Errorf("paymentRepo.DeleteByInvoice: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (r *paymentRepo) InvoiceNumbersWithPayments(ctx context.Context, tenantID, jobID uuid.UUID) ([]string, error) {
	query := `SELECT i.invoice_number FROM invoices i
		WHERE i.tenant_id = $1 AND i.job_id = $2
		AND EXISTS (SELECT 1 FROM payments p WHERE p.invoice_id = i.id)
		ORDER BY i.created_at ASC`
	var numbers []string
	if err := conn(ctx, r.db).SelectContext(ctx, &numbers, query, tenantID, jobID); err != nil {
		return nil, fmt.Errorf("paymentRepo.InvoiceNumbersWithPayments: %w", err)
	}
	return numbers, nil
}

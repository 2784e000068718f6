package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
)

func TestJobRepo_GetForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepo(db)
	tenantID, jobID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM jobs WHERE id = $1 AND tenant_id = $2 FOR UPDATE")).
		WithArgs(jobID, tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "status"}).
			AddRow(jobID.String(), tenantID.String(), "complete"))

	job, err := repo.GetForUpdate(context.Background(), tenantID, jobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusComplete, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepo_GetForUpdate_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetForUpdate(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestPaymentRepo_InvoiceNumbersWithPayments(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepo(db)
	tenantID, jobID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT i.invoice_number FROM invoices i")).
		WithArgs(tenantID, jobID).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_number"}).
			AddRow("INV-2026-001").
			AddRow("INV-2026-002"))

	numbers, err := repo.InvoiceNumbersWithPayments(context.Background(), tenantID, jobID)
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-2026-001", "INV-2026-002"}, numbers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_Create_UnknownInvoice(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "payments_invoice_id_fkey"})

	err := repo.Create(context.Background(), &domain.Payment{
		TenantID: uuid.New(), InvoiceID: uuid.New(), Amount: 5000, Method: domain.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestQuoteRepo_Delete_ReferencedByJob(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM quotes")).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "jobs_quote_id_fkey"})

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrQuoteHasJob)
}

func TestQuoteRepo_Update_OnlyDrafts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE quotes SET customer_id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Quote{ID: uuid.New(), TenantID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
}

func TestSequentialPattern(t *testing.T) {
	re := regexp.MustCompile(sequentialPattern("INV-2026-"))
	assert.True(t, re.MatchString("INV-2026-007"))
	assert.True(t, re.MatchString("INV-2026-1000"))
	assert.False(t, re.MatchString("INV-2026-K7PQ2M"))
	assert.False(t, re.MatchString("INV-2025-007"))
}

func TestInvoiceRepo_UpdateStatus_GuardsExpectedStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInvoiceRepo(db)
	inv := &domain.Invoice{ID: uuid.New(), TenantID: uuid.New(), Status: domain.InvoiceStatusViewed}

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $5 AND tenant_id = $6 AND status = $7")).
		WithArgs(domain.InvoiceStatusViewed, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), inv.ID, inv.TenantID, domain.InvoiceStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), inv, domain.InvoiceStatusSent)
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteRepo_UpdateStatus_GuardsExpectedStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuoteRepo(db)
	q := &domain.Quote{ID: uuid.New(), TenantID: uuid.New(), Status: domain.QuoteStatusSent}

	mock.ExpectExec(regexp.QuoteMeta("AND status = $9")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), q, domain.QuoteStatusDraft))

	mock.ExpectExec(regexp.QuoteMeta("AND status = $9")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), q, domain.QuoteStatusDraft), domain.ErrConcurrentUpdate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

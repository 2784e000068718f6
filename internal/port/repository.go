package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobkaart/internal/domain"
)

// Transactor runs fn inside a database transaction. Repositories called with
// the context passed to fn take part in the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TenantRepository defines the contract for tenant persistence.
// Tenants are provisioned by onboarding; this layer only reads and updates them.
type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	UpdatePlan(ctx context.Context, id uuid.UUID, plan domain.TenantPlan, status domain.SubscriptionStatus) error
}

// CustomerRepository defines the contract for customer persistence.
// All query methods include tenantID to enforce tenant isolation at the data layer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, tenantID, customerID uuid.UUID) error
	IsReferenced(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
}

// DocumentNumberStore is the read side of per-tenant document numbering.
type DocumentNumberStore interface {
	// LatestNumber returns the most recently created sequential number that
	// starts with yearPrefix, or "" when there is none.
	LatestNumber(ctx context.Context, tenantID uuid.UUID, yearPrefix string) (string, error)
	NumberExists(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
}

// QuoteFilter narrows a quote listing.
type QuoteFilter struct {
	Status     domain.QuoteStatus
	CustomerID *uuid.UUID
}

// QuoteRepository defines the contract for quote persistence.
type QuoteRepository interface {
	DocumentNumberStore
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)
	// GetByShareToken resolves a public link; it is not tenant scoped.
	GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter QuoteFilter, offset, limit int) ([]domain.Quote, int, error)
	Update(ctx context.Context, quote *domain.Quote) error
	// UpdateStatus writes the quote's status and timestamps if the stored
	// status is still from; otherwise it returns domain.ErrConcurrentUpdate.
	UpdateStatus(ctx context.Context, quote *domain.Quote, from domain.QuoteStatus) error
	Delete(ctx context.Context, tenantID, quoteID uuid.UUID) error
}

// JobFilter narrows a job listing.
type JobFilter struct {
	Status     domain.JobStatus
	CustomerID *uuid.UUID
}

// JobRepository defines the contract for job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error)
	// GetForUpdate reads the job and locks it for the rest of the transaction.
	// Billing writes for one job take this lock so cumulative checks see a
	// stable set of invoices.
	GetForUpdate(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error)
	GetByQuoteID(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, tenantID uuid.UUID, filter JobFilter, offset, limit int) ([]domain.Job, int, error)
	UpdateStatus(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, tenantID, jobID uuid.UUID) error
}

// InvoiceFilter narrows an invoice listing.
type InvoiceFilter struct {
	Status     domain.InvoiceStatus
	JobID      *uuid.UUID
	CustomerID *uuid.UUID
}

// InvoiceRepository defines the contract for invoice persistence.
type InvoiceRepository interface {
	DocumentNumberStore
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	// GetByShareToken resolves a public link; it is not tenant scoped.
	GetByShareToken(ctx context.Context, token uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	ListAll(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]domain.Invoice, error)
	// ListByJob returns a job's invoices oldest first.
	ListByJob(ctx context.Context, tenantID, jobID uuid.UUID) ([]domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	// UpdateStatus writes the invoice's status and timestamps if the stored
	// status is still from; otherwise it returns domain.ErrConcurrentUpdate.
	UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error
	// ApplyPayment moves amount_paid from expectedPaid to newPaid. It returns
	// domain.ErrConcurrentUpdate when the stored amount no longer matches
	// expectedPaid or newPaid would exceed the total.
	ApplyPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, expectedPaid, newPaid domain.Money,
		status domain.InvoiceStatus, paidAt *time.Time) error
	Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error
	DeleteByJob(ctx context.Context, tenantID, jobID uuid.UUID) (int64, error)
	// MarkOverdue flags sent and viewed invoices due before today.
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int64, error)
}

// PaymentRepository defines the contract for payment persistence.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error)
	CountByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int, error)
	DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (int64, error)
	// InvoiceNumbersWithPayments lists the job's invoices that have at least one payment.
	InvoiceNumbersWithPayments(ctx context.Context, tenantID, jobID uuid.UUID) ([]string, error)
}

// UsageRepository counts records created per tenant for quota checks.
type UsageRepository interface {
	CountCreatedSince(ctx context.Context, tenantID uuid.UUID, resource domain.UsageResource, since time.Time) (int, error)
}

// SubscriptionRepository defines the contract for the mirrored subscription state.
type SubscriptionRepository interface {
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error)
	Upsert(ctx context.Context, sub *domain.Subscription) error
}

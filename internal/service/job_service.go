package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// CreateJobInput is the DTO for creating a job. Either QuoteID or CustomerID is required.
type CreateJobInput struct {
	QuoteID       *uuid.UUID   `json:"quote_id"`
	CustomerID    *uuid.UUID   `json:"customer_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Address       string       `json:"address"`
	ScheduledDate *domain.Date `json:"scheduled_date" swaggertype:"string" example:"2026-03-20"`
}

// UpdateJobStatusInput is the DTO for a manual job status change.
type UpdateJobStatusInput struct {
	Status        domain.JobStatus `json:"status" binding:"required"`
	ScheduledDate *domain.Date     `json:"scheduled_date" swaggertype:"string" example:"2026-03-20"`
}

// JobBillingSummary is the invoicing position of a job against its quote.
type JobBillingSummary struct {
	JobID               uuid.UUID        `json:"job_id"`
	Status              domain.JobStatus `json:"status"`
	QuoteTotal          domain.Money     `json:"quote_total"`
	InvoicedTotal       domain.Money     `json:"invoiced_total"`
	InvoicedPercentage  decimal.Decimal  `json:"invoiced_percentage" swaggertype:"number"`
	PaidTotal           domain.Money     `json:"paid_total"`
	RemainingPercentage decimal.Decimal  `json:"remaining_percentage" swaggertype:"number"`
	Invoices            []domain.Invoice `json:"invoices"`
}

// JobService defines the job tracker contract.
type JobService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input *CreateJobInput) (*domain.Job, error)
	GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, tenantID uuid.UUID, filter port.JobFilter, offset, limit int) ([]domain.Job, int, error)
	UpdateStatus(ctx context.Context, tenantID, jobID uuid.UUID, input *UpdateJobStatusInput) (*domain.Job, error)
	// Delete removes the job and its invoices. It fails when any of those
	// invoices has a recorded payment.
	Delete(ctx context.Context, tenantID, jobID uuid.UUID) error
	BillingSummary(ctx context.Context, tenantID, jobID uuid.UUID) (*JobBillingSummary, error)
}

// JobServiceDeps groups the collaborators of the job service.
type JobServiceDeps struct {
	Tx        port.Transactor
	Jobs      port.JobRepository
	Quotes    port.QuoteRepository
	Customers port.CustomerRepository
	Invoices  port.InvoiceRepository
	Payments  port.PaymentRepository
	Usage     UsageService
	Logger    *zap.Logger
	Now       func() time.Time
}

type jobService struct {
	tx        port.Transactor
	jobs      port.JobRepository
	quotes    port.QuoteRepository
	customers port.CustomerRepository
	invoices  port.InvoiceRepository
	payments  port.PaymentRepository
	usage     UsageService
	log       *zap.Logger
	now       func() time.Time
}

// NewJobService creates a new JobService implementation.
func NewJobService(deps JobServiceDeps) JobService {
	return &jobService{
		tx:        deps.Tx,
		jobs:      deps.Jobs,
		quotes:    deps.Quotes,
		customers: deps.Customers,
		invoices:  deps.Invoices,
		payments:  deps.Payments,
		usage:     deps.Usage,
		log:       orNop(deps.Logger),
		now:       orNow(deps.Now),
	}
}

func (s *jobService) Create(ctx context.Context, tenantID uuid.UUID, input *CreateJobInput) (*domain.Job, error) {
	if input.QuoteID == nil && input.CustomerID == nil {
		return nil, domain.NewBusinessError(domain.ErrValidation, "either quote_id or customer_id is required")
	}
	if err := s.usage.Check(ctx, tenantID, domain.UsageJobs); err != nil {
		return nil, err
	}

	job := &domain.Job{
		TenantID:    tenantID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Address:     strings.TrimSpace(input.Address),
		Status:      domain.JobStatusQuoted,
	}

	if input.QuoteID != nil {
		quote, err := s.quotes.GetByID(ctx, tenantID, *input.QuoteID)
		if err != nil {
			return nil, err
		}
		if quote.Status != domain.QuoteStatusAccepted {
			return nil, domain.NewBusinessError(domain.ErrQuoteNotAccepted,
				"quote %s is %s; only accepted quotes can become jobs", quote.QuoteNumber, quote.Status)
		}
		job.QuoteID = &quote.ID
		job.CustomerID = quote.CustomerID
		if job.Title == "" {
			job.Title = quote.Title
		}
	} else {
		customer, err := s.customers.GetByID(ctx, tenantID, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		job.CustomerID = customer.ID
	}
	if job.Title == "" {
		return nil, domain.NewBusinessError(domain.ErrValidation, "job title is required")
	}
	if input.ScheduledDate != nil {
		d := input.ScheduledDate.Time
		job.ScheduledDate = &d
		job.Status = domain.JobStatusScheduled
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	s.log.Info("job created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("job_id", job.ID.String()),
	)
	return job, nil
}

func (s *jobService) GetByID(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, error) {
	return s.jobs.GetByID(ctx, tenantID, jobID)
}

func (s *jobService) List(ctx context.Context, tenantID uuid.UUID, filter port.JobFilter, offset, limit int) ([]domain.Job, int, error) {
	return s.jobs.List(ctx, tenantID, filter, offset, limit)
}

func (s *jobService) UpdateStatus(ctx context.Context, tenantID, jobID uuid.UUID, input *UpdateJobStatusInput) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateJobTransition(job.Status, input.Status); err != nil {
		return nil, err
	}

	job.Status = input.Status
	switch input.Status {
	case domain.JobStatusScheduled:
		if input.ScheduledDate != nil {
			d := input.ScheduledDate.Time
			job.ScheduledDate = &d
		}
		if job.ScheduledDate == nil {
			return nil, domain.NewBusinessError(domain.ErrValidation, "scheduled_date is required to schedule a job")
		}
		job.CompletedDate = nil
	case domain.JobStatusComplete:
		d := domain.StartOfDay(s.now())
		job.CompletedDate = &d
	default:
		job.CompletedDate = nil
	}

	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Delete(ctx context.Context, tenantID, jobID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.jobs.GetForUpdate(ctx, tenantID, jobID); err != nil {
			return err
		}
		paid, err := s.payments.InvoiceNumbersWithPayments(ctx, tenantID, jobID)
		if err != nil {
			return err
		}
		if len(paid) > 0 {
			return domain.NewBusinessError(domain.ErrJobHasPayments,
				"job cannot be deleted: payments are recorded on invoice(s) %s", strings.Join(paid, ", "))
		}
		removed, err := s.invoices.DeleteByJob(ctx, tenantID, jobID)
		if err != nil {
			return err
		}
		if err := s.jobs.Delete(ctx, tenantID, jobID); err != nil {
			return err
		}
		s.log.Info("job deleted",
			zap.String("tenant_id", tenantID.String()),
			zap.String("job_id", jobID.String()),
			zap.Int64("invoices_removed", removed),
		)
		return nil
	})
}

func (s *jobService) BillingSummary(ctx context.Context, tenantID, jobID uuid.UUID) (*JobBillingSummary, error) {
	job, err := s.jobs.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	summary := &JobBillingSummary{
		JobID:               job.ID,
		Status:              job.Status,
		InvoicedTotal:       domain.SumTotals(invoices),
		InvoicedPercentage:  decimal.Zero,
		RemainingPercentage: decimal.NewFromInt(100),
		Invoices:            invoices,
	}
	for i := range invoices {
		summary.PaidTotal += invoices[i].AmountPaid
	}

	if job.QuoteID != nil {
		quote, err := s.quotes.GetByID(ctx, tenantID, *job.QuoteID)
		if err != nil {
			return nil, err
		}
		summary.QuoteTotal = quote.Total
		pct := domain.PercentOf(summary.InvoicedTotal, quote.Total).Round(2)
		summary.InvoicedPercentage = pct
		remaining := decimal.NewFromInt(100).Sub(pct)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		summary.RemainingPercentage = remaining
	}
	return summary, nil
}

// jobStatusRule maps a job's current status and invoices to its next status.
type jobStatusRule func(current domain.JobStatus, invoices []domain.Invoice) domain.JobStatus

var (
	// statusAfterActivity follows an invoice being sent or paid.
	statusAfterActivity jobStatusRule = domain.AdvanceJobStatus
	// statusAfterDeletion re-evaluates the remaining invoices only.
	statusAfterDeletion jobStatusRule = func(_ domain.JobStatus, invoices []domain.Invoice) domain.JobStatus {
		return domain.DeriveJobStatus(invoices)
	}
)

// syncJobStatus applies rule to a job's invoices and persists the status when
// it changed. It must run inside the caller's transaction.
func syncJobStatus(ctx context.Context, jobs port.JobRepository, invoices port.InvoiceRepository,
	tenantID, jobID uuid.UUID, now time.Time, rule jobStatusRule) (*domain.Job, error) {
	job, err := jobs.GetForUpdate(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	list, err := invoices.ListByJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}
	next := rule(job.Status, list)
	if next == job.Status {
		return job, nil
	}
	job.Status = next
	if job.CompletedDate == nil {
		d := domain.StartOfDay(now)
		job.CompletedDate = &d
	}
	if err := jobs.UpdateStatus(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

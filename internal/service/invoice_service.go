package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/export"
	"jobkaart/internal/port"
)

// InvoiceInput is the DTO for creating or replacing a full invoice.
type InvoiceInput struct {
	CustomerID *uuid.UUID             `json:"customer_id"`
	JobID      *uuid.UUID             `json:"job_id"`
	LineItems  []domain.LineItemInput `json:"line_items" binding:"required,min=1,dive"`
	DueDate    *domain.Date           `json:"due_date" swaggertype:"string" example:"2026-04-09"`
	Notes      string                 `json:"notes"`
}

// DepositInput is the DTO for a deposit invoice request.
type DepositInput struct {
	JobID             uuid.UUID       `json:"job_id" binding:"required"`
	DepositPercentage decimal.Decimal `json:"deposit_percentage" swaggertype:"number"`
}

// ProgressInput is the DTO for a progress invoice request.
type ProgressInput struct {
	JobID      uuid.UUID       `json:"job_id" binding:"required"`
	Percentage decimal.Decimal `json:"percentage" swaggertype:"number"`
}

// BalanceInput is the DTO for a balance invoice request.
type BalanceInput struct {
	JobID uuid.UUID `json:"job_id" binding:"required"`
}

// RecordPaymentInput is the DTO for posting a payment.
type RecordPaymentInput struct {
	Amount      domain.Money         `json:"amount" swaggertype:"number"`
	PaymentDate *domain.Date         `json:"payment_date" swaggertype:"string" example:"2026-03-10"`
	Method      domain.PaymentMethod `json:"payment_method" binding:"required,payment_method"`
	Reference   string               `json:"reference"`
}

// InvoiceDetail is an invoice with its payment history.
type InvoiceDetail struct {
	Invoice  *domain.Invoice  `json:"invoice"`
	Payments []domain.Payment `json:"payments"`
}

// PublicInvoice is an invoice as seen through its share link.
type PublicInvoice struct {
	Invoice      *domain.Invoice `json:"invoice"`
	BusinessName string          `json:"business_name"`
}

// StagedInvoice is a created deposit or progress invoice with its plan.
type StagedInvoice struct {
	Invoice *domain.Invoice
	Plan    *domain.StagePlan
}

// BalanceInvoice is a created balance invoice with its plan.
type BalanceInvoice struct {
	Invoice *domain.Invoice
	Plan    *domain.BalancePlan
}

// PaymentReceipt is a recorded payment and the invoice after it.
type PaymentReceipt struct {
	Payment *domain.Payment `json:"payment"`
	Invoice *domain.Invoice `json:"invoice"`
	Job     *domain.Job     `json:"job,omitempty"`
}

// InvoiceService defines the invoicing and progressive billing contract.
type InvoiceService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input *InvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDetail, error)
	// List marks overdue invoices before listing.
	List(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input *InvoiceInput) (*domain.Invoice, error)
	Send(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error)
	GetPublic(ctx context.Context, token uuid.UUID) (*PublicInvoice, error)
	Export(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, format export.Format, w io.Writer) error

	CreateDeposit(ctx context.Context, tenantID uuid.UUID, input *DepositInput) (*StagedInvoice, error)
	CreateProgress(ctx context.Context, tenantID uuid.UUID, input *ProgressInput) (*StagedInvoice, error)
	CreateBalance(ctx context.Context, tenantID uuid.UUID, input *BalanceInput) (*BalanceInvoice, error)

	RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, input *RecordPaymentInput) (*PaymentReceipt, error)
	ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error)

	// Delete removes an invoice. Without force it refuses invoices with
	// payments and any job invoice that is not the newest.
	Delete(ctx context.Context, tenantID, invoiceID uuid.UUID, force bool) error
}

// InvoiceServiceDeps groups the collaborators of the invoice service.
type InvoiceServiceDeps struct {
	Tx        port.Transactor
	Invoices  port.InvoiceRepository
	Payments  port.PaymentRepository
	Jobs      port.JobRepository
	Quotes    port.QuoteRepository
	Customers port.CustomerRepository
	Tenants   port.TenantRepository
	Usage     UsageService
	Email     port.EmailSender
	Settings  Settings
	Logger    *zap.Logger
	Now       func() time.Time
}

type invoiceService struct {
	tx        port.Transactor
	invoices  port.InvoiceRepository
	payments  port.PaymentRepository
	jobs      port.JobRepository
	quotes    port.QuoteRepository
	customers port.CustomerRepository
	tenants   port.TenantRepository
	usage     UsageService
	email     port.EmailSender
	numbers   *numberAllocator
	settings  Settings
	log       *zap.Logger
	now       func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(deps InvoiceServiceDeps) InvoiceService {
	now := orNow(deps.Now)
	log := orNop(deps.Logger)
	settings := deps.Settings
	if settings.PaymentRetryLimit < 1 {
		settings.PaymentRetryLimit = 1
	}
	return &invoiceService{
		tx:        deps.Tx,
		invoices:  deps.Invoices,
		payments:  deps.Payments,
		jobs:      deps.Jobs,
		quotes:    deps.Quotes,
		customers: deps.Customers,
		tenants:   deps.Tenants,
		usage:     deps.Usage,
		email:     deps.Email,
		numbers: newNumberAllocator(deps.Invoices, domain.InvoiceNumberPrefix,
			settings.NumberAttempts, settings.NumberRetryDelay, now, log),
		settings: settings,
		log:      log,
		now:      now,
	}
}

func (s *invoiceService) Create(ctx context.Context, tenantID uuid.UUID, input *InvoiceInput) (*domain.Invoice, error) {
	if err := s.usage.Check(ctx, tenantID, domain.UsageInvoices); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		TenantID: tenantID,
		JobID:    input.JobID,
		Status:   domain.InvoiceStatusDraft,
	}
	invoice.SetStage(domain.FullStage{})
	if err := s.resolveParties(ctx, tenantID, invoice, input); err != nil {
		return nil, err
	}
	if err := s.applyInput(invoice, input, tenant.EffectiveVATRate()); err != nil {
		return nil, err
	}

	err = s.numbers.create(ctx, tenantID, domain.ErrDuplicateInvoiceNumber, func(ctx context.Context, number string) error {
		invoice.InvoiceNumber = number
		return s.invoices.Create(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	s.logCreated(invoice)
	return invoice, nil
}

func (s *invoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	return &InvoiceDetail{Invoice: invoice, Payments: payments}, nil
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	s.sweepOverdue(ctx, tenantID)
	return s.invoices.List(ctx, tenantID, filter, offset, limit)
}

func (s *invoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input *InvoiceInput) (*domain.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, domain.NewBusinessError(domain.ErrNotEditable,
			"invoice %s is %s; only draft invoices can be edited", invoice.InvoiceNumber, invoice.Status)
	}
	if invoice.InvoiceType != domain.InvoiceTypeFull {
		return nil, domain.NewBusinessError(domain.ErrNotEditable,
			"invoice %s is a %s invoice computed from its quote and cannot be edited", invoice.InvoiceNumber, invoice.InvoiceType)
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	// The job link is fixed at creation.
	input.JobID = invoice.JobID
	if err := s.resolveParties(ctx, tenantID, invoice, input); err != nil {
		return nil, err
	}
	if err := s.applyInput(invoice, input, tenant.EffectiveVATRate()); err != nil {
		return nil, err
	}
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Send(ctx context.Context, tenantID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoices.GetByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !invoice.Status.CanSend() {
			return domain.NewBusinessError(domain.ErrInvalidStatusTransition,
				"invoice %s is %s and cannot be sent", invoice.InvoiceNumber, invoice.Status)
		}
		now := s.now().UTC()
		from := invoice.Status
		if invoice.Status == domain.InvoiceStatusDraft {
			invoice.Status = domain.InvoiceStatusSent
		}
		invoice.SentAt = &now
		if err := s.invoices.UpdateStatus(ctx, invoice, from); err != nil {
			return err
		}
		if invoice.JobID != nil {
			if _, err := syncJobStatus(ctx, s.jobs, s.invoices, tenantID, *invoice.JobID, now, statusAfterActivity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, tenantID, invoice.CustomerID)
	if err != nil {
		return nil, err
	}
	due := invoice.DueDate
	notify(ctx, s.log, s.email.SendInvoiceEmail, port.DocumentEmail{
		ToEmail:        customer.Email,
		ToName:         customer.Name,
		BusinessName:   tenant.Name,
		DocumentNumber: invoice.InvoiceNumber,
		Total:          invoice.Outstanding(),
		DueDate:        &due,
		Link:           publicLink(s.settings.FrontendURL, "invoices", invoice.ShareToken),
	})
	return invoice, nil
}

func (s *invoiceService) GetPublic(ctx context.Context, token uuid.UUID) (*PublicInvoice, error) {
	invoice, err := s.invoices.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.InvoiceStatusDraft {
		return nil, domain.ErrInvoiceNotFound
	}
	if invoice.Status == domain.InvoiceStatusSent {
		now := s.now().UTC()
		invoice.Status = domain.InvoiceStatusViewed
		invoice.ViewedAt = &now
		err := s.invoices.UpdateStatus(ctx, invoice, domain.InvoiceStatusSent)
		switch {
		case errors.Is(err, domain.ErrConcurrentUpdate):
			// A payment or resend landed first; show its status.
			if invoice, err = s.invoices.GetByShareToken(ctx, token); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		}
	}
	tenant, err := s.tenants.GetByID(ctx, invoice.TenantID)
	if err != nil {
		return nil, err
	}
	return &PublicInvoice{Invoice: invoice, BusinessName: tenant.Name}, nil
}

func (s *invoiceService) Export(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, format export.Format, w io.Writer) error {
	s.sweepOverdue(ctx, tenantID)
	invoices, err := s.invoices.ListAll(ctx, tenantID, filter)
	if err != nil {
		return err
	}
	register := &export.Register{Invoices: invoices, Customers: make(map[uuid.UUID]string)}
	for i := range invoices {
		id := invoices[i].CustomerID
		if _, ok := register.Customers[id]; ok {
			continue
		}
		customer, err := s.customers.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		register.Customers[id] = customer.Name
	}
	if format == export.FormatXLSX {
		return export.WriteXLSX(w, register)
	}
	return export.WriteCSV(w, register)
}

func (s *invoiceService) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]domain.Payment, error) {
	if _, err := s.invoices.GetByID(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	return s.payments.ListByInvoice(ctx, tenantID, invoiceID)
}

// sweepOverdue flags invoices past their due date. Failures are logged so a
// listing still succeeds.
func (s *invoiceService) sweepOverdue(ctx context.Context, tenantID uuid.UUID) {
	n, err := s.invoices.MarkOverdue(ctx, tenantID, domain.StartOfDay(s.now()))
	if err != nil {
		s.log.Error("overdue sweep failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("invoices marked overdue", zap.String("tenant_id", tenantID.String()), zap.Int64("count", n))
	}
}

// resolveParties fills the customer and job link of a full invoice.
func (s *invoiceService) resolveParties(ctx context.Context, tenantID uuid.UUID, invoice *domain.Invoice, input *InvoiceInput) error {
	var customerID uuid.UUID
	if input.JobID != nil {
		job, err := s.jobs.GetByID(ctx, tenantID, *input.JobID)
		if err != nil {
			return err
		}
		customerID = job.CustomerID
		invoice.JobID = &job.ID
	}
	if input.CustomerID != nil {
		if input.JobID != nil && *input.CustomerID != customerID {
			return domain.NewBusinessError(domain.ErrValidation, "customer_id does not match the job's customer")
		}
		customerID = *input.CustomerID
	}
	if customerID == uuid.Nil {
		return domain.NewBusinessError(domain.ErrValidation, "either customer_id or job_id is required")
	}
	if _, err := s.customers.GetByID(ctx, tenantID, customerID); err != nil {
		return err
	}
	invoice.CustomerID = customerID
	return nil
}

func (s *invoiceService) applyInput(invoice *domain.Invoice, input *InvoiceInput, vatRate decimal.Decimal) error {
	priced, err := domain.PriceLineItems(input.LineItems, vatRate)
	if err != nil {
		return err
	}
	invoice.LineItems = priced.Items
	invoice.Subtotal = priced.Subtotal
	invoice.VATAmount = priced.VAT
	invoice.Total = priced.Total
	invoice.Notes = input.Notes
	if input.DueDate != nil {
		invoice.DueDate = input.DueDate.Time
	} else if invoice.DueDate.IsZero() {
		invoice.DueDate = dueDate(s.now(), s.settings.FullDueDays)
	}
	return nil
}

func (s *invoiceService) logCreated(invoice *domain.Invoice) {
	fields := []zap.Field{
		zap.String("tenant_id", invoice.TenantID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("invoice_type", string(invoice.InvoiceType)),
		zap.Int64("total_cents", invoice.Total.Cents()),
	}
	if invoice.JobID != nil {
		fields = append(fields, zap.String("job_id", invoice.JobID.String()))
	}
	s.log.Info("invoice created", fields...)
}

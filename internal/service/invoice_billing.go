package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jobkaart/internal/domain"
)

func (s *invoiceService) CreateDeposit(ctx context.Context, tenantID uuid.UUID, input *DepositInput) (*StagedInvoice, error) {
	if err := domain.ValidatePercentage(input.DepositPercentage); err != nil {
		return nil, err
	}
	return s.createStaged(ctx, tenantID, input.JobID, domain.DepositStage{Percentage: input.DepositPercentage},
		s.settings.DepositDueDays)
}

func (s *invoiceService) CreateProgress(ctx context.Context, tenantID uuid.UUID, input *ProgressInput) (*StagedInvoice, error) {
	if err := domain.ValidatePercentage(input.Percentage); err != nil {
		return nil, err
	}
	return s.createStaged(ctx, tenantID, input.JobID, domain.ProgressStage{Percentage: input.Percentage},
		s.settings.ProgressDueDays)
}

// createStaged issues a deposit or progress invoice. Each numbering attempt
// runs in its own transaction holding the job lock, so the cumulative check
// and the insert see the same set of invoices.
func (s *invoiceService) createStaged(ctx context.Context, tenantID, jobID uuid.UUID, stage domain.BillingStage,
	dueDays int) (*StagedInvoice, error) {
	if err := s.usage.Check(ctx, tenantID, domain.UsageInvoices); err != nil {
		return nil, err
	}

	var pct decimal.Decimal
	switch st := stage.(type) {
	case domain.DepositStage:
		pct = st.Percentage
	case domain.ProgressStage:
		pct = st.Percentage
	default:
		return nil, fmt.Errorf("invoiceService.createStaged: unsupported stage %T", stage)
	}

	var result *StagedInvoice
	err := s.numbers.create(ctx, tenantID, domain.ErrDuplicateInvoiceNumber, func(ctx context.Context, number string) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			job, quote, existing, err := s.billingContext(ctx, tenantID, jobID)
			if err != nil {
				return err
			}
			if stage.Type() == domain.InvoiceTypeDeposit {
				if d := domain.FindByType(existing, domain.InvoiceTypeDeposit); d != nil {
					return domain.NewBusinessError(domain.ErrDepositExists,
						"deposit invoice %s already exists for this job", d.InvoiceNumber)
				}
			}
			if b := domain.FindByType(existing, domain.InvoiceTypeBalance); b != nil {
				return domain.NewBusinessError(domain.ErrBalanceExists,
					"balance invoice %s has already settled this job", b.InvoiceNumber)
			}

			plan, err := domain.PlanStage(quote, existing, pct)
			if err != nil {
				return err
			}

			invoice := &domain.Invoice{
				TenantID:      tenantID,
				CustomerID:    job.CustomerID,
				JobID:         &job.ID,
				InvoiceNumber: number,
				LineItems: domain.LineItems{{
					Description: fmt.Sprintf("%s (%s%%) on quote %s", stageLabel(stage.Type()), pct.String(), quote.QuoteNumber),
					Quantity:    decimal.NewFromInt(1),
					UnitPrice:   plan.Total,
					LineTotal:   plan.Total,
				}},
				Subtotal:  plan.Subtotal,
				VATAmount: plan.VAT,
				Total:     plan.Total,
				Status:    domain.InvoiceStatusDraft,
				DueDate:   dueDate(s.now(), dueDays),
			}
			invoice.SetStage(stage)
			if err := s.invoices.Create(ctx, invoice); err != nil {
				return err
			}
			result = &StagedInvoice{Invoice: invoice, Plan: plan}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.logCreated(result.Invoice)
	return result, nil
}

func (s *invoiceService) CreateBalance(ctx context.Context, tenantID uuid.UUID, input *BalanceInput) (*BalanceInvoice, error) {
	if err := s.usage.Check(ctx, tenantID, domain.UsageInvoices); err != nil {
		return nil, err
	}

	var result *BalanceInvoice
	err := s.numbers.create(ctx, tenantID, domain.ErrDuplicateInvoiceNumber, func(ctx context.Context, number string) error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			job, quote, existing, err := s.billingContext(ctx, tenantID, input.JobID)
			if err != nil {
				return err
			}
			plan, err := domain.PlanBalance(quote, existing)
			if err != nil {
				return err
			}

			invoice := &domain.Invoice{
				TenantID:      tenantID,
				CustomerID:    job.CustomerID,
				JobID:         &job.ID,
				InvoiceNumber: number,
				LineItems:     plan.LineItems,
				Subtotal:      plan.Subtotal,
				VATAmount:     plan.VAT,
				Total:         plan.Total,
				Status:        domain.InvoiceStatusDraft,
				DueDate:       dueDate(s.now(), s.settings.BalanceDueDays),
			}
			invoice.SetStage(domain.BalanceStage{ParentID: plan.ParentID})
			// Nothing left to collect: the balance is settled on issue.
			if plan.Total == 0 {
				now := s.now().UTC()
				invoice.Status = domain.InvoiceStatusPaid
				invoice.PaidAt = &now
			}
			if err := s.invoices.Create(ctx, invoice); err != nil {
				return err
			}
			result = &BalanceInvoice{Invoice: invoice, Plan: plan}
			if invoice.Status == domain.InvoiceStatusPaid {
				if _, err := syncJobStatus(ctx, s.jobs, s.invoices, tenantID, job.ID, s.now(), statusAfterActivity); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.logCreated(result.Invoice)
	return result, nil
}

// billingContext locks the job and loads its quote and invoices.
func (s *invoiceService) billingContext(ctx context.Context, tenantID, jobID uuid.UUID) (*domain.Job, *domain.Quote, []domain.Invoice, error) {
	job, err := s.jobs.GetForUpdate(ctx, tenantID, jobID)
	if err != nil {
		return nil, nil, nil, err
	}
	if job.QuoteID == nil {
		return nil, nil, nil, domain.ErrJobHasNoQuote
	}
	quote, err := s.quotes.GetByID(ctx, tenantID, *job.QuoteID)
	if err != nil {
		return nil, nil, nil, err
	}
	existing, err := s.invoices.ListByJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, nil, nil, err
	}
	return job, quote, existing, nil
}

func stageLabel(t domain.InvoiceType) string {
	if t == domain.InvoiceTypeDeposit {
		return "Deposit"
	}
	return "Progress payment"
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
)

// RecordPayment posts a payment against an invoice. The amount_paid update is
// a compare-and-set on the value read, so a concurrent payment makes this
// attempt roll back and start over against fresh state.
func (s *invoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, input *RecordPaymentInput) (*PaymentReceipt, error) {
	if input.Amount <= 0 {
		return nil, domain.NewBusinessError(domain.ErrInvalidPaymentAmount,
			"payment amount must be greater than zero, got %s", input.Amount.Format())
	}
	if input.PaymentDate == nil || input.PaymentDate.IsZero() {
		return nil, domain.ErrPaymentDateRequired
	}
	if !input.Method.IsValid() {
		return nil, domain.NewBusinessError(domain.ErrInvalidPaymentMethod, "invalid payment method %q", input.Method)
	}

	var receipt *PaymentReceipt
	var err error
	for attempt := 1; attempt <= s.settings.PaymentRetryLimit; attempt++ {
		receipt, err = s.recordPaymentOnce(ctx, tenantID, invoiceID, input)
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			break
		}
		s.log.Debug("concurrent payment detected, retrying",
			zap.String("invoice_id", invoiceID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", receipt.Invoice.InvoiceNumber),
		zap.Int64("amount_cents", receipt.Payment.Amount.Cents()),
		zap.String("status", string(receipt.Invoice.Status)),
	)
	return receipt, nil
}

func (s *invoiceService) recordPaymentOnce(ctx context.Context, tenantID, invoiceID uuid.UUID, input *RecordPaymentInput) (*PaymentReceipt, error) {
	var receipt *PaymentReceipt
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		invoice, err := s.invoices.GetByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		applied, err := domain.ApplyPayment(invoice, input.Amount)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		var paidAt *time.Time
		if applied.Status == domain.InvoiceStatusPaid {
			paidAt = &now
		}
		if err := s.invoices.ApplyPayment(ctx, tenantID, invoiceID, invoice.AmountPaid, applied.AmountPaid,
			applied.Status, paidAt); err != nil {
			return err
		}
		invoice.AmountPaid = applied.AmountPaid
		invoice.Status = applied.Status
		if paidAt != nil {
			invoice.PaidAt = paidAt
		}

		payment := &domain.Payment{
			TenantID:    tenantID,
			InvoiceID:   invoiceID,
			Amount:      input.Amount,
			PaymentDate: input.PaymentDate.Time,
			Method:      input.Method,
			Reference:   input.Reference,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}

		receipt = &PaymentReceipt{Payment: payment, Invoice: invoice}
		if invoice.JobID != nil {
			job, err := syncJobStatus(ctx, s.jobs, s.invoices, tenantID, *invoice.JobID, now, statusAfterActivity)
			if err != nil {
				return err
			}
			receipt.Job = job
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

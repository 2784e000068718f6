package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
)

// Delete applies the deletion rules in order: payments block a plain delete,
// force removes them first, and a job's invoices go newest first unless
// forced. The job status is re-derived in the same transaction.
func (s *invoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID, force bool) error {
	var removedPayments int64
	var number string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		invoice, err := s.invoices.GetByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		number = invoice.InvoiceNumber

		var jobInvoices []domain.Invoice
		if invoice.JobID != nil {
			if _, err := s.jobs.GetForUpdate(ctx, tenantID, *invoice.JobID); err != nil {
				return err
			}
			if jobInvoices, err = s.invoices.ListByJob(ctx, tenantID, *invoice.JobID); err != nil {
				return err
			}
		}

		count, err := s.payments.CountByInvoice(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !force {
			orderErr := domain.CheckDeletionOrder(invoice, jobInvoices)
			if count > 0 {
				if orderErr != nil {
					latest := jobInvoices[len(jobInvoices)-1]
					return domain.NewBusinessError(domain.ErrInvoiceHasPayments,
						"invoice %s has %d recorded payment(s) and %s was issued after it; delete %s first or use force delete",
						invoice.InvoiceNumber, count, latest.InvoiceNumber, latest.InvoiceNumber)
				}
				return domain.NewBusinessError(domain.ErrInvoiceHasPayments,
					"invoice %s has %d recorded payment(s); use force delete to remove them together with the invoice",
					invoice.InvoiceNumber, count)
			}
			if orderErr != nil {
				return orderErr
			}
		}

		if count > 0 {
			if removedPayments, err = s.payments.DeleteByInvoice(ctx, tenantID, invoiceID); err != nil {
				return err
			}
		}
		if err := s.invoices.Delete(ctx, tenantID, invoiceID); err != nil {
			return err
		}

		if invoice.JobID != nil {
			if _, err := syncJobStatus(ctx, s.jobs, s.invoices, tenantID, *invoice.JobID, s.now(), statusAfterDeletion); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("invoice deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", number),
		zap.Bool("force", force),
		zap.Int64("payments_removed", removedPayments),
	)
	return nil
}

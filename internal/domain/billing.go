package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	minPercentage = decimal.NewFromInt(1)
	maxPercentage = decimal.NewFromInt(100)
)

// BillingStage is the per-type payload of an invoice. Exactly one of
// FullStage, DepositStage, ProgressStage, BalanceStage.
type BillingStage interface {
	Type() InvoiceType
	isBillingStage()
}

// FullStage is a stand-alone invoice.
type FullStage struct{}

// DepositStage is the up-front share of a job's quote.
type DepositStage struct {
	Percentage decimal.Decimal
}

// ProgressStage is an interim share of a job's quote.
type ProgressStage struct {
	Percentage decimal.Decimal
}

// BalanceStage draws the remainder of a job's quote. ParentID is the first
// staged invoice of the job.
type BalanceStage struct {
	ParentID uuid.UUID
}

func (FullStage) Type() InvoiceType     { return InvoiceTypeFull }
func (DepositStage) Type() InvoiceType  { return InvoiceTypeDeposit }
func (ProgressStage) Type() InvoiceType { return InvoiceTypeProgress }
func (BalanceStage) Type() InvoiceType  { return InvoiceTypeBalance }

func (FullStage) isBillingStage()     {}
func (DepositStage) isBillingStage()  {}
func (ProgressStage) isBillingStage() {}
func (BalanceStage) isBillingStage()  {}

// Stage decodes the invoice's billing stage from its stored columns.
func (i *Invoice) Stage() BillingStage {
	switch i.InvoiceType {
	case InvoiceTypeDeposit:
		return DepositStage{Percentage: i.StagePercentage.Decimal}
	case InvoiceTypeProgress:
		return ProgressStage{Percentage: i.StagePercentage.Decimal}
	case InvoiceTypeBalance:
		parent := uuid.Nil
		if i.ParentInvoiceID != nil {
			parent = *i.ParentInvoiceID
		}
		return BalanceStage{ParentID: parent}
	default:
		return FullStage{}
	}
}

// SetStage encodes a billing stage into the invoice's stored columns.
func (i *Invoice) SetStage(stage BillingStage) {
	i.InvoiceType = stage.Type()
	i.StagePercentage = decimal.NullDecimal{}
	i.ParentInvoiceID = nil
	switch s := stage.(type) {
	case DepositStage:
		i.StagePercentage = decimal.NewNullDecimal(s.Percentage)
	case ProgressStage:
		i.StagePercentage = decimal.NewNullDecimal(s.Percentage)
	case BalanceStage:
		parent := s.ParentID
		i.ParentInvoiceID = &parent
	}
}

// Amounts is a subtotal/VAT/total triple in cents.
type Amounts struct {
	Subtotal Money
	VAT      Money
	Total    Money
}

// ValidatePercentage checks that pct lies in [1, 100].
func ValidatePercentage(pct decimal.Decimal) error {
	if pct.LessThan(minPercentage) || pct.GreaterThan(maxPercentage) {
		return NewBusinessError(ErrInvalidPercentage, "percentage must be between 1 and 100, got %s", pct.String())
	}
	return nil
}

// Prorate scales a quote's total and VAT by pct and derives the subtotal.
func Prorate(q *Quote, pct decimal.Decimal) Amounts {
	total := q.Total.Percent(pct)
	vat := q.VATAmount.Percent(pct)
	return Amounts{Subtotal: total - vat, VAT: vat, Total: total}
}

// StagedInvoices returns the deposit and progress invoices from a job's invoices.
func StagedInvoices(invoices []Invoice) []Invoice {
	var staged []Invoice
	for i := range invoices {
		if invoices[i].InvoiceType.IsStaged() {
			staged = append(staged, invoices[i])
		}
	}
	return staged
}

// SumTotals adds up invoice totals.
func SumTotals(invoices []Invoice) Money {
	var sum Money
	for i := range invoices {
		sum += invoices[i].Total
	}
	return sum
}

// FindByType returns the first invoice of the given type, or nil.
func FindByType(invoices []Invoice, t InvoiceType) *Invoice {
	for i := range invoices {
		if invoices[i].InvoiceType == t {
			return &invoices[i]
		}
	}
	return nil
}

// StagePlan is the computed outcome of a deposit or progress request.
type StagePlan struct {
	Amounts
	Percentage              decimal.Decimal
	InvoicedBefore          decimal.Decimal
	TotalInvoicedPercentage decimal.Decimal
}

// PlanStage computes a deposit or progress invoice from the job's quote and
// its existing invoices. The cumulative check uses the stored totals of prior
// staged invoices rather than their percentage columns.
func PlanStage(q *Quote, existing []Invoice, pct decimal.Decimal) (*StagePlan, error) {
	if err := ValidatePercentage(pct); err != nil {
		return nil, err
	}
	staged := StagedInvoices(existing)
	invoiced := SumTotals(staged)
	invoicedPct := PercentOf(invoiced, q.Total)
	if invoicedPct.Add(pct).GreaterThan(maxPercentage) {
		remaining := maxPercentage.Sub(invoicedPct)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		return nil, NewBusinessError(ErrPercentageExceeded,
			"cannot invoice %s%%: %s%% of the quote is already invoiced, only %s%% remaining",
			pct.StringFixed(1), invoicedPct.StringFixed(1), remaining.StringFixed(1))
	}

	amounts := Prorate(q, pct)
	// Rounding must never push staged invoices past the quote total.
	if room := q.Total - invoiced; amounts.Total > room {
		amounts.Total = room
		if amounts.VAT > amounts.Total {
			amounts.VAT = amounts.Total
		}
		amounts.Subtotal = amounts.Total - amounts.VAT
	}
	return &StagePlan{
		Amounts:                 amounts,
		Percentage:              pct,
		InvoicedBefore:          invoicedPct,
		TotalInvoicedPercentage: invoicedPct.Add(pct),
	}, nil
}

// BalancePlan is the computed balance invoice for a job.
type BalancePlan struct {
	Amounts
	Percentage decimal.Decimal
	ParentID   uuid.UUID
	LineItems  LineItems
}

// PlanBalance computes the balance invoice from the job's quote and its
// existing invoices. Every deposit and progress invoice must be paid.
func PlanBalance(q *Quote, existing []Invoice) (*BalancePlan, error) {
	if b := FindByType(existing, InvoiceTypeBalance); b != nil {
		return nil, NewBusinessError(ErrBalanceExists,
			"balance invoice %s already exists for this job", b.InvoiceNumber)
	}
	staged := StagedInvoices(existing)
	if len(staged) == 0 {
		return nil, ErrNoPriorInvoices
	}
	var unpaid []string
	for i := range staged {
		if !staged[i].IsPaid() {
			unpaid = append(unpaid, staged[i].InvoiceNumber)
		}
	}
	if len(unpaid) > 0 {
		return nil, NewBusinessError(ErrUnpaidPriorInvoices,
			"all deposit and progress invoices must be paid before the balance is invoiced; unpaid: %s",
			strings.Join(unpaid, ", "))
	}

	invoiced := SumTotals(staged)
	invoicedPct := PercentOf(invoiced, q.Total)
	balancePct := maxPercentage.Sub(invoicedPct)
	total := q.Total - invoiced
	vat := q.VATAmount.Percent(balancePct)
	if vat > total {
		vat = total
	}

	items := LineItems{{
		Description: fmt.Sprintf("Full quote value (%s)", q.QuoteNumber),
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   q.Total,
		LineTotal:   q.Total,
	}}
	for i := range staged {
		items = append(items, LineItem{
			Description: fmt.Sprintf("Less: %s paid (%s)", staged[i].InvoiceType, staged[i].InvoiceNumber),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   -staged[i].Total,
			LineTotal:   -staged[i].Total,
		})
	}

	return &BalancePlan{
		Amounts:    Amounts{Subtotal: total - vat, VAT: vat, Total: total},
		Percentage: balancePct,
		ParentID:   staged[0].ID,
		LineItems:  items,
	}, nil
}

// InvoiceStatusAfterPayment derives payment status from cents. A zero paid
// amount keeps the current status.
func InvoiceStatusAfterPayment(total, paid Money, current InvoiceStatus) InvoiceStatus {
	switch {
	case paid >= total && paid > 0:
		return InvoiceStatusPaid
	case paid > 0:
		return InvoiceStatusPartiallyPaid
	default:
		return current
	}
}

// PaymentResult is the invoice state after a payment is applied.
type PaymentResult struct {
	AmountPaid Money
	Status     InvoiceStatus
}

// ApplyPayment checks a payment against the invoice's outstanding balance and
// returns the resulting amount paid and status.
func ApplyPayment(inv *Invoice, amount Money) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	outstanding := inv.Outstanding()
	if amount > outstanding {
		return nil, NewBusinessError(ErrPaymentExceedsOutstanding,
			"payment of %s exceeds outstanding amount of %s on invoice %s",
			amount.Format(), outstanding.Format(), inv.InvoiceNumber)
	}
	paid := inv.AmountPaid + amount
	return &PaymentResult{
		AmountPaid: paid,
		Status:     InvoiceStatusAfterPayment(inv.Total, paid, inv.Status),
	}, nil
}

// DeriveJobStatus computes a job's status from its invoices alone.
//
//  1. a paid full or balance invoice settles the job;
//  2. any non-draft invoice means the job is invoiced;
//  3. otherwise the job is complete and ready to invoice.
func DeriveJobStatus(invoices []Invoice) JobStatus {
	for i := range invoices {
		if invoices[i].InvoiceType.Settles() && invoices[i].IsPaid() {
			return JobStatusPaid
		}
	}
	for i := range invoices {
		if invoices[i].Status != InvoiceStatusDraft {
			return JobStatusInvoiced
		}
	}
	return JobStatusComplete
}

// AdvanceJobStatus is the job status after an invoice is sent or paid. A
// settled job is paid; a job still underway otherwise keeps its manual status,
// so a deposit taken mid-job does not move the pipeline.
func AdvanceJobStatus(current JobStatus, invoices []Invoice) JobStatus {
	derived := DeriveJobStatus(invoices)
	if derived != JobStatusPaid && current.IsPreCompletion() {
		return current
	}
	return derived
}

// CheckDeletionOrder enforces that a job's invoices are removed newest first.
// jobInvoices must be ordered by creation.
func CheckDeletionOrder(target *Invoice, jobInvoices []Invoice) error {
	if len(jobInvoices) < 2 {
		return nil
	}
	latest := &jobInvoices[len(jobInvoices)-1]
	if latest.ID == target.ID {
		return nil
	}
	return NewBusinessError(ErrDeletionOrder,
		"invoices for a job must be deleted newest first: delete %s before %s, or use force delete",
		latest.InvoiceNumber, target.InvoiceNumber)
}

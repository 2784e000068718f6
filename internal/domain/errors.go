package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

// Not-found errors.
var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrQuoteNotFound        = errors.New("quote not found")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobHasNoQuote        = errors.New("job has no associated quote")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrNoPriorInvoices      = errors.New("no deposit or progress invoice exists for this job")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Validation errors.
var (
	ErrInvalidPercentage         = errors.New("percentage must be between 1 and 100")
	ErrPercentageExceeded        = errors.New("cumulative invoiced percentage would exceed 100%")
	ErrInvalidPaymentAmount      = errors.New("payment amount must be greater than zero")
	ErrPaymentDateRequired       = errors.New("payment date is required")
	ErrInvalidPaymentMethod      = errors.New("invalid payment method")
	ErrPaymentExceedsOutstanding = errors.New("payment exceeds outstanding amount")
	ErrUnpaidPriorInvoices       = errors.New("prior invoices must be paid before the balance is invoiced")
	ErrEmptyLineItems            = errors.New("at least one line item is required")
	ErrInvalidLineItem           = errors.New("invalid line item")
	ErrInvalidStatusTransition   = errors.New("invalid status transition")
	ErrQuoteExpired              = errors.New("quote has expired")
	ErrQuoteNotAccepted          = errors.New("quote has not been accepted")
	ErrInvalidVATRate            = errors.New("vat rate must be between 0 and 100")
)

// Conflict errors.
var (
	ErrDepositExists           = errors.New("a deposit invoice already exists for this job")
	ErrBalanceExists           = errors.New("a balance invoice already exists for this job")
	ErrInvoiceHasPayments      = errors.New("invoice has recorded payments")
	ErrDeletionOrder           = errors.New("invoices must be deleted in reverse order of creation")
	ErrJobHasPayments          = errors.New("job has invoices with recorded payments")
	ErrQuoteHasJob             = errors.New("quote is referenced by a job")
	ErrCustomerInUse           = errors.New("customer is referenced by quotes, jobs or invoices")
	ErrNotEditable             = errors.New("only draft documents can be edited")
	ErrDuplicateInvoiceNumber  = errors.New("invoice number already exists for this tenant")
	ErrDuplicateQuoteNumber    = errors.New("quote number already exists for this tenant")
	ErrConcurrentUpdate        = errors.New("record was modified concurrently")
	ErrNumberGenerationFailed  = errors.New("could not allocate a unique document number")
	ErrNoActiveSubscription    = errors.New("tenant has no active subscription")
	ErrSubscriptionAlreadyLive = errors.New("tenant already has an active subscription")
)

// Quota, gateway and auth errors.
var (
	ErrQuotaExceeded    = errors.New("monthly quota exceeded")
	ErrInvalidSignature = errors.New("invalid payment notification signature")
	ErrMerchantMismatch = errors.New("payment notification merchant mismatch")
	ErrInvalidToken     = errors.New("invalid or expired token")
)

// BusinessError is a rule violation with a caller-facing message. It unwraps
// to a sentinel so callers can still match it with errors.Is.
type BusinessError struct {
	Kind    error
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

func (e *BusinessError) Unwrap() error { return e.Kind }

// NewBusinessError builds a BusinessError with a formatted message.
func NewBusinessError(kind error, format string, args ...any) error {
	return &BusinessError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant is a trade business using the application.
type Tenant struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	Name               string             `db:"name" json:"name"`
	Email              string             `db:"email" json:"email"`
	Phone              string             `db:"phone" json:"phone"`
	VATRegistered      bool               `db:"vat_registered" json:"vat_registered"`
	VATNumber          string             `db:"vat_number" json:"vat_number"`
	VATRate            decimal.Decimal    `db:"vat_rate" json:"vat_rate"`
	Plan               TenantPlan         `db:"plan" json:"plan"`
	SubscriptionStatus SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// EffectiveVATRate is the rate applied to new documents.
func (t *Tenant) EffectiveVATRate() decimal.Decimal {
	if !t.VATRegistered {
		return decimal.Zero
	}
	return t.VATRate
}

// HasPaidPlan reports whether the tenant is exempt from free-tier limits.
func (t *Tenant) HasPaidPlan() bool {
	return t.Plan != PlanFree && t.SubscriptionStatus == SubscriptionActive
}

// Customer is a tenant's client.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LineItem is one priced row on a quote or invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   Money           `json:"unit_price"`
	LineTotal   Money           `json:"line_total"`
}

// LineItems is stored as JSONB.
type LineItems []LineItem

// Value implements driver.Valuer.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}
	if len(raw) == 0 {
		*l = LineItems{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

// Quote is a priced proposal sent to a customer.
type Quote struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TenantID    uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	CustomerID  uuid.UUID       `db:"customer_id" json:"customer_id"`
	QuoteNumber string          `db:"quote_number" json:"quote_number"`
	Title       string          `db:"title" json:"title"`
	LineItems   LineItems       `db:"line_items" json:"line_items"`
	Subtotal    Money           `db:"subtotal_cents" json:"subtotal"`
	VATRate     decimal.Decimal `db:"vat_rate" json:"vat_rate"`
	VATAmount   Money           `db:"vat_cents" json:"vat_amount"`
	Total       Money           `db:"total_cents" json:"total"`
	Status      QuoteStatus     `db:"status" json:"status"`
	ValidUntil  time.Time       `db:"valid_until" json:"valid_until"`
	Notes       string          `db:"notes" json:"notes"`
	ShareToken  uuid.UUID       `db:"share_token" json:"share_token"`
	SentAt      *time.Time      `db:"sent_at" json:"sent_at"`
	ViewedAt    *time.Time      `db:"viewed_at" json:"viewed_at"`
	AcceptedAt  *time.Time      `db:"accepted_at" json:"accepted_at"`
	RejectedAt  *time.Time      `db:"rejected_at" json:"rejected_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// IsExpiredAt reports whether an open quote has passed its validity date.
func (q *Quote) IsExpiredAt(now time.Time) bool {
	if q.Status != QuoteStatusSent && q.Status != QuoteStatusViewed {
		return false
	}
	return StartOfDay(now).After(StartOfDay(q.ValidUntil))
}

// Job is a unit of work, usually spawned from an accepted quote.
type Job struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TenantID      uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	CustomerID    uuid.UUID  `db:"customer_id" json:"customer_id"`
	QuoteID       *uuid.UUID `db:"quote_id" json:"quote_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Address       string     `db:"address" json:"address"`
	Status        JobStatus  `db:"status" json:"status"`
	ScheduledDate *time.Time `db:"scheduled_date" json:"scheduled_date"`
	CompletedDate *time.Time `db:"completed_date" json:"completed_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Invoice is a bill issued to a customer, optionally as one stage of a job.
//
// StagePercentage and ParentInvoiceID are the storage form of the billing
// stage; code reads them through Stage().
type Invoice struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	TenantID        uuid.UUID           `db:"tenant_id" json:"tenant_id"`
	CustomerID      uuid.UUID           `db:"customer_id" json:"customer_id"`
	JobID           *uuid.UUID          `db:"job_id" json:"job_id"`
	ParentInvoiceID *uuid.UUID          `db:"parent_invoice_id" json:"parent_invoice_id"`
	InvoiceNumber   string              `db:"invoice_number" json:"invoice_number"`
	InvoiceType     InvoiceType         `db:"invoice_type" json:"invoice_type"`
	StagePercentage decimal.NullDecimal `db:"stage_percentage" json:"percentage"`
	LineItems       LineItems           `db:"line_items" json:"line_items"`
	Subtotal        Money               `db:"subtotal_cents" json:"subtotal"`
	VATAmount       Money               `db:"vat_cents" json:"vat_amount"`
	Total           Money               `db:"total_cents" json:"total"`
	AmountPaid      Money               `db:"amount_paid_cents" json:"amount_paid"`
	Status          InvoiceStatus       `db:"status" json:"status"`
	DueDate         time.Time           `db:"due_date" json:"due_date"`
	Notes           string              `db:"notes" json:"notes"`
	ShareToken      uuid.UUID           `db:"share_token" json:"share_token"`
	SentAt          *time.Time          `db:"sent_at" json:"sent_at"`
	ViewedAt        *time.Time          `db:"viewed_at" json:"viewed_at"`
	PaidAt          *time.Time          `db:"paid_at" json:"paid_at"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// Outstanding is the amount still owed.
func (i *Invoice) Outstanding() Money {
	return i.Total - i.AmountPaid
}

// IsPaid reports whether the invoice is fully settled.
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// Payment is money received against an invoice. Only created through payment
// recording and never edited.
type Payment struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	TenantID    uuid.UUID     `db:"tenant_id" json:"tenant_id"`
	InvoiceID   uuid.UUID     `db:"invoice_id" json:"invoice_id"`
	Amount      Money         `db:"amount_cents" json:"amount"`
	PaymentDate time.Time     `db:"payment_date" json:"payment_date"`
	Method      PaymentMethod `db:"method" json:"payment_method"`
	Reference   string        `db:"reference" json:"reference"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}

// Subscription mirrors the tenant's PayFast subscription.
type Subscription struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	TenantID        uuid.UUID          `db:"tenant_id" json:"tenant_id"`
	Plan            TenantPlan         `db:"plan" json:"plan"`
	Status          SubscriptionStatus `db:"status" json:"status"`
	PayFastToken    string             `db:"payfast_token" json:"-"`
	Amount          Money              `db:"amount_cents" json:"amount"`
	LastPaymentID   string             `db:"last_payment_id" json:"last_payment_id"`
	LastPaymentAt   *time.Time         `db:"last_payment_at" json:"last_payment_at"`
	NextBillingDate *time.Time         `db:"next_billing_date" json:"next_billing_date"`
	CancelledAt     *time.Time         `db:"cancelled_at" json:"cancelled_at"`
	CreatedAt       time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at" json:"updated_at"`
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first instant of t's calendar month in UTC.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

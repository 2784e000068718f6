package domain

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleMember UserRole = "member"
)

// TenantPlan is the subscription plan a tenant is on.
type TenantPlan string

const (
	PlanFree TenantPlan = "free"
	PlanPro  TenantPlan = "pro"
)

// SubscriptionStatus mirrors the payment gateway's view of a subscription.
type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// QuoteStatus represents the lifecycle of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusViewed   QuoteStatus = "viewed"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// IsValid reports whether s is a known quote status.
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusViewed,
		QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// JobStatus is a position in the job pipeline.
type JobStatus string

const (
	JobStatusQuoted     JobStatus = "quoted"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusComplete   JobStatus = "complete"
	JobStatusInvoiced   JobStatus = "invoiced"
	JobStatusPaid       JobStatus = "paid"
)

// IsValid reports whether s is a known job status.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusQuoted, JobStatusScheduled, JobStatusInProgress,
		JobStatusComplete, JobStatusInvoiced, JobStatusPaid:
		return true
	}
	return false
}

// IsManual reports whether the status may be set directly by the tenant.
// invoiced and paid are derived from invoice state.
func (s JobStatus) IsManual() bool {
	switch s {
	case JobStatusQuoted, JobStatusScheduled, JobStatusInProgress, JobStatusComplete:
		return true
	}
	return false
}

// IsPreCompletion reports whether the work on the job is still underway.
func (s JobStatus) IsPreCompletion() bool {
	return s == JobStatusQuoted || s == JobStatusScheduled || s == JobStatusInProgress
}

// InvoiceType distinguishes stand-alone invoices from progressive billing stages.
type InvoiceType string

const (
	InvoiceTypeFull     InvoiceType = "full"
	InvoiceTypeDeposit  InvoiceType = "deposit"
	InvoiceTypeProgress InvoiceType = "progress"
	InvoiceTypeBalance  InvoiceType = "balance"
)

// IsStaged reports whether the type counts towards a job's invoiced percentage
// before the balance is drawn.
func (t InvoiceType) IsStaged() bool {
	return t == InvoiceTypeDeposit || t == InvoiceTypeProgress
}

// Settles reports whether paying an invoice of this type settles the job.
func (t InvoiceType) Settles() bool {
	return t == InvoiceTypeFull || t == InvoiceTypeBalance
}

// InvoiceStatus represents the lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusViewed        InvoiceStatus = "viewed"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
)

// IsValid reports whether s is a known invoice status.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed,
		InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// CanSend reports whether an invoice in this status may be (re)sent to the customer.
func (s InvoiceStatus) CanSend() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed, InvoiceStatusOverdue:
		return true
	}
	return false
}

// PaymentMethod is how a customer settled (part of) an invoice.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodEFT   PaymentMethod = "eft"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodOther PaymentMethod = "other"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodEFT, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// UsageResource is a record type counted against the free-tier quota.
type UsageResource string

const (
	UsageQuotes   UsageResource = "quotes"
	UsageJobs     UsageResource = "jobs"
	UsageInvoices UsageResource = "invoices"
)

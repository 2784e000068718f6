package port

import (
	"context"
	"time"

	"jobkaart/internal/domain"
)

// DocumentEmail is the content of a quote or invoice notification.
type DocumentEmail struct {
	ToEmail        string
	ToName         string
	BusinessName   string
	DocumentNumber string
	Total          domain.Money
	DueDate        *time.Time
	Link           string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendQuoteEmail(ctx context.Context, msg DocumentEmail) error
	SendInvoiceEmail(ctx context.Context, msg DocumentEmail) error
}

package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobkaart/internal/domain"
)

// CheckoutSession is a hosted-checkout form the client posts to the gateway.
type CheckoutSession struct {
	ProcessURL string            `json:"process_url"`
	Fields     map[string]string `json:"fields"`
}

// CheckoutRequest describes the subscriber starting a checkout.
type CheckoutRequest struct {
	TenantID     uuid.UUID
	BusinessName string
	Email        string
}

// GatewayNotification is a verified payment notification.
type GatewayNotification struct {
	PaymentID   string
	Status      string
	TenantID    uuid.UUID
	Token       string
	Amount      domain.Money
	BillingDate *time.Time
}

// SubscriptionGateway abstracts the recurring-billing provider.
type SubscriptionGateway interface {
	Checkout(req CheckoutRequest) (*CheckoutSession, error)
	// ParseNotification verifies and decodes a raw form-encoded notification.
	ParseNotification(body []byte) (*GatewayNotification, error)
	Cancel(ctx context.Context, token string) error
}

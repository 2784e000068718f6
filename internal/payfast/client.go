package payfast

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobkaart/internal/config"
	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

const (
	liveProcessURL    = "https://www.payfast.co.za/eng/process"
	sandboxProcessURL = "https://sandbox.payfast.co.za/eng/process"

	subscriptionMonthly = "3"
	apiVersion          = "v1"
)

// Client talks to PayFast for hosted subscription checkout, ITN verification
// and subscription cancellation.
type Client struct {
	cfg        config.PayFastConfig
	httpClient *http.Client
	now        func() time.Time
}

var _ port.SubscriptionGateway = (*Client)(nil)

// NewClient creates a PayFast client.
func NewClient(cfg config.PayFastConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

func (c *Client) processURL() string {
	if c.cfg.Sandbox {
		return sandboxProcessURL
	}
	return liveProcessURL
}

// Checkout builds the signed form for a monthly subscription. Field order
// follows PayFast's signature rules.
func (c *Client) Checkout(req port.CheckoutRequest) (*port.CheckoutSession, error) {
	amount, err := domain.MoneyFromString(c.cfg.PlanAmount)
	if err != nil {
		return nil, fmt.Errorf("payfast.Checkout: plan amount: %w", err)
	}

	params := []param{
		{"merchant_id", c.cfg.MerchantID},
		{"merchant_key", c.cfg.MerchantKey},
		{"return_url", c.cfg.ReturnURL},
		{"cancel_url", c.cfg.CancelURL},
		{"notify_url", c.cfg.NotifyURL},
		{"email_address", req.Email},
		{"m_payment_id", req.TenantID.String()},
		{"amount", amount.String()},
		{"item_name", c.cfg.PlanName},
		{"item_description", req.BusinessName},
		{"custom_str1", req.TenantID.String()},
		{"subscription_type", "1"},
		{"billing_date", c.now().UTC().Format("2006-01-02")},
		{"recurring_amount", amount.String()},
		{"frequency", subscriptionMonthly},
		{"cycles", "0"},
	}

	fields := make(map[string]string, len(params)+1)
	for _, p := range params {
		if strings.TrimSpace(p.value) != "" {
			fields[p.key] = p.value
		}
	}
	fields["signature"] = sign(params, c.cfg.Passphrase)

	return &port.CheckoutSession{ProcessURL: c.processURL(), Fields: fields}, nil
}

// ParseNotification verifies an ITN body's signature and merchant, then
// decodes it.
func (c *Client) ParseNotification(body []byte) (*port.GatewayNotification, error) {
	params, err := parseOrdered(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed body", domain.ErrInvalidSignature)
	}

	var received string
	signed := make([]param, 0, len(params))
	values := make(map[string]string, len(params))
	for _, p := range params {
		if p.key == "signature" {
			received = p.value
			continue
		}
		signed = append(signed, p)
		values[p.key] = p.value
	}
	if received == "" {
		return nil, domain.ErrInvalidSignature
	}
	expected := signNotification(signed, c.cfg.Passphrase)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(received))) != 1 {
		return nil, domain.ErrInvalidSignature
	}
	if values["merchant_id"] != c.cfg.MerchantID {
		return nil, domain.ErrMerchantMismatch
	}

	tenantID, err := uuid.Parse(values["custom_str1"])
	if err != nil {
		return nil, fmt.Errorf("payfast.ParseNotification: custom_str1: %w", err)
	}
	n := &port.GatewayNotification{
		PaymentID: values["pf_payment_id"],
		Status:    values["payment_status"],
		TenantID:  tenantID,
		Token:     values["token"],
	}
	if gross := values["amount_gross"]; gross != "" {
		if n.Amount, err = domain.MoneyFromString(gross); err != nil {
			return nil, fmt.Errorf("payfast.ParseNotification: amount_gross: %w", err)
		}
	}
	if bd := values["billing_date"]; bd != "" {
		if t, err := time.Parse("2006-01-02", bd); err == nil {
			n.BillingDate = &t
		}
	}
	return n, nil
}

// Cancel cancels a subscription through the PayFast API.
func (c *Client) Cancel(ctx context.Context, token string) error {
	endpoint := fmt.Sprintf("%s/subscriptions/%s/cancel", strings.TrimRight(c.cfg.APIBaseURL, "/"), token)
	if c.cfg.Sandbox {
		endpoint += "?testing=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("payfast.Cancel: %w", err)
	}
	headers := map[string]string{
		"merchant-id": c.cfg.MerchantID,
		"version":     apiVersion,
		"timestamp":   c.now().UTC().Format("2006-01-02T15:04:05-07:00"),
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("signature", signSorted(headers, c.cfg.Passphrase))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payfast.Cancel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("payfast.Cancel: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

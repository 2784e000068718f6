package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jobkaart/internal/domain"
)

// Swagger type definitions for API documentation.
// The staged invoice responses are also what the billing endpoints return.

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"invoice deleted"`
}

// DepositResponse is returned when a deposit invoice is created.
type DepositResponse struct {
	InvoiceID     uuid.UUID       `json:"invoice_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber string          `json:"invoice_number" example:"INV-2026-001"`
	DepositAmount domain.Money    `json:"deposit_amount" swaggertype:"number" example:"300.00"`
	DepositVAT    domain.Money    `json:"deposit_vat" swaggertype:"number" example:"39.13"`
	DueDate       string          `json:"due_date" example:"2026-03-17"`
	Invoice       *domain.Invoice `json:"invoice"`
}

// ProgressResponse is returned when a progress invoice is created.
type ProgressResponse struct {
	InvoiceID               uuid.UUID       `json:"invoice_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber           string          `json:"invoice_number" example:"INV-2026-002"`
	Amount                  domain.Money    `json:"amount" swaggertype:"number" example:"500.00"`
	Percentage              decimal.Decimal `json:"percentage" swaggertype:"number" example:"50"`
	TotalInvoicedPercentage decimal.Decimal `json:"total_invoiced_percentage" swaggertype:"number" example:"80"`
	DueDate                 string          `json:"due_date" example:"2026-03-24"`
	Invoice                 *domain.Invoice `json:"invoice"`
}

// BalanceResponse is returned when the balance invoice is created.
type BalanceResponse struct {
	InvoiceID         uuid.UUID       `json:"invoice_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber     string          `json:"invoice_number" example:"INV-2026-003"`
	BalanceDue        domain.Money    `json:"balance_due" swaggertype:"number" example:"200.00"`
	BalancePercentage decimal.Decimal `json:"balance_percentage" swaggertype:"number" example:"20"`
	DueDate           string          `json:"due_date" example:"2026-03-24"`
	Invoice           *domain.Invoice `json:"invoice"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

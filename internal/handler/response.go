package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/logger"
	"jobkaart/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order; specific sentinels come before the
// generic class they belong to.
var errorMappings = []errorMapping{
	{domain.ErrTenantNotFound, http.StatusNotFound, "TENANT_NOT_FOUND"},
	{domain.ErrCustomerNotFound, http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
	{domain.ErrQuoteNotFound, http.StatusNotFound, "QUOTE_NOT_FOUND"},
	{domain.ErrJobNotFound, http.StatusNotFound, "JOB_NOT_FOUND"},
	{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
	{domain.ErrSubscriptionNotFound, http.StatusNotFound, "SUBSCRIPTION_NOT_FOUND"},
	{domain.ErrJobHasNoQuote, http.StatusNotFound, "JOB_HAS_NO_QUOTE"},
	{domain.ErrNoPriorInvoices, http.StatusNotFound, "NO_PRIOR_INVOICES"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},

	{domain.ErrInvalidPercentage, http.StatusBadRequest, "INVALID_PERCENTAGE"},
	{domain.ErrPercentageExceeded, http.StatusBadRequest, "PERCENTAGE_EXCEEDED"},
	{domain.ErrInvalidPaymentAmount, http.StatusBadRequest, "INVALID_PAYMENT_AMOUNT"},
	{domain.ErrPaymentDateRequired, http.StatusBadRequest, "PAYMENT_DATE_REQUIRED"},
	{domain.ErrInvalidPaymentMethod, http.StatusBadRequest, "INVALID_PAYMENT_METHOD"},
	{domain.ErrPaymentExceedsOutstanding, http.StatusBadRequest, "PAYMENT_EXCEEDS_OUTSTANDING"},
	{domain.ErrUnpaidPriorInvoices, http.StatusBadRequest, "UNPAID_PRIOR_INVOICES"},
	{domain.ErrEmptyLineItems, http.StatusBadRequest, "EMPTY_LINE_ITEMS"},
	{domain.ErrInvalidLineItem, http.StatusBadRequest, "INVALID_LINE_ITEM"},
	{domain.ErrInvalidStatusTransition, http.StatusBadRequest, "INVALID_STATUS_TRANSITION"},
	{domain.ErrQuoteExpired, http.StatusBadRequest, "QUOTE_EXPIRED"},
	{domain.ErrQuoteNotAccepted, http.StatusBadRequest, "QUOTE_NOT_ACCEPTED"},
	{domain.ErrInvalidVATRate, http.StatusBadRequest, "INVALID_VAT_RATE"},
	{domain.ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE"},
	{domain.ErrMerchantMismatch, http.StatusBadRequest, "MERCHANT_MISMATCH"},
	{domain.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},

	{domain.ErrDepositExists, http.StatusConflict, "DEPOSIT_EXISTS"},
	{domain.ErrBalanceExists, http.StatusConflict, "BALANCE_EXISTS"},
	{domain.ErrInvoiceHasPayments, http.StatusConflict, "INVOICE_HAS_PAYMENTS"},
	{domain.ErrDeletionOrder, http.StatusConflict, "DELETION_ORDER"},
	{domain.ErrJobHasPayments, http.StatusConflict, "JOB_HAS_PAYMENTS"},
	{domain.ErrQuoteHasJob, http.StatusConflict, "QUOTE_HAS_JOB"},
	{domain.ErrCustomerInUse, http.StatusConflict, "CUSTOMER_IN_USE"},
	{domain.ErrNotEditable, http.StatusConflict, "NOT_EDITABLE"},
	{domain.ErrDuplicateInvoiceNumber, http.StatusConflict, "DUPLICATE_INVOICE_NUMBER"},
	{domain.ErrDuplicateQuoteNumber, http.StatusConflict, "DUPLICATE_QUOTE_NUMBER"},
	{domain.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE"},
	{domain.ErrNoActiveSubscription, http.StatusConflict, "NO_ACTIVE_SUBSCRIPTION"},
	{domain.ErrSubscriptionAlreadyLive, http.StatusConflict, "SUBSCRIPTION_ALREADY_ACTIVE"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT"},

	{domain.ErrQuotaExceeded, http.StatusTooManyRequests, "QUOTA_EXCEEDED"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// A BusinessError keeps its own message; other mapped errors use the
// sentinel's text.
func MapDomainError(err error) (status int, code, msg string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg = m.err.Error()
		var be *domain.BusinessError
		if errors.As(err, &be) {
			msg = be.Message
		}
		return m.status, m.code, msg
	}
	if errors.Is(err, domain.ErrNumberGenerationFailed) {
		return http.StatusInternalServerError, "NUMBER_GENERATION_FAILED", domain.ErrNumberGenerationFailed.Error()
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.FromGin(c).Error("request failed",
			zap.String("code", code),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	RespondError(c, status, code, msg)
}

// tenantFromContext extracts the tenant ID set by the auth middleware.
// Returns false if it is missing (error response already written).
func tenantFromContext(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return uuid.Nil, false
	}
	return tenantID, true
}

// pathID parses the :name URL parameter. Returns false on a malformed ID
// (error response already written).
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// optionalQueryID parses an optional UUID query parameter.
func optionalQueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+name)
		return nil, false
	}
	return &id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
)

// QuoteHandler handles quote endpoints.
type QuoteHandler struct {
	quoteService service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Create handles POST /api/v1/quotes
// @Summary Create a quote
// @Description Create a draft quote. Totals are computed from the line items at the tenant's VAT rate.
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body service.QuoteInput true "Quote details"
// @Success 201 {object} Response{data=domain.Quote} "Quote created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Customer not found"
// @Failure 429 {object} ErrorResponseBody "Monthly quota exceeded"
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, quote)
}

// List handles GET /api/v1/quotes
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Param status query string false "Filter by status"
// @Param customer_id query string false "Filter by customer"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Quote,meta=PagMeta} "Quotes"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	filter := port.QuoteFilter{Status: domain.QuoteStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.IsValid() {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid quote status")
		return
	}
	if filter.CustomerID, ok = optionalQueryID(c, "customer_id"); !ok {
		return
	}

	offset, limit := parsePagination(c)
	quotes, total, err := h.quoteService.List(c.Request.Context(), tenantID, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, quotes, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/quotes/:id
// @Summary Get a quote
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} Response{data=domain.Quote} "Quote"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(c *gin.Context) {
	h.withQuote(c, h.quoteService.GetByID)
}

// Update handles PUT /api/v1/quotes/:id
// @Summary Update a draft quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body service.QuoteInput true "Quote details"
// @Success 200 {object} Response{data=domain.Quote} "Quote updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Quote is no longer a draft"
// @Security BearerAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c, "id", "quote")
	if !ok {
		return
	}

	var input service.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	quote, err := h.quoteService.Update(c.Request.Context(), tenantID, quoteID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// Delete handles DELETE /api/v1/quotes/:id
// @Summary Delete a quote
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} Response{data=MessageResponse} "Quote deleted"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Failure 409 {object} ErrorResponseBody "Quote has a job"
// @Security BearerAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c, "id", "quote")
	if !ok {
		return
	}

	if err := h.quoteService.Delete(c.Request.Context(), tenantID, quoteID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "quote deleted"})
}

// Send handles POST /api/v1/quotes/:id/send
// @Summary Send a quote
// @Description Mark the quote sent and email the customer its public link
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} Response{data=domain.Quote} "Quote sent"
// @Failure 400 {object} ErrorResponseBody "Invalid transition or expired"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Security BearerAuth
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(c *gin.Context) {
	h.withQuote(c, h.quoteService.Send)
}

// Accept handles POST /api/v1/quotes/:id/accept
// @Summary Record a quote as accepted
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} Response{data=domain.Quote} "Quote accepted"
// @Failure 400 {object} ErrorResponseBody "Invalid transition or expired"
// @Security BearerAuth
// @Router /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.withQuote(c, h.quoteService.Accept)
}

// Reject handles POST /api/v1/quotes/:id/reject
// @Summary Record a quote as rejected
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} Response{data=domain.Quote} "Quote rejected"
// @Failure 400 {object} ErrorResponseBody "Invalid transition or expired"
// @Security BearerAuth
// @Router /quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c *gin.Context) {
	h.withQuote(c, h.quoteService.Reject)
}

func (h *QuoteHandler) withQuote(c *gin.Context,
	op func(ctx context.Context, tenantID, quoteID uuid.UUID) (*domain.Quote, error)) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	quoteID, ok := pathID(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := op(c.Request.Context(), tenantID, quoteID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

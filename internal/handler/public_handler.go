package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobkaart/internal/service"
)

// PublicHandler serves customer-facing share links. These routes carry no
// authentication; the share token is the credential.
type PublicHandler struct {
	quoteService   service.QuoteService
	invoiceService service.InvoiceService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(quoteService service.QuoteService, invoiceService service.InvoiceService) *PublicHandler {
	return &PublicHandler{quoteService: quoteService, invoiceService: invoiceService}
}

// GetInvoice handles GET /api/v1/public/invoices/:token
// @Summary View a shared invoice
// @Tags public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} Response{data=service.PublicInvoice} "Invoice"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /public/invoices/{token} [get]
func (h *PublicHandler) GetInvoice(c *gin.Context) {
	token, ok := shareToken(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetPublic(c.Request.Context(), token)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoice)
}

// GetQuote handles GET /api/v1/public/quotes/:token
// @Summary View a shared quote
// @Tags public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} Response{data=service.PublicQuote} "Quote"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Router /public/quotes/{token} [get]
func (h *PublicHandler) GetQuote(c *gin.Context) {
	h.quoteAction(c, h.quoteService.GetPublic)
}

// AcceptQuote handles POST /api/v1/public/quotes/:token/accept
// @Summary Accept a shared quote
// @Tags public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} Response{data=service.PublicQuote} "Quote accepted"
// @Failure 400 {object} ErrorResponseBody "Quote expired or already decided"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Router /public/quotes/{token}/accept [post]
func (h *PublicHandler) AcceptQuote(c *gin.Context) {
	h.quoteAction(c, h.quoteService.AcceptPublic)
}

// RejectQuote handles POST /api/v1/public/quotes/:token/reject
// @Summary Reject a shared quote
// @Tags public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} Response{data=service.PublicQuote} "Quote rejected"
// @Failure 400 {object} ErrorResponseBody "Quote expired or already decided"
// @Failure 404 {object} ErrorResponseBody "Quote not found"
// @Router /public/quotes/{token}/reject [post]
func (h *PublicHandler) RejectQuote(c *gin.Context) {
	h.quoteAction(c, h.quoteService.RejectPublic)
}

func (h *PublicHandler) quoteAction(c *gin.Context, op func(ctx context.Context, token uuid.UUID) (*service.PublicQuote, error)) {
	token, ok := shareToken(c)
	if !ok {
		return
	}

	quote, err := op(c.Request.Context(), token)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, quote)
}

// shareToken parses the :token parameter. A malformed token is reported as
// not found so share links cannot be probed.
func shareToken(c *gin.Context) (uuid.UUID, bool) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "document not found")
		return uuid.Nil, false
	}
	return token, true
}

package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
	"jobkaart/internal/handler"
	"jobkaart/internal/service"
	"jobkaart/mocks"
)

func tokenParam(v string) gin.Params {
	return gin.Params{{Key: "token", Value: v}}
}

func TestPublicHandler_GetInvoice(t *testing.T) {
	invoices := new(mocks.MockInvoiceService)
	h := handler.NewPublicHandler(new(mocks.MockQuoteService), invoices)
	token := uuid.New()

	invoices.On("GetPublic", mock.Anything, token).Return(&service.PublicInvoice{
		Invoice:      &domain.Invoice{InvoiceNumber: "INV-2026-001"},
		BusinessName: "Sipho's Plumbing",
	}, nil)

	w := serve(t, h.GetInvoice, request{
		method: http.MethodGet,
		path:   "/api/v1/public/invoices/" + token.String(),
		params: tokenParam(token.String()),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-2026-001")
	invoices.AssertExpectations(t)
}

func TestPublicHandler_MalformedTokenIsNotFound(t *testing.T) {
	h := handler.NewPublicHandler(new(mocks.MockQuoteService), new(mocks.MockInvoiceService))

	w := serve(t, h.GetQuote, request{
		method: http.MethodGet,
		path:   "/api/v1/public/quotes/abc",
		params: tokenParam("abc"),
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicHandler_AcceptQuote(t *testing.T) {
	quotes := new(mocks.MockQuoteService)
	h := handler.NewPublicHandler(quotes, new(mocks.MockInvoiceService))
	token := uuid.New()

	quotes.On("AcceptPublic", mock.Anything, token).Return(&service.PublicQuote{
		Quote: &domain.Quote{QuoteNumber: "Q-2026-001", Status: domain.QuoteStatusAccepted},
	}, nil)

	w := serve(t, h.AcceptQuote, request{
		method: http.MethodPost,
		path:   "/api/v1/public/quotes/" + token.String() + "/accept",
		params: tokenParam(token.String()),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"accepted"`)
}

func TestPublicHandler_RejectExpiredQuote(t *testing.T) {
	quotes := new(mocks.MockQuoteService)
	h := handler.NewPublicHandler(quotes, new(mocks.MockInvoiceService))
	token := uuid.New()

	quotes.On("RejectPublic", mock.Anything, token).Return(nil, domain.ErrQuoteExpired)

	w := serve(t, h.RejectQuote, request{
		method: http.MethodPost,
		path:   "/api/v1/public/quotes/" + token.String() + "/reject",
		params: tokenParam(token.String()),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "QUOTE_EXPIRED", decode(t, w).Error.Code)
}

package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
	"jobkaart/internal/export"
	"jobkaart/internal/handler"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
	"jobkaart/mocks"
)

func stagedInvoice(number string, total, vat domain.Money) *domain.Invoice {
	return &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		Subtotal:      total - vat,
		VATAmount:     vat,
		Total:         total,
		Status:        domain.InvoiceStatusDraft,
		DueDate:       time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
	}
}

func TestInvoiceHandler_CreateDeposit(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID, jobID := uuid.New(), uuid.New()
	inv := stagedInvoice("INV-2026-001", 30000, 3913)

	svc.On("CreateDeposit", mock.Anything, tenantID, mock.MatchedBy(func(in *service.DepositInput) bool {
		return in.JobID == jobID && in.DepositPercentage.Equal(decimal.NewFromInt(30))
	})).Return(&service.StagedInvoice{Invoice: inv, Plan: &domain.StagePlan{Percentage: decimal.NewFromInt(30)}}, nil)

	w := serve(t, h.CreateDeposit, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/deposit",
		body:   map[string]interface{}{"job_id": jobID, "deposit_percentage": 30},
		tenant: tenantID,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, inv.ID.String(), data["invoice_id"])
	assert.Equal(t, "INV-2026-001", data["invoice_number"])
	assert.Equal(t, 300.0, data["deposit_amount"])
	assert.Equal(t, 39.13, data["deposit_vat"])
	assert.Equal(t, "2026-03-17", data["due_date"])
	assert.NotNil(t, data["invoice"])
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_CreateDeposit_MissingJob(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	w := serve(t, h.CreateDeposit, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/deposit",
		body:   map[string]interface{}{"deposit_percentage": 30},
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "CreateDeposit")
}

func TestInvoiceHandler_CreateProgress(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID, jobID := uuid.New(), uuid.New()
	inv := stagedInvoice("INV-2026-002", 50000, 6522)

	svc.On("CreateProgress", mock.Anything, tenantID, mock.AnythingOfType("*service.ProgressInput")).
		Return(&service.StagedInvoice{Invoice: inv, Plan: &domain.StagePlan{
			Percentage:              decimal.NewFromInt(50),
			TotalInvoicedPercentage: decimal.NewFromInt(80),
		}}, nil)

	w := serve(t, h.CreateProgress, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/progress",
		body:   map[string]interface{}{"job_id": jobID, "percentage": 50},
		tenant: tenantID,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, 500.0, data["amount"])
	assert.Equal(t, 50.0, data["percentage"])
	assert.Equal(t, 80.0, data["total_invoiced_percentage"])
}

func TestInvoiceHandler_CreateProgress_Exceeded(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID := uuid.New()

	svc.On("CreateProgress", mock.Anything, tenantID, mock.Anything).
		Return(nil, domain.NewBusinessError(domain.ErrPercentageExceeded,
			"cannot invoice 30.0%%: only 20.0%% remaining"))

	w := serve(t, h.CreateProgress, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/progress",
		body:   map[string]interface{}{"job_id": uuid.New(), "percentage": 30},
		tenant: tenantID,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "PERCENTAGE_EXCEEDED", env.Error.Code)
	assert.Equal(t, "cannot invoice 30.0%: only 20.0% remaining", env.Error.Message)
}

func TestInvoiceHandler_CreateBalance(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID := uuid.New()
	inv := stagedInvoice("INV-2026-003", 20000, 2609)

	svc.On("CreateBalance", mock.Anything, tenantID, mock.Anything).
		Return(&service.BalanceInvoice{Invoice: inv, Plan: &domain.BalancePlan{Percentage: decimal.NewFromInt(20)}}, nil)

	w := serve(t, h.CreateBalance, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/balance",
		body:   map[string]interface{}{"job_id": uuid.New()},
		tenant: tenantID,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, 200.0, data["balance_due"])
	assert.Equal(t, 20.0, data["balance_percentage"])
	assert.Equal(t, "INV-2026-003", data["invoice_number"])
}

func TestInvoiceHandler_CreateBalance_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"unpaid priors", domain.ErrUnpaidPriorInvoices, http.StatusBadRequest, "UNPAID_PRIOR_INVOICES"},
		{"no priors", domain.ErrNoPriorInvoices, http.StatusNotFound, "NO_PRIOR_INVOICES"},
		{"job without quote", domain.ErrJobHasNoQuote, http.StatusNotFound, "JOB_HAS_NO_QUOTE"},
		{"already exists", domain.ErrBalanceExists, http.StatusConflict, "BALANCE_EXISTS"},
		{"job missing", domain.ErrJobNotFound, http.StatusNotFound, "JOB_NOT_FOUND"},
		{"quota", domain.ErrQuotaExceeded, http.StatusTooManyRequests, "QUOTA_EXCEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockInvoiceService)
			h := handler.NewInvoiceHandler(svc)
			svc.On("CreateBalance", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(t, h.CreateBalance, request{
				method: http.MethodPost,
				path:   "/api/v1/invoices/balance",
				body:   map[string]interface{}{"job_id": uuid.New()},
				tenant: uuid.New(),
			})

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decode(t, w).Error.Code)
		})
	}
}

func TestInvoiceHandler_RecordPayment(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID, invoiceID := uuid.New(), uuid.New()

	svc.On("RecordPayment", mock.Anything, tenantID, invoiceID, mock.MatchedBy(func(in *service.RecordPaymentInput) bool {
		return in.Amount == 30000 && in.Method == domain.PaymentMethodEFT && in.PaymentDate != nil &&
			in.PaymentDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	})).Return(&service.PaymentReceipt{
		Payment: &domain.Payment{ID: uuid.New(), InvoiceID: invoiceID, Amount: 30000},
		Invoice: &domain.Invoice{ID: invoiceID, Total: 30000, AmountPaid: 30000, Status: domain.InvoiceStatusPaid},
	}, nil)

	w := serve(t, h.RecordPayment, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/" + invoiceID.String() + "/payments",
		body: map[string]interface{}{
			"amount":         300,
			"payment_date":   "2026-03-10",
			"payment_method": "eft",
			"reference":      "FNB 1234",
		},
		params: idParam(invoiceID),
		tenant: tenantID,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_RecordPayment_BadMethod(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	invoiceID := uuid.New()

	w := serve(t, h.RecordPayment, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/" + invoiceID.String() + "/payments",
		body:   map[string]interface{}{"amount": 300, "payment_date": "2026-03-10T00:00:00Z", "payment_method": "bitcoin"},
		params: idParam(invoiceID),
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "RecordPayment")
}

func TestInvoiceHandler_RecordPayment_ExceedsOutstanding(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	invoiceID := uuid.New()

	svc.On("RecordPayment", mock.Anything, mock.Anything, invoiceID, mock.Anything).
		Return(nil, domain.NewBusinessError(domain.ErrPaymentExceedsOutstanding,
			"payment of R300.00 exceeds outstanding amount of R200.00"))

	w := serve(t, h.RecordPayment, request{
		method: http.MethodPost,
		path:   "/api/v1/invoices/" + invoiceID.String() + "/payments",
		body:   map[string]interface{}{"amount": 300, "payment_date": "2026-03-10T00:00:00Z", "payment_method": "cash"},
		params: idParam(invoiceID),
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "payment of R300.00 exceeds outstanding amount of R200.00", decode(t, w).Error.Message)
}

func TestInvoiceHandler_Delete(t *testing.T) {
	tenantID, invoiceID := uuid.New(), uuid.New()

	t.Run("member delete", func(t *testing.T) {
		svc := new(mocks.MockInvoiceService)
		h := handler.NewInvoiceHandler(svc)
		svc.On("Delete", mock.Anything, tenantID, invoiceID, false).Return(nil)

		w := serve(t, h.Delete, request{
			method: http.MethodDelete,
			path:   "/api/v1/invoices/" + invoiceID.String(),
			params: idParam(invoiceID),
			tenant: tenantID,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"invoice deleted"}`, string(decode(t, w).Data))
	})

	t.Run("force requires owner", func(t *testing.T) {
		svc := new(mocks.MockInvoiceService)
		h := handler.NewInvoiceHandler(svc)

		w := serve(t, h.Delete, request{
			method: http.MethodDelete,
			path:   "/api/v1/invoices/" + invoiceID.String() + "?force=true",
			params: idParam(invoiceID),
			tenant: tenantID,
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		svc.AssertNotCalled(t, "Delete")
	})

	t.Run("owner force", func(t *testing.T) {
		svc := new(mocks.MockInvoiceService)
		h := handler.NewInvoiceHandler(svc)
		svc.On("Delete", mock.Anything, tenantID, invoiceID, true).Return(nil)

		w := serve(t, h.Delete, request{
			method: http.MethodDelete,
			path:   "/api/v1/invoices/" + invoiceID.String() + "?force=true",
			params: idParam(invoiceID),
			tenant: tenantID,
			role:   domain.RoleOwner,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("out of order", func(t *testing.T) {
		svc := new(mocks.MockInvoiceService)
		h := handler.NewInvoiceHandler(svc)
		svc.On("Delete", mock.Anything, tenantID, invoiceID, false).
			Return(domain.NewBusinessError(domain.ErrDeletionOrder,
				"invoices must be deleted in reverse order: delete INV-2026-003 first"))

		w := serve(t, h.Delete, request{
			method: http.MethodDelete,
			path:   "/api/v1/invoices/" + invoiceID.String(),
			params: idParam(invoiceID),
			tenant: tenantID,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w)
		assert.Equal(t, "DELETION_ORDER", env.Error.Code)
		assert.Contains(t, env.Error.Message, "INV-2026-003")
	})

	t.Run("malformed force", func(t *testing.T) {
		svc := new(mocks.MockInvoiceService)
		h := handler.NewInvoiceHandler(svc)

		w := serve(t, h.Delete, request{
			method: http.MethodDelete,
			path:   "/api/v1/invoices/" + invoiceID.String() + "?force=maybe",
			params: idParam(invoiceID),
			tenant: tenantID,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	w := serve(t, h.GetByID, request{
		method: http.MethodGet,
		path:   "/api/v1/invoices/not-a-uuid",
		params: gin.Params{{Key: "id", Value: "not-a-uuid"}},
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
}

func TestInvoiceHandler_List_Filters(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID, jobID := uuid.New(), uuid.New()

	svc.On("List", mock.Anything, tenantID, port.InvoiceFilter{Status: domain.InvoiceStatusOverdue, JobID: &jobID}, 0, 50).
		Return([]domain.Invoice{{ID: uuid.New()}}, 1, nil)

	w := serve(t, h.List, request{
		method: http.MethodGet,
		path:   "/api/v1/invoices?status=overdue&job_id=" + jobID.String() + "&limit=50",
		tenant: tenantID,
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Total)
	assert.Equal(t, 50, env.Meta.Limit)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_List_InvalidStatus(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	w := serve(t, h.List, request{
		method: http.MethodGet,
		path:   "/api/v1/invoices?status=archived",
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List")
}

func TestInvoiceHandler_Export(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)
	tenantID := uuid.New()

	svc.On("Export", mock.Anything, tenantID, port.InvoiceFilter{}, export.FormatCSV, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(4).(io.Writer), "Invoice Number\nINV-2026-001\n")
		}).
		Return(nil)

	w := serve(t, h.Export, request{
		method: http.MethodGet,
		path:   "/api/v1/invoices/export?format=csv",
		tenant: tenantID,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="invoices-\d{4}-\d{2}-\d{2}\.csv"$`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Invoice Number\nINV-2026-001\n", w.Body.String())
}

func TestInvoiceHandler_Export_UnknownFormat(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	w := serve(t, h.Export, request{
		method: http.MethodGet,
		path:   "/api/v1/invoices/export?format=pdf",
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, "pdf")
}

func TestInvoiceHandler_MissingTenant(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc)

	w := serve(t, h.List, request{method: http.MethodGet, path: "/api/v1/invoices"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

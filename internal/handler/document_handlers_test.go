package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
	"jobkaart/internal/handler"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
	"jobkaart/mocks"
)

func TestQuoteHandler_Accept(t *testing.T) {
	svc := new(mocks.MockQuoteService)
	h := handler.NewQuoteHandler(svc)
	tenantID, quoteID := uuid.New(), uuid.New()

	svc.On("Accept", mock.Anything, tenantID, quoteID).
		Return(&domain.Quote{ID: quoteID, Status: domain.QuoteStatusAccepted}, nil)

	w := serve(t, h.Accept, request{
		method: http.MethodPost,
		path:   "/api/v1/quotes/" + quoteID.String() + "/accept",
		params: idParam(quoteID),
		tenant: tenantID,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestQuoteHandler_Update_NotDraft(t *testing.T) {
	svc := new(mocks.MockQuoteService)
	h := handler.NewQuoteHandler(svc)
	quoteID := uuid.New()

	svc.On("Update", mock.Anything, mock.Anything, quoteID, mock.AnythingOfType("*service.QuoteInput")).
		Return(nil, domain.ErrNotEditable)

	w := serve(t, h.Update, request{
		method: http.MethodPut,
		path:   "/api/v1/quotes/" + quoteID.String(),
		body: map[string]interface{}{
			"customer_id": uuid.New(),
			"title":       "Geyser replacement",
			"line_items":  []map[string]interface{}{{"description": "150L geyser", "quantity": 1, "unit_price": 6500}},
		},
		params: idParam(quoteID),
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOT_EDITABLE", decode(t, w).Error.Code)
}

func TestQuoteHandler_List_ByCustomer(t *testing.T) {
	svc := new(mocks.MockQuoteService)
	h := handler.NewQuoteHandler(svc)
	tenantID, customerID := uuid.New(), uuid.New()

	svc.On("List", mock.Anything, tenantID, port.QuoteFilter{CustomerID: &customerID}, 0, 20).
		Return([]domain.Quote{}, 0, nil)

	w := serve(t, h.List, request{
		method: http.MethodGet,
		path:   "/api/v1/quotes?customer_id=" + customerID.String(),
		tenant: tenantID,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestJobHandler_UpdateStatus(t *testing.T) {
	svc := new(mocks.MockJobService)
	h := handler.NewJobHandler(svc)
	tenantID, jobID := uuid.New(), uuid.New()

	svc.On("UpdateStatus", mock.Anything, tenantID, jobID, mock.MatchedBy(func(in *service.UpdateJobStatusInput) bool {
		return in.Status == domain.JobStatusInProgress
	})).Return(&domain.Job{ID: jobID, Status: domain.JobStatusInProgress}, nil)

	w := serve(t, h.UpdateStatus, request{
		method: http.MethodPatch,
		path:   "/api/v1/jobs/" + jobID.String() + "/status",
		body:   map[string]string{"status": "in_progress"},
		params: idParam(jobID),
		tenant: tenantID,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestJobHandler_UpdateStatus_DerivedStatusLocked(t *testing.T) {
	svc := new(mocks.MockJobService)
	h := handler.NewJobHandler(svc)
	jobID := uuid.New()

	svc.On("UpdateStatus", mock.Anything, mock.Anything, jobID, mock.Anything).
		Return(nil, domain.NewBusinessError(domain.ErrInvalidStatusTransition,
			"job status invoiced is derived from its invoices"))

	w := serve(t, h.UpdateStatus, request{
		method: http.MethodPatch,
		path:   "/api/v1/jobs/" + jobID.String() + "/status",
		body:   map[string]string{"status": "paid"},
		params: idParam(jobID),
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", decode(t, w).Error.Code)
}

func TestJobHandler_Delete_HasPayments(t *testing.T) {
	svc := new(mocks.MockJobService)
	h := handler.NewJobHandler(svc)
	jobID := uuid.New()

	svc.On("Delete", mock.Anything, mock.Anything, jobID).Return(domain.ErrJobHasPayments)

	w := serve(t, h.Delete, request{
		method: http.MethodDelete,
		path:   "/api/v1/jobs/" + jobID.String(),
		params: idParam(jobID),
		tenant: uuid.New(),
		role:   domain.RoleOwner,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCustomerHandler_Create(t *testing.T) {
	svc := new(mocks.MockCustomerService)
	h := handler.NewCustomerHandler(svc)
	tenantID := uuid.New()

	svc.On("Create", mock.Anything, tenantID, &service.CustomerInput{Name: "Thandi Mokoena", Phone: "082 555 0101"}).
		Return(&domain.Customer{ID: uuid.New(), Name: "Thandi Mokoena"}, nil)

	w := serve(t, h.Create, request{
		method: http.MethodPost,
		path:   "/api/v1/customers",
		body:   map[string]string{"name": "Thandi Mokoena", "phone": "082 555 0101"},
		tenant: tenantID,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
	svc.AssertExpectations(t)
}

func TestCustomerHandler_Create_BadEmail(t *testing.T) {
	svc := new(mocks.MockCustomerService)
	h := handler.NewCustomerHandler(svc)

	w := serve(t, h.Create, request{
		method: http.MethodPost,
		path:   "/api/v1/customers",
		body:   map[string]string{"name": "Thandi", "email": "not-an-email"},
		tenant: uuid.New(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create")
}

func TestTenantHandler_Usage(t *testing.T) {
	usage := new(mocks.MockUsageService)
	h := handler.NewTenantHandler(new(mocks.MockTenantService), usage)
	tenantID := uuid.New()

	usage.On("GetUsage", mock.Anything, tenantID).Return(&service.UsageReport{}, nil)

	w := serve(t, h.Usage, request{method: http.MethodGet, path: "/api/v1/usage", tenant: tenantID})

	assert.Equal(t, http.StatusOK, w.Code)
	usage.AssertExpectations(t)
}

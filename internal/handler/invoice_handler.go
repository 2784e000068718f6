package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobkaart/internal/domain"
	"jobkaart/internal/export"
	"jobkaart/internal/middleware"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
)

const dateLayout = "2006-01-02"

// InvoiceHandler handles invoice, progressive billing and payment endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	now            func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, now: time.Now}
}

// Create handles POST /api/v1/invoices
// @Summary Create a full invoice
// @Description Create a draft invoice from line items, for a customer or a job
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body service.InvoiceInput true "Invoice details"
// @Success 201 {object} Response{data=domain.Invoice} "Invoice created"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Customer or job not found"
// @Failure 429 {object} ErrorResponseBody "Monthly quota exceeded"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, invoice)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List invoices. Sent invoices past their due date are marked overdue first.
// @Tags invoices
// @Produce json
// @Param status query string false "Filter by status"
// @Param job_id query string false "Filter by job"
// @Param customer_id query string false "Filter by customer"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta} "Invoices"
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	filter, ok := invoiceFilter(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	invoices, total, err := h.invoiceService.List(c.Request.Context(), tenantID, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Export handles GET /api/v1/invoices/export
// @Summary Export the invoice register
// @Tags invoices
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Param status query string false "Filter by status"
// @Param job_id query string false "Filter by job"
// @Param customer_id query string false "Filter by customer"
// @Success 200 {file} file "Invoice register"
// @Failure 400 {object} ErrorResponseBody "Unknown format or filter"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.DefaultQuery("format", "csv"))
	if err != nil {
		HandleError(c, err)
		return
	}
	filter, ok := invoiceFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.invoiceService.Export(c.Request.Context(), tenantID, filter, format, &buf); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+format.Filename(h.now())+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get an invoice
// @Description Get an invoice with its payment history
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=service.InvoiceDetail} "Invoice"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	detail, err := h.invoiceService.GetByID(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Update a draft full invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body service.InvoiceInput true "Invoice details"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Invoice is not an editable draft"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), tenantID, invoiceID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoice)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Description Job invoices are deleted newest first. Invoices with payments need force=true (owner only), which removes the payments in the same transaction.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Param force query bool false "Delete payments and ignore ordering" default(false)
// @Success 200 {object} Response{data=MessageResponse} "Invoice deleted"
// @Failure 403 {object} ErrorResponseBody "Force delete requires the owner role"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 409 {object} ErrorResponseBody "Invoice has payments or is not the newest"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	force, err := strconv.ParseBool(c.DefaultQuery("force", "false"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "force must be true or false")
		return
	}
	if force && middleware.GetRole(c) != domain.RoleOwner {
		RespondError(c, http.StatusForbidden, "FORBIDDEN", "force delete requires the owner role")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), tenantID, invoiceID, force); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "invoice deleted"})
}

// Send handles POST /api/v1/invoices/:id/send
// @Summary Send an invoice
// @Description Mark the invoice sent, email the customer its public link and update the job status
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice sent"
// @Failure 400 {object} ErrorResponseBody "Invoice cannot be sent"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Send(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, invoice)
}

// CreateDeposit handles POST /api/v1/invoices/deposit
// @Summary Create a deposit invoice
// @Description Invoice a percentage of the job's quote up front
// @Tags billing-stages
// @Accept json
// @Produce json
// @Param request body service.DepositInput true "Job and deposit percentage"
// @Success 201 {object} Response{data=DepositResponse} "Deposit invoice created"
// @Failure 400 {object} ErrorResponseBody "Invalid percentage, job has no quote or cumulative limit exceeded"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Deposit already exists"
// @Failure 429 {object} ErrorResponseBody "Monthly quota exceeded"
// @Security BearerAuth
// @Router /invoices/deposit [post]
func (h *InvoiceHandler) CreateDeposit(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.DepositInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.invoiceService.CreateDeposit(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	inv := result.Invoice
	RespondCreated(c, DepositResponse{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		DepositAmount: inv.Total,
		DepositVAT:    inv.VATAmount,
		DueDate:       inv.DueDate.Format(dateLayout),
		Invoice:       inv,
	})
}

// CreateProgress handles POST /api/v1/invoices/progress
// @Summary Create a progress invoice
// @Description Invoice a further percentage of the job's quote
// @Tags billing-stages
// @Accept json
// @Produce json
// @Param request body service.ProgressInput true "Job and percentage"
// @Success 201 {object} Response{data=ProgressResponse} "Progress invoice created"
// @Failure 400 {object} ErrorResponseBody "Invalid percentage, job has no quote or cumulative limit exceeded"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Balance already invoiced"
// @Failure 429 {object} ErrorResponseBody "Monthly quota exceeded"
// @Security BearerAuth
// @Router /invoices/progress [post]
func (h *InvoiceHandler) CreateProgress(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.ProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.invoiceService.CreateProgress(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	inv := result.Invoice
	RespondCreated(c, ProgressResponse{
		InvoiceID:               inv.ID,
		InvoiceNumber:           inv.InvoiceNumber,
		Amount:                  inv.Total,
		Percentage:              result.Plan.Percentage,
		TotalInvoicedPercentage: result.Plan.TotalInvoicedPercentage,
		DueDate:                 inv.DueDate.Format(dateLayout),
		Invoice:                 inv,
	})
}

// CreateBalance handles POST /api/v1/invoices/balance
// @Summary Create the balance invoice
// @Description Invoice the remainder of the job's quote once every deposit and progress invoice is paid
// @Tags billing-stages
// @Accept json
// @Produce json
// @Param request body service.BalanceInput true "Job"
// @Success 201 {object} Response{data=BalanceResponse} "Balance invoice created"
// @Failure 400 {object} ErrorResponseBody "No prior invoices or unpaid prior invoices"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Balance already exists"
// @Failure 429 {object} ErrorResponseBody "Monthly quota exceeded"
// @Security BearerAuth
// @Router /invoices/balance [post]
func (h *InvoiceHandler) CreateBalance(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.BalanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.invoiceService.CreateBalance(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	inv := result.Invoice
	RespondCreated(c, BalanceResponse{
		InvoiceID:         inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		BalanceDue:        inv.Total,
		BalancePercentage: result.Plan.Percentage,
		DueDate:           inv.DueDate.Format(dateLayout),
		Invoice:           inv,
	})
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
// @Summary Record a payment
// @Description Post a payment against an invoice. The job status is re-derived in the same transaction.
// @Tags payments
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body service.RecordPaymentInput true "Payment"
// @Success 201 {object} Response{data=service.PaymentReceipt} "Payment recorded"
// @Failure 400 {object} ErrorResponseBody "Invalid amount, date or method, or amount exceeds outstanding"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Failure 409 {object} ErrorResponseBody "Concurrent payment, retry"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	var input service.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	receipt, err := h.invoiceService.RecordPayment(c.Request.Context(), tenantID, invoiceID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, receipt)
}

// ListPayments handles GET /api/v1/invoices/:id/payments
// @Summary List an invoice's payments
// @Tags payments
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} Response{data=[]domain.Payment} "Payments"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, payments)
}

func invoiceFilter(c *gin.Context) (port.InvoiceFilter, bool) {
	filter := port.InvoiceFilter{Status: domain.InvoiceStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.IsValid() {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid invoice status")
		return filter, false
	}
	var ok bool
	if filter.JobID, ok = optionalQueryID(c, "job_id"); !ok {
		return filter, false
	}
	if filter.CustomerID, ok = optionalQueryID(c, "customer_id"); !ok {
		return filter, false
	}
	return filter, true
}

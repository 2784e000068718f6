package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
)

// JobHandler handles job tracker endpoints.
type JobHandler struct {
	jobService service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// Create handles POST /api/v1/jobs
// @Summary Create a job
// @Description Create a job from an accepted quote, or directly for a customer
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body service.CreateJobInput true "Job details"
// @Success 201 {object} Response{data=domain.Job} "Job created"
// @Failure 400 {object} ErrorResponseBody "Validation error or quote not accepted"
// @Failure 404 {object} ErrorResponseBody "Quote or customer not found"
// @Failure 409 {object} ErrorResponseBody "Quote already has a job"
// @Failure 429 {object} ErrorResponseBody "Monthly quota exceeded"
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, job)
}

// List handles GET /api/v1/jobs
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param status query string false "Filter by status"
// @Param customer_id query string false "Filter by customer"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Job,meta=PagMeta} "Jobs"
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	filter := port.JobFilter{Status: domain.JobStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.IsValid() {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid job status")
		return
	}
	if filter.CustomerID, ok = optionalQueryID(c, "customer_id"); !ok {
		return
	}

	offset, limit := parsePagination(c)
	jobs, total, err := h.jobService.List(c.Request.Context(), tenantID, filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, jobs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/jobs/:id
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=domain.Job} "Job"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id", "job")
	if !ok {
		return
	}

	job, err := h.jobService.GetByID(c.Request.Context(), tenantID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// UpdateStatus handles PATCH /api/v1/jobs/:id/status
// @Summary Set a job's status
// @Description Move a job among quoted, scheduled, in_progress and complete. invoiced and paid are derived from invoices.
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body service.UpdateJobStatusInput true "New status"
// @Success 200 {object} Response{data=domain.Job} "Job updated"
// @Failure 400 {object} ErrorResponseBody "Invalid transition"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /jobs/{id}/status [patch]
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id", "job")
	if !ok {
		return
	}

	var input service.UpdateJobStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), tenantID, jobID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, job)
}

// Delete handles DELETE /api/v1/jobs/:id
// @Summary Delete a job
// @Description Delete a job and its invoices (owner only). Refused when any invoice has a payment.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=MessageResponse} "Job deleted"
// @Failure 403 {object} ErrorResponseBody "Forbidden - owner only"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Failure 409 {object} ErrorResponseBody "Job has payments"
// @Security BearerAuth
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id", "job")
	if !ok {
		return
	}

	if err := h.jobService.Delete(c.Request.Context(), tenantID, jobID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, MessageResponse{Message: "job and its invoices deleted"})
}

// Billing handles GET /api/v1/jobs/:id/billing
// @Summary Get a job's billing summary
// @Description Invoiced and paid totals against the job's quote, with its invoices
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=service.JobBillingSummary} "Billing summary"
// @Failure 404 {object} ErrorResponseBody "Job not found"
// @Security BearerAuth
// @Router /jobs/{id}/billing [get]
func (h *JobHandler) Billing(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}
	jobID, ok := pathID(c, "id", "job")
	if !ok {
		return
	}

	summary, err := h.jobService.BillingSummary(c.Request.Context(), tenantID, jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}

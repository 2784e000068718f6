package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobkaart/internal/service"
)

// TenantHandler handles tenant settings endpoints.
type TenantHandler struct {
	tenantService service.TenantService
	usageService  service.UsageService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenantService service.TenantService, usageService service.UsageService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService, usageService: usageService}
}

// Get handles GET /api/v1/tenant
// @Summary Get tenant settings
// @Description Get the business settings of the caller's tenant
// @Tags tenant
// @Produce json
// @Success 200 {object} Response{data=domain.Tenant} "Tenant settings"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Tenant not found"
// @Security BearerAuth
// @Router /tenant [get]
func (h *TenantHandler) Get(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tenant)
}

// Update handles PUT /api/v1/tenant
// @Summary Update tenant settings
// @Description Update business name, contact details and VAT registration (owner only)
// @Tags tenant
// @Accept json
// @Produce json
// @Param request body service.UpdateTenantInput true "Fields to change"
// @Success 200 {object} Response{data=domain.Tenant} "Tenant updated"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Forbidden - owner only"
// @Security BearerAuth
// @Router /tenant [put]
func (h *TenantHandler) Update(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var input service.UpdateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), tenantID, &input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tenant)
}

// Usage handles GET /api/v1/usage
// @Summary Get monthly usage
// @Description Counts of quotes, jobs and invoices created this month against the free-tier limits
// @Tags tenant
// @Produce json
// @Success 200 {object} Response{data=service.UsageReport} "Usage report"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /usage [get]
func (h *TenantHandler) Usage(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	report, err := h.usageService.GetUsage(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

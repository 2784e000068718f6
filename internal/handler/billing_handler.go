package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/logger"
	"jobkaart/internal/middleware"
	"jobkaart/internal/service"
)

// BillingHandler handles the tenant's own JobKaart subscription.
type BillingHandler struct {
	subscriptionService service.SubscriptionService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(subscriptionService service.SubscriptionService) *BillingHandler {
	return &BillingHandler{subscriptionService: subscriptionService}
}

// Get handles GET /api/v1/billing/subscription
// @Summary Get the tenant's subscription
// @Tags billing
// @Produce json
// @Success 200 {object} Response{data=domain.Subscription} "Subscription"
// @Failure 404 {object} ErrorResponseBody "No subscription"
// @Security BearerAuth
// @Router /billing/subscription [get]
func (h *BillingHandler) Get(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Get(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// Checkout handles POST /api/v1/billing/checkout
// @Summary Start a subscription checkout
// @Description Returns the PayFast form fields the client posts to start the subscription
// @Tags billing
// @Produce json
// @Success 200 {object} Response{data=port.CheckoutSession} "Checkout form"
// @Failure 409 {object} ErrorResponseBody "Subscription already active"
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	session, err := h.subscriptionService.Checkout(c.Request.Context(), tenantID, c.GetString(middleware.ContextKeyEmail))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, session)
}

// Cancel handles POST /api/v1/billing/cancel
// @Summary Cancel the subscription
// @Tags billing
// @Produce json
// @Success 200 {object} Response{data=domain.Subscription} "Subscription cancelled"
// @Failure 404 {object} ErrorResponseBody "No subscription"
// @Failure 409 {object} ErrorResponseBody "No active subscription"
// @Security BearerAuth
// @Router /billing/cancel [post]
func (h *BillingHandler) Cancel(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), tenantID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// Notify handles POST /api/v1/webhooks/payfast
// @Summary PayFast payment notification
// @Description Form-encoded ITN callback. Redeliveries of an applied notification are acknowledged without effect.
// @Tags billing
// @Accept x-www-form-urlencoded
// @Produce plain
// @Success 200 {string} string "OK"
// @Failure 400 {string} string "Invalid notification"
// @Router /webhooks/payfast [post]
func (h *BillingHandler) Notify(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	err = h.subscriptionService.HandleNotification(c.Request.Context(), body)
	switch {
	case err == nil:
		c.String(http.StatusOK, "OK")
	case errors.Is(err, domain.ErrInvalidSignature), errors.Is(err, domain.ErrMerchantMismatch):
		logger.FromGin(c).Warn("payfast notification rejected", zap.Error(err))
		c.String(http.StatusBadRequest, err.Error())
	default:
		logger.FromGin(c).Error("payfast notification failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "notification not applied")
	}
}

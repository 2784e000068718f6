package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"jobkaart/internal/domain"
	"jobkaart/internal/handler"
	"jobkaart/internal/logger"
	"jobkaart/internal/middleware"
	"jobkaart/internal/port"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health   *handler.HealthHandler
	Tenant   *handler.TenantHandler
	Customer *handler.CustomerHandler
	Quote    *handler.QuoteHandler
	Job      *handler.JobHandler
	Invoice  *handler.InvoiceHandler
	Public   *handler.PublicHandler
	Billing  *handler.BillingHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(log *zap.Logger, verifier port.TokenVerifier, allowedOrigins []string, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(logger.GinMiddleware(log))
	r.Use(logger.Recovery(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Share links and gateway callbacks carry no bearer token
	public := v1.Group("/public")
	public.GET("/invoices/:token", h.Public.GetInvoice)
	public.GET("/quotes/:token", h.Public.GetQuote)
	public.POST("/quotes/:token/accept", h.Public.AcceptQuote)
	public.POST("/quotes/:token/reject", h.Public.RejectQuote)

	v1.POST("/webhooks/payfast", h.Billing.Notify)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(verifier))
	protected.Use(middleware.TenantGuard())

	owner := middleware.RequireRole(domain.RoleOwner)

	protected.GET("/tenant", h.Tenant.Get)
	protected.PUT("/tenant", owner, h.Tenant.Update)
	protected.GET("/usage", h.Tenant.Usage)

	customers := protected.Group("/customers")
	customers.POST("", h.Customer.Create)
	customers.GET("", h.Customer.List)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)

	quotes := protected.Group("/quotes")
	quotes.POST("", h.Quote.Create)
	quotes.GET("", h.Quote.List)
	quotes.GET("/:id", h.Quote.GetByID)
	quotes.PUT("/:id", h.Quote.Update)
	quotes.DELETE("/:id", h.Quote.Delete)
	quotes.POST("/:id/send", h.Quote.Send)
	quotes.POST("/:id/accept", h.Quote.Accept)
	quotes.POST("/:id/reject", h.Quote.Reject)

	jobs := protected.Group("/jobs")
	jobs.POST("", h.Job.Create)
	jobs.GET("", h.Job.List)
	jobs.GET("/:id", h.Job.GetByID)
	jobs.DELETE("/:id", owner, h.Job.Delete)
	jobs.PATCH("/:id/status", h.Job.UpdateStatus)
	jobs.GET("/:id/billing", h.Job.Billing)

	// Force deletion is checked against the owner role inside the handler
	invoices := protected.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/export", h.Invoice.Export)
	invoices.POST("/deposit", h.Invoice.CreateDeposit)
	invoices.POST("/progress", h.Invoice.CreateProgress)
	invoices.POST("/balance", h.Invoice.CreateBalance)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/send", h.Invoice.Send)
	invoices.POST("/:id/payments", h.Invoice.RecordPayment)
	invoices.GET("/:id/payments", h.Invoice.ListPayments)

	billing := protected.Group("/billing")
	billing.GET("/subscription", h.Billing.Get)
	billing.POST("/checkout", owner, h.Billing.Checkout)
	billing.POST("/cancel", owner, h.Billing.Cancel)

	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "jobkaart/docs"
	"jobkaart/internal/auth/jwt"
	"jobkaart/internal/config"
	"jobkaart/internal/email/noop"
	"jobkaart/internal/email/ses"
	"jobkaart/internal/handler"
	"jobkaart/internal/idempotency/memory"
	redisstore "jobkaart/internal/idempotency/redis"
	"jobkaart/internal/logger"
	"jobkaart/internal/payfast"
	"jobkaart/internal/port"
	"jobkaart/internal/repository/postgres"
	"jobkaart/internal/router"
	"jobkaart/internal/service"
)

// @title			JobKaart API
// @version		1.0
// @description	Quotes, jobs and progressive invoicing for trade businesses.

// @BasePath	/api/v1

// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Bearer token authentication. Format: "Bearer {token}"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog := logger.New(&cfg.Log)
	defer func() { _ = zlog.Sync() }()

	if err := handler.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Initialize repositories
	tx := postgres.NewTransactor(db)
	tenantRepo := postgres.NewTenantRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	quoteRepo := postgres.NewQuoteRepo(db)
	jobRepo := postgres.NewJobRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	paymentRepo := postgres.NewPaymentRepo(db)
	usageRepo := postgres.NewUsageRepo(db)
	subscriptionRepo := postgres.NewSubscriptionRepo(db)

	checks := map[string]handler.Checker{
		"database": func(ctx context.Context) error { return postgres.Ping(ctx, db, 2*time.Second) },
	}

	// Initialize idempotency store
	var seen port.IdempotencyStore
	if cfg.Redis.Enabled {
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		seen = redisstore.NewStore(client)
		checks["redis"] = redisCheck(client)
	} else {
		zlog.Warn("redis disabled, payment notifications are de-duplicated in memory")
		seen = memory.NewStore()
	}

	// Initialize email sender
	var sender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = ses.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = noop.NewNoopSender(zlog)
	}

	settings := service.Settings{
		NumberAttempts:    cfg.Invoicing.NumberAttempts,
		NumberRetryDelay:  cfg.Invoicing.NumberRetryDelay,
		FullDueDays:       cfg.Invoicing.FullDueDays,
		DepositDueDays:    cfg.Invoicing.DepositDueDays,
		ProgressDueDays:   cfg.Invoicing.ProgressDueDays,
		BalanceDueDays:    cfg.Invoicing.BalanceDueDays,
		QuoteValidityDays: cfg.Invoicing.QuoteValidityDays,
		PaymentRetryLimit: cfg.Invoicing.PaymentRetryLimit,
		FrontendURL:       cfg.Email.FrontendURL,
	}

	// Initialize services
	usageSvc := service.NewUsageService(tenantRepo, usageRepo, cfg.FreeTier, time.Now)
	tenantSvc := service.NewTenantService(tenantRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	quoteSvc := service.NewQuoteService(service.QuoteServiceDeps{
		Quotes:    quoteRepo,
		Customers: customerRepo,
		Tenants:   tenantRepo,
		Usage:     usageSvc,
		Email:     sender,
		Settings:  settings,
		Logger:    zlog.Named("quotes"),
		Now:       time.Now,
	})
	jobSvc := service.NewJobService(service.JobServiceDeps{
		Tx:        tx,
		Jobs:      jobRepo,
		Quotes:    quoteRepo,
		Customers: customerRepo,
		Invoices:  invoiceRepo,
		Payments:  paymentRepo,
		Usage:     usageSvc,
		Logger:    zlog.Named("jobs"),
		Now:       time.Now,
	})
	invoiceSvc := service.NewInvoiceService(service.InvoiceServiceDeps{
		Tx:        tx,
		Invoices:  invoiceRepo,
		Payments:  paymentRepo,
		Jobs:      jobRepo,
		Quotes:    quoteRepo,
		Customers: customerRepo,
		Tenants:   tenantRepo,
		Usage:     usageSvc,
		Email:     sender,
		Settings:  settings,
		Logger:    zlog.Named("invoices"),
		Now:       time.Now,
	})
	subscriptionSvc := service.NewSubscriptionService(service.SubscriptionServiceDeps{
		Tx:             tx,
		Subscriptions:  subscriptionRepo,
		Tenants:        tenantRepo,
		Gateway:        payfast.NewClient(cfg.PayFast),
		Idempotency:    seen,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Logger:         zlog.Named("subscriptions"),
		Now:            time.Now,
	})

	// Initialize handlers
	handlers := router.Handlers{
		Health:   handler.NewHealthHandler(checks),
		Tenant:   handler.NewTenantHandler(tenantSvc, usageSvc),
		Customer: handler.NewCustomerHandler(customerSvc),
		Quote:    handler.NewQuoteHandler(quoteSvc),
		Job:      handler.NewJobHandler(jobSvc),
		Invoice:  handler.NewInvoiceHandler(invoiceSvc),
		Public:   handler.NewPublicHandler(quoteSvc, invoiceSvc),
		Billing:  handler.NewBillingHandler(subscriptionSvc),
	}

	// Setup router
	r := router.Setup(zlog, jwt.NewVerifier(cfg.Auth), cfg.CORS.AllowedOrigins, handlers)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	zlog.Info("server exited")
	return nil
}

func redisCheck(client *goredis.Client) handler.Checker {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

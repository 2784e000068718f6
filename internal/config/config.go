package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	Log       LogConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Email     EmailConfig
	FreeTier  FreeTierConfig
	Invoicing InvoicingConfig
	PayFast   PayFastConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpen         int           `mapstructure:"max_open"`
	MaxIdle         int           `mapstructure:"max_idle"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds settings for verifying session tokens from the hosted auth platform.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RedisConfig holds the idempotency cache settings.
type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// FreeTierConfig holds the monthly creation limits for tenants without a paid plan.
type FreeTierConfig struct {
	MonthlyQuotes   int `mapstructure:"monthly_quotes"`
	MonthlyJobs     int `mapstructure:"monthly_jobs"`
	MonthlyInvoices int `mapstructure:"monthly_invoices"`
}

// InvoicingConfig holds numbering and due-date defaults.
type InvoicingConfig struct {
	NumberAttempts    int           `mapstructure:"number_attempts"`
	NumberRetryDelay  time.Duration `mapstructure:"number_retry_delay"`
	FullDueDays       int           `mapstructure:"full_due_days"`
	DepositDueDays    int           `mapstructure:"deposit_due_days"`
	ProgressDueDays   int           `mapstructure:"progress_due_days"`
	BalanceDueDays    int           `mapstructure:"balance_due_days"`
	QuoteValidityDays int           `mapstructure:"quote_validity_days"`
	PaymentRetryLimit int           `mapstructure:"payment_retry_limit"`
}

// PayFastConfig holds subscription gateway settings.
type PayFastConfig struct {
	MerchantID  string `mapstructure:"merchant_id"`
	MerchantKey string `mapstructure:"merchant_key"`
	Passphrase  string `mapstructure:"passphrase"`
	Sandbox     bool   `mapstructure:"sandbox"`
	ReturnURL   string `mapstructure:"return_url"`
	CancelURL   string `mapstructure:"cancel_url"`
	NotifyURL   string `mapstructure:"notify_url"`
	PlanName    string `mapstructure:"plan_name"`
	PlanAmount  string `mapstructure:"plan_amount"`
	APIBaseURL  string `mapstructure:"api_base_url"`
}

// Load reads an optional .env file, then configuration from environment
// variables with the JOBKAART_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("JOBKAART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "jobkaart")
	v.SetDefault("db.password", "jobkaart_secret")
	v.SetDefault("db.name", "jobkaart_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "authenticated")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.idempotency_ttl", "72h")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "af-south-1")
	v.SetDefault("email.from_address", "noreply@jobkaart.co.za")
	v.SetDefault("email.from_name", "JobKaart")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Free tier defaults
	v.SetDefault("free_tier.monthly_quotes", 10)
	v.SetDefault("free_tier.monthly_jobs", 10)
	v.SetDefault("free_tier.monthly_invoices", 10)

	// Invoicing defaults
	v.SetDefault("invoicing.number_attempts", 5)
	v.SetDefault("invoicing.number_retry_delay", "50ms")
	v.SetDefault("invoicing.full_due_days", 30)
	v.SetDefault("invoicing.deposit_due_days", 7)
	v.SetDefault("invoicing.progress_due_days", 14)
	v.SetDefault("invoicing.balance_due_days", 14)
	v.SetDefault("invoicing.quote_validity_days", 30)
	v.SetDefault("invoicing.payment_retry_limit", 3)

	// PayFast defaults
	v.SetDefault("payfast.merchant_id", "10000100")
	v.SetDefault("payfast.merchant_key", "46f0cd694581a")
	v.SetDefault("payfast.passphrase", "")
	v.SetDefault("payfast.sandbox", true)
	v.SetDefault("payfast.return_url", "http://localhost:3000/billing/success")
	v.SetDefault("payfast.cancel_url", "http://localhost:3000/billing/cancelled")
	v.SetDefault("payfast.notify_url", "http://localhost:8080/api/v1/webhooks/payfast")
	v.SetDefault("payfast.plan_name", "JobKaart Pro")
	v.SetDefault("payfast.plan_amount", "299.00")
	v.SetDefault("payfast.api_base_url", "https://api.payfast.co.za")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "JOBKAART_SERVER_PORT",
		"server.read_timeout":           "JOBKAART_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "JOBKAART_SERVER_WRITE_TIMEOUT",
		"server.environment":            "JOBKAART_SERVER_ENVIRONMENT",
		"db.host":                       "JOBKAART_DB_HOST",
		"db.port":                       "JOBKAART_DB_PORT",
		"db.user":                       "JOBKAART_DB_USER",
		"db.password":                   "JOBKAART_DB_PASSWORD",
		"db.name":                       "JOBKAART_DB_NAME",
		"db.sslmode":                    "JOBKAART_DB_SSLMODE",
		"db.max_open":                   "JOBKAART_DB_MAX_OPEN",
		"db.max_idle":                   "JOBKAART_DB_MAX_IDLE",
		"db.conn_max_lifetime":          "JOBKAART_DB_CONN_MAX_LIFETIME",
		"auth.jwt_secret":               "JOBKAART_AUTH_JWT_SECRET",
		"auth.issuer":                   "JOBKAART_AUTH_ISSUER",
		"auth.audience":                 "JOBKAART_AUTH_AUDIENCE",
		"log.level":                     "JOBKAART_LOG_LEVEL",
		"log.format":                    "JOBKAART_LOG_FORMAT",
		"cors.allowed_origins":          "JOBKAART_CORS_ALLOWED_ORIGINS",
		"redis.enabled":                 "JOBKAART_REDIS_ENABLED",
		"redis.addr":                    "JOBKAART_REDIS_ADDR",
		"redis.password":                "JOBKAART_REDIS_PASSWORD",
		"redis.db":                      "JOBKAART_REDIS_DB",
		"redis.idempotency_ttl":         "JOBKAART_REDIS_IDEMPOTENCY_TTL",
		"email.provider":                "JOBKAART_EMAIL_PROVIDER",
		"email.region":                  "JOBKAART_EMAIL_REGION",
		"email.from_address":            "JOBKAART_EMAIL_FROM_ADDRESS",
		"email.from_name":               "JOBKAART_EMAIL_FROM_NAME",
		"email.frontend_url":            "JOBKAART_EMAIL_FRONTEND_URL",
		"free_tier.monthly_quotes":      "JOBKAART_FREE_TIER_MONTHLY_QUOTES",
		"free_tier.monthly_jobs":        "JOBKAART_FREE_TIER_MONTHLY_JOBS",
		"free_tier.monthly_invoices":    "JOBKAART_FREE_TIER_MONTHLY_INVOICES",
		"invoicing.number_attempts":     "JOBKAART_INVOICING_NUMBER_ATTEMPTS",
		"invoicing.number_retry_delay":  "JOBKAART_INVOICING_NUMBER_RETRY_DELAY",
		"invoicing.full_due_days":       "JOBKAART_INVOICING_FULL_DUE_DAYS",
		"invoicing.deposit_due_days":    "JOBKAART_INVOICING_DEPOSIT_DUE_DAYS",
		"invoicing.progress_due_days":   "JOBKAART_INVOICING_PROGRESS_DUE_DAYS",
		"invoicing.balance_due_days":    "JOBKAART_INVOICING_BALANCE_DUE_DAYS",
		"invoicing.quote_validity_days": "JOBKAART_INVOICING_QUOTE_VALIDITY_DAYS",
		"invoicing.payment_retry_limit": "JOBKAART_INVOICING_PAYMENT_RETRY_LIMIT",
		"payfast.merchant_id":           "JOBKAART_PAYFAST_MERCHANT_ID",
		"payfast.merchant_key":          "JOBKAART_PAYFAST_MERCHANT_KEY",
		"payfast.passphrase":            "JOBKAART_PAYFAST_PASSPHRASE",
		"payfast.sandbox":               "JOBKAART_PAYFAST_SANDBOX",
		"payfast.return_url":            "JOBKAART_PAYFAST_RETURN_URL",
		"payfast.cancel_url":            "JOBKAART_PAYFAST_CANCEL_URL",
		"payfast.notify_url":            "JOBKAART_PAYFAST_NOTIFY_URL",
		"payfast.plan_name":             "JOBKAART_PAYFAST_PLAN_NAME",
		"payfast.plan_amount":           "JOBKAART_PAYFAST_PLAN_AMOUNT",
		"payfast.api_base_url":          "JOBKAART_PAYFAST_API_BASE_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if JOBKAART_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("JOBKAART_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:            v.GetString("db.host"),
		Port:            v.GetInt("db.port"),
		User:            v.GetString("db.user"),
		Password:        v.GetString("db.password"),
		Name:            v.GetString("db.name"),
		SSLMode:         v.GetString("db.sslmode"),
		MaxOpen:         v.GetInt("db.max_open"),
		MaxIdle:         v.GetInt("db.max_idle"),
		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
		Audience:  v.GetString("auth.audience"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Redis = RedisConfig{
		Enabled:        v.GetBool("redis.enabled"),
		Addr:           v.GetString("redis.addr"),
		Password:       v.GetString("redis.password"),
		DB:             v.GetInt("redis.db"),
		IdempotencyTTL: v.GetDuration("redis.idempotency_ttl"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.FreeTier = FreeTierConfig{
		MonthlyQuotes:   v.GetInt("free_tier.monthly_quotes"),
		MonthlyJobs:     v.GetInt("free_tier.monthly_jobs"),
		MonthlyInvoices: v.GetInt("free_tier.monthly_invoices"),
	}
	cfg.Invoicing = InvoicingConfig{
		NumberAttempts:    v.GetInt("invoicing.number_attempts"),
		NumberRetryDelay:  v.GetDuration("invoicing.number_retry_delay"),
		FullDueDays:       v.GetInt("invoicing.full_due_days"),
		DepositDueDays:    v.GetInt("invoicing.deposit_due_days"),
		ProgressDueDays:   v.GetInt("invoicing.progress_due_days"),
		BalanceDueDays:    v.GetInt("invoicing.balance_due_days"),
		QuoteValidityDays: v.GetInt("invoicing.quote_validity_days"),
		PaymentRetryLimit: v.GetInt("invoicing.payment_retry_limit"),
	}
	cfg.PayFast = PayFastConfig{
		MerchantID:  v.GetString("payfast.merchant_id"),
		MerchantKey: v.GetString("payfast.merchant_key"),
		Passphrase:  v.GetString("payfast.passphrase"),
		Sandbox:     v.GetBool("payfast.sandbox"),
		ReturnURL:   v.GetString("payfast.return_url"),
		CancelURL:   v.GetString("payfast.cancel_url"),
		NotifyURL:   v.GetString("payfast.notify_url"),
		PlanName:    v.GetString("payfast.plan_name"),
		PlanAmount:  v.GetString("payfast.plan_amount"),
		APIBaseURL:  v.GetString("payfast.api_base_url"),
	}

	if cfg.Server.IsProduction() && cfg.Auth.JWTSecret == "change-me-in-production" {
		return nil, fmt.Errorf("JOBKAART_AUTH_JWT_SECRET must be set in production")
	}
	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

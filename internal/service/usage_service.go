package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobkaart/internal/config"
	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// UsageItem is one resource's consumption for the current month.
type UsageItem struct {
	Resource domain.UsageResource `json:"resource"`
	Used     int                  `json:"used"`
	Limit    int                  `json:"limit"`
}

// UsageReport summarises a tenant's monthly usage against the free tier.
type UsageReport struct {
	Plan        domain.TenantPlan `json:"plan"`
	Unlimited   bool              `json:"unlimited"`
	PeriodStart time.Time         `json:"period_start"`
	Items       []UsageItem       `json:"items"`
}

// UsageService gates record creation on the free tier and reports usage.
type UsageService interface {
	// Check returns a quota error when the tenant has used up resource this month.
	Check(ctx context.Context, tenantID uuid.UUID, resource domain.UsageResource) error
	GetUsage(ctx context.Context, tenantID uuid.UUID) (*UsageReport, error)
}

var usageResources = []domain.UsageResource{
	domain.UsageQuotes,
	domain.UsageJobs,
	domain.UsageInvoices,
}

type usageService struct {
	tenants port.TenantRepository
	usage   port.UsageRepository
	limits  map[domain.UsageResource]int
	now     func() time.Time
}

// NewUsageService creates a new UsageService implementation.
func NewUsageService(tenants port.TenantRepository, usage port.UsageRepository, cfg config.FreeTierConfig,
	now func() time.Time) UsageService {
	if now == nil {
		now = time.Now
	}
	return &usageService{
		tenants: tenants,
		usage:   usage,
		limits: map[domain.UsageResource]int{
			domain.UsageQuotes:   cfg.MonthlyQuotes,
			domain.UsageJobs:     cfg.MonthlyJobs,
			domain.UsageInvoices: cfg.MonthlyInvoices,
		},
		now: now,
	}
}

func (s *usageService) Check(ctx context.Context, tenantID uuid.UUID, resource domain.UsageResource) error {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant.HasPaidPlan() {
		return nil
	}
	limit := s.limits[resource]
	if limit <= 0 {
		return nil
	}
	used, err := s.usage.CountCreatedSince(ctx, tenantID, resource, domain.StartOfMonth(s.now()))
	if err != nil {
		return err
	}
	if used >= limit {
		return domain.NewBusinessError(domain.ErrQuotaExceeded,
			"the free plan allows %d %s per month and %d have been created; upgrade to create more",
			limit, resource, used)
	}
	return nil
}

func (s *usageService) GetUsage(ctx context.Context, tenantID uuid.UUID) (*UsageReport, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	since := domain.StartOfMonth(s.now())
	report := &UsageReport{
		Plan:        tenant.Plan,
		Unlimited:   tenant.HasPaidPlan(),
		PeriodStart: since,
		Items:       make([]UsageItem, 0, len(usageResources)),
	}
	for _, resource := range usageResources {
		used, err := s.usage.CountCreatedSince(ctx, tenantID, resource, since)
		if err != nil {
			return nil, err
		}
		report.Items = append(report.Items, UsageItem{Resource: resource, Used: used, Limit: s.limits[resource]})
	}
	return report, nil
}

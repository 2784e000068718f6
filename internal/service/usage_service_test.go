package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/config"
	"jobkaart/internal/domain"
	"jobkaart/internal/service"
	"jobkaart/mocks"
)

var freeTier = config.FreeTierConfig{MonthlyQuotes: 10, MonthlyJobs: 10, MonthlyInvoices: 5}

func TestUsageService_Check(t *testing.T) {
	tenantID := uuid.New()
	monthStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		tenant *domain.Tenant
		used   int
		want   error
	}{
		{"under limit", &domain.Tenant{ID: tenantID, Plan: domain.PlanFree}, 4, nil},
		{"at limit", &domain.Tenant{ID: tenantID, Plan: domain.PlanFree}, 5, domain.ErrQuotaExceeded},
		{"paid plan", &domain.Tenant{ID: tenantID, Plan: domain.PlanPro, SubscriptionStatus: domain.SubscriptionActive}, 500, nil},
		{"lapsed paid plan", &domain.Tenant{ID: tenantID, Plan: domain.PlanPro, SubscriptionStatus: domain.SubscriptionPastDue}, 5, domain.ErrQuotaExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenants := new(mocks.MockTenantRepo)
			usage := new(mocks.MockUsageRepo)
			tenants.On("GetByID", mock.Anything, tenantID).Return(tt.tenant, nil)
			usage.On("CountCreatedSince", mock.Anything, tenantID, domain.UsageInvoices, monthStart).Return(tt.used, nil).Maybe()

			svc := service.NewUsageService(tenants, usage, freeTier, func() time.Time { return testNow })
			err := svc.Check(context.Background(), tenantID, domain.UsageInvoices)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestUsageService_Check_ZeroLimitIsUnlimited(t *testing.T) {
	tenantID := uuid.New()
	tenants := new(mocks.MockTenantRepo)
	usage := new(mocks.MockUsageRepo)
	tenants.On("GetByID", mock.Anything, tenantID).Return(&domain.Tenant{ID: tenantID, Plan: domain.PlanFree}, nil)

	svc := service.NewUsageService(tenants, usage, config.FreeTierConfig{}, nil)
	require.NoError(t, svc.Check(context.Background(), tenantID, domain.UsageQuotes))
	usage.AssertNotCalled(t, "CountCreatedSince", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUsageService_GetUsage(t *testing.T) {
	tenantID := uuid.New()
	tenants := new(mocks.MockTenantRepo)
	usage := new(mocks.MockUsageRepo)
	tenants.On("GetByID", mock.Anything, tenantID).Return(&domain.Tenant{ID: tenantID, Plan: domain.PlanFree}, nil)
	usage.On("CountCreatedSince", mock.Anything, tenantID, domain.UsageQuotes, mock.Anything).Return(3, nil)
	usage.On("CountCreatedSince", mock.Anything, tenantID, domain.UsageJobs, mock.Anything).Return(2, nil)
	usage.On("CountCreatedSince", mock.Anything, tenantID, domain.UsageInvoices, mock.Anything).Return(1, nil)

	svc := service.NewUsageService(tenants, usage, freeTier, func() time.Time { return testNow })
	report, err := svc.GetUsage(context.Background(), tenantID)
	require.NoError(t, err)
	assert.False(t, report.Unlimited)
	assert.Equal(t, "2026-03-01", report.PeriodStart.Format("2006-01-02"))
	require.Len(t, report.Items, 3)
	assert.Equal(t, service.UsageItem{Resource: domain.UsageInvoices, Used: 1, Limit: 5}, report.Items[2])
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
	"jobkaart/internal/service"
)

// MockUsageService is a mock implementation of service.UsageService.
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Check(ctx context.Context, tenantID uuid.UUID, resource domain.UsageResource) error {
	args := m.Called(ctx, tenantID, resource)
	return args.Error(0)
}

func (m *MockUsageService) GetUsage(ctx context.Context, tenantID uuid.UUID) (*service.UsageReport, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UsageReport), args.Error(1)
}

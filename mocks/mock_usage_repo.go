package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
)

// MockUsageRepo is a mock implementation of port.UsageRepository.
type MockUsageRepo struct {
	mock.Mock
}

func (m *MockUsageRepo) CountCreatedSince(ctx context.Context, tenantID uuid.UUID, resource domain.UsageResource, since time.Time) (int, error) {
	args := m.Called(ctx, tenantID, resource, since)
	return args.Int(0), args.Error(1)
}

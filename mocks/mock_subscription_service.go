package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// MockSubscriptionService is a mock implementation of service.SubscriptionService.
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Checkout(ctx context.Context, tenantID uuid.UUID, email string) (*port.CheckoutSession, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CheckoutSession), args.Error(1)
}

func (m *MockSubscriptionService) HandleNotification(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Get(ctx context.Context, tenantID uuid.UUID) (*domain.Subscription, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jobkaart/internal/port"
)

// MockSubscriptionGateway is a mock implementation of port.SubscriptionGateway.
type MockSubscriptionGateway struct {
	mock.Mock
}

func (m *MockSubscriptionGateway) Checkout(req port.CheckoutRequest) (*port.CheckoutSession, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CheckoutSession), args.Error(1)
}

func (m *MockSubscriptionGateway) ParseNotification(body []byte) (*port.GatewayNotification, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.GatewayNotification), args.Error(1)
}

func (m *MockSubscriptionGateway) Cancel(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
)

// MockQuoteService is a mock implementation of service.QuoteService.
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Create(ctx context.Context, tenantID uuid.UUID, input *service.QuoteInput) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) GetByID(ctx context.Context, tenantID uuid.UUID, quoteID uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) List(ctx context.Context, tenantID uuid.UUID, filter port.QuoteFilter, offset int, limit int) ([]domain.Quote, int, error) {
	args := m.Called(ctx, tenantID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Quote), args.Int(1), args.Error(2)
}

func (m *MockQuoteService) Update(ctx context.Context, tenantID uuid.UUID, quoteID uuid.UUID, input *service.QuoteInput) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, quoteID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Delete(ctx context.Context, tenantID uuid.UUID, quoteID uuid.UUID) error {
	args := m.Called(ctx, tenantID, quoteID)
	return args.Error(0)
}

func (m *MockQuoteService) Send(ctx context.Context, tenantID uuid.UUID, quoteID uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Accept(ctx context.Context, tenantID uuid.UUID, quoteID uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) Reject(ctx context.Context, tenantID uuid.UUID, quoteID uuid.UUID) (*domain.Quote, error) {
	args := m.Called(ctx, tenantID, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) GetPublic(ctx context.Context, token uuid.UUID) (*service.PublicQuote, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicQuote), args.Error(1)
}

func (m *MockQuoteService) AcceptPublic(ctx context.Context, token uuid.UUID) (*service.PublicQuote, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicQuote), args.Error(1)
}

func (m *MockQuoteService) RejectPublic(ctx context.Context, token uuid.UUID) (*service.PublicQuote, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicQuote), args.Error(1)
}

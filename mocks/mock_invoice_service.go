package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
	"jobkaart/internal/export"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, tenantID uuid.UUID, input *service.InvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, tenantID uuid.UUID, invoiceID uuid.UUID) (*service.InvoiceDetail, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceDetail), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, offset int, limit int) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, tenantID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, tenantID uuid.UUID, invoiceID uuid.UUID, input *service.InvoiceInput) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Send(ctx context.Context, tenantID uuid.UUID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) GetPublic(ctx context.Context, token uuid.UUID) (*service.PublicInvoice, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicInvoice), args.Error(1)
}

func (m *MockInvoiceService) Export(ctx context.Context, tenantID uuid.UUID, filter port.InvoiceFilter, format export.Format, w io.Writer) error {
	args := m.Called(ctx, tenantID, filter, format, w)
	return args.Error(0)
}

func (m *MockInvoiceService) CreateDeposit(ctx context.Context, tenantID uuid.UUID, input *service.DepositInput) (*service.StagedInvoice, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StagedInvoice), args.Error(1)
}

func (m *MockInvoiceService) CreateProgress(ctx context.Context, tenantID uuid.UUID, input *service.ProgressInput) (*service.StagedInvoice, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StagedInvoice), args.Error(1)
}

func (m *MockInvoiceService) CreateBalance(ctx context.Context, tenantID uuid.UUID, input *service.BalanceInput) (*service.BalanceInvoice, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BalanceInvoice), args.Error(1)
}

func (m *MockInvoiceService) RecordPayment(ctx context.Context, tenantID uuid.UUID, invoiceID uuid.UUID, input *service.RecordPaymentInput) (*service.PaymentReceipt, error) {
	args := m.Called(ctx, tenantID, invoiceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentReceipt), args.Error(1)
}

func (m *MockInvoiceService) ListPayments(ctx context.Context, tenantID uuid.UUID, invoiceID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, tenantID uuid.UUID, invoiceID uuid.UUID, force bool) error {
	args := m.Called(ctx, tenantID, invoiceID, force)
	return args.Error(0)
}

package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
	"jobkaart/internal/service"
)

// MockJobService is a mock implementation of service.JobService.
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Create(ctx context.Context, tenantID uuid.UUID, input *service.CreateJobInput) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) GetByID(ctx context.Context, tenantID uuid.UUID, jobID uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) List(ctx context.Context, tenantID uuid.UUID, filter port.JobFilter, offset int, limit int) ([]domain.Job, int, error) {
	args := m.Called(ctx, tenantID, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Int(1), args.Error(2)
}

func (m *MockJobService) UpdateStatus(ctx context.Context, tenantID uuid.UUID, jobID uuid.UUID, input *service.UpdateJobStatusInput) (*domain.Job, error) {
	args := m.Called(ctx, tenantID, jobID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) Delete(ctx context.Context, tenantID uuid.UUID, jobID uuid.UUID) error {
	args := m.Called(ctx, tenantID, jobID)
	return args.Error(0)
}

func (m *MockJobService) BillingSummary(ctx context.Context, tenantID uuid.UUID, jobID uuid.UUID) (*service.JobBillingSummary, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.JobBillingSummary), args.Error(1)
}

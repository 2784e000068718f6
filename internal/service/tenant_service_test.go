package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
	"jobkaart/internal/service"
	"jobkaart/mocks"
)

func TestTenantService_Update(t *testing.T) {
	tenantID := uuid.New()
	repo := new(mocks.MockTenantRepo)
	repo.On("GetByID", mock.Anything, tenantID).Return(&domain.Tenant{ID: tenantID, Name: "Old Name"}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(t *domain.Tenant) bool {
		return t.Name == "New Name" && t.VATRegistered && t.VATRate.Equal(decimal.NewFromInt(15))
	})).Return(nil)

	name, registered, rate := "  New Name ", true, decimal.NewFromInt(15)
	tenant, err := service.NewTenantService(repo).Update(context.Background(), tenantID, &service.UpdateTenantInput{
		Name: &name, VATRegistered: &registered, VATRate: &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", tenant.Name)
	repo.AssertExpectations(t)
}

func TestTenantService_Update_Invalid(t *testing.T) {
	tenantID := uuid.New()
	repo := new(mocks.MockTenantRepo)
	repo.On("GetByID", mock.Anything, tenantID).Return(&domain.Tenant{ID: tenantID, Name: "Name"}, nil)
	svc := service.NewTenantService(repo)

	empty := " "
	_, err := svc.Update(context.Background(), tenantID, &service.UpdateTenantInput{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrValidation)

	rate := decimal.NewFromInt(101)
	_, err = svc.Update(context.Background(), tenantID, &service.UpdateTenantInput{VATRate: &rate})
	assert.ErrorIs(t, err, domain.ErrInvalidVATRate)

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

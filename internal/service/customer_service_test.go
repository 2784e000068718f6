package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobkaart/internal/domain"
	"jobkaart/internal/service"
	"jobkaart/mocks"
)

func TestCustomerService_Create(t *testing.T) {
	tenantID := uuid.New()
	repo := new(mocks.MockCustomerRepo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.TenantID == tenantID && c.Name == "Naledi Khumalo" && c.Phone == "0821234567"
	})).Return(nil)

	customer, err := service.NewCustomerService(repo).Create(context.Background(), tenantID, &service.CustomerInput{
		Name: " Naledi Khumalo ", Phone: "0821234567 ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Naledi Khumalo", customer.Name)
	repo.AssertExpectations(t)
}

func TestCustomerService_Create_NameRequired(t *testing.T) {
	repo := new(mocks.MockCustomerRepo)
	_, err := service.NewCustomerService(repo).Create(context.Background(), uuid.New(), &service.CustomerInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCustomerService_Delete(t *testing.T) {
	tenantID, customerID := uuid.New(), uuid.New()

	t.Run("unreferenced", func(t *testing.T) {
		repo := new(mocks.MockCustomerRepo)
		repo.On("GetByID", mock.Anything, tenantID, customerID).Return(&domain.Customer{ID: customerID, Name: "A"}, nil)
		repo.On("IsReferenced", mock.Anything, tenantID, customerID).Return(false, nil)
		repo.On("Delete", mock.Anything, tenantID, customerID).Return(nil)

		require.NoError(t, service.NewCustomerService(repo).Delete(context.Background(), tenantID, customerID))
		repo.AssertExpectations(t)
	})

	t.Run("in use", func(t *testing.T) {
		repo := new(mocks.MockCustomerRepo)
		repo.On("GetByID", mock.Anything, tenantID, customerID).Return(&domain.Customer{ID: customerID, Name: "A"}, nil)
		repo.On("IsReferenced", mock.Anything, tenantID, customerID).Return(true, nil)

		err := service.NewCustomerService(repo).Delete(context.Background(), tenantID, customerID)
		assert.ErrorIs(t, err, domain.ErrCustomerInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

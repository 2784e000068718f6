package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// CustomerInput is the DTO for creating or replacing a customer.
type CustomerInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerService defines the customer management contract.
type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input *CustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, tenantID, customerID uuid.UUID, input *CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, tenantID, customerID uuid.UUID) error
}

type customerService struct {
	repo port.CustomerRepository
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(repo port.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, input *CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{TenantID: tenantID}
	if err := applyCustomerInput(customer, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, tenantID, customerID)
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	return s.repo.List(ctx, tenantID, strings.TrimSpace(search), offset, limit)
}

func (s *customerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, input *CustomerInput) (*domain.Customer, error) {
	customer, err := s.repo.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if err := applyCustomerInput(customer, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.repo.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	referenced, err := s.repo.IsReferenced(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if referenced {
		return domain.NewBusinessError(domain.ErrCustomerInUse,
			"customer %s has quotes, jobs or invoices and cannot be deleted", customer.Name)
	}
	return s.repo.Delete(ctx, tenantID, customerID)
}

func applyCustomerInput(c *domain.Customer, input *CustomerInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.NewBusinessError(domain.ErrValidation, "customer name is required")
	}
	c.Name = name
	c.Email = strings.TrimSpace(input.Email)
	c.Phone = strings.TrimSpace(input.Phone)
	c.Address = strings.TrimSpace(input.Address)
	return nil
}

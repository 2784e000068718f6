package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

// UpdateTenantInput is the DTO for updating tenant settings. Nil fields are left unchanged.
type UpdateTenantInput struct {
	Name          *string          `json:"name"`
	Email         *string          `json:"email" binding:"omitempty,email"`
	Phone         *string          `json:"phone"`
	VATRegistered *bool            `json:"vat_registered"`
	VATNumber     *string          `json:"vat_number"`
	VATRate       *decimal.Decimal `json:"vat_rate" swaggertype:"number"`
}

// TenantService defines the tenant settings contract.
type TenantService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error)
	Update(ctx context.Context, tenantID uuid.UUID, input *UpdateTenantInput) (*domain.Tenant, error)
}

type tenantService struct {
	repo port.TenantRepository
}

// NewTenantService creates a new TenantService implementation.
func NewTenantService(repo port.TenantRepository) TenantService {
	return &tenantService{repo: repo}
}

func (s *tenantService) Get(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

func (s *tenantService) Update(ctx context.Context, tenantID uuid.UUID, input *UpdateTenantInput) (*domain.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewBusinessError(domain.ErrValidation, "business name cannot be empty")
		}
		tenant.Name = name
	}
	if input.Email != nil {
		tenant.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		tenant.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.VATRegistered != nil {
		tenant.VATRegistered = *input.VATRegistered
	}
	if input.VATNumber != nil {
		tenant.VATNumber = strings.TrimSpace(*input.VATNumber)
	}
	if input.VATRate != nil {
		if input.VATRate.IsNegative() || input.VATRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, domain.ErrInvalidVATRate
		}
		tenant.VATRate = *input.VATRate
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

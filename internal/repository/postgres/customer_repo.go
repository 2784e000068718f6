package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"jobkaart/internal/domain"
	"jobkaart/internal/port"
)

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	customer.ID = uuid.New()
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `INSERT INTO customers (id, tenant_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		customer.ID, customer.TenantID, customer.Name, customer.Email,
		customer.Phone, customer.Address, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := conn(ctx, r.db).GetContext(ctx, &customer,
		"SELECT * FROM customers WHERE id = $1 AND tenant_id = $2", customerID, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, search string, offset, limit int) ([]domain.Customer, int, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+s+"%")
		where += " AND (name ILIKE $2 OR email ILIKE $2)"
	}

	var total int
	err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM customers "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT * FROM customers %s ORDER BY name ASC LIMIT $%d OFFSET $%d", where, n+1, n+2)
	args = append(args, limit, offset)

	var customers []domain.Customer
	if err := conn(ctx, r.db).SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	query := `UPDATE customers SET name = $1, email = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $6 AND tenant_id = $7`
	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		customer.Name, customer.Email, customer.Phone, customer.Address,
		customer.UpdatedAt, customer.ID, customer.TenantID)
	if err != nil {
		return fmt.Errorf("customerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"DELETE FROM customers WHERE id = $1 AND tenant_id = $2", customerID, tenantID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCustomerInUse
		}
		return fmt.Errorf("customerRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *customerRepo) IsReferenced(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM quotes WHERE tenant_id = $1 AND customer_id = $2)
		OR EXISTS (SELECT 1 FROM jobs WHERE tenant_id = $1 AND customer_id = $2)
		OR EXISTS (SELECT 1 FROM invoices WHERE tenant_id = $1 AND customer_id = $2)`
	var referenced bool
	if err := conn(ctx, r.db).GetContext(ctx, &referenced, query, tenantID, customerID); err != nil {
		return false, fmt.Errorf("customerRepo.IsReferenced: %w", err)
	}
	return referenced, nil
}

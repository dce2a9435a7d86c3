package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type customerService struct {
	pool *pgxpool.Pool
}

// NewCustomerService constructs a CustomerService backed by PostgreSQL.
func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

const customerColumns = "id, name, cpf, phone, email, address, credit_limit, points_balance, status, created_at, updated_at"

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.CPF, &c.Phone, &c.Email, &c.Address,
		&c.CreditLimit, &c.PointsBalance, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *customerService) Create(ctx context.Context, input CustomerInput) (*Customer, error) {
	if input.Name == "" {
		return nil, validationf("customer name is required")
	}
	if input.CreditLimit.IsNegative() {
		return nil, validationf("credit limit cannot be negative")
	}

	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, cpf, phone, email, address, credit_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+customerColumns,
		input.Name, input.CPF, input.Phone, input.Email, input.Address, input.CreditLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, id int) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch customer %d: %w", id, err)
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context, search string) ([]Customer, error) {
	query := "SELECT " + customerColumns + " FROM customers"
	args := []any{}
	if search != "" {
		query += " WHERE name ILIKE $1 OR cpf ILIKE $1"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CPF, &c.Phone, &c.Email, &c.Address,
			&c.CreditLimit, &c.PointsBalance, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (s *customerService) Update(ctx context.Context, id int, patch CustomerPatch) (*Customer, error) {
	if patch.CreditLimit != nil && patch.CreditLimit.IsNegative() {
		return nil, validationf("credit limit cannot be negative")
	}
	if patch.PointsBalance != nil && *patch.PointsBalance < 0 {
		return nil, validationf("points balance cannot be negative")
	}

	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		UPDATE customers SET
			name           = COALESCE($2, name),
			cpf            = COALESCE($3, cpf),
			phone          = COALESCE($4, phone),
			email          = COALESCE($5, email),
			address        = COALESCE($6, address),
			credit_limit   = COALESCE($7, credit_limit),
			points_balance = COALESCE($8, points_balance),
			updated_at     = NOW()
		WHERE id = $1
		RETURNING `+customerColumns,
		id, patch.Name, patch.CPF, patch.Phone, patch.Email, patch.Address,
		patch.CreditLimit, patch.PointsBalance))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return c, nil
}

func (s *customerService) SetStatus(ctx context.Context, id int, status string) (*Customer, error) {
	if status != CustomerActive && status != CustomerBlocked {
		return nil, validationf("invalid customer status %q", status)
	}

	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		UPDATE customers SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+customerColumns, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to set status for customer %d: %w", id, err)
	}
	return c, nil
}

func (s *customerService) ResetAllPoints(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers SET points_balance = 0, updated_at = NOW()
		WHERE points_balance <> 0
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset points: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

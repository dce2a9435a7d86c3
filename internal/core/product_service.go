package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productService struct {
	pool *pgxpool.Pool
}

// NewProductService constructs a ProductService backed by PostgreSQL.
func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = "id, code, name, description, unit_price, stock_quantity, ncm, is_active, created_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
		&p.StockQuantity, &p.NCM, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*Product, error) {
	if input.Code == "" || input.Name == "" {
		return nil, validationf("product code and name are required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, validationf("unit price cannot be negative")
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, description, unit_price, stock_quantity, ncm)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		input.Code, input.Name, input.Description, input.UnitPrice,
		input.StockQuantity, input.NCM))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) Get(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return p, nil
}

func (s *productService) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.UnitPrice,
			&p.StockQuantity, &p.NCM, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *productService) Update(ctx context.Context, id int, patch ProductPatch) (*Product, error) {
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return nil, validationf("unit price cannot be negative")
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products SET
			name           = COALESCE($2, name),
			description    = COALESCE($3, description),
			unit_price     = COALESCE($4, unit_price),
			stock_quantity = COALESCE($5, stock_quantity),
			ncm            = COALESCE($6, ncm),
			is_active      = COALESCE($7, is_active)
		WHERE id = $1
		RETURNING `+productColumns,
		id, patch.Name, patch.Description, patch.UnitPrice, patch.StockQuantity,
		patch.NCM, patch.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return p, nil
}

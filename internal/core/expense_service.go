package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type expenseService struct {
	pool *pgxpool.Pool
}

// NewExpenseService constructs an ExpenseService backed by PostgreSQL.
func NewExpenseService(pool *pgxpool.Pool) ExpenseService {
	return &expenseService{pool: pool}
}

func (s *expenseService) Create(ctx context.Context, input ExpenseInput) (*Expense, error) {
	if input.Description == "" {
		return nil, validationf("expense description is required")
	}
	if input.Amount.IsNegative() {
		return nil, validationf("expense amount cannot be negative")
	}
	if input.ExpenseDate.IsZero() {
		return nil, validationf("expense date is required")
	}

	var e Expense
	err := s.pool.QueryRow(ctx, `
		INSERT INTO expenses (description, category, amount, expense_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, description, category, amount, expense_date, created_at
	`, input.Description, input.Category, input.Amount, input.ExpenseDate).Scan(
		&e.ID, &e.Description, &e.Category, &e.Amount, &e.ExpenseDate, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return &e, nil
}

func (s *expenseService) ListMonth(ctx context.Context, year int, month time.Month) ([]Expense, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.pool.Query(ctx, `
		SELECT id, description, category, amount, expense_date, created_at
		FROM expenses
		WHERE expense_date >= $1 AND expense_date < $2
		ORDER BY expense_date DESC, id DESC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Category, &e.Amount,
			&e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (s *expenseService) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete expense %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	return nil
}

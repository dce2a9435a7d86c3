package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost entry, reported against revenue in the
// daily and monthly summaries.
type Expense struct {
	ID          int             `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ExpenseInput holds the fields required to create an expense.
type ExpenseInput struct {
	Description string
	Category    string
	Amount      decimal.Decimal
	ExpenseDate time.Time
}

// ExpenseService provides expense tracking operations.
type ExpenseService interface {
	Create(ctx context.Context, input ExpenseInput) (*Expense, error)
	// ListMonth returns expenses within the given month, newest first.
	ListMonth(ctx context.Context, year int, month time.Month) ([]Expense, error)
	Delete(ctx context.Context, id int) error
}

package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Customer statuses. A blocked customer can still buy with cash-equivalent
// methods but is never offered crediário.
const (
	CustomerActive  = "active"
	CustomerBlocked = "blocked"
)

// Customer is a crediário account holder. CreditLimit is the remaining
// ceiling on financed principal (debited at every crediário sale, credited
// back by manual adjustment); PointsBalance is the loyalty balance.
type Customer struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	CPF           string          `json:"cpf"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	PointsBalance int             `json:"points_balance"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomerInput holds the fields required to create a customer.
type CustomerInput struct {
	Name        string
	CPF         string
	Phone       string
	Email       string
	Address     string
	CreditLimit decimal.Decimal
}

// CustomerPatch is a partial update; nil fields are left untouched.
type CustomerPatch struct {
	Name          *string
	CPF           *string
	Phone         *string
	Email         *string
	Address       *string
	CreditLimit   *decimal.Decimal
	PointsBalance *int
}

// CustomerService provides customer master data operations.
type CustomerService interface {
	Create(ctx context.Context, input CustomerInput) (*Customer, error)

	Get(ctx context.Context, id int) (*Customer, error)

	// List returns customers ordered by name. search, when non-empty,
	// filters by name or CPF substring.
	List(ctx context.Context, search string) ([]Customer, error)

	// Update applies the non-nil fields of patch and returns the new record.
	Update(ctx context.Context, id int, patch CustomerPatch) (*Customer, error)

	// SetStatus switches a customer between active and blocked.
	SetStatus(ctx context.Context, id int, status string) (*Customer, error)

	// ResetAllPoints zeroes every customer's points balance and returns the
	// number of customers affected.
	ResetAllPoints(ctx context.Context) (int, error)
}

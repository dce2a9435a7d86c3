package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

// CheckoutRequest is the input for finalizing a sale.
type CheckoutRequest struct {
	CustomerID     *int
	PaymentMethod  string
	Items          []CartLineInput
	PointsToRedeem int
	DownPayment    decimal.Decimal

	// Crediário only.
	Installments int
	FirstDueDate time.Time
	// EditedPlan, when non-empty, replaces the generated schedule and is
	// revalidated at commit time.
	EditedPlan []core.InstallmentDraft

	// OverridePassword authorizes an over-limit sale when the caller's own
	// role does not. OverrideApproved is set by the web adapter for
	// admin/manager callers; it never comes from the request body.
	OverridePassword string
	OverrideApproved bool

	CreatedBy *int
}

// CartLineInput is a single line within a CheckoutRequest.
type CartLineInput struct {
	ProductID *int
	Name      string          // ad-hoc line name when ProductID is nil
	UnitPrice decimal.Decimal // zero with ProductID set means "use catalog price"
	Quantity  int
}

// PreviewPlanRequest prices a cart without persisting anything.
type PreviewPlanRequest struct {
	CustomerID     *int
	Subtotal       decimal.Decimal
	PointsToRedeem int
	DownPayment    decimal.Decimal
	Installments   int
	FirstDueDate   time.Time
}

// CreateCustomerRequest is the input for creating a customer.
type CreateCustomerRequest struct {
	Name        string
	CPF         string
	Phone       string
	Email       string
	Address     string
	CreditLimit decimal.Decimal
}

// CreateProductRequest is the input for creating a product.
type CreateProductRequest struct {
	Code          string
	Name          string
	Description   string
	UnitPrice     decimal.Decimal
	StockQuantity int
	NCM           string
}

// CreateExpenseRequest is the input for recording an expense.
type CreateExpenseRequest struct {
	Description string
	Category    string
	Amount      decimal.Decimal
	ExpenseDate time.Time
}

package app

import (
	"context"
	"time"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

// UserSession identifies an authenticated user for the web adapter.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ApplicationService is the single interface all adapters call. It
// decouples presentation from business logic; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// GetUser returns a user's profile by ID.
	GetUser(ctx context.Context, userID int) (*core.User, error)

	// Checkout finalizes a sale atomically: pricing, installment plan,
	// credit-limit enforcement, and balance updates in one transaction.
	Checkout(ctx context.Context, req CheckoutRequest) (*SaleResult, error)

	// PreviewPlan prices a cart and returns the installment drafts that
	// Checkout would persist, without writing anything.
	PreviewPlan(ctx context.Context, req PreviewPlanRequest) (*PlanPreviewResult, error)

	// ReceiveInstallment marks a pending installment paid.
	ReceiveInstallment(ctx context.Context, installmentID int) (*core.Installment, error)

	GetSale(ctx context.Context, saleID int) (*SaleResult, error)
	ListSales(ctx context.Context, from, to time.Time) (*SaleListResult, error)

	// ListCustomerInstallments returns one customer's full installment
	// history, oldest due date first.
	ListCustomerInstallments(ctx context.Context, customerID int) (*InstallmentListResult, error)

	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error)
	GetCustomer(ctx context.Context, id int) (*core.Customer, error)
	ListCustomers(ctx context.Context, search string) (*CustomerListResult, error)
	UpdateCustomer(ctx context.Context, id int, patch core.CustomerPatch) (*core.Customer, error)
	SetCustomerStatus(ctx context.Context, id int, status string) (*core.Customer, error)

	// ResetAllPoints zeroes every loyalty balance; admin-only at the edge.
	ResetAllPoints(ctx context.Context) (*PointsResetResult, error)

	CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error)
	GetProduct(ctx context.Context, id int) (*core.Product, error)
	ListProducts(ctx context.Context, activeOnly bool) (*ProductListResult, error)
	UpdateProduct(ctx context.Context, id int, patch core.ProductPatch) (*core.Product, error)

	CreateExpense(ctx context.Context, req CreateExpenseRequest) (*core.Expense, error)
	ListExpenses(ctx context.Context, year int, month time.Month) (*ExpenseListResult, error)
	DeleteExpense(ctx context.Context, id int) error

	GetSettings(ctx context.Context) (*core.Settings, error)
	UpdateSettings(ctx context.Context, patch core.SettingsPatch) (*core.Settings, error)

	GetDailySummary(ctx context.Context, date time.Time) (*core.DailySummary, error)
	GetMonthlySummary(ctx context.Context, year int, month time.Month) (*core.MonthlySummary, error)
	GetOverdueInstallments(ctx context.Context) (*InstallmentListResult, error)
	GetReceivables(ctx context.Context) (*core.Receivables, error)
}

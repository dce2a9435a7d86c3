package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at the counter. Only crediário generates
// installments and touches the credit limit.
const (
	PayCash      = "cash"
	PayCard      = "card"
	PayPix       = "pix"
	PayCrediario = "crediario"
)

// Installment statuses. The only transition is pending → paid; "overdue"
// is computed from due_date on read and never stored.
const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
)

// Sale is an immutable record of a finalized checkout. CustomerID is nil
// for walk-in sales. Discount is the loyalty redemption value; Total is
// subtotal − discount; FinancedTotal is the portion owed in installments.
type Sale struct {
	ID             int             `json:"id"`
	SaleNumber     string          `json:"sale_number"`
	CustomerID     *int            `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"` // joined from customers
	PaymentMethod  string          `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	PointsRedeemed int             `json:"points_redeemed"`
	PointsEarned   int             `json:"points_earned"`
	DownPayment    decimal.Decimal `json:"down_payment"`
	FinancedTotal  decimal.Decimal `json:"financed_total"`
	Total          decimal.Decimal `json:"total"`
	CreatedBy      *int            `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []SaleItem      `json:"items"`
	Installments   []Installment   `json:"installments,omitempty"`
}

// SaleItem is a price/name snapshot taken at sale time. Later product
// edits never touch it.
type SaleItem struct {
	ID          int             `json:"id"`
	SaleID      int             `json:"sale_id"`
	ProductID   *int            `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Installment is one scheduled payment of a financed sale. Seq 0 is the
// down payment, created already paid.
type Installment struct {
	ID           int             `json:"id"`
	SaleID       int             `json:"sale_id"`
	SaleNumber   string          `json:"sale_number,omitempty"`   // joined from sales
	CustomerID   int             `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"` // joined from customers
	Seq          int             `json:"seq"`
	DueDate      time.Time       `json:"due_date"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Overdue reports whether the installment is pending past its due date.
func (i Installment) Overdue(now time.Time) bool {
	return i.Status == InstallmentPending && i.DueDate.Before(now.Truncate(24*time.Hour))
}

// CartItem is one line of the checkout request.
type CartItem struct {
	ProductID *int
	Name      string          // used when ProductID is nil (ad-hoc line)
	UnitPrice decimal.Decimal // zero with ProductID set means "use catalog price"
	Quantity  int
}

// Override carries the manager authorization for an over-limit sale.
// Approved is set by the web layer when the caller's own role permits the
// bypass; otherwise Password is verified against the settings record.
// It applies to a single sale and is never persisted.
type Override struct {
	Approved bool
	Password string
}

// FinalizeSaleRequest is the full input of a checkout.
type FinalizeSaleRequest struct {
	CustomerID     *int
	PaymentMethod  string
	Items          []CartItem
	PointsToRedeem int
	DownPayment    decimal.Decimal

	// Crediário plan. FirstDueDate and Installments drive generation;
	// EditedPlan, when non-empty, replaces the generated schedule and is
	// revalidated against the financed principal at commit time.
	Installments int
	FirstDueDate time.Time
	EditedPlan   []InstallmentDraft

	Override  Override
	CreatedBy *int
}

// CheckoutService finalizes sales and receives installment payments.
type CheckoutService interface {
	// FinalizeSale runs the whole checkout in one database transaction:
	// pricing, plan generation, credit-limit enforcement, sale/item/
	// installment inserts, stock decrement, and customer balance deltas.
	// On any error nothing is written.
	FinalizeSale(ctx context.Context, req FinalizeSaleRequest) (*Sale, error)

	// ReceiveInstallment marks a pending installment paid, stamping the
	// payment timestamp. Paying twice returns ErrInstallmentAlreadyPaid.
	ReceiveInstallment(ctx context.Context, installmentID int) (*Installment, error)

	GetSale(ctx context.Context, id int) (*Sale, error)

	// ListSales returns sales between from and to (inclusive dates),
	// newest first, without items.
	ListSales(ctx context.Context, from, to time.Time) ([]Sale, error)

	// ListCustomerInstallments returns all installments of one customer,
	// oldest due date first.
	ListCustomerInstallments(ctx context.Context, customerID int) ([]Installment, error)
}

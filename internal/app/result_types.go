package app

import (
	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

// SaleResult is returned by Checkout and sale queries.
type SaleResult struct {
	Sale *core.Sale
}

// SaleListResult is returned by ListSales.
type SaleListResult struct {
	Sales []core.Sale
}

// PlanPreviewResult is returned by PreviewPlan: the priced quote plus the
// installment drafts Checkout would persist.
type PlanPreviewResult struct {
	Subtotal          decimal.Decimal
	Discount          decimal.Decimal
	DownPayment       decimal.Decimal
	FinancedPrincipal decimal.Decimal
	PointsRedeemed    int
	PointsEarned      int
	Plan              []core.InstallmentDraft
}

// InstallmentListResult is returned by installment queries.
type InstallmentListResult struct {
	Installments []core.Installment
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product
}

// ExpenseListResult is returned by ListExpenses.
type ExpenseListResult struct {
	Expenses []core.Expense
}

// PointsResetResult reports how many customers a bulk reset touched.
type PointsResetResult struct {
	CustomersAffected int
}

package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

type appService struct {
	checkout  core.CheckoutService
	customers core.CustomerService
	products  core.ProductService
	expenses  core.ExpenseService
	settings  core.SettingsService
	reporting core.ReportingService
	users     core.UserService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	checkout core.CheckoutService,
	customers core.CustomerService,
	products core.ProductService,
	expenses core.ExpenseService,
	settings core.SettingsService,
	reporting core.ReportingService,
	users core.UserService,
) ApplicationService {
	return &appService{
		checkout:  checkout,
		customers: customers,
		products:  products,
		expenses:  expenses,
		settings:  settings,
		reporting: reporting,
		users:     users,
	}
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("authentication failed: invalid password")
	}
	return &UserSession{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func (s *appService) Checkout(ctx context.Context, req CheckoutRequest) (*SaleResult, error) {
	items := make([]core.CartItem, len(req.Items))
	for i, line := range req.Items {
		items[i] = core.CartItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}

	sale, err := s.checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:     req.CustomerID,
		PaymentMethod:  req.PaymentMethod,
		Items:          items,
		PointsToRedeem: req.PointsToRedeem,
		DownPayment:    req.DownPayment,
		Installments:   req.Installments,
		FirstDueDate:   req.FirstDueDate,
		EditedPlan:     req.EditedPlan,
		Override: core.Override{
			Approved: req.OverrideApproved,
			Password: req.OverridePassword,
		},
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

// PreviewPlan prices a cart and generates the installment drafts without
// touching the database beyond the settings snapshot.
func (s *appService) PreviewPlan(ctx context.Context, req PreviewPlanRequest) (*PlanPreviewResult, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	quote, err := core.BuildQuote(req.Subtotal, req.PointsToRedeem, req.DownPayment, cfg)
	if err != nil {
		return nil, err
	}
	if req.CustomerID == nil {
		quote.PointsEarned = 0
	}

	result := &PlanPreviewResult{
		Subtotal:          quote.Subtotal,
		Discount:          quote.Discount,
		DownPayment:       quote.DownPayment,
		FinancedPrincipal: quote.FinancedPrincipal,
		PointsRedeemed:    quote.PointsRedeemed,
		PointsEarned:      quote.PointsEarned,
	}

	if req.Installments > 0 {
		plan, err := core.GeneratePlan(quote.FinancedPrincipal, req.Installments, req.FirstDueDate, quote.DownPayment, time.Now())
		if err != nil {
			return nil, err
		}
		result.Plan = plan
	}
	return result, nil
}

func (s *appService) ReceiveInstallment(ctx context.Context, installmentID int) (*core.Installment, error) {
	return s.checkout.ReceiveInstallment(ctx, installmentID)
}

func (s *appService) GetSale(ctx context.Context, saleID int) (*SaleResult, error) {
	sale, err := s.checkout.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) ListSales(ctx context.Context, from, to time.Time) (*SaleListResult, error) {
	sales, err := s.checkout.ListSales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

func (s *appService) ListCustomerInstallments(ctx context.Context, customerID int) (*InstallmentListResult, error) {
	installments, err := s.checkout.ListCustomerInstallments(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &InstallmentListResult{Installments: installments}, nil
}

// ── Customers ────────────────────────────────────────────────────────────────

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error) {
	return s.customers.Create(ctx, core.CustomerInput{
		Name:        req.Name,
		CPF:         req.CPF,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
	})
}

func (s *appService) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	return s.customers.Get(ctx, id)
}

func (s *appService) ListCustomers(ctx context.Context, search string) (*CustomerListResult, error) {
	customers, err := s.customers.List(ctx, search)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) UpdateCustomer(ctx context.Context, id int, patch core.CustomerPatch) (*core.Customer, error) {
	return s.customers.Update(ctx, id, patch)
}

func (s *appService) SetCustomerStatus(ctx context.Context, id int, status string) (*core.Customer, error) {
	return s.customers.SetStatus(ctx, id, status)
}

func (s *appService) ResetAllPoints(ctx context.Context) (*PointsResetResult, error) {
	n, err := s.customers.ResetAllPoints(ctx)
	if err != nil {
		return nil, err
	}
	return &PointsResetResult{CustomersAffected: n}, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error) {
	return s.products.Create(ctx, core.ProductInput{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		UnitPrice:     req.UnitPrice,
		StockQuantity: req.StockQuantity,
		NCM:           req.NCM,
	})
}

func (s *appService) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context, activeOnly bool) (*ProductListResult, error) {
	products, err := s.products.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id int, patch core.ProductPatch) (*core.Product, error) {
	return s.products.Update(ctx, id, patch)
}

// ── Expenses ─────────────────────────────────────────────────────────────────

func (s *appService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*core.Expense, error) {
	return s.expenses.Create(ctx, core.ExpenseInput{
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		ExpenseDate: req.ExpenseDate,
	})
}

func (s *appService) ListExpenses(ctx context.Context, year int, month time.Month) (*ExpenseListResult, error) {
	expenses, err := s.expenses.ListMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return &ExpenseListResult{Expenses: expenses}, nil
}

func (s *appService) DeleteExpense(ctx context.Context, id int) error {
	return s.expenses.Delete(ctx, id)
}

// ── Settings ─────────────────────────────────────────────────────────────────

func (s *appService) GetSettings(ctx context.Context) (*core.Settings, error) {
	return s.settings.Load(ctx)
}

func (s *appService) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (*core.Settings, error) {
	return s.settings.Update(ctx, patch)
}

// ── Reports ──────────────────────────────────────────────────────────────────

func (s *appService) GetDailySummary(ctx context.Context, date time.Time) (*core.DailySummary, error) {
	return s.reporting.GetDailySummary(ctx, date)
}

func (s *appService) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*core.MonthlySummary, error) {
	return s.reporting.GetMonthlySummary(ctx, year, month)
}

func (s *appService) GetOverdueInstallments(ctx context.Context) (*InstallmentListResult, error) {
	installments, err := s.reporting.GetOverdueInstallments(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return &InstallmentListResult{Installments: installments}, nil
}

func (s *appService) GetReceivables(ctx context.Context) (*core.Receivables, error) {
	return s.reporting.GetReceivables(ctx, time.Now())
}

package core_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

const testManagerPassword = "segredo123"

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testManagerPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash manager password: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, fmt.Sprintf(`
		TRUNCATE TABLE installments, sale_items, sales, sale_counters,
			expenses, products, customers, users, settings
			RESTART IDENTITY CASCADE;

		INSERT INTO settings (id, daily_goal, commission_rate, points_per_currency, point_value, manager_password_hash)
		VALUES (1, 500.00, 0.05, 1.0, 1.00, '%s');

		INSERT INTO customers (id, name, cpf, credit_limit, points_balance, status) VALUES
		(1, 'Maria Souza', '111.111.111-11', 500.00, 100, 'active'),
		(2, 'João Bloqueado', '222.222.222-22', 1000.00, 0, 'blocked');
		SELECT setval('customers_id_seq', 2);

		INSERT INTO products (id, code, name, unit_price, stock_quantity) VALUES
		(1, 'P001', 'Vestido Floral', 50.00, 10),
		(2, 'P002', 'Tênis Esportivo', 100.00, 5);
		SELECT setval('products_id_seq', 2);
	`, string(hash)))
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newCheckout(pool *pgxpool.Pool) core.CheckoutService {
	return core.NewCheckoutService(pool, core.NewSettingsService(pool))
}

func intPtr(n int) *int { return &n }

func TestFinalizeSale_CashAccruesPoints(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCash,
		Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("FinalizeSale failed: %v", err)
	}

	if !sale.Subtotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("subtotal = %s, want 100.00", sale.Subtotal)
	}
	if sale.PointsEarned != 100 {
		t.Errorf("points earned = %d, want 100", sale.PointsEarned)
	}
	if !sale.FinancedTotal.IsZero() {
		t.Errorf("cash sale financed %s, want 0", sale.FinancedTotal)
	}
	if len(sale.Installments) != 0 {
		t.Errorf("cash sale generated %d installments", len(sale.Installments))
	}
	wantNumber := fmt.Sprintf("V%d-000001", time.Now().Year())
	if sale.SaleNumber != wantNumber {
		t.Errorf("sale number = %s, want %s", sale.SaleNumber, wantNumber)
	}

	var creditLimit decimal.Decimal
	var points, stock int
	err = pool.QueryRow(ctx, `
		SELECT c.credit_limit, c.points_balance, p.stock_quantity
		FROM customers c, products p
		WHERE c.id = 1 AND p.id = 1
	`).Scan(&creditLimit, &points, &stock)
	if err != nil {
		t.Fatalf("Failed to read balances: %v", err)
	}
	if !creditLimit.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("credit limit = %s, want 500.00 (cash must not touch it)", creditLimit)
	}
	if points != 200 {
		t.Errorf("points balance = %d, want 200", points)
	}
	if stock != 8 {
		t.Errorf("stock = %d, want 8", stock)
	}
}

func TestFinalizeSale_CrediarioPlanAndBalances(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()
	firstDue := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)

	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:     intPtr(1),
		PaymentMethod:  core.PayCrediario,
		Items:          []core.CartItem{{ProductID: intPtr(2), Quantity: 2}},
		PointsToRedeem: 50,
		DownPayment:    decimal.RequireFromString("50.00"),
		Installments:   3,
		FirstDueDate:   firstDue,
	})
	if err != nil {
		t.Fatalf("FinalizeSale failed: %v", err)
	}

	// 200.00 subtotal − 50 points at 1.00 = 150.00, minus 50.00 down = 100.00 financed.
	if !sale.Discount.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("discount = %s, want 50.00", sale.Discount)
	}
	if !sale.FinancedTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("financed = %s, want 100.00", sale.FinancedTotal)
	}
	if sale.PointsEarned != 150 {
		t.Errorf("points earned = %d, want 150", sale.PointsEarned)
	}

	// Down payment draft plus 3 financed installments, cent-exact.
	if len(sale.Installments) != 4 {
		t.Fatalf("got %d installments, want 4", len(sale.Installments))
	}
	down := sale.Installments[0]
	if down.Seq != 0 || down.Status != core.InstallmentPaid || down.PaidAt == nil {
		t.Errorf("down payment installment not recorded as paid: %+v", down)
	}
	wantAmounts := []string{"50.00", "33.34", "33.33", "33.33"}
	sum := decimal.Zero
	for i, inst := range sale.Installments {
		if !inst.Amount.Equal(decimal.RequireFromString(wantAmounts[i])) {
			t.Errorf("installment %d amount = %s, want %s", inst.Seq, inst.Amount, wantAmounts[i])
		}
		if inst.Seq > 0 {
			sum = sum.Add(inst.Amount)
		}
	}
	if !sum.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("financed installments sum to %s, want 100.00", sum)
	}

	// Limit debited by financed principal; points −50 redeemed +150 earned.
	var creditLimit decimal.Decimal
	var points int
	err = pool.QueryRow(ctx, "SELECT credit_limit, points_balance FROM customers WHERE id = 1").Scan(&creditLimit, &points)
	if err != nil {
		t.Fatalf("Failed to read balances: %v", err)
	}
	if !creditLimit.Equal(decimal.RequireFromString("400.00")) {
		t.Errorf("credit limit = %s, want 400.00", creditLimit)
	}
	if points != 200 {
		t.Errorf("points balance = %d, want 200", points)
	}
}

func TestFinalizeSale_LimitExceeded(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "UPDATE customers SET credit_limit = 80.00 WHERE id = 1")
	if err != nil {
		t.Fatalf("Failed to lower limit: %v", err)
	}

	req := core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(2), Quantity: 1}},
		Installments:  2,
		FirstDueDate:  time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err = checkout.FinalizeSale(ctx, req)
	if !errors.Is(err, core.ErrLimitExceeded) {
		t.Fatalf("Expected ErrLimitExceeded, got %v", err)
	}

	// Rejection must leave no trace: no sale, stock intact, limit intact.
	var sales, stock int
	var creditLimit decimal.Decimal
	err = pool.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM sales),
		       (SELECT stock_quantity FROM products WHERE id = 2),
		       (SELECT credit_limit FROM customers WHERE id = 1)
	`).Scan(&sales, &stock, &creditLimit)
	if err != nil {
		t.Fatalf("Failed to check state: %v", err)
	}
	if sales != 0 {
		t.Errorf("found %d sales after rejected checkout", sales)
	}
	if stock != 5 {
		t.Errorf("stock = %d, want 5 (decrement must roll back)", stock)
	}
	if !creditLimit.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("credit limit = %s, want 80.00", creditLimit)
	}
}

func TestFinalizeSale_ManagerOverride(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "UPDATE customers SET credit_limit = 80.00 WHERE id = 1")
	if err != nil {
		t.Fatalf("Failed to lower limit: %v", err)
	}

	req := core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(2), Quantity: 1}},
		Installments:  2,
		FirstDueDate:  time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
	}

	// Wrong password: denied before anything is written.
	req.Override = core.Override{Password: "errada"}
	_, err = checkout.FinalizeSale(ctx, req)
	if !errors.Is(err, core.ErrOverrideDenied) {
		t.Fatalf("Expected ErrOverrideDenied, got %v", err)
	}

	// Correct manager password: the sale goes through and the limit is
	// still debited, going negative.
	req.Override = core.Override{Password: testManagerPassword}
	sale, err := checkout.FinalizeSale(ctx, req)
	if err != nil {
		t.Fatalf("Override checkout failed: %v", err)
	}
	if !sale.FinancedTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("financed = %s, want 100.00", sale.FinancedTotal)
	}

	var creditLimit decimal.Decimal
	err = pool.QueryRow(ctx, "SELECT credit_limit FROM customers WHERE id = 1").Scan(&creditLimit)
	if err != nil {
		t.Fatalf("Failed to read limit: %v", err)
	}
	if !creditLimit.Equal(decimal.RequireFromString("-20.00")) {
		t.Errorf("credit limit = %s, want -20.00", creditLimit)
	}
}

func TestFinalizeSale_PreApprovedOverride(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "UPDATE customers SET credit_limit = 0 WHERE id = 1")
	if err != nil {
		t.Fatalf("Failed to zero limit: %v", err)
	}

	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
		Installments:  1,
		FirstDueDate:  time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		Override:      core.Override{Approved: true},
	})
	if err != nil {
		t.Fatalf("Pre-approved override failed: %v", err)
	}
	if !sale.FinancedTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("financed = %s, want 50.00", sale.FinancedTotal)
	}
}

func TestFinalizeSale_BlockedCustomer(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	_, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(2),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
		Installments:  2,
		FirstDueDate:  time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, core.ErrCustomerBlocked) {
		t.Fatalf("Expected ErrCustomerBlocked, got %v", err)
	}

	// A blocked customer can still pay cash.
	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(2),
		PaymentMethod: core.PayCash,
		Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Cash sale for blocked customer failed: %v", err)
	}
	if sale.PaymentMethod != core.PayCash {
		t.Errorf("payment method = %s, want cash", sale.PaymentMethod)
	}
}

func TestFinalizeSale_ValidationRejections(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()
	firstDue := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		req  core.FinalizeSaleRequest
	}{
		{
			name: "empty cart",
			req:  core.FinalizeSaleRequest{CustomerID: intPtr(1), PaymentMethod: core.PayCash},
		},
		{
			name: "unknown payment method",
			req: core.FinalizeSaleRequest{
				CustomerID:    intPtr(1),
				PaymentMethod: "cheque",
				Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
			},
		},
		{
			name: "crediario without customer",
			req: core.FinalizeSaleRequest{
				PaymentMethod: core.PayCrediario,
				Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
				Installments:  2,
				FirstDueDate:  firstDue,
			},
		},
		{
			name: "redeem beyond balance",
			req: core.FinalizeSaleRequest{
				CustomerID:     intPtr(1),
				PaymentMethod:  core.PayCash,
				Items:          []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
				PointsToRedeem: 1000,
			},
		},
		{
			name: "down payment on cash sale",
			req: core.FinalizeSaleRequest{
				CustomerID:    intPtr(1),
				PaymentMethod: core.PayCash,
				Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
				DownPayment:   decimal.RequireFromString("10.00"),
			},
		},
		{
			name: "edited plan out of tolerance",
			req: core.FinalizeSaleRequest{
				CustomerID:    intPtr(1),
				PaymentMethod: core.PayCrediario,
				Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
				FirstDueDate:  firstDue,
				EditedPlan: []core.InstallmentDraft{
					{Seq: 1, DueDate: firstDue, Amount: decimal.RequireFromString("49.00")},
				},
			},
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checkout.FinalizeSale(ctx, tt.req)
			if !core.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	// None of the rejections may have written anything.
	var sales int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM sales").Scan(&sales); err != nil {
		t.Fatalf("Failed to count sales: %v", err)
	}
	if sales != 0 {
		t.Errorf("found %d sales after rejected checkouts", sales)
	}
}

func TestFinalizeSale_WalkIn(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		PaymentMethod: core.PayPix,
		Items: []core.CartItem{
			{Name: "Ajuste de barra", UnitPrice: decimal.RequireFromString("15.00"), Quantity: 1},
			{ProductID: intPtr(1), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Walk-in sale failed: %v", err)
	}
	if sale.CustomerID != nil {
		t.Errorf("walk-in sale has customer %d", *sale.CustomerID)
	}
	if sale.PointsEarned != 0 {
		t.Errorf("walk-in sale earned %d points, want 0", sale.PointsEarned)
	}
	if !sale.Subtotal.Equal(decimal.RequireFromString("65.00")) {
		t.Errorf("subtotal = %s, want 65.00", sale.Subtotal)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(sale.Items))
	}
	if sale.Items[1].ProductName != "Vestido Floral" {
		t.Errorf("catalog item name = %q, want snapshot from products", sale.Items[1].ProductName)
	}
}

func TestFinalizeSale_SequentialNumbering(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
			PaymentMethod: core.PayCard,
			Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("Sale %d failed: %v", i, err)
		}
		want := fmt.Sprintf("V%d-%06d", time.Now().Year(), i)
		if sale.SaleNumber != want {
			t.Errorf("sale number = %s, want %s", sale.SaleNumber, want)
		}
	}
}

func TestReceiveInstallment_OneWayTransition(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(2), Quantity: 1}},
		Installments:  2,
		FirstDueDate:  time.Date(2026, time.September, 29, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("FinalizeSale failed: %v", err)
	}

	target := sale.Installments[0]
	paid, err := checkout.ReceiveInstallment(ctx, target.ID)
	if err != nil {
		t.Fatalf("ReceiveInstallment failed: %v", err)
	}
	if paid.Status != core.InstallmentPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
	if paid.PaidAt == nil {
		t.Error("paid_at not stamped")
	}
	if !paid.Amount.Equal(target.Amount) {
		t.Errorf("amount changed on payment: %s → %s", target.Amount, paid.Amount)
	}

	// Paying again is rejected, paying a missing id is not found.
	_, err = checkout.ReceiveInstallment(ctx, target.ID)
	if !errors.Is(err, core.ErrInstallmentAlreadyPaid) {
		t.Errorf("Expected ErrInstallmentAlreadyPaid, got %v", err)
	}
	_, err = checkout.ReceiveInstallment(ctx, 999999)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// The sibling installment is untouched.
	fetched, err := checkout.GetSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("GetSale failed: %v", err)
	}
	if fetched.Installments[1].Status != core.InstallmentPending {
		t.Errorf("sibling installment status = %s, want pending", fetched.Installments[1].Status)
	}
}

func TestListCustomerInstallments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	checkout := newCheckout(pool)
	ctx := context.Background()

	_, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(2), Quantity: 1}},
		Installments:  3,
		FirstDueDate:  time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("FinalizeSale failed: %v", err)
	}

	insts, err := checkout.ListCustomerInstallments(ctx, 1)
	if err != nil {
		t.Fatalf("ListCustomerInstallments failed: %v", err)
	}
	if len(insts) != 3 {
		t.Fatalf("got %d installments, want 3", len(insts))
	}
	for i := 1; i < len(insts); i++ {
		if insts[i].DueDate.Before(insts[i-1].DueDate) {
			t.Errorf("installments not ordered by due date at %d", i)
		}
	}
	if insts[0].SaleNumber == "" {
		t.Error("sale number not joined onto installment")
	}
}

package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NordicManX/nordic-cred-sub000/internal/core"
)

func TestReporting_DailySummary(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	settings := core.NewSettingsService(pool)
	checkout := core.NewCheckoutService(pool, settings)
	expenses := core.NewExpenseService(pool)
	reports := core.NewReportingService(pool, settings)

	// One cash sale of 100.00 and one crediário sale financing 100.00.
	if _, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCash,
		Items:         []core.CartItem{{ProductID: intPtr(1), Quantity: 2}},
	}); err != nil {
		t.Fatalf("Cash sale failed: %v", err)
	}
	if _, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(2), Quantity: 1}},
		Installments:  2,
		FirstDueDate:  time.Now().AddDate(0, 1, 0),
	}); err != nil {
		t.Fatalf("Crediário sale failed: %v", err)
	}

	today := time.Now()
	if _, err := expenses.Create(ctx, core.ExpenseInput{
		Description: "Sacolas",
		Category:    "suprimentos",
		Amount:      decimal.RequireFromString("30.00"),
		ExpenseDate: today,
	}); err != nil {
		t.Fatalf("Expense create failed: %v", err)
	}

	sum, err := reports.GetDailySummary(ctx, today)
	if err != nil {
		t.Fatalf("GetDailySummary failed: %v", err)
	}

	if !sum.Revenue.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("revenue = %s, want 200.00", sum.Revenue)
	}
	if sum.SalesCount != 2 {
		t.Errorf("sales count = %d, want 2", sum.SalesCount)
	}
	if !sum.Financed.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("financed = %s, want 100.00", sum.Financed)
	}
	if !sum.Expenses.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("expenses = %s, want 30.00", sum.Expenses)
	}
	if !sum.Net.Equal(decimal.RequireFromString("170.00")) {
		t.Errorf("net = %s, want 170.00", sum.Net)
	}
	// Goal 500.00, commission rate 0.05 from seeded settings.
	if !sum.Commission.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("commission = %s, want 10.00", sum.Commission)
	}
	if !sum.GoalProgress.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("goal progress = %s, want 0.4", sum.GoalProgress)
	}
}

func TestReporting_OverdueAndReceivables(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	settings := core.NewSettingsService(pool)
	checkout := core.NewCheckoutService(pool, settings)
	reports := core.NewReportingService(pool, settings)

	// A plan whose first installment is already past due.
	sale, err := checkout.FinalizeSale(ctx, core.FinalizeSaleRequest{
		CustomerID:    intPtr(1),
		PaymentMethod: core.PayCrediario,
		Items:         []core.CartItem{{ProductID: intPtr(2), Quantity: 1}},
		Installments:  2,
		FirstDueDate:  time.Now().AddDate(0, -1, 0),
	})
	if err != nil {
		t.Fatalf("FinalizeSale failed: %v", err)
	}

	overdue, err := reports.GetOverdueInstallments(ctx, time.Now())
	if err != nil {
		t.Fatalf("GetOverdueInstallments failed: %v", err)
	}
	if len(overdue) != 1 {
		t.Fatalf("got %d overdue installments, want 1", len(overdue))
	}
	if overdue[0].CustomerName != "Maria Souza" {
		t.Errorf("overdue customer = %q, want Maria Souza", overdue[0].CustomerName)
	}
	if overdue[0].SaleNumber != sale.SaleNumber {
		t.Errorf("overdue sale number = %q, want %q", overdue[0].SaleNumber, sale.SaleNumber)
	}

	recv, err := reports.GetReceivables(ctx, time.Now())
	if err != nil {
		t.Fatalf("GetReceivables failed: %v", err)
	}
	if recv.PendingCount != 2 {
		t.Errorf("pending count = %d, want 2", recv.PendingCount)
	}
	if !recv.PendingTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("pending total = %s, want 100.00", recv.PendingTotal)
	}
	if recv.OverdueCount != 1 {
		t.Errorf("overdue count = %d, want 1", recv.OverdueCount)
	}
	if !recv.OverdueTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("overdue total = %s, want 50.00", recv.OverdueTotal)
	}

	// Paying the overdue installment clears it from the computed views.
	if _, err := checkout.ReceiveInstallment(ctx, overdue[0].ID); err != nil {
		t.Fatalf("ReceiveInstallment failed: %v", err)
	}
	overdue, err = reports.GetOverdueInstallments(ctx, time.Now())
	if err != nil {
		t.Fatalf("GetOverdueInstallments failed: %v", err)
	}
	if len(overdue) != 0 {
		t.Errorf("got %d overdue installments after payment, want 0", len(overdue))
	}
}

func TestSettings_UpdateAndVerify(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewSettingsService(pool)
	ctx := context.Background()

	goal := decimal.RequireFromString("750.00")
	newPassword := "novasenha"
	updated, err := svc.Update(ctx, core.SettingsPatch{
		DailyGoal:       &goal,
		ManagerPassword: &newPassword,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.DailyGoal.Equal(goal) {
		t.Errorf("daily goal = %s, want 750.00", updated.DailyGoal)
	}
	// Untouched fields keep their seeded values.
	if !updated.CommissionRate.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("commission rate = %s, want 0.05", updated.CommissionRate)
	}

	if err := svc.VerifyManagerPassword(ctx, newPassword); err != nil {
		t.Errorf("new manager password rejected: %v", err)
	}
	if err := svc.VerifyManagerPassword(ctx, testManagerPassword); err == nil {
		t.Error("old manager password still accepted")
	}
}

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DailySummary is the dashboard view of one trading day, measured against
// the configured revenue goal. Commission is revenue × commission rate
// from the settings snapshot taken when the report runs.
type DailySummary struct {
	Date         string          `json:"date"` // YYYY-MM-DD
	Revenue      decimal.Decimal `json:"revenue"`
	SalesCount   int             `json:"sales_count"`
	Financed     decimal.Decimal `json:"financed"`
	DailyGoal    decimal.Decimal `json:"daily_goal"`
	GoalProgress decimal.Decimal `json:"goal_progress"` // revenue / goal, 0 when no goal set
	Commission   decimal.Decimal `json:"commission"`
	Expenses     decimal.Decimal `json:"expenses"`
	Net          decimal.Decimal `json:"net"` // revenue − expenses
}

// MonthlySummary aggregates one calendar month.
type MonthlySummary struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	SalesCount int             `json:"sales_count"`
	Financed   decimal.Decimal `json:"financed"`
	Expenses   decimal.Decimal `json:"expenses"`
	Net        decimal.Decimal `json:"net"`
}

// Receivables is the open crediário position: every pending installment,
// regardless of due date.
type Receivables struct {
	PendingCount int             `json:"pending_count"`
	PendingTotal decimal.Decimal `json:"pending_total"`
	OverdueCount int             `json:"overdue_count"`
	OverdueTotal decimal.Decimal `json:"overdue_total"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only aggregations for the dashboard and
// report screens. Overdue is always computed from due dates at read time;
// no overdue state is ever stored.
type ReportingService interface {
	GetDailySummary(ctx context.Context, date time.Time) (*DailySummary, error)
	GetMonthlySummary(ctx context.Context, year int, month time.Month) (*MonthlySummary, error)

	// GetOverdueInstallments returns pending installments due strictly
	// before asOf, oldest first, with customer and sale identification.
	GetOverdueInstallments(ctx context.Context, asOf time.Time) ([]Installment, error)

	GetReceivables(ctx context.Context, asOf time.Time) (*Receivables, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool     *pgxpool.Pool
	settings SettingsService
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool, settings SettingsService) ReportingService {
	return &reportingService{pool: pool, settings: settings}
}

func (s *reportingService) GetDailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	next := day.AddDate(0, 0, 1)

	sum := &DailySummary{Date: day.Format("2006-01-02"), DailyGoal: cfg.DailyGoal}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(SUM(financed_total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
	`, day, next).Scan(&sum.Revenue, &sum.SalesCount, &sum.Financed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE expense_date = $1
	`, day).Scan(&sum.Expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily expenses: %w", err)
	}

	sum.Commission = sum.Revenue.Mul(cfg.CommissionRate).Round(2)
	sum.Net = sum.Revenue.Sub(sum.Expenses)
	if cfg.DailyGoal.IsPositive() {
		sum.GoalProgress = sum.Revenue.Div(cfg.DailyGoal).Round(4)
	}
	return sum, nil
}

func (s *reportingService) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*MonthlySummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	sum := &MonthlySummary{Year: year, Month: int(month)}

	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(SUM(financed_total), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
	`, start, end).Scan(&sum.Revenue, &sum.SalesCount, &sum.Financed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly sales: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE expense_date >= $1 AND expense_date < $2
	`, start, end).Scan(&sum.Expenses)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly expenses: %w", err)
	}

	sum.Net = sum.Revenue.Sub(sum.Expenses)
	return sum, nil
}

// dayStart truncates t to midnight so an installment due on t's date is
// not yet overdue.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (s *reportingService) GetOverdueInstallments(ctx context.Context, asOf time.Time) ([]Installment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.sale_id, s.sale_number, i.customer_id, c.name, i.seq,
		       i.due_date, i.amount, i.status, i.paid_at, i.created_at
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		JOIN customers c ON c.id = i.customer_id
		WHERE i.status = 'pending' AND i.due_date < $1
		ORDER BY i.due_date, i.id
	`, dayStart(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue installments: %w", err)
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		var inst Installment
		if err := rows.Scan(&inst.ID, &inst.SaleID, &inst.SaleNumber, &inst.CustomerID,
			&inst.CustomerName, &inst.Seq, &inst.DueDate, &inst.Amount, &inst.Status,
			&inst.PaidAt, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan overdue installment: %w", err)
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *reportingService) GetReceivables(ctx context.Context, asOf time.Time) (*Receivables, error) {
	var r Receivables
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0),
		       COUNT(*) FILTER (WHERE due_date < $1),
		       COALESCE(SUM(amount) FILTER (WHERE due_date < $1), 0)
		FROM installments
		WHERE status = 'pending'
	`, dayStart(asOf)).Scan(&r.PendingCount, &r.PendingTotal, &r.OverdueCount, &r.OverdueTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate receivables: %w", err)
	}
	return &r, nil
}

package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type checkoutService struct {
	pool     *pgxpool.Pool
	settings SettingsService
}

func NewCheckoutService(pool *pgxpool.Pool, settings SettingsService) CheckoutService {
	return &checkoutService{pool: pool, settings: settings}
}

func validPaymentMethod(m string) bool {
	switch m {
	case PayCash, PayCard, PayPix, PayCrediario:
		return true
	}
	return false
}

// ── Finalize ─────────────────────────────────────────────────────────────────

// FinalizeSale runs the whole checkout inside one transaction. The
// customer row is locked first, so two concurrent sales for the same
// customer serialize on the balance mutation instead of racing.
func (s *checkoutService) FinalizeSale(ctx context.Context, req FinalizeSaleRequest) (*Sale, error) {
	if len(req.Items) == 0 {
		return nil, validationf("cart is empty")
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, validationf("unknown payment method %q", req.PaymentMethod)
	}
	crediario := req.PaymentMethod == PayCrediario
	if crediario && req.CustomerID == nil {
		return nil, validationf("crediário requires a customer")
	}
	if !crediario && req.DownPayment.IsPositive() {
		return nil, validationf("down payment only applies to crediário")
	}
	if !crediario && len(req.EditedPlan) > 0 {
		return nil, validationf("installment plan only applies to crediário")
	}
	if req.PointsToRedeem > 0 && req.CustomerID == nil {
		return nil, validationf("point redemption requires a customer")
	}

	// One settings snapshot for the whole operation.
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Resolve the override up front so a wrong password never consumes
	// stock or a sale number.
	overrideApproved := req.Override.Approved
	if crediario && !overrideApproved && req.Override.Password != "" {
		if err := s.settings.VerifyManagerPassword(ctx, req.Override.Password); err != nil {
			return nil, err
		}
		overrideApproved = true
	}

	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the customer row for the duration of the transaction.
	var (
		customerName  string
		creditLimit   decimal.Decimal
		pointsBalance int
	)
	if req.CustomerID != nil {
		var status string
		err = tx.QueryRow(ctx, `
			SELECT name, credit_limit, points_balance, status
			FROM customers WHERE id = $1
			FOR UPDATE
		`, *req.CustomerID).Scan(&customerName, &creditLimit, &pointsBalance, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("customer %d: %w", *req.CustomerID, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to lock customer %d: %w", *req.CustomerID, err)
		}
		if crediario && status == CustomerBlocked {
			return nil, ErrCustomerBlocked
		}
		if req.PointsToRedeem > pointsBalance {
			return nil, validationf("customer has %d points, cannot redeem %d", pointsBalance, req.PointsToRedeem)
		}
	}

	// Snapshot items and decrement stock in the same statement.
	items, subtotal, err := s.resolveItems(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	quote, err := BuildQuote(subtotal, req.PointsToRedeem, req.DownPayment, cfg)
	if err != nil {
		return nil, err
	}
	if req.CustomerID == nil {
		quote.PointsEarned = 0 // walk-in sales accrue nothing
	}

	var plan []InstallmentDraft
	if crediario {
		if len(req.EditedPlan) > 0 {
			plan = req.EditedPlan
			if err := ValidatePlan(plan, quote.FinancedPrincipal, quote.DownPayment); err != nil {
				return nil, err
			}
		} else {
			plan, err = GeneratePlan(quote.FinancedPrincipal, req.Installments, req.FirstDueDate, quote.DownPayment, now)
			if err != nil {
				return nil, err
			}
		}

		if quote.FinancedPrincipal.GreaterThan(creditLimit) && !overrideApproved {
			return nil, fmt.Errorf("%w: financed %s, available %s",
				ErrLimitExceeded, quote.FinancedPrincipal.StringFixed(2), creditLimit.StringFixed(2))
		}
	}

	saleNumber, err := nextSaleNumber(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	financed := decimal.Zero
	if crediario {
		financed = quote.FinancedPrincipal
	}

	sale := &Sale{
		SaleNumber:     saleNumber,
		CustomerID:     req.CustomerID,
		CustomerName:   customerName,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       quote.Subtotal,
		Discount:       quote.Discount,
		PointsRedeemed: quote.PointsRedeemed,
		PointsEarned:   quote.PointsEarned,
		DownPayment:    quote.DownPayment,
		FinancedTotal:  financed,
		Total:          quote.AfterDiscount,
		CreatedBy:      req.CreatedBy,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (sale_number, customer_id, payment_method, subtotal, discount,
		                   points_redeemed, points_earned, down_payment, financed_total, total, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, sale.SaleNumber, sale.CustomerID, sale.PaymentMethod, sale.Subtotal, sale.Discount,
		sale.PointsRedeemed, sale.PointsEarned, sale.DownPayment, sale.FinancedTotal,
		sale.Total, sale.CreatedBy).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}

	for i := range items {
		items[i].SaleID = sale.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_name, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, items[i].SaleID, items[i].ProductID, items[i].ProductName,
			items[i].UnitPrice, items[i].Quantity, items[i].LineTotal).Scan(&items[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert sale item: %w", err)
		}
	}
	sale.Items = items

	for _, d := range plan {
		inst := Installment{
			SaleID:     sale.ID,
			CustomerID: *req.CustomerID,
			Seq:        d.Seq,
			DueDate:    d.DueDate,
			Amount:     d.Amount,
			Status:     InstallmentPending,
		}
		var paidAt *time.Time
		if d.Paid {
			inst.Status = InstallmentPaid
			paidAt = &now
			inst.PaidAt = paidAt
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO installments (sale_id, customer_id, seq, due_date, amount, status, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at
		`, inst.SaleID, inst.CustomerID, inst.Seq, inst.DueDate, inst.Amount,
			inst.Status, paidAt).Scan(&inst.ID, &inst.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert installment %d: %w", d.Seq, err)
		}
		sale.Installments = append(sale.Installments, inst)
	}

	// Balance effects, applied relatively under the row lock. The credit
	// limit is debited even when an override was used and may go negative.
	if req.CustomerID != nil {
		pointsDelta := quote.PointsEarned - quote.PointsRedeemed
		_, err = tx.Exec(ctx, `
			UPDATE customers
			SET credit_limit = credit_limit - $1,
			    points_balance = points_balance + $2,
			    updated_at = NOW()
			WHERE id = $3
		`, financed, pointsDelta, *req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to update customer balances: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}
	return sale, nil
}

// resolveItems snapshots product name and price for each cart line and
// decrements stock. Catalog lines use the stored price unless the request
// supplies one; ad-hoc lines need an explicit name and price.
func (s *checkoutService) resolveItems(ctx context.Context, tx pgx.Tx, cart []CartItem) ([]SaleItem, decimal.Decimal, error) {
	items := make([]SaleItem, 0, len(cart))
	subtotal := decimal.Zero

	for i, line := range cart {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, validationf("item %d has non-positive quantity", i+1)
		}

		name := line.Name
		price := line.UnitPrice

		if line.ProductID != nil {
			var catalogName string
			var catalogPrice decimal.Decimal
			err := tx.QueryRow(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - $1
				WHERE id = $2 AND is_active
				RETURNING name, unit_price
			`, line.Quantity, *line.ProductID).Scan(&catalogName, &catalogPrice)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, decimal.Zero, fmt.Errorf("product %d: %w", *line.ProductID, ErrNotFound)
				}
				return nil, decimal.Zero, fmt.Errorf("failed to update stock for product %d: %w", *line.ProductID, err)
			}
			name = catalogName
			if price.IsZero() {
				price = catalogPrice
			}
		}

		if name == "" {
			return nil, decimal.Zero, validationf("item %d has no product and no name", i+1)
		}
		if !price.IsPositive() {
			return nil, decimal.Zero, validationf("item %d has non-positive price", i+1)
		}

		lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		items = append(items, SaleItem{
			ProductID:   line.ProductID,
			ProductName: name,
			UnitPrice:   price,
			Quantity:    line.Quantity,
			LineTotal:   lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return items, subtotal, nil
}

// nextSaleNumber assigns the next number for the sale's year from the
// sale_counters table, inside the caller's transaction so a rolled-back
// sale releases its number.
func nextSaleNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	var n int
	err := tx.QueryRow(ctx, `
		INSERT INTO sale_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = sale_counters.last_number + 1
		RETURNING last_number
	`, now.Year()).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to assign sale number: %w", err)
	}
	return fmt.Sprintf("V%d-%06d", now.Year(), n), nil
}

// ── Installment payment ──────────────────────────────────────────────────────

func (s *checkoutService) ReceiveInstallment(ctx context.Context, installmentID int) (*Installment, error) {
	var inst Installment
	err := s.pool.QueryRow(ctx, `
		UPDATE installments
		SET status = 'paid', paid_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, sale_id, customer_id, seq, due_date, amount, status, paid_at, created_at
	`, installmentID).Scan(&inst.ID, &inst.SaleID, &inst.CustomerID, &inst.Seq,
		&inst.DueDate, &inst.Amount, &inst.Status, &inst.PaidAt, &inst.CreatedAt)
	if err == nil {
		return &inst, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to receive installment %d: %w", installmentID, err)
	}

	// No pending row matched: distinguish "already paid" from "missing".
	var status string
	err = s.pool.QueryRow(ctx, "SELECT status FROM installments WHERE id = $1", installmentID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("installment %d: %w", installmentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check installment %d: %w", installmentID, err)
	}
	return nil, ErrInstallmentAlreadyPaid
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *checkoutService) GetSale(ctx context.Context, id int) (*Sale, error) {
	var sale Sale
	var customerName *string
	err := s.pool.QueryRow(ctx, `
		SELECT s.id, s.sale_number, s.customer_id, c.name, s.payment_method,
		       s.subtotal, s.discount, s.points_redeemed, s.points_earned,
		       s.down_payment, s.financed_total, s.total, s.created_by, s.created_at
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE s.id = $1
	`, id).Scan(&sale.ID, &sale.SaleNumber, &sale.CustomerID, &customerName,
		&sale.PaymentMethod, &sale.Subtotal, &sale.Discount, &sale.PointsRedeemed,
		&sale.PointsEarned, &sale.DownPayment, &sale.FinancedTotal, &sale.Total,
		&sale.CreatedBy, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch sale %d: %w", id, err)
	}
	if customerName != nil {
		sale.CustomerName = *customerName
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, unit_price, quantity, line_total
		FROM sale_items WHERE sale_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items for sale %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		sale.Items = append(sale.Items, it)
	}

	instRows, err := s.pool.Query(ctx, `
		SELECT id, sale_id, customer_id, seq, due_date, amount, status, paid_at, created_at
		FROM installments WHERE sale_id = $1 ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch installments for sale %d: %w", id, err)
	}
	defer instRows.Close()
	for instRows.Next() {
		var inst Installment
		if err := instRows.Scan(&inst.ID, &inst.SaleID, &inst.CustomerID, &inst.Seq,
			&inst.DueDate, &inst.Amount, &inst.Status, &inst.PaidAt, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		sale.Installments = append(sale.Installments, inst)
	}

	return &sale, nil
}

func (s *checkoutService) ListSales(ctx context.Context, from, to time.Time) ([]Sale, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.sale_number, s.customer_id, c.name, s.payment_method,
		       s.subtotal, s.discount, s.points_redeemed, s.points_earned,
		       s.down_payment, s.financed_total, s.total, s.created_by, s.created_at
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		ORDER BY s.created_at DESC, s.id DESC
	`, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		var customerName *string
		if err := rows.Scan(&sale.ID, &sale.SaleNumber, &sale.CustomerID, &customerName,
			&sale.PaymentMethod, &sale.Subtotal, &sale.Discount, &sale.PointsRedeemed,
			&sale.PointsEarned, &sale.DownPayment, &sale.FinancedTotal, &sale.Total,
			&sale.CreatedBy, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if customerName != nil {
			sale.CustomerName = *customerName
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (s *checkoutService) ListCustomerInstallments(ctx context.Context, customerID int) ([]Installment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.sale_id, s.sale_number, i.customer_id, i.seq, i.due_date,
		       i.amount, i.status, i.paid_at, i.created_at
		FROM installments i
		JOIN sales s ON s.id = i.sale_id
		WHERE i.customer_id = $1
		ORDER BY i.due_date, i.sale_id, i.seq
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments for customer %d: %w", customerID, err)
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		var inst Installment
		if err := rows.Scan(&inst.ID, &inst.SaleID, &inst.SaleNumber, &inst.CustomerID,
			&inst.Seq, &inst.DueDate, &inst.Amount, &inst.Status, &inst.PaidAt,
			&inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		out = append(out, inst)
	}
	return out, nil
}

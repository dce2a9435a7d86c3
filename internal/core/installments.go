package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxInstallments is the longest plan the counter may offer.
const MaxInstallments = 12

// planTolerance is the rounding slack accepted when an operator hand-edits
// a plan before committing. Generated plans are cent-exact and never need it.
var planTolerance = decimal.New(5, -2) // 0.05

// InstallmentDraft is an installment before persistence. Operators may
// adjust due dates and amounts of the financed drafts; the edited set is
// revalidated by ValidatePlan at commit time.
type InstallmentDraft struct {
	Seq     int             `json:"seq"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// GeneratePlan splits a financed principal into n dated installments.
//
// Amounts are distributed in whole cents: every installment gets an equal
// share and the first one also absorbs the remainder, so the drafts always
// sum exactly to the principal. Due dates advance by calendar months from
// firstDue, clamping to the last day of shorter months. When a down
// payment is present, a draft with seq 0 due now and already paid is
// prepended.
func GeneratePlan(principal decimal.Decimal, n int, firstDue time.Time, downPayment decimal.Decimal, now time.Time) ([]InstallmentDraft, error) {
	if n < 1 || n > MaxInstallments {
		return nil, validationf("number of installments must be between 1 and %d, got %d", MaxInstallments, n)
	}
	if principal.IsNegative() {
		return nil, validationf("financed principal cannot be negative")
	}
	if firstDue.IsZero() {
		return nil, validationf("first due date is required")
	}

	cents := principal.Round(2).Shift(2).IntPart()
	per := cents / int64(n)
	rem := cents % int64(n)

	drafts := make([]InstallmentDraft, 0, n+1)
	if downPayment.IsPositive() {
		drafts = append(drafts, InstallmentDraft{
			Seq:     0,
			DueDate: now,
			Amount:  downPayment.Round(2),
			Paid:    true,
		})
	}

	for i := 1; i <= n; i++ {
		amount := per
		if i == 1 {
			amount += rem
		}
		drafts = append(drafts, InstallmentDraft{
			Seq:     i,
			DueDate: AddMonths(firstDue, i-1),
			Amount:  decimal.New(amount, -2),
		})
	}
	return drafts, nil
}

// ValidatePlan checks an installment plan against the quote it must pay
// off: contiguous sequence numbers, non-negative amounts, due dates
// present, and a total within 0.05 of principal + down payment. A plan
// failing any check aborts the sale with no partial write.
func ValidatePlan(drafts []InstallmentDraft, principal, downPayment decimal.Decimal) error {
	if len(drafts) == 0 {
		return validationf("installment plan is empty")
	}

	wantFirst := 1
	if downPayment.IsPositive() {
		wantFirst = 0
	}

	sum := decimal.Zero
	for i, d := range drafts {
		if d.Seq != wantFirst+i {
			return validationf("installment sequence broken at position %d: got %d, want %d", i, d.Seq, wantFirst+i)
		}
		if d.Amount.IsNegative() {
			return validationf("installment %d has negative amount", d.Seq)
		}
		if d.DueDate.IsZero() {
			return validationf("installment %d has no due date", d.Seq)
		}
		if d.Seq == 0 && !d.Paid {
			return validationf("down payment installment must be paid")
		}
		sum = sum.Add(d.Amount)
	}

	want := principal.Add(downPayment)
	if sum.Sub(want).Abs().GreaterThan(planTolerance) {
		return validationf("installment plan sums to %s, expected %s (±%s)", sum.StringFixed(2), want.StringFixed(2), planTolerance.StringFixed(2))
	}
	return nil
}

// AddMonths advances t by whole calendar months, clamping the day to the
// end of shorter months (Jan 31 + 1 month = Feb 28).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, t.Location())
}

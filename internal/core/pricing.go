package core

import (
	"github.com/shopspring/decimal"
)

// Quote is the priced breakdown of a cart before persistence. All values
// derive from the inputs and one settings snapshot; building a quote has
// no side effects.
type Quote struct {
	Subtotal          decimal.Decimal
	PointsRedeemed    int
	Discount          decimal.Decimal
	AfterDiscount     decimal.Decimal
	DownPayment       decimal.Decimal
	FinancedPrincipal decimal.Decimal
	PointsEarned      int
}

// BuildQuote resolves subtotal, loyalty redemption, and down payment into
// a financed principal.
//
// pointsToRedeem is capped so the redemption value never exceeds the
// subtotal. A down payment larger than the discounted total is ignored
// beyond that total: the financed principal floors at zero rather than
// going negative. Points are earned on the cash portion (everything not
// covered by redemption), rounded down to whole points.
func BuildQuote(subtotal decimal.Decimal, pointsToRedeem int, downPayment decimal.Decimal, cfg *Settings) (Quote, error) {
	if subtotal.IsNegative() {
		return Quote{}, validationf("subtotal cannot be negative")
	}
	if pointsToRedeem < 0 {
		return Quote{}, validationf("points to redeem cannot be negative")
	}
	if downPayment.IsNegative() {
		return Quote{}, validationf("down payment cannot be negative")
	}

	// Cap redemption so the discount cannot exceed the subtotal.
	if pointsToRedeem > 0 && cfg.PointValue.IsPositive() {
		maxRedeem := int(subtotal.Div(cfg.PointValue).Floor().IntPart())
		if pointsToRedeem > maxRedeem {
			pointsToRedeem = maxRedeem
		}
	} else {
		pointsToRedeem = 0
	}

	discount := decimal.NewFromInt(int64(pointsToRedeem)).Mul(cfg.PointValue).Round(2)
	afterDiscount := subtotal.Sub(discount)

	financed := afterDiscount.Sub(downPayment)
	if financed.IsNegative() {
		financed = decimal.Zero
	}

	earned := int(afterDiscount.Mul(cfg.PointsPerCurrency).Floor().IntPart())

	return Quote{
		Subtotal:          subtotal,
		PointsRedeemed:    pointsToRedeem,
		Discount:          discount,
		AfterDiscount:     afterDiscount,
		DownPayment:       downPayment,
		FinancedPrincipal: financed,
		PointsEarned:      earned,
	}, nil
}

// Package pricing computes monetary totals for a set of cart lines. It is
// pure and stateless; the cart preview and the checkout freeze both go
// through Compute so the previewed and charged amounts can never drift.
package pricing

import "github.com/shopspring/decimal"

// Line is one (unit price, quantity) pair to be priced.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals carries every intermediate of the computation so callers can render
// the full breakdown. Amounts keep their full precision; call Round before
// persisting.
type Totals struct {
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	ShippingCost       decimal.Decimal
	Tax                decimal.Decimal
	GrandTotal         decimal.Decimal
}

var (
	discountUpperTier = decimal.NewFromInt(10000)
	discountLowerTier = decimal.NewFromInt(5000)
	discountUpperRate = decimal.NewFromFloat(0.10)
	discountLowerRate = decimal.NewFromFloat(0.05)

	shippingNearLimit = decimal.NewFromInt(1250)
	shippingFarLimit  = decimal.NewFromInt(2500)
	shippingNearCost  = decimal.NewFromInt(80)
	shippingMidCost   = decimal.NewFromInt(50)

	taxRate = decimal.NewFromFloat(0.08)
)

// Compute prices the given lines: subtotal, tiered discount on the
// pre-discount subtotal (exclusive boundaries), tiered shipping on the
// discounted subtotal (1250 falls in the middle tier), flat 8% tax, and the
// grand total.
func Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discount := decimal.Zero
	switch {
	case subtotal.GreaterThan(discountUpperTier):
		discount = subtotal.Mul(discountUpperRate)
	case subtotal.GreaterThan(discountLowerTier):
		discount = subtotal.Mul(discountLowerRate)
	}

	discounted := subtotal.Sub(discount)
	shipping := shippingCost(discounted)
	tax := discounted.Mul(taxRate)

	return Totals{
		Subtotal:           subtotal,
		Discount:           discount,
		DiscountedSubtotal: discounted,
		ShippingCost:       shipping,
		Tax:                tax,
		GrandTotal:         discounted.Add(shipping).Add(tax),
	}
}

func shippingCost(discounted decimal.Decimal) decimal.Decimal {
	switch {
	case discounted.LessThan(shippingNearLimit):
		return shippingNearCost
	case discounted.LessThanOrEqual(shippingFarLimit):
		return shippingMidCost
	default:
		return decimal.Zero
	}
}

// Round returns the totals with every amount rounded to two decimal places,
// the precision used at the persistence boundary.
func (t Totals) Round() Totals {
	return Totals{
		Subtotal:           t.Subtotal.Round(2),
		Discount:           t.Discount.Round(2),
		DiscountedSubtotal: t.DiscountedSubtotal.Round(2),
		ShippingCost:       t.ShippingCost.Round(2),
		Tax:                t.Tax.Round(2),
		GrandTotal:         t.GrandTotal.Round(2),
	}
}

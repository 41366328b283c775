package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(unitPrice float64, quantity int) []Line {
	return []Line{{UnitPrice: decimal.NewFromFloat(unitPrice), Quantity: quantity}}
}

func TestCompute_HighTierScenario(t *testing.T) {
	// subtotal 12000 -> 10% discount -> 10800 -> free shipping -> tax 864
	totals := Compute(lines(1200, 10)).Round()

	assert.Equal(t, "12000", totals.Subtotal.String())
	assert.Equal(t, "1200", totals.Discount.String())
	assert.Equal(t, "10800", totals.DiscountedSubtotal.String())
	assert.Equal(t, "0", totals.ShippingCost.String())
	assert.Equal(t, "864", totals.Tax.String())
	assert.Equal(t, "11664", totals.GrandTotal.String())
}

func TestCompute_NoDiscountScenario(t *testing.T) {
	// subtotal 900 -> no discount -> shipping 80 -> tax 72 -> total 1052
	totals := Compute(lines(450, 2)).Round()

	assert.Equal(t, "900", totals.Subtotal.String())
	assert.True(t, totals.Discount.IsZero())
	assert.Equal(t, "80", totals.ShippingCost.String())
	assert.Equal(t, "72", totals.Tax.String())
	assert.Equal(t, "1052", totals.GrandTotal.String())
}

func TestCompute_ShippingTierBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		shipping string
	}{
		{"below near limit", 1249.99, "80"},
		{"exactly 1250 falls in middle tier", 1250, "50"},
		{"exactly 2500 stays in middle tier", 2500, "50"},
		{"above 2500 ships free", 2500.01, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := Compute(lines(tt.subtotal, 1))
			assert.Equal(t, tt.shipping, totals.ShippingCost.String())
		})
	}
}

func TestCompute_DiscountTierBoundaries(t *testing.T) {
	// Boundaries are exclusive-above on the pre-discount subtotal.
	assert.True(t, Compute(lines(5000, 1)).Discount.IsZero())
	assert.Equal(t, "250.00005", Compute(lines(5000.001, 1)).Discount.String())
	assert.Equal(t, "500", Compute(lines(10000, 1)).Discount.String())
	assert.Equal(t, "1000.1", Compute(lines(10001, 1)).Discount.String())
}

func TestCompute_DiscountMonotonic(t *testing.T) {
	prev := decimal.Zero
	for _, subtotal := range []float64{100, 4999, 5000, 5001, 9999, 10000, 10001, 20000} {
		d := Compute(lines(subtotal, 1)).Discount
		assert.True(t, d.GreaterThanOrEqual(prev), "discount decreased at subtotal %v", subtotal)
		prev = d
	}
}

func TestCompute_GrandTotalIdentity(t *testing.T) {
	for _, set := range [][]Line{
		{{UnitPrice: decimal.NewFromFloat(19.99), Quantity: 3}},
		{{UnitPrice: decimal.NewFromFloat(499.50), Quantity: 7}, {UnitPrice: decimal.NewFromFloat(0.01), Quantity: 1}},
		{{UnitPrice: decimal.NewFromFloat(1234.56), Quantity: 12}},
	} {
		totals := Compute(set)
		sum := totals.DiscountedSubtotal.Add(totals.ShippingCost).Add(totals.Tax)
		require.True(t, totals.GrandTotal.Equal(sum), "grand total must equal discounted + shipping + tax")
		require.True(t, totals.Tax.Equal(totals.DiscountedSubtotal.Mul(decimal.NewFromFloat(0.08))))
	}
}

func TestCompute_EmptyLines(t *testing.T) {
	totals := Compute(nil)
	assert.True(t, totals.Subtotal.IsZero())
	// An empty set still falls in the lowest shipping tier; checkout rejects
	// empty carts before pricing ever matters.
	assert.Equal(t, "80", totals.ShippingCost.String())
}

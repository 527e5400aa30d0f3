package pricing

import "github.com/shopspring/decimal"

var (
	FreeShippingThreshold = decimal.NewFromInt(4650)
	FlatShippingFee       = decimal.NewFromInt(25)
	// TaxRate is the flat SST percentage applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.06")
)

// Totals is the monetary breakdown of a checkout.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ShippingFee is free at or above the threshold, flat below it.
func ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingFee
}

// Tax returns the SST on subtotal rounded to two decimals.
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// Breakdown computes shipping, tax and total for subtotal.
func Breakdown(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	shipping := ShippingFee(subtotal)
	tax := Tax(subtotal)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

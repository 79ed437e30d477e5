package checkout

import "github.com/shopspring/decimal"

var (
	ShippingFee = decimal.RequireFromString("5.99")
	TaxRate     = decimal.RequireFromString("0.10")
)

// Summary holds full-precision amounts; round only when displaying.
type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

func Summarize(subtotal decimal.Decimal) Summary {
	tax := subtotal.Mul(TaxRate)
	return Summary{
		Subtotal:   subtotal,
		Shipping:   ShippingFee,
		Tax:        tax,
		GrandTotal: subtotal.Add(ShippingFee).Add(tax),
	}
}

// Display formats an amount to two decimal places.
func Display(d decimal.Decimal) string { return d.StringFixed(2) }

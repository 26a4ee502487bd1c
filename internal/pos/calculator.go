package pos

import (
	"github.com/shopspring/decimal"
)

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

type LineTotal struct {
	Line
	Total decimal.Decimal `json:"total"`
}

type Totals struct {
	Lines    []LineTotal     `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// CalculateTotals prices a cart.
//
// Rules:
// - Each line total is unitPrice*quantity rounded to scale; the subtotal is their sum.
// - The discount is a percentage of the subtotal, rounded to scale.
// - Tax is taxRate (0.08 for 8%) applied to subtotal-discount, rounded to scale.
// - Total = subtotal - discount + tax, so the parts always add up exactly.
func CalculateTotals(c Cart, taxRate decimal.Decimal, currency string, scale CurrencyScale) (Totals, error) {
	if err := ValidateCart(c); err != nil {
		return Totals{}, err
	}
	if taxRate.IsNegative() {
		return Totals{}, ValidationError{Code: "TAX_RATE_INVALID", Message: "tax rate must be >= 0"}
	}
	if scale <= 0 {
		scale = DefaultCurrencyScale
	}
	places := int32(scale)

	out := Totals{Lines: make([]LineTotal, 0, len(c.Lines)), Currency: currency}
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		lt := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(places)
		out.Lines = append(out.Lines, LineTotal{Line: l, Total: lt})
		subtotal = subtotal.Add(lt)
	}

	discount := subtotal.Mul(c.DiscountPercent).Div(decimal.NewFromInt(100)).Round(places)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate).Round(places)

	out.Subtotal = subtotal
	out.Discount = discount
	out.Tax = tax
	out.Total = taxable.Add(tax)
	return out, nil
}

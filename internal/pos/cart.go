package pos

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Line is one wash service on a POS cart.
type Line struct {
	ServiceCode string          `json:"serviceCode"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type Cart struct {
	Lines []Line `json:"lines"`
	// DiscountPercent like 10 for 10%, applied to the subtotal before tax.
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var maxDiscount = decimal.NewFromInt(100)

// ValidateCart enforces:
// - at least one line, each with a service code, price >= 0 and quantity >= 1
// - discount within [0, 100]
func ValidateCart(c Cart) error {
	if len(c.Lines) == 0 {
		return ValidationError{Code: "CART_EMPTY", Message: "cart must contain at least one line"}
	}
	for i, l := range c.Lines {
		if strings.TrimSpace(l.ServiceCode) == "" {
			return ValidationError{Code: "LINE_SERVICE_REQUIRED", Message: fmt.Sprintf("line %d: serviceCode is required", i)}
		}
		if l.Quantity < 1 {
			return ValidationError{Code: "LINE_QUANTITY_INVALID", Message: fmt.Sprintf("line %d: quantity must be >= 1", i)}
		}
		if l.UnitPrice.IsNegative() {
			return ValidationError{Code: "LINE_PRICE_INVALID", Message: fmt.Sprintf("line %d: unitPrice must be >= 0", i)}
		}
	}
	if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(maxDiscount) {
		return ValidationError{Code: "DISCOUNT_INVALID", Message: "discountPercent must be between 0 and 100"}
	}
	return nil
}

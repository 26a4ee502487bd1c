package pos

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"carwash/internal/api"
)

type Handlers struct {
	TaxRate  decimal.Decimal
	Currency string
}

// Quote prices a cart without creating a booking, so the dashboard can show totals
// while the attendant builds the order.
func (h Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	var c Cart
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	totals, err := CalculateTotals(c, h.TaxRate, h.Currency, DefaultCurrencyScale)
	if err != nil {
		var ve ValidationError
		if errors.As(err, &ve) {
			api.WriteError(w, http.StatusBadRequest, ve.Code, ve.Message)
			return
		}
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, totals)
}

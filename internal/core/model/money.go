package model

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The admin API expects prices and percentages as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// CurrencyPlaces is the number of fractional digits of the smallest
// currency unit (VND has none).
const CurrencyPlaces = 0

// FormatMoney rounds to the smallest currency unit for display only.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}

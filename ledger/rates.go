package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FixedRates is a RateLookup backed by a static table of rates into the
// reporting currency. It ignores the date: the same rate applies to every
// transaction. Useful for offline runs and tests; production callers inject
// a collaborator backed by the remote's rate service instead.
type FixedRates struct {
	rates map[string]decimal.Decimal
}

// NewFixedRates creates a rate table from currency to reporting-currency
// rate.
func NewFixedRates(rates map[string]decimal.Decimal) *FixedRates {
	copied := make(map[string]decimal.Decimal, len(rates))
	for currency, rate := range rates {
		copied[currency] = rate
	}
	return &FixedRates{rates: copied}
}

// ReportAmount converts the amount at the table's rate for its currency.
func (r *FixedRates) ReportAmount(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	rate, ok := r.rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("no exchange rate for currency %q", currency)
	}
	return amount.Mul(rate), nil
}

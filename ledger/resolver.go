package ledger

import (
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// ResolveMode selects how the resolver treats input that no single exchange
// rate can reconcile within tolerance.
type ResolveMode int

const (
	// Strict rejects input that no rate reconciles, and additionally
	// verifies that the selected rate reproduces every line's reporting
	// amount exactly at the reporting currency's precision.
	Strict ResolveMode = iota

	// Lenient accepts a best-effort rate rounded to eight decimals even when
	// it falls outside the tolerance interval. Used internally by the FX
	// adjuster, which repairs the remaining residuals itself.
	Lenient
)

// rateTolerance is the relative precision of the remote system's exchange
// rates: eight decimal digits.
var rateTolerance = decimal.New(1, -8)

var (
	decimalOne = decimal.NewFromInt(1)
	decimalTwo = decimal.NewFromInt(2)
)

// Resolution is the outcome of resolving a collective transaction: the
// single non-reporting currency it uses (or the reporting currency itself)
// and the exchange rate that reconciles its lines.
type Resolution struct {
	Currency string
	Rate     decimal.Decimal
}

// ResolveCollectiveRate determines the single foreign currency and exchange
// rate of a collective transaction.
//
// A line participates in rate inference only if it carries value in a
// foreign currency: lines with an empty currency, the reporting currency, or
// a zero amount are "reporting-only". If every line is reporting-only the
// transaction resolves to (reporting, 1).
//
// For the remaining lines the resolver computes, per line, the interval of
// rates that reproduce the line's reporting amount within tolerance, where
// tolerance = max(|amount| * 1e-8, unit/2). The preferred rate is the median
// of reportingAmount/amount over the largest-magnitude lines, which keeps
// the result insensitive to rounding noise on small lines. If the
// intersection of all intervals is non-empty the preferred rate is clamped
// into it; otherwise Strict mode fails with IncoherentFXRateError and
// Lenient mode returns the preferred rate rounded to eight decimals.
func ResolveCollectiveRate(txn *Transaction, reporting string, precision *PrecisionConfig, mode ResolveMode) (Resolution, error) {
	foreign := make([]*Line, 0, len(txn.Lines))
	for _, line := range txn.Lines {
		if line.Currency == "" || line.Currency == reporting || line.Amount.IsZero() {
			continue
		}
		foreign = append(foreign, line)
	}

	if len(foreign) == 0 {
		return Resolution{Currency: reporting, Rate: decimalOne}, nil
	}

	if currencies := foreignCurrencies(txn.Lines, reporting); len(currencies) > 1 {
		return Resolution{}, NewIncoherentCurrencyError(txn.ID, currencies)
	}
	currency := foreign[0].Currency

	halfUnit := precision.Unit(reporting).Div(decimalTwo)

	// Intersect the per-line rate intervals: the widest lower bound and the
	// narrowest upper bound across lines.
	var lower, upper decimal.Decimal
	for i, line := range foreign {
		if line.ReportingAmount == nil {
			return Resolution{}, NewMissingAmountError(txn.ID, line.Account)
		}

		tolerance := decimal.Max(line.Amount.Abs().Mul(rateTolerance), halfUnit)
		low := line.ReportingAmount.Sub(tolerance).Div(line.Amount)
		high := line.ReportingAmount.Add(tolerance).Div(line.Amount)
		if line.Amount.Sign() < 0 {
			low, high = high, low
		}

		if i == 0 {
			lower, upper = low, high
			continue
		}
		lower = decimal.Max(lower, low)
		upper = decimal.Min(upper, high)
	}

	preferred := preferredRate(foreign)

	var rate decimal.Decimal
	switch {
	case lower.LessThanOrEqual(upper):
		rate = clampRate(preferred, lower, upper)
	case mode == Lenient:
		rate = preferred.RoundBank(8)
		log.Warnf(
			"transaction %q: exchange rate %s falls outside the coherent interval [%s, %s], accepting best effort rate",
			txn.ID, rate, lower, upper)
	default:
		return Resolution{}, NewIncoherentFXRateError(txn.ID, "")
	}

	if mode == Strict {
		for _, line := range foreign {
			implied := precision.Round(line.Amount.Mul(rate), reporting)
			expected := precision.Round(*line.ReportingAmount, reporting)
			if !implied.Equal(expected) {
				return Resolution{}, NewIncoherentFXRateError(txn.ID, "")
			}
		}
	}

	return Resolution{Currency: currency, Rate: rate}, nil
}

// preferredRate returns the median of reportingAmount/amount over the lines
// with the largest absolute amount. Tie-breaking toward the largest lines
// keeps a cent of rounding noise on a small line from skewing the rate.
func preferredRate(foreign []*Line) decimal.Decimal {
	maxAbs := decimal.Zero
	for _, line := range foreign {
		if abs := line.Amount.Abs(); abs.GreaterThan(maxAbs) {
			maxAbs = abs
		}
	}

	var ratios []decimal.Decimal
	for _, line := range foreign {
		if line.Amount.Abs().Equal(maxAbs) {
			ratios = append(ratios, line.ReportingAmount.Div(line.Amount))
		}
	}

	slices.SortFunc(ratios, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	n := len(ratios)
	if n%2 == 1 {
		return ratios[n/2]
	}
	return ratios[n/2-1].Add(ratios[n/2]).Div(decimalTwo)
}

// clampRate restricts rate to the closed interval [lower, upper].
func clampRate(rate, lower, upper decimal.Decimal) decimal.Decimal {
	if rate.LessThan(lower) {
		return lower
	}
	if rate.GreaterThan(upper) {
		return upper
	}
	return rate
}

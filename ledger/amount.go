package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PrecisionConfig holds the smallest representable unit per currency.
// Monetary amounts are always rounded to their currency's unit before they
// leave the engine, so rounding is idempotent: Round(Round(x)) == Round(x).
type PrecisionConfig struct {
	// units maps currency to its smallest unit (supports "*" wildcard)
	units map[string]decimal.Decimal
}

// defaultUnit is one hundredth, the precision of most currencies.
var defaultUnit = decimal.New(1, -2)

// NewPrecisionConfig creates a precision configuration with a 0.01 unit for
// every currency.
func NewPrecisionConfig() *PrecisionConfig {
	return &PrecisionConfig{
		units: map[string]decimal.Decimal{
			"*": defaultUnit,
		},
	}
}

// ParsePrecisionConfig creates a PrecisionConfig from "CURRENCY:UNIT" pairs,
// e.g. "JPY:1" or "*:0.01".
func ParsePrecisionConfig(pairs []string) (*PrecisionConfig, error) {
	config := NewPrecisionConfig()

	for _, pair := range pairs {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid precision format %q, expected CURRENCY:UNIT", pair)
		}

		currency := strings.TrimSpace(parts[0])
		unit, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid precision unit in %q: %w", pair, err)
		}
		if unit.Sign() <= 0 {
			return nil, fmt.Errorf("precision unit in %q must be positive", pair)
		}

		config.units[currency] = unit
	}

	return config, nil
}

// Unit returns the smallest representable unit for a currency.
// Checks the currency-specific unit first, then the wildcard "*".
func (c *PrecisionConfig) Unit(currency string) decimal.Decimal {
	if c == nil {
		return defaultUnit
	}
	if unit, ok := c.units[currency]; ok {
		return unit
	}
	if unit, ok := c.units["*"]; ok {
		return unit
	}
	return defaultUnit
}

// Round rounds an amount to the currency's configured unit, ties to even.
// This is the single rounding routine used everywhere an amount is emitted.
func (c *PrecisionConfig) Round(amount decimal.Decimal, currency string) decimal.Decimal {
	unit := c.Unit(currency)
	return amount.Div(unit).RoundBank(0).Mul(unit)
}

// IsZero reports whether the amount rounds to zero at the currency's
// precision. Residuals are compared against zero only through this check,
// never through exact decimal equality of unrounded intermediates.
func (c *PrecisionConfig) IsZero(amount decimal.Decimal, currency string) bool {
	return c.Round(amount, currency).IsZero()
}

package ledger

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/openclearing/ledgerbridge/telemetry"
)

func testSanitizer(t *testing.T, opts ...Option) *Sanitizer {
	t.Helper()
	chart := newChartStub()
	chart.currencies["9999"] = "CHF"
	return NewSanitizer("CHF", "9999", chart, opts...)
}

// assertLinesEqual compares two line sequences field by field, with amounts
// compared by value.
func assertLinesEqual(t *testing.T, expected, actual []*Line) {
	t.Helper()
	assert.Equal(t, len(expected), len(actual))
	for i := range expected {
		e, a := expected[i], actual[i]
		assert.Equal(t, e.ID, a.ID)
		assert.Equal(t, e.Account, a.Account)
		assert.Equal(t, e.Currency, a.Currency)
		assert.Equal(t, e.Description, a.Description)
		assert.Equal(t, e.Document, a.Document)
		assert.True(t, e.Amount.Equal(a.Amount), "line %d: amount %s != %s", i, e.Amount, a.Amount)
		assertReporting(t, e.ReportingAmount.String(), a)
	}
}

func TestSanitizePassThrough(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "120"),
		line(t, "1", "6000", "-120", "CHF"),
	}

	result, err := testSanitizer(t).Sanitize(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(result))
	assert.Equal(t, "1", result[0].ID)
	assertReporting(t, "-120", result[1])
}

func TestSanitizeSplitsMultiCurrency(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "120"),
		lineWithReporting(t, "1", "1010", "50", "USD", "45"),
		line(t, "1", "6000", "-165", "CHF"),
	}

	result, err := testSanitizer(t).Sanitize(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, 6, len(result))

	// Every emitted transaction references at most one foreign currency
	// and nets to zero in the reporting currency.
	for _, txn := range GroupByID(result) {
		assert.True(t, len(foreignCurrencies(txn.Lines, "CHF")) <= 1,
			"transaction %s spans multiple currencies", txn.ID)
	}
	assertZeroNetPerTransaction(t, result)

	// The transitory account nets to zero across the whole output.
	transitory := decimal.Zero
	for _, l := range result {
		if l.Account == "9999" {
			transitory = transitory.Add(*l.ReportingAmount)
		}
	}
	assert.True(t, transitory.IsZero())
}

func TestSanitizeFillsReportingAmounts(t *testing.T) {
	rates := NewFixedRates(map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(1.2)})

	input := []*Line{
		line(t, "1", "1000", "100", "EUR"),
		line(t, "1", "6000", "-120", "CHF"),
	}

	result, err := testSanitizer(t, WithRateLookup(rates)).Sanitize(context.Background(), input)
	assert.NoError(t, err)
	assertReporting(t, "120", result[0])
}

func TestSanitizeZeroAmountWithoutRate(t *testing.T) {
	// Zero amounts resolve to a zero reporting amount without consulting
	// the rate collaborator.
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "120"),
		line(t, "1", "1010", "0", "EUR"),
		line(t, "1", "6000", "-120", "CHF"),
	}

	result, err := testSanitizer(t).Sanitize(context.Background(), input)
	assert.NoError(t, err)
	assertReporting(t, "0", result[1])
}

func TestSanitizeMissingRateLookup(t *testing.T) {
	input := []*Line{
		line(t, "1", "1000", "100", "EUR"),
		line(t, "1", "6000", "-120", "CHF"),
	}

	_, err := testSanitizer(t).Sanitize(context.Background(), input)

	_, ok := err.(*MissingAmountError)
	assert.True(t, ok, "expected MissingAmountError, got %T", err)
}

func TestSanitizeUnsetTransitoryAccount(t *testing.T) {
	sanitizer := NewSanitizer("CHF", "", newChartStub())

	_, err := sanitizer.Sanitize(context.Background(), []*Line{
		line(t, "1", "1000", "100", "CHF"),
	})

	_, ok := err.(*ConfigurationError)
	assert.True(t, ok, "expected ConfigurationError, got %T", err)
}

func TestSanitizeIncoherentRate(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "91.44"),
		lineWithReporting(t, "1", "1010", "100", "EUR", "91.51"),
		line(t, "1", "6000", "-182.95", "CHF"),
	}

	_, err := testSanitizer(t).Sanitize(context.Background(), input)

	_, ok := err.(*IncoherentFXRateError)
	assert.True(t, ok, "expected IncoherentFXRateError, got %T", err)
}

func TestSanitizeIndividualResidual(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "3000000", "EUR", "2743210.57"),
	}

	result, err := testSanitizer(t).Sanitize(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(result))

	assertReporting(t, "2743210.56", result[0])
	assert.Equal(t, "1:fx", result[1].ID)
	assert.Equal(t, "9999", result[1].Account)
	assertReporting(t, "0.01", result[1])
}

func TestSanitizeIdempotent(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "120"),
		lineWithReporting(t, "1", "1010", "50", "USD", "45"),
		line(t, "1", "6000", "-165", "CHF"),

		lineWithReporting(t, "2", "1000", "253.15", "EUR", "303.78"),
		line(t, "2", "6000", "-100.89", "CHF"),
		line(t, "2", "6100", "-202.89", "CHF"),

		line(t, "3", "1000", "75", "CHF"),
		line(t, "3", "6000", "-75", "CHF"),
	}

	sanitizer := testSanitizer(t)

	first, err := sanitizer.Sanitize(context.Background(), input)
	assert.NoError(t, err)

	second, err := sanitizer.Sanitize(context.Background(), first)
	assert.NoError(t, err)

	assertLinesEqual(t, first, second)
}

func TestSanitizePreservesNetEffect(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "253.15", "EUR", "303.78"),
		line(t, "1", "6000", "-100.89", "CHF"),
		line(t, "1", "6100", "-202.89", "CHF"),
	}

	result, err := testSanitizer(t).Sanitize(context.Background(), input)
	assert.NoError(t, err)

	// Per-account reporting effect is unchanged; the transitory account
	// absorbs nothing on net.
	totals := make(map[string]decimal.Decimal)
	for _, l := range result {
		totals[l.Account] = totals[l.Account].Add(*l.ReportingAmount)
	}
	assertAmount(t, "303.78", totals["1000"])
	assertAmount(t, "-100.89", totals["6000"])
	assertAmount(t, "-202.89", totals["6100"])
	assert.True(t, totals["9999"].IsZero())
}

func TestSanitizeEmptyInput(t *testing.T) {
	result, err := testSanitizer(t).Sanitize(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(result))
}

func TestSanitizeTelemetry(t *testing.T) {
	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(context.Background(), collector)

	_, err := testSanitizer(t).Sanitize(ctx, []*Line{
		line(t, "1", "1000", "100", "CHF"),
		line(t, "1", "6000", "-100", "CHF"),
	})
	assert.NoError(t, err)

	var report strings.Builder
	collector.Report(&report, nil)

	assert.Contains(t, report.String(), "sanitize")
	assert.Contains(t, report.String(), "split multi-currency")
	assert.Contains(t, report.String(), "fx adjustments")
}

func TestCheckPassesCoherentInput(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "120"),
		line(t, "1", "6000", "-120", "CHF"),
	}

	assert.NoError(t, testSanitizer(t).Check(context.Background(), input))
}

func TestCheckCollectsFailuresAcrossGroups(t *testing.T) {
	input := []*Line{
		lineWithReporting(t, "1", "1000", "100", "EUR", "91.44"),
		lineWithReporting(t, "1", "1010", "100", "EUR", "91.51"),
		line(t, "1", "6000", "-182.95", "CHF"),

		line(t, "2", "1000", "75", "CHF"),
		line(t, "2", "6000", "-75", "CHF"),

		lineWithReporting(t, "3", "1000", "100", "EUR", "91.44"),
		lineWithReporting(t, "3", "1010", "100", "EUR", "91.51"),
		line(t, "3", "6000", "-182.95", "CHF"),
	}

	err := testSanitizer(t).Check(context.Background(), input)

	sanitizeErrors, ok := err.(*SanitizeErrors)
	assert.True(t, ok, "expected SanitizeErrors, got %T", err)
	assert.Equal(t, 2, len(sanitizeErrors.Errors))
	assert.Contains(t, sanitizeErrors.Error(), "2 transactions")
}

func TestCheckUnsetTransitoryAccount(t *testing.T) {
	err := NewSanitizer("CHF", "", newChartStub()).Check(context.Background(), []*Line{
		line(t, "1", "1000", "100", "CHF"),
	})

	_, ok := err.(*ConfigurationError)
	assert.True(t, ok, "expected ConfigurationError, got %T", err)
}

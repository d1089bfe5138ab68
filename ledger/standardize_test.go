package ledger

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStandardize(t *testing.T) {
	input := []*Line{
		line(t, "1", "1000", "100.004", ""),
		lineWithReporting(t, "1", "6000", "-100", "CHF", "-100.004"),
	}

	result, err := Standardize(input, "CHF", NewPrecisionConfig())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(result))

	// Empty currency becomes the reporting currency and the reporting
	// amount is derived from the rounded amount.
	assert.Equal(t, "CHF", result[0].Currency)
	assertAmount(t, "100.00", result[0].Amount)
	assertReporting(t, "100.00", result[0])

	assertReporting(t, "-100.00", result[1])
}

func TestStandardizePreservesOrder(t *testing.T) {
	input := []*Line{
		line(t, "2", "1000", "1", "CHF"),
		line(t, "1", "2000", "2", "CHF"),
		line(t, "2", "3000", "3", "CHF"),
	}

	result, err := Standardize(input, "CHF", NewPrecisionConfig())
	assert.NoError(t, err)

	accounts := make([]string, 0, len(result))
	for _, l := range result {
		accounts = append(accounts, l.Account)
	}
	assert.Equal(t, "1000,2000,3000", strings.Join(accounts, ","))
}

func TestStandardizeDocumentPropagation(t *testing.T) {
	input := []*Line{
		line(t, "1", "1000", "100", "CHF"),
		line(t, "1", "6000", "-100", "CHF"),
		line(t, "2", "1000", "50", "CHF"),
	}
	input[1].Document = "invoice-42.pdf"

	result, err := Standardize(input, "CHF", NewPrecisionConfig())
	assert.NoError(t, err)

	// The reference propagates backward and forward within the
	// transaction, but not across transactions.
	assert.Equal(t, "invoice-42.pdf", result[0].Document)
	assert.Equal(t, "invoice-42.pdf", result[1].Document)
	assert.Equal(t, "", result[2].Document)
}

func TestStandardizeConflictingDocuments(t *testing.T) {
	input := []*Line{
		line(t, "1", "1000", "100", "CHF"),
		line(t, "1", "6000", "-100", "CHF"),
	}
	input[0].Document = "invoice-42.pdf"
	input[1].Document = "invoice-43.pdf"

	_, err := Standardize(input, "CHF", NewPrecisionConfig())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting document references")
}

func TestStandardizeDoesNotMutateInput(t *testing.T) {
	original := line(t, "1", "1000", "100.005", "")
	_, err := Standardize([]*Line{original}, "CHF", NewPrecisionConfig())
	assert.NoError(t, err)

	assert.Equal(t, "", original.Currency)
	assertAmount(t, "100.005", original.Amount)
}

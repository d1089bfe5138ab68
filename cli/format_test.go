package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/openclearing/ledgerbridge/ledger"
	"github.com/openclearing/ledgerbridge/remote"
)

func TestRenderTable(t *testing.T) {
	amount := decimal.RequireFromString("-120.50")
	l := &ledger.Line{
		ID:          "1",
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Account:     "6000",
		Amount:      amount,
		Currency:    "CHF",
		Description: "Café supplies",
	}
	l.SetReportingAmount(amount)

	var out strings.Builder
	renderTable(&out, []*ledger.Line{l})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, 3, len(lines))
	assert.Contains(t, lines[0], "account")
	assert.Contains(t, lines[2], "2024-03-15")
	assert.Contains(t, lines[2], "-120.5")
	assert.Contains(t, lines[2], "Café supplies")
}

func TestRenderColumnsAlignment(t *testing.T) {
	columns := []column{
		{header: "account"},
		{header: "amount", rightAligned: true},
	}
	rows := [][]string{
		{"1000", "5.00"},
		{"6000", "-1200.00"},
	}

	var out strings.Builder
	renderColumns(&out, columns, rows)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))

	// Numeric cells line up on their last character.
	assert.Equal(t, strings.Index(lines[2], "5.00")+len("5.00"),
		strings.Index(lines[3], "-1200.00")+len("-1200.00"))
}

func TestRenderAccountTable(t *testing.T) {
	var out strings.Builder
	renderAccountTable(&out, []remote.Account{
		{Number: "9999", Name: "Transitory account", Currency: "CHF", Group: "/Assets"},
	})

	assert.Contains(t, out.String(), "9999")
	assert.Contains(t, out.String(), "Transitory account")
	assert.Contains(t, out.String(), "/Assets")
}
